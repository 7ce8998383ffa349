package config

import (
	"context"
	"fmt"
	"strings"

	"crosspay-engine/application/services"
	"crosspay-engine/application/usecases"
	"crosspay-engine/domain/entities"
	"crosspay-engine/domain/interfaces"
	"crosspay-engine/infrastructure/blockchain"
	"crosspay-engine/infrastructure/bridge"
	"crosspay-engine/infrastructure/directory"
	"crosspay-engine/infrastructure/logger"
	"crosspay-engine/infrastructure/metrics"
	"crosspay-engine/infrastructure/notifier"
	"crosspay-engine/infrastructure/queue"
	"crosspay-engine/infrastructure/repository"
	"crosspay-engine/infrastructure/scheduler"
	"crosspay-engine/infrastructure/tracker"
	"crosspay-engine/infrastructure/wallet"
	"github.com/ethereum/go-ethereum/common"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Container represents the dependency injection container.
type Container struct {
	Config *Config

	// Infrastructure
	Logger    interfaces.Logger
	DB        *gorm.DB
	ChainPool *blockchain.ClientPool
	Metrics   *metrics.Metrics

	// Repositories
	PaymentRepository interfaces.ScheduledPaymentRepository
	JobRepository     interfaces.JobRepository
	LegRepository     interfaces.LegRepository
	UnitOfWorkFactory interfaces.UnitOfWorkFactory

	// Services
	ChainReader   interfaces.ChainReader
	BalanceOracle interfaces.BalanceOracle
	Executor      interfaces.PaymentExecutor
	Bridge        interfaces.BridgeProvider
	Directory     interfaces.DirectoryService
	Notifier      interfaces.Notifier
	Tracker       interfaces.ConfirmationTracker
	ChainSelector interfaces.ChainSelector

	// Engine
	Queue     interfaces.JobQueue
	Scheduler interfaces.PaymentScheduler

	// Use Cases
	SchedulePaymentUseCase interfaces.SchedulePaymentUseCase
	SubmitPaymentUseCase   interfaces.SubmitPaymentUseCase
	CancelPaymentUseCase   interfaces.CancelPaymentUseCase
	ListPaymentsUseCase    interfaces.ListPaymentsUseCase
	GetJobStatusUseCase    interfaces.GetJobStatusUseCase
	RoutePaymentUseCase    interfaces.RoutePaymentUseCase
}

// NewContainer creates a new dependency injection container. Construction is
// eager: every collaborator is built and verified up front, so a
// misconfigured engine fails at startup instead of on the first job.
func NewContainer(config *Config) (*Container, error) {
	container := &Container{
		Config: config,
	}

	// Initialize logger and metrics first so later stages can use them.
	container.Logger = logger.NewLogrusLogger(config.LogLevel)
	container.Metrics = metrics.NewMetrics()

	if err := container.initDatabase(); err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	if err := container.initChainClients(); err != nil {
		_ = container.Close()
		return nil, fmt.Errorf("failed to initialize chain clients: %w", err)
	}

	if err := container.initServices(); err != nil {
		_ = container.Close()
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	container.initUseCases()
	container.initEngine()

	return container, nil
}

// initDatabase opens the database, migrates the engine's tables, and builds
// the repositories.
func (c *Container) initDatabase() error {
	dsn := c.Config.Database.GetDatabaseDSN()

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent), // We use our own logger
	})
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}

	// Configure connection pool
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get sql.DB: %w", err)
	}

	sqlDB.SetMaxIdleConns(c.Config.Database.MaxIdleConns)
	sqlDB.SetMaxOpenConns(c.Config.Database.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(c.Config.Database.ConnMaxLifetime)

	if err := db.AutoMigrate(
		&entities.ScheduledPayment{},
		&entities.Job{},
		&entities.Leg{},
	); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}

	c.DB = db

	// Initialize repositories
	c.PaymentRepository = repository.NewScheduledPaymentRepository(db)
	c.JobRepository = repository.NewJobRepository(db)
	c.LegRepository = repository.NewLegRepository(db)
	c.UnitOfWorkFactory = repository.NewUnitOfWorkFactory(db)

	return nil
}

// initChainClients dials every configured chain and builds the read-side
// capabilities on top of the shared client pool.
func (c *Container) initChainClients() error {
	specs := make([]blockchain.ChainSpec, 0, len(c.Config.Chains))
	for i := range c.Config.Chains {
		chain := &c.Config.Chains[i]

		tokens := make(map[string]blockchain.TokenSpec, len(chain.Tokens))
		for symbol, address := range chain.Tokens {
			if !common.IsHexAddress(address) {
				return fmt.Errorf("chain %q: token %s address %q is not a hex address",
					chain.Name, symbol, address)
			}
			tokens[strings.ToUpper(symbol)] = blockchain.TokenSpec{
				Address:  common.HexToAddress(address),
				Decimals: chain.Decimals[symbol],
			}
		}

		specs = append(specs, blockchain.ChainSpec{
			Name:    chain.Name,
			ChainID: chain.ChainID,
			RPCURL:  chain.RPCURL,
			Tokens:  tokens,
		})
	}

	pool, err := blockchain.NewClientPool(specs)
	if err != nil {
		return err
	}
	c.ChainPool = pool

	c.ChainReader = blockchain.NewReader(pool, c.Logger)

	oracle, err := blockchain.NewBalanceOracle(pool, c.Logger)
	if err != nil {
		return err
	}
	c.BalanceOracle = oracle

	return nil
}

// initServices builds the external capability clients and the confirmation
// tracker.
func (c *Container) initServices() error {
	c.Executor = wallet.NewExecutorClient(
		c.Config.Wallet.Endpoint,
		c.Config.Wallet.Timeout,
		c.Logger,
	)

	c.Bridge = bridge.NewProviderClient(
		c.Config.Bridge.Endpoint,
		c.Config.Bridge.Timeout,
		c.Logger,
	)

	c.Directory = directory.NewDirectoryClient(
		c.Config.Directory.Endpoint,
		c.Config.Directory.Timeout,
		c.Logger,
	)

	c.Notifier = notifier.NewWebhookNotifier(c.Config.Notifier.WebhookURL, c.Logger)
	if !c.Notifier.IsConfigured() {
		c.Logger.Warn("No webhook URL configured, payment events will not be delivered")
	}

	c.Tracker = tracker.NewConfirmationTracker(
		tracker.Config{
			PollInterval: c.Config.Tracker.PollInterval,
			MaxWait:      c.Config.Tracker.MaxWait,
			Milestones:   c.Config.Tracker.Milestones,
		},
		c.ChainReader,
		c.Metrics,
		c.Logger,
	)

	c.ChainSelector = services.NewChainSelector(
		c.Config.Priority(),
		c.Config.DefaultChain,
		c.BalanceOracle,
		c.Logger,
	)

	return nil
}

// initUseCases initializes use cases.
func (c *Container) initUseCases() {
	knownChains := c.Config.ChainNames()

	c.SchedulePaymentUseCase = usecases.NewSchedulePaymentUseCase(
		c.PaymentRepository,
		knownChains,
		c.Logger,
	)

	c.SubmitPaymentUseCase = usecases.NewSubmitPaymentUseCase(
		c.UnitOfWorkFactory,
		c.Directory,
		knownChains,
		c.Config.Queue.MaxAttempts,
		c.Logger,
	)

	c.CancelPaymentUseCase = usecases.NewCancelPaymentUseCase(
		c.PaymentRepository,
		c.Logger,
	)

	c.ListPaymentsUseCase = usecases.NewListPaymentsUseCase(
		c.PaymentRepository,
		c.Logger,
	)

	c.GetJobStatusUseCase = usecases.NewGetJobStatusUseCase(
		c.JobRepository,
		c.PaymentRepository,
		c.LegRepository,
		c.Logger,
	)

	c.RoutePaymentUseCase = usecases.NewRoutePaymentUseCase(
		c.PaymentRepository,
		c.LegRepository,
		c.ChainSelector,
		c.Directory,
		c.Bridge,
		c.Executor,
		c.Tracker,
		c.Notifier,
		c.Logger,
		c.Config.ConfirmationsByChain(),
		c.Config.DefaultConfirmations,
		c.Config.Tracker.BridgeTimeout,
	)
}

// initEngine builds the scheduler and the worker pool. Every dequeued job
// runs through the routing use case.
func (c *Container) initEngine() {
	handler := func(ctx context.Context, job *entities.Job) error {
		result, err := c.RoutePaymentUseCase.Execute(ctx, interfaces.RoutePaymentParams{Job: job})
		if err != nil {
			return err
		}
		if result.Bridged {
			c.Metrics.IncBridgeLeg(result.BridgeProvider, "bridged")
		}
		c.Metrics.IncPaymentLeg(result.TargetChain, "confirmed")
		return nil
	}

	c.Queue = queue.NewJobQueue(
		queue.Config{
			Workers:       c.Config.Queue.Concurrency,
			PollInterval:  c.Config.Queue.PollInterval,
			LeaseDuration: c.Config.Queue.LeaseDuration,
			BackoffBase:   c.Config.Queue.BackoffBase,
			BackoffCap:    c.Config.Queue.BackoffCap,
		},
		c.JobRepository,
		c.PaymentRepository,
		handler,
		c.Notifier,
		c.Metrics,
		c.Logger,
	)

	c.Scheduler = scheduler.NewPaymentScheduler(
		scheduler.Config{
			TickInterval: c.Config.Scheduler.Interval,
			ClaimBatch:   c.Config.Scheduler.Batch,
			MaxAttempts:  c.Config.Queue.MaxAttempts,
		},
		c.UnitOfWorkFactory,
		c.JobRepository,
		c.Metrics,
		c.Logger,
	)
}

// Close closes all resources.
func (c *Container) Close() error {
	if c.ChainPool != nil {
		c.ChainPool.Close()
	}

	if c.DB != nil {
		sqlDB, err := c.DB.DB()
		if err == nil {
			if err := sqlDB.Close(); err != nil {
				c.Logger.Error("Failed to close database", "error", err)
			}
		}
	}

	return nil
}
