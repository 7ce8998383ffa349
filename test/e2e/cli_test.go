//go:build e2e
// +build e2e

package e2e

import (
	"os"
	"os/exec"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testBinary = "./crosspay-test"

func buildBinary(t *testing.T) {
	t.Helper()
	buildCmd := exec.Command("go", "build", "-o", "crosspay-test", "crosspay-engine/cmd/crosspay")
	output, err := buildCmd.CombinedOutput()
	require.NoError(t, err, "build output: %s", output)
	t.Cleanup(func() { _ = os.Remove("crosspay-test") })
}

func writeTestConfig(t *testing.T) string {
	t.Helper()
	configPath := "test-config.toml"
	configContent := `
log_level = "info"

[database]
host = "localhost"
port = "5432"
user = "crosspay"
password = "crosspay"
db_name = "crosspay_test"
ssl_mode = "disable"

[wallet]
endpoint = "http://localhost:7001"

[bridge]
endpoint = "http://localhost:7002"

[directory]
endpoint = "http://localhost:7003"

[[chains]]
name = "polygon"
chain_id = 137
rpc_url = "https://polygon-rpc.com"
native_token = "MATIC"
`
	err := os.WriteFile(configPath, []byte(configContent), 0600)
	require.NoError(t, err)
	t.Cleanup(func() { _ = os.Remove(configPath) })
	return configPath
}

func TestScheduleCommand_E2E(t *testing.T) {
	// Skip unless the full stack (postgres) is available.
	if os.Getenv("RUN_E2E_TESTS") != "true" {
		t.Skip("Skipping E2E test. Set RUN_E2E_TESTS=true to run")
	}

	buildBinary(t)
	configPath := writeTestConfig(t)

	t.Run("schedule with valid parameters", func(t *testing.T) {
		cmd := exec.Command(testBinary,
			"schedule",
			"--config", configPath,
			"--at", "48h",
			"--target-chain", "polygon",
			"user-e2e",
			"0x8ba1f109551bD432803012645Ac136ddd64DBA72",
			"25.00",
			"USDC",
		)

		output, err := cmd.CombinedOutput()
		require.NoError(t, err, "command output: %s", output)
		assert.Contains(t, string(output), "scheduled")
		assert.Contains(t, string(output), "Due:")
	})

	t.Run("list shows the scheduled payment", func(t *testing.T) {
		cmd := exec.Command(testBinary,
			"list",
			"--config", configPath,
			"--status", "pending",
			"user-e2e",
		)

		output, err := cmd.CombinedOutput()
		require.NoError(t, err, "command output: %s", output)
		assert.Contains(t, string(output), "USDC")
	})
}

func TestScheduleValidation_E2E(t *testing.T) {
	buildBinary(t)
	configPath := writeTestConfig(t)

	// Bad inputs are rejected before any connection is attempted, so these
	// run without the stack.
	t.Run("invalid amount", func(t *testing.T) {
		cmd := exec.Command(testBinary,
			"schedule",
			"--config", configPath,
			"--at", "48h",
			"user-e2e", "0x8ba1f109551bD432803012645Ac136ddd64DBA72", "not-a-number", "USDC",
		)

		output, err := cmd.CombinedOutput()
		assert.Error(t, err)
		assert.Contains(t, string(output), "invalid amount")
	})

	t.Run("missing --at", func(t *testing.T) {
		cmd := exec.Command(testBinary,
			"schedule",
			"--config", configPath,
			"user-e2e", "0x8ba1f109551bD432803012645Ac136ddd64DBA72", "25.00", "USDC",
		)

		output, err := cmd.CombinedOutput()
		assert.Error(t, err)
		assert.Contains(t, string(output), "--at is required")
	})
}

func TestVersionCommand_E2E(t *testing.T) {
	buildBinary(t)

	cmd := exec.Command(testBinary, "version")
	output, err := cmd.CombinedOutput()
	require.NoError(t, err)

	assert.Contains(t, string(output), "Crosspay Engine")
	assert.Contains(t, string(output), "Version:")
	assert.Contains(t, string(output), "Go Version:")
}
