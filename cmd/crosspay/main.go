package main

import (
	"os"

	"crosspay-engine/cmd/crosspay/commands"
	"github.com/joho/godotenv"
)

func main() {
	// Load .env before viper reads the environment.
	_ = godotenv.Load()

	app := commands.NewApp()
	defer app.Close()

	if err := commands.NewRootCommand(app).Execute(); err != nil {
		os.Exit(1)
	}
}
