package main

import (
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/dayslot/core/cmd/api/commands"
)

// @title DaySlot API
// @version 1.0
// @description Daily planner with time-slot locking for passed tasks

// @host localhost:8080
// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	rootCmd := &cobra.Command{
		Use:   "dayslot",
		Short: "DaySlot API Server",
		Long:  `DaySlot is a daily planner API. Tasks are scheduled into time slots and lock once their start time has passed.`,
	}

	// Add commands
	rootCmd.AddCommand(commands.NewServeCommand())
	rootCmd.AddCommand(commands.NewMigrateCommand())
	rootCmd.AddCommand(commands.NewUserCommand())
	rootCmd.AddCommand(commands.NewVersionCommand())

	// Execute root command
	if err := rootCmd.Execute(); err != nil {
		log.Printf("Command execution failed: %v", err)
		os.Exit(1)
	}
}
