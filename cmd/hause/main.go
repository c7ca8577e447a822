package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/systemhause/hause/internal/config"
	"github.com/systemhause/hause/internal/db"
	"gorm.io/gorm"
)

// Version info set via ldflags at build time.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "hause",
		Short: "SystemHause — home inspection tracking",
		Long:  "SystemHause tracks properties through construction inspection stages, from pre-rock to closing.",
	}

	cmd.AddCommand(newVersionCmd())
	cmd.AddCommand(newDBCmd())
	cmd.AddCommand(newPropertyCmd())
	cmd.AddCommand(newInspectionCmd())
	cmd.AddCommand(newCorrectionCmd())
	cmd.AddCommand(newCalendarCmd())
	cmd.AddCommand(newInspectorCmd())
	cmd.AddCommand(newBuilderCmd())
	cmd.AddCommand(newActivityCmd())
	cmd.AddCommand(newAssignCmd())
	cmd.AddCommand(newPortalCmd())
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "hause %s (commit: %s, built: %s)\n", Version, Commit, Date)
		},
	}
}

// connectFromConfig loads config and returns a GORM DB connection.
func connectFromConfig(configPath string) (*config.Config, *gorm.DB, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}

	gormDB, err := db.Connect(cfg.DB)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to %s: %w", cfg.DB.Database, err)
	}

	return cfg, gormDB, nil
}

func execute(cmd *cobra.Command) int {
	if err := cmd.Execute(); err != nil {
		return 1
	}
	return 0
}

func main() {
	os.Exit(execute(newRootCmd()))
}
