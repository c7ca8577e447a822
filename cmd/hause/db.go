package main

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/systemhause/hause/internal/config"
	"github.com/systemhause/hause/internal/db"
)

func newDBCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "db",
		Short: "Database management commands",
	}

	cmd.AddCommand(newDBInitCmd())
	cmd.AddCommand(newDBMigrateCmd())
	cmd.AddCommand(newDBSeedCmd())
	cmd.AddCommand(newDBDropCmd())
	cmd.AddCommand(newDBResetCmd())
	return cmd
}

func newDBMigrateCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Migrate tables in an existing database",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, gormDB, err := connectFromConfig(configPath)
			if err != nil {
				return err
			}
			if err := db.AutoMigrate(gormDB); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Migrated %d tables\n", len(db.AllModels()))
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "hause.yaml", "path to SystemHause config file")
	return cmd
}

func newDBSeedCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Seed inspectors and builders from config",
		Long:  "Upserts the config file's inspector and builder lists, keyed by name.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, gormDB, err := connectFromConfig(configPath)
			if err != nil {
				return err
			}
			if err := db.SeedInspectors(gormDB, cfg.Inspectors); err != nil {
				return err
			}
			if err := db.SeedBuilders(gormDB, cfg.Builders); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Seeded %d inspectors and %d builders\n",
				len(cfg.Inspectors), len(cfg.Builders))
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "hause.yaml", "path to SystemHause config file")
	return cmd
}

func newDBDropCmd() *cobra.Command {
	var (
		configPath string
		yes        bool
	)

	cmd := &cobra.Command{
		Use:   "drop",
		Short: "Drop the SystemHause database",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			if !yes && !confirmReset(cmd, cfg.DB.Database) {
				fmt.Fprintln(cmd.OutOrStdout(), "Aborted.")
				return nil
			}

			adminDB, err := db.ConnectAdmin(cfg.DB)
			if err != nil {
				return fmt.Errorf("connect to SQL server at %s:%d: %w", cfg.DB.Host, cfg.DB.Port, err)
			}
			if err := db.DropDatabase(adminDB, cfg.DB.Database); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Dropped database %s\n", cfg.DB.Database)
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "hause.yaml", "path to SystemHause config file")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip confirmation prompt")
	return cmd
}

func newDBInitCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize the SystemHause database",
		Long:  "Creates the database, migrates all tables, and seeds inspectors and builders from config.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDBInit(cmd, configPath)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "hause.yaml", "path to SystemHause config file")
	return cmd
}

func runDBInit(cmd *cobra.Command, configPath string) error {
	out := cmd.OutOrStdout()

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	fmt.Fprintf(out, "Loaded config for company %q from %s\n", cfg.Company, configPath)

	adminDB, err := db.ConnectAdmin(cfg.DB)
	if err != nil {
		return fmt.Errorf("connect to SQL server at %s:%d: %w", cfg.DB.Host, cfg.DB.Port, err)
	}
	fmt.Fprintf(out, "Connected to SQL server at %s:%d\n", cfg.DB.Host, cfg.DB.Port)

	if err := db.CreateDatabase(adminDB, cfg.DB.Database); err != nil {
		return err
	}
	fmt.Fprintf(out, "Database %s ready\n", cfg.DB.Database)

	gormDB, err := db.Connect(cfg.DB)
	if err != nil {
		return fmt.Errorf("connect to %s: %w", cfg.DB.Database, err)
	}

	if err := db.AutoMigrate(gormDB); err != nil {
		return err
	}
	fmt.Fprintf(out, "Migrated %d tables\n", len(db.AllModels()))

	if err := db.SeedInspectors(gormDB, cfg.Inspectors); err != nil {
		return err
	}
	fmt.Fprintf(out, "Seeded %d inspectors\n", len(cfg.Inspectors))

	if err := db.SeedBuilders(gormDB, cfg.Builders); err != nil {
		return err
	}
	fmt.Fprintf(out, "Seeded %d builders\n", len(cfg.Builders))

	fmt.Fprintln(out, "\nSystemHause database initialized successfully.")
	return nil
}

func newDBResetCmd() *cobra.Command {
	var (
		configPath string
		dbName     string
		yes        bool
	)

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Drop and re-initialize the SystemHause database",
		Long: `Drops the SystemHause database and optionally re-creates it from config.

By default, reads the config file to determine the database name, drops it,
then re-initializes (migrate + seed). With --database, drops the named
database without re-init.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDBReset(cmd, configPath, dbName, yes)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "hause.yaml", "path to SystemHause config file")
	cmd.Flags().StringVar(&dbName, "database", "", "explicit database name (skip re-init)")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip confirmation prompt")
	return cmd
}

func runDBReset(cmd *cobra.Command, configPath, dbName string, skipConfirm bool) error {
	out := cmd.OutOrStdout()

	var cfg *config.Config
	reinit := false

	if dbName == "" {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		dbName = cfg.DB.Database
		reinit = true
		fmt.Fprintf(out, "Loaded config for company %q from %s\n", cfg.Company, configPath)
	}

	if !skipConfirm {
		if !confirmReset(cmd, dbName) {
			fmt.Fprintln(out, "Aborted.")
			return nil
		}
	}

	dbCfg := config.DBConfig{Host: "127.0.0.1", Port: 3306, User: "root", Database: dbName}
	if cfg != nil {
		dbCfg = cfg.DB
		dbCfg.Database = dbName
	}

	adminDB, err := db.ConnectAdmin(dbCfg)
	if err != nil {
		return fmt.Errorf("connect to SQL server at %s:%d: %w", dbCfg.Host, dbCfg.Port, err)
	}

	if err := db.DropDatabase(adminDB, dbName); err != nil {
		return err
	}
	fmt.Fprintf(out, "Dropped database %s\n", dbName)

	if !reinit {
		fmt.Fprintln(out, "\nDatabase dropped successfully.")
		return nil
	}

	if err := db.CreateDatabase(adminDB, dbName); err != nil {
		return err
	}
	fmt.Fprintf(out, "Database %s re-created\n", dbName)

	gormDB, err := db.Connect(dbCfg)
	if err != nil {
		return fmt.Errorf("connect to %s: %w", dbName, err)
	}

	if err := db.AutoMigrate(gormDB); err != nil {
		return err
	}
	fmt.Fprintf(out, "Migrated %d tables\n", len(db.AllModels()))

	if err := db.SeedInspectors(gormDB, cfg.Inspectors); err != nil {
		return err
	}
	if err := db.SeedBuilders(gormDB, cfg.Builders); err != nil {
		return err
	}
	fmt.Fprintf(out, "Seeded %d inspectors and %d builders\n", len(cfg.Inspectors), len(cfg.Builders))

	fmt.Fprintln(out, "\nSystemHause database reset and re-initialized successfully.")
	return nil
}

func confirmReset(cmd *cobra.Command, dbName string) bool {
	out := cmd.OutOrStdout()
	in := cmd.InOrStdin()

	fmt.Fprintf(out, "WARNING: This will permanently delete all data in database %q.\n", dbName)
	fmt.Fprintln(out, "This action cannot be undone.")
	fmt.Fprintln(out)
	fmt.Fprint(out, "Type \"yes\" to confirm: ")

	scanner := bufio.NewScanner(in)
	if scanner.Scan() {
		return strings.TrimSpace(scanner.Text()) == "yes"
	}
	return false
}
