package main

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/systemhause/hause/internal/db"
	"github.com/systemhause/hause/internal/models"
)

func newInspectorCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspector",
		Short: "Inspector reference data commands",
	}

	cmd.AddCommand(newInspectorAddCmd())
	cmd.AddCommand(newInspectorListCmd())
	cmd.AddCommand(newInspectorDeactivateCmd())
	return cmd
}

func newInspectorAddCmd() *cobra.Command {
	var (
		configPath string
		name       string
		phone      string
		email      string
		areas      []string
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add an inspector",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, gormDB, err := connectFromConfig(configPath)
			if err != nil {
				return err
			}

			id, err := db.GenerateID("ins")
			if err != nil {
				return err
			}

			serviceAreas := ""
			if len(areas) > 0 {
				data, err := json.Marshal(areas)
				if err != nil {
					return fmt.Errorf("marshal service areas: %w", err)
				}
				serviceAreas = string(data)
			}

			row := models.Inspector{
				ID:           id,
				Name:         name,
				Phone:        phone,
				Email:        email,
				ServiceAreas: serviceAreas,
				Active:       true,
			}
			if err := gormDB.Create(&row).Error; err != nil {
				return fmt.Errorf("add inspector %q: %w", name, err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Added inspector %s (%s)\n", row.Name, row.ID)
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "hause.yaml", "path to SystemHause config file")
	cmd.Flags().StringVar(&name, "name", "", "inspector name (required)")
	cmd.Flags().StringVar(&phone, "phone", "", "inspector phone")
	cmd.Flags().StringVar(&email, "email", "", "inspector email")
	cmd.Flags().StringArrayVar(&areas, "area", nil, "community the inspector covers (repeatable)")
	cmd.MarkFlagRequired("name")
	return cmd
}

func newInspectorDeactivateCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "deactivate <id>",
		Short: "Deactivate an inspector",
		Long:  "Marks an inspector inactive. Inactive inspectors keep their history but receive no new assignments.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, gormDB, err := connectFromConfig(configPath)
			if err != nil {
				return err
			}

			result := gormDB.Model(&models.Inspector{}).
				Where("id = ?", args[0]).
				Update("active", false)
			if result.Error != nil {
				return fmt.Errorf("deactivate inspector %s: %w", args[0], result.Error)
			}
			if result.RowsAffected == 0 {
				return fmt.Errorf("inspector %s not found", args[0])
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Inspector %s deactivated\n", args[0])
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "hause.yaml", "path to SystemHause config file")
	return cmd
}

func newInspectorListCmd() *cobra.Command {
	var (
		configPath string
		all        bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List inspectors",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, gormDB, err := connectFromConfig(configPath)
			if err != nil {
				return err
			}

			q := gormDB.Model(&models.Inspector{})
			if !all {
				q = q.Where("active = ?", true)
			}
			var inspectors []models.Inspector
			if err := q.Order("name ASC").Find(&inspectors).Error; err != nil {
				return fmt.Errorf("list inspectors: %w", err)
			}

			out := cmd.OutOrStdout()
			if len(inspectors) == 0 {
				fmt.Fprintln(out, "No inspectors found.")
				return nil
			}

			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tPHONE\tEMAIL\tAREAS\tACTIVE")
			for _, ins := range inspectors {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%t\n",
					ins.ID, ins.Name, orDash(ins.Phone), orDash(ins.Email),
					orDash(ins.ServiceAreas), ins.Active)
			}
			w.Flush()
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "hause.yaml", "path to SystemHause config file")
	cmd.Flags().BoolVar(&all, "all", false, "include inactive inspectors")
	return cmd
}

func newBuilderCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "builder",
		Short: "Builder reference data commands",
	}

	cmd.AddCommand(newBuilderAddCmd())
	cmd.AddCommand(newBuilderListCmd())
	cmd.AddCommand(newBuilderDeactivateCmd())
	return cmd
}

func newBuilderAddCmd() *cobra.Command {
	var (
		configPath  string
		name        string
		company     string
		phone       string
		email       string
		communities []string
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a builder",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, gormDB, err := connectFromConfig(configPath)
			if err != nil {
				return err
			}

			id, err := db.GenerateID("bld")
			if err != nil {
				return err
			}

			communityList := ""
			if len(communities) > 0 {
				data, err := json.Marshal(communities)
				if err != nil {
					return fmt.Errorf("marshal communities: %w", err)
				}
				communityList = string(data)
			}

			row := models.Builder{
				ID:          id,
				Name:        name,
				Company:     company,
				Phone:       phone,
				Email:       email,
				Communities: communityList,
				Active:      true,
			}
			if err := gormDB.Create(&row).Error; err != nil {
				return fmt.Errorf("add builder %q: %w", name, err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Added builder %s (%s)\n", row.Name, row.ID)
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "hause.yaml", "path to SystemHause config file")
	cmd.Flags().StringVar(&name, "name", "", "builder name (required)")
	cmd.Flags().StringVar(&company, "company", "", "builder company")
	cmd.Flags().StringVar(&phone, "phone", "", "builder phone")
	cmd.Flags().StringVar(&email, "email", "", "builder email")
	cmd.Flags().StringArrayVar(&communities, "community", nil, "community the builder operates in (repeatable)")
	cmd.MarkFlagRequired("name")
	return cmd
}

func newBuilderDeactivateCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "deactivate <id>",
		Short: "Deactivate a builder",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, gormDB, err := connectFromConfig(configPath)
			if err != nil {
				return err
			}

			result := gormDB.Model(&models.Builder{}).
				Where("id = ?", args[0]).
				Update("active", false)
			if result.Error != nil {
				return fmt.Errorf("deactivate builder %s: %w", args[0], result.Error)
			}
			if result.RowsAffected == 0 {
				return fmt.Errorf("builder %s not found", args[0])
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Builder %s deactivated\n", args[0])
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "hause.yaml", "path to SystemHause config file")
	return cmd
}

func newBuilderListCmd() *cobra.Command {
	var (
		configPath string
		all        bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List builders",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, gormDB, err := connectFromConfig(configPath)
			if err != nil {
				return err
			}

			q := gormDB.Model(&models.Builder{})
			if !all {
				q = q.Where("active = ?", true)
			}
			var builders []models.Builder
			if err := q.Order("name ASC").Find(&builders).Error; err != nil {
				return fmt.Errorf("list builders: %w", err)
			}

			out := cmd.OutOrStdout()
			if len(builders) == 0 {
				fmt.Fprintln(out, "No builders found.")
				return nil
			}

			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tCOMPANY\tPHONE\tCOMMUNITIES")
			for _, b := range builders {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
					b.ID, b.Name, orDash(b.Company), orDash(b.Phone), orDash(b.Communities))
			}
			w.Flush()
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "hause.yaml", "path to SystemHause config file")
	cmd.Flags().BoolVar(&all, "all", false, "include inactive builders")
	return cmd
}
