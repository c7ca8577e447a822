package main

import (
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"github.com/systemhause/hause/internal/assign"
	"github.com/systemhause/hause/internal/inspection"
	"github.com/systemhause/hause/internal/models"
)

func newInspectionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspection",
		Short: "Inspection scheduling and lifecycle commands",
	}

	cmd.AddCommand(newInspectionScheduleCmd())
	cmd.AddCommand(newInspectionListCmd())
	cmd.AddCommand(newInspectionShowCmd())
	cmd.AddCommand(newInspectionStartCmd())
	cmd.AddCommand(newInspectionPassCmd())
	cmd.AddCommand(newInspectionFailCmd())
	cmd.AddCommand(newInspectionCancelCmd())
	cmd.AddCommand(newInspectionAssignCmd())
	return cmd
}

func newInspectionAssignCmd() *cobra.Command {
	var (
		configPath string
		inspector  string
	)

	cmd := &cobra.Command{
		Use:   "assign <id>",
		Short: "Assign an inspector to a scheduled inspection",
		Long:  "Claims a scheduled, unassigned inspection for the named active inspector.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, gormDB, err := connectFromConfig(configPath)
			if err != nil {
				return err
			}

			var row models.Inspector
			if err := gormDB.Where("name = ?", inspector).First(&row).Error; err != nil {
				return fmt.Errorf("find inspector %q: %w", inspector, err)
			}

			if err := assign.Claim(gormDB, args[0], &row); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Assigned %s to inspection %s\n", row.Name, args[0])
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "hause.yaml", "path to SystemHause config file")
	cmd.Flags().StringVar(&inspector, "inspector", "", "inspector name (required)")
	cmd.MarkFlagRequired("inspector")
	return cmd
}

func newInspectionScheduleCmd() *cobra.Command {
	var (
		configPath string
		propertyID string
		insType    string
		at         string
		inspector  string
		phone      string
		email      string
		notes      string
	)

	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Schedule an inspection",
		Long:  "Schedules an inspection for a property's current stage and moves the property to scheduled.",
		RunE: func(cmd *cobra.Command, args []string) error {
			when, err := parseWhen(at)
			if err != nil {
				return err
			}
			return runInspectionSchedule(cmd, configPath, inspection.ScheduleOpts{
				PropertyID:     propertyID,
				Type:           insType,
				At:             when,
				InspectorName:  inspector,
				InspectorPhone: phone,
				InspectorEmail: email,
				Notes:          notes,
			})
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "hause.yaml", "path to SystemHause config file")
	cmd.Flags().StringVar(&propertyID, "property", "", "property ID (required)")
	cmd.Flags().StringVar(&insType, "type", "", "inspection type: pre-rock, poly-test, final, follow-up, blower-door (required)")
	cmd.Flags().StringVar(&at, "at", "", "scheduled time, YYYY-MM-DD or \"YYYY-MM-DD HH:MM\" (required)")
	cmd.Flags().StringVar(&inspector, "inspector", "", "inspector name")
	cmd.Flags().StringVar(&phone, "phone", "", "inspector phone")
	cmd.Flags().StringVar(&email, "email", "", "inspector email")
	cmd.Flags().StringVar(&notes, "notes", "", "scheduling notes")
	cmd.MarkFlagRequired("property")
	cmd.MarkFlagRequired("type")
	cmd.MarkFlagRequired("at")
	return cmd
}

// parseWhen accepts a date or a date with a time of day.
func parseWhen(raw string) (time.Time, error) {
	for _, layout := range []string{"2006-01-02 15:04", "2006-01-02"} {
		if t, err := time.ParseInLocation(layout, raw, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("--at must be YYYY-MM-DD or \"YYYY-MM-DD HH:MM\", got %q", raw)
}

func runInspectionSchedule(cmd *cobra.Command, configPath string, opts inspection.ScheduleOpts) error {
	_, gormDB, err := connectFromConfig(configPath)
	if err != nil {
		return err
	}

	ins, err := inspection.Schedule(gormDB, opts)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Scheduled %s inspection %s\n", ins.Type, ins.ID)
	fmt.Fprintf(out, "Property: %s, At: %s\n", ins.PropertyID, formatDateTime(ins.ScheduledAt))
	return nil
}

func newInspectionListCmd() *cobra.Command {
	var (
		configPath string
		propertyID string
		status     string
		insType    string
		inspector  string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List inspections",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInspectionList(cmd, configPath, inspection.ListFilters{
				PropertyID:    propertyID,
				Status:        status,
				Type:          insType,
				InspectorName: inspector,
			})
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "hause.yaml", "path to SystemHause config file")
	cmd.Flags().StringVar(&propertyID, "property", "", "filter by property ID")
	cmd.Flags().StringVar(&status, "status", "", "filter by status")
	cmd.Flags().StringVar(&insType, "type", "", "filter by type")
	cmd.Flags().StringVar(&inspector, "inspector", "", "filter by inspector name")
	return cmd
}

func runInspectionList(cmd *cobra.Command, configPath string, filters inspection.ListFilters) error {
	_, gormDB, err := connectFromConfig(configPath)
	if err != nil {
		return err
	}

	inspections, err := inspection.List(gormDB, filters)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(inspections) == 0 {
		fmt.Fprintln(out, "No inspections found.")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tPROPERTY\tTYPE\tSTATUS\tSCHEDULED\tINSPECTOR")
	for _, ins := range inspections {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			ins.ID, ins.PropertyID, ins.Type, ins.Status,
			formatDateTime(ins.ScheduledAt), orDash(ins.InspectorName))
	}
	w.Flush()
	return nil
}

func newInspectionShowCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show inspection details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInspectionShow(cmd, configPath, args[0])
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "hause.yaml", "path to SystemHause config file")
	return cmd
}

func runInspectionShow(cmd *cobra.Command, configPath, id string) error {
	_, gormDB, err := connectFromConfig(configPath)
	if err != nil {
		return err
	}

	ins, err := inspection.Get(gormDB, id)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "ID:         %s\n", ins.ID)
	fmt.Fprintf(out, "Property:   %s\n", ins.PropertyID)
	fmt.Fprintf(out, "Type:       %s\n", ins.Type)
	fmt.Fprintf(out, "Status:     %s\n", ins.Status)
	fmt.Fprintf(out, "Scheduled:  %s\n", formatDateTime(ins.ScheduledAt))
	if ins.CompletedAt != nil {
		fmt.Fprintf(out, "Completed:  %s\n", formatDateTime(*ins.CompletedAt))
	}
	if ins.InspectorName != "" {
		fmt.Fprintf(out, "Inspector:  %s %s %s\n", ins.InspectorName, ins.InspectorPhone, ins.InspectorEmail)
	}
	if ins.ReportURL != "" {
		fmt.Fprintf(out, "Report:     %s\n", ins.ReportURL)
	}
	if ins.Notes != "" {
		fmt.Fprintf(out, "\nNotes:\n%s\n", ins.Notes)
	}

	if len(ins.Issues) > 0 {
		fmt.Fprintln(out, "\nIssues:")
		for _, iss := range ins.Issues {
			resolved := ""
			if iss.Resolved {
				resolved = " (resolved)"
			}
			fmt.Fprintf(out, "  #%d [%s] %s%s\n", iss.ID, iss.Severity, iss.Description, resolved)
			if iss.Location != "" {
				fmt.Fprintf(out, "      at %s\n", iss.Location)
			}
		}
	}
	return nil
}

func newInspectionStartCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "start <id>",
		Short: "Mark an inspection in-progress",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, gormDB, err := connectFromConfig(configPath)
			if err != nil {
				return err
			}
			ins, err := inspection.Start(gormDB, args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Inspection %s is now %s\n", ins.ID, ins.Status)
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "hause.yaml", "path to SystemHause config file")
	return cmd
}

func newInspectionPassCmd() *cobra.Command {
	var (
		configPath string
		reportURL  string
		notes      string
	)

	cmd := &cobra.Command{
		Use:   "pass <id>",
		Short: "Complete an inspection as passed",
		Long:  "Marks an in-progress inspection passed and advances the property through the stage machine.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, gormDB, err := connectFromConfig(configPath)
			if err != nil {
				return err
			}
			ins, err := inspection.Pass(gormDB, args[0], reportURL, notes)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Inspection %s passed\n", ins.ID)
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "hause.yaml", "path to SystemHause config file")
	cmd.Flags().StringVar(&reportURL, "report", "", "report URL")
	cmd.Flags().StringVar(&notes, "notes", "", "completion notes")
	return cmd
}

func newInspectionFailCmd() *cobra.Command {
	var (
		configPath string
		issues     []string
		severity   string
		location   string
	)

	cmd := &cobra.Command{
		Use:   "fail <id>",
		Short: "Complete an inspection as failed",
		Long: `Marks an in-progress inspection failed, recording one issue per --issue flag.
At least one issue is required. All issues share the --severity and --location
flags; use the portal API for per-issue detail.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, gormDB, err := connectFromConfig(configPath)
			if err != nil {
				return err
			}

			inputs := make([]inspection.IssueInput, 0, len(issues))
			for _, desc := range issues {
				if strings.TrimSpace(desc) == "" {
					continue
				}
				inputs = append(inputs, inspection.IssueInput{
					Description: desc,
					Severity:    severity,
					Location:    location,
				})
			}

			ins, err := inspection.Fail(gormDB, args[0], inputs)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Inspection %s failed with %d issue(s)\n", ins.ID, len(inputs))
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "hause.yaml", "path to SystemHause config file")
	cmd.Flags().StringArrayVar(&issues, "issue", nil, "issue description (repeatable, at least one required)")
	cmd.Flags().StringVar(&severity, "severity", "medium", "issue severity (low, medium, high)")
	cmd.Flags().StringVar(&location, "location", "", "issue location in the house")
	return cmd
}

func newInspectionCancelCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "cancel <id>",
		Short: "Cancel an inspection",
		Long:  "Cancels a scheduled or in-progress inspection. The property returns to pending at its current stage.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, gormDB, err := connectFromConfig(configPath)
			if err != nil {
				return err
			}
			ins, err := inspection.Cancel(gormDB, args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Inspection %s cancelled\n", ins.ID)
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "hause.yaml", "path to SystemHause config file")
	return cmd
}
