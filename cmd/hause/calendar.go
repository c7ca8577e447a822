package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/systemhause/hause/internal/calendar"
	"github.com/systemhause/hause/internal/inspection"
)

func newCalendarCmd() *cobra.Command {
	var (
		configPath  string
		granularity string
		date        string
		inspector   string
		status      string
	)

	cmd := &cobra.Command{
		Use:   "calendar",
		Short: "Show the inspection calendar",
		Long:  "Shows inspections bucketed by day for a month, week, or day view. Month views include leading and trailing days from adjacent months.",
		RunE: func(cmd *cobra.Command, args []string) error {
			ref := time.Now()
			if date != "" {
				parsed, err := time.ParseInLocation("2006-01-02", date, time.Local)
				if err != nil {
					return fmt.Errorf("--date must be YYYY-MM-DD: %w", err)
				}
				ref = parsed
			}

			_, gormDB, err := connectFromConfig(configPath)
			if err != nil {
				return err
			}

			inspections, err := inspection.List(gormDB, inspection.ListFilters{
				Status:        status,
				InspectorName: inspector,
			})
			if err != nil {
				return err
			}

			buckets, err := calendar.Bucket(inspections, ref, calendar.Granularity(granularity))
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, b := range buckets {
				if len(b.Inspections) == 0 {
					continue
				}
				fmt.Fprintf(out, "%s (%s)\n", b.Date.Format("2006-01-02"), b.Date.Format("Mon"))
				for _, ins := range b.Inspections {
					fmt.Fprintf(out, "  %s  %-11s %-12s %s  %s\n",
						ins.ScheduledAt.Format("15:04"), ins.Type, ins.Status,
						ins.PropertyID, orDash(ins.InspectorName))
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "hause.yaml", "path to SystemHause config file")
	cmd.Flags().StringVar(&granularity, "granularity", "month", "view granularity: month, week, or day")
	cmd.Flags().StringVar(&date, "date", "", "reference date (YYYY-MM-DD, default today)")
	cmd.Flags().StringVar(&inspector, "inspector", "", "filter by inspector name")
	cmd.Flags().StringVar(&status, "status", "", "filter by inspection status")
	return cmd
}
