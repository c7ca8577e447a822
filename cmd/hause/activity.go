package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/systemhause/hause/internal/activity"
)

func newActivityCmd() *cobra.Command {
	var (
		configPath string
		propertyID string
		limit      int
	)

	cmd := &cobra.Command{
		Use:   "activity",
		Short: "Show the activity feed",
		Long:  "Shows recent feed entries, newest first. With --property, only that property's feed.",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, gormDB, err := connectFromConfig(configPath)
			if err != nil {
				return err
			}

			var entries []struct {
				When     string
				Property string
				Kind     string
				Summary  string
			}

			if propertyID != "" {
				rows, err := activity.ForProperty(gormDB, propertyID, limit)
				if err != nil {
					return err
				}
				for _, r := range rows {
					entries = append(entries, struct {
						When     string
						Property string
						Kind     string
						Summary  string
					}{formatDateTime(r.CreatedAt), r.PropertyID, r.Kind, r.Summary})
				}
			} else {
				rows, err := activity.Recent(gormDB, limit)
				if err != nil {
					return err
				}
				for _, r := range rows {
					entries = append(entries, struct {
						When     string
						Property string
						Kind     string
						Summary  string
					}{formatDateTime(r.CreatedAt), r.PropertyID, r.Kind, r.Summary})
				}
			}

			out := cmd.OutOrStdout()
			if len(entries) == 0 {
				fmt.Fprintln(out, "No activity.")
				return nil
			}

			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "WHEN\tPROPERTY\tKIND\tSUMMARY")
			for _, e := range entries {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", e.When, e.Property, e.Kind, truncate(e.Summary, 60))
			}
			w.Flush()
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "hause.yaml", "path to SystemHause config file")
	cmd.Flags().StringVar(&propertyID, "property", "", "limit to one property's feed")
	cmd.Flags().IntVar(&limit, "limit", 50, "max entries to show")
	return cmd
}
