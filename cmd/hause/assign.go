package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/systemhause/hause/internal/assign"
)

func newAssignCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "assign",
		Short: "Auto-assign inspectors to unassigned inspections",
		Long:  "Matches every scheduled, unassigned inspection with the active inspector covering its community who has the fewest open inspections.",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, gormDB, err := connectFromConfig(configPath)
			if err != nil {
				return err
			}

			made, err := assign.AutoAssign(gormDB)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(made) == 0 {
				fmt.Fprintln(out, "Nothing to assign.")
				return nil
			}

			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "INSPECTION\tINSPECTOR")
			for _, a := range made {
				fmt.Fprintf(w, "%s\t%s\n", a.InspectionID, a.Inspector)
			}
			w.Flush()
			fmt.Fprintf(out, "\nAssigned %d inspection(s)\n", len(made))
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "hause.yaml", "path to SystemHause config file")
	return cmd
}
