package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"github.com/systemhause/hause/internal/correction"
	"github.com/systemhause/hause/internal/inspection"
	"gorm.io/gorm"
)

func newCorrectionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "correction",
		Short: "Builder correction workflow commands",
	}

	cmd.AddCommand(newCorrectionSubmitCmd())
	cmd.AddCommand(newCorrectionListCmd())
	cmd.AddCommand(newCorrectionShowCmd())
	cmd.AddCommand(newCorrectionReviewCmd())
	cmd.AddCommand(newCorrectionBulkApproveCmd())
	return cmd
}

// cliFollowUpScheduler books the post-approval re-check via the inspection
// scheduler.
func cliFollowUpScheduler(gormDB *gorm.DB) correction.FollowUpScheduler {
	return func(failedInspectionID string, at time.Time) error {
		_, err := inspection.ScheduleFollowUp(gormDB, failedInspectionID, at)
		return err
	}
}

func newCorrectionSubmitCmd() *cobra.Command {
	var (
		configPath   string
		propertyID   string
		inspectionID string
		issueID      uint
		submittedBy  string
		notes        string
		photos       []string
	)

	cmd := &cobra.Command{
		Use:   "submit",
		Short: "Submit a correction request",
		Long:  "Submits a builder correction request answering one unresolved issue of a failed inspection. At least one photo or non-empty notes is required.",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, gormDB, err := connectFromConfig(configPath)
			if err != nil {
				return err
			}
			req, err := correction.Submit(gormDB, correction.SubmitOpts{
				PropertyID:   propertyID,
				InspectionID: inspectionID,
				IssueID:      issueID,
				SubmittedBy:  submittedBy,
				Notes:        notes,
				PhotoURLs:    photos,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Submitted correction %s for issue #%d\n", req.ID, req.IssueID)
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "hause.yaml", "path to SystemHause config file")
	cmd.Flags().StringVar(&propertyID, "property", "", "property ID (required)")
	cmd.Flags().StringVar(&inspectionID, "inspection", "", "failed inspection ID (required)")
	cmd.Flags().UintVar(&issueID, "issue", 0, "issue number (required)")
	cmd.Flags().StringVar(&submittedBy, "by", "", "submitting builder")
	cmd.Flags().StringVar(&notes, "notes", "", "remediation notes")
	cmd.Flags().StringArrayVar(&photos, "photo", nil, "evidence photo URL (repeatable)")
	cmd.MarkFlagRequired("property")
	cmd.MarkFlagRequired("inspection")
	cmd.MarkFlagRequired("issue")
	return cmd
}

func newCorrectionListCmd() *cobra.Command {
	var (
		configPath string
		propertyID string
		status     string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List correction requests",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, gormDB, err := connectFromConfig(configPath)
			if err != nil {
				return err
			}

			reqs, err := correction.List(gormDB, correction.ListFilters{
				PropertyID: propertyID,
				Status:     status,
			})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(reqs) == 0 {
				fmt.Fprintln(out, "No correction requests found.")
				return nil
			}

			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tPROPERTY\tINSPECTION\tISSUE\tSTATUS\tSUBMITTED")
			for _, r := range reqs {
				fmt.Fprintf(w, "%s\t%s\t%s\t#%d\t%s\t%s\n",
					r.ID, r.PropertyID, r.InspectionID, r.IssueID, r.Status,
					formatDateTime(r.SubmittedAt))
			}
			w.Flush()
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "hause.yaml", "path to SystemHause config file")
	cmd.Flags().StringVar(&propertyID, "property", "", "filter by property ID")
	cmd.Flags().StringVar(&status, "status", "", "filter by status (pending, approved, rejected)")
	return cmd
}

func newCorrectionShowCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show correction request details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, gormDB, err := connectFromConfig(configPath)
			if err != nil {
				return err
			}

			r, err := correction.Get(gormDB, args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "ID:          %s\n", r.ID)
			fmt.Fprintf(out, "Property:    %s\n", r.PropertyID)
			fmt.Fprintf(out, "Inspection:  %s\n", r.InspectionID)
			fmt.Fprintf(out, "Issue:       #%d\n", r.IssueID)
			fmt.Fprintf(out, "Status:      %s\n", r.Status)
			fmt.Fprintf(out, "Submitted:   %s by %s\n", formatDateTime(r.SubmittedAt), orDash(r.SubmittedBy))
			if r.ReviewedAt != nil {
				fmt.Fprintf(out, "Reviewed:    %s by %s\n", formatDateTime(*r.ReviewedAt), r.ReviewedBy)
			}
			if r.BuilderNotes != "" {
				fmt.Fprintf(out, "\nBuilder notes:\n%s\n", r.BuilderNotes)
			}
			if r.ReviewNotes != "" {
				fmt.Fprintf(out, "\nReview notes:\n%s\n", r.ReviewNotes)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "hause.yaml", "path to SystemHause config file")
	return cmd
}

func newCorrectionReviewCmd() *cobra.Command {
	var (
		configPath string
		decision   string
		reviewer   string
		notes      string
	)

	cmd := &cobra.Command{
		Use:   "review <id>",
		Short: "Review a pending correction request",
		Long:  "Approves or rejects a pending correction request. Approval resolves the issue and books a follow-up inspection one week out. Rejection requires --notes.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, gormDB, err := connectFromConfig(configPath)
			if err != nil {
				return err
			}

			r, err := correction.Review(gormDB, args[0], decision, reviewer, notes, cliFollowUpScheduler(gormDB))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Correction %s %s\n", r.ID, r.Status)
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "hause.yaml", "path to SystemHause config file")
	cmd.Flags().StringVar(&decision, "decision", "", "approve or reject (required)")
	cmd.Flags().StringVar(&reviewer, "reviewer", "", "reviewer ID (required)")
	cmd.Flags().StringVar(&notes, "notes", "", "review notes (required when rejecting)")
	cmd.MarkFlagRequired("decision")
	cmd.MarkFlagRequired("reviewer")
	return cmd
}

func newCorrectionBulkApproveCmd() *cobra.Command {
	var (
		configPath string
		reviewer   string
	)

	cmd := &cobra.Command{
		Use:   "bulk-approve <id>...",
		Short: "Approve multiple pending correction requests",
		Long:  "Approves every still-pending request in the list. Requests already reviewed are skipped.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, gormDB, err := connectFromConfig(configPath)
			if err != nil {
				return err
			}

			approved, err := correction.BulkApprove(gormDB, args, reviewer, cliFollowUpScheduler(gormDB))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Approved %d of %d correction request(s)\n", approved, len(args))
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "hause.yaml", "path to SystemHause config file")
	cmd.Flags().StringVar(&reviewer, "reviewer", "", "reviewer ID (required)")
	cmd.MarkFlagRequired("reviewer")
	return cmd
}
