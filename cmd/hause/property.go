package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"github.com/systemhause/hause/internal/activity"
	"github.com/systemhause/hause/internal/property"
)

func newPropertyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "property",
		Short: "Property registry commands",
	}

	cmd.AddCommand(newPropertyRegisterCmd())
	cmd.AddCommand(newPropertyListCmd())
	cmd.AddCommand(newPropertyShowCmd())
	cmd.AddCommand(newPropertyUpdateCmd())
	cmd.AddCommand(newPropertySummaryCmd())
	cmd.AddCommand(newPropertyDocCmd())
	cmd.AddCommand(newPropertyPhotoCmd())
	return cmd
}

func newPropertyRegisterCmd() *cobra.Command {
	var (
		configPath   string
		address      string
		community    string
		planNumber   string
		builderID    string
		contactName  string
		contactPhone string
		notes        string
		closing      string
	)

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Register a new property",
		Long:  "Registers a property at stage pre-rock with an auto-generated ID.",
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := property.RegisterOpts{
				Address:      address,
				Community:    community,
				PlanNumber:   planNumber,
				BuilderID:    builderID,
				ContactName:  contactName,
				ContactPhone: contactPhone,
				Notes:        notes,
			}
			if closing != "" {
				t, err := time.Parse("2006-01-02", closing)
				if err != nil {
					return fmt.Errorf("--closing must be YYYY-MM-DD: %w", err)
				}
				opts.ClosingDate = &t
			}
			return runPropertyRegister(cmd, configPath, opts)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "hause.yaml", "path to SystemHause config file")
	cmd.Flags().StringVar(&address, "address", "", "street address (required)")
	cmd.Flags().StringVar(&community, "community", "", "community name (required)")
	cmd.Flags().StringVar(&planNumber, "plan", "", "plan number")
	cmd.Flags().StringVar(&builderID, "builder", "", "builder ID")
	cmd.Flags().StringVar(&contactName, "contact", "", "site contact name")
	cmd.Flags().StringVar(&contactPhone, "phone", "", "site contact phone")
	cmd.Flags().StringVar(&notes, "notes", "", "free-form notes")
	cmd.Flags().StringVar(&closing, "closing", "", "closing date (YYYY-MM-DD)")
	cmd.MarkFlagRequired("address")
	cmd.MarkFlagRequired("community")
	return cmd
}

func runPropertyRegister(cmd *cobra.Command, configPath string, opts property.RegisterOpts) error {
	_, gormDB, err := connectFromConfig(configPath)
	if err != nil {
		return err
	}

	prop, err := property.Register(gormDB, opts)
	if err != nil {
		return err
	}
	activity.Record(gormDB, prop.ID, activity.KindPropertyRegistered, opts.ContactName,
		"property registered at "+prop.Address, "")

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Registered property %s\n", prop.ID)
	fmt.Fprintf(out, "Stage: %s, Status: %s\n", prop.Stage, prop.Status)
	return nil
}

func newPropertyListCmd() *cobra.Command {
	var (
		configPath string
		community  string
		stage      string
		status     string
		builderID  string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List properties",
		Long:  "Lists properties with optional filters. Output is formatted as a table.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPropertyList(cmd, configPath, property.ListFilters{
				Community: community,
				Stage:     stage,
				Status:    status,
				BuilderID: builderID,
			})
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "hause.yaml", "path to SystemHause config file")
	cmd.Flags().StringVar(&community, "community", "", "filter by community")
	cmd.Flags().StringVar(&stage, "stage", "", "filter by stage")
	cmd.Flags().StringVar(&status, "status", "", "filter by status")
	cmd.Flags().StringVar(&builderID, "builder", "", "filter by builder ID")
	return cmd
}

func runPropertyList(cmd *cobra.Command, configPath string, filters property.ListFilters) error {
	_, gormDB, err := connectFromConfig(configPath)
	if err != nil {
		return err
	}

	props, err := property.List(gormDB, filters)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(props) == 0 {
		fmt.Fprintln(out, "No properties found.")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tADDRESS\tCOMMUNITY\tSTAGE\tSTATUS\tCLOSING")
	for _, p := range props {
		closing := "-"
		if p.ClosingDate != nil {
			closing = formatDate(*p.ClosingDate)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			p.ID, truncate(p.Address, 32), p.Community, p.Stage, p.Status, closing)
	}
	w.Flush()
	return nil
}

func newPropertyShowCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show property details",
		Long:  "Displays a property with its inspection history, issues, documents, and photos.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPropertyShow(cmd, configPath, args[0])
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "hause.yaml", "path to SystemHause config file")
	return cmd
}

func runPropertyShow(cmd *cobra.Command, configPath, id string) error {
	_, gormDB, err := connectFromConfig(configPath)
	if err != nil {
		return err
	}

	p, err := property.Get(gormDB, id)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "ID:         %s\n", p.ID)
	fmt.Fprintf(out, "Address:    %s\n", p.Address)
	fmt.Fprintf(out, "Community:  %s\n", p.Community)
	if p.PlanNumber != "" {
		fmt.Fprintf(out, "Plan:       %s\n", p.PlanNumber)
	}
	if p.BuilderID != "" {
		fmt.Fprintf(out, "Builder:    %s\n", p.BuilderID)
	}
	fmt.Fprintf(out, "Stage:      %s\n", p.Stage)
	fmt.Fprintf(out, "Status:     %s\n", p.Status)
	if p.ClosingDate != nil {
		fmt.Fprintf(out, "Closing:    %s\n", formatDate(*p.ClosingDate))
	}
	if p.ContactName != "" {
		fmt.Fprintf(out, "Contact:    %s %s\n", p.ContactName, p.ContactPhone)
	}
	fmt.Fprintf(out, "Created:    %s\n", formatDateTime(p.CreatedAt))

	if p.Notes != "" {
		fmt.Fprintf(out, "\nNotes:\n%s\n", p.Notes)
	}

	if len(p.Inspections) > 0 {
		fmt.Fprintln(out, "\nInspections:")
		w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "  ID\tTYPE\tSTATUS\tSCHEDULED\tINSPECTOR\tISSUES")
		for _, ins := range p.Inspections {
			fmt.Fprintf(w, "  %s\t%s\t%s\t%s\t%s\t%d\n",
				ins.ID, ins.Type, ins.Status, formatDateTime(ins.ScheduledAt),
				orDash(ins.InspectorName), len(ins.Issues))
		}
		w.Flush()
	}

	if len(p.Documents) > 0 {
		fmt.Fprintln(out, "\nDocuments:")
		for _, d := range p.Documents {
			fmt.Fprintf(out, "  [%s] %s %s\n", d.Kind, d.Name, d.URL)
		}
	}

	if len(p.Photos) > 0 {
		fmt.Fprintf(out, "\nPhotos: %d\n", len(p.Photos))
	}

	return nil
}

func newPropertyUpdateCmd() *cobra.Command {
	var (
		configPath   string
		contactName  string
		contactPhone string
		notes        string
		closing      string
	)

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update a property",
		Long:  "Updates property contact fields and notes. Stage and status are derived from inspections and cannot be set.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			updates := make(map[string]interface{})

			if cmd.Flags().Changed("contact") {
				updates["contact_name"] = contactName
			}
			if cmd.Flags().Changed("phone") {
				updates["contact_phone"] = contactPhone
			}
			if cmd.Flags().Changed("notes") {
				updates["notes"] = notes
			}
			if cmd.Flags().Changed("closing") {
				t, err := time.Parse("2006-01-02", closing)
				if err != nil {
					return fmt.Errorf("--closing must be YYYY-MM-DD: %w", err)
				}
				updates["closing_date"] = t
			}

			if len(updates) == 0 {
				return fmt.Errorf("no fields to update; use --contact, --phone, --notes, or --closing")
			}

			_, gormDB, err := connectFromConfig(configPath)
			if err != nil {
				return err
			}
			if err := property.Update(gormDB, args[0], updates); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated property %s\n", args[0])
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "hause.yaml", "path to SystemHause config file")
	cmd.Flags().StringVar(&contactName, "contact", "", "new contact name")
	cmd.Flags().StringVar(&contactPhone, "phone", "", "new contact phone")
	cmd.Flags().StringVar(&notes, "notes", "", "new notes")
	cmd.Flags().StringVar(&closing, "closing", "", "new closing date (YYYY-MM-DD)")
	return cmd
}

func newPropertySummaryCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Show property counts by stage",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, gormDB, err := connectFromConfig(configPath)
			if err != nil {
				return err
			}

			summary, err := property.StageSummary(gormDB)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(summary) == 0 {
				fmt.Fprintln(out, "No properties registered.")
				return nil
			}

			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "STAGE\tCOUNT")
			for _, sc := range summary {
				fmt.Fprintf(w, "%s\t%d\n", sc.Stage, sc.Count)
			}
			w.Flush()
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "hause.yaml", "path to SystemHause config file")
	return cmd
}

func newPropertyDocCmd() *cobra.Command {
	var (
		configPath string
		name       string
		kind       string
		url        string
		uploadedBy string
	)

	cmd := &cobra.Command{
		Use:   "doc <property-id>",
		Short: "Attach a document to a property",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, gormDB, err := connectFromConfig(configPath)
			if err != nil {
				return err
			}
			doc, err := property.AddDocument(gormDB, args[0], name, kind, url, uploadedBy)
			if err != nil {
				return err
			}
			activity.Record(gormDB, args[0], activity.KindDocumentAdded, uploadedBy,
				"document added: "+name, url)
			fmt.Fprintf(cmd.OutOrStdout(), "Added %s document %q to %s\n", doc.Kind, doc.Name, args[0])
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "hause.yaml", "path to SystemHause config file")
	cmd.Flags().StringVar(&name, "name", "", "document name (required)")
	cmd.Flags().StringVar(&kind, "kind", "report", "document kind (report, certificate, permit)")
	cmd.Flags().StringVar(&url, "url", "", "storage URL (required)")
	cmd.Flags().StringVar(&uploadedBy, "by", "", "uploader name")
	cmd.MarkFlagRequired("name")
	cmd.MarkFlagRequired("url")
	return cmd
}

func newPropertyPhotoCmd() *cobra.Command {
	var (
		configPath string
		url        string
		caption    string
	)

	cmd := &cobra.Command{
		Use:   "photo <property-id>",
		Short: "Attach a photo to a property",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, gormDB, err := connectFromConfig(configPath)
			if err != nil {
				return err
			}
			if _, err := property.AddPhoto(gormDB, args[0], url, caption); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added photo to %s\n", args[0])
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "hause.yaml", "path to SystemHause config file")
	cmd.Flags().StringVar(&url, "url", "", "photo URL (required)")
	cmd.Flags().StringVar(&caption, "caption", "", "photo caption")
	cmd.MarkFlagRequired("url")
	return cmd
}
