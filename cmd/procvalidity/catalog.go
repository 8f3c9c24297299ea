package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/gofhir/procvalidity/catalog"
	"github.com/spf13/cobra"
)

func catalogCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Inspect the classification catalog",
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List catalog entries in priority order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			classifier, err := a.cfg.BuildCatalog()
			if err != nil {
				return err
			}

			var cat *catalog.Catalog
			switch c := classifier.(type) {
			case *catalog.Catalog:
				cat = c
			case *catalog.Cached:
				cat, _ = c.Inner().(*catalog.Catalog)
			}
			if cat == nil {
				return fmt.Errorf("catalog cannot be listed")
			}

			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "catalog %s (%d entries)\n", cat.Version(), cat.Len())
			tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "SET\tTYPE\tGROUP\tDAYS\tCODES\t")
			for _, e := range cat.Entries() {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\t\n", e.ValiditySet, e.TreatmentType, e.ValidityGroup,
					e.DefaultValidityDays, strings.Join(e.Codes(), ","))
			}
			return tw.Flush()
		},
	}

	classifyCmd := &cobra.Command{
		Use:   "classify CODE...",
		Short: "Show the classification of procedure codes",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			classifier, err := a.cfg.BuildCatalog()
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			for _, code := range args {
				e := classifier.Classify(code)
				if e.IsUnclassified() {
					fmt.Fprintf(w, "%s\tunclassified\t%d day\n", code, e.DefaultValidityDays)
					continue
				}
				fmt.Fprintf(w, "%s\t%s/%s/%s\t%d days\n", code, e.ValiditySet, e.TreatmentType, e.ValidityGroup,
					e.DefaultValidityDays)
			}
			return nil
		},
	}

	cmd.AddCommand(listCmd)
	cmd.AddCommand(classifyCmd)
	return cmd
}
