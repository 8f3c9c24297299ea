package main

import (
	"fmt"
	"io"
	"os"

	pv "github.com/gofhir/procvalidity"
	"github.com/gofhir/procvalidity/engine"
	"github.com/gofhir/procvalidity/loader"
	"github.com/gofhir/procvalidity/stream"
	"github.com/spf13/cobra"
)

func streamCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "stream BUNDLE",
		Short: "Reconcile a Bundle whose entries are case Bundles",
		Long: `Reads a Bundle entry by entry; each entry resource must be a Bundle
holding one case. Prints one summary line per case. Use "-" for stdin.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.stream(cmd, args[0])
		},
	}
}

func (a *app) stream(cmd *cobra.Command, file string) error {
	var in io.Reader = cmd.InOrStdin()
	if file != "-" {
		f, err := os.Open(file)
		if err != nil {
			return fmt.Errorf("failed to open %s: %w", file, err)
		}
		defer f.Close()
		in = f
	}

	classifier, err := a.cfg.BuildCatalog()
	if err != nil {
		return err
	}
	l, err := loader.New(a.cfg.LoaderOptions()...)
	if err != nil {
		return err
	}
	r, err := engine.New(classifier, append(a.cfg.Options(), pv.WithLogger(a.log))...)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	results := stream.NewReconciler(l, r.Reconcile).Reconcile(cmd.Context(), in)
	sum := stream.Aggregate(results, func(cr *stream.CaseResult) {
		switch {
		case cr.Index < 0:
			fmt.Fprintf(w, "error: %v\n", cr.Err)
		case cr.Err != nil:
			fmt.Fprintf(w, "%d\t%s\terror: %v\n", cr.Index, cr.CaseID, cr.Err)
		default:
			fmt.Fprintf(w, "%d\t%s\t%d procedures\t%d adjusted\t%d warnings\n", cr.Index, cr.Result.CaseID,
				len(cr.Result.Corrected), len(cr.Result.Adjustments), len(cr.Result.Warnings()))
		}
	})

	fmt.Fprintf(w, "%d cases, %d failed, %d with warnings, %d adjustments\n",
		sum.TotalCases, sum.FailedCases, sum.WithWarnings, sum.Adjustments)
	if sum.HasErrors() {
		return fmt.Errorf("stream finished with %d errors", len(sum.Errors))
	}
	return nil
}
