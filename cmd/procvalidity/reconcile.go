package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	pv "github.com/gofhir/procvalidity"
	"github.com/gofhir/procvalidity/engine"
	"github.com/gofhir/procvalidity/export"
	"github.com/gofhir/procvalidity/loader"
	"github.com/gofhir/procvalidity/scoring"
	"github.com/gofhir/procvalidity/telemetry"
	"github.com/gofhir/procvalidity/worker"
	"github.com/spf13/cobra"
)

// Output formats.
const (
	outputText    = "text"
	outputJSON    = "json"
	outputParquet = "parquet"
)

type reconcileFlags struct {
	output  string
	out     string
	score   bool
	metrics bool
}

// caseOutput is one entry of the JSON output.
type caseOutput struct {
	File   string     `json:"file"`
	Result *pv.Result `json:"result,omitempty"`
	Score  *int       `json:"score,omitempty"`
	Error  string     `json:"error,omitempty"`
}

func reconcileCmd(a *app) *cobra.Command {
	f := &reconcileFlags{}
	cmd := &cobra.Command{
		Use:   "reconcile [bundle.json...]",
		Short: "Reconcile the validity windows of one or more FHIR Bundles",
		Long: `Reads each FHIR Bundle as one case, classifies its procedures and
shortens overlapping validity windows. Use "-" to read a Bundle from stdin.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.reconcile(cmd.Context(), cmd, f, args)
		},
	}

	cmd.Flags().StringVarP(&f.output, "output", "o", outputText, "Output format: text, json, parquet")
	cmd.Flags().StringVar(&f.out, "out", "", "Output file (required for parquet; default stdout)")
	cmd.Flags().BoolVar(&f.score, "score", false, "Compute the day-table score of each case")
	cmd.Flags().BoolVar(&f.metrics, "metrics", false, "Print Prometheus metrics to stderr when done")
	return cmd
}

func (a *app) reconcile(ctx context.Context, cmd *cobra.Command, f *reconcileFlags, files []string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	format := strings.ToLower(f.output)
	switch format {
	case outputText, outputJSON:
	case outputParquet:
		if f.out == "" {
			return fmt.Errorf("--out is required for parquet output")
		}
	default:
		return fmt.Errorf("unknown output format %q", f.output)
	}

	classifier, err := a.cfg.BuildCatalog()
	if err != nil {
		return err
	}
	l, err := loader.New(a.cfg.LoaderOptions()...)
	if err != nil {
		return err
	}

	metrics := pv.NewMetrics()
	opts := append(a.cfg.Options(), pv.WithLogger(a.log), pv.WithSharedMetrics(metrics))
	r, err := engine.New(classifier, opts...)
	if err != nil {
		return err
	}

	// Files that cannot be read still produce a job so errors stay in order.
	jobs := make([]worker.Job, len(files))
	loadErrs := make([]error, len(files))
	for i, file := range files {
		jobs[i].ID = file
		jobs[i].Case, loadErrs[i] = readCase(l, file, cmd.InOrStdin())
		if loadErrs[i] != nil {
			a.log.Error().Err(loadErrs[i]).Str("file", file).Msg("failed to load case")
		}
	}

	batch := worker.NewBatch(func(ctx context.Context, c *pv.Case) (*pv.Result, error) {
		if c == nil {
			return nil, nil
		}
		return r.Reconcile(ctx, c)
	}, a.cfg.Workers).RunJobs(ctx, jobs)

	outputs := make([]caseOutput, len(jobs))
	failed := 0
	for i, jr := range batch.Results {
		o := caseOutput{File: jobs[i].ID, Result: jr.Result}
		err := jr.Err
		if loadErrs[i] != nil {
			err = loadErrs[i]
		}
		if err != nil {
			o.Error = err.Error()
			o.Result = nil
			failed++
			a.log.Warn().Err(err).Str("file", o.File).Msg("case failed")
		} else if f.score {
			req := scoring.NewRequest(jr.Result, a.cfg.ScoringTables(), a.cfg.Scoring.Threshold)
			days, err := scoring.DaysAtOrAbove{}.Score(ctx, req)
			if err != nil {
				return err
			}
			o.Score = &days
		}
		outputs[i] = o
	}

	if err := a.write(cmd.OutOrStdout(), format, f.out, outputs); err != nil {
		return err
	}

	if f.metrics {
		if err := telemetry.WriteText(cmd.ErrOrStderr(), telemetry.NewRegistry(metrics)); err != nil {
			return err
		}
	}

	a.log.Info().Int("cases", len(jobs)).Int("failed", failed).Dur("elapsed", batch.TotalDuration).Msg("done")
	if failed > 0 {
		return fmt.Errorf("%d of %d cases failed", failed, len(jobs))
	}
	return nil
}

func readCase(l *loader.Loader, file string, stdin io.Reader) (*pv.Case, error) {
	if file != "-" {
		return l.LoadFile(file)
	}
	data, err := io.ReadAll(stdin)
	if err != nil {
		return nil, fmt.Errorf("read stdin: %w", err)
	}
	return l.CaseFromBundle(data)
}

func (a *app) write(stdout io.Writer, format, out string, outputs []caseOutput) error {
	if format == outputParquet {
		pw, err := export.CreateParquet(out)
		if err != nil {
			return err
		}
		for _, o := range outputs {
			if o.Result == nil {
				continue
			}
			if err := pw.Write(o.Result); err != nil {
				pw.Close()
				return err
			}
		}
		a.log.Info().Str("file", out).Int("rows", pw.Count()).Msg("parquet written")
		return pw.Close()
	}

	w := stdout
	if out != "" {
		file, err := os.Create(out)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer file.Close()
		w = file
	}

	if format == outputJSON {
		return export.WriteJSON(w, outputs)
	}

	for i, o := range outputs {
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintf(w, "== %s\n", o.File)
		if o.Error != "" {
			fmt.Fprintf(w, "error: %s\n", o.Error)
			continue
		}
		if err := export.WriteText(w, o.Result); err != nil {
			return err
		}
		if o.Score != nil {
			fmt.Fprintf(w, "score: %d days at or above %d\n", *o.Score, a.cfg.Scoring.Threshold)
		}
	}
	return nil
}
