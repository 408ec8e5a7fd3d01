package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/cmpds-cli/internal/batch"
	"github.com/KaramelBytes/cmpds-cli/internal/dataset"
	"github.com/KaramelBytes/cmpds-cli/internal/report"
)

var (
	bWorkers int
	bQuiet   bool
)

var batchCmd = &cobra.Command{
	Use:   "batch <manifest.yaml>",
	Short: "Run the comparisons listed in a YAML manifest",
	Long: `Run several comparisons concurrently. Each manifest entry names one or two
dataset files, their columns and optionally its own confidence level:

  comparisons:
    - name: v1.1-vs-v1.2
      dataset1: times.txt
      cols: [2, 3]
    - name: nightly
      dataset1: old.csv
      dataset2: new.csv
      cols: [2]
      confidence: 0.99

Results are printed in manifest order. The first failing comparison stops the run.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := effectiveConfig()
		if err != nil {
			return err
		}
		format, err := report.ParseFormat(c.Format)
		if err != nil {
			return err
		}
		m, err := batch.LoadManifest(args[0])
		if err != nil {
			return err
		}
		opt, err := c.CompareOptions()
		if err != nil {
			return err
		}
		dopt := dataset.DefaultOptions()
		dopt.MinValue = c.MinValue

		workers := c.BatchWorkers
		if cmd.Flags().Changed("workers") {
			workers = bWorkers
		}
		if workers < 1 {
			return fmt.Errorf("--workers must be at least 1")
		}
		log, err := newLogger(cmd, c)
		if err != nil {
			return err
		}
		runner := batch.NewRunner(opt, dopt, workers, log)
		if !bQuiet {
			fmt.Fprintf(cmd.ErrOrStderr(), "Running %d comparisons with %d workers\n", len(m.Comparisons), workers)
		}
		items, err := runner.Run(cmd.Context(), m)
		if err != nil {
			return err
		}

		reports := make([]*report.Report, 0, len(items))
		for _, it := range items {
			report.LogSkipped(log, it.A)
			report.LogSkipped(log, it.B)
			r, err := report.New(it.Result, it.A, it.B)
			if err != nil {
				return fmt.Errorf("%s: %w", it.Comparison.Name, err)
			}
			r.Name = it.Comparison.Name
			reports = append(reports, r)
		}
		out, err := report.RenderAll(reports, format)
		if err != nil {
			return err
		}
		if !bQuiet {
			fmt.Fprintf(cmd.ErrOrStderr(), "✓ %d comparisons, %d datasets read\n", len(items), runner.Reads())
		}
		return emit(cmd, out)
	},
}

func init() {
	rootCmd.AddCommand(batchCmd)
	batchCmd.Flags().IntVar(&bWorkers, "workers", 0, "concurrent comparisons (overrides batch_workers)")
	batchCmd.Flags().BoolVar(&bQuiet, "quiet", false, "suppress progress lines on stderr")
}
