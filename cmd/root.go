package cmd

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	cfgpkg "github.com/KaramelBytes/cmpds-cli/internal/config"
	"github.com/KaramelBytes/cmpds-cli/internal/dataset"
	"github.com/KaramelBytes/cmpds-cli/internal/logging"
	"github.com/KaramelBytes/cmpds-cli/internal/report"
	"github.com/KaramelBytes/cmpds-cli/internal/stats"
	"github.com/KaramelBytes/cmpds-cli/internal/utils"
)

// Version is stamped at build time with -ldflags "-X".
var Version = "0.3.0"

var (
	// Global flags
	cfgFile   string
	verbosity int
	outFile   string

	// Comparison flags (override config if set)
	flagConfidence   float64
	flagSNDThreshold int
	flagInternal     string
	flagIntegration  string
	flagIntervals    int
	flagFormat       string
	flagLogFormat    string

	// Dataset flags
	flagCols    []int
	flagSheet   string
	flagDecimal string

	// Loaded configuration
	cfg    *cfgpkg.Global
	cfgErr error
)

var rootCmd = &cobra.Command{
	Use:   "cmpds [flags] <DATASET-1> [<DATASET-2>]",
	Short: "Decide whether two datasets differ at a given confidence level",
	Long: `cmpds compares the means of two unpaired datasets of positive measurements,
such as run times of two program versions, and reports whether dataset-2 is
smaller than, larger than, or not significantly different from dataset-1.

The critical value is computed by integrating the standard normal or Student-t
density and bisecting for the requested mass; no lookup tables are used.

With a single file both datasets are read from it, using the two columns
given by --cols. "-" reads whitespace-separated text from standard input.

Example:
  cmpds -k 2,3 times.txt
  cmpds -c 0.99 -k 3 old.txt new.txt`,
	Args:          cobra.RangeArgs(1, 2),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runCompare,
}

// Execute is the entry point called by main.main()
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "✗ Error:", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(loadConfig)
	rootCmd.Version = Version
	rootCmd.SetVersionTemplate("cmpds v{{.Version}}\n")

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (default is ~/.cmpds/config.yaml)")
	pf.CountVarP(&verbosity, "verbose", "v", "increase verbosity (-v intermediates, -vv solver trace)")
	pf.StringVarP(&outFile, "output", "o", "", "write the result to a file instead of stdout")
	pf.Float64VarP(&flagConfidence, "conf", "c", 0, "confidence level in (0,1) (overrides config, default 0.95)")
	pf.IntVarP(&flagSNDThreshold, "snd-threshold", "s", 0, "use the standard normal distribution above this many degrees of freedom (min 30)")
	pf.StringVar(&flagInternal, "internal", "", "solver knobs TOL,LOWER,UPPER,ITERS (overrides config)")
	pf.StringVar(&flagIntegration, "integration", "", "integration rule: simpson, trapezoid or legendre")
	pf.IntVar(&flagIntervals, "intervals", 0, "intervals (simpson, trapezoid) or points (legendre) of the integration rule")
	pf.StringVar(&flagFormat, "format", "", "output format: text, json or yaml")
	pf.StringVar(&flagLogFormat, "log-format", "", "format of -v diagnostics on stderr: text or json")

	f := rootCmd.Flags()
	f.BoolP("version", "V", false, "print the version and exit")
	f.IntSliceVarP(&flagCols, "cols", "k", nil, "1-based columns of dataset-1 and dataset-2 (default 1,1)")
	f.StringVar(&flagSheet, "sheet", "", "worksheet to read from .xlsx datasets (default first sheet)")
	f.StringVar(&flagDecimal, "decimal", ".", "decimal separator of the datasets: . or ,")
}

func loadConfig() {
	cfgErr = nil
	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		if cfgFile != "" {
			// An explicit --config must load; comparisons fail with this error.
			cfg, cfgErr = cfgpkg.Defaults(), err
			return
		}
		// Non-fatal: fall back to built-in defaults
		fmt.Fprintf(os.Stderr, "⚠ Warning: failed to load config: %v\n", err)
		c = cfgpkg.Defaults()
	}
	cfg = c
	cfgErr = applyOverrides(cfg)
}

// applyOverrides copies every flag the user set onto c.
func applyOverrides(c *cfgpkg.Global) error {
	f := rootCmd.PersistentFlags()
	if f.Changed("conf") {
		c.Confidence = flagConfidence
	}
	if f.Changed("snd-threshold") {
		c.SNDThreshold = flagSNDThreshold
	}
	if f.Changed("integration") {
		c.Integration = flagIntegration
	}
	if f.Changed("intervals") {
		c.SetIntegrationSize(flagIntervals)
	}
	if f.Changed("format") {
		c.Format = flagFormat
	}
	if f.Changed("log-format") {
		c.LogFormat = flagLogFormat
	}
	if f.Changed("internal") {
		return parseInternal(flagInternal, c)
	}
	return nil
}

// parseInternal reads TOL,LOWER,UPPER,ITERS into c.
func parseInternal(s string, c *cfgpkg.Global) error {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return fmt.Errorf("--internal expects TOL,LOWER,UPPER,ITERS, got %q", s)
	}
	vals := make([]float64, 3)
	for i, p := range parts[:3] {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return fmt.Errorf("--internal: invalid number %q: %w", p, err)
		}
		vals[i] = v
	}
	iters, err := strconv.Atoi(strings.TrimSpace(parts[3]))
	if err != nil {
		return fmt.Errorf("--internal: invalid iteration count %q: %w", parts[3], err)
	}
	c.Tolerance, c.LowerBound, c.UpperBound, c.MaxIterations = vals[0], vals[1], vals[2], iters
	return nil
}

// effectiveConfig returns the loaded configuration with flag overrides,
// validated.
func effectiveConfig() (*cfgpkg.Global, error) {
	if cfgErr != nil {
		return nil, cfgErr
	}
	if cfg == nil {
		return nil, fmt.Errorf("no configuration loaded")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newLogger(cmd *cobra.Command, c *cfgpkg.Global) (*slog.Logger, error) {
	asJSON, err := c.JSONLogs()
	if err != nil {
		return nil, err
	}
	return logging.NewWithConfig(cmd.ErrOrStderr(), logging.Config{Verbosity: verbosity, JSON: asJSON}), nil
}

func runCompare(cmd *cobra.Command, args []string) error {
	c, err := effectiveConfig()
	if err != nil {
		return err
	}
	log, err := newLogger(cmd, c)
	if err != nil {
		return err
	}
	format, err := report.ParseFormat(c.Format)
	if err != nil {
		return err
	}
	opt, err := c.CompareOptions()
	if err != nil {
		return err
	}
	opt.Trace = verbosity >= 2

	colA, colB, err := columns(flagCols)
	if err != nil {
		return err
	}
	dopt := dataset.DefaultOptions()
	dopt.MinValue = c.MinValue
	dopt.Sheet = flagSheet
	switch flagDecimal {
	case ".", "":
		dopt.DecimalSeparator = '.'
	case ",":
		dopt.DecimalSeparator = ','
	default:
		return fmt.Errorf("unsupported --decimal: %s (use . or ,)", flagDecimal)
	}

	pathA := args[0]
	pathB := pathA
	if len(args) == 2 {
		pathB = args[1]
	}
	a, b, err := readPair(pathA, colA, pathB, colB, dopt)
	if err != nil {
		return err
	}
	report.LogSkipped(log, a)
	report.LogSkipped(log, b)

	res, err := stats.Compare(a.Values, b.Values, opt)
	if err != nil {
		return err
	}
	report.Log(log, res)

	r, err := report.New(res, a, b)
	if err != nil {
		return err
	}
	out, err := r.Render(format)
	if err != nil {
		return err
	}
	return emit(cmd, out)
}

// columns expands --cols: none means 1,1 and a single column applies to both.
func columns(cols []int) (int, int, error) {
	var a, b int
	switch len(cols) {
	case 0:
		a, b = 1, 1
	case 1:
		a, b = cols[0], cols[0]
	case 2:
		a, b = cols[0], cols[1]
	default:
		return 0, 0, fmt.Errorf("--cols takes one or two columns, got %d", len(cols))
	}
	if a < 1 || b < 1 {
		return 0, 0, dataset.ErrBadColumn
	}
	return a, b, nil
}

// readPair loads both datasets. A source named twice is read once, so a
// single file or standard input can supply both columns.
func readPair(pathA string, colA int, pathB string, colB int, opt dataset.Options) (*dataset.Dataset, *dataset.Dataset, error) {
	optA, optB := opt, opt
	optA.Column, optB.Column = colA, colB
	if pathA != pathB {
		a, err := dataset.ReadFile(pathA, optA)
		if err != nil {
			return nil, nil, err
		}
		b, err := dataset.ReadFile(pathB, optB)
		if err != nil {
			return nil, nil, err
		}
		return a, b, nil
	}

	var raw []byte
	var err error
	if pathA == dataset.Stdin {
		raw, err = io.ReadAll(os.Stdin)
	} else {
		raw, err = os.ReadFile(pathA)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("could not read file: %s: %w", pathA, err)
	}
	rd := dataset.ReaderFor(pathA)
	a, err := dataset.Load(bytes.NewReader(raw), pathA, rd, optA)
	if err != nil {
		return nil, nil, err
	}
	b, err := dataset.Load(bytes.NewReader(raw), pathA, rd, optB)
	if err != nil {
		return nil, nil, err
	}
	return a, b, nil
}

// emit writes out to --output when set, otherwise to the command's stdout.
func emit(cmd *cobra.Command, out []byte) error {
	if outFile == "" {
		_, err := cmd.OutOrStdout().Write(out)
		return err
	}
	if err := utils.SafeWriteFile(outFile, out); err != nil {
		return err
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "✓ Wrote %s\n", outFile)
	return nil
}
