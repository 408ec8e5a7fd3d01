package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"strconv"

	"github.com/spf13/cobra"

	cfgpkg "github.com/KaramelBytes/cmpds-cli/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or set cmpds configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg == nil {
			fmt.Fprintln(cmd.OutOrStdout(), "No config loaded")
			return nil
		}
		w := cmd.OutOrStdout()
		fmt.Fprintf(w, "confidence: %g\n", cfg.Confidence)
		fmt.Fprintf(w, "snd_threshold: %d\n", cfg.SNDThreshold)
		fmt.Fprintf(w, "tolerance: %g\n", cfg.Tolerance)
		fmt.Fprintf(w, "lower_bound: %g\n", cfg.LowerBound)
		fmt.Fprintf(w, "upper_bound: %g\n", cfg.UpperBound)
		fmt.Fprintf(w, "max_iterations: %d\n", cfg.MaxIterations)
		fmt.Fprintf(w, "integration: %s\n", cfg.Integration)
		fmt.Fprintf(w, "intervals: %d\n", cfg.Intervals)
		fmt.Fprintf(w, "legendre_points: %d\n", cfg.LegendrePoints)
		fmt.Fprintf(w, "min_value: %g\n", cfg.MinValue)
		fmt.Fprintf(w, "format: %s\n", cfg.Format)
		fmt.Fprintf(w, "batch_workers: %d\n", cfg.BatchWorkers)
		fmt.Fprintf(w, "log_format: %s\n", cfg.LogFormat)
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a config value and save to disk",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, val := args[0], args[1]
		// Save the file contents, not values overridden by flags.
		c, err := cfgpkg.Load(cfgFile)
		switch {
		case cfgFile != "" && errors.Is(err, fs.ErrNotExist):
			// set creates the file --config names
			c = cfgpkg.Defaults()
		case err != nil:
			return err
		}
		switch key {
		case "confidence", "tolerance", "lower_bound", "upper_bound", "min_value":
			f, err := strconv.ParseFloat(val, 64)
			if err != nil {
				return fmt.Errorf("invalid float for %s: %v", key, val)
			}
			switch key {
			case "confidence":
				c.Confidence = f
			case "tolerance":
				c.Tolerance = f
			case "lower_bound":
				c.LowerBound = f
			case "upper_bound":
				c.UpperBound = f
			case "min_value":
				c.MinValue = f
			}
		case "snd_threshold", "max_iterations", "intervals", "legendre_points", "batch_workers":
			i, err := strconv.Atoi(val)
			if err != nil {
				return fmt.Errorf("invalid int for %s: %v", key, val)
			}
			switch key {
			case "snd_threshold":
				c.SNDThreshold = i
			case "max_iterations":
				c.MaxIterations = i
			case "intervals":
				c.Intervals = i
			case "legendre_points":
				c.LegendrePoints = i
			case "batch_workers":
				c.BatchWorkers = i
			}
		case "integration":
			c.Integration = val
		case "format":
			c.Format = val
		case "log_format":
			c.LogFormat = val
		default:
			return fmt.Errorf("unknown key: %s", key)
		}
		if err := c.Validate(); err != nil {
			return fmt.Errorf("invalid %s: %w", key, err)
		}
		if err := cfgpkg.Save(c, cfgFile); err != nil {
			return err
		}
		cfg = c
		fmt.Fprintln(cmd.OutOrStdout(), "Saved config")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}
