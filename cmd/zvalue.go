package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/KaramelBytes/cmpds-cli/internal/report"
	"github.com/KaramelBytes/cmpds-cli/internal/stats"
	"github.com/KaramelBytes/cmpds-cli/internal/utils"
)

var zvDOF float64

var zvalueCmd = &cobra.Command{
	Use:   "zvalue",
	Short: "Print the two-tailed critical value for a confidence level",
	Long: `Solve for the critical value z such that the central area of the standard
normal (or Student-t with --dof degrees of freedom) density equals the
confidence level. Degrees of freedom above the SND threshold use the normal.

Example:
  cmpds zvalue -c 0.95
  cmpds zvalue -c 0.99 --dof 16.75`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := effectiveConfig()
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
		ctx := stats.ComparisonContext{
			EffectiveDOF:           zvDOF,
			UseNormalApproximation: zvDOF <= 0 || zvDOF > float64(c.SNDThreshold),
		}
		sol, err := stats.Solve(opt.Request(ctx))
		if err != nil {
			return err
		}
		log, err := newLogger(cmd, c)
		if err != nil {
			return err
		}
		report.LogSolution(log, sol)

		var out []byte
		switch format {
		case report.FormatJSON:
			b, err := utils.PrettyJSON(sol)
			if err != nil {
				return err
			}
			out = append(b, '\n')
		case report.FormatYAML:
			if out, err = yaml.Marshal(sol); err != nil {
				return fmt.Errorf("marshal yaml: %w", err)
			}
		default:
			out = []byte(fmt.Sprintf("%.6f\n", sol.Z))
		}
		return emit(cmd, out)
	},
}

func init() {
	rootCmd.AddCommand(zvalueCmd)
	zvalueCmd.Flags().Float64Var(&zvDOF, "dof", 0, "degrees of freedom of the Student-t density (omit for the standard normal)")
}
