package cmd

import (
	"fmt"

	"github.com/KaramelBytes/tabprofile/internal/export"
	"github.com/KaramelBytes/tabprofile/internal/utils"
	"github.com/spf13/cobra"
)

var (
	anaInput      inputFlags
	anaFormat     string
	anaOutputPath string
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <file>",
	Short: "Profile a CSV/TSV/XLSX file and print or write the report",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		c := currentConfig()
		format := c.OutputFormat
		if anaFormat != "" {
			format = anaFormat
		}
		f, err := export.ParseFormat(format)
		if err != nil {
			return err
		}
		_, rep, err := profileFile(path, &anaInput)
		if err != nil {
			return err
		}

		// Decide where to write: --output path, configured output_dir, or stdout
		out := anaOutputPath
		if out == "" && c.OutputDir != "" {
			out = utils.ReportPath(path, c.OutputDir, f.Ext())
		}
		if out != "" {
			if err := export.WriteFile(rep, f, out); err != nil {
				return fmt.Errorf("write output: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Wrote %s profile to %s\n", f, out)
			return nil
		}
		b, err := export.Encode(rep, f)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(b))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
	anaInput.register(analyzeCmd.Flags())
	analyzeCmd.Flags().StringVarP(&anaFormat, "format", "f", "", "output format: markdown|json|yaml (default from config)")
	analyzeCmd.Flags().StringVarP(&anaOutputPath, "output", "o", "", "optional path to write the report")
}
