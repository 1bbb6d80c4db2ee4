package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/KaramelBytes/tabprofile/internal/charts"
	"github.com/KaramelBytes/tabprofile/internal/utils"
	"github.com/spf13/cobra"
)

var (
	chInput      inputFlags
	chReportType string
	chKinds      string
	chBins       int
	chOutputDir  string
	chData       bool
)

var chartsCmd = &cobra.Command{
	Use:   "charts <file>",
	Short: "Render the charts of a report type (or --kinds) to PNG files",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		c := currentConfig()
		reportType := c.ReportType
		if chReportType != "" {
			reportType = chReportType
		}
		kinds := charts.DefaultKinds(reportType)
		if chKinds != "" {
			ks, err := charts.ParseKinds(chKinds)
			if err != nil {
				return err
			}
			kinds = ks
		}
		bins := c.HistogramBins
		if chBins > 0 {
			bins = chBins
		}
		dir := chOutputDir
		if dir == "" {
			dir = c.OutputDir
		}
		if dir == "" {
			dir = "charts"
		}

		cleaned, rep, err := profileFile(path, &chInput)
		if err != nil {
			return err
		}
		results := charts.Build(cleaned, rep, kinds, charts.Options{Bins: bins, Logger: &log})
		paths, err := charts.SaveAll(results, dir, reportType)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		failed := 0
		for _, r := range results {
			if r.Err != nil {
				failed++
				fmt.Fprintf(out, "✗ %s: %v\n", r.Kind, r.Err)
				continue
			}
			fmt.Fprintf(out, "✓ %s → %s\n", r.Kind, paths[r.Kind])
		}
		if chData {
			data := make(map[string]*charts.Chart, len(results))
			for _, r := range results {
				if r.Chart != nil && r.Err == nil {
					data[r.Kind.String()] = r.Chart
				}
			}
			b, err := utils.PrettyJSON(data)
			if err != nil {
				return err
			}
			target := filepath.Join(dir, fmt.Sprintf("charts_%s.json", reportType))
			if err := utils.SafeWriteFile(target, b); err != nil {
				return fmt.Errorf("write chart data: %w", err)
			}
			fmt.Fprintf(out, "✓ chart data → %s\n", target)
		}
		if failed == len(results) && failed > 0 {
			return fmt.Errorf("no chart could be generated for %s", filepath.Base(path))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(chartsCmd)
	chInput.register(chartsCmd.Flags())
	chartsCmd.Flags().StringVar(&chReportType, "report-type", "", "product_level_evaluation|variable_level_evaluation|comparative_analysis (default from config)")
	chartsCmd.Flags().StringVar(&chKinds, "kinds", "", "comma-separated chart kinds, overrides the report type's defaults")
	chartsCmd.Flags().IntVar(&chBins, "bins", 0, "histogram bins (0 = config histogram_bins)")
	chartsCmd.Flags().StringVarP(&chOutputDir, "output", "o", "", "directory for PNG files (default: config output_dir, else ./charts)")
	chartsCmd.Flags().BoolVar(&chData, "data", false, "also write the prepared chart data as JSON")
}
