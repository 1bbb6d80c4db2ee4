package cmd

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/KaramelBytes/tabprofile/internal/export"
	"github.com/KaramelBytes/tabprofile/internal/loader"
	"github.com/KaramelBytes/tabprofile/internal/utils"
	"github.com/gobwas/glob"
	"github.com/spf13/cobra"
)

var (
	abInput     inputFlags
	abFormat    string
	abOutputDir string
	abQuiet     bool
)

var analyzeBatchCmd = &cobra.Command{
	Use:   "analyze-batch <files...>",
	Short: "Profile multiple CSV/TSV/XLSX files and write one report per file",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		files, err := expandInputs(args)
		if err != nil {
			return err
		}
		if len(files) == 0 {
			return fmt.Errorf("no input files matched")
		}
		c := currentConfig()
		format := c.OutputFormat
		if abFormat != "" {
			format = abFormat
		}
		f, err := export.ParseFormat(format)
		if err != nil {
			return err
		}
		outDir := abOutputDir
		if outDir == "" {
			outDir = c.OutputDir
		}

		out := cmd.OutOrStdout()
		written := map[string]struct{}{}
		var failed []string
		total := len(files)
		for i, path := range files {
			if !abQuiet {
				fmt.Fprintf(out, "[%d/%d] Processing %s...\n", i+1, total, filepath.Base(path))
			}
			_, rep, err := profileFile(path, &abInput)
			if err != nil {
				// One unreadable file does not stop the batch
				log.Error().Err(err).Str("file", path).Msg("profile failed")
				if !abQuiet {
					fmt.Fprintf(out, "✗ %s: %v\n", filepath.Base(path), err)
				}
				failed = append(failed, path)
				continue
			}
			target := uniquePath(utils.ReportPath(path, outDir, f.Ext()), written)
			if err := export.WriteFile(rep, f, target); err != nil {
				return fmt.Errorf("write output: %w", err)
			}
			written[target] = struct{}{}
			if !abQuiet {
				fmt.Fprintf(out, "✓ Wrote %s\n", target)
			}
		}
		if len(failed) > 0 {
			return fmt.Errorf("%d of %d files failed: %s", len(failed), total, strings.Join(failed, ", "))
		}
		return nil
	},
}

// expandInputs resolves globs, keeps literal paths that exist and drops
// duplicates. Glob matches the loader cannot read are skipped. Patterns containing "**" are matched recursively. The result
// is sorted.
func expandInputs(args []string) ([]string, error) {
	var files []string
	seen := map[string]struct{}{}
	for _, arg := range args {
		var matches []string
		if strings.Contains(arg, "**") {
			m, err := walkGlob(arg)
			if err != nil {
				return nil, err
			}
			matches = m
		} else {
			matches, _ = filepath.Glob(arg)
		}
		if len(matches) == 0 {
			// treat as literal path if exists
			if _, err := os.Stat(arg); err == nil {
				matches = []string{arg}
			}
		}
		isPattern := strings.ContainsAny(arg, "*?[{")
		for _, m := range matches {
			if _, ok := seen[m]; ok {
				continue
			}
			// explicit paths still reach the loader and fail loudly
			if isPattern && !loader.Supported(m) {
				log.Debug().Str("file", m).Msg("skipping unsupported file")
				continue
			}
			seen[m] = struct{}{}
			files = append(files, m)
		}
	}
	sort.Strings(files)
	return files, nil
}

// walkGlob walks the static prefix of pattern and returns the regular files
// matching it. "*" stays within one path segment, "**" crosses segments.
func walkGlob(pattern string) ([]string, error) {
	slashed := filepath.ToSlash(pattern)
	g, err := glob.Compile(slashed, '/')
	if err != nil {
		return nil, fmt.Errorf("invalid pattern %q: %w", pattern, err)
	}
	root := "."
	if i := strings.IndexAny(slashed, "*?[{"); i > 0 {
		if j := strings.LastIndex(slashed[:i], "/"); j >= 0 {
			root = slashed[:j]
			if root == "" {
				root = "/"
			}
		}
	}
	var out []string
	err = filepath.WalkDir(filepath.FromSlash(root), func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			return nil
		}
		p := filepath.ToSlash(path)
		if root == "." && !strings.HasPrefix(slashed, "./") {
			p = strings.TrimPrefix(p, "./")
		}
		if g.Match(p) {
			out = append(out, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", root, err)
	}
	return out, nil
}

// uniquePath appends __2, __3, ... before the extension when path was
// already written in this run, so same-named inputs from different
// directories do not overwrite each other.
func uniquePath(path string, taken map[string]struct{}) string {
	if _, ok := taken[path]; !ok {
		return path
	}
	ext := filepath.Ext(path)
	stem := strings.TrimSuffix(path, ext)
	// stem still ends in ".profile"
	stem = strings.TrimSuffix(stem, ".profile")
	for idx := 2; ; idx++ {
		cand := fmt.Sprintf("%s__%d.profile%s", stem, idx, ext)
		if _, ok := taken[cand]; !ok {
			log.Warn().Str("path", cand).Msg("report name collision, writing with suffix")
			return cand
		}
	}
}

func init() {
	rootCmd.AddCommand(analyzeBatchCmd)
	abInput.register(analyzeBatchCmd.Flags())
	analyzeBatchCmd.Flags().StringVarP(&abFormat, "format", "f", "", "output format: markdown|json|yaml (default from config)")
	analyzeBatchCmd.Flags().StringVar(&abOutputDir, "output-dir", "", "directory for reports (default: config output_dir, else next to each input)")
	analyzeBatchCmd.Flags().BoolVar(&abQuiet, "quiet", false, "suppress progress and non-essential output")
}
