package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/ssuula/internal/export"
)

var (
	exportFormat   string
	exportOutput   string
	exportChapters string
	exportWorkers  int
	exportTimeout  time.Duration
)

// exportCmd represents the export command
var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the aligned translation as JSON, YAML or SQLite",
	Long: `Export resolves every canonical verse of the selected chapters in
parallel and writes the result. Verses without a translation are exported
with a null text.

Example:
  ssuula export --format json --output luganda.json
  ssuula export --format sqlite --output luganda.db
  ssuula export --format yaml --chapters 1,36,112-114`,
	Args: cobra.NoArgs,
	RunE: runExport,
}

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", "json", "output format (json, yaml, sqlite)")
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "output path (default stdout; required for sqlite)")
	exportCmd.Flags().StringVar(&exportChapters, "chapters", "", "chapters to export, e.g. 1,2,110-114 (default all)")
	exportCmd.Flags().IntVar(&exportWorkers, "workers", 0, "number of concurrent workers (default concurrency.export_workers)")
	exportCmd.Flags().DurationVar(&exportTimeout, "timeout", 5*time.Minute, "total timeout for the export")
}

func runExport(cmd *cobra.Command, args []string) error {
	format, err := export.ParseFormat(exportFormat)
	if err != nil {
		return err
	}
	if format == export.FormatSQLite && exportOutput == "" {
		return fmt.Errorf("--output is required for sqlite exports")
	}
	chapters, err := parseChapterList(exportChapters)
	if err != nil {
		return err
	}

	svc, cfg, err := newService()
	if err != nil {
		return err
	}
	workers := exportWorkers
	if workers <= 0 {
		workers = cfg.Concurrency.ExportWorkers
	}

	ctx, cancel := context.WithTimeout(context.Background(), exportTimeout)
	defer cancel()

	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "%s\n", banner)
	fmt.Fprintf(os.Stderr, "  Ssuula Export\n")
	fmt.Fprintf(os.Stderr, "%s\n", banner)
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Source:     %s\n", cfg.Source.URL)
	fmt.Fprintf(os.Stderr, "  Format:     %s\n", format)
	fmt.Fprintf(os.Stderr, "  Workers:    %d\n", workers)
	fmt.Fprintf(os.Stderr, "\n")

	t, err := svc.Translation(ctx)
	if err != nil {
		return fmt.Errorf("translation unavailable: %w", err)
	}
	fmt.Fprintf(os.Stderr, "✓ Loaded %d verses (dialect %s)\n", t.Report.Verses, t.Report.Dialect)

	doc, err := export.Build(ctx, t.Table, t.Report, svc.VerseSource(), export.Options{Chapters: chapters, Workers: workers})
	if err != nil {
		return fmt.Errorf("export: %w", err)
	}

	if format == export.FormatSQLite {
		if err := export.WriteSQLite(ctx, exportOutput, doc); err != nil {
			return fmt.Errorf("write sqlite: %w", err)
		}
	} else if err := writeExport(cmd.OutOrStdout(), doc, format); err != nil {
		return err
	}

	translated := 0
	for _, ch := range doc.Chapters {
		translated += ch.Translated
	}
	fmt.Fprintf(os.Stderr, "✓ Exported %d chapters, %d translated verses", len(doc.Chapters), translated)
	if exportOutput != "" {
		fmt.Fprintf(os.Stderr, " to %s", exportOutput)
	}
	fmt.Fprintf(os.Stderr, "\n\n")
	return nil
}

func writeExport(stdout io.Writer, doc *export.Document, format export.Format) (err error) {
	if exportOutput == "" {
		return export.Write(stdout, doc, format)
	}
	f, err := os.Create(exportOutput)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("close output: %w", closeErr)
		}
	}()
	return export.Write(f, doc, format)
}

// parseChapterList parses "1,2,110-114"
func parseChapterList(s string) ([]int, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	var out []int
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		lo, hi, isRange := strings.Cut(part, "-")
		start, err := strconv.Atoi(strings.TrimSpace(lo))
		if err != nil {
			return nil, fmt.Errorf("invalid chapter %q", part)
		}
		end := start
		if isRange {
			if end, err = strconv.Atoi(strings.TrimSpace(hi)); err != nil || end < start {
				return nil, fmt.Errorf("invalid chapter range %q", part)
			}
		}
		for c := start; c <= end; c++ {
			out = append(out, c)
		}
	}
	return out, nil
}
