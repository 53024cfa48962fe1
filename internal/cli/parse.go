package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/ppiankov/ssuula/internal/pipeline"
)

var (
	parseTimeout time.Duration
	parseJSON    bool
)

// parseCmd represents the parse command
var parseCmd = &cobra.Command{
	Use:   "parse [path|url]",
	Short: "Parse a translation document and print the load report",
	Long: `Parse fetches and parses a translation document without serving it, then
prints the load report: document metadata, chosen dialect, chapter and verse
counts, skipped units (anomalies) and the numbering convention check.

Without an argument the configured source is parsed.

Example:
  ssuula parse ./luganda.txt
  ssuula parse ./luganda.txt --dialect numbered --json
  ssuula parse https://example.com/luganda.txt.xz`,
	Args: cobra.MaximumNArgs(1),
	RunE: runParse,
}

func init() {
	rootCmd.AddCommand(parseCmd)

	parseCmd.Flags().DurationVar(&parseTimeout, "timeout", 2*time.Minute, "overall fetch and parse timeout")
	parseCmd.Flags().BoolVar(&parseJSON, "json", false, "print the report as JSON instead of YAML")
}

func runParse(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if len(args) == 1 {
		cfg.Source.URL = args[0]
	}

	svc, err := pipeline.NewServiceFromConfig(cfg)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), parseTimeout)
	defer cancel()

	fmt.Fprintf(os.Stderr, "⚙️  Parsing %s (dialect %s)...\n", cfg.Source.URL, cfg.Source.Dialect)
	t, err := svc.Translation(ctx)
	if err != nil {
		return fmt.Errorf("parse failed: %w", err)
	}

	report := t.Report
	fmt.Fprintf(os.Stderr, "✓ Dialect %s: %d verses in %d chapters\n", report.Dialect, report.Verses, report.Chapters)
	if n := len(report.Anomalies); n > 0 {
		fmt.Fprintf(os.Stderr, "⚠️  %d units skipped\n", n)
	}
	for _, check := range report.Conventions {
		if !check.OK {
			fmt.Fprintf(os.Stderr, "⚠️  Chapter %d looks %s, policy expects %s\n", check.Chapter, check.Detected, check.Expected)
		}
	}

	out := cmd.OutOrStdout()
	if parseJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}
	data, err := yaml.Marshal(report)
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	_, err = out.Write(data)
	return err
}
