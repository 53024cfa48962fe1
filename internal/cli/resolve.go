package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/ssuula/internal/model"
	"github.com/ppiankov/ssuula/internal/pipeline"
	"github.com/ppiankov/ssuula/internal/quran"
)

var (
	lookupTimeout  time.Duration
	lookupJSON     bool
	onlyTranslated bool
)

// resolveCmd represents the resolve command
var resolveCmd = &cobra.Command{
	Use:   "resolve <ref>",
	Short: "Print the translation of a verse, range or chapter",
	Long: `Resolve looks up verses by canonical numbering. A reference is a chapter
number or name, optionally followed by a verse or verse range.

Example:
  ssuula resolve 2:255
  ssuula resolve 2:1-7
  ssuula resolve Al-Baqarah:2
  ssuula resolve 112 --json`,
	Args: cobra.ExactArgs(1),
	RunE: runResolve,
}

// chapterCmd represents the chapter command
var chapterCmd = &cobra.Command{
	Use:   "chapter <n>",
	Short: "Print a whole chapter",
	Long: `Chapter prints every canonical verse of a chapter, including the
invocation where the chapter opens with it.

Example:
  ssuula chapter 36
  ssuula chapter 9 --only-translated`,
	Args: cobra.ExactArgs(1),
	RunE: runChapter,
}

func init() {
	rootCmd.AddCommand(resolveCmd)
	rootCmd.AddCommand(chapterCmd)

	for _, cmd := range []*cobra.Command{resolveCmd, chapterCmd} {
		cmd.Flags().DurationVar(&lookupTimeout, "timeout", 2*time.Minute, "overall timeout including the document fetch")
		cmd.Flags().BoolVar(&lookupJSON, "json", false, "print JSON instead of text")
		cmd.Flags().BoolVar(&onlyTranslated, "only-translated", false, "skip verses without a translation")
	}
}

// newService builds the translation service from the merged configuration
func newService() (*pipeline.Service, *model.Config, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	svc, err := pipeline.NewServiceFromConfig(cfg)
	if err != nil {
		return nil, nil, err
	}
	return svc, cfg, nil
}

func runResolve(cmd *cobra.Command, args []string) error {
	ref, err := quran.ParseRef(args[0])
	if err != nil {
		return err
	}
	return printRef(cmd, ref)
}

func runChapter(cmd *cobra.Command, args []string) error {
	chapter, err := strconv.Atoi(args[0])
	if err != nil {
		ref, refErr := quran.ParseRef(args[0])
		if refErr != nil {
			return fmt.Errorf("invalid chapter %q", args[0])
		}
		chapter = ref.Chapter
	}
	if _, ok := quran.Lookup(chapter); !ok {
		return fmt.Errorf("chapter %d out of range 1..%d", chapter, quran.ChapterCount)
	}
	return printRef(cmd, quran.Ref{Chapter: chapter})
}

func printRef(cmd *cobra.Command, ref quran.Ref) error {
	svc, _, err := newService()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), lookupTimeout)
	defer cancel()

	if verbose {
		fmt.Fprintf(os.Stderr, "Resolving %s from generation %s\n", ref, svc.Generation())
	}

	verses, err := svc.ResolveRange(ctx, ref)
	if err != nil {
		return fmt.Errorf("translation unavailable: %w", err)
	}
	if onlyTranslated {
		kept := verses[:0]
		for _, v := range verses {
			if v.Available {
				kept = append(kept, v)
			}
		}
		verses = kept
	}

	if lookupJSON {
		return writeVersesJSON(cmd.OutOrStdout(), verses)
	}
	writeVersesText(cmd.OutOrStdout(), verses)
	return nil
}

type verseJSON struct {
	Chapter    int     `json:"chapter"`
	Verse      int     `json:"verse"`
	Text       *string `json:"text"`
	Invocation bool    `json:"invocation,omitempty"`
}

func writeVersesJSON(w io.Writer, verses []model.ResolvedVerse) error {
	out := make([]verseJSON, len(verses))
	for i, v := range verses {
		out[i] = verseJSON{Chapter: v.Chapter, Verse: v.Verse, Text: v.TextOrNil(), Invocation: v.Invocation}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func writeVersesText(w io.Writer, verses []model.ResolvedVerse) {
	for _, v := range verses {
		fmt.Fprintf(w, "%d:%d\t%s\n", v.Chapter, v.Verse, v.DisplayText())
	}
}
