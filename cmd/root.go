package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/conlangtools/soundlaw"
)

var (
	rulesPath  string
	graphsFlag string
	separator  string
	outPath    string
	quiet      bool

	logger *zap.Logger
)

var (
	errorStyle   = color.New(color.FgRed, color.Bold)
	warningStyle = color.New(color.FgHiYellow, color.Bold)
	fileStyle    = color.New(color.FgCyan, color.Bold)
	lineStyle    = color.New(color.FgHiBlue, color.Bold)
)

var rootCmd = &cobra.Command{
	Use:   "soundlaw [lexicon files...]",
	Short: "soundlaw applies phonological change rules to a lexicon",
	Long: `soundlaw compiles a sound change rule file and applies it to a
lexicon, reading words from the given files (or standard input) and
writing the transformed words in the same order.`,
	Run: func(cmd *cobra.Command, args []string) {
		runApply(args)
	},
}

func Execute() error {
	logger = zap.Must(zap.NewProduction())
	defer logger.Sync()
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&rulesPath, "rules", "r", "", "Path to the change rules file")
	rootCmd.PersistentFlags().StringVarP(&graphsFlag, "graphs", "g", "", "Comma-separated grapheme inventory")
	rootCmd.PersistentFlags().StringVarP(&separator, "separator", "s", "'", "Separator that breaks up ambiguous grapheme runs")
	rootCmd.Flags().StringVarP(&outPath, "output", "o", "", "Write transformed words to this file instead of stdout")
	rootCmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "Suppress warnings and the progress bar")
	rootCmd.AddCommand(astCmd)
}

func runApply(args []string) {
	prog := compileRules()

	words, err := readLexicon(args)
	if err != nil {
		logger.Fatal("Failed to read lexicon", zap.Error(err))
	}

	graphs := parseGraphs(graphsFlag)

	var bar *progressbar.ProgressBar
	if !quiet && outPath != "" {
		bar = progressbar.NewOptions(len(words),
			progressbar.OptionSetDescription(rulesPath),
			progressbar.OptionEnableColorCodes(true),
			progressbar.OptionSetWidth(40),
			progressbar.OptionShowCount(),
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionSetTheme(progressbar.Theme{
				Saucer:        "[green]=[reset]",
				SaucerHead:    "[green]>[reset]",
				SaucerPadding: " ",
				BarStart:      "[",
				BarEnd:        "]",
			}))
	}

	// Words evolve independently, so each one gets a fresh state.
	// Running them separately keeps category edits from compounding
	// and lets the bar tick per word.
	out := make([]string, 0, len(words))
	seen := make(map[string]bool)
	var warnings []soundlaw.Warning
	for _, word := range words {
		results, state, err := soundlaw.Apply(prog, []string{word}, graphs, separator)
		if err != nil {
			logger.Fatal("Failed to apply rules", zap.Error(err))
		}
		out = append(out, results...)
		for _, w := range state.Warnings {
			if !seen[w.Message] {
				seen[w.Message] = true
				warnings = append(warnings, w)
			}
		}
		if bar != nil {
			_ = bar.Add(1)
		}
	}
	if bar != nil {
		fmt.Fprintln(os.Stderr)
	}

	if !quiet {
		for _, w := range warnings {
			fmt.Fprintf(os.Stderr, "%s %s\n", warningStyle.Sprint("warning:"), w.Message)
		}
	}

	if outPath == "" {
		for _, word := range out {
			fmt.Println(word)
		}
		return
	}
	if err := os.WriteFile(outPath, []byte(strings.Join(out, "\n")+"\n"), 0o644); err != nil {
		logger.Fatal("Failed to write output", zap.Error(err))
	}
}

// compileRules reads and compiles the rules file, printing every
// diagnostic and exiting when the program has errors.
func compileRules() *soundlaw.Program {
	if rulesPath == "" {
		fmt.Fprintf(os.Stderr, "%s no rules file given, use --rules\n", errorStyle.Sprint("error:"))
		os.Exit(1)
	}
	source, err := os.ReadFile(rulesPath)
	if err != nil {
		logger.Fatal("Failed to read rules file", zap.Error(err))
	}

	prog, diagnostics := soundlaw.Compile(source)
	for _, d := range diagnostics {
		fmt.Fprintf(os.Stderr, "%s %s\n  %s %s:%s\n",
			errorStyle.Sprint("error:"), d.Message,
			lineStyle.Sprint("-->"), fileStyle.Sprint(rulesPath), d.Span.Start)
	}
	if len(diagnostics) > 0 {
		fmt.Fprintf(os.Stderr, "\n%s\n", errorStyle.Sprintf("%d error(s) generated", len(diagnostics)))
		os.Exit(1)
	}
	return prog
}

// readLexicon collects one word per line from the given files, or
// from standard input when no files are given.  Blank lines are
// skipped.
func readLexicon(paths []string) ([]string, error) {
	if len(paths) == 0 {
		return scanWords(os.Stdin)
	}
	var words []string
	for _, path := range paths {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		fileWords, err := scanWords(f)
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}
		words = append(words, fileWords...)
	}
	return words, nil
}

func scanWords(f *os.File) ([]string, error) {
	var words []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		words = append(words, line)
	}
	return words, scanner.Err()
}

func parseGraphs(flag string) []string {
	if flag == "" {
		return nil
	}
	parts := strings.Split(flag, ",")
	graphs := make([]string, 0, len(parts))
	for _, p := range parts {
		graphs = append(graphs, strings.TrimSpace(p))
	}
	return graphs
}
