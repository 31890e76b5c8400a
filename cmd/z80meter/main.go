package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/k0kubun/pp/v3"
	"github.com/spf13/cobra"
	"golang.design/x/clipboard"
	"golang.org/x/term"

	"github.com/oisee/z80-asm-meter/pkg/directive"
	"github.com/oisee/z80-asm-meter/pkg/inst"
	"github.com/oisee/z80-asm-meter/pkg/match"
	"github.com/oisee/z80-asm-meter/pkg/meter"
	"github.com/oisee/z80-asm-meter/pkg/result"
	"github.com/oisee/z80-asm-meter/pkg/syntax"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// options are the flags shared by every command.
type options struct {
	platform inst.Platform
	dialect  *syntax.Dialect
	expandDS bool
	maxLines int
	maxLoC   int
	maxBytes int
	verbose  bool
}

func (o *options) matcher() (*match.Matcher, error) {
	c, err := inst.LoadCatalog()
	if err != nil {
		return nil, err
	}
	policy := directive.KeepDirectives
	if o.expandDS {
		policy = directive.ExpandInstructions
	}
	return match.New(c, match.Options{Sets: o.platform.Sets(), Policy: policy}), nil
}

func (o *options) meter() (*meter.Meter, error) {
	m, err := o.matcher()
	if err != nil {
		return nil, err
	}
	return meter.New(m, meter.Options{
		Dialect:  o.dialect,
		MaxLines: o.maxLines,
		MaxLoC:   o.maxLoC,
	}), nil
}

func (o *options) logf(cmd *cobra.Command, format string, args ...any) {
	if o.verbose {
		fmt.Fprintf(cmd.ErrOrStderr(), format, args...)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{platform: inst.Z80, dialect: syntax.Default}

	rootCmd := &cobra.Command{
		Use:          "z80meter",
		Short:        "Z80 assembly meter: timing, size and bytes of source code",
		SilenceUsage: true,
	}
	pf := rootCmd.PersistentFlags()
	pf.VarP(platformValue{&opts.platform}, "platform", "p", "Target platform (z80, msx, cpc, z80n)")
	pf.VarP(dialectValue{&opts.dialect}, "syntax", "s", "Assembler syntax (default, sjasmplus, tniasm)")
	pf.BoolVar(&opts.expandDS, "expand-ds", false, "Meter storage blocks as repeated instructions (DS n = n NOPs)")
	pf.IntVar(&opts.maxLines, "max-lines", 0, "Maximum source lines per input (0 = unlimited)")
	pf.IntVar(&opts.maxLoC, "max-loc", 0, "Maximum lines of code per input (0 = unlimited)")
	pf.IntVar(&opts.maxBytes, "max-bytes", 0, "Maximum opcode bytes printed per listing (0 = unlimited)")
	pf.BoolVarP(&opts.verbose, "verbose", "v", false, "Verbose output")

	rootCmd.AddCommand(
		newMeterCmd(opts),
		newLineCmd(opts),
		newExplainCmd(opts),
		newCatalogCmd(opts),
		newReportCmd(opts),
	)
	return rootCmd
}

var errNoInput = errors.New("no input: pass source files or pipe source on stdin")

func newMeterCmd(opts *options) *cobra.Command {
	var output string
	var copyText bool
	var numWorkers int
	format := formatTable

	cmd := &cobra.Command{
		Use:   "meter [files...]",
		Short: "Meter assembly source files, or stdin when no file is given",
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := opts.meter()
			if err != nil {
				return err
			}

			var tasks []meter.Task
			for _, path := range args {
				tasks = append(tasks, meter.FileTask(path))
			}
			if len(tasks) == 0 {
				in := cmd.InOrStdin()
				if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
					return errNoInput
				}
				tasks = append(tasks, meter.ReaderTask("<stdin>", in))
			}

			opts.logf(cmd, "Z80 meter\n  Platform: %s\n  Syntax: %s\n  Inputs: %d\n",
				opts.platform, opts.dialect, len(tasks))

			var log io.Writer
			if opts.verbose {
				log = cmd.ErrOrStderr()
			}
			pool := meter.NewPool(m, numWorkers)
			pool.RunTasks(tasks, log)
			entries := pool.Results.Entries()

			out := cmd.OutOrStdout()
			printEntries(out, entries, opts.platform, format, opts.maxBytes)

			if output != "" {
				f, err := os.Create(output)
				if err != nil {
					return err
				}
				defer f.Close()
				if err := result.WriteJSON(f, entries); err != nil {
					return err
				}
				opts.logf(cmd, "Written to %s\n", output)
			}

			if copyText {
				if err := copyToClipboard(summary(opts.platform, total(entries))); err != nil {
					return err
				}
				opts.logf(cmd, "Summary copied to clipboard\n")
			}

			if _, failed := pool.Stats(); failed > 0 {
				return fmt.Errorf("%d of %d inputs could not be metered", failed, len(tasks))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&output, "json", "", "Write the results to a JSON file")
	cmd.Flags().BoolVar(&copyText, "copy", false, "Copy the summary to the clipboard")
	cmd.Flags().IntVar(&numWorkers, "workers", 0, "Number of workers (0 = NumCPU)")
	cmd.Flags().VarP(formatValue{&format}, "format", "f", "Output format (table, summary, bytes)")
	return cmd
}

func newLineCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "line [source]",
		Short: "Meter one line of source and list every instruction it holds",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := opts.meter()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			var acc meter.Accumulator
			for _, s := range m.Statement(instructionField(args)) {
				if !s.Matched() {
					fmt.Fprintf(out, "%-20s (no match)\n", s.Text)
					continue
				}
				for _, r := range s.Results {
					printMetered(out, r, opts.maxBytes)
				}
				acc.Add(s.Results)
			}
			fmt.Fprintln(out, summary(opts.platform, totalsEntry(acc.Totals())))
			return nil
		},
	}
}

func newExplainCmd(opts *options) *cobra.Command {
	var dump bool

	cmd := &cobra.Command{
		Use:   "explain [source]",
		Short: "Show how each candidate instruction scores against a line",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := opts.matcher()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			norm := syntax.NewNormalizer(opts.dialect)
			for _, stmt := range norm.Normalize(instructionField(args)) {
				fmt.Fprintf(out, "%s\n", stmt)
				ranked := m.Rank(stmt)
				if len(ranked) == 0 {
					fmt.Fprintf(out, "  no %s candidates\n", opts.platform)
				}
				best, score := m.Best(stmt)
				for _, c := range ranked {
					mark := " "
					if c.Instruction == best {
						mark = "*"
					}
					fmt.Fprintf(out, " %s %.2f  %s\n", mark, c.Score, c.Instruction.Text())
				}
				results := m.Match(stmt)
				if best == nil && len(results) > 0 {
					fmt.Fprintf(out, "  data directive\n")
				}
				if dump {
					printer := pp.New()
					printer.SetOutput(out)
					printer.SetColoringEnabled(isTerminal(out))
					if best != nil {
						printer.Println(best.Pattern())
						fmt.Fprintf(out, "  score %.2f\n", score)
					}
					for _, r := range results {
						if d, ok := r.(*directive.Directive); ok {
							printer.Println(d.Kind.String(), d.Data())
						}
					}
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&dump, "dump", false, "Pretty-print the winning record")
	return cmd
}

func newCatalogCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "catalog [mnemonic]",
		Short: "List the instructions known for the platform",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := inst.LoadCatalog()
			if err != nil {
				return err
			}
			list := c.All()
			if len(args) == 1 {
				list = c.Candidates(strings.ToUpper(args[0]))
			}
			sets := opts.platform.Sets()
			out := cmd.OutOrStdout()
			n := 0
			for _, in := range list {
				if !slices.Contains(sets, in.Set()) {
					continue
				}
				printMetered(out, in, opts.maxBytes)
				n++
			}
			opts.logf(cmd, "%d of %d instructions (%d mnemonics)\n", n, c.Len(), c.Mnemonics())
			if n == 0 && len(args) == 1 {
				return fmt.Errorf("unknown mnemonic: %s", args[0])
			}
			return nil
		},
	}
}

func newReportCmd(opts *options) *cobra.Command {
	format := formatTable

	cmd := &cobra.Command{
		Use:   "report [results.json]",
		Short: "Print results saved with meter --json",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			entries, err := result.ReadJSON(f)
			if err != nil {
				return err
			}
			opts.logf(cmd, "Read %d entries from %s\n", len(entries), args[0])
			printEntries(cmd.OutOrStdout(), entries, opts.platform, format, opts.maxBytes)
			return nil
		},
	}
	cmd.Flags().VarP(formatValue{&format}, "format", "f", "Output format (table, summary, bytes)")
	return cmd
}

// instructionField joins command arguments into a source line. The line is
// indented so that dialects with column 0 labels read an instruction.
func instructionField(args []string) string {
	return " " + strings.Join(args, " ")
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func copyToClipboard(text string) error {
	if err := clipboard.Init(); err != nil {
		return fmt.Errorf("clipboard: %w", err)
	}
	clipboard.Write(clipboard.FmtText, []byte(text))
	return nil
}
