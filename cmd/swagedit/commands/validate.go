package commands

import (
	"context"
	"fmt"
	"io"
	"runtime"
	"slices"

	"github.com/RepreZen/SwagEdit/internal/console"
	"github.com/RepreZen/SwagEdit/validation"
	gojson "github.com/goccy/go-json"
	"github.com/sourcegraph/conc/pool"
	"github.com/spf13/cobra"
)

const (
	formatText = "text"
	formatJSON = "json"
)

type validateFlags struct {
	format      string
	concurrency int
	context     bool
}

func newValidateCommand(global *globalFlags) *cobra.Command {
	flags := &validateFlags{}

	cmd := &cobra.Command{
		Use:   "validate <file>...",
		Short: "Validate Swagger 2.0 and OpenAPI 3.0 documents",
		Long: `Validate one or more documents and print their diagnostics.

Diagnostics are printed as file:line:column: severity: message [rule].
The command exits with status 1 when any document has an error.

Use '-' as the file argument to read from stdin:
  cat api.yaml | swagedit validate -`,
		Args: cobra.MinimumNArgs(1),
		PreRunE: func(_ *cobra.Command, _ []string) error {
			if flags.format != formatText && flags.format != formatJSON {
				return fmt.Errorf("unknown format %q, use text or json", flags.format)
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := newEnvironment(cmd, global)
			if err != nil {
				return err
			}
			return runValidate(cmd, env, flags, args)
		},
	}

	cmd.Flags().StringVarP(&flags.format, "format", "f", formatText, "output format: text or json")
	cmd.Flags().IntVar(&flags.concurrency, "concurrency", runtime.GOMAXPROCS(0), "number of documents validated at once")
	cmd.Flags().BoolVar(&flags.context, "context", false, "print the source line of each diagnostic")

	return cmd
}

func runValidate(cmd *cobra.Command, env *environment, flags *validateFlags, files []string) error {
	out := cmd.OutOrStdout()

	var spinner *console.Spinner
	if flags.format == formatText {
		spinner = console.NewSpinner(cmd.ErrOrStderr(), fmt.Sprintf("Validating %d documents...", len(files)))
		spinner.Start()
	}

	reports := validateFiles(cmd.Context(), env, files, flags.concurrency)

	if spinner != nil {
		spinner.Stop()
	}

	var failed bool
	for _, r := range reports {
		if errs, _ := r.counts(); errs > 0 {
			failed = true
		}
	}

	var err error
	switch flags.format {
	case formatJSON:
		err = writeJSON(out, reports)
	default:
		writeText(out, reports, flags.context)
	}
	if err != nil {
		return err
	}

	if failed {
		return ErrValidationFailed
	}
	return nil
}

// validateFiles validates the files concurrently. Reports are returned in the order of files.
func validateFiles(ctx context.Context, env *environment, files []string, concurrency int) []*report {
	if concurrency < 1 {
		concurrency = 1
	}

	type indexed struct {
		index  int
		report *report
	}

	p := pool.NewWithResults[indexed]().WithMaxGoroutines(concurrency)
	for i, file := range files {
		p.Go(func() indexed {
			return indexed{index: i, report: env.check(ctx, file)}
		})
	}
	results := p.Wait()

	slices.SortFunc(results, func(a, b indexed) int { return a.index - b.index })

	reports := make([]*report, 0, len(results))
	for _, r := range results {
		reports = append(reports, r.report)
	}
	return reports
}

func writeText(w io.Writer, reports []*report, showContext bool) {
	f := console.NewFormatter(w)
	f.Context = showContext

	var errs, warnings int
	for _, r := range reports {
		if r.err != nil {
			fmt.Fprint(w, f.FormatError(r.file, r.err))
		}
		for _, e := range r.errs {
			fmt.Fprint(w, f.FormatDiagnostic(r.file, e, r.source))
		}
		e, wn := r.counts()
		errs += e
		warnings += wn
	}
	fmt.Fprint(w, f.FormatSummary(len(reports), errs, warnings))
}

type jsonDocument struct {
	File        string           `json:"file"`
	Valid       bool             `json:"valid"`
	Error       string           `json:"error,omitempty"`
	Diagnostics []jsonDiagnostic `json:"diagnostics"`
}

type jsonDiagnostic struct {
	Line      int    `json:"line"`
	Column    int    `json:"column"`
	EndLine   int    `json:"endLine,omitempty"`
	EndColumn int    `json:"endColumn,omitempty"`
	Severity  string `json:"severity"`
	Rule      string `json:"rule,omitempty"`
	Message   string `json:"message"`
	Pointer   string `json:"pointer,omitempty"`
	Document  string `json:"document,omitempty"`
	HowToFix  string `json:"howToFix,omitempty"`
}

func writeJSON(w io.Writer, reports []*report) error {
	docs := make([]jsonDocument, 0, len(reports))
	for _, r := range reports {
		errs, _ := r.counts()
		doc := jsonDocument{
			File:        r.file,
			Valid:       errs == 0,
			Diagnostics: make([]jsonDiagnostic, 0, len(r.errs)),
		}
		if r.err != nil {
			doc.Error = r.err.Error()
		}
		for _, e := range r.errs {
			doc.Diagnostics = append(doc.Diagnostics, jsonDiagnostic{
				Line:      e.GetLineNumber(),
				Column:    e.GetColumnNumber(),
				EndLine:   e.EndLine,
				EndColumn: e.EndColumn,
				Severity:  e.GetSeverity().String(),
				Rule:      e.Rule,
				Message:   e.Message,
				Pointer:   e.Pointer.String(),
				Document:  e.DocumentLocation,
				HowToFix:  validation.RuleHowToFix(e.Rule),
			})
		}
		docs = append(docs, doc)
	}

	data, err := gojson.MarshalIndent(docs, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to render diagnostics: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}
