package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	flag "github.com/spf13/pflag"

	"mdgraph/internal/build"
	"mdgraph/internal/corpus"
)

var errUnexpectedArg = errors.New("unexpected argument")

func newCheckCmd(cfg corpus.Config) *Command {
	flags := flag.NewFlagSet("check", flag.ContinueOnError)
	jsonOut := flags.Bool("json", false, "Emit the full report as JSON on stdout")

	return &Command{
		Flags: flags,
		Usage: "check [--json]",
		Short: "Validate the corpus and report every finding",
		Long: `Validate the corpus in three stages: per-document frontmatter schema,
content graph construction, and global integrity (dangling references,
prerequisite cycles, depth progression). Findings are printed one per line as

  <file>: <field>: <message>

Errors go to stderr; warnings are prefixed with "warning:" and never change
the exit code.`,
		Exec: func(ctx context.Context, o *IO, args []string) error {
			if len(args) > 0 {
				return fmt.Errorf("%w: %s", errUnexpectedArg, args[0])
			}

			outcome, err := build.Run(ctx, cfg)
			if err != nil {
				return err
			}

			if *jsonOut {
				printErr := printCheckJSON(o, outcome)
				if printErr != nil {
					return printErr
				}

				return outcome.Err()
			}

			for _, warning := range outcome.Warnings {
				o.ErrPrintln("warning:", warning.String())
			}

			for _, line := range outcome.Errors {
				o.ErrPrintln(line.String())
			}

			if failErr := outcome.Err(); failErr != nil {
				return failErr
			}

			o.Printf("corpus validated: %d documents, %d nodes, %d edges\n",
				len(outcome.Docs), outcome.Graph.NumNodes(), outcome.Graph.NumEdges())

			return nil
		},
	}
}

// checkReport is the JSON shape of one check run.
type checkReport struct {
	State     string       `json:"state"`
	Documents int          `json:"documents"`
	Nodes     int          `json:"nodes"`
	Edges     int          `json:"edges"`
	Errors    []reportLine `json:"errors"`
	Warnings  []reportLine `json:"warnings"`
}

type reportLine struct {
	File    string `json:"file"`
	Field   string `json:"field"`
	Message string `json:"message"`
}

func reportLines(lines []build.Line) []reportLine {
	out := make([]reportLine, 0, len(lines))
	for _, line := range lines {
		out = append(out, reportLine(line))
	}

	return out
}

func printCheckJSON(o *IO, outcome *build.Outcome) error {
	report := checkReport{
		State:     string(outcome.State),
		Documents: len(outcome.Results),
		Errors:    reportLines(outcome.Errors),
		Warnings:  reportLines(outcome.Warnings),
	}

	if outcome.Graph != nil {
		report.Nodes = outcome.Graph.NumNodes()
		report.Edges = outcome.Graph.NumEdges()
	}

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}

	o.Println(string(data))

	return nil
}
