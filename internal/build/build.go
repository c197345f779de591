// Package build runs the corpus pipeline: parse, schema-validate, build the
// content graph, check integrity. Each stage consumes the prior stage's
// complete output as an immutable snapshot; the pipeline short-circuits to a
// failed terminal state at the first stage that fails, since later stages are
// meaningless without a valid input.
package build

import (
	"context"
	"strings"

	"mdgraph/internal/corpus"
	"mdgraph/internal/graph"
)

// State is the terminal state of one build run.
type State string

// Terminal states, one per pipeline stage that can fail.
const (
	StateValidated       State = "validated"
	StateSchemaFailed    State = "schema-failed"
	StateGraphFailed     State = "graph-failed"
	StateIntegrityFailed State = "integrity-failed"
)

// Exit codes per terminal state. 1 is reserved for usage and IO errors.
const (
	exitValidated       = 0
	exitSchemaFailed    = 2
	exitGraphFailed     = 3
	exitIntegrityFailed = 4
)

// ExitCode maps a terminal state to the process exit code.
func (s State) ExitCode() int {
	switch s {
	case StateSchemaFailed:
		return exitSchemaFailed
	case StateGraphFailed:
		return exitGraphFailed
	case StateIntegrityFailed:
		return exitIntegrityFailed
	default:
		return exitValidated
	}
}

// Line is one finding in the build report, rendered in the stable
// machine-greppable form "<file>: <field>: <message>".
type Line struct {
	File    string
	Field   string
	Message string
}

func (l Line) String() string {
	return l.File + ": " + l.Field + ": " + l.Message
}

// FailError signals a non-validated terminal state to the CLI layer, which
// maps it to the state's exit code. The report itself travels in the Outcome,
// not in the error.
type FailError struct {
	State State
}

func (e *FailError) Error() string {
	return "corpus " + string(e.State)
}

// ExitCode returns the exit code for the failed state.
func (e *FailError) ExitCode() int {
	return e.State.ExitCode()
}

// Outcome is the complete result of one build run.
type Outcome struct {
	State   State
	Results []corpus.Result   // every scanned file, ordered by path
	Docs    []corpus.Document // schema-valid documents
	Graph   *graph.Graph      // nil unless graph construction succeeded

	Errors   []Line
	Warnings []Line
}

// Err returns nil when the corpus validated, a FailError otherwise.
func (o *Outcome) Err() error {
	if o.State == StateValidated {
		return nil
	}

	return &FailError{State: o.State}
}

// Run executes the pipeline over the configured corpus. The returned error is
// reserved for corpus-level failures (unreadable directory, bad patterns);
// validation findings land in the Outcome.
func Run(ctx context.Context, cfg corpus.Config) (*Outcome, error) {
	results, err := corpus.Scan(ctx, cfg.CorpusDirAbs, cfg.ScanOptions())
	if err != nil {
		return nil, err
	}

	outcome := &Outcome{Results: results}

	// Stage 1: per-document schema validation. A document is never silently
	// excluded; any schema failure fails the whole build.
	for _, result := range results {
		if result.ParseErr != nil {
			outcome.Errors = append(outcome.Errors, Line{
				File:    result.RelPath,
				Field:   "frontmatter",
				Message: result.ParseErr.Error(),
			})

			continue
		}

		for _, fieldErr := range result.FieldErrs {
			outcome.Errors = append(outcome.Errors, Line{
				File:    result.RelPath,
				Field:   fieldErr.Field,
				Message: fieldErr.Message,
			})
		}

		if result.Valid() {
			outcome.Docs = append(outcome.Docs, result.Doc)
		}
	}

	if len(outcome.Errors) > 0 {
		outcome.State = StateSchemaFailed

		return outcome, nil
	}

	// Stage 2: graph construction. Duplicate (topic, depth) nodes are
	// authoring mistakes, not merge candidates.
	g, dupErrs := graph.Build(outcome.Docs)
	if len(dupErrs) > 0 {
		for _, dup := range dupErrs {
			outcome.Errors = append(outcome.Errors, Line{
				File:    dup.Paths[0],
				Field:   "topic",
				Message: "duplicate node " + dup.NodeID + " also claimed by " + strings.Join(dup.Paths[1:], ", "),
			})
		}

		outcome.State = StateGraphFailed

		return outcome, nil
	}

	outcome.Graph = g

	// Stage 3: global integrity. Warnings are carried even on success.
	report := graph.Check(g)

	for _, issue := range report.Warnings {
		outcome.Warnings = append(outcome.Warnings, Line(issue))
	}

	if !report.OK() {
		for _, issue := range report.Errors {
			outcome.Errors = append(outcome.Errors, Line(issue))
		}

		outcome.State = StateIntegrityFailed

		return outcome, nil
	}

	outcome.State = StateValidated

	return outcome, nil
}
