package cli

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	flag "github.com/spf13/pflag"

	"mdgraph/internal/corpus"
)

var errInvalidDepth = errors.New("invalid depth")

func newLsCmd(cfg corpus.Config) *Command {
	flags := flag.NewFlagSet("ls", flag.ContinueOnError)
	phase := flags.String("phase", "", "Filter by phase")
	topic := flags.String("topic", "", "Filter by topic")
	depth := flags.String("depth", "", "Filter by depth (surface|mid-depth|deep-water)")
	persona := flags.String("persona", "", "Filter by persona")

	return &Command{
		Flags: flags,
		Usage: "ls [flags]",
		Short: "List documents as graph nodes, sorted by node ID",
		Long: `List every schema-valid document as its node ID with phase and title.
Documents that fail parsing or schema validation are reported as warnings and
omitted from the listing.`,
		Exec: func(ctx context.Context, o *IO, args []string) error {
			if len(args) > 0 {
				return fmt.Errorf("%w: %s", errUnexpectedArg, args[0])
			}

			if *depth != "" && !corpus.IsValidDepth(*depth) {
				return fmt.Errorf("%w: %s", errInvalidDepth, *depth)
			}

			results, err := corpus.Scan(ctx, cfg.CorpusDirAbs, cfg.ScanOptions())
			if err != nil {
				return err
			}

			var docs []corpus.Document

			for _, result := range results {
				if result.ParseErr != nil {
					o.Warn(result.RelPath+": "+result.ParseErr.Error(),
						"fix the frontmatter so the document can join the graph")

					continue
				}

				if len(result.FieldErrs) > 0 {
					o.Warn(fmt.Sprintf("%s: %d schema violations", result.RelPath, len(result.FieldErrs)),
						"run mdgraph check for the full report")

					continue
				}

				docs = append(docs, result.Doc)
			}

			sort.Slice(docs, func(i, j int) bool { return docs[i].NodeID() < docs[j].NodeID() })

			for _, doc := range docs {
				if !matchesFilters(doc, *phase, *topic, *depth, *persona) {
					continue
				}

				o.Println(formatDocLine(doc))
			}

			return nil
		},
	}
}

func matchesFilters(doc corpus.Document, phase, topic, depth, persona string) bool {
	if phase != "" && doc.Phase != phase {
		return false
	}

	if topic != "" && doc.Topic != topic {
		return false
	}

	if depth != "" && string(doc.Depth) != depth {
		return false
	}

	if persona != "" && !containsString(doc.Personas, persona) {
		return false
	}

	return true
}

func containsString(list []string, want string) bool {
	for _, item := range list {
		if item == want {
			return true
		}
	}

	return false
}

func formatDocLine(doc corpus.Document) string {
	var builder strings.Builder

	builder.WriteString(doc.NodeID())
	builder.WriteString(" [")
	builder.WriteString(doc.Phase)
	builder.WriteString("] - ")
	builder.WriteString(doc.Title)

	if len(doc.Prerequisites) > 0 {
		builder.WriteString(" <- requires: [")
		builder.WriteString(strings.Join(doc.Prerequisites, ", "))
		builder.WriteString("]")
	}

	return builder.String()
}
