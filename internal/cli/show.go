package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	flag "github.com/spf13/pflag"

	"mdgraph/internal/build"
	"mdgraph/internal/corpus"
	"mdgraph/internal/graph"
)

var (
	errIDRequired   = errors.New("node ID is required")
	errNodeNotFound = errors.New("node not found")
	errCorpusBroken = errors.New("corpus does not build; run mdgraph check")
)

func newShowCmd(cfg corpus.Config) *Command {
	flags := flag.NewFlagSet("show", flag.ContinueOnError)

	return &Command{
		Flags: flags,
		Usage: "show <id>",
		Short: "Show one node with its metadata and edges",
		Long: `Show a single node: its document metadata, prerequisites, related topics,
and the nodes that depend on it. The ID is either "topic@depth" or a bare
topic, which resolves to the topic's shallowest depth node.`,
		Exec: func(ctx context.Context, o *IO, args []string) error {
			if len(args) == 0 {
				return errIDRequired
			}

			if len(args) > 1 {
				return fmt.Errorf("%w: %s", errUnexpectedArg, args[1])
			}

			outcome, err := build.Run(ctx, cfg)
			if err != nil {
				return err
			}

			// Integrity findings do not block show; a graph exists either way.
			if outcome.Graph == nil {
				return errCorpusBroken
			}

			id, ok := outcome.Graph.Resolve(args[0])
			if !ok {
				return fmt.Errorf("%w: %s", errNodeNotFound, args[0])
			}

			node, _ := outcome.Graph.Node(id)
			printNode(o, outcome.Graph, node)

			return nil
		},
	}
}

func printNode(o *IO, g *graph.Graph, node *graph.Node) {
	o.Println(node.ID)
	o.Println("  title:", node.Doc.Title)
	o.Println("  phase:", node.Doc.Phase)
	o.Println("  topic:", node.Topic)

	if node.Depth != "" {
		o.Println("  depth:", string(node.Depth))
	}

	if node.Doc.Type != "" {
		o.Println("  type:", node.Doc.Type)
	}

	if node.Doc.ReadingTime > 0 {
		o.Printf("  reading_time: %d min\n", node.Doc.ReadingTime)
	}

	if len(node.Doc.Personas) > 0 {
		o.Println("  personas:", strings.Join(node.Doc.Personas, ", "))
	}

	o.Println("  file:", node.Doc.Path)

	printEdgeList(o, "prerequisites", g.Neighbors(node.ID, graph.KindPrerequisite))
	printEdgeList(o, "related", g.Neighbors(node.ID, graph.KindRelated))
	printEdgeList(o, "dependents", g.Dependents(node.ID))
}

func printEdgeList(o *IO, label string, ids []string) {
	if len(ids) == 0 {
		return
	}

	o.Printf("  %s: %s\n", label, strings.Join(ids, ", "))
}
