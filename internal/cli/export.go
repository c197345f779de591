package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/natefinch/atomic"
	flag "github.com/spf13/pflag"

	"mdgraph/internal/build"
	"mdgraph/internal/corpus"
	"mdgraph/internal/graph"
)

const defaultExportFile = "corpus-graph.json"

// exportGraph is the on-disk JSON shape of the content graph.
type exportGraph struct {
	Nodes []exportNode `json:"nodes"`
	Edges []exportEdge `json:"edges"`
}

type exportNode struct {
	ID    string `json:"id"`
	Topic string `json:"topic"`
	Depth string `json:"depth,omitempty"`
	Title string `json:"title"`
	Phase string `json:"phase"`
	File  string `json:"file"`
}

type exportEdge struct {
	From string `json:"from"`
	To   string `json:"to"`
	Ref  string `json:"ref"`
	Kind string `json:"kind"`
}

func newExportCmd(cfg corpus.Config) *Command {
	flags := flag.NewFlagSet("export", flag.ContinueOnError)
	outPath := flags.StringP("out", "o", defaultExportFile, "Output file path")

	return &Command{
		Flags: flags,
		Usage: "export [-o <file>]",
		Short: "Write the content graph as JSON",
		Long: `Write the validated content graph to a JSON file with stable node and edge
ordering. The corpus must validate first; a failing corpus is reported the
same way check reports it and nothing is written.`,
		Exec: func(ctx context.Context, o *IO, args []string) error {
			if len(args) > 0 {
				return fmt.Errorf("%w: %s", errUnexpectedArg, args[0])
			}

			outcome, err := build.Run(ctx, cfg)
			if err != nil {
				return err
			}

			if failErr := outcome.Err(); failErr != nil {
				for _, line := range outcome.Errors {
					o.ErrPrintln(line.String())
				}

				return failErr
			}

			path := *outPath
			if !filepath.IsAbs(path) {
				path = filepath.Join(cfg.EffectiveCwd, path)
			}

			data, encodeErr := encodeGraph(outcome.Graph)
			if encodeErr != nil {
				return encodeErr
			}

			mkdirErr := os.MkdirAll(filepath.Dir(path), 0o755)
			if mkdirErr != nil {
				return fmt.Errorf("creating output directory: %w", mkdirErr)
			}

			// The file is written atomically so a concurrent reader never sees
			// a partial graph.
			writeErr := atomic.WriteFile(path, bytes.NewReader(data))
			if writeErr != nil {
				return fmt.Errorf("writing graph: %w", writeErr)
			}

			o.Printf("wrote %s: %d nodes, %d edges\n",
				*outPath, outcome.Graph.NumNodes(), outcome.Graph.NumEdges())

			return nil
		},
	}
}

func encodeGraph(g *graph.Graph) ([]byte, error) {
	export := exportGraph{
		Nodes: make([]exportNode, 0, g.NumNodes()),
		Edges: make([]exportEdge, 0, g.NumEdges()),
	}

	for _, node := range g.Nodes() {
		export.Nodes = append(export.Nodes, exportNode{
			ID:    node.ID,
			Topic: node.Topic,
			Depth: string(node.Depth),
			Title: node.Doc.Title,
			Phase: node.Doc.Phase,
			File:  node.Doc.Path,
		})

		for _, edge := range g.EdgesFrom(node.ID) {
			export.Edges = append(export.Edges, exportEdge{
				From: edge.From,
				To:   edge.To,
				Ref:  edge.Ref,
				Kind: string(edge.Kind),
			})
		}
	}

	data, err := json.MarshalIndent(export, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode graph: %w", err)
	}

	return append(data, '\n'), nil
}
