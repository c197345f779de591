package graph

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"mdgraph/internal/corpus"
)

// Issue is one integrity finding, tied to the document that caused it.
type Issue struct {
	File    string // corpus-relative path
	Field   string
	Message string
}

func (i Issue) String() string {
	return i.File + ": " + i.Field + ": " + i.Message
}

// Report accumulates every integrity finding over a graph. Errors block
// publishing; warnings do not.
type Report struct {
	Errors   []Issue
	Warnings []Issue
}

// OK reports whether the graph passed all blocking checks.
func (r Report) OK() bool {
	return len(r.Errors) == 0
}

// Check validates the global graph invariants: no dangling references, no
// prerequisite cycles, and per-topic depth progression without gaps. The
// dangling and cycle checks touch disjoint edge data and run concurrently;
// all findings accumulate into one report rather than stopping at the first.
func Check(g *Graph) Report {
	var (
		waitGroup sync.WaitGroup
		dangling  []Issue
		cycles    []Issue
	)

	waitGroup.Add(2)

	go func() {
		defer waitGroup.Done()

		dangling = checkDangling(g)
	}()

	go func() {
		defer waitGroup.Done()

		cycles = checkCycles(g)
	}()

	waitGroup.Wait()

	report := Report{Warnings: checkDepthGaps(g)}
	report.Errors = append(report.Errors, dangling...)
	report.Errors = append(report.Errors, cycles...)

	return report
}

// fieldForKind maps an edge kind back to the frontmatter field it came from,
// for error reporting.
func fieldForKind(kind Kind) string {
	if kind == KindRelated {
		return "related_topics"
	}

	return "prerequisites"
}

func checkDangling(g *Graph) []Issue {
	var issues []Issue

	for _, id := range g.order {
		node := g.nodes[id]

		for _, edge := range g.EdgesFrom(id) {
			if edge.To != "" {
				continue
			}

			issues = append(issues, Issue{
				File:    node.Doc.Path,
				Field:   fieldForKind(edge.Kind),
				Message: fmt.Sprintf("unresolved reference %q", edge.Ref),
			})
		}
	}

	return issues
}

// DFS colors for cycle detection.
const (
	colorWhite = iota // unvisited
	colorGray         // in progress
	colorBlack        // done
)

// checkCycles detects cycles among resolved prerequisite edges with a
// three-color depth-first traversal. A back-edge to a gray node closes a
// cycle; the full path is reported for diagnostics. Each cycle is reported
// once, from its lexicographically smallest node.
func checkCycles(g *Graph) []Issue {
	colors := make(map[string]int, len(g.order))
	reported := make(map[string]bool)

	var (
		issues []Issue
		path   []string
		visit  func(id string)
	)

	visit = func(id string) {
		colors[id] = colorGray
		path = append(path, id)

		for _, edge := range g.EdgesFrom(id) {
			if edge.Kind != KindPrerequisite || edge.To == "" {
				continue
			}

			switch colors[edge.To] {
			case colorWhite:
				visit(edge.To)
			case colorGray:
				cycle := extractCycle(path, edge.To)
				key := strings.Join(cycle, " -> ")

				if !reported[key] {
					reported[key] = true

					issues = append(issues, Issue{
						File:    g.nodes[cycle[0]].Doc.Path,
						Field:   "prerequisites",
						Message: "prerequisite cycle: " + key + " -> " + cycle[0],
					})
				}
			}
		}

		path = path[:len(path)-1]
		colors[id] = colorBlack
	}

	for _, id := range g.order {
		if colors[id] == colorWhite {
			visit(id)
		}
	}

	return issues
}

// extractCycle returns the cycle closed by a back-edge to target, rotated so
// the smallest node ID comes first.
func extractCycle(path []string, target string) []string {
	start := 0

	for idx, id := range path {
		if id == target {
			start = idx

			break
		}
	}

	cycle := append([]string{}, path[start:]...)

	smallest := 0
	for idx, id := range cycle {
		if id < cycle[smallest] {
			smallest = idx
		}
	}

	rotated := append([]string{}, cycle[smallest:]...)
	rotated = append(rotated, cycle[:smallest]...)

	return rotated
}

// checkDepthGaps verifies that for each topic the present depth levels form
// a prefix of the progression. Gaps (deep-water without mid-depth) are
// warnings, not errors: the corpus may be intentionally incomplete while a
// level is being written. Documents without a depth tag are exempt.
func checkDepthGaps(g *Graph) []Issue {
	levels := corpus.DepthLevels()

	type topicDepths struct {
		present [3]bool
		files   [3]string
	}

	topics := make(map[string]*topicDepths)

	for _, id := range g.order {
		node := g.nodes[id]
		if node.Depth == "" {
			continue
		}

		td := topics[node.Topic]
		if td == nil {
			td = &topicDepths{}
			topics[node.Topic] = td
		}

		rank := corpus.DepthRank(node.Depth)
		td.present[rank] = true
		td.files[rank] = node.Doc.Path
	}

	names := make([]string, 0, len(topics))
	for topic := range topics {
		names = append(names, topic)
	}

	sort.Strings(names)

	var issues []Issue

	for _, topic := range names {
		td := topics[topic]

		deepest := -1
		for rank := len(levels) - 1; rank >= 0; rank-- {
			if td.present[rank] {
				deepest = rank

				break
			}
		}

		var missing []string

		for rank := 0; rank < deepest; rank++ {
			if !td.present[rank] {
				missing = append(missing, string(levels[rank]))
			}
		}

		if len(missing) == 0 {
			continue
		}

		issues = append(issues, Issue{
			File:  td.files[deepest],
			Field: "depth",
			Message: fmt.Sprintf("topic %q has %s but is missing %s",
				topic, levels[deepest], strings.Join(missing, " and ")),
		})
	}

	return issues
}
