package graph_test

import (
	"math/rand"
	"testing"

	"github.com/google/go-cmp/cmp"

	"mdgraph/internal/corpus"
	"mdgraph/internal/graph"
)

// doc builds a minimal valid document for graph tests.
func doc(topic string, depth corpus.Depth, prereqs ...string) corpus.Document {
	path := topic + ".md"
	if depth != "" {
		path = topic + "-" + string(depth) + ".md"
	}

	return corpus.Document{
		Path:          path,
		Title:         topic,
		Phase:         "02-design",
		Topic:         topic,
		Depth:         depth,
		Prerequisites: prereqs,
		RelatedTopics: []string{},
	}
}

type snapshot struct {
	Nodes []string
	Edges map[string][]graph.Edge
}

func snapshotOf(g *graph.Graph) snapshot {
	snap := snapshot{Edges: map[string][]graph.Edge{}}

	for _, node := range g.Nodes() {
		snap.Nodes = append(snap.Nodes, node.ID)
		if edges := g.EdgesFrom(node.ID); len(edges) > 0 {
			snap.Edges[node.ID] = edges
		}
	}

	return snap
}

func TestBuildDeterministic(t *testing.T) {
	t.Parallel()

	docs := []corpus.Document{
		doc("auth", corpus.DepthSurface),
		doc("auth", corpus.DepthMid, "auth"),
		doc("auth", corpus.DepthDeep, "auth@mid-depth"),
		doc("sessions", corpus.DepthSurface, "auth"),
		doc("case-study-login", ""),
	}

	base, errs := graph.Build(docs)
	if errs != nil {
		t.Fatalf("Build() errors: %v", errs)
	}

	rng := rand.New(rand.NewSource(1)) //nolint:gosec // deterministic shuffle for the test

	for i := 0; i < 10; i++ {
		shuffled := make([]corpus.Document, len(docs))
		copy(shuffled, docs)
		rng.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })

		got, shuffleErrs := graph.Build(shuffled)
		if shuffleErrs != nil {
			t.Fatalf("Build(shuffled) errors: %v", shuffleErrs)
		}

		if diff := cmp.Diff(snapshotOf(base), snapshotOf(got)); diff != "" {
			t.Fatalf("graph differs under shuffle (-base +shuffled):\n%s", diff)
		}
	}
}

func TestBuildDuplicateNodes(t *testing.T) {
	t.Parallel()

	first := doc("auth", corpus.DepthSurface)
	second := doc("auth", corpus.DepthSurface)
	second.Path = "elsewhere/auth-surface.md"

	g, errs := graph.Build([]corpus.Document{first, second, doc("sessions", corpus.DepthSurface)})
	if g != nil {
		t.Fatal("Build() should not return a graph alongside duplicate errors")
	}

	if len(errs) != 1 {
		t.Fatalf("got %d construction errors, want 1: %v", len(errs), errs)
	}

	if errs[0].NodeID != "auth@surface" {
		t.Errorf("NodeID = %q, want auth@surface", errs[0].NodeID)
	}

	if len(errs[0].Paths) != 2 {
		t.Errorf("Paths = %v, want both claiming files", errs[0].Paths)
	}
}

func TestResolveBareTopicPrefersShallowest(t *testing.T) {
	t.Parallel()

	g, errs := graph.Build([]corpus.Document{
		doc("auth", corpus.DepthMid),
		doc("auth", corpus.DepthDeep),
	})
	if errs != nil {
		t.Fatalf("Build() errors: %v", errs)
	}

	id, ok := g.Resolve("auth")
	if !ok || id != "auth@mid-depth" {
		t.Errorf("Resolve(auth) = %q, %v; want auth@mid-depth", id, ok)
	}

	id, ok = g.Resolve("auth@deep-water")
	if !ok || id != "auth@deep-water" {
		t.Errorf("Resolve(auth@deep-water) = %q, %v", id, ok)
	}

	if _, ok = g.Resolve("nope"); ok {
		t.Error("Resolve(nope) should fail")
	}
}

func TestResolveExactMatchBeatsTopicLookup(t *testing.T) {
	t.Parallel()

	// A bare-topic node and depth-tagged siblings can coexist; the bare node
	// owns its own ID.
	g, errs := graph.Build([]corpus.Document{
		doc("auth", ""),
		doc("auth", corpus.DepthSurface),
	})
	if errs != nil {
		t.Fatalf("Build() errors: %v", errs)
	}

	id, ok := g.Resolve("auth")
	if !ok || id != "auth" {
		t.Errorf("Resolve(auth) = %q, %v; want the bare node", id, ok)
	}
}

func TestNeighborsRelatedIsSymmetric(t *testing.T) {
	t.Parallel()

	a := doc("a", corpus.DepthSurface)
	a.RelatedTopics = []string{"b"}
	b := doc("b", corpus.DepthSurface)

	g, errs := graph.Build([]corpus.Document{a, b})
	if errs != nil {
		t.Fatalf("Build() errors: %v", errs)
	}

	got := g.Neighbors("b@surface", graph.KindRelated)
	if len(got) != 1 || got[0] != "a@surface" {
		t.Errorf("Neighbors(b, related) = %v, want [a@surface]", got)
	}
}

// The spec's canonical scenario: a surface and a mid-depth document for one
// topic, the deeper one citing the bare topic as its prerequisite.
func TestBuildAuthScenario(t *testing.T) {
	t.Parallel()

	g, errs := graph.Build([]corpus.Document{
		doc("auth", corpus.DepthSurface),
		doc("auth", corpus.DepthMid, "auth"),
	})
	if errs != nil {
		t.Fatalf("Build() errors: %v", errs)
	}

	if g.NumNodes() != 2 {
		t.Errorf("NumNodes() = %d, want 2", g.NumNodes())
	}

	if g.NumEdges() != 1 {
		t.Errorf("NumEdges() = %d, want 1", g.NumEdges())
	}

	prereqs := g.Neighbors("auth@mid-depth", graph.KindPrerequisite)
	if len(prereqs) != 1 || prereqs[0] != "auth@surface" {
		t.Errorf("Neighbors(auth@mid-depth, prerequisite) = %v, want [auth@surface]", prereqs)
	}

	deps := g.Dependents("auth@surface")
	if len(deps) != 1 || deps[0] != "auth@mid-depth" {
		t.Errorf("Dependents(auth@surface) = %v, want [auth@mid-depth]", deps)
	}
}
