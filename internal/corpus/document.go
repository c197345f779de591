// Package corpus defines the document metadata model, the frontmatter schema
// validator, and corpus discovery over a directory tree of markdown files.
package corpus

import "slices"

// Depth is the progressive-disclosure level of a document within a topic.
type Depth string

// Depth levels in progression order. A document without a depth tag (case
// studies, glossaries) sits outside the progression entirely.
const (
	DepthSurface Depth = "surface"
	DepthMid     Depth = "mid-depth"
	DepthDeep    Depth = "deep-water"
)

// depthOrder lists the depth levels in progression order.
//
//nolint:gochecknoglobals // package-level constant
var depthOrder = []Depth{DepthSurface, DepthMid, DepthDeep}

// DepthLevels returns the depth levels in progression order.
func DepthLevels() []Depth {
	return slices.Clone(depthOrder)
}

// IsValidDepth reports whether s is one of the three depth literals.
func IsValidDepth(s string) bool {
	return slices.Contains(depthOrder, Depth(s))
}

// DepthRank returns the position of d in the progression (surface=0). Rank -1
// means no depth tag.
func DepthRank(d Depth) int {
	return slices.Index(depthOrder, d)
}

// Document is a single validated content unit.
type Document struct {
	// Path is the corpus-relative file path, slash-separated. It is the
	// stable identifier used in error reports.
	Path string

	Title string
	Phase string
	Topic string
	Depth Depth // empty when the document is not depth-tagged

	Type     string
	Domain   string
	Industry string
	Updated  string

	Keywords    []string
	ReadingTime int // minutes, 0 when absent

	Prerequisites []string
	RelatedTopics []string
	Personas      []string
}

// NodeID returns the graph node identifier for the document: "topic@depth"
// for depth-tagged documents, the bare topic otherwise.
func (d Document) NodeID() string {
	return NodeID(d.Topic, d.Depth)
}

// NodeID builds a node identifier from a topic and an optional depth.
func NodeID(topic string, depth Depth) string {
	if depth == "" {
		return topic
	}

	return topic + "@" + string(depth)
}
