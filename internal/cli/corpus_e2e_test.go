package cli_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mdgraph/internal/cli"
)

// Full authoring lifecycle: scaffold documents, validate, inspect, export.
func TestCorpusLifecycle(t *testing.T) {
	t.Parallel()

	h := cli.NewCLI(t)

	rel := h.MustRun("new", "auth", "--title", "Authentication Basics",
		"--phase", "02-design", "--depth", "surface")
	require.Equal(t, "auth-surface.md", rel)

	h.MustRun("new", "sessions", "--title", "Session Management",
		"--phase", "02-design", "--depth", "surface")

	// A hand-written document referencing both scaffolds.
	h.WriteDoc("auth-mid.md", `---
title: Authentication in Practice
phase: 02-design
topic: auth
depth: mid-depth
prerequisites:
  - auth
related_topics:
  - sessions
---
`)

	stdout := h.MustRun("check")
	assert.Contains(t, stdout, "corpus validated: 3 documents, 3 nodes, 2 edges")

	listing := h.MustRun("ls")
	assert.Contains(t, listing, "auth@mid-depth")
	assert.Contains(t, listing, "sessions@surface")

	shown := h.MustRun("show", "auth@mid-depth")
	assert.Contains(t, shown, "prerequisites: auth@surface")
	assert.Contains(t, shown, "related: sessions@surface")

	h.MustRun("export")

	data, readErr := os.ReadFile(filepath.Join(h.Dir, "corpus-graph.json"))
	require.NoError(t, readErr)

	var export struct {
		Nodes []struct {
			ID string `json:"id"`
		} `json:"nodes"`
		Edges []struct {
			From string `json:"from"`
			To   string `json:"to"`
		} `json:"edges"`
	}
	require.NoError(t, json.Unmarshal(data, &export))
	assert.Len(t, export.Nodes, 3)
	assert.Len(t, export.Edges, 2)
}

// Breaking a validated corpus flips check to the matching failed state and
// exit code without touching a previous export.
func TestCorpusBreakAfterExport(t *testing.T) {
	t.Parallel()

	h := cli.NewCLI(t)
	h.MustRun("new", "auth", "--title", "Authentication Basics",
		"--phase", "02-design", "--depth", "surface")
	h.MustRun("export")

	exported, readErr := os.ReadFile(filepath.Join(h.Dir, "corpus-graph.json"))
	require.NoError(t, readErr)

	// Introduce a dangling prerequisite.
	h.WriteDoc("auth-mid.md", `---
title: Authentication in Practice
phase: 02-design
topic: auth
depth: mid-depth
prerequisites:
  - nonexistent-topic
---
`)

	_, stderr, code := h.Run("check")
	require.Equal(t, 4, code)
	assert.Contains(t, stderr, `unresolved reference "nonexistent-topic"`)

	_, _, exportCode := h.Run("export")
	require.Equal(t, 4, exportCode)

	after, afterErr := os.ReadFile(filepath.Join(h.Dir, "corpus-graph.json"))
	require.NoError(t, afterErr)
	assert.True(t, strings.Contains(string(after), "auth@surface"))
	assert.Equal(t, string(exported), string(after))
}
