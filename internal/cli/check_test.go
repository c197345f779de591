package cli

import (
	"encoding/json"
	"testing"
)

const docAuthSurface = `---
title: Authentication Basics
phase: 02-design
topic: auth
depth: surface
---

Start here.
`

const docAuthMid = `---
title: Authentication in Practice
phase: 02-design
topic: auth
depth: mid-depth
prerequisites:
  - auth
related_topics:
  - sessions
---

Go deeper.
`

const docSessions = `---
title: Session Management
phase: 02-design
topic: sessions
depth: surface
---

Sessions.
`

func TestCheckCommand(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		setup      func(r *CLI)
		args       []string
		wantExit   int
		wantStdout []string
		wantStderr []string
	}{
		{
			name: "validated corpus",
			setup: func(r *CLI) {
				r.WriteDoc("auth-surface.md", docAuthSurface)
				r.WriteDoc("auth-mid.md", docAuthMid)
				r.WriteDoc("sessions.md", docSessions)
			},
			args:       []string{"check"},
			wantExit:   0,
			wantStdout: []string{"corpus validated: 3 documents", "3 nodes", "2 edges"},
		},
		{
			name: "schema failure exits 2",
			setup: func(r *CLI) {
				r.WriteDoc("bad.md", "---\ntitle: \"\"\nphase: 02-design\ntopic: bad\n---\n")
			},
			args:       []string{"check"},
			wantExit:   2,
			wantStderr: []string{"bad.md: title: must not be empty", "error: corpus schema-failed"},
		},
		{
			name: "duplicate node exits 3",
			setup: func(r *CLI) {
				r.WriteDoc("auth-surface.md", docAuthSurface)
				r.WriteDoc("copies/auth.md", docAuthSurface)
			},
			args:       []string{"check"},
			wantExit:   3,
			wantStderr: []string{"auth@surface", "error: corpus graph-failed"},
		},
		{
			name: "dangling reference exits 4",
			setup: func(r *CLI) {
				r.WriteDoc("auth-surface.md", docAuthSurface)
				r.WriteDoc("auth-mid.md", docAuthMid)
			},
			args:     []string{"check"},
			wantExit: 4,
			wantStderr: []string{
				"auth-mid.md: related_topics:", `unresolved reference "sessions"`,
				"error: corpus integrity-failed",
			},
		},
		{
			name: "depth gap warns without failing",
			setup: func(r *CLI) {
				r.WriteDoc("auth-deep.md", `---
title: Auth Internals
phase: 02-design
topic: auth
depth: deep-water
---
`)
			},
			args:       []string{"check"},
			wantExit:   0,
			wantStdout: []string{"corpus validated: 1 documents"},
			wantStderr: []string{"warning:", "missing surface and mid-depth"},
		},
		{
			name:       "missing corpus directory exits 1",
			setup:      nil,
			args:       []string{"check"},
			wantExit:   1,
			wantStderr: []string{"corpus directory"},
		},
		{
			name: "rejects positional arguments",
			setup: func(r *CLI) {
				r.WriteDoc("auth-surface.md", docAuthSurface)
			},
			args:       []string{"check", "extra"},
			wantExit:   1,
			wantStderr: []string{"unexpected argument"},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			r := NewCLI(t)
			if tt.setup != nil {
				tt.setup(r)
			}

			stdout, stderr, code := r.Run(tt.args...)

			if code != tt.wantExit {
				t.Errorf("exit code = %d, want %d\nstdout: %s\nstderr: %s", code, tt.wantExit, stdout, stderr)
			}

			for _, want := range tt.wantStdout {
				AssertContains(t, stdout, want)
			}

			for _, want := range tt.wantStderr {
				AssertContains(t, stderr, want)
			}
		})
	}
}

func TestCheckJSON(t *testing.T) {
	t.Parallel()

	r := NewCLI(t)
	r.WriteDoc("auth-surface.md", docAuthSurface)
	r.WriteDoc("auth-mid.md", docAuthMid)
	r.WriteDoc("sessions.md", docSessions)

	stdout, _, code := r.Run("check", "--json")
	if code != 0 {
		t.Fatalf("exit code = %d, want 0", code)
	}

	var report struct {
		State     string `json:"state"`
		Documents int    `json:"documents"`
		Nodes     int    `json:"nodes"`
		Edges     int    `json:"edges"`
	}

	if err := json.Unmarshal([]byte(stdout), &report); err != nil {
		t.Fatalf("stdout is not valid JSON: %v\n%s", err, stdout)
	}

	if report.State != "validated" || report.Documents != 3 || report.Nodes != 3 || report.Edges != 2 {
		t.Errorf("report = %+v, want validated/3/3/2", report)
	}
}

func TestCheckJSONCarriesFindings(t *testing.T) {
	t.Parallel()

	r := NewCLI(t)
	r.WriteDoc("auth-mid.md", docAuthMid)

	stdout, _, code := r.Run("check", "--json")
	if code != 4 {
		t.Fatalf("exit code = %d, want 4", code)
	}

	var report struct {
		State  string `json:"state"`
		Errors []struct {
			File  string `json:"file"`
			Field string `json:"field"`
		} `json:"errors"`
	}

	if err := json.Unmarshal([]byte(stdout), &report); err != nil {
		t.Fatalf("stdout is not valid JSON: %v\n%s", err, stdout)
	}

	if report.State != "integrity-failed" || len(report.Errors) == 0 {
		t.Errorf("report = %+v, want integrity-failed with errors", report)
	}
}
