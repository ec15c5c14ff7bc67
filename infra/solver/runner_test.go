package solver

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/axwifi/musched/core/roundsched"
)

func writeScript(t *testing.T, dir, body string) string {
	t.Helper()
	path := filepath.Join(dir, "fake_solver.sh")
	script := "#!/bin/sh\n" + body
	if err := os.WriteFile(path, []byte(script), 0o755); err != nil {
		t.Fatalf("write script: %v", err)
	}
	return path
}

func TestRunner_Solve(t *testing.T) {
	dir := t.TempDir()
	// Record the arguments and emit a fixed matching with a comment line.
	script := writeScript(t, dir, strings.Join([]string{
		`echo "$@" > args.txt`,
		`printf '# solved\n0,0\n1,2\n' > schedule.out`,
	}, "\n"))

	r, err := NewRunner(Config{Command: script, WorkDir: dir})
	if err != nil {
		t.Fatalf("new runner: %v", err)
	}
	pairs, err := r.Solve(roundsched.SolveRequest{
		Rounds:      4,
		RuTypeIndex: 2,
		TotalTones:  468,
		Entries: []roundsched.Packet{
			{AID: 1, Arrival: 0, Deadline: 1, Penalty: 1.5},
			{AID: 2, Arrival: 2, Deadline: 3, Penalty: 2},
		},
	})
	if err != nil {
		t.Fatalf("solve: %v", err)
	}
	want := []roundsched.SolvedPair{{Packet: 0, Round: 0}, {Packet: 1, Round: 2}}
	if len(pairs) != len(want) {
		t.Fatalf("expected %d pairs, got %d", len(want), len(pairs))
	}
	for i, p := range pairs {
		if p != want[i] {
			t.Fatalf("pair %d: expected %+v, got %+v", i, want[i], p)
		}
	}

	args, err := os.ReadFile(filepath.Join(dir, "args.txt"))
	if err != nil {
		t.Fatalf("read args: %v", err)
	}
	got := strings.TrimSpace(string(args))
	expected := "4 2 2 468 0 1 1.5 2 3 2"
	if got != expected {
		t.Fatalf("expected args %q, got %q", expected, got)
	}
}

func TestRunner_CommandFailure(t *testing.T) {
	dir := t.TempDir()
	script := writeScript(t, dir, "exit 3")
	r, err := NewRunner(Config{Command: script, WorkDir: dir})
	if err != nil {
		t.Fatalf("new runner: %v", err)
	}
	if _, err := r.Solve(roundsched.SolveRequest{Rounds: 1}); err == nil {
		t.Fatal("expected error for failing command")
	}
}

func TestRunner_MissingResultFile(t *testing.T) {
	dir := t.TempDir()
	script := writeScript(t, dir, "true")
	r, err := NewRunner(Config{Command: script, WorkDir: dir})
	if err != nil {
		t.Fatalf("new runner: %v", err)
	}
	if _, err := r.Solve(roundsched.SolveRequest{Rounds: 1}); err == nil {
		t.Fatal("expected error for missing result file")
	}
}

func TestRunner_MalformedResult(t *testing.T) {
	dir := t.TempDir()
	script := writeScript(t, dir, `printf '0;1\n' > schedule.out`)
	r, err := NewRunner(Config{Command: script, WorkDir: dir})
	if err != nil {
		t.Fatalf("new runner: %v", err)
	}
	if _, err := r.Solve(roundsched.SolveRequest{Rounds: 1}); err == nil {
		t.Fatal("expected error for malformed result line")
	}
}

func TestRunner_StaleResultRemoved(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "schedule.out"), []byte("0,0\n"), 0o644); err != nil {
		t.Fatalf("seed stale result: %v", err)
	}
	script := writeScript(t, dir, "true")
	r, err := NewRunner(Config{Command: script, WorkDir: dir})
	if err != nil {
		t.Fatalf("new runner: %v", err)
	}
	if _, err := r.Solve(roundsched.SolveRequest{Rounds: 1}); err == nil {
		t.Fatal("expected error after stale result was removed")
	}
}

func TestNewRunner_Validation(t *testing.T) {
	if _, err := NewRunner(Config{}); err == nil {
		t.Fatal("expected error for missing command")
	}
	if _, err := NewRunner(Config{Command: "solve", TimeoutSeconds: -1}); err == nil {
		t.Fatal("expected error for negative timeout")
	}
}
