package cli

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/khanglvm/orbit/internal/search"
	"github.com/khanglvm/orbit/internal/seed"
)

// run executes the root command with args against a fresh database.
func run(t *testing.T, dbPath string, args ...string) string {
	t.Helper()

	cmd := NewRootCmd()
	cmd.SetArgs(append([]string{"--db", dbPath}, args...))

	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)

	if err := cmd.Execute(); err != nil {
		t.Fatalf("orbit %s failed: %v\n%s", strings.Join(args, " "), err, buf.String())
	}
	return buf.String()
}

func TestNewRootCmd(t *testing.T) {
	cmd := NewRootCmd()

	if cmd.Use != "orbit" {
		t.Errorf("Expected Use='orbit', got %q", cmd.Use)
	}

	for _, flag := range []string{"config", "db", "debug", "json"} {
		if cmd.PersistentFlags().Lookup(flag) == nil {
			t.Errorf("Persistent flag %q not registered", flag)
		}
	}

	want := map[string]bool{"serve": false, "seed": false, "migrate": false, "questions": false, "archetypes": false, "version": false}
	for _, sub := range cmd.Commands() {
		if _, ok := want[sub.Name()]; ok {
			want[sub.Name()] = true
		}
	}
	for name, found := range want {
		if !found {
			t.Errorf("Subcommand %q not registered", name)
		}
	}
}

func TestServeCommandHelp(t *testing.T) {
	cmd := NewServeCmd()
	cmd.SetArgs([]string{"--help"})

	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)

	if err := cmd.Execute(); err != nil {
		t.Fatalf("Execute() with --help failed: %v", err)
	}

	output := buf.String()
	for _, expected := range []string{"serve", "POST /session/start", "GET  /session/:id/result", "--addr", "--seed"} {
		if !strings.Contains(output, expected) {
			t.Errorf("Help output missing %q", expected)
		}
	}
}

func TestSearchCommandRequiresQuery(t *testing.T) {
	cmd := NewRootCmd()
	cmd.SetArgs([]string{"questions", "search"})
	cmd.SetOut(new(bytes.Buffer))
	cmd.SetErr(new(bytes.Buffer))

	if err := cmd.Execute(); err == nil {
		t.Error("search without a query should fail")
	}
}

func TestMigrate(t *testing.T) {
	db := filepath.Join(t.TempDir(), "nested", "orbit.db")

	output := run(t, db, "migrate")
	if !strings.Contains(output, "Schema version: 2") {
		t.Errorf("unexpected output: %s", output)
	}
	if !strings.Contains(output, db) {
		t.Errorf("output should name the database: %s", output)
	}
}

func TestSeedAndList(t *testing.T) {
	db := filepath.Join(t.TempDir(), "orbit.db")

	var res seed.Result
	if err := json.Unmarshal([]byte(run(t, db, "seed", "--output-json")), &res); err != nil {
		t.Fatalf("seed output is not JSON: %v", err)
	}
	if res.QuestionsInserted != 10 || res.ArchetypesInserted != 5 {
		t.Errorf("unexpected seed result: %+v", res)
	}

	output := run(t, db, "seed")
	if !strings.Contains(output, "0 inserted, 10 already present") {
		t.Errorf("second seed should skip everything: %s", output)
	}

	output = run(t, db, "questions", "list")
	if !strings.Contains(output, "Questions (10)") {
		t.Errorf("unexpected list output: %s", output)
	}
	// qid_2 is listed before qid_10
	if strings.Index(output, "qid_2 ") > strings.Index(output, "qid_10 ") {
		t.Errorf("questions not in numeric id order: %s", output)
	}

	output = run(t, db, "archetypes", "ls")
	if !strings.Contains(output, "Archetypes (5)") || !strings.Contains(output, "Studio Maker") {
		t.Errorf("unexpected archetypes output: %s", output)
	}
}

func TestSearchCommands(t *testing.T) {
	db := filepath.Join(t.TempDir(), "orbit.db")
	run(t, db, "seed")

	var results []search.SearchResult
	if err := json.Unmarshal([]byte(run(t, db, "archetypes", "search", "climbing", "--output-json")), &results); err != nil {
		t.Fatalf("search output is not JSON: %v", err)
	}
	if len(results) == 0 || results[0].ID != "arch_4" {
		t.Errorf("expected arch_4 first, got %+v", results)
	}

	output := run(t, db, "questions", "search", "schedule")
	if !strings.Contains(output, "qid_6") {
		t.Errorf("expected qid_6 in results: %s", output)
	}
}

func TestEmptyCatalog(t *testing.T) {
	db := filepath.Join(t.TempDir(), "orbit.db")

	output := run(t, db, "questions", "list")
	if !strings.Contains(output, "orbit seed") {
		t.Errorf("empty catalog should suggest seeding: %s", output)
	}
}

func TestVersionCommand(t *testing.T) {
	cmd := NewVersionCmd()

	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetArgs(nil)

	if err := cmd.Execute(); err != nil {
		t.Fatalf("version failed: %v", err)
	}
	if !strings.Contains(buf.String(), "API:      0.1.0") {
		t.Errorf("unexpected version output: %s", buf.String())
	}
}
