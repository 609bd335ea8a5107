package workflow

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ration-ai/ration/pkg/models"
)

type stubRouter struct {
	result  *models.Result
	err     error
	prompts []string
	forced  []models.Backend
}

func (r *stubRouter) Route(ctx context.Context, prompt string, forced models.Backend) (*models.Result, error) {
	r.prompts = append(r.prompts, prompt)
	r.forced = append(r.forced, forced)
	if r.err != nil {
		return nil, r.err
	}
	return r.result, nil
}

func paidResult() *models.Result {
	return &models.Result{
		Text: "looks solid", Backend: models.BackendPaid, Model: "claude",
		Reason: "forced", Cost: 0.0123, InputTokens: 100, OutputTokens: 50,
		Budget: models.Snapshot{Month: "2026-08", Spent: 1.0, Budget: 5, Remaining: 4},
	}
}

func localResult() *models.Result {
	return &models.Result{
		Text: "done", Backend: models.BackendLocal, Model: "mistral",
		Reason: "simple task",
		Budget: models.Snapshot{Month: "2026-08", Budget: 5, Remaining: 5},
	}
}

func writeInput(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestParseTask(t *testing.T) {
	for _, s := range []string{"code", "architecture", "review", "auto"} {
		task, err := ParseTask(s)
		if err != nil || string(task) != s {
			t.Errorf("ParseTask(%q) = %q, %v", s, task, err)
		}
	}
	if task, err := ParseTask(""); err != nil || task != TaskAuto {
		t.Errorf("expected empty string to mean auto, got %q, %v", task, err)
	}
	if _, err := ParseTask("poetry"); err == nil {
		t.Error("expected error for unknown task")
	}
}

func TestDetect(t *testing.T) {
	cases := map[string]Task{
		"docs/system_design.md":    TaskArchitecture,
		"architecture/overview.md": TaskArchitecture,
		"notes/code_review.md":     TaskReview,
		"REVIEW_findings.md":       TaskReview,
		"src/main.go":              TaskCode,
		"features/vrp_core.py":     TaskCode,
	}
	for path, want := range cases {
		if got := Detect(path); got != want {
			t.Errorf("Detect(%q) = %q, want %q", path, got, want)
		}
	}
}

func TestDefaultOutputPath(t *testing.T) {
	if got := DefaultOutputPath("notes.md"); got != "notes.md.out.md" {
		t.Errorf("unexpected output path %q", got)
	}
}

func TestProcessWritesReport(t *testing.T) {
	input := writeInput(t, "main.go", "package main")
	output := filepath.Join(t.TempDir(), "out", "report.md")

	rt := &stubRouter{result: paidResult()}
	wf := New(rt, DefaultTemplates())
	wf.now = func() time.Time { return time.Date(2026, 8, 25, 10, 30, 0, 0, time.UTC) }

	res, err := wf.Process(context.Background(), input, output, TaskCode)
	if err != nil {
		t.Fatal(err)
	}
	if res.Text != "looks solid" {
		t.Errorf("unexpected result: %+v", res)
	}

	if len(rt.prompts) != 1 {
		t.Fatalf("expected 1 routed prompt, got %d", len(rt.prompts))
	}
	prompt := rt.prompts[0]
	for _, want := range []string{"File: main.go", "Task: code", "package main", "Analyze and improve the code:"} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q:\n%s", want, prompt)
		}
	}
	if rt.forced[0] != "" {
		t.Errorf("code task must not force a backend, got %q", rt.forced[0])
	}

	report, err := os.ReadFile(output)
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{
		"# Analysis: main.go",
		"**Generated:** 2026-08-25 10:30:00",
		"**Backend:** paid (claude)",
		"**Task:** code",
		"**Routing reason:** forced",
		"**Cost:** $0.0123",
		"**Budget remaining:** $4.00",
		"looks solid",
	} {
		if !strings.Contains(string(report), want) {
			t.Errorf("report missing %q:\n%s", want, report)
		}
	}
}

func TestProcessForcesPaidForArchitecture(t *testing.T) {
	input := writeInput(t, "overview.md", "services and queues")
	rt := &stubRouter{result: paidResult()}
	wf := New(rt, DefaultTemplates())

	for _, task := range []Task{TaskArchitecture, TaskReview} {
		output := filepath.Join(t.TempDir(), "report.md")
		if _, err := wf.Process(context.Background(), input, output, task); err != nil {
			t.Fatal(err)
		}
	}
	if len(rt.forced) != 2 || rt.forced[0] != models.BackendPaid || rt.forced[1] != models.BackendPaid {
		t.Errorf("expected paid forced for both tasks, got %v", rt.forced)
	}
}

func TestProcessAutoDetect(t *testing.T) {
	input := writeInput(t, "query_design.md", "schema sketch")
	output := filepath.Join(t.TempDir(), "report.md")

	rt := &stubRouter{result: paidResult()}
	wf := New(rt, DefaultTemplates())

	if _, err := wf.Process(context.Background(), input, output, TaskAuto); err != nil {
		t.Fatal(err)
	}
	if rt.forced[0] != models.BackendPaid {
		t.Errorf("expected detected architecture task to force paid, got %q", rt.forced[0])
	}
	if !strings.Contains(rt.prompts[0], "Task: architecture") {
		t.Errorf("prompt missing detected task:\n%s", rt.prompts[0])
	}
}

func TestProcessOmitsZeroCost(t *testing.T) {
	input := writeInput(t, "main.go", "package main")
	output := filepath.Join(t.TempDir(), "report.md")

	rt := &stubRouter{result: localResult()}
	wf := New(rt, DefaultTemplates())

	if _, err := wf.Process(context.Background(), input, output, TaskCode); err != nil {
		t.Fatal(err)
	}
	report, err := os.ReadFile(output)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(report), "**Cost:**") {
		t.Errorf("free completions must not show a cost line:\n%s", report)
	}
	if !strings.Contains(string(report), "**Budget remaining:** $5.00") {
		t.Errorf("report missing budget line:\n%s", report)
	}
}

func TestProcessMissingInput(t *testing.T) {
	rt := &stubRouter{result: localResult()}
	wf := New(rt, DefaultTemplates())

	_, err := wf.Process(context.Background(), filepath.Join(t.TempDir(), "nope.md"), "out.md", TaskCode)
	if err == nil {
		t.Fatal("expected error for missing input")
	}
	if len(rt.prompts) != 0 {
		t.Error("router should not run without input")
	}
}

func TestProcessRouterError(t *testing.T) {
	input := writeInput(t, "main.go", "package main")
	output := filepath.Join(t.TempDir(), "report.md")

	routeErr := errors.New("all backends failed")
	rt := &stubRouter{err: routeErr}
	wf := New(rt, DefaultTemplates())

	if _, err := wf.Process(context.Background(), input, output, TaskCode); !errors.Is(err, routeErr) {
		t.Fatalf("expected route error, got %v", err)
	}
	if _, err := os.Stat(output); err == nil {
		t.Error("no report should be written when routing fails")
	}
}

func TestLoadTemplatesMissing(t *testing.T) {
	got, err := LoadTemplates(filepath.Join(t.TempDir(), "tasks.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if got != DefaultTemplates() {
		t.Errorf("expected defaults for missing file, got %+v", got)
	}
}

func TestLoadTemplatesOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tasks.yaml")
	if err := os.WriteFile(path, []byte("review: Check the invariants.\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	got, err := LoadTemplates(path)
	if err != nil {
		t.Fatal(err)
	}
	if got.Review != "Check the invariants." {
		t.Errorf("expected review override, got %q", got.Review)
	}
	if got.Code != DefaultTemplates().Code {
		t.Error("expected code template to keep its default")
	}
}

func TestLoadTemplatesMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tasks.yaml")
	if err := os.WriteFile(path, []byte("review: [unclosed"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadTemplates(path); err == nil {
		t.Fatal("expected parse error")
	}
}
