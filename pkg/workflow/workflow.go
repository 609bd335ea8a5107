package workflow

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ration-ai/ration/pkg/models"
)

// Task classifies what a file-based request asks for.
type Task string

const (
	TaskCode         Task = "code"
	TaskArchitecture Task = "architecture"
	TaskReview       Task = "review"
	// TaskAuto derives the task from the input path.
	TaskAuto Task = "auto"
)

// ParseTask validates a task name. The empty string means auto.
func ParseTask(s string) (Task, error) {
	switch Task(s) {
	case "":
		return TaskAuto, nil
	case TaskCode, TaskArchitecture, TaskReview, TaskAuto:
		return Task(s), nil
	}
	return "", fmt.Errorf("unknown task %q", s)
}

// Detect derives a task from an input path. Architecture and design
// documents outrank reviews; everything else counts as code.
func Detect(path string) Task {
	p := strings.ToLower(path)
	switch {
	case strings.Contains(p, "architecture") || strings.Contains(p, "design"):
		return TaskArchitecture
	case strings.Contains(p, "review"):
		return TaskReview
	default:
		return TaskCode
	}
}

// Router routes one prompt. *gateway.Gateway implements it.
type Router interface {
	Route(ctx context.Context, prompt string, forced models.Backend) (*models.Result, error)
}

// Workflow turns input files into analysis reports through the router.
type Workflow struct {
	router    Router
	templates Templates
	now       func() time.Time
}

// New creates a Workflow.
func New(router Router, templates Templates) *Workflow {
	return &Workflow{router: router, templates: templates, now: time.Now}
}

// DefaultOutputPath is where a report lands when no output path is given.
func DefaultOutputPath(inputPath string) string {
	return inputPath + ".out.md"
}

// Process reads an input file, routes a task-specific prompt built from
// it, and writes a markdown report to outputPath. Architecture and
// review tasks are forced onto the paid backend.
func (wf *Workflow) Process(ctx context.Context, inputPath, outputPath string, task Task) (*models.Result, error) {
	content, err := os.ReadFile(inputPath)
	if err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}

	if task == TaskAuto {
		task = Detect(inputPath)
	}

	var forced models.Backend
	if task == TaskArchitecture || task == TaskReview {
		forced = models.BackendPaid
	}

	prompt := wf.buildPrompt(filepath.Base(inputPath), task, string(content))
	res, err := wf.router.Route(ctx, prompt, forced)
	if err != nil {
		return nil, err
	}

	if dir := filepath.Dir(outputPath); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("create output dir: %w", err)
		}
	}
	report := wf.report(filepath.Base(inputPath), task, res)
	if err := os.WriteFile(outputPath, []byte(report), 0o644); err != nil {
		return nil, fmt.Errorf("write report: %w", err)
	}
	return res, nil
}

func (wf *Workflow) buildPrompt(name string, task Task, content string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "File: %s\nTask: %s\n\nInput:\n%s\n\n", name, task, content)
	b.WriteString(wf.templates.instructions(task))
	return b.String()
}

// report renders the markdown document written for a processed file.
func (wf *Workflow) report(name string, task Task, res *models.Result) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Analysis: %s\n\n", name)
	fmt.Fprintf(&b, "**Generated:** %s\n", wf.now().Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&b, "**Backend:** %s (%s)\n", res.Backend, res.Model)
	fmt.Fprintf(&b, "**Task:** %s\n", task)
	fmt.Fprintf(&b, "**Routing reason:** %s\n", res.Reason)
	if res.Cost > 0 {
		fmt.Fprintf(&b, "**Cost:** $%.4f\n", res.Cost)
	}
	fmt.Fprintf(&b, "**Budget remaining:** $%.2f\n", res.Budget.Remaining)
	b.WriteString("\n---\n\n")
	b.WriteString(res.Text)
	b.WriteString("\n")
	return b.String()
}
