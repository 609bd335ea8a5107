package workflow

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"
)

// Templates holds the instruction blocks appended to file prompts, one
// per task.
type Templates struct {
	Code         string `yaml:"code"`
	Architecture string `yaml:"architecture"`
	Review       string `yaml:"review"`
}

// DefaultTemplates returns the built-in instruction blocks.
func DefaultTemplates() Templates {
	return Templates{
		Code: `Analyze and improve the code:
1. Code quality and correctness
2. Performance
3. Error handling
4. Documentation

Return the improved code with explanations.`,
		Architecture: `Write a detailed architecture analysis:
1. System design decisions
2. Performance and scalability considerations
3. Security aspects
4. Concrete improvement suggestions

Format: structured markdown document.`,
		Review: `Run a thorough review:
1. Code quality and architecture
2. Test coverage
3. Documentation completeness
4. Concrete improvement suggestions

Prioritize findings by severity.`,
	}
}

// LoadTemplates reads instruction overrides from a YAML file. A missing
// file yields the defaults; tasks absent from the file keep their
// default text.
func LoadTemplates(path string) (Templates, error) {
	t := DefaultTemplates()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return t, nil
		}
		return t, fmt.Errorf("read templates: %w", err)
	}
	if err := yaml.Unmarshal(data, &t); err != nil {
		return t, fmt.Errorf("parse templates %s: %w", path, err)
	}
	return t, nil
}

// instructions returns the block for a task. Auto must be resolved
// before calling.
func (t Templates) instructions(task Task) string {
	switch task {
	case TaskArchitecture:
		return t.Architecture
	case TaskReview:
		return t.Review
	default:
		return t.Code
	}
}
