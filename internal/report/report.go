// Package report renders a smoke run as a YAML or JSON document.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/mealmax/mealmax-smoke/internal/smoke"
)

type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// FormatFor picks JSON for .json paths and YAML for everything else.
func FormatFor(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return FormatJSON
	}
	return FormatYAML
}

type Step struct {
	Name       string `yaml:"name" json:"name"`
	Status     string `yaml:"status" json:"status"`
	DurationMs int64  `yaml:"duration_ms" json:"duration_ms"`
	Error      string `yaml:"error,omitempty" json:"error,omitempty"`
}

type Document struct {
	RunID      string    `yaml:"run_id" json:"run_id"`
	BaseURL    string    `yaml:"base_url" json:"base_url"`
	Status     string    `yaml:"status" json:"status"`
	Started    time.Time `yaml:"started" json:"started"`
	Finished   time.Time `yaml:"finished" json:"finished"`
	DurationMs int64     `yaml:"duration_ms" json:"duration_ms"`
	FailedStep string    `yaml:"failed_step,omitempty" json:"failed_step,omitempty"`
	Error      string    `yaml:"error,omitempty" json:"error,omitempty"`
	Steps      []Step    `yaml:"steps" json:"steps"`
	Skipped    []string  `yaml:"skipped,omitempty" json:"skipped,omitempty"`
}

func status(passed bool) string {
	if passed {
		return "passed"
	}
	return "failed"
}

func FromResult(res smoke.Result) Document {
	doc := Document{
		RunID:      res.RunID,
		BaseURL:    res.BaseURL,
		Status:     status(res.Passed()),
		Started:    res.Started,
		Finished:   res.Finished,
		DurationMs: res.Finished.Sub(res.Started).Milliseconds(),
		Steps:      make([]Step, 0, len(res.Steps)),
		Skipped:    res.Skipped,
	}
	if res.Failure != nil {
		doc.FailedStep = res.Failure.Step
		doc.Error = res.Failure.Err.Error()
	}
	for _, s := range res.Steps {
		st := Step{Name: s.Name, Status: status(s.Passed), DurationMs: s.Duration.Milliseconds()}
		if s.Err != nil {
			st.Error = s.Err.Error()
		}
		doc.Steps = append(doc.Steps, st)
	}
	return doc
}

func Encode(w io.Writer, f Format, doc Document) error {
	switch f {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(doc)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unknown report format %q", f)
	}
}

// Write renders res to path in the format implied by its extension.
func Write(path string, res smoke.Result) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create report: %w", err)
	}
	if err := Encode(f, FormatFor(path), FromResult(res)); err != nil {
		_ = f.Close()
		return fmt.Errorf("encode report: %w", err)
	}
	return f.Close()
}
