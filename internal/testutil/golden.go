// Package testutil provides shared test helpers for stepviz Go tests.
package testutil

import (
	"bytes"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/RivorSuite/Rivor-Insights-sub001/pkg/evaluator"
)

// ScenariosDir is the scenario directory relative to the module root.
const ScenariosDir = "testdata/scenarios"

// Scenario is one golden program loaded from a YAML file.
type Scenario struct {
	Name        string          `yaml:"-"`
	Description string          `yaml:"description"`
	Tags        []string        `yaml:"tags,omitempty"`
	Source      string          `yaml:"source"`
	Budget      *ScenarioBudget `yaml:"budget,omitempty"`
	Expect      ExpectedResult  `yaml:"expect"`
}

// ScenarioBudget overrides execution limits for a scenario. Zero fields keep
// their defaults.
type ScenarioBudget struct {
	MaxWhileIterations int `yaml:"max_while_iterations"`
	MaxNestingDepth    int `yaml:"max_nesting_depth"`
	MaxRangeIterations int `yaml:"max_range_iterations"`
}

// Budget converts the override into evaluator limits.
func (b *ScenarioBudget) Budget() evaluator.Budget {
	budget := evaluator.DefaultBudget()
	if b.MaxWhileIterations > 0 {
		budget.MaxWhileIterations = b.MaxWhileIterations
	}
	if b.MaxNestingDepth > 0 {
		budget.MaxNestingDepth = b.MaxNestingDepth
	}
	budget.MaxRangeIterations = b.MaxRangeIterations
	return budget
}

// ExpectedResult describes the expected outcome of running a scenario.
// Variables are compared by display form against the final step.
type ExpectedResult struct {
	Steps     int               `yaml:"steps,omitempty"`
	Lines     []int             `yaml:"lines,omitempty,flow"`
	Output    []string          `yaml:"output,omitempty"`
	Variables map[string]string `yaml:"variables,omitempty"`
	Absent    []string          `yaml:"absent,omitempty"`
	Warnings  []string          `yaml:"warnings,omitempty"`
	Error     string            `yaml:"error,omitempty"`
}

// LoadScenario loads a scenario file. The scenario name is the file name
// without its extension.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	var s Scenario
	if err := dec.Decode(&s); err != nil {
		return nil, err
	}
	s.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return &s, nil
}

// ListScenarios returns all scenario files under root in name order.
func ListScenarios(root string) ([]string, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch filepath.Ext(e.Name()) {
		case ".yaml", ".yml":
			files = append(files, filepath.Join(root, e.Name()))
		}
	}
	sort.Strings(files)
	return files, nil
}
