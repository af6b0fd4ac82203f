package policy

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/hellybrine/terraforms/pkg/cloud"
)

// Action is a cleanup verb a plan step applies to a category.
type Action string

const (
	ActionPause  Action = "pause"
	ActionDelete Action = "delete"
)

// Step is one ordered entry in a cleanup plan.
type Step struct {
	Category cloud.Category `yaml:"category"`
	Action   Action         `yaml:"action"`
}

// Plan is the ordered sequence of category actions the sequencer runs.
// Order matters: compute first (largest hourly spend), then gateways
// (billed while idle), then databases.
type Plan struct {
	Steps []Step `yaml:"steps"`
}

// DefaultPlan returns the built-in cleanup sequence.
func DefaultPlan() Plan {
	return Plan{Steps: []Step{
		{Category: cloud.CategoryCompute, Action: ActionPause},
		{Category: cloud.CategoryGateway, Action: ActionDelete},
		{Category: cloud.CategoryDatabase, Action: ActionPause},
	}}
}

// LoadPlan reads a cleanup plan from a YAML file.
func LoadPlan(path string) (Plan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Plan{}, fmt.Errorf("read plan file: %w", err)
	}

	var plan Plan
	if err := yaml.Unmarshal(data, &plan); err != nil {
		return Plan{}, fmt.Errorf("parse plan file: %w", err)
	}
	if err := plan.Validate(); err != nil {
		return Plan{}, err
	}
	return plan, nil
}

// Validate checks every step against the supported category/action pairs.
func (p Plan) Validate() error {
	if len(p.Steps) == 0 {
		return fmt.Errorf("plan has no steps")
	}
	for i, step := range p.Steps {
		switch {
		case step.Category == cloud.CategoryCompute && step.Action == ActionPause:
		case step.Category == cloud.CategoryGateway && step.Action == ActionDelete:
		case step.Category == cloud.CategoryDatabase && step.Action == ActionPause:
		default:
			return fmt.Errorf("step %d: unsupported %s/%s", i, step.Category, step.Action)
		}
	}
	return nil
}
