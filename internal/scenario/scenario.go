// Package scenario loads scripted interaction sessions and replays them on a virtual clock.
package scenario

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// ErrInvalidStep is returned when a step sets no action, or more than one.
var ErrInvalidStep = errors.New("step must set exactly one action")

// Scenario is a forest of nodes with their rules, and the interaction steps to replay.
type Scenario struct {
	Name   string     `yaml:"name" json:"name"`
	Strict bool       `yaml:"strict" json:"strict"`
	Nodes  []NodeSpec `yaml:"nodes" json:"nodes"`
	Steps  []Step     `yaml:"steps" json:"steps"`
}

// NodeSpec declares a node and the DSL record attached to it.
// Nodes are registered in file order, so parents should precede their children.
type NodeSpec struct {
	ID      string         `yaml:"id" json:"id"`
	Parent  string         `yaml:"parent" json:"parent"`
	Variant string         `yaml:"variant" json:"variant"`
	Rules   map[string]any `yaml:"rules" json:"rules"`
}

// Step is one scripted action. Exactly one field must be set.
type Step struct {
	Emit       *EmitStep `yaml:"emit,omitempty" json:"emit,omitempty"`
	Key        string    `yaml:"key,omitempty" json:"key,omitempty"`
	Wait       string    `yaml:"wait,omitempty" json:"wait,omitempty"`
	Register   *NodeSpec `yaml:"register,omitempty" json:"register,omitempty"`
	Unregister string    `yaml:"unregister,omitempty" json:"unregister,omitempty"`
	Expect     *Expect   `yaml:"expect,omitempty" json:"expect,omitempty"`
}

// EmitStep raises a trigger on a node.
type EmitStep struct {
	Node    string `yaml:"node" json:"node"`
	Trigger string `yaml:"trigger" json:"trigger"`
	Key     string `yaml:"key,omitempty" json:"key,omitempty"`
}

// Expect asserts the state of a node. Empty fields are not checked.
type Expect struct {
	Node     string `yaml:"node" json:"node"`
	Variant  string `yaml:"variant,omitempty" json:"variant,omitempty"`
	Visual   string `yaml:"visual,omitempty" json:"visual,omitempty"`
	Duration string `yaml:"duration,omitempty" json:"duration,omitempty"`
	// Absent asserts the node is not registered.
	Absent bool `yaml:"absent,omitempty" json:"absent,omitempty"`
}

// Kind names the action a step performs.
func (s Step) Kind() string {
	var kinds []string
	if s.Emit != nil {
		kinds = append(kinds, "emit")
	}
	if s.Key != "" {
		kinds = append(kinds, "key")
	}
	if s.Wait != "" {
		kinds = append(kinds, "wait")
	}
	if s.Register != nil {
		kinds = append(kinds, "register")
	}
	if s.Unregister != "" {
		kinds = append(kinds, "unregister")
	}
	if s.Expect != nil {
		kinds = append(kinds, "expect")
	}
	if len(kinds) != 1 {
		return ""
	}
	return kinds[0]
}

// Load reads a scenario file. ".json" files are parsed as JSON, anything else as YAML.
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario: %w", err)
	}

	var sc Scenario
	if strings.ToLower(filepath.Ext(path)) == ".json" {
		if err := json.Unmarshal(data, &sc); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
		}
	} else {
		sc, err = Parse(data)
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
		}
	}
	if sc.Name == "" {
		sc.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	if err := sc.Validate(); err != nil {
		return nil, err
	}
	return &sc, nil
}

// Parse decodes a YAML scenario.
func Parse(data []byte) (Scenario, error) {
	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return Scenario{}, err
	}
	return sc, nil
}

// Validate checks the structure of the scenario without running it.
func (sc *Scenario) Validate() error {
	var errs []error
	for i, n := range sc.Nodes {
		if n.ID == "" {
			errs = append(errs, fmt.Errorf("nodes[%d]: id is required", i))
		}
	}
	for i, s := range sc.Steps {
		switch s.Kind() {
		case "":
			errs = append(errs, fmt.Errorf("steps[%d]: %w", i, ErrInvalidStep))
		case "wait":
			if _, err := time.ParseDuration(s.Wait); err != nil {
				errs = append(errs, fmt.Errorf("steps[%d]: invalid wait: %w", i, err))
			}
		case "emit":
			if s.Emit.Node == "" || s.Emit.Trigger == "" {
				errs = append(errs, fmt.Errorf("steps[%d]: emit needs node and trigger", i))
			}
		case "expect":
			if s.Expect.Node == "" {
				errs = append(errs, fmt.Errorf("steps[%d]: expect needs node", i))
			}
		}
	}
	return errors.Join(errs...)
}
