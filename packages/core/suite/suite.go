package suite

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Suite is an explicit registration list of scenario descriptors, built once
// at startup from a suite file.
type Suite struct {
	Name      string      `yaml:"suite"`
	Scenarios []*Scenario `yaml:"scenarios"`

	// Path is the file the suite was loaded from.
	Path string `yaml:"-"`
}

// Scenario is one ordered test unit exercising a single API behavior.
// Priority drives scheduling (ascending); DependsOn names at most one
// predecessor whose success gates execution.
type Scenario struct {
	Name      string            `yaml:"name"`
	Priority  int               `yaml:"priority"`
	DependsOn string            `yaml:"dependsOn,omitempty"`
	Skip      string            `yaml:"skip,omitempty"`
	Tags      []string          `yaml:"tags,omitempty"`
	Request   RequestSpec       `yaml:"request"`
	Assert    []*Assertion      `yaml:"assert,omitempty"`
	Capture   map[string]string `yaml:"capture,omitempty"`
}

// RequestSpec declares the HTTP call a scenario performs. Path is relative
// to the configured base URL and may contain {{...}} placeholders, as may
// headers and the body.
type RequestSpec struct {
	Method  string            `yaml:"method"`
	Path    string            `yaml:"path"`
	Headers map[string]string `yaml:"headers,omitempty"`
	Body    string            `yaml:"body,omitempty"`
}

// Operator identifies how an assertion compares actual and expected.
type Operator string

const (
	OpEquals    Operator = "equals"
	OpNotEquals Operator = "notEquals"
	OpContains  Operator = "contains"
	OpMatches   Operator = "matches"
	OpExists    Operator = "exists"
	OpSchema    Operator = "schema"
)

var operators = []Operator{OpEquals, OpNotEquals, OpContains, OpMatches, OpExists, OpSchema}

func (o Operator) String() string {
	return string(o)
}

// Assertion compares one response subject (status, header.<Name>, or a
// body JSON path) against an expected literal.
type Assertion struct {
	Subject  string
	Operator Operator
	Expected any
}

// UnmarshalYAML reads the suite-file assertion form: a mapping with a
// subject key and exactly one operator key, e.g.
//
//	- subject: status
//	  equals: 201
func (a *Assertion) UnmarshalYAML(value *yaml.Node) error {
	var raw map[string]any
	if err := value.Decode(&raw); err != nil {
		return err
	}

	subject, ok := raw["subject"].(string)
	if !ok || subject == "" {
		return fmt.Errorf("line %d: assertion needs a subject", value.Line)
	}
	a.Subject = subject

	for _, op := range operators {
		expected, ok := raw[string(op)]
		if !ok {
			continue
		}
		if a.Operator != "" {
			return fmt.Errorf("line %d: assertion on %q has more than one operator", value.Line, subject)
		}
		a.Operator = op
		a.Expected = expected
	}

	if a.Operator == "" {
		return fmt.Errorf("line %d: assertion on %q has no operator (one of equals, notEquals, contains, matches, exists, schema)", value.Line, subject)
	}

	return nil
}

// MarshalYAML renders the assertion back into the suite-file form.
func (a *Assertion) MarshalYAML() (any, error) {
	return map[string]any{
		"subject":          a.Subject,
		string(a.Operator): a.Expected,
	}, nil
}
