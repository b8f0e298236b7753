package suite

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

var allowedMethods = map[string]bool{
	"GET":     true,
	"POST":    true,
	"PUT":     true,
	"PATCH":   true,
	"DELETE":  true,
	"HEAD":    true,
	"OPTIONS": true,
}

// Load reads and validates a suite file.
func Load(path string) (*Suite, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read suite file: %w", err)
	}

	var s Suite
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	s.Path = path

	if err := s.validate(); err != nil {
		return nil, fmt.Errorf("invalid suite %s: %w", path, err)
	}

	return &s, nil
}

func (s *Suite) validate() error {
	if len(s.Scenarios) == 0 {
		return fmt.Errorf("suite declares no scenarios")
	}

	seen := make(map[string]bool, len(s.Scenarios))
	for i, sc := range s.Scenarios {
		if sc.Name == "" {
			return fmt.Errorf("scenario #%d has no name", i+1)
		}
		if seen[sc.Name] {
			return fmt.Errorf("duplicate scenario name %q", sc.Name)
		}
		seen[sc.Name] = true

		method := strings.ToUpper(sc.Request.Method)
		if !allowedMethods[method] {
			return fmt.Errorf("scenario %q: unsupported method %q", sc.Name, sc.Request.Method)
		}
		sc.Request.Method = method

		if sc.Request.Path == "" {
			return fmt.Errorf("scenario %q: request has no path", sc.Name)
		}
		if sc.DependsOn == sc.Name {
			return fmt.Errorf("scenario %q depends on itself", sc.Name)
		}
	}

	return nil
}

// ByName returns the scenario with the given name, or nil.
func (s *Suite) ByName(name string) *Scenario {
	for _, sc := range s.Scenarios {
		if sc.Name == name {
			return sc
		}
	}
	return nil
}
