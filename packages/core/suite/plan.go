package suite

import (
	"fmt"
	"sort"
)

// BuildPlan resolves a suite into its run order: scenarios sorted by
// ascending priority (file order breaks ties), with every scenario placed
// after its declared dependency. Unknown dependency references and cycles
// are build-time errors, caught before any HTTP call is made.
func BuildPlan(s *Suite) ([]*Scenario, error) {
	byName := make(map[string]*Scenario, len(s.Scenarios))
	for _, sc := range s.Scenarios {
		byName[sc.Name] = sc
	}

	for _, sc := range s.Scenarios {
		if sc.DependsOn == "" {
			continue
		}
		if _, ok := byName[sc.DependsOn]; !ok {
			return nil, fmt.Errorf("scenario %q depends on %q which is not defined", sc.Name, sc.DependsOn)
		}
	}

	ordered := make([]*Scenario, len(s.Scenarios))
	copy(ordered, s.Scenarios)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Priority < ordered[j].Priority
	})

	// Place the lowest-priority eligible scenario, one per pass, so a
	// scenario unblocked mid-plan still runs before higher-priority ones.
	// A pass that places nothing means the remaining scenarios form a
	// dependency cycle.
	plan := make([]*Scenario, 0, len(ordered))
	placed := make(map[string]bool, len(ordered))

	for len(plan) < len(ordered) {
		progress := false
		for _, sc := range ordered {
			if placed[sc.Name] {
				continue
			}
			if sc.DependsOn != "" && !placed[sc.DependsOn] {
				continue
			}
			plan = append(plan, sc)
			placed[sc.Name] = true
			progress = true
			break
		}
		if !progress {
			var stuck []string
			for _, sc := range ordered {
				if !placed[sc.Name] {
					stuck = append(stuck, sc.Name)
				}
			}
			return nil, fmt.Errorf("circular dependency between scenarios: %v", stuck)
		}
	}

	return plan, nil
}
