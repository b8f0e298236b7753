package capture

import "fmt"

// Store holds the values captured during a single suite run. A scenario
// publishes into it on success; dependents read from it; it is discarded
// when the run ends. The runner is strictly sequential, so access is never
// concurrent and no locking is used.
type Store struct {
	values map[string]any
}

func NewStore() *Store {
	return &Store{
		values: make(map[string]any),
	}
}

// Set publishes a captured value, overwriting any prior value of the same
// key within the run.
func (s *Store) Set(name string, value any) {
	s.values[name] = value
}

func (s *Store) Get(name string) (any, bool) {
	v, ok := s.values[name]
	return v, ok
}

// GetString returns the captured value rendered as a string, for insertion
// into request paths and bodies.
func (s *Store) GetString(name string) (string, bool) {
	v, ok := s.values[name]
	if !ok {
		return "", false
	}
	return fmt.Sprintf("%v", v), true
}

func (s *Store) Len() int {
	return len(s.values)
}

// All returns a copy of the stored values, for reporting.
func (s *Store) All() map[string]any {
	out := make(map[string]any, len(s.values))
	for k, v := range s.values {
		out[k] = v
	}
	return out
}
