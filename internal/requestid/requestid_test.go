package requestid

import "testing"

func TestNewProducesDistinctValues(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := New()
		if id == "" {
			t.Fatal("New() returned empty string")
		}
		if seen[id] {
			t.Fatalf("New() produced a duplicate id within one process: %s", id)
		}
		seen[id] = true
	}
}
