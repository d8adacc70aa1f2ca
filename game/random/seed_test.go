package random

import "testing"

func TestNewSeed(t *testing.T) {
	seen := make(map[int64]bool)
	for i := 0; i < 16; i++ {
		seed, err := NewSeed()
		if err != nil {
			t.Fatalf("NewSeed failed: %v", err)
		}
		if seed < 0 {
			t.Errorf("Expected non-negative seed, got %d", seed)
		}
		seen[seed] = true
	}
	if len(seen) < 2 {
		t.Error("Expected seeds to vary")
	}
}
