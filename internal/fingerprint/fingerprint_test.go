package fingerprint

import (
	"strings"
	"testing"
)

func TestKeyIsDeterministic(t *testing.T) {
	rows := [][]string{
		{"Unit", "Rent"},
		{"101", "1200"},
	}

	first := Key("roll.xlsx", 2048, rows)
	second := Key("roll.xlsx", 2048, rows)

	if first != second {
		t.Fatalf("expected identical keys, got %q and %q", first, second)
	}
	if first == "" {
		t.Fatalf("expected non-empty key")
	}
}

func TestKeyChangesWithContent(t *testing.T) {
	base := Key("roll.xlsx", 2048, [][]string{{"Unit", "Rent"}, {"101", "1200"}})

	differentRows := Key("roll.xlsx", 2048, [][]string{{"Unit", "Rent"}, {"102", "1350"}})
	if differentRows == base {
		t.Fatalf("expected different key for different rows")
	}

	differentName := Key("other.xlsx", 2048, [][]string{{"Unit", "Rent"}, {"101", "1200"}})
	if differentName == base {
		t.Fatalf("expected different key for different name")
	}

	differentSize := Key("roll.xlsx", 4096, [][]string{{"Unit", "Rent"}, {"101", "1200"}})
	if differentSize == base {
		t.Fatalf("expected different key for different size")
	}
}

func TestKeyIgnoresRowsBeyondSample(t *testing.T) {
	rows := make([][]string, 0, 12)
	for i := 0; i < 12; i++ {
		rows = append(rows, []string{"unit", "1200"})
	}
	truncated := append([][]string{}, rows[:10]...)

	if Key("roll.csv", 100, rows) != Key("roll.csv", 100, truncated) {
		t.Fatalf("rows beyond the sample limit should not change the key")
	}
}

func TestKeyIsStorageSafe(t *testing.T) {
	key := Key("rent roll (v2).xlsx", 2048, [][]string{{"a,b", "c d"}})
	for _, r := range key {
		valid := (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '_'
		if !valid {
			t.Fatalf("key %q contains unsafe character %q", key, r)
		}
	}
	if !strings.Contains(key, "rent_roll") {
		t.Fatalf("expected sanitized name in key, got %q", key)
	}
}

func TestKeyHandlesEmptySample(t *testing.T) {
	if Key("empty.csv", 0, nil) != Key("empty.csv", 0, [][]string{}) {
		t.Fatalf("nil and empty samples should fingerprint identically")
	}
}
