package fingerprint

import (
	"testing"

	"go.uber.org/zap"
)

func TestHashString(t *testing.T) {
	tests := []struct {
		name string
		seed int32
		in   string
		want int32
	}{
		{"empty", 0, "", 0},
		{"single ascii", 0, "a", 97},
		{"two chars", 0, "ab", 97*31 + 98},
		{"seed carries", 7, "a", 7*31 + 97},
		{"surrogate pair counts two units", 0, "😀", int32(0xD83D)*31 + int32(0xDE00)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := HashString(tt.seed, tt.in); got != tt.want {
				t.Errorf("HashString(%d, %q) = %d, want %d", tt.seed, tt.in, got, tt.want)
			}
		})
	}
}

func TestHashString_Wraps(t *testing.T) {
	// long input must overflow int32 without panicking, deterministically
	s := ""
	for range 100 {
		s += "fingerprint"
	}
	a := HashString(0, s)
	b := HashString(0, s)
	if a != b {
		t.Errorf("HashString not deterministic: %d vs %d", a, b)
	}
}

func TestHashValue(t *testing.T) {
	log := zap.NewNop()

	t.Run("key order does not matter", func(t *testing.T) {
		a := HashValue(0, map[string]any{"x": 1.0, "y": "two", "z": true}, log)
		b := HashValue(0, map[string]any{"z": true, "y": "two", "x": 1.0}, log)
		if a != b {
			t.Errorf("hash depends on insertion order: %d vs %d", a, b)
		}
	})

	t.Run("parent key excluded", func(t *testing.T) {
		a := HashValue(0, map[string]any{"name": "n"}, log)
		b := HashValue(0, map[string]any{"name": "n", "parent": "whole other subtree"}, log)
		if a != b {
			t.Errorf("parent key changed the hash: %d vs %d", a, b)
		}
	})

	t.Run("numbers render without trailing fraction", func(t *testing.T) {
		a := HashValue(0, 5.0, log)
		b := HashString(0, "5")
		if a != b {
			t.Errorf("HashValue(5.0) = %d, HashString(\"5\") = %d", a, b)
		}
	})

	t.Run("list order matters", func(t *testing.T) {
		a := HashValue(0, []any{"a", "b"}, log)
		b := HashValue(0, []any{"b", "a"}, log)
		if a == b {
			t.Error("list order ignored")
		}
	})

	t.Run("bool renders as words", func(t *testing.T) {
		if HashValue(0, true, log) != HashString(0, "true") {
			t.Error("true not hashed as string")
		}
	})

	t.Run("nil is identity", func(t *testing.T) {
		if HashValue(42, nil, log) != 42 {
			t.Error("nil changed the hash")
		}
	})
}
