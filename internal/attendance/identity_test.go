package attendance

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeKey(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "lowercases and trims", input: " Jane@X.com ", want: "jane@x.com"},
		{name: "collapses internal whitespace", input: "Jane   Doe", want: "jane doe"},
		{name: "blank is empty", input: "   ", want: ""},
		{name: "nan placeholder is empty", input: "nan", want: ""},
		{name: "none placeholder is empty", input: "None", want: ""},
		{name: "already normalized", input: "a@b.com", want: "a@b.com"},
		{name: "tabs and newlines collapse", input: "jane\t \ndoe", want: "jane doe"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeKey(tt.input))
		})
	}
}

func TestCleanName(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "trims and collapses", input: "  Jane   Doe  ", want: "Jane Doe"},
		{name: "preserves case", input: "JANE doe", want: "JANE doe"},
		{name: "blank is empty", input: "   ", want: ""},
		{name: "empty is empty", input: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CleanName(tt.input))
		})
	}
}

func TestChooseStrategy(t *testing.T) {
	tests := []struct {
		name          string
		hasEmail      bool
		allowFallback bool
		want          IdentityStrategy
		wantOK        bool
	}{
		{name: "email only", hasEmail: true, allowFallback: false, want: StrategyEmail, wantOK: true},
		{name: "email with fallback", hasEmail: true, allowFallback: true, want: StrategyEmailNameFallback, wantOK: true},
		{name: "name fallback without email column", hasEmail: false, allowFallback: true, want: StrategyNameOnly, wantOK: true},
		{name: "no email and no fallback is unusable", hasEmail: false, allowFallback: false, wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := chooseStrategy(tt.hasEmail, tt.allowFallback)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestResolveKey(t *testing.T) {
	tests := []struct {
		name        string
		strategy    IdentityStrategy
		email       string
		displayName string
		want        string
	}{
		{name: "email strategy uses email", strategy: StrategyEmail, email: "A@B.com", displayName: "Jane", want: "a@b.com"},
		{name: "email strategy ignores name", strategy: StrategyEmail, email: "", displayName: "Jane", want: ""},
		{name: "fallback prefers email", strategy: StrategyEmailNameFallback, email: "a@b.com", displayName: "Jane", want: "a@b.com"},
		{name: "fallback uses name when email blank", strategy: StrategyEmailNameFallback, email: "", displayName: "Jane  Doe", want: "jane doe"},
		{name: "fallback empty when both blank", strategy: StrategyEmailNameFallback, email: "", displayName: "", want: ""},
		{name: "name only", strategy: StrategyNameOnly, email: "ignored@b.com", displayName: "Jane Doe", want: "jane doe"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, resolveKey(tt.strategy, tt.email, tt.displayName))
		})
	}
}
