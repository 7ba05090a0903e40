package slug

import (
	"context"
	"errors"
	"testing"
)

// TestGenerate exercises the slug generator with sound names, file names,
// accented input, and boundary conditions.
func TestGenerate(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		// --- Normal names ---
		{name: "simple two words", input: "Rain Forest", want: "rain-forest"},
		{name: "name with number", input: "Thunder 2", want: "thunder-2"},
		{name: "single word", input: "Gong", want: "gong"},
		{name: "already a slug", input: "door-bell", want: "door-bell"},

		// --- Special characters ---
		{name: "punctuation marks", input: "Boom! Crash? Bang.", want: "boom-crash-bang"},
		{name: "ampersand", input: "Rock & Roll", want: "rock-roll"},
		{name: "parentheses", input: "Kick (Soft)", want: "kick-soft"},
		{name: "underscore becomes hyphen", input: "dog_bark_loud", want: "dog-bark-loud"},
		{name: "dots dropped", input: "take.1", want: "take1"},

		// --- Unicode ---
		{name: "french accents folded", input: "Café Crème", want: "cafe-creme"},
		{name: "german umlauts folded", input: "Über die Brücke", want: "uber-die-brucke"},
		{name: "spanish tilde folded", input: "Señal Baja", want: "senal-baja"},
		{name: "non-latin dropped", input: "音 Sound", want: "sound"},

		// --- Whitespace ---
		{name: "leading and trailing spaces", input: "  bird song  ", want: "bird-song"},
		{name: "multiple spaces collapsed", input: "bird    song", want: "bird-song"},
		{name: "tab separated", input: "bird\tsong", want: "bird-song"},

		// --- Hyphens ---
		{name: "leading hyphens", input: "---wind", want: "wind"},
		{name: "multiple hyphens collapsed", input: "wind---chime", want: "wind-chime"},
		{name: "hyphens and spaces mixed", input: "  --wind -- chime--  ", want: "wind-chime"},

		// --- Edge cases ---
		{name: "empty string", input: "", want: ""},
		{name: "only spaces", input: "     ", want: ""},
		{name: "only special characters", input: "!@#$%^&*()", want: ""},
		{name: "single character", input: "A", want: "a"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Generate(tt.input)
			if got != tt.want {
				t.Errorf("Generate(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

// TestGenerate_Idempotent verifies that generating a slug from an already
// valid slug produces the same result.
func TestGenerate_Idempotent(t *testing.T) {
	for _, s := range []string{"hello-world", "sound-effects-2", "a", "123"} {
		t.Run(s, func(t *testing.T) {
			if got := Generate(s); got != s {
				t.Errorf("Generate(%q) = %q, want idempotent result %q", s, got, s)
			}
		})
	}
}

// takenSet returns an ExistsFunc backed by a fixed set of slugs.
func takenSet(slugs ...string) ExistsFunc {
	set := make(map[string]bool, len(slugs))
	for _, s := range slugs {
		set[s] = true
	}
	return func(_ context.Context, s string) (bool, error) {
		return set[s], nil
	}
}

func TestUnique(t *testing.T) {
	tests := []struct {
		name  string
		base  string
		taken []string
		want  string
	}{
		{name: "free", base: "rain", want: "rain"},
		{name: "first collision", base: "rain", taken: []string{"rain"}, want: "rain-2"},
		{name: "several collisions", base: "rain", taken: []string{"rain", "rain-2", "rain-3"}, want: "rain-4"},
		{name: "gap is not reused", base: "rain", taken: []string{"rain", "rain-3"}, want: "rain-2"},
		{name: "empty base", base: "", want: Fallback},
		{name: "empty base taken", base: "", taken: []string{Fallback}, want: Fallback + "-2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Unique(context.Background(), tt.base, takenSet(tt.taken...))
			if err != nil {
				t.Fatalf("Unique() error: %v", err)
			}
			if got != tt.want {
				t.Errorf("Unique(%q) = %q, want %q", tt.base, got, tt.want)
			}
		})
	}
}

func TestUnique_PropagatesError(t *testing.T) {
	boom := errors.New("db down")
	_, err := Unique(context.Background(), "rain", func(context.Context, string) (bool, error) {
		return false, boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("Unique() error = %v, want wrapped %v", err, boom)
	}
}
