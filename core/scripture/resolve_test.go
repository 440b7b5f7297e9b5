package scripture

import "testing"

func TestResolve(t *testing.T) {
	tests := []struct {
		input string
		want  string
		ok    bool
	}{
		{"Psalms", "Psalms", true},
		{"  Psalms  ", "Psalms", true},
		{"psalm", "Psalms", true},
		{"jn.", "John", true},
		{"JN.", "John", true},
		{"1 cor", "1 Corinthians", true},
		{"1cor", "1 Corinthians", true},
		{"song of songs", "Song of Solomon", true},
		{"Rev", "Revelation", true},
		{"J", "Joshua", true},
		{"phile", "Philemon", true},
		{"1 jo", "1 John", true},
		{"genesis", "Genesis", true},
		{"Hezekiah", "", false},
		{"", "", false},
		{"   ", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := Resolve(tt.input)
			if got != tt.want || ok != tt.ok {
				t.Errorf("Resolve(%q) = %q, %v; want %q, %v", tt.input, got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestResolveCanonicalNames(t *testing.T) {
	for _, name := range Books() {
		if got, ok := Resolve(name); !ok || got != name {
			t.Errorf("Resolve(%q) = %q, %v", name, got, ok)
		}
	}
}
