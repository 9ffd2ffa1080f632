package memory

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeSlug(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Meu Amor! #1", "meuamor1"},
		{"our-trip-2024", "our-trip-2024"},
		{"UPPER_case", "uppercase"},
		{"  spaced  out ", "spacedout"},
		{"Ção é Amor", "oamor"},
		{"../etc/passwd", "etcpasswd"},
		{"!!!", ""},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeSlug(tt.in))
		})
	}
}

func TestResolveID(t *testing.T) {
	assert.Equal(t, "meuamor1", ResolveID("Meu Amor! #1"))

	// empty after stripping falls back to a generated id
	for _, slug := range []string{"", "#!?", "   "} {
		id := ResolveID(slug)
		assert.Regexp(t, generatedID, id)
		assert.NotEmpty(t, id)
	}
}
