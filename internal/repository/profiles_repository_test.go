package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitList(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []string
	}{
		{"comma joined", "AI, ML,NLP", []string{"AI", "ML", "NLP"}},
		{"single item", "Databases", []string{"Databases"}},
		{"preserves order", "b, a, c", []string{"b", "a", "c"}},
		{"drops empties", "AI,, ,ML,", []string{"AI", "ML"}},
		{"empty string", "", nil},
		{"whitespace only", "   ", nil},
		{"only separators", ", ,", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, splitList(tt.raw))
		})
	}
}

func TestDeref(t *testing.T) {
	s := "value"
	assert.Equal(t, "value", deref(&s))
	assert.Equal(t, "", deref(nil))
}
