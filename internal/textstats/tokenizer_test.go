package textstats

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTokenize(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "simple sentence",
			text: "Hello, World!",
			want: []string{"hello", "world"},
		},
		{
			name: "empty input",
			text: "",
			want: nil,
		},
		{
			name: "both apostrophe variants split identically",
			text: "It's a test’s test.",
			want: []string{"it", "s", "a", "test", "s", "test"},
		},
		{
			name: "quotes and question marks",
			text: `"Why?" she asked.`,
			want: []string{"why", "she", "asked"},
		},
		{
			name: "hyphens and digits survive",
			text: "A well-known 2024 result.",
			want: []string{"a", "well-known", "2024", "result"},
		},
		{
			name: "runs of whitespace collapse",
			text: "one\t\ttwo\n\n  three",
			want: []string{"one", "two", "three"},
		},
		{
			name: "punctuation only",
			text: "...!!!???",
			want: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Tokenize(tt.text)
			if tt.want == nil {
				assert.Empty(t, got)
				return
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTokenizeIsPure(t *testing.T) {
	text := "The spider's web, the spider’s prey."

	first := Tokenize(text)
	second := Tokenize(text)

	assert.Equal(t, first, second)
}
