package llm

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		expected map[string]interface{}
		ok       bool
	}{
		{
			name:     "direct JSON",
			text:     `{"purpose": "x"}`,
			expected: map[string]interface{}{"purpose": "x"},
			ok:       true,
		},
		{
			name:     "fenced with language tag",
			text:     "Here you go:\n```json\n{\"purpose\": \"x\"}\n```\nHope that helps!",
			expected: map[string]interface{}{"purpose": "x"},
			ok:       true,
		},
		{
			name:     "fenced without language tag",
			text:     "```\n{\"a\": 1}\n```",
			expected: map[string]interface{}{"a": float64(1)},
			ok:       true,
		},
		{
			name:     "brace blob inside prose",
			text:     `The metadata is {"purpose": "x"} as requested.`,
			expected: map[string]interface{}{"purpose": "x"},
			ok:       true,
		},
		{
			name: "no JSON at all",
			text: "I cannot help with that.",
			ok:   false,
		},
		{
			name: "malformed JSON",
			text: `{"purpose": `,
			ok:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, ok := ExtractJSON(tt.text)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.expected, out)
			}
		})
	}
}

func TestCLIClientNoToolAvailable(t *testing.T) {
	// An empty PATH guarantees no probe succeeds.
	t.Setenv("PATH", t.TempDir())

	client := NewCLIClient(time.Second)
	assert.False(t, client.Available())

	_, err := client.Prompt(context.Background(), "hello")
	require.Error(t, err)
}

func TestCLIClientDefaultTimeout(t *testing.T) {
	client := NewCLIClient(0)
	assert.Equal(t, DefaultTimeout, client.timeout)
}
