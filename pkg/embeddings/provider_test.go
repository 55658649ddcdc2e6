package embeddings

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetect(t *testing.T) {
	t.Setenv("SKILLSCOUT_EMBEDDINGS_API_KEY", "")
	t.Setenv("OPENAI_API_KEY", "")
	assert.Nil(t, Detect(), "no key means no dense backend")

	t.Setenv("OPENAI_API_KEY", "sk-test")
	provider := Detect()
	require.NotNil(t, provider)
	assert.Equal(t, "openai:text-embedding-3-small", provider.Name())

	// The dedicated variable wins over the generic one.
	t.Setenv("SKILLSCOUT_EMBEDDINGS_API_KEY", "sk-dedicated")
	assert.NotNil(t, Detect())
}

func TestToFloat32(t *testing.T) {
	assert.Equal(t, []float32{0.5, -1}, toFloat32([]float64{0.5, -1}))
	assert.Empty(t, toFloat32(nil))
}
