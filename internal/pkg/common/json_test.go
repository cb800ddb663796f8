package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseJSONBytes(t *testing.T) {
	var paths []string
	require.NoError(t, ParseJSONBytes([]byte(` ["a.md", "b.md"] `), &paths))
	assert.Equal(t, []string{"a.md", "b.md"}, paths)

	assert.Error(t, ParseJSONBytes([]byte(`["a.md"] ["b.md"]`), &paths))
	assert.Error(t, ParseJSONBytes([]byte(`<html>`), &paths))
}

func TestBindError(t *testing.T) {
	assert.Equal(t, ErrCodeInvalidRequest, BindError(assert.AnError).Code)
}
