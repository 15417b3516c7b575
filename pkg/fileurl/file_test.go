package fileurl

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteIfAbsent(t *testing.T) {
	dst := filepath.Join(t.TempDir(), "config", "config.yaml")

	created, err := WriteIfAbsent(dst, "a: 1\n")
	require.NoError(t, err)
	assert.True(t, created)
	assert.True(t, IsExist(dst))

	// second write keeps the original content
	created, err = WriteIfAbsent(dst, "a: 2\n")
	require.NoError(t, err)
	assert.False(t, created)

	b, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, "a: 1\n", string(b))
}
