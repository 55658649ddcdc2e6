package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProjectDir(t *testing.T) {
	t.Setenv(EnvProjectDir, "/work/project")
	assert.Equal(t, "/work/project", ProjectDir())

	t.Setenv(EnvProjectDir, "")
	assert.NotEmpty(t, ProjectDir(), "falls back to the working directory")
}

func TestStatePaths(t *testing.T) {
	t.Setenv(EnvProjectDir, "/work/project")

	assert.Equal(t, filepath.Join("/work/project", ".claude", "skillscout"), StateDir())
	assert.Equal(t, filepath.Join("/work/project", ".claude", "skillscout", "feedback.db"), FeedbackDBPath())
	assert.Equal(t, filepath.Join("/work/project", ".claude", "skills", "local"), LocalSkillsDir())
	assert.Equal(t, filepath.Join("/work/project", ".claude", "skills", "generated"), GeneratedSkillsDir())
}

func TestPluginSkillsDir(t *testing.T) {
	t.Setenv(EnvPluginRoot, "/plugins/skillscout")
	assert.Equal(t, filepath.Join("/plugins/skillscout", "skills"), PluginSkillsDir())
}

func TestIndexDir(t *testing.T) {
	t.Setenv(EnvIndexPath, "")

	dir, err := IndexDir("/explicit/index")
	require.NoError(t, err)
	assert.Equal(t, "/explicit/index", dir, "explicit override wins")

	t.Setenv(EnvIndexPath, "/env/index")
	dir, err = IndexDir("")
	require.NoError(t, err)
	assert.Equal(t, "/env/index", dir)

	t.Setenv(EnvIndexPath, "")
	dir, err = IndexDir("")
	require.NoError(t, err)
	assert.Contains(t, dir, filepath.Join(".skillscout", "index"))
}

func TestEnsureStateDir(t *testing.T) {
	t.Setenv(EnvProjectDir, t.TempDir())
	require.NoError(t, EnsureStateDir())
	require.NoError(t, EnsureStateDir(), "idempotent")
}
