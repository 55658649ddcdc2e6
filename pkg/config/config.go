// Package config resolves canonical paths for skillscout state: skill roots,
// the search index, and the feedback database. Environment variables always
// win over defaults so hook invocations can be pointed at project-local
// ("dogfood") locations without a config file.
package config

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

const (
	// EnvSkillsPath names a directory that fully replaces the default skill
	// root precedence list when set and non-empty.
	EnvSkillsPath = "SKILLSCOUT_SKILLS_PATH"

	// EnvIndexPath overrides the persisted index location.
	EnvIndexPath = "SKILLSCOUT_INDEX_PATH"

	// EnvProjectDir overrides the project directory (set by the host agent).
	EnvProjectDir = "CLAUDE_PROJECT_DIR"

	// EnvPluginRoot overrides the plugin root directory.
	EnvPluginRoot = "CLAUDE_PLUGIN_ROOT"
)

// ProjectDir returns the host project directory, falling back to the current
// working directory.
func ProjectDir() string {
	if dir := os.Getenv(EnvProjectDir); dir != "" {
		return dir
	}
	dir, err := os.Getwd()
	if err != nil {
		return "."
	}
	return dir
}

// PluginRoot returns the plugin root directory, falling back to the current
// working directory.
func PluginRoot() string {
	if dir := os.Getenv(EnvPluginRoot); dir != "" {
		return dir
	}
	dir, err := os.Getwd()
	if err != nil {
		return "."
	}
	return dir
}

// StateDir returns the project-local skillscout state directory.
func StateDir() string {
	return filepath.Join(ProjectDir(), ".claude", "skillscout")
}

// FeedbackDBPath returns the path to the feedback SQLite database.
func FeedbackDBPath() string {
	return filepath.Join(StateDir(), "feedback.db")
}

// PluginSkillsDir returns the plugin-local skills directory.
func PluginSkillsDir() string {
	return filepath.Join(PluginRoot(), "skills")
}

// LocalSkillsDir returns the locally-mirrored skills directory.
func LocalSkillsDir() string {
	return filepath.Join(ProjectDir(), ".claude", "skills", "local")
}

// GeneratedSkillsDir returns the generated skills directory.
func GeneratedSkillsDir() string {
	return filepath.Join(ProjectDir(), ".claude", "skills", "generated")
}

// UserSkillsDir returns the user-global skills directory.
func UserSkillsDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.Wrap(err, "failed to get user home directory")
	}
	return filepath.Join(home, ".claude", "skills"), nil
}

// IndexDir returns the directory for persisted index artifacts. Resolution
// order: explicit override parameter, SKILLSCOUT_INDEX_PATH, then the
// per-user default ~/.skillscout/index.
func IndexDir(override string) (string, error) {
	if override != "" {
		return override, nil
	}
	if dir := os.Getenv(EnvIndexPath); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.Wrap(err, "failed to get user home directory")
	}
	return filepath.Join(home, ".skillscout", "index"), nil
}

// EnsureStateDir creates the project-local state directory if needed.
func EnsureStateDir() error {
	return errors.Wrap(os.MkdirAll(StateDir(), 0o755), "failed to create state directory")
}
