package attribution

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTranscript(t *testing.T, lines ...string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "transcript.jsonl")
	content := ""
	for _, line := range lines {
		content += line + "\n"
	}
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestSkillFromTranscript(t *testing.T) {
	path := writeTranscript(t,
		`{"tool_name":"Bash","tool_input":{"command":"ls"}}`,
		`{"tool_name":"Read","tool_input":{"file_path":"/home/u/.claude/skills/local/pdf-processing/SKILL.md"}}`,
		`{"tool_name":"Write","tool_input":{"file_path":"/tmp/out.txt"}}`,
	)

	skillID, err := skillFromTranscript(path)
	require.NoError(t, err)
	assert.Equal(t, "pdf-processing", skillID)
}

func TestSkillFromTranscriptLastReadWins(t *testing.T) {
	path := writeTranscript(t,
		`{"tool_name":"Read","tool_input":{"file_path":"/skills/pdf-processing/SKILL.md"}}`,
		`{"tool_name":"Read","tool_input":{"file_path":"/skills/git-workflow/SKILL.md"}}`,
	)

	skillID, err := skillFromTranscript(path)
	require.NoError(t, err)
	assert.Equal(t, "git-workflow", skillID)
}

func TestSkillFromTranscriptIgnoresNonSkillReads(t *testing.T) {
	path := writeTranscript(t,
		`{"tool_name":"Read","tool_input":{"file_path":"/project/README.md"}}`,
		`not even json`,
		``,
		`{"tool_name":"Read","tool_input":{"file_path":"/project/SKILLS.md"}}`,
	)

	skillID, err := skillFromTranscript(path)
	require.NoError(t, err)
	assert.Empty(t, skillID, "malformed lines and non-skill reads are skipped")
}

func TestSkillFromTranscriptMissingFile(t *testing.T) {
	_, err := skillFromTranscript(filepath.Join(t.TempDir(), "nope.jsonl"))
	assert.Error(t, err)
}
