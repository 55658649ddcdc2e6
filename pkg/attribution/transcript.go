package attribution

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

const skillFileName = "SKILL.md"

// transcriptRecord is the subset of a transcript JSONL line the cascade
// cares about.
type transcriptRecord struct {
	ToolName  string                 `json:"tool_name"`
	ToolInput map[string]interface{} `json:"tool_input"`
}

// skillFromTranscript scans a session transcript for reads of skill
// definition files and returns the most recently read skill id. Transcript
// evidence is ground truth for the session: the agent explicitly loaded
// that skill.
func skillFromTranscript(transcriptPath string) (string, error) {
	f, err := os.Open(transcriptPath)
	if err != nil {
		return "", errors.Wrap(err, "failed to open transcript")
	}
	defer f.Close()

	var lastSkill string

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var record transcriptRecord
		if err := json.Unmarshal(line, &record); err != nil {
			continue
		}
		if record.ToolName != "Read" {
			continue
		}

		path := stringField(record.ToolInput, "file_path")
		if filepath.Base(path) != skillFileName {
			continue
		}
		if id := filepath.Base(filepath.Dir(path)); id != "" && id != "." && !strings.ContainsAny(id, `/\`) {
			lastSkill = id
		}
	}
	if err := scanner.Err(); err != nil {
		return "", errors.Wrap(err, "failed to read transcript")
	}

	return lastSkill, nil
}
