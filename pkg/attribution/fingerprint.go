package attribution

import (
	"fmt"
	"path/filepath"
)

// commandPrefixLen bounds the command portion of a fingerprint.
const commandPrefixLen = 50

// Fingerprint derives the normalized cache key from a tool execution:
// tool name, primary file extension if any, and a bounded prefix of the
// command-like field. Collapsing context this far is a deliberate
// recall/precision trade-off: two different skills sharing the same
// tool/extension/command-prefix combination will collide. Tune by widening
// the prefix before reaching for a richer key.
func Fingerprint(toolName string, toolInput map[string]interface{}) string {
	ext := ""
	if filePath := stringField(toolInput, "file_path"); filePath != "" {
		ext = filepath.Ext(filePath)
	}

	command := stringField(toolInput, "command")
	if len(command) > commandPrefixLen {
		command = command[:commandPrefixLen]
	}

	return fmt.Sprintf("%s|%s|%s", toolName, ext, command)
}

func stringField(input map[string]interface{}, key string) string {
	if input == nil {
		return ""
	}
	s, _ := input[key].(string)
	return s
}
