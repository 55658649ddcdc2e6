package attribution

import (
	"path/filepath"
	"strings"
)

// domainKeywords are library and format names whose presence in a command
// strongly suggests a domain-specific skill.
var domainKeywords = []string{"docx", "pdf", "xlsx", "pptx", "pandas", "openpyxl"}

var toolDescriptions = map[string]string{
	"Write": "creating or writing files",
	"Edit":  "editing existing files",
	"Bash":  "running commands",
	"Read":  "reading file contents",
	"Glob":  "finding files",
	"Grep":  "searching code",
}

// queryFromContext converts a tool execution into a natural-language query
// for the index: the file extension, recognized keywords in the command,
// and a phrasing of the tool itself.
func queryFromContext(toolName string, toolInput map[string]interface{}) string {
	var parts []string

	if filePath := stringField(toolInput, "file_path"); filePath != "" {
		if ext := filepath.Ext(filePath); ext != "" {
			parts = append(parts, "working with "+ext+" files")
		}
	}

	if command := strings.ToLower(stringField(toolInput, "command")); command != "" {
		if strings.Contains(command, "python") {
			parts = append(parts, "python script")
		}
		if strings.Contains(command, "git") {
			parts = append(parts, "git operations")
		}
		if strings.Contains(command, "npm") || strings.Contains(command, "node") {
			parts = append(parts, "node.js")
		}
		for _, keyword := range domainKeywords {
			if strings.Contains(command, keyword) {
				parts = append(parts, "using "+keyword)
			}
		}
	}

	if desc, ok := toolDescriptions[toolName]; ok {
		parts = append(parts, desc)
	}

	if len(parts) == 0 {
		return "using " + toolName + " tool"
	}
	return strings.Join(parts, " ")
}
