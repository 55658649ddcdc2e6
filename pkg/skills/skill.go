// Package skills discovers skill documents from conventional locations.
// A skill is a directory containing a SKILL.md file with YAML frontmatter
// describing the skill's purpose; the directory name is its stable id.
package skills

// Skill represents a discovered skill document. Values are immutable once
// discovered; re-discovery produces fresh values.
type Skill struct {
	ID           string   // Stable identifier, derived from the containing directory name
	Path         string   // Full path to the skill directory
	Name         string   // Display name from frontmatter, defaults to ID
	Description  string   // Declared description from frontmatter
	AllowedTools []string // Declared allowed tools from frontmatter, if present
	Content      string   // SKILL.md body with frontmatter stripped
}
