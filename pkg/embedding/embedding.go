// Package embedding turns skill metadata into the single searchable text
// blob fed to whichever search backend is active. The text should capture
// how users ask for things, not just what the skill does, so example
// queries lead every blob.
package embedding

import (
	"strings"

	"github.com/voyantlabs/skillscout/pkg/analyze"
	"github.com/voyantlabs/skillscout/pkg/skills"
)

// maxBodyExcerpt bounds the body excerpt used in the simple variant.
const maxBodyExcerpt = 500

// GenerateText produces searchable text from enriched metadata. It is pure
// and deterministic: identical metadata yields byte-identical text, which
// index rebuilds rely on. Sections appear in fixed order and only when
// their source field is non-empty.
func GenerateText(meta analyze.Metadata, skill skills.Skill) string {
	var sections []string

	if len(meta.ExampleQueries) > 0 {
		sections = append(sections, "Example uses: "+strings.Join(meta.ExampleQueries, " | "))
	}

	if meta.Purpose != "" {
		sections = append(sections, "Purpose: "+meta.Purpose)
	}

	if skill.Description != "" && skill.Description != meta.Purpose {
		firstLine := strings.TrimSpace(strings.SplitN(skill.Description, "\n", 2)[0])
		if firstLine != "" && firstLine != meta.Purpose {
			sections = append(sections, "Description: "+firstLine)
		}
	}

	if len(meta.Capabilities) > 0 {
		sections = append(sections, "Can: "+strings.Join(meta.Capabilities, ", "))
	}

	if len(meta.TaskTypes) > 0 {
		sections = append(sections, "Tasks: "+strings.Join(meta.TaskTypes, ", "))
	}

	if len(meta.FileTypes) > 0 {
		sections = append(sections, "File types: "+strings.Join(meta.FileTypes, ", "))
	}

	if meta.WhenToUse != "" {
		sections = append(sections, "Use for: "+meta.WhenToUse)
	}

	sections = append(sections, "Skill: "+skill.Name)

	return strings.Join(sections, "\n")
}

// GenerateSimpleText produces basic searchable text from header data alone,
// for skills whose metadata carries no example queries (LLM enrichment
// unavailable or unhelpful).
func GenerateSimpleText(skill skills.Skill) string {
	sections := []string{"Skill: " + skill.Name}

	if skill.Description != "" {
		sections = append(sections, "Description: "+skill.Description)
	}

	if len(skill.AllowedTools) > 0 {
		sections = append(sections, "Tools: "+strings.Join(skill.AllowedTools, ", "))
	}

	if body := strings.TrimSpace(truncate(skill.Content, maxBodyExcerpt)); body != "" {
		sections = append(sections, "Content: "+body)
	}

	return strings.Join(sections, "\n")
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
