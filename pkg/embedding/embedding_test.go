package embedding

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/voyantlabs/skillscout/pkg/analyze"
	"github.com/voyantlabs/skillscout/pkg/skills"
)

func fullMetadata() analyze.Metadata {
	return analyze.Metadata{
		Purpose:        "Extract text from PDF files",
		TaskTypes:      []string{"extraction", "conversion"},
		FileTypes:      []string{".pdf"},
		Capabilities:   []string{"extract text", "extract tables"},
		WhenToUse:      "working with PDF documents",
		ExampleQueries: []string{"read this pdf", "pull tables from a pdf"},
	}
}

func TestGenerateTextSectionOrder(t *testing.T) {
	skill := skills.Skill{Name: "pdf-processing", Description: "PDF toolkit"}

	text := GenerateText(fullMetadata(), skill)
	lines := strings.Split(text, "\n")

	assert.Equal(t, []string{
		"Example uses: read this pdf | pull tables from a pdf",
		"Purpose: Extract text from PDF files",
		"Description: PDF toolkit",
		"Can: extract text, extract tables",
		"Tasks: extraction, conversion",
		"File types: .pdf",
		"Use for: working with PDF documents",
		"Skill: pdf-processing",
	}, lines)
}

func TestGenerateTextDeterministic(t *testing.T) {
	skill := skills.Skill{Name: "pdf-processing", Description: "PDF toolkit"}

	first := GenerateText(fullMetadata(), skill)
	second := GenerateText(fullMetadata(), skill)
	assert.Equal(t, first, second)
}

func TestGenerateTextSkipsEmptySections(t *testing.T) {
	meta := analyze.Metadata{Purpose: "Run git commands"}
	skill := skills.Skill{Name: "git-workflow"}

	text := GenerateText(meta, skill)
	assert.Equal(t, "Purpose: Run git commands\nSkill: git-workflow", text)
}

func TestGenerateTextDescriptionDeduplicatedAgainstPurpose(t *testing.T) {
	meta := analyze.Metadata{Purpose: "Run git commands"}
	skill := skills.Skill{Name: "git-workflow", Description: "Run git commands"}

	text := GenerateText(meta, skill)
	assert.NotContains(t, text, "Description:")
}

func TestGenerateTextDescriptionFirstLineOnly(t *testing.T) {
	meta := analyze.Metadata{Purpose: "Purpose line"}
	skill := skills.Skill{
		Name:        "multi",
		Description: "First line\nSecond line should not appear",
	}

	text := GenerateText(meta, skill)
	assert.Contains(t, text, "Description: First line")
	assert.NotContains(t, text, "Second line")
}

func TestGenerateSimpleText(t *testing.T) {
	skill := skills.Skill{
		Name:         "git-workflow",
		Description:  "Git helpers",
		AllowedTools: []string{"Bash"},
		Content:      "Run git status before committing.",
	}

	text := GenerateSimpleText(skill)
	assert.Equal(t, "Skill: git-workflow\nDescription: Git helpers\nTools: Bash\nContent: Run git status before committing.", text)
}

func TestGenerateSimpleTextTruncatesBody(t *testing.T) {
	skill := skills.Skill{
		Name:    "long",
		Content: strings.Repeat("a", 2000),
	}

	text := GenerateSimpleText(skill)
	assert.LessOrEqual(t, len(text), len("Skill: long\nContent: ")+maxBodyExcerpt)
}
