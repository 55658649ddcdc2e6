// Package analyze extracts structured metadata from skill documents for
// semantic search. Structured header fields are parsed deterministically
// first; an LLM enrichment pass then fills in task types, capabilities, and
// example queries. Every failure in the LLM path falls back to the
// header-derived metadata so indexing works with zero LLM availability,
// just with weaker search relevance.
package analyze

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/mitchellh/mapstructure"

	"github.com/voyantlabs/skillscout/pkg/llm"
	"github.com/voyantlabs/skillscout/pkg/logger"
	"github.com/voyantlabs/skillscout/pkg/skills"
)

// maxExcerptBytes bounds the document excerpt embedded in the extraction
// prompt.
const maxExcerptBytes = 8000

// Metadata is the structured metadata derived from one skill document.
// All fields default to empty; a value with every field empty is valid,
// degraded metadata, never an error.
type Metadata struct {
	Purpose        string   `json:"purpose" mapstructure:"purpose"`
	TaskTypes      []string `json:"task_types" mapstructure:"task_types"`
	FileTypes      []string `json:"file_types" mapstructure:"file_types"`
	Capabilities   []string `json:"capabilities" mapstructure:"capabilities"`
	WhenToUse      string   `json:"when_to_use" mapstructure:"when_to_use"`
	WhenNotToUse   string   `json:"when_not_to_use" mapstructure:"when_not_to_use"`
	ExampleQueries []string `json:"example_queries" mapstructure:"example_queries"`
}

const extractionPrompt = `Analyze this skill definition and extract structured metadata.

<skill_content>
%s
</skill_content>

Return a JSON object with these fields:
{
  "purpose": "One sentence describing the primary purpose",
  "task_types": ["list", "of", "task", "categories", "this", "handles"],
  "file_types": ["file", "extensions", "it", "works", "with"],
  "capabilities": ["action", "verbs", "like", "create", "edit", "analyze"],
  "when_to_use": "Describe scenarios when this skill is the right choice",
  "when_not_to_use": "Describe when NOT to use this skill",
  "example_queries": ["example user queries", "that should match this skill"]
}

Focus on what makes this skill UNIQUE and DISTINGUISHABLE from others.
The example_queries are especially important - generate 5-10 diverse queries.

Return ONLY valid JSON, no markdown formatting or code blocks.`

// Analyzer derives Metadata from discovered skills.
type Analyzer struct {
	client  llm.Client
	skipLLM bool
}

// AnalyzerOption configures an Analyzer.
type AnalyzerOption func(*Analyzer)

// WithSkipLLM disables the enrichment pass; only header-derived metadata is
// produced. Faster, lower search quality.
func WithSkipLLM(skip bool) AnalyzerOption {
	return func(a *Analyzer) {
		a.skipLLM = skip
	}
}

// NewAnalyzer creates an Analyzer using the given LLM collaborator. A nil
// client behaves like WithSkipLLM(true).
func NewAnalyzer(client llm.Client, opts ...AnalyzerOption) *Analyzer {
	a := &Analyzer{client: client}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Analyze extracts metadata from a skill document. It never returns an
// error: any LLM-path failure yields the header-derived metadata.
func (a *Analyzer) Analyze(ctx context.Context, skill skills.Skill) Metadata {
	meta := baseMetadata(skill)

	if a.skipLLM || a.client == nil || !a.client.Available() {
		extractTriggers(&meta, skill.Description)
		return meta
	}

	excerpt := skill.Content
	if len(excerpt) > maxExcerptBytes {
		excerpt = excerpt[:maxExcerptBytes]
	}

	response, err := a.client.Prompt(ctx, fmt.Sprintf(extractionPrompt, excerpt))
	if err != nil {
		logger.G(ctx).WithError(err).WithField("skill", skill.ID).Warn("LLM extraction failed, using header metadata")
		extractTriggers(&meta, skill.Description)
		return meta
	}

	raw, ok := llm.ExtractJSON(response)
	if !ok {
		logger.G(ctx).WithField("skill", skill.ID).Warn("LLM returned unparseable metadata, using header metadata")
		extractTriggers(&meta, skill.Description)
		return meta
	}

	var extracted Metadata
	if err := mapstructure.WeakDecode(raw, &extracted); err != nil {
		logger.G(ctx).WithError(err).WithField("skill", skill.ID).Warn("LLM metadata failed schema decode, using header metadata")
		extractTriggers(&meta, skill.Description)
		return meta
	}

	if extracted.Purpose != "" {
		meta.Purpose = extracted.Purpose
	}
	meta.TaskTypes = extracted.TaskTypes
	meta.FileTypes = extracted.FileTypes
	meta.Capabilities = extracted.Capabilities
	meta.WhenToUse = extracted.WhenToUse
	meta.WhenNotToUse = extracted.WhenNotToUse
	meta.ExampleQueries = extracted.ExampleQueries

	return meta
}

// baseMetadata builds metadata from the structured header alone. Always
// succeeds.
func baseMetadata(skill skills.Skill) Metadata {
	meta := Metadata{}
	if skill.Description != "" {
		meta.Purpose = strings.SplitN(skill.Description, "\n", 2)[0]
	}
	return meta
}

var triggerPatterns = []*regexp.Regexp{
	regexp.MustCompile(`use when you want to[:\s]*(.*)`),
	regexp.MustCompile(`helps? (?:you )?(.*)`),
	regexp.MustCompile(`used? (?:for|to) (.*)`),
}

var triggerSplit = regexp.MustCompile(`[,\n•-]`)

// extractTriggers seeds example queries from trigger phrases in the declared
// description so lexical search has something to match against.
func extractTriggers(meta *Metadata, description string) {
	desc := strings.ToLower(description)

	for _, pattern := range triggerPatterns {
		m := pattern.FindStringSubmatch(desc)
		if m == nil {
			continue
		}
		for _, trigger := range triggerSplit.Split(m[1], -1) {
			trigger = strings.TrimSpace(trigger)
			if len(trigger) > 5 {
				meta.ExampleQueries = append(meta.ExampleQueries, trigger)
			}
		}
	}

	if len(meta.ExampleQueries) == 0 && description != "" {
		for _, line := range strings.Split(description, "\n") {
			line = strings.TrimSpace(line)
			if line != "" && !strings.HasPrefix(line, "-") {
				meta.ExampleQueries = append(meta.ExampleQueries, line)
			}
			if len(meta.ExampleQueries) == 5 {
				break
			}
		}
	}
}
