// Package attribution resolves a tool execution to the skill that produced
// it, using a cascade of strategies ordered from most accurate to most
// general: transcript evidence, the learned association cache, an index
// query, and finally LLM inference. The cascade never returns an error;
// every strategy failure is a miss for that strategy only.
package attribution

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/voyantlabs/skillscout/pkg/index"
	"github.com/voyantlabs/skillscout/pkg/llm"
	"github.com/voyantlabs/skillscout/pkg/logger"
)

// Context describes one tool execution to attribute. It is ephemeral and
// never persisted directly; only its fingerprint is.
type Context struct {
	ToolName       string                 `json:"tool_name"`
	ToolInput      map[string]interface{} `json:"tool_input"`
	TranscriptPath string                 `json:"transcript_path,omitempty"`
	SessionContext string                 `json:"session_context,omitempty"`
}

// AssociationCache is the learned-association surface the cascade needs.
type AssociationCache interface {
	Get(ctx context.Context, fingerprint string) (string, bool, error)
	Put(ctx context.Context, fingerprint, skillID string, confidence float64) error
}

// Searcher is the search surface the cascade needs; satisfied by
// *index.Store.
type Searcher interface {
	Search(ctx context.Context, query string, k int) ([]index.Result, error)
}

const (
	// defaultThreshold is the minimum index score accepted as a hit.
	defaultThreshold = 0.5

	// indexConfidence and llmConfidence are recorded with cache writes so a
	// future decay policy can weigh the source of each association.
	indexConfidence = 0.8
	llmConfidence   = 0.6

	// searchTimeout bounds strategy 3; a dense-backend search embeds the
	// query remotely, which must not blow a hook budget.
	searchTimeout = 5 * time.Second

	maxInputBytes          = 1000
	maxSessionContextBytes = 500
)

// Detector runs the attribution cascade.
type Detector struct {
	cache       AssociationCache
	searcher    Searcher
	client      llm.Client
	useLLM      bool
	threshold   float64
	knownSkills []string
}

// DetectorOption configures a Detector.
type DetectorOption func(*Detector)

// WithLLM enables or disables the LLM inference strategy. It is the only
// strategy callers may disable, because its latency is open-ended and
// unsuitable for sub-5-second hook budgets.
func WithLLM(enabled bool) DetectorOption {
	return func(d *Detector) {
		d.useLLM = enabled
	}
}

// WithThreshold overrides the minimum index score accepted as a hit.
func WithThreshold(threshold float64) DetectorOption {
	return func(d *Detector) {
		d.threshold = threshold
	}
}

// WithKnownSkills supplies skill ids listed in the LLM inference prompt.
func WithKnownSkills(ids []string) DetectorOption {
	return func(d *Detector) {
		d.knownSkills = ids
	}
}

// NewDetector creates a Detector. Any collaborator may be nil; its strategy
// is then skipped.
func NewDetector(cache AssociationCache, searcher Searcher, client llm.Client, opts ...DetectorOption) *Detector {
	d := &Detector{
		cache:     cache,
		searcher:  searcher,
		client:    client,
		useLLM:    true,
		threshold: defaultThreshold,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Attribute resolves a tool execution to a skill id. The boolean reports
// whether attribution succeeded; all four strategies missing is a normal
// "unresolved" outcome, never an error.
func (d *Detector) Attribute(ctx context.Context, actx Context) (string, bool) {
	log := logger.G(ctx).WithField("tool", actx.ToolName)

	// Strategy 1: transcript evidence. Ground truth for this session, and
	// deliberately not written to the cross-session cache.
	if actx.TranscriptPath != "" {
		skillID, err := skillFromTranscript(actx.TranscriptPath)
		if err != nil {
			log.WithError(err).Debug("transcript strategy failed")
		} else if skillID != "" {
			log.WithField("skill", skillID).Debug("attributed from transcript")
			return skillID, true
		}
	}

	fingerprint := Fingerprint(actx.ToolName, actx.ToolInput)

	// Strategy 2: learned associations.
	if d.cache != nil {
		skillID, found, err := d.cache.Get(ctx, fingerprint)
		if err != nil {
			log.WithError(err).Debug("cache strategy failed")
		} else if found {
			log.WithField("skill", skillID).Debug("attributed from cache")
			return skillID, true
		}
	}

	// Strategy 3: index query.
	if d.searcher != nil {
		if skillID := d.attributeViaIndex(ctx, actx); skillID != "" {
			d.learn(ctx, fingerprint, skillID, indexConfidence)
			log.WithField("skill", skillID).Debug("attributed from index")
			return skillID, true
		}
	}

	// Strategy 4: LLM inference, the slow last resort.
	if d.useLLM && d.client != nil && d.client.Available() {
		if skillID := d.attributeViaLLM(ctx, actx); skillID != "" {
			d.learn(ctx, fingerprint, skillID, llmConfidence)
			log.WithField("skill", skillID).Debug("attributed from LLM")
			return skillID, true
		}
	}

	log.Debug("attribution unresolved")
	return "", false
}

func (d *Detector) learn(ctx context.Context, fingerprint, skillID string, confidence float64) {
	if d.cache == nil {
		return
	}
	if err := d.cache.Put(ctx, fingerprint, skillID, confidence); err != nil {
		logger.G(ctx).WithError(err).Debug("failed to record learned association")
	}
}

func (d *Detector) attributeViaIndex(ctx context.Context, actx Context) string {
	ctx, cancel := context.WithTimeout(ctx, searchTimeout)
	defer cancel()

	query := queryFromContext(actx.ToolName, actx.ToolInput)
	results, err := d.searcher.Search(ctx, query, 1)
	if err != nil {
		// ErrNoIndex lands here too: with nothing to search, the index
		// strategy is simply a miss.
		logger.G(ctx).WithError(err).Debug("index strategy failed")
		return ""
	}

	if len(results) == 0 || results[0].Score < d.threshold {
		return ""
	}
	return results[0].SkillID
}

func (d *Detector) attributeViaLLM(ctx context.Context, actx Context) string {
	prompt := d.buildInferencePrompt(actx)

	response, err := d.client.Prompt(ctx, prompt)
	if err != nil {
		logger.G(ctx).WithError(err).Debug("LLM strategy failed")
		return ""
	}

	return parseSkillID(response)
}

func (d *Detector) buildInferencePrompt(actx Context) string {
	inputJSON, err := json.Marshal(actx.ToolInput)
	if err != nil {
		inputJSON = []byte("{}")
	}
	input := string(inputJSON)
	if len(input) > maxInputBytes {
		input = input[:maxInputBytes] + "..."
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Given this tool execution by a coding agent, identify which skill is likely being used.\n\n")
	fmt.Fprintf(&b, "Tool: %s\nInput: %s\n", actx.ToolName, input)

	if actx.SessionContext != "" {
		sessionCtx := actx.SessionContext
		if len(sessionCtx) > maxSessionContextBytes {
			sessionCtx = sessionCtx[:maxSessionContextBytes]
		}
		fmt.Fprintf(&b, "Session context: %s\n", sessionCtx)
	}

	if len(d.knownSkills) > 0 {
		b.WriteString("\nAvailable skills:\n")
		for _, id := range d.knownSkills {
			fmt.Fprintf(&b, "- %s\n", id)
		}
	}

	b.WriteString("\nReturn ONLY the skill ID or \"unknown\" if uncertain.\nDo not explain, just return the skill ID.")
	return b.String()
}

var skillIDPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9-]{0,48}$`)

// parseSkillID extracts a skill id from a single-token LLM response,
// tolerating quotes and a "skill:" prefix. Anything that does not look like
// a skill id is a miss.
func parseSkillID(response string) string {
	response = strings.ToLower(strings.TrimSpace(response))
	response = strings.Trim(response, `"'`)
	response = strings.TrimSpace(strings.TrimPrefix(response, "skill:"))

	if response == "" || response == "unknown" || !skillIDPattern.MatchString(response) {
		return ""
	}
	return response
}
