// Package llm wraps an external LLM CLI as an opaque collaborator: given a
// prompt string it returns text (or JSON-parseable text) within a caller
// deadline. Which concrete tool answers is resolved once per process by a
// small ordered list of capability probes; the rest of the engine only sees
// the Client interface and must function when no tool is available.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"os/exec"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/voyantlabs/skillscout/pkg/logger"
)

// DefaultTimeout bounds a single prompt invocation unless the caller
// supplies its own.
const DefaultTimeout = 30 * time.Second

// Client invokes an LLM collaborator with a prompt and returns its text
// output. Implementations must honor the context deadline and kill the
// underlying process on cancellation.
type Client interface {
	// Available reports whether any collaborator answered a capability probe.
	Available() bool
	// Prompt sends a prompt and returns the raw text response. A non-zero
	// exit status, missing tool, or deadline expiry is an error.
	Prompt(ctx context.Context, prompt string) (string, error)
}

// probe describes one known CLI tool capable of answering prompts.
type probe struct {
	binary string
	args   []string
}

// Probes are evaluated in order; the first binary found on PATH wins.
var defaultProbes = []probe{
	{binary: "claude", args: []string{"-p"}},
	{binary: "llm", args: nil},
}

// CLIClient shells out to the first available LLM CLI tool.
type CLIClient struct {
	timeout time.Duration

	detectOnce sync.Once
	command    []string
}

// NewCLIClient creates a client with the given per-call timeout. A zero
// timeout means DefaultTimeout.
func NewCLIClient(timeout time.Duration) *CLIClient {
	if timeout == 0 {
		timeout = DefaultTimeout
	}
	return &CLIClient{timeout: timeout}
}

// detect runs the capability probes once and caches the winning command for
// the process lifetime.
func (c *CLIClient) detect() {
	c.detectOnce.Do(func() {
		for _, p := range defaultProbes {
			path, err := exec.LookPath(p.binary)
			if err != nil {
				continue
			}
			c.command = append([]string{path}, p.args...)
			return
		}
	})
}

// Available reports whether an LLM CLI was found on PATH.
func (c *CLIClient) Available() bool {
	c.detect()
	return len(c.command) > 0
}

// Prompt invokes the detected CLI with the prompt as its final argument.
// The subprocess is killed when the deadline expires.
func (c *CLIClient) Prompt(ctx context.Context, prompt string) (string, error) {
	c.detect()
	if len(c.command) == 0 {
		return "", errors.New("no LLM CLI available")
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	args := append(append([]string{}, c.command[1:]...), prompt)
	cmd := exec.CommandContext(ctx, c.command[0], args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	if err := cmd.Run(); err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return "", errors.Errorf("LLM call timed out after %s", c.timeout)
		}
		return "", errors.Wrapf(err, "LLM call failed: %s", strings.TrimSpace(stderr.String()))
	}

	logger.G(ctx).WithField("duration", time.Since(start)).Debug("LLM call completed")
	return strings.TrimSpace(stdout.String()), nil
}

var fencedJSON = regexp.MustCompile("(?s)```(?:json)?\\s*\\n?(.*?)\\n?```")

// ExtractJSON parses a JSON object out of an LLM response, tolerating the
// usual decoration: a direct parse is tried first, then a fenced code block,
// then the first brace-delimited blob in the text.
func ExtractJSON(text string) (map[string]interface{}, bool) {
	text = strings.TrimSpace(text)

	var out map[string]interface{}
	if err := json.Unmarshal([]byte(text), &out); err == nil {
		return out, true
	}

	if m := fencedJSON.FindStringSubmatch(text); m != nil {
		if err := json.Unmarshal([]byte(m[1]), &out); err == nil {
			return out, true
		}
	}

	if start := strings.Index(text, "{"); start >= 0 {
		if end := strings.LastIndex(text, "}"); end > start {
			if err := json.Unmarshal([]byte(text[start:end+1]), &out); err == nil {
				return out, true
			}
		}
	}

	return nil, false
}
