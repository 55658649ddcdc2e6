package analyze

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"

	"github.com/voyantlabs/skillscout/pkg/skills"
)

// stubClient scripts the LLM collaborator.
type stubClient struct {
	available bool
	response  string
	err       error
	calls     int
}

func (s *stubClient) Available() bool {
	return s.available
}

func (s *stubClient) Prompt(ctx context.Context, prompt string) (string, error) {
	s.calls++
	return s.response, s.err
}

func testSkill() skills.Skill {
	return skills.Skill{
		ID:          "pdf-processing",
		Name:        "pdf-processing",
		Description: "Extract text from PDF files\nHelps you read pdf content",
		Content:     "# PDF Processing\n\nUse pdfplumber.",
	}
}

func TestAnalyzeWithLLM(t *testing.T) {
	client := &stubClient{
		available: true,
		response: `{
			"purpose": "Work with PDF documents",
			"task_types": ["extraction"],
			"file_types": [".pdf"],
			"capabilities": ["extract text"],
			"when_to_use": "PDF files",
			"example_queries": ["read this pdf"]
		}`,
	}

	meta := NewAnalyzer(client).Analyze(context.Background(), testSkill())

	assert.Equal(t, "Work with PDF documents", meta.Purpose)
	assert.Equal(t, []string{"extraction"}, meta.TaskTypes)
	assert.Equal(t, []string{".pdf"}, meta.FileTypes)
	assert.Equal(t, []string{"read this pdf"}, meta.ExampleQueries)
	assert.Equal(t, 1, client.calls)
}

func TestAnalyzeLLMFailureFallsBack(t *testing.T) {
	client := &stubClient{available: true, err: errors.New("cli exploded")}

	meta := NewAnalyzer(client).Analyze(context.Background(), testSkill())

	assert.Equal(t, "Extract text from PDF files", meta.Purpose, "purpose from first description line")
	assert.NotEmpty(t, meta.ExampleQueries, "trigger extraction seeds queries")
}

func TestAnalyzeUnparseableLLMResponseFallsBack(t *testing.T) {
	client := &stubClient{available: true, response: "I cannot help with that."}

	meta := NewAnalyzer(client).Analyze(context.Background(), testSkill())

	assert.Equal(t, "Extract text from PDF files", meta.Purpose)
}

func TestAnalyzeDeterministicWithoutLLM(t *testing.T) {
	analyzer := NewAnalyzer(nil)

	first := analyzer.Analyze(context.Background(), testSkill())
	second := analyzer.Analyze(context.Background(), testSkill())
	assert.Equal(t, first, second)
}

func TestAnalyzeSkipLLM(t *testing.T) {
	client := &stubClient{available: true, response: `{"purpose": "ignored"}`}

	meta := NewAnalyzer(client, WithSkipLLM(true)).Analyze(context.Background(), testSkill())

	assert.Equal(t, "Extract text from PDF files", meta.Purpose)
	assert.Zero(t, client.calls, "skip must not invoke the client")
}

func TestAnalyzeEmptySkill(t *testing.T) {
	meta := NewAnalyzer(nil).Analyze(context.Background(), skills.Skill{ID: "bare"})

	assert.Empty(t, meta.Purpose)
	assert.Empty(t, meta.ExampleQueries)
}

func TestExtractTriggers(t *testing.T) {
	var meta Metadata
	extractTriggers(&meta, "Helps you convert spreadsheets, analyze tabular data")

	assert.Contains(t, meta.ExampleQueries, "convert spreadsheets")
	assert.Contains(t, meta.ExampleQueries, "analyze tabular data")
}

func TestExtractTriggersFallsBackToDescriptionLines(t *testing.T) {
	var meta Metadata
	extractTriggers(&meta, "Spreadsheet toolkit\nWorks on xlsx workbooks")

	assert.Equal(t, []string{"Spreadsheet toolkit", "Works on xlsx workbooks"}, meta.ExampleQueries)
}
