package index

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lexicalFixture() (*sideFile, []document) {
	side := &sideFile{
		Version: indexVersion,
		Backend: backendLexical,
		Skills: map[string]Snapshot{
			"pdf-processing": {Name: "pdf-processing", Purpose: "Work with PDF files", Path: "/skills/pdf-processing"},
			"git-workflow":   {Name: "git-workflow", Purpose: "Git helpers", Path: "/skills/git-workflow"},
			"no-name":        {Path: "/skills/no-name"},
		},
	}
	docs := []document{
		{SkillID: "pdf-processing", EmbeddingText: "Extract text and tables from PDF files"},
		{SkillID: "git-workflow", EmbeddingText: "Commit, branch, and rebase with git"},
		{SkillID: "no-name", EmbeddingText: "Extract archives"},
	}
	return side, docs
}

func TestSearchLexicalExactPhraseScoresOne(t *testing.T) {
	side, docs := lexicalFixture()
	s := NewStore(t.TempDir())

	results := s.searchLexical(side, docs, "extract text and tables from pdf files", 5)
	require.NotEmpty(t, results)
	assert.Equal(t, "pdf-processing", results[0].SkillID)
	assert.InDelta(t, 1.0, results[0].Score, 1e-9)
}

func TestSearchLexicalPartialOverlap(t *testing.T) {
	side, docs := lexicalFixture()
	s := NewStore(t.TempDir())

	// "extract" and "pdf" overlap, no exact phrase: 2 / (2 + 2).
	results := s.searchLexical(side, docs, "extract pdf", 5)
	require.NotEmpty(t, results)
	assert.Equal(t, "pdf-processing", results[0].SkillID)
	assert.InDelta(t, 0.5, results[0].Score, 1e-9)
}

func TestSearchLexicalZeroOverlapExcluded(t *testing.T) {
	side, docs := lexicalFixture()
	s := NewStore(t.TempDir())

	results := s.searchLexical(side, docs, "kubernetes deployment", 5)
	assert.Empty(t, results)
}

func TestSearchLexicalScoresInUnitRange(t *testing.T) {
	side, docs := lexicalFixture()
	s := NewStore(t.TempDir())

	for _, query := range []string{"extract", "git rebase", "pdf files tables extract text from and"} {
		for _, r := range s.searchLexical(side, docs, query, 5) {
			assert.Greater(t, r.Score, 0.0, query)
			assert.LessOrEqual(t, r.Score, 1.0, query)
		}
	}
}

func TestSearchLexicalTiesKeepInsertionOrder(t *testing.T) {
	side := &sideFile{Skills: map[string]Snapshot{"first": {}, "second": {}}}
	docs := []document{
		{SkillID: "first", EmbeddingText: "alpha beta"},
		{SkillID: "second", EmbeddingText: "alpha gamma"},
	}
	s := NewStore(t.TempDir())

	results := s.searchLexical(side, docs, "alpha", 5)
	require.Len(t, results, 2)
	assert.Equal(t, "first", results[0].SkillID)
	assert.Equal(t, "second", results[1].SkillID)
	assert.Equal(t, results[0].Score, results[1].Score)
}

func TestSearchLexicalHonorsK(t *testing.T) {
	side, docs := lexicalFixture()
	s := NewStore(t.TempDir())

	results := s.searchLexical(side, docs, "extract", 1)
	assert.Len(t, results, 1)
}

func TestSearchLexicalNameFallsBackToSkillID(t *testing.T) {
	side, docs := lexicalFixture()
	s := NewStore(t.TempDir())

	results := s.searchLexical(side, docs, "archives", 5)
	require.Len(t, results, 1)
	assert.Equal(t, "no-name", results[0].Name)
}

func TestSearchLexicalEmptyQuery(t *testing.T) {
	side, docs := lexicalFixture()
	s := NewStore(t.TempDir())

	assert.Nil(t, s.searchLexical(side, docs, "...", 5))
}

func TestTokenize(t *testing.T) {
	tests := []struct {
		text     string
		expected []string
	}{
		{"Hello, World!", []string{"hello", "world"}},
		{"pdf pdf PDF", []string{"pdf"}},
		{"git-workflow v2", []string{"git", "workflow", "v2"}},
		{"", nil},
	}

	for _, tt := range tests {
		got := tokenize(tt.text)
		if tt.expected == nil {
			assert.Empty(t, got)
			continue
		}
		assert.Equal(t, tt.expected, got, tt.text)
	}
}

func TestCosine(t *testing.T) {
	assert.InDelta(t, 1.0, cosine([]float32{1, 2, 3}, []float32{1, 2, 3}), 1e-9)
	assert.InDelta(t, 0.0, cosine([]float32{1, 0}, []float32{0, 1}), 1e-9)
	assert.Equal(t, 0.0, cosine([]float32{1, 2}, []float32{1, 2, 3}), "mismatched lengths score zero")
	assert.Equal(t, 0.0, cosine([]float32{0, 0}, []float32{1, 2}), "zero vector scores zero")
	assert.Equal(t, 0.0, cosine(nil, nil))
}
