package index

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voyantlabs/skillscout/pkg/analyze"
	"github.com/voyantlabs/skillscout/pkg/skills"
)

func writeSkill(t *testing.T, root, id, description string) {
	t.Helper()
	dir := filepath.Join(root, id)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	content := "---\nname: " + id + "\ndescription: " + description + "\n---\n\n# " + id + "\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "SKILL.md"), []byte(content), 0o644))
}

func newTestStore(t *testing.T, opts ...StoreOption) (*Store, string) {
	t.Helper()
	skillRoot := t.TempDir()
	writeSkill(t, skillRoot, "session-resume", "Resume where we left off in a previous session")
	writeSkill(t, skillRoot, "next-task", "What should I work on next")
	writeSkill(t, skillRoot, "skill-creator", "Turn this workflow into a skill")

	discovery, err := skills.NewDiscovery(skills.WithRoots(skillRoot))
	require.NoError(t, err)

	indexDir := filepath.Join(t.TempDir(), "index")
	opts = append([]StoreOption{
		WithDiscovery(discovery),
		WithAnalyzer(analyze.NewAnalyzer(nil)),
	}, opts...)
	return NewStore(indexDir, opts...), skillRoot
}

func TestBuildAndSearchLexical(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	assert.False(t, store.Exists())

	count, err := store.Build(ctx, BuildOptions{})
	require.NoError(t, err)
	assert.Equal(t, 3, count)
	assert.True(t, store.Exists())
	assert.Equal(t, 3, store.Count())

	tests := []struct {
		query    string
		expected string
	}{
		{"resume where we left off", "session-resume"},
		{"what should I work on next", "next-task"},
		{"turn this workflow into a skill", "skill-creator"},
	}
	for _, tt := range tests {
		results, err := store.Search(ctx, tt.query, 5)
		require.NoError(t, err)
		require.NotEmpty(t, results, tt.query)
		assert.Equal(t, tt.expected, results[0].SkillID, tt.query)
		assert.InDelta(t, 1.0, results[0].Score, 1e-9, tt.query)
	}
}

func TestSearchBeforeBuildReturnsErrNoIndex(t *testing.T) {
	store, _ := newTestStore(t)

	_, err := store.Search(context.Background(), "anything", 5)
	assert.ErrorIs(t, err, ErrNoIndex)
}

func TestBuildIsNoOpWhenIndexExists(t *testing.T) {
	store, skillRoot := newTestStore(t)
	ctx := context.Background()

	count, err := store.Build(ctx, BuildOptions{})
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	// A new skill appears, but without Force the existing index stays.
	writeSkill(t, skillRoot, "late-arrival", "Arrived after the first build")

	count, err = store.Build(ctx, BuildOptions{})
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	count, err = store.Build(ctx, BuildOptions{Force: true})
	require.NoError(t, err)
	assert.Equal(t, 4, count)
	assert.Equal(t, 4, store.Count())
}

func TestBuildWithoutSkills(t *testing.T) {
	discovery, err := skills.NewDiscovery(skills.WithRoots(t.TempDir()))
	require.NoError(t, err)

	store := NewStore(filepath.Join(t.TempDir(), "index"),
		WithDiscovery(discovery),
		WithAnalyzer(analyze.NewAnalyzer(nil)))

	count, err := store.Build(context.Background(), BuildOptions{})
	require.NoError(t, err)
	assert.Zero(t, count)
	assert.False(t, store.Exists())
}

func TestBuildRequiresCollaborators(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "index"))

	_, err := store.Build(context.Background(), BuildOptions{})
	assert.Error(t, err)
}

func TestSearchDefaultK(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	_, err := store.Build(ctx, BuildOptions{})
	require.NoError(t, err)

	results, err := store.Search(ctx, "skill session work", 0)
	require.NoError(t, err)
	assert.LessOrEqual(t, len(results), 5)
}

func TestSearchUnrelatedQueryReturnsEmpty(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	_, err := store.Build(ctx, BuildOptions{})
	require.NoError(t, err)

	results, err := store.Search(ctx, "kubernetes deployment yaml", 5)
	require.NoError(t, err)
	assert.Empty(t, results)
}

// keywordProvider embeds texts as keyword-count vectors, deterministic and
// offline.
type keywordProvider struct {
	keywords []string
}

func (p keywordProvider) Name() string {
	return "keyword"
}

func (p keywordProvider) Embed(_ context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		lower := strings.ToLower(text)
		vec := make([]float32, len(p.keywords))
		for j, kw := range p.keywords {
			vec[j] = float32(strings.Count(lower, kw))
		}
		out[i] = vec
	}
	return out, nil
}

func TestBuildAndSearchDense(t *testing.T) {
	provider := keywordProvider{keywords: []string{"resume", "next", "workflow"}}
	store, _ := newTestStore(t, WithProvider(provider))
	ctx := context.Background()

	count, err := store.Build(ctx, BuildOptions{})
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	side, err := store.loadSideFile()
	require.NoError(t, err)
	assert.Equal(t, backendDense, side.Backend)

	results, err := store.Search(ctx, "resume the session", 1)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "session-resume", results[0].SkillID)
	assert.InDelta(t, 1.0, results[0].Score, 1e-9)
}

func TestDenseIndexSearchedLexicallyWithoutProvider(t *testing.T) {
	provider := keywordProvider{keywords: []string{"resume", "next", "workflow"}}
	dense, _ := newTestStore(t, WithProvider(provider))
	ctx := context.Background()

	_, err := dense.Build(ctx, BuildOptions{})
	require.NoError(t, err)

	// Same directory reopened without a provider: search degrades to the
	// lexical backend over the persisted documents.
	lexical := NewStore(dense.dir)
	results, err := lexical.Search(ctx, "resume where we left off", 5)
	require.NoError(t, err)
	require.NotEmpty(t, results)
	assert.Equal(t, "session-resume", results[0].SkillID)
}
