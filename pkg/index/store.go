package index

import (
	"context"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"

	"github.com/voyantlabs/skillscout/pkg/analyze"
	"github.com/voyantlabs/skillscout/pkg/embedding"
	"github.com/voyantlabs/skillscout/pkg/embeddings"
	"github.com/voyantlabs/skillscout/pkg/logger"
	"github.com/voyantlabs/skillscout/pkg/skills"
)

const (
	sideFileName  = "metadata.json"
	documentsName = "documents.jsonl"
	vectorsName   = "vectors.f32"
	indexVersion  = "1"
)

// Store owns the on-disk index artifacts at one directory and serves
// searches over them. It is constructed with its configuration and passed
// by reference; there is no ambient global instance.
type Store struct {
	dir       string
	provider  embeddings.Provider
	discovery *skills.Discovery
	analyzer  *analyze.Analyzer
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithProvider sets the dense embedding provider. A nil provider selects
// the lexical backend.
func WithProvider(p embeddings.Provider) StoreOption {
	return func(s *Store) {
		s.provider = p
	}
}

// WithDiscovery sets the skill discovery used by Build.
func WithDiscovery(d *skills.Discovery) StoreOption {
	return func(s *Store) {
		s.discovery = d
	}
}

// WithAnalyzer sets the metadata analyzer used by Build.
func WithAnalyzer(a *analyze.Analyzer) StoreOption {
	return func(s *Store) {
		s.analyzer = a
	}
}

// NewStore creates a Store over the given index directory. Backend choice
// is fixed at construction: dense when a provider is configured, lexical
// otherwise.
func NewStore(dir string, opts ...StoreOption) *Store {
	s := &Store{dir: dir}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Exists reports whether a readable index is present.
func (s *Store) Exists() bool {
	_, err := os.Stat(filepath.Join(s.dir, sideFileName))
	return err == nil
}

// Count returns the number of indexed skills, or 0 when no index exists.
func (s *Store) Count() int {
	side, err := s.loadSideFile()
	if err != nil {
		return 0
	}
	return len(side.Skills)
}

// BuildOptions controls an index build.
type BuildOptions struct {
	// Force rebuilds even when an index already exists.
	Force bool
}

// Build constructs the index: discover skills, extract metadata, generate
// embedding text, and persist documents plus the metadata side-file as one
// atomic unit. When an index already exists and Force is false, Build is a
// no-op that reports the existing count, which makes it idempotent and
// cheap to call speculatively. Builds against the same path are serialized
// with a file lock.
func (s *Store) Build(ctx context.Context, opts BuildOptions) (int, error) {
	log := logger.G(ctx)

	if !opts.Force && s.Exists() {
		return s.Count(), nil
	}

	if s.discovery == nil || s.analyzer == nil {
		return 0, errors.New("index build requires discovery and analyzer")
	}

	if err := os.MkdirAll(filepath.Dir(s.dir), 0o755); err != nil {
		return 0, errors.Wrap(err, "failed to create index parent directory")
	}

	lock := flock.New(s.dir + ".lock")
	if err := lock.Lock(); err != nil {
		return 0, errors.Wrap(err, "failed to acquire index build lock")
	}
	defer lock.Unlock()

	// A racing build may have completed while we waited on the lock.
	if !opts.Force && s.Exists() {
		return s.Count(), nil
	}

	discovered, err := s.discovery.DiscoverSkills(ctx)
	if err != nil {
		return 0, errors.Wrap(err, "skill discovery failed")
	}
	if len(discovered) == 0 {
		log.Warn("no skills found to index")
		return 0, nil
	}

	var warnings *multierror.Error
	entries := make([]Entry, 0, len(discovered))

	for _, skill := range discovered {
		meta := s.analyzer.Analyze(ctx, skill)

		text := embedding.GenerateSimpleText(skill)
		if len(meta.ExampleQueries) > 0 {
			text = embedding.GenerateText(meta, skill)
		}
		if text == "" {
			warnings = multierror.Append(warnings, errors.Errorf("skill %s produced empty embedding text", skill.ID))
			continue
		}

		entries = append(entries, Entry{
			SkillID:       skill.ID,
			EmbeddingText: text,
			Snapshot: Snapshot{
				Name:           skill.Name,
				Purpose:        meta.Purpose,
				Path:           skill.Path,
				FileTypes:      meta.FileTypes,
				Capabilities:   meta.Capabilities,
				Description:    skill.Description,
				ExampleQueries: meta.ExampleQueries,
			},
		})
	}

	if warnings.ErrorOrNil() != nil {
		log.WithError(warnings).Warn("some skills were skipped during indexing")
	}
	if len(entries) == 0 {
		log.Warn("no skills successfully analyzed")
		return 0, nil
	}

	if err := s.persist(ctx, entries); err != nil {
		return 0, err
	}

	log.WithFields(map[string]interface{}{
		"skills":  len(entries),
		"backend": s.backendName(),
		"path":    s.dir,
	}).Info("index built")

	return len(entries), nil
}

// Search returns up to k skills ranked by descending backend-relative
// score. A missing index is ErrNoIndex; an empty result is a valid answer.
func (s *Store) Search(ctx context.Context, query string, k int) ([]Result, error) {
	side, err := s.loadSideFile()
	if err != nil {
		return nil, ErrNoIndex
	}

	docs, err := s.loadDocuments()
	if err != nil {
		return nil, ErrNoIndex
	}

	if k <= 0 {
		k = 5
	}

	if side.Backend == backendDense && s.provider != nil {
		return s.searchDense(ctx, side, docs, query, k)
	}
	return s.searchLexical(side, docs, query, k), nil
}

func (s *Store) backendName() string {
	if s.provider != nil {
		return backendDense
	}
	return backendLexical
}
