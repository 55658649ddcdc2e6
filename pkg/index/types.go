// Package index persists a searchable collection of skill documents and
// answers ranked queries against it. Two interchangeable backends sit behind
// one interface: a dense embedding backend when a provider is usable, and a
// lexical token-overlap fallback requiring no model dependency. Both share
// the same on-disk metadata side-file, so callers never branch on backend
// identity.
package index

import "github.com/pkg/errors"

// ErrNoIndex indicates a search against a path where no index has been
// built. This is an operator error, deliberately distinct from an empty
// result: attribution must be able to tell "no match" apart from "nothing
// to search".
var ErrNoIndex = errors.New("no index found, run `skillscout index` first")

// Backend identifiers recorded in the metadata side-file.
const (
	backendDense   = "dense"
	backendLexical = "lexical"
)

// Snapshot is the display metadata frozen alongside each document at build
// time, so results render without reloading skill documents.
type Snapshot struct {
	Name           string   `json:"name"`
	Purpose        string   `json:"purpose"`
	Path           string   `json:"path"`
	FileTypes      []string `json:"file_types,omitempty"`
	Capabilities   []string `json:"capabilities,omitempty"`
	Description    string   `json:"description,omitempty"`
	ExampleQueries []string `json:"example_queries,omitempty"`
}

// Entry is one indexable skill: the generated embedding text plus its
// metadata snapshot. The two are frozen together at build time; the store
// never back-fills one without the other.
type Entry struct {
	SkillID       string   `json:"skill_id"`
	EmbeddingText string   `json:"embedding_text"`
	Snapshot      Snapshot `json:"snapshot"`
}

// Result is a single ranked search hit. Scores are backend-relative and
// never comparable across backends.
type Result struct {
	SkillID      string   `json:"skill_id"`
	Name         string   `json:"name"`
	Purpose      string   `json:"purpose"`
	Path         string   `json:"path"`
	Score        float64  `json:"score"`
	FileTypes    []string `json:"file_types,omitempty"`
	Capabilities []string `json:"capabilities,omitempty"`
}

// sideFile is the on-disk metadata side-file shared by both backends.
type sideFile struct {
	Version string              `json:"version"`
	Backend string              `json:"backend"`
	Skills  map[string]Snapshot `json:"skills"`
}

// document is one line of documents.jsonl. Line order is insertion order,
// which the lexical backend uses for tie-breaking.
type document struct {
	SkillID       string `json:"skill_id"`
	EmbeddingText string `json:"embedding_text"`
}
