package skills

import (
	"bytes"
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/yuin/goldmark"
	meta "github.com/yuin/goldmark-meta"
	"github.com/yuin/goldmark/parser"

	"github.com/voyantlabs/skillscout/pkg/config"
	"github.com/voyantlabs/skillscout/pkg/logger"
)

const skillFileName = "SKILL.md"

// Discovery handles skill discovery from configured root directories.
// Roots are ordered by precedence: when two roots contain a directory with
// the same name, the earlier root wins.
type Discovery struct {
	roots []string
}

// Option is a function that configures a Discovery.
type Option func(*Discovery) error

// WithRoots sets explicit skill root directories, replacing the defaults.
func WithRoots(roots ...string) Option {
	return func(d *Discovery) error {
		d.roots = roots
		return nil
	}
}

// WithDefaultRoots initializes the conventional root precedence list:
// SKILLSCOUT_SKILLS_PATH override (fully replaces the list when it contains
// at least one skill), then plugin-local, locally-mirrored, generated, and
// user-global directories, each included only if it exists.
func WithDefaultRoots() Option {
	return func(d *Discovery) error {
		if override := os.Getenv(config.EnvSkillsPath); override != "" {
			if containsSkill(override) {
				d.roots = []string{override}
				return nil
			}
		}

		userDir, err := config.UserSkillsDir()
		if err != nil {
			return err
		}

		candidates := []string{
			config.PluginSkillsDir(),
			config.LocalSkillsDir(),
			config.GeneratedSkillsDir(),
			userDir,
		}

		d.roots = d.roots[:0]
		for _, candidate := range candidates {
			if info, err := os.Stat(candidate); err == nil && info.IsDir() {
				d.roots = append(d.roots, candidate)
			}
		}

		return nil
	}
}

// NewDiscovery creates a new skill discovery instance. Without options the
// default root precedence list is used.
func NewDiscovery(opts ...Option) (*Discovery, error) {
	d := &Discovery{}

	if len(opts) == 0 {
		opts = []Option{WithDefaultRoots()}
	}
	for _, opt := range opts {
		if err := opt(d); err != nil {
			return nil, err
		}
	}

	return d, nil
}

// Roots returns the resolved root directories in precedence order.
func (d *Discovery) Roots() []string {
	return d.roots
}

// DiscoverSkills walks each root recursively and returns one Skill per
// directory containing a SKILL.md, in deterministic order (root precedence,
// then walk order). Duplicate ids across roots are skipped with a warning;
// discovery itself never fails on unreadable entries.
func (d *Discovery) DiscoverSkills(ctx context.Context) ([]Skill, error) {
	log := logger.G(ctx)

	var discovered []Skill
	seen := make(map[string]string) // skill id -> winning root

	for _, root := range d.roots {
		_ = filepath.WalkDir(root, func(path string, entry fs.DirEntry, err error) error {
			if err != nil || entry.IsDir() || entry.Name() != skillFileName {
				return nil
			}

			dir := filepath.Dir(path)
			id := filepath.Base(dir)

			if prevRoot, exists := seen[id]; exists {
				log.WithFields(map[string]interface{}{
					"skill":   id,
					"skipped": dir,
					"kept":    prevRoot,
				}).Warn("duplicate skill id, keeping higher-precedence root")
				return fs.SkipDir
			}

			skill, err := loadSkill(path)
			if err != nil {
				log.WithError(err).WithField("path", path).Warn("failed to load skill")
				return fs.SkipDir
			}

			skill.ID = id
			skill.Path = dir
			if skill.Name == "" {
				skill.Name = id
			}

			seen[id] = root
			discovered = append(discovered, *skill)
			return fs.SkipDir
		})
	}

	log.WithFields(map[string]interface{}{
		"skills": len(discovered),
		"roots":  len(d.roots),
	}).Debug("skill discovery complete")

	return discovered, nil
}

// GetSkill returns a specific skill by id.
func (d *Discovery) GetSkill(ctx context.Context, id string) (*Skill, error) {
	discovered, err := d.DiscoverSkills(ctx)
	if err != nil {
		return nil, err
	}

	for i := range discovered {
		if discovered[i].ID == id {
			return &discovered[i], nil
		}
	}

	return nil, errors.Errorf("skill '%s' not found", id)
}

// loadSkill parses a single SKILL.md file. Frontmatter is optional: a file
// without it yields a skill with empty declared fields, never an error.
func loadSkill(path string) (*Skill, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read skill file")
	}

	skill := &Skill{
		Content: extractBodyContent(string(content)),
	}

	md := goldmark.New(goldmark.WithExtensions(meta.Meta))

	var buf bytes.Buffer
	pctx := parser.NewContext()
	if err := md.Convert(content, &buf, parser.WithContext(pctx)); err != nil {
		return skill, nil
	}

	metaData := meta.Get(pctx)
	if metaData == nil {
		return skill, nil
	}

	skill.Name, _ = metaData["name"].(string)
	skill.Description, _ = metaData["description"].(string)
	skill.AllowedTools = stringList(metaData["allowed-tools"])

	return skill, nil
}

func stringList(value interface{}) []string {
	items, ok := value.([]interface{})
	if !ok {
		return nil
	}

	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// extractBodyContent removes YAML frontmatter and returns the body.
func extractBodyContent(content string) string {
	if !strings.HasPrefix(content, "---") {
		return content
	}

	lines := strings.Split(content, "\n")
	frontmatterEnd := -1

	for i := 1; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) == "---" {
			frontmatterEnd = i
			break
		}
	}

	if frontmatterEnd == -1 {
		return content
	}

	return strings.TrimLeft(strings.Join(lines[frontmatterEnd+1:], "\n"), "\n")
}

// containsSkill reports whether dir contains at least one SKILL.md anywhere
// beneath it.
func containsSkill(dir string) bool {
	found := false
	_ = filepath.WalkDir(dir, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !entry.IsDir() && entry.Name() == skillFileName {
			found = true
			return filepath.SkipAll
		}
		return nil
	})
	return found
}
