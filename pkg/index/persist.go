package index

import (
	"bufio"
	"context"
	"encoding/binary"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

// persist writes all index artifacts into a staging directory and renames
// it into place, so readers either see the previous complete index or the
// new one, never a partial write. The documents and the metadata side-file
// are frozen together in the same publish.
func (s *Store) persist(ctx context.Context, entries []Entry) error {
	staging := s.dir + ".staging"
	if err := os.RemoveAll(staging); err != nil {
		return errors.Wrap(err, "failed to clear staging directory")
	}
	if err := os.MkdirAll(staging, 0o755); err != nil {
		return errors.Wrap(err, "failed to create staging directory")
	}
	defer os.RemoveAll(staging)

	side := sideFile{
		Version: indexVersion,
		Backend: s.backendName(),
		Skills:  make(map[string]Snapshot, len(entries)),
	}
	docs := make([]document, 0, len(entries))
	for _, e := range entries {
		side.Skills[e.SkillID] = e.Snapshot
		docs = append(docs, document{SkillID: e.SkillID, EmbeddingText: e.EmbeddingText})
	}

	if err := writeDocuments(filepath.Join(staging, documentsName), docs); err != nil {
		return err
	}

	if s.provider != nil {
		texts := make([]string, len(entries))
		for i, e := range entries {
			texts[i] = e.EmbeddingText
		}
		vectors, err := s.provider.Embed(ctx, texts)
		if err != nil {
			return errors.Wrap(err, "failed to embed documents")
		}
		if err := writeVectors(filepath.Join(staging, vectorsName), vectors); err != nil {
			return err
		}
	}

	sideBytes, err := json.MarshalIndent(side, "", "  ")
	if err != nil {
		return errors.Wrap(err, "failed to marshal metadata side-file")
	}
	if err := os.WriteFile(filepath.Join(staging, sideFileName), sideBytes, 0o644); err != nil {
		return errors.Wrap(err, "failed to write metadata side-file")
	}

	if err := os.RemoveAll(s.dir); err != nil {
		return errors.Wrap(err, "failed to remove previous index")
	}
	if err := os.Rename(staging, s.dir); err != nil {
		return errors.Wrap(err, "failed to publish index")
	}

	return nil
}

func writeDocuments(path string, docs []document) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "failed to create documents file")
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	for _, doc := range docs {
		line, err := json.Marshal(doc)
		if err != nil {
			return errors.Wrap(err, "failed to marshal document")
		}
		if _, err := w.Write(line); err != nil {
			return errors.Wrap(err, "failed to write document")
		}
		if err := w.WriteByte('\n'); err != nil {
			return errors.Wrap(err, "failed to write document")
		}
	}
	if err := w.Flush(); err != nil {
		return errors.Wrap(err, "failed to flush documents file")
	}
	return f.Close()
}

func writeVectors(path string, vectors [][]float32) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "failed to create vectors file")
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	for _, vec := range vectors {
		if err := binary.Write(w, binary.LittleEndian, vec); err != nil {
			return errors.Wrap(err, "failed to write vectors")
		}
	}
	if err := w.Flush(); err != nil {
		return errors.Wrap(err, "failed to flush vectors file")
	}
	return f.Close()
}

func (s *Store) loadSideFile() (*sideFile, error) {
	data, err := os.ReadFile(filepath.Join(s.dir, sideFileName))
	if err != nil {
		return nil, errors.Wrap(err, "failed to read metadata side-file")
	}

	var side sideFile
	if err := json.Unmarshal(data, &side); err != nil {
		return nil, errors.Wrap(err, "failed to parse metadata side-file")
	}
	return &side, nil
}

func (s *Store) loadDocuments() ([]document, error) {
	f, err := os.Open(filepath.Join(s.dir, documentsName))
	if err != nil {
		return nil, errors.Wrap(err, "failed to open documents file")
	}
	defer f.Close()

	var docs []document
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var doc document
		if err := json.Unmarshal(line, &doc); err != nil {
			return nil, errors.Wrap(err, "invalid documents file")
		}
		docs = append(docs, doc)
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to read documents file")
	}

	return docs, nil
}

func (s *Store) loadVectors(count int) ([][]float32, error) {
	path := filepath.Join(s.dir, vectorsName)
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open vectors file")
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, errors.Wrap(err, "failed to stat vectors file")
	}
	if count == 0 || info.Size()%4 != 0 {
		return nil, errors.Errorf("corrupt vectors file: size %d", info.Size())
	}

	total := int(info.Size() / 4)
	if total%count != 0 {
		return nil, errors.Errorf("vectors file does not divide into %d documents", count)
	}
	dim := total / count

	vectors := make([][]float32, count)
	r := bufio.NewReader(f)
	for i := range vectors {
		vec := make([]float32, dim)
		if err := binary.Read(r, binary.LittleEndian, vec); err != nil {
			return nil, errors.Wrap(err, "failed to read vectors")
		}
		vectors[i] = vec
	}

	return vectors, nil
}
