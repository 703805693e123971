package file

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"
)

// documentStore keeps one JSON file per entity under root/kind.
type documentStore[T any] struct {
	mu   sync.RWMutex
	dir  string
	kind string
}

func newDocumentStore[T any](root, kind string) *documentStore[T] {
	return &documentStore[T]{dir: path.Join(root, kind), kind: kind}
}

func (s *documentStore[T]) filePath(id string) string {
	return filepath.Clean(path.Join(s.dir, id+".json"))
}

func (s *documentStore[T]) get(id string) (*T, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.read(id)
}

func (s *documentStore[T]) read(id string) (*T, error) {
	if id == "" || strings.ContainsAny(id, `/\`) {
		return nil, nil
	}

	body, err := os.ReadFile(s.filePath(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}

		return nil, fmt.Errorf("failed to fetch %s %s: %w", s.kind, id, err)
	}

	var entity T

	err = json.Unmarshal(body, &entity)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal %s %s: %w", s.kind, id, err)
	}

	return &entity, nil
}

func (s *documentStore[T]) all() ([]*T, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	jsonFiles, err := fs.Glob(os.DirFS(s.dir), "*.json")
	if err != nil {
		return nil, fmt.Errorf("failed to list %s files: %w", s.kind, err)
	}

	entities := make([]*T, 0, len(jsonFiles))

	for _, file := range jsonFiles {
		entity, err := s.read(strings.TrimSuffix(file, ".json"))
		if err != nil {
			return nil, err
		}

		if entity != nil {
			entities = append(entities, entity)
		}
	}

	return entities, nil
}

func (s *documentStore[T]) put(id string, entity *T) error {
	if id == "" || strings.ContainsAny(id, `/\`) {
		return fmt.Errorf("invalid %s id %q", s.kind, id)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	err := os.MkdirAll(s.dir, 0750)
	if err != nil {
		return fmt.Errorf("failed to create %s directory: %w", s.kind, err)
	}

	data, err := json.MarshalIndent(entity, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal %s %s: %w", s.kind, id, err)
	}

	return os.WriteFile(s.filePath(id), data, 0600)
}

func (s *documentStore[T]) remove(id string) error {
	if id == "" || strings.ContainsAny(id, `/\`) {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	err := os.Remove(s.filePath(id))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete %s %s: %w", s.kind, id, err)
	}

	return nil
}
