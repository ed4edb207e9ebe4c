package roomstore

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"gopkg.in/yaml.v3"
)

// fileDocument is the on-disk YAML shape of the room set.
type fileDocument struct {
	Rooms []string `yaml:"rooms"`
}

// FileStore keeps the room set in a YAML file. Writes replace the whole
// document through a temp file plus rename so a crash mid-write never leaves
// a truncated room list behind.
type FileStore struct {
	mu    sync.Mutex
	path  string
	rooms map[string]struct{}
}

// NewFileStore opens (or creates) the room file at path. Missing parent
// directories are created.
func NewFileStore(path string) (*FileStore, error) {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create room store dir: %w", err)
		}
	}
	return &FileStore{path: path, rooms: make(map[string]struct{})}, nil
}

func (s *FileStore) LoadRoomNames(_ context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := os.ReadFile(s.path)
	switch {
	case os.IsNotExist(err):
		s.rooms = map[string]struct{}{DefaultRoom: {}}
		if err := s.writeLocked(); err != nil {
			return nil, fmt.Errorf("bootstrap room store: %w", err)
		}
	case err != nil:
		return nil, fmt.Errorf("read room store: %w", err)
	default:
		var doc fileDocument
		if err := yaml.Unmarshal(raw, &doc); err != nil {
			return nil, fmt.Errorf("parse room store %s: %w", s.path, err)
		}
		s.rooms = make(map[string]struct{}, len(doc.Rooms))
		for _, r := range doc.Rooms {
			s.rooms[r] = struct{}{}
		}
		if len(s.rooms) == 0 {
			s.rooms[DefaultRoom] = struct{}{}
			if err := s.writeLocked(); err != nil {
				return nil, fmt.Errorf("bootstrap room store: %w", err)
			}
		}
	}

	return s.namesLocked(), nil
}

func (s *FileStore) AddRoomName(_ context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.rooms[name]; ok {
		return nil
	}
	s.rooms[name] = struct{}{}
	if err := s.writeLocked(); err != nil {
		delete(s.rooms, name)
		return fmt.Errorf("persist room %q: %w", name, err)
	}
	return nil
}

func (s *FileStore) Close() error { return nil }

func (s *FileStore) namesLocked() []string {
	names := make([]string, 0, len(s.rooms))
	for r := range s.rooms {
		names = append(names, r)
	}
	sort.Strings(names)
	return names
}

func (s *FileStore) writeLocked() error {
	doc := fileDocument{Rooms: s.namesLocked()}
	raw, err := yaml.Marshal(doc)
	if err != nil {
		return err
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
}
