package users

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// FileStore implements CollectionStore on top of a single JSON file
type FileStore struct {
	path string
}

// NewFileStore creates a new file store for the given path
func NewFileStore(path string) *FileStore {
	return &FileStore{
		path: path,
	}
}

// Path returns the location of the backing file
func (s *FileStore) Path() string {
	return s.path
}

// Name returns the backend name
func (s *FileStore) Name() string {
	return "file"
}

// Load reads the whole collection from disk. A missing file is an empty collection.
func (s *FileStore) Load(ctx context.Context) ([]User, error) {
	if err := ctx.Err(); err != nil {
		return nil, NewIOError("load", s.path, err)
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []User{}, nil
		}
		return nil, NewIOError("load", s.path, err)
	}

	var users []User
	if err := json.Unmarshal(data, &users); err != nil {
		return nil, NewParseError("load", s.path, err)
	}
	if users == nil {
		users = []User{}
	}

	return users, nil
}

// Save writes the whole collection to a temp file next to the target and
// renames it into place, so readers see either the old or the new document.
func (s *FileStore) Save(ctx context.Context, users []User) error {
	if err := ctx.Err(); err != nil {
		return NewIOError("save", s.path, err)
	}
	if users == nil {
		users = []User{}
	}

	data, err := encodeCollection(users)
	if err != nil {
		return NewIOError("save", s.path, fmt.Errorf("failed to encode collection: %w", err))
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return NewIOError("save", s.path, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return NewIOError("save", s.path, err)
	}
	tmpName := tmp.Name()

	if err := writeAndClose(tmp, data); err != nil {
		os.Remove(tmpName)
		return NewIOError("save", s.path, err)
	}

	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return NewIOError("save", s.path, err)
	}

	return nil
}

// encodeCollection renders users with a 2-space indent and without HTML
// escaping or a trailing newline
func encodeCollection(users []User) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(users); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

func writeAndClose(f *os.File, data []byte) error {
	if _, err := f.Write(data); err != nil {
		f.Close()
		return err
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return err
	}
	if err := f.Chmod(0o644); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
