package notes

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"unicode"

	"github.com/spf13/afero"
)

// Store reads and writes the category files in a project's notes directory.
// Every write replaces the whole file.
type Store struct {
	fs  afero.Fs
	dir string
}

// NewStore returns a store rooted at dir.
func NewStore(fs afero.Fs, dir string) *Store {
	return &Store{fs: fs, dir: dir}
}

// Dir returns the notes directory.
func (s *Store) Dir() string {
	return s.dir
}

// Path returns the file backing a category.
func (s *Store) Path(c Category) string {
	return filepath.Join(s.dir, string(c)+".md")
}

// Init creates the notes directory and an empty file for each category that
// does not have one yet.
func (s *Store) Init() error {
	if err := s.fs.MkdirAll(s.dir, 0755); err != nil {
		return fmt.Errorf("failed to create notes directory: %w", err)
	}
	for _, c := range Categories {
		exists, err := afero.Exists(s.fs, s.Path(c))
		if err != nil {
			return fmt.Errorf("failed to stat %s notes: %w", c, err)
		}
		if exists {
			continue
		}
		if err := afero.WriteFile(s.fs, s.Path(c), nil, 0644); err != nil {
			return fmt.Errorf("failed to create %s notes: %w", c, err)
		}
	}
	return nil
}

// Read returns the content of a category, or "" when its file is missing.
func (s *Store) Read(c Category) (string, error) {
	data, err := afero.ReadFile(s.fs, s.Path(c))
	if os.IsNotExist(err) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read %s notes: %w", c, err)
	}
	return string(data), nil
}

// ReadAll returns every category.
func (s *Store) ReadAll() (Notes, error) {
	all := make(Notes, len(Categories))
	for _, c := range Categories {
		content, err := s.Read(c)
		if err != nil {
			return nil, err
		}
		all[c] = content
	}
	return all, nil
}

// Write replaces a category's content. The file is written to a temp file and
// renamed so a failed write never leaves it half-written.
func (s *Store) Write(c Category, content string) error {
	if err := s.fs.MkdirAll(s.dir, 0755); err != nil {
		return fmt.Errorf("failed to create notes directory: %w", err)
	}

	tmp, err := afero.TempFile(s.fs, s.dir, "."+string(c)+"-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file for %s notes: %w", c, err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.WriteString(content); err != nil {
		tmp.Close()
		s.fs.Remove(tmpPath)
		return fmt.Errorf("failed to write %s notes: %w", c, err)
	}
	if err := tmp.Close(); err != nil {
		s.fs.Remove(tmpPath)
		return fmt.Errorf("failed to write %s notes: %w", c, err)
	}
	if err := s.fs.Rename(tmpPath, s.Path(c)); err != nil {
		s.fs.Remove(tmpPath)
		return fmt.Errorf("failed to replace %s notes: %w", c, err)
	}
	return nil
}

// Append adds content after the existing text of a category, separated by a
// single newline. Trailing whitespace of the existing text is dropped.
func (s *Store) Append(c Category, content string) error {
	existing, err := s.Read(c)
	if err != nil {
		return err
	}
	return s.Write(c, appendNotes(existing, content))
}

func appendNotes(existing, content string) string {
	if existing == "" {
		return content
	}
	return strings.TrimRightFunc(existing, unicode.IsSpace) + "\n" + content
}

var (
	locksMu sync.Mutex
	locks   = map[string]*sync.Mutex{}
)

// lock returns the mutex guarding read-modify-write cycles on this store's
// directory. Stores opened on the same directory share it.
func (s *Store) lock() *sync.Mutex {
	locksMu.Lock()
	defer locksMu.Unlock()

	key := filepath.Clean(s.dir)
	mu, ok := locks[key]
	if !ok {
		mu = &sync.Mutex{}
		locks[key] = mu
	}
	return mu
}
