// Package lessons reads the static lesson text of each module.
package lessons

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/AlexMoto69/uplearn/internal/progress"
)

// ErrNotFound is returned when a module has no lesson text.
type ErrNotFound struct {
	Module progress.ModuleID
	Path   string
}

func (e *ErrNotFound) Error() string {
	return fmt.Sprintf("lesson text for module %d not found at %s", e.Module, e.Path)
}

// FileStore serves module text from plain files, caching what it has read.
type FileStore struct {
	cfg Config

	mu    sync.RWMutex
	cache map[progress.ModuleID]string
}

// NewFileStore creates a FileStore. Empty fields fall back to DefaultConfig.
func NewFileStore(cfg Config) *FileStore {
	def := DefaultConfig()
	if cfg.Dir == "" {
		cfg.Dir = def.Dir
	}
	if cfg.Pattern == "" {
		cfg.Pattern = def.Pattern
	}
	return &FileStore{cfg: cfg, cache: make(map[progress.ModuleID]string)}
}

// Path returns the file that holds a module's text.
func (s *FileStore) Path(module progress.ModuleID) string {
	return filepath.Join(s.cfg.Dir, fmt.Sprintf(s.cfg.Pattern, int(module)))
}

// ReadModuleText returns the full lesson text of a module. A missing or
// blank file yields *ErrNotFound.
func (s *FileStore) ReadModuleText(ctx context.Context, module progress.ModuleID) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	s.mu.RLock()
	text, ok := s.cache[module]
	s.mu.RUnlock()
	if ok {
		return text, nil
	}

	path := s.Path(module)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", &ErrNotFound{Module: module, Path: path}
		}
		return "", fmt.Errorf("read lesson %s: %w", path, err)
	}

	text = strings.TrimSpace(string(data))
	if text == "" {
		return "", &ErrNotFound{Module: module, Path: path}
	}

	s.mu.Lock()
	s.cache[module] = text
	s.mu.Unlock()
	return text, nil
}

// Modules lists the modules that have a lesson file, ascending.
func (s *FileStore) Modules() ([]progress.ModuleID, error) {
	entries, err := os.ReadDir(s.cfg.Dir)
	if err != nil {
		return nil, fmt.Errorf("list lessons in %s: %w", s.cfg.Dir, err)
	}

	var ids []progress.ModuleID
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		var n int
		if _, err := fmt.Sscanf(e.Name(), s.cfg.Pattern, &n); err != nil || n <= 0 {
			continue
		}
		// Sscanf stops at the verb; reject names with trailing text.
		if fmt.Sprintf(s.cfg.Pattern, n) != e.Name() {
			continue
		}
		ids = append(ids, progress.ModuleID(n))
	}
	slices.Sort(ids)
	return ids, nil
}
