package registry

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dashgen-org/dashgen/config"
	"github.com/dashgen-org/dashgen/engine"
)

// ============================================================================
// STORE — On-Disk Dashboard Persistence
// ============================================================================
// Each dashboard gets its own directory under the store root:
//
//   <root>/<id>/index.html    rendered document
//   <root>/<id>/config.json   resolved configuration
//   <root>/<id>/data          source data snapshot
//
// The snapshot keeps a build reproducible after the original file moves.
// ============================================================================

const (
	documentFile = "index.html"
	configFile   = "config.json"
	dataFile     = "data"
)

// Store persists dashboards under a root directory.
type Store struct {
	root string
}

// NewStore creates the root directory if needed.
func NewStore(root string) (*Store, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create store root: %w", err)
	}
	return &Store{root: root}, nil
}

// Save writes the dashboard document, configuration, and data snapshot.
func (s *Store) Save(d *engine.Dashboard, data []byte) error {
	dir := filepath.Join(s.root, d.ID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create dashboard dir: %w", err)
	}

	if err := os.WriteFile(filepath.Join(dir, documentFile), d.Document.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write document: %w", err)
	}
	cfg, err := json.MarshalIndent(d.Config, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, configFile), cfg, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, dataFile), data, 0o644); err != nil {
		return fmt.Errorf("write data snapshot: %w", err)
	}
	return nil
}

// Document reads the rendered HTML for a stored dashboard.
func (s *Store) Document(id string) ([]byte, error) {
	b, err := os.ReadFile(filepath.Join(s.root, id, documentFile))
	if os.IsNotExist(err) {
		return nil, &NotFoundError{ID: id}
	}
	return b, err
}

// Config reads the resolved configuration for a stored dashboard.
func (s *Store) Config(id string) (*config.Dashboard, error) {
	b, err := os.ReadFile(filepath.Join(s.root, id, configFile))
	if os.IsNotExist(err) {
		return nil, &NotFoundError{ID: id}
	}
	if err != nil {
		return nil, err
	}
	var cfg config.Dashboard
	if err := json.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("decode stored config: %w", err)
	}
	return &cfg, nil
}

// Data reads the source data snapshot for a stored dashboard.
func (s *Store) Data(id string) ([]byte, error) {
	b, err := os.ReadFile(filepath.Join(s.root, id, dataFile))
	if os.IsNotExist(err) {
		return nil, &NotFoundError{ID: id}
	}
	return b, err
}

// Remove deletes a stored dashboard directory.
func (s *Store) Remove(id string) error {
	dir := filepath.Join(s.root, id)
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return &NotFoundError{ID: id}
	}
	return os.RemoveAll(dir)
}

// IDs lists the stored dashboard IDs.
func (s *Store) IDs() ([]string, error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			ids = append(ids, e.Name())
		}
	}
	return ids, nil
}
