// Package record saves monitoring sessions to disk and plays them back.
//
// A recording is one directory under the store's base directory:
//
//	<base>/<id>/metadata.json   session metadata
//	<base>/<id>/session.jsonl   one Entry per line, in arrival order
package record

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"
)

const (
	metadataFile = "metadata.json"
	sessionFile  = "session.jsonl"
)

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type Metadata struct {
	ID       string    `json:"id"`
	URL      string    `json:"url"`
	Started  time.Time `json:"started"`
	Finished time.Time `json:"finished"`
	Inbound  int       `json:"inbound"`
	Outbound int       `json:"outbound"`
	MaxTime  float64   `json:"max_time"`
}

// Dir is the directory holding recording id.
func (s *Store) Dir(id string) string {
	return filepath.Join(s.baseDir, id)
}

func (s *Store) newID(now time.Time) string {
	return fmt.Sprintf("session_%s", now.UTC().Format("20060102T150405.000"))
}

// List returns every readable recording, oldest first.
func (s *Store) List() ([]Metadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []Metadata{}, nil
		}
		return nil, err
	}

	runs := make([]Metadata, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		meta, err := s.Load(e.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}
	sort.Slice(runs, func(i, j int) bool { return runs[i].Started.Before(runs[j].Started) })
	return runs, nil
}

func (s *Store) Load(id string) (*Metadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, id, metadataFile))
	if err != nil {
		return nil, err
	}

	var meta Metadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

func writeMetadata(dir string, meta Metadata) error {
	f, err := os.Create(filepath.Join(dir, metadataFile))
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(meta)
}
