package output

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
)

// patternFileVersion is bumped when the on-disk layout changes
const patternFileVersion = 1

// PatternStore remembers recurring anomaly patterns between runs so that
// reports can flag the ones never seen before.
type PatternStore struct {
	mu       sync.RWMutex
	path     string
	clock    clock.Clock
	patterns map[string]*StoredPattern
}

// StoredPattern is one remembered pattern
type StoredPattern struct {
	Pattern    string    `json:"pattern"`
	FirstSeen  time.Time `json:"first_seen"`
	LastSeen   time.Time `json:"last_seen"`
	TotalCount int       `json:"total_count"`
}

type patternsFile struct {
	Version  int                       `json:"version"`
	Patterns map[string]*StoredPattern `json:"patterns"`
}

// DefaultPatternFile returns ~/.logscope/patterns.json
func DefaultPatternFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return filepath.Join(home, ".logscope", "patterns.json")
}

// OpenPatternStore loads the store at path. A missing file yields an empty
// store; an unreadable one is an error.
func OpenPatternStore(path string, clk clock.Clock) (*PatternStore, error) {
	if path == "" {
		path = DefaultPatternFile()
	}
	if clk == nil {
		clk = clock.New()
	}
	s := &PatternStore{
		path:     path,
		clock:    clk,
		patterns: make(map[string]*StoredPattern),
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, err
	}
	var file patternsFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, err
	}
	if file.Patterns != nil {
		s.patterns = file.Patterns
	}
	return s, nil
}

// Path returns the backing file
func (s *PatternStore) Path() string {
	return s.path
}

// Len returns the number of remembered patterns
func (s *PatternStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.patterns)
}

// Record annotates each match with its history and then remembers it.
// It returns how many matches were new.
func (s *PatternStore) Record(matches []PatternMatch) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock.Now().UTC()
	fresh := 0
	for i := range matches {
		m := &matches[i]
		stored, ok := s.patterns[m.Pattern]
		isNew := !ok
		m.New = &isNew
		if isNew {
			fresh++
			stored = &StoredPattern{Pattern: m.Pattern, FirstSeen: now}
			s.patterns[m.Pattern] = stored
		}
		stored.LastSeen = now
		stored.TotalCount += m.Count
		first := stored.FirstSeen
		m.FirstSeen = &first
		m.TotalSeen = stored.TotalCount
	}
	return fresh
}

// Save writes the store, creating its directory when needed
func (s *PatternStore) Save() error {
	s.mu.RLock()
	data, err := json.MarshalIndent(patternsFile{Version: patternFileVersion, Patterns: s.patterns}, "", "  ")
	s.mu.RUnlock()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(s.path, data, 0o644)
}
