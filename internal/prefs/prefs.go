// Package prefs persists the user's date format mode and selected zone in a
// small YAML file and reloads it when the file changes on disk.
package prefs

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"gopkg.in/yaml.v3"

	"github.com/ngrash/tsconv/calendar"
	"github.com/ngrash/tsconv/detect"
)

// ErrInvalid is returned for preferences that fail validation.
var ErrInvalid = errors.New("invalid preferences")

// Preferences are the settings the converter is handed.
type Preferences struct {
	DateFormat detect.Mode `yaml:"date_format" json:"date_format"`
	Timezone   string      `yaml:"timezone" json:"timezone"`
}

// Validate implements validation.Validatable. It does not check that the
// zone exists; Store does that against its calendar.
func (p Preferences) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.DateFormat, validation.In(detect.US, detect.EU)),
		validation.Field(&p.Timezone, validation.Required),
	)
}

// Store holds the current preferences and their file.
type Store struct {
	path string
	cal  calendar.Service

	mu  sync.RWMutex
	cur Preferences
}

// Open returns a Store for path. A missing file yields defaults; an
// unreadable or invalid one is an error.
func Open(path string, defaults Preferences, cal calendar.Service) (*Store, error) {
	s := &Store{path: filepath.Clean(path), cal: cal, cur: defaults}
	if err := s.check(defaults); err != nil {
		return nil, fmt.Errorf("default preferences: %w", err)
	}
	if _, err := s.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}
	return s, nil
}

// Path returns the preference file path.
func (s *Store) Path() string { return s.path }

// Current returns the preferences in effect.
func (s *Store) Current() Preferences {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cur
}

// Load rereads the file. On error the current preferences are kept.
// It reports whether they changed.
func (s *Store) Load() (bool, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return false, fmt.Errorf("read preferences: %w", err)
	}
	s.mu.RLock()
	p := s.cur
	s.mu.RUnlock()
	if err := yaml.Unmarshal(data, &p); err != nil {
		return false, fmt.Errorf("parse preferences %s: %w", s.path, err)
	}
	if err := s.check(p); err != nil {
		return false, fmt.Errorf("preferences %s: %w", s.path, err)
	}
	return s.set(p), nil
}

// Save validates p, writes it to the file and makes it current.
func (s *Store) Save(p Preferences) error {
	if err := s.check(p); err != nil {
		return err
	}
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(p); err != nil {
		return fmt.Errorf("encode preferences: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("encode preferences: %w", err)
	}
	if err := writeFile(s.path, buf.Bytes()); err != nil {
		return fmt.Errorf("write preferences: %w", err)
	}
	s.set(p)
	return nil
}

func (s *Store) set(p Preferences) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	changed := s.cur != p
	s.cur = p
	return changed
}

func (s *Store) check(p Preferences) error {
	if err := p.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	if _, err := s.cal.FieldsIn(0, p.Timezone); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, validation.Errors{"Timezone": err})
	}
	return nil
}

// writeFile replaces path atomically so a watcher never reads a partial file.
func writeFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(filepath.Dir(path), ".prefs-*")
	if err != nil {
		return err
	}
	tmp := f.Name()
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, path)
}
