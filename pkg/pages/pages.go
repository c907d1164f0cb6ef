package pages

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"gopkg.in/yaml.v3"
)

// Package pages holds the registry of watched Graph pages (YAML/JSON) helpers.

// Page describes a single page whose like-count is watched.
type Page struct {
	ID             string         `json:"id" yaml:"id"`
	Name           string         `json:"name" yaml:"name"`
	Fields         []string       `json:"fields" yaml:"fields"`
	RequestDelayMs int            `json:"request_delay_ms" yaml:"request_delay_ms"`
	Config         map[string]any `json:"config" yaml:"config"`
}

type registryFile struct {
	Pages []Page `json:"pages" yaml:"pages"`
}

const defaultRequestDelayMs = 500

// Registry materializes page definitions loaded from config files.
type Registry struct {
	mu    sync.RWMutex
	pages []Page
	idx   map[string]Page
}

// LoadRegistry loads the watched-pages registry from a YAML/JSON file.
func LoadRegistry(path string) (*Registry, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("pages file path is empty")
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open pages file: %w", err)
	}
	defer file.Close()

	raw, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("read pages file: %w", err)
	}

	fileReg, err := parseRegistry(raw, filepath.Ext(path))
	if err != nil {
		return nil, err
	}
	if len(fileReg.Pages) == 0 {
		return nil, errors.New("pages file contains no pages entries")
	}

	reg := &Registry{
		pages: make([]Page, len(fileReg.Pages)),
		idx:   make(map[string]Page, len(fileReg.Pages)),
	}

	for i := range fileReg.Pages {
		p := sanitizePage(fileReg.Pages[i])
		if err := validatePage(p); err != nil {
			return nil, fmt.Errorf("pages[%d]: %w", i, err)
		}
		if _, exists := reg.idx[p.ID]; exists {
			return nil, fmt.Errorf("duplicate page id %q", p.ID)
		}
		reg.pages[i] = p
		reg.idx[p.ID] = p
	}

	return reg, nil
}

func parseRegistry(data []byte, ext string) (registryFile, error) {
	ext = strings.ToLower(strings.TrimSpace(ext))

	decoders := []struct {
		name string
		ext  string
		fn   func([]byte, any) error
	}{
		{name: "yaml", ext: ".yaml", fn: yaml.Unmarshal},
		{name: "yaml", ext: ".yml", fn: yaml.Unmarshal},
		{name: "json", ext: ".json", fn: json.Unmarshal},
	}

	for _, d := range decoders {
		if ext != "" && ext != d.ext {
			continue
		}
		if reg, err := unmarshalRegistry(d.name, data, d.fn); err == nil {
			return reg, nil
		}
	}

	return registryFile{}, errors.New("pages file format not recognized (expected YAML or JSON)")
}

func unmarshalRegistry(name string, data []byte, fn func([]byte, any) error) (registryFile, error) {
	var reg registryFile
	if err := fn(data, &reg); err != nil {
		return registryFile{}, fmt.Errorf("decode %s pages: %w", name, err)
	}
	return reg, nil
}

func sanitizePage(p Page) Page {
	p.ID = strings.TrimSpace(p.ID)
	p.Name = strings.TrimSpace(p.Name)

	fields := make([]string, 0, len(p.Fields))
	for _, f := range p.Fields {
		if f = strings.TrimSpace(f); f != "" {
			fields = append(fields, f)
		}
	}
	p.Fields = fields

	if p.Config == nil {
		p.Config = map[string]any{}
	}
	if p.RequestDelayMs <= 0 {
		p.RequestDelayMs = defaultRequestDelayMs
	}

	return p
}

func validatePage(p Page) error {
	if p.ID == "" {
		return errors.New("id is required")
	}
	if p.Name == "" {
		return fmt.Errorf("name is required for page %q", p.ID)
	}
	return nil
}

// All returns a copy of the loaded pages.
func (r *Registry) All() []Page {
	if r == nil {
		return nil
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Page, len(r.pages))
	copy(out, r.pages)
	return out
}

// ByID returns the page entry for the given id, if loaded.
func (r *Registry) ByID(id string) (Page, bool) {
	if r == nil {
		return Page{}, false
	}

	id = strings.TrimSpace(id)
	if id == "" {
		return Page{}, false
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.idx[id]
	return p, ok
}

// RequestDelay returns the per-request throttle duration for the page.
func (p Page) RequestDelay() time.Duration {
	if p.RequestDelayMs <= 0 {
		return time.Duration(defaultRequestDelayMs) * time.Millisecond
	}
	return time.Duration(p.RequestDelayMs) * time.Millisecond
}
