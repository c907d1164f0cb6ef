package pages

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadPagesYAML(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "pages.yaml")
	content := `
pages:
  - id: "135661933129"
    name: Example Cafe
    fields: [likes, name]
    request_delay_ms: 750
    config:
      link_url: https://example.test/cafe
`
	if err := os.WriteFile(file, []byte(content), 0o644); err != nil {
		t.Fatalf("write pages file: %v", err)
	}

	reg, err := LoadRegistry(file)
	if err != nil {
		t.Fatalf("LoadRegistry returned error: %v", err)
	}

	all := reg.All()
	if len(all) != 1 {
		t.Fatalf("expected 1 page, got %d", len(all))
	}

	p, ok := reg.ByID("135661933129")
	if !ok {
		t.Fatalf("expected page id 135661933129 to be loaded")
	}
	if p.Name != "Example Cafe" {
		t.Fatalf("unexpected name: %s", p.Name)
	}
	if len(p.Fields) != 2 || p.Fields[0] != "likes" {
		t.Fatalf("unexpected fields: %v", p.Fields)
	}
	if p.RequestDelay() != 750*time.Millisecond {
		t.Fatalf("unexpected request delay: %v", p.RequestDelay())
	}
	if got := ConfigString(p, ConfigLinkURLKey, ""); got != "https://example.test/cafe" {
		t.Fatalf("unexpected link_url: %s", got)
	}
}

func TestLoadPagesDuplicateID(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "pages.yaml")
	content := `
pages:
  - id: duplicate
    name: Page One
  - id: duplicate
    name: Page Two
`
	if err := os.WriteFile(file, []byte(content), 0o644); err != nil {
		t.Fatalf("write pages file: %v", err)
	}

	if _, err := LoadRegistry(file); err == nil {
		t.Fatalf("expected duplicate page error, got nil")
	}
}

func TestLoadPagesMissingName(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "pages.json")
	content := `{"pages":[{"id":"1"}]}`
	if err := os.WriteFile(file, []byte(content), 0o644); err != nil {
		t.Fatalf("write pages file: %v", err)
	}

	if _, err := LoadRegistry(file); err == nil {
		t.Fatalf("expected validation error for missing name")
	}
}

func TestPageDefaults(t *testing.T) {
	p := sanitizePage(Page{ID: " p1 ", Name: " N "})
	if p.ID != "p1" || p.Name != "N" {
		t.Fatalf("sanitize did not trim: %+v", p)
	}
	if p.RequestDelay() != 500*time.Millisecond {
		t.Fatalf("default delay = %v", p.RequestDelay())
	}
}
