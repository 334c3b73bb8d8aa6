// Package token builds the collectible metadata document that points at a
// published ticket image.
package token

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/matchmint/matchmint/internal/domain/model"
	"github.com/matchmint/matchmint/pkg/naming"
)

// Document is the fixed-shape collectible metadata. external_link and
// animation_url always serialize as literal null, traits as an empty list.
type Document struct {
	Image        string  `json:"image"`
	Name         string  `json:"name"`
	Description  string  `json:"description"`
	ExternalLink *string `json:"external_link"`
	AnimationURL *string `json:"animation_url"`
	Traits       []any   `json:"traits"`
}

// Build returns a fresh document for the ticket, pointing at imageURI. Each
// call constructs a new value; there is no shared template state.
func Build(t *model.Ticket, imageURI string) (Document, error) {
	date, err := t.DateText()
	if err != nil {
		return Document{}, err
	}

	return Document{
		Image: imageURI,
		Name:  fmt.Sprintf("%s vs %s ticket", t.HostTeam.Name, t.GuestTeam.Name),
		Description: fmt.Sprintf(
			"The match between %s and %s took place on %s. The final score was %s",
			t.HostTeam.Name, t.GuestTeam.Name, date, t.ScoreText(),
		),
		Traits: []any{},
	}, nil
}

// Option applies a configuration option to the Builder.
type Option func(*Builder)

// WithWorkDir sets the directory token documents are written to.
func WithWorkDir(dir string) Option {
	return func(b *Builder) {
		if dir != "" {
			b.workDir = dir
		}
	}
}

// Builder serializes token documents into hash-named files.
type Builder struct {
	workDir string
}

// New creates a Builder with configuration options.
func New(opts ...Option) *Builder {
	b := &Builder{
		workDir: os.TempDir(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Write builds the document for the ticket, serializes it, and writes it to a
// file named by the digest of the serialized bytes. The caller owns deletion.
func (b *Builder) Write(t *model.Ticket, imageURI string) (string, error) {
	doc, err := Build(t, imageURI)
	if err != nil {
		return "", err
	}

	raw, err := json.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrSerialize, err)
	}

	path := filepath.Join(b.workDir, naming.Filename(naming.Sum64(raw), ".json"))
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return "", fmt.Errorf("%w: %w", ErrWrite, err)
	}
	return path, nil
}
