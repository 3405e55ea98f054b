/*
Package spriter is a library for packing folders of entity images into fixed
grid texture atlases at several resolutions.

The images for each category are expected in img/<category>/ beneath a root
directory. The atlases are written to img/sprite/ and a JSON manifest
describing where every entity was placed is written to the root directory.
*/
package spriter

import (
	"errors"
	"fmt"
	"path/filepath"
	"runtime"

	"github.com/bodgit/spriter/manifest"
	"github.com/sirupsen/logrus"
)

// Spriter builds texture atlases for a set of categories.
type Spriter struct {
	categories []Category
	logger     logrus.FieldLogger
	workers    int
	colors     int
}

// Option configures a Spriter.
type Option func(*Spriter) error

// Workers sets the number of images decoded and resized concurrently.
func Workers(n int) Option {
	return func(s *Spriter) error {
		if n < 1 {
			return fmt.Errorf("spriter: invalid number of workers %d", n)
		}
		s.workers = n
		return nil
	}
}

// Colors quantizes each atlas page to a palette of at most n colors. Zero
// leaves pages as truecolor.
func Colors(n int) Option {
	return func(s *Spriter) error {
		if n < 0 || n > 256 {
			return fmt.Errorf("spriter: invalid number of colors %d", n)
		}
		s.colors = n
		return nil
	}
}

// New returns a Spriter for the given categories, which is usually
// DefaultCategories.
func New(categories []Category, logger logrus.FieldLogger, options ...Option) (*Spriter, error) {
	if err := validateCategories(categories); err != nil {
		return nil, err
	}

	s := &Spriter{
		categories: categories,
		logger:     logger,
		workers:    runtime.NumCPU(),
	}

	for _, option := range options {
		if err := option(s); err != nil {
			return nil, err
		}
	}

	return s, nil
}

// Run builds the atlases for every category beneath path and writes the
// manifest. Problems with individual images, atlases or categories do not
// stop the run, they are recorded in the returned manifest instead. An error
// is only returned if the manifest itself could not be written.
func (s *Spriter) Run(path string) (*manifest.Manifest, error) {
	root, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}

	m := manifest.New()
	for _, c := range s.categories {
		s.buildCategory(root, c, m)
	}

	if err := m.WriteFile(filepath.Join(root, manifest.Filename)); err != nil {
		return m, err
	}

	s.logger.WithField("errors", len(m.Errors())).Info("Wrote manifest")

	return m, nil
}

func (s *Spriter) record(m *manifest.Manifest, err error) {
	var (
		de *DecodeError
		ee *EncodeError
	)

	kind := KindMissingCategory
	switch {
	case errors.As(err, &de):
		kind = KindDecode
	case errors.As(err, &ee):
		kind = KindEncode
	}

	s.logger.WithField("kind", kind).Warn(err)
	m.AddError(kind, err.Error())
}
