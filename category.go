package spriter

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Category describes a folder of entity images and the grid, in cells, of
// the atlases they are packed into.
type Category struct {
	Name   string `yaml:"name"`
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`
}

// DefaultCategories is the category table used when none is configured.
// The grid heights of map, mission and profileicon are guesses; the upstream
// layout doesn't define them.
var DefaultCategories = []Category{
	{"champion", 10, 3},
	{"item", 10, 10},
	{"map", 6, 6},
	{"mission", 10, 20},
	{"passive", 10, 3},
	{"profileicon", 10, 300},
	{"spell", 10, 4},
}

var (
	errNoCategories = errors.New("spriter: no categories")
	errNoName       = errors.New("spriter: category has no name")
)

type config struct {
	Categories []Category `yaml:"categories"`
}

// LoadCategories reads a category table from the YAML file at path.
func LoadCategories(path string) ([]Category, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var c config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("spriter: parsing %s: %w", path, err)
	}

	if err := validateCategories(c.Categories); err != nil {
		return nil, err
	}

	return c.Categories, nil
}

func validateCategories(categories []Category) error {
	if len(categories) == 0 {
		return errNoCategories
	}

	seen := make(map[string]struct{}, len(categories))
	for _, c := range categories {
		switch {
		case c.Name == "":
			return errNoName
		case strings.ContainsAny(c.Name, `/\`) || c.Name == "." || c.Name == "..":
			return fmt.Errorf("spriter: invalid category name %q", c.Name)
		case c.Width <= 0 || c.Height <= 0:
			return fmt.Errorf("spriter: category %q has invalid grid %dx%d", c.Name, c.Width, c.Height)
		}
		if _, ok := seen[c.Name]; ok {
			return fmt.Errorf("spriter: duplicate category %q", c.Name)
		}
		seen[c.Name] = struct{}{}
	}

	return nil
}
