/*
Package manifest implements the index written alongside the texture atlases
describing where each entity image was placed.

The manifest is a JSON object with two members; "errors", a list of messages
for anything that could not be processed, and "result", an object keyed by
category then entity name holding the placement of the entity within each
resolution tier. Object members are written in the order they were added so
that output is reproducible from run to run.
*/
package manifest

import (
	"bytes"
	"encoding/json"
	"os"
)

// Filename is the expected filename used when writing to disk
const Filename = "spriter_output.json"

// Placement is the position of an entity image within a texture.
type Placement struct {
	X       int    `json:"x"`
	Y       int    `json:"y"`
	Width   int    `json:"width"`
	Height  int    `json:"height"`
	Texture string `json:"texture"`
}

// Entry holds the placement of an entity at each resolution tier.
type Entry struct {
	Regular Placement `json:"regular"`
	Small   Placement `json:"small"`
	Tiny    Placement `json:"tiny"`
}

// Diagnostic is a problem encountered while building the atlases. Only the
// message is written to the JSON manifest.
type Diagnostic struct {
	Kind    string
	Message string
}

// Manifest is the manifest object. It implements the json.Marshaler
// interface.
type Manifest struct {
	errors     []Diagnostic
	names      []string
	categories map[string]*Category
}

// New returns an empty manifest
func New() *Manifest {
	return &Manifest{
		categories: make(map[string]*Category),
	}
}

// AddError records a problem of the given kind
func (m *Manifest) AddError(kind, message string) {
	m.errors = append(m.errors, Diagnostic{Kind: kind, Message: message})
}

// Errors returns every problem recorded so far in the order they occurred
func (m *Manifest) Errors() []Diagnostic {
	return m.errors
}

// Category returns the named category, adding an empty one if it does not
// already exist
func (m *Manifest) Category(name string) *Category {
	if c, ok := m.categories[name]; ok {
		return c
	}
	c := newCategory()
	m.categories[name] = c
	m.names = append(m.names, name)
	return c
}

// Categories returns the names of all categories in the order they were added
func (m *Manifest) Categories() []string {
	return m.names
}

// MarshalJSON encodes the manifest into JSON form and returns the result
func (m *Manifest) MarshalJSON() ([]byte, error) {
	messages := make([]string, 0, len(m.errors))
	for _, e := range m.errors {
		messages = append(messages, e.Message)
	}

	b := new(bytes.Buffer)
	b.WriteString(`{"errors":`)
	if err := writeValue(b, messages); err != nil {
		return nil, err
	}
	b.WriteString(`,"result":{`)
	for i, name := range m.names {
		if i > 0 {
			b.WriteByte(',')
		}
		if err := writeKey(b, name); err != nil {
			return nil, err
		}
		if err := m.categories[name].marshal(b); err != nil {
			return nil, err
		}
	}
	b.WriteString("}}")

	return b.Bytes(), nil
}

// WriteFile encodes the manifest and writes it to the named file
func (m *Manifest) WriteFile(file string) error {
	b, err := json.Marshal(m)
	if err != nil {
		return err
	}
	return os.WriteFile(file, b, 0666)
}

func writeKey(b *bytes.Buffer, key string) error {
	if err := writeValue(b, key); err != nil {
		return err
	}
	return b.WriteByte(':')
}

func writeValue(b *bytes.Buffer, v interface{}) error {
	j, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_, err = b.Write(j)
	return err
}
