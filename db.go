package spriter

import (
	"database/sql"
	"fmt"

	"github.com/bodgit/spriter/atlas"
	"github.com/bodgit/spriter/manifest"
	_ "github.com/mattn/go-sqlite3"
)

// ManifestDB stores a manifest in an SQLite database so that consumers can
// query placements and tell the kinds of problem apart.
type ManifestDB struct {
	db *sql.DB
}

// NewManifestDB opens, creating if necessary, the database at file.
func NewManifestDB(file string) (*ManifestDB, error) {
	db, err := sql.Open("sqlite3", fmt.Sprintf("%s?_foreign_keys=on", file))
	if err != nil {
		return nil, err
	}

	if _, err = db.Exec("CREATE TABLE IF NOT EXISTS texture (id INTEGER PRIMARY KEY NOT NULL, name TEXT NOT NULL UNIQUE)"); err != nil {
		db.Close()
		return nil, err
	}

	if _, err = db.Exec("CREATE TABLE IF NOT EXISTS placement (category TEXT NOT NULL, entity TEXT NOT NULL, tier TEXT NOT NULL, texture_id INTEGER NOT NULL, x INTEGER NOT NULL, y INTEGER NOT NULL, width INTEGER NOT NULL, height INTEGER NOT NULL, PRIMARY KEY(category, entity, tier), FOREIGN KEY(texture_id) REFERENCES texture(id))"); err != nil {
		db.Close()
		return nil, err
	}

	if _, err = db.Exec("CREATE TABLE IF NOT EXISTS problem (id INTEGER PRIMARY KEY NOT NULL, kind TEXT NOT NULL, message TEXT NOT NULL)"); err != nil {
		db.Close()
		return nil, err
	}

	return &ManifestDB{
		db: db,
	}, nil
}

// Close closes the database.
func (db *ManifestDB) Close() error {
	return db.db.Close()
}

// Save replaces the contents of the database with the manifest m.
func (db *ManifestDB) Save(m *manifest.Manifest) error {
	tx, err := db.db.Begin()
	if err != nil {
		return err
	}

	if err := save(tx, m); err != nil {
		tx.Rollback()
		return err
	}

	return tx.Commit()
}

func save(tx *sql.Tx, m *manifest.Manifest) error {
	for _, table := range []string{"placement", "texture", "problem"} {
		if _, err := tx.Exec("DELETE FROM " + table); err != nil {
			return err
		}
	}

	for _, p := range m.Errors() {
		if _, err := tx.Exec("INSERT INTO problem (kind, message) VALUES (?, ?)", p.Kind, p.Message); err != nil {
			return err
		}
	}

	textures := make(map[string]int64)
	for _, name := range m.Categories() {
		c := m.Category(name)
		for _, entity := range c.Names() {
			e, _ := c.Get(entity)
			for _, tp := range []struct {
				tier string
				p    manifest.Placement
			}{
				{atlas.Regular.Name, e.Regular},
				{atlas.Small.Name, e.Small},
				{atlas.Tiny.Name, e.Tiny},
			} {
				id, ok := textures[tp.p.Texture]
				if !ok {
					var err error
					if id, err = addTexture(tx, tp.p.Texture); err != nil {
						return err
					}
					textures[tp.p.Texture] = id
				}

				if _, err := tx.Exec("INSERT INTO placement (category, entity, tier, texture_id, x, y, width, height) VALUES (?, ?, ?, ?, ?, ?, ?, ?)", name, entity, tp.tier, id, tp.p.X, tp.p.Y, tp.p.Width, tp.p.Height); err != nil {
					return err
				}
			}
		}
	}

	return nil
}

func addTexture(tx *sql.Tx, name string) (int64, error) {
	result, err := tx.Exec("INSERT INTO texture (name) VALUES (?)", name)
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

// Placement returns the stored placement of an entity at the given tier.
func (db *ManifestDB) Placement(category, entity, tier string) (*manifest.Placement, error) {
	var p manifest.Placement
	switch err := db.db.QueryRow("SELECT p.x, p.y, p.width, p.height, t.name FROM placement AS p JOIN texture AS t ON p.texture_id = t.id WHERE p.category = ? AND p.entity = ? AND p.tier = ?", category, entity, tier).Scan(&p.X, &p.Y, &p.Width, &p.Height, &p.Texture); err {
	case sql.ErrNoRows:
		return nil, nil
	case nil:
		return &p, nil
	default:
		return nil, err
	}
}

// Problems returns the stored problems of the given kind in the order they
// were recorded.
func (db *ManifestDB) Problems(kind string) ([]string, error) {
	rows, err := db.db.Query("SELECT message FROM problem WHERE kind = ? ORDER BY id", kind)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []string
	for rows.Next() {
		var message string
		if err := rows.Scan(&message); err != nil {
			return nil, err
		}
		messages = append(messages, message)
	}

	return messages, rows.Err()
}
