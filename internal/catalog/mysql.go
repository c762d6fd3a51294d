package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"bookcontents/internal/toc"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS toc_settings (
		name VARCHAR(64) NOT NULL PRIMARY KEY,
		value VARCHAR(255) NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS toc_editions (
		name VARCHAR(64) NOT NULL PRIMARY KEY,
		title VARCHAR(255) NOT NULL,
		position INT NOT NULL,
		is_default BOOLEAN NOT NULL DEFAULT FALSE
	)`,
	`CREATE TABLE IF NOT EXISTS toc_entries (
		edition VARCHAR(64) NOT NULL,
		section_pos INT NOT NULL,
		heading VARCHAR(255) NOT NULL,
		entry_pos INT NOT NULL,
		chapter_index VARCHAR(255) NULL,
		title VARCHAR(255) NULL,
		PRIMARY KEY (edition, section_pos, entry_pos)
	)`,
}

// Migrate creates the toc tables when missing.
func Migrate(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

type editionRow struct {
	name      string
	title     string
	isDefault bool
}

// entryRow is one row of toc_entries. A row without an index marks the
// section itself, so sections with no entries survive a round trip.
type entryRow struct {
	edition    string
	sectionPos int
	heading    string
	index      sql.NullString
	title      sql.NullString
}

// LoadMySQL reads the catalog stored by SaveMySQL.
func LoadMySQL(ctx context.Context, db *sql.DB) (*Catalog, error) {
	basePath := toc.DefaultBasePath
	row := db.QueryRowContext(ctx, `SELECT value FROM toc_settings WHERE name = 'base_path'`)
	if err := row.Scan(&basePath); err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("load base path: %w", err)
	}

	editions, err := queryEditions(ctx, db)
	if err != nil {
		return nil, err
	}
	entries, err := queryEntries(ctx, db)
	if err != nil {
		return nil, err
	}
	return assemble(basePath, editions, entries)
}

func queryEditions(ctx context.Context, db *sql.DB) ([]editionRow, error) {
	rows, err := db.QueryContext(ctx, `SELECT name, title, is_default FROM toc_editions ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("query editions: %w", err)
	}
	defer rows.Close()

	var out []editionRow
	for rows.Next() {
		var r editionRow
		if err := rows.Scan(&r.name, &r.title, &r.isDefault); err != nil {
			return nil, fmt.Errorf("scan edition: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("query editions: %w", err)
	}
	return out, nil
}

func queryEntries(ctx context.Context, db *sql.DB) ([]entryRow, error) {
	const query = `SELECT edition, section_pos, heading, chapter_index, title
		FROM toc_entries ORDER BY edition, section_pos, entry_pos`
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query entries: %w", err)
	}
	defer rows.Close()

	var out []entryRow
	for rows.Next() {
		var r entryRow
		if err := rows.Scan(&r.edition, &r.sectionPos, &r.heading, &r.index, &r.title); err != nil {
			return nil, fmt.Errorf("scan entry: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("query entries: %w", err)
	}
	return out, nil
}

// assemble builds a catalog from rows already ordered by section and entry
// position.
func assemble(basePath string, editions []editionRow, entries []entryRow) (*Catalog, error) {
	c := &Catalog{BasePath: basePath}
	pos := make(map[string]int, len(editions))
	for _, e := range editions {
		pos[e.name] = len(c.Editions)
		c.Editions = append(c.Editions, Edition{Name: e.name, Title: e.title})
		if e.isDefault {
			c.DefaultEdition = e.name
		}
	}

	last := make(map[string]int)
	for _, r := range entries {
		ei, ok := pos[r.edition]
		if !ok {
			return nil, fmt.Errorf("entry for unknown edition %q", r.edition)
		}
		e := &c.Editions[ei]
		if n, seen := last[r.edition]; !seen || n != r.sectionPos {
			e.Sections = append(e.Sections, toc.Section{Heading: r.heading})
			last[r.edition] = r.sectionPos
		}
		if !r.index.Valid {
			continue
		}
		s := &e.Sections[len(e.Sections)-1]
		s.Entries = append(s.Entries, toc.ChapterEntry{Index: toc.ChapterIndex(r.index.String), Title: r.title.String})
	}
	return c, nil
}

const (
	insertEdition = `INSERT INTO toc_editions (name, title, position, is_default) VALUES (?, ?, ?, ?)`
	insertEntry   = `INSERT INTO toc_entries (edition, section_pos, heading, entry_pos, chapter_index, title) VALUES (?, ?, ?, ?, ?, ?)`
)

type statement struct {
	query string
	args  []any
}

// SaveMySQL replaces the stored catalog with c in one transaction. The
// catalog must compile.
func SaveMySQL(ctx context.Context, db *sql.DB, c *Catalog) error {
	snap, err := c.Compile()
	if err != nil {
		return err
	}
	if err := Migrate(ctx, db); err != nil {
		return err
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin catalog tx: %w", err)
	}
	defer tx.Rollback()

	stmts := []statement{
		{`DELETE FROM toc_entries`, nil},
		{`DELETE FROM toc_editions`, nil},
		{`REPLACE INTO toc_settings (name, value) VALUES ('base_path', ?)`, []any{c.BasePath}},
	}
	for i, e := range c.Editions {
		stmts = append(stmts, statement{insertEdition, []any{e.Name, e.Title, i, e.Name == snap.DefaultName()}})
		for si, s := range e.Sections {
			stmts = append(stmts, statement{insertEntry, []any{e.Name, si, s.Heading, 0, nil, nil}})
			for ni, en := range s.Entries {
				stmts = append(stmts, statement{insertEntry, []any{e.Name, si, s.Heading, ni + 1, en.Index.String(), en.Title}})
			}
		}
	}

	for _, st := range stmts {
		if _, err := tx.ExecContext(ctx, st.query, st.args...); err != nil {
			return fmt.Errorf("store catalog: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit catalog: %w", err)
	}
	return nil
}
