package catalog

import (
	"context"
	"database/sql"
)

// FileSource reads the catalog from a YAML file on every load.
type FileSource struct {
	Path string
}

func (s FileSource) Load(context.Context) (*Catalog, error) { return LoadFile(s.Path) }

func (s FileSource) String() string { return "file " + s.Path }

// EmbeddedSource serves the catalog bundled with the binary.
type EmbeddedSource struct{}

func (EmbeddedSource) Load(context.Context) (*Catalog, error) { return Default() }

func (EmbeddedSource) String() string { return "embedded catalog" }

// MySQLSource reads the catalog from the toc tables.
type MySQLSource struct {
	DB *sql.DB
}

func (s MySQLSource) Load(ctx context.Context) (*Catalog, error) { return LoadMySQL(ctx, s.DB) }

func (s MySQLSource) String() string { return "mysql" }
