package dataset

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	_ "modernc.org/sqlite" // Pure-Go SQLite driver.
)

// Catalog is a SQLite registry of imported datasets keyed by checksum. It
// records what data exists and where it came from; it never stores orders
// or trade history.
type Catalog struct {
	db *sql.DB
}

const catalogSchema = `
CREATE TABLE IF NOT EXISTS datasets (
	checksum   TEXT PRIMARY KEY,
	symbol     TEXT NOT NULL,
	timeframe  TEXT NOT NULL,
	rows       INTEGER NOT NULL,
	start_date TEXT NOT NULL,
	end_date   TEXT NOT NULL,
	manifest   TEXT NOT NULL,
	created_at TEXT NOT NULL
);`

// OpenCatalog opens (or creates) the catalog database at dbPath.
func OpenCatalog(dbPath string) (*Catalog, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(catalogSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating catalog schema: %w", err)
	}
	return &Catalog{db: db}, nil
}

// Close closes the underlying database connection.
func (c *Catalog) Close() error {
	return c.db.Close()
}

// Register inserts or replaces the manifest for its dataset checksum.
func (c *Catalog) Register(ctx context.Context, m *Manifest) error {
	blob, err := m.JSON()
	if err != nil {
		return fmt.Errorf("encoding manifest: %w", err)
	}
	_, err = c.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO datasets
			(checksum, symbol, timeframe, rows, start_date, end_date, manifest, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		m.Data.Checksum, m.Symbol, m.Timeframe, m.Data.Rows,
		m.Data.Start.Format("2006-01-02"), m.Data.End.Format("2006-01-02"),
		string(blob), m.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	)
	if err != nil {
		return fmt.Errorf("registering dataset %s: %w", m.Data.Checksum, err)
	}
	return nil
}

// Get retrieves the manifest for a dataset checksum, or nil if the dataset
// has not been registered.
func (c *Catalog) Get(ctx context.Context, checksum string) (*Manifest, error) {
	var blob string
	err := c.db.QueryRowContext(ctx,
		`SELECT manifest FROM datasets WHERE checksum = ?`, checksum).Scan(&blob)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return decodeManifest(blob)
}

// List returns the manifests of all registered datasets ordered by symbol.
func (c *Catalog) List(ctx context.Context) ([]Manifest, error) {
	rows, err := c.db.QueryContext(ctx,
		`SELECT manifest FROM datasets ORDER BY symbol, start_date`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Manifest
	for rows.Next() {
		var blob string
		if err := rows.Scan(&blob); err != nil {
			return nil, err
		}
		m, err := decodeManifest(blob)
		if err != nil {
			return nil, err
		}
		out = append(out, *m)
	}
	return out, rows.Err()
}

func decodeManifest(blob string) (*Manifest, error) {
	var m Manifest
	if err := json.Unmarshal([]byte(blob), &m); err != nil {
		return nil, fmt.Errorf("decoding manifest: %w", err)
	}
	return &m, nil
}
