package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"hwharvest/internal"
)

type DB struct {
	conn *sql.DB
}

func Open(path string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	if _, err := conn.Exec(`PRAGMA journal_mode = WAL;`); err != nil {
		_ = conn.Close()
		return nil, err
	}

	db := &DB{conn: conn}
	if err := db.init(); err != nil {
		_ = conn.Close()
		return nil, err
	}

	return db, nil
}

func (d *DB) Close() error {
	return d.conn.Close()
}

func (d *DB) init() error {
	schema := `
CREATE TABLE IF NOT EXISTS runs (
  id TEXT PRIMARY KEY,
  startedAt TEXT NOT NULL,
  finishedAt TEXT,
  urlsJson TEXT NOT NULL,
  countsJson TEXT NOT NULL,
  createdAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS products (
  runId TEXT NOT NULL,
  code TEXT NOT NULL,
  name TEXT NOT NULL,
  baseName TEXT NOT NULL,
  kind TEXT NOT NULL,
  brand TEXT,
  category TEXT,
  price TEXT,
  image TEXT,
  specLinesJson TEXT NOT NULL,
  rawMarkup TEXT,
  attrsJson TEXT NOT NULL,
  fingerprint TEXT NOT NULL,
  position INTEGER NOT NULL,
  createdAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
  PRIMARY KEY(runId, code),
  FOREIGN KEY(runId) REFERENCES runs(id)
);
CREATE INDEX IF NOT EXISTS idx_products_code ON products(code);
CREATE INDEX IF NOT EXISTS idx_products_fingerprint ON products(fingerprint);

CREATE TABLE IF NOT EXISTS metadata (
  key TEXT PRIMARY KEY,
  value TEXT NOT NULL,
  updatedAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`

	_, err := d.conn.Exec(schema)
	return err
}

// InsertRun records or finalizes one harvest run and remembers it as the
// most recent one.
func (d *DB) InsertRun(summary internal.RunSummary) error {
	urlsJSON, _ := json.Marshal(summary.URLs)
	countsJSON, _ := json.Marshal(map[string]int{
		"pages":       summary.Pages,
		"pagesFailed": summary.PagesFailed,
		"listings":    summary.Listings,
		"emitted":     summary.Emitted,
		"duplicates":  summary.Duplicates,
		"skipped":     summary.Skipped,
	})

	var finishedAt *string
	if summary.FinishedAt != "" {
		finishedAt = &summary.FinishedAt
	}

	_, err := d.conn.Exec(`
INSERT INTO runs (id, startedAt, finishedAt, urlsJson, countsJson)
VALUES (?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
  finishedAt=excluded.finishedAt,
  countsJson=excluded.countsJson
`, summary.ID, summary.StartedAt, finishedAt, string(urlsJSON), string(countsJSON))
	if err != nil {
		return err
	}

	return d.SetMetadata("last_run_id", summary.ID)
}

func (d *DB) InsertRunProducts(runID string, records []*internal.ProductRecord) error {
	tx, err := d.conn.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.Prepare(`
INSERT INTO products (
  runId, code, name, baseName, kind, brand, category, price, image,
  specLinesJson, rawMarkup, attrsJson, fingerprint, position
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(runId, code) DO NOTHING
`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, rec := range records {
		linesJSON, _ := json.Marshal(rec.SpecLines)
		attrsJSON, _ := json.Marshal(rec.Attrs)
		if _, err := stmt.Exec(
			runID, rec.Code, rec.Name, rec.BaseName, string(rec.Kind),
			rec.Brand, rec.Category, rec.Price, rec.Image,
			string(linesJSON), rec.RawMarkup, string(attrsJSON), rec.Fingerprint, i+1,
		); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (d *DB) ListRunProducts(runID string) ([]*internal.ProductRecord, error) {
	rows, err := d.conn.Query(`
SELECT code, name, baseName, kind, brand, category, price, image,
       specLinesJson, rawMarkup, attrsJson, fingerprint
FROM products WHERE runId = ? ORDER BY position ASC
`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*internal.ProductRecord
	for rows.Next() {
		rec := &internal.ProductRecord{Attrs: internal.NewAttributeSet()}
		var kind string
		var linesJSON, attrsJSON string
		if err := rows.Scan(
			&rec.Code, &rec.Name, &rec.BaseName, &kind,
			&rec.Brand, &rec.Category, &rec.Price, &rec.Image,
			&linesJSON, &rec.RawMarkup, &attrsJSON, &rec.Fingerprint,
		); err != nil {
			return nil, err
		}
		rec.Kind = internal.ListingKind(kind)
		_ = json.Unmarshal([]byte(linesJSON), &rec.SpecLines)
		_ = json.Unmarshal([]byte(attrsJSON), &rec.Attrs)
		out = append(out, rec)
	}

	return out, rows.Err()
}

func (d *DB) ListRuns(limit int) ([]internal.RunSummary, error) {
	rows, err := d.conn.Query(`
SELECT id, startedAt, finishedAt, urlsJson, countsJson
FROM runs ORDER BY startedAt DESC LIMIT ?
`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []internal.RunSummary
	for rows.Next() {
		var s internal.RunSummary
		var finished sql.NullString
		var urlsJSON, countsJSON string
		if err := rows.Scan(&s.ID, &s.StartedAt, &finished, &urlsJSON, &countsJSON); err != nil {
			return nil, err
		}
		if finished.Valid {
			s.FinishedAt = finished.String
		}
		_ = json.Unmarshal([]byte(urlsJSON), &s.URLs)

		counts := map[string]int{}
		_ = json.Unmarshal([]byte(countsJSON), &counts)
		s.Pages = counts["pages"]
		s.PagesFailed = counts["pagesFailed"]
		s.Listings = counts["listings"]
		s.Emitted = counts["emitted"]
		s.Duplicates = counts["duplicates"]
		s.Skipped = counts["skipped"]

		out = append(out, s)
	}

	return out, rows.Err()
}

func (d *DB) SetMetadata(key, value string) error {
	_, err := d.conn.Exec(`
INSERT INTO metadata (key, value) VALUES (?, ?)
ON CONFLICT(key) DO UPDATE SET value = excluded.value, updatedAt = CURRENT_TIMESTAMP
`, key, value)
	return err
}

func (d *DB) GetMetadata(key string) (*string, error) {
	var value string
	err := d.conn.QueryRow(`SELECT value FROM metadata WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &value, nil
}
