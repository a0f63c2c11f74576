package store

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/vitals-badge/go-host/internal/vitals"
)

// #region schema
const schema = `
CREATE TABLE IF NOT EXISTS page_vitals (
	url_key     TEXT PRIMARY KEY,
	url         TEXT NOT NULL,
	lcp         REAL NOT NULL,
	fid         REAL NOT NULL,
	cls         REAL NOT NULL,
	verdict     TEXT NOT NULL,
	updated_at  TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS background_tabs (
	tab_id      TEXT PRIMARY KEY,
	background  INTEGER NOT NULL,
	updated_at  TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS badge_log (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	event_id    TEXT NOT NULL,
	tab_id      INTEGER NOT NULL,
	url_key     TEXT,
	url         TEXT,
	verdict     TEXT NOT NULL,
	lcp         REAL NOT NULL,
	fid         REAL NOT NULL,
	cls         REAL NOT NULL,
	created_at  TEXT NOT NULL
);
`

// #endregion schema

// #region store-struct
// Store persists page vitals and tab flags in SQLite.
type Store struct {
	db *sql.DB
}

// #endregion store-struct

// #region constructor
// NewStore opens a SQLite database and runs migrations.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return nil, fmt.Errorf("pragma: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &Store{db: db}, nil
}

// #endregion constructor

// #region close
// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// #endregion close

// #region db-accessor
// DB returns the underlying *sql.DB for use by other packages (e.g. logging).
func (s *Store) DB() *sql.DB {
	return s.db
}

// #endregion db-accessor

// #region save-page-vitals
// SavePageVitals upserts the latest readings for a URL key. Later
// measurements for the same key overwrite earlier ones.
func (s *Store) SavePageVitals(key, url string, rep vitals.Report) error {
	_, err := s.db.Exec(
		`INSERT INTO page_vitals (url_key, url, lcp, fid, cls, verdict, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(url_key) DO UPDATE SET
		   url = excluded.url, lcp = excluded.lcp, fid = excluded.fid,
		   cls = excluded.cls, verdict = excluded.verdict, updated_at = excluded.updated_at`,
		key, url, rep.LCP, rep.FID, rep.CLS, string(rep.Verdict),
		time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("save page vitals: %w", err)
	}
	return nil
}

// #endregion save-page-vitals

// #region get-page-vitals
// GetPageVitals reads the stored readings for a URL key.
func (s *Store) GetPageVitals(key string) (PageVitals, error) {
	var pv PageVitals
	var verdict string
	var updatedStr string

	err := s.db.QueryRow(
		`SELECT url_key, url, lcp, fid, cls, verdict, updated_at
		 FROM page_vitals WHERE url_key = ?`, key,
	).Scan(&pv.Key, &pv.URL, &pv.LCP, &pv.FID, &pv.CLS, &verdict, &updatedStr)
	if err != nil {
		return PageVitals{}, fmt.Errorf("get page vitals %q: %w", key, err)
	}

	pv.Verdict = vitals.Verdict(verdict)
	pv.UpdatedAt, _ = time.Parse(time.RFC3339Nano, updatedStr)
	return pv, nil
}

// #endregion get-page-vitals

// #region list-page-vitals
// ListPageVitals returns the most recently updated entries.
func (s *Store) ListPageVitals(limit int) ([]PageVitals, error) {
	rows, err := s.db.Query(
		`SELECT url_key, url, lcp, fid, cls, verdict, updated_at
		 FROM page_vitals ORDER BY updated_at DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list page vitals: %w", err)
	}
	defer rows.Close()

	var out []PageVitals
	for rows.Next() {
		var pv PageVitals
		var verdict string
		var updatedStr string
		if err := rows.Scan(&pv.Key, &pv.URL, &pv.LCP, &pv.FID, &pv.CLS, &verdict, &updatedStr); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		pv.Verdict = vitals.Verdict(verdict)
		pv.UpdatedAt, _ = time.Parse(time.RFC3339Nano, updatedStr)
		out = append(out, pv)
	}
	return out, rows.Err()
}

// #endregion list-page-vitals

// #region background-tabs
// SetBackgroundTab records whether a tab was loaded in the background.
// Written on every navigation event; read only by inspection tooling.
func (s *Store) SetBackgroundTab(tabID string, background bool) error {
	bg := 0
	if background {
		bg = 1
	}
	_, err := s.db.Exec(
		`INSERT INTO background_tabs (tab_id, background, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(tab_id) DO UPDATE SET
		   background = excluded.background, updated_at = excluded.updated_at`,
		tabID, bg, time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("set background tab: %w", err)
	}
	return nil
}

// GetBackgroundTab reads a tab's background flag.
func (s *Store) GetBackgroundTab(tabID string) (bool, error) {
	var bg int
	err := s.db.QueryRow(
		`SELECT background FROM background_tabs WHERE tab_id = ?`, tabID,
	).Scan(&bg)
	if err != nil {
		return false, fmt.Errorf("get background tab %s: %w", tabID, err)
	}
	return bg != 0, nil
}

// ListBackgroundTabs returns all recorded tab flags.
func (s *Store) ListBackgroundTabs() (map[string]bool, error) {
	rows, err := s.db.Query(`SELECT tab_id, background FROM background_tabs`)
	if err != nil {
		return nil, fmt.Errorf("list background tabs: %w", err)
	}
	defer rows.Close()

	out := make(map[string]bool)
	for rows.Next() {
		var id string
		var bg int
		if err := rows.Scan(&id, &bg); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		out[id] = bg != 0
	}
	return out, rows.Err()
}

// #endregion background-tabs
