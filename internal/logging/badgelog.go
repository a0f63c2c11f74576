package logging

import (
	"database/sql"
	"fmt"
	"time"
)

// #region log-measurement
// LogMeasurement appends an intake provenance row to the badge_log table.
func LogMeasurement(db *sql.DB, entry BadgeLogEntry) error {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	_, err := db.Exec(
		`INSERT INTO badge_log (event_id, tab_id, url_key, url, verdict, lcp, fid, cls, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.EventID,
		entry.TabID,
		nullIfEmpty(entry.URLKey),
		nullIfEmpty(entry.URL),
		entry.Verdict,
		entry.LCP,
		entry.FID,
		entry.CLS,
		entry.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("log measurement: %w", err)
	}
	return nil
}

// #endregion log-measurement

// #region list-recent
// ListRecent returns the newest badge_log rows, most recent first.
func ListRecent(db *sql.DB, limit int) ([]BadgeLogEntry, error) {
	rows, err := db.Query(
		`SELECT event_id, tab_id, url_key, url, verdict, lcp, fid, cls, created_at
		 FROM badge_log ORDER BY id DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list badge log: %w", err)
	}
	defer rows.Close()

	var out []BadgeLogEntry
	for rows.Next() {
		var e BadgeLogEntry
		var urlKey, url sql.NullString
		var createdStr string
		if err := rows.Scan(&e.EventID, &e.TabID, &urlKey, &url, &e.Verdict, &e.LCP, &e.FID, &e.CLS, &createdStr); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		if urlKey.Valid {
			e.URLKey = urlKey.String
		}
		if url.Valid {
			e.URL = url.String
		}
		e.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdStr)
		out = append(out, e)
	}
	return out, rows.Err()
}

// #endregion list-recent

// #region helpers
func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

// #endregion helpers
