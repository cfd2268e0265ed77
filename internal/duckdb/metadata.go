package duckdb

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"time"
)

// FileFingerprint holds stat-based identity for a file.
type FileFingerprint struct {
	Path    string
	Size    int64
	ModTime time.Time
}

// StatFile creates a FileFingerprint from an on-disk file.
func StatFile(path string) (FileFingerprint, error) {
	info, err := os.Stat(path)
	if err != nil {
		return FileFingerprint{}, err
	}
	return FileFingerprint{
		Path:    path,
		Size:    info.Size(),
		ModTime: info.ModTime(),
	}, nil
}

// Source kinds recorded in the sources table.
const (
	SourceGenes         = "genes"
	SourceEnhancers     = "enhancers"
	SourceTadBoundaries = "tad_boundaries"
)

// SourceUnchanged reports whether the source of kind was last loaded from a
// file with the same size and modification time.
func (s *Store) SourceUnchanged(kind string, fp FileFingerprint) (bool, error) {
	var size int64
	var modTime time.Time
	err := s.db.QueryRow(`SELECT size, mod_time FROM sources WHERE kind = ?`, kind).Scan(&size, &modTime)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("query source %s: %w", kind, err)
	}
	return size == fp.Size && modTime.Equal(fp.ModTime.UTC().Truncate(time.Microsecond)), nil
}

// RecordSource stores the fingerprint of the file a source was loaded from.
func (s *Store) RecordSource(kind string, fp FileFingerprint) error {
	_, err := s.db.Exec(`INSERT OR REPLACE INTO sources VALUES (?, ?, ?, ?, ?)`,
		kind, fp.Path, fp.Size, fp.ModTime.UTC().Truncate(time.Microsecond), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("record source %s: %w", kind, err)
	}
	return nil
}

// Sources returns the fingerprints of all loaded sources keyed by kind.
func (s *Store) Sources() (map[string]FileFingerprint, error) {
	rows, err := s.db.Query(`SELECT kind, path, size, mod_time FROM sources ORDER BY kind`)
	if err != nil {
		return nil, fmt.Errorf("query sources: %w", err)
	}
	defer rows.Close()

	out := make(map[string]FileFingerprint)
	for rows.Next() {
		var kind string
		var fp FileFingerprint
		if err := rows.Scan(&kind, &fp.Path, &fp.Size, &fp.ModTime); err != nil {
			return nil, fmt.Errorf("scan source: %w", err)
		}
		out[kind] = fp
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sources: %w", err)
	}
	return out, nil
}
