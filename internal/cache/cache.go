// Package cache implements a small sqlite-backed key/value store that
// survives across compiler invocations. Its one caller, cmd/arphac, uses
// it as a whole-file resolve-result cache keyed by a hash of the source
// file's content; internal/specialize does not consult it, so
// specializations are not persisted.
//
// Grounded on funvibe/funxy's use of modernc.org/sqlite as its embedded,
// cgo-free persistence layer; generalized from whatever funxy stores there
// into a single fingerprint -> payload table (named `specializations`),
// where a fingerprint is the protowire-encoded byte form of a caller's
// key string plus a schema version (a stable on-disk fingerprint
// independent of Go's string hashing).
package cache

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"google.golang.org/protobuf/encoding/protowire"
)

// Store is a persistent key/value cache of opaque payloads, keyed by a
// fingerprint derived from a caller's key string plus a schema version tag
// (so a resolver version bump invalidates stale entries instead of
// misinterpreting them).
type Store struct {
	db *sql.DB
}

// Open opens (creating if necessary) the sqlite database at path and
// ensures its single table exists.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("cache: opening %s: %w", path, err)
	}
	const schema = `CREATE TABLE IF NOT EXISTS specializations (
		fingerprint BLOB PRIMARY KEY,
		payload     BLOB NOT NULL
	)`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("cache: creating schema: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error { return s.db.Close() }

// Fingerprint encodes key and schemaVersion into the same protobuf wire
// varint+bytes framing the RPC oracle uses for its payloads (spec §12),
// so both persistence paths share one codegen-free encoding idiom rather
// than inventing a second ad hoc format.
func Fingerprint(key string, schemaVersion uint64) []byte {
	var buf []byte
	buf = protowire.AppendTag(buf, 1, protowire.VarintType)
	buf = protowire.AppendVarint(buf, schemaVersion)
	buf = protowire.AppendTag(buf, 2, protowire.BytesType)
	buf = protowire.AppendString(buf, key)
	return buf
}

// Get returns the cached payload for fingerprint, if present.
func (s *Store) Get(fingerprint []byte) ([]byte, bool, error) {
	row := s.db.QueryRow(`SELECT payload FROM specializations WHERE fingerprint = ?`, fingerprint)
	var payload []byte
	if err := row.Scan(&payload); err != nil {
		if err == sql.ErrNoRows {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("cache: get: %w", err)
	}
	return payload, true, nil
}

// Put stores payload under fingerprint, overwriting any existing entry.
func (s *Store) Put(fingerprint, payload []byte) error {
	_, err := s.db.Exec(
		`INSERT INTO specializations (fingerprint, payload) VALUES (?, ?)
		 ON CONFLICT(fingerprint) DO UPDATE SET payload = excluded.payload`,
		fingerprint, payload,
	)
	if err != nil {
		return fmt.Errorf("cache: put: %w", err)
	}
	return nil
}
