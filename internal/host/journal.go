package host

import (
	"database/sql"
	"embed"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"

	"github.com/easelterm/easel/internal/protocol"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Journal records every envelope the host observes, one row each, so a
// session outcome can be audited after the canvas is gone.
type Journal struct {
	db *sql.DB
}

// Entry is one journaled envelope.
type Entry struct {
	EnvelopeID string
	Scenario   string
	Kind       string
	Payload    string
	Timestamp  time.Time
}

func OpenJournal(path string) (*Journal, error) {
	dsn := fmt.Sprintf("file:%s?_foreign_keys=on&_busy_timeout=5000", path)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, errors.Wrap(err, "open journal")
	}
	db.SetMaxOpenConns(1) // sqlite
	db.SetConnMaxLifetime(0)
	if err := applyMigrations(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Journal{db: db}, nil
}

func applyMigrations(db *sql.DB) error {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return errors.Wrap(err, "load migrations")
	}
	driver, err := sqlite3.WithInstance(db, &sqlite3.Config{})
	if err != nil {
		return errors.Wrap(err, "migrate driver")
	}
	m, err := migrate.NewWithInstance("iofs", src, "sqlite3", driver)
	if err != nil {
		return errors.Wrap(err, "migrate instance")
	}
	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return errors.Wrap(err, "apply migrations")
	}
	return nil
}

func (j *Journal) Record(envelopeID string, env protocol.Envelope) error {
	_, err := j.db.Exec(
		`INSERT INTO envelopes (envelope_id, scenario, kind, payload, ts) VALUES (?, ?, ?, ?, ?)`,
		envelopeID, env.Scenario, string(env.Kind), string(env.Payload), env.Timestamp.UTC(),
	)
	return errors.Wrap(err, "record envelope")
}

// Scenario returns the journaled envelopes for one scenario in arrival
// order.
func (j *Journal) Scenario(scenario string) ([]Entry, error) {
	rows, err := j.db.Query(
		`SELECT envelope_id, scenario, kind, payload, ts FROM envelopes WHERE scenario = ? ORDER BY id`,
		scenario,
	)
	if err != nil {
		return nil, errors.Wrap(err, "query journal")
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.EnvelopeID, &e.Scenario, &e.Kind, &e.Payload, &e.Timestamp); err != nil {
			return nil, errors.Wrap(err, "scan journal row")
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (j *Journal) Close() error { return j.db.Close() }
