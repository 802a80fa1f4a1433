// Package sqlite implements the optional append-only session log.
//
// The log is a write-only output sink: each completed discovery session
// appends one sessions row plus one sightings row per device record,
// transactionally. Nothing is ever read back into a later session, so
// device identity never survives an invocation.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"btscan/internal/domain"
)

// SessionLog appends completed discovery sessions to a SQLite database
type SessionLog struct {
	db *sql.DB
}

// Open opens (creating if needed) the session log at path and migrates its
// schema. WAL mode keeps concurrent readers out of the writer's way.
func Open(path string) (*SessionLog, error) {
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open session log: %w", err)
	}

	log := &SessionLog{db: db}
	if err := log.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate session log: %w", err)
	}
	return log, nil
}

func (l *SessionLog) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS sessions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		started_at TEXT NOT NULL,
		mode TEXT NOT NULL,
		device_count INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS sightings (
		session_id INTEGER NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
		address TEXT NOT NULL,
		transport TEXT NOT NULL,
		name TEXT,
		rssi INTEGER,
		tx_power INTEGER,
		appearance INTEGER,
		connectable INTEGER,
		address_type TEXT,
		device_class INTEGER,
		service_uuids JSON,
		service_data JSON,
		manufacturer_data JSON,
		first_seen TEXT NOT NULL,
		last_seen TEXT NOT NULL,
		sightings INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_sightings_session ON sightings(session_id);
	CREATE INDEX IF NOT EXISTS idx_sightings_address ON sightings(address);
	`

	_, err := l.db.Exec(schema)
	return err
}

// Append records one completed session and its device rows in a single
// transaction
func (l *SessionLog) Append(ctx context.Context, startedAt time.Time, mode string, rows []domain.Row) error {
	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin session append: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO sessions (started_at, mode, device_count) VALUES (?, ?, ?)`,
		startedAt.UTC().Format(time.RFC3339Nano), mode, len(rows))
	if err != nil {
		return fmt.Errorf("insert session: %w", err)
	}
	sessionID, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("session id: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO sightings (
			session_id, address, transport, name, rssi, tx_power,
			appearance, connectable, address_type, device_class,
			service_uuids, service_data, manufacturer_data,
			first_seen, last_seen, sightings
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare sighting insert: %w", err)
	}
	defer stmt.Close()

	for _, row := range rows {
		uuids, err := jsonColumn(row.ServiceUUIDs == nil, row.ServiceUUIDs)
		if err != nil {
			return fmt.Errorf("encode service_uuids for %s: %w", row.Address, err)
		}
		serviceData, err := jsonColumn(row.ServiceData == nil, row.ServiceData)
		if err != nil {
			return fmt.Errorf("encode service_data for %s: %w", row.Address, err)
		}
		manufacturerData, err := jsonColumn(row.ManufacturerData == nil, row.ManufacturerData)
		if err != nil {
			return fmt.Errorf("encode manufacturer_data for %s: %w", row.Address, err)
		}

		if _, err := stmt.ExecContext(ctx,
			sessionID, row.Address, string(row.Transport), row.Name, row.RSSI,
			row.TxPower, row.Appearance, row.Connectable, row.AddressType,
			row.DeviceClass, uuids, serviceData, manufacturerData,
			row.FirstSeen, row.LastSeen, row.Sightings,
		); err != nil {
			return fmt.Errorf("insert sighting for %s: %w", row.Address, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit session append: %w", err)
	}
	return nil
}

// Close closes the underlying database
func (l *SessionLog) Close() error {
	return l.db.Close()
}

// jsonColumn encodes a composite value for storage, keeping absence as NULL
func jsonColumn(absent bool, v any) (any, error) {
	if absent {
		return nil, nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}
