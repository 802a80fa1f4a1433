package sqlite

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"btscan/internal/domain"
	"btscan/internal/store"
)

func intp(v int) *int { return &v }

func openTestLog(t *testing.T) (*SessionLog, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "btscan.db")
	log, err := Open(path)
	if err != nil {
		t.Fatalf("open session log: %v", err)
	}
	t.Cleanup(func() { log.Close() })
	return log, path
}

func TestAppend(t *testing.T) {
	ctx := context.Background()

	t.Run("persists session and sighting rows", func(t *testing.T) {
		log, path := openTestLog(t)

		s := store.New()
		s.Upsert("AA:BB", domain.TransportBLE, func(rec *domain.DeviceRecord) {
			rec.ApplyAdvertisement(domain.AdvertisementEvent{
				LocalName:    "X",
				RSSI:         intp(-50),
				ServiceUUIDs: []string{"a-uuid"},
			})
		})
		s.Upsert("11:22", domain.TransportClassic, nil)

		started := time.Now().UTC()
		if err := log.Append(ctx, started, "both", s.Rows()); err != nil {
			t.Fatalf("append failed: %v", err)
		}

		db, err := sql.Open("sqlite", path)
		if err != nil {
			t.Fatalf("reopen db: %v", err)
		}
		defer db.Close()

		var sessions, sightings int
		if err := db.QueryRow(`SELECT COUNT(*) FROM sessions`).Scan(&sessions); err != nil {
			t.Fatalf("count sessions: %v", err)
		}
		if err := db.QueryRow(`SELECT COUNT(*) FROM sightings`).Scan(&sightings); err != nil {
			t.Fatalf("count sightings: %v", err)
		}
		if sessions != 1 || sightings != 2 {
			t.Errorf("expected 1 session with 2 sightings, got %d/%d", sessions, sightings)
		}

		var name sql.NullString
		var rssi sql.NullInt64
		var uuids sql.NullString
		err = db.QueryRow(
			`SELECT name, rssi, service_uuids FROM sightings WHERE address = ?`, "AA:BB",
		).Scan(&name, &rssi, &uuids)
		if err != nil {
			t.Fatalf("query sighting: %v", err)
		}
		if !name.Valid || name.String != "X" || !rssi.Valid || rssi.Int64 != -50 {
			t.Errorf("unexpected scalar columns: %+v %+v", name, rssi)
		}
		if !uuids.Valid || uuids.String != `["a-uuid"]` {
			t.Errorf("unexpected service_uuids column: %+v", uuids)
		}
	})

	t.Run("absent fields stored as NULL", func(t *testing.T) {
		log, path := openTestLog(t)

		s := store.New()
		s.Upsert("33:44", domain.TransportClassic, nil)

		if err := log.Append(ctx, time.Now(), "classic", s.Rows()); err != nil {
			t.Fatalf("append failed: %v", err)
		}

		db, err := sql.Open("sqlite", path)
		if err != nil {
			t.Fatalf("reopen db: %v", err)
		}
		defer db.Close()

		var nulls int
		err = db.QueryRow(`
			SELECT COUNT(*) FROM sightings
			WHERE address = ? AND name IS NULL AND device_class IS NULL
			  AND service_uuids IS NULL AND manufacturer_data IS NULL`, "33:44",
		).Scan(&nulls)
		if err != nil {
			t.Fatalf("query: %v", err)
		}
		if nulls != 1 {
			t.Error("expected absent fields stored as NULL")
		}
	})

	t.Run("empty session still records the run", func(t *testing.T) {
		log, path := openTestLog(t)

		if err := log.Append(ctx, time.Now(), "ble", nil); err != nil {
			t.Fatalf("append failed: %v", err)
		}

		db, err := sql.Open("sqlite", path)
		if err != nil {
			t.Fatalf("reopen db: %v", err)
		}
		defer db.Close()

		var count int
		if err := db.QueryRow(`SELECT device_count FROM sessions`).Scan(&count); err != nil {
			t.Fatalf("query session: %v", err)
		}
		if count != 0 {
			t.Errorf("expected device_count 0, got %d", count)
		}
	})
}
