package store

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"btscan/internal/domain"
)

func TestUpsert(t *testing.T) {
	t.Run("creates record on first event", func(t *testing.T) {
		s := New()

		s.Upsert("AA:BB", domain.TransportBLE, nil)

		rec := s.Get("AA:BB")
		if rec == nil {
			t.Fatal("expected record created")
		}
		if rec.Transport != domain.TransportBLE {
			t.Errorf("expected BLE transport, got %s", rec.Transport)
		}
		if rec.Sightings != 1 {
			t.Errorf("expected creating event counted, got %d sightings", rec.Sightings)
		}
	})

	t.Run("sightings equal processed event count", func(t *testing.T) {
		s := New()

		for i := 0; i < 5; i++ {
			s.Upsert("AA:BB", domain.TransportBLE, nil)
		}

		if got := s.Get("AA:BB").Sightings; got != 5 {
			t.Errorf("expected 5 sightings, got %d", got)
		}
	})

	t.Run("transport fixed at creation", func(t *testing.T) {
		s := New()

		s.Upsert("AA:BB", domain.TransportBLE, nil)
		s.Upsert("AA:BB", domain.TransportClassic, nil)

		if got := s.Get("AA:BB").Transport; got != domain.TransportBLE {
			t.Errorf("expected transport unchanged by later upserts, got %s", got)
		}
	})

	t.Run("mutate runs inside the critical section", func(t *testing.T) {
		s := New()

		s.Upsert("AA:BB", domain.TransportBLE, func(rec *domain.DeviceRecord) {
			rec.ApplyAdvertisement(domain.AdvertisementEvent{LocalName: "X"})
		})

		rec := s.Get("AA:BB")
		if rec.Name == nil || *rec.Name != "X" {
			t.Errorf("expected mutation applied, got %v", rec.Name)
		}
	})

	t.Run("concurrent upserts never lose sightings", func(t *testing.T) {
		s := New()
		const workers = 8
		const perWorker = 50

		var wg sync.WaitGroup
		for w := 0; w < workers; w++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for i := 0; i < perWorker; i++ {
					s.Upsert("AA:BB", domain.TransportBLE, nil)
				}
			}()
		}
		wg.Wait()

		if got := s.Get("AA:BB").Sightings; got != workers*perWorker {
			t.Errorf("expected %d sightings, got %d", workers*perWorker, got)
		}
	})
}

func TestAdopt(t *testing.T) {
	t.Run("preserves fields and sighting count", func(t *testing.T) {
		s := New()
		rec := domain.NewDeviceRecord("11:22", domain.TransportClassic, time.Now())
		rec.Touch(time.Now())
		rec.Touch(time.Now())

		s.Adopt(rec)

		got := s.Get("11:22")
		if got == nil || got.Sightings != 2 {
			t.Fatalf("expected adopted record with 2 sightings, got %+v", got)
		}
	})

	t.Run("existing address is not replaced", func(t *testing.T) {
		s := New()
		s.Upsert("11:22", domain.TransportBLE, nil)

		s.Adopt(domain.NewDeviceRecord("11:22", domain.TransportClassic, time.Now()))

		if got := s.Get("11:22").Transport; got != domain.TransportBLE {
			t.Errorf("expected original record kept, got transport %s", got)
		}
	})
}

func TestRecordsOrder(t *testing.T) {
	t.Run("creation order preserved across updates", func(t *testing.T) {
		s := New()

		s.Upsert("CC:DD", domain.TransportBLE, nil)
		s.Upsert("AA:BB", domain.TransportBLE, nil)
		s.Upsert("CC:DD", domain.TransportBLE, nil) // update must not reorder

		records := s.Records()
		if len(records) != 2 {
			t.Fatalf("expected 2 records, got %d", len(records))
		}
		if records[0].Address != "CC:DD" || records[1].Address != "AA:BB" {
			t.Errorf("expected creation order [CC:DD AA:BB], got [%s %s]",
				records[0].Address, records[1].Address)
		}
	})

	t.Run("rows follow the same order", func(t *testing.T) {
		s := New()
		for i := 0; i < 4; i++ {
			s.Upsert(fmt.Sprintf("addr-%d", i), domain.TransportBLE, nil)
		}

		rows := s.Rows()
		for i, row := range rows {
			if row.Address != fmt.Sprintf("addr-%d", i) {
				t.Errorf("expected row %d to be addr-%d, got %s", i, i, row.Address)
			}
		}
	})

	t.Run("empty store yields empty non-nil rows", func(t *testing.T) {
		s := New()
		if rows := s.Rows(); rows == nil || len(rows) != 0 {
			t.Errorf("expected empty slice, got %v", rows)
		}
	})
}
