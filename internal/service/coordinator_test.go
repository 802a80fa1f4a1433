package service

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"btscan/internal/adapter"
	"btscan/internal/domain"
)

type fakeBLEProvider struct {
	availableErr error
	events       []domain.AdvertisementEvent
}

func (f *fakeBLEProvider) Available() error { return f.availableErr }

func (f *fakeBLEProvider) Start(ctx context.Context, adapterID string, handler adapter.AdvertisementHandler) error {
	for _, ev := range f.events {
		handler(ev)
	}
	return nil
}

func (f *fakeBLEProvider) Stop() error { return nil }

type fakeClassicProvider struct {
	availableErr error
	results      []domain.InquiryResult
	block        chan struct{} // when set, Inquiry waits before returning
}

func (f *fakeClassicProvider) Available() error { return f.availableErr }

func (f *fakeClassicProvider) Inquiry(ctx context.Context, opts adapter.InquiryOptions) ([]domain.InquiryResult, error) {
	if f.block != nil {
		select {
		case <-f.block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return f.results, nil
}

func intp(v int) *int       { return &v }
func strp(v string) *string { return &v }

func TestParseMode(t *testing.T) {
	for _, valid := range []string{"ble", "classic", "both"} {
		if _, err := ParseMode(valid); err != nil {
			t.Errorf("expected %q accepted: %v", valid, err)
		}
	}
	for _, invalid := range []string{"", "BLE", "dual", "all"} {
		if _, err := ParseMode(invalid); err == nil {
			t.Errorf("expected %q rejected", invalid)
		}
	}
}

func TestCoordinatorRun(t *testing.T) {
	t.Run("ble only", func(t *testing.T) {
		ble := &fakeBLEProvider{events: []domain.AdvertisementEvent{
			{Address: "AA:BB", LocalName: "X", RSSI: intp(-50)},
			{Address: "AA:BB", RSSI: intp(-45)},
			{Address: "CC:DD", LocalName: "Y"},
		}}
		classic := &fakeClassicProvider{results: []domain.InquiryResult{{Address: "ZZ:ZZ"}}}
		c := NewCoordinator(ble, classic, zerolog.Nop())

		summary := c.Run(context.Background(), Options{Mode: ModeBLE})

		if summary.BLEDevices != 2 || summary.ClassicDevices != 0 || summary.TotalDevices != 2 {
			t.Errorf("unexpected summary: %+v", summary)
		}
		if len(c.Records()) != 2 {
			t.Errorf("expected classic provider untouched in ble mode")
		}
	})

	t.Run("classic only", func(t *testing.T) {
		ble := &fakeBLEProvider{events: []domain.AdvertisementEvent{{Address: "AA:BB"}}}
		classic := &fakeClassicProvider{results: []domain.InquiryResult{
			{Address: "11:22", Name: strp("Phone")},
			{Address: "33:44"},
		}}
		c := NewCoordinator(ble, classic, zerolog.Nop())

		summary := c.Run(context.Background(), Options{Mode: ModeClassic, Duration: time.Second})

		if summary.BLEDevices != 0 || summary.ClassicDevices != 2 || summary.TotalDevices != 2 {
			t.Errorf("unexpected summary: %+v", summary)
		}
		for _, rec := range c.Records() {
			if rec.Transport != domain.TransportClassic || rec.Sightings != 1 {
				t.Errorf("unexpected record %s: %s/%d", rec.Address, rec.Transport, rec.Sightings)
			}
		}
	})

	t.Run("both mode collision keeps BLE authoritative", func(t *testing.T) {
		ble := &fakeBLEProvider{events: []domain.AdvertisementEvent{
			{Address: "AA:BB", LocalName: "X", RSSI: intp(-50)},
			{Address: "AA:BB", RSSI: intp(-45)},
		}}
		classic := &fakeClassicProvider{results: []domain.InquiryResult{
			{Address: "AA:BB", Name: strp("ClassicName"), DeviceClass: intp(42)},
		}}
		c := NewCoordinator(ble, classic, zerolog.Nop())

		summary := c.Run(context.Background(), Options{Mode: ModeBoth})

		rec := c.Records()[0]
		if rec.Transport != domain.TransportBLE {
			t.Errorf("expected transport to stay BLE, got %s", rec.Transport)
		}
		if rec.DeviceClass == nil || *rec.DeviceClass != 42 {
			t.Errorf("expected absent device_class filled with 42, got %v", rec.DeviceClass)
		}
		if *rec.Name != "X" {
			t.Errorf("expected BLE name kept, got %s", *rec.Name)
		}
		if *rec.RSSI != -45 {
			t.Errorf("expected BLE rssi kept, got %d", *rec.RSSI)
		}
		if rec.Sightings != 3 {
			t.Errorf("expected merge to add one sighting over the 2 BLE events, got %d", rec.Sightings)
		}
		if summary.TotalDevices != 1 {
			t.Errorf("expected one unique device, got %d", summary.TotalDevices)
		}
	})

	t.Run("both mode collision never overwrites present class", func(t *testing.T) {
		ble := &fakeBLEProvider{events: []domain.AdvertisementEvent{{Address: "AA:BB"}}}
		classic := &fakeClassicProvider{results: []domain.InquiryResult{
			{Address: "AA:BB", DeviceClass: intp(99)},
		}}
		c := NewCoordinator(ble, classic, zerolog.Nop())

		// Pre-seed the class through a BLE-side mutation, then merge
		summaryCtx := context.Background()
		c.store.Upsert("AA:BB", domain.TransportBLE, func(rec *domain.DeviceRecord) {
			v := 7
			rec.DeviceClass = &v
		})
		c.Run(summaryCtx, Options{Mode: ModeClassic})

		if got := *c.store.Get("AA:BB").DeviceClass; got != 7 {
			t.Errorf("expected existing class untouched, got %d", got)
		}
	})

	t.Run("classic-unique addresses append after BLE records", func(t *testing.T) {
		ble := &fakeBLEProvider{events: []domain.AdvertisementEvent{
			{Address: "AA:BB"},
		}}
		classic := &fakeClassicProvider{results: []domain.InquiryResult{
			{Address: "11:22", DeviceClass: intp(42)},
		}}
		c := NewCoordinator(ble, classic, zerolog.Nop())

		summary := c.Run(context.Background(), Options{Mode: ModeBoth})

		records := c.Records()
		if len(records) != 2 {
			t.Fatalf("expected 2 records, got %d", len(records))
		}
		if records[0].Address != "AA:BB" || records[1].Address != "11:22" {
			t.Errorf("expected BLE record first, got [%s %s]", records[0].Address, records[1].Address)
		}
		if records[1].Transport != domain.TransportClassic || records[1].Sightings != 1 {
			t.Error("expected classic-unique record inserted unchanged")
		}
		if summary.TotalDevices != 2 {
			t.Errorf("expected 2 unique devices, got %d", summary.TotalDevices)
		}
	})

	t.Run("both capabilities missing yields empty session", func(t *testing.T) {
		ble := &fakeBLEProvider{availableErr: domain.ErrCapabilityUnavailable}
		classic := &fakeClassicProvider{availableErr: domain.ErrCapabilityUnavailable}
		c := NewCoordinator(ble, classic, zerolog.Nop())

		summary := c.Run(context.Background(), Options{Mode: ModeBoth})

		if summary.TotalDevices != 0 || summary.BLEDevices != 0 || summary.ClassicDevices != 0 {
			t.Errorf("expected empty summary, got %+v", summary)
		}
		if rows := c.Rows(); len(rows) != 0 {
			t.Errorf("expected no rows, got %d", len(rows))
		}
	})

	t.Run("interrupt flags summary and keeps records", func(t *testing.T) {
		ble := &fakeBLEProvider{events: []domain.AdvertisementEvent{{Address: "AA:BB"}}}
		classic := &fakeClassicProvider{block: make(chan struct{})}
		c := NewCoordinator(ble, classic, zerolog.Nop())

		ctx, cancel := context.WithCancel(context.Background())
		go func() {
			time.Sleep(20 * time.Millisecond)
			cancel()
		}()

		summary := c.Run(ctx, Options{Mode: ModeBoth, Duration: time.Minute})

		if !summary.Interrupted {
			t.Error("expected summary flagged as interrupted")
		}
		if summary.TotalDevices != 1 {
			t.Errorf("expected BLE partial results kept, got %d", summary.TotalDevices)
		}
	})
}
