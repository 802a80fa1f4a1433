package adapter

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"btscan/internal/domain"
	"btscan/internal/store"
)

// eventQueueSize bounds the advertisement queue between the provider's
// callback context and the single upsert consumer
const eventQueueSize = 256

// BLEAdapter ingests a BLE advertisement stream into the shared record
// store for a bounded time window.
type BLEAdapter struct {
	provider BLEProvider
	store    *store.Store
	log      zerolog.Logger
}

// NewBLEAdapter creates a BLE ingest adapter writing into st
func NewBLEAdapter(provider BLEProvider, st *store.Store, log zerolog.Logger) *BLEAdapter {
	return &BLEAdapter{
		provider: provider,
		store:    st,
		log:      log,
	}
}

// Scan listens for advertisements for exactly duration (explicit start,
// timed wait, explicit stop) and upserts every event into the store. It
// returns the number of distinct devices seen by this window.
//
// An unavailable capability, a failed start and a mid-window failure are all
// non-fatal: the adapter logs the condition and returns whatever it
// accumulated. Cancelling ctx unwinds the window early.
func (a *BLEAdapter) Scan(ctx context.Context, adapterID string, duration time.Duration) (int, error) {
	if err := a.provider.Available(); err != nil {
		a.log.Warn().Err(err).Msg("BLE scan requested but no usable backend; skipping")
		return 0, nil
	}

	windowCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	// The provider pushes events from its own callback context; a single
	// consumer drains them so per-event upserts are serialized.
	events := make(chan domain.AdvertisementEvent, eventQueueSize)
	handler := func(ev domain.AdvertisementEvent) {
		select {
		case events <- ev:
		case <-windowCtx.Done():
		}
	}

	// stopDrain, not close(events): a straggling provider callback must
	// never be left racing a channel close.
	seen := make(map[string]struct{})
	stopDrain := make(chan struct{})
	drained := make(chan struct{})
	go func() {
		defer close(drained)
		for {
			select {
			case ev := <-events:
				a.ingest(ev, seen)
			case <-stopDrain:
				for {
					select {
					case ev := <-events:
						a.ingest(ev, seen)
					default:
						return
					}
				}
			}
		}
	}()

	if err := a.provider.Start(windowCtx, adapterID, handler); err != nil {
		close(stopDrain)
		<-drained
		a.log.Error().Err(err).Msg("BLE scan error")
		return len(seen), nil
	}

	timer := time.NewTimer(duration)
	defer timer.Stop()
	select {
	case <-timer.C:
	case <-ctx.Done():
		a.log.Info().Msg("BLE window interrupted; stopping early")
	}

	if err := a.provider.Stop(); err != nil {
		a.log.Warn().Err(err).Msg("stopping BLE scan")
	}
	cancel()
	close(stopDrain)
	<-drained

	return len(seen), nil
}

// ingest performs one upsert for one advertisement event. Runs only on the
// drain goroutine.
func (a *BLEAdapter) ingest(ev domain.AdvertisementEvent, seen map[string]struct{}) {
	addr := ev.Address
	if addr == "" {
		// Identity-less events are processed under a sentinel rather
		// than dropped.
		addr = domain.UnknownAddress
	}

	a.store.Upsert(addr, domain.TransportBLE, func(rec *domain.DeviceRecord) {
		rec.ApplyAdvertisement(ev)
	})
	seen[addr] = struct{}{}

	if e := a.log.Debug(); e.Enabled() {
		rec := a.store.Get(addr)
		e.Str("transport", "BLE").Str("address", addr)
		if rec.RSSI != nil {
			e.Int("rssi", *rec.RSSI)
		}
		if rec.Name != nil {
			e.Str("name", *rec.Name)
		}
		e.Int("services", len(rec.ServiceUUIDs)).Msg("sighting")
	}
}
