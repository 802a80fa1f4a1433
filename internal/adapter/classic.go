package adapter

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"btscan/internal/domain"
	"btscan/internal/store"
)

// ClassicAdapter ingests a one-shot Classic inquiry batch. It writes into a
// fresh store of its own; the coordinator folds that store into the session
// store at the transport boundary.
type ClassicAdapter struct {
	provider ClassicProvider
	log      zerolog.Logger
}

// NewClassicAdapter creates a Classic ingest adapter
func NewClassicAdapter(provider ClassicProvider, log zerolog.Logger) *ClassicAdapter {
	return &ClassicAdapter{
		provider: provider,
		log:      log,
	}
}

// Scan performs one blocking inquiry with the advisory duration hint and
// returns a store holding the batch results. Capability absence and runtime
// failure are non-fatal: the adapter logs and returns whatever partial
// batch the provider produced, possibly empty.
func (a *ClassicAdapter) Scan(ctx context.Context, hint time.Duration) *store.Store {
	out := store.New()

	if err := a.provider.Available(); err != nil {
		a.log.Warn().Err(err).Msg("Classic scan requested but no usable backend; skipping")
		return out
	}

	results, err := a.provider.Inquiry(ctx, InquiryOptions{
		DurationHint: hint,
		LookupNames:  true,
		LookupClass:  true,
		FlushCache:   true,
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		a.log.Error().Err(err).Msg("Classic scan error")
	}

	for _, res := range results {
		a.ingest(out, res)
	}
	return out
}

// ingest performs one per-tuple upsert into the batch store
func (a *ClassicAdapter) ingest(out *store.Store, res domain.InquiryResult) {
	addr := res.Address
	if addr == "" {
		addr = domain.UnknownAddress
	}

	out.Upsert(addr, domain.TransportClassic, func(rec *domain.DeviceRecord) {
		rec.ApplyInquiry(res)
	})

	if e := a.log.Debug(); e.Enabled() {
		rec := out.Get(addr)
		e.Str("transport", "BR/EDR").Str("address", addr)
		if rec.Name != nil {
			e.Str("name", *rec.Name)
		}
		if rec.DeviceClass != nil {
			e.Int("cod", *rec.DeviceClass)
		}
		e.Msg("sighting")
	}
}
