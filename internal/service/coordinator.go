package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"btscan/internal/adapter"
	"btscan/internal/domain"
	"btscan/internal/store"
)

// Mode selects which transports a discovery session scans
type Mode string

const (
	// ModeBLE - Low-Energy advertisement scanning only
	ModeBLE Mode = "ble"
	// ModeClassic - Classic inquiry only
	ModeClassic Mode = "classic"
	// ModeBoth - both transports, merged at the transport boundary
	ModeBoth Mode = "both"
)

// ParseMode validates a mode string from the CLI or config file
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeBLE, ModeClassic, ModeBoth:
		return Mode(s), nil
	default:
		return "", fmt.Errorf("invalid mode %q (want ble, classic or both)", s)
	}
}

// IncludesBLE reports whether the mode runs the BLE adapter
func (m Mode) IncludesBLE() bool {
	return m == ModeBLE || m == ModeBoth
}

// IncludesClassic reports whether the mode runs the Classic adapter
func (m Mode) IncludesClassic() bool {
	return m == ModeClassic || m == ModeBoth
}

// Options configures one discovery session
type Options struct {
	Mode Mode
	// Duration bounds the BLE window exactly and hints the Classic inquiry
	Duration time.Duration
	// AdapterID optionally selects the hardware interface (e.g. "hci0")
	AdapterID string
}

// Summary aggregates per-mode device counts for reporting
type Summary struct {
	BLEDevices     int
	ClassicDevices int
	TotalDevices   int
	// Interrupted is set when the session was unwound early; the records
	// gathered so far are still valid and serialized
	Interrupted bool
}

// Coordinator owns the shared record store and runs the ingest adapters
type Coordinator struct {
	store   *store.Store
	ble     *adapter.BLEAdapter
	classic *adapter.ClassicAdapter
	log     zerolog.Logger
}

// NewCoordinator wires the adapters for the given capability providers
// around a fresh session store
func NewCoordinator(bleProvider adapter.BLEProvider, classicProvider adapter.ClassicProvider, log zerolog.Logger) *Coordinator {
	st := store.New()
	return &Coordinator{
		store:   st,
		ble:     adapter.NewBLEAdapter(bleProvider, st, log),
		classic: adapter.NewClassicAdapter(classicProvider, log),
		log:     log,
	}
}

// Run executes the requested scan phases and reconciles their results.
//
// The Classic inquiry runs on its own goroutine so its blocking batch call
// never stalls the BLE timed window; its result is joined after the BLE
// phase completes and folded into the store by the merge reconciler,
// exactly once. Cancelling ctx unwinds the active windows early; whatever
// records exist are kept.
func (c *Coordinator) Run(ctx context.Context, opts Options) Summary {
	var summary Summary

	var classicCh chan *store.Store
	if opts.Mode.IncludesClassic() {
		classicCh = make(chan *store.Store, 1)
		go func() {
			c.log.Info().Msg("starting Classic inquiry scan")
			classicCh <- c.classic.Scan(ctx, opts.Duration)
		}()
	}

	if opts.Mode.IncludesBLE() {
		c.log.Info().Dur("window", opts.Duration).Msg("starting BLE scan")
		count, err := c.ble.Scan(ctx, opts.AdapterID, opts.Duration)
		if err != nil {
			c.log.Error().Err(err).Msg("BLE scan failed")
		}
		summary.BLEDevices = count
		c.log.Info().Int("devices", count).Msg("BLE scan complete")
	}

	if classicCh != nil {
		batch := <-classicCh
		summary.ClassicDevices = batch.Len()
		c.reconcileInquiry(batch)
		c.log.Info().Int("devices", batch.Len()).Msg("Classic scan complete")
	}

	summary.TotalDevices = c.store.Len()
	summary.Interrupted = ctx.Err() != nil
	return summary
}

// Records hands out the final record set in first-creation order. Read-only
// by convention: call it only after Run has returned.
func (c *Coordinator) Records() []*domain.DeviceRecord {
	return c.store.Records()
}

// Rows renders the final record set as serializable rows
func (c *Coordinator) Rows() []domain.Row {
	return c.store.Rows()
}
