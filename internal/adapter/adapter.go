package adapter

import (
	"context"
	"time"

	"btscan/internal/domain"
)

// AdvertisementHandler receives one BLE detection event. Providers may call
// it from any goroutine; the BLE adapter serializes processing behind it.
type AdvertisementHandler func(ev domain.AdvertisementEvent)

// BLEProvider is the capability interface for Low-Energy advertisement
// listening. Implementations bind to a platform Bluetooth stack.
type BLEProvider interface {
	// Available probes whether the backend can scan at all. A non-nil
	// error (wrapping domain.ErrCapabilityUnavailable) means the BLE mode
	// yields an empty result without being treated as fatal.
	Available() error

	// Start begins advertisement listening on the optionally selected
	// adapter and delivers every observation to handler until Stop.
	Start(ctx context.Context, adapterID string, handler AdvertisementHandler) error

	// Stop ends listening. No handler calls may happen after Stop returns.
	Stop() error
}

// InquiryOptions configures one Classic inquiry batch.
type InquiryOptions struct {
	// DurationHint is advisory; providers may approximate or ignore it
	DurationHint time.Duration
	// LookupNames requests remote name resolution where supported
	LookupNames bool
	// LookupClass requests class-of-device capture where supported
	LookupClass bool
	// FlushCache discards previously cached inquiry responses
	FlushCache bool
}

// ClassicProvider is the capability interface for Classic (BR/EDR) inquiry.
type ClassicProvider interface {
	// Available probes whether the backend can run an inquiry at all
	Available() error

	// Inquiry performs one blocking batch discovery and returns the finite
	// result list. Providers that cannot honor a lookup option degrade
	// gracefully: the corresponding tuple fields are uniformly absent.
	// On mid-inquiry failure the partial list gathered so far is returned
	// alongside the error.
	Inquiry(ctx context.Context, opts InquiryOptions) ([]domain.InquiryResult, error)
}
