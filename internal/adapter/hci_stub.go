//go:build !linux

package adapter

import (
	"context"
	"fmt"
	"runtime"

	"github.com/rs/zerolog"

	"btscan/internal/domain"
)

// HCIClassicProvider is only implemented on Linux; elsewhere the Classic
// capability probe fails and the mode yields an empty result.
type HCIClassicProvider struct {
	log zerolog.Logger
}

// NewHCIClassicProvider creates the stub provider for non-Linux platforms
func NewHCIClassicProvider(adapterID string, log zerolog.Logger) *HCIClassicProvider {
	return &HCIClassicProvider{log: log}
}

// Available always reports the capability as missing on this platform
func (p *HCIClassicProvider) Available() error {
	return fmt.Errorf("%w: classic inquiry not supported on %s", domain.ErrCapabilityUnavailable, runtime.GOOS)
}

// Inquiry never runs on this platform
func (p *HCIClassicProvider) Inquiry(ctx context.Context, opts InquiryOptions) ([]domain.InquiryResult, error) {
	return nil, p.Available()
}
