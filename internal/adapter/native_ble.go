package adapter

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"tinygo.org/x/bluetooth"

	"btscan/internal/domain"
)

// NativeBLEProvider binds advertisement listening to the platform Bluetooth
// stack (BlueZ on Linux, CoreBluetooth on macOS, WinRT on Windows) via
// tinygo.org/x/bluetooth.
type NativeBLEProvider struct {
	adapter    *bluetooth.Adapter
	log        zerolog.Logger
	enableOnce sync.Once
	enableErr  error

	mu       sync.Mutex
	scanning bool
	scanDone chan struct{}
}

// NewNativeBLEProvider creates a provider bound to the default adapter
func NewNativeBLEProvider(log zerolog.Logger) *NativeBLEProvider {
	return &NativeBLEProvider{
		adapter: bluetooth.DefaultAdapter,
		log:     log,
	}
}

// Available enables the adapter once and reports whether scanning is
// possible on this host
func (p *NativeBLEProvider) Available() error {
	p.enableOnce.Do(func() {
		if err := p.adapter.Enable(); err != nil {
			p.enableErr = fmt.Errorf("%w: enable BLE adapter: %v", domain.ErrCapabilityUnavailable, err)
		}
	})
	return p.enableErr
}

// Start begins advertisement listening. The underlying Scan call blocks
// until StopScan, so it runs on its own goroutine; scan failures after a
// successful start are logged and end the stream early (partial results are
// the adapter's to keep).
func (p *NativeBLEProvider) Start(ctx context.Context, adapterID string, handler AdvertisementHandler) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.scanning {
		return fmt.Errorf("BLE scan already in progress")
	}
	if adapterID != "" {
		// The portable backend only exposes the default adapter
		p.log.Debug().Str("adapter", adapterID).Msg("adapter selector not supported by this backend; using default")
	}

	done := make(chan struct{})
	p.scanDone = done
	p.scanning = true

	go func() {
		defer close(done)
		err := p.adapter.Scan(func(_ *bluetooth.Adapter, result bluetooth.ScanResult) {
			handler(convertScanResult(result))
		})
		if err != nil {
			p.log.Error().Err(err).Msg("BLE scan stream ended")
		}
	}()

	return nil
}

// Stop ends the listening window and waits for the scan goroutine to drain
func (p *NativeBLEProvider) Stop() error {
	p.mu.Lock()
	if !p.scanning {
		p.mu.Unlock()
		return nil
	}
	done := p.scanDone
	p.scanning = false
	p.mu.Unlock()

	err := p.adapter.StopScan()

	// Bounded wait in case the platform stack misbehaves on stop
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		p.log.Warn().Msg("timed out waiting for BLE scan stream to stop")
	}
	return err
}

// convertScanResult maps a platform scan result onto the transport-neutral
// advertisement event. Platforms that hand over the raw advertising payload
// additionally get it parsed for fields the stack does not surface itself
// (tx power, appearance, flags, UUID lists).
func convertScanResult(result bluetooth.ScanResult) domain.AdvertisementEvent {
	rssi := int(result.RSSI)
	ev := domain.AdvertisementEvent{
		Address:   result.Address.String(),
		LocalName: result.LocalName(),
		RSSI:      &rssi,
	}

	for _, el := range result.ManufacturerData() {
		ev.ManufacturerData = append(ev.ManufacturerData, domain.ManufacturerField{
			Key:  strconv.Itoa(int(el.CompanyID)),
			Data: append([]byte(nil), el.Data...),
		})
	}
	for _, el := range result.ServiceData() {
		if ev.ServiceData == nil {
			ev.ServiceData = make(map[string][]byte)
		}
		uuid := el.UUID.String()
		ev.ServiceData[uuid] = append([]byte(nil), el.Data...)
		ev.ServiceUUIDs = append(ev.ServiceUUIDs, uuid)
	}

	if raw := result.Bytes(); len(raw) > 0 {
		fields := parseAdvPayload(raw)
		if ev.LocalName == "" {
			ev.LocalName = fields.localName
		}
		ev.TxPower = fields.txPower
		ev.Appearance = fields.appearance
		ev.Connectable = fields.connectable
		ev.ServiceUUIDs = append(ev.ServiceUUIDs, fields.serviceUUIDs...)
		for uuid, payload := range fields.serviceData {
			if ev.ServiceData == nil {
				ev.ServiceData = make(map[string][]byte)
			}
			if _, ok := ev.ServiceData[uuid]; !ok {
				ev.ServiceData[uuid] = payload
			}
		}
		for _, field := range fields.manufacturer {
			ev.ManufacturerData = append(ev.ManufacturerData, field)
		}
	}

	return ev
}
