// Package adapter implements the transport ingest adapters for btscan.
//
// Adapters convert the output of a radio-layer capability provider into
// upserts against a shared record store. Two adapters exist, one per
// transport, reflecting the two shapes of Bluetooth discovery:
//
// BLEAdapter ingests an event-driven advertisement stream for a bounded
// time window. The provider pushes detection events into a buffered queue;
// a single consumer drains it and performs serialized upserts, so no two
// events can race on the same record. The window is precisely bounded by an
// explicit start, a timed wait, and an explicit stop.
//
// ClassicAdapter performs one blocking batch inquiry and upserts the
// returned (address, name, class) tuples into a fresh store. The inquiry
// duration is advisory only; the provider controls the real window.
//
// # Capability Providers
//
// BLEProvider and ClassicProvider are the interfaces the radio layer plugs
// into. Each exposes an Available probe so a missing backend is a checked
// condition rather than a runtime surprise: an unavailable capability is
// logged, the affected mode yields an empty result, and the session
// continues with the other mode.
//
// Real providers live in this package behind build tags: the BLE provider
// binds to the platform Bluetooth stack via tinygo.org/x/bluetooth, and the
// Classic provider issues a raw HCI inquiry ioctl on Linux.
package adapter
