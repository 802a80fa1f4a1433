// Package domain defines the core domain types for the btscan Bluetooth discovery tool.
//
// This package contains the fundamental entities and value objects shared by
// the ingest adapters, the discovery coordinator and the output codecs.
//
// # Core Types
//
// DeviceRecord represents one physical device observed during a discovery
// session, keyed by its reported address. A record is created on the first
// detection event for an address and mutated in place by every later event,
// accumulating optional advertisement fields, service UUIDs and payload maps.
//
// AdvertisementEvent carries one BLE advertisement observation with its
// optional identity and payload fields.
//
// InquiryResult carries one entry of a Classic inquiry batch: address plus
// optional name and class of device.
//
// # Update Rules
//
// Field updates follow an explicit per-field merge table rather than ad hoc
// fallbacks: names coalesce (keep existing unless the event supplies one),
// signal and payload fields are last-write-wins, and service UUIDs grow as a
// set union and never shrink. ApplyAdvertisement and ApplyInquiry implement
// the per-transport tables; FillDeviceClass implements the cross-transport
// merge where BLE-sourced fields stay authoritative.
//
// # Serialization View
//
// Row is the fixed-order, schema-stable flat view of a record used by every
// output format. Empty collections are rendered as explicit nulls and
// service UUIDs are emitted sorted and de-duplicated, so the output schema
// stays stable regardless of which optional fields a transport supplied.
//
// # Design Principles
//
// - No infrastructure dependencies, pure domain logic
// - Optional scalar fields are pointers, absence is meaningful
// - Update rules are deterministic functions of (record, event)
package domain
