package domain

import "encoding/hex"

// ManufacturerField is one manufacturer-specific data entry from an
// advertisement. Key is the company identifier as reported by the provider;
// it is normalized via ManufacturerKey at ingest time.
type ManufacturerField struct {
	Key  string
	Data []byte
}

// AdvertisementEvent is one BLE advertisement observation as delivered by a
// BLE capability provider. All fields except Address are optional; pointer
// fields distinguish "not supplied by this event" from zero values.
type AdvertisementEvent struct {
	Address string

	// DeviceName is the device-level name, LocalName the advertised one.
	// The record name coalesces from DeviceName first, then LocalName.
	DeviceName string
	LocalName  string

	// RSSI is the advertisement-level signal strength; DeviceRSSI the
	// device-level fallback used when the advertisement carries none.
	RSSI       *int
	DeviceRSSI *int

	TxPower     *int
	Appearance  *int
	Connectable *bool
	AddressType *string

	ServiceUUIDs     []string
	ServiceData      map[string][]byte
	ManufacturerData []ManufacturerField
}

// InquiryResult is one entry of a Classic inquiry batch. Name and
// DeviceClass are absent when the provider does not support the lookup.
type InquiryResult struct {
	Address     string
	Name        *string
	DeviceClass *int
}

// ApplyAdvertisement applies the BLE per-field update table to the record:
//
//   - name: device name, else local name, else keep existing
//   - rssi: advertisement value, else device value, else keep existing
//   - tx_power, appearance, connectable, address_type: last-write-wins
//     whenever the event supplies a value
//   - service_uuids: set union
//   - service_data, manufacturer_data: insert-or-overwrite per key
//
// Sighting accounting is not done here; the store's upsert calls Touch once
// per processed event.
func (r *DeviceRecord) ApplyAdvertisement(ev AdvertisementEvent) {
	switch {
	case ev.DeviceName != "":
		r.SetName(ev.DeviceName)
	case ev.LocalName != "":
		r.SetName(ev.LocalName)
	}

	switch {
	case ev.RSSI != nil:
		v := *ev.RSSI
		r.RSSI = &v
	case ev.DeviceRSSI != nil:
		v := *ev.DeviceRSSI
		r.RSSI = &v
	}

	if ev.TxPower != nil {
		v := *ev.TxPower
		r.TxPower = &v
	}
	if ev.Appearance != nil {
		v := *ev.Appearance
		r.Appearance = &v
	}
	if ev.Connectable != nil {
		v := *ev.Connectable
		r.Connectable = &v
	}
	if ev.AddressType != nil {
		v := *ev.AddressType
		r.AddressType = &v
	}

	r.AddServiceUUIDs(ev.ServiceUUIDs)

	for uuid, payload := range ev.ServiceData {
		r.ServiceData[uuid] = hex.EncodeToString(payload)
	}
	for _, field := range ev.ManufacturerData {
		r.ManufacturerData[ManufacturerKey(field.Key)] = hex.EncodeToString(field.Data)
	}
}

// ApplyInquiry applies the Classic per-tuple update table to the record:
// the name is set only when currently absent, the class of device is
// overwritten whenever the inquiry supplies one.
func (r *DeviceRecord) ApplyInquiry(res InquiryResult) {
	if res.Name != nil {
		r.CoalesceName(*res.Name)
	}
	if res.DeviceClass != nil {
		v := *res.DeviceClass
		r.DeviceClass = &v
	}
}
