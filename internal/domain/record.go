package domain

import (
	"sort"
	"strconv"
	"time"
)

// Transport identifies which radio transport first observed a device
type Transport string

const (
	// TransportBLE - record created from a Low-Energy advertisement
	TransportBLE Transport = "BLE"
	// TransportClassic - record created from a Classic inquiry response
	TransportClassic Transport = "Classic"
)

// UnknownAddress is the sentinel used when a detection event carries no
// usable device identifier. The event is still processed rather than dropped.
const UnknownAddress = "UNKNOWN"

// DeviceRecord represents one device observed during a discovery session.
//
// The address is the unique key within a session and is stored exactly as the
// transport reported it (no case or format normalization). Transport is set
// at creation and never changed by later merges, even when the same address
// is later seen over the other transport.
type DeviceRecord struct {
	Address   string
	Transport Transport

	Name        *string
	RSSI        *int
	TxPower     *int
	Appearance  *int
	Connectable *bool
	AddressType *string
	DeviceClass *int

	// ServiceUUIDs grows as a set union over all events and never shrinks
	ServiceUUIDs map[string]struct{}
	// ServiceData maps service UUID to hex-encoded payload, overwrite per key
	ServiceData map[string]string
	// ManufacturerData maps company ID (decimal string when parseable,
	// opaque key otherwise) to hex-encoded payload, overwrite per key
	ManufacturerData map[string]string

	FirstSeen time.Time
	LastSeen  time.Time
	Sightings int
}

// NewDeviceRecord creates a record for an address first seen at now.
// Sightings starts at zero; the caller registers the creating event via Touch.
func NewDeviceRecord(address string, transport Transport, now time.Time) *DeviceRecord {
	now = now.UTC()
	return &DeviceRecord{
		Address:          address,
		Transport:        transport,
		ServiceUUIDs:     make(map[string]struct{}),
		ServiceData:      make(map[string]string),
		ManufacturerData: make(map[string]string),
		FirstSeen:        now,
		LastSeen:         now,
	}
}

// Touch registers one processed detection event: refreshes LastSeen and
// increments the sighting counter. Called exactly once per event.
func (r *DeviceRecord) Touch(now time.Time) {
	r.LastSeen = now.UTC()
	r.Sightings++
}

// SetName overwrites the name unconditionally
func (r *DeviceRecord) SetName(name string) {
	r.Name = &name
}

// CoalesceName sets the name only when one is not already present
func (r *DeviceRecord) CoalesceName(name string) {
	if name != "" && r.Name == nil {
		r.Name = &name
	}
}

// FillDeviceClass sets the class of device only when currently absent.
// This is the single Classic-sourced field allowed to land on a BLE record.
func (r *DeviceRecord) FillDeviceClass(class *int) {
	if r.DeviceClass == nil && class != nil {
		v := *class
		r.DeviceClass = &v
	}
}

// AddServiceUUIDs unions the given identifiers into the record's set
func (r *DeviceRecord) AddServiceUUIDs(uuids []string) {
	for _, u := range uuids {
		r.ServiceUUIDs[u] = struct{}{}
	}
}

// SortedServiceUUIDs returns the UUID set as an ascending-sorted slice,
// or nil when the set is empty
func (r *DeviceRecord) SortedServiceUUIDs() []string {
	if len(r.ServiceUUIDs) == 0 {
		return nil
	}
	uuids := make([]string, 0, len(r.ServiceUUIDs))
	for u := range r.ServiceUUIDs {
		uuids = append(uuids, u)
	}
	sort.Strings(uuids)
	return uuids
}

// ManufacturerKey normalizes a manufacturer-data key: numeric company
// identifiers are rendered in canonical decimal form, anything unparseable
// is kept as given so the entry is never dropped.
func ManufacturerKey(raw string) string {
	if id, err := strconv.Atoi(raw); err == nil {
		return strconv.Itoa(id)
	}
	return raw
}

// Row is the flat, fixed-order serializable view of a DeviceRecord. Every
// output format renders these fifteen fields in exactly this order.
type Row struct {
	Address          string            `json:"address"`
	Transport        Transport         `json:"transport"`
	Name             *string           `json:"name"`
	RSSI             *int              `json:"rssi"`
	TxPower          *int              `json:"tx_power"`
	Appearance       *int              `json:"appearance"`
	Connectable      *bool             `json:"connectable"`
	AddressType      *string           `json:"address_type"`
	DeviceClass      *int              `json:"device_class"`
	ServiceUUIDs     []string          `json:"service_uuids"`
	ServiceData      map[string]string `json:"service_data"`
	ManufacturerData map[string]string `json:"manufacturer_data"`
	FirstSeen        string            `json:"first_seen"`
	LastSeen         string            `json:"last_seen"`
	Sightings        int               `json:"sightings"`
}

// RowFieldNames lists the Row field names in serialization order. Tabular
// outputs use it as the header row.
func RowFieldNames() []string {
	return []string{
		"address", "transport", "name", "rssi", "tx_power", "appearance",
		"connectable", "address_type", "device_class", "service_uuids",
		"service_data", "manufacturer_data", "first_seen", "last_seen",
		"sightings",
	}
}

// Row builds the serializable view of the record. Empty collections become
// nil so they render as explicit absence markers rather than empty
// containers, and service UUIDs come out sorted and de-duplicated.
func (r *DeviceRecord) Row() Row {
	row := Row{
		Address:      r.Address,
		Transport:    r.Transport,
		Name:         r.Name,
		RSSI:         r.RSSI,
		TxPower:      r.TxPower,
		Appearance:   r.Appearance,
		Connectable:  r.Connectable,
		AddressType:  r.AddressType,
		DeviceClass:  r.DeviceClass,
		ServiceUUIDs: r.SortedServiceUUIDs(),
		FirstSeen:    r.FirstSeen.Format(time.RFC3339Nano),
		LastSeen:     r.LastSeen.Format(time.RFC3339Nano),
		Sightings:    r.Sightings,
	}
	if len(r.ServiceData) > 0 {
		row.ServiceData = r.ServiceData
	}
	if len(r.ManufacturerData) > 0 {
		row.ManufacturerData = r.ManufacturerData
	}
	return row
}
