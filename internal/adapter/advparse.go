package adapter

import (
	"encoding/binary"
	"fmt"
	"strconv"

	"btscan/internal/domain"
)

// Advertising data structure types (Bluetooth Assigned Numbers, section 2.3)
const (
	adFlags                  = 0x01
	adIncomplete16BitUUIDs   = 0x02
	adComplete16BitUUIDs     = 0x03
	adIncomplete32BitUUIDs   = 0x04
	adComplete32BitUUIDs     = 0x05
	adIncomplete128BitUUIDs  = 0x06
	adComplete128BitUUIDs    = 0x07
	adShortenedLocalName     = 0x08
	adCompleteLocalName      = 0x09
	adTxPowerLevel           = 0x0A
	adServiceData16Bit       = 0x16
	adAppearance             = 0x19
	adServiceData32Bit       = 0x20
	adServiceData128Bit      = 0x21
	adManufacturerData       = 0xFF
)

// Flags octet bits
const (
	flagLELimitedDiscoverable = 0x01
	flagLEGeneralDiscoverable = 0x02
)

// advFields holds the optional fields recovered from a raw advertising
// payload. Everything is optional; malformed structures are skipped rather
// than failing the event.
type advFields struct {
	localName    string
	txPower      *int
	appearance   *int
	connectable  *bool
	serviceUUIDs []string
	serviceData  map[string][]byte
	manufacturer []domain.ManufacturerField
}

// parseAdvPayload walks the length/type/value structures of a raw
// advertising payload. Providers on platforms that hand over raw bytes use
// it to recover fields the platform stack does not surface directly.
func parseAdvPayload(raw []byte) advFields {
	var fields advFields

	for i := 0; i < len(raw); {
		length := int(raw[i])
		if length == 0 {
			break
		}
		if i+1+length > len(raw) {
			// Truncated structure; keep what was parsed so far
			break
		}
		adType := raw[i+1]
		value := raw[i+2 : i+1+length]
		fields.apply(adType, value)
		i += 1 + length
	}

	return fields
}

func (f *advFields) apply(adType byte, value []byte) {
	switch adType {
	case adFlags:
		if len(value) >= 1 {
			// Discoverable flags imply a connectable advertiser
			connectable := value[0]&(flagLELimitedDiscoverable|flagLEGeneralDiscoverable) != 0
			f.connectable = &connectable
		}
	case adShortenedLocalName:
		// A complete name, if present, wins over the shortened form
		if f.localName == "" {
			f.localName = string(value)
		}
	case adCompleteLocalName:
		f.localName = string(value)
	case adTxPowerLevel:
		if len(value) >= 1 {
			power := int(int8(value[0]))
			f.txPower = &power
		}
	case adAppearance:
		if len(value) >= 2 {
			appearance := int(binary.LittleEndian.Uint16(value))
			f.appearance = &appearance
		}
	case adIncomplete16BitUUIDs, adComplete16BitUUIDs:
		for ; len(value) >= 2; value = value[2:] {
			f.serviceUUIDs = append(f.serviceUUIDs, uuid16(binary.LittleEndian.Uint16(value)))
		}
	case adIncomplete32BitUUIDs, adComplete32BitUUIDs:
		for ; len(value) >= 4; value = value[4:] {
			f.serviceUUIDs = append(f.serviceUUIDs, uuid32(binary.LittleEndian.Uint32(value)))
		}
	case adIncomplete128BitUUIDs, adComplete128BitUUIDs:
		for ; len(value) >= 16; value = value[16:] {
			f.serviceUUIDs = append(f.serviceUUIDs, uuid128(value[:16]))
		}
	case adServiceData16Bit:
		if len(value) >= 2 {
			f.addServiceData(uuid16(binary.LittleEndian.Uint16(value)), value[2:])
		}
	case adServiceData32Bit:
		if len(value) >= 4 {
			f.addServiceData(uuid32(binary.LittleEndian.Uint32(value)), value[4:])
		}
	case adServiceData128Bit:
		if len(value) >= 16 {
			f.addServiceData(uuid128(value[:16]), value[16:])
		}
	case adManufacturerData:
		if len(value) >= 2 {
			company := binary.LittleEndian.Uint16(value)
			f.manufacturer = append(f.manufacturer, domain.ManufacturerField{
				Key:  strconv.Itoa(int(company)),
				Data: append([]byte(nil), value[2:]...),
			})
		}
	}
}

func (f *advFields) addServiceData(uuid string, payload []byte) {
	if f.serviceData == nil {
		f.serviceData = make(map[string][]byte)
	}
	f.serviceData[uuid] = append([]byte(nil), payload...)
	f.serviceUUIDs = append(f.serviceUUIDs, uuid)
}

// baseUUIDSuffix is the Bluetooth Base UUID tail shared by all short-form
// service identifiers
const baseUUIDSuffix = "-0000-1000-8000-00805f9b34fb"

func uuid16(v uint16) string {
	return fmt.Sprintf("0000%04x%s", v, baseUUIDSuffix)
}

func uuid32(v uint32) string {
	return fmt.Sprintf("%08x%s", v, baseUUIDSuffix)
}

// uuid128 renders a little-endian 128-bit UUID in canonical form
func uuid128(le []byte) string {
	var be [16]byte
	for i := 0; i < 16; i++ {
		be[i] = le[15-i]
	}
	return fmt.Sprintf("%02x%02x%02x%02x-%02x%02x-%02x%02x-%02x%02x-%02x%02x%02x%02x%02x%02x",
		be[0], be[1], be[2], be[3], be[4], be[5], be[6], be[7],
		be[8], be[9], be[10], be[11], be[12], be[13], be[14], be[15])
}
