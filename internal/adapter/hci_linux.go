//go:build linux

package adapter

import (
	"context"
	"encoding/binary"
	"fmt"
	"runtime"
	"strconv"
	"strings"
	"unsafe"

	"github.com/rs/zerolog"
	"golang.org/x/sys/unix"

	"btscan/internal/domain"
)

// HCIINQUIRY ioctl request code, _IOR('H', 240, int)
// (linux include/net/bluetooth/hci.h)
const hciInquiryIoctl = 0x800448f0

const (
	// IREQ_CACHE_FLUSH discards cached responses from earlier inquiries
	ireqCacheFlush = 0x0001

	// hci_inquiry_req is dev_id(2) flags(2) lap(3) length(1) num_rsp(1),
	// padded to 10 bytes; inquiry_info entries follow it in the buffer
	inquiryReqSize  = 10
	inquiryInfoSize = 14
	maxInquiryRsp   = 255

	// inquiry length unit defined by the HCI specification
	inquirySlot = 1.28
)

// HCIClassicProvider performs Classic (BR/EDR) inquiry through a raw HCI
// socket. Remote name lookup needs a full HCI command flow and is not
// supported here: names are uniformly absent, class of device is captured
// from the inquiry responses themselves.
type HCIClassicProvider struct {
	devID uint16
	log   zerolog.Logger
}

// NewHCIClassicProvider creates a provider bound to the given interface
// ("hci0", "hci1", ...). An empty selector means the first device.
func NewHCIClassicProvider(adapterID string, log zerolog.Logger) *HCIClassicProvider {
	return &HCIClassicProvider{
		devID: parseHCIDeviceID(adapterID),
		log:   log,
	}
}

// Available probes for a working HCI socket
func (p *HCIClassicProvider) Available() error {
	fd, err := unix.Socket(unix.AF_BLUETOOTH, unix.SOCK_RAW|unix.SOCK_CLOEXEC, unix.BTPROTO_HCI)
	if err != nil {
		return fmt.Errorf("%w: open HCI socket: %v", domain.ErrCapabilityUnavailable, err)
	}
	unix.Close(fd)
	return nil
}

// Inquiry runs one blocking HCIINQUIRY ioctl. The kernel controls the real
// window; DurationHint is rounded to inquiry slots. Cancelling ctx abandons
// the wait (the kernel finishes the inquiry on its own) and returns empty.
func (p *HCIClassicProvider) Inquiry(ctx context.Context, opts InquiryOptions) ([]domain.InquiryResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if opts.LookupNames {
		p.log.Debug().Msg("remote name lookup not supported by raw HCI inquiry; names will be absent")
	}

	type outcome struct {
		results []domain.InquiryResult
		err     error
	}
	ch := make(chan outcome, 1)
	go func() {
		results, err := p.runInquiry(opts)
		ch <- outcome{results: results, err: err}
	}()

	select {
	case out := <-ch:
		return out.results, out.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (p *HCIClassicProvider) runInquiry(opts InquiryOptions) ([]domain.InquiryResult, error) {
	fd, err := unix.Socket(unix.AF_BLUETOOTH, unix.SOCK_RAW|unix.SOCK_CLOEXEC, unix.BTPROTO_HCI)
	if err != nil {
		return nil, fmt.Errorf("%w: open HCI socket: %v", domain.ErrCapabilityUnavailable, err)
	}
	defer unix.Close(fd)

	length := int(opts.DurationHint.Seconds()/inquirySlot + 0.5)
	if length < 1 {
		length = 1
	}
	if length > 0x30 {
		length = 0x30
	}

	var flags uint16
	if opts.FlushCache {
		flags |= ireqCacheFlush
	}

	buf := make([]byte, inquiryReqSize+maxInquiryRsp*inquiryInfoSize)
	binary.LittleEndian.PutUint16(buf[0:], p.devID)
	binary.LittleEndian.PutUint16(buf[2:], flags)
	// General Inquiry Access Code 0x9e8b33, little-endian
	buf[4], buf[5], buf[6] = 0x33, 0x8b, 0x9e
	buf[7] = byte(length)
	buf[8] = maxInquiryRsp

	if err := ioctlPtr(fd, hciInquiryIoctl, buf); err != nil {
		return nil, fmt.Errorf("%w: HCI inquiry on hci%d: %v", domain.ErrScanAborted, p.devID, err)
	}

	numRsp := int(buf[8])
	results := make([]domain.InquiryResult, 0, numRsp)
	for i := 0; i < numRsp; i++ {
		info := buf[inquiryReqSize+i*inquiryInfoSize:]
		res := domain.InquiryResult{Address: formatBDAddr(info[:6])}
		if opts.LookupClass {
			class := int(info[9]) | int(info[10])<<8 | int(info[11])<<16
			res.DeviceClass = &class
		}
		results = append(results, res)
	}
	return results, nil
}

func ioctlPtr(fd int, req uintptr, buf []byte) error {
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, uintptr(fd), req, uintptr(unsafe.Pointer(&buf[0])))
	runtime.KeepAlive(buf)
	if errno != 0 {
		return errno
	}
	return nil
}

// formatBDAddr renders a little-endian bdaddr_t in the usual notation
func formatBDAddr(b []byte) string {
	return fmt.Sprintf("%02X:%02X:%02X:%02X:%02X:%02X", b[5], b[4], b[3], b[2], b[1], b[0])
}

// parseHCIDeviceID extracts the numeric id from an "hciN" selector
func parseHCIDeviceID(adapterID string) uint16 {
	trimmed := strings.TrimPrefix(strings.TrimSpace(adapterID), "hci")
	if trimmed == "" {
		return 0
	}
	if id, err := strconv.ParseUint(trimmed, 10, 16); err == nil {
		return uint16(id)
	}
	return 0
}
