// Package tzif reads the header of compiled time zone files in the TZif
// format described by RFC 8536.
// https://datatracker.ietf.org/doc/html/rfc8536
//
// Only the fixed-size header is decoded. It is enough to tell a zone file
// from the other files that live in a zoneinfo directory and to report what
// a zone file contains without pulling in the transition data.
package tzif

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
)

// All multi-octet integers are stored big-endian.
var order = binary.BigEndian

// Version is the octet identifying the version of a TZif file.
type Version byte

func (v Version) String() string {
	switch v {
	case V1:
		return "V1 (0x00)"
	case V2:
		return "V2 (0x32)"
	case V3:
		return "V3 (0x33)"
	case V4:
		return "V4 (0x34)"
	default:
		return fmt.Sprintf("<undefined version (%d)>", v)
	}
}

const (
	V1 Version = 0x00
	V2 Version = 0x32 // '2'
	V3 Version = 0x33 // '3'
	V4 Version = 0x34 // '4'
)

// Magic is the four-octet ASCII sequence "TZif" every TZif file starts with.
var Magic = [4]byte{'T', 'Z', 'i', 'f'}

// ErrNotTZif is returned when the input does not start with Magic.
var ErrNotTZif = errors.New("not a TZif file")

// Header is the version 1 header of a TZif file, following the magic.
//
//	+---------------+---+
//	|  magic    (4) |ver|
//	+---------------+---+---------------------------------------+
//	|           [unused - reserved for future use] (15)         |
//	+---------------+---------------+---------------+-----------+
//	|  isutcnt  (4) |  isstdcnt (4) |  leapcnt  (4) |
//	+---------------+---------------+---------------+
//	|  timecnt  (4) |  typecnt  (4) |  charcnt  (4) |
//	+---------------+---------------+---------------+
type Header struct {
	Version  Version
	Reserved [15]byte

	Isutcnt  uint32 // UT/local indicators, 0 or Typecnt
	Isstdcnt uint32 // standard/wall indicators, 0 or Typecnt
	Leapcnt  uint32 // leap-second records
	Timecnt  uint32 // transition times
	Typecnt  uint32 // local time type records, never 0
	Charcnt  uint32 // octets of zone designations, never 0
}

// Write writes the magic followed by h to w.
func (h Header) Write(w io.Writer) error {
	if _, err := w.Write(Magic[:]); err != nil {
		return err
	}
	return binary.Write(w, order, h)
}

// ReadHeader reads the magic and the header from r.
func ReadHeader(r io.Reader) (Header, error) {
	var h Header
	magic := make([]byte, len(Magic))
	if _, err := io.ReadFull(r, magic); err != nil {
		return h, fmt.Errorf("reading magic: %w", err)
	}
	if !bytes.Equal(magic, Magic[:]) {
		return h, ErrNotTZif
	}
	if err := binary.Read(r, order, &h); err != nil {
		return h, fmt.Errorf("reading header: %w", err)
	}
	if err := h.validate(); err != nil {
		return h, err
	}
	return h, nil
}

// validate checks the header invariants RFC 8536 section 3.1 places on the counts.
func (h Header) validate() error {
	var errs []error
	switch h.Version {
	case V1, V2, V3, V4:
	default:
		errs = append(errs, fmt.Errorf("unknown version %v", h.Version))
	}
	if h.Typecnt == 0 {
		errs = append(errs, fmt.Errorf("typecnt must not be zero"))
	}
	if h.Charcnt == 0 {
		errs = append(errs, fmt.Errorf("charcnt must not be zero"))
	}
	if h.Isutcnt != 0 && h.Isutcnt != h.Typecnt {
		errs = append(errs, fmt.Errorf("invalid isutcnt (%d): must be 0 or equal to typecnt (%d)", h.Isutcnt, h.Typecnt))
	}
	if h.Isstdcnt != 0 && h.Isstdcnt != h.Typecnt {
		errs = append(errs, fmt.Errorf("invalid isstdcnt (%d): must be 0 or equal to typecnt (%d)", h.Isstdcnt, h.Typecnt))
	}
	return errors.Join(errs...)
}

// ReadFile reads the header of the TZif file at path.
func ReadFile(path string) (Header, error) {
	f, err := os.Open(path)
	if err != nil {
		return Header{}, err
	}
	defer f.Close()
	return ReadHeader(f)
}

// IsZoneFile reports whether the file at path starts with a valid TZif header.
func IsZoneFile(path string) bool {
	_, err := ReadFile(path)
	return err == nil
}
