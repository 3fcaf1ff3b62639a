package tzif

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestHeader_Write(t *testing.T) {
	buf := bytes.Buffer{}
	header := Header{
		Version:  V2,
		Isutcnt:  1,
		Isstdcnt: 2,
		Leapcnt:  3,
		Timecnt:  4,
		Typecnt:  5,
		Charcnt:  6,
	}
	if err := header.Write(&buf); err != nil {
		t.Fatalf("Write() failed: %v", err)
	}
	want := []byte{
		// 4 bytes magic
		'T', 'Z', 'i', 'f',
		// 1 byte version
		'2',
		// 15 bytes reserved
		0, 0, 0, 0, 0,
		0, 0, 0, 0, 0,
		0, 0, 0, 0, 0,
		// 6 4-byte integers
		0, 0, 0, 1, // isutcnt
		0, 0, 0, 2, // isstdcnt
		0, 0, 0, 3, // leapcnt
		0, 0, 0, 4, // timecnt
		0, 0, 0, 5, // typecnt
		0, 0, 0, 6, // charcnt
	}
	if diff := cmp.Diff(want, buf.Bytes()); diff != "" {
		t.Errorf("Write() mismatch (-want +got):\n%s", diff)
	}
}

func TestReadHeader_RoundTrip(t *testing.T) {
	// Example B.1 from RFC 8536: UTC with leap seconds.
	want := Header{Version: V1, Isutcnt: 1, Isstdcnt: 1, Leapcnt: 27, Typecnt: 1, Charcnt: 4}
	var buf bytes.Buffer
	if err := want.Write(&buf); err != nil {
		t.Fatal(err)
	}
	got, err := ReadHeader(&buf)
	if err != nil {
		t.Fatalf("ReadHeader() error: %v", err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ReadHeader() mismatch (-want +got):\n%s", diff)
	}
}

func TestReadHeader_Invalid(t *testing.T) {
	cases := []struct {
		name   string
		input  func() []byte
		notZif bool
	}{
		{
			name:   "wrong magic",
			input:  func() []byte { return []byte("# tzdb data for Europe and environs") },
			notZif: true,
		},
		{
			name: "truncated",
			input: func() []byte {
				return []byte{'T', 'Z', 'i', 'f', '2', 0, 0}
			},
		},
		{
			name: "zero typecnt",
			input: func() []byte {
				var buf bytes.Buffer
				_ = Header{Version: V2, Charcnt: 4}.Write(&buf)
				return buf.Bytes()
			},
		},
		{
			name: "isutcnt mismatch",
			input: func() []byte {
				var buf bytes.Buffer
				_ = Header{Version: V2, Isutcnt: 2, Typecnt: 1, Charcnt: 4}.Write(&buf)
				return buf.Bytes()
			},
		},
		{
			name: "unknown version",
			input: func() []byte {
				var buf bytes.Buffer
				_ = Header{Version: '9', Typecnt: 1, Charcnt: 4}.Write(&buf)
				return buf.Bytes()
			},
		},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := ReadHeader(bytes.NewReader(c.input()))
			if err == nil {
				t.Fatal("ReadHeader() succeeded, want error")
			}
			if got := errors.Is(err, ErrNotTZif); got != c.notZif {
				t.Errorf("errors.Is(err, ErrNotTZif) = %v, want %v (err = %v)", got, c.notZif, err)
			}
		})
	}
}

func TestIsZoneFile(t *testing.T) {
	dir := t.TempDir()

	zone := filepath.Join(dir, "Zone")
	var buf bytes.Buffer
	if err := (Header{Version: V2, Typecnt: 1, Charcnt: 4}).Write(&buf); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(zone, buf.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}

	tab := filepath.Join(dir, "zone.tab")
	if err := os.WriteFile(tab, []byte("# tz zone descriptions\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	if !IsZoneFile(zone) {
		t.Errorf("IsZoneFile(%q) = false, want true", zone)
	}
	if IsZoneFile(tab) {
		t.Errorf("IsZoneFile(%q) = true, want false", tab)
	}
	if IsZoneFile(filepath.Join(dir, "missing")) {
		t.Error("IsZoneFile(missing) = true, want false")
	}
}
