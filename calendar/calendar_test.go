package calendar

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"
	_ "time/tzdata"

	"github.com/google/go-cmp/cmp"

	"github.com/ngrash/tsconv/tzif"
)

func TestSystem_FieldsIn(t *testing.T) {
	cases := []struct {
		ms   int64
		zone string
		want Fields
	}{
		{1705314600000, "UTC", Fields{2024, 1, 15, 10, 30, 0}},
		{1705314600000, "", Fields{2024, 1, 15, 10, 30, 0}},
		{1705314600000, "Europe/Helsinki", Fields{2024, 1, 15, 12, 30, 0}},
		{1721039400000, "Europe/Helsinki", Fields{2024, 7, 15, 13, 30, 0}},
		{1705314600000, "Asia/Kolkata", Fields{2024, 1, 15, 16, 0, 0}},
		{1705314600000, "America/Los_Angeles", Fields{2024, 1, 15, 2, 30, 0}},
		{-1, "UTC", Fields{1969, 12, 31, 23, 59, 59}},
	}
	var s System
	for _, c := range cases {
		got, err := s.FieldsIn(c.ms, c.zone)
		if err != nil {
			t.Fatalf("FieldsIn(%d, %q) error: %v", c.ms, c.zone, err)
		}
		if diff := cmp.Diff(c.want, got); diff != "" {
			t.Errorf("FieldsIn(%d, %q) mismatch (-want +got):\n%s", c.ms, c.zone, diff)
		}
	}
}

func TestSystem_FieldsIn_UnknownZone(t *testing.T) {
	var s System
	for _, zone := range []string{"Mars/Olympus_Mons", "Local"} {
		_, err := s.FieldsIn(0, zone)
		if !errors.Is(err, ErrUnknownZone) {
			t.Errorf("FieldsIn(0, %q) error = %v, want ErrUnknownZone", zone, err)
		}
	}
}

func writeZoneFile(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	if err := (tzif.Header{Version: tzif.V2, Typecnt: 1, Charcnt: 4}).Write(&buf); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestSystem_Zones(t *testing.T) {
	root := t.TempDir()
	writeZoneFile(t, filepath.Join(root, "Europe", "Helsinki"))
	writeZoneFile(t, filepath.Join(root, "America", "New_York"))
	writeZoneFile(t, filepath.Join(root, "America", "Argentina", "Buenos_Aires"))
	// Aliases, the Etc area and the posix/ duplicate tree are not offered.
	writeZoneFile(t, filepath.Join(root, "US", "Pacific"))
	writeZoneFile(t, filepath.Join(root, "Etc", "GMT+5"))
	writeZoneFile(t, filepath.Join(root, "posix", "Europe", "Oslo"))
	writeZoneFile(t, filepath.Join(root, "GB"))
	if err := os.WriteFile(filepath.Join(root, "Europe", "README"), []byte("not a zone"), 0o644); err != nil {
		t.Fatal(err)
	}

	s := System{ZoneInfoDir: root}
	got, err := s.Zones()
	if err != nil {
		t.Fatalf("Zones() error: %v", err)
	}
	want := []string{"UTC", "America/Argentina/Buenos_Aires", "America/New_York", "Europe/Helsinki"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Zones() mismatch (-want +got):\n%s", diff)
	}

	path, ok := s.ZoneFile("Europe/Helsinki")
	if !ok || path != filepath.Join(root, "Europe", "Helsinki") {
		t.Errorf("ZoneFile(Europe/Helsinki) = %q, %v", path, ok)
	}
	if _, ok := s.ZoneFile("../etc/passwd"); ok {
		t.Error("ZoneFile accepted a path outside the zoneinfo directory")
	}
}

func TestSystem_Zones_MissingDir(t *testing.T) {
	s := System{ZoneInfoDir: filepath.Join(t.TempDir(), "missing")}
	if _, err := s.Zones(); err == nil {
		t.Fatal("Zones() succeeded for a missing directory")
	}
}

type stubService struct {
	zones []string
	err   error
}

func (s stubService) FieldsIn(int64, string) (Fields, error) { return Fields{}, nil }
func (s stubService) Zones() ([]string, error)               { return s.zones, s.err }

func TestCatalog(t *testing.T) {
	got, err := Catalog(stubService{zones: []string{"UTC", "Europe/Helsinki"}})
	if err != nil {
		t.Fatalf("Catalog() error: %v", err)
	}
	if diff := cmp.Diff([]string{"UTC", "Europe/Helsinki"}, got); diff != "" {
		t.Errorf("Catalog() mismatch (-want +got):\n%s", diff)
	}

	for name, svc := range map[string]stubService{
		"error": {err: errors.New("boom")},
		"empty": {},
	} {
		t.Run(name, func(t *testing.T) {
			got, err := Catalog(svc)
			if err == nil {
				t.Error("Catalog() did not report the degradation")
			}
			if diff := cmp.Diff(Fallback, got); diff != "" {
				t.Errorf("Catalog() mismatch (-want +got):\n%s", diff)
			}
			got[0] = "changed"
			if Fallback[0] != UTC {
				t.Error("Catalog() returned Fallback itself instead of a copy")
			}
		})
	}
}
