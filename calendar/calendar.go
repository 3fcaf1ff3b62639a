// Package calendar supplies civil calendar fields for an instant as observed
// in an IANA time zone, and the catalog of zones the application offers.
package calendar

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/ngrash/tsconv/tzif"
)

// UTC is the sentinel zone identifier that is always available.
const UTC = "UTC"

// ErrUnknownZone is returned when a zone identifier cannot be loaded.
var ErrUnknownZone = errors.New("unknown time zone")

// Fields are the civil calendar fields of an instant inside one zone.
type Fields struct {
	Year   int
	Month  int // 1-12
	Day    int // 1-31
	Hour   int // 0-23
	Minute int // 0-59
	Second int // 0-59
}

// Service computes civil fields and enumerates supported zones.
type Service interface {
	// FieldsIn returns the civil fields of the instant ms in zone.
	FieldsIn(ms int64, zone string) (Fields, error)
	// Zones returns the supported zone identifiers in display order.
	Zones() ([]string, error)
}

// System is a Service backed by the time package's IANA database.
// The zero value reads zone names from the platform zoneinfo directory.
type System struct {
	// ZoneInfoDir overrides the directory Zones walks.
	// If empty, $ZONEINFO is used, then the usual system locations.
	ZoneInfoDir string

	mu   sync.Mutex
	locs map[string]*time.Location
}

// FieldsIn implements Service.
func (s *System) FieldsIn(ms int64, zone string) (Fields, error) {
	loc, err := s.location(zone)
	if err != nil {
		return Fields{}, err
	}
	t := time.UnixMilli(ms).In(loc)
	return Fields{
		Year:   t.Year(),
		Month:  int(t.Month()),
		Day:    t.Day(),
		Hour:   t.Hour(),
		Minute: t.Minute(),
		Second: t.Second(),
	}, nil
}

// ZoneFile returns the path of the compiled TZif file for zone in the
// first zoneinfo directory that has one.
func (s *System) ZoneFile(zone string) (string, bool) {
	if !fs.ValidPath(zone) {
		return "", false
	}
	for _, dir := range s.zoneInfoDirs() {
		path := filepath.Join(dir, filepath.FromSlash(zone))
		if tzif.IsZoneFile(path) {
			return path, true
		}
	}
	return "", false
}

func (s *System) location(zone string) (*time.Location, error) {
	if zone == UTC || zone == "" {
		return time.UTC, nil
	}
	// time.LoadLocation accepts "Local", which is not a zone identifier.
	if zone == "Local" {
		return nil, fmt.Errorf("%w: %q", ErrUnknownZone, zone)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if loc, ok := s.locs[zone]; ok {
		return loc, nil
	}
	loc, err := time.LoadLocation(zone)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownZone, zone)
	}
	if s.locs == nil {
		s.locs = make(map[string]*time.Location)
	}
	s.locs[zone] = loc
	return loc, nil
}

// regions are the top-level IANA areas offered in the catalog.
// Backward-compatible aliases such as "US/Pacific" and the Etc area are left out.
var regions = map[string]bool{
	"Africa":     true,
	"America":    true,
	"Antarctica": true,
	"Arctic":     true,
	"Asia":       true,
	"Atlantic":   true,
	"Australia":  true,
	"Europe":     true,
	"Indian":     true,
	"Pacific":    true,
}

// Zones implements Service. It walks the zoneinfo directory and returns
// UTC followed by every region zone with a valid TZif header, sorted.
func (s *System) Zones() ([]string, error) {
	var lastErr error
	for _, dir := range s.zoneInfoDirs() {
		zones, err := scanZoneInfo(dir)
		if err != nil {
			lastErr = err
			continue
		}
		if len(zones) > 0 {
			return append([]string{UTC}, zones...), nil
		}
	}
	if lastErr == nil {
		lastErr = errors.New("no zoneinfo directory found")
	}
	return nil, fmt.Errorf("list zones: %w", lastErr)
}

func (s *System) zoneInfoDirs() []string {
	if s.ZoneInfoDir != "" {
		return []string{s.ZoneInfoDir}
	}
	var dirs []string
	if env := os.Getenv("ZONEINFO"); env != "" {
		dirs = append(dirs, env)
	}
	dirs = append(dirs,
		"/usr/share/zoneinfo/",
		"/usr/share/lib/zoneinfo/",
		"/usr/lib/locale/TZ/",
		"/etc/zoneinfo/",
	)
	return dirs
}

func scanZoneInfo(root string) ([]string, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s: not a directory", root)
	}

	var zones []string
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		name := filepath.ToSlash(rel)
		region, _, nested := strings.Cut(name, "/")
		if d.IsDir() {
			if name != "." && !regions[region] {
				return filepath.SkipDir
			}
			return nil
		}
		if !nested || !regions[region] {
			return nil
		}
		if !tzif.IsZoneFile(path) {
			return nil
		}
		zones = append(zones, name)
		return nil
	})
	if err != nil {
		return nil, err
	}
	slices.Sort(zones)
	return zones, nil
}

// Fallback is the catalog offered when the zone list cannot be read.
var Fallback = []string{
	UTC,
	"America/New_York",
	"America/Chicago",
	"America/Denver",
	"America/Los_Angeles",
	"America/Anchorage",
	"America/Sao_Paulo",
	"Europe/London",
	"Europe/Paris",
	"Europe/Berlin",
	"Europe/Helsinki",
	"Europe/Moscow",
	"Africa/Johannesburg",
	"Asia/Dubai",
	"Asia/Kolkata",
	"Asia/Shanghai",
	"Asia/Tokyo",
	"Australia/Sydney",
	"Pacific/Auckland",
	"Pacific/Honolulu",
}

// Catalog returns svc's zones, or a copy of Fallback when listing fails or
// yields nothing. The error, if any, is returned alongside so the caller can
// report the degradation.
func Catalog(svc Service) ([]string, error) {
	zones, err := svc.Zones()
	if err == nil && len(zones) > 0 {
		return zones, nil
	}
	if err == nil {
		err = errors.New("list zones: empty result")
	}
	return slices.Clone(Fallback), err
}
