// Package api exposes timestamp conversion, zone search and the user's
// preferences over HTTP using chi.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/hlog"

	"github.com/ngrash/tsconv/calendar"
	"github.com/ngrash/tsconv/detect"
	"github.com/ngrash/tsconv/internal/prefs"
	"github.com/ngrash/tsconv/render"
	"github.com/ngrash/tsconv/tzoffset"
	"github.com/ngrash/tsconv/tzsearch"
)

// Handler serves the API. Catalog is the zone list offered for search.
type Handler struct {
	Calendar calendar.Service
	Catalog  []string
	Table    *tzsearch.Table
	Prefs    *prefs.Store
	Metrics  *Metrics

	// Now is the wall clock; time.Now if nil.
	Now func() time.Time
}

func (h *Handler) now() time.Time {
	if h.Now == nil {
		return time.Now()
	}
	return h.Now()
}

// settings resolves the mode and zone for a request: query parameters
// first, then the stored preferences.
func (h *Handler) settings(r *http.Request) (detect.Mode, string, error) {
	p := h.Prefs.Current()
	mode, zone := p.DateFormat, p.Timezone
	if s := r.URL.Query().Get("mode"); s != "" {
		m, err := detect.ParseMode(s)
		if err != nil {
			return 0, "", err
		}
		mode = m
	}
	if s := r.URL.Query().Get("tz"); s != "" {
		zone = s
	}
	return mode, zone, nil
}

type convertResponse struct {
	Input         string        `json:"input"`
	Label         string        `json:"label"`
	ModeSensitive bool          `json:"mode_sensitive"`
	Instant       int64         `json:"instant"`
	Timezone      string        `json:"timezone"`
	Output        render.Output `json:"output"`
}

// Convert handles GET /api/convert?q=&mode=&tz=.
func (h *Handler) Convert(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	q := r.URL.Query().Get("q")
	if strings.TrimSpace(q) == "" {
		writeError(w, r, http.StatusBadRequest, "missing query parameter q")
		return
	}
	mode, zone, err := h.settings(r)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	now := h.now()
	res, err := detect.Detect(q, detect.Context{Mode: mode, Now: func() time.Time { return now }})
	if errors.Is(err, detect.ErrNoMatch) {
		h.Metrics.IncrementDetection("unrecognized")
		writeError(w, r, http.StatusUnprocessableEntity, "unrecognized")
		return
	}
	h.Metrics.IncrementDetection(res.Label)

	out, err := render.Render(h.Calendar, res.Instant, zone, now.UnixMilli())
	if err != nil {
		h.zoneError(w, r, err)
		return
	}
	h.Metrics.ObserveConvertLatency(time.Since(start))
	hlog.FromRequest(r).Debug().Str("format", res.Label).Int64("instant", res.Instant).Msg("converted")

	writeJSON(w, r, http.StatusOK, convertResponse{
		Input:         q,
		Label:         res.Label,
		ModeSensitive: res.ModeSensitive,
		Instant:       res.Instant,
		Timezone:      zone,
		Output:        out,
	})
}

type zoneResult struct {
	Zone          string   `json:"zone"`
	Score         int      `json:"score"`
	Abbreviations []string `json:"abbreviations"`
}

// Zones handles GET /api/zones?q=&limit=.
func (h *Handler) Zones(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	limit := 0
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			writeError(w, r, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = n
	}

	ranked := tzsearch.Search(q, h.Catalog, h.Table)
	h.Metrics.IncrementSearch(strings.TrimSpace(q) == "")
	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}
	results := make([]zoneResult, len(ranked))
	for i, z := range ranked {
		abbrevs := h.Table.Abbrevs(z.Zone)
		if abbrevs == nil {
			abbrevs = []string{}
		}
		results[i] = zoneResult{Zone: z.Zone, Score: z.Score, Abbreviations: abbrevs}
	}
	writeJSON(w, r, http.StatusOK, results)
}

type offsetResponse struct {
	Timezone string `json:"timezone"`
	Instant  int64  `json:"instant"`
	Minutes  int    `json:"minutes"`
	Short    string `json:"short"`
	Fixed    string `json:"fixed"`
}

// Offset handles GET /api/offset?instant=&tz=. The instant defaults to now.
func (h *Handler) Offset(w http.ResponseWriter, r *http.Request) {
	_, zone, err := h.settings(r)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	ms := h.now().UnixMilli()
	if s := r.URL.Query().Get("instant"); s != "" {
		if ms, err = strconv.ParseInt(s, 10, 64); err != nil {
			writeError(w, r, http.StatusBadRequest, "instant must be milliseconds since the epoch")
			return
		}
	}
	minutes, err := tzoffset.Minutes(h.Calendar, ms, zone)
	if err != nil {
		h.zoneError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, offsetResponse{
		Timezone: zone,
		Instant:  ms,
		Minutes:  minutes,
		Short:    tzoffset.Short(minutes),
		Fixed:    tzoffset.Fixed(minutes),
	})
}

type formatResponse struct {
	Label         string `json:"label"`
	ModeSensitive bool   `json:"mode_sensitive"`
}

// Formats handles GET /api/formats?mode=, listing the formats in the order
// they are tried.
func (h *Handler) Formats(w http.ResponseWriter, r *http.Request) {
	mode, _, err := h.settings(r)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	ctx := detect.Context{Mode: mode}
	rules := detect.Rules()
	formats := make([]formatResponse, len(rules))
	for i, rule := range rules {
		formats[i] = formatResponse{Label: rule.Label(ctx), ModeSensitive: rule.ModeSensitive()}
	}
	writeJSON(w, r, http.StatusOK, formats)
}

// GetPreferences handles GET /api/preferences.
func (h *Handler) GetPreferences(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, h.Prefs.Current())
}

// PutPreferences handles PUT /api/preferences. Omitted fields keep their
// current value.
func (h *Handler) PutPreferences(w http.ResponseWriter, r *http.Request) {
	p := h.Prefs.Current()
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&p); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid preferences: "+err.Error())
		return
	}
	if err := h.Prefs.Save(p); err != nil {
		if errors.Is(err, prefs.ErrInvalid) {
			writeError(w, r, http.StatusBadRequest, err.Error())
			return
		}
		hlog.FromRequest(r).Error().Err(err).Msg("save preferences")
		writeError(w, r, http.StatusInternalServerError, "internal error")
		return
	}
	hlog.FromRequest(r).Info().Stringer("date_format", p.DateFormat).Str("timezone", p.Timezone).Msg("preferences saved")
	writeJSON(w, r, http.StatusOK, h.Prefs.Current())
}

// Live handles GET /health/live.
func (h *Handler) Live(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) zoneError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, calendar.ErrUnknownZone) {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	hlog.FromRequest(r).Error().Err(err).Msg("calendar failure")
	writeError(w, r, http.StatusInternalServerError, "internal error")
}
