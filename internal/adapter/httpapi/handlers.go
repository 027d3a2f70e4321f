package httpapi

import (
	"crypto/subtle"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/masakick/wbgt-checker/internal/directory"
	"github.com/masakick/wbgt-checker/internal/domain"
	"github.com/masakick/wbgt-checker/internal/snapshot"
)

const multipleCodesLimit = 10

const searchResultsLimit = 50

// requireCronSecret guards the trigger endpoints with a constant-time Bearer
// token comparison.
func (s *Server) requireCronSecret(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !ok || subtle.ConstantTimeCompare([]byte(token), []byte(s.cronSecret)) != 1 {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
			return
		}
		next(w, r)
	}
}

func (s *Server) handleFetchWBGT(w http.ResponseWriter, r *http.Request) {
	res, err := s.cycles.Run(r.Context())
	if err != nil {
		s.logger.Error("wbgt cycle failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]any{
			"success": false,
			"error":   err.Error(),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":   true,
		"dataCount": res.DataCount,
		"duration":  res.Duration.String(),
	})
}

func (s *Server) handleFetchTemperature(w http.ResponseWriter, r *http.Request) {
	res, err := s.cycles.RunTemperature(r.Context())
	if err != nil {
		s.logger.Error("temperature cycle failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]any{
			"success": false,
			"error":   err.Error(),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":   true,
		"dataCount": res.DataCount,
		"duration":  res.Duration.String(),
	})
}

func (s *Server) handleDataWBGT(w http.ResponseWriter, r *http.Request) {
	snap, err := s.store.Read(r.Context())
	if err != nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "WBGT data not available"})
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handleDataTemperature(w http.ResponseWriter, r *http.Request) {
	snap, err := s.tempStore.Read(r.Context())
	if err != nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "temperature data not available"})
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handleLocation(w http.ResponseWriter, r *http.Request) {
	code := r.PathValue("code")

	if target := directory.ResolveRedirect(code); target != "" {
		http.Redirect(w, r, target, http.StatusMovedPermanently)
		return
	}

	reading, err := s.store.ReadLocation(r.Context(), code)
	if errors.Is(err, snapshot.ErrUnknownLocation) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "location not found"})
		return
	}
	if err != nil {
		s.logger.Error("location read failed", "code", code, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}

	if reading.Source == domain.SourcePlaceholder {
		s.metrics.PlaceholderServes.Inc()
	}
	writeJSON(w, http.StatusOK, reading)
}

type multipleRequest struct {
	LocationCodes []string `json:"locationCodes"`
}

// multipleRow is one entry of the batch response. Codes without a live
// snapshot reading yield a "データなし" row instead of failing the whole batch.
type multipleRow struct {
	Code       string   `json:"code"`
	WBGT       *float64 `json:"wbgt,omitempty"`
	Level      *int     `json:"level,omitempty"`
	Label      string   `json:"label"`
	UpdateTime string   `json:"updateTime,omitempty"`
}

func noDataRow(code string) multipleRow {
	level := 0
	return multipleRow{Code: code, Level: &level, Label: "データなし"}
}

func (s *Server) handleMultiple(w http.ResponseWriter, r *http.Request) {
	var req multipleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if len(req.LocationCodes) == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "locationCodes is required"})
		return
	}

	codes := req.LocationCodes
	if len(codes) > multipleCodesLimit {
		codes = codes[:multipleCodesLimit]
	}

	var updateTime string
	if snap, err := s.store.Read(r.Context()); err == nil {
		updateTime = snap.UpdateTime
	}

	rows := make([]multipleRow, 0, len(codes))
	for _, code := range codes {
		reading, err := s.store.ReadLocation(r.Context(), code)
		if err != nil || reading.Source != domain.SourceLive {
			// The abbreviated row carries no source field, so a
			// placeholder must not render here: anything not in the
			// snapshot degrades to a no-data row.
			rows = append(rows, noDataRow(code))
			continue
		}
		level := domain.Classify(reading.WBGT)
		wbgt := reading.WBGT
		rows = append(rows, multipleRow{
			Code:       code,
			WBGT:       &wbgt,
			Level:      &level.Level,
			Label:      level.Label,
			UpdateTime: updateTime,
		})
	}

	writeJSON(w, http.StatusOK, rows)
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "q is required"})
		return
	}

	results := s.dir.Search(query, searchResultsLimit)
	writeJSON(w, http.StatusOK, map[string]any{
		"query":   query,
		"count":   len(results),
		"results": results,
	})
}

func (s *Server) handleLocations(w http.ResponseWriter, r *http.Request) {
	prefecture := r.URL.Query().Get("prefecture")
	if prefecture == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "prefecture is required"})
		return
	}

	locations := s.dir.ByPrefectureID(prefecture)
	writeJSON(w, http.StatusOK, map[string]any{
		"prefecture": prefecture,
		"name":       directory.PrefectureName(prefecture),
		"count":      len(locations),
		"locations":  locations,
	})
}
