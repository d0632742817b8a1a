package http

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/couchcryptid/aqi-hexmap/internal/domain"
)

const requestTimeout = 20 * time.Second

type yearsResponse struct {
	Years     []int `json:"years"`
	Available []int `json:"available"`
}

func (s *Server) handleYears(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	available, err := s.svc.Years(ctx)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeData(w, yearsResponse{Years: s.opts.Years, Available: available})
}

func (s *Server) handleLayer(w http.ResponseWriter, r *http.Request) {
	year, ok := parseYear(w, r)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	layer, err := s.svc.Layer(ctx, year)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeData(w, layer)
}

func (s *Server) handleGeoJSON(w http.ResponseWriter, r *http.Request) {
	year, ok := parseYear(w, r)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	fc, err := s.svc.GeoJSON(ctx, year)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeContent(w, http.StatusOK, "application/geo+json", fc)
}

func parseYear(w http.ResponseWriter, r *http.Request) (int, bool) {
	raw := mux.Vars(r)["year"]
	year, err := strconv.Atoi(raw)
	if err != nil || year < 0 {
		writeError(w, http.StatusBadRequest, codeInvalidYear, "year must be a non-negative integer, got "+strconv.Quote(raw))
		return 0, false
	}
	return year, true
}

func (s *Server) writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrLoad):
		writeError(w, http.StatusInternalServerError, codeDatasetUnavailable, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		writeError(w, http.StatusGatewayTimeout, codeTimeout, "request timed out")
	default:
		s.logger.Error("request failed", "error", err)
		writeError(w, http.StatusInternalServerError, codeInternal, "internal error")
	}
}
