package http

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/couchcryptid/sounding-service/internal/domain"
	"github.com/couchcryptid/sounding-service/internal/stations"
)

const (
	headerRequestID     = "X-Request-ID"
	defaultStationLimit = 50
)

type ctxKey struct{}

// withRequestID tags the request with the caller's X-Request-ID, or a new
// UUID, and echoes it on the response.
func (s *Server) withRequestID(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(headerRequestID)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(headerRequestID, id)
		next(w, r.WithContext(context.WithValue(r.Context(), ctxKey{}, id)))
	}
}

func requestID(ctx context.Context) string {
	id, _ := ctx.Value(ctxKey{}).(string)
	return id
}

type errorResponse struct {
	Error string   `json:"error"`
	Kind  string   `json:"kind"`
	Hours []string `json:"hours_tried,omitempty"`
}

// statusFor maps a retrieval error to an HTTP status.
func statusFor(err error) int {
	switch domain.ErrorKind(err) {
	case "invalid":
		return http.StatusBadRequest
	case "no_data", "unavailable":
		return http.StatusNotFound
	case "format", "network", "decode":
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	resp := errorResponse{Error: err.Error(), Kind: domain.ErrorKind(err)}
	var nd *domain.NoDataError
	if errors.As(err, &nd) {
		resp.Hours = nd.Hours
	}
	level := s.logger.Info
	if status >= http.StatusInternalServerError {
		level = s.logger.Warn
	}
	level("request failed",
		"request_id", requestID(r.Context()),
		"path", r.URL.Path,
		"status", status,
		"kind", resp.Kind,
		"error", err,
	)
	writeJSON(w, status, resp)
}

// handleSounding serves GET /api/v1/soundings?station=&date=&hour=&source=.
// city= may replace station and is resolved through the station directory.
func (s *Server) handleSounding(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	station := q.Get("station")
	if station == "" && q.Get("city") != "" {
		st, err := s.findCity(r.Context(), q.Get("city"))
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		station = st.Code
	}

	req, err := domain.NewSoundingRequest(station, q.Get("date"), q.Get("hour"), q.Get("source"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	result, err := s.retriever.Retrieve(r.Context(), req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.logger.Info("sounding served",
		"request_id", requestID(r.Context()),
		"station", result.Station,
		"time", result.Time.String(),
		"provenance", string(result.Provenance),
	)
	writeJSON(w, http.StatusOK, result)
}

// findCity resolves a city query; lookup failures are client errors.
func (s *Server) findCity(ctx context.Context, city string) (domain.Station, error) {
	table, err := s.directory.GetOrRefresh(ctx)
	if err != nil {
		return domain.Station{}, err
	}
	st, err := table.Find(city)
	if err != nil {
		return domain.Station{}, errors.Join(domain.ErrInvalidRequest, err)
	}
	return st, nil
}

// handleStations serves GET /api/v1/stations?q=&limit=.
func (s *Server) handleStations(w http.ResponseWriter, r *http.Request) {
	limit := defaultStationLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "limit must be a non-negative integer", Kind: "invalid"})
			return
		}
		limit = n
	}

	table, err := s.directory.GetOrRefresh(r.Context())
	if err != nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: err.Error(), Kind: domain.ErrorKind(err)})
		return
	}
	found := table.Search(r.URL.Query().Get("q"), limit)
	if found == nil {
		found = []domain.Station{}
	}
	writeJSON(w, http.StatusOK, found)
}

// handleStation serves GET /api/v1/stations/{code}.
func (s *Server) handleStation(w http.ResponseWriter, r *http.Request) {
	table, err := s.directory.GetOrRefresh(r.Context())
	if err != nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: err.Error(), Kind: domain.ErrorKind(err)})
		return
	}
	st, ok := table.ByCode(r.PathValue("code"))
	if !ok {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: stations.ErrNotFound.Error(), Kind: "not_found"})
		return
	}
	writeJSON(w, http.StatusOK, st)
}
