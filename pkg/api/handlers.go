package api

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/matzehuels/genomap/pkg/buildinfo"
	"github.com/matzehuels/genomap/pkg/errors"
	"github.com/matzehuels/genomap/pkg/genome"
	"github.com/matzehuels/genomap/pkg/pipeline"
)

// =============================================================================
// Request and Response Types
// =============================================================================

// LayoutRequest is the body of POST /v1/layout.
type LayoutRequest struct {
	Map     *genome.Map      `json:"map"`
	Options pipeline.Options `json:"options"`
}

// LayoutResponse wraps a layout result.
type LayoutResponse struct {
	*pipeline.Result
	Cached bool `json:"cached"`
}

// QueryRequest is the body of POST /v1/query. Zero bounds select the whole
// map.
type QueryRequest struct {
	Map   *genome.Map `json:"map"`
	Start int         `json:"start"`
	Stop  int         `json:"stop"`
	Step  int         `json:"step,omitempty"`
}

// QueryResponse lists the features overlapping the requested range.
type QueryResponse struct {
	Start    int              `json:"start"`
	Stop     int              `json:"stop"`
	Step     int              `json:"step"`
	Count    int              `json:"count"`
	Features []genome.Feature `json:"features"`
}

// HealthResponse is returned by GET /healthz.
type HealthResponse struct {
	Status string         `json:"status"`
	Build  buildinfo.Info `json:"build"`
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

// ErrorBody describes a failure.
type ErrorBody struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
}

// =============================================================================
// Handlers
// =============================================================================

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok", Build: buildinfo.Get()})
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("format") == "json" {
		w.Header().Set("Content-Type", "application/json")
		s.Metrics.WriteJSON(w)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	s.Metrics.WriteText(w)
}

func (s *Server) handleStrategies(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]string{"strategies": pipeline.Strategies()})
}

func (s *Server) handleLayout(w http.ResponseWriter, r *http.Request) {
	var req LayoutRequest
	if err := s.decode(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if req.Map == nil {
		writeError(w, r, errors.New(errors.ErrCodeInvalidMap, "request has no map"))
		return
	}

	req.Options.Logger = s.Logger.With("request_id", RequestID(r.Context()))
	result, hit, err := s.Runner.Layout(r.Context(), req.Map, req.Options)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, LayoutResponse{Result: result, Cached: hit})
}

func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	var req QueryRequest
	if err := s.decode(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if req.Map == nil {
		writeError(w, r, errors.New(errors.ErrCodeInvalidMap, "request has no map"))
		return
	}
	if req.Start == 0 && req.Stop == 0 {
		req.Start, req.Stop = 1, req.Map.Length
	}
	req.Step = max(1, req.Step)

	features, err := s.Runner.Query(r.Context(), req.Map, req.Start, req.Stop, req.Step)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if features == nil {
		features = []genome.Feature{}
	}
	writeJSON(w, http.StatusOK, QueryResponse{
		Start:    req.Start,
		Stop:     req.Stop,
		Step:     req.Step,
		Count:    len(features),
		Features: features,
	})
}

// =============================================================================
// Helpers
// =============================================================================

func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) error {
	body := http.MaxBytesReader(w, r.Body, s.MaxBodyBytes)
	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if err == io.EOF {
			return errors.New(errors.ErrCodeInvalidInput, "empty request body")
		}
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "decode request")
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func notFound(path string) error {
	return errors.New(errors.ErrCodeNotFound, "no route for %s", path)
}

// StatusFor maps an error to an HTTP status code.
func StatusFor(err error) int {
	code := errors.GetCode(err)
	switch {
	case code.IsValidation():
		return http.StatusBadRequest
	case code == errors.ErrCodeNotFound, code == errors.ErrCodeFileNotFound:
		return http.StatusNotFound
	case code == errors.ErrCodeUnsupported:
		return http.StatusNotImplemented
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := errors.GetCode(err)
	if code == "" {
		code = errors.ErrCodeInternal
	}
	writeJSON(w, StatusFor(err), ErrorResponse{Error: ErrorBody{
		Code:      string(code),
		Message:   errors.UserMessage(err),
		RequestID: RequestID(r.Context()),
	}})
}
