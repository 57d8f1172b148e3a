package server

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/matzehuels/tileorg/pkg/errors"
	"github.com/matzehuels/tileorg/pkg/layout"
	"github.com/matzehuels/tileorg/pkg/organizer"
	"github.com/matzehuels/tileorg/pkg/pipeline"
	"github.com/matzehuels/tileorg/pkg/roster"
	"github.com/matzehuels/tileorg/pkg/sink"
	"github.com/matzehuels/tileorg/pkg/tile"
)

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 1 << 20

// LayoutRequest is the body of POST /v1/layout. Tiles are bound in order,
// then a single frame is returned for the resulting state.
type LayoutRequest struct {
	Width               float64           `json:"width"`
	Height              float64           `json:"height"`
	ActiveSpeakerLayout *bool             `json:"active_speaker_layout,omitempty"`
	Capacity            int               `json:"capacity,omitempty"`
	Self                string            `json:"self,omitempty"`
	Attendees           []roster.Attendee `json:"attendees,omitempty"`
	Tiles               []tile.State      `json:"tiles"`
	Format              string            `json:"format,omitempty"`
}

// LayoutResponse is the JSON answer of POST /v1/layout.
type LayoutResponse struct {
	RequestID string       `json:"request_id"`
	Frame     layout.Frame `json:"frame"`
}

// SimulateResponse is the JSON answer of POST /v1/simulate.
type SimulateResponse struct {
	RequestID    string         `json:"request_id"`
	Scenario     string         `json:"scenario"`
	ScenarioHash string         `json:"scenario_hash"`
	Frames       []layout.Frame `json:"frames"`
	DroppedBinds int            `json:"dropped_binds"`
	Cached       bool           `json:"cached"`
}

// ErrorResponse is the body of every non-2xx answer.
type ErrorResponse struct {
	RequestID string `json:"request_id,omitempty"`
	Code      string `json:"code"`
	Message   string `json:"message"`
}

// handleLayout serves POST /v1/layout. Every request gets its own
// organizer, so nothing is shared between requests.
func (s *Server) handleLayout(w http.ResponseWriter, r *http.Request) {
	var req LayoutRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(&req); err != nil {
		s.writeError(w, r, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode layout request"))
		return
	}
	format := req.Format
	if format == "" {
		format = pipeline.FormatJSON
	}
	if err := pipeline.ValidateFormat(format); err != nil {
		s.writeError(w, r, err)
		return
	}

	frame, err := s.layout(req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	if format == pipeline.FormatSVG {
		w.Header().Set("Content-Type", "image/svg+xml")
		_, _ = w.Write(sink.RenderSVG(frame))
		return
	}
	s.writeJSON(w, http.StatusOK, LayoutResponse{RequestID: RequestID(r.Context()), Frame: frame})
}

func (s *Server) layout(req LayoutRequest) (layout.Frame, error) {
	cfg := organizer.Config{
		SelfAttendeeID:      req.Self,
		Width:               req.Width,
		Height:              req.Height,
		ActiveSpeakerLayout: true,
		Capacity:            req.Capacity,
	}
	if req.ActiveSpeakerLayout != nil {
		cfg.ActiveSpeakerLayout = *req.ActiveSpeakerLayout
	}
	ros, err := roster.FromAttendees(req.Attendees)
	if err != nil {
		return layout.Frame{}, err
	}

	o, err := organizer.New(cfg, sink.NewCollector(), organizer.WithLogger(s.logger), organizer.WithRoster(ros))
	if err != nil {
		return layout.Frame{}, err
	}
	for _, st := range req.Tiles {
		if err := o.TileDidUpdate(st); err != nil {
			return layout.Frame{}, err
		}
	}
	return o.Layout(), nil
}

// handleSimulate serves POST /v1/simulate. The body is a scenario in TOML;
// the format query parameter picks json (default) or svg of the last frame.
func (s *Server) handleSimulate(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		s.writeError(w, r, errors.Wrap(errors.ErrCodeInvalidInput, err, "read scenario"))
		return
	}
	format := r.URL.Query().Get("format")
	if format == "" {
		format = pipeline.FormatJSON
	}
	if err := pipeline.ValidateFormat(format); err != nil {
		s.writeError(w, r, err)
		return
	}

	res, err := s.runner.Execute(r.Context(), pipeline.Options{
		ScenarioTOML: string(body),
		Formats:      []string{format},
		Frame:        pipeline.DefaultFrame,
		Logger:       s.logger,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	if format == pipeline.FormatSVG {
		w.Header().Set("Content-Type", "image/svg+xml")
		_, _ = w.Write(res.Artifacts[pipeline.FormatSVG])
		return
	}
	s.writeJSON(w, http.StatusOK, SimulateResponse{
		RequestID:    RequestID(r.Context()),
		Scenario:     res.Scenario.Name,
		ScenarioHash: res.ScenarioHash,
		Frames:       res.Frames,
		DroppedBinds: res.Stats.DroppedBinds,
		Cached:       res.CacheInfo.ReplayHit,
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// StatusCode maps an error to its HTTP status.
func StatusCode(err error) int {
	switch {
	case errors.IsValidation(err):
		return http.StatusBadRequest
	case errors.Is(err, errors.ErrCodeCapacityExceeded), errors.Is(err, errors.ErrCodeSlotOccupied):
		return http.StatusConflict
	case errors.Is(err, errors.ErrCodeNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := StatusCode(err)
	code := errors.GetCode(err)
	if code == "" {
		code = errors.ErrCodeInternal
	}
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "id", RequestID(r.Context()), "err", err)
	} else {
		s.logger.Debug("request rejected", "id", RequestID(r.Context()), "code", code, "err", err)
	}
	s.writeJSON(w, status, ErrorResponse{
		RequestID: RequestID(r.Context()),
		Code:      string(code),
		Message:   errors.UserMessage(err),
	})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warn("write response", "err", err)
	}
}
