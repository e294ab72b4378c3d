// Package httpapi exposes alignment runs over HTTP, mirroring the shape
// of the teacher's internal/handlers/job.go (JobHandler wrapping a
// repository, JSON in/out, same status-code conventions) but for
// submitting and polling alignment runs instead of listing jobs.
package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/naozine/syncalign/internal/decoder"
	"github.com/naozine/syncalign/internal/store"
	"github.com/naozine/syncalign/internal/textfile"
	"github.com/naozine/syncalign/internal/waveform"
)

// RunHandler serves the alignment run API.
type RunHandler struct {
	runs    *store.RunRepository
	decoder decoder.Decoder
}

// NewRunHandler constructs a RunHandler over runs, decoding audio with
// decoder.FFmpeg for the waveform preview endpoint.
func NewRunHandler(runs *store.RunRepository) *RunHandler {
	return &RunHandler{runs: runs, decoder: decoder.FFmpeg{}}
}

// submitRequest is the JSON body POST /api/runs expects.
type submitRequest struct {
	AudioPath string          `json:"audio_path"`
	Fragments textfile.List   `json:"fragments"`
	Config    json.RawMessage `json:"config"`
	Priority  int             `json:"priority"`
}

// Submit creates a new queued alignment run.
func (h *RunHandler) Submit(c echo.Context) error {
	var req submitRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}
	if req.AudioPath == "" || len(req.Fragments) == 0 {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "audio_path and fragments are required"})
	}

	textJSON, err := json.Marshal(req.Fragments)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	configJSON := req.Config
	if len(configJSON) == 0 {
		configJSON = []byte("{}")
	}

	run := &store.Run{
		AudioPath:  req.AudioPath,
		TextJSON:   string(textJSON),
		ConfigJSON: string(configJSON),
		Priority:   req.Priority,
	}
	ctx := c.Request().Context()
	if err := h.runs.Create(ctx, run); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	return c.JSON(http.StatusCreated, run)
}

// Get returns one run's current status and result, if completed.
func (h *RunHandler) Get(c echo.Context) error {
	ctx := c.Request().Context()
	id := c.Param("id")

	run, err := h.runs.GetByID(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	if run == nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "run not found"})
	}

	return c.JSON(http.StatusOK, run)
}

// Waveform returns a downsampled peak-amplitude envelope for one run's
// source audio, for plotting fragment boundaries against the waveform.
func (h *RunHandler) Waveform(c echo.Context) error {
	ctx := c.Request().Context()
	id := c.Param("id")

	run, err := h.runs.GetByID(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	if run == nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "run not found"})
	}

	buf, err := h.decoder.Decode(ctx, run.AudioPath, 16000)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	peaks, err := waveform.Compute(buf, 20)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	return c.JSON(http.StatusOK, peaks)
}
