// Package handlers provides HTTP handlers for the REST API.
package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/HappyEnt/flooja-cau-testbed/internal/parser"
	"github.com/HappyEnt/flooja-cau-testbed/internal/render"
	"github.com/HappyEnt/flooja-cau-testbed/internal/storage"
	"github.com/HappyEnt/flooja-cau-testbed/internal/trace"
	"github.com/HappyEnt/flooja-cau-testbed/pkg/models"
)

// Config holds the plot defaults of the handlers.
type Config struct {
	// DefaultWidth is the plot width, and the divisor for the default sample resolution
	DefaultWidth int

	// DefaultHeight is the plot height when none is requested
	DefaultHeight int

	// MaxWidth caps requested plot widths
	MaxWidth int

	// MaxCurrent is the top of the plotted current axis in mA
	MaxCurrent float64
}

// Handler handles trace API requests.
type Handler struct {
	store  storage.TraceStore
	gpio   *parser.GpioEvents
	serial *parser.SerialLog
	config Config
}

// NewHandler creates a new handler over a trace store.
func NewHandler(store storage.TraceStore, config Config) *Handler {
	if config.DefaultWidth <= 0 {
		config.DefaultWidth = 1200
	}
	if config.DefaultHeight <= 0 {
		config.DefaultHeight = 300
	}
	if config.MaxWidth < config.DefaultWidth {
		config.MaxWidth = config.DefaultWidth
	}
	return &Handler{store: store, config: config}
}

// WithEvents attaches the GPIO and serial logs of a measurement. Either may be nil.
func (h *Handler) WithEvents(gpio *parser.GpioEvents, serial *parser.SerialLog) *Handler {
	h.gpio = gpio
	h.serial = serial
	return h
}

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error   string `json:"error" example:"not_found"`
	Message string `json:"message,omitempty" example:"node not found: 13"`
}

// NodeListResponse represents the response for listing nodes.
type NodeListResponse struct {
	Data  []models.TraceInfo `json:"data"`
	Count int                `json:"count" example:"30"`
}

// ValueResponse is the interpolated value of a trace at one point in time.
type ValueResponse struct {
	NodeID int      `json:"node_id" example:"13"`
	Time   int64    `json:"time" example:"167000000000000000"`
	Value  *float64 `json:"value" example:"12.5"`
}

// AverageResponse is the mean of a trace over an inclusive window.
type AverageResponse struct {
	NodeID int      `json:"node_id" example:"13"`
	From   int64    `json:"from"`
	To     int64    `json:"to"`
	Value  *float64 `json:"value" example:"9.75"`
}

// SamplesResponse carries the samples covering a window.
type SamplesResponse struct {
	NodeID    int             `json:"node_id" example:"13"`
	Start     int64           `json:"start"`
	End       int64           `json:"end"`
	MaxDeltaT int64           `json:"max_delta_t"`
	Data      []models.Sample `json:"data"`
	Count     int             `json:"count"`
}

// GpioResponse carries GPIO level changes of one pin.
type GpioResponse struct {
	Data  []models.GpioEvent `json:"data"`
	Count int                `json:"count"`
}

// SerialResponse carries serial output lines.
type SerialResponse struct {
	Data  []models.SerialEvent `json:"data"`
	Count int                  `json:"count"`
}

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// writeError writes an error response.
func writeError(w http.ResponseWriter, status int, err string, message string) {
	writeJSON(w, status, ErrorResponse{
		Error:   err,
		Message: message,
	})
}

// writeStoreError maps trace lookup and query failures to a response.
func writeStoreError(w http.ResponseWriter, err error) {
	if errors.Is(err, storage.ErrNodeNotFound) {
		writeError(w, http.StatusNotFound, "not_found", err.Error())
		return
	}
	writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
}

// queryTime parses an optional timestamp query parameter.
func queryTime(r *http.Request, name string) (int64, bool, error) {
	s := r.URL.Query().Get(name)
	if s == "" {
		return 0, false, nil
	}
	t, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, false, fmt.Errorf("invalid %s parameter", name)
	}
	return t, true, nil
}

// requireTime parses a mandatory timestamp query parameter.
func requireTime(r *http.Request, name string) (int64, error) {
	t, ok, err := queryTime(r, name)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, fmt.Errorf("%s parameter is required", name)
	}
	return t, nil
}

// queryInt parses an optional positive integer query parameter.
func queryInt(r *http.Request, name string, def int) (int, error) {
	s := r.URL.Query().Get(name)
	if s == "" {
		return def, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil || v < 1 {
		return 0, fmt.Errorf("invalid %s parameter", name)
	}
	return v, nil
}

// window resolves the start and end parameters, defaulting to the
// range covered by tr.
func window(r *http.Request, tr trace.Trace) (start, end int64, err error) {
	start, hasStart, err := queryTime(r, "start")
	if err != nil {
		return 0, 0, err
	}
	end, hasEnd, err := queryTime(r, "end")
	if err != nil {
		return 0, 0, err
	}
	if !hasStart {
		first, ok := tr.FirstTime()
		if !ok {
			return 0, 0, errors.New("start parameter is required for an empty trace")
		}
		start = first
	}
	if !hasEnd {
		last, ok := tr.LastTime()
		if !ok {
			return 0, 0, errors.New("end parameter is required for an empty trace")
		}
		end = last
	}
	if end < start {
		return 0, 0, errors.New("end must not be before start")
	}
	return start, end, nil
}

// lookup resolves the {id} path variable to a trace, writing the error
// response itself when it fails.
func (h *Handler) lookup(w http.ResponseWriter, r *http.Request) (trace.Trace, bool) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "Invalid node id")
		return nil, false
	}

	tr, err := h.store.Trace(r.Context(), id)
	if err != nil {
		writeStoreError(w, err)
		return nil, false
	}
	return tr, true
}

// ListNodes godoc
// @Summary      List all nodes
// @Description  Returns every node with a current trace and the time range it covers
// @Tags         nodes
// @Produce      json
// @Success      200  {object}  NodeListResponse
// @Failure      500  {object}  ErrorResponse
// @Router       /api/v1/nodes [get]
func (h *Handler) ListNodes(w http.ResponseWriter, r *http.Request) {
	ids, err := h.store.Nodes(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
		return
	}

	infos := make([]models.TraceInfo, 0, len(ids))
	for _, id := range ids {
		tr, err := h.store.Trace(r.Context(), id)
		if err != nil {
			writeStoreError(w, err)
			return
		}
		infos = append(infos, trace.Info(tr))
	}

	writeJSON(w, http.StatusOK, NodeListResponse{
		Data:  infos,
		Count: len(infos),
	})
}

// GetNode godoc
// @Summary      Get node trace information
// @Description  Returns the time range, sample count and sampling period of a node's trace
// @Tags         nodes
// @Produce      json
// @Param        id   path      int  true  "Node ID"
// @Success      200  {object}  models.TraceInfo
// @Failure      400  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /api/v1/nodes/{id} [get]
func (h *Handler) GetNode(w http.ResponseWriter, r *http.Request) {
	tr, ok := h.lookup(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, trace.Info(tr))
}

// Interpolate godoc
// @Summary      Interpolate current
// @Description  Returns the current at a point in time, linearly interpolated between samples. The value is null outside the trace.
// @Tags         nodes
// @Produce      json
// @Param        id    path      int  true  "Node ID"
// @Param        time  query     int  true  "Timestamp in 10ns units"
// @Success      200  {object}  ValueResponse
// @Failure      400  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Failure      500  {object}  ErrorResponse
// @Router       /api/v1/nodes/{id}/interpolate [get]
func (h *Handler) Interpolate(w http.ResponseWriter, r *http.Request) {
	tr, ok := h.lookup(w, r)
	if !ok {
		return
	}

	at, err := requireTime(r, "time")
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}

	v, found, err := tr.InterpolateAt(at)
	if err != nil {
		writeStoreError(w, err)
		return
	}

	resp := ValueResponse{NodeID: tr.NodeID(), Time: at}
	if found {
		resp.Value = &v
	}
	writeJSON(w, http.StatusOK, resp)
}

// Average godoc
// @Summary      Average current
// @Description  Returns the mean of all samples within [from, to], in either order. The value is null when the window holds no sample.
// @Tags         nodes
// @Produce      json
// @Param        id    path      int  true  "Node ID"
// @Param        from  query     int  true  "Window bound in 10ns units"
// @Param        to    query     int  true  "Window bound in 10ns units"
// @Success      200  {object}  AverageResponse
// @Failure      400  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Failure      500  {object}  ErrorResponse
// @Router       /api/v1/nodes/{id}/average [get]
func (h *Handler) Average(w http.ResponseWriter, r *http.Request) {
	tr, ok := h.lookup(w, r)
	if !ok {
		return
	}

	from, err := requireTime(r, "from")
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}
	to, err := requireTime(r, "to")
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}

	v, found, err := tr.AverageIn(from, to)
	if err != nil {
		writeStoreError(w, err)
		return
	}

	resp := AverageResponse{NodeID: tr.NodeID(), From: from, To: to}
	if found {
		resp.Value = &v
	}
	writeJSON(w, http.StatusOK, resp)
}

// Samples godoc
// @Summary      Get samples
// @Description  Returns samples covering [start, end] such that no feature wider than max_delta_t is lost
// @Tags         nodes
// @Produce      json
// @Param        id           path      int  true   "Node ID"
// @Param        start        query     int  false  "Window start in 10ns units, defaults to the first sample"
// @Param        end          query     int  false  "Window end in 10ns units, defaults to the last sample"
// @Param        max_delta_t  query     int  false  "Resolution in 10ns units, defaults to one plot pixel"
// @Success      200  {object}  SamplesResponse
// @Failure      400  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Failure      500  {object}  ErrorResponse
// @Router       /api/v1/nodes/{id}/samples [get]
func (h *Handler) Samples(w http.ResponseWriter, r *http.Request) {
	tr, ok := h.lookup(w, r)
	if !ok {
		return
	}

	start, end, err := window(r, tr)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}

	maxDeltaT := max((end-start)/int64(h.config.DefaultWidth), 1)
	if s := r.URL.Query().Get("max_delta_t"); s != "" {
		maxDeltaT, err = strconv.ParseInt(s, 10, 64)
		if err != nil || maxDeltaT < 1 {
			writeError(w, http.StatusBadRequest, "bad_request", "Invalid max_delta_t parameter")
			return
		}
	}

	seq, err := tr.MeasurementsCovering(start, end, maxDeltaT)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	samples := trace.Collect(seq)
	if samples == nil {
		samples = []models.Sample{}
	}

	writeJSON(w, http.StatusOK, SamplesResponse{
		NodeID:    tr.NodeID(),
		Start:     start,
		End:       end,
		MaxDeltaT: maxDeltaT,
		Data:      samples,
		Count:     len(samples),
	})
}

// Plot godoc
// @Summary      Plot current
// @Description  Renders the current of a node over [start, end] as a PNG image
// @Tags         nodes
// @Produce      png
// @Param        id      path      int  true   "Node ID"
// @Param        start   query     int  false  "Window start in 10ns units, defaults to the first sample"
// @Param        end     query     int  false  "Window end in 10ns units, defaults to the last sample"
// @Param        width   query     int  false  "Image width in pixels"   default(1200)
// @Param        height  query     int  false  "Image height in pixels"  default(300)
// @Success      200  {file}    binary
// @Failure      400  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Failure      500  {object}  ErrorResponse
// @Router       /api/v1/nodes/{id}/plot.png [get]
func (h *Handler) Plot(w http.ResponseWriter, r *http.Request) {
	tr, ok := h.lookup(w, r)
	if !ok {
		return
	}

	start, end, err := window(r, tr)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}
	width, err := queryInt(r, "width", h.config.DefaultWidth)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}
	height, err := queryInt(r, "height", h.config.DefaultHeight)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}
	width = min(width, h.config.MaxWidth)

	win := render.Window{Start: start, End: end, Width: width, Height: height}
	if err := win.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}

	var buf bytes.Buffer
	opts := render.Options{
		MaxCurrent: h.config.MaxCurrent,
		Title:      fmt.Sprintf("node %d", tr.NodeID()),
	}
	if err := render.PNG(&buf, []trace.Trace{tr}, win, opts); err != nil {
		writeStoreError(w, err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

// ListGpio godoc
// @Summary      Get GPIO events
// @Description  Returns the level changes of one pin of a node. With start and end, the events covering the window are returned.
// @Tags         events
// @Produce      json
// @Param        node   query     int     true   "Node ID"
// @Param        pin    query     string  true   "Pin name"  example(LED1)
// @Param        start  query     int     false  "Window start in 10ns units"
// @Param        end    query     int     false  "Window end in 10ns units"
// @Success      200  {object}  GpioResponse
// @Failure      400  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /api/v1/gpio [get]
func (h *Handler) ListGpio(w http.ResponseWriter, r *http.Request) {
	if h.gpio == nil {
		writeError(w, http.StatusNotFound, "not_found", "No GPIO trace loaded")
		return
	}

	node, err := strconv.Atoi(r.URL.Query().Get("node"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "Invalid node parameter")
		return
	}
	name := r.URL.Query().Get("pin")
	if name == "" {
		writeError(w, http.StatusBadRequest, "bad_request", "pin parameter is required")
		return
	}

	pin := h.gpio.Pin(node, name)
	if pin == nil {
		writeError(w, http.StatusNotFound, "not_found", fmt.Sprintf("no events for pin %s of node %d", name, node))
		return
	}

	events, err := eventWindow(r, pin.Events, pin.EventsCovering)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, GpioResponse{
		Data:  events,
		Count: len(events),
	})
}

// ListSerial godoc
// @Summary      Get serial output
// @Description  Returns the serial output of all nodes, optionally restricted to [start, end]
// @Tags         events
// @Produce      json
// @Param        start  query     int  false  "Window start in 10ns units"
// @Param        end    query     int  false  "Window end in 10ns units"
// @Success      200  {object}  SerialResponse
// @Failure      400  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /api/v1/serial [get]
func (h *Handler) ListSerial(w http.ResponseWriter, r *http.Request) {
	if h.serial == nil {
		writeError(w, http.StatusNotFound, "not_found", "No serial output loaded")
		return
	}

	events, err := eventWindow(r, h.serial.Events, h.serial.Covering)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, SerialResponse{
		Data:  events,
		Count: len(events),
	})
}

// eventWindow selects all events, or those covering [start, end] when
// both bounds are given.
func eventWindow[E any](r *http.Request, all func() []E, covering func(start, end int64) []E) ([]E, error) {
	start, hasStart, err := queryTime(r, "start")
	if err != nil {
		return nil, err
	}
	end, hasEnd, err := queryTime(r, "end")
	if err != nil {
		return nil, err
	}

	var events []E
	switch {
	case hasStart && hasEnd:
		events = covering(start, end)
	case hasStart || hasEnd:
		return nil, errors.New("start and end must be given together")
	default:
		events = all()
	}
	if events == nil {
		events = []E{}
	}
	return events, nil
}

// GetStats godoc
// @Summary      Get storage statistics
// @Description  Returns node and sample counts and downsample cache statistics
// @Tags         stats
// @Produce      json
// @Success      200  {object}  storage.StorageStats
// @Router       /api/v1/stats [get]
func (h *Handler) GetStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.store.Stats(r.Context()))
}
