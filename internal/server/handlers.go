package server

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/subarch/pkg/arch"
	"github.com/matzehuels/subarch/pkg/device"
	"github.com/matzehuels/subarch/pkg/errors"
	"github.com/matzehuels/subarch/pkg/pipeline"
	"github.com/matzehuels/subarch/pkg/poset"
	"github.com/matzehuels/subarch/pkg/subarch"
)

// =============================================================================
// Response bodies
// =============================================================================

// DeviceInfo describes a bundled device.
type DeviceInfo struct {
	Name        string      `json:"name"`
	Vendor      string      `json:"vendor,omitempty"`
	Description string      `json:"description,omitempty"`
	Qubits      int         `json:"qubits"`
	Coupling    []arch.Pair `json:"coupling"`
}

// DeviceDetail is a device together with its order statistics.
type DeviceDetail struct {
	DeviceInfo
	Stats    subarch.Stats `json:"stats"`
	ArchHash string        `json:"arch_hash"`
}

// Subarchitecture is one class representative placed on the device.
type Subarchitecture struct {
	Class    poset.Class `json:"class"`
	Qubits   []int       `json:"qubits"`
	Coupling []arch.Pair `json:"coupling"`
}

// QueryResult is returned by the candidates and covering routes.
type QueryResult struct {
	Device  string            `json:"device"`
	Qubits  int               `json:"qubits"`
	Size    int               `json:"size,omitempty"`
	Classes []Subarchitecture `json:"classes"`
}

type errorBody struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
}

// =============================================================================
// Handlers
// =============================================================================

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleDevices(w http.ResponseWriter, r *http.Request) {
	all := device.All()
	out := make([]DeviceInfo, len(all))
	for i, d := range all {
		out[i] = deviceInfo(d)
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleDevice(w http.ResponseWriter, r *http.Request) {
	res, ok := s.order(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, DeviceDetail{
		DeviceInfo: deviceInfo(res.Device),
		Stats:      res.Order.Stats(),
		ArchHash:   res.ArchHash,
	})
}

func (s *Server) handleCandidates(w http.ResponseWriter, r *http.Request) {
	k, err := intParam(r, "qubits", true)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	res, ok := s.order(w, r)
	if !ok {
		return
	}
	classes, err := res.Order.OptimalClasses(k)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, QueryResult{
		Device:  res.Name,
		Qubits:  k,
		Classes: subarchitectures(res.Order, classes),
	})
}

func (s *Server) handleCovering(w http.ResponseWriter, r *http.Request) {
	k, err := intParam(r, "qubits", true)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	size, err := intParam(r, "size", true)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	res, ok := s.order(w, r)
	if !ok {
		return
	}
	classes, err := res.Order.CoveringClasses(k, size)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, QueryResult{
		Device:  res.Name,
		Qubits:  k,
		Size:    size,
		Classes: subarchitectures(res.Order, classes),
	})
}

func (s *Server) handleOrderDOT(w http.ResponseWriter, r *http.Request) {
	k, err := intParam(r, "qubits", false)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	res, ok := s.order(w, r)
	if !ok {
		return
	}
	data, _, err := s.runner.Render(r.Context(), res, pipeline.RenderOptions{
		Kind:      pipeline.KindOrder,
		Format:    pipeline.FormatDOT,
		Qubits:    k,
		Desirable: r.URL.Query().Get("desirable") == "true",
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/vnd.graphviz; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

// order resolves the {name} parameter and loads its order, writing an
// error response on failure.
func (s *Server) order(w http.ResponseWriter, r *http.Request) (*pipeline.Result, bool) {
	name := chi.URLParam(r, "name")
	if err := errors.ValidateDeviceName(name); err != nil {
		s.writeError(w, r, err)
		return nil, false
	}
	if _, err := device.Lookup(name); err != nil {
		s.writeError(w, r, err)
		return nil, false
	}
	res, err := s.load(r.Context(), name)
	if err != nil {
		s.writeError(w, r, err)
		return nil, false
	}
	return res, true
}

// =============================================================================
// Helpers
// =============================================================================

func deviceInfo(d *device.Device) DeviceInfo {
	return DeviceInfo{
		Name:        d.Name,
		Vendor:      d.Vendor,
		Description: d.Description,
		Qubits:      d.Qubits,
		Coupling:    d.Pairs(),
	}
}

func subarchitectures(o *subarch.Order, classes []poset.Class) []Subarchitecture {
	out := make([]Subarchitecture, 0, len(classes))
	for _, c := range classes {
		g, ok := o.Subgraph(c)
		if !ok {
			continue
		}
		out = append(out, Subarchitecture{Class: c, Qubits: g.Labels(), Coupling: g.CouplingMap()})
	}
	return out
}

func intParam(r *http.Request, name string, required bool) (int, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		if required {
			return 0, errors.New(errors.ErrCodeInvalidInput, "missing query parameter %q", name)
		}
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, errors.New(errors.ErrCodeInvalidInput, "query parameter %q must be an integer, got %q", name, v)
	}
	return n, nil
}

// statusFor maps error codes to HTTP statuses.
func statusFor(err error) int {
	switch {
	case errors.IsNotFound(err):
		return http.StatusNotFound
	case errors.IsInvalid(err):
		return http.StatusBadRequest
	case errors.Is(err, errors.ErrCodeTimeout), stderrors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, errors.ErrCodeUnsupported):
		return http.StatusNotImplemented
	}
	return http.StatusInternalServerError
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	code := string(errors.GetCode(err))
	if code == "" {
		code = string(errors.ErrCodeInternal)
	}
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "id", RequestID(r.Context()), "path", r.URL.Path, "err", err)
	}
	writeJSON(w, status, errorBody{
		Code:      code,
		Message:   errors.UserMessage(err),
		RequestID: RequestID(r.Context()),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}
