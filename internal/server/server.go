package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/willbeason/fractal-canopy/pkg/geometry"
	"github.com/willbeason/fractal-canopy/pkg/params"
	"github.com/willbeason/fractal-canopy/pkg/tree"
)

// Store is the part of params.Store the server drives.
type Store interface {
	Parameters() params.RenderParameters
	Set(name string, v float64) error
	ResizeSurface(width, height int, resize func(width, height int) error) error
	Do(f func(params.RenderParameters) error) error
	Segments() ([]tree.Emitted, error)
}

// Canvas is the raster surface the Store draws on.
type Canvas interface {
	Resize(width, height int) error
	EncodePNG(w io.Writer) error
}

// Server exposes the canopy parameters over HTTP. Every accepted change
// redraws the canopy before the response is written.
type Server struct {
	Store  Store
	Canvas Canvas
	Logger *slog.Logger
}

// NewHandler returns the router for s. Metrics from gatherer are served on
// /metrics when it is not nil.
func NewHandler(s *Server, gatherer prometheus.Gatherer) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/health", s.Health)
	r.Get("/params", s.GetParams)
	r.Put("/params/{name}", s.PutParam)
	r.Post("/resize", s.PostResize)
	r.Get("/canopy.png", s.GetImage)
	r.Get("/segments", s.GetSegments)

	if gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}

	return r
}

// ParamsResponse is the JSON form of the current parameters.
type ParamsResponse struct {
	params.RenderParameters
	AngleDegrees float64 `json:"angleDegrees"`
}

type valueRequest struct {
	Value *float64 `json:"value"`
}

type resizeRequest struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Segment is the JSON form of an emitted segment.
type Segment struct {
	From   geometry.XY `json:"from"`
	To     geometry.XY `json:"to"`
	Weight int         `json:"weight"`
	Depth  int         `json:"depth"`
	Side   string      `json:"side"`
}

func (s *Server) Health(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) GetParams(w http.ResponseWriter, _ *http.Request) {
	s.writeParams(w)
}

// PutParam handles PUT /params/{name} with a body of {"value": n}.
func (s *Server) PutParam(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	var body valueRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Value == nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := s.Store.Set(name, *body.Value); err != nil {
		s.fail(w, err)
		return
	}

	s.writeParams(w)
}

// PostResize handles POST /resize with a body of {"width": w, "height": h}.
// The canvas is resized and redrawn in one pass.
func (s *Server) PostResize(w http.ResponseWriter, r *http.Request) {
	var body resizeRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := s.Store.ResizeSurface(body.Width, body.Height, s.Canvas.Resize); err != nil {
		s.fail(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) GetImage(w http.ResponseWriter, _ *http.Request) {
	var buf bytes.Buffer
	err := s.Store.Do(func(params.RenderParameters) error {
		return s.Canvas.EncodePNG(&buf)
	})
	if err != nil {
		s.fail(w, err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	if _, err := buf.WriteTo(w); err != nil {
		s.logger().Warn("writing image", "error", err)
	}
}

func (s *Server) GetSegments(w http.ResponseWriter, _ *http.Request) {
	emitted, err := s.Store.Segments()
	if err != nil {
		s.fail(w, err)
		return
	}

	out := make([]Segment, len(emitted))
	for i, e := range emitted {
		out[i] = Segment{
			From:   e.From,
			To:     e.To,
			Weight: e.Weight,
			Depth:  e.Depth,
			Side:   e.Side.String(),
		}
	}

	s.writeJSON(w, http.StatusOK, out)
}

func (s *Server) writeParams(w http.ResponseWriter) {
	p := s.Store.Parameters()
	s.writeJSON(w, http.StatusOK, ParamsResponse{
		RenderParameters: p,
		AngleDegrees:     params.Degrees(p.Angle),
	})
}

func (s *Server) fail(w http.ResponseWriter, err error) {
	if errors.Is(err, params.ErrInvalidParameter) {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	s.logger().Error("request failed", "error", err)
	http.Error(w, err.Error(), http.StatusInternalServerError)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger().Warn("encoding response", "error", err)
	}
}

func (s *Server) logger() *slog.Logger {
	if s.Logger == nil {
		return slog.Default()
	}
	return s.Logger
}
