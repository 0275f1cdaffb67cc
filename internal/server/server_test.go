package server

import (
	"bytes"
	"encoding/json"
	"image/png"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/willbeason/fractal-canopy/internal/logging"
	"github.com/willbeason/fractal-canopy/internal/metrics"
	"github.com/willbeason/fractal-canopy/pkg/params"
	"github.com/willbeason/fractal-canopy/pkg/render"
	"github.com/willbeason/fractal-canopy/pkg/tree"
)

func newTestHandler(t *testing.T) (http.Handler, *params.Store, *render.Canvas) {
	t.Helper()

	canvas := render.NewCanvas(200, 150)
	t.Cleanup(func() { _ = canvas.Close() })

	reg := prometheus.NewRegistry()
	collector, err := metrics.NewCollector(reg)
	require.NoError(t, err)

	p := params.Defaults()
	p.Height = 40
	p.Amount = 4

	store, err := params.NewStore(canvas, p, params.WithObserver(collector))
	require.NoError(t, err)
	require.NoError(t, store.Redraw())

	s := &Server{Store: store, Canvas: canvas, Logger: logging.NewNop()}
	return NewHandler(s, reg), store, canvas
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestGetHealth(t *testing.T) {
	h, _, _ := newTestHandler(t)

	rr := do(t, h, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rr.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp["status"])
}

func TestGetParams(t *testing.T) {
	h, _, _ := newTestHandler(t)

	rr := do(t, h, http.MethodGet, "/params", "")
	assert.Equal(t, http.StatusOK, rr.Code)

	var resp ParamsResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, 40.0, resp.Height)
	assert.Equal(t, 4, resp.Amount)
	assert.InDelta(t, 15.0, resp.AngleDegrees, 1e-9)
}

func TestPutParam(t *testing.T) {
	h, store, _ := newTestHandler(t)

	rr := do(t, h, http.MethodPut, "/params/angle", `{"value": 45}`)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.InDelta(t, params.Radians(45), store.Parameters().Angle, 1e-12)

	rr = do(t, h, http.MethodPut, "/params/amount", `{"value": 2}`)
	assert.Equal(t, http.StatusOK, rr.Code)

	var resp ParamsResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.Amount)
}

func TestPutParam_Rejected(t *testing.T) {
	h, store, _ := newTestHandler(t)
	before := store.Parameters()

	tcs := []struct {
		path, body string
	}{
		{"/params/height", `{"value": -1}`},
		{"/params/height", `{"value": 1e-14}`},
		{"/params/amount", `{"value": 1.5}`},
		{"/params/amount", `{"value": 1e12}`},
		{"/params/amount", `{"value": 1000}`},
		{"/params/colour", `{"value": 1}`},
		{"/params/height", `{}`},
		{"/params/height", `not json`},
	}
	for _, tc := range tcs {
		rr := do(t, h, http.MethodPut, tc.path, tc.body)
		assert.Equal(t, http.StatusBadRequest, rr.Code, "%s %s", tc.path, tc.body)
	}

	assert.Equal(t, before, store.Parameters())

	rr := do(t, h, http.MethodPut, "/params/thickness", `{"value": 5}`)
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestPostResize(t *testing.T) {
	h, _, canvas := newTestHandler(t)

	rr := do(t, h, http.MethodPost, "/resize", `{"width": 320, "height": 240}`)
	assert.Equal(t, http.StatusNoContent, rr.Code)

	w, ht := canvas.Size()
	assert.Equal(t, 320.0, w)
	assert.Equal(t, 240.0, ht)

	rr = do(t, h, http.MethodGet, "/segments", "")
	var segments []Segment
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &segments))
	assert.Equal(t, 160.0, segments[0].From.X)
	assert.Equal(t, 240.0, segments[0].From.Y)

	rr = do(t, h, http.MethodPost, "/resize", `{"width": 0, "height": 240}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestPostResize_TooLarge(t *testing.T) {
	h, _, canvas := newTestHandler(t)

	for _, body := range []string{
		`{"width": 2147483648, "height": 2147483648}`,
		`{"width": 8193, "height": 100}`,
		`{"width": 100, "height": 8193}`,
	} {
		rr := do(t, h, http.MethodPost, "/resize", body)
		assert.Equal(t, http.StatusBadRequest, rr.Code, body)
	}

	w, ht := canvas.Size()
	assert.Equal(t, 200.0, w)
	assert.Equal(t, 150.0, ht)

	rr := do(t, h, http.MethodGet, "/canopy.png", "")
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestGetImage(t *testing.T) {
	h, _, _ := newTestHandler(t)

	rr := do(t, h, http.MethodGet, "/canopy.png", "")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "image/png", rr.Header().Get("Content-Type"))

	img, err := png.Decode(bytes.NewReader(rr.Body.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, 200, img.Bounds().Dx())
	assert.Equal(t, 150, img.Bounds().Dy())
}

func TestGetSegments(t *testing.T) {
	h, _, _ := newTestHandler(t)

	rr := do(t, h, http.MethodGet, "/segments", "")
	assert.Equal(t, http.StatusOK, rr.Code)

	var segments []Segment
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &segments))
	require.Len(t, segments, tree.Count(4))

	assert.Equal(t, "trunk", segments[0].Side)
	assert.Equal(t, 4, segments[0].Weight)
	assert.Equal(t, "left", segments[1].Side)
	assert.Equal(t, "right", segments[2].Side)
}

func TestGetMetrics(t *testing.T) {
	h, _, _ := newTestHandler(t)
	do(t, h, http.MethodPut, "/params/height", `{"value": 0}`)

	rr := do(t, h, http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, rr.Code)

	body := rr.Body.String()
	assert.Contains(t, body, `canopy_render_passes_total{result="ok"} 1`)
	assert.Contains(t, body, `canopy_parameter_rejections_total{parameter="height"} 1`)
	assert.Contains(t, body, "canopy_segments 31")
}
