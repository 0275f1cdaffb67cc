package params

import (
	"fmt"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/willbeason/fractal-canopy/internal/logging"
	"github.com/willbeason/fractal-canopy/pkg/geometry"
	"github.com/willbeason/fractal-canopy/pkg/render"
	"github.com/willbeason/fractal-canopy/pkg/tree"
)

// Observer is notified about every render pass and rejected parameter.
type Observer interface {
	PassCompleted(segments int, elapsed time.Duration, err error)
	ParameterRejected(name string)
}

// Store owns the RenderParameters of a canopy and the Surface it is drawn on.
//
// Every change, resize, or explicit Redraw recomputes the trunk from the
// surface's current size and redraws the whole canopy. Passes are serialized,
// so a pass always runs to completion before the next begins.
type Store struct {
	mu sync.Mutex

	params     RenderParameters
	surface    render.Surface
	maxAmount  int
	maxSurface int

	logger   *slog.Logger
	observer Observer
}

type Option func(*Store)

func WithLogger(l *slog.Logger) Option {
	return func(s *Store) {
		s.logger = l
	}
}

func WithObserver(o Observer) Option {
	return func(s *Store) {
		s.observer = o
	}
}

// WithMaxAmount changes the upper bound on Amount. Zero or less removes it.
func WithMaxAmount(n int) Option {
	return func(s *Store) {
		s.maxAmount = n
	}
}

// WithMaxSurface changes the largest width or height accepted by
// ResizeSurface. Zero or less removes the bound.
func WithMaxSurface(n int) Option {
	return func(s *Store) {
		s.maxSurface = n
	}
}

// NewStore returns a Store drawing on surface. Nothing is drawn until the
// first setter, Resize, or Redraw.
func NewStore(surface render.Surface, p RenderParameters, opts ...Option) (*Store, error) {
	s := &Store{
		params:     p,
		surface:    surface,
		maxAmount:  DefaultMaxAmount,
		maxSurface: DefaultMaxSurface,
		logger:     logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	err := s.validate(p)
	if err != nil {
		return nil, err
	}

	return s, nil
}

// Parameters returns a copy of the current parameters.
func (s *Store) Parameters() RenderParameters {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.params
}

func (s *Store) SetHeight(v float64) error {
	return s.update(Height, v, func(p *RenderParameters) { p.Height = v })
}

func (s *Store) SetHeightFactor(v float64) error {
	return s.update(HeightFactor, v, func(p *RenderParameters) { p.HeightFactor = v })
}

func (s *Store) SetAmount(v int) error {
	return s.update(Amount, float64(v), func(p *RenderParameters) { p.Amount = v })
}

func (s *Store) SetThickness(v float64) error {
	return s.update(Thickness, v, func(p *RenderParameters) { p.Thickness = v })
}

// SetAngleDegrees sets the branch angle, given in degrees.
func (s *Store) SetAngleDegrees(v float64) error {
	return s.update(Angle, v, func(p *RenderParameters) { p.Angle = Radians(v) })
}

// Set changes the parameter called name. Angles are in degrees and amounts
// must be whole numbers.
func (s *Store) Set(name string, v float64) error {
	switch name {
	case Height:
		return s.SetHeight(v)
	case HeightFactor:
		return s.SetHeightFactor(v)
	case Amount:
		if v != math.Trunc(v) {
			return s.reject(name, v, fmt.Errorf("%w: %s must be a whole number, got %v", ErrInvalidParameter, name, v))
		}
		if math.Abs(v) > math.MaxInt32 {
			return s.reject(name, v, fmt.Errorf("%w: %s %v is out of range", ErrInvalidParameter, name, v))
		}
		return s.SetAmount(int(v))
	case Thickness:
		return s.SetThickness(v)
	case Angle:
		return s.SetAngleDegrees(v)
	}

	return fmt.Errorf("%w: unknown parameter %q", ErrInvalidParameter, name)
}

// Resize redraws the canopy for the surface's current size.
func (s *Store) Resize() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.pass()
}

// ResizeSurface calls resize with the new dimensions and redraws the canopy,
// holding the lock across both so no reader sees the cleared surface.
// Dimensions must be positive and within the store's surface bound.
func (s *Store) ResizeSurface(width, height int, resize func(width, height int) error) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("%w: surface must be positive, got %dx%d", ErrInvalidParameter, width, height)
	}
	if s.maxSurface > 0 && (width > s.maxSurface || height > s.maxSurface) {
		return fmt.Errorf("%w: surface %dx%d exceeds %d pixels per side", ErrInvalidParameter, width, height, s.maxSurface)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if root := geometry.Trunk(float64(width), float64(height), s.params.Height); root.IsDegenerate() {
		return fmt.Errorf("%w: %s %v collapses the trunk on a %dx%d surface",
			ErrInvalidParameter, Height, s.params.Height, width, height)
	}

	err := resize(width, height)
	if err != nil {
		return err
	}

	return s.pass()
}

// Redraw redraws the canopy with the current parameters.
func (s *Store) Redraw() error {
	return s.Resize()
}

// Do calls f with the current parameters while no pass can run, for reading
// or reconfiguring the surface between passes.
func (s *Store) Do(f func(RenderParameters) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return f(s.params)
}

// Segments returns the canopy for the current parameters and surface size
// without drawing it.
func (s *Store) Segments() ([]tree.Emitted, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	root, height := s.trunk()
	return tree.Collect(root, height, s.params.HeightFactor, s.params.Angle, s.params.Amount)
}

func (s *Store) update(name string, v float64, apply func(*RenderParameters)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.params
	apply(&next)

	err := s.validate(next)
	if err != nil {
		return s.reject(name, v, err)
	}

	s.params = next
	return s.pass()
}

func (s *Store) reject(name string, v float64, err error) error {
	s.logger.Warn("parameter rejected", "parameter", name, "value", v, "error", err)
	if s.observer != nil {
		s.observer.ParameterRejected(name)
	}
	return err
}

// validate checks p on its own and against the current surface: a Height
// too small to move the trunk's top off its base would fail every pass.
func (s *Store) validate(p RenderParameters) error {
	err := p.Validate(s.maxAmount)
	if err != nil {
		return err
	}

	w, h := s.surface.Size()
	if geometry.Trunk(w, h, p.Height).IsDegenerate() {
		return fmt.Errorf("%w: %s %v collapses the trunk on a %gx%g surface", ErrInvalidParameter, Height, p.Height, w, h)
	}

	return nil
}

// trunk returns the root segment anchored at the bottom center of the
// surface and the length of its first branches, one decay step shorter.
func (s *Store) trunk() (geometry.Segment, float64) {
	w, h := s.surface.Size()
	return geometry.Trunk(w, h, s.params.Height), s.params.Height / s.params.HeightFactor
}

// pass must be called with mu held.
func (s *Store) pass() error {
	start := time.Now()
	n, err := s.draw()
	elapsed := time.Since(start)

	if s.observer != nil {
		s.observer.PassCompleted(n, elapsed, err)
	}
	if err != nil {
		s.logger.Error("render pass failed", "segments", n, "error", err)
		return err
	}

	s.logger.Debug("render pass",
		"segments", n,
		"elapsed", elapsed,
		"height", s.params.Height,
		"height_factor", s.params.HeightFactor,
		"amount", s.params.Amount,
		"thickness", s.params.Thickness,
		"angle_degrees", Degrees(s.params.Angle),
	)
	return nil
}

func (s *Store) draw() (int, error) {
	root, height := s.trunk()

	seq, err := tree.Generate(root, height, s.params.HeightFactor, s.params.Angle, s.params.Amount)
	if err != nil {
		return 0, err
	}

	err = s.surface.Clear()
	if err != nil {
		return 0, fmt.Errorf("clearing surface: %w", err)
	}

	return render.Renderer{Thickness: s.params.Thickness}.Render(s.surface, seq)
}
