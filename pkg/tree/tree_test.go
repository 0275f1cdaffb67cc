package tree

import (
	"math"
	"slices"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/willbeason/fractal-canopy/pkg/geometry"
)

const degrees = math.Pi / 180

var upright = geometry.Segment{
	From: geometry.XY{X: 0, Y: 100},
	To:   geometry.XY{X: 0, Y: 0},
}

func collect(t *testing.T, root geometry.Segment, height, factor, angle float64, budget int) []Emitted {
	t.Helper()
	got, err := Collect(root, height, factor, angle, budget)
	require.NoError(t, err)
	return got
}

func TestGenerate_Count(t *testing.T) {
	for budget := 0; budget <= 8; budget++ {
		got := collect(t, upright, 50, 1.25, 15*degrees, budget)
		assert.Len(t, got, Count(budget), "budget %d", budget)
	}

	assert.Equal(t, 1, Count(0))
	assert.Equal(t, 3, Count(1))
	assert.Equal(t, 7, Count(2))
	assert.Equal(t, 15, Count(3))
	assert.Equal(t, math.MaxInt, Count(100))
}

func TestGenerate_NonPositiveBudget(t *testing.T) {
	for _, budget := range []int{0, -1, -10} {
		got := collect(t, upright, 50, 1.25, 15*degrees, budget)
		require.Len(t, got, 1)
		assert.Equal(t, Emitted{Segment: upright, Weight: budget, Side: Trunk}, got[0])
	}
}

func TestGenerate_RootFirst(t *testing.T) {
	root := geometry.Segment{From: geometry.XY{X: 400, Y: 600}, To: geometry.XY{X: 410, Y: 420}}
	got := collect(t, root, 30, 1.5, 0.3, 5)

	assert.Equal(t, Emitted{Segment: root, Weight: 5, Depth: 0, Side: Trunk}, got[0])
}

func TestGenerate_Scenario(t *testing.T) {
	// A 100 tall surface anchored at x=0.
	got := collect(t, upright, 50, 1.25, 15*degrees, 2)
	require.Len(t, got, 7)

	assert.Equal(t, upright, got[0].Segment)

	for i, e := range got[1:3] {
		assert.InDelta(t, 50, e.Length(), 1e-9, "segment %d", i+2)
		assert.Equal(t, 2, e.Weight)
	}
	for i, e := range got[3:] {
		assert.InDelta(t, 40, e.Length(), 1e-9, "segment %d", i+4)
		assert.Equal(t, 1, e.Weight)
	}

	sin, cos := math.Sincos(15 * degrees)
	want := []Emitted{
		{Segment: upright, Weight: 2, Side: Trunk},
		{Segment: geometry.Segment{To: geometry.XY{X: 50 * sin, Y: -50 * cos}}, Weight: 2, Side: Left},
		{Segment: geometry.Segment{To: geometry.XY{X: -50 * sin, Y: -50 * cos}}, Weight: 2, Side: Right},
	}
	if d := cmp.Diff(want, got[:3], cmpopts.EquateApprox(0, 1e-9)); d != "" {
		t.Error(d)
	}
}

func TestGenerate_PreOrder(t *testing.T) {
	got := collect(t, upright, 50, 1.25, 15*degrees, 2)

	var sides []Side
	for _, e := range got {
		sides = append(sides, e.Side)
	}
	assert.Equal(t, []Side{Trunk, Left, Right, Left, Right, Left, Right}, sides)

	// The first pair of grandchildren grows from the left child's tip.
	assert.Equal(t, got[1].To, got[3].From)
	assert.Equal(t, got[1].To, got[4].From)
	assert.Equal(t, got[2].To, got[5].From)
	assert.Equal(t, got[2].To, got[6].From)
}

func TestGenerate_WeightDecay(t *testing.T) {
	const budget = 6
	for _, e := range collect(t, upright, 50, 1.25, 20*degrees, budget) {
		assert.Equal(t, budget-e.Depth, e.Weight)
	}
}

func TestGenerate_HeightDecay(t *testing.T) {
	const (
		height = 80.0
		factor = 1.6
	)
	for _, e := range collect(t, upright, height, factor, 25*degrees, 6) {
		if e.Side == Trunk {
			continue
		}
		want := height / math.Pow(factor, float64(e.Depth))
		assert.InDelta(t, want, e.Length(), 1e-9)
	}
}

func TestGenerate_Symmetry(t *testing.T) {
	for _, angle := range []float64{1 * degrees, 15 * degrees, 45 * degrees, 89 * degrees} {
		got := collect(t, upright, 50, 1.25, angle, 4)

		// Every junction emits its left child immediately followed by its right.
		parents := map[geometry.XY]geometry.Vector{got[0].To: got[0].Vector()}
		for i := 1; i < len(got); i += 2 {
			l, r := got[i], got[i+1]
			require.Equal(t, Left, l.Side)
			require.Equal(t, Right, r.Side)
			require.Equal(t, l.From, r.From)

			v, ok := parents[l.From]
			require.True(t, ok, "no parent ends at %v", l.From)

			lv, rv := l.Vector(), r.Vector()
			assert.InDelta(t, lv.Dot(v), rv.Dot(v), 1e-9)
			assert.InDelta(t, lv.Cross(v), -rv.Cross(v), 1e-9)
			assert.NotZero(t, lv.Cross(v))

			parents[l.To] = lv
			parents[r.To] = rv
		}
	}
}

func TestGenerate_DegenerateRoot(t *testing.T) {
	root := geometry.Segment{From: geometry.XY{X: 5, Y: 5}, To: geometry.XY{X: 5, Y: 5}}

	seq, err := Generate(root, 50, 1.25, 15*degrees, 3)
	assert.ErrorIs(t, err, ErrDegenerateRoot)
	assert.Nil(t, seq)

	_, err = Collect(root, 50, 1.25, 15*degrees, 0)
	assert.ErrorIs(t, err, ErrDegenerateRoot)
}

func TestGenerate_UncheckedFactor(t *testing.T) {
	// A negative factor flips every other level back through the junction.
	got := collect(t, upright, 50, -1, 0, 2)
	require.Len(t, got, 7)
	assert.InDelta(t, 50, got[3].Length(), 1e-9)
	assert.Equal(t, got[1].From, got[3].To)

	got = collect(t, upright, 50, 0, 15*degrees, 2)
	require.Len(t, got, 7)
	assert.True(t, got[3].To.IsInf())
}

func TestGenerate_StopEarly(t *testing.T) {
	seq, err := Generate(upright, 50, 1.25, 15*degrees, 10)
	require.NoError(t, err)

	n := 0
	for range seq {
		n++
		if n == 5 {
			break
		}
	}
	assert.Equal(t, 5, n)
}

func TestGenerate_Repeatable(t *testing.T) {
	seq, err := Generate(upright, 50, 1.25, 15*degrees, 4)
	require.NoError(t, err)

	assert.Equal(t, slices.Collect(seq), slices.Collect(seq))
}

func TestSide_String(t *testing.T) {
	assert.Equal(t, "trunk", Trunk.String())
	assert.Equal(t, "left", Left.String())
	assert.Equal(t, "right", Right.String())
	assert.Equal(t, "Side(7)", Side(7).String())
}
