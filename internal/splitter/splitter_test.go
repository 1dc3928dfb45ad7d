package splitter

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/banshee-data/trackfinder/internal/event"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mergedPairEvent is two close tracks on layers 0 and 1, pre-clustered
// into one label as a density clusterer would merge them.
func mergedPairEvent() event.Event {
	return event.Event{
		{Layer: 0, X: 1, Y: 0.01},
		{Layer: 0, X: 1, Y: -0.01},
		{Layer: 1, X: 1, Y: 0.02},
		{Layer: 1, X: 1, Y: -0.02},
	}
}

func TestSplitEvent_MergedPair(t *testing.T) {
	labels := []int{0, 0, 0, 0}

	got, err := New().SplitEvent(labels, mergedPairEvent())
	require.NoError(t, err)

	// phi(1, -0.01) wraps to just below 2π, so it is the larger angle.
	assert.Equal(t, []int{0, 1, 0, 1}, got)
	assert.Equal(t, []int{0, 0, 0, 0}, labels, "input must not be modified")
}

func TestSplitReport_RecordsRelabel(t *testing.T) {
	labels := []int{0, 0, 0, 0}
	layers := []int{0, 0, 1, 1}
	phi := []float64{0.10, 0.20, 0.11, 0.21}

	r, err := New().SplitReport(labels, layers, phi)
	require.NoError(t, err)

	require.Len(t, r.Relabels, 1)
	assert.Equal(t, Relabel{From: 0, To: 1, Hits: []int{1, 3}}, r.Relabels[0])
	assert.Equal(t, []int{0, 1, 0, 1}, r.Labels)
}

func TestSplit_NoClusters(t *testing.T) {
	labels := []int{-1, -1, -1}
	got, err := New().Split(labels, []int{0, 0, 1}, []float64{0.1, 0.2, 0.3})
	require.NoError(t, err)
	assert.Equal(t, labels, got)
}

func TestSplit_Empty(t *testing.T) {
	got, err := New().Split([]int{}, []int{}, []float64{})
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Len(t, got, 0)
}

func TestSplit_SingleAmbiguousLayerKeepsTrack(t *testing.T) {
	// Layer 2 has two hits, every other layer has one.
	labels := []int{3, 3, 3, 3, -1}
	layers := []int{0, 1, 2, 2, 2}
	phi := []float64{1.0, 1.01, 1.02, 1.03, 1.5}

	got, err := New().Split(labels, layers, phi)
	require.NoError(t, err)
	assert.Equal(t, labels, got)
}

func TestSplit_ThresholdIsTunable(t *testing.T) {
	labels := []int{0, 0, 0, 0}
	layers := []int{0, 0, 1, 1}
	phi := []float64{0.1, 0.2, 0.1, 0.2}

	got, err := Splitter{MinAmbiguousLayers: 3}.Split(labels, layers, phi)
	require.NoError(t, err)
	assert.Equal(t, labels, got, "two ambiguous layers must not split at threshold 3")

	got, err = Splitter{MinAmbiguousLayers: 1}.Split([]int{0, 0, 0}, []int{0, 0, 1}, []float64{0.1, 0.2, 0.1})
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 0}, got)

	got, err = Splitter{}.Split(labels, layers, phi)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 0, 1}, got, "zero value uses the default threshold")
}

func TestSplit_NewIDsAboveAllExisting(t *testing.T) {
	// Clusters 2 and 7 both hold merged pairs; 7 is the largest id, so the
	// new ids are 8 (for 2, processed first) and 9 (for 7).
	labels := []int{7, 7, 7, 7, 2, 2, 2, 2, -1}
	layers := []int{0, 0, 1, 1, 0, 0, 1, 1, 0}
	phi := []float64{3.0, 3.1, 3.0, 3.1, 1.0, 1.1, 1.0, 1.1, 5.0}

	got, err := New().Split(labels, layers, phi)
	require.NoError(t, err)
	assert.Equal(t, []int{7, 9, 7, 9, 2, 8, 2, 8, -1}, got)
}

func TestSplit_LargerPhiMoves(t *testing.T) {
	// Larger phi listed first on each layer.
	labels := []int{0, 0, 0, 0}
	layers := []int{4, 4, 6, 6}
	phi := []float64{0.5, 0.4, 0.52, 0.41}

	got, err := New().Split(labels, layers, phi)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 0, 1, 0}, got)
}

func TestSplit_EqualPhiTiesByHitOrder(t *testing.T) {
	labels := []int{0, 0, 0, 0}
	layers := []int{0, 0, 1, 1}
	phi := []float64{0.3, 0.3, 0.3, 0.3}

	got, err := New().Split(labels, layers, phi)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 0, 1}, got, "the later hit of a tie is the second track")
}

func TestSplit_ThreeHitLayerMovesOnlyExtreme(t *testing.T) {
	labels := []int{0, 0, 0, 0, 0}
	layers := []int{0, 0, 0, 1, 1}
	phi := []float64{0.2, 0.3, 0.1, 0.1, 0.2}

	got, err := New().Split(labels, layers, phi)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 0, 0, 1}, got)
}

func TestSplit_Deterministic(t *testing.T) {
	labels, layers, phi := randomInput(rand.New(rand.NewSource(7)), 200)

	first, err := New().Split(labels, layers, phi)
	require.NoError(t, err)
	second, err := New().Split(labels, layers, phi)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestSplit_IsRefinement(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for trial := 0; trial < 50; trial++ {
		labels, layers, phi := randomInput(rng, 1+rng.Intn(120))

		got, err := New().Split(labels, layers, phi)
		require.NoError(t, err)
		require.Len(t, got, len(labels))

		maxIn := -1
		for _, l := range labels {
			if l > maxIn {
				maxIn = l
			}
		}

		// Each output label maps back to exactly one input label.
		origin := make(map[int]int)
		for i := range labels {
			if labels[i] == -1 {
				assert.Equal(t, -1, got[i], "noise set must be unchanged")
				continue
			}
			require.NotEqual(t, -1, got[i], "clustered hit became noise")
			if got[i] != labels[i] {
				assert.Greater(t, got[i], maxIn, "new id collides with an existing id")
			}
			if prev, ok := origin[got[i]]; ok {
				assert.Equal(t, prev, labels[i], "output label %d spans two input labels", got[i])
			}
			origin[got[i]] = labels[i]
		}
	}
}

func TestSplit_NoMultiHitLayersIsIdentity(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	n := 60
	labels := make([]int, n)
	layers := make([]int, n)
	phi := make([]float64, n)
	for i := range labels {
		labels[i] = i%6 - 1
		layers[i] = i // every hit on its own layer
		phi[i] = rng.Float64()
	}

	got, err := New().Split(labels, layers, phi)
	require.NoError(t, err)
	assert.Equal(t, labels, got)
}

func TestSplit_InputErrors(t *testing.T) {
	_, err := New().Split([]int{0, 0}, []int{0}, []float64{0.1, 0.2})
	assert.True(t, errors.Is(err, ErrLengthMismatch), "got %v", err)

	_, err = New().Split([]int{0}, []int{0}, nil)
	assert.True(t, errors.Is(err, ErrLengthMismatch), "got %v", err)

	_, err = New().Split([]int{-3}, []int{0}, []float64{0.1})
	assert.Error(t, err)
}

func randomInput(rng *rand.Rand, n int) (labels, layers []int, phi []float64) {
	labels = make([]int, n)
	layers = make([]int, n)
	phi = make([]float64, n)
	for i := 0; i < n; i++ {
		labels[i] = rng.Intn(6) - 1
		layers[i] = rng.Intn(5)
		phi[i] = rng.Float64() * 6.28
	}
	return labels, layers, phi
}
