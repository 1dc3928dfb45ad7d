// Package event holds the per-event hit table consumed by the track finder.
//
// An Event is owned by the caller and treated as read-only: nothing in this
// module mutates a Hit after it has been ingested.
package event

import (
	"errors"
	"fmt"
	"math"
)

// Column positions of the row-table contract shared with the data loader.
const (
	ColLayer = 0
	ColZ     = 1 // carried but unused by the clustering core
	ColX     = 2
	ColY     = 3

	// MinColumns is the minimum row width accepted by FromRows.
	MinColumns = 4
)

// ErrMalformedRow is returned when a row violates the column contract.
var ErrMalformedRow = errors.New("malformed hit row")

// Hit is one detector measurement within a single event.
type Hit struct {
	Layer int     // detector shell/plane identifier
	Z     float64 // third spatial coordinate, unused by the core
	X, Y  float64 // transverse position
}

// Event is the ordered hit table for one event. A hit's index is its
// position in the slice.
type Event []Hit

// FromRows builds an Event from a row table laid out as
// layer, unused, x, y. Extra trailing columns are ignored.
func FromRows(rows [][]float64) (Event, error) {
	ev := make(Event, len(rows))
	for i, row := range rows {
		if len(row) < MinColumns {
			return nil, fmt.Errorf("row %d has %d columns, need %d: %w", i, len(row), MinColumns, ErrMalformedRow)
		}

		layer := row[ColLayer]
		if layer < 0 || layer != math.Trunc(layer) || math.IsInf(layer, 0) {
			return nil, fmt.Errorf("row %d: layer %v is not a non-negative integer: %w", i, layer, ErrMalformedRow)
		}

		x, y := row[ColX], row[ColY]
		if !isFinite(x) || !isFinite(y) {
			return nil, fmt.Errorf("row %d: non-finite position (%v, %v): %w", i, x, y, ErrMalformedRow)
		}

		ev[i] = Hit{Layer: int(layer), Z: row[ColZ], X: x, Y: y}
	}
	return ev, nil
}

// Xs returns the x column.
func (e Event) Xs() []float64 {
	xs := make([]float64, len(e))
	for i, h := range e {
		xs[i] = h.X
	}
	return xs
}

// Ys returns the y column.
func (e Event) Ys() []float64 {
	ys := make([]float64, len(e))
	for i, h := range e {
		ys[i] = h.Y
	}
	return ys
}

// Layers returns the layer column.
func (e Event) Layers() []int {
	layers := make([]int, len(e))
	for i, h := range e {
		layers[i] = h.Layer
	}
	return layers
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
