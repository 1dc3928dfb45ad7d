package cluster

import "math"

// LineIndex accelerates neighbourhood queries over a one-dimensional
// feature using a regular grid. Cell size should match the clustering eps.
type LineIndex struct {
	CellSize float64
	Period   float64         // circular axis length, 0 for a plain line
	Grid     map[int64][]int // Cell ID → point indices
}

// NewLineIndex creates an index with the given cell size. A non-zero
// period makes the axis circular.
func NewLineIndex(cellSize, period float64) *LineIndex {
	return &LineIndex{
		CellSize: cellSize,
		Period:   period,
		Grid:     make(map[int64][]int),
	}
}

// Build populates the index. On a circular axis values must already be
// reduced to [0, Period).
func (li *LineIndex) Build(values []float64) {
	li.Grid = make(map[int64][]int, len(values)/EstimatedPointsPerCell+1)
	for i, v := range values {
		cell := li.cellID(v)
		li.Grid[cell] = append(li.Grid[cell], i)
	}
}

func (li *LineIndex) cellID(v float64) int64 {
	return int64(math.Floor(v / li.CellSize))
}

// RegionQuery returns indices of all values within eps of values[idx],
// idx itself included.
func (li *LineIndex) RegionQuery(values []float64, idx int, eps float64) []int {
	v := values[idx]
	if li.Period == 0 {
		return li.appendWithin(nil, values, v, eps)
	}

	// Eps below Period/2 means at most one image of each neighbour matches.
	neighbors := li.appendWithin(nil, values, v, eps)
	neighbors = li.appendWithin(neighbors, values, v-li.Period, eps)
	neighbors = li.appendWithin(neighbors, values, v+li.Period, eps)
	return neighbors
}

// appendWithin scans the cell holding v and its two adjacent cells.
func (li *LineIndex) appendWithin(dst []int, values []float64, v, eps float64) []int {
	cell := li.cellID(v)
	for dc := int64(-1); dc <= 1; dc++ {
		for _, candidate := range li.Grid[cell+dc] {
			if math.Abs(values[candidate]-v) <= eps {
				dst = append(dst, candidate)
			}
		}
	}
	return dst
}

// reduce maps v into [0, period).
func reduce(v, period float64) float64 {
	v = math.Mod(v, period)
	if v < 0 {
		v += period
	}
	if v >= period {
		v = 0
	}
	return v
}
