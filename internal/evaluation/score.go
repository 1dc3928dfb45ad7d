// Package evaluation scores predicted hit labels against known track
// membership.
package evaluation

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// MatchFraction is the share of a true track's hits, and of the matched
// candidate's hits, that must agree for the track to count as found.
const MatchFraction = 0.5

// Score summarises one event.
type Score struct {
	TrueTracks      int     `json:"true_tracks"`
	PredictedTracks int     `json:"predicted_tracks"`
	Matched         int     `json:"matched"`
	Efficiency      float64 `json:"efficiency"`       // mean best-overlap fraction over true tracks
	Purity          float64 `json:"purity"`           // mean dominant-track fraction over candidates
	TrackEfficiency float64 `json:"track_efficiency"` // Matched / TrueTracks
	FakeRate        float64 `json:"fake_rate"`        // unmatched candidates / PredictedTracks
}

// ScoreEvent compares predicted labels to truth. Both use -1 for noise.
func ScoreEvent(pred, truth []int) (Score, error) {
	if len(pred) != len(truth) {
		return Score{}, fmt.Errorf("evaluation: %d predictions for %d truth labels", len(pred), len(truth))
	}

	// overlap[t][p] counts hits of true track t labelled p.
	overlap := make(map[int]map[int]int)
	trueSize := make(map[int]int)
	predSize := make(map[int]int)
	for i := range pred {
		t, p := truth[i], pred[i]
		if p != -1 {
			predSize[p]++
		}
		if t == -1 {
			continue
		}
		trueSize[t]++
		if p == -1 {
			continue
		}
		if overlap[t] == nil {
			overlap[t] = make(map[int]int)
		}
		overlap[t][p]++
	}

	s := Score{TrueTracks: len(trueSize), PredictedTracks: len(predSize)}

	matchedPred := make(map[int]bool)
	var effSum float64
	for _, t := range sortedKeys(trueSize) {
		best, bestCount := bestMatch(overlap[t])
		frac := float64(bestCount) / float64(trueSize[t])
		effSum += frac
		if bestCount == 0 {
			continue
		}
		// Candidates match at most one true track.
		if matchedPred[best] {
			continue
		}
		if frac >= MatchFraction && float64(bestCount)/float64(predSize[best]) >= MatchFraction {
			s.Matched++
			matchedPred[best] = true
		}
	}
	if s.TrueTracks > 0 {
		s.Efficiency = effSum / float64(s.TrueTracks)
		s.TrackEfficiency = float64(s.Matched) / float64(s.TrueTracks)
	}

	if s.PredictedTracks > 0 {
		dominant := make(map[int]int)
		for _, byPred := range overlap {
			for p, n := range byPred {
				if n > dominant[p] {
					dominant[p] = n
				}
			}
		}
		var puritySum float64
		for p, size := range predSize {
			puritySum += float64(dominant[p]) / float64(size)
		}
		s.Purity = puritySum / float64(s.PredictedTracks)
		s.FakeRate = float64(s.PredictedTracks-len(matchedPred)) / float64(s.PredictedTracks)
	}

	return s, nil
}

// bestMatch returns the label with the largest count, lowest label on ties.
func bestMatch(counts map[int]int) (label, count int) {
	label = -1
	for _, l := range sortedKeys(counts) {
		if counts[l] > count {
			label, count = l, counts[l]
		}
	}
	return label, count
}

func sortedKeys(m map[int]int) []int {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}

// Summary aggregates scores over many events.
type Summary struct {
	Events          int     `json:"events"`
	TrueTracks      int     `json:"true_tracks"`
	Matched         int     `json:"matched"`
	MeanEfficiency  float64 `json:"mean_efficiency"`
	StdEfficiency   float64 `json:"std_efficiency"`
	MeanPurity      float64 `json:"mean_purity"`
	StdPurity       float64 `json:"std_purity"`
	MeanFakeRate    float64 `json:"mean_fake_rate"`
	TrackEfficiency float64 `json:"track_efficiency"` // Matched / TrueTracks across all events
}

// Summarise aggregates per-event scores.
func Summarise(scores []Score) Summary {
	s := Summary{Events: len(scores)}
	if len(scores) == 0 {
		return s
	}

	eff := make([]float64, len(scores))
	pur := make([]float64, len(scores))
	fake := make([]float64, len(scores))
	for i, sc := range scores {
		eff[i] = sc.Efficiency
		pur[i] = sc.Purity
		fake[i] = sc.FakeRate
		s.TrueTracks += sc.TrueTracks
		s.Matched += sc.Matched
	}

	s.MeanEfficiency, s.StdEfficiency = meanStd(eff)
	s.MeanPurity, s.StdPurity = meanStd(pur)
	s.MeanFakeRate = stat.Mean(fake, nil)
	if s.TrueTracks > 0 {
		s.TrackEfficiency = float64(s.Matched) / float64(s.TrueTracks)
	}
	return s
}

// meanStd is stat.MeanStdDev with a zero deviation for a single sample.
func meanStd(x []float64) (mean, std float64) {
	if len(x) == 1 {
		return x[0], 0
	}
	return stat.MeanStdDev(x, nil)
}
