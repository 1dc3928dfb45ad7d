package db

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/banshee-data/trackfinder/internal/timeutil"
)

// ErrRunNotFound is returned when a run ID has no row.
var ErrRunNotFound = errors.New("run not found")

// Run is one invocation of the track finder over a batch of events.
type Run struct {
	RunID       string          `json:"run_id"`
	CreatedAt   int64           `json:"created_at"` // unix nanos
	Version     string          `json:"version"`
	ParamsJSON  json.RawMessage `json:"params_json,omitempty"`
	Events      int             `json:"events"`
	SummaryJSON json.RawMessage `json:"summary_json,omitempty"`
}

// HitLabel is the stored outcome for one hit of one event.
type HitLabel struct {
	EventIndex int     `json:"event_index"`
	HitIndex   int     `json:"hit_index"`
	Layer      int     `json:"layer"`
	Phi        float64 `json:"phi"`
	Label      int     `json:"label"`
	Truth      *int    `json:"truth,omitempty"`
}

// RunStore provides persistence for runs and their hit labels.
type RunStore struct {
	db    *sql.DB
	clock timeutil.Clock
}

// NewRunStore creates a new RunStore.
func NewRunStore(db *sql.DB) *RunStore {
	return &RunStore{db: db, clock: timeutil.RealClock{}}
}

// NewRunStoreWithClock creates a RunStore that stamps runs using clock.
func NewRunStoreWithClock(db *sql.DB, clock timeutil.Clock) *RunStore {
	return &RunStore{db: db, clock: clock}
}

// InsertRun persists a new run. If RunID is empty, a UUID is generated.
func (s *RunStore) InsertRun(run *Run) error {
	if run.RunID == "" {
		run.RunID = uuid.New().String()
	}
	if run.CreatedAt == 0 {
		run.CreatedAt = s.clock.Now().UnixNano()
	}

	_, err := s.db.Exec(`
		INSERT INTO track_runs (run_id, created_at, version, params_json, events, summary_json)
		VALUES (?, ?, ?, ?, ?, ?)`,
		run.RunID, run.CreatedAt, run.Version,
		nullableJSON(run.ParamsJSON), run.Events, nullableJSON(run.SummaryJSON),
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

// CompleteRun records the event count and summary of a finished run.
func (s *RunStore) CompleteRun(runID string, events int, summary json.RawMessage) error {
	res, err := s.db.Exec(`
		UPDATE track_runs SET events = ?, summary_json = ? WHERE run_id = ?`,
		events, nullableJSON(summary), runID)
	if err != nil {
		return fmt.Errorf("complete run: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("complete run: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("complete run %s: %w", runID, ErrRunNotFound)
	}
	return nil
}

// InsertEventLabels stores the labels of one event. truth may be nil.
func (s *RunStore) InsertEventLabels(runID string, eventIndex int, layers []int, phi []float64, labels []int, truth []int) error {
	if len(layers) != len(labels) || len(phi) != len(labels) || (truth != nil && len(truth) != len(labels)) {
		return fmt.Errorf("insert event labels: column lengths differ (layers=%d phi=%d labels=%d truth=%d)",
			len(layers), len(phi), len(labels), len(truth))
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO track_hit_labels (run_id, event_index, hit_index, layer, phi, label, truth)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare: %w", err)
	}
	defer stmt.Close()

	for i := range labels {
		var t interface{}
		if truth != nil {
			t = truth[i]
		}
		if _, err := stmt.Exec(runID, eventIndex, i, layers[i], phi[i], labels[i], t); err != nil {
			return fmt.Errorf("insert hit %d of event %d: %w", i, eventIndex, err)
		}
	}

	return tx.Commit()
}

// GetRun returns a single run by ID.
func (s *RunStore) GetRun(runID string) (*Run, error) {
	row := s.db.QueryRow(`
		SELECT run_id, created_at, version, params_json, events, summary_json
		FROM track_runs
		WHERE run_id = ?`, runID)

	r, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get run %s: %w", runID, ErrRunNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get run %s: %w", runID, err)
	}
	return r, nil
}

// ListRuns returns all runs, newest first.
func (s *RunStore) ListRuns() ([]*Run, error) {
	rows, err := s.db.Query(`
		SELECT run_id, created_at, version, params_json, events, summary_json
		FROM track_runs
		ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// EventLabels returns the stored hits of one event in hit order.
func (s *RunStore) EventLabels(runID string, eventIndex int) ([]HitLabel, error) {
	rows, err := s.db.Query(`
		SELECT event_index, hit_index, layer, phi, label, truth
		FROM track_hit_labels
		WHERE run_id = ? AND event_index = ?
		ORDER BY hit_index`, runID, eventIndex)
	if err != nil {
		return nil, fmt.Errorf("query hit labels: %w", err)
	}
	defer rows.Close()

	var hits []HitLabel
	for rows.Next() {
		var h HitLabel
		var truth sql.NullInt64
		if err := rows.Scan(&h.EventIndex, &h.HitIndex, &h.Layer, &h.Phi, &h.Label, &truth); err != nil {
			return nil, fmt.Errorf("scan hit label: %w", err)
		}
		if truth.Valid {
			t := int(truth.Int64)
			h.Truth = &t
		}
		hits = append(hits, h)
	}
	return hits, rows.Err()
}

// TrackCounts returns the number of hits per non-noise label of one event.
func (s *RunStore) TrackCounts(runID string, eventIndex int) (map[int]int, error) {
	rows, err := s.db.Query(`
		SELECT label, COUNT(*)
		FROM track_hit_labels
		WHERE run_id = ? AND event_index = ? AND label >= 0
		GROUP BY label`, runID, eventIndex)
	if err != nil {
		return nil, fmt.Errorf("query track counts: %w", err)
	}
	defer rows.Close()

	counts := make(map[int]int)
	for rows.Next() {
		var label, n int
		if err := rows.Scan(&label, &n); err != nil {
			return nil, fmt.Errorf("scan track count: %w", err)
		}
		counts[label] = n
	}
	return counts, rows.Err()
}

// DeleteRun removes a run and, by cascade, its hit labels.
func (s *RunStore) DeleteRun(runID string) error {
	if _, err := s.db.Exec(`DELETE FROM track_runs WHERE run_id = ?`, runID); err != nil {
		return fmt.Errorf("delete run %s: %w", runID, err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanRun(row rowScanner) (*Run, error) {
	var r Run
	var params, summary sql.NullString
	if err := row.Scan(&r.RunID, &r.CreatedAt, &r.Version, &params, &r.Events, &summary); err != nil {
		return nil, err
	}
	if params.Valid {
		r.ParamsJSON = json.RawMessage(params.String)
	}
	if summary.Valid {
		r.SummaryJSON = json.RawMessage(summary.String)
	}
	return &r, nil
}

func nullableJSON(raw json.RawMessage) interface{} {
	if len(raw) == 0 {
		return nil
	}
	return string(raw)
}
