// Package history keeps a local record of generation runs in SQLite so past
// results can be listed and re-exported.
package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/dusk-indust/scenariogen/internal/bdd"
	_ "modernc.org/sqlite"
)

// ErrNotFound is returned by Get for an unknown request id.
var ErrNotFound = errors.New("history: run not found")

// Run is one recorded generation request.
type Run struct {
	ID             int64
	RequestID      string
	CreatedAt      time.Time
	Mode           bdd.Mode
	Model          string
	Story          string
	FeatureName    string
	Requested      int
	Achieved       int
	CountSatisfied bool
	Personas       []PersonaOutcome

	// Result is only populated by Get.
	Result *bdd.Result
}

// PersonaOutcome is what one persona contributed to a run.
type PersonaOutcome struct {
	Persona     string
	Kept        int
	FailureKind string
}

// Store is a SQLite-backed run history.
type Store struct {
	db *sql.DB
}

// New opens or creates the history database at path.
func New(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("history: create dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("history: open: %w", err)
	}
	db.SetMaxOpenConns(1)

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("history: migrate: %w", err)
	}
	return s, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		request_id TEXT NOT NULL UNIQUE,
		created_at INTEGER NOT NULL,
		mode TEXT NOT NULL,
		model TEXT NOT NULL,
		story TEXT NOT NULL,
		feature_name TEXT NOT NULL,
		requested INTEGER NOT NULL,
		achieved INTEGER NOT NULL,
		count_satisfied INTEGER NOT NULL,
		result_json TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS persona_outcomes (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id INTEGER NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
		persona TEXT NOT NULL,
		kept INTEGER NOT NULL DEFAULT 0,
		failure_kind TEXT,
		sequence_num INTEGER NOT NULL,
		UNIQUE(run_id, sequence_num)
	);

	CREATE INDEX IF NOT EXISTS idx_runs_created ON runs(created_at);
	CREATE INDEX IF NOT EXISTS idx_outcomes_run ON persona_outcomes(run_id);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Record stores res together with the story it was generated from and
// returns the new row id.
func (s *Store) Record(ctx context.Context, story string, res *bdd.Result) (int64, error) {
	data, err := json.Marshal(res)
	if err != nil {
		return 0, fmt.Errorf("history: encode result: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("history: begin: %w", err)
	}
	defer tx.Rollback()

	out, err := tx.ExecContext(ctx,
		`INSERT INTO runs (request_id, created_at, mode, model, story, feature_name, requested, achieved, count_satisfied, result_json)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		res.RequestID, time.Now().UnixMilli(), string(res.Mode), res.Model, story, res.FeatureName,
		res.Requested, res.Achieved, res.CountSatisfied, string(data),
	)
	if err != nil {
		return 0, fmt.Errorf("history: insert run: %w", err)
	}
	id, err := out.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("history: insert run: %w", err)
	}

	for i, po := range outcomes(res) {
		var kind sql.NullString
		if po.FailureKind != "" {
			kind = sql.NullString{String: po.FailureKind, Valid: true}
		}
		_, err := tx.ExecContext(ctx,
			`INSERT INTO persona_outcomes (run_id, persona, kept, failure_kind, sequence_num) VALUES (?, ?, ?, ?, ?)`,
			id, po.Persona, po.Kept, kind, i,
		)
		if err != nil {
			return 0, fmt.Errorf("history: insert persona %s: %w", po.Persona, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("history: commit: %w", err)
	}
	return id, nil
}

// outcomes lists participating personas first, then failed ones, each with
// the number of its scenarios that survived consolidation.
func outcomes(res *bdd.Result) []PersonaOutcome {
	kept := make(map[string]int)
	for _, sc := range res.Scenarios {
		kept[sc.Persona]++
	}

	var out []PersonaOutcome
	seen := make(map[string]bool)
	for _, p := range res.Summary.Personas {
		seen[p] = true
		out = append(out, PersonaOutcome{Persona: p, Kept: kept[p]})
	}
	for _, f := range res.PersonaFailures {
		if seen[f.Persona] {
			for i := range out {
				if out[i].Persona == f.Persona {
					out[i].FailureKind = f.Kind
				}
			}
			continue
		}
		seen[f.Persona] = true
		out = append(out, PersonaOutcome{Persona: f.Persona, Kept: kept[f.Persona], FailureKind: f.Kind})
	}
	return out
}

// List returns up to limit runs, newest first, without their full results.
func (s *Store) List(ctx context.Context, limit int) ([]*Run, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, request_id, created_at, mode, model, story, feature_name, requested, achieved, count_satisfied
		 FROM runs ORDER BY created_at DESC, id DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("history: list: %w", err)
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("history: list: %w", err)
	}
	// The single connection must be free before querying personas.
	rows.Close()

	for _, run := range runs {
		if run.Personas, err = s.personas(ctx, run.ID); err != nil {
			return nil, err
		}
	}
	return runs, nil
}

// Get returns the run recorded for requestID, including its full result.
func (s *Store) Get(ctx context.Context, requestID string) (*Run, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, request_id, created_at, mode, model, story, feature_name, requested, achieved, count_satisfied, result_json
		 FROM runs WHERE request_id = ?`, requestID,
	)

	var (
		run       Run
		createdAt int64
		mode      string
		data      string
	)
	err := row.Scan(&run.ID, &run.RequestID, &createdAt, &mode, &run.Model, &run.Story,
		&run.FeatureName, &run.Requested, &run.Achieved, &run.CountSatisfied, &data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("history: get %s: %w", requestID, err)
	}
	run.CreatedAt = time.UnixMilli(createdAt)
	run.Mode = bdd.Mode(mode)

	var res bdd.Result
	if err := json.Unmarshal([]byte(data), &res); err != nil {
		return nil, fmt.Errorf("history: decode result %s: %w", requestID, err)
	}
	run.Result = &res

	if run.Personas, err = s.personas(ctx, run.ID); err != nil {
		return nil, err
	}
	return &run, nil
}

func (s *Store) personas(ctx context.Context, runID int64) ([]PersonaOutcome, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT persona, kept, failure_kind FROM persona_outcomes WHERE run_id = ? ORDER BY sequence_num`, runID,
	)
	if err != nil {
		return nil, fmt.Errorf("history: personas: %w", err)
	}
	defer rows.Close()

	var out []PersonaOutcome
	for rows.Next() {
		var po PersonaOutcome
		var kind sql.NullString
		if err := rows.Scan(&po.Persona, &po.Kept, &kind); err != nil {
			return nil, fmt.Errorf("history: personas: %w", err)
		}
		if kind.Valid {
			po.FailureKind = kind.String
		}
		out = append(out, po)
	}
	return out, rows.Err()
}

func scanRun(rows *sql.Rows) (*Run, error) {
	var (
		run       Run
		createdAt int64
		mode      string
	)
	err := rows.Scan(&run.ID, &run.RequestID, &createdAt, &mode, &run.Model, &run.Story,
		&run.FeatureName, &run.Requested, &run.Achieved, &run.CountSatisfied)
	if err != nil {
		return nil, fmt.Errorf("history: scan: %w", err)
	}
	run.CreatedAt = time.UnixMilli(createdAt)
	run.Mode = bdd.Mode(mode)
	return &run, nil
}
