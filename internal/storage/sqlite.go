// Package storage provides SQLite-based persistence for simulation runs.
// Uses the pure-Go modernc.org/sqlite driver to avoid CGO dependencies.
package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"
	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/vovakirdan/tui-layers/internal/physics"
)

// ErrNotFound is returned when a run does not exist.
var ErrNotFound = errors.New("storage: run not found")

// Store manages the SQLite database connection for run history.
type Store struct {
	db *sql.DB
}

// Run is one recorded simulation run.
type Run struct {
	ID            string // UUID, assigned by SaveRun when empty
	SceneID       string
	Ticks         uint64
	Collisions    int
	PeakContacts  int
	GroundedTicks int
	Elapsed       time.Duration
	Interrupted   bool
	FinalHash     uint64
	Source        string // "cli", "viewer" or "ssh"
	CreatedAt     time.Time
}

// SceneStats aggregates all runs of one scene.
type SceneStats struct {
	SceneID         string
	Runs            int
	TotalTicks      int64
	TotalCollisions int64
	AvgTicks        float64
	LastRun         time.Time
}

// Open creates or opens a SQLite database at the given path.
// It creates the parent directories if needed and runs migrations.
func Open(dbPath string) (*Store, error) {
	// Expand ~ to home directory
	if dbPath != "" && dbPath[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("storage: cannot expand home directory: %w", err)
		}
		dbPath = filepath.Join(home, dbPath[1:])
	}

	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: cannot create directory %s: %w", dir, err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: cannot connect to database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: migration failed: %w", err)
	}
	return store, nil
}

// migrate creates the database schema if it doesn't exist.
func (s *Store) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS runs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id TEXT NOT NULL UNIQUE,
			scene_id TEXT NOT NULL,
			ticks INTEGER NOT NULL,
			collisions INTEGER NOT NULL DEFAULT 0,
			peak_contacts INTEGER NOT NULL DEFAULT 0,
			grounded_ticks INTEGER NOT NULL DEFAULT 0,
			elapsed_ms INTEGER NOT NULL DEFAULT 0,
			interrupted INTEGER NOT NULL DEFAULT 0,
			final_hash TEXT NOT NULL,
			source TEXT NOT NULL DEFAULT 'cli',
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_runs_scene_id ON runs(scene_id);

		CREATE TABLE IF NOT EXISTS body_states (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id TEXT NOT NULL REFERENCES runs(run_id) ON DELETE CASCADE,
			seq INTEGER NOT NULL,
			name TEXT NOT NULL,
			pos_x REAL NOT NULL, pos_y REAL NOT NULL, pos_z REAL NOT NULL,
			vel_x REAL NOT NULL, vel_y REAL NOT NULL, vel_z REAL NOT NULL,
			static INTEGER NOT NULL DEFAULT 0,
			immaterial INTEGER NOT NULL DEFAULT 0,
			collisions INTEGER NOT NULL DEFAULT 0
		);
		CREATE INDEX IF NOT EXISTS idx_body_states_run_id ON body_states(run_id);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// SaveRun records a run and the final state of its bodies in one
// transaction. Returns the run ID.
func (s *Store) SaveRun(run Run, bodies []physics.BodyState) (string, error) {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.Source == "" {
		run.Source = "cli"
	}

	tx, err := s.db.Begin()
	if err != nil {
		return "", fmt.Errorf("storage: cannot begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	_, err = tx.Exec(
		`INSERT INTO runs (run_id, scene_id, ticks, collisions, peak_contacts, grounded_ticks,
		                   elapsed_ms, interrupted, final_hash, source)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.SceneID, int64(run.Ticks), run.Collisions, run.PeakContacts, run.GroundedTicks,
		run.Elapsed.Milliseconds(), run.Interrupted, strconv.FormatUint(run.FinalHash, 16), run.Source,
	)
	if err != nil {
		return "", fmt.Errorf("storage: cannot save run: %w", err)
	}

	stmt, err := tx.Prepare(
		`INSERT INTO body_states (run_id, seq, name, pos_x, pos_y, pos_z, vel_x, vel_y, vel_z,
		                          static, immaterial, collisions)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return "", fmt.Errorf("storage: cannot prepare body insert: %w", err)
	}
	defer stmt.Close()

	for i, b := range bodies {
		_, err := stmt.Exec(
			run.ID, i, b.Name,
			b.Position[0], b.Position[1], b.Position[2],
			b.Velocity[0], b.Velocity[1], b.Velocity[2],
			b.Static, b.Immaterial, b.Collisions,
		)
		if err != nil {
			return "", fmt.Errorf("storage: cannot save body %q: %w", b.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("storage: cannot commit run: %w", err)
	}
	return run.ID, nil
}

const runColumns = `run_id, scene_id, ticks, collisions, peak_contacts, grounded_ticks,
	elapsed_ms, interrupted, final_hash, source, created_at`

// RecentRuns returns the newest runs, optionally filtered by scene.
func (s *Store) RecentRuns(sceneID string, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 10
	}

	var (
		rows *sql.Rows
		err  error
	)
	if sceneID == "" {
		rows, err = s.db.Query(
			`SELECT `+runColumns+` FROM runs ORDER BY id DESC LIMIT ?`, limit)
	} else {
		rows, err = s.db.Query(
			`SELECT `+runColumns+` FROM runs WHERE scene_id = ? ORDER BY id DESC LIMIT ?`, sceneID, limit)
	}
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}
	return runs, nil
}

// RunByID retrieves a run by its ID.
func (s *Store) RunByID(runID string) (*Run, error) {
	row := s.db.QueryRow(`SELECT `+runColumns+` FROM runs WHERE run_id = ?`, runID)
	r, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// BodyStates returns the stored final body states of a run, in simulation
// order.
func (s *Store) BodyStates(runID string) ([]physics.BodyState, error) {
	rows, err := s.db.Query(
		`SELECT name, pos_x, pos_y, pos_z, vel_x, vel_y, vel_z, static, immaterial, collisions
		 FROM body_states WHERE run_id = ? ORDER BY seq`,
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query body states: %w", err)
	}
	defer rows.Close()

	var states []physics.BodyState
	for rows.Next() {
		var (
			b        physics.BodyState
			pos, vel mgl64.Vec3
		)
		if err := rows.Scan(&b.Name, &pos[0], &pos[1], &pos[2], &vel[0], &vel[1], &vel[2],
			&b.Static, &b.Immaterial, &b.Collisions); err != nil {
			return nil, fmt.Errorf("storage: cannot scan body state: %w", err)
		}
		b.Position, b.Velocity = pos, vel
		states = append(states, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}
	return states, nil
}

// DeleteRun removes a run and its body states.
func (s *Store) DeleteRun(runID string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("storage: cannot begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	if _, err := tx.Exec("DELETE FROM body_states WHERE run_id = ?", runID); err != nil {
		return fmt.Errorf("storage: cannot delete body states: %w", err)
	}
	res, err := tx.Exec("DELETE FROM runs WHERE run_id = ?", runID)
	if err != nil {
		return fmt.Errorf("storage: cannot delete run: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return tx.Commit()
}

// SceneStats returns aggregated statistics for every scene with runs.
func (s *Store) SceneStats() (map[string]*SceneStats, error) {
	rows, err := s.db.Query(
		`SELECT scene_id, COUNT(*), SUM(ticks), SUM(collisions), AVG(ticks), MAX(created_at)
		 FROM runs
		 GROUP BY scene_id`,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query scene stats: %w", err)
	}
	defer rows.Close()

	result := make(map[string]*SceneStats)
	for rows.Next() {
		var (
			st      SceneStats
			lastRun any
		)
		if err := rows.Scan(&st.SceneID, &st.Runs, &st.TotalTicks, &st.TotalCollisions, &st.AvgTicks, &lastRun); err != nil {
			return nil, fmt.Errorf("storage: cannot scan scene stats: %w", err)
		}
		st.LastRun = parseTime(lastRun)
		result[st.SceneID] = &st
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}
	return result, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (Run, error) {
	var (
		r         Run
		ticks     int64
		elapsedMS int64
		hash      string
		createdAt any
	)
	err := row.Scan(&r.ID, &r.SceneID, &ticks, &r.Collisions, &r.PeakContacts, &r.GroundedTicks,
		&elapsedMS, &r.Interrupted, &hash, &r.Source, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, err
	}
	if err != nil {
		return Run{}, fmt.Errorf("storage: cannot scan run: %w", err)
	}
	r.Ticks = uint64(ticks)
	r.Elapsed = time.Duration(elapsedMS) * time.Millisecond
	r.FinalHash, _ = strconv.ParseUint(hash, 16, 64)
	r.CreatedAt = parseTime(createdAt)
	return r, nil
}

// parseTime handles both time.Time and string datetime values.
func parseTime(v any) time.Time {
	switch t := v.(type) {
	case time.Time:
		return t
	case string:
		for _, layout := range []string{"2006-01-02 15:04:05", time.RFC3339} {
			if parsed, err := time.Parse(layout, t); err == nil {
				return parsed
			}
		}
	}
	return time.Time{}
}
