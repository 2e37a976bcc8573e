// Package store keeps finished runs in a SQLite database.
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"

	"rescuesim/pkg/game/state"
)

// ErrNotFound is returned when a run id is unknown
var ErrNotFound = errors.New("run not found")

// RunRecord is one finished run
type RunRecord struct {
	ID              string `db:"id" json:"id"`
	Seed            int64  `db:"seed" json:"seed"`
	Board           string `db:"board" json:"board"`
	Agents          int    `db:"agents" json:"agents"`
	Result          string `db:"result" json:"result"`
	Reason          string `db:"reason" json:"reason,omitempty"`
	Saved           int    `db:"saved" json:"saved"`
	Lost            int    `db:"lost" json:"lost"`
	AgentCasualties int    `db:"agent_casualties" json:"agent_casualties"`
	DamageLeft      int    `db:"damage_left" json:"structural_damage_left"`
	Turns           int    `db:"turns" json:"turns"`
	HistoryPath     string `db:"history_path" json:"history_path,omitempty"`
	CreatedAt       int64  `db:"created_at" json:"created_at"`
}

// NewRecord summarizes a finished game under a fresh id
func NewRecord(g *state.Game, board string) RunRecord {
	return RunRecord{
		ID:              uuid.NewString(),
		Seed:            g.Config.Seed,
		Board:           board,
		Agents:          len(g.Agents),
		Result:          g.Outcome.Result.String(),
		Reason:          string(g.Outcome.Reason),
		Saved:           g.Saved,
		Lost:            g.Lost,
		AgentCasualties: g.AgentCasualties,
		DamageLeft:      g.Structure.DamageLeft,
		Turns:           g.Turn,
		CreatedAt:       time.Now().UTC().Unix(),
	}
}

// Summary aggregates every stored run
type Summary struct {
	Runs      int            `json:"runs"`
	Victories int            `json:"victories"`
	Defeats   map[string]int `json:"defeats"`
	MeanSaved float64        `json:"mean_saved"`
	MeanTurns float64        `json:"mean_turns"`
}

// DB wraps a SQLite connection for run storage
type DB struct {
	conn *sqlx.DB
	log  logrus.FieldLogger
}

// Open opens or creates a database at path
func Open(path string, log logrus.FieldLogger) (*DB, error) {
	if log == nil {
		log = logrus.StandardLogger()
	}
	conn, err := sqlx.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	db := &DB{conn: conn, log: log}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return db, nil
}

// Close closes the database connection
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		seed INTEGER NOT NULL,
		board TEXT NOT NULL,
		agents INTEGER NOT NULL,
		result TEXT NOT NULL,
		reason TEXT NOT NULL,
		saved INTEGER NOT NULL,
		lost INTEGER NOT NULL,
		agent_casualties INTEGER NOT NULL,
		damage_left INTEGER NOT NULL,
		turns INTEGER NOT NULL,
		history_path TEXT NOT NULL,
		created_at INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_runs_created ON runs(created_at);
	CREATE INDEX IF NOT EXISTS idx_runs_result ON runs(result, reason);
	`
	_, err := db.conn.Exec(schema)
	return err
}

// SaveRun inserts a record. A record without an id is given one.
func (db *DB) SaveRun(r *RunRecord) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.CreatedAt == 0 {
		r.CreatedAt = time.Now().UTC().Unix()
	}
	_, err := db.conn.NamedExec(`INSERT INTO runs
		(id, seed, board, agents, result, reason, saved, lost, agent_casualties,
		 damage_left, turns, history_path, created_at)
		VALUES (:id, :seed, :board, :agents, :result, :reason, :saved, :lost, :agent_casualties,
		 :damage_left, :turns, :history_path, :created_at)`, r)
	if err != nil {
		return fmt.Errorf("save run %s: %w", r.ID, err)
	}
	db.log.WithFields(logrus.Fields{"id": r.ID, "result": r.Result, "saved": r.Saved}).Debug("run saved")
	return nil
}

// SaveRuns inserts records in a single transaction
func (db *DB) SaveRuns(records []RunRecord) error {
	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for i := range records {
		r := &records[i]
		if r.ID == "" {
			r.ID = uuid.NewString()
		}
		if r.CreatedAt == 0 {
			r.CreatedAt = time.Now().UTC().Unix()
		}
		if _, err := tx.NamedExec(`INSERT INTO runs
			(id, seed, board, agents, result, reason, saved, lost, agent_casualties,
			 damage_left, turns, history_path, created_at)
			VALUES (:id, :seed, :board, :agents, :result, :reason, :saved, :lost, :agent_casualties,
			 :damage_left, :turns, :history_path, :created_at)`, r); err != nil {
			return fmt.Errorf("save run %s: %w", r.ID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	db.log.WithField("runs", len(records)).Info("runs saved")
	return nil
}

// GetRun returns the run with the given id
func (db *DB) GetRun(id string) (RunRecord, error) {
	var r RunRecord
	err := db.conn.Get(&r, "SELECT * FROM runs WHERE id = ?", id)
	if errors.Is(err, sql.ErrNoRows) {
		return r, fmt.Errorf("%s: %w", id, ErrNotFound)
	}
	return r, err
}

// RecentRuns returns the most recent runs, newest first
func (db *DB) RecentRuns(limit int) ([]RunRecord, error) {
	runs := []RunRecord{}
	err := db.conn.Select(&runs,
		"SELECT * FROM runs ORDER BY created_at DESC, rowid DESC LIMIT ?",
		limit,
	)
	return runs, err
}

// Summary aggregates all stored runs
func (db *DB) Summary() (Summary, error) {
	s := Summary{Defeats: map[string]int{}}

	var totals struct {
		Runs      int             `db:"runs"`
		MeanSaved sql.NullFloat64 `db:"mean_saved"`
		MeanTurns sql.NullFloat64 `db:"mean_turns"`
	}
	if err := db.conn.Get(&totals,
		"SELECT COUNT(*) AS runs, AVG(saved) AS mean_saved, AVG(turns) AS mean_turns FROM runs"); err != nil {
		return s, fmt.Errorf("summary totals: %w", err)
	}
	s.Runs = totals.Runs
	s.MeanSaved = totals.MeanSaved.Float64
	s.MeanTurns = totals.MeanTurns.Float64

	var groups []struct {
		Result string `db:"result"`
		Reason string `db:"reason"`
		Count  int    `db:"n"`
	}
	if err := db.conn.Select(&groups,
		"SELECT result, reason, COUNT(*) AS n FROM runs GROUP BY result, reason"); err != nil {
		return s, fmt.Errorf("summary groups: %w", err)
	}
	for _, g := range groups {
		switch g.Result {
		case state.Victory.String():
			s.Victories += g.Count
		case state.Defeat.String():
			s.Defeats[g.Reason] += g.Count
		}
	}
	return s, nil
}
