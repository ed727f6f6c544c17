// Package db is the sqlite race journal: one row per session, one row per
// telemetry frame and per sent action. The journal is written by the driver
// loop and read back by the report tool.
package db

import (
	"database/sql"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/tailscale/tailsql/server/tailsql"
	_ "modernc.org/sqlite"
	"tailscale.com/tsweb"

	"github.com/banshee-data/trackpilot/internal/monitoring"
	"github.com/banshee-data/trackpilot/internal/scrproto"
)

type DB struct {
	*sql.DB
}

// NewDB opens (and if needed initialises) the journal at path. Use ":memory:"
// for tests.
func NewDB(path string) (*DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS sessions (
			session_id        TEXT PRIMARY KEY,
			host              TEXT,
			port              INTEGER,
			sid               TEXT,
			stage             INTEGER,
			track             TEXT,
			outcome           TEXT,
			final_pos         INTEGER,
			started_at        TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			ended_at          TIMESTAMP
		);
		CREATE TABLE IF NOT EXISTS frames (
			session_id        TEXT,
			step              BIGINT,
			angle             DOUBLE,
			cur_lap_time      DOUBLE,
			damage            DOUBLE,
			dist_from_start   DOUBLE,
			dist_raced        DOUBLE,
			fuel              DOUBLE,
			gear              DOUBLE,
			last_lap_time     DOUBLE,
			race_pos          DOUBLE,
			rpm               DOUBLE,
			speed_x           DOUBLE,
			speed_y           DOUBLE,
			speed_z           DOUBLE,
			track_pos         DOUBLE,
			z                 DOUBLE,
			timestamp         TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY(session_id) REFERENCES sessions(session_id)
		);
		CREATE TABLE IF NOT EXISTS actions (
			session_id        TEXT,
			step              BIGINT,
			accel             DOUBLE,
			brake             DOUBLE,
			clutch            DOUBLE,
			gear              INTEGER,
			steer             DOUBLE,
			meta              INTEGER,
			timestamp         TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY(session_id) REFERENCES sessions(session_id)
		);
	`)
	if err != nil {
		return nil, err
	}

	return &DB{db}, nil
}

// StartSession records the beginning of a session and returns its identity.
func (db *DB) StartSession(host string, port int, sid string, stage int, track string) (string, error) {
	id := uuid.NewString()
	_, err := db.Exec(
		"INSERT INTO sessions (session_id, host, port, sid, stage, track) VALUES (?, ?, ?, ?, ?, ?)",
		id, host, port, sid, stage, track,
	)
	if err != nil {
		return "", fmt.Errorf("failed to record session start: %w", err)
	}
	return id, nil
}

// EndSession records how a session finished: "shutdown", "restart",
// "steps" (driver loop bound reached) or "error".
func (db *DB) EndSession(sessionID, outcome string, finalPos int) error {
	_, err := db.Exec(
		"UPDATE sessions SET outcome = ?, final_pos = ?, ended_at = CURRENT_TIMESTAMP WHERE session_id = ?",
		outcome, finalPos, sessionID,
	)
	if err != nil {
		return fmt.Errorf("failed to record session end: %w", err)
	}
	return nil
}

// RecordFrame journals the scalar channels of one telemetry snapshot.
func (db *DB) RecordFrame(sessionID string, step int, s *scrproto.Snapshot) error {
	_, err := db.Exec(`INSERT INTO frames (
			session_id, step, angle, cur_lap_time, damage, dist_from_start,
			dist_raced, fuel, gear, last_lap_time, race_pos, rpm,
			speed_x, speed_y, speed_z, track_pos, z
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		sessionID, step, s.Angle, s.CurLapTime, s.Damage, s.DistFromStart,
		s.DistRaced, s.Fuel, s.Gear, s.LastLapTime, s.RacePos, s.RPM,
		s.SpeedX, s.SpeedY, s.SpeedZ, s.TrackPos, s.Z,
	)
	if err != nil {
		return fmt.Errorf("failed to record frame: %w", err)
	}
	return nil
}

// RecordAction journals one sent actuator command.
func (db *DB) RecordAction(sessionID string, step int, a *scrproto.Action) error {
	_, err := db.Exec(
		"INSERT INTO actions (session_id, step, accel, brake, clutch, gear, steer, meta) VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
		sessionID, step, a.Accel, a.Brake, a.Clutch, a.Gear, a.Steer, a.Meta,
	)
	if err != nil {
		return fmt.Errorf("failed to record action: %w", err)
	}
	return nil
}

// SessionRow is one journaled session.
type SessionRow struct {
	ID        string
	Host      string
	Port      int
	SID       string
	Stage     int
	Track     string
	Outcome   string
	FinalPos  int
	StartedAt time.Time
}

// Sessions lists journaled sessions, newest first.
func (db *DB) Sessions(limit int) ([]SessionRow, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := db.Query(`SELECT session_id, host, port, sid, stage, track,
			COALESCE(outcome, ''), COALESCE(final_pos, 0), started_at
		FROM sessions ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []SessionRow
	for rows.Next() {
		var r SessionRow
		if err := rows.Scan(&r.ID, &r.Host, &r.Port, &r.SID, &r.Stage, &r.Track,
			&r.Outcome, &r.FinalPos, &r.StartedAt); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// FramePoint is the subset of a journaled frame the report tool plots.
type FramePoint struct {
	Step      int
	DistRaced float64
	SpeedX    float64
	RPM       float64
	TrackPos  float64
	Damage    float64
}

// Frames returns the journaled frames of one session in step order.
func (db *DB) Frames(sessionID string) ([]FramePoint, error) {
	rows, err := db.Query(
		"SELECT step, dist_raced, speed_x, rpm, track_pos, damage FROM frames WHERE session_id = ? ORDER BY step",
		sessionID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []FramePoint
	for rows.Next() {
		var p FramePoint
		if err := rows.Scan(&p.Step, &p.DistRaced, &p.SpeedX, &p.RPM, &p.TrackPos, &p.Damage); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// AttachAdminRoutes mounts the debug surface (tailSQL console over the
// journal) on the given mux under /debug/.
func (db *DB) AttachAdminRoutes(mux *http.ServeMux) {
	debug := tsweb.Debugger(mux)
	tsql, err := tailsql.NewServer(tailsql.Options{
		RoutePrefix: "/debug/tailsql/",
	})
	if err != nil {
		monitoring.Logf("failed to create tailsql server: %v", err)
		return
	}
	tsql.SetDB("sqlite://race.db", db.DB, &tailsql.DBOptions{
		Label: "Race journal",
	})
	debug.Handle("tailsql/", "SQL live debugging", tsql.NewMux())
}
