package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/SakshiKukreja04/BabyCare-sub002/internal/baby"
	"github.com/SakshiKukreja04/BabyCare-sub002/internal/event"
)

// #region schema
const schema = `
CREATE TABLE IF NOT EXISTS babies (
	baby_id      TEXT PRIMARY KEY,
	name         TEXT,
	maturity     TEXT NOT NULL,
	created_at   TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS care_events (
	event_id     TEXT PRIMARY KEY,
	baby_id      TEXT NOT NULL,
	kind         TEXT NOT NULL,
	occurred_at  INTEGER,
	payload_json TEXT NOT NULL,
	created_at   TEXT NOT NULL,
	FOREIGN KEY (baby_id) REFERENCES babies(baby_id)
);

CREATE INDEX IF NOT EXISTS idx_care_events_lookup
	ON care_events (baby_id, kind, occurred_at);

CREATE TABLE IF NOT EXISTS adjustment_log (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	adjustment_id TEXT NOT NULL UNIQUE,
	baby_id       TEXT,
	final_label   TEXT NOT NULL,
	confidence    REAL NOT NULL,
	rules         TEXT,
	record_json   TEXT NOT NULL,
	eval_passed   INTEGER NOT NULL DEFAULT 1,
	created_at    TEXT NOT NULL
);
`

// #endregion schema

// #region store-struct
// Store keeps baby profiles, caregiving events and the adjustment log in SQLite.
type Store struct {
	db *sql.DB
}

// #endregion store-struct

// #region constructor
// NewStore opens a SQLite database and runs migrations.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("pragma: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("pragma fk: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &Store{db: db}, nil
}

// #endregion constructor

// #region close
// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// #endregion close

// #region db-accessor
// DB returns the underlying *sql.DB for use by other packages (e.g. logging).
func (s *Store) DB() *sql.DB {
	return s.db
}

// #endregion db-accessor

// #region babies
// UpsertBaby inserts or updates a profile. An empty ID gets a fresh uuid.
func (s *Store) UpsertBaby(p baby.Profile) (baby.Profile, error) {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	p.Maturity = baby.ParseMaturity(string(p.Maturity))

	_, err := s.db.Exec(
		`INSERT INTO babies (baby_id, name, maturity, created_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(baby_id) DO UPDATE SET name = excluded.name, maturity = excluded.maturity`,
		p.ID, p.Name, string(p.Maturity), p.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return baby.Profile{}, fmt.Errorf("upsert baby %s: %w", p.ID, err)
	}
	return p, nil
}

// GetBaby reads one profile. Missing ids wrap ErrNotFound.
func (s *Store) GetBaby(ctx context.Context, id string) (baby.Profile, error) {
	var p baby.Profile
	var name sql.NullString
	var maturity, created string
	err := s.db.QueryRowContext(ctx,
		`SELECT baby_id, name, maturity, created_at FROM babies WHERE baby_id = ?`, id,
	).Scan(&p.ID, &name, &maturity, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return baby.Profile{}, fmt.Errorf("get baby %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return baby.Profile{}, fmt.Errorf("get baby %s: %w", id, err)
	}
	p.Name = name.String
	p.Maturity = baby.ParseMaturity(maturity)
	p.CreatedAt, _ = time.Parse(time.RFC3339Nano, created)
	return p, nil
}

// ListBabies returns every profile ordered by creation time.
func (s *Store) ListBabies() ([]baby.Profile, error) {
	rows, err := s.db.Query(`SELECT baby_id, name, maturity, created_at FROM babies ORDER BY created_at ASC`)
	if err != nil {
		return nil, fmt.Errorf("list babies: %w", err)
	}
	defer rows.Close()

	var out []baby.Profile
	for rows.Next() {
		var p baby.Profile
		var name sql.NullString
		var maturity, created string
		if err := rows.Scan(&p.ID, &name, &maturity, &created); err != nil {
			return nil, fmt.Errorf("scan baby: %w", err)
		}
		p.Name = name.String
		p.Maturity = baby.ParseMaturity(maturity)
		p.CreatedAt, _ = time.Parse(time.RFC3339Nano, created)
		out = append(out, p)
	}
	return out, rows.Err()
}

// #endregion babies

// #region events
// AddEvent stores one event for babyID and returns it with its assigned id.
func (s *Store) AddEvent(babyID string, e event.Event) (event.Event, error) {
	out, err := s.AddEvents(babyID, []event.Event{e})
	if err != nil {
		return event.Event{}, err
	}
	return out[0], nil
}

// AddEvents stores a batch atomically. Events without an id get a fresh uuid.
func (s *Store) AddEvents(babyID string, events []event.Event) ([]event.Event, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC().Format(time.RFC3339Nano)
	out := make([]event.Event, 0, len(events))
	for _, e := range events {
		if e.ID == "" {
			e.ID = uuid.New().String()
		}
		payload, err := json.Marshal(e)
		if err != nil {
			return nil, fmt.Errorf("marshal event %s: %w", e.ID, err)
		}
		var occurred any
		if ms, ok := event.ResolveTimestamp(e); ok {
			occurred = ms
		}
		_, err = tx.Exec(
			`INSERT INTO care_events (event_id, baby_id, kind, occurred_at, payload_json, created_at)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			e.ID, babyID, string(e.Kind), occurred, string(payload), now,
		)
		if err != nil {
			return nil, fmt.Errorf("insert event %s: %w", e.ID, err)
		}
		out = append(out, e)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return out, nil
}

// ListEvents returns events of one kind for babyID, newest first. Zero
// since or until disables that time bound; untimed events are always
// included and sort last. limit <= 0 means no limit.
func (s *Store) ListEvents(ctx context.Context, babyID string, kind event.Kind, since, until time.Time, limit int) ([]event.Event, error) {
	query := `SELECT payload_json FROM care_events WHERE baby_id = ? AND kind = ?`
	args := []any{babyID, string(kind)}
	if !since.IsZero() {
		query += ` AND (occurred_at IS NULL OR occurred_at >= ?)`
		args = append(args, since.UnixMilli())
	}
	if !until.IsZero() {
		query += ` AND (occurred_at IS NULL OR occurred_at <= ?)`
		args = append(args, until.UnixMilli())
	}
	query += ` ORDER BY occurred_at IS NULL, occurred_at DESC, created_at DESC`
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	return s.queryEvents(ctx, kind, query, args...)
}

// newestTimed returns the latest event of kind with a resolvable timestamp
// at or before until, or nil when there is none.
func (s *Store) newestTimed(ctx context.Context, babyID string, kind event.Kind, until time.Time) ([]event.Event, error) {
	return s.queryEvents(ctx, kind,
		`SELECT payload_json FROM care_events
		 WHERE baby_id = ? AND kind = ? AND occurred_at IS NOT NULL AND occurred_at <= ?
		 ORDER BY occurred_at DESC, created_at DESC LIMIT 1`,
		babyID, string(kind), until.UnixMilli(),
	)
}

func (s *Store) queryEvents(ctx context.Context, kind event.Kind, query string, args ...any) ([]event.Event, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list %s events: %w", kind, err)
	}
	defer rows.Close()

	var out []event.Event
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		var e event.Event
		if err := json.Unmarshal([]byte(payload), &e); err != nil {
			return nil, fmt.Errorf("decode event: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// #endregion events

// #region snapshot
// Snapshot loads the baby and its caregiving context as of now. Nothing
// timed after now is returned. Feeding and sleep lists are bounded by
// lookback; when the window holds no timed event the newest timed event of
// that kind is appended so the oldest fallback tier can apply.
func (s *Store) Snapshot(ctx context.Context, babyID string, now time.Time, lookback time.Duration) (Snapshot, error) {
	p, err := s.GetBaby(ctx, babyID)
	if err != nil {
		return Snapshot{}, err
	}
	snap := Snapshot{Baby: p}

	since := now.Add(-lookback)
	if snap.Feeding, err = s.recentOrNewest(ctx, babyID, event.Feeding, since, now); err != nil {
		return Snapshot{}, err
	}
	if snap.Sleep, err = s.recentOrNewest(ctx, babyID, event.Sleep, since, now); err != nil {
		return Snapshot{}, err
	}
	if snap.Reminders, err = s.ListEvents(ctx, babyID, event.Reminder, time.Time{}, now, 0); err != nil {
		return Snapshot{}, err
	}
	if snap.Alerts, err = s.ListEvents(ctx, babyID, event.Alert, time.Time{}, now, 0); err != nil {
		return Snapshot{}, err
	}
	return snap, nil
}

func (s *Store) recentOrNewest(ctx context.Context, babyID string, kind event.Kind, since, now time.Time) ([]event.Event, error) {
	events, err := s.ListEvents(ctx, babyID, kind, since, now, 0)
	if err != nil {
		return nil, err
	}
	for _, e := range events {
		if _, ok := event.ResolveTimestamp(e); ok {
			return events, nil
		}
	}
	newest, err := s.newestTimed(ctx, babyID, kind, now)
	if err != nil {
		return nil, err
	}
	return append(events, newest...), nil
}

// #endregion snapshot

// #region adjustments
// ListAdjustments returns the most recent adjustment_log rows, newest first.
func (s *Store) ListAdjustments(limit int) ([]AdjustmentRow, error) {
	rows, err := s.db.Query(
		`SELECT adjustment_id, baby_id, final_label, confidence, rules, record_json, eval_passed, created_at
		 FROM adjustment_log ORDER BY id DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list adjustments: %w", err)
	}
	defer rows.Close()

	var out []AdjustmentRow
	for rows.Next() {
		r, err := scanAdjustment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// GetAdjustment reads one adjustment_log row. Missing ids wrap ErrNotFound.
func (s *Store) GetAdjustment(id string) (AdjustmentRow, error) {
	row := s.db.QueryRow(
		`SELECT adjustment_id, baby_id, final_label, confidence, rules, record_json, eval_passed, created_at
		 FROM adjustment_log WHERE adjustment_id = ?`, id,
	)
	r, err := scanAdjustment(row)
	if errors.Is(err, sql.ErrNoRows) {
		return AdjustmentRow{}, fmt.Errorf("get adjustment %s: %w", id, ErrNotFound)
	}
	return r, err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanAdjustment(sc scanner) (AdjustmentRow, error) {
	var r AdjustmentRow
	var babyID, rules sql.NullString
	var passed int
	var created string
	if err := sc.Scan(&r.AdjustmentID, &babyID, &r.FinalLabel, &r.Confidence, &rules, &r.RecordJSON, &passed, &created); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return AdjustmentRow{}, err
		}
		return AdjustmentRow{}, fmt.Errorf("scan adjustment: %w", err)
	}
	r.BabyID = babyID.String
	r.Rules = strings.TrimSpace(rules.String)
	r.EvalPassed = passed != 0
	r.CreatedAt, _ = time.Parse(time.RFC3339Nano, created)
	return r, nil
}

// #endregion adjustments
