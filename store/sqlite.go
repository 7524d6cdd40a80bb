package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/vidkit/vidkit/core"
)

// SQLiteStore 是 SQLite 实现的 PreferenceStore，适合单机嵌入式部署。
// 模型整体存 JSON；事件按自增主键保序，快照随事件落盘以支持离线重放。
type SQLiteStore struct {
	db *sql.DB
}

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS preference_models (
	user_id    TEXT PRIMARY KEY,
	model      TEXT NOT NULL,
	updated_at TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS interaction_events (
	seq            INTEGER PRIMARY KEY AUTOINCREMENT,
	id             TEXT NOT NULL,
	user_id        TEXT NOT NULL,
	video_id       TEXT NOT NULL,
	action         TEXT NOT NULL,
	watch_fraction REAL NOT NULL DEFAULT 0,
	snapshot       TEXT,
	created_at     TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_events_user ON interaction_events(user_id, seq);

CREATE TABLE IF NOT EXISTS search_history (
	id           INTEGER PRIMARY KEY AUTOINCREMENT,
	user_id      TEXT NOT NULL,
	query        TEXT NOT NULL,
	result_count INTEGER NOT NULL,
	created_at   TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_history_user ON search_history(user_id, id);
`

func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if _, err := db.Exec(sqliteSchema); err != nil {
		return nil, fmt.Errorf("init schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Name() string { return "sqlite" }

func (s *SQLiteStore) LoadModel(ctx context.Context, userID string) (*core.PreferenceModel, error) {
	var raw string
	err := s.db.QueryRowContext(ctx,
		"SELECT model FROM preference_models WHERE user_id = ?", userID,
	).Scan(&raw)
	if err == sql.ErrNoRows {
		return core.NewPreferenceModel(userID), nil
	}
	if err != nil {
		return nil, fmt.Errorf("load model: %w", err)
	}

	model := core.NewPreferenceModel(userID)
	if err := json.Unmarshal([]byte(raw), model); err != nil {
		return nil, fmt.Errorf("decode model for %s: %w", userID, err)
	}
	return model, nil
}

func (s *SQLiteStore) SaveModel(ctx context.Context, model *core.PreferenceModel) error {
	if model == nil || model.UserID == "" {
		return core.NewDomainError(core.ModuleStore, core.ErrorCodeInvalid, "store: model missing user id")
	}

	data, err := json.Marshal(model)
	if err != nil {
		return fmt.Errorf("encode model for %s: %w", model.UserID, err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO preference_models (user_id, model, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET model = excluded.model, updated_at = excluded.updated_at`,
		model.UserID, string(data), time.Now().UTC(),
	)
	if err != nil {
		return core.NewDomainError(core.ModuleStore, core.ErrorCodePersistence,
			fmt.Sprintf("store: save model for %s: %v", model.UserID, err))
	}
	return nil
}

func (s *SQLiteStore) AppendEvent(ctx context.Context, ev core.InteractionEvent, video *core.Video) error {
	var snapshot sql.NullString
	if video != nil {
		data, err := json.Marshal(video)
		if err != nil {
			return fmt.Errorf("encode snapshot for %s: %w", ev.ID, err)
		}
		snapshot = sql.NullString{String: string(data), Valid: true}
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO interaction_events (id, user_id, video_id, action, watch_fraction, snapshot, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		ev.ID, ev.UserID, ev.VideoID, string(ev.Action), ev.WatchFraction, snapshot, ev.Timestamp,
	)
	if err != nil {
		return core.NewDomainError(core.ModuleStore, core.ErrorCodePersistence,
			fmt.Sprintf("store: append event for %s: %v", ev.UserID, err))
	}
	return nil
}

func (s *SQLiteStore) Events(ctx context.Context, userID string) ([]core.StoredEvent, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, video_id, action, watch_fraction, snapshot, created_at
		FROM interaction_events WHERE user_id = ? ORDER BY seq`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	var out []core.StoredEvent
	for rows.Next() {
		var (
			se       core.StoredEvent
			action   string
			snapshot sql.NullString
		)
		se.Event.UserID = userID
		if err := rows.Scan(&se.Event.ID, &se.Event.VideoID, &action,
			&se.Event.WatchFraction, &snapshot, &se.Event.Timestamp); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		se.Event.Action = core.Action(action)

		if snapshot.Valid {
			var v core.Video
			if err := json.Unmarshal([]byte(snapshot.String), &v); err != nil {
				return nil, fmt.Errorf("decode snapshot: %w", err)
			}
			se.Video = &v
		}
		out = append(out, se)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) RecordSearch(ctx context.Context, userID, query string, resultCount int) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO search_history (user_id, query, result_count, created_at) VALUES (?, ?, ?, ?)`,
		userID, query, resultCount, time.Now().UTC(),
	)
	return err
}

func (s *SQLiteStore) SearchHistory(ctx context.Context, userID string, limit int) ([]core.SearchRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT query, result_count, created_at FROM search_history
		WHERE user_id = ? ORDER BY id DESC LIMIT ?`,
		userID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}
	defer rows.Close()

	var out []core.SearchRecord
	for rows.Next() {
		var rec core.SearchRecord
		if err := rows.Scan(&rec.Query, &rec.ResultCount, &rec.At); err != nil {
			return nil, fmt.Errorf("scan history: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

var _ core.PreferenceStore = (*SQLiteStore)(nil)
