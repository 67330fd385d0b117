package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/i474232898/pest-advisory/internal/risk"
)

var (
	// ErrNotFound is returned when a record or cached snapshot does not exist.
	ErrNotFound = errors.New("not found")
)

const schema = `
CREATE TABLE IF NOT EXISTS farmers (
	uid        TEXT PRIMARY KEY,
	record     TEXT NOT NULL,
	updated_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS pest_reports (
	id          TEXT PRIMARY KEY,
	district    TEXT NOT NULL,
	crop        TEXT NOT NULL,
	pest        TEXT NOT NULL DEFAULT '',
	symptoms    TEXT NOT NULL DEFAULT '',
	confidence  REAL NOT NULL DEFAULT 1.0,
	report_date TEXT NOT NULL,
	created_at  INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_reports_district ON pest_reports(lower(district));

CREATE TABLE IF NOT EXISTS alerts (
	id         TEXT PRIMARY KEY,
	uid        TEXT NOT NULL,
	crop_name  TEXT NOT NULL,
	created_at INTEGER NOT NULL,
	payload    TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_alerts_uid ON alerts(uid, created_at);
`

// Repository persists farmer records, official reports and generated alerts
// in SQLite.
type Repository struct {
	db     *sqlx.DB
	logger *zap.Logger
	now    func() time.Time
}

// OpenSQLite opens (or creates) the database at path and applies the schema.
// ":memory:" gives a private in-memory database.
func OpenSQLite(path string, logger *zap.Logger) (*Repository, error) {
	db, err := sqlx.Connect("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	// Every pooled connection to ":memory:" would get its own database.
	if path == ":memory:" {
		db.SetMaxOpenConns(1)
	} else if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("pragma: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	logger.Info("repository initialized", zap.String("db_path", path))
	return &Repository{db: db, logger: logger, now: time.Now}, nil
}

// Close closes the underlying database connection.
func (r *Repository) Close() error {
	return r.db.Close()
}

// SaveFarmer stores the raw farmer record, replacing any previous version.
func (r *Repository) SaveFarmer(ctx context.Context, uid string, record json.RawMessage) error {
	const q = `INSERT INTO farmers (uid, record, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(uid) DO UPDATE SET record = excluded.record, updated_at = excluded.updated_at`
	if _, err := r.db.ExecContext(ctx, q, uid, string(record), r.now().UnixMilli()); err != nil {
		return fmt.Errorf("save farmer %s: %w", uid, err)
	}
	return nil
}

// GetFarmer returns the raw record of a farmer.
func (r *Repository) GetFarmer(ctx context.Context, uid string) (json.RawMessage, error) {
	var record string
	err := r.db.GetContext(ctx, &record, `SELECT record FROM farmers WHERE uid = ?`, uid)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get farmer %s: %w", uid, err)
	}
	return json.RawMessage(record), nil
}

// ListFarmerIDs returns every stored farmer uid in ascending order.
func (r *Repository) ListFarmerIDs(ctx context.Context) ([]string, error) {
	var ids []string
	if err := r.db.SelectContext(ctx, &ids, `SELECT uid FROM farmers ORDER BY uid`); err != nil {
		return nil, fmt.Errorf("list farmers: %w", err)
	}
	return ids, nil
}

// SaveReport inserts or replaces an official report.
func (r *Repository) SaveReport(ctx context.Context, report risk.OfficialReport) error {
	report.District = strings.TrimSpace(report.District)
	const q = `INSERT OR REPLACE INTO pest_reports
		(id, district, crop, pest, symptoms, confidence, report_date, created_at)
		VALUES (:id, :district, :crop, :pest, :symptoms, :confidence, :report_date, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, q, report); err != nil {
		return fmt.Errorf("save report %s: %w", report.ID, err)
	}
	return nil
}

// ReportsForDistrict returns reports for a district, matched
// case-insensitively, whose report date falls on or after the day of since.
// Reports with unparseable dates are skipped.
func (r *Repository) ReportsForDistrict(ctx context.Context, district string, since time.Time) ([]risk.OfficialReport, error) {
	var rows []risk.OfficialReport
	const q = `SELECT id, district, crop, pest, symptoms, confidence, report_date, created_at
		FROM pest_reports WHERE lower(district) = ? ORDER BY created_at, id`
	if err := r.db.SelectContext(ctx, &rows, q, strings.ToLower(strings.TrimSpace(district))); err != nil {
		return nil, fmt.Errorf("reports for %s: %w", district, err)
	}

	since = since.UTC()
	cutoff := time.Date(since.Year(), since.Month(), since.Day(), 0, 0, 0, 0, time.UTC)

	out := rows[:0]
	for _, rep := range rows {
		date, ok := risk.ParseDate(rep.ReportDate)
		if !ok {
			r.logger.Debug("skipping report with bad date", zap.String("id", rep.ID), zap.String("reportDate", rep.ReportDate))
			continue
		}
		if !date.Before(cutoff) {
			out = append(out, rep)
		}
	}
	return out, nil
}

type alertRow struct {
	ID        string `db:"id"`
	UID       string `db:"uid"`
	CropName  string `db:"crop_name"`
	CreatedAt int64  `db:"created_at"`
	Payload   string `db:"payload"`
}

// SaveAlerts stores a scan's alerts in one transaction. Alerts must carry
// an ID and UID.
func (r *Repository) SaveAlerts(ctx context.Context, alerts []risk.Alert) error {
	if len(alerts) == 0 {
		return nil
	}
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	const q = `INSERT INTO alerts (id, uid, crop_name, created_at, payload)
		VALUES (:id, :uid, :crop_name, :created_at, :payload)`
	for _, a := range alerts {
		payload, err := json.Marshal(a)
		if err != nil {
			return fmt.Errorf("encode alert %s: %w", a.ID, err)
		}
		row := alertRow{ID: a.ID, UID: a.UID, CropName: a.CropName, CreatedAt: a.Timestamp, Payload: string(payload)}
		if _, err := tx.NamedExecContext(ctx, q, row); err != nil {
			return fmt.Errorf("save alert %s: %w", a.ID, err)
		}
	}
	return tx.Commit()
}

// AlertsForFarmer returns a farmer's alerts, newest first. A limit <= 0
// returns all of them.
func (r *Repository) AlertsForFarmer(ctx context.Context, uid string, limit int) ([]risk.Alert, error) {
	q := `SELECT id, uid, crop_name, created_at, payload FROM alerts WHERE uid = ? ORDER BY created_at DESC, id`
	args := []any{uid}
	if limit > 0 {
		q += ` LIMIT ?`
		args = append(args, limit)
	}

	var rows []alertRow
	if err := r.db.SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, fmt.Errorf("alerts for %s: %w", uid, err)
	}

	alerts := make([]risk.Alert, 0, len(rows))
	for _, row := range rows {
		var a risk.Alert
		if err := json.Unmarshal([]byte(row.Payload), &a); err != nil {
			return nil, fmt.Errorf("decode alert %s: %w", row.ID, err)
		}
		alerts = append(alerts, a)
	}
	return alerts, nil
}
