// internal/infra/database/report_repository.go
package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"tariff_digest/internal/domain/report"
)

var _ report.Repository = (*ReportRepository)(nil)

// ReportRepository is the Report Identity Store on postgres or sqlite. Rows are
// keyed by the YYYY-MM-DD report date and never deleted.
type ReportRepository struct {
	db      *sql.DB
	dialect Dialect
	now     func() time.Time
}

func NewReportRepository(db *sql.DB, dialect Dialect) *ReportRepository {
	return &ReportRepository{db: db, dialect: dialect, now: func() time.Time { return time.Now().UTC() }}
}

const selectColumns = `report_date, status, fingerprint, item_count, last_error, started_at, built_at, updated_at`

func scanRecord(row interface{ Scan(...any) error }) (*report.Record, error) {
	var (
		rec     report.Record
		dateStr string
		status  string
	)
	if err := row.Scan(&dateStr, &status, &rec.Fingerprint, &rec.ItemCount, &rec.LastError,
		&rec.StartedAt, &rec.BuiltAt, &rec.UpdatedAt); err != nil {
		return nil, err
	}
	d, err := report.ParseDate(dateStr)
	if err != nil {
		return nil, fmt.Errorf("corrupt report_date in store: %w", err)
	}
	rec.Date = d
	rec.Status = report.Status(status)
	return &rec, nil
}

func (r *ReportRepository) Get(ctx context.Context, date report.Date) (*report.Record, error) {
	query := rebind(r.dialect, `SELECT `+selectColumns+` FROM report_records WHERE report_date = ?`)
	rec, err := scanRecord(r.db.QueryRowContext(ctx, query, date.String()))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, report.ErrRecordNotFound
		}
		return nil, fmt.Errorf("error getting report record %s: %w", date, err)
	}
	return rec, nil
}

func (r *ReportRepository) MarkBuilding(ctx context.Context, date report.Date) error {
	now := r.now()
	query := rebind(r.dialect, `INSERT INTO report_records (report_date, status, started_at, updated_at)
               VALUES (?, ?, ?, ?)
               ON CONFLICT (report_date) DO UPDATE
               SET status = excluded.status, started_at = excluded.started_at, updated_at = excluded.updated_at`)
	if _, err := r.db.ExecContext(ctx, query, date.String(), string(report.StatusPending), now, now); err != nil {
		return fmt.Errorf("error marking report %s as building: %w", date, err)
	}
	return nil
}

func (r *ReportRepository) MarkBuilt(ctx context.Context, date report.Date, fp report.Fingerprint) error {
	now := r.now()
	query := rebind(r.dialect, `INSERT INTO report_records (report_date, status, fingerprint, item_count, last_error, started_at, built_at, updated_at)
               VALUES (?, ?, ?, ?, '', ?, ?, ?)
               ON CONFLICT (report_date) DO UPDATE
               SET status = excluded.status, fingerprint = excluded.fingerprint, item_count = excluded.item_count,
                   last_error = '', built_at = excluded.built_at, updated_at = excluded.updated_at`)
	if _, err := r.db.ExecContext(ctx, query, date.String(), string(report.StatusBuilt), fp.Value, fp.ItemCount, now, now, now); err != nil {
		return fmt.Errorf("error marking report %s as built: %w", date, err)
	}
	return nil
}

// MarkFailed leaves fingerprint, item_count and built_at untouched.
func (r *ReportRepository) MarkFailed(ctx context.Context, date report.Date, cause error) error {
	now := r.now()
	msg := ""
	if cause != nil {
		msg = cause.Error()
	}
	query := rebind(r.dialect, `INSERT INTO report_records (report_date, status, last_error, started_at, updated_at)
               VALUES (?, ?, ?, ?, ?)
               ON CONFLICT (report_date) DO UPDATE
               SET status = excluded.status, last_error = excluded.last_error, updated_at = excluded.updated_at`)
	if _, err := r.db.ExecContext(ctx, query, date.String(), string(report.StatusFailed), msg, now, now); err != nil {
		return fmt.Errorf("error marking report %s as failed: %w", date, err)
	}
	return nil
}

func (r *ReportRepository) IsBuilt(ctx context.Context, date report.Date) (bool, error) {
	rec, err := r.Get(ctx, date)
	if err != nil {
		if errors.Is(err, report.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}
	return rec.IsBuilt(), nil
}

func (r *ReportRepository) List(ctx context.Context, from, to report.Date) ([]*report.Record, error) {
	query := rebind(r.dialect, `SELECT `+selectColumns+` FROM report_records
               WHERE report_date >= ? AND report_date <= ?
               ORDER BY report_date ASC`)
	rows, err := r.db.QueryContext(ctx, query, from.String(), to.String())
	if err != nil {
		return nil, fmt.Errorf("error listing report records: %w", err)
	}
	defer rows.Close()

	var records []*report.Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning report record: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating report records: %w", err)
	}
	return records, nil
}
