package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mabarin/mabarin-web/internal/model"
)

// AuditRepo persists booking events to the booking_audit table.
type AuditRepo struct{ DB *sql.DB }

func NewAuditRepo(db *sql.DB) *AuditRepo { return &AuditRepo{DB: db} }

// Insert stores e and returns the new row id.
func (r *AuditRepo) Insert(ctx context.Context, e model.AuditEntry) (int64, error) {
	res, err := r.DB.ExecContext(ctx,
		`INSERT INTO booking_audit
		   (event, session_id, user_email, activity_id, transaction_id, payment_method_id, detail, occurred_at)
		 VALUES (?,?,?,?,?,?,?,?)`,
		e.Event, e.SessionID, e.UserEmail,
		nullInt(e.ActivityID), nullString(e.TransactionID), nullInt(e.PaymentMethodID),
		e.Detail, e.OccurredAt.UTC())
	if err != nil {
		return 0, fmt.Errorf("insert audit: %w", err)
	}
	return res.LastInsertId()
}

// Record implements the queue sink.
func (r *AuditRepo) Record(ctx context.Context, e model.AuditEntry) error {
	_, err := r.Insert(ctx, e)
	return err
}

const auditColumns = `id, event, session_id, user_email, activity_id, transaction_id, payment_method_id, detail, occurred_at`

// Get returns one entry by id.
func (r *AuditRepo) Get(ctx context.Context, id int64) (model.AuditEntry, error) {
	row := r.DB.QueryRowContext(ctx, `SELECT `+auditColumns+` FROM booking_audit WHERE id=?`, id)
	e, err := scanAudit(row)
	if errors.Is(err, sql.ErrNoRows) {
		return e, ErrNotFound
	}
	return e, err
}

// Recent lists the newest entries recorded for email.
func (r *AuditRepo) Recent(ctx context.Context, email string, limit int) ([]model.AuditEntry, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := r.DB.QueryContext(ctx,
		`SELECT `+auditColumns+` FROM booking_audit WHERE user_email=? ORDER BY occurred_at DESC, id DESC LIMIT ?`,
		email, limit)
	if err != nil {
		return nil, fmt.Errorf("list audit: %w", err)
	}
	defer rows.Close()

	var out []model.AuditEntry
	for rows.Next() {
		e, err := scanAudit(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

type scanner interface{ Scan(dest ...any) error }

func scanAudit(s scanner) (model.AuditEntry, error) {
	var (
		e        model.AuditEntry
		activity sql.NullInt64
		txn      sql.NullString
		method   sql.NullInt64
		detail   sql.NullString
	)
	if err := s.Scan(&e.ID, &e.Event, &e.SessionID, &e.UserEmail, &activity, &txn, &method, &detail, &e.OccurredAt); err != nil {
		return e, err
	}
	e.ActivityID = activity.Int64
	e.TransactionID = txn.String
	e.PaymentMethodID = method.Int64
	e.Detail = detail.String
	return e, nil
}

func nullInt(v int64) sql.NullInt64 { return sql.NullInt64{Int64: v, Valid: v != 0} }

func nullString(v string) sql.NullString { return sql.NullString{String: v, Valid: v != ""} }
