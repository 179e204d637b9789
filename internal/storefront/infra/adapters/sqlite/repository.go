// Package sqlite persists the storefront audit trails: every received
// payment webhook and every checkout run transition.
//
// WAL mode is enabled on Open so the webhook handler can append while an
// admin listing reads.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jcmexdev/tradehub/internal/storefront/core/domain/entity"
	"github.com/jcmexdev/tradehub/internal/storefront/core/ports"

	// Pure-Go driver, no CGO needed for the Alpine image.
	_ "modernc.org/sqlite"
)

var (
	_ ports.WebhookLogRepository  = (*Repository)(nil)
	_ ports.CheckoutLogRepository = (*Repository)(nil)
)

// Both tables are append-only: rows are never updated or deleted.
const schema = `
CREATE TABLE IF NOT EXISTS webhook_logs (
    id               TEXT    PRIMARY KEY,
    reference        TEXT    NOT NULL,
    payment_status   TEXT    NOT NULL,
    amount           REAL    NOT NULL DEFAULT 0,
    signature_valid  INTEGER NOT NULL DEFAULT 0,
    processed        INTEGER NOT NULL DEFAULT 0,
    -- NULL until the callback was applied to a payment record.
    processed_at     TEXT,
    error_message    TEXT,
    created_at       TEXT    NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_webhook_logs_created ON webhook_logs(created_at);
CREATE INDEX IF NOT EXISTS idx_webhook_logs_reference ON webhook_logs(reference);

CREATE TABLE IF NOT EXISTS checkout_logs (
    id              INTEGER PRIMARY KEY AUTOINCREMENT,
    checkout_id     TEXT    NOT NULL,
    status          TEXT    NOT NULL,
    current_step    TEXT    NOT NULL DEFAULT '',
    -- JSON request that started the run. Only set on STARTED rows.
    payload         TEXT,
    error_messages  TEXT    NOT NULL DEFAULT '[]',
    -- W3C ids of the span active when the row was written.
    trace_id        TEXT    NOT NULL DEFAULT '',
    span_id         TEXT    NOT NULL DEFAULT '',
    updated_at      TEXT    NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_checkout_logs_checkout ON checkout_logs(checkout_id, updated_at);
CREATE INDEX IF NOT EXISTS idx_checkout_logs_trace ON checkout_logs(trace_id);
`

type Repository struct {
	db *sql.DB
}

// Open opens (or creates) the database at path and applies the schema.
//
//	repo, err := sqlite.Open("./data/storefront.db")
func Open(path string) (*Repository, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=foreign_keys(on)&_pragma=busy_timeout(5000)", path)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open %q: %w", path, err)
	}

	// Single writer.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite: apply schema: %w", err)
	}
	return &Repository{db: db}, nil
}

func (r *Repository) Close() error {
	return r.db.Close()
}

// Ping reports whether the database is reachable.
func (r *Repository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *Repository) SaveWebhook(ctx context.Context, entry *entity.WebhookLog) error {
	const q = `
		INSERT INTO webhook_logs
			(id, reference, payment_status, amount, signature_valid, processed, processed_at, error_message, created_at)
		VALUES
			(?, ?, ?, ?, ?, ?, ?, ?, ?)`

	var processedAt any
	if entry.ProcessedAt != nil {
		processedAt = formatTime(*entry.ProcessedAt)
	}

	_, err := r.db.ExecContext(ctx, q,
		entry.ID,
		entry.Reference,
		string(entry.PaymentStatus),
		entry.Amount,
		entry.SignatureValid,
		entry.Processed,
		processedAt,
		nullableString(entry.ErrorMessage),
		formatTime(entry.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("sqlite: save webhook log for %q: %w", entry.Reference, err)
	}
	return nil
}

// ListWebhooks returns newest first.
func (r *Repository) ListWebhooks(ctx context.Context, filter entity.WebhookFilter) ([]entity.WebhookLog, error) {
	q := `
		SELECT id, reference, payment_status, amount, signature_valid, processed,
		       COALESCE(processed_at, ''), COALESCE(error_message, ''), created_at
		FROM   webhook_logs`
	var args []any
	if filter.Status != "" {
		q += ` WHERE payment_status = ?`
		args = append(args, string(filter.Status))
	}
	q += ` ORDER BY created_at DESC, rowid DESC LIMIT ? OFFSET ?`
	limit := filter.Limit
	if limit <= 0 {
		limit = -1
	}
	args = append(args, limit, max(filter.Offset, 0))

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: list webhook logs: %w", err)
	}
	defer rows.Close()

	out := []entity.WebhookLog{}
	for rows.Next() {
		var (
			w                      entity.WebhookLog
			processedAt, createdAt string
		)
		if err := rows.Scan(
			&w.ID,
			&w.Reference,
			&w.PaymentStatus,
			&w.Amount,
			&w.SignatureValid,
			&w.Processed,
			&processedAt,
			&w.ErrorMessage,
			&createdAt,
		); err != nil {
			return nil, fmt.Errorf("sqlite: scan webhook log: %w", err)
		}
		if w.CreatedAt, err = parseRFC3339(createdAt); err != nil {
			return nil, err
		}
		if processedAt != "" {
			t, err := parseRFC3339(processedAt)
			if err != nil {
				return nil, err
			}
			w.ProcessedAt = &t
		}
		out = append(out, w)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterate webhook logs: %w", err)
	}
	return out, nil
}

func (r *Repository) CountWebhooks(ctx context.Context, filter entity.WebhookFilter) (int, error) {
	q := `SELECT COUNT(*) FROM webhook_logs`
	var args []any
	if filter.Status != "" {
		q += ` WHERE payment_status = ?`
		args = append(args, string(filter.Status))
	}

	var n int
	if err := r.db.QueryRowContext(ctx, q, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("sqlite: count webhook logs: %w", err)
	}
	return n, nil
}

func (r *Repository) AppendCheckout(ctx context.Context, entry *entity.CheckoutLog) error {
	const q = `
		INSERT INTO checkout_logs
			(checkout_id, status, current_step, payload, error_messages, trace_id, span_id, updated_at)
		VALUES
			(?, ?, ?, ?, ?, ?, ?, ?)`

	errs := entry.ErrorMessages
	if errs == "" {
		errs = "[]"
	}
	_, err := r.db.ExecContext(ctx, q,
		entry.CheckoutID,
		string(entry.Status),
		entry.CurrentStep,
		nullableString(entry.Payload),
		errs,
		entry.TraceID,
		entry.SpanID,
		formatTime(entry.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("sqlite: append checkout log for %q: %w", entry.CheckoutID, err)
	}
	return nil
}

// CheckoutHistory returns every row of a run, oldest first.
func (r *Repository) CheckoutHistory(ctx context.Context, checkoutID string) ([]entity.CheckoutLog, error) {
	const q = `
		SELECT checkout_id, status, current_step, COALESCE(payload, ''), error_messages,
		       trace_id, span_id, updated_at
		FROM   checkout_logs
		WHERE  checkout_id = ?
		ORDER  BY updated_at ASC, id ASC`

	rows, err := r.db.QueryContext(ctx, q, checkoutID)
	if err != nil {
		return nil, fmt.Errorf("sqlite: checkout history for %q: %w", checkoutID, err)
	}
	defer rows.Close()

	var out []entity.CheckoutLog
	for rows.Next() {
		var (
			c         entity.CheckoutLog
			updatedAt string
		)
		if err := rows.Scan(
			&c.CheckoutID,
			&c.Status,
			&c.CurrentStep,
			&c.Payload,
			&c.ErrorMessages,
			&c.TraceID,
			&c.SpanID,
			&updatedAt,
		); err != nil {
			return nil, fmt.Errorf("sqlite: scan checkout log: %w", err)
		}
		if c.UpdatedAt, err = parseRFC3339(updatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterate checkout logs: %w", err)
	}
	return out, nil
}

// nullableString stores NULL instead of empty TEXT.
func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
