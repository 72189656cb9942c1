package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite" // SQLite driver registration.

	"mediathek_bot/internal/model"
	"mediathek_bot/migrations"
)

const timeLayout = "2006-01-02T15:04:05Z"

// SQLite implements Storage backed by a SQLite database. The database/sql
// pool serializes access to the underlying connection, so the same instance
// is shared between the command handlers and the poller.
type SQLite struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at dsn and runs pending migrations.
func NewSQLite(dsn string) (*SQLite, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=OFF"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("disable foreign keys: %w", err)
	}

	if err := migrations.Run(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLite{db: db}, nil
}

// Close closes the underlying database connection.
func (s *SQLite) Close() error {
	return s.db.Close()
}

// CreateSubscription inserts a new subscription with an empty seen set and
// populates its ID and CreatedAt.
func (s *SQLite) CreateSubscription(ctx context.Context, sub *model.Subscription) error {
	now := time.Now().UTC().Format(timeLayout)
	blob, err := encodeSeen(sub.Seen)
	if err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO subscriptions (chat_id, query, seen_blob, created_at) VALUES (?, ?, ?, ?)`,
		sub.ChatID, sub.Query, blob, now,
	)
	if err != nil {
		return fmt.Errorf("insert subscription: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("last insert id: %w", err)
	}
	sub.ID = id
	sub.CreatedAt, _ = time.Parse(timeLayout, now)
	return nil
}

// GetSubscription returns a single subscription by its ID.
func (s *SQLite) GetSubscription(ctx context.Context, id int64) (*model.Subscription, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, chat_id, query, seen_blob, created_at FROM subscriptions WHERE id = ?`, id,
	)
	return scanSubscription(row)
}

// ListSubscriptions returns all subscriptions belonging to the given chat.
func (s *SQLite) ListSubscriptions(ctx context.Context, chatID int64) ([]model.Subscription, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, chat_id, query, seen_blob, created_at
		 FROM subscriptions WHERE chat_id = ? ORDER BY id`, chatID,
	)
	if err != nil {
		return nil, fmt.Errorf("query subscriptions: %w", err)
	}
	defer func() { _ = rows.Close() }()
	return scanSubscriptions(rows)
}

// ListAllSubscriptions returns every subscription in the store. Used by the
// poller's full scan.
func (s *SQLite) ListAllSubscriptions(ctx context.Context) ([]model.Subscription, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, chat_id, query, seen_blob, created_at FROM subscriptions ORDER BY id`,
	)
	if err != nil {
		return nil, fmt.Errorf("query all subscriptions: %w", err)
	}
	defer func() { _ = rows.Close() }()
	return scanSubscriptions(rows)
}

// DeleteSubscription removes a subscription and its filters, but only if it
// belongs to the given chat. It reports whether a row was deleted; deleting
// a missing or foreign subscription is not an error.
func (s *SQLite) DeleteSubscription(ctx context.Context, chatID, id int64) (bool, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx,
		`DELETE FROM subscriptions WHERE id = ? AND chat_id = ?`, id, chatID,
	)
	if err != nil {
		return false, fmt.Errorf("delete subscription: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return false, tx.Commit()
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM filters WHERE subscription_id = ?`, id); err != nil {
		return false, fmt.Errorf("delete filters: %w", err)
	}
	return true, tx.Commit()
}

// UpdateSeen overwrites the seen set of a subscription with the given
// snapshot. The poller is the only writer, so last-writer-wins is fine.
// It reports whether the subscription still exists.
func (s *SQLite) UpdateSeen(ctx context.Context, id int64, seen []string) (bool, error) {
	blob, err := encodeSeen(seen)
	if err != nil {
		return false, err
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE subscriptions SET seen_blob = ? WHERE id = ?`, blob, id,
	)
	if err != nil {
		return false, fmt.Errorf("update seen: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return n > 0, nil
}

// CreateFilter inserts a new filter and populates its ID and CreatedAt.
func (s *SQLite) CreateFilter(ctx context.Context, f *model.Filter) error {
	now := time.Now().UTC().Format(timeLayout)
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO filters (subscription_id, kind, scope, value, created_at) VALUES (?, ?, ?, ?, ?)`,
		f.SubscriptionID, string(f.Kind), string(f.Scope), f.Value, now,
	)
	if err != nil {
		return fmt.Errorf("insert filter: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("last insert id: %w", err)
	}
	f.ID = id
	f.CreatedAt, _ = time.Parse(timeLayout, now)
	return nil
}

// ListFilters returns all filters for the given subscription.
func (s *SQLite) ListFilters(ctx context.Context, subscriptionID int64) ([]model.Filter, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, subscription_id, kind, scope, value, created_at
		 FROM filters WHERE subscription_id = ? ORDER BY id`, subscriptionID,
	)
	if err != nil {
		return nil, fmt.Errorf("query filters: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var filters []model.Filter
	for rows.Next() {
		f, err := scanFilter(rows)
		if err != nil {
			return nil, err
		}
		filters = append(filters, f)
	}
	return filters, rows.Err()
}

// GetFilter returns a single filter by its ID.
func (s *SQLite) GetFilter(ctx context.Context, id int64) (*model.Filter, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, subscription_id, kind, scope, value, created_at FROM filters WHERE id = ?`, id,
	)
	f, err := scanFilter(row)
	if err != nil {
		return nil, err
	}
	return &f, nil
}

// DeleteFilter removes a filter by its ID.
func (s *SQLite) DeleteFilter(ctx context.Context, id int64) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM filters WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete filter: %w", err)
	}
	return nil
}

// encodeSeen serializes a seen set to its blob column form. A nil slice is
// stored as an empty JSON array so the round trip never yields null.
func encodeSeen(seen []string) ([]byte, error) {
	if seen == nil {
		seen = []string{}
	}
	blob, err := json.Marshal(seen)
	if err != nil {
		return nil, fmt.Errorf("encode seen: %w", err)
	}
	return blob, nil
}

func decodeSeen(blob []byte) ([]string, error) {
	if len(blob) == 0 {
		return nil, nil
	}
	var seen []string
	if err := json.Unmarshal(blob, &seen); err != nil {
		return nil, fmt.Errorf("decode seen: %w", err)
	}
	if len(seen) == 0 {
		return nil, nil
	}
	return seen, nil
}

type scannable interface {
	Scan(dest ...any) error
}

func scanSubscription(row scannable) (*model.Subscription, error) {
	var sub model.Subscription
	var blob []byte
	var created sql.NullString
	err := row.Scan(&sub.ID, &sub.ChatID, &sub.Query, &blob, &created)
	if err != nil {
		return nil, fmt.Errorf("scan subscription: %w", err)
	}
	sub.Seen, err = decodeSeen(blob)
	if err != nil {
		return nil, err
	}
	if created.Valid {
		sub.CreatedAt, _ = time.Parse(timeLayout, created.String)
	}
	return &sub, nil
}

func scanSubscriptions(rows *sql.Rows) ([]model.Subscription, error) {
	var subs []model.Subscription
	for rows.Next() {
		sub, err := scanSubscription(rows)
		if err != nil {
			return nil, err
		}
		subs = append(subs, *sub)
	}
	return subs, rows.Err()
}

func scanFilter(row scannable) (model.Filter, error) {
	var f model.Filter
	var kindStr, scopeStr, createdStr string
	err := row.Scan(&f.ID, &f.SubscriptionID, &kindStr, &scopeStr, &f.Value, &createdStr)
	if err != nil {
		return f, fmt.Errorf("scan filter: %w", err)
	}
	f.Kind = model.FilterKind(kindStr)
	f.Scope = model.FilterScope(scopeStr)
	f.CreatedAt, _ = time.Parse(timeLayout, createdStr)
	return f, nil
}
