package payment

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"gymdesk/internal/adapters/storage"
	domain "gymdesk/internal/domain/payment"
	"gymdesk/internal/domain/period"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new payment store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

const paymentColumns = "id, member_id, period, amount_cents, method, paid_at, expires_at, created_at"

func scanPayment(scan func(dest ...any) error) (domain.Payment, error) {
	var entity domain.Payment
	var periodRaw, paidAt, expiresAt, createdAt string
	err := scan(
		&entity.ID,
		&entity.MemberID,
		&periodRaw,
		&entity.AmountCents,
		&entity.Method,
		&paidAt,
		&expiresAt,
		&createdAt,
	)
	if err != nil {
		return domain.Payment{}, err
	}
	entity.Period = period.Key(periodRaw)
	entity.PaidAt, _ = time.Parse(time.RFC3339, paidAt)
	entity.ExpiresAt, _ = time.Parse(time.RFC3339, expiresAt)
	entity.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return entity, nil
}

// GetByID retrieves a Payment by its ID.
// PRE: id is non-empty
// POST: Returns the entity or an error if not found
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Payment, error) {
	query := "SELECT " + paymentColumns + " FROM payment WHERE id = ?"
	row := s.db.QueryRowContext(ctx, query, id)

	entity, err := scanPayment(row.Scan)
	if err == sql.ErrNoRows {
		return domain.Payment{}, fmt.Errorf("payment not found: %w", err)
	}
	return entity, err
}

// Save persists a Payment to the database.
// PRE: entity has been validated
// POST: Entity is persisted (insert or update)
func (s *SQLiteStore) Save(ctx context.Context, entity domain.Payment) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	// Upsert implementation
	fields := []string{"id", "member_id", "period", "amount_cents", "method", "paid_at", "expires_at", "created_at"}
	placeholders := []string{"?", "?", "?", "?", "?", "?", "?", "?"}
	updates := []string{"paid_at=excluded.paid_at", "expires_at=excluded.expires_at"}

	query := fmt.Sprintf(
		"INSERT INTO payment (%s) VALUES (%s) ON CONFLICT(id) DO UPDATE SET %s",
		strings.Join(fields, ", "),
		strings.Join(placeholders, ", "),
		strings.Join(updates, ", "),
	)

	_, err = tx.ExecContext(ctx, query,
		entity.ID,
		entity.MemberID,
		string(entity.Period),
		entity.AmountCents,
		entity.Method,
		entity.PaidAt.UTC().Format(time.RFC3339),
		entity.ExpiresAt.UTC().Format(time.RFC3339),
		entity.CreatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return err
	}

	return tx.Commit()
}

// ExistsForMemberPeriod reports whether the member already has a payment
// covering the given billing month.
// PRE: memberID is non-empty, p is a valid period key
// POST: Returns true if any row matches
func (s *SQLiteStore) ExistsForMemberPeriod(ctx context.Context, memberID string, p period.Key) (bool, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM payment WHERE member_id = ? AND period = ?",
		memberID, string(p),
	).Scan(&count)
	return count > 0, err
}

// ListByPeriod retrieves all payments recorded against a billing month.
// PRE: p is a valid period key
// POST: Returns matching entities ordered by payment date descending
func (s *SQLiteStore) ListByPeriod(ctx context.Context, p period.Key) ([]domain.Payment, error) {
	query := "SELECT " + paymentColumns + " FROM payment WHERE period = ? ORDER BY paid_at DESC"
	return s.queryPayments(ctx, query, string(p))
}

// ListByYear retrieves all payments whose billing month falls in the year.
// Period keys are "YYYY-MM" text, so a prefix match covers the year.
// PRE: year >= 1
// POST: Returns matching entities ordered by period
func (s *SQLiteStore) ListByYear(ctx context.Context, year int) ([]domain.Payment, error) {
	query := "SELECT " + paymentColumns + " FROM payment WHERE period LIKE ? ORDER BY period"
	return s.queryPayments(ctx, query, fmt.Sprintf("%04d-%%", year))
}

// ListActiveMemberIDs returns distinct member IDs with at least one payment
// whose coverage reaches now.
// PRE: none
// POST: Returns member IDs; members with only expired payments are absent
func (s *SQLiteStore) ListActiveMemberIDs(ctx context.Context, now time.Time) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT DISTINCT member_id FROM payment WHERE expires_at >= ?",
		now.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// ListExpiring retrieves payments whose coverage ends within [from, to],
// joined with member display fields, soonest expiration first.
// PRE: from <= to
// POST: Returns matching rows; a member may appear more than once
func (s *SQLiteStore) ListExpiring(ctx context.Context, from, to time.Time) ([]WithMember, error) {
	query := `SELECT p.id, p.member_id, p.period, p.amount_cents, p.method, p.paid_at, p.expires_at, p.created_at,
		m.first_name, m.last_name, m.contact
		FROM payment p JOIN member m ON m.id = p.member_id
		WHERE p.expires_at >= ? AND p.expires_at <= ?
		ORDER BY p.expires_at ASC`
	return s.queryJoined(ctx, query,
		from.UTC().Format(time.RFC3339), to.UTC().Format(time.RFC3339))
}

// ListPaidBetween retrieves payments by payment date within [from, to),
// joined with member names, newest first.
// PRE: from <= to
// POST: Returns matching rows ordered by paid_at descending
func (s *SQLiteStore) ListPaidBetween(ctx context.Context, from, to time.Time) ([]WithMember, error) {
	query := `SELECT p.id, p.member_id, p.period, p.amount_cents, p.method, p.paid_at, p.expires_at, p.created_at,
		m.first_name, m.last_name, m.contact
		FROM payment p JOIN member m ON m.id = p.member_id
		WHERE p.paid_at >= ? AND p.paid_at < ?
		ORDER BY p.paid_at DESC`
	return s.queryJoined(ctx, query,
		from.UTC().Format(time.RFC3339), to.UTC().Format(time.RFC3339))
}

// Count returns the total number of payments.
// POST: Returns count >= 0
func (s *SQLiteStore) Count(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM payment").Scan(&count)
	return count, err
}

func (s *SQLiteStore) queryPayments(ctx context.Context, query string, args ...any) ([]domain.Payment, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []domain.Payment
	for rows.Next() {
		entity, err := scanPayment(rows.Scan)
		if err != nil {
			return nil, err
		}
		results = append(results, entity)
	}
	return results, rows.Err()
}

func (s *SQLiteStore) queryJoined(ctx context.Context, query string, args ...any) ([]WithMember, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []WithMember
	for rows.Next() {
		var row WithMember
		var periodRaw, paidAt, expiresAt, createdAt string
		err := rows.Scan(
			&row.ID,
			&row.MemberID,
			&periodRaw,
			&row.AmountCents,
			&row.Method,
			&paidAt,
			&expiresAt,
			&createdAt,
			&row.FirstName,
			&row.LastName,
			&row.Contact,
		)
		if err != nil {
			return nil, err
		}
		row.Period = period.Key(periodRaw)
		row.PaidAt, _ = time.Parse(time.RFC3339, paidAt)
		row.ExpiresAt, _ = time.Parse(time.RFC3339, expiresAt)
		row.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		results = append(results, row)
	}
	return results, rows.Err()
}
