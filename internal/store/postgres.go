package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/support-kit/helpdesk-bot/internal/domain"
)

// PostgresStore persists tickets and feedback through a pgx pool.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore constructs the store.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

const ticketColumns = `id, ref, subject_id, status, last_actor, created_at,
       last_user_message_at, last_admin_message_at, closed_at, closed_reason, rating`

func (s *PostgresStore) Get(ctx context.Context, id string) (*domain.Ticket, error) {
	query := fmt.Sprintf(`SELECT %s FROM tickets WHERE id=$1`, ticketColumns)
	ticket, err := scanTicket(s.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return ticket, nil
}

func (s *PostgresStore) Put(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        INSERT INTO tickets (id, ref, subject_id, status, last_actor, created_at,
            last_user_message_at, last_admin_message_at, closed_at, closed_reason, rating)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
        ON CONFLICT (id) DO UPDATE SET
            status=EXCLUDED.status,
            last_actor=EXCLUDED.last_actor,
            last_user_message_at=EXCLUDED.last_user_message_at,
            last_admin_message_at=EXCLUDED.last_admin_message_at,
            closed_at=EXCLUDED.closed_at,
            closed_reason=EXCLUDED.closed_reason,
            rating=EXCLUDED.rating`
	_, err := s.pool.Exec(ctx, query,
		ticket.ID,
		ticket.Ref,
		ticket.SubjectID,
		ticket.Status,
		ticket.LastActor,
		ticket.CreatedAt,
		ticket.LastUserMessageAt,
		ticket.LastAdminMessageAt,
		ticket.ClosedAt,
		nullIfEmpty(string(ticket.ClosedReason)),
		ticket.Rating,
	)
	return err
}

func (s *PostgresStore) List(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error) {
	base := fmt.Sprintf(`SELECT %s FROM tickets`, ticketColumns)
	clauses := []string{"1=1"}
	args := []any{}

	if filter.SubjectID != nil {
		args = append(args, *filter.SubjectID)
		clauses = append(clauses, fmt.Sprintf("subject_id=$%d", len(args)))
	}
	if len(filter.Statuses) > 0 {
		placeholders := make([]string, len(filter.Statuses))
		for i, status := range filter.Statuses {
			args = append(args, status)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("status IN (%s)", strings.Join(placeholders, ",")))
	}

	query := fmt.Sprintf("%s WHERE %s ORDER BY created_at", base, strings.Join(clauses, " AND "))
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Ticket
	for rows.Next() {
		ticket, err := scanTicket(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *ticket)
	}
	return result, rows.Err()
}

func (s *PostgresStore) GetFeedback(ctx context.Context, id string) (*domain.Feedback, error) {
	const query = `SELECT id, subject_id, kind, text, thanked, created_at FROM feedback WHERE id=$1`
	var fb domain.Feedback
	err := s.pool.QueryRow(ctx, query, id).Scan(
		&fb.ID, &fb.SubjectID, &fb.Kind, &fb.Text, &fb.Thanked, &fb.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &fb, nil
}

func (s *PostgresStore) PutFeedback(ctx context.Context, fb *domain.Feedback) error {
	const query = `
        INSERT INTO feedback (id, subject_id, kind, text, thanked, created_at)
        VALUES ($1,$2,$3,$4,$5,$6)
        ON CONFLICT (id) DO UPDATE SET thanked=EXCLUDED.thanked`
	_, err := s.pool.Exec(ctx, query,
		fb.ID, fb.SubjectID, fb.Kind, fb.Text, fb.Thanked, fb.CreatedAt)
	return err
}

func (s *PostgresStore) ListFeedback(ctx context.Context) ([]domain.Feedback, error) {
	const query = `SELECT id, subject_id, kind, text, thanked, created_at FROM feedback ORDER BY created_at`
	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Feedback
	for rows.Next() {
		var fb domain.Feedback
		if err := rows.Scan(&fb.ID, &fb.SubjectID, &fb.Kind, &fb.Text, &fb.Thanked, &fb.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, fb)
	}
	return result, rows.Err()
}

func scanTicket(row pgx.Row) (*domain.Ticket, error) {
	var ticket domain.Ticket
	var closedReason *string
	if err := row.Scan(
		&ticket.ID,
		&ticket.Ref,
		&ticket.SubjectID,
		&ticket.Status,
		&ticket.LastActor,
		&ticket.CreatedAt,
		&ticket.LastUserMessageAt,
		&ticket.LastAdminMessageAt,
		&ticket.ClosedAt,
		&closedReason,
		&ticket.Rating,
	); err != nil {
		return nil, err
	}
	if closedReason != nil {
		ticket.ClosedReason = domain.CloseReason(*closedReason)
	}
	return &ticket, nil
}

func nullIfEmpty(val string) *string {
	if val == "" {
		return nil
	}
	return &val
}
