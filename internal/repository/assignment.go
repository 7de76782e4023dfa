package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"courier-dispatch/internal/apperr"
	"courier-dispatch/internal/domain"
)

// AssignmentRepo stores one assignment record per order.
type AssignmentRepo struct {
	db *pgxpool.Pool
}

// NewAssignmentRepo creates a new AssignmentRepo.
func NewAssignmentRepo(db *pgxpool.Pool) *AssignmentRepo {
	return &AssignmentRepo{db: db}
}

// Begin creates the searching record. A cancelled record is restarted; any
// other existing record fails with apperr.ErrConflict.
func (r *AssignmentRepo) Begin(ctx context.Context, orderID string) error {
	ct, err := r.db.Exec(ctx, `
        INSERT INTO assignments (order_id, status)
        VALUES ($1, $2)
        ON CONFLICT (order_id) DO UPDATE
        SET status = EXCLUDED.status,
            partner_id = NULL,
            rounds = 0,
            retries = 0,
            updated_at = now()
        WHERE assignments.status = $3
    `, orderID, string(domain.AssignmentSearching), string(domain.AssignmentCancelled))
	if err != nil {
		return wrap(fmt.Sprintf("begin assignment %q", orderID), err)
	}
	if ct.RowsAffected() == 0 {
		return fmt.Errorf("assignment %q already exists: %w", orderID, apperr.ErrConflict)
	}
	return nil
}

// Transition moves a searching record to a.Status. It returns false when the
// record is missing or no longer searching.
func (r *AssignmentRepo) Transition(ctx context.Context, a domain.Assignment) (bool, error) {
	ct, err := r.db.Exec(ctx, `
        UPDATE assignments
        SET status = $2,
            partner_id = NULLIF($3, ''),
            rounds = GREATEST(rounds, $4),
            retries = GREATEST(retries, $5),
            updated_at = now()
        WHERE order_id = $1 AND status = $6
    `, a.OrderID, string(a.Status), a.PartnerID, a.Rounds, a.Retries, string(domain.AssignmentSearching))
	if err != nil {
		return false, wrap(fmt.Sprintf("transition assignment %q to %s", a.OrderID, a.Status), err)
	}
	return ct.RowsAffected() == 1, nil
}

// Get returns the record or apperr.ErrNotFound.
func (r *AssignmentRepo) Get(ctx context.Context, orderID string) (domain.Assignment, error) {
	var (
		a         domain.Assignment
		status    string
		partnerID *string
	)
	err := r.db.QueryRow(ctx, `
        SELECT order_id, status, partner_id, rounds, retries, updated_at
        FROM assignments
        WHERE order_id = $1
    `, orderID).Scan(&a.OrderID, &status, &partnerID, &a.Rounds, &a.Retries, &a.UpdatedAt)
	if err != nil {
		if isNotFound(err) {
			return domain.Assignment{}, apperr.ErrNotFound
		}
		return domain.Assignment{}, wrap(fmt.Sprintf("get assignment %q", orderID), err)
	}
	a.Status = domain.AssignmentStatus(status)
	if partnerID != nil {
		a.PartnerID = *partnerID
	}
	a.UpdatedAt = a.UpdatedAt.UTC()
	return a, nil
}
