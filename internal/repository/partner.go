package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"courier-dispatch/internal/domain"
)

// PartnerRepo keeps partner availability. Unknown partners count as available.
type PartnerRepo struct{ db *pgxpool.Pool }

// NewPartnerRepo creates a new PartnerRepo.
func NewPartnerRepo(db *pgxpool.Pool) *PartnerRepo { return &PartnerRepo{db: db} }

// FilterAvailable returns the ids that are not busy, in input order.
func (r *PartnerRepo) FilterAvailable(ctx context.Context, partnerIDs []string) ([]string, error) {
	if len(partnerIDs) == 0 {
		return nil, nil
	}
	rows, err := r.db.Query(ctx,
		`SELECT id FROM partners WHERE id = ANY($1) AND status = $2`,
		partnerIDs, string(domain.PartnerBusy),
	)
	if err != nil {
		return nil, fmt.Errorf("query busy partners: %w", err)
	}
	defer rows.Close()

	busy := make(map[string]struct{})
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		busy[id] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	out := make([]string, 0, len(partnerIDs))
	for _, id := range partnerIDs {
		if _, ok := busy[id]; !ok {
			out = append(out, id)
		}
	}
	return out, nil
}

// MarkBusy sets the partner busy.
func (r *PartnerRepo) MarkBusy(ctx context.Context, partnerID string) error {
	return r.setStatus(ctx, partnerID, domain.PartnerBusy)
}

// MarkAvailable sets the partner available.
func (r *PartnerRepo) MarkAvailable(ctx context.Context, partnerID string) error {
	return r.setStatus(ctx, partnerID, domain.PartnerAvailable)
}

// Status returns the partner status; unknown partners are available.
func (r *PartnerRepo) Status(ctx context.Context, partnerID string) (domain.PartnerStatus, error) {
	var status string
	err := r.db.QueryRow(ctx, `SELECT status FROM partners WHERE id = $1`, partnerID).Scan(&status)
	if err != nil {
		if isNotFound(err) {
			return domain.PartnerAvailable, nil
		}
		return "", wrap(fmt.Sprintf("get partner %q", partnerID), err)
	}
	return domain.PartnerStatus(status), nil
}

func (r *PartnerRepo) setStatus(ctx context.Context, partnerID string, status domain.PartnerStatus) error {
	_, err := r.db.Exec(ctx, `
        INSERT INTO partners (id, status)
        VALUES ($1, $2)
        ON CONFLICT (id) DO UPDATE
        SET status = EXCLUDED.status, updated_at = now()
    `, partnerID, string(status))
	if err != nil {
		return wrap(fmt.Sprintf("set partner %q %s", partnerID, status), err)
	}
	return nil
}
