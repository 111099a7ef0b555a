package repositories

import (
	"context"

	"github.com/bitcoin-loan/backend/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type LoanRepository interface {
	Create(ctx context.Context, l *models.Loan) error
	ListByOwner(ctx context.Context, owner uuid.UUID) ([]models.Loan, error)
}

type LoanRepo struct {
	pool *pgxpool.Pool
}

func NewLoanRepo(pool *pgxpool.Pool) *LoanRepo {
	return &LoanRepo{pool: pool}
}

func (r *LoanRepo) Create(ctx context.Context, l *models.Loan) error {
	return r.pool.QueryRow(ctx, `
		INSERT INTO loans (owner_id, collateral_amount, loan_amount, created_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`, l.Owner, l.CollateralAmount, l.LoanAmount, l.CreatedAt).Scan(&l.ID)
}

func (r *LoanRepo) ListByOwner(ctx context.Context, owner uuid.UUID) ([]models.Loan, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, owner_id, collateral_amount, loan_amount, created_at
		FROM loans WHERE owner_id = $1 ORDER BY id ASC
	`, owner)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var loans []models.Loan
	for rows.Next() {
		var l models.Loan
		if err := rows.Scan(&l.ID, &l.Owner, &l.CollateralAmount, &l.LoanAmount, &l.CreatedAt); err != nil {
			return nil, err
		}
		loans = append(loans, l)
	}
	return loans, rows.Err()
}
