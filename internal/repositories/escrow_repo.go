package repositories

import (
	"context"
	"errors"

	"github.com/bitcoin-loan/backend/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// EscrowRepository owns all escrow records. IDs are allocated by the store
// and strictly increase; records are never deleted.
type EscrowRepository interface {
	Create(ctx context.Context, e *models.Escrow) error
	GetByID(ctx context.Context, id uint64) (*models.Escrow, error)
	ListByBorrower(ctx context.Context, borrower uuid.UUID) ([]models.Escrow, error)
	ListByLender(ctx context.Context, lender uuid.UUID) ([]models.Escrow, error)

	// UpdateStatus performs a compare-and-swap: the row moves from status
	// `from` to `to` (stamping releaseTime when non-nil) only if it is still
	// in `from`. Returns false when the swap did not apply.
	UpdateStatus(ctx context.Context, id uint64, from, to string, releaseTime *uint64) (bool, error)
}

type EscrowRepo struct {
	pool *pgxpool.Pool
}

func NewEscrowRepo(pool *pgxpool.Pool) *EscrowRepo {
	return &EscrowRepo{pool: pool}
}

func (r *EscrowRepo) Create(ctx context.Context, e *models.Escrow) error {
	return r.pool.QueryRow(ctx, `
		INSERT INTO escrows (borrower, lender, btc_collateral_address, collateral_amount, loan_amount, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`, e.Borrower, e.Lender, e.BTCCollateralAddress, e.CollateralAmount, e.LoanAmount, e.Status, e.CreatedAt).Scan(&e.ID)
}

func (r *EscrowRepo) GetByID(ctx context.Context, id uint64) (*models.Escrow, error) {
	var e models.Escrow
	err := r.pool.QueryRow(ctx, `
		SELECT id, borrower, lender, btc_collateral_address, collateral_amount, loan_amount, status, created_at, release_time
		FROM escrows WHERE id = $1
	`, id).Scan(&e.ID, &e.Borrower, &e.Lender, &e.BTCCollateralAddress, &e.CollateralAmount, &e.LoanAmount,
		&e.Status, &e.CreatedAt, &e.ReleaseTime)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrEscrowNotFound
		}
		return nil, err
	}
	return &e, nil
}

func (r *EscrowRepo) ListByBorrower(ctx context.Context, borrower uuid.UUID) ([]models.Escrow, error) {
	return r.list(ctx, `
		SELECT id, borrower, lender, btc_collateral_address, collateral_amount, loan_amount, status, created_at, release_time
		FROM escrows WHERE borrower = $1 ORDER BY id ASC
	`, borrower)
}

func (r *EscrowRepo) ListByLender(ctx context.Context, lender uuid.UUID) ([]models.Escrow, error) {
	return r.list(ctx, `
		SELECT id, borrower, lender, btc_collateral_address, collateral_amount, loan_amount, status, created_at, release_time
		FROM escrows WHERE lender = $1 ORDER BY id ASC
	`, lender)
}

func (r *EscrowRepo) list(ctx context.Context, query string, party uuid.UUID) ([]models.Escrow, error) {
	rows, err := r.pool.Query(ctx, query, party)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var escrows []models.Escrow
	for rows.Next() {
		var e models.Escrow
		if err := rows.Scan(&e.ID, &e.Borrower, &e.Lender, &e.BTCCollateralAddress, &e.CollateralAmount,
			&e.LoanAmount, &e.Status, &e.CreatedAt, &e.ReleaseTime); err != nil {
			return nil, err
		}
		escrows = append(escrows, e)
	}
	return escrows, rows.Err()
}

func (r *EscrowRepo) UpdateStatus(ctx context.Context, id uint64, from, to string, releaseTime *uint64) (bool, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE escrows SET status = $1, release_time = COALESCE($2, release_time)
		WHERE id = $3 AND status = $4
	`, to, releaseTime, id, from)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}
