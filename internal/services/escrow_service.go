package services

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/bitcoin-loan/backend/internal/btc"
	"github.com/bitcoin-loan/backend/internal/config"
	"github.com/bitcoin-loan/backend/internal/events"
	"github.com/bitcoin-loan/backend/internal/models"
	"github.com/bitcoin-loan/backend/internal/repositories"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// EscrowService is the escrow lifecycle ledger. It validates inputs, enforces
// per-party authorization and the pending -> locked -> released/refunded state
// machine, and records every transition in the audit log.
//
// Checks run in a fixed order: existence, then caller authorization, then
// state. An unauthorized caller hitting an already-transitioned escrow gets
// ErrUnauthorized, not ErrInvalidState.
type EscrowService struct {
	escrowRepo repositories.EscrowRepository
	userRepo   repositories.UserRepository
	auditRepo  repositories.AuditRepository
	publisher  events.Publisher
	cfg        *config.Config
	log        *zap.Logger
}

func NewEscrowService(
	escrowRepo repositories.EscrowRepository,
	userRepo repositories.UserRepository,
	auditRepo repositories.AuditRepository,
	publisher events.Publisher,
	cfg *config.Config,
	log *zap.Logger,
) *EscrowService {
	return &EscrowService{
		escrowRepo: escrowRepo,
		userRepo:   userRepo,
		auditRepo:  auditRepo,
		publisher:  publisher,
		cfg:        cfg,
		log:        log,
	}
}

// Create inserts a new pending escrow with the caller as borrower. The lender
// id must parse and resolve to a registered user; both amounts must be
// positive; the collateral address must decode for the configured network.
// borrower == lender is not rejected and repeat borrower/lender pairs are
// allowed.
func (s *EscrowService) Create(ctx context.Context, borrower uuid.UUID, lenderID, btcAddress string, collateralAmount, loanAmount float64) (*models.Escrow, error) {
	if collateralAmount <= 0 {
		return nil, fmt.Errorf("collateral %w", models.ErrInvalidAmount)
	}
	if loanAmount <= 0 {
		return nil, fmt.Errorf("loan %w", models.ErrInvalidAmount)
	}

	lender, err := uuid.Parse(lenderID)
	if err != nil {
		return nil, models.ErrInvalidIdentity
	}
	if _, err := s.userRepo.GetByID(ctx, lender); err != nil {
		return nil, models.ErrInvalidIdentity
	}

	if err := btc.ValidateAddress(btcAddress, s.cfg.BTCNetwork); err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrInvalidBTCAddress, err)
	}

	escrow := &models.Escrow{
		Borrower:             borrower,
		Lender:               lender,
		BTCCollateralAddress: btcAddress,
		CollateralAmount:     collateralAmount,
		LoanAmount:           loanAmount,
		Status:               models.EscrowStatusPending,
		CreatedAt:            uint64(time.Now().UnixNano()),
	}

	if err := s.escrowRepo.Create(ctx, escrow); err != nil {
		return nil, err
	}

	_ = s.auditRepo.Log(ctx, models.AuditLog{
		ActorUserID: &borrower,
		ActorType:   "user",
		Action:      "escrow_created",
		EntityType:  "escrow",
		EntityID:    entityID(escrow.ID),
		Meta: map[string]any{
			"lender":            lender.String(),
			"collateral_amount": collateralAmount,
			"loan_amount":       loanAmount,
		},
	})

	_ = s.publisher.Publish(ctx, events.StreamEscrow, events.Event{
		Type: events.EventEscrowCreated,
		Payload: map[string]any{
			"escrow_id": escrow.ID,
			"borrower":  borrower.String(),
			"lender":    lender.String(),
		},
	})

	return escrow, nil
}

// Lock moves a pending escrow to locked. Only the escrow's lender may lock.
func (s *EscrowService) Lock(ctx context.Context, id uint64, caller uuid.UUID) error {
	escrow, err := s.escrowRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if escrow.Lender != caller {
		return fmt.Errorf("%w: only the lender can lock this escrow", models.ErrUnauthorized)
	}
	return s.transition(ctx, escrow, models.EscrowStatusLocked, caller, nil)
}

// Release moves a locked escrow to released and stamps release_time. Only the
// escrow's borrower may release.
func (s *EscrowService) Release(ctx context.Context, id uint64, caller uuid.UUID) error {
	escrow, err := s.escrowRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if escrow.Borrower != caller {
		return fmt.Errorf("%w: only the borrower can release this escrow", models.ErrUnauthorized)
	}
	now := uint64(time.Now().UnixNano())
	return s.transition(ctx, escrow, models.EscrowStatusReleased, caller, &now)
}

// Refund moves a locked escrow to refunded. Only the escrow's lender may
// refund.
func (s *EscrowService) Refund(ctx context.Context, id uint64, caller uuid.UUID) error {
	escrow, err := s.escrowRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if escrow.Lender != caller {
		return fmt.Errorf("%w: only the lender can refund this escrow", models.ErrUnauthorized)
	}
	return s.transition(ctx, escrow, models.EscrowStatusRefunded, caller, nil)
}

// Get returns a single escrow. Reads are not restricted to the escrow's
// parties.
func (s *EscrowService) Get(ctx context.Context, id uint64) (*models.Escrow, error) {
	return s.escrowRepo.GetByID(ctx, id)
}

// ListByBorrower returns the caller's escrows as borrower, ascending by id.
func (s *EscrowService) ListByBorrower(ctx context.Context, caller uuid.UUID) ([]models.Escrow, error) {
	return s.escrowRepo.ListByBorrower(ctx, caller)
}

// ListByLender returns the caller's escrows as lender, ascending by id.
func (s *EscrowService) ListByLender(ctx context.Context, caller uuid.UUID) ([]models.Escrow, error) {
	return s.escrowRepo.ListByLender(ctx, caller)
}

// GetEvents returns the audit trail for one escrow.
func (s *EscrowService) GetEvents(ctx context.Context, id uint64) ([]models.AuditLog, error) {
	if _, err := s.escrowRepo.GetByID(ctx, id); err != nil {
		return nil, err
	}
	return s.auditRepo.GetByEntity(ctx, "escrow", strconv.FormatUint(id, 10), 100, 0)
}

// transition validates and performs a status change with audit logging. The
// repository swap is conditional on the status the caller observed, so a
// concurrent transition on the same record loses cleanly with
// ErrInvalidState instead of overwriting.
func (s *EscrowService) transition(ctx context.Context, escrow *models.Escrow, newStatus string, actorID uuid.UUID, releaseTime *uint64) error {
	if !models.IsValidEscrowTransition(escrow.Status, newStatus) {
		return fmt.Errorf("%w: cannot move from %s to %s", models.ErrInvalidState, escrow.Status, newStatus)
	}

	ok, err := s.escrowRepo.UpdateStatus(ctx, escrow.ID, escrow.Status, newStatus, releaseTime)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: escrow %d is no longer %s", models.ErrInvalidState, escrow.ID, escrow.Status)
	}

	oldStatus := escrow.Status
	escrow.Status = newStatus
	if releaseTime != nil {
		escrow.ReleaseTime = releaseTime
	}

	_ = s.auditRepo.Log(ctx, models.AuditLog{
		ActorUserID: &actorID,
		ActorType:   "user",
		Action:      fmt.Sprintf("escrow_status_%s_to_%s", oldStatus, newStatus),
		EntityType:  "escrow",
		EntityID:    entityID(escrow.ID),
		Meta:        map[string]any{"old_status": oldStatus, "new_status": newStatus},
	})

	_ = s.publisher.Publish(ctx, events.StreamEscrow, events.Event{
		Type: events.EventEscrowStatusChanged,
		Payload: map[string]any{
			"escrow_id":  escrow.ID,
			"old_status": oldStatus,
			"new_status": newStatus,
		},
	})

	return nil
}

func entityID(id uint64) *string {
	s := strconv.FormatUint(id, 10)
	return &s
}
