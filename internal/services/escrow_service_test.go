package services

import (
	"context"
	"errors"
	"testing"

	"github.com/bitcoin-loan/backend/internal/config"
	"github.com/bitcoin-loan/backend/internal/events"
	"github.com/bitcoin-loan/backend/internal/models"
	"github.com/bitcoin-loan/backend/internal/repositories"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const testBTCAddress = "bc1qw508d6qejxtdg4y5r3zarvary0c5xw7kv8f3t4"

type escrowFixture struct {
	svc      *EscrowService
	userRepo repositories.UserRepository
	borrower uuid.UUID
	lender   uuid.UUID
}

func newEscrowFixture(t *testing.T) *escrowFixture {
	t.Helper()

	userRepo := repositories.NewMemoryUserRepo()
	cfg := &config.Config{BTCNetwork: "mainnet"}
	svc := NewEscrowService(
		repositories.NewMemoryEscrowRepo(),
		userRepo,
		repositories.NewMemoryAuditRepo(),
		events.NoopPublisher{},
		cfg,
		zap.NewNop(),
	)

	f := &escrowFixture{svc: svc, userRepo: userRepo}
	f.borrower = f.addUser(t, "borrower")
	f.lender = f.addUser(t, "lender")
	return f
}

func (f *escrowFixture) addUser(t *testing.T, username string) uuid.UUID {
	t.Helper()
	u := &models.User{Username: username, PasswordHash: []byte("x")}
	if err := f.userRepo.Create(context.Background(), u); err != nil {
		t.Fatalf("create user %s: %v", username, err)
	}
	return u.ID
}

func (f *escrowFixture) create(t *testing.T) *models.Escrow {
	t.Helper()
	escrow, err := f.svc.Create(context.Background(), f.borrower, f.lender.String(), testBTCAddress, 0.1, 0.05)
	if err != nil {
		t.Fatalf("create escrow: %v", err)
	}
	return escrow
}

func TestCreateEscrow(t *testing.T) {
	f := newEscrowFixture(t)
	ctx := context.Background()

	escrow := f.create(t)
	if escrow.ID == 0 {
		t.Error("expected a non-zero id")
	}
	if escrow.Status != models.EscrowStatusPending {
		t.Errorf("status = %s, want pending", escrow.Status)
	}
	if escrow.Borrower != f.borrower || escrow.Lender != f.lender {
		t.Error("parties not recorded as supplied")
	}
	if escrow.ReleaseTime != nil {
		t.Error("release_time must be absent at creation")
	}

	got, err := f.svc.Get(ctx, escrow.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.CollateralAmount != 0.1 || got.LoanAmount != 0.05 {
		t.Errorf("amounts = %v/%v, want 0.1/0.05", got.CollateralAmount, got.LoanAmount)
	}
}

func TestCreateEscrowInvalidAmounts(t *testing.T) {
	f := newEscrowFixture(t)
	ctx := context.Background()

	cases := []struct {
		name       string
		collateral float64
		loan       float64
	}{
		{"negative collateral", -1.0, 0.05},
		{"zero collateral", 0, 0.05},
		{"negative loan", 0.1, -0.05},
		{"zero loan", 0.1, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.svc.Create(ctx, f.borrower, f.lender.String(), testBTCAddress, tc.collateral, tc.loan)
			if !errors.Is(err, models.ErrInvalidAmount) {
				t.Errorf("err = %v, want ErrInvalidAmount", err)
			}
		})
	}
}

func TestCreateEscrowInvalidLender(t *testing.T) {
	f := newEscrowFixture(t)
	ctx := context.Background()

	if _, err := f.svc.Create(ctx, f.borrower, "not-a-uuid", testBTCAddress, 0.1, 0.05); !errors.Is(err, models.ErrInvalidIdentity) {
		t.Errorf("malformed lender: err = %v, want ErrInvalidIdentity", err)
	}
	if _, err := f.svc.Create(ctx, f.borrower, uuid.NewString(), testBTCAddress, 0.1, 0.05); !errors.Is(err, models.ErrInvalidIdentity) {
		t.Errorf("unknown lender: err = %v, want ErrInvalidIdentity", err)
	}
}

func TestCreateEscrowInvalidBTCAddress(t *testing.T) {
	f := newEscrowFixture(t)
	_, err := f.svc.Create(context.Background(), f.borrower, f.lender.String(), "bc1snafas", 0.1, 0.05)
	if !errors.Is(err, models.ErrInvalidBTCAddress) {
		t.Errorf("err = %v, want ErrInvalidBTCAddress", err)
	}
}

func TestCreateEscrowAllowsSameParty(t *testing.T) {
	// borrower == lender is not rejected; neither are repeat pairs.
	f := newEscrowFixture(t)
	ctx := context.Background()

	if _, err := f.svc.Create(ctx, f.borrower, f.borrower.String(), testBTCAddress, 1, 1); err != nil {
		t.Errorf("self escrow: %v", err)
	}
	f.create(t)
	f.create(t)
}

func TestEscrowIDsStrictlyIncrease(t *testing.T) {
	f := newEscrowFixture(t)

	var last uint64
	seen := make(map[uint64]bool)
	for i := 0; i < 10; i++ {
		escrow := f.create(t)
		if seen[escrow.ID] {
			t.Fatalf("id %d reused", escrow.ID)
		}
		seen[escrow.ID] = true
		if escrow.ID <= last {
			t.Fatalf("id %d not greater than previous %d", escrow.ID, last)
		}
		last = escrow.ID
	}
}

func TestLockEscrow(t *testing.T) {
	f := newEscrowFixture(t)
	ctx := context.Background()
	escrow := f.create(t)

	if err := f.svc.Lock(ctx, escrow.ID, f.lender); err != nil {
		t.Fatalf("lock: %v", err)
	}

	got, _ := f.svc.Get(ctx, escrow.ID)
	if got.Status != models.EscrowStatusLocked {
		t.Errorf("status = %s, want locked", got.Status)
	}
	if got.ReleaseTime != nil {
		t.Error("lock must not stamp release_time")
	}
}

func TestLockEscrowUnauthorized(t *testing.T) {
	f := newEscrowFixture(t)
	ctx := context.Background()
	escrow := f.create(t)
	stranger := f.addUser(t, "stranger")

	for _, caller := range []uuid.UUID{f.borrower, stranger} {
		if err := f.svc.Lock(ctx, escrow.ID, caller); !errors.Is(err, models.ErrUnauthorized) {
			t.Errorf("caller %s: err = %v, want ErrUnauthorized", caller, err)
		}
	}

	got, _ := f.svc.Get(ctx, escrow.ID)
	if got.Status != models.EscrowStatusPending {
		t.Errorf("status changed to %s on failed lock", got.Status)
	}
}

func TestLockEscrowNotFound(t *testing.T) {
	f := newEscrowFixture(t)
	if err := f.svc.Lock(context.Background(), 9999, f.lender); !errors.Is(err, models.ErrEscrowNotFound) {
		t.Errorf("err = %v, want ErrEscrowNotFound", err)
	}
}

func TestLockEscrowTwice(t *testing.T) {
	f := newEscrowFixture(t)
	ctx := context.Background()
	escrow := f.create(t)

	if err := f.svc.Lock(ctx, escrow.ID, f.lender); err != nil {
		t.Fatalf("first lock: %v", err)
	}
	if err := f.svc.Lock(ctx, escrow.ID, f.lender); !errors.Is(err, models.ErrInvalidState) {
		t.Errorf("second lock: err = %v, want ErrInvalidState", err)
	}
}

func TestReleaseEscrow(t *testing.T) {
	f := newEscrowFixture(t)
	ctx := context.Background()
	escrow := f.create(t)

	if err := f.svc.Lock(ctx, escrow.ID, f.lender); err != nil {
		t.Fatalf("lock: %v", err)
	}
	if err := f.svc.Release(ctx, escrow.ID, f.borrower); err != nil {
		t.Fatalf("release: %v", err)
	}

	got, _ := f.svc.Get(ctx, escrow.ID)
	if got.Status != models.EscrowStatusReleased {
		t.Errorf("status = %s, want released", got.Status)
	}
	if got.ReleaseTime == nil {
		t.Fatal("release_time not stamped")
	}
	if *got.ReleaseTime < got.CreatedAt {
		t.Errorf("release_time %d before created_at %d", *got.ReleaseTime, got.CreatedAt)
	}
}

func TestReleaseEscrowBeforeLock(t *testing.T) {
	f := newEscrowFixture(t)
	escrow := f.create(t)

	if err := f.svc.Release(context.Background(), escrow.ID, f.borrower); !errors.Is(err, models.ErrInvalidState) {
		t.Errorf("err = %v, want ErrInvalidState", err)
	}
}

func TestReleaseEscrowUnauthorized(t *testing.T) {
	f := newEscrowFixture(t)
	ctx := context.Background()
	escrow := f.create(t)
	_ = f.svc.Lock(ctx, escrow.ID, f.lender)

	if err := f.svc.Release(ctx, escrow.ID, f.lender); !errors.Is(err, models.ErrUnauthorized) {
		t.Errorf("err = %v, want ErrUnauthorized", err)
	}
}

func TestReleaseEscrowTwice(t *testing.T) {
	f := newEscrowFixture(t)
	ctx := context.Background()
	escrow := f.create(t)
	_ = f.svc.Lock(ctx, escrow.ID, f.lender)

	if err := f.svc.Release(ctx, escrow.ID, f.borrower); err != nil {
		t.Fatalf("first release: %v", err)
	}
	if err := f.svc.Release(ctx, escrow.ID, f.borrower); !errors.Is(err, models.ErrInvalidState) {
		t.Errorf("second release: err = %v, want ErrInvalidState", err)
	}
}

func TestRefundEscrow(t *testing.T) {
	f := newEscrowFixture(t)
	ctx := context.Background()
	escrow := f.create(t)
	_ = f.svc.Lock(ctx, escrow.ID, f.lender)

	if err := f.svc.Refund(ctx, escrow.ID, f.lender); err != nil {
		t.Fatalf("refund: %v", err)
	}

	got, _ := f.svc.Get(ctx, escrow.ID)
	if got.Status != models.EscrowStatusRefunded {
		t.Errorf("status = %s, want refunded", got.Status)
	}
	if got.ReleaseTime != nil {
		t.Error("refund must not stamp release_time")
	}
}

func TestRefundEscrowAfterRelease(t *testing.T) {
	f := newEscrowFixture(t)
	ctx := context.Background()
	escrow := f.create(t)
	_ = f.svc.Lock(ctx, escrow.ID, f.lender)
	_ = f.svc.Release(ctx, escrow.ID, f.borrower)

	if err := f.svc.Refund(ctx, escrow.ID, f.lender); !errors.Is(err, models.ErrInvalidState) {
		t.Errorf("err = %v, want ErrInvalidState", err)
	}
}

func TestRefundEscrowUnauthorized(t *testing.T) {
	f := newEscrowFixture(t)
	ctx := context.Background()
	escrow := f.create(t)
	_ = f.svc.Lock(ctx, escrow.ID, f.lender)

	if err := f.svc.Refund(ctx, escrow.ID, f.borrower); !errors.Is(err, models.ErrUnauthorized) {
		t.Errorf("err = %v, want ErrUnauthorized", err)
	}
}

// Authorization is checked before state: an unauthorized caller hitting an
// already-locked escrow gets ErrUnauthorized, not ErrInvalidState.
func TestAuthorizationCheckedBeforeState(t *testing.T) {
	f := newEscrowFixture(t)
	ctx := context.Background()
	escrow := f.create(t)
	_ = f.svc.Lock(ctx, escrow.ID, f.lender)

	if err := f.svc.Lock(ctx, escrow.ID, f.borrower); !errors.Is(err, models.ErrUnauthorized) {
		t.Errorf("borrower lock on locked escrow: err = %v, want ErrUnauthorized", err)
	}
	// The authorized caller on the same escrow gets the state error.
	if err := f.svc.Lock(ctx, escrow.ID, f.lender); !errors.Is(err, models.ErrInvalidState) {
		t.Errorf("lender lock on locked escrow: err = %v, want ErrInvalidState", err)
	}
}

func TestListByBorrowerAndLender(t *testing.T) {
	f := newEscrowFixture(t)
	ctx := context.Background()

	otherBorrower := f.addUser(t, "other-borrower")

	first := f.create(t)
	second := f.create(t)
	if _, err := f.svc.Create(ctx, otherBorrower, f.lender.String(), testBTCAddress, 1, 1); err != nil {
		t.Fatalf("create other: %v", err)
	}

	mine, err := f.svc.ListByBorrower(ctx, f.borrower)
	if err != nil {
		t.Fatalf("list by borrower: %v", err)
	}
	if len(mine) != 2 {
		t.Fatalf("borrower escrows = %d, want 2", len(mine))
	}
	if mine[0].ID != first.ID || mine[1].ID != second.ID {
		t.Errorf("not in creation order: got %d,%d want %d,%d", mine[0].ID, mine[1].ID, first.ID, second.ID)
	}
	for _, e := range mine {
		if e.Borrower != f.borrower {
			t.Errorf("foreign escrow %d in borrower listing", e.ID)
		}
	}

	lent, err := f.svc.ListByLender(ctx, f.lender)
	if err != nil {
		t.Fatalf("list by lender: %v", err)
	}
	if len(lent) != 3 {
		t.Errorf("lender escrows = %d, want 3", len(lent))
	}

	none, _ := f.svc.ListByBorrower(ctx, uuid.New())
	if len(none) != 0 {
		t.Errorf("unknown borrower got %d escrows", len(none))
	}
}

func TestGetEscrowNotFound(t *testing.T) {
	f := newEscrowFixture(t)
	if _, err := f.svc.Get(context.Background(), 42); !errors.Is(err, models.ErrEscrowNotFound) {
		t.Errorf("err = %v, want ErrEscrowNotFound", err)
	}
}

func TestEscrowAuditTrail(t *testing.T) {
	f := newEscrowFixture(t)
	ctx := context.Background()
	escrow := f.create(t)
	_ = f.svc.Lock(ctx, escrow.ID, f.lender)
	_ = f.svc.Release(ctx, escrow.ID, f.borrower)

	logs, err := f.svc.GetEvents(ctx, escrow.ID)
	if err != nil {
		t.Fatalf("get events: %v", err)
	}
	if len(logs) != 3 {
		t.Fatalf("audit entries = %d, want 3 (create, lock, release)", len(logs))
	}

	if _, err := f.svc.GetEvents(ctx, 9999); !errors.Is(err, models.ErrEscrowNotFound) {
		t.Errorf("events for unknown escrow: err = %v, want ErrEscrowNotFound", err)
	}
}

// Full lifecycle walkthrough: pending -> locked -> released, with every
// illegal move along the way rejected and state left intact.
func TestEscrowLifecycle(t *testing.T) {
	f := newEscrowFixture(t)
	ctx := context.Background()
	stranger := f.addUser(t, "stranger")

	escrow := f.create(t)

	// Pending: only lender may lock; release/refund illegal.
	if err := f.svc.Lock(ctx, escrow.ID, stranger); !errors.Is(err, models.ErrUnauthorized) {
		t.Errorf("stranger lock: %v", err)
	}
	if err := f.svc.Release(ctx, escrow.ID, f.borrower); !errors.Is(err, models.ErrInvalidState) {
		t.Errorf("release while pending: %v", err)
	}
	if err := f.svc.Refund(ctx, escrow.ID, f.lender); !errors.Is(err, models.ErrInvalidState) {
		t.Errorf("refund while pending: %v", err)
	}

	if err := f.svc.Lock(ctx, escrow.ID, f.lender); err != nil {
		t.Fatalf("lock: %v", err)
	}
	if err := f.svc.Release(ctx, escrow.ID, f.borrower); err != nil {
		t.Fatalf("release: %v", err)
	}

	// Terminal: nothing moves anymore.
	if err := f.svc.Refund(ctx, escrow.ID, f.lender); !errors.Is(err, models.ErrInvalidState) {
		t.Errorf("refund after release: %v", err)
	}
	got, _ := f.svc.Get(ctx, escrow.ID)
	if got.Status != models.EscrowStatusReleased {
		t.Errorf("terminal status = %s, want released", got.Status)
	}
}
