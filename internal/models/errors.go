package models

import "errors"

var (
	// ErrInvalidAmount indicates a non-positive collateral or loan amount.
	ErrInvalidAmount = errors.New("amount must be positive")

	// ErrInvalidIdentity indicates a lender identity that is malformed or
	// does not resolve to a registered user.
	ErrInvalidIdentity = errors.New("unknown or malformed lender identity")

	// ErrInvalidBTCAddress indicates a Bitcoin address that does not decode
	// for the configured network.
	ErrInvalidBTCAddress = errors.New("invalid bitcoin address")

	// ErrEscrowNotFound indicates an unknown escrow id.
	ErrEscrowNotFound = errors.New("escrow not found")

	// ErrUnauthorized indicates the caller is not the party entitled to the
	// requested transition.
	ErrUnauthorized = errors.New("caller is not authorized for this action")

	// ErrInvalidState indicates the requested transition is not legal from
	// the escrow's current status.
	ErrInvalidState = errors.New("escrow is not in the required state")

	ErrUserNotFound       = errors.New("user not found")
	ErrUsernameTaken      = errors.New("username already taken")
	ErrInvalidCredentials = errors.New("invalid username or password")
)
