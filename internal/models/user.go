package models

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID           uuid.UUID `json:"id"`
	Username     string    `json:"username"`
	PasswordHash []byte    `json:"-"`
	BTCAddress   *string   `json:"btc_address,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}
