package dto

type AuthResponse struct {
	Token string `json:"token"`
	User  any    `json:"user"`
}

type ErrorResponse struct {
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}

type SuccessResponse struct {
	OK   bool `json:"ok"`
	Data any  `json:"data,omitempty"`
}

type CreateEscrowResponse struct {
	EscrowID uint64 `json:"escrow_id"`
	Escrow   any    `json:"escrow"`
}

type BTCAddressResponse struct {
	Address *string `json:"address"`
}
