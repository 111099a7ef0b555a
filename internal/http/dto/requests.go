package dto

type RegisterRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type CreateEscrowRequest struct {
	Lender               string  `json:"lender"`
	BTCCollateralAddress string  `json:"btc_collateral_address"`
	CollateralAmount     float64 `json:"collateral_amount"`
	LoanAmount           float64 `json:"loan_amount"`
}

type CreateLoanRequest struct {
	CollateralAmount float64 `json:"collateral_amount"`
	LoanAmount       float64 `json:"loan_amount"`
}

type LinkBTCAddressRequest struct {
	Address string `json:"address"`
}
