package request

import "github.com/shopspring/decimal"

type SubmitCodeRequest struct {
	Code string `json:"code" binding:"required"`
}

type CloseModalRequest struct {
	// close_button / escape / reset
	Reason string `json:"reason"`
}

type ConnectRequest struct {
	Title       string                 `json:"title"`
	Description string                 `json:"description"`
	Amount      decimal.Decimal        `json:"amount"`
	Type        string                 `json:"type"`
	Metadata    map[string]interface{} `json:"metadata"`
}

type SignRequest struct {
	TransactionBase64 string `json:"transaction_base64" binding:"required"`
}

type ProcessRequest struct {
	Code string `json:"code" binding:"required"`
}
