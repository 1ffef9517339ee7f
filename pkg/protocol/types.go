package protocol

import "github.com/shopspring/decimal"

// Action 由 Action Code 解析出的远端元数据。
// 只读快照，单次流程内使用，不做缓存。
type Action struct {
	// IntendedFor is the recipient wallet address. Its absence is a hard
	// validation failure upstream.
	IntendedFor string                 `json:"intended_for"`
	Metadata    map[string]interface{} `json:"metadata,omitempty"`
}

// ActionContext 客户端构造的展示/意图描述。
// 纯提示性质，只影响用户在钱包里看到的内容，不影响协议正确性。
type ActionContext struct {
	Origin      string                 `json:"origin"`
	Title       string                 `json:"title"`
	Description string                 `json:"description,omitempty"`
	Amount      decimal.Decimal        `json:"amount,omitempty"`
	Type        string                 `json:"type,omitempty"`
	Favicon     string                 `json:"favicon,omitempty"`
	Metadata    map[string]interface{} `json:"metadata,omitempty"`
}

// SubmissionPayload is sent to the remote service alongside a code.
// SignOnly=true means "return a signed transaction, do not broadcast".
type SubmissionPayload struct {
	Label             string `json:"label,omitempty"`
	Logo              string `json:"logo,omitempty"`
	Memo              string `json:"memo,omitempty"`
	Message           string `json:"message,omitempty"`
	SignOnly          bool   `json:"sign_only"`
	TransactionBase64 string `json:"transaction_base64"`
}

// TaskResult is the response to a submission. Result is an opaque signed
// payload string, present only on success.
type TaskResult struct {
	Status TaskStatus `json:"status"`
	Result string     `json:"result,omitempty"`
}
