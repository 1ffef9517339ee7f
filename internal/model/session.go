package model

import (
	"encoding/json"
	"time"
)

// Session 持久化的钱包会话凭证。
// signed_tx_base64 是一笔从未广播的已签名占位交易, 仅作为凭证使用。
type Session struct {
	SignedTxBase64 string    `json:"signed_tx_base64"`
	ExpiresAt      time.Time `json:"expires_at"`
	Origin         string    `json:"origin"`
}

// Marshal encodes the session into its storage form.
func (s *Session) Marshal() ([]byte, error) {
	return json.Marshal(s)
}

// UnmarshalSession decodes the storage form back into a Session.
func UnmarshalSession(raw []byte) (*Session, error) {
	var s Session
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, err
	}
	return &s, nil
}
