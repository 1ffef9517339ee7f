package event

import "encoding/json"

// 钱包生命周期事件
// Topic: bridge_events_wallet

const TopicWallet = "bridge_events_wallet"

const (
	TypeWalletConnected    = "wallet_connected"
	TypeWalletDisconnected = "wallet_disconnected"
	TypeTransactionSigned  = "transaction_signed"
)

// Envelope 统一的事件信封, 消费侧按 Type 分发
type Envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// Wrap 把具体事件打包进信封并序列化
func Wrap(eventType string, payload interface{}) ([]byte, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Envelope{Type: eventType, Payload: raw})
}

// WalletConnectedEvent 连接成功事件
type WalletConnectedEvent struct {
	Origin     string `json:"origin"`
	Address    string `json:"address"`
	NewSession bool   `json:"new_session"`
	CodeDigest string `json:"code_digest,omitempty"` // Blake3 摘要, 不含原始 code
}

// WalletDisconnectedEvent 断开连接事件
type WalletDisconnectedEvent struct {
	Origin  string `json:"origin"`
	Address string `json:"address,omitempty"`
}

// TransactionSignedEvent 签名完成事件
type TransactionSignedEvent struct {
	Origin  string `json:"origin"`
	Address string `json:"address"`
	TxHash  string `json:"tx_hash"`
}
