package proof

import (
	"crypto/ecdsa"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// Proof-of-wallet transaction. It is never broadcast: it exists solely as a
// signable artifact that binds a wallet address to an origin. The wire form
// is base64-encoded JSON.
//
// Memo format: "actioncodes:v1:<address-hex>:<sig-base64>"
// where sig is a 65-byte recoverable secp256k1 signature over
// keccak256("actioncodes:proof:<origin>:<address-lowercase>").

const (
	memoPrefix  = "actioncodes:v1"
	signContext = "actioncodes:proof"
)

var (
	ErrNotTransaction = errors.New("payload does not decode as a proof transaction")
	ErrNoMemo         = errors.New("transaction carries no binding memo")
	ErrBadMemo        = errors.New("binding memo is malformed")
	ErrBadSignature   = errors.New("binding memo signature does not verify")
)

// Transaction 占位交易结构。Value 恒为 "0"。
type Transaction struct {
	Version  int       `json:"version"`
	To       string    `json:"to"`
	Value    string    `json:"value"`
	Origin   string    `json:"origin"`
	IssuedAt time.Time `json:"issued_at"`
	Memo     string    `json:"memo,omitempty"`
}

// BuildTemplate constructs the unsigned zero-value placeholder bound to the
// resolved recipient. The remote wallet fills in the memo when signing.
func BuildTemplate(intendedFor, origin string) (string, error) {
	if !common.IsHexAddress(intendedFor) {
		return "", fmt.Errorf("intended recipient %q is not a valid address", intendedFor)
	}
	tx := Transaction{
		Version:  1,
		To:       common.HexToAddress(intendedFor).Hex(),
		Value:    "0",
		Origin:   origin,
		IssuedAt: time.Now().UTC(),
	}
	raw, err := json.Marshal(tx)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(raw), nil
}

// Decode parses the base64 wire form back into a Transaction.
func Decode(encoded string) (*Transaction, error) {
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotTransaction, err)
	}
	var tx Transaction
	if err := json.Unmarshal(raw, &tx); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotTransaction, err)
	}
	if tx.Version != 1 || tx.To == "" {
		return nil, ErrNotTransaction
	}
	return &tx, nil
}

// ExtractMemo returns the binding memo or ErrNoMemo.
func (tx *Transaction) ExtractMemo() (string, error) {
	if strings.TrimSpace(tx.Memo) == "" {
		return "", ErrNoMemo
	}
	return tx.Memo, nil
}

// signingHash 计算待签消息摘要, 地址统一小写避免校验和大小写歧义
func signingHash(origin string, addr common.Address) []byte {
	msg := fmt.Sprintf("%s:%s:%s", signContext, origin, strings.ToLower(addr.Hex()))
	return crypto.Keccak256([]byte(msg))
}

// VerifyMemo checks the memo against the origin and recovers the bound
// address. The recovered signer must equal the address embedded in the memo.
func VerifyMemo(memo, origin string) (common.Address, error) {
	parts := strings.Split(memo, ":")
	if len(parts) != 4 || parts[0]+":"+parts[1] != memoPrefix {
		return common.Address{}, ErrBadMemo
	}
	if !common.IsHexAddress(parts[2]) {
		return common.Address{}, ErrBadMemo
	}
	claimed := common.HexToAddress(parts[2])

	sig, err := base64.StdEncoding.DecodeString(parts[3])
	if err != nil || len(sig) != crypto.SignatureLength {
		return common.Address{}, ErrBadMemo
	}

	pub, err := crypto.SigToPub(signingHash(origin, claimed), sig)
	if err != nil {
		return common.Address{}, fmt.Errorf("%w: %v", ErrBadSignature, err)
	}
	if crypto.PubkeyToAddress(*pub) != claimed {
		return common.Address{}, ErrBadSignature
	}
	return claimed, nil
}

// Verify runs the memo extraction and validation against one transaction.
func Verify(tx *Transaction, origin string) (common.Address, error) {
	memo, err := tx.ExtractMemo()
	if err != nil {
		return common.Address{}, err
	}
	return VerifyMemo(memo, origin)
}

// Sign completes a template the way the remote wallet would. Production code
// never calls this; it backs fakes and tests, and lives here because this
// package owns the wire format.
func Sign(templateB64 string, priv *ecdsa.PrivateKey) (string, error) {
	tx, err := Decode(templateB64)
	if err != nil {
		return "", err
	}
	addr := crypto.PubkeyToAddress(priv.PublicKey)
	sig, err := crypto.Sign(signingHash(tx.Origin, addr), priv)
	if err != nil {
		return "", err
	}
	tx.Memo = fmt.Sprintf("%s:%s:%s", memoPrefix, addr.Hex(), base64.StdEncoding.EncodeToString(sig))

	raw, err := json.Marshal(tx)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(raw), nil
}
