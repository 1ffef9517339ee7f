package client

import (
	"context"
	"crypto/ecdsa"
	"strings"
	"time"

	"bridge-core/pkg/errno"
	"bridge-core/pkg/proof"
	"bridge-core/pkg/protocol"

	"github.com/ethereum/go-ethereum/crypto"
)

// FakeClient 测试用的内存实现。
// 注册的每个 code 绑定一把私钥, 提交时像远端钱包一样完成签名。
type FakeClient struct {
	actions map[string]*fakeAction

	// SubmitHook 非 nil 时接管 SubmitAction, 用于模拟失败和挂起
	SubmitHook func(ctx context.Context, code string, payload protocol.SubmissionPayload, timeout time.Duration) (*protocol.TaskResult, error)

	// Submitted 记录所有提交的 payload
	Submitted []protocol.SubmissionPayload
}

type fakeAction struct {
	key      *ecdsa.PrivateKey
	metadata map[string]interface{}
}

func NewFakeClient() *FakeClient {
	return &FakeClient{actions: make(map[string]*fakeAction)}
}

// RegisterCode binds a code to a fresh wallet key and returns the wallet
// address the action is intended for.
func (f *FakeClient) RegisterCode(code string) string {
	key, err := crypto.GenerateKey()
	if err != nil {
		panic(err)
	}
	f.actions[code] = &fakeAction{key: key}
	return crypto.PubkeyToAddress(key.PublicKey).Hex()
}

func (f *FakeClient) GetAction(_ context.Context, code string) (*protocol.Action, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, errno.ErrEmptyCode
	}
	a, ok := f.actions[code]
	if !ok {
		return nil, errno.ErrActionNotFound
	}
	return &protocol.Action{
		IntendedFor: crypto.PubkeyToAddress(a.key.PublicKey).Hex(),
		Metadata:    a.metadata,
	}, nil
}

func (f *FakeClient) SubmitAction(ctx context.Context, code string, payload protocol.SubmissionPayload, timeout time.Duration) (*protocol.TaskResult, error) {
	f.Submitted = append(f.Submitted, payload)

	if f.SubmitHook != nil {
		return f.SubmitHook(ctx, code, payload, timeout)
	}

	a, ok := f.actions[strings.TrimSpace(code)]
	if !ok {
		return nil, &errno.ProcessingError{Reason: errno.TaskNotFound}
	}

	// 钱包侧签名: 补全 memo 后返回已签名交易
	signed, err := proof.Sign(payload.TransactionBase64, a.key)
	if err != nil {
		return nil, &errno.ProcessingError{Reason: errno.TaskFailed, Err: err}
	}

	return &protocol.TaskResult{Status: protocol.StatusCompleted, Result: signed}, nil
}
