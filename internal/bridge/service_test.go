package bridge

import (
	"context"
	"crypto/ecdsa"
	"encoding/base64"
	"math/big"
	"testing"
	"time"

	"bridge-core/internal/client"
	"bridge-core/internal/modal"
	"bridge-core/internal/session"
	"bridge-core/pkg/errno"
	"bridge-core/pkg/protocol"
	"bridge-core/pkg/storage"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	svc      *Service
	fake     *client.FakeClient
	modal    *modal.Controller
	sessions *session.Store
	mem      *storage.MemoryStore
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	fake := client.NewFakeClient()
	mem := storage.NewMemoryStore()
	sessions, err := session.NewStore(mem, fake)
	require.NoError(t, err)

	m := modal.NewController()
	svc, err := NewService(Config{
		Origin:   "site.com",
		SiteName: "Example Site",
	}, sessions, fake, m, nil)
	require.NoError(t, err)

	return &fixture{svc: svc, fake: fake, modal: m, sessions: sessions, mem: mem}
}

func waitForWaiter(t *testing.T, c *modal.Controller) {
	t.Helper()
	deadline := time.After(time.Second)
	for !c.State().AwaitingCode {
		select {
		case <-deadline:
			t.Fatal("modal 等待槽未建立")
		case <-time.After(time.Millisecond):
		}
	}
}

func TestConnectWithValidSessionSkipsUI(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	wantAddr := f.fake.RegisterCode("abc123")
	_, _, err := f.sessions.Create(ctx, "abc123", "site.com")
	require.NoError(t, err)

	// 有效会话: Connect 不应触碰 modal (否则会永久阻塞)
	res, err := f.svc.Connect(ctx, ConnectOptions{})
	require.NoError(t, err)
	assert.Equal(t, wantAddr, res.Address)
	assert.False(t, res.NewSession)
	assert.False(t, f.modal.State().Visible)
}

func TestConnectNewSession(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	wantAddr := f.fake.RegisterCode("abc123")

	done := make(chan struct{})
	var res *ConnectResult
	var connErr error
	go func() {
		res, connErr = f.svc.Connect(ctx, ConnectOptions{Title: "Connect"})
		close(done)
	}()

	waitForWaiter(t, f.modal)
	f.modal.SubmitCode("abc123")
	<-done

	require.NoError(t, connErr)
	assert.Equal(t, wantAddr, res.Address)
	assert.True(t, res.NewSession)
	assert.Equal(t, modal.ScreenSuccess, f.modal.State().Screen)

	// 会话已持久化
	assert.True(t, f.svc.IsConnected(ctx))
	assert.Equal(t, wantAddr, f.svc.ConnectedAddress(ctx))
}

func TestConnectCancelledIsNotAnError(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	done := make(chan struct{})
	var res *ConnectResult
	var connErr error
	go func() {
		res, connErr = f.svc.Connect(ctx, ConnectOptions{})
		close(done)
	}()

	waitForWaiter(t, f.modal)
	f.modal.Close(modal.ReasonEscape)
	<-done

	require.NoError(t, connErr, "用户取消是正常控制流")
	assert.True(t, res.Cancelled)
	assert.Empty(t, res.Address)
}

func TestConnectBadCodeShowsError(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	done := make(chan struct{})
	var connErr error
	go func() {
		_, connErr = f.svc.Connect(ctx, ConnectOptions{})
		close(done)
	}()

	waitForWaiter(t, f.modal)
	f.modal.SubmitCode("unknown-code")
	<-done

	assert.ErrorIs(t, connErr, errno.ErrActionNotFound)
	state := f.modal.State()
	assert.Equal(t, modal.ScreenError, state.Screen)
	assert.NotEmpty(t, state.ErrorMessage)
}

func signedTestTx(t *testing.T, key *ecdsa.PrivateKey) *types.Transaction {
	t.Helper()
	signer := types.LatestSignerForChainID(big.NewInt(1))
	to := common.HexToAddress("0x00000000000000000000000000000000000000aa")
	tx, err := types.SignNewTx(key, signer, &types.LegacyTx{
		Nonce:    1,
		To:       &to,
		Value:    big.NewInt(100),
		Gas:      21000,
		GasPrice: big.NewInt(1),
	})
	require.NoError(t, err)
	return tx
}

func TestSignTransactionRoundTrip(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.fake.RegisterCode("abc123")
	_, _, err := f.sessions.Create(ctx, "abc123", "site.com")
	require.NoError(t, err)

	// 钱包侧: 返回一笔已签名的交易
	walletKey, err := crypto.GenerateKey()
	require.NoError(t, err)
	walletSigned := signedTestTx(t, walletKey)
	raw, err := walletSigned.MarshalBinary()
	require.NoError(t, err)

	f.fake.SubmitHook = func(_ context.Context, _ string, payload protocol.SubmissionPayload, _ time.Duration) (*protocol.TaskResult, error) {
		assert.True(t, payload.SignOnly)
		assert.NotEmpty(t, payload.TransactionBase64)
		return &protocol.TaskResult{
			Status: protocol.StatusCompleted,
			Result: base64.StdEncoding.EncodeToString(raw),
		}, nil
	}

	unsigned := types.NewTx(&types.LegacyTx{Nonce: 1, Gas: 21000, GasPrice: big.NewInt(1)})

	done := make(chan struct{})
	var got *types.Transaction
	var signErr error
	go func() {
		got, signErr = f.svc.SignTransaction(ctx, unsigned)
		close(done)
	}()

	waitForWaiter(t, f.modal)
	f.modal.SubmitCode("abc123")
	<-done

	require.NoError(t, signErr)
	assert.Equal(t, walletSigned.Hash(), got.Hash())
	assert.Equal(t, modal.ScreenSuccess, f.modal.State().Screen)
}

func TestSignTransactionRecipientMismatch(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.fake.RegisterCode("code-a")
	f.fake.RegisterCode("code-b") // 不同的钱包

	_, _, err := f.sessions.Create(ctx, "code-a", "site.com")
	require.NoError(t, err)

	unsigned := types.NewTx(&types.LegacyTx{Nonce: 0, Gas: 21000, GasPrice: big.NewInt(1)})

	done := make(chan struct{})
	var signErr error
	go func() {
		_, signErr = f.svc.SignTransaction(ctx, unsigned)
		close(done)
	}()

	waitForWaiter(t, f.modal)
	// 会话绑定 code-a 的钱包, 却提交了 code-b
	f.modal.SubmitCode("code-b")
	<-done

	assert.ErrorIs(t, signErr, errno.ErrRecipientMismatch)
	assert.True(t, errno.IsConnection(signErr), "交叉检查失败按连接错误处理, 不重试")
}

func TestSignTransactionCancelled(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	done := make(chan struct{})
	var signErr error
	go func() {
		_, signErr = f.svc.SignTransaction(ctx, types.NewTx(&types.LegacyTx{Gas: 21000, GasPrice: big.NewInt(1)}))
		close(done)
	}()

	waitForWaiter(t, f.modal)
	f.modal.Close(modal.ReasonCloseButton)
	<-done

	assert.True(t, modal.IsClosed(signErr), "取消通过结构化错误上抛")
}

func TestProcessActionHeadless(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	wantAddr := f.fake.RegisterCode("abc123")

	// 无 UI: modal 从未被触碰
	addr, err := f.svc.ProcessAction(ctx, "abc123")
	require.NoError(t, err)
	assert.Equal(t, wantAddr, addr)
	assert.False(t, f.modal.State().Visible)
	assert.True(t, f.svc.IsConnected(ctx))
}

func TestDisconnectAlwaysSucceeds(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.fake.RegisterCode("abc123")
	_, _, _ = f.sessions.Create(ctx, "abc123", "site.com")

	assert.NoError(t, f.svc.Disconnect(ctx))
	assert.False(t, f.svc.IsConnected(ctx))
	assert.Empty(t, f.svc.ConnectedAddress(ctx))

	// 没有会话时也成功
	assert.NoError(t, f.svc.Disconnect(ctx))
}

func TestNewServiceValidation(t *testing.T) {
	f := newFixture(t)

	_, err := NewService(Config{}, f.sessions, f.fake, f.modal, nil)
	assert.ErrorIs(t, err, errno.ErrNoOrigin)

	_, err = NewService(Config{Origin: "site.com"}, nil, f.fake, f.modal, nil)
	assert.ErrorIs(t, err, errno.ErrNotInitialized)
}
