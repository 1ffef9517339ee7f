package session

import (
	"context"
	"testing"
	"time"

	"bridge-core/internal/client"
	"bridge-core/pkg/errno"
	"bridge-core/pkg/proof"
	"bridge-core/pkg/protocol"
	"bridge-core/pkg/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T, opts ...Option) (*Store, *client.FakeClient, *storage.MemoryStore) {
	t.Helper()
	fake := client.NewFakeClient()
	mem := storage.NewMemoryStore()
	store, err := NewStore(mem, fake, opts...)
	require.NoError(t, err)
	return store, fake, mem
}

func TestCreateThenValidate(t *testing.T) {
	ctx := context.Background()
	store, fake, _ := newTestStore(t)
	wantAddr := fake.RegisterCode("abc123")

	sess, addr, err := store.Create(ctx, "abc123", "site.com")
	require.NoError(t, err)
	assert.Equal(t, wantAddr, addr)
	assert.Equal(t, "site.com", sess.Origin)
	assert.NotEmpty(t, sess.SignedTxBase64)

	res := store.Validate(ctx, "site.com")
	assert.True(t, res.IsValid)
	assert.Equal(t, wantAddr, res.Address, "恢复出的地址必须等于 Action 的 intended_for")
	assert.NoError(t, res.Err)
}

func TestValidateIsIdempotentWhileValid(t *testing.T) {
	ctx := context.Background()
	store, fake, _ := newTestStore(t)
	fake.RegisterCode("abc123")
	_, _, err := store.Create(ctx, "abc123", "site.com")
	require.NoError(t, err)

	first := store.Validate(ctx, "site.com")
	second := store.Validate(ctx, "site.com")
	assert.Equal(t, first, second)
}

func TestValidateNoSession(t *testing.T) {
	store, _, _ := newTestStore(t)
	res := store.Validate(context.Background(), "site.com")
	assert.False(t, res.IsValid)
	assert.ErrorIs(t, res.Err, errno.ErrNoSession)
}

func TestValidateOriginMismatchClearsSession(t *testing.T) {
	ctx := context.Background()
	store, fake, mem := newTestStore(t)
	fake.RegisterCode("abc123")
	_, _, err := store.Create(ctx, "abc123", "site.com")
	require.NoError(t, err)

	res := store.Validate(ctx, "other.com")
	assert.False(t, res.IsValid)
	assert.ErrorIs(t, res.Err, errno.ErrOriginMismatch)

	// 会话作为副作用被删除
	_, ok, _ := mem.Get(ctx, "actionbridge:session")
	assert.False(t, ok, "校验失败后存储应为空")

	// 再次校验报 no session, 而不是重复原错误
	res = store.Validate(ctx, "other.com")
	assert.ErrorIs(t, res.Err, errno.ErrNoSession)
}

func TestValidateExpiredClearsSession(t *testing.T) {
	ctx := context.Background()
	clock := time.Now()
	store, fake, mem := newTestStore(t, WithClock(func() time.Time { return clock }))
	fake.RegisterCode("abc123")
	_, _, err := store.Create(ctx, "abc123", "site.com")
	require.NoError(t, err)

	// 拨快到 TTL 之后
	clock = clock.Add(25 * time.Hour)

	res := store.Validate(ctx, "site.com")
	assert.False(t, res.IsValid)
	assert.ErrorIs(t, res.Err, errno.ErrSessionExpired)

	_, ok, _ := mem.Get(ctx, "actionbridge:session")
	assert.False(t, ok)
}

func TestValidateCorruptedPayload(t *testing.T) {
	ctx := context.Background()
	store, _, mem := newTestStore(t)

	// 直接塞一条脏数据
	require.NoError(t, mem.Set(ctx, "actionbridge:session", []byte("not json"), 0))
	res := store.Validate(ctx, "site.com")
	assert.ErrorIs(t, res.Err, errno.ErrSessionCorrupted)

	// 合法 JSON 但 signedTx 不是交易
	raw := []byte(`{"signed_tx_base64":"aGVsbG8=","expires_at":"2999-01-01T00:00:00Z","origin":"site.com"}`)
	require.NoError(t, mem.Set(ctx, "actionbridge:session", raw, 0))
	res = store.Validate(ctx, "site.com")
	assert.ErrorIs(t, res.Err, errno.ErrSessionCorrupted)
}

func TestValidateMemoMissing(t *testing.T) {
	ctx := context.Background()
	store, _, mem := newTestStore(t)

	// 未签名模板能解码成交易, 但没有绑定 memo
	template, err := proof.BuildTemplate("0x8ba1f109551bD432803012645Ac136ddd64DBA72", "site.com")
	require.NoError(t, err)
	raw := []byte(`{"signed_tx_base64":"` + template + `","expires_at":"2999-01-01T00:00:00Z","origin":"site.com"}`)
	require.NoError(t, mem.Set(ctx, "actionbridge:session", raw, 0))

	res := store.Validate(ctx, "site.com")
	assert.ErrorIs(t, res.Err, errno.ErrMemoMissing)
}

func TestCreateIncompleteSubmission(t *testing.T) {
	ctx := context.Background()
	store, fake, _ := newTestStore(t)
	fake.RegisterCode("abc123")

	fake.SubmitHook = func(_ context.Context, _ string, _ protocol.SubmissionPayload, _ time.Duration) (*protocol.TaskResult, error) {
		return &protocol.TaskResult{Status: protocol.StatusFailed}, nil
	}

	_, _, err := store.Create(ctx, "abc123", "site.com")
	assert.ErrorIs(t, err, errno.ErrIncompleteAction)
}

func TestCreateEmptyResult(t *testing.T) {
	ctx := context.Background()
	store, fake, _ := newTestStore(t)
	fake.RegisterCode("abc123")

	fake.SubmitHook = func(_ context.Context, _ string, _ protocol.SubmissionPayload, _ time.Duration) (*protocol.TaskResult, error) {
		return &protocol.TaskResult{Status: protocol.StatusCompleted}, nil
	}

	_, _, err := store.Create(ctx, "abc123", "site.com")
	assert.ErrorIs(t, err, errno.ErrIncompleteAction)
}

func TestCreateSubmitsSignOnly(t *testing.T) {
	ctx := context.Background()
	store, fake, _ := newTestStore(t)
	fake.RegisterCode("abc123")

	_, _, err := store.Create(ctx, "abc123", "site.com")
	require.NoError(t, err)

	require.Len(t, fake.Submitted, 1)
	assert.True(t, fake.Submitted[0].SignOnly, "占位交易只签名, 绝不广播")
}

func TestCreateBadCode(t *testing.T) {
	store, _, _ := newTestStore(t)
	_, _, err := store.Create(context.Background(), "nope", "site.com")
	assert.ErrorIs(t, err, errno.ErrActionNotFound)
}

func TestClearIsIdempotent(t *testing.T) {
	ctx := context.Background()
	store, fake, _ := newTestStore(t)
	fake.RegisterCode("abc123")
	_, _, _ = store.Create(ctx, "abc123", "site.com")

	assert.NoError(t, store.Clear(ctx))
	assert.NoError(t, store.Clear(ctx))
	assert.False(t, store.HasValid(ctx, "site.com"))
}
