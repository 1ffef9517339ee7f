package session

import (
	"context"
	"time"

	"bridge-core/internal/client"
	"bridge-core/internal/model"
	"bridge-core/pkg/crypto_util"
	"bridge-core/pkg/errno"
	"bridge-core/pkg/logger"
	"bridge-core/pkg/proof"
	"bridge-core/pkg/protocol"
	"bridge-core/pkg/storage"

	"go.uber.org/zap"
)

// Store 管理 origin 绑定、有时效的 proof-of-wallet 会话。
// 持久化通过注入的 storage.Store 完成。
type Store struct {
	storage    storage.Store
	client     client.Client
	storageKey string
	label      string // 站点展示名, 随提交一起发给钱包
	logo       string
	ttl        time.Duration
	timeout    time.Duration    // 提交占位交易的超时
	now        func() time.Time // 测试中可替换
}

// ValidationResult Validate 的结果。校验失败时会话已被清除。
type ValidationResult struct {
	IsValid bool
	Address string
	Err     error
}

type Option func(*Store)

func WithTTL(ttl time.Duration) Option {
	return func(s *Store) { s.ttl = ttl }
}

func WithSubmitTimeout(d time.Duration) Option {
	return func(s *Store) { s.timeout = d }
}

func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func WithStorageKey(key string) Option {
	return func(s *Store) { s.storageKey = key }
}

func WithSiteMeta(label, logo string) Option {
	return func(s *Store) { s.label, s.logo = label, logo }
}

func NewStore(st storage.Store, c client.Client, opts ...Option) (*Store, error) {
	if st == nil {
		return nil, errno.ErrNoStorage
	}
	s := &Store{
		storage:    st,
		client:     c,
		storageKey: "actionbridge:session",
		ttl:        24 * time.Hour,
		timeout:    60 * time.Second,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Create exchanges an action code for a signed proof transaction and
// persists the session. The placeholder transaction is never broadcast; it
// exists solely as a signable artifact.
func (s *Store) Create(ctx context.Context, code, origin string) (*model.Session, string, error) {
	if origin == "" {
		return nil, "", errno.ErrNoOrigin
	}

	action, err := s.client.GetAction(ctx, code)
	if err != nil {
		return nil, "", err
	}

	template, err := proof.BuildTemplate(action.IntendedFor, origin)
	if err != nil {
		return nil, "", errno.ErrInvalidRecipient
	}

	result, err := s.client.SubmitAction(ctx, code, protocol.SubmissionPayload{
		Label:             s.label,
		Logo:              s.logo,
		Message:           "Proof of wallet for " + origin,
		SignOnly:          true,
		TransactionBase64: template,
	}, s.timeout)
	if err != nil {
		return nil, "", err
	}
	if result.Status != protocol.StatusCompleted || result.Result == "" {
		return nil, "", errno.ErrIncompleteAction
	}

	sess := &model.Session{
		SignedTxBase64: result.Result,
		ExpiresAt:      s.now().Add(s.ttl).UTC(),
		Origin:         origin,
	}
	raw, err := sess.Marshal()
	if err != nil {
		return nil, "", err
	}
	if err := s.storage.Set(ctx, s.storageKey, raw, s.ttl); err != nil {
		return nil, "", err
	}

	logger.Info("session created",
		zap.String("origin", origin),
		zap.String("code_digest", crypto_util.CodeDigest(code)),
		zap.Time("expires_at", sess.ExpiresAt))

	return sess, action.IntendedFor, nil
}

// Validate runs the ordered validation pipeline: existence, expiry, origin,
// payload shape, memo presence, signature. It short-circuits on the first
// failure and clears the stored session so a known-bad credential is never
// retried. Cheap checks run before cryptographic ones.
func (s *Store) Validate(ctx context.Context, origin string) ValidationResult {
	raw, ok, err := s.storage.Get(ctx, s.storageKey)
	if err != nil {
		return ValidationResult{Err: err}
	}
	if !ok {
		return ValidationResult{Err: errno.ErrNoSession}
	}

	sess, err := model.UnmarshalSession(raw)
	if err != nil {
		return s.reject(ctx, origin, errno.ErrSessionCorrupted)
	}

	if s.now().After(sess.ExpiresAt) {
		return s.reject(ctx, origin, errno.ErrSessionExpired)
	}
	if sess.Origin != origin {
		return s.reject(ctx, origin, errno.ErrOriginMismatch)
	}

	tx, err := proof.Decode(sess.SignedTxBase64)
	if err != nil {
		return s.reject(ctx, origin, errno.ErrSessionCorrupted)
	}

	memo, err := tx.ExtractMemo()
	if err != nil {
		return s.reject(ctx, origin, errno.ErrMemoMissing)
	}

	addr, err := proof.VerifyMemo(memo, origin)
	if err != nil {
		return s.reject(ctx, origin, errno.ErrMemoInvalid)
	}

	return ValidationResult{IsValid: true, Address: addr.Hex()}
}

// reject 校验失败即清除会话, 避免对坏凭证反复重试
func (s *Store) reject(ctx context.Context, origin string, cause errno.Errno) ValidationResult {
	if err := s.storage.Delete(ctx, s.storageKey); err != nil {
		logger.Warn("failed to clear invalid session", zap.Error(err))
	}
	logger.Info("session rejected",
		zap.String("origin", origin),
		zap.String("reason", cause.Message))
	return ValidationResult{Err: cause}
}

// Clear 幂等删除会话
func (s *Store) Clear(ctx context.Context) error {
	return s.storage.Delete(ctx, s.storageKey)
}

// HasValid 便捷封装
func (s *Store) HasValid(ctx context.Context, origin string) bool {
	return s.Validate(ctx, origin).IsValid
}
