package bridge

import (
	"context"
	"encoding/base64"
	"errors"
	"time"

	"bridge-core/internal/client"
	"bridge-core/internal/event"
	"bridge-core/internal/modal"
	"bridge-core/internal/service/mq"
	"bridge-core/internal/session"
	"bridge-core/pkg/crypto_util"
	"bridge-core/pkg/errno"
	"bridge-core/pkg/logger"
	"bridge-core/pkg/monitor"
	"bridge-core/pkg/protocol"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Service 把会话、客户端和模态框编排成对外暴露的完整操作。
type Service struct {
	sessions *session.Store
	client   client.Client
	modal    *modal.Controller
	producer mq.Producer

	origin        string
	siteName      string
	favicon       string
	submitTimeout time.Duration
}

// ConnectOptions 调用方提供的展示信息, 只影响用户看到的内容
type ConnectOptions struct {
	Title       string
	Description string
	Amount      decimal.Decimal
	Type        string
	Metadata    map[string]interface{}
}

// ConnectResult 连接结果。Cancelled=true 表示用户主动关闭,
// 属于正常控制流而不是错误。
type ConnectResult struct {
	Address    string
	NewSession bool
	Cancelled  bool
}

type Config struct {
	Origin        string
	SiteName      string
	Favicon       string
	SubmitTimeout time.Duration
}

func NewService(cfg Config, sessions *session.Store, c client.Client, m *modal.Controller, producer mq.Producer) (*Service, error) {
	if cfg.Origin == "" {
		return nil, errno.ErrNoOrigin
	}
	if sessions == nil || c == nil || m == nil {
		return nil, errno.ErrNotInitialized
	}
	if producer == nil {
		producer = mq.NewNoopProducer()
	}
	return &Service{
		sessions:      sessions,
		client:        c,
		modal:         m,
		producer:      producer,
		origin:        cfg.Origin,
		siteName:      cfg.SiteName,
		favicon:       cfg.Favicon,
		submitTimeout: cfg.SubmitTimeout,
	}, nil
}

// buildContext 每次操作都重新构造, 不做缓存
func (s *Service) buildContext(opts ConnectOptions, defaultTitle string) protocol.ActionContext {
	title := opts.Title
	if title == "" {
		title = defaultTitle
	}
	return protocol.ActionContext{
		Origin:      s.origin,
		Title:       title,
		Description: opts.Description,
		Amount:      opts.Amount,
		Type:        opts.Type,
		Favicon:     s.favicon,
		Metadata:    opts.Metadata,
	}
}

// Connect 连接钱包。已有有效会话时直接返回, 不弹 UI。
func (s *Service) Connect(ctx context.Context, opts ConnectOptions) (*ConnectResult, error) {
	if monitor.Business != nil {
		monitor.Business.ConnectAttemptsTotal.Inc()
	}

	// 会话仍然有效时静默恢复
	if res := s.sessions.Validate(ctx, s.origin); res.IsValid {
		s.countConnect("restored")
		s.publishConnected(res.Address, false, "")
		return &ConnectResult{Address: res.Address, NewSession: false}, nil
	}

	actx := s.buildContext(opts, "Connect to "+s.siteName)
	logger.Debug("connect flow starting", zap.String("origin", actx.Origin), zap.String("title", actx.Title))

	code, err := s.modal.Show(ctx)
	if err != nil {
		if modal.IsClosed(err) {
			// 用户取消: 静默断开, 不算故障
			s.countConnect("cancelled")
			if clearErr := s.sessions.Clear(ctx); clearErr != nil {
				logger.Warn("clearing session on cancelled connect", zap.Error(clearErr))
			}
			return &ConnectResult{Cancelled: true}, nil
		}
		return nil, err
	}

	s.modal.ShowLoading("Linking your wallet…")

	_, addr, err := s.sessions.Create(ctx, code, s.origin)
	if err != nil {
		s.countConnect("failed")
		s.recordNetworkError(err)
		s.modal.ShowError(err, "")
		return nil, err
	}

	s.modal.ShowSuccess(addr)
	s.countConnect("new")
	s.publishConnected(addr, true, crypto_util.CodeDigest(code))

	return &ConnectResult{Address: addr, NewSession: true}, nil
}

// SignTransaction 让远端钱包对调用方的交易签名。
// 会话绑定的地址必须与 Action 的接收方一致, 防止过期或错配的
// 会话为另一个接收方授权交易; 该检查失败是致命的, 不重试。
func (s *Service) SignTransaction(ctx context.Context, tx *types.Transaction) (*types.Transaction, error) {
	code, err := s.modal.Show(ctx)
	if err != nil {
		if modal.IsClosed(err) {
			s.countSign("cancelled")
			return nil, err
		}
		return nil, err
	}

	s.modal.ShowLoading("Waiting for your wallet to sign…")

	signed, addr, err := s.signWithCode(ctx, code, tx)
	if err != nil {
		s.countSign("failed")
		s.recordNetworkError(err)
		s.modal.ShowError(err, "")
		return nil, err
	}

	s.modal.ShowSuccess(signed.Hash().Hex())
	s.countSign("success")
	s.publish(event.TypeTransactionSigned, event.TransactionSignedEvent{
		Origin:  s.origin,
		Address: addr,
		TxHash:  signed.Hash().Hex(),
	})

	return signed, nil
}

func (s *Service) signWithCode(ctx context.Context, code string, tx *types.Transaction) (*types.Transaction, string, error) {
	action, err := s.client.GetAction(ctx, code)
	if err != nil {
		return nil, "", err
	}

	// 交叉检查: 当前会话绑定的钱包必须就是这次 Action 的接收方
	res := s.sessions.Validate(ctx, s.origin)
	if !res.IsValid {
		return nil, "", errno.ErrNoSession
	}
	if common.HexToAddress(res.Address) != common.HexToAddress(action.IntendedFor) {
		return nil, "", errno.ErrRecipientMismatch
	}

	rawTx, err := tx.MarshalBinary()
	if err != nil {
		return nil, "", err
	}

	result, err := s.client.SubmitAction(ctx, code, protocol.SubmissionPayload{
		Label:             s.siteName,
		Logo:              s.favicon,
		Message:           "Sign transaction for " + s.origin,
		SignOnly:          true,
		TransactionBase64: base64.StdEncoding.EncodeToString(rawTx),
	}, s.submitTimeout)
	if err != nil {
		return nil, "", err
	}
	if result.Status != protocol.StatusCompleted || result.Result == "" {
		return nil, "", errno.ErrIncompleteAction
	}

	signedRaw, err := base64.StdEncoding.DecodeString(result.Result)
	if err != nil {
		return nil, "", errno.ErrIncompleteAction
	}
	var signed types.Transaction
	if err := signed.UnmarshalBinary(signedRaw); err != nil {
		return nil, "", errno.ErrIncompleteAction
	}
	return &signed, res.Address, nil
}

// ProcessAction 无 UI 的直接处理: 调用方已经拿到 code
func (s *Service) ProcessAction(ctx context.Context, code string) (string, error) {
	_, addr, err := s.sessions.Create(ctx, code, s.origin)
	if err != nil {
		return "", err
	}
	s.publishConnected(addr, true, crypto_util.CodeDigest(code))
	return addr, nil
}

// Disconnect 清会话并复位模态框, 永远成功
func (s *Service) Disconnect(ctx context.Context) error {
	addr := ""
	if res := s.sessions.Validate(ctx, s.origin); res.IsValid {
		addr = res.Address
	}
	if err := s.sessions.Clear(ctx); err != nil {
		logger.Warn("clearing session on disconnect", zap.Error(err))
	}
	s.modal.Close(modal.ReasonReset)
	s.publish(event.TypeWalletDisconnected, event.WalletDisconnectedEvent{Origin: s.origin, Address: addr})
	return nil
}

// IsConnected 只读查询, 不弹 UI, 适合页面加载时静默探测
func (s *Service) IsConnected(ctx context.Context) bool {
	return s.sessions.HasValid(ctx, s.origin)
}

// ConnectedAddress returns the bound wallet address, or "" when no valid
// session exists.
func (s *Service) ConnectedAddress(ctx context.Context) string {
	res := s.sessions.Validate(ctx, s.origin)
	if !res.IsValid {
		return ""
	}
	return res.Address
}

func (s *Service) publishConnected(addr string, newSession bool, codeDigest string) {
	s.publish(event.TypeWalletConnected, event.WalletConnectedEvent{
		Origin:     s.origin,
		Address:    addr,
		NewSession: newSession,
		CodeDigest: codeDigest,
	})
}

// publish 异步发事件, 以 origin 作为分区键保证同站点事件有序
func (s *Service) publish(eventType string, payload interface{}) {
	go func() {
		raw, err := event.Wrap(eventType, payload)
		if err != nil {
			return
		}
		if err := s.producer.Publish(context.Background(), event.TopicWallet, s.origin, raw); err != nil {
			logger.Warn("publishing wallet event", zap.Error(err))
		}
	}()
}

func (s *Service) countConnect(outcome string) {
	if monitor.Business != nil {
		monitor.Business.ConnectOutcomesTotal.WithLabelValues(outcome).Inc()
	}
}

func (s *Service) countSign(outcome string) {
	if monitor.Business != nil {
		monitor.Business.SignRequestsTotal.WithLabelValues(outcome).Inc()
	}
}

func (s *Service) recordNetworkError(err error) {
	if monitor.Business == nil {
		return
	}
	var netErr *errno.NetworkError
	if errors.As(err, &netErr) {
		monitor.Business.NetworkErrorsTotal.WithLabelValues(string(netErr.Kind)).Inc()
	}
}
