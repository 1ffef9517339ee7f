package audit

import (
	"context"
	"encoding/json"

	"bridge-core/internal/event"
	"bridge-core/internal/model"
	"bridge-core/internal/service/mq"
	"bridge-core/pkg/logger"
	"bridge-core/pkg/monitor"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Auditor 消费钱包事件并落审计表。
// db 为 nil 时只记日志和指标, 不落库。
type Auditor struct {
	db       *gorm.DB
	consumer mq.Consumer
}

func NewAuditor(db *gorm.DB, consumer mq.Consumer) *Auditor {
	return &Auditor{db: db, consumer: consumer}
}

// Start 订阅事件主题并阻塞, ctx 取消后返回
func (a *Auditor) Start(ctx context.Context) error {
	logger.Info("Auditor starting...", zap.String("topic", event.TopicWallet))
	return a.consumer.Subscribe(ctx, event.TopicWallet, a.handle)
}

func (a *Auditor) handle(msg *mq.Message) error {
	var env event.Envelope
	if err := json.Unmarshal(msg.Payload, &env); err != nil {
		// 格式错误, 重试也没用
		logger.Warn("unparseable wallet event", zap.Error(err))
		return nil
	}

	entry := model.AuditEntry{
		EventType: env.Type,
		Payload:   msg.Payload,
	}

	switch env.Type {
	case event.TypeWalletConnected:
		var e event.WalletConnectedEvent
		if err := json.Unmarshal(env.Payload, &e); err != nil {
			logger.Warn("bad wallet_connected payload", zap.Error(err))
			return nil
		}
		entry.Origin = e.Origin
		entry.Address = e.Address
		logger.Info("wallet connected",
			zap.String("origin", e.Origin),
			zap.String("address", e.Address),
			zap.Bool("new_session", e.NewSession),
			zap.String("code_digest", e.CodeDigest))

	case event.TypeWalletDisconnected:
		var e event.WalletDisconnectedEvent
		if err := json.Unmarshal(env.Payload, &e); err != nil {
			logger.Warn("bad wallet_disconnected payload", zap.Error(err))
			return nil
		}
		entry.Origin = e.Origin
		entry.Address = e.Address
		logger.Info("wallet disconnected",
			zap.String("origin", e.Origin),
			zap.String("address", e.Address))

	case event.TypeTransactionSigned:
		var e event.TransactionSignedEvent
		if err := json.Unmarshal(env.Payload, &e); err != nil {
			logger.Warn("bad transaction_signed payload", zap.Error(err))
			return nil
		}
		entry.Origin = e.Origin
		entry.Address = e.Address
		entry.TxHash = e.TxHash
		logger.Info("transaction signed",
			zap.String("origin", e.Origin),
			zap.String("address", e.Address),
			zap.String("tx_hash", e.TxHash))

	default:
		logger.Warn("unknown wallet event type", zap.String("type", env.Type))
		return nil
	}

	if monitor.Business != nil {
		monitor.Business.EventsConsumedTotal.WithLabelValues(env.Type).Inc()
	}

	if a.db != nil {
		if err := a.db.Create(&entry).Error; err != nil {
			// 落库失败交给 MQ 重试
			logger.Error("persisting audit entry", zap.Error(err))
			return err
		}
	}
	return nil
}
