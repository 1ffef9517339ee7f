package mq

import "context"

// NoopProducer 用于 CLI 和未配置 MQ 的部署, 吞掉所有事件。
type NoopProducer struct{}

func NewNoopProducer() *NoopProducer {
	return &NoopProducer{}
}

func (NoopProducer) Publish(ctx context.Context, topic string, key string, payload []byte) error {
	return nil
}
