// Package mq 提供基于 Watermill 的发布/订阅客户端，服务层用它发布音频生命周期事件.
//
// 支持的 MQ 类型：
//   - gochannel：进程内，默认
//   - nats：NATS Core / JetStream
//   - redis：Redis Pub/Sub
//
// 使用示例：
//
//	client, err := mq.New(ctx, &cfg.MQ, mq.Options{Registerer: metrics.GetRegistry()})
//	if err != nil {
//		return err
//	}
//	defer client.Close()
//
//	ch, _ := client.Subscribe(ctx, queue.TopicAudioStored)
//	_ = queue.PublishAudioStored(client.Publisher(), payload)
package mq

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	watermill "github.com/ThreeDotsLabs/watermill"
	wmetrics "github.com/ThreeDotsLabs/watermill/components/metrics"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/yeisme/audiovault/pkg/configs"
	nlog "github.com/yeisme/audiovault/pkg/log"
)

// HealthTopic Ping 使用的主题.
const HealthTopic = "av.health.ping"

// ErrClosed 客户端已关闭.
var ErrClosed = errors.New("mq: client closed")

// Factory 定义创建 Publisher + Subscriber 的工厂函数.
type Factory func(ctx context.Context, cfg *configs.MQConfig, logger watermill.LoggerAdapter) (message.Publisher, message.Subscriber, error)

var factories = map[configs.MQType]Factory{}

// RegisterFactory 注册指定 MQType 的工厂.
func RegisterFactory(t configs.MQType, f Factory) {
	factories[t] = f
}

// GetRegisteredTypes 返回已注册的 MQ 类型.
func GetRegisteredTypes() []configs.MQType {
	types := make([]configs.MQType, 0, len(factories))
	for t := range factories {
		types = append(types, t)
	}

	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })

	return types
}

// Options 构造选项.
type Options struct {
	// Registerer 非空且 common.enable_metrics 为 true 时为 pub/sub 挂载 prometheus 指标.
	Registerer prometheus.Registerer
}

// Client 封装 watermill Publisher 与 Subscriber.
type Client struct {
	Type configs.MQType

	publisher  message.Publisher
	subscriber message.Subscriber

	mu     sync.RWMutex
	closed bool
}

// New 按配置创建客户端.
func New(ctx context.Context, cfg *configs.MQConfig, opts Options) (*Client, error) {
	factory, ok := factories[cfg.Type]
	if !ok {
		return nil, fmt.Errorf("unsupported mq type: %s", cfg.Type)
	}

	logger := NewLoggerAdapter(nlog.Logger())

	pub, sub, err := factory(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("init mq (%s): %w", cfg.Type, err)
	}

	if opts.Registerer != nil && cfg.Common.EnableMetrics {
		builder := wmetrics.NewPrometheusMetricsBuilder(opts.Registerer, configs.AppName, "mq")

		if pub, err = builder.DecoratePublisher(pub); err != nil {
			return nil, fmt.Errorf("decorate publisher with metrics: %w", err)
		}

		if sub, err = builder.DecorateSubscriber(sub); err != nil {
			return nil, fmt.Errorf("decorate subscriber with metrics: %w", err)
		}
	}

	nlog.Logger().Info().Str("type", string(cfg.Type)).Msg("mq client initialized")

	return &Client{Type: cfg.Type, publisher: pub, subscriber: sub}, nil
}

// Publisher 返回底层 Publisher，供 queue 包的发布函数使用.
func (c *Client) Publisher() message.Publisher {
	return c.publisher
}

// Publish 便捷发布.
func (c *Client) Publish(_ context.Context, topic string, msgs ...*message.Message) error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.closed {
		return ErrClosed
	}

	return c.publisher.Publish(topic, msgs...)
}

// Subscribe 便捷订阅.
func (c *Client) Subscribe(ctx context.Context, topic string) (<-chan *message.Message, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.closed {
		return nil, ErrClosed
	}

	return c.subscriber.Subscribe(ctx, topic)
}

// Ping 向健康检查主题发布一条消息.
func (c *Client) Ping(ctx context.Context) error {
	msg := message.NewMessage(watermill.NewUUID(), []byte("ping"))
	msg.SetContext(ctx)

	return c.Publish(ctx, HealthTopic, msg)
}

// Close 关闭资源，可重复调用.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}

	c.closed = true

	return errors.Join(c.publisher.Close(), c.subscriber.Close())
}
