//go:build !no_redis

package mq

import (
	"context"
	"errors"
	"sync"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/bytedance/sonic"
	"github.com/redis/go-redis/v9"

	"github.com/yeisme/audiovault/pkg/configs"
)

// DefaultChannelBufferSize 默认通道缓冲区大小.
const DefaultChannelBufferSize = 100

// redisEnvelope Redis 频道里传输的消息，保留 watermill 的 UUID 与元数据.
type redisEnvelope struct {
	UUID     string            `json:"uuid"`
	Metadata map[string]string `json:"metadata,omitempty"`
	Payload  []byte            `json:"payload"`
}

// RedisPublisher Redis Pub/Sub Publisher.
type RedisPublisher struct {
	client *redis.Client
	logger watermill.LoggerAdapter
}

// RedisSubscriber Redis Pub/Sub Subscriber. 每次 Subscribe 打开独立的 PubSub 连接.
type RedisSubscriber struct {
	client *redis.Client
	logger watermill.LoggerAdapter

	mu      sync.Mutex
	subs    []*redis.PubSub
	wg      sync.WaitGroup
	closed  bool
	closeCh chan struct{}
}

func init() {
	RegisterFactory(configs.MQTypeRedis, redisFactory)
}

// redisFactory 创建 Redis Publisher & Subscriber，两者各自持有连接.
func redisFactory(
	ctx context.Context,
	cfg *configs.MQConfig,
	logger watermill.LoggerAdapter) (
	message.Publisher, message.Subscriber, error) {
	opts := &redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	}

	pubClient := redis.NewClient(opts)
	if err := pubClient.Ping(ctx).Err(); err != nil {
		_ = pubClient.Close()
		return nil, nil, err
	}

	pub := &RedisPublisher{client: pubClient, logger: logger}
	sub := &RedisSubscriber{
		client:  redis.NewClient(opts),
		logger:  logger,
		closeCh: make(chan struct{}),
	}

	return pub, sub, nil
}

// Publish 实现 Publisher 接口.
func (p *RedisPublisher) Publish(topic string, msgs ...*message.Message) error {
	for _, msg := range msgs {
		data, err := sonic.Marshal(redisEnvelope{
			UUID:     msg.UUID,
			Metadata: msg.Metadata,
			Payload:  msg.Payload,
		})
		if err != nil {
			return err
		}

		if err := p.client.Publish(msg.Context(), topic, data).Err(); err != nil {
			return err
		}

		p.logger.Trace("message published", watermill.LogFields{"topic": topic, "uuid": msg.UUID})
	}

	return nil
}

// Close 实现 Publisher 接口.
func (p *RedisPublisher) Close() error {
	return p.client.Close()
}

// Subscribe 实现 Subscriber 接口. Redis Pub/Sub 没有确认机制，收到 Ack/Nack 后即继续下一条.
func (s *RedisSubscriber) Subscribe(ctx context.Context, topic string) (<-chan *message.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, ErrClosed
	}

	ps := s.client.Subscribe(ctx, topic)
	if _, err := ps.Receive(ctx); err != nil {
		_ = ps.Close()
		return nil, err
	}

	s.subs = append(s.subs, ps)
	out := make(chan *message.Message, DefaultChannelBufferSize)

	s.wg.Add(1)

	go func() {
		defer s.wg.Done()
		defer close(out)

		in := ps.Channel()

		for {
			select {
			case <-s.closeCh:
				return
			case <-ctx.Done():
				return
			case rm, ok := <-in:
				if !ok {
					return
				}

				msg, err := decodeRedisMessage(rm.Payload)
				if err != nil {
					s.logger.Error("drop malformed message", err, watermill.LogFields{"topic": topic})
					continue
				}

				msg.SetContext(ctx)

				select {
				case out <- msg:
				case <-s.closeCh:
					return
				case <-ctx.Done():
					return
				}

				select {
				case <-msg.Acked():
				case <-msg.Nacked():
				case <-s.closeCh:
					return
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return out, nil
}

// Close 实现 Subscriber 接口.
func (s *RedisSubscriber) Close() error {
	s.mu.Lock()

	if s.closed {
		s.mu.Unlock()
		return nil
	}

	s.closed = true
	close(s.closeCh)

	var errs []error
	for _, ps := range s.subs {
		errs = append(errs, ps.Close())
	}

	s.mu.Unlock()
	s.wg.Wait()

	errs = append(errs, s.client.Close())

	return errors.Join(errs...)
}

func decodeRedisMessage(raw string) (*message.Message, error) {
	var env redisEnvelope
	if err := sonic.UnmarshalString(raw, &env); err != nil {
		return nil, err
	}

	if env.UUID == "" {
		env.UUID = watermill.NewUUID()
	}

	msg := message.NewMessage(env.UUID, env.Payload)
	for k, v := range env.Metadata {
		msg.Metadata.Set(k, v)
	}

	return msg, nil
}
