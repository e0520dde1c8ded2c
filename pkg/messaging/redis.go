// Package messaging은 Redis pub/sub 기반의 이벤트 발행/구독을 제공합니다.
package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Publisher 이벤트 발행 인터페이스
type Publisher interface {
	Publish(ctx context.Context, channel string, message interface{}) error
}

// Subscriber 채널 구독 인터페이스
type Subscriber interface {
	Subscribe(ctx context.Context, channel string) (<-chan Message, error)
}

// Message 메시지 구조체
type Message struct {
	Channel string
	Payload []byte
	Time    time.Time
}

// RedisBus는 공유 go-redis 클라이언트 위에서 동작하는 Publisher/Subscriber 구현체입니다.
// 클라이언트의 수명은 호출자가 관리합니다.
type RedisBus struct {
	client redis.UniversalClient
}

// NewRedisBus Redis 버스 생성
func NewRedisBus(client redis.UniversalClient) *RedisBus {
	return &RedisBus{client: client}
}

// Publish는 메시지를 JSON으로 직렬화해 발행합니다
func (r *RedisBus) Publish(ctx context.Context, channel string, message interface{}) error {
	payload, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("메시지 직렬화 실패: %w", err)
	}

	if err := r.client.Publish(ctx, channel, payload).Err(); err != nil {
		return fmt.Errorf("메시지 발행 실패: %w", err)
	}
	return nil
}

// Subscribe 채널 구독. ctx가 끝나면 채널이 닫힙니다.
func (r *RedisBus) Subscribe(ctx context.Context, channel string) (<-chan Message, error) {
	pubsub := r.client.Subscribe(ctx, channel)

	// 구독 확인
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, fmt.Errorf("채널 구독 실패: %w", err)
	}

	messageCh := make(chan Message)
	go func() {
		defer close(messageCh)
		defer pubsub.Close()

		ch := pubsub.Channel()
		for {
			select {
			case msg, ok := <-ch:
				if !ok {
					return
				}
				select {
				case messageCh <- Message{Channel: msg.Channel, Payload: []byte(msg.Payload), Time: time.Now()}:
				case <-ctx.Done():
					return
				}
			case <-ctx.Done():
				return
			}
		}
	}()

	return messageCh, nil
}

// NopPublisher는 아무것도 발행하지 않습니다. 이벤트 발행이 꺼져 있을 때 사용합니다.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, string, interface{}) error { return nil }
