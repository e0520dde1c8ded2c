package messaging

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisBus_PublishSubscribe(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	bus := NewRedisBus(client)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	ch, err := bus.Subscribe(ctx, "partner.team.events")
	require.NoError(t, err)

	require.NoError(t, bus.Publish(ctx, "partner.team.events", map[string]interface{}{"type": "member.joined", "team_id": 7}))

	select {
	case msg := <-ch:
		assert.Equal(t, "partner.team.events", msg.Channel)
		var decoded map[string]interface{}
		require.NoError(t, json.Unmarshal(msg.Payload, &decoded))
		assert.Equal(t, "member.joined", decoded["type"])
		assert.EqualValues(t, 7, decoded["team_id"])
	case <-ctx.Done():
		t.Fatal("message not received")
	}
}

func TestRedisBus_PublishMarshalError(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	err := NewRedisBus(client).Publish(context.Background(), "c", make(chan int))
	assert.Error(t, err)
}

func TestNopPublisher(t *testing.T) {
	assert.NoError(t, NopPublisher{}.Publish(context.Background(), "c", "x"))
}
