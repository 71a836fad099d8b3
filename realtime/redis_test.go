package realtime

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnvelopeRoundTrip(t *testing.T) {
	raw, err := encodeEnvelope("users/1/inquiries/7", []byte(`{"id":"e1"}`))
	require.NoError(t, err)

	env, err := decodeEnvelope(raw)
	require.NoError(t, err)
	assert.Equal(t, "users/1/inquiries/7", env.Topic)
	assert.JSONEq(t, `{"id":"e1"}`, string(env.Payload))
}

func TestDecodeEnvelope_Rejects(t *testing.T) {
	_, err := decodeEnvelope([]byte("not json"))
	assert.Error(t, err)

	_, err = decodeEnvelope([]byte(`{"payload":{}}`))
	assert.Error(t, err, "a topic is required")
}

func TestRedisRelay_HandleDeliversLocally(t *testing.T) {
	local := &fakePublisher{}
	relay := NewRedisRelay(nil, local)

	raw, err := encodeEnvelope("admin/inquiries/7", []byte(`{"id":"e1"}`))
	require.NoError(t, err)

	relay.handle(context.Background(), raw)
	relay.handle(context.Background(), []byte("garbage"))

	require.Equal(t, 1, local.count())
	assert.Equal(t, "admin/inquiries/7", local.got[0].topic)
	assert.JSONEq(t, `{"id":"e1"}`, string(local.got[0].data))
}

func TestRedisPublisher_UnreachableServer(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 200 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer client.Close()

	err := NewRedisPublisher(client).Publish(context.Background(), "admin/inquiries", []byte(`{}`))
	assert.Error(t, err)
}
