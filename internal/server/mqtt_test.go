package server

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zeusync/zeuscene/internal/core/observability/log"
	"github.com/zeusync/zeuscene/internal/runtime"
)

type fakeToken struct {
	done chan struct{}
	err  error
}

func completedToken(err error) *fakeToken {
	t := &fakeToken{done: make(chan struct{}), err: err}
	close(t.done)
	return t
}

func (t *fakeToken) Wait() bool { <-t.done; return true }

func (t *fakeToken) WaitTimeout(d time.Duration) bool {
	select {
	case <-t.done:
		return true
	case <-time.After(d):
		return false
	}
}

func (t *fakeToken) Done() <-chan struct{} { return t.done }
func (t *fakeToken) Error() error          { return t.err }

type publish struct {
	topic    string
	qos      byte
	retained bool
	payload  []byte
}

type fakePublisher struct {
	mu        sync.Mutex
	published []publish
	token     func() mqtt.Token
}

func (p *fakePublisher) Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token {
	p.mu.Lock()
	p.published = append(p.published, publish{topic, qos, retained, payload.([]byte)})
	p.mu.Unlock()
	return p.token()
}

func TestMQTTSinkPublishesFrames(t *testing.T) {
	pub := &fakePublisher{token: func() mqtt.Token { return completedToken(nil) }}
	sink := newMQTTSink(pub, MQTTConfig{Topic: "scene/frames", QoS: 1}, log.NewNop())

	f := runtime.Frame{Seq: 1, Payload: []byte(`{"type":"frame"}`)}
	require.NoError(t, sink.SendFrame(context.Background(), f))

	require.Len(t, pub.published, 1)
	assert.Equal(t, publish{"scene/frames", 1, false, f.Payload}, pub.published[0])
	assert.Equal(t, "mqtt", sink.Name())
}

func TestMQTTSinkReportsErrors(t *testing.T) {
	boom := errors.New("not authorised")
	pub := &fakePublisher{token: func() mqtt.Token { return completedToken(boom) }}
	sink := newMQTTSink(pub, MQTTConfig{Topic: "t"}, log.NewNop())
	assert.ErrorIs(t, sink.SendFrame(context.Background(), runtime.Frame{}), boom)
}

func TestMQTTSinkTimesOut(t *testing.T) {
	pub := &fakePublisher{token: func() mqtt.Token { return &fakeToken{done: make(chan struct{})} }}
	sink := newMQTTSink(pub, MQTTConfig{Topic: "t", Timeout: 10 * time.Millisecond}, log.NewNop())
	assert.ErrorIs(t, sink.SendFrame(context.Background(), runtime.Frame{Seq: 7}), ErrPublishTimeout)
}

func TestNewMQTTSinkRequiresBroker(t *testing.T) {
	_, err := NewMQTTSink(MQTTConfig{Topic: "t"}, nil)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestNewMQTTSinkDefaultsZeroTimeout(t *testing.T) {
	_, err := NewMQTTSink(MQTTConfig{URL: "tcp://127.0.0.1:1", Topic: "t"}, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrBrokerConnect)
	assert.NotContains(t, err.Error(), "timed out", "a refused connection is reported as such")
}
