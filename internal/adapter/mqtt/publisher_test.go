package mqtt

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/couchcryptid/sounding-service/internal/domain"
	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeToken struct {
	err      error
	timedOut bool
}

func (t *fakeToken) Wait() bool                     { return !t.timedOut }
func (t *fakeToken) WaitTimeout(time.Duration) bool { return !t.timedOut }
func (t *fakeToken) Error() error                   { return t.err }

func (t *fakeToken) Done() <-chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}

type published struct {
	topic   string
	qos     byte
	payload []byte
}

// fakeClient overrides the calls Publisher makes; anything else panics.
type fakeClient struct {
	mqtt.Client
	connected    bool
	token        *fakeToken
	messages     []published
	disconnected bool
}

func (c *fakeClient) IsConnected() bool { return c.connected }

func (c *fakeClient) Publish(topic string, qos byte, _ bool, payload interface{}) mqtt.Token {
	c.messages = append(c.messages, published{topic: topic, qos: qos, payload: payload.([]byte)})
	return c.token
}

func (c *fakeClient) Disconnect(uint) { c.disconnected = true }

func newTestPublisher(client *fakeClient) *Publisher {
	return &Publisher{
		client: client,
		prefix: "soundings",
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		stopCh: make(chan struct{}),
	}
}

func outcome(station, status string) domain.RetrievalOutcome {
	return domain.RetrievalOutcome{
		RequestID: "req-" + station,
		Request:   domain.SoundingRequest{Station: station, Year: "2026", Month: "01", Day: "14", Hour: "12", Source: domain.SourceAuto},
		Status:    status,
	}
}

func TestTopicFor(t *testing.T) {
	assert.Equal(t, "soundings/SPM00008383/ok", topicFor("soundings", outcome("SPM00008383", domain.StatusOK)))
	assert.Equal(t, "wx/USM00072520/failed", topicFor("wx", outcome("USM00072520", domain.StatusFailed)))
}

func TestLoadBatchPublishesEachOutcome(t *testing.T) {
	client := &fakeClient{connected: true, token: &fakeToken{}}
	p := newTestPublisher(client)

	err := p.LoadBatch(context.Background(), []domain.RetrievalOutcome{
		outcome("SPM00008383", domain.StatusOK),
		outcome("USM00072520", domain.StatusFailed),
	})

	require.NoError(t, err)
	require.Len(t, client.messages, 2)
	assert.Equal(t, "soundings/SPM00008383/ok", client.messages[0].topic)
	assert.Equal(t, byte(1), client.messages[0].qos)
	assert.Equal(t, "soundings/USM00072520/failed", client.messages[1].topic)

	var decoded domain.RetrievalOutcome
	require.NoError(t, json.Unmarshal(client.messages[0].payload, &decoded))
	assert.Equal(t, "req-SPM00008383", decoded.RequestID)
}

func TestLoadBatchEmptyIsNoop(t *testing.T) {
	client := &fakeClient{}
	require.NoError(t, newTestPublisher(client).LoadBatch(context.Background(), nil))
	assert.Empty(t, client.messages)
}

func TestLoadBatchNotConnected(t *testing.T) {
	client := &fakeClient{connected: false, token: &fakeToken{}}
	err := newTestPublisher(client).LoadBatch(context.Background(), []domain.RetrievalOutcome{outcome("SPM00008383", domain.StatusOK)})
	assert.ErrorContains(t, err, "not connected")
	assert.Empty(t, client.messages)
}

func TestLoadBatchPublishErrors(t *testing.T) {
	boom := errors.New("broker rejected")
	client := &fakeClient{connected: true, token: &fakeToken{err: boom}}

	err := newTestPublisher(client).LoadBatch(context.Background(), []domain.RetrievalOutcome{
		outcome("SPM00008383", domain.StatusOK),
		outcome("USM00072520", domain.StatusOK),
	})

	require.ErrorIs(t, err, boom)
	assert.Len(t, client.messages, 2, "every outcome is attempted")
}

func TestLoadBatchTimeout(t *testing.T) {
	client := &fakeClient{connected: true, token: &fakeToken{timedOut: true}}

	err := newTestPublisher(client).LoadBatch(context.Background(), []domain.RetrievalOutcome{outcome("SPM00008383", domain.StatusOK)})

	assert.ErrorContains(t, err, "publish timeout for topic soundings/SPM00008383/ok")
}

func TestCloseIsIdempotent(t *testing.T) {
	client := &fakeClient{}
	p := newTestPublisher(client)

	require.NoError(t, p.Close())
	require.NoError(t, p.Close())
	assert.True(t, client.disconnected)

	err := p.Connect(context.Background())
	require.Error(t, err)
}
