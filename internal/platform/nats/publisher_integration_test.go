package nats

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/abgdnv/storefront/internal/platform/messaging"
	"github.com/google/uuid"
	natsgo "github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/nats"
)

// skipIntegrationTests is the environment variable that controls whether to skip integration tests.
const skipIntegrationTests = "STOREFRONT_SKIP_INTEGRATION_TESTS"
const natsImg = "nats:2.11.6-alpine"

type PublisherSuite struct {
	suite.Suite
	ctx           context.Context
	logger        *slog.Logger
	natsContainer *nats.NATSContainer
	nc            *natsgo.Conn
	js            jetstream.JetStream
}

func (s *PublisherSuite) SetupSuite() {
	s.ctx = context.Background()
	s.logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))

	var err error
	s.natsContainer, err = nats.Run(s.ctx, natsImg)
	require.NoError(s.T(), err, "Failed to run NATS container")

	natsURL, err := s.natsContainer.ConnectionString(s.ctx)
	require.NoError(s.T(), err)
	s.nc, err = NewClient(natsURL, 5*time.Second)
	require.NoError(s.T(), err, "Failed to connect to NATS")

	s.js, err = NewJetStreamContext(s.nc)
	require.NoError(s.T(), err, "Failed to get JetStream context")
}

func (s *PublisherSuite) TearDownSuite() {
	s.nc.Close()
	if err := testcontainers.TerminateContainer(s.natsContainer); err != nil {
		s.logger.Error("Failed to terminate NATS container", "error", err)
	}
}

func TestPublisherIntegration(t *testing.T) {
	if os.Getenv(skipIntegrationTests) == "1" {
		t.Skip("Skipping integration tests based on " + skipIntegrationTests + " env var")
	}
	suite.Run(t, new(PublisherSuite))
}

type receiptEvent struct {
	ReceiptID uuid.UUID `json:"receipt_id"`
}

func (e receiptEvent) Subject() string {
	return messaging.ReceiptsFinalizedSubject
}

func (e receiptEvent) Payload() ([]byte, error) {
	return json.Marshal(e)
}

type unroutedEvent struct{}

func (unroutedEvent) Subject() string          { return "unrouted.subject" }
func (unroutedEvent) Payload() ([]byte, error) { return []byte(`{}`), nil }

func (s *PublisherSuite) TestPublishIntoStream() {
	// given
	streamName := "STOREFRONT-" + uuid.NewString()
	require.NoError(s.T(), EnsureStream(s.ctx, s.js, streamName, messaging.StreamSubjects))
	require.NoError(s.T(), EnsureStream(s.ctx, s.js, streamName, messaging.StreamSubjects), "second call updates in place")
	publisher := NewNatsPublisher(s.js)
	event := receiptEvent{ReceiptID: uuid.New()}

	// when
	err := publisher.Publish(s.ctx, event)

	// then
	require.NoError(s.T(), err)
	stream, err := s.js.Stream(s.ctx, streamName)
	require.NoError(s.T(), err)
	msg, err := stream.GetLastMsgForSubject(s.ctx, messaging.ReceiptsFinalizedSubject)
	require.NoError(s.T(), err)

	var got receiptEvent
	require.NoError(s.T(), json.Unmarshal(msg.Data, &got))
	s.Equal(event.ReceiptID, got.ReceiptID)
}

func (s *PublisherSuite) TestPublishWithoutStream() {
	// given
	publisher := NewNatsPublisher(s.js)

	// when
	err := publisher.Publish(s.ctx, unroutedEvent{})

	// then
	s.Error(err)
}
