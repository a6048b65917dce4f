package host

import (
	"context"
	"encoding/json"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/pkg/errors"

	"github.com/easelterm/easel/internal/protocol"
)

// TopicEnvelopes carries every envelope the host observes, one message
// per envelope, payload is the envelope JSON.
const TopicEnvelopes = "easel.envelopes"

const metaScenario = "scenario"

// Bus fans observed envelopes out to the journal and reporter without
// the session loop knowing either exists.
type Bus struct {
	ps *gochannel.GoChannel
}

func NewBus() *Bus {
	return &Bus{ps: gochannel.NewGoChannel(gochannel.Config{
		OutputChannelBuffer: 64,
	}, watermill.NopLogger{})}
}

func (b *Bus) Publish(env protocol.Envelope) error {
	raw, err := json.Marshal(env)
	if err != nil {
		return errors.Wrap(err, "marshal envelope")
	}
	msg := message.NewMessage(watermill.NewUUID(), raw)
	msg.Metadata.Set(metaScenario, env.Scenario)
	return b.ps.Publish(TopicEnvelopes, msg)
}

func (b *Bus) Subscribe(ctx context.Context) (<-chan *message.Message, error) {
	return b.ps.Subscribe(ctx, TopicEnvelopes)
}

func (b *Bus) Close() error { return b.ps.Close() }
