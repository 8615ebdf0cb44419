package deliver

import (
	"context"
	"errors"
	"testing"

	"github.com/slack-go/slack"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePoster struct {
	channel string
	opts    int
	err     error
}

func (f *fakePoster) PostMessageContext(_ context.Context, channelID string, options ...slack.MsgOption) (string, string, error) {
	f.channel = channelID
	f.opts = len(options)
	if f.err != nil {
		return "", "", f.err
	}
	return channelID, "1234.5678", nil
}

func TestDeliver(t *testing.T) {
	poster := &fakePoster{}
	d := &SlackDeliverer{api: poster, channel: "#fhl-nightly"}

	err := d.Deliver(context.Background(), "report text")
	require.NoError(t, err)
	assert.Equal(t, "#fhl-nightly", poster.channel)
	assert.Equal(t, 2, poster.opts)
}

func TestDeliver_Error(t *testing.T) {
	poster := &fakePoster{err: errors.New("channel_not_found")}
	d := &SlackDeliverer{api: poster, channel: "#nowhere"}

	err := d.Deliver(context.Background(), "report text")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "#nowhere")
}
