// Package deliver posts rendered nightly reports to the league channel.
// Delivery failure is logged and counted, never fatal: the analysis is
// already stored and can be re-sent.
package deliver

import (
	"context"
	"fmt"

	"fhl/nightly/internal/metrics"

	"github.com/rs/zerolog/log"
	"github.com/slack-go/slack"
)

// slackPoster is the slice of the Slack API the deliverer uses.
type slackPoster interface {
	PostMessageContext(ctx context.Context, channelID string, options ...slack.MsgOption) (string, string, error)
}

// SlackDeliverer posts report text to a Slack channel via a bot token.
type SlackDeliverer struct {
	api     slackPoster
	channel string
}

func NewSlackDeliverer(token, channel string) *SlackDeliverer {
	return &SlackDeliverer{
		api:     slack.New(token),
		channel: channel,
	}
}

// Deliver posts the rendered report.
func (d *SlackDeliverer) Deliver(ctx context.Context, text string) error {
	_, ts, err := d.api.PostMessageContext(ctx, d.channel,
		slack.MsgOptionText(text, false),
		slack.MsgOptionDisableLinkUnfurl(),
	)
	if err != nil {
		metrics.RecordDelivery("error")
		return fmt.Errorf("failed to post report to %s: %w", d.channel, err)
	}

	metrics.RecordDelivery("success")
	log.Info().
		Str("channel", d.channel).
		Str("message_ts", ts).
		Msg("Nightly report delivered")

	return nil
}
