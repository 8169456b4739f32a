package feed

import (
	"context"
	"errors"
	"fmt"

	"github.com/mrz1836/postmark"
)

var (
	// ErrInvalidEmailConfig is returned when the email deliverer is
	// misconfigured.
	ErrInvalidEmailConfig = errors.New("feed: invalid email deliverer configuration")

	// ErrFailedToSendEmail is returned when the email provider rejects a message.
	ErrFailedToSendEmail = errors.New("feed: failed to send email")

	// ErrNoRecipient is returned when a subscriber has no resolvable email address.
	ErrNoRecipient = errors.New("feed: no recipient address for subscriber")
)

// EmailConfig describes the Postmark-backed email delivery channel.
type EmailConfig struct {
	PostmarkServerToken  string `env:"POSTMARK_SERVER_TOKEN,required"`
	PostmarkAccountToken string `env:"POSTMARK_ACCOUNT_TOKEN,required"`
	SenderEmail          string `env:"EMAIL_SENDER,required"`
	Subject              string `env:"EMAIL_NOTIFICATION_SUBJECT" envDefault:"You have a new notification"`
}

// RecipientResolver maps a subscriber identifier to an email address.
// Returning ErrNoRecipient skips delivery without logging an error.
type RecipientResolver func(ctx context.Context, subscriberID string) (string, error)

// EmailDeliverer sends ChannelEmail notifications through Postmark's
// transactional API. Records for other channels are skipped.
type EmailDeliverer struct {
	client  *postmark.Client
	cfg     EmailConfig
	resolve RecipientResolver
}

// NewEmailDeliverer creates a Postmark-backed email deliverer.
// Tokens and sender are required so a misconfigured channel fails at
// startup instead of silently dropping mail.
func NewEmailDeliverer(cfg EmailConfig, resolve RecipientResolver) (*EmailDeliverer, error) {
	if cfg.PostmarkServerToken == "" {
		return nil, fmt.Errorf("%w: PostmarkServerToken is required", ErrInvalidEmailConfig)
	}
	if cfg.PostmarkAccountToken == "" {
		return nil, fmt.Errorf("%w: PostmarkAccountToken is required", ErrInvalidEmailConfig)
	}
	if cfg.SenderEmail == "" {
		return nil, fmt.Errorf("%w: SenderEmail is required", ErrInvalidEmailConfig)
	}
	if resolve == nil {
		return nil, fmt.Errorf("%w: recipient resolver is required", ErrInvalidEmailConfig)
	}

	return &EmailDeliverer{
		client:  postmark.NewClient(cfg.PostmarkServerToken, cfg.PostmarkAccountToken),
		cfg:     cfg,
		resolve: resolve,
	}, nil
}

func (d *EmailDeliverer) Deliver(ctx context.Context, n Notification) error {
	if n.Channel != ChannelEmail {
		return nil
	}

	to, err := d.resolve(ctx, n.SubscriberID)
	if err != nil {
		if errors.Is(err, ErrNoRecipient) {
			return nil
		}
		return err
	}

	resp, err := d.client.SendEmail(ctx, postmark.Email{
		From:     d.cfg.SenderEmail,
		To:       to,
		Subject:  d.cfg.Subject,
		HTMLBody: n.Content,
		Tag:      "notification",
	})
	if err != nil {
		return errors.Join(ErrFailedToSendEmail, err)
	}
	if resp.ErrorCode > 0 {
		return errors.Join(ErrFailedToSendEmail,
			fmt.Errorf("postmark error: %d - %s", resp.ErrorCode, resp.Message))
	}
	return nil
}
