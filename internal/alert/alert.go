// Package alert e-mails low-stock warnings to the shop's managers.
package alert

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"mini-pos/internal/model"
	"mini-pos/internal/notify"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
	"github.com/rs/zerolog"
)

// DefaultCooldown is the minimum gap between two alerts for the same product.
const DefaultCooldown = time.Hour

// EmailSender is the part of the SES client the alerter needs.
type EmailSender interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

// Alerter listens for low_stock_alert events and mails them out.
type Alerter struct {
	subscriber notify.Subscriber
	client     EmailSender
	sender     string
	recipients []string
	cooldown   time.Duration
	lastSent   map[string]time.Time
	now        func() time.Time
	logger     zerolog.Logger
}

// NewSESAlerter creates an alerter backed by Amazon SES in region.
func NewSESAlerter(ctx context.Context, subscriber notify.Subscriber, region, sender string, recipients []string, logger zerolog.Logger) (*Alerter, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS configuration: %w", err)
	}

	return NewAlerter(subscriber, ses.NewFromConfig(cfg), sender, recipients, logger), nil
}

// NewAlerter creates an alerter around an existing e-mail client.
func NewAlerter(subscriber notify.Subscriber, client EmailSender, sender string, recipients []string, logger zerolog.Logger) *Alerter {
	return &Alerter{
		subscriber: subscriber,
		client:     client,
		sender:     sender,
		recipients: recipients,
		cooldown:   DefaultCooldown,
		lastSent:   make(map[string]time.Time),
		now:        time.Now,
		logger:     logger.With().Str("component", "stock-alerter").Logger(),
	}
}

// Run mails low-stock alerts until ctx is done. Send failures are logged
// and the alert is dropped.
func (a *Alerter) Run(ctx context.Context) error {
	messages, err := a.subscriber.Subscribe(ctx, model.TopicLowStockAlert)
	if err != nil {
		return fmt.Errorf("failed to subscribe to low stock alerts: %w", err)
	}

	a.logger.Info().Strs("recipients", a.recipients).Msg("stock alerter started")

	for msg := range messages {
		var alert model.LowStockAlert
		if err := json.Unmarshal(msg.Payload, &alert); err != nil {
			a.logger.Warn().Err(err).Msg("discarding undecodable alert")
			continue
		}

		if err := a.send(ctx, alert); err != nil {
			a.logger.Error().Err(err).Str("product", alert.ProductName).Msg("failed to send low stock e-mail")
		}
	}

	a.logger.Info().Msg("stock alerter stopped")
	return nil
}

func (a *Alerter) send(ctx context.Context, alert model.LowStockAlert) error {
	now := a.now()
	if last, ok := a.lastSent[alert.ProductName]; ok && now.Sub(last) < a.cooldown {
		a.logger.Debug().Str("product", alert.ProductName).Msg("alert suppressed during cooldown")
		return nil
	}

	subject := fmt.Sprintf("Low stock: %s", alert.ProductName)
	body := fmt.Sprintf(
		"%s is running low.\n\nUnits left: %d\n\nRestock soon to avoid missed sales.",
		alert.ProductName, alert.Stock)

	_, err := a.client.SendEmail(ctx, &ses.SendEmailInput{
		Source: aws.String(a.sender),
		Destination: &types.Destination{
			ToAddresses: a.recipients,
		},
		Message: &types.Message{
			Subject: &types.Content{
				Charset: aws.String("UTF-8"),
				Data:    aws.String(subject),
			},
			Body: &types.Body{
				Text: &types.Content{
					Charset: aws.String("UTF-8"),
					Data:    aws.String(body),
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to send e-mail: %w", err)
	}

	a.lastSent[alert.ProductName] = now
	a.logger.Info().
		Str("product", alert.ProductName).
		Int("stock", alert.Stock).
		Str("recipients", strings.Join(a.recipients, ",")).
		Msg("low stock e-mail sent")

	return nil
}
