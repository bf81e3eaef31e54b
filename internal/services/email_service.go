package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/BradenHooton/tiktok-automation/internal/config"
	"github.com/BradenHooton/tiktok-automation/internal/models"
	pkglogger "github.com/BradenHooton/tiktok-automation/pkg/logger"
	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
)

// sendTimeout bounds a notification so a slow SES call never holds up a login response
const sendTimeout = 5 * time.Second

type sesAPI interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

// SESLockoutNotifier emails users when their account has been locked
type SESLockoutNotifier struct {
	client        sesAPI
	fromAddress   string
	lockoutWindow time.Duration
	logger        *slog.Logger
}

// NewSESLockoutNotifier creates a notifier backed by AWS SES
func NewSESLockoutNotifier(ctx context.Context, cfg config.EmailConfig, lockoutWindow time.Duration, logger *slog.Logger) (*SESLockoutNotifier, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWSRegion))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return newSESLockoutNotifier(ses.NewFromConfig(awsCfg), cfg.FromAddress, lockoutWindow, logger), nil
}

func newSESLockoutNotifier(client sesAPI, fromAddress string, lockoutWindow time.Duration, logger *slog.Logger) *SESLockoutNotifier {
	return &SESLockoutNotifier{
		client:        client,
		fromAddress:   fromAddress,
		lockoutWindow: lockoutWindow,
		logger:        logger,
	}
}

// NotifyLockout sends the lockout email for user
func (n *SESLockoutNotifier) NotifyLockout(ctx context.Context, user *models.User) error {
	ctx, cancel := context.WithTimeout(ctx, sendTimeout)
	defer cancel()

	minutes := int(n.lockoutWindow.Minutes())

	htmlBody := fmt.Sprintf(`<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; color: #333;">
    <h2>Sign-in temporarily locked</h2>
    <p>Hello %s,</p>
    <p>We blocked sign-in to your control panel account after several failed password attempts.
    You can try again in %d minutes.</p>
    <p>If this wasn't you, change your password as soon as you can sign in.</p>
    <p style="color: #666; font-size: 12px;">This is an automated message. Please do not reply.</p>
</body>
</html>
`, user.Username, minutes)

	textBody := fmt.Sprintf(`Sign-in temporarily locked

Hello %s,

We blocked sign-in to your control panel account after several failed password attempts.
You can try again in %d minutes.

If this wasn't you, change your password as soon as you can sign in.

This is an automated message. Please do not reply.
`, user.Username, minutes)

	input := &ses.SendEmailInput{
		Source: aws.String(n.fromAddress),
		Destination: &types.Destination{
			ToAddresses: []string{user.Email},
		},
		Message: &types.Message{
			Subject: &types.Content{
				Data: aws.String("Your account has been temporarily locked"),
			},
			Body: &types.Body{
				Html: &types.Content{Data: aws.String(htmlBody)},
				Text: &types.Content{Data: aws.String(textBody)},
			},
		},
	}

	result, err := n.client.SendEmail(ctx, input)
	if err != nil {
		return fmt.Errorf("failed to send lockout email: %w", err)
	}

	n.logger.Info("lockout email sent",
		slog.String("email", pkglogger.SanitizedEmail(user.Email)),
		slog.String("message_id", aws.ToString(result.MessageId)))
	return nil
}
