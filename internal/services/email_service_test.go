package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/BradenHooton/tiktok-automation/internal/models"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSES struct {
	input *ses.SendEmailInput
	err   error
}

func (f *fakeSES) SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
	f.input = params
	if f.err != nil {
		return nil, f.err
	}
	if _, ok := ctx.Deadline(); !ok {
		return nil, errors.New("expected a deadline on the send context")
	}
	return &ses.SendEmailOutput{MessageId: aws.String("msg-1")}, nil
}

func TestSESLockoutNotifier_NotifyLockout(t *testing.T) {
	client := &fakeSES{}
	notifier := newSESLockoutNotifier(client, "security@example.com", 30*time.Minute, testLogger())
	user := &models.User{ID: "user-1", Username: "alice", Email: "alice@x.com"}

	err := notifier.NotifyLockout(context.Background(), user)

	require.NoError(t, err)
	require.NotNil(t, client.input)
	assert.Equal(t, "security@example.com", aws.ToString(client.input.Source))
	assert.Equal(t, []string{"alice@x.com"}, client.input.Destination.ToAddresses)
	assert.Contains(t, aws.ToString(client.input.Message.Body.Text.Data), "30 minutes")
	assert.Contains(t, aws.ToString(client.input.Message.Body.Html.Data), "alice")
}

func TestSESLockoutNotifier_SendError(t *testing.T) {
	sendErr := errors.New("throttled")
	notifier := newSESLockoutNotifier(&fakeSES{err: sendErr}, "security@example.com", 30*time.Minute, testLogger())

	err := notifier.NotifyLockout(context.Background(), &models.User{Email: "alice@x.com"})

	assert.ErrorIs(t, err, sendErr)
}
