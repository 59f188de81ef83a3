package jobs

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/require"

	"github.com/ledgerkeep/ledgerkeep/internal/observability"
)

type fakeSender struct {
	delivered []SendEmailPayload
	fail      bool
}

func (f *fakeSender) Deliver(ctx context.Context, to, subject, body string) error {
	if f.fail {
		return errors.New("relay down")
	}
	f.delivered = append(f.delivered, SendEmailPayload{To: to, Subject: subject, Body: body})
	return nil
}

func TestSendEmailHandlerDelivers(t *testing.T) {
	sender := &fakeSender{}
	handler := NewSendEmailHandler(sender, observability.NewMetrics(), slog.Default())

	task, err := NewSendEmailTask(SendEmailPayload{To: "a@example.com", Subject: "hi", Body: "code 12345678"})
	require.NoError(t, err)

	require.NoError(t, handler(context.Background(), task))
	require.Len(t, sender.delivered, 1)
	require.Equal(t, "a@example.com", sender.delivered[0].To)
}

func TestSendEmailHandlerRetriesOnDeliveryFailure(t *testing.T) {
	sender := &fakeSender{fail: true}
	handler := NewSendEmailHandler(sender, observability.NewMetrics(), slog.Default())

	task, err := NewSendEmailTask(SendEmailPayload{To: "a@example.com"})
	require.NoError(t, err)

	err = handler(context.Background(), task)
	require.Error(t, err)
	require.NotErrorIs(t, err, asynq.SkipRetry)
}

func TestSendEmailHandlerDropsGarbagePayload(t *testing.T) {
	sender := &fakeSender{}
	handler := NewSendEmailHandler(sender, observability.NewMetrics(), slog.Default())

	err := handler(context.Background(), asynq.NewTask(TaskTypeSendEmail, []byte("not json")))
	require.ErrorIs(t, err, asynq.SkipRetry)
	require.Empty(t, sender.delivered)
}
