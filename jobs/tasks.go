package jobs

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/ledgerkeep/ledgerkeep/internal/observability"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskTypeSendEmail is the task type for sending transactional emails.
	TaskTypeSendEmail = "mail:send"
)

// SendEmailPayload describes the information required to send an email.
type SendEmailPayload struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// NewSendEmailTask constructs an Asynq task.
func NewSendEmailTask(payload SendEmailPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeSendEmail, data), nil
}

// NewSendEmailHandler builds the worker-side handler delivering emails
// through the sender. Undecodable payloads are dropped, delivery failures are
// retried by the queue.
func NewSendEmailHandler(sender Sender, metrics *observability.Metrics, logger *slog.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		var payload SendEmailPayload
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			logger.Error("decode mail payload", slog.Any("error", err))
			metrics.IncJob(TaskTypeSendEmail, "dropped")
			return asynq.SkipRetry
		}
		if err := sender.Deliver(ctx, payload.To, payload.Subject, payload.Body); err != nil {
			logger.Warn("deliver email", slog.String("to", payload.To), slog.Any("error", err))
			metrics.IncJob(TaskTypeSendEmail, "error")
			return err
		}
		metrics.IncJob(TaskTypeSendEmail, "ok")
		return nil
	}
}

// QueueMailer hands emails off to the worker via the job queue. It backs the
// auth package's mailer port.
type QueueMailer struct {
	client *Client
}

// NewQueueMailer constructs a QueueMailer.
func NewQueueMailer(client *Client) *QueueMailer {
	return &QueueMailer{client: client}
}

// Send enqueues the email for asynchronous delivery.
func (m *QueueMailer) Send(ctx context.Context, to, subject, body string) error {
	_, err := m.client.EnqueueSendEmail(ctx, SendEmailPayload{To: to, Subject: subject, Body: body})
	return err
}
