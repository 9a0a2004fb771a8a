package notify

import (
	"context"
	"fmt"

	"firebase.google.com/go/v4/messaging"
	"go.uber.org/zap"
)

// Sender is the part of *messaging.Client the FCM notifier needs.
type Sender interface {
	Send(ctx context.Context, message *messaging.Message) (string, error)
}

// TokenLookup resolves the device token registered for uid. An empty token
// with a nil error means the user has no device.
type TokenLookup func(ctx context.Context, uid string) (string, error)

type fcmNotifier struct {
	client Sender
	tokens TokenLookup
	log    *zap.Logger
	rec    Recorder
}

func NewFCM(client Sender, tokens TokenLookup, log *zap.Logger, rec Recorder) Notifier {
	return &fcmNotifier{client: client, tokens: tokens, log: log, rec: rec}
}

func (f *fcmNotifier) Notify(ctx context.Context, uid string, n Notification) error {
	token, err := f.tokens(ctx, uid)
	if err != nil {
		f.record("lookup_error")
		return fmt.Errorf("fcm token lookup: %w", err)
	}
	if token == "" {
		f.log.Debug("fcm: no device token", zap.String("uid", uid))
		f.record("no_token")
		return nil
	}

	data := map[string]string{"tipo": string(n.Level)}
	for k, v := range n.Data {
		data[k] = v
	}
	id, err := f.client.Send(ctx, &messaging.Message{
		Token: token,
		Notification: &messaging.Notification{
			Title: n.Title,
			Body:  n.Body,
		},
		Data: data,
		Android: &messaging.AndroidConfig{
			Priority: "high",
		},
	})
	if err != nil {
		f.record("error")
		return fmt.Errorf("fcm send: %w", err)
	}
	f.log.Debug("fcm sent", zap.String("uid", uid), zap.String("message_id", id))
	f.record("ok")
	return nil
}

func (f *fcmNotifier) record(outcome string) {
	if f.rec != nil {
		f.rec.Notified("fcm", outcome)
	}
}
