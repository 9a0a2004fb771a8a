package notify

import (
	"context"
	"errors"

	"go.uber.org/zap"
)

type Level string

const (
	Success Level = "success"
	Failure Level = "error"
)

// Notification is a user-facing message about something that happened to
// the user's farm or profile.
type Notification struct {
	Title string            `json:"titulo"`
	Body  string            `json:"mensaje"`
	Level Level             `json:"tipo"`
	Data  map[string]string `json:"datos,omitempty"`
}

type Notifier interface {
	Notify(ctx context.Context, uid string, n Notification) error
}

// Recorder receives one outcome per delivery attempt. *metrics.Metrics
// satisfies it.
type Recorder interface {
	Notified(channel, outcome string)
}

type logNotifier struct {
	log *zap.Logger
	rec Recorder
}

// NewLog writes notifications to the structured log only.
func NewLog(log *zap.Logger, rec Recorder) Notifier {
	return &logNotifier{log: log, rec: rec}
}

func (l *logNotifier) Notify(_ context.Context, uid string, n Notification) error {
	l.log.Info("notification",
		zap.String("uid", uid),
		zap.String("level", string(n.Level)),
		zap.String("title", n.Title),
		zap.String("body", n.Body),
	)
	if l.rec != nil {
		l.rec.Notified("log", "ok")
	}
	return nil
}

type multi []Notifier

// Multi fans a notification out to every notifier and joins their errors.
func Multi(ns ...Notifier) Notifier { return multi(ns) }

func (m multi) Notify(ctx context.Context, uid string, n Notification) error {
	var errs []error
	for _, x := range m {
		if err := x.Notify(ctx, uid, n); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Nop drops everything; handy in tests.
type Nop struct{}

func (Nop) Notify(context.Context, string, Notification) error { return nil }
