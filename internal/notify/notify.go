// Package notify surfaces newly detected page changes to the user.
package notify

import (
	"context"
	"errors"
	"updatescan/internal/providers"
	"updatescan/internal/structures"
)

// NotifierInterface is fire-and-forget: failures are logged by the
// implementation and never reported back to the caller. Wait blocks until
// every notification shown so far has been delivered or given up on, or ctx
// is done.
type NotifierInterface interface {
	ShowNotification(ctx context.Context, count int)
	Wait(ctx context.Context) error
}

type LogNotifier struct {
	logger providers.Logger
}

func NewLogNotifier(logger providers.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) ShowNotification(_ context.Context, count int) {
	if count == 1 {
		n.logger.Infof(providers.TypeApp, "1 page has changed")
		return
	}
	n.logger.Infof(providers.TypeApp, "%d pages have changed", count)
}

func (n *LogNotifier) Wait(context.Context) error { return nil }

type MultiNotifier []NotifierInterface

func (m MultiNotifier) ShowNotification(ctx context.Context, count int) {
	for _, n := range m {
		n.ShowNotification(ctx, count)
	}
}

func (m MultiNotifier) Wait(ctx context.Context) error {
	var errs []error
	for _, n := range m {
		if err := n.Wait(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// NewNotifier always logs and additionally posts to the configured webhook.
func NewNotifier(conf *structures.Config, logger providers.Logger) NotifierInterface {
	notifiers := MultiNotifier{NewLogNotifier(logger)}
	if conf.Notification.WebhookURL != "" {
		notifiers = append(notifiers, NewWebhookNotifier(conf.Notification.WebhookURL, conf.Notification.WebhookSecret, logger))
	}
	return notifiers
}
