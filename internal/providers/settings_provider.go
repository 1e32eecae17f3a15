package providers

import (
	"context"
	"errors"
	"fmt"
	"updatescan/internal/structures"
)

var ErrUnknownSetting = errors.New("unknown setting")

// SettingsProviderInterface answers single named settings at runtime.
type SettingsProviderInterface interface {
	LoadSingleSetting(ctx context.Context, name string) (any, error)
}

type SettingsProvider struct {
	conf *structures.Config
}

func (s *SettingsProvider) LoadSingleSetting(ctx context.Context, name string) (any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	switch name {
	case "debug":
		return s.conf.Debug, nil
	case "scanConcurrency":
		return s.conf.Scanner.Concurrency, nil
	case "notificationWebhook":
		return s.conf.Notification.WebhookURL, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownSetting, name)
}

// LoadBool reads a boolean setting, falling back to def when the setting
// is missing, fails to load or has another type.
func LoadBool(ctx context.Context, settings SettingsProviderInterface, logger Logger, name string, def bool) bool {
	value, err := settings.LoadSingleSetting(ctx, name)
	if err != nil {
		logger.Warnf(TypeApp, "Unable to load setting %s, using %t: %s", name, def, err)
		return def
	}
	b, ok := value.(bool)
	if !ok {
		logger.Warnf(TypeApp, "Setting %s is %T, not bool, using %t", name, value, def)
		return def
	}
	return b
}

func NewSettingsProvider(conf *structures.Config) SettingsProviderInterface {
	return &SettingsProvider{conf: conf}
}
