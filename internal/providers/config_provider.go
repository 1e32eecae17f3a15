package providers

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"
	"updatescan/internal/structures"

	"github.com/spf13/viper"
)

func setDefaults(v *viper.Viper) {
	v.SetDefault("webServer.host", "127.0.0.1")
	v.SetDefault("webServer.port", 8087)
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.mode", 0644)
	v.SetDefault("store.driver", "file")
	v.SetDefault("scanner.concurrency", 4)
	v.SetDefault("scanner.timeout", 30*time.Second)
	v.SetDefault("scanner.maxBodyBytes", 10*1024*1024)
	v.SetDefault("scanner.requestsPerSecond", 2.0)
	v.SetDefault("scanner.burst", 4)
	v.SetDefault("autoscan.normal.delay", time.Minute)
	v.SetDefault("autoscan.normal.period", 5*time.Minute)
	v.SetDefault("autoscan.debug.delay", 6*time.Second)
	v.SetDefault("autoscan.debug.period", 30*time.Second)
	v.SetDefault("cache.ttl", 10*time.Second)
}

func NewConfigProvider(flags *structures.CliFlags) (*structures.Config, error) {
	var conf structures.Config

	v := viper.New()
	setDefaults(v)

	filename := filepath.Base(flags.ConfigPath)
	v.AddConfigPath(filepath.Dir(flags.ConfigPath))
	v.SetConfigName(strings.TrimSuffix(filename, filepath.Ext(filename)))
	v.SetConfigType("yaml")

	_ = v.BindEnv("logger.level", "UPDATESCAN_LOG_LEVEL")
	_ = v.BindEnv("store.driver", "UPDATESCAN_STORE_DRIVER")
	_ = v.BindEnv("store.filePath", "UPDATESCAN_STORE_PATH")
	_ = v.BindEnv("scanner.concurrency", "UPDATESCAN_SCAN_CONCURRENCY")
	_ = v.BindEnv("notification.webhookURL", "UPDATESCAN_WEBHOOK_URL")
	_ = v.BindEnv("notification.webhookSecret", "UPDATESCAN_WEBHOOK_SECRET")
	_ = v.BindEnv("cache.enabled", "UPDATESCAN_CACHE_ENABLED")

	err := v.ReadInConfig()
	if err != nil {
		return nil, err
	}

	err = v.Unmarshal(&conf)
	if err != nil {
		return nil, fmt.Errorf("unable to decode into config struct: %w", err)
	}

	cnfValidator := NewCnfValidator(&conf)
	err = cnfValidator.Validate()
	if err != nil {
		return nil, err
	}

	conf.AppName = "UpdateScanner"
	conf.Path = flags.ConfigPath
	conf.Debug = flags.DebugMode || v.GetBool("debug")

	return &conf, nil
}
