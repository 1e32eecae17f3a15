package structures

import "time"

type CliFlags struct {
	ConfigPath string
	DebugMode  bool
}

type Server struct {
	Host string `yaml:"host" validate:"required"`
	Port int    `yaml:"port" validate:"required|uint|min:1"`
}

type LoggerConfig struct {
	Level string `yaml:"level" validate:"required|in:trace,debug,info,warn,error,fatal,panic"`
	Mode  uint32 `yaml:"mode" validate:"required|uint"`
	Dir   string `yaml:"dir" validate:"required|unixPath"`
}

type StoreConfig struct {
	Driver     string `yaml:"driver" validate:"required|in:file,sqlite"`
	FilePath   string `yaml:"filePath" validate:"required|unixPath"`
	ContentDir string `yaml:"contentDir"`
}

type ScannerConfig struct {
	Concurrency       int           `yaml:"concurrency" validate:"required|min:1"`
	Timeout           time.Duration `yaml:"timeout" validate:"required|min:1"`
	MaxBodyBytes      int64         `yaml:"maxBodyBytes"`
	UserAgent         string        `yaml:"userAgent"`
	RequestsPerSecond float64       `yaml:"requestsPerSecond"`
	Burst             int           `yaml:"burst"`
}

// AlarmTiming mirrors the delay/period pair handed to the alarm service.
type AlarmTiming struct {
	Delay  time.Duration `yaml:"delay"`
	Period time.Duration `yaml:"period"`
}

type AutoscanConfig struct {
	Normal AlarmTiming `yaml:"normal"`
	Debug  AlarmTiming `yaml:"debug"`
}

type NotificationConfig struct {
	WebhookURL    string `yaml:"webhookURL"`
	WebhookSecret string `yaml:"webhookSecret"`
}

type CacheConfig struct {
	Enabled bool          `yaml:"enabled"`
	Size    int           `yaml:"size"`
	TTL     time.Duration `yaml:"ttl"`
}

type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
}

type Config struct {
	AppName      string
	Debug        bool
	Path         string
	WebServer    Server             `yaml:"webServer"`
	Logger       LoggerConfig       `yaml:"logger"`
	Store        StoreConfig        `yaml:"store"`
	Scanner      ScannerConfig      `yaml:"scanner"`
	Autoscan     AutoscanConfig     `yaml:"autoscan"`
	Notification NotificationConfig `yaml:"notification"`
	Cache        CacheConfig        `yaml:"cache"`
	Metrics      MetricsConfig      `yaml:"metrics"`
}
