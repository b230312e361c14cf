package config

import "time"

// Database selects the gorm driver and its DSN.
type Database struct {
	Driver string `koanf:"driver" validate:"oneof=sqlite postgres"`
	DSN    string `koanf:"dsn"    validate:"required"`
}

// Log configures logrus.
type Log struct {
	Level  string `koanf:"level"  validate:"oneof=trace debug info warn error"`
	Format string `koanf:"format" validate:"oneof=text json"`
}

// Redis backs the translation cache. An empty Addr keeps it in memory.
type Redis struct {
	Addr     string `koanf:"addr"     validate:"omitempty,hostname_port"`
	Password string `koanf:"password"`
	DB       int    `koanf:"db"       validate:"gte=0"`
}

// Kafka receives task announcements. No brokers disables announcing.
type Kafka struct {
	Brokers string `koanf:"brokers"`
	Topic   string `koanf:"topic" validate:"required_with=Brokers"`
}

// Metrics is where `jobs run` serves /metrics. An empty Addr disables it.
type Metrics struct {
	Addr string `koanf:"addr" validate:"omitempty,hostname_port"`
}

// Jobs schedules housekeeping.
type Jobs struct {
	CleanerSchedule string        `koanf:"cleaner_schedule" validate:"required"`
	TaskRetention   time.Duration `koanf:"task_retention"   validate:"gt=0"`
}

// Config is the immutable aggregate returned by Load.
type Config struct {
	// NodeCategoryStagingMode is "WithDocument" (or empty) to ship bindings
	// inside document tasks; any other value ships them as objects.
	NodeCategoryStagingMode string `koanf:"node_category_staging_mode"`
	// Compression names the payload codec of new tasks.
	Compression string `koanf:"compression" validate:"omitempty,oneof=none gzip lz4 brotli"`

	Database Database `koanf:"database"`
	Log      Log      `koanf:"log"`
	Redis    Redis    `koanf:"redis"`
	Kafka    Kafka    `koanf:"kafka"`
	Jobs     Jobs     `koanf:"jobs"`
	Metrics  Metrics  `koanf:"metrics"`
}

func defaults() Config {
	return Config{
		Compression: "gzip",
		Database:    Database{Driver: "sqlite", DSN: "relstage.db"},
		Log:         Log{Level: "info", Format: "text"},
		Kafka:       Kafka{Topic: "relstage.tasks"},
		Jobs:        Jobs{CleanerSchedule: "@every 1h", TaskRetention: 30 * 24 * time.Hour},
		Metrics:     Metrics{Addr: ":2112"},
	}
}
