package config

import "time"

const (
	DefaultMongoURI          = "mongodb://localhost:27017"
	DefaultMongoDatabaseName = "eventrooms"
	DefaultMongoConnTimeout  = 10 * time.Second

	DefaultPort      = "8080"
	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"

	DefaultRequestTimeout = 30 * time.Second
	DefaultMaxRequestSize = 1 * 1024 * 1024 // 1MB

	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 15 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 30 * time.Second

	DefaultTimeZone           = "UTC"
	DefaultOverlapPolicy      = "strict"
	DefaultDefaultPhoneRegion = "RU"

	DefaultReminderInterval = 24 * time.Hour
	DefaultReminderWindow   = 24 * time.Hour
	DefaultReminderTopic    = "event-reminders"
	DefaultReminderLeaseTTL = 1 * time.Hour

	DefaultPaginationLimit = 100
)

