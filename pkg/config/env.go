package config

const (
	EnvMongoURI          = "MONGO_URI"
	EnvMongoDatabaseName = "MONGO_DATABASE_NAME"
	EnvMongoConnTimeout  = "MONGO_CONN_TIMEOUT"

	EnvPort      = "PORT"
	EnvLogLevel  = "LOG_LEVEL"
	EnvLogFormat = "LOG_FORMAT"

	EnvRequestTimeout = "REQUEST_TIMEOUT"
	EnvMaxRequestSize = "MAX_REQUEST_SIZE"

	EnvReadTimeout     = "READ_TIMEOUT"
	EnvWriteTimeout    = "WRITE_TIMEOUT"
	EnvIdleTimeout     = "IDLE_TIMEOUT"
	EnvShutdownTimeout = "SHUTDOWN_TIMEOUT"

	EnvTimeZone           = "TIME_ZONE"
	EnvOverlapPolicy      = "BOOKING_OVERLAP_POLICY"
	EnvDefaultPhoneRegion = "DEFAULT_PHONE_REGION"

	EnvReminderInterval = "REMINDER_INTERVAL"
	EnvReminderWindow   = "REMINDER_WINDOW"
	EnvReminderTopic    = "REMINDER_TOPIC"
	EnvReminderLeaseTTL = "REMINDER_LEASE_TTL"
)
