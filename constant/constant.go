package constant

const (
	LogFormat     = "log-format"
	LogFormatJSON = "json"
	LogFormatText = "text"
	LogLevel      = "log-level"
	LogLevelDebug = "debug"
	LogLevelInfo  = "info"
	LogLevelWarn  = "warn"
	LogLevelError = "error"

	Port                  = "port"
	GRPCPort              = "grpc-port"
	PublicURL             = "public-url"
	MaxUploadSize         = "max-upload-size"
	OpenTelemetryEnabled  = "opentelemetry-enabled"
	OpenTelemetryEndpoint = "opentelemetry-endpoint"
	OpenTelemetrySample   = "opentelemetry-sample-ratio"

	StorageType         = "storage-type"
	StorageTypeInMemory = "inmemory"
	StorageTypeFile     = "file"
	StorageTypeRedis    = "redis"
	StorageTypeBolt     = "bolt"
	FilePath            = "file-path"
	FileQuota           = "file-quota"
	RedisAddr           = "redis-addr"
	RedisKey            = "redis-key"
	BoltPath            = "bolt-path"

	// StorageSlot is the name of the single slot holding all memories.
	StorageSlot = "memorylove_memories"

	NotificationEnabled     = "notification-enabled"
	NotificationType        = "notification-type"
	NotificationTypeLog     = "log"
	NotificationTypeWebhook = "webhook"
	NotificationWebhookURL  = "notification-webhook-url"

	AuthenticationEnabled  = "authentication-enabled"
	AuthenticationUsername = "authentication-username"
	AuthenticationPassword = "authentication-password"

	Endpoint = "endpoint"
	Username = "username"
	Password = "password"

	Title   = "title"
	Message = "message"
	Photo   = "photo"
	Music   = "music"
	Slug    = "slug"
	Out     = "out"
	ID      = "id"
)
