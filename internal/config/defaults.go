package config

const (
	defaultStorageBackend     = BackendFile
	defaultStoragePath        = "~/.local/share/captioner/session.json"
	defaultRedisAddr          = "127.0.0.1:6379"
	defaultRedisPrefix        = "captioner:"
	defaultServerBind         = "127.0.0.1:7480"
	defaultRateLimitRequests  = 600
	defaultRateLimitWindowSec = 60
	defaultProgressIntervalMS = 100
	defaultSkipSeconds        = 5
	defaultTranslateProvider  = "gemini"
	defaultTranslateBatchSize = 50
	defaultTranslateWorkers   = 3
	defaultLogLevel           = "info"
	defaultExportFormat       = "vtt"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Storage: Storage{
			Backend:     defaultStorageBackend,
			RedisAddr:   defaultRedisAddr,
			RedisPrefix: defaultRedisPrefix,
		},
		Server: Server{
			Bind:               defaultServerBind,
			RateLimitRequests:  defaultRateLimitRequests,
			RateLimitWindowSec: defaultRateLimitWindowSec,
		},
		Playback: Playback{
			ProgressIntervalMS: defaultProgressIntervalMS,
			SkipSeconds:        defaultSkipSeconds,
		},
		Translate: Translate{
			Provider:    defaultTranslateProvider,
			BatchSize:   defaultTranslateBatchSize,
			Concurrency: defaultTranslateWorkers,
		},
		Export: Export{
			Format: defaultExportFormat,
		},
		Logging: Logging{
			Level: defaultLogLevel,
		},
	}
}
