package config

import (
	"fmt"
	"strconv"
	"time"
)

const envPrefix = "SLOTH_"

// parseEnv overlays SLOTH_* environment variables. Unset variables leave the
// field untouched; malformed durations or integers are errors.
func parseEnv(config *Config, lookupEnv func(string) (string, bool)) error {
	str := func(name string, dst *string) {
		if v, ok := lookupEnv(envPrefix + name); ok {
			*dst = v
		}
	}
	dur := func(name string, dst *time.Duration) error {
		v, ok := lookupEnv(envPrefix + name)
		if !ok {
			return nil
		}
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%s%s: %w", envPrefix, name, err)
		}
		*dst = d
		return nil
	}

	str("HTTP_ADDR", &config.HTTPAddr)
	str("GRPC_ADDR", &config.GRPCAddr)
	str("DATABASE_DSN", &config.DatabaseDSN)
	str("REDIS_URL", &config.RedisURL)
	str("SESSION_SECRET", &config.SessionSecret)
	str("ENCRYPTION_KEY", &config.EncryptionKey)
	str("CHAT_API_URL", &config.ChatAPIURL)
	str("CHAT_API_KEY", &config.ChatAPIKey)
	str("CHAT_MODEL", &config.ChatModel)
	str("S3_ROOT_USER", &config.S3RootUser)
	str("S3_ROOT_PASSWORD", &config.S3RootPassword)
	str("S3_BUCKET", &config.S3Bucket)
	str("S3_REGION", &config.S3Region)
	str("S3_BASE_ENDPOINT", &config.S3BaseEndpoint)
	str("CORS_ORIGIN", &config.CORSOrigin)
	str("LOG_LEVEL", &config.LogLevel)

	for name, dst := range map[string]*time.Duration{
		"SESSION_VALIDITY":      &config.SessionValidity,
		"NONCE_VALIDITY":        &config.NonceValidity,
		"INVITATION_VALIDITY":   &config.InvitationValidity,
		"DOCUMENT_URL_VALIDITY": &config.DocumentURLValidity,
	} {
		if err := dur(name, dst); err != nil {
			return err
		}
	}

	if v, ok := lookupEnv(envPrefix + "COMPLETION_CACHE_SIZE"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%sCOMPLETION_CACHE_SIZE: %w", envPrefix, err)
		}
		config.CompletionCacheSize = n
	}
	return nil
}
