package config

import (
	"flag"
	"io"

	"github.com/dmitrijs2005/slothapp/internal/flagx"
)

var flagNames = []string{
	"a", "http-addr", "grpc-addr", "d", "database-dsn", "redis-url",
	"s", "session-secret", "encryption-key", "session-validity",
	"nonce-validity", "invitation-validity", "chat-api-url", "chat-model",
	"s3-bucket", "s3-region", "s3-endpoint", "cors-origin", "log-level",
	"completion-cache-size",
}

// parseFlags overlays command-line flags. args is filtered down to the names
// in flagNames first, so -c/-config and unrelated flags never reach the
// FlagSet.
//
// Short forms kept for the common cases:
//
//	-a string   HTTP bind address
//	-d string   PostgreSQL DSN
//	-s string   session token secret
func parseFlags(config *Config, args []string) error {
	fs := flag.NewFlagSet("server", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&config.HTTPAddr, "a", config.HTTPAddr, "HTTP bind address")
	fs.StringVar(&config.HTTPAddr, "http-addr", config.HTTPAddr, "HTTP bind address")
	fs.StringVar(&config.GRPCAddr, "grpc-addr", config.GRPCAddr, "gRPC health bind address")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.DatabaseDSN, "database-dsn", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.RedisURL, "redis-url", config.RedisURL, "redis URL for sessions and nonces")
	fs.StringVar(&config.SessionSecret, "s", config.SessionSecret, "session token secret")
	fs.StringVar(&config.SessionSecret, "session-secret", config.SessionSecret, "session token secret")
	fs.StringVar(&config.EncryptionKey, "encryption-key", config.EncryptionKey, "64 hex char API-key encryption key")
	fs.DurationVar(&config.SessionValidity, "session-validity", config.SessionValidity, "session lifetime")
	fs.DurationVar(&config.NonceValidity, "nonce-validity", config.NonceValidity, "sign-in nonce lifetime")
	fs.DurationVar(&config.InvitationValidity, "invitation-validity", config.InvitationValidity, "invitation lifetime")
	fs.StringVar(&config.ChatAPIURL, "chat-api-url", config.ChatAPIURL, "upstream completion URL")
	fs.StringVar(&config.ChatModel, "chat-model", config.ChatModel, "default completion model")
	fs.StringVar(&config.S3Bucket, "s3-bucket", config.S3Bucket, "S3 bucket")
	fs.StringVar(&config.S3Region, "s3-region", config.S3Region, "S3 region")
	fs.StringVar(&config.S3BaseEndpoint, "s3-endpoint", config.S3BaseEndpoint, "S3 base endpoint")
	fs.StringVar(&config.CORSOrigin, "cors-origin", config.CORSOrigin, "allowed CORS origin")
	fs.StringVar(&config.LogLevel, "log-level", config.LogLevel, "log level")
	fs.IntVar(&config.CompletionCacheSize, "completion-cache-size", config.CompletionCacheSize, "completion client cache size")

	return fs.Parse(flagx.FilterArgs(args, flagNames...))
}
