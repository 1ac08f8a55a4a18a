package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dmitrijs2005/slothapp/internal/timex"
)

// JsonConfig is the on-disk shape of the config file. Durations accept Go
// duration strings or integer nanoseconds. Omitted fields keep the value
// from the previous layer.
type JsonConfig struct {
	HTTPAddr            string         `json:"http_addr"`
	GRPCAddr            string         `json:"grpc_addr"`
	DatabaseDSN         string         `json:"database_dsn"`
	RedisURL            string         `json:"redis_url"`
	SessionSecret       string         `json:"session_secret"`
	SessionValidity     timex.Duration `json:"session_validity"`
	NonceValidity       timex.Duration `json:"nonce_validity"`
	InvitationValidity  timex.Duration `json:"invitation_validity"`
	EncryptionKey       string         `json:"encryption_key"`
	ChatAPIURL          string         `json:"chat_api_url"`
	ChatAPIKey          string         `json:"chat_api_key"`
	ChatModel           string         `json:"chat_model"`
	S3RootUser          string         `json:"s3_root_user"`
	S3RootPassword      string         `json:"s3_root_password"`
	S3Bucket            string         `json:"s3_bucket"`
	S3Region            string         `json:"s3_region"`
	S3BaseEndpoint      string         `json:"s3_base_endpoint"`
	DocumentURLValidity timex.Duration `json:"document_url_validity"`
	CORSOrigin          string         `json:"cors_origin"`
	LogLevel            string         `json:"log_level"`
	CompletionCacheSize int            `json:"completion_cache_size"`
}

func parseJSONFile(config *Config, path string) error {
	file, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}

	setString(&config.HTTPAddr, c.HTTPAddr)
	setString(&config.GRPCAddr, c.GRPCAddr)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.RedisURL, c.RedisURL)
	setString(&config.SessionSecret, c.SessionSecret)
	setString(&config.EncryptionKey, c.EncryptionKey)
	setString(&config.ChatAPIURL, c.ChatAPIURL)
	setString(&config.ChatAPIKey, c.ChatAPIKey)
	setString(&config.ChatModel, c.ChatModel)
	setString(&config.S3RootUser, c.S3RootUser)
	setString(&config.S3RootPassword, c.S3RootPassword)
	setString(&config.S3Bucket, c.S3Bucket)
	setString(&config.S3Region, c.S3Region)
	setString(&config.S3BaseEndpoint, c.S3BaseEndpoint)
	setString(&config.CORSOrigin, c.CORSOrigin)
	setString(&config.LogLevel, c.LogLevel)

	if c.SessionValidity.Duration > 0 {
		config.SessionValidity = c.SessionValidity.Duration
	}
	if c.NonceValidity.Duration > 0 {
		config.NonceValidity = c.NonceValidity.Duration
	}
	if c.InvitationValidity.Duration > 0 {
		config.InvitationValidity = c.InvitationValidity.Duration
	}
	if c.DocumentURLValidity.Duration > 0 {
		config.DocumentURLValidity = c.DocumentURLValidity.Duration
	}
	if c.CompletionCacheSize > 0 {
		config.CompletionCacheSize = c.CompletionCacheSize
	}
	return nil
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
