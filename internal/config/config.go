package config

import "time"

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	Chat     ChatConfig     `mapstructure:"chat"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Events   EventsConfig   `mapstructure:"events"`
	AI       AIConfig       `mapstructure:"ai"`
}

type ServerConfig struct {
	Port           string        `mapstructure:"port"`
	AllowedOrigins []string      `mapstructure:"allowed_origins"`
	ReadTimeout    time.Duration `mapstructure:"read_timeout"`
	WriteTimeout   time.Duration `mapstructure:"write_timeout"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type ChatConfig struct {
	// BotReplyDelay is the artificial latency before a bot reply is returned.
	BotReplyDelay time.Duration `mapstructure:"bot_reply_delay"`
	// SessionTTL bounds how long an idle widget session is kept in Redis.
	SessionTTL time.Duration `mapstructure:"session_ttl"`
}

type DatabaseConfig struct {
	URL            string `mapstructure:"url"`
	MaxConnections int    `mapstructure:"max_connections"`
	MaxIdle        int    `mapstructure:"max_idle"`
}

type RedisConfig struct {
	URL string `mapstructure:"url"`
}

type EventsConfig struct {
	AMQPURL    string `mapstructure:"amqp_url"`
	Exchange   string `mapstructure:"exchange"`
	WebhookURL string `mapstructure:"webhook_url"`
}

type AIConfig struct {
	APIKey  string        `mapstructure:"api_key"`
	Model   string        `mapstructure:"model"`
	Timeout time.Duration `mapstructure:"timeout"`
}
