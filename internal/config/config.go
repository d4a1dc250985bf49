// Package config loads the service configuration from YAML with environment overrides.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Conf holds the configuration loaded by Init.
var Conf Config

// Config mirrors configs/config.yaml.
type Config struct {
	Server        ServerConfig        `mapstructure:"server"`
	Log           LogConfig           `mapstructure:"log"`
	Database      DatabaseConfig      `mapstructure:"database"`
	Insights      InsightsConfig      `mapstructure:"insights"`
	Model         ModelConfig         `mapstructure:"model"`
	MinIO         MinIOConfig         `mapstructure:"minio"`
	Kafka         KafkaConfig         `mapstructure:"kafka"`
	Elasticsearch ElasticsearchConfig `mapstructure:"elasticsearch"`
	CORS          CORSConfig          `mapstructure:"cors"`
}

// ServerConfig holds the HTTP listener settings. Mode is a gin mode.
type ServerConfig struct {
	Port string `mapstructure:"port"`
	Mode string `mapstructure:"mode"`
}

// LogConfig configures pkg/log. An empty OutputPath logs to stdout only.
type LogConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	OutputPath string `mapstructure:"output_path"`
}

// DatabaseConfig selects the history store backend. Driver is "mysql" or "memory".
type DatabaseConfig struct {
	Driver string      `mapstructure:"driver"`
	MySQL  MySQLConfig `mapstructure:"mysql"`
	Redis  RedisConfig `mapstructure:"redis"`
}

// MySQLConfig holds the gorm MySQL DSN.
type MySQLConfig struct {
	DSN string `mapstructure:"dsn"`
}

// RedisConfig configures the insights cache. An empty Addr disables it.
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// InsightsConfig controls the Redis insights cache.
type InsightsConfig struct {
	CacheTTLSeconds int `mapstructure:"cache_ttl_seconds"`
}

// ModelConfig locates the classifier artifacts. Source is "file" or "minio";
// for minio the paths are object names inside MinIO.BucketName.
type ModelConfig struct {
	Source         string `mapstructure:"source"`
	VectorizerPath string `mapstructure:"vectorizer_path"`
	PredictorPath  string `mapstructure:"predictor_path"`
}

// MinIOConfig locates the object store that holds classifier artifacts.
type MinIOConfig struct {
	Endpoint        string `mapstructure:"endpoint"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	UseSSL          bool   `mapstructure:"use_ssl"`
	BucketName      string `mapstructure:"bucket_name"`
}

// KafkaConfig configures the record event topic. Brokers is comma separated.
type KafkaConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Brokers string `mapstructure:"brokers"`
	Topic   string `mapstructure:"topic"`
	GroupID string `mapstructure:"group_id"`
}

// ElasticsearchConfig configures the trend index. Addresses is comma separated.
type ElasticsearchConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Addresses string `mapstructure:"addresses"`
	Username  string `mapstructure:"username"`
	Password  string `mapstructure:"password"`
	IndexName string `mapstructure:"index_name"`
}

// CORSConfig lists the browser origins allowed to call the API. "*" allows any.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8000")
	v.SetDefault("server.mode", "release")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("log.output_path", "")
	v.SetDefault("database.driver", "mysql")
	// every overridable key needs a default, or AutomaticEnv is ignored by Unmarshal
	v.SetDefault("database.mysql.dsn", "")
	v.SetDefault("database.redis.addr", "")
	v.SetDefault("database.redis.password", "")
	v.SetDefault("database.redis.db", 0)
	v.SetDefault("minio.endpoint", "")
	v.SetDefault("minio.access_key_id", "")
	v.SetDefault("minio.secret_access_key", "")
	v.SetDefault("minio.use_ssl", false)
	v.SetDefault("minio.bucket_name", "mindcare-models")
	v.SetDefault("kafka.enabled", false)
	v.SetDefault("kafka.brokers", "")
	v.SetDefault("elasticsearch.enabled", false)
	v.SetDefault("elasticsearch.addresses", "")
	v.SetDefault("elasticsearch.username", "")
	v.SetDefault("elasticsearch.password", "")
	v.SetDefault("insights.cache_ttl_seconds", 60)
	v.SetDefault("model.source", "file")
	v.SetDefault("model.vectorizer_path", "models/tfidf_vectorizer.json")
	v.SetDefault("model.predictor_path", "models/anxiety_model.json")
	v.SetDefault("kafka.topic", "mindcare.chat-records")
	v.SetDefault("kafka.group_id", "mindcare-go-indexer")
	v.SetDefault("elasticsearch.index_name", "mindcare_chat_records")
}

// Load reads the YAML file at configPath. Keys can be overridden with
// MINDCARE_-prefixed environment variables, e.g. MINDCARE_DATABASE_MYSQL_DSN.
func Load(configPath string) (Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")
	v.SetEnvPrefix("mindcare")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.ReadInConfig(); err != nil {
		return cfg, fmt.Errorf("read config file: %w", err)
	}
	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("unmarshal config: %w", err)
	}
	return cfg, nil
}

// Init loads configPath into Conf and panics on failure.
func Init(configPath string) {
	cfg, err := Load(configPath)
	if err != nil {
		panic(err)
	}
	Conf = cfg
}
