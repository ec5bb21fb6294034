package config

import (
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	App struct {
		Port string `mapstructure:"port"`
		Env  string `mapstructure:"env"`
	} `mapstructure:"app"`
	DB struct {
		DSN string `mapstructure:"dsn"`
	} `mapstructure:"db"`
	Redis struct {
		Addr     string `mapstructure:"addr"`
		Password string `mapstructure:"password"`
	} `mapstructure:"redis"`
	Kafka struct {
		Brokers []string `mapstructure:"brokers"`
	} `mapstructure:"kafka"`
	OpenAI struct {
		APIKey      string `mapstructure:"api_key"`
		BaseURL     string `mapstructure:"base_url"`
		EnrichModel string `mapstructure:"enrich_model"`
		QueryModel  string `mapstructure:"query_model"`
	} `mapstructure:"openai"`
	Pipeline struct {
		Workers       int           `mapstructure:"workers"`
		UpsertWindow  int           `mapstructure:"upsert_window"`
		MaxRetries    uint64        `mapstructure:"max_retries"`
		RetryInterval time.Duration `mapstructure:"retry_interval"`
		LocationTTL   time.Duration `mapstructure:"location_ttl"`
	} `mapstructure:"pipeline"`
	Tracing struct {
		OTLPEndpoint string `mapstructure:"otlp_endpoint"`
	} `mapstructure:"tracing"`
}

func LoadConfig() (cfg Config, err error) {

	err = godotenv.Load()
	if err != nil {
		log.Println("warning: .env file not found, use default.")
	}

	viper.AddConfigPath(".")
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	if err = viper.ReadInConfig(); err != nil {
		log.Printf("note: config.yaml not found, read .env only. Error: %v", err)
	}

	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	viper.SetDefault("app.env", "development")
	viper.SetDefault("openai.enrich_model", "gpt-5-nano")
	viper.SetDefault("openai.query_model", "gpt-5-nano")
	viper.SetDefault("pipeline.workers", 1)
	viper.SetDefault("pipeline.upsert_window", 50)
	viper.SetDefault("pipeline.max_retries", 3)
	viper.SetDefault("pipeline.retry_interval", 500*time.Millisecond)
	viper.SetDefault("pipeline.location_ttl", 720*time.Hour)

	viper.BindEnv("app.port", "APP_PORT")
	viper.BindEnv("app.env", "APP_ENV")
	viper.BindEnv("db.dsn", "DB_DSN")
	viper.BindEnv("redis.addr", "REDIS_ADDR")
	viper.BindEnv("redis.password", "REDIS_PASSWORD")
	viper.BindEnv("kafka.brokers", "KAFKA_BROKERS")

	viper.BindEnv("openai.api_key", "OPENAI_API_KEY")
	viper.BindEnv("openai.base_url", "OPENAI_BASE_URL")
	viper.BindEnv("openai.enrich_model", "OPENAI_ENRICH_MODEL")
	viper.BindEnv("openai.query_model", "OPENAI_QUERY_MODEL")

	viper.BindEnv("pipeline.workers", "PIPELINE_WORKERS")
	viper.BindEnv("pipeline.upsert_window", "PIPELINE_UPSERT_WINDOW")
	viper.BindEnv("pipeline.max_retries", "PIPELINE_MAX_RETRIES")
	viper.BindEnv("pipeline.retry_interval", "PIPELINE_RETRY_INTERVAL")
	viper.BindEnv("pipeline.location_ttl", "PIPELINE_LOCATION_TTL")

	viper.BindEnv("tracing.otlp_endpoint", "TRACING_OTLP_ENDPOINT")

	err = viper.Unmarshal(&cfg)
	return
}
