package configs

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/panelmurah/ptero-store/pkg/utils"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

type Config struct {
	Port          string `mapstructure:"PORT" validate:"required"`
	PrimaryDbAddr string `mapstructure:"PRIMARY_DB_ADDR" validate:"required"`
	ReplicaDbAddr string `mapstructure:"REPLICA_DB_ADDR"`
	MaxDbCons     int32  `mapstructure:"MAX_DB_CONNECTIONS" validate:"min=1"`
	MinDbCons     int32  `mapstructure:"MIN_DB_CONNECTIONS" validate:"min=1"`

	RedisAddr     string `mapstructure:"REDIS_ADDR" validate:"required"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`

	KafkaBrokers    string `mapstructure:"KAFKA_BROKERS"`
	KafkaEventTopic string `mapstructure:"KAFKA_EVENT_TOPIC"`
	KafkaPartition  uint32 `mapstructure:"KAFKA_PARTITION" validate:"min=1"`

	AesKey string `mapstructure:"AES_KEY" validate:"required"`

	PakasirBaseURL string `mapstructure:"PAKASIR_BASE_URL" validate:"required"`
	PakasirProject string `mapstructure:"PAKASIR_PROJECT" validate:"required"`
	PakasirAPIKey  string `mapstructure:"PAKASIR_API_KEY" validate:"required"`

	PteroBaseURL    string `mapstructure:"PTERO_BASE_URL" validate:"required"`
	PteroAPIKey     string `mapstructure:"PTERO_API_KEY" validate:"required"`
	PteroNestID     int    `mapstructure:"PTERO_NEST_ID" validate:"min=1"`
	PteroEggID      int    `mapstructure:"PTERO_EGG_ID" validate:"min=1"`
	PteroLocationID int    `mapstructure:"PTERO_LOCATION_ID" validate:"min=1"`

	TelegramBotToken string `mapstructure:"TELEGRAM_BOT_TOKEN"`
	TelegramChatID   string `mapstructure:"TELEGRAM_CHAT_ID"`

	OrderWindow   time.Duration `mapstructure:"ORDER_WINDOW" validate:"required"`
	PanelValidity time.Duration `mapstructure:"PANEL_VALIDITY" validate:"required"`
	SessionTTL    time.Duration `mapstructure:"SESSION_TTL" validate:"required"`
	ExpirePeriod  time.Duration `mapstructure:"EXPIRE_PERIOD" validate:"required"`

	OrderRate  int `mapstructure:"ORDER_RATE"`
	OrderBurst int `mapstructure:"ORDER_BURST"`
}

func Load(logger *zap.Logger) (*Config, error) {
	viper.SetEnvPrefix("app") // Prefix for env vars
	viper.AutomaticEnv()

	// Default values
	viper.SetDefault("PORT", "3000")
	viper.SetDefault("MAX_DB_CONNECTIONS", "10")
	viper.SetDefault("MIN_DB_CONNECTIONS", "2")
	viper.SetDefault("KAFKA_PARTITION", "4")
	viper.SetDefault("KAFKA_EVENT_TOPIC", "panel-store.events")
	viper.SetDefault("PAKASIR_BASE_URL", "https://app.pakasir.com")
	viper.SetDefault("ORDER_WINDOW", "5m")
	viper.SetDefault("PANEL_VALIDITY", "720h") // 30 days
	viper.SetDefault("SESSION_TTL", "24h")
	viper.SetDefault("EXPIRE_PERIOD", "1h")
	viper.SetDefault("ORDER_RATE", "10")
	viper.SetDefault("ORDER_BURST", "20")

	// Optional: Read from config.yaml if exists
	if gin.ReleaseMode == gin.Mode() {
		viper.SetConfigName("config.prod")
	} else if gin.TestMode == gin.Mode() {
		logger.Warn("running in test mode")
		viper.SetConfigName("config.test")
	} else {
		logger.Warn("running in development mode")
		viper.SetConfigName("config.dev")
	}
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./internal/configs")
	_ = viper.ReadInConfig() // Ignore if no file

	var cfg Config
	if err := utils.ParseStructEnv(&cfg); err != nil {
		return nil, err
	}
	// Validate after unmarshal
	validate := validator.New()
	if err := validate.Struct(&cfg); err != nil {
		return nil, utils.FormatConfigErrors(logger, err, cfg)
	}
	return &cfg, nil
}
