package config

import (
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

type Config struct {
	Debug bool `env:"DEBUG" envDefault:"false"`

	Server struct {
		Port   int      `env:"PORT" envDefault:"3000"`
		Origin []string `env:"ORIGIN" envSeparator:"," envDefault:"*"`
	}

	// Получатель по умолчанию для всех адресов без захвата
	Telegram struct {
		Token        string        `env:"APIKEY"`
		ChatID       string        `env:"CHATID"`
		APIURL       string        `env:"TELEGRAM_API_URL" envDefault:"https://api.telegram.org"`
		Timeout      time.Duration `env:"TELEGRAM_TIMEOUT" envDefault:"10s"`
		ParseMode    string        `env:"TELEGRAM_PARSE_MODE" envDefault:"HTML"`
		AttemptLimit int           `env:"ATTEMPT_LIMIT" envDefault:"10"`
	}

	// Админские маршруты защищаются init data только если задан ADMIN_IDS
	Admin struct {
		IDs         []int64       `env:"ADMIN_IDS" envSeparator:","`
		BotToken    string        `env:"ADMIN_BOT_TOKEN"`
		InitDataTTL time.Duration `env:"ADMIN_INIT_DATA_TTL" envDefault:"24h"`
	}

	Redis struct {
		Enabled      bool   `env:"REDIS_ENABLED" envDefault:"false"`
		Addr         string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
		Password     string `env:"REDIS_PASSWORD" envDefault:""`
		DB           int    `env:"REDIS_DB" envDefault:"0"`
		Stream       string `env:"REDIS_STREAM" envDefault:"relay:events"`
		StreamMaxLen int64  `env:"REDIS_STREAM_MAXLEN" envDefault:"10000"`

		// Пустое значение отключает обработку команд из Redis
		CommandStream string `env:"REDIS_COMMAND_STREAM" envDefault:""`
		ConsumerGroup string `env:"REDIS_CONSUMER_GROUP" envDefault:"relay"`
	}

	Metrics struct {
		Enabled bool `env:"METRICS_ENABLED" envDefault:"true"`
	}
}

// AdminGuardEnabled сообщает, требуют ли админские маршруты Telegram init data
func (c *Config) AdminGuardEnabled() bool {
	return len(c.Admin.IDs) > 0
}

// Load читает .env (если есть) и переменные окружения процесса
func Load() (*Config, error) {
	// .env необязателен, в production переменные задаются напрямую
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
