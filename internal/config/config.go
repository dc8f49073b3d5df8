// Package config предоставляет структуры и функции для парсинга и загрузки конфига.
package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config общая структура для хранения настроек.
type Config struct {
	Env                     string `yaml:"env" env:"APP_ENV" env-default:"local"`
	StorageConnectionString string `yaml:"storage_connection_string" env:"STORAGE_CONNECTION_STRING" env-required:"true"`
	MigrationsPath          string `yaml:"migrations_path" env:"MIGRATIONS_PATH" env-default:"./migrations"`
	RedisConnection         `yaml:"redis_connection"`
	RabbitMQ                `yaml:"rabbitmq"`
	HTTPServer              `yaml:"http_server"`
	JWTToken                `yaml:"jwttoken"`
	Ownership               `yaml:"ownership"`
	Scheduler               `yaml:"scheduler"`
}

// HTTPServer структура для настройки сервера.
type HTTPServer struct {
	AddressHTTP string        `yaml:"addresshttp" env:"HTTP_ADDRESS" env-default:":8080"`
	TimeoutHTTP time.Duration `yaml:"timeouthttp" env-default:"10s"`
	IdleTimeout time.Duration `yaml:"idle_timeout" env-default:"60s"`
	// EmptyListAsSuccess: отвечать 200 с пустым массивом вместо 404 на пустые списки.
	EmptyListAsSuccess bool    `yaml:"empty_list_as_success" env:"HTTP_EMPTY_LIST_AS_SUCCESS"`
	RateLimitRPS       float64 `yaml:"rate_limit_rps" env-default:"10"`
	RateLimitBurst     int     `yaml:"rate_limit_burst" env-default:"20"`
}

// EmptyListNotFound сообщает, нужно ли отвечать 404 на пустой список.
func (s HTTPServer) EmptyListNotFound() bool {
	return !s.EmptyListAsSuccess
}

// RedisConnection структура для настройки подключения к redis.
type RedisConnection struct {
	AddressRedis string        `yaml:"addressredis" env:"REDIS_ADDRESS" env-default:"localhost:6379"`
	Password     string        `yaml:"password" env:"REDIS_PASSWORD"`
	User         string        `yaml:"user" env:"REDIS_USER"`
	DB           int           `yaml:"db" env-default:"0"`
	MaxRetries   int           `yaml:"max_retries" env-default:"3"`
	DialTimeout  time.Duration `yaml:"dial_timeout" env-default:"5s"`
	TimeoutRedis time.Duration `yaml:"timeoutredis" env-default:"3s"`
}

// RabbitMQ структура для настройки публикации событий. Пустой URL отключает публикацию.
type RabbitMQ struct {
	RabbitMQURL        string        `yaml:"url" env:"RABBITMQ_URL"`
	RabbitMQExchange   string        `yaml:"exchange" env-default:"app_events"`
	RabbitMQMaxRetries int           `yaml:"max_retries" env-default:"5"`
	RabbitMQRetryDelay time.Duration `yaml:"retry_delay" env-default:"2s"`
}

// JWTToken структура для работы с jwt-токеном.
type JWTToken struct {
	JWTSecretKey string        `yaml:"jwt_secret_key" env:"JWT_SECRET_KEY" env-required:"true"`
	TokenTTL     time.Duration `yaml:"token_ttl" env-default:"24h"`
}

// Ownership задает политику ответа на обращение к чужому ресурсу.
// При ConcealForeign изменяющие операции тоже отвечают «не найдено».
type Ownership struct {
	ConcealForeign bool `yaml:"conceal_foreign" env:"OWNERSHIP_CONCEAL_FOREIGN" env-default:"false"`
}

// Scheduler задает интервал поиска подписок, которые заканчиваются завтра.
// Уведомления публикуются только при включенном RabbitMQ.
type Scheduler struct {
	ExpiryCheckInterval time.Duration `yaml:"expiry_check_interval" env:"EXPIRY_CHECK_INTERVAL" env-default:"12h"`
}

// Load читает конфиг из YAML-файла и переменных окружения.
func Load(configPath string) (*Config, error) {
	const op = "config.Load"
	if configPath == "" {
		return nil, fmt.Errorf("%s: %w", op, errors.New("CONFIG_PATH is not set"))
	}
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("%s: file %s does not exist", op, configPath)
	}

	var cfg Config
	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		return nil, fmt.Errorf("%s: cannot read config: %w", op, err)
	}
	if cfg.TokenTTL <= 0 {
		return nil, fmt.Errorf("%s: token_ttl must be positive", op)
	}
	if cfg.ExpiryCheckInterval <= 0 {
		return nil, fmt.Errorf("%s: expiry_check_interval must be positive", op)
	}
	return &cfg, nil
}

// MustLoad загружает конфиг по пути из CONFIG_PATH и завершает процесс при ошибке.
func MustLoad() *Config {
	cfg, err := Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		log.Fatal(err)
	}
	return cfg
}

// String выводит конфиг без секретов.
func (c *Config) String() string {
	return fmt.Sprintf(
		"Env: %s\n"+
			"MigrationsPath: %s\n"+
			"RedisConnection:\n"+
			"  Addr: %s\n"+
			"  DB: %d\n"+
			"RabbitMQ:\n"+
			"  Enabled: %t\n"+
			"  Exchange: %s\n"+
			"HTTPServer:\n"+
			"  Address: %s\n"+
			"  Timeout: %s\n"+
			"  IdleTimeout: %s\n"+
			"  EmptyListAsSuccess: %t\n"+
			"JWTToken:\n"+
			"  TokenTTL: %s\n"+
			"Ownership:\n"+
			"  ConcealForeign: %t\n",
		c.Env,
		c.MigrationsPath,
		c.AddressRedis,
		c.DB,
		c.RabbitMQURL != "",
		c.RabbitMQExchange,
		c.AddressHTTP,
		c.TimeoutHTTP,
		c.IdleTimeout,
		c.EmptyListAsSuccess,
		c.TokenTTL,
		c.ConcealForeign,
	)
}
