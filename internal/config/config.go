package config

import (
	"fmt"
	"net"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	LogLevel   string  `yaml:"log-level" env:"LOG_LEVEL" env-default:"info"`
	HTTPPort   string  `yaml:"http-port" env:"HTTP_PORT" env-default:"9090"`
	SocketPort string  `yaml:"socket-port" env:"SOCKET_PORT" env-default:"8080"`
	Redis      Redis   `yaml:"redis"`
	Advisor    Advisor `yaml:"advisor"`
	Game       Game    `yaml:"game"`
}

type Redis struct {
	Host string `yaml:"host" env:"REDIS_HOST" env-default:""`
	Port string `yaml:"port" env:"REDIS_PORT" env-default:"6379"`
}

type Advisor struct {
	APIKey  string        `yaml:"api-key" env:"ADVISOR_API_KEY" env-default:""`
	BaseURL string        `yaml:"base-url" env:"ADVISOR_BASE_URL" env-default:""`
	Model   string        `yaml:"model" env:"ADVISOR_MODEL" env-default:"gpt-4o-mini"`
	Timeout time.Duration `yaml:"timeout" env:"ADVISOR_TIMEOUT" env-default:"10s"`
}

type Game struct {
	LockTurns    int           `yaml:"lock-turns" env:"GAME_LOCK_TURNS" env-default:"7"`
	ClearDelay   time.Duration `yaml:"clear-delay" env:"GAME_CLEAR_DELAY" env-default:"1s"`
	WinningScore int           `yaml:"winning-score" env:"GAME_WINNING_SCORE" env-default:"3"`
}

// MustLoad - load all configurations in config.yml file.
func MustLoad(path string) *Config {
	config := &Config{}

	if err := cleanenv.ReadConfig(path, config); err != nil {
		panic(fmt.Errorf("unable to load config file: %w", err))
	}

	return config
}

// Enabled reports whether a Redis host is configured.
func (that *Redis) Enabled() bool {
	return that.Host != ""
}

func (that *Redis) GetRedisAddr() string {
	return net.JoinHostPort(that.Host, that.Port)
}

// Enabled reports whether the advisory collaborator can be reached.
func (that *Advisor) Enabled() bool {
	return that.APIKey != ""
}
