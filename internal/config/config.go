package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"

	"github.com/rocketscienceinc/fourpiece-tictactoe/internal/entity"
)

const (
	StorageMemory = "memory"
	StorageRedis  = "redis"
)

var ErrInvalidConfig = errors.New("invalid config")

type Config struct {
	LogLevel   string `yaml:"log-level" env:"LOG_LEVEL" env-default:"info"`
	HTTPPort   string `yaml:"http-port" env:"HTTP_PORT" env-default:"9090"`
	SocketPort string `yaml:"socket-port" env:"SOCKET_PORT" env-default:"9091"`
	Storage    string `yaml:"storage" env:"STORAGE" env-default:"memory"`
	Redis      Redis  `yaml:"redis" env-prefix:"REDIS_"`
	Game       Game   `yaml:"game" env-prefix:"GAME_"`
	Bot        Bot    `yaml:"bot" env-prefix:"BOT_"`
}

type Redis struct {
	Host string `yaml:"host" env:"HOST" env-default:"localhost"`
	Port string `yaml:"port" env:"PORT" env-default:"6379"`
	// Enabled publishes game events even when games are kept in memory.
	Enabled bool `yaml:"enabled" env:"ENABLED" env-default:"false"`
}

type Game struct {
	MaxPlies    int           `yaml:"max-plies" env:"MAX_PLIES"`
	TTL         time.Duration `yaml:"ttl" env:"TTL" env-default:"24h"`
	FirstPlayer string        `yaml:"first-player" env:"FIRST_PLAYER" env-default:"X"`
}

type Bot struct {
	AutoReply bool `yaml:"auto-reply" env:"AUTO_REPLY" env-default:"false"`
}

// Load reads the YAML file at path; environment variables override it.
func Load(path string) (*Config, error) {
	// zero is a meaningful max-plies, so its default is seeded before reading instead of via env-default
	config := &Config{Game: Game{MaxPlies: entity.DefaultMaxPlies}}

	if err := cleanenv.ReadConfig(path, config); err != nil {
		return nil, fmt.Errorf("unable to load config file: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// MustLoad - load all configurations in config.yml file.
func MustLoad(path string) *Config {
	config, err := Load(path)
	if err != nil {
		panic(err)
	}

	return config
}

func (that *Config) Validate() error {
	if that.Storage != StorageMemory && that.Storage != StorageRedis {
		return fmt.Errorf("%w: storage must be %q or %q, got %q", ErrInvalidConfig, StorageMemory, StorageRedis, that.Storage)
	}

	if that.Game.MaxPlies < 0 {
		return fmt.Errorf("%w: game.max-plies must not be negative", ErrInvalidConfig)
	}

	if _, err := entity.ParseMark(that.Game.FirstPlayer); err != nil {
		return fmt.Errorf("%w: game.first-player: %w", ErrInvalidConfig, err)
	}

	return nil
}

// UsesRedis reports whether a Redis connection is needed at all.
func (that *Config) UsesRedis() bool {
	return that.Storage == StorageRedis || that.Redis.Enabled
}

func (that *Config) GameOptions() []entity.Option {
	mark, _ := entity.ParseMark(that.Game.FirstPlayer)

	return []entity.Option{
		entity.WithMaxPlies(that.Game.MaxPlies),
		entity.WithFirstPlayer(mark),
	}
}

func (that *Redis) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", that.Host, that.Port)
}
