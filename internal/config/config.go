package config

import (
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	LogLevel string   `yaml:"log-level" env:"LOG_LEVEL" env-default:"info"`
	HTTPPort string   `yaml:"http-port" env:"HTTP_PORT" env-default:"9090"`
	Redis    Redis    `yaml:"redis"`
	Players  []Player `yaml:"players"`
	Game     Game     `yaml:"game"`
}

type Redis struct {
	Host string `yaml:"host" env:"REDIS_HOST" env-default:"localhost"`
	Port string `yaml:"port" env:"REDIS_PORT" env-default:"6379"`
}

// Player describes one automated participant: a display name and the
// text-generation endpoint that answers its prompts.
type Player struct {
	Name     string `yaml:"name"`
	Endpoint string `yaml:"endpoint"`
}

type Game struct {
	MoveCeiling    int      `yaml:"move-ceiling" env-default:"10"`
	RenderTimeout  Duration `yaml:"render-timeout"`
	StartDelay     Duration `yaml:"start-delay"`
	RequestTimeout Duration `yaml:"request-timeout"`
}

// Duration wraps time.Duration so "10s" style values work in config.yml.
type Duration time.Duration

func (that *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return fmt.Errorf("duration must be a string: %w", err)
	}

	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", raw, err)
	}

	*that = Duration(parsed)
	return nil
}

func (that Duration) Std() time.Duration {
	return time.Duration(that)
}

// MustLoad - load all configurations in config.yml file.
func MustLoad(path string) *Config {
	config := &Config{}

	if err := cleanenv.ReadConfig(path, config); err != nil {
		panic(fmt.Errorf("unable to load config file: %w", err))
	}

	return config
}

func (that *Redis) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", that.Host, that.Port)
}
