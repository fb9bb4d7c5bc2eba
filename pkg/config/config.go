package config

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server      ServerConfig      `mapstructure:"server"`
	Game        GameConfig        `mapstructure:"game"`
	Persistence PersistenceConfig `mapstructure:"persistence"`
	Redis       RedisConfig       `mapstructure:"redis"`
	MySQL       MySQLConfig       `mapstructure:"mysql"`
	MQ          MQConfig          `mapstructure:"mq"`
	Auth        AuthConfig        `mapstructure:"auth"`
	Log         LogConfig         `mapstructure:"log"`
}

type ServerConfig struct {
	Port     int    `mapstructure:"port"`
	GrpcPort int    `mapstructure:"grpc_port"`
	Mode     string `mapstructure:"mode"`
}

type GameConfig struct {
	WorldWidth  float64 `mapstructure:"world_width"`
	WorldHeight float64 `mapstructure:"world_height"`
	TagRadius   float64 `mapstructure:"tag_radius"`
	ChatMaxLen  int     `mapstructure:"chat_max_len"`
}

type PersistenceConfig struct {
	Driver     string        `mapstructure:"driver"`
	SQLitePath string        `mapstructure:"sqlite_path"`
	Timeout    time.Duration `mapstructure:"timeout"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type MySQLConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	Database string `mapstructure:"database"`
}

// DSN builds the go-sql-driver connection string.
func (c MySQLConfig) DSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		c.Username, c.Password, c.Host, c.Port, c.Database)
}

type MQConfig struct {
	Url       string `mapstructure:"url"`
	QueueName string `mapstructure:"queue_name"`
}

type AuthConfig struct {
	JWTSecret string `mapstructure:"jwt_secret"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

var AppConfig *Config

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 3001)
	v.SetDefault("server.grpc_port", 50051)
	v.SetDefault("server.mode", "debug")

	v.SetDefault("game.world_width", 800.0)
	v.SetDefault("game.world_height", 600.0)
	v.SetDefault("game.tag_radius", 40.0)
	v.SetDefault("game.chat_max_len", 10)

	v.SetDefault("persistence.driver", "sqlite")
	v.SetDefault("persistence.sqlite_path", "db.sqlite")
	v.SetDefault("persistence.timeout", 2*time.Second)

	v.SetDefault("redis.addr", "127.0.0.1:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("mysql.host", "127.0.0.1")
	v.SetDefault("mysql.port", 3306)
	v.SetDefault("mysql.username", "root")
	v.SetDefault("mysql.password", "")
	v.SetDefault("mysql.database", "tagarena")

	v.SetDefault("mq.url", "")
	v.SetDefault("mq.queue_name", "session_events")
	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("log.level", "info")
}

// Load reads the yaml file at path. A missing file is not an error; defaults
// and TAGARENA_* environment variables still apply.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("tagarena")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	return cfg, nil
}

func InitConfig(path string) {
	cfg, err := Load(path)
	if err != nil {
		log.Fatalf("Error reading config: %v", err)
	}
	AppConfig = cfg
	log.Println("Config loaded successfully")
}
