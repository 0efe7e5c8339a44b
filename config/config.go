package config

import (
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Dictionary DictionaryConfig `mapstructure:"dictionary"`
	Database   DatabaseConfig   `mapstructure:"database"`
}

type ServerConfig struct {
	TCPAddress     string        `mapstructure:"tcp_address"`
	WSAddress      string        `mapstructure:"ws_address"`
	MonitorAddress string        `mapstructure:"monitor_address"`
	RPCAddress     string        `mapstructure:"rpc_address"`
	IdleTimeout    time.Duration `mapstructure:"idle_timeout"`
}

type DictionaryConfig struct {
	Path   string `mapstructure:"path"`
	Format string `mapstructure:"format"` // "text" or "json"
}

type DatabaseConfig struct {
	// Driver selects the persistence backend: "gorm", "pq" or "" (disabled).
	Driver   string         `mapstructure:"driver"`
	Postgres PostgresConfig `mapstructure:"postgres"`
}

type PostgresConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
}

func LoadConfig(path string) (config *Config, err error) {
	viper.AddConfigPath(path)
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	viper.SetDefault("server.tcp_address", "0.0.0.0:44390")
	viper.SetDefault("server.ws_address", "")
	viper.SetDefault("server.monitor_address", "")
	viper.SetDefault("server.rpc_address", "")
	viper.SetDefault("server.idle_timeout", 30*time.Minute)
	viper.SetDefault("dictionary.path", "oxford_english_dictionary.txt")
	viper.SetDefault("dictionary.format", "text")
	viper.SetDefault("database.driver", "")
	viper.SetDefault("database.postgres.host", "localhost")
	viper.SetDefault("database.postgres.port", 5432)

	viper.AutomaticEnv()

	// A missing config file is fine, the defaults above cover a full run.
	if err = viper.ReadInConfig(); err != nil {
		if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound {
			return nil, err
		}
	}

	err = viper.Unmarshal(&config)
	return
}
