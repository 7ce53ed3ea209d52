package config

import (
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Rooms    RoomsConfig    `mapstructure:"rooms"`
}

type ServerConfig struct {
	HTTPAddress    string `mapstructure:"http_address"`
	RPCAddress     string `mapstructure:"rpc_address"`
	MonitorAddress string `mapstructure:"monitor_address"`
}

type DatabaseConfig struct {
	Enabled  bool           `mapstructure:"enabled"`
	Postgres PostgresConfig `mapstructure:"postgres"`
}

type PostgresConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
}

// RoomsConfig controls idle-room expiry. A room with no accepted action for
// IdleTimeout is torn down as if every member had disconnected.
type RoomsConfig struct {
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	CleanupInterval time.Duration `mapstructure:"cleanup_interval"`
}

func LoadConfig(path string) (config *Config, err error) {
	viper.AddConfigPath(path)
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	viper.SetDefault("server.http_address", ":8080")
	viper.SetDefault("server.rpc_address", ":8081")
	viper.SetDefault("server.monitor_address", ":9100")
	viper.SetDefault("database.enabled", false)
	viper.SetDefault("rooms.idle_timeout", 30*time.Minute)
	viper.SetDefault("rooms.cleanup_interval", 5*time.Minute)

	viper.AutomaticEnv()

	err = viper.ReadInConfig()
	if err != nil {
		// Defaults plus environment are enough to run without a config file.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	err = viper.Unmarshal(&config)
	return
}
