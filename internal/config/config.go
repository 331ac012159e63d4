package config

import "github.com/spf13/viper"

type Config struct {
	ServerPort        string `mapstructure:"SERVER_PORT"`
	DatabaseURL       string `mapstructure:"DATABASE_URL"`
	RedisAddr         string `mapstructure:"REDIS_ADDR"`
	RedisPassword     string `mapstructure:"REDIS_PASSWORD"`
	SessionSecret     string `mapstructure:"SESSION_SECRET"`
	SessionTTLMinutes int    `mapstructure:"SESSION_TTL_MINUTES"`
}

// DemoMode reports whether the server runs with per-session in-memory
// databases instead of one shared persistent database.
func (c Config) DemoMode() bool {
	return c.DatabaseURL == ""
}

func Load() Config {
	viper.AutomaticEnv()
	viper.SetDefault("SERVER_PORT", ":8080")
	viper.SetDefault("DATABASE_URL", "")
	viper.SetDefault("REDIS_ADDR", "")
	viper.SetDefault("SESSION_SECRET", "dev-secret-change-me")
	viper.SetDefault("SESSION_TTL_MINUTES", 60)

	var cfg Config
	_ = viper.Unmarshal(&cfg)
	return cfg
}
