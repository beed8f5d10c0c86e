package config

import "github.com/spf13/viper"

type Config struct {
	ServerPort         string `mapstructure:"SERVER_PORT"`
	TelemetryBuffer    int    `mapstructure:"TELEMETRY_BUFFER"`
	ControlBacklogWarn int    `mapstructure:"CONTROL_BACKLOG_WARN"`
	RecentLapsSnapshot int    `mapstructure:"RECENT_LAPS_SNAPSHOT"`
}

func Load() Config {
	viper.AutomaticEnv()
	viper.SetDefault("SERVER_PORT", ":3000")
	viper.SetDefault("TELEMETRY_BUFFER", 64)
	viper.SetDefault("CONTROL_BACKLOG_WARN", 256)
	viper.SetDefault("RECENT_LAPS_SNAPSHOT", 50)

	var cfg Config
	_ = viper.Unmarshal(&cfg)
	return cfg
}
