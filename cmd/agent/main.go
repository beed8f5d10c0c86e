package main

// Simulated racing agent. It registers with the relay under the configured
// driver name and streams telemetry ticks, completing a lap every LAP_EVERY
// ticks, standing in for a real simulator client.

import (
	"log"
	"math"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/websocket"
	"github.com/spf13/viper"
)

type agentConfig struct {
	ServerURL      string `mapstructure:"SERVER_URL"`
	DriverName     string `mapstructure:"DRIVER_NAME"`
	TrackName      string `mapstructure:"TRACK_NAME"`
	CarName        string `mapstructure:"CAR_NAME"`
	SendIntervalMS int    `mapstructure:"SEND_INTERVAL_MS"`
	LapEvery       int    `mapstructure:"LAP_EVERY"`
}

func loadAgentConfig() agentConfig {
	viper.AutomaticEnv()
	viper.SetDefault("SERVER_URL", "ws://localhost:3000/ws")
	viper.SetDefault("DRIVER_NAME", "Driver")
	viper.SetDefault("TRACK_NAME", "Monza")
	viper.SetDefault("CAR_NAME", "Dallara P217")
	viper.SetDefault("SEND_INTERVAL_MS", 100)
	viper.SetDefault("LAP_EVERY", 100)

	var cfg agentConfig
	_ = viper.Unmarshal(&cfg)
	if cfg.SendIntervalMS <= 0 {
		cfg.SendIntervalMS = 100
	}
	if cfg.LapEvery <= 0 {
		cfg.LapEvery = 100
	}
	return cfg
}

type message struct {
	Type string         `json:"type"`
	Data map[string]any `json:"data"`
}

func main() {
	cfg := loadAgentConfig()
	hostname, err := os.Hostname()
	if err != nil {
		hostname = "unknown-host"
	}

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)

	log.Printf("telemetry agent: driver=%s computer=%s server=%s", cfg.DriverName, hostname, cfg.ServerURL)

	for {
		if err := runSession(cfg, hostname, signals); err != nil {
			log.Printf("agent: session ended: %v", err)
		} else {
			log.Printf("agent stopped")
			return
		}

		select {
		case <-signals:
			log.Printf("agent stopped")
			return
		case <-time.After(5 * time.Second):
		}
	}
}

// runSession holds one connection to the relay. It returns nil on a clean
// shutdown and an error when the connection drops and a retry is wanted.
func runSession(cfg agentConfig, hostname string, signals <-chan os.Signal) error {
	conn, _, err := websocket.DefaultDialer.Dial(cfg.ServerURL, nil)
	if err != nil {
		return err
	}
	defer conn.Close()
	log.Printf("agent: connected to %s", cfg.ServerURL)

	if err := conn.WriteJSON(message{Type: "register-agent", Data: map[string]any{
		"driverName":   cfg.DriverName,
		"computerName": hostname,
	}}); err != nil {
		return err
	}

	// drain the feed so broadcasts to this connection don't back up
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(time.Duration(cfg.SendIntervalMS) * time.Millisecond)
	defer ticker.Stop()

	baseLap := 90.0 + rand.Float64()*10
	lapNumber := 0
	tick := 0
	for {
		select {
		case <-signals:
			_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return nil
		case <-ticker.C:
			tick++
			data := telemetryTick(cfg, tick)
			if tick%cfg.LapEvery == 0 {
				lapNumber++
				lapTime := math.Round((baseLap+rand.Float64()*2-1)*1000) / 1000
				data["lapTime"] = lapTime
				data["lapNumber"] = lapNumber
				data["isValid"] = rand.Float64() > 0.1
				log.Printf("agent: lap %d completed: %.3fs", lapNumber, lapTime)
			}
			if err := conn.WriteJSON(message{Type: "telemetry-data", Data: data}); err != nil {
				return err
			}
		}
	}
}

func telemetryTick(cfg agentConfig, tick int) map[string]any {
	pct := float64(tick%cfg.LapEvery) / float64(cfg.LapEvery)
	return map[string]any{
		"trackName":  cfg.TrackName,
		"carName":    cfg.CarName,
		"lapDistPct": pct,
		"speed":      180 + 60*math.Sin(2*math.Pi*pct),
		"gear":       3 + tick%4,
		"rpm":        6500 + rand.Intn(1500),
	}
}
