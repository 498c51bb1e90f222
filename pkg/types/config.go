// Package types provides configuration types for the decision core demo
// binary and its reference planes.
package types

import "time"

// ServerConfig configures the observability demo HTTP/WS server.
type ServerConfig struct {
	Host          string `json:"host" mapstructure:"host"`
	Port          int    `json:"port" mapstructure:"port"`
	WebSocketPath string `json:"websocketPath" mapstructure:"websocketPath"`
	EnableMetrics bool   `json:"enableMetrics" mapstructure:"enableMetrics"`
}

// DataConfig configures where the candle loader and journal look for files.
type DataConfig struct {
	CandlesDir string `json:"candlesDir" mapstructure:"candlesDir"`
	JournalDir string `json:"journalDir" mapstructure:"journalDir"`
}

// KillSwitchConfig configures the reference risk plane's capital-preservation
// thresholds.
type KillSwitchConfig struct {
	MaxDailyLossPct    float64       `json:"maxDailyLossPct" mapstructure:"maxDailyLossPct"`
	MaxConsecutiveLoss int           `json:"maxConsecutiveLoss" mapstructure:"maxConsecutiveLoss"`
	CooldownPeriod     time.Duration `json:"cooldownPeriod" mapstructure:"cooldownPeriod"`
}

// PolicyConfig configures the cycle-scoped defaults the demo binary feeds
// into PolicyContext when no override is supplied per-cycle.
type PolicyConfig struct {
	SmallSeedMode       bool `json:"smallSeedMode" mapstructure:"smallSeedMode"`
	MaxNewOrdersPerScan int  `json:"maxNewOrdersPerScan" mapstructure:"maxNewOrdersPerScan"`
}

// AppConfig is the root viper-bound configuration for cmd/decisioncore.
type AppConfig struct {
	Server     ServerConfig     `json:"server" mapstructure:"server"`
	Data       DataConfig       `json:"data" mapstructure:"data"`
	KillSwitch KillSwitchConfig `json:"killSwitch" mapstructure:"killSwitch"`
	Policy     PolicyConfig     `json:"policy" mapstructure:"policy"`
}

// DefaultAppConfig returns the baseline configuration used when no config
// file is present.
func DefaultAppConfig() AppConfig {
	return AppConfig{
		Server: ServerConfig{
			Host:          "0.0.0.0",
			Port:          8080,
			WebSocketPath: "/stream",
			EnableMetrics: true,
		},
		Data: DataConfig{
			CandlesDir: "./data/candles",
			JournalDir: "./data/journal",
		},
		KillSwitch: KillSwitchConfig{
			MaxDailyLossPct:    5.0,
			MaxConsecutiveLoss: 5,
			CooldownPeriod:     30 * time.Minute,
		},
		Policy: PolicyConfig{
			SmallSeedMode:       false,
			MaxNewOrdersPerScan: 3,
		},
	}
}
