package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/rasgroup/bagcapturer/internal/flagx"
	"github.com/rasgroup/bagcapturer/internal/timex"
)

// JsonConfig defines a configuration structure tailored for JSON
// unmarshalling. It uses timex.Duration for interval fields, which allows
// parsing both string values such as "1s" and integer nanoseconds.
//
// This struct is an intermediate DTO used only for reading JSON configuration
// files. After unmarshalling, its fields are copied into the runtime Config
// struct which uses time.Duration.
type JsonConfig struct {
	Host                         string         `json:"host"`
	Port                         int            `json:"port"`
	DebugMode                    bool           `json:"debug_mode"`
	AuthEnabled                  bool           `json:"auth_enabled"`
	SystemTimerInterval          timex.Duration `json:"system_timer_interval"`
	ConsoleRefreshInterval       timex.Duration `json:"console_refresh_interval"`
	DatabaseDSN                  string         `json:"database_dsn"`
	SecretKey                    string         `json:"secret_key"`
	AccessTokenValidityDuration  timex.Duration `json:"access_token_validity_duration"`
	RefreshTokenValidityDuration timex.Duration `json:"refresh_token_validity_duration"`
	S3RootUser                   string         `json:"s3_root_user"`
	S3RootPassword               string         `json:"s3_root_password"`
	S3Bucket                     string         `json:"s3_bucket"`
	S3Region                     string         `json:"s3_region"`
	S3BaseEndpoint               string         `json:"s3_base_endpoint"`
}

// parseJson loads configuration values from a JSON file into the provided
// Config instance.
//
// The file path is taken from the -c or -config command-line flags. If it is
// not set, no JSON file is loaded. If the file cannot be read or contains
// invalid JSON, the function panics.
//
// The caller is expected to merge these values with defaults and
// command-line flags as part of the full configuration process.
func parseJson(config *Config) {

	jsonConfigFile := flagx.JsonConfigFlags()

	// nothing to load
	if jsonConfigFile == "" {
		return
	}

	// Seed the DTO from the current config so keys absent from the file
	// keep their values: the JSON step overlays, it does not replace.
	c := &JsonConfig{
		Host:                         config.Host,
		Port:                         config.Port,
		DebugMode:                    config.DebugMode,
		AuthEnabled:                  config.AuthEnabled,
		SystemTimerInterval:          timex.Duration{Duration: config.SystemTimerInterval},
		ConsoleRefreshInterval:       timex.Duration{Duration: config.ConsoleRefreshInterval},
		DatabaseDSN:                  config.DatabaseDSN,
		SecretKey:                    config.SecretKey,
		AccessTokenValidityDuration:  timex.Duration{Duration: config.AccessTokenValidityDuration},
		RefreshTokenValidityDuration: timex.Duration{Duration: config.RefreshTokenValidityDuration},
		S3RootUser:                   config.S3RootUser,
		S3RootPassword:               config.S3RootPassword,
		S3Bucket:                     config.S3Bucket,
		S3Region:                     config.S3Region,
		S3BaseEndpoint:               config.S3BaseEndpoint,
	}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	err = json.Unmarshal(file, c)
	if err != nil {
		panic(err)
	}

	config.Host = c.Host
	config.Port = c.Port
	config.DebugMode = c.DebugMode
	config.AuthEnabled = c.AuthEnabled
	config.SystemTimerInterval = time.Duration(c.SystemTimerInterval.Duration)
	config.ConsoleRefreshInterval = time.Duration(c.ConsoleRefreshInterval.Duration)
	config.DatabaseDSN = c.DatabaseDSN
	config.SecretKey = c.SecretKey
	config.AccessTokenValidityDuration = time.Duration(c.AccessTokenValidityDuration.Duration)
	config.RefreshTokenValidityDuration = time.Duration(c.RefreshTokenValidityDuration.Duration)
	config.S3RootUser = c.S3RootUser
	config.S3RootPassword = c.S3RootPassword
	config.S3Bucket = c.S3Bucket
	config.S3Region = c.S3Region
	config.S3BaseEndpoint = c.S3BaseEndpoint
}
