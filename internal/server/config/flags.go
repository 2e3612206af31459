package config

import (
	"flag"
	"os"
	"time"

	"github.com/rasgroup/bagcapturer/internal/flagx"
)

// parseFlags populates selected server Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-h string   host to bind the dashboard to
//	-p int      port to bind the dashboard to
//	-debug      enable debug mode
//	-auth       require HTTP Basic auth on dashboard pages
//	-i int      system timer interval, seconds
//	-r int      console refresh interval, seconds
//	-d string   PostgreSQL DSN
//	-s string   API token HMAC secret key
//	-t int      access token validity, minutes
//	-rt int     refresh token validity, minutes
//	-u string   S3 root user
//	-w string   S3 root password
//	-b string   S3 bucket name
//	-g string   S3 region
//	-e string   S3 base endpoint (e.g., "http://127.0.0.1:9000/")
//
// The function first filters os.Args to only the flags it recognizes using
// flagx.FilterArgs, avoiding collisions with other components. Interval
// flags are accepted as integers (seconds or minutes) and converted to
// time.Duration values.
func parseFlags(config *Config) {
	// Filter args to include only the flags handled here.
	args := flagx.FilterArgs(os.Args[1:], []string{
		"-h", "-p", "-debug", "-auth", "-i", "-r",
		"-d", "-s", "-t", "-rt", "-u", "-w", "-b", "-g", "-e",
	})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.Host, "h", config.Host, "host to run dashboard server on")
	fs.IntVar(&config.Port, "p", config.Port, "port to run dashboard server on")
	fs.BoolVar(&config.DebugMode, "debug", config.DebugMode, "debug mode")
	fs.BoolVar(&config.AuthEnabled, "auth", config.AuthEnabled, "require basic auth on dashboard pages")

	systemTimerInterval := fs.Int("i", int(config.SystemTimerInterval.Seconds()), "system timer interval (in seconds)")
	consoleRefreshInterval := fs.Int("r", int(config.ConsoleRefreshInterval.Seconds()), "console refresh interval (in seconds)")

	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")

	accessTokenValidityDuration := fs.Int("t", int(config.AccessTokenValidityDuration.Minutes()), "access_token_validity_duration (in minutes)")
	refreshTokenValidityDuration := fs.Int("rt", int(config.RefreshTokenValidityDuration.Minutes()), "refresh_token_validity_duration (in minutes)")

	fs.StringVar(&config.S3RootUser, "u", config.S3RootUser, "S3 root user")
	fs.StringVar(&config.S3RootPassword, "w", config.S3RootPassword, "S3 root password")
	fs.StringVar(&config.S3Bucket, "b", config.S3Bucket, "S3 bucket")
	fs.StringVar(&config.S3Region, "g", config.S3Region, "S3 region")
	fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 base endpoint")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.SystemTimerInterval = time.Duration(*systemTimerInterval) * time.Second
	config.ConsoleRefreshInterval = time.Duration(*consoleRefreshInterval) * time.Second
	config.AccessTokenValidityDuration = time.Duration(*accessTokenValidityDuration) * time.Minute
	config.RefreshTokenValidityDuration = time.Duration(*refreshTokenValidityDuration) * time.Minute
}
