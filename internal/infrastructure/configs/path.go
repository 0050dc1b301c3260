package configs

import (
	"flag"
	"os"

	"github.com/bmaportal/ticketd/internal/infrastructure/env"
)

// DeterminePath resolves the config file location: the -config flag
// wins, then TICKETD_CONFIG, then well-known candidates. An empty
// return means "run on defaults", which is fine for local use.
func DeterminePath() string {
	var configPath string

	flag.StringVar(&configPath, "config", "", "path to config file")
	flag.Parse()

	if configPath == "" {
		configPath = env.GetString("TICKETD_CONFIG", "")
	}

	if configPath == "" {
		candidates := []string{
			"./config.yaml",
			"./config.yml",
			"/etc/ticketd/config.yaml",
		}

		for _, p := range candidates {
			if _, err := os.Stat(p); err == nil {
				configPath = p
				break
			}
		}
	}

	return configPath
}
