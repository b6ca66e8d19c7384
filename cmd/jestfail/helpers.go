package main

import (
	"fmt"

	"jestfail/internal/config"
)

// loadConfig reads the --config file, or .jestfail.yaml when it exists.
func loadConfig(path string) (config.Config, error) {
	if path == "" {
		cfg, err := config.LoadOptional(config.DefaultFile)
		if err != nil {
			return config.Config{}, fmt.Errorf("load %s: %w", config.DefaultFile, err)
		}
		return cfg, nil
	}
	cfg, err := config.LoadFromPath(path)
	if err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

func plural(n int, word string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", word)
	}
	return fmt.Sprintf("%d %ss", n, word)
}
