package main

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/yourusername/scoresight/internal/models"
)

// readInput merges the stats file with --stat pairs. Pairs win on conflict.
func readInput(path string, pairs []string) (models.RawStatInput, error) {
	raw := models.RawStatInput{}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read input file: %w", err)
		}
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("failed to parse input file %s: %w", path, err)
		}
	}

	stats, err := parseStats(pairs)
	if err != nil {
		return nil, err
	}
	for k, v := range stats {
		raw[k] = v
	}
	return raw, nil
}

// parseStats splits key=value pairs. Values stay strings and are converted during decoding.
func parseStats(pairs []string) (models.RawStatInput, error) {
	raw := make(models.RawStatInput, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("%w: stat %q is not key=value", models.ErrInvalidInput, pair)
		}
		raw[key] = strings.TrimSpace(value)
	}
	return raw, nil
}
