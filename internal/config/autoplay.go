package config

import (
	"fmt"
	"os"
	"time"

	"github.com/vancomm/minesweeper-autoplay/internal/autoplay"
)

func AutoplayDelay() (time.Duration, error) {
	v, ok := os.LookupEnv("AUTOPLAY_DELAY")
	if !ok || v == "" {
		return autoplay.DefaultDelay, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid AUTOPLAY_DELAY: %w", err)
	}
	if d < 0 {
		return 0, fmt.Errorf("invalid AUTOPLAY_DELAY: %s is negative", d)
	}
	return d, nil
}

func ExhaustedPolicy() (autoplay.ExhaustedPolicy, error) {
	v := os.Getenv("AUTOPLAY_EXHAUSTED")
	policy, ok := autoplay.ParseExhaustedPolicy(v)
	if !ok {
		return policy, fmt.Errorf("invalid AUTOPLAY_EXHAUSTED %q, want reseed or tie", v)
	}
	return policy, nil
}

// AutoplayOptions bundles the two settings above.
func AutoplayOptions() ([]autoplay.Option, error) {
	delay, err := AutoplayDelay()
	if err != nil {
		return nil, err
	}
	policy, err := ExhaustedPolicy()
	if err != nil {
		return nil, err
	}
	return []autoplay.Option{
		autoplay.WithDelay(delay),
		autoplay.WithExhaustedPolicy(policy),
	}, nil
}

func RevealMinesOnEnd() bool {
	return flagEnv("REVEAL_MINES_ON_END", true)
}

// AutoplayLogFile is where the headless runner mirrors its log. Empty means
// stderr only.
func AutoplayLogFile() string {
	return os.Getenv("AUTOPLAY_LOG_FILE")
}
