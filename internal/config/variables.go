package config

import (
	"path/filepath"
	"time"
)

var (
	SeedFile     string
	OutputDir    string
	StateDir     string // Single state directory for the queue database
	GlobalConfig Config

	// Liveness configuration: how long the extraction may stay silent
	// before the current item is declared stalled.
	StallTimeoutSeconds = 30

	// Pacing configuration
	SettleDelaySeconds = 2 // wait after load-complete before extraction
	ItemPauseSeconds   = 3 // pause between processed items

	// Pagination configuration
	MaxScrollRounds  = 40  // upper bound on scroll/click rounds per page
	ScrollIntervalMs = 800 // wait between scroll rounds
	StableRounds     = 3   // rounds without page growth before finishing

	// Whether the browser runs without a visible window
	Headless = false
)

var DefaultExtractor = ExtractorConfig{
	PostSelector:     "div[role='article']",
	PageNameSelector: "h1",
	ContentSelector:  "div[data-ad-preview='message']",
	DateSelector:     "abbr, a[aria-label] span",
	LikesSelector:    "span[aria-label*='Like'], span[data-testid='like-count']",
	CommentsSelector: "span[data-testid='comment-count'], a[href*='comment']",
	NotFoundSelector: "div[data-testid='content-unavailable']",
	ExpandSelector:   "div[role='button'][tabindex='0']",
}

type Config struct {
	OutputDir string `mapstructure:"output_dir" yaml:"output_dir"`
	StateDir  string `mapstructure:"state_dir" yaml:"state_dir"`

	StallTimeoutSeconds int `mapstructure:"stall_timeout_seconds" yaml:"stall_timeout_seconds"`
	SettleDelaySeconds  int `mapstructure:"settle_delay_seconds" yaml:"settle_delay_seconds"`
	ItemPauseSeconds    int `mapstructure:"item_pause_seconds" yaml:"item_pause_seconds"`

	MaxScrollRounds  int `mapstructure:"max_scroll_rounds" yaml:"max_scroll_rounds"`
	ScrollIntervalMs int `mapstructure:"scroll_interval_ms" yaml:"scroll_interval_ms"`
	StableRounds     int `mapstructure:"stable_rounds" yaml:"stable_rounds"`

	Headless bool `mapstructure:"headless" yaml:"headless"`

	Extractor ExtractorConfig `mapstructure:"extractor" yaml:"extractor"`
}

// ExtractorConfig holds the CSS selectors the page extractor uses, so a
// layout change on the target site is a config edit rather than a rebuild.
type ExtractorConfig struct {
	PostSelector     string `mapstructure:"post_selector" yaml:"post_selector"`
	PageNameSelector string `mapstructure:"page_name_selector" yaml:"page_name_selector"`
	ContentSelector  string `mapstructure:"content_selector" yaml:"content_selector"`
	DateSelector     string `mapstructure:"date_selector" yaml:"date_selector"`
	LikesSelector    string `mapstructure:"likes_selector" yaml:"likes_selector"`
	CommentsSelector string `mapstructure:"comments_selector" yaml:"comments_selector"`
	NotFoundSelector string `mapstructure:"not_found_selector" yaml:"not_found_selector"`
	ExpandSelector   string `mapstructure:"expand_selector" yaml:"expand_selector"`
}

// StallTimeout returns the liveness deadline as a duration
func StallTimeout() time.Duration {
	return time.Duration(StallTimeoutSeconds) * time.Second
}

// SettleDelay returns the post-navigation settle delay as a duration
func SettleDelay() time.Duration {
	return time.Duration(SettleDelaySeconds) * time.Second
}

// ItemPause returns the inter-item pause as a duration
func ItemPause() time.Duration {
	return time.Duration(ItemPauseSeconds) * time.Second
}

// GetQueueDBPath returns the path of the queue database for the current state dir
func GetQueueDBPath() string {
	if StateDir != "" {
		return filepath.Join(StateDir, "queue.db")
	}
	return ""
}
