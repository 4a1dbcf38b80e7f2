package telegram

import (
	"fmt"
	"net/url"
	"regexp"
)

// tokenPattern matches the Telegram bot token format: <digits>:<alphanum+dash>.
var tokenPattern = regexp.MustCompile(`^\d+:[A-Za-z0-9_-]+$`)

// Config holds the Telegram channel configuration.
type Config struct {
	Token          string   `yaml:"token"`
	Mode           string   `yaml:"mode"`
	PollingTimeout int      `yaml:"polling_timeout"`
	WebhookURL     string   `yaml:"webhook_url"`
	WebhookSecret  string   `yaml:"webhook_secret"`
	AllowedUpdates []string `yaml:"allowed_updates"`
	AllowUsers     []string `yaml:"allow_users"`
	AllowChats     []string `yaml:"allow_chats"`

	// CacheChatID is the chat that receives sticker uploads backing inline
	// results. Telegram only accepts file_id references in inline answers,
	// so every fresh render is sent here once to obtain one.
	CacheChatID int64 `yaml:"cache_chat_id"`

	// CacheTime is how long Telegram clients may cache an inline answer,
	// in seconds. Renders are deterministic per amount, so long is fine.
	CacheTime int `yaml:"cache_time"`

	APIURL string `yaml:"api_url"`
}

// defaults applies default values to unset fields.
func (c *Config) defaults() {
	if c.Mode == "" {
		c.Mode = "polling"
	}
	if c.PollingTimeout == 0 {
		c.PollingTimeout = 30
	}
	if c.AllowedUpdates == nil {
		c.AllowedUpdates = []string{"message", "inline_query"}
	}
	if c.CacheTime == 0 {
		c.CacheTime = 3600
	}
	if c.APIURL == "" {
		c.APIURL = "https://api.telegram.org"
	}
}

// validate checks configuration field constraints beyond basic presence checks.
// It is called from Telegram.Validate after defaults have been applied.
func (c *Config) validate() error {
	if c.Token != "" && !tokenPattern.MatchString(c.Token) {
		return fmt.Errorf("telegram: token format invalid (expected <bot_id>:<hash>)")
	}

	if c.APIURL != "" {
		u, err := url.Parse(c.APIURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
			return fmt.Errorf("telegram: api_url must be a valid http/https URL, got %q", c.APIURL)
		}
	}

	if c.PollingTimeout < 0 || c.PollingTimeout > 50 {
		return fmt.Errorf("telegram: polling_timeout must be 0-50, got %d", c.PollingTimeout)
	}

	if c.CacheTime < 0 {
		return fmt.Errorf("telegram: cache_time must be non-negative, got %d", c.CacheTime)
	}

	return nil
}
