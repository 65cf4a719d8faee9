package dashboard

import (
	"encoding/json"
	"time"
)

// Login is the login response. Token is set when the payload carried one under
// "token" or "access_token".
type Login struct {
	Token string
	Raw   json.RawMessage
}

// APIToken is an issued or rotated API key.
type APIToken struct {
	Key string
	Raw json.RawMessage
}

// APIKey describes the caller's API key and its consumption.
type APIKey struct {
	Key       string `json:"key"`
	Name      string `json:"name"`
	LastUsed  string `json:"last_used"`
	ExpiresAt string `json:"expiration_dt"`
	Limits    struct {
		Secondly int `json:"secondly"`
		Daily    int `json:"daily"`
	} `json:"limits"`
	Usage struct {
		Daily int `json:"daily"`
	} `json:"usage"`
}

// UsagePercent is today's usage as a percentage of the daily limit.
func (k APIKey) UsagePercent() float64 {
	if k.Limits.Daily <= 0 {
		return 0
	}
	return float64(k.Usage.Daily) / float64(k.Limits.Daily) * 100
}

var expiryLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999",
	"2006-01-02 15:04:05",
	time.DateOnly,
}

// Expires parses ExpiresAt. ok is false when it is empty or unparseable.
func (k APIKey) Expires() (t time.Time, ok bool) {
	if k.ExpiresAt == "" {
		return time.Time{}, false
	}
	for _, layout := range expiryLayouts {
		if t, err := time.Parse(layout, k.ExpiresAt); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
