package intent

import (
	"log/slog"
	"strings"

	"langingo/internal/domain"
)

// Rule maps a keyword set to an intent. Rules are evaluated in order and the
// first rule with any matching keyword wins, so the position in the list is
// the tie-break: a message containing both "news" and "weather" classifies
// as whatever the earlier rule says.
type Rule struct {
	Intent   domain.Intent `yaml:"intent"`
	Keywords []string      `yaml:"keywords"`
}

// DefaultRules returns the built-in rule table: news before weather before time.
func DefaultRules() []Rule {
	return []Rule{
		{Intent: domain.IntentNews, Keywords: []string{"news", "headlines", "latest news", "current events"}},
		{Intent: domain.IntentWeather, Keywords: []string{"weather"}},
		{Intent: domain.IntentTime, Keywords: []string{"time"}},
	}
}

// Classifier matches message text against an ordered rule table.
type Classifier struct {
	rules  []Rule
	lower  [][]string // pre-computed lowercase keywords, same order as rules
	logger *slog.Logger
}

func NewClassifier(rules []Rule, logger *slog.Logger) *Classifier {
	if len(rules) == 0 {
		rules = DefaultRules()
	}

	// Pre-compute lowercase keywords to avoid repeated ToLower on every message.
	lower := make([][]string, len(rules))
	for i, r := range rules {
		kws := make([]string, len(r.Keywords))
		for j, kw := range r.Keywords {
			kws[j] = strings.ToLower(kw)
		}
		lower[i] = kws
	}

	return &Classifier{rules: rules, lower: lower, logger: logger}
}

// Classify returns the intent of the first rule with a keyword contained in
// the message (case-insensitive substring), or IntentNone. No scoring, no
// multi-label output; an empty message is IntentNone.
func (c *Classifier) Classify(message string) domain.Intent {
	if message == "" {
		return domain.IntentNone
	}
	body := strings.ToLower(message)

	for i, kws := range c.lower {
		for _, kw := range kws {
			if strings.Contains(body, kw) {
				c.logger.Debug("intent matched", "intent", c.rules[i].Intent, "keyword", kw)
				return c.rules[i].Intent
			}
		}
	}
	return domain.IntentNone
}
