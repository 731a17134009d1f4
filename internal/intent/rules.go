package intent

import (
	"fmt"
	"log/slog"
	"os"

	"langingo/internal/domain"

	"gopkg.in/yaml.v3"
)

type ruleFile struct {
	Rules []Rule `yaml:"rules"`
}

// LoadRules reads an ordered rule table from a YAML file. An empty path or a
// missing file falls back to DefaultRules; a present but malformed file is an
// error so a typo cannot silently disable routing.
func LoadRules(path string, logger *slog.Logger) ([]Rule, error) {
	if path == "" {
		return DefaultRules(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			logger.Debug("intent rules file not found, using defaults", "path", path)
			return DefaultRules(), nil
		}
		return nil, fmt.Errorf("read intent rules %s: %w", path, err)
	}

	var f ruleFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse intent rules %s: %w", path, err)
	}
	if len(f.Rules) == 0 {
		return nil, fmt.Errorf("intent rules %s: no rules defined", path)
	}

	for i, r := range f.Rules {
		switch r.Intent {
		case domain.IntentNews, domain.IntentWeather, domain.IntentTime:
		default:
			return nil, fmt.Errorf("intent rules %s: rule %d has unknown intent %q", path, i, r.Intent)
		}
		if len(r.Keywords) == 0 {
			return nil, fmt.Errorf("intent rules %s: rule %d (%s) has no keywords", path, i, r.Intent)
		}
	}

	logger.Info("loaded intent rules", "path", path, "rules", len(f.Rules))
	return f.Rules, nil
}
