package overrides

import (
	"fmt"
	"strings"

	"github.com/mikey/binsight/internal/core"
	"go.uber.org/zap"
)

// Checker resolves labels against configured override rules before the
// keyword heuristic runs. Each rule is "substring=category", e.g.
// "styrofoam=trash". With no rules configured every label falls through
// to the heuristic unchanged.
type Checker struct {
	rules  []rule
	logger *zap.Logger
}

type rule struct {
	substr   string
	category core.Category
}

// NewChecker parses override entries of the form "substring=category".
// Rules are applied in order; the first matching rule wins.
func NewChecker(entries []string, logger *zap.Logger) (*Checker, error) {
	rules := make([]rule, 0, len(entries))
	for _, entry := range entries {
		substr, categoryName, ok := strings.Cut(entry, "=")
		if !ok {
			return nil, fmt.Errorf("invalid override entry %q: want substring=category", entry)
		}
		substr = strings.ToLower(strings.TrimSpace(substr))
		if substr == "" {
			return nil, fmt.Errorf("invalid override entry %q: empty substring", entry)
		}
		category, err := core.ParseCategory(strings.ToLower(strings.TrimSpace(categoryName)))
		if err != nil {
			return nil, fmt.Errorf("invalid override entry %q: %w", entry, err)
		}
		rules = append(rules, rule{substr: substr, category: category})
	}

	if len(rules) > 0 && logger != nil {
		logger.Info("Loaded label overrides", zap.Int("count", len(rules)))
	}

	return &Checker{
		rules:  rules,
		logger: logger,
	}, nil
}

// Match returns the forced category for a label, if any rule applies
func (c *Checker) Match(label string) (core.Category, bool) {
	if len(c.rules) == 0 {
		return "", false
	}

	lower := strings.ToLower(label)
	for _, r := range c.rules {
		if strings.Contains(lower, r.substr) {
			if c.logger != nil {
				c.logger.Debug("Label override matched",
					zap.String("label", label),
					zap.String("substring", r.substr),
					zap.String("category", string(r.category)))
			}
			return r.category, true
		}
	}
	return "", false
}
