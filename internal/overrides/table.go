package overrides

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	"nextair/internal/logging"
)

// Kind discriminates the override variants.
type Kind int

const (
	// NoRule means the title resolves normally.
	NoRule Kind = iota
	// Ignore suppresses resolution entirely; cache is neither read nor
	// written for the title.
	Ignore
	// ForceID bypasses text search and issues a direct by-ID lookup.
	ForceID
)

// Rule is one override decision for a title.
type Rule struct {
	Kind Kind
	ID   int
}

// Table holds the exception rules, loaded once per run and read-only after.
type Table struct {
	rules map[string]Rule
}

// Load reads the exception table from a JSON file mapping title to one of:
// null or "ignore" (suppress), an integer (exact catalog ID). A missing file
// yields an empty table. Any other value type is a configuration error
// rather than a silent fall-through.
func Load(path string, logger *slog.Logger) (*Table, error) {
	logger = logging.NewComponentLogger(logger, "overrides")
	table := &Table{rules: make(map[string]Rule)}

	if strings.TrimSpace(path) == "" {
		return table, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return table, nil
		}
		return nil, fmt.Errorf("read overrides file: %w", err)
	}
	if len(data) == 0 {
		return table, nil
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse overrides file: %w", err)
	}

	for title, value := range raw {
		rule, err := parseRule(value)
		if err != nil {
			return nil, fmt.Errorf("override for %q: %w", title, err)
		}
		table.rules[title] = rule
	}

	logger.Info("loaded manual overrides", logging.Int("count", len(table.rules)))
	return table, nil
}

// Lookup returns the rule for a title, or a NoRule rule when absent.
func (t *Table) Lookup(title string) Rule {
	if t == nil {
		return Rule{}
	}
	return t.rules[title]
}

// Len returns the number of loaded rules.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.rules)
}

func parseRule(value json.RawMessage) (Rule, error) {
	trimmed := strings.TrimSpace(string(value))
	if trimmed == "null" {
		return Rule{Kind: Ignore}, nil
	}

	var text string
	if err := json.Unmarshal(value, &text); err == nil {
		if strings.EqualFold(strings.TrimSpace(text), "ignore") {
			return Rule{Kind: Ignore}, nil
		}
		return Rule{}, fmt.Errorf("unsupported string value %q (only \"ignore\" is recognized)", text)
	}

	var id int
	if err := json.Unmarshal(value, &id); err == nil {
		if id <= 0 {
			return Rule{}, fmt.Errorf("catalog id must be positive, got %d", id)
		}
		return Rule{Kind: ForceID, ID: id}, nil
	}

	return Rule{}, fmt.Errorf("unsupported value %s (want null, \"ignore\", or an integer id)", trimmed)
}
