package layerrenamer

import (
	"fmt"
	"path/filepath"
	"strings"
)

type Validator interface {
	ValidateRules(rules []CustomRename) *ValidationResult
	ValidatePath(path string) error
	ValidateConfig(config *Config) error
}

type ValidationResult struct {
	IsValid     bool     `json:"is_valid"`
	Issues      []string `json:"issues,omitempty"`
	Suggestions []string `json:"suggestions,omitempty"`
}

type DefaultValidator struct{}

func NewDefaultValidator() *DefaultValidator {
	return &DefaultValidator{}
}

// ValidateRules reports rules that can never match or that are shadowed by an
// earlier rule for the same component set. Such rules are harmless, so the
// result stays valid and only carries issues.
func (v *DefaultValidator) ValidateRules(rules []CustomRename) *ValidationResult {
	result := &ValidationResult{
		IsValid:     true,
		Issues:      []string{},
		Suggestions: []string{},
	}

	seen := make(map[string]int)
	for i, rule := range rules {
		if rule.Name == "" {
			result.Issues = append(result.Issues, fmt.Sprintf("Rule %d has no component name and will never match", i+1))
			continue
		}
		if rule.NewName == "" {
			result.Issues = append(result.Issues, fmt.Sprintf("Rule %d for %q has no new name and will be ignored", i+1, rule.Name))
			continue
		}

		if first, ok := seen[rule.Name]; ok {
			result.Issues = append(result.Issues, fmt.Sprintf("Rule %d for %q is shadowed by rule %d", i+1, rule.Name, first+1))
			result.Suggestions = append(result.Suggestions, fmt.Sprintf("Remove rule %d", i+1))
			continue
		}
		seen[rule.Name] = i
	}

	return result
}

func (v *DefaultValidator) ValidatePath(path string) error {
	if path == "" {
		return fmt.Errorf("path cannot be empty")
	}

	for _, part := range strings.Split(filepath.ToSlash(path), "/") {
		if part == ".." {
			return fmt.Errorf("path contains directory traversal")
		}
	}

	if _, err := filepath.Abs(path); err != nil {
		return fmt.Errorf("invalid path: %w", err)
	}

	return nil
}

func (v *DefaultValidator) ValidateConfig(config *Config) error {
	if config == nil {
		return fmt.Errorf("config cannot be nil")
	}

	if config.NotificationTimeout < 0 {
		return fmt.Errorf("notification_timeout cannot be negative")
	}

	switch strings.ToLower(config.LogLevel) {
	case "", "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("invalid log_level: %s", config.LogLevel)
	}

	return nil
}
