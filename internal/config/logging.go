package config

// LoggingConfig configures the plugin's diagnostic logs.
// Stdout carries the record, so logs never go there.
type LoggingConfig struct {
	Level      string          `yaml:"level"`      // debug, info, warn, error
	Format     string          `yaml:"format"`     // json, text
	File       string          `yaml:"file"`       // empty = stderr
	DebugMode  bool            `yaml:"debug_mode"` // false = no logging at all
	Categories map[string]bool `yaml:"categories"` // per-category toggles, missing = on
}

// IsCategoryEnabled returns whether logging is enabled for a category.
// Nothing is enabled unless debug mode is on; unlisted categories are enabled.
func (c *LoggingConfig) IsCategoryEnabled(category string) bool {
	if !c.DebugMode {
		return false
	}
	enabled, exists := c.Categories[category]
	return !exists || enabled
}
