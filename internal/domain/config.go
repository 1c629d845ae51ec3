package domain

// Config mirrors ~/.config/bootlens/config.yaml.
type Config struct {
	ConfigFormatVersion string            `yaml:"config_format_version"`
	Model               ModelSettings     `yaml:"model"`
	Capture             CaptureSettings   `yaml:"capture"`
	Store               StoreSettings     `yaml:"store"`
	Execution           ExecutionSettings `yaml:"execution"`
	Security            SecuritySettings  `yaml:"security"`
}

// ModelSettings describes the remote model endpoint used for extraction and
// chat. The credential resolves from APIKey first, then AuthEnvVar.
type ModelSettings struct {
	Endpoint       string `yaml:"endpoint"`
	ModelID        string `yaml:"model_id"`
	APIKey         string `yaml:"api_key,omitempty"`
	AuthEnvVar     string `yaml:"auth_env_var"`
	MaxTokens      int    `yaml:"max_tokens"`
	TimeoutSeconds int    `yaml:"timeout"`
}

// CaptureSettings bounds the boot-window snapshot. Booleans are pointers so
// a key absent from a hand-edited file reads as "unset", not "off".
type CaptureSettings struct {
	MaxBytes           int   `yaml:"max_bytes"`
	IncludeFailedUnits *bool `yaml:"include_failed_units"`
}

// FailedUnitsIncluded reports the effective setting; unset defaults on.
func (s CaptureSettings) FailedUnitsIncluded() bool {
	return s.IncludeFailedUnits == nil || *s.IncludeFailedUnits
}

// StoreSettings locates the dedup store and tunes its re-occurrence policy.
// With re-opening enabled, a remediated fingerprint that reappears in a
// later extraction is re-opened instead of suppressed forever.
type StoreSettings struct {
	Path               string `yaml:"path"`
	ReopenOnRecurrence *bool  `yaml:"reopen_on_recurrence"`
}

// ReopenEnabled reports the effective re-occurrence policy; unset defaults on.
func (s StoreSettings) ReopenEnabled() bool {
	return s.ReopenOnRecurrence == nil || *s.ReopenOnRecurrence
}

// ExecutionSettings controls how remediation commands run.
type ExecutionSettings struct {
	Shell        string `yaml:"shell"`
	ExcerptBytes int    `yaml:"excerpt_bytes"`
}

// SecuritySettings defines guardrail behavior.
type SecuritySettings struct {
	Enabled   *bool  `yaml:"enabled"`
	RulesFile string `yaml:"rules_file"`
}

// GuardrailEnabled reports the effective setting; unset defaults on.
func (s SecuritySettings) GuardrailEnabled() bool {
	return s.Enabled == nil || *s.Enabled
}
