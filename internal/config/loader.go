package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultSettingsFile is the settings file name searched for when --settings
// is not given.
const DefaultSettingsFile = ".htmlgrader"

// ErrSettingsNotFound is returned when the settings file does not exist.
var ErrSettingsNotFound = errors.New("settings file not found")

// HostSettings holds request options for one host.
type HostSettings struct {
	// Cookie is sent as the Cookie header. Format: "name=value; name2=value2".
	Cookie string `yaml:"cookie,omitempty"`

	// Headers are extra request headers.
	Headers map[string]string `yaml:"headers,omitempty"`

	// UserAgent overrides the User-Agent for this host.
	UserAgent string `yaml:"userAgent,omitempty"`
}

// Settings is the structure of the .htmlgrader YAML file.
type Settings struct {
	// Defaults apply to every host unless overridden.
	Defaults HostSettings `yaml:"defaults,omitempty"`

	// Hosts maps a host name (no scheme, no port unless non-default) to its
	// settings.
	Hosts map[string]HostSettings `yaml:"hosts,omitempty"`
}

// NewSettings returns empty settings.
func NewSettings() *Settings {
	return &Settings{Hosts: make(map[string]HostSettings)}
}

// ForHost returns the settings for host merged over the defaults. Host names
// are compared case-insensitively.
func (s *Settings) ForHost(host string) HostSettings {
	result := HostSettings{
		Cookie:    s.Defaults.Cookie,
		UserAgent: s.Defaults.UserAgent,
	}
	if len(s.Defaults.Headers) > 0 {
		result.Headers = make(map[string]string, len(s.Defaults.Headers))
		for k, v := range s.Defaults.Headers {
			result.Headers[k] = v
		}
	}

	hs, ok := s.Hosts[strings.ToLower(host)]
	if !ok {
		return result
	}
	if hs.Cookie != "" {
		result.Cookie = hs.Cookie
	}
	if hs.UserAgent != "" {
		result.UserAgent = hs.UserAgent
	}
	if len(hs.Headers) > 0 {
		if result.Headers == nil {
			result.Headers = make(map[string]string, len(hs.Headers))
		}
		for k, v := range hs.Headers {
			result.Headers[k] = v
		}
	}
	return result
}

// LoadSettings reads a YAML settings file. Host keys are lower-cased.
func LoadSettings(path string) (*Settings, error) {
	data, err := os.ReadFile(path) //nolint:gosec // user-provided settings path is intentional
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrSettingsNotFound
		}
		return nil, err
	}

	var s Settings
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, err
	}

	hosts := make(map[string]HostSettings, len(s.Hosts))
	for host, hs := range s.Hosts {
		hosts[strings.ToLower(host)] = hs
	}
	s.Hosts = hosts

	return &s, nil
}

// FindSettingsFile searches for the settings file in the following order:
// 1. If path is specified, use it directly
// 2. .htmlgrader in the current directory
// 3. config.yaml in the XDG config directory
//
// Returns an empty string when nothing is found.
func FindSettingsFile(path string) string {
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			return path
		}
		return ""
	}

	if cwd, err := os.Getwd(); err == nil {
		candidate := filepath.Join(cwd, DefaultSettingsFile)
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}

	candidate := filepath.Join(XDGConfigDir(), "config.yaml")
	if _, err := os.Stat(candidate); err == nil {
		return candidate
	}

	return ""
}
