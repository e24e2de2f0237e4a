// Package config loads the optional security policy file.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// SecurityConfig is the YAML security policy. Fields left out of the file
// keep their defaults.
type SecurityConfig struct {
	Security struct {
		Auth struct {
			MinPasswordLength int      `yaml:"min_password_length"`
			WeakPasswords     []string `yaml:"weak_passwords"`
		} `yaml:"auth"`
		JWT struct {
			ExpiryHours int `yaml:"expiry_hours"`
		} `yaml:"jwt"`
		CSRF struct {
			Header string   `yaml:"header"`
			Exempt []string `yaml:"exempt"`
		} `yaml:"csrf"`
	} `yaml:"security"`
}

// DefaultSecurityConfig returns the policy used when no file is configured.
func DefaultSecurityConfig() *SecurityConfig {
	c := &SecurityConfig{}
	c.Security.Auth.MinPasswordLength = 12
	c.Security.Auth.WeakPasswords = []string{"password", "123456", "qwerty", "admin", "letmein"}
	c.Security.JWT.ExpiryHours = 24
	c.Security.CSRF.Header = "X-CSRF-Token"
	c.Security.CSRF.Exempt = []string{"/api/csrf-token", "/api/auth/token", "/api/auth/register"}
	return c
}

// LoadSecurityConfig reads path over the defaults. An empty path returns
// the defaults.
func LoadSecurityConfig(path string) (*SecurityConfig, error) {
	config := DefaultSecurityConfig()
	if path == "" {
		return config, nil
	}

	// #nosec G304 -- path comes from the operator's environment
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := validateSecurityConfig(config); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return config, nil
}

func validateSecurityConfig(config *SecurityConfig) error {
	if config.Security.Auth.MinPasswordLength < 8 {
		return errors.New("min_password_length must be at least 8")
	}
	if config.Security.Auth.MinPasswordLength > 72 {
		return errors.New("min_password_length cannot exceed 72")
	}
	if config.Security.JWT.ExpiryHours <= 0 {
		return errors.New("jwt expiry_hours must be positive")
	}
	if strings.TrimSpace(config.Security.CSRF.Header) == "" {
		return errors.New("csrf header is required")
	}
	for _, p := range config.Security.CSRF.Exempt {
		if !strings.HasPrefix(p, "/") {
			return fmt.Errorf("csrf exempt path %q must start with /", p)
		}
	}
	return nil
}

// GetMinPasswordLength returns the minimum password length requirement.
func (c *SecurityConfig) GetMinPasswordLength() int {
	return c.Security.Auth.MinPasswordLength
}

// GetWeakPasswords returns the rejected password prefixes.
func (c *SecurityConfig) GetWeakPasswords() []string {
	return c.Security.Auth.WeakPasswords
}

// GetJWTExpiry returns the lifetime of access tokens.
func (c *SecurityConfig) GetJWTExpiry() time.Duration {
	return time.Duration(c.Security.JWT.ExpiryHours) * time.Hour
}

// GetCSRFHeader returns the header carrying the anti-forgery token.
func (c *SecurityConfig) GetCSRFHeader() string {
	return c.Security.CSRF.Header
}

// GetCSRFExempt returns the mutating paths that need no anti-forgery token.
func (c *SecurityConfig) GetCSRFExempt() []string {
	return c.Security.CSRF.Exempt
}
