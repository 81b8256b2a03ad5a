package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kbukum/reqkit/logger"
	"github.com/kbukum/reqkit/validation"
)

// StatusRange is an inclusive range of accepted response status codes.
type StatusRange struct {
	Min int `yaml:"min" mapstructure:"min" validate:"gte=0"`
	Max int `yaml:"max" mapstructure:"max" validate:"gte=0"`
}

// Contains reports whether status falls inside the range.
func (r StatusRange) Contains(status int) bool {
	return status >= r.Min && status <= r.Max
}

// ClientConfig holds file and environment driven client defaults.
// Embed it in an application config or load it directly:
//
//	var cc config.ClientConfig
//	err := config.LoadConfig("payments-api", &cc)
type ClientConfig struct {
	Name          string                       `yaml:"name" mapstructure:"name"`
	BaseURL       string                       `yaml:"base_url" mapstructure:"base_url" validate:"omitempty,url"`
	Method        string                       `yaml:"method" mapstructure:"method" validate:"omitempty,oneof=OPTIONS TRACE CONNECT HEAD GET DELETE POST PUT"`
	Timeout       time.Duration                `yaml:"timeout" mapstructure:"timeout" validate:"gte=0"`
	ValidStatus   StatusRange                  `yaml:"valid_status" mapstructure:"valid_status"`
	Headers       map[string]string            `yaml:"headers" mapstructure:"headers"`
	CommonHeaders map[string]string            `yaml:"common_headers" mapstructure:"common_headers"`
	MethodHeaders map[string]map[string]string `yaml:"method_headers" mapstructure:"method_headers"`
	Params        map[string]any               `yaml:"params" mapstructure:"params"`
	Logging       logger.Config                `yaml:"logging" mapstructure:"logging"`
}

// ApplyDefaults applies default values to the client configuration.
func (c *ClientConfig) ApplyDefaults() {
	if c.Name == "" {
		c.Name = "reqkit"
	}
	c.Method = strings.ToUpper(c.Method)
	if c.Method == "" {
		c.Method = "GET"
	}
	if c.ValidStatus.Min == 0 && c.ValidStatus.Max == 0 {
		c.ValidStatus = StatusRange{Min: 200, Max: 299}
	}
	upper := make(map[string]map[string]string, len(c.MethodHeaders))
	for m, h := range c.MethodHeaders {
		upper[strings.ToUpper(m)] = h
	}
	c.MethodHeaders = upper
	c.Logging.ApplyDefaults()
}

// Validate validates the client configuration.
func (c *ClientConfig) Validate() error {
	v := validation.New().Merge(validation.Validate(c))
	v.Custom(c.ValidStatus.Min <= c.ValidStatus.Max, "valid_status", "min must not exceed max")
	if err := c.Logging.Validate(); err != nil {
		v.AddError("logging", err.Error())
	}
	if appErr := v.Validate(); appErr != nil {
		return fmt.Errorf("config %s: %w", c.Name, appErr)
	}
	return nil
}

// Load loads, defaults and validates a ClientConfig.
func Load(name string, opts ...LoaderOption) (*ClientConfig, error) {
	var cc ClientConfig
	if err := LoadConfig(name, &cc, opts...); err != nil {
		return nil, err
	}
	if cc.Name == "" {
		cc.Name = name
	}
	cc.ApplyDefaults()
	if err := cc.Validate(); err != nil {
		return nil, err
	}
	return &cc, nil
}
