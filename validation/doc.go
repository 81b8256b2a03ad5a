// Package validation provides configuration validation utilities for reqkit.
//
// It supports both struct tag validation (using the validator library) and
// programmatic validation with error collection. Struct tags cover presence
// checks; programmatic checks cover rules tags cannot express, such as an
// enumerated method set.
//
// # Struct Tag Validation
//
//	type ClientConfig struct {
//	    BaseURL string `validate:"omitempty,url"`
//	}
//	err := validation.Validate(cfg)
//
// # Programmatic Validation
//
//	v := validation.New()
//	v.OneOf("method", method, allowed)
//	err := v.Validate()
package validation
