// Package routeconfig loads a tenant's per-project route configuration: a
// document with a name and a map from path pattern to the sequence of
// method/handler pairs served under it.
package routeconfig

import (
	"github.com/edgerun/edgerun/apperrors"
	"github.com/edgerun/edgerun/router"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// RawRoute is one method/handler entry as it appears in YAML, before the
// method string is validated against the closed enumeration.
type RawRoute struct {
	Method  string `yaml:"method" validate:"required"`
	Handler string `yaml:"handler" validate:"required"`
}

// ProjectConfig is the document consumed from a tenant's build output:
// top-level name plus a map of path pattern to its route entries. Map
// iteration order is not semantically significant to matching.
type ProjectConfig struct {
	Name   string                `yaml:"name" validate:"required"`
	Routes map[string][]RawRoute `yaml:"routes" validate:"required"`
}

var validate = validator.New()

// Parse decodes and validates a ProjectConfig document.
func Parse(data []byte) (*ProjectConfig, error) {
	var cfg ProjectConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, apperrors.Configf("invalid route configuration: %v", err)
	}

	if err := validate.Struct(&cfg); err != nil {
		return nil, apperrors.Configf("invalid route configuration: %v", err)
	}

	return &cfg, nil
}

// RouteDescriptions flattens the path -> []RawRoute map into the sequence
// router.Build expects, canonicalizing each method string and rejecting
// anything outside the closed enumeration.
func (c *ProjectConfig) RouteDescriptions() ([]router.RouteDescription, error) {
	var descriptions []router.RouteDescription

	for path, raws := range c.Routes {
		for _, raw := range raws {
			method, err := router.ParseMethod(raw.Method)
			if err != nil {
				return nil, apperrors.Configf("path %q: %v", path, err)
			}
			descriptions = append(descriptions, router.RouteDescription{
				Path:    path,
				Method:  method,
				Handler: raw.Handler,
			})
		}
	}

	return descriptions, nil
}
