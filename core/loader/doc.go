// Package loader provides the plugin-like feature loading system.
//
// Each feature implements the Feature interface:
//
//	type Feature interface {
//	    Name() string
//	    IsEnabled() bool
//	    Load(app fiber.Router) error
//	}
//
// The Manager registers features via Register() and mounts the enabled ones via
// LoadAll(). The status API is the only feature today.
package loader
