// Package cienv detects the CI system running the publisher and describes the build whose files are published.
//
// Every provider checks its own environment variables, at most one is expected to be active.
// Jenkins does not set CI=true, so unlike most detectors no common variable is required.
package cienv

import "github.com/jfrog/packagecloud-publisher-go/entities"

// CIProvider detects a CI system and reads its build details from the environment.
type CIProvider interface {
	Name() string
	IsActive() bool
	GetBuild() entities.CiBuild
}

// Registration happens in init(), the slice is read-only after that.
var providers []CIProvider

// RegisterProvider must be called from init() functions only.
func RegisterProvider(p CIProvider) {
	providers = append(providers, p)
}

// GetActiveProvider returns nil when not running in a supported CI system.
func GetActiveProvider() CIProvider {
	for _, p := range providers {
		if p.IsActive() {
			return p
		}
	}
	return nil
}

// GetCiBuild returns the build being published, or nil outside of CI.
func GetCiBuild() *entities.CiBuild {
	provider := GetActiveProvider()
	if provider == nil {
		return nil
	}
	build := provider.GetBuild()
	return &build
}
