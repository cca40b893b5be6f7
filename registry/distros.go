package registry

import (
	"context"
	"errors"
	"strconv"

	"github.com/jfrog/gofrog/log"
	"github.com/jfrog/packagecloud-publisher-go/entities"
)

const (
	GemDistroValue       = "gem"
	NoDistributionsValue = "-1"
)

// DistroOption is a selectable distribution, Value is what the publisher expects as its distro setting.
type DistroOption struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

type DistributionsSource interface {
	GetDistributions(ctx context.Context) (*entities.Distributions, error)
}

// DistroOptions lists "Gem" followed by every rpm, deb and dsc distribution version.
func DistroOptions(distributions *entities.Distributions) []DistroOption {
	options := []DistroOption{{Label: "Gem", Value: GemDistroValue}}
	for _, group := range [][]entities.Distribution{distributions.Rpm, distributions.Deb, distributions.Dsc} {
		for _, distribution := range group {
			for _, version := range distribution.Versions {
				options = append(options, DistroOption{
					Label: distribution.DisplayName + " (" + version.DisplayName + ")",
					Value: strconv.Itoa(version.Id),
				})
			}
		}
	}
	return options
}

// FindDistroOptions loads the distribution options with the first source whose credentials are accepted.
// Sources rejected as unauthorized are skipped. When none is left, a single "No distributions found" option is returned.
func FindDistroOptions(ctx context.Context, sources []DistributionsSource) ([]DistroOption, error) {
	for _, source := range sources {
		distributions, err := source.GetDistributions(ctx)
		if errors.Is(err, ErrUnauthorized) {
			log.Warn("Credentials invalid, trying another, if available")
			continue
		}
		if err != nil {
			return nil, err
		}
		return DistroOptions(distributions), nil
	}
	return []DistroOption{{Label: "No distributions found", Value: NoDistributionsValue}}, nil
}
