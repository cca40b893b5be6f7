package entities

import (
	"sort"
	"strconv"
	"strings"
	"time"

	cdx "github.com/CycloneDX/cyclonedx-go"
	"github.com/google/uuid"
	"github.com/jfrog/gofrog/stringutils"
)

type PublishStatus string

const (
	TimeFormat       = "2006-01-02T15:04:05.000-0700"
	PublishEnvPrefix = "publish.env."

	StatusSuccess PublishStatus = "SUCCESS"
	StatusFailure PublishStatus = "FAILURE"
	// The upstream build failed, nothing was published.
	StatusSkipped PublishStatus = "SKIPPED"
)

// PublishInfo describes the outcome of a single publish run.
type PublishInfo struct {
	Id            string             `json:"id"`
	Started       string             `json:"started"`
	Agent         *Agent             `json:"agent,omitempty"`
	Ci            *CiBuild           `json:"ci,omitempty"`
	Repository    string             `json:"repository"`
	Distro        string             `json:"distro"`
	Status        PublishStatus      `json:"status"`
	Properties    Env                `json:"properties,omitempty"`
	Packages      []PublishedPackage `json:"packages"`
	RejectedFiles []string           `json:"rejectedFiles,omitempty"`
	Errors        []string           `json:"errors,omitempty"`
}

func New() *PublishInfo {
	return &PublishInfo{
		Id:       uuid.NewString(),
		Started:  time.Now().Format(TimeFormat),
		Agent:    &Agent{},
		Packages: make([]PublishedPackage, 0),
	}
}

func (info *PublishInfo) SetAgent(name, version string) {
	info.Agent = &Agent{Name: name, Version: version}
}

// SetEnv records the given environment variables as properties of the run.
func (info *PublishInfo) SetEnv(env map[string]string) {
	if info.Properties == nil {
		info.Properties = Env{}
	}
	for key, value := range env {
		info.Properties[PublishEnvPrefix+key] = value
	}
}

// IncludeEnv gets one or more wildcard patterns and filters out environment variables that don't match any of them.
func (info *PublishInfo) IncludeEnv(patterns ...string) error {
	var err error
	for key := range info.Properties {
		if !strings.HasPrefix(key, PublishEnvPrefix) {
			continue
		}
		envKey := strings.TrimPrefix(key, PublishEnvPrefix)
		include := false
		for _, filterPattern := range patterns {
			include, err = stringutils.MatchWildcardPattern(strings.ToLower(filterPattern), strings.ToLower(envKey))
			if err != nil {
				return err
			}
			if include {
				break
			}
		}

		if !include {
			delete(info.Properties, key)
		}
	}
	return nil
}

// ExcludeEnv gets one or more wildcard patterns and filters out environment variables that match at least one of them.
func (info *PublishInfo) ExcludeEnv(patterns ...string) error {
	for key := range info.Properties {
		if !strings.HasPrefix(key, PublishEnvPrefix) {
			continue
		}
		envKey := strings.TrimPrefix(key, PublishEnvPrefix)
		for _, filterPattern := range patterns {
			match, err := stringutils.MatchWildcardPattern(strings.ToLower(filterPattern), strings.ToLower(envKey))
			if err != nil {
				return err
			}
			if match {
				delete(info.Properties, key)
				break
			}
		}
	}
	return nil
}

// Failed returns the packages whose upload did not succeed.
func (info *PublishInfo) Failed() []PublishedPackage {
	var failed []PublishedPackage
	for _, pkg := range info.Packages {
		if pkg.Status != StatusSuccess {
			failed = append(failed, pkg)
		}
	}
	return failed
}

// ToCycloneDxBom lists the successfully published packages as CycloneDX components.
func (info *PublishInfo) ToCycloneDxBom() (*cdx.BOM, error) {
	components := []cdx.Component{}
	for _, pkg := range info.Packages {
		if pkg.Status != StatusSuccess {
			continue
		}
		component := cdx.Component{
			BOMRef: pkg.Name,
			Type:   cdx.ComponentTypeLibrary,
			Name:   pkg.Name,
		}
		if !pkg.Checksum.IsEmpty() {
			hashes := []cdx.Hash{
				{
					Algorithm: cdx.HashAlgoSHA256,
					Value:     pkg.Sha256,
				},
				{
					Algorithm: cdx.HashAlgoSHA1,
					Value:     pkg.Sha1,
				},
				{
					Algorithm: cdx.HashAlgoMD5,
					Value:     pkg.Md5,
				},
			}
			component.Hashes = &hashes
		}
		properties := []cdx.Property{
			{Name: "packagecloud:repository", Value: pkg.Repository},
			{Name: "packagecloud:type", Value: string(pkg.Type)},
		}
		if pkg.DistroVersionId != nil {
			properties = append(properties, cdx.Property{Name: "packagecloud:distro_version_id", Value: strconv.Itoa(*pkg.DistroVersionId)})
		}
		component.Properties = &properties
		components = append(components, component)
	}

	sort.Slice(components, func(i, j int) bool {
		return components[i].BOMRef < components[j].BOMRef
	})

	bom := cdx.NewBOM()
	bom.Components = &components
	return bom, nil
}

type Agent struct {
	Name    string `json:"name,omitempty"`
	Version string `json:"version,omitempty"`
}

// CiBuild identifies the CI build whose files were published.
type CiBuild struct {
	Provider string `json:"provider"`
	Job      string `json:"job,omitempty"`
	Number   string `json:"number,omitempty"`
	Url      string `json:"url,omitempty"`
}

type PublishedPackage struct {
	Name            string        `json:"name"`
	Type            PackageType   `json:"type"`
	Repository      string        `json:"repository"`
	DistroVersionId *int          `json:"distroVersionId,omitempty"`
	SourceFiles     []string      `json:"sourceFiles,omitempty"`
	Status          PublishStatus `json:"status"`
	Error           string        `json:"error,omitempty"`
	Size            int64         `json:"size,omitempty"`
	Checksum
}

type Checksum struct {
	Sha1   string `json:"sha1,omitempty"`
	Md5    string `json:"md5,omitempty"`
	Sha256 string `json:"sha256,omitempty"`
}

func (c *Checksum) IsEmpty() bool {
	return c.Md5 == "" && c.Sha1 == "" && c.Sha256 == ""
}

type Env map[string]string
