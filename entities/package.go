package entities

import (
	"io"
)

type PackageType string

const (
	// Debian source control file, references its sibling files by name.
	SourcePackage  PackageType = "dsc"
	GemPackage     PackageType = "gem"
	GenericPackage PackageType = "generic"
)

// PackageRecord is a single package ready to be uploaded to a packagecloud repository.
type PackageRecord struct {
	Filename string
	Type     PackageType
	// Payload must stay seekable, a source package's payload is read while listing its contents and again when uploaded.
	Payload    io.ReadSeeker
	Repository string
	// DistroVersionId is nil for gems.
	DistroVersionId *int
	// SourceFiles maps the file names referenced by a source package to their content.
	SourceFiles map[string][]byte
}

func NewPackageRecord(packageType PackageType, filename string, payload io.ReadSeeker, repository string, distroVersionId *int) *PackageRecord {
	return &PackageRecord{
		Filename:        filename,
		Type:            packageType,
		Payload:         payload,
		Repository:      repository,
		DistroVersionId: distroVersionId,
		SourceFiles:     map[string][]byte{},
	}
}

// Close releases the payload if it is backed by an open stream.
func (p *PackageRecord) Close() error {
	if closer, ok := p.Payload.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

// PackageFile is a file declared in a package's contents listing.
type PackageFile struct {
	Filename string `json:"filename"`
	Size     int64  `json:"size,omitempty"`
	Md5      string `json:"md5sum,omitempty"`
}

type Distributions struct {
	Deb []Distribution `json:"deb,omitempty"`
	Rpm []Distribution `json:"rpm,omitempty"`
	Dsc []Distribution `json:"dsc,omitempty"`
}

type Distribution struct {
	DisplayName string          `json:"display_name"`
	IndexName   string          `json:"index_name,omitempty"`
	Versions    []DistroVersion `json:"versions"`
}

type DistroVersion struct {
	Id          int    `json:"id"`
	DisplayName string `json:"display_name"`
	IndexName   string `json:"index_name,omitempty"`
}
