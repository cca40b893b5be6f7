package publish

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"

	"github.com/jfrog/packagecloud-publisher-go/entities"
)

// ResolveType picks the construction rule for a file. Source packages take precedence over the gem selector.
func ResolveType(displayName string, selector DistroSelector) entities.PackageType {
	switch {
	case strings.HasSuffix(displayName, string(entities.SourcePackage)):
		return entities.SourcePackage
	case selector.IsGem():
		return entities.GemPackage
	default:
		return entities.GenericPackage
	}
}

type Builder struct {
	repository string
	distro     DistroSelector
	workspace  Workspace
	env        Environment
}

func NewBuilder(repository string, distro DistroSelector, workspace Workspace, env Environment) *Builder {
	return &Builder{repository: repository, distro: distro, workspace: workspace, env: env}
}

// Build creates the package record of an accepted file.
// Source packages and gems are read into memory. Other packages keep the workspace stream open,
// the caller must Close the returned record.
func (b *Builder) Build(ctx context.Context, file CandidateFile) (*entities.PackageRecord, error) {
	packageType := ResolveType(file.DisplayName, b.distro)
	var distroVersionId *int
	if packageType != entities.GemPackage {
		id, err := b.distro.DistroVersionId()
		if err != nil {
			return nil, newError(ErrInvalidConfiguration, file.DisplayName, err)
		}
		distroVersionId = &id
	}

	stream, err := b.workspace.Open(ctx, b.env.Expand(file.SourcePath))
	if err != nil {
		return nil, newError(ErrFileRead, file.DisplayName, err)
	}
	payload, err := preparePayload(packageType, stream)
	if err != nil {
		return nil, newError(ErrFileRead, file.DisplayName, err)
	}
	return entities.NewPackageRecord(packageType, file.DisplayName, payload, b.repository, distroVersionId), nil
}

func preparePayload(packageType entities.PackageType, stream io.ReadSeekCloser) (io.ReadSeeker, error) {
	if packageType == entities.GenericPackage {
		return stream, nil
	}
	content, err := readAndClose(stream)
	if err != nil {
		return nil, err
	}
	return bytes.NewReader(content), nil
}

func readFile(ctx context.Context, workspace Workspace, path string) ([]byte, error) {
	stream, err := workspace.Open(ctx, path)
	if err != nil {
		return nil, err
	}
	return readAndClose(stream)
}

func readAndClose(stream io.ReadCloser) (content []byte, err error) {
	defer func() {
		err = errors.Join(err, stream.Close())
	}()
	return io.ReadAll(stream)
}
