package publish

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/jfrog/packagecloud-publisher-go/entities"
)

// CandidateFile is a build-produced file considered for publishing.
type CandidateFile struct {
	// The file name as recorded by the build.
	DisplayName string
	// Workspace relative path, may contain $VAR or ${VAR} references.
	SourcePath string
}

type Classification int

const (
	Rejected Classification = iota
	Accepted
)

func (c Classification) String() string {
	if c == Accepted {
		return "accepted"
	}
	return "rejected"
}

type ClassifiedFile struct {
	CandidateFile
	Classification Classification
}

// RejectedFileIndex is a read-only snapshot of the rejected files of a run, keyed by display name.
// When two rejected files share a display name, the later one wins.
type RejectedFileIndex struct {
	files  []CandidateFile
	byName map[string]CandidateFile
}

func NewRejectedFileIndex(files ...CandidateFile) RejectedFileIndex {
	index := RejectedFileIndex{
		files:  make([]CandidateFile, len(files)),
		byName: make(map[string]CandidateFile, len(files)),
	}
	copy(index.files, files)
	for _, file := range files {
		index.byName[file.DisplayName] = file
	}
	return index
}

func (idx RejectedFileIndex) Lookup(displayName string) (CandidateFile, bool) {
	file, ok := idx.byName[displayName]
	return file, ok
}

// Files returns the rejected files in classification order.
func (idx RejectedFileIndex) Files() []CandidateFile {
	files := make([]CandidateFile, len(idx.files))
	copy(files, idx.files)
	return files
}

func (idx RejectedFileIndex) Len() int {
	return len(idx.files)
}

// DistroSelector is either a numeric packagecloud distribution version id, or "gem".
type DistroSelector string

const GemSelector DistroSelector = "gem"

func (s DistroSelector) IsGem() bool {
	return s == GemSelector
}

func (s DistroSelector) DistroVersionId() (int, error) {
	id, err := strconv.Atoi(string(s))
	if err != nil {
		return 0, fmt.Errorf("distribution '%s' is not a numeric distribution version id", s)
	}
	return id, nil
}

// Validate returns an error if the selector is neither "gem" nor numeric.
func (s DistroSelector) Validate() error {
	if s.IsGem() {
		return nil
	}
	_, err := s.DistroVersionId()
	return err
}

// BuildResult is the status of the build whose files are being published.
type BuildResult string

const (
	ResultSuccess  BuildResult = "SUCCESS"
	ResultUnstable BuildResult = "UNSTABLE"
	ResultFailure  BuildResult = "FAILURE"
	ResultAborted  BuildResult = "ABORTED"
)

func ParseBuildResult(value string) (BuildResult, error) {
	switch result := BuildResult(strings.ToUpper(value)); result {
	case ResultSuccess, ResultUnstable, ResultFailure, ResultAborted:
		return result, nil
	case "":
		return ResultSuccess, nil
	default:
		return "", fmt.Errorf("unknown build result '%s'", value)
	}
}

// IsBlocking reports whether nothing should be published for a build with this result.
func (r BuildResult) IsBlocking() bool {
	return r == ResultFailure || r == ResultAborted
}

// Environment expands build variables in path templates.
type Environment interface {
	Expand(template string) string
}

// Workspace gives access to the files produced by the build.
type Workspace interface {
	Open(ctx context.Context, relativePath string) (io.ReadSeekCloser, error)
}

// Registry is the part of the packagecloud client the pipeline uses.
type Registry interface {
	PutPackage(ctx context.Context, pkg *entities.PackageRecord) error
	PackageContents(ctx context.Context, pkg *entities.PackageRecord) ([]entities.PackageFile, error)
}
