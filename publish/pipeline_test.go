package publish

import (
	"context"
	"errors"
	"testing"

	"github.com/jfrog/packagecloud-publisher-go/entities"
	"github.com/jfrog/packagecloud-publisher-go/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestPipeline(distro DistroSelector, registry Registry, ws Workspace) *Pipeline {
	return NewPipeline(Config{Repository: "repo", Distro: distro, SupportedExtensions: testExtensions}, registry, ws, utils.EnvVars{})
}

func TestRunEndToEnd(t *testing.T) {
	registry := newFakeRegistry()
	registry.contents["lib.dsc"] = files("README.txt")
	ws := newFakeWorkspace(map[string]string{"app.deb": "deb", "README.txt": "readme", "lib.dsc": "Format: 3.0"})
	pipeline := newTestPipeline("5", registry, ws)

	runResult := pipeline.Run(context.Background(), ResultSuccess, []CandidateFile{
		{DisplayName: "app.deb", SourcePath: "app.deb"},
		{DisplayName: "README.txt", SourcePath: "README.txt"},
		{DisplayName: "lib.dsc", SourcePath: "lib.dsc"},
	})

	assert.Equal(t, ResultSuccess, runResult.Result)
	assert.False(t, runResult.Skipped)
	assert.Empty(t, runResult.Errors)

	classified := runResult.Classification.Files
	require.Len(t, classified, 3)
	assert.Equal(t, Accepted, classified[0].Classification)
	assert.Equal(t, Rejected, classified[1].Classification)
	assert.Equal(t, Accepted, classified[2].Classification)

	require.Len(t, runResult.Packages, 2)
	app, lib := runResult.Packages[0], runResult.Packages[1]
	assert.Equal(t, entities.GenericPackage, app.Type)
	assert.Equal(t, 5, *app.DistroVersionId)
	assert.Equal(t, entities.SourcePackage, lib.Type)
	assert.Equal(t, map[string][]byte{"README.txt": []byte("readme")}, lib.SourceFiles)

	assert.Equal(t, []string{"app.deb", "lib.dsc"}, registry.uploaded)
	assert.Equal(t, []string{"README.txt"}, registry.sourceFiles["lib.dsc"])
	// The whole dsc is uploaded even though listing its contents read from it
	assert.Equal(t, "Format: 3.0", registry.payloads["lib.dsc"])
	require.Len(t, runResult.Outcomes, 2)
	assert.True(t, runResult.Outcomes[0].Succeeded())
	assert.True(t, runResult.Outcomes[1].Succeeded())
	// Streamed payloads are released once the run is over
	assert.True(t, ws.allClosed())
}

func TestRunGem(t *testing.T) {
	registry := newFakeRegistry()
	ws := newFakeWorkspace(map[string]string{"pkg/mygem-1.0.gem": "gem"})
	pipeline := newTestPipeline(GemSelector, registry, ws)

	runResult := pipeline.Run(context.Background(), ResultSuccess, []CandidateFile{{DisplayName: "mygem-1.0.gem", SourcePath: "pkg/mygem-1.0.gem"}})

	assert.Equal(t, ResultSuccess, runResult.Result)
	require.Len(t, runResult.Packages, 1)
	assert.Equal(t, entities.GemPackage, runResult.Packages[0].Type)
	assert.Nil(t, runResult.Packages[0].DistroVersionId)
	assert.Equal(t, []string{"mygem-1.0.gem"}, registry.uploaded)
}

func TestRunSkipsBlockedBuilds(t *testing.T) {
	for _, upstream := range []BuildResult{ResultFailure, ResultAborted} {
		registry := newFakeRegistry()
		ws := newFakeWorkspace(map[string]string{"app.deb": "deb"})
		runResult := newTestPipeline("5", registry, ws).Run(context.Background(), upstream, []CandidateFile{{DisplayName: "app.deb", SourcePath: "app.deb"}})

		assert.True(t, runResult.Skipped)
		assert.Equal(t, upstream, runResult.Result)
		assert.Empty(t, registry.uploaded)
		assert.Empty(t, ws.opened)
	}
}

func TestRunUnstableBuildIsPublished(t *testing.T) {
	registry := newFakeRegistry()
	ws := newFakeWorkspace(map[string]string{"app.deb": "deb"})
	runResult := newTestPipeline("5", registry, ws).Run(context.Background(), ResultUnstable, []CandidateFile{{DisplayName: "app.deb", SourcePath: "app.deb"}})

	assert.False(t, runResult.Skipped)
	assert.Equal(t, ResultUnstable, runResult.Result)
	assert.Equal(t, []string{"app.deb"}, registry.uploaded)
}

func TestRunBuildFailureDoesNotStopBatch(t *testing.T) {
	registry := newFakeRegistry()
	ws := newFakeWorkspace(map[string]string{"b.deb": "b"})
	runResult := newTestPipeline("5", registry, ws).Run(context.Background(), ResultSuccess, []CandidateFile{
		{DisplayName: "a.deb", SourcePath: "missing/a.deb"},
		{DisplayName: "b.deb", SourcePath: "b.deb"},
	})

	assert.Equal(t, ResultFailure, runResult.Result)
	require.Len(t, runResult.Errors, 1)
	assert.ErrorIs(t, runResult.Errors[0], ErrFileRead)
	assert.Equal(t, []string{"b.deb"}, registry.uploaded)
}

func TestRunHydrationFailureStillUploads(t *testing.T) {
	registry := newFakeRegistry()
	registry.contentsErr = errors.New("connection reset")
	ws := newFakeWorkspace(map[string]string{"lib.dsc": "Format: 3.0", "lib.tar.gz": "tar"})
	runResult := newTestPipeline("5", registry, ws).Run(context.Background(), ResultSuccess, []CandidateFile{
		{DisplayName: "lib.dsc", SourcePath: "lib.dsc"},
		{DisplayName: "lib.tar.gz", SourcePath: "lib.tar.gz"},
	})

	assert.Equal(t, ResultFailure, runResult.Result)
	require.Len(t, runResult.Errors, 1)
	assert.ErrorIs(t, runResult.Errors[0], ErrHydration)
	assert.Equal(t, []string{"lib.dsc"}, registry.uploaded)
	assert.Empty(t, registry.sourceFiles["lib.dsc"])
	assert.Equal(t, "Format: 3.0", registry.payloads["lib.dsc"])
	assert.True(t, runResult.Outcomes[0].Succeeded())
}

func TestRunAcceptedFilesAreNeverSources(t *testing.T) {
	registry := newFakeRegistry()
	// The registry claims the dsc references a file that was accepted as a package
	registry.contents["lib.dsc"] = files("app.deb", "lib.tar.gz")
	ws := newFakeWorkspace(map[string]string{"lib.dsc": "dsc", "app.deb": "deb", "lib.tar.gz": "tar"})
	runResult := newTestPipeline("5", registry, ws).Run(context.Background(), ResultSuccess, []CandidateFile{
		{DisplayName: "lib.dsc", SourcePath: "lib.dsc"},
		{DisplayName: "app.deb", SourcePath: "app.deb"},
		{DisplayName: "lib.tar.gz", SourcePath: "lib.tar.gz"},
	})

	assert.Equal(t, ResultSuccess, runResult.Result)
	assert.Equal(t, []string{"lib.tar.gz"}, registry.sourceFiles["lib.dsc"])
}

func TestRunWithChecksums(t *testing.T) {
	registry := newFakeRegistry()
	ws := newFakeWorkspace(map[string]string{"app.deb": "deb"})
	pipeline := newTestPipeline("5", registry, ws)
	pipeline.SetCalcChecksums(true)
	// Replacing the logger keeps the checksum setting
	pipeline.SetLogger(&utils.NullLog{})

	runResult := pipeline.Run(context.Background(), ResultSuccess, []CandidateFile{{DisplayName: "app.deb", SourcePath: "app.deb"}})
	require.Len(t, runResult.Outcomes, 1)
	assert.Equal(t, int64(3), runResult.Outcomes[0].Size)
	assert.NotEmpty(t, runResult.Outcomes[0].Checksum.Md5)
}
