package entities

import (
	"bytes"
	"testing"

	cdx "github.com/CycloneDX/cyclonedx-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIncludeEnv(t *testing.T) {
	info := New()
	info.SetEnv(map[string]string{"BUILD_NUMBER": "7", "GIT_BRANCH": "main", "HOME": "/root"})
	info.Properties["other"] = "kept"

	assert.NoError(t, info.IncludeEnv("build_*", "git*"))
	assert.Equal(t, Env{
		PublishEnvPrefix + "BUILD_NUMBER": "7",
		PublishEnvPrefix + "GIT_BRANCH":   "main",
		"other":                           "kept",
	}, info.Properties)
}

func TestExcludeEnv(t *testing.T) {
	info := New()
	info.SetEnv(map[string]string{"PACKAGECLOUD_TOKEN": "secret", "DB_PASSWORD": "secret", "BUILD_NUMBER": "7"})

	assert.NoError(t, info.ExcludeEnv("*password*", "*token*"))
	assert.Equal(t, Env{PublishEnvPrefix + "BUILD_NUMBER": "7"}, info.Properties)
}

func TestFailed(t *testing.T) {
	info := New()
	info.Packages = []PublishedPackage{
		{Name: "a.deb", Status: StatusFailure, Error: "409"},
		{Name: "b.deb", Status: StatusSuccess},
	}
	failed := info.Failed()
	require.Len(t, failed, 1)
	assert.Equal(t, "a.deb", failed[0].Name)
}

func TestToCycloneDxBom(t *testing.T) {
	distroId := 5
	info := New()
	info.Packages = []PublishedPackage{
		{Name: "lib.dsc", Type: SourcePackage, Repository: "repo", DistroVersionId: &distroId, Status: StatusSuccess,
			Checksum: Checksum{Sha1: "s1", Md5: "m5", Sha256: "s256"}},
		{Name: "app.deb", Type: GenericPackage, Repository: "repo", DistroVersionId: &distroId, Status: StatusSuccess},
		{Name: "broken.deb", Type: GenericPackage, Repository: "repo", Status: StatusFailure},
		{Name: "mygem-1.0.gem", Type: GemPackage, Repository: "repo", Status: StatusSuccess},
	}

	bom, err := info.ToCycloneDxBom()
	require.NoError(t, err)
	require.NotNil(t, bom.Components)
	components := *bom.Components
	require.Len(t, components, 3)

	// Sorted by BOMRef, failed packages are left out
	assert.Equal(t, "app.deb", components[0].Name)
	assert.Equal(t, "lib.dsc", components[1].Name)
	assert.Equal(t, "mygem-1.0.gem", components[2].Name)

	assert.Nil(t, components[0].Hashes)
	require.NotNil(t, components[1].Hashes)
	assert.Contains(t, *components[1].Hashes, cdx.Hash{Algorithm: cdx.HashAlgoSHA256, Value: "s256"})
	assert.Contains(t, *components[1].Properties, cdx.Property{Name: "packagecloud:distro_version_id", Value: "5"})
	// Gems carry no distribution
	assert.Len(t, *components[2].Properties, 2)

	var out bytes.Buffer
	assert.NoError(t, cdx.NewBOMEncoder(&out, cdx.BOMFileFormatJSON).Encode(bom))
	assert.Contains(t, out.String(), "lib.dsc")
}

func TestPackageRecordClose(t *testing.T) {
	record := NewPackageRecord(GemPackage, "mygem-1.0.gem", bytes.NewReader([]byte("gem")), "repo", nil)
	assert.NoError(t, record.Close())
	assert.Empty(t, record.SourceFiles)
	assert.Nil(t, record.DistroVersionId)
}
