package main

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xeipuuv/gojsonschema"
)

func TestDebSchema(t *testing.T) {
	validatePublishReportSchema(t, "5", map[string]string{"app_1.0_amd64.deb": "deb", "README.txt": "readme"})
}

func TestSourcePackageSchema(t *testing.T) {
	validatePublishReportSchema(t, "5", map[string]string{"lib.dsc": "Format: 3.0", "lib.orig.tar.gz": "tarball"})
}

func TestGemSchema(t *testing.T) {
	validatePublishReportSchema(t, "gem", map[string]string{"mygem-1.0.gem": "gem"})
}

// Validate the publish report of a run against the publish report schema.
// t      - The testing object
// distro - Distribution version id or "gem"
// files  - Workspace files to publish, by name
func validatePublishReportSchema(t *testing.T, distro string, files map[string]string) {
	// Load publish report schema
	schema, err := os.ReadFile("publish-report-schema.json")
	require.NoError(t, err)
	schemaLoader := gojsonschema.NewBytesLoader(schema)

	// Generate publish report
	reportContent := generatePublishReport(t, distro, files)
	documentLoader := gojsonschema.NewBytesLoader(reportContent)

	// Validate publish report schema
	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	assert.NoError(t, err)
	assert.True(t, result.Valid(), result.Errors())
}

// Publish files to a fake packagecloud server by running "packagecloud-publisher publish".
// Returns the publish report.
func generatePublishReport(t *testing.T, distro string, files map[string]string) []byte {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if filepath.Base(r.URL.Path) == "contents.json" {
			_, _ = w.Write([]byte(`{"files":[{"filename":"lib.orig.tar.gz","size":7,"md5sum":"x"}]}`))
			return
		}
		w.WriteHeader(http.StatusCreated)
	}))
	defer server.Close()

	workspace := t.TempDir()
	var names []string
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(workspace, name), []byte(content), 0644))
		names = append(names, name)
	}
	configPath := filepath.Join(t.TempDir(), "packagecloud.toml")
	require.NoError(t, os.WriteFile(configPath, nil, 0644))
	t.Setenv("PACKAGECLOUD_TOKEN", "token")

	// Save old state
	oldArgs := os.Args
	oldStdout := os.Stdout

	// Create a commandOutput file
	commandOutput, err := os.CreateTemp("", "output")
	require.NoError(t, err)

	defer func() {
		os.Stdout = oldStdout
		os.Args = oldArgs
		assert.NoError(t, commandOutput.Close())
		assert.NoError(t, os.Remove(commandOutput.Name()))
	}()

	// Execute command with output redirection to a temp file
	os.Stdout = commandOutput
	os.Args = append([]string{"packagecloud-publisher", "publish",
		"--config", configPath,
		"--url", server.URL, "--user", "jfrog", "--repo", "release", "--distro", distro,
		"--workspace", workspace, "--checksums"}, names...)
	main()

	// Read output
	content, err := os.ReadFile(commandOutput.Name())
	assert.NoError(t, err)
	assert.NotEmpty(t, content)
	return content
}
