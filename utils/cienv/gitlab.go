package cienv

import (
	"os"

	"github.com/jfrog/packagecloud-publisher-go/entities"
)

const (
	// Reference: https://docs.gitlab.com/ee/ci/variables/predefined_variables.html
	GitLabCIEnvVar         = "GITLAB_CI"
	GitLabJobNameEnvVar    = "CI_JOB_NAME"
	GitLabJobIDEnvVar      = "CI_JOB_ID"
	GitLabJobUrlEnvVar     = "CI_JOB_URL"
	GitLabPipelineIDEnvVar = "CI_PIPELINE_ID"

	GitLabProviderName = "gitlab"
)

type GitLabCIProvider struct{}

func init() {
	RegisterProvider(&GitLabCIProvider{})
}

func (g *GitLabCIProvider) Name() string {
	return GitLabProviderName
}

func (g *GitLabCIProvider) IsActive() bool {
	if os.Getenv(GitLabCIEnvVar) != "true" {
		return false
	}
	return os.Getenv(GitLabPipelineIDEnvVar) != "" && os.Getenv(GitLabJobIDEnvVar) != ""
}

func (g *GitLabCIProvider) GetBuild() entities.CiBuild {
	return entities.CiBuild{
		Provider: GitLabProviderName,
		Job:      os.Getenv(GitLabJobNameEnvVar),
		Number:   os.Getenv(GitLabJobIDEnvVar),
		Url:      os.Getenv(GitLabJobUrlEnvVar),
	}
}
