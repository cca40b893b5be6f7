package cienv

import (
	"os"
	"strings"

	"github.com/jfrog/packagecloud-publisher-go/entities"
)

const (
	// Reference: https://docs.github.com/en/actions/learn-github-actions/environment-variables
	GitHubActionsEnvVar    = "GITHUB_ACTIONS"
	GitHubServerUrlEnvVar  = "GITHUB_SERVER_URL"
	GitHubRepositoryEnvVar = "GITHUB_REPOSITORY"
	GitHubWorkflowEnvVar   = "GITHUB_WORKFLOW"
	GitHubRunIDEnvVar      = "GITHUB_RUN_ID"
	GitHubRunNumberEnvVar  = "GITHUB_RUN_NUMBER"

	GitHubProviderName = "github"
)

type GitHubActionsProvider struct{}

func init() {
	RegisterProvider(&GitHubActionsProvider{})
}

func (g *GitHubActionsProvider) Name() string {
	return GitHubProviderName
}

// IsActive requires GITHUB_ACTIONS=true, and the workflow and run id that are always set in GitHub Actions.
func (g *GitHubActionsProvider) IsActive() bool {
	if os.Getenv(GitHubActionsEnvVar) != "true" {
		return false
	}
	return os.Getenv(GitHubWorkflowEnvVar) != "" && os.Getenv(GitHubRunIDEnvVar) != ""
}

// GetBuild points Url at the workflow run page, when the server and repository are known.
func (g *GitHubActionsProvider) GetBuild() entities.CiBuild {
	build := entities.CiBuild{
		Provider: GitHubProviderName,
		Job:      os.Getenv(GitHubWorkflowEnvVar),
		Number:   os.Getenv(GitHubRunNumberEnvVar),
	}
	serverUrl := strings.TrimSuffix(os.Getenv(GitHubServerUrlEnvVar), "/")
	repository := os.Getenv(GitHubRepositoryEnvVar)
	if serverUrl != "" && repository != "" {
		build.Url = serverUrl + "/" + repository + "/actions/runs/" + os.Getenv(GitHubRunIDEnvVar)
	}
	return build
}
