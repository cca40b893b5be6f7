package cienv

import (
	"os"

	"github.com/jfrog/packagecloud-publisher-go/entities"
)

const (
	JenkinsUrlEnvVar         = "JENKINS_URL"
	JenkinsJobNameEnvVar     = "JOB_NAME"
	JenkinsBuildNumberEnvVar = "BUILD_NUMBER"
	JenkinsBuildUrlEnvVar    = "BUILD_URL"

	JenkinsProviderName = "jenkins"
)

type JenkinsProvider struct{}

func init() {
	RegisterProvider(&JenkinsProvider{})
}

func (j *JenkinsProvider) Name() string {
	return JenkinsProviderName
}

func (j *JenkinsProvider) IsActive() bool {
	return os.Getenv(JenkinsUrlEnvVar) != "" && os.Getenv(JenkinsBuildNumberEnvVar) != ""
}

func (j *JenkinsProvider) GetBuild() entities.CiBuild {
	return entities.CiBuild{
		Provider: JenkinsProviderName,
		Job:      os.Getenv(JenkinsJobNameEnvVar),
		Number:   os.Getenv(JenkinsBuildNumberEnvVar),
		Url:      os.Getenv(JenkinsBuildUrlEnvVar),
	}
}
