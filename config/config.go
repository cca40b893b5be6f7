package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/jfrog/packagecloud-publisher-go/utils"
	"gopkg.in/yaml.v3"
)

const (
	DefaultConfigFile = ".packagecloud.toml"
	// Overrides the token of the configured user.
	TokenEnv = "PACKAGECLOUD_TOKEN"
)

var ErrCredentialsNotFound = errors.New("credentials not found")

type Config struct {
	Url         string        `toml:"url" yaml:"url"`
	Username    string        `toml:"username" yaml:"username"`
	Repository  string        `toml:"repository" yaml:"repository"`
	Distro      string        `toml:"distro" yaml:"distro"`
	Workspace   string        `toml:"workspace" yaml:"workspace"`
	Files       []File        `toml:"files" yaml:"files"`
	Credentials []Credentials `toml:"credentials" yaml:"credentials"`
	Env         EnvConfig     `toml:"env" yaml:"env"`
	Metrics     MetricsConfig `toml:"metrics" yaml:"metrics"`
}

// File is a build artifact to publish. Path may reference build variables ($VAR or ${VAR}).
type File struct {
	Name string `toml:"name" yaml:"name"`
	Path string `toml:"path" yaml:"path"`
}

type Credentials struct {
	Username string `toml:"username" yaml:"username"`
	Token    string `toml:"token" yaml:"token"`
}

type EnvConfig struct {
	// Wildcard patterns of environment variables left out of the publish report.
	Exclude []string `toml:"exclude" yaml:"exclude"`
}

type MetricsConfig struct {
	Pushgateway string `toml:"pushgateway" yaml:"pushgateway"`
	Job         string `toml:"job" yaml:"job"`
}

// Load reads a TOML or YAML (.yaml, .yml) configuration file.
func Load(path string) (*Config, error) {
	config := &Config{}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if err = yaml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed parsing %s: %w", path, err)
		}
	default:
		if _, err := toml.DecodeFile(path, config); err != nil {
			return nil, fmt.Errorf("failed parsing %s: %w", path, err)
		}
	}
	return config, nil
}

// Find returns the path of the default configuration file in dir or its closest parent.
// An empty path is returned if there is none.
func Find(dir string) (string, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}
	found, err := utils.FindFileInDirAndParents(dir, DefaultConfigFile)
	if err != nil {
		if _, statErr := os.Stat(dir); statErr == nil {
			return "", nil
		}
		return "", err
	}
	return filepath.Join(found, DefaultConfigFile), nil
}

// CredentialsForUser returns the credentials configured for username.
// When set, the PACKAGECLOUD_TOKEN environment variable replaces the configured token.
func (c *Config) CredentialsForUser(username string) (Credentials, error) {
	token, fromEnv := os.LookupEnv(TokenEnv)
	for _, credentials := range c.Credentials {
		if credentials.Username == username {
			if fromEnv {
				credentials.Token = token
			}
			return credentials, nil
		}
	}
	if fromEnv && username != "" {
		return Credentials{Username: username, Token: token}, nil
	}
	return Credentials{}, fmt.Errorf("%w for user '%s'", ErrCredentialsNotFound, username)
}
