package cli

import (
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/jfrog/packagecloud-publisher-go/config"
	"github.com/jfrog/packagecloud-publisher-go/publish"
	"github.com/pkg/errors"
	clitool "github.com/urfave/cli/v2"
)

// loadSettings reads the configuration file, if any, and applies the command line flags and arguments on top of it.
func loadSettings(context *clitool.Context) (*config.Config, error) {
	configPath := context.String(configFlag)
	if configPath == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, errors.WithStack(err)
		}
		if configPath, err = config.Find(wd); err != nil {
			return nil, err
		}
	}
	cfg := &config.Config{}
	if configPath != "" {
		var err error
		if cfg, err = config.Load(configPath); err != nil {
			return nil, err
		}
	}

	overrides := map[string]*string{
		urlFlag:       &cfg.Url,
		userFlag:      &cfg.Username,
		repoFlag:      &cfg.Repository,
		distroFlag:    &cfg.Distro,
		workspaceFlag: &cfg.Workspace,
	}
	for flag, value := range overrides {
		if context.IsSet(flag) {
			*value = context.String(flag)
		}
	}
	if context.IsSet(pushgatewayFlag) {
		cfg.Metrics.Pushgateway = context.String(pushgatewayFlag)
	}
	if context.IsSet(jobFlag) {
		cfg.Metrics.Job = context.String(jobFlag)
	}
	if cfg.Workspace == "" {
		cfg.Workspace = "."
	} else if configPath != "" && !strings.Contains(cfg.Workspace, "://") && !filepath.IsAbs(cfg.Workspace) && !context.IsSet(workspaceFlag) {
		// Relative workspaces in a configuration file are relative to the file.
		cfg.Workspace = filepath.Join(filepath.Dir(configPath), cfg.Workspace)
	}

	files, err := parseFileArgs(context.Args().Slice())
	if err != nil {
		return nil, err
	}
	cfg.Files = append(cfg.Files, files...)
	return cfg, nil
}

// parseFileArgs reads "name=path" arguments. A bare path is published under its base name.
func parseFileArgs(args []string) ([]config.File, error) {
	var files []config.File
	for _, arg := range args {
		name, filePath, found := strings.Cut(arg, "=")
		if !found {
			filePath = arg
			name = path.Base(filepath.ToSlash(arg))
		}
		if name == "" || filePath == "" {
			return nil, errors.Errorf("invalid file argument '%s', expected [name=]path", arg)
		}
		files = append(files, config.File{Name: name, Path: filePath})
	}
	return files, nil
}

func candidateFiles(files []config.File) []publish.CandidateFile {
	candidates := make([]publish.CandidateFile, 0, len(files))
	for _, file := range files {
		candidates = append(candidates, publish.CandidateFile{DisplayName: file.Name, SourcePath: file.Path})
	}
	return candidates
}
