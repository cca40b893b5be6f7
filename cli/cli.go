package cli

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/jfrog/packagecloud-publisher-go/config"
	"github.com/jfrog/packagecloud-publisher-go/metrics"
	"github.com/jfrog/packagecloud-publisher-go/publish"
	"github.com/jfrog/packagecloud-publisher-go/registry"
	"github.com/jfrog/packagecloud-publisher-go/utils"
	"github.com/jfrog/packagecloud-publisher-go/workspace"
	"github.com/pkg/errors"
	clitool "github.com/urfave/cli/v2"
)

const (
	ToolName = "packagecloud-publisher"
	Version  = "1.0.0"

	configFlag         = "config"
	urlFlag            = "url"
	userFlag           = "user"
	repoFlag           = "repo"
	distroFlag         = "distro"
	workspaceFlag      = "workspace"
	envFlag            = "env"
	upstreamResultFlag = "upstream-result"
	formatFlag         = "format"
	checksumsFlag      = "checksums"
	pushgatewayFlag    = "pushgateway"
	jobFlag            = "job"

	cycloneDxXml  = "cyclonedx/xml"
	cycloneDxJson = "cyclonedx/json"
)

func GetCommands(logger utils.Log) []*clitool.Command {
	configFlags := []clitool.Flag{
		&clitool.StringFlag{
			Name:  configFlag,
			Usage: fmt.Sprintf("[Optional] Path to a TOML or YAML configuration file. Defaults to the closest %s.` `", config.DefaultConfigFile),
		},
		&clitool.StringFlag{
			Name:  urlFlag,
			Usage: fmt.Sprintf("[Optional] packagecloud URL. Defaults to %s.` `", registry.DefaultUrl),
		},
		&clitool.StringFlag{
			Name:  userFlag,
			Usage: "[Optional] packagecloud user whose credentials are used.` `",
		},
		&clitool.StringFlag{
			Name:  repoFlag,
			Usage: "[Optional] Target repository, 'repo' or 'user/repo'.` `",
		},
		&clitool.StringFlag{
			Name:  distroFlag,
			Usage: "[Optional] Numeric distribution version id, or 'gem'.` `",
		},
		&clitool.StringFlag{
			Name:  workspaceFlag,
			Usage: "[Optional] Directory or bucket URL (file://, s3://, gs://) containing the build output. Defaults to the current directory.` `",
		},
	}
	publishFlags := append([]clitool.Flag{
		&clitool.StringSliceFlag{
			Name:  envFlag,
			Usage: "[Optional] Build variable, KEY=VALUE, used to expand file paths. Can be repeated.` `",
		},
		&clitool.StringFlag{
			Name:  upstreamResultFlag,
			Usage: "[Default: SUCCESS] Result of the build that produced the files. Nothing is published for FAILURE and ABORTED.` `",
		},
		&clitool.StringFlag{
			Name:  formatFlag,
			Usage: fmt.Sprintf("[Optional] Set to convert the publish report to a different format. Supported values are '%s' and '%s'.` `", cycloneDxXml, cycloneDxJson),
		},
		&clitool.BoolFlag{
			Name:  checksumsFlag,
			Usage: "[Default: false] Calculate the checksums of the uploaded packages.` `",
		},
		&clitool.StringFlag{
			Name:  pushgatewayFlag,
			Usage: "[Optional] Prometheus Pushgateway URL to push the publish metrics to.` `",
		},
		&clitool.StringFlag{
			Name:  jobFlag,
			Usage: fmt.Sprintf("[Default: %s] Pushgateway job name.` `", metrics.DefaultJob),
		},
	}, configFlags...)

	return []*clitool.Command{
		{
			Name:      "publish",
			Usage:     "Publish build artifacts to a packagecloud repository",
			UsageText: "packagecloud-publisher publish [command options] [name=]path...",
			Flags:     publishFlags,
			Action: func(context *clitool.Context) error {
				return publishAction(context, logger)
			},
		},
		{
			Name:      "distros",
			Usage:     "List the distributions packages can be published to",
			UsageText: "packagecloud-publisher distros [command options]",
			Flags:     configFlags,
			Action: func(context *clitool.Context) error {
				return distrosAction(context)
			},
		},
		{
			Name:      "validate",
			Usage:     "Validate the publish configuration",
			UsageText: "packagecloud-publisher validate [command options] [name=]path...",
			Flags:     configFlags,
			Action: func(context *clitool.Context) error {
				cfg, err := loadSettings(context)
				if err != nil {
					return err
				}
				if err = cfg.Validate(); err != nil {
					return err
				}
				_, err = fmt.Fprintln(context.App.Writer, "Configuration is valid")
				return err
			},
		},
	}
}

func publishAction(context *clitool.Context, logger utils.Log) (err error) {
	format := context.String(formatFlag)
	if err = checkFormat(format); err != nil {
		return err
	}
	cfg, err := loadSettings(context)
	if err != nil {
		return err
	}
	credentials, err := cfg.CredentialsForUser(cfg.Username)
	if err != nil {
		return err
	}
	logger.Info(fmt.Sprintf("Job configured with: { repo: %s, distro: %s, username: %s }", cfg.Repository, cfg.Distro, cfg.Username))

	upstream, err := publish.ParseBuildResult(context.String(upstreamResultFlag))
	if err != nil {
		return err
	}
	extraEnv, err := utils.ParseEnvVars(context.StringSlice(envFlag))
	if err != nil {
		return err
	}
	env := utils.EnvVarsFromOS().Merge(extraEnv)

	ws, err := workspace.Open(context.Context, cfg.Workspace)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := ws.Close(); closeErr != nil && err == nil {
			err = errors.Wrap(closeErr, "failed closing workspace")
		}
	}()

	client := registry.NewClient(registry.ClientConfig{
		Url:       cfg.Url,
		Username:  credentials.Username,
		Token:     credentials.Token,
		UserAgent: ToolName + "/" + Version,
	})
	pipeline := publish.NewPipeline(publish.Config{
		Repository:          cfg.Repository,
		Distro:              publish.DistroSelector(cfg.Distro),
		SupportedExtensions: registry.SupportedExtensions(),
	}, client, ws, env)
	pipeline.SetLogger(logger)
	pipeline.SetCalcChecksums(context.Bool(checksumsFlag))

	started := time.Now()
	runResult := pipeline.Run(context.Context, upstream, candidateFiles(cfg.Files))
	info, err := newPublishInfo(cfg, runResult, env)
	if err != nil {
		return err
	}

	if cfg.Metrics.Pushgateway != "" {
		recorder := metrics.NewRecorder()
		recorder.Observe(info, time.Since(started))
		if pushErr := recorder.Push(context.Context, cfg.Metrics.Pushgateway, cfg.Metrics.Job); pushErr != nil {
			logger.Warn(pushErr.Error())
		}
	}

	if err = printReport(context.App.Writer, info, format); err != nil {
		return err
	}
	if runResult.Skipped {
		return nil
	}
	if runResult.Result == publish.ResultFailure {
		return errors.Errorf("publishing to '%s' failed for %d of %d packages", cfg.Repository, len(info.Failed()), len(info.Packages))
	}
	return nil
}

func distrosAction(context *clitool.Context) error {
	cfg, err := loadSettings(context)
	if err != nil {
		return err
	}
	credentials := cfg.Credentials
	if context.IsSet(userFlag) {
		userCredentials, err := cfg.CredentialsForUser(cfg.Username)
		if err != nil {
			return err
		}
		credentials = []config.Credentials{userCredentials}
	}
	if err = config.CheckDistro(credentials); err != nil {
		return err
	}

	var sources []registry.DistributionsSource
	for _, c := range credentials {
		sources = append(sources, registry.NewClient(registry.ClientConfig{
			Url:       cfg.Url,
			Username:  c.Username,
			Token:     c.Token,
			UserAgent: ToolName + "/" + Version,
		}))
	}
	options, err := registry.FindDistroOptions(context.Context, sources)
	if err != nil {
		return errors.Wrap(err, "failed loading distributions")
	}
	content, err := json.MarshalIndent(options, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(context.App.Writer, string(content))
	return err
}
