package publish

import (
	"context"
	"errors"
	"fmt"

	"github.com/jfrog/packagecloud-publisher-go/entities"
	"github.com/jfrog/packagecloud-publisher-go/utils"
)

const logPrefix = "[packagecloud]"

func prefixed(format string, a ...interface{}) string {
	return logPrefix + " " + fmt.Sprintf(format, a...)
}

type Config struct {
	Repository          string
	Distro              DistroSelector
	SupportedExtensions []string
}

// Pipeline publishes the files of a single build: classify and build, hydrate source packages, upload.
type Pipeline struct {
	config    Config
	builder   *Builder
	hydrator  *Hydrator
	uploader  *UploadDriver
	registry  Registry
	workspace Workspace
	env       Environment
	logger    utils.Log
}

func NewPipeline(config Config, registry Registry, workspace Workspace, env Environment) *Pipeline {
	p := &Pipeline{
		config:    config,
		builder:   NewBuilder(config.Repository, config.Distro, workspace, env),
		registry:  registry,
		workspace: workspace,
		env:       env,
	}
	p.SetLogger(&utils.NullLog{})
	return p
}

func (p *Pipeline) SetLogger(logger utils.Log) {
	calcChecksums := p.uploader != nil && p.uploader.calcChecksums
	p.logger = logger
	p.hydrator = NewHydrator(p.registry, p.workspace, p.env, logger)
	p.uploader = NewUploadDriver(p.registry, logger)
	p.uploader.SetCalcChecksums(calcChecksums)
}

func (p *Pipeline) SetCalcChecksums(calcChecksums bool) {
	p.uploader.SetCalcChecksums(calcChecksums)
}

type RunResult struct {
	Result BuildResult
	// The upstream build result blocked publishing.
	Skipped        bool
	Classification ClassificationResult
	// Packages built in the first pass, in classification order.
	Packages []*entities.PackageRecord
	// Build and hydration failures. Upload failures are reported in Outcomes.
	Errors   []error
	Outcomes []UploadOutcome
}

// Run publishes files. Per-package failures are logged and recorded, they never stop the other packages.
// Only a FAILURE or ABORTED upstream result skips the whole run.
func (p *Pipeline) Run(ctx context.Context, upstream BuildResult, files []CandidateFile) *RunResult {
	runResult := &RunResult{Result: upstream}
	if upstream.IsBlocking() {
		p.logger.Info(prefixed("build result is %s, skipping publish", upstream))
		runResult.Skipped = true
		return runResult
	}

	// First pass: separate supported packages from the other files and build them.
	runResult.Classification = ClassifyAll(files, p.config.SupportedExtensions)
	runResult.Packages = p.buildPackages(ctx, runResult)
	defer p.closePackages(runResult.Packages)

	// Second pass: attach sibling files to source packages, the rejected files are now all known.
	for _, pkg := range runResult.Packages {
		if pkg.Type != entities.SourcePackage {
			continue
		}
		p.logger.Info(prefixed("detected dsc (debian source) file %s", pkg.Filename))
		if err := p.hydrator.Hydrate(ctx, pkg, runResult.Classification.Rejected); err != nil {
			p.fail(runResult, err)
		}
	}

	// Final pass: upload everything that was built.
	runResult.Result, runResult.Outcomes = p.uploader.UploadAll(ctx, runResult.Packages, runResult.Result)
	return runResult
}

func (p *Pipeline) buildPackages(ctx context.Context, runResult *RunResult) []*entities.PackageRecord {
	var packages []*entities.PackageRecord
	for _, file := range runResult.Classification.Files {
		if file.Classification == Rejected {
			p.logger.Debug(prefixed("skipping unsupported file %s", file.DisplayName))
			continue
		}
		p.logger.Info(prefixed("processing: %s", file.DisplayName))
		pkg, err := p.builder.Build(ctx, file.CandidateFile)
		if err != nil {
			p.fail(runResult, err)
			continue
		}
		packages = append(packages, pkg)
	}
	return packages
}

func (p *Pipeline) fail(runResult *RunResult, err error) {
	runResult.Result = ResultFailure
	runResult.Errors = append(runResult.Errors, err)
	p.logger.Error(prefixed("ERROR %s", err))
}

func (p *Pipeline) closePackages(packages []*entities.PackageRecord) {
	var err error
	for _, pkg := range packages {
		err = errors.Join(err, pkg.Close())
	}
	if err != nil {
		p.logger.Warn(prefixed("failed closing package streams: %s", err))
	}
}
