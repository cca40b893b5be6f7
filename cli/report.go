package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	cdx "github.com/CycloneDX/cyclonedx-go"
	"github.com/jfrog/packagecloud-publisher-go/config"
	"github.com/jfrog/packagecloud-publisher-go/entities"
	"github.com/jfrog/packagecloud-publisher-go/publish"
	"github.com/jfrog/packagecloud-publisher-go/utils"
	"github.com/jfrog/packagecloud-publisher-go/utils/cienv"
	"github.com/pkg/errors"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// Applied when the configuration excludes nothing.
var defaultEnvExclude = []string{"*password*", "*psw*", "*secret*", "*key*", "*token*"}

func newPublishInfo(cfg *config.Config, runResult *publish.RunResult, env utils.EnvVars) (*entities.PublishInfo, error) {
	info := entities.New()
	info.SetAgent(ToolName, Version)
	info.Ci = cienv.GetCiBuild()
	info.Repository = cfg.Repository
	info.Distro = cfg.Distro
	switch {
	case runResult.Skipped:
		info.Status = entities.StatusSkipped
	case runResult.Result == publish.ResultFailure:
		info.Status = entities.StatusFailure
	default:
		info.Status = entities.StatusSuccess
	}

	info.SetEnv(env)
	exclude := cfg.Env.Exclude
	if len(exclude) == 0 {
		exclude = defaultEnvExclude
	}
	if err := info.ExcludeEnv(exclude...); err != nil {
		return nil, err
	}

	for _, file := range runResult.Classification.Rejected.Files() {
		info.RejectedFiles = append(info.RejectedFiles, file.DisplayName)
	}
	for _, err := range runResult.Errors {
		info.Errors = append(info.Errors, err.Error())
		// Files that could not even be built are reported as failed packages.
		var publishErr *publish.Error
		if errors.As(err, &publishErr) && publishErr.Kind != publish.ErrHydration {
			info.Packages = append(info.Packages, entities.PublishedPackage{
				Name:       publishErr.Filename,
				Type:       publish.ResolveType(publishErr.Filename, publish.DistroSelector(cfg.Distro)),
				Repository: cfg.Repository,
				Status:     entities.StatusFailure,
				Error:      publishErr.Error(),
			})
		}
	}
	for _, outcome := range runResult.Outcomes {
		pkg := entities.PublishedPackage{
			Name:            outcome.Package.Filename,
			Type:            outcome.Package.Type,
			Repository:      outcome.Package.Repository,
			DistroVersionId: outcome.Package.DistroVersionId,
			Status:          entities.StatusSuccess,
			Size:            outcome.Size,
			Checksum:        outcome.Checksum,
		}
		if len(outcome.Package.SourceFiles) > 0 {
			pkg.SourceFiles = maps.Keys(outcome.Package.SourceFiles)
			slices.Sort(pkg.SourceFiles)
		}
		if !outcome.Succeeded() {
			pkg.Status = entities.StatusFailure
			pkg.Error = outcome.Err.Error()
		}
		info.Packages = append(info.Packages, pkg)
	}
	return info, nil
}

func checkFormat(format string) error {
	switch format {
	case "", cycloneDxJson, cycloneDxXml:
		return nil
	default:
		return fmt.Errorf("'%s' is not a valid value for '%s'", format, formatFlag)
	}
}

func printReport(w io.Writer, info *entities.PublishInfo, format string) error {
	switch format {
	case cycloneDxXml:
		return encodeBom(w, info, cdx.BOMFileFormatXML)
	case cycloneDxJson:
		return encodeBom(w, info, cdx.BOMFileFormatJSON)
	case "":
		b, err := json.Marshal(info)
		if err != nil {
			return err
		}
		var content bytes.Buffer
		err = json.Indent(&content, b, "", "  ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, content.String())
		return err
	default:
		return checkFormat(format)
	}
}

func encodeBom(w io.Writer, info *entities.PublishInfo, fileFormat cdx.BOMFileFormat) error {
	cdxBom, err := info.ToCycloneDxBom()
	if err != nil {
		return err
	}
	encoder := cdx.NewBOMEncoder(w, fileFormat)
	encoder.SetPretty(true)
	return encoder.Encode(cdxBom)
}
