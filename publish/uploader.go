package publish

import (
	"context"
	"io"

	"github.com/jfrog/packagecloud-publisher-go/entities"
	"github.com/jfrog/packagecloud-publisher-go/utils"
)

type UploadOutcome struct {
	Package *entities.PackageRecord
	// Set only when checksum calculation is enabled.
	Checksum entities.Checksum
	Size     int64
	Err      error
}

func (o UploadOutcome) Succeeded() bool {
	return o.Err == nil
}

// UploadDriver uploads packages one after the other. A failed upload never stops the following ones.
type UploadDriver struct {
	registry      Registry
	logger        utils.Log
	calcChecksums bool
}

func NewUploadDriver(registry Registry, logger utils.Log) *UploadDriver {
	return &UploadDriver{registry: registry, logger: logger}
}

// SetCalcChecksums makes the driver checksum every payload before uploading it.
func (d *UploadDriver) SetCalcChecksums(calcChecksums bool) {
	d.calcChecksums = calcChecksums
}

// UploadAll uploads packages in order. The returned result is prior, downgraded to FAILURE if any upload failed.
func (d *UploadDriver) UploadAll(ctx context.Context, packages []*entities.PackageRecord, prior BuildResult) (BuildResult, []UploadOutcome) {
	result := prior
	outcomes := make([]UploadOutcome, 0, len(packages))
	for _, pkg := range packages {
		outcome := d.upload(ctx, pkg)
		if outcome.Succeeded() {
			d.logger.Info(prefixed("uploaded %s to %s", pkg.Filename, pkg.Repository))
		} else {
			result = ResultFailure
			d.logger.Error(prefixed("ERROR %s", outcome.Err))
		}
		outcomes = append(outcomes, outcome)
	}
	return result, outcomes
}

func (d *UploadDriver) upload(ctx context.Context, pkg *entities.PackageRecord) UploadOutcome {
	outcome := UploadOutcome{Package: pkg}
	if d.calcChecksums {
		err := utils.RestorePosition(pkg.Payload, func() (err error) {
			if _, err = pkg.Payload.Seek(0, io.SeekStart); err != nil {
				return
			}
			outcome.Checksum, outcome.Size, err = utils.CalcChecksumDetails(pkg.Payload)
			return
		})
		if err != nil {
			d.logger.Warn(prefixed("could not calculate the checksums of %s: %s", pkg.Filename, err))
		}
	}
	if err := d.registry.PutPackage(ctx, pkg); err != nil {
		outcome.Err = newError(ErrUpload, pkg.Filename, err)
	}
	return outcome
}
