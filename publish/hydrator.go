package publish

import (
	"context"
	"fmt"

	"github.com/jfrog/packagecloud-publisher-go/entities"
	"github.com/jfrog/packagecloud-publisher-go/utils"
)

// Hydrator attaches to source packages the sibling files they reference.
type Hydrator struct {
	registry  Registry
	workspace Workspace
	env       Environment
	logger    utils.Log
}

func NewHydrator(registry Registry, workspace Workspace, env Environment, logger utils.Log) *Hydrator {
	return &Hydrator{registry: registry, workspace: workspace, env: env, logger: logger}
}

// Hydrate asks the registry which files pkg references and attaches the ones found in rejected.
// Referenced files missing from rejected are skipped, the registry rejects the upload if they are required.
// The payload's read position is restored before returning. On error pkg keeps the files attached so far.
func (h *Hydrator) Hydrate(ctx context.Context, pkg *entities.PackageRecord, rejected RejectedFileIndex) error {
	sourceFiles := map[string][]byte{}
	err := utils.RestorePosition(pkg.Payload, func() error {
		contents, err := h.registry.PackageContents(ctx, pkg)
		if err != nil {
			return err
		}
		for _, file := range contents {
			candidate, found := rejected.Lookup(file.Filename)
			if !found {
				continue
			}
			h.logger.Info(prefixed("found dsc component %s", candidate.DisplayName))
			content, err := readFile(ctx, h.workspace, h.env.Expand(candidate.SourcePath))
			if err != nil {
				return fmt.Errorf("reading %s: %w", candidate.DisplayName, err)
			}
			sourceFiles[file.Filename] = content
		}
		return nil
	})
	pkg.SourceFiles = sourceFiles
	if err != nil {
		return newError(ErrHydration, pkg.Filename, err)
	}
	return nil
}
