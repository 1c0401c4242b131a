package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/trebuchet-org/zkdeploy/internal/domain/config"
	"github.com/trebuchet-org/zkdeploy/internal/domain/models"
)

// InteractiveSelector asks the user to pick or confirm
type InteractiveSelector interface {
	SelectArtifact(ctx context.Context, artifacts []*models.Artifact, prompt string) (*models.Artifact, error)
	Confirm(ctx context.Context, prompt string) (bool, error)
}

// ResolveContract turns a contract reference into a single artifact,
// prompting when a bare name matches several sources.
type ResolveContract struct {
	config    *config.RuntimeConfig
	artifacts ArtifactRepository
	selector  InteractiveSelector
	sink      ProgressSink
}

// NewResolveContract creates a new ResolveContract use case
func NewResolveContract(
	cfg *config.RuntimeConfig,
	artifacts ArtifactRepository,
	selector InteractiveSelector,
	sink ProgressSink,
) *ResolveContract {
	return &ResolveContract{
		config:    cfg,
		artifacts: artifacts,
		selector:  selector,
		sink:      sink,
	}
}

// Run resolves contractRef. Qualified references ("path:Name") and unique
// names resolve directly; ambiguous names go to the selector unless the
// session is non-interactive.
func (uc *ResolveContract) Run(ctx context.Context, contractRef string) (*models.Artifact, error) {
	uc.sink.OnProgress(ctx, ProgressEvent{
		Stage:   "resolving",
		Message: fmt.Sprintf("Resolving contract: %s", contractRef),
		Spinner: true,
	})

	if strings.Contains(contractRef, ":") {
		return uc.artifacts.FindArtifact(ctx, contractRef)
	}

	all, err := uc.artifacts.ListArtifacts(ctx)
	if err != nil {
		return nil, err
	}
	var matches []*models.Artifact
	for _, a := range all {
		if strings.EqualFold(a.Name, contractRef) {
			matches = append(matches, a)
		}
	}

	if len(matches) <= 1 || uc.selector == nil || uc.config.NonInteractive {
		// the repository produces the not-found and ambiguity errors
		return uc.artifacts.FindArtifact(ctx, contractRef)
	}

	sort.Slice(matches, func(i, j int) bool {
		return matches[i].FullyQualifiedName() < matches[j].FullyQualifiedName()
	})
	uc.sink.OnProgress(ctx, ProgressEvent{
		Stage:   "resolving",
		Message: fmt.Sprintf("%d contracts named %s", len(matches), contractRef),
	})
	selected, err := uc.selector.SelectArtifact(ctx, matches, fmt.Sprintf("Multiple contracts found for '%s'. Select one:", contractRef))
	if err != nil {
		return nil, fmt.Errorf("contract selection failed: %w", err)
	}
	return selected, nil
}
