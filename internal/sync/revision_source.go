package sync

import (
	"context"
	"fmt"
	"strings"

	"github.com/graknlabs/depsync/internal/execshell"
	"github.com/graknlabs/depsync/internal/gitrepo"
	"github.com/graknlabs/depsync/internal/manifest"
)

const (
	gitLSRemoteSubcommandConstant            = "ls-remote"
	revisionQueryFailureTemplateConstant     = "failed to resolve latest revision of %s: %w"
	revisionQueryEmptyOutputTemplateConstant = "remote %s returned no revision for branch %s"
	revisionQueryMalformedOutputTemplate     = "remote %s returned a malformed revision %q for branch %s"
)

// RevisionSource resolves the latest committed revision of a repository
// branch from its remote endpoint. Resolutions are memoized for the lifetime
// of the source, so a reference is queried at most once per run.
type RevisionSource struct {
	executor        GitExecutor
	cachedRevisions map[string]string
}

// NewRevisionSource constructs a RevisionSource backed by the supplied executor.
func NewRevisionSource(executor GitExecutor) (*RevisionSource, error) {
	if executor == nil {
		return nil, ErrGitExecutorNotConfigured
	}
	return &RevisionSource{executor: executor, cachedRevisions: map[string]string{}}, nil
}

// LatestRevision returns the tip revision of the reference's branch on the
// given remote endpoint. The first whitespace-delimited token of the first
// output line is the revision identifier; trailing ref-path tokens are
// discarded.
func (source *RevisionSource) LatestRevision(executionContext context.Context, reference gitrepo.Reference, remoteURL string) (string, error) {
	cacheKey := reference.String()
	if cachedRevision, revisionCached := source.cachedRevisions[cacheKey]; revisionCached {
		return cachedRevision, nil
	}

	executionResult, executionError := source.executor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments: []string{gitLSRemoteSubcommandConstant, remoteURL, reference.Branch},
	})
	if executionError != nil {
		return "", fmt.Errorf(revisionQueryFailureTemplateConstant, reference, executionError)
	}

	outputTokens := strings.Fields(executionResult.StandardOutput)
	if len(outputTokens) == 0 {
		return "", fmt.Errorf(revisionQueryEmptyOutputTemplateConstant, remoteURL, reference.Branch)
	}

	latestRevision := outputTokens[0]
	if !manifest.IsRevisionIdentifier(latestRevision) {
		return "", fmt.Errorf(revisionQueryMalformedOutputTemplate, remoteURL, latestRevision, reference.Branch)
	}

	source.cachedRevisions[cacheKey] = latestRevision
	return latestRevision, nil
}
