package sync

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/valyala/fasttemplate"
	"go.uber.org/zap"

	"github.com/graknlabs/depsync/internal/execshell"
	"github.com/graknlabs/depsync/internal/gitrepo"
	"github.com/graknlabs/depsync/internal/manifest"
)

const (
	templateOpeningDelimiterConstant = "{"
	templateClosingDelimiterConstant = "}"
	templateCredentialTagConstant    = "credential"
	templateRepositoryTagConstant    = "repository"
	templateWorkspaceTagConstant     = "workspace"
	templateBranchTagConstant        = "branch"

	manifestFilePermissionsConstant = 0o644

	gitExecutorMissingMessageConstant    = "git executor not configured"
	dependencyMissingMessageConstant     = "dependency reference must be provided"
	dependentsMissingMessageConstant     = "at least one dependent reference must be provided"
	credentialMissingInputMessage        = "credential must be provided"
	manifestReadFailureTemplateConstant  = "failed to read manifest %s of %s: %w"
	manifestWriteFailureTemplateConstant = "failed to write manifest %s of %s: %w"
	markerRewriteFailureTemplateConstant = "marker line of %s in manifest %s of %s: %w"
	dependentSyncFailureTemplateConstant = "failed to sync %s: %w"

	latestRevisionLogMessageConstant  = "resolved latest dependency revision"
	markerAbsentLogMessageConstant    = "dependent declares no dependency marker"
	dryRunLogMessageConstant          = "dry-run: skipping manifest mutation and push"
	dependentFailedLogMessageConstant = "dependent sync failed"
)

// GitExecutor exposes the subset of shell execution used by sync services.
type GitExecutor interface {
	ExecuteGit(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}

// ErrGitExecutorNotConfigured indicates the git executor dependency was missing.
var ErrGitExecutorNotConfigured = errors.New(gitExecutorMissingMessageConstant)

// ErrDependencyNotConfigured indicates no dependency reference was supplied.
var ErrDependencyNotConfigured = errors.New(dependencyMissingMessageConstant)

// ErrDependentsNotConfigured indicates no dependent references were supplied.
var ErrDependentsNotConfigured = errors.New(dependentsMissingMessageConstant)

// ErrCredentialRequired indicates an empty credential was supplied to the service.
var ErrCredentialRequired = errors.New(credentialMissingInputMessage)

// Outcome describes the terminal state of one dependent's synchronization.
type Outcome string

// Dependent synchronization outcomes.
const (
	OutcomeCommitted   Outcome = Outcome("committed")
	OutcomeNoOp        Outcome = Outcome("no-op")
	OutcomeSkipped     Outcome = Outcome("skipped")
	OutcomeWouldCommit Outcome = Outcome("would-commit")
	OutcomeFailed      Outcome = Outcome("failed")
)

// FailurePolicy selects how the orchestrator treats a dependent's failure.
type FailurePolicy string

// Supported failure policies.
const (
	// FailurePolicyAbort stops the run at the first failing dependent,
	// leaving earlier dependents already pushed and later ones untouched.
	FailurePolicyAbort FailurePolicy = FailurePolicy("abort")
	// FailurePolicyContinue isolates failures per dependent and reports the
	// first error once every dependent has been attempted.
	FailurePolicyContinue FailurePolicy = FailurePolicy("continue")
)

// Dependencies enumerates external collaborators required by the Service.
type Dependencies struct {
	Executor GitExecutor
	Logger   *zap.Logger
}

// Options configures one synchronization run.
type Options struct {
	Dependency    gitrepo.Reference
	Dependents    []gitrepo.Reference
	DryRun        bool
	FailurePolicy FailurePolicy
}

// DependentResult captures the outcome observed for a single dependent.
type DependentResult struct {
	Dependent gitrepo.Reference
	Outcome   Outcome
	Failure   error
}

// RunReport summarizes a synchronization run across all attempted dependents.
type RunReport struct {
	DependencyRevision string
	Results            []DependentResult
}

// Service orchestrates dependency reference synchronization across dependents.
type Service struct {
	executor      GitExecutor
	logger        *zap.Logger
	configuration Configuration
	credential    string
	revisions     *RevisionSource
	workingCopies *WorkingCopyProvider
	committer     *ChangeCommitter
}

// NewService constructs a Service from its collaborators and configuration.
func NewService(dependencies Dependencies, configuration Configuration, credential string) (*Service, error) {
	if dependencies.Executor == nil {
		return nil, ErrGitExecutorNotConfigured
	}
	if len(credential) == 0 {
		return nil, ErrCredentialRequired
	}

	serviceLogger := dependencies.Logger
	if serviceLogger == nil {
		serviceLogger = zap.NewNop()
	}

	sanitizedConfiguration := configuration.Sanitize()

	revisionSource, revisionSourceError := NewRevisionSource(dependencies.Executor)
	if revisionSourceError != nil {
		return nil, revisionSourceError
	}

	workingCopyProvider, workingCopyError := NewWorkingCopyProvider(dependencies.Executor, sanitizedConfiguration.CommitterName, sanitizedConfiguration.CommitterEmail)
	if workingCopyError != nil {
		return nil, workingCopyError
	}

	changeCommitter, committerError := NewChangeCommitter(dependencies.Executor, serviceLogger)
	if committerError != nil {
		return nil, committerError
	}

	return &Service{
		executor:      dependencies.Executor,
		logger:        serviceLogger,
		configuration: sanitizedConfiguration,
		credential:    credential,
		revisions:     revisionSource,
		workingCopies: workingCopyProvider,
		committer:     changeCommitter,
	}, nil
}

// Run resolves the dependency's latest revision once and synchronizes every
// dependent in input order. Dependents are processed strictly sequentially;
// the configured failure policy decides whether a failing dependent aborts
// the remainder of the run.
func (service *Service) Run(executionContext context.Context, options Options) (RunReport, error) {
	if len(options.Dependency.Repository) == 0 {
		return RunReport{}, ErrDependencyNotConfigured
	}
	if len(options.Dependents) == 0 {
		return RunReport{}, ErrDependentsNotConfigured
	}

	failurePolicy := options.FailurePolicy
	if failurePolicy != FailurePolicyContinue {
		failurePolicy = FailurePolicyAbort
	}

	dependencyRemoteURL := service.remoteEndpoint(options.Dependency)
	dependencyRevision, revisionError := service.revisions.LatestRevision(executionContext, options.Dependency, dependencyRemoteURL)
	if revisionError != nil {
		return RunReport{}, revisionError
	}

	service.logger.Info(
		latestRevisionLogMessageConstant,
		zap.String(logFieldDependencyConstant, options.Dependency.WorkspaceReference()),
		zap.String(logFieldBranchConstant, options.Dependency.Branch),
		zap.String(logFieldRevisionConstant, dependencyRevision),
	)

	runReport := RunReport{DependencyRevision: dependencyRevision}
	var firstFailure error

	for _, dependent := range options.Dependents {
		dependentOutcome, dependentError := service.syncDependent(executionContext, dependent, options.Dependency, dependencyRevision, options.DryRun)
		if dependentError != nil {
			wrappedFailure := fmt.Errorf(dependentSyncFailureTemplateConstant, dependent, dependentError)
			runReport.Results = append(runReport.Results, DependentResult{Dependent: dependent, Outcome: OutcomeFailed, Failure: wrappedFailure})
			if failurePolicy == FailurePolicyAbort {
				return runReport, wrappedFailure
			}
			service.logger.Error(
				dependentFailedLogMessageConstant,
				zap.String(logFieldDependentConstant, dependent.WorkspaceReference()),
				zap.Error(wrappedFailure),
			)
			if firstFailure == nil {
				firstFailure = wrappedFailure
			}
			continue
		}
		runReport.Results = append(runReport.Results, DependentResult{Dependent: dependent, Outcome: dependentOutcome})
	}

	return runReport, firstFailure
}

func (service *Service) syncDependent(executionContext context.Context, dependent gitrepo.Reference, dependency gitrepo.Reference, dependencyRevision string, dryRun bool) (Outcome, error) {
	dependentRemoteURL := service.remoteEndpoint(dependent)

	workingCopyPath, workingCopyError := service.workingCopies.Obtain(executionContext, dependent, dependentRemoteURL)
	if workingCopyError != nil {
		return OutcomeFailed, workingCopyError
	}

	manifestPath := filepath.Join(workingCopyPath, service.configuration.ManifestFileName)
	manifestContent, readError := os.ReadFile(manifestPath)
	if readError != nil {
		return OutcomeFailed, fmt.Errorf(manifestReadFailureTemplateConstant, service.configuration.ManifestFileName, dependent, readError)
	}

	manifestLines := manifest.SplitLines(string(manifestContent))
	markerIndex, markerFound := manifest.LocateMarker(manifestLines, dependency.MarkerTag())
	if !markerFound {
		service.logger.Info(
			markerAbsentLogMessageConstant,
			zap.String(logFieldDependentConstant, dependent.WorkspaceReference()),
			zap.String(logFieldDependencyConstant, dependency.WorkspaceReference()),
		)
		return OutcomeSkipped, nil
	}

	rewrittenLine, rewriteError := manifest.RewriteRevision(manifestLines[markerIndex], dependencyRevision)
	if rewriteError != nil {
		return OutcomeFailed, fmt.Errorf(markerRewriteFailureTemplateConstant, dependency.WorkspaceReference(), service.configuration.ManifestFileName, dependent, rewriteError)
	}

	referenceUnchanged := rewrittenLine == manifestLines[markerIndex]

	if dryRun {
		service.logger.Info(
			dryRunLogMessageConstant,
			zap.String(logFieldDependentConstant, dependent.WorkspaceReference()),
			zap.String(logFieldRevisionConstant, dependencyRevision),
		)
		if referenceUnchanged {
			return OutcomeNoOp, nil
		}
		return OutcomeWouldCommit, nil
	}

	manifestLines[markerIndex] = rewrittenLine
	if writeError := os.WriteFile(manifestPath, []byte(manifest.JoinLines(manifestLines)), manifestFilePermissionsConstant); writeError != nil {
		return OutcomeFailed, fmt.Errorf(manifestWriteFailureTemplateConstant, service.configuration.ManifestFileName, dependent, writeError)
	}

	return service.committer.CommitIfChanged(executionContext, CommitRequest{
		WorkingCopyPath:    workingCopyPath,
		ManifestFileName:   service.configuration.ManifestFileName,
		RemoteURL:          dependentRemoteURL,
		Dependent:          dependent,
		Dependency:         dependency,
		DependencyRevision: dependencyRevision,
		CommitMessage:      service.commitMessage(dependency),
	})
}

// remoteEndpoint renders the authenticated remote URL for a repository.
func (service *Service) remoteEndpoint(reference gitrepo.Reference) string {
	return fasttemplate.ExecuteStringStd(
		service.configuration.RemoteTemplate,
		templateOpeningDelimiterConstant,
		templateClosingDelimiterConstant,
		map[string]any{
			templateCredentialTagConstant: service.credential,
			templateRepositoryTagConstant: reference.Repository,
		},
	)
}

// commitMessage renders the commit message recorded for a dependency update.
func (service *Service) commitMessage(dependency gitrepo.Reference) string {
	return fasttemplate.ExecuteStringStd(
		service.configuration.CommitMessageTemplate,
		templateOpeningDelimiterConstant,
		templateClosingDelimiterConstant,
		map[string]any{
			templateWorkspaceTagConstant: dependency.WorkspaceIdentifier(),
			templateBranchTagConstant:    dependency.Branch,
		},
	)
}
