package sync

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/graknlabs/depsync/internal/execshell"
	"github.com/graknlabs/depsync/internal/gitrepo"
)

const (
	gitAddSubcommandConstant                = "add"
	gitStatusSubcommandConstant             = "status"
	gitCommitSubcommandConstant             = "commit"
	gitCommitMessageFlagConstant            = "-m"
	gitPushSubcommandConstant               = "push"
	languageEnvironmentVariableNameConstant = "LANG"
	localeOverrideVariableNameConstant      = "LC_ALL"
	localeEnvironmentValueConstant          = "C"
	cleanWorktreeSentinelConstant           = "nothing to commit, working tree clean"
	stageFailureTemplateConstant            = "failed to stage %s in %s: %w"
	statusFailureTemplateConstant           = "failed to inspect working tree status in %s: %w"
	commitFailureTemplateConstant           = "failed to commit dependency update in %s: %w"
	pushFailureTemplateConstant             = "failed to push %s to %s: %w"
	alreadySatisfiedLogMessageConstant      = "dependency already satisfied"
	pushingChangeLogMessageConstant         = "pushing dependency update"
	pushedChangeLogMessageConstant          = "dependency update pushed"
	logFieldDependentConstant               = "dependent"
	logFieldDependencyConstant              = "dependency"
	logFieldRevisionConstant                = "revision"
	logFieldBranchConstant                  = "branch"
)

// CommitRequest describes one staged manifest change awaiting persistence.
type CommitRequest struct {
	WorkingCopyPath    string
	ManifestFileName   string
	RemoteURL          string
	Dependent          gitrepo.Reference
	Dependency         gitrepo.Reference
	DependencyRevision string
	CommitMessage      string
}

// ChangeCommitter persists rewritten manifests: it stages the manifest,
// detects no-op changes through the git status sentinel, and commits and
// pushes genuine updates.
type ChangeCommitter struct {
	executor GitExecutor
	logger   *zap.Logger
}

// NewChangeCommitter constructs a ChangeCommitter from its collaborators.
func NewChangeCommitter(executor GitExecutor, logger *zap.Logger) (*ChangeCommitter, error) {
	if executor == nil {
		return nil, ErrGitExecutorNotConfigured
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ChangeCommitter{executor: executor, logger: logger}, nil
}

// CommitIfChanged stages the manifest and, when the working tree differs from
// its last commit, creates a commit and pushes the dependent's branch to the
// authenticated remote. An unchanged tree reports OutcomeNoOp without
// committing or pushing.
func (committer *ChangeCommitter) CommitIfChanged(executionContext context.Context, request CommitRequest) (Outcome, error) {
	if _, stageError := committer.executor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments:        []string{gitAddSubcommandConstant, request.ManifestFileName},
		WorkingDirectory: request.WorkingCopyPath,
	}); stageError != nil {
		return OutcomeFailed, fmt.Errorf(stageFailureTemplateConstant, request.ManifestFileName, request.Dependent, stageError)
	}

	// LC_ALL outranks LANG in the inherited environment, so both must be
	// pinned for the status sentinel to render in the C locale.
	statusResult, statusError := committer.executor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments:        []string{gitStatusSubcommandConstant},
		WorkingDirectory: request.WorkingCopyPath,
		EnvironmentVariables: map[string]string{
			languageEnvironmentVariableNameConstant: localeEnvironmentValueConstant,
			localeOverrideVariableNameConstant:      localeEnvironmentValueConstant,
		},
	})
	if statusError != nil {
		return OutcomeFailed, fmt.Errorf(statusFailureTemplateConstant, request.Dependent, statusError)
	}

	if strings.Contains(statusResult.StandardOutput, cleanWorktreeSentinelConstant) {
		committer.logger.Info(
			alreadySatisfiedLogMessageConstant,
			zap.String(logFieldDependentConstant, request.Dependent.WorkspaceReference()),
			zap.String(logFieldDependencyConstant, request.Dependency.WorkspaceReference()),
			zap.String(logFieldRevisionConstant, request.DependencyRevision),
		)
		return OutcomeNoOp, nil
	}

	if _, commitError := committer.executor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments:        []string{gitCommitSubcommandConstant, gitCommitMessageFlagConstant, request.CommitMessage},
		WorkingDirectory: request.WorkingCopyPath,
	}); commitError != nil {
		return OutcomeFailed, fmt.Errorf(commitFailureTemplateConstant, request.Dependent, commitError)
	}

	committer.logger.Info(
		pushingChangeLogMessageConstant,
		zap.String(logFieldDependentConstant, request.Dependent.WorkspaceReference()),
		zap.String(logFieldBranchConstant, request.Dependent.Branch),
	)

	if _, pushError := committer.executor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments:        []string{gitPushSubcommandConstant, request.RemoteURL, request.Dependent.Branch},
		WorkingDirectory: request.WorkingCopyPath,
	}); pushError != nil {
		return OutcomeFailed, fmt.Errorf(pushFailureTemplateConstant, request.Dependent.Branch, request.Dependent.Repository, pushError)
	}

	committer.logger.Info(
		pushedChangeLogMessageConstant,
		zap.String(logFieldDependentConstant, request.Dependent.WorkspaceReference()),
		zap.String(logFieldBranchConstant, request.Dependent.Branch),
	)

	return OutcomeCommitted, nil
}
