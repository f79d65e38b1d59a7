package sync

import (
	"context"
	"fmt"
	"os"

	"github.com/graknlabs/depsync/internal/execshell"
	"github.com/graknlabs/depsync/internal/gitrepo"
)

const (
	gitConfigSubcommandConstant           = "config"
	gitConfigGlobalFlagConstant           = "--global"
	gitUserNameConfigurationKeyConstant   = "user.name"
	gitUserEmailConfigurationKeyConstant  = "user.email"
	gitCloneSubcommandConstant            = "clone"
	gitCheckoutSubcommandConstant         = "checkout"
	cloneDirectoryPatternTemplateConstant = "git.*.%s"
	identityConfigurationFailureTemplate  = "failed to configure commit identity: %w"
	cloneDirectoryFailureTemplateConstant = "failed to create clone directory for %s: %w"
	cloneFailureTemplateConstant          = "failed to clone %s: %w"
	checkoutFailureTemplateConstant       = "failed to checkout branch %s of %s: %w"
)

// WorkingCopyProvider obtains local checkouts of remote repositories, cloning
// each reference at most once per run. Clone directories are left on disk
// after the process exits; callers must not assume automatic reclamation.
type WorkingCopyProvider struct {
	executor           GitExecutor
	committerName      string
	committerEmail     string
	identityConfigured bool
	clonedDirectories  map[string]string
}

// NewWorkingCopyProvider constructs a provider that commits under the supplied identity.
func NewWorkingCopyProvider(executor GitExecutor, committerName string, committerEmail string) (*WorkingCopyProvider, error) {
	if executor == nil {
		return nil, ErrGitExecutorNotConfigured
	}
	return &WorkingCopyProvider{
		executor:          executor,
		committerName:     committerName,
		committerEmail:    committerEmail,
		clonedDirectories: map[string]string{},
	}, nil
}

// Obtain returns a local checkout of the reference's branch, cloning from the
// remote endpoint on first use and returning the memoized path afterwards.
func (provider *WorkingCopyProvider) Obtain(executionContext context.Context, reference gitrepo.Reference, remoteURL string) (string, error) {
	cacheKey := reference.String()
	if cloneDirectory, alreadyCloned := provider.clonedDirectories[cacheKey]; alreadyCloned {
		return cloneDirectory, nil
	}

	if identityError := provider.ensureIdentityConfigured(executionContext); identityError != nil {
		return "", fmt.Errorf(identityConfigurationFailureTemplate, identityError)
	}

	cloneDirectory, directoryError := os.MkdirTemp("", fmt.Sprintf(cloneDirectoryPatternTemplateConstant, reference.Repository))
	if directoryError != nil {
		return "", fmt.Errorf(cloneDirectoryFailureTemplateConstant, reference, directoryError)
	}

	if _, cloneError := provider.executor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments: []string{gitCloneSubcommandConstant, remoteURL, cloneDirectory},
	}); cloneError != nil {
		return "", fmt.Errorf(cloneFailureTemplateConstant, reference, cloneError)
	}

	if _, checkoutError := provider.executor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments:        []string{gitCheckoutSubcommandConstant, reference.Branch},
		WorkingDirectory: cloneDirectory,
	}); checkoutError != nil {
		return "", fmt.Errorf(checkoutFailureTemplateConstant, reference.Branch, reference.Repository, checkoutError)
	}

	provider.clonedDirectories[cacheKey] = cloneDirectory
	return cloneDirectory, nil
}

// ensureIdentityConfigured applies the process-wide commit identity exactly
// once, before the first clone.
func (provider *WorkingCopyProvider) ensureIdentityConfigured(executionContext context.Context) error {
	if provider.identityConfigured {
		return nil
	}

	if _, emailError := provider.executor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments: []string{gitConfigSubcommandConstant, gitConfigGlobalFlagConstant, gitUserEmailConfigurationKeyConstant, provider.committerEmail},
	}); emailError != nil {
		return emailError
	}

	if _, nameError := provider.executor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments: []string{gitConfigSubcommandConstant, gitConfigGlobalFlagConstant, gitUserNameConfigurationKeyConstant, provider.committerName},
	}); nameError != nil {
		return nameError
	}

	provider.identityConfigured = true
	return nil
}
