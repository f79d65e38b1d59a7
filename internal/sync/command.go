package sync

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/graknlabs/depsync/internal/execshell"
	"github.com/graknlabs/depsync/internal/gitrepo"
	"github.com/graknlabs/depsync/internal/utils/flags"
)

const (
	commandUseConstant              = "sync"
	commandShortDescriptionConstant = "Propagate a dependency's latest revision into dependent repositories"
	commandLongDescriptionConstant  = "sync resolves the latest revision of a dependency repository branch and rewrites the pinned revision in every dependent repository's workspace manifest, committing and pushing each change."

	dependencyFlagNameConstant        = "dependency"
	dependencyFlagDescriptionConstant = "Dependency reference in repository:branch form"
	dependentFlagNameConstant         = "user"
	dependentFlagDescriptionConstant  = "Dependent reference in repository:branch form (repeatable or comma-separated)"
	dryRunFlagNameConstant            = "dry-run"
	dryRunFlagDescriptionConstant     = "Report intended updates without mutating manifests or pushing"

	forkedBuildMessageConstant          = "not building the upstream repository; skipping dependency sync\n"
	outcomeReportTemplateConstant       = "%s: %s (%s)\n"
	markRequiredFailureTemplateConstant = "failed to mark --%s required: %w"
)

// LoggerProvider yields a zap logger for command execution.
type LoggerProvider func() *zap.Logger

// CommandBuilder assembles the sync command.
type CommandBuilder struct {
	LoggerProvider               LoggerProvider
	GitExecutor                  GitExecutor
	EnvironmentLookup            EnvironmentLookup
	HumanReadableLoggingProvider func() bool
	ConfigurationProvider        func() Configuration
}

// Build constructs the sync command.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	var dryRunToggle bool

	command := &cobra.Command{
		Use:   commandUseConstant,
		Short: commandShortDescriptionConstant,
		Long:  commandLongDescriptionConstant,
		Args:  cobra.NoArgs,
		RunE: func(command *cobra.Command, arguments []string) error {
			return builder.run(command, dryRunToggle)
		},
	}

	command.Flags().String(dependencyFlagNameConstant, "", dependencyFlagDescriptionConstant)
	command.Flags().StringSlice(dependentFlagNameConstant, nil, dependentFlagDescriptionConstant)
	flags.AddToggleFlag(command.Flags(), &dryRunToggle, dryRunFlagNameConstant, "", false, dryRunFlagDescriptionConstant)

	if requiredError := command.MarkFlagRequired(dependencyFlagNameConstant); requiredError != nil {
		return nil, fmt.Errorf(markRequiredFailureTemplateConstant, dependencyFlagNameConstant, requiredError)
	}
	if requiredError := command.MarkFlagRequired(dependentFlagNameConstant); requiredError != nil {
		return nil, fmt.Errorf(markRequiredFailureTemplateConstant, dependentFlagNameConstant, requiredError)
	}

	return command, nil
}

func (builder *CommandBuilder) run(command *cobra.Command, dryRunRequested bool) error {
	lookupEnvironment := builder.resolveEnvironmentLookup()
	if !IsBuildingUpstream(lookupEnvironment) {
		fmt.Fprint(command.OutOrStdout(), forkedBuildMessageConstant)
		return nil
	}

	credential, credentialError := ResolveCredential(lookupEnvironment)
	if credentialError != nil {
		return credentialError
	}

	dependencyArgument, dependencyFlagError := command.Flags().GetString(dependencyFlagNameConstant)
	if dependencyFlagError != nil {
		return dependencyFlagError
	}
	dependencyReference, dependencyParseError := gitrepo.ParseReference(dependencyArgument)
	if dependencyParseError != nil {
		return dependencyParseError
	}

	dependentArguments, dependentFlagError := command.Flags().GetStringSlice(dependentFlagNameConstant)
	if dependentFlagError != nil {
		return dependentFlagError
	}
	dependentReferences := make([]gitrepo.Reference, 0, len(dependentArguments))
	for _, dependentArgument := range dependentArguments {
		dependentReference, dependentParseError := gitrepo.ParseReference(dependentArgument)
		if dependentParseError != nil {
			return dependentParseError
		}
		dependentReferences = append(dependentReferences, dependentReference)
	}

	logger := builder.resolveLogger()
	gitExecutor, executorError := builder.resolveGitExecutor(logger)
	if executorError != nil {
		return executorError
	}

	configuration := builder.resolveConfiguration()
	service, serviceCreationError := NewService(Dependencies{Executor: gitExecutor, Logger: logger}, configuration, credential)
	if serviceCreationError != nil {
		return serviceCreationError
	}

	runReport, runError := service.Run(command.Context(), Options{
		Dependency:    dependencyReference,
		Dependents:    dependentReferences,
		DryRun:        dryRunRequested || configuration.DryRun,
		FailurePolicy: FailurePolicy(configuration.FailurePolicy),
	})
	for _, dependentResult := range runReport.Results {
		fmt.Fprintf(command.OutOrStdout(), outcomeReportTemplateConstant, dependentResult.Outcome, dependentResult.Dependent, runReport.DependencyRevision)
	}
	return runError
}

func (builder *CommandBuilder) resolveEnvironmentLookup() EnvironmentLookup {
	if builder.EnvironmentLookup != nil {
		return builder.EnvironmentLookup
	}
	return os.Getenv
}

func (builder *CommandBuilder) resolveGitExecutor(logger *zap.Logger) (GitExecutor, error) {
	if builder.GitExecutor != nil {
		return builder.GitExecutor, nil
	}

	humanReadableLogging := false
	if builder.HumanReadableLoggingProvider != nil {
		humanReadableLogging = builder.HumanReadableLoggingProvider()
	}
	shellExecutor, creationError := execshell.NewShellExecutor(logger, execshell.NewOSCommandRunner(), humanReadableLogging)
	if creationError != nil {
		return nil, creationError
	}
	return shellExecutor, nil
}

func (builder *CommandBuilder) resolveConfiguration() Configuration {
	if builder.ConfigurationProvider == nil {
		return DefaultConfiguration()
	}
	return builder.ConfigurationProvider().Sanitize()
}

func (builder *CommandBuilder) resolveLogger() *zap.Logger {
	if builder.LoggerProvider == nil {
		return zap.NewNop()
	}
	logger := builder.LoggerProvider()
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}
