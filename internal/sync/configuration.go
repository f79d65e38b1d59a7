package sync

import "strings"

const (
	defaultRemoteTemplateConstant        = "https://{credential}@github.com/graknlabs/{repository}.git"
	defaultManifestFileNameConstant      = "WORKSPACE"
	defaultCommitMessageTemplateConstant = "update @{workspace} dependency to latest {branch}"
	defaultCommitterNameConstant         = "Grabl"
	defaultCommitterEmailConstant        = "grabl@grakn.ai"

	remoteTemplateConfigKeyConstant        = "remote_template"
	manifestFileConfigKeyConstant          = "manifest_file"
	commitMessageTemplateConfigKeyConstant = "commit_message_template"
	committerNameConfigKeyConstant         = "committer_name"
	committerEmailConfigKeyConstant        = "committer_email"
	failurePolicyConfigKeyConstant         = "failure_policy"
	dryRunConfigKeyConstant                = "dry_run"
	configurationKeySeparatorConstant      = "."
)

// Configuration captures the persisted settings for the sync command.
type Configuration struct {
	RemoteTemplate        string `mapstructure:"remote_template" yaml:"remote_template"`
	ManifestFileName      string `mapstructure:"manifest_file" yaml:"manifest_file"`
	CommitMessageTemplate string `mapstructure:"commit_message_template" yaml:"commit_message_template"`
	CommitterName         string `mapstructure:"committer_name" yaml:"committer_name"`
	CommitterEmail        string `mapstructure:"committer_email" yaml:"committer_email"`
	FailurePolicy         string `mapstructure:"failure_policy" yaml:"failure_policy"`
	DryRun                bool   `mapstructure:"dry_run" yaml:"dry_run"`
}

// DefaultConfiguration returns the built-in sync settings.
func DefaultConfiguration() Configuration {
	return Configuration{
		RemoteTemplate:        defaultRemoteTemplateConstant,
		ManifestFileName:      defaultManifestFileNameConstant,
		CommitMessageTemplate: defaultCommitMessageTemplateConstant,
		CommitterName:         defaultCommitterNameConstant,
		CommitterEmail:        defaultCommitterEmailConstant,
		FailurePolicy:         string(FailurePolicyAbort),
	}
}

// DefaultConfigurationValues exposes default values keyed for configuration loading.
func DefaultConfigurationValues(configurationKeyPrefix string) map[string]any {
	defaults := DefaultConfiguration()
	prefixedKey := func(configurationKey string) string {
		if len(configurationKeyPrefix) == 0 {
			return configurationKey
		}
		return configurationKeyPrefix + configurationKeySeparatorConstant + configurationKey
	}

	return map[string]any{
		prefixedKey(remoteTemplateConfigKeyConstant):        defaults.RemoteTemplate,
		prefixedKey(manifestFileConfigKeyConstant):          defaults.ManifestFileName,
		prefixedKey(commitMessageTemplateConfigKeyConstant): defaults.CommitMessageTemplate,
		prefixedKey(committerNameConfigKeyConstant):         defaults.CommitterName,
		prefixedKey(committerEmailConfigKeyConstant):        defaults.CommitterEmail,
		prefixedKey(failurePolicyConfigKeyConstant):         defaults.FailurePolicy,
		prefixedKey(dryRunConfigKeyConstant):                defaults.DryRun,
	}
}

// Sanitize trims configured values and substitutes defaults for empty fields.
func (configuration Configuration) Sanitize() Configuration {
	defaults := DefaultConfiguration()
	sanitized := Configuration{
		RemoteTemplate:        strings.TrimSpace(configuration.RemoteTemplate),
		ManifestFileName:      strings.TrimSpace(configuration.ManifestFileName),
		CommitMessageTemplate: strings.TrimSpace(configuration.CommitMessageTemplate),
		CommitterName:         strings.TrimSpace(configuration.CommitterName),
		CommitterEmail:        strings.TrimSpace(configuration.CommitterEmail),
		FailurePolicy:         strings.ToLower(strings.TrimSpace(configuration.FailurePolicy)),
		DryRun:                configuration.DryRun,
	}

	if len(sanitized.RemoteTemplate) == 0 {
		sanitized.RemoteTemplate = defaults.RemoteTemplate
	}
	if len(sanitized.ManifestFileName) == 0 {
		sanitized.ManifestFileName = defaults.ManifestFileName
	}
	if len(sanitized.CommitMessageTemplate) == 0 {
		sanitized.CommitMessageTemplate = defaults.CommitMessageTemplate
	}
	if len(sanitized.CommitterName) == 0 {
		sanitized.CommitterName = defaults.CommitterName
	}
	if len(sanitized.CommitterEmail) == 0 {
		sanitized.CommitterEmail = defaults.CommitterEmail
	}
	if sanitized.FailurePolicy != string(FailurePolicyAbort) && sanitized.FailurePolicy != string(FailurePolicyContinue) {
		sanitized.FailurePolicy = defaults.FailurePolicy
	}

	return sanitized
}
