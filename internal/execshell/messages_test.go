package execshell_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/graknlabs/depsync/internal/execshell"
)

func TestCommandMessageFormatterDescribesGitSubcommands(testInstance *testing.T) {
	formatter := execshell.CommandMessageFormatter{}

	testCases := []struct {
		name            string
		command         execshell.ShellCommand
		expectedStart   string
		expectedSuccess string
	}{
		{
			name: "ls_remote",
			command: execshell.ShellCommand{
				Name:    execshell.CommandGit,
				Details: execshell.CommandDetails{Arguments: []string{"ls-remote", "https://example.test/repo.git", "main"}},
			},
			expectedStart:   "Querying remote references on https://example.test/repo.git",
			expectedSuccess: "Queried remote references on https://example.test/repo.git",
		},
		{
			name: "clone",
			command: execshell.ShellCommand{
				Name:    execshell.CommandGit,
				Details: execshell.CommandDetails{Arguments: []string{"clone", "https://example.test/repo.git", "/tmp/clone"}},
			},
			expectedStart:   "Cloning https://example.test/repo.git into /tmp/clone",
			expectedSuccess: "Cloned https://example.test/repo.git into /tmp/clone",
		},
		{
			name: "commit",
			command: execshell.ShellCommand{
				Name:    execshell.CommandGit,
				Details: execshell.CommandDetails{Arguments: []string{"commit", "-m", "update dependency"}, WorkingDirectory: "/tmp/clone"},
			},
			expectedStart:   "Creating commit in /tmp/clone with message \"update dependency\"",
			expectedSuccess: "Created commit in /tmp/clone with message \"update dependency\"",
		},
		{
			name: "push",
			command: execshell.ShellCommand{
				Name:    execshell.CommandGit,
				Details: execshell.CommandDetails{Arguments: []string{"push", "https://example.test/repo.git", "main"}, WorkingDirectory: "/tmp/clone"},
			},
			expectedStart:   "Pushing main to https://example.test/repo.git from /tmp/clone",
			expectedSuccess: "Pushed main to https://example.test/repo.git from /tmp/clone",
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			require.Equal(testInstance, testCase.expectedStart, formatter.BuildStartedMessage(testCase.command))
			require.Equal(testInstance, testCase.expectedSuccess, formatter.BuildSuccessMessage(testCase.command))
		})
	}
}

func TestCommandMessageFormatterFailureIncludesStandardError(testInstance *testing.T) {
	formatter := execshell.CommandMessageFormatter{}
	command := execshell.ShellCommand{
		Name:    execshell.CommandGit,
		Details: execshell.CommandDetails{Arguments: []string{"status"}, WorkingDirectory: "/tmp/clone"},
	}
	failureMessage := formatter.BuildFailureMessage(command, execshell.ExecutionResult{ExitCode: 128, StandardError: "not a git repository"})

	require.Equal(testInstance, "Failed to review working tree status in /tmp/clone (exit code 128: not a git repository)", failureMessage)
}
