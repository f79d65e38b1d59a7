package execshell_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/graknlabs/depsync/internal/execshell"
)

const (
	testShellCommandNameConstant        = execshell.CommandName("sh")
	testShellCommandFlagConstant        = "-c"
	testPrintLocaleScriptConstant       = `printf "%s" "$LC_ALL"`
	testInheritedLocaleValueConstant    = "de_DE.UTF-8"
	testLocaleVariableNameConstant      = "LC_ALL"
	testPinnedLocaleValueConstant       = "C"
	testMissingExecutableNameConstant   = execshell.CommandName("depsync-nonexistent-executable")
	testFailingShellScriptConstant      = "exit 7"
	testExpectedFailureExitCodeConstant = 7
)

func TestOSCommandRunnerOverridesInheritedEnvironmentVariables(testInstance *testing.T) {
	testInstance.Setenv(testLocaleVariableNameConstant, testInheritedLocaleValueConstant)

	runner := execshell.NewOSCommandRunner()
	executionResult, runError := runner.Run(context.Background(), execshell.ShellCommand{
		Name: testShellCommandNameConstant,
		Details: execshell.CommandDetails{
			Arguments: []string{testShellCommandFlagConstant, testPrintLocaleScriptConstant},
			EnvironmentVariables: map[string]string{
				testLocaleVariableNameConstant: testPinnedLocaleValueConstant,
			},
		},
	})

	require.NoError(testInstance, runError)
	require.Equal(testInstance, 0, executionResult.ExitCode)
	require.Equal(testInstance, testPinnedLocaleValueConstant, executionResult.StandardOutput)
}

func TestOSCommandRunnerReportsNonZeroExitCodes(testInstance *testing.T) {
	runner := execshell.NewOSCommandRunner()
	executionResult, runError := runner.Run(context.Background(), execshell.ShellCommand{
		Name: testShellCommandNameConstant,
		Details: execshell.CommandDetails{
			Arguments: []string{testShellCommandFlagConstant, testFailingShellScriptConstant},
		},
	})

	require.NoError(testInstance, runError)
	require.Equal(testInstance, testExpectedFailureExitCodeConstant, executionResult.ExitCode)
}

func TestOSCommandRunnerSurfacesStartupFailures(testInstance *testing.T) {
	runner := execshell.NewOSCommandRunner()
	_, runError := runner.Run(context.Background(), execshell.ShellCommand{
		Name: testMissingExecutableNameConstant,
	})

	require.Error(testInstance, runError)
}
