package tests

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/graknlabs/depsync/internal/sync"
)

const (
	masterBranchNameConstant      = "master"
	workspaceFileNameConstant     = "WORKSPACE"
	outdatedRevisionConstant      = "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"
	markedManifestTemplateCont    = "git_repository(\n    commit = \"%REVISION%\", # sync-marker: do not remove this comment, this is used for sync-dependencies by @graknlabs_grakn_core\n)\n"
	unmarkedManifestConstant      = "workspace(name = \"graknlabs_console\")\n"
	expectedCommitSubjectConstant = "update @graknlabs_grakn_core dependency to latest master"
)

func runGitCommand(testInstance *testing.T, workingDirectory string, arguments ...string) string {
	testInstance.Helper()

	command := exec.Command("git", arguments...)
	command.Dir = workingDirectory
	command.Env = append(os.Environ(),
		"GIT_AUTHOR_NAME=Fixture",
		"GIT_AUTHOR_EMAIL=fixture@example.com",
		"GIT_COMMITTER_NAME=Fixture",
		"GIT_COMMITTER_EMAIL=fixture@example.com",
	)

	outputBytes, runError := command.CombinedOutput()
	require.NoError(testInstance, runError, string(outputBytes))
	return string(outputBytes)
}

func createRemoteRepository(testInstance *testing.T, remotesDirectory string, repositoryName string, files map[string]string) string {
	testInstance.Helper()

	remotePath := filepath.Join(remotesDirectory, repositoryName+".git")
	runGitCommand(testInstance, remotesDirectory, "init", "--bare", "--initial-branch", masterBranchNameConstant, remotePath)

	seedDirectory := testInstance.TempDir()
	runGitCommand(testInstance, seedDirectory, "init", "--initial-branch", masterBranchNameConstant)
	for fileName, fileContent := range files {
		require.NoError(testInstance, os.WriteFile(filepath.Join(seedDirectory, fileName), []byte(fileContent), 0o644))
	}
	runGitCommand(testInstance, seedDirectory, "add", "--all")
	runGitCommand(testInstance, seedDirectory, "commit", "--message", "initial commit")
	runGitCommand(testInstance, seedDirectory, "push", remotePath, masterBranchNameConstant)

	return remotePath
}

func remoteHeadRevision(testInstance *testing.T, remotePath string) string {
	testInstance.Helper()
	return strings.TrimSpace(runGitCommand(testInstance, remotePath, "rev-parse", masterBranchNameConstant))
}

func remoteFileContent(testInstance *testing.T, remotePath string, fileName string) string {
	testInstance.Helper()
	return runGitCommand(testInstance, remotePath, "show", masterBranchNameConstant+":"+fileName)
}

func markedManifest(pinnedRevision string) string {
	return strings.Replace(markedManifestTemplateCont, "%REVISION%", pinnedRevision, 1)
}

func executeSyncCommand(testInstance *testing.T, remotesDirectory string, arguments []string) (string, error) {
	testInstance.Helper()

	builder := &sync.CommandBuilder{
		LoggerProvider: func() *zap.Logger { return zap.NewNop() },
		EnvironmentLookup: func(variableName string) string {
			switch variableName {
			case sync.UpstreamIndicatorVariableName:
				return "https://github.com/graknlabs/grakn"
			case sync.CredentialVariableName:
				return "integration-token"
			}
			return ""
		},
		ConfigurationProvider: func() sync.Configuration {
			configuration := sync.DefaultConfiguration()
			configuration.RemoteTemplate = remotesDirectory + "/{repository}.git"
			return configuration
		},
	}
	command, buildError := builder.Build()
	require.NoError(testInstance, buildError)

	outputBuffer := &bytes.Buffer{}
	command.SetOut(outputBuffer)
	command.SetErr(outputBuffer)
	command.SetArgs(arguments)
	command.SetContext(context.Background())

	executionError := command.Execute()
	return outputBuffer.String(), executionError
}

func TestSyncIntegrationUpdatesDependents(testInstance *testing.T) {
	testInstance.Setenv("HOME", testInstance.TempDir())
	remotesDirectory := testInstance.TempDir()

	dependencyRemote := createRemoteRepository(testInstance, remotesDirectory, "grakn", map[string]string{"README.md": "grakn\n"})
	consoleRemote := createRemoteRepository(testInstance, remotesDirectory, "console", map[string]string{workspaceFileNameConstant: markedManifest(outdatedRevisionConstant)})
	workbaseRemote := createRemoteRepository(testInstance, remotesDirectory, "workbase", map[string]string{workspaceFileNameConstant: markedManifest(outdatedRevisionConstant)})

	latestRevision := remoteHeadRevision(testInstance, dependencyRemote)

	output, executionError := executeSyncCommand(testInstance, remotesDirectory, []string{
		"--dependency", "grakn:master",
		"--user", "console:master",
		"--user", "workbase:master",
	})
	require.NoError(testInstance, executionError)
	require.Contains(testInstance, output, "committed: console:master ("+latestRevision+")")
	require.Contains(testInstance, output, "committed: workbase:master ("+latestRevision+")")

	for _, dependentRemote := range []string{consoleRemote, workbaseRemote} {
		require.Equal(testInstance, markedManifest(latestRevision), remoteFileContent(testInstance, dependentRemote, workspaceFileNameConstant))

		commitSubject := strings.TrimSpace(runGitCommand(testInstance, dependentRemote, "log", "-1", "--format=%s", masterBranchNameConstant))
		require.Equal(testInstance, expectedCommitSubjectConstant, commitSubject)

		commitAuthor := strings.TrimSpace(runGitCommand(testInstance, dependentRemote, "log", "-1", "--format=%an:%ae", masterBranchNameConstant))
		require.Equal(testInstance, "Grabl:grabl@grakn.ai", commitAuthor)
	}
}

func TestSyncIntegrationIsIdempotent(testInstance *testing.T) {
	testInstance.Setenv("HOME", testInstance.TempDir())
	remotesDirectory := testInstance.TempDir()

	createRemoteRepository(testInstance, remotesDirectory, "grakn", map[string]string{"README.md": "grakn\n"})
	consoleRemote := createRemoteRepository(testInstance, remotesDirectory, "console", map[string]string{workspaceFileNameConstant: markedManifest(outdatedRevisionConstant)})

	arguments := []string{"--dependency", "grakn:master", "--user", "console:master"}

	firstOutput, firstError := executeSyncCommand(testInstance, remotesDirectory, arguments)
	require.NoError(testInstance, firstError)
	require.Contains(testInstance, firstOutput, "committed: console:master")

	updatedRevision := remoteHeadRevision(testInstance, consoleRemote)

	secondOutput, secondError := executeSyncCommand(testInstance, remotesDirectory, arguments)
	require.NoError(testInstance, secondError)
	require.Contains(testInstance, secondOutput, "no-op: console:master")
	require.Equal(testInstance, updatedRevision, remoteHeadRevision(testInstance, consoleRemote))
}

func TestSyncIntegrationDryRunLeavesRemotesUntouched(testInstance *testing.T) {
	testInstance.Setenv("HOME", testInstance.TempDir())
	remotesDirectory := testInstance.TempDir()

	createRemoteRepository(testInstance, remotesDirectory, "grakn", map[string]string{"README.md": "grakn\n"})
	consoleRemote := createRemoteRepository(testInstance, remotesDirectory, "console", map[string]string{workspaceFileNameConstant: markedManifest(outdatedRevisionConstant)})
	initialRevision := remoteHeadRevision(testInstance, consoleRemote)

	output, executionError := executeSyncCommand(testInstance, remotesDirectory, []string{
		"--dependency", "grakn:master",
		"--user", "console:master",
		"--dry-run",
	})
	require.NoError(testInstance, executionError)
	require.Contains(testInstance, output, "would-commit: console:master")
	require.Equal(testInstance, initialRevision, remoteHeadRevision(testInstance, consoleRemote))
	require.Equal(testInstance, markedManifest(outdatedRevisionConstant), remoteFileContent(testInstance, consoleRemote, workspaceFileNameConstant))
}

func TestSyncIntegrationSkipsUnmarkedDependents(testInstance *testing.T) {
	testInstance.Setenv("HOME", testInstance.TempDir())
	remotesDirectory := testInstance.TempDir()

	createRemoteRepository(testInstance, remotesDirectory, "grakn", map[string]string{"README.md": "grakn\n"})
	consoleRemote := createRemoteRepository(testInstance, remotesDirectory, "console", map[string]string{workspaceFileNameConstant: unmarkedManifestConstant})
	initialRevision := remoteHeadRevision(testInstance, consoleRemote)

	output, executionError := executeSyncCommand(testInstance, remotesDirectory, []string{
		"--dependency", "grakn:master",
		"--user", "console:master",
	})
	require.NoError(testInstance, executionError)
	require.Contains(testInstance, output, "skipped: console:master")
	require.Equal(testInstance, initialRevision, remoteHeadRevision(testInstance, consoleRemote))
}
