package gitrepo_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/graknlabs/depsync/internal/gitrepo"
)

func TestParseReference(testInstance *testing.T) {
	testCases := []struct {
		name              string
		coordinates       string
		expectedReference gitrepo.Reference
		expectError       bool
	}{
		{
			name:              "repository_and_branch",
			coordinates:       "client-python:development",
			expectedReference: gitrepo.Reference{Repository: "client-python", Branch: "development"},
		},
		{
			name:              "surrounding_whitespace_trimmed",
			coordinates:       " docs : master ",
			expectedReference: gitrepo.Reference{Repository: "docs", Branch: "master"},
		},
		{
			name:        "missing_branch_separator",
			coordinates: "docs",
			expectError: true,
		},
		{
			name:        "too_many_separators",
			coordinates: "docs:master:extra",
			expectError: true,
		},
		{
			name:        "empty_repository",
			coordinates: ":master",
			expectError: true,
		},
		{
			name:        "empty_branch",
			coordinates: "docs:",
			expectError: true,
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			parsedReference, parseError := gitrepo.ParseReference(testCase.coordinates)
			if testCase.expectError {
				require.Error(testInstance, parseError)
				parseFailure := gitrepo.ReferenceParseError{}
				require.ErrorAs(testInstance, parseError, &parseFailure)
				return
			}
			require.NoError(testInstance, parseError)
			require.Equal(testInstance, testCase.expectedReference, parsedReference)
		})
	}
}

func TestWorkspaceIdentifierDerivation(testInstance *testing.T) {
	testCases := []struct {
		name              string
		repositoryName    string
		expectedWorkspace string
	}{
		{
			name:              "plain_name_gets_prefix",
			repositoryName:    "docs",
			expectedWorkspace: "graknlabs_docs",
		},
		{
			name:              "dashes_become_underscores",
			repositoryName:    "client-python",
			expectedWorkspace: "graknlabs_client_python",
		},
		{
			name:              "multiple_dashes_all_replaced",
			repositoryName:    "client-nodejs-examples",
			expectedWorkspace: "graknlabs_client_nodejs_examples",
		},
		{
			name:              "legacy_core_repository_mapping",
			repositoryName:    "grakn",
			expectedWorkspace: "graknlabs_grakn_core",
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			reference := gitrepo.Reference{Repository: testCase.repositoryName, Branch: "master"}
			require.Equal(testInstance, testCase.expectedWorkspace, reference.WorkspaceIdentifier())
		})
	}
}

func TestMarkerTagEmbedsWorkspaceIdentifier(testInstance *testing.T) {
	reference := gitrepo.Reference{Repository: "client-java", Branch: "master"}
	expectedMarker := "# sync-marker: do not remove this comment, this is used for sync-dependencies by @graknlabs_client_java"
	require.Equal(testInstance, expectedMarker, reference.MarkerTag())
}

func TestReferenceStringRendersCoordinates(testInstance *testing.T) {
	reference := gitrepo.Reference{Repository: "grakn", Branch: "master"}
	require.Equal(testInstance, "grakn:master", reference.String())
	require.Equal(testInstance, "@graknlabs_grakn_core", reference.WorkspaceReference())
}
