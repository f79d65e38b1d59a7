package manifest_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/graknlabs/depsync/internal/manifest"
)

const (
	testMarkerTagConstant = "# sync-marker: do not remove this comment, this is used for sync-dependencies by @graknlabs_grakn_core"
)

func TestSplitLinesPreservesContent(testInstance *testing.T) {
	testCases := []struct {
		name    string
		content string
	}{
		{name: "empty_content", content: ""},
		{name: "single_line_without_terminator", content: "workspace(name = \"graknlabs_docs\")"},
		{name: "trailing_newline", content: "line one\nline two\n"},
		{name: "blank_lines_between_declarations", content: "first\n\n\nlast\n"},
		{name: "windows_line_endings_survive", content: "first\r\nsecond\r\n"},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			splitContent := manifest.SplitLines(testCase.content)
			require.Equal(testInstance, testCase.content, manifest.JoinLines(splitContent))
		})
	}
}

func TestLocateMarker(testInstance *testing.T) {
	testCases := []struct {
		name          string
		lines         []string
		markerTag     string
		expectedIndex int
		expectFound   bool
	}{
		{
			name:        "no_lines",
			lines:       nil,
			markerTag:   testMarkerTagConstant,
			expectFound: false,
		},
		{
			name:        "marker_absent",
			lines:       []string{"workspace(name = \"graknlabs_docs\")\n", "# unrelated comment\n"},
			markerTag:   testMarkerTagConstant,
			expectFound: false,
		},
		{
			name: "marker_present",
			lines: []string{
				"workspace(name = \"graknlabs_docs\")\n",
				"commit = \"aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa\", " + testMarkerTagConstant + "\n",
			},
			markerTag:     testMarkerTagConstant,
			expectedIndex: 1,
			expectFound:   true,
		},
		{
			name: "first_of_multiple_matches_wins",
			lines: []string{
				testMarkerTagConstant + "\n",
				testMarkerTagConstant + "\n",
			},
			markerTag:     testMarkerTagConstant,
			expectedIndex: 0,
			expectFound:   true,
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			lineIndex, markerFound := manifest.LocateMarker(testCase.lines, testCase.markerTag)
			require.Equal(testInstance, testCase.expectFound, markerFound)
			if testCase.expectFound {
				require.Equal(testInstance, testCase.expectedIndex, lineIndex)
			}
		})
	}
}
