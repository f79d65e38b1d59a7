package manifest

import "strings"

const (
	lineTerminatorConstant = "\n"
)

// SplitLines splits manifest content into lines that retain their original
// terminators so rejoining reproduces the input byte for byte.
func SplitLines(content string) []string {
	if len(content) == 0 {
		return nil
	}
	return strings.SplitAfter(content, lineTerminatorConstant)
}

// JoinLines reassembles lines produced by SplitLines into file content.
func JoinLines(lines []string) string {
	return strings.Join(lines, "")
}

// LocateMarker returns the index of the first line containing the marker tag
// as a literal substring. The second return value reports whether any line
// matched; absence signals that the manifest does not declare the dependency.
func LocateMarker(lines []string, markerTag string) (int, bool) {
	for lineIndex, lineText := range lines {
		if strings.Contains(lineText, markerTag) {
			return lineIndex, true
		}
	}
	return 0, false
}
