package manifest

import (
	"errors"
	"regexp"
)

const (
	revisionPatternConstant         = "[0-9a-f]{40}"
	firstOccurrenceOnlyConstant     = 1
	noRevisionInLineMessageConstant = "marker line contains no revision identifier"
	invalidRevisionMessageConstant  = "replacement revision is not a 40-character hexadecimal identifier"
	anchoredRevisionPatternConstant = "^" + revisionPatternConstant + "$"
)

var (
	revisionExpression         = regexp.MustCompile(revisionPatternConstant)
	anchoredRevisionExpression = regexp.MustCompile(anchoredRevisionPatternConstant)
)

// ErrNoRevisionInLine indicates a marker-tagged line held no revision identifier to replace.
var ErrNoRevisionInLine = errors.New(noRevisionInLineMessageConstant)

// ErrInvalidRevision indicates the replacement value is not revision-shaped.
var ErrInvalidRevision = errors.New(invalidRevisionMessageConstant)

// IsRevisionIdentifier reports whether the candidate is a 40-character
// lowercase hexadecimal revision identifier.
func IsRevisionIdentifier(candidate string) bool {
	return anchoredRevisionExpression.MatchString(candidate)
}

// RewriteRevision replaces the first revision-shaped substring of the line
// with newRevision, preserving all other content. A line without a revision
// identifier is reported explicitly rather than silently left unchanged.
func RewriteRevision(line string, newRevision string) (string, error) {
	if !IsRevisionIdentifier(newRevision) {
		return line, ErrInvalidRevision
	}

	existingRevision := revisionExpression.FindString(line)
	if len(existingRevision) == 0 {
		return line, ErrNoRevisionInLine
	}

	replacementsRemaining := firstOccurrenceOnlyConstant
	rewrittenLine := revisionExpression.ReplaceAllStringFunc(line, func(matchedRevision string) string {
		if replacementsRemaining == 0 {
			return matchedRevision
		}
		replacementsRemaining--
		return newRevision
	})

	return rewrittenLine, nil
}
