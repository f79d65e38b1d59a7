package gitrepo

import (
	"fmt"
	"strings"
)

const (
	coordinateSeparatorConstant         = ":"
	coordinatePartCountConstant         = 2
	workspacePrefixConstant             = "graknlabs_"
	coreRepositoryNameConstant          = "grakn"
	coreWorkspaceIdentifierConstant     = workspacePrefixConstant + "grakn_core"
	repositoryNameDashConstant          = "-"
	repositoryNameUnderscoreConstant    = "_"
	markerTagTemplateConstant           = "# sync-marker: do not remove this comment, this is used for sync-dependencies by @%s"
	referenceDisplayTemplateConstant    = "%s:%s"
	referenceParseErrorTemplateConstant = "%s: %s"
	malformedCoordinatesMessageConstant = "repository coordinates must be in \"repository:branch\" form"
	emptyRepositoryNameMessageConstant  = "repository name must be non-empty"
	emptyBranchNameMessageConstant      = "branch name must be non-empty"
	workspaceReferencePrefixConstant    = "@"
	workspaceReferenceTemplateConstant  = workspaceReferencePrefixConstant + "%s"
)

// ReferenceParseError indicates repository coordinates could not be parsed.
type ReferenceParseError struct {
	Input   string
	Message string
}

// Error describes the parse failure.
func (parseError ReferenceParseError) Error() string {
	return fmt.Sprintf(referenceParseErrorTemplateConstant, parseError.Input, parseError.Message)
}

// Reference identifies one repository and branch pair.
type Reference struct {
	Repository string
	Branch     string
}

// ParseReference converts a "repository:branch" coordinate token into a Reference.
func ParseReference(coordinates string) (Reference, error) {
	coordinateParts := strings.Split(coordinates, coordinateSeparatorConstant)
	if len(coordinateParts) != coordinatePartCountConstant {
		return Reference{}, ReferenceParseError{Input: coordinates, Message: malformedCoordinatesMessageConstant}
	}

	repositoryName := strings.TrimSpace(coordinateParts[0])
	if len(repositoryName) == 0 {
		return Reference{}, ReferenceParseError{Input: coordinates, Message: emptyRepositoryNameMessageConstant}
	}

	branchName := strings.TrimSpace(coordinateParts[1])
	if len(branchName) == 0 {
		return Reference{}, ReferenceParseError{Input: coordinates, Message: emptyBranchNameMessageConstant}
	}

	return Reference{Repository: repositoryName, Branch: branchName}, nil
}

// String renders the reference in its canonical repository:branch form.
func (reference Reference) String() string {
	return fmt.Sprintf(referenceDisplayTemplateConstant, reference.Repository, reference.Branch)
}

// WorkspaceIdentifier derives the Bazel workspace name for the repository.
// The legacy core repository keeps its historical workspace name; every other
// repository follows the prefixed dash-to-underscore convention.
func (reference Reference) WorkspaceIdentifier() string {
	if reference.Repository == coreRepositoryNameConstant {
		return coreWorkspaceIdentifierConstant
	}
	return workspacePrefixConstant + strings.ReplaceAll(reference.Repository, repositoryNameDashConstant, repositoryNameUnderscoreConstant)
}

// WorkspaceReference renders the workspace identifier with its @ prefix for diagnostics.
func (reference Reference) WorkspaceReference() string {
	return fmt.Sprintf(workspaceReferenceTemplateConstant, reference.WorkspaceIdentifier())
}

// MarkerTag derives the literal manifest marker that tags the line declaring
// a dependency on this repository.
func (reference Reference) MarkerTag() string {
	return fmt.Sprintf(markerTagTemplateConstant, reference.WorkspaceIdentifier())
}
