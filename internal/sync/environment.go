package sync

import (
	"errors"
	"fmt"
	"strings"
)

const (
	// UpstreamIndicatorVariableName identifies the CI environment variable naming the repository being built.
	UpstreamIndicatorVariableName = "CIRCLE_REPOSITORY_URL"
	// CredentialVariableName identifies the environment variable holding the sync robot's access token.
	CredentialVariableName = "GRABL_CREDENTIAL"

	canonicalOrganizationConstant           = "graknlabs"
	credentialAccountNameConstant           = "grabl"
	credentialRenderTemplateConstant        = "%s:%s"
	credentialMissingMessageConstant        = "building the upstream repository requires the " + CredentialVariableName + " environment variable"
	environmentLookupMissingMessageConstant = "environment lookup must be provided"
)

// EnvironmentLookup resolves the value of an environment variable, returning
// an empty string when the variable is unset.
type EnvironmentLookup func(variableName string) string

// ErrCredentialNotConfigured indicates the credential environment variable was absent or empty.
var ErrCredentialNotConfigured = errors.New(credentialMissingMessageConstant)

// ErrEnvironmentLookupNotConfigured indicates no environment lookup was supplied.
var ErrEnvironmentLookupNotConfigured = errors.New(environmentLookupMissingMessageConstant)

// IsBuildingUpstream reports whether the process runs against the canonical
// upstream organization rather than a fork. Forked builds must never push
// dependency updates, so a negative answer turns the whole run into a no-op.
func IsBuildingUpstream(lookupEnvironment EnvironmentLookup) bool {
	if lookupEnvironment == nil {
		return false
	}
	return strings.Contains(lookupEnvironment(UpstreamIndicatorVariableName), canonicalOrganizationConstant)
}

// ResolveCredential reads the sync robot credential and renders it in the
// user:token form embedded into authenticated remote URLs. Absence of the
// credential is a configuration error raised before any network action.
func ResolveCredential(lookupEnvironment EnvironmentLookup) (string, error) {
	if lookupEnvironment == nil {
		return "", ErrEnvironmentLookupNotConfigured
	}

	credentialToken := strings.TrimSpace(lookupEnvironment(CredentialVariableName))
	if len(credentialToken) == 0 {
		return "", ErrCredentialNotConfigured
	}

	return fmt.Sprintf(credentialRenderTemplateConstant, credentialAccountNameConstant, credentialToken), nil
}
