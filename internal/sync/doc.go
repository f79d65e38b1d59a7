// Package sync propagates dependency revisions between GraknLabs repositories.
//
// The Service resolves the latest revision of one dependency repository and
// rewrites the marker-tagged reference line in each dependent repository's
// WORKSPACE manifest, committing and pushing only when the reference actually
// changed. RevisionSource, WorkingCopyProvider, and ChangeCommitter supply
// the git-facing collaborators; CommandBuilder exposes the sync CLI command.
package sync
