// Package manifest locates and rewrites dependency reference lines in build
// manifests.
//
// A manifest declares each external dependency on exactly one line tagged
// with a sync-marker comment; the line embeds a 40-hex revision identifier
// that LocateMarker finds and RewriteRevision replaces while preserving every
// other byte of the file.
package manifest
