// Package gitrepo models references to GraknLabs repositories.
//
// It exposes Reference for repo:branch coordinates along with the derived
// Bazel workspace identifier and the sync-marker tag consumed by the
// dependency synchronizer.
package gitrepo
