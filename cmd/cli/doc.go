// Package cli assembles the depsync command hierarchy, wiring configuration
// loading and logging into the sync command.
package cli
