// Package runpane runs an external command against a target file and shows
// the captured output in a reusable named surface.
package runpane

// Version is the runpane release version.
const Version = "0.2.0"
