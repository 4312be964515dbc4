// Package app wires the asset pipeline together. It validates configuration,
// builds the logger and the processor registry, loads the content
// description and runs builds, dry-run checks and cleans on it, decoupled
// from any specific entrypoint like a CLI.
package app
