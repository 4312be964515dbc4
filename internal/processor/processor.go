package processor

import (
	"context"

	"github.com/vk/assetforge/internal/content"
	"github.com/vk/assetforge/internal/params"
)

// Processor converts one asset's source data into build outputs.
type Processor interface {
	// Describe returns the processor's static descriptor. It is called once,
	// at registration.
	Describe() *Descriptor

	// Process runs the transformation for a single asset variant. Problems
	// that should fail the asset are normally reported with Context.Error;
	// a returned error or a panic is treated the same way.
	Process(ctx Context) error
}

// Factory creates a fresh processor instance.
type Factory func() Processor

// Context is the per-build scope handed to Process.
type Context interface {
	// Context returns the context.Context of the running build.
	Context() context.Context

	Log(msg string)
	Verbose(msg string)
	// Warn logs msg and counts a warning.
	Warn(msg string)
	// Error logs msg and counts an error; the asset will be marked Failed.
	Error(msg string)
	// LogException logs err with its details and, if generateError is set,
	// counts it as an error.
	LogException(err error, generateError bool)

	// AddInputDependency records a file the processor read, relative to
	// SourceFolder.
	AddInputDependency(rel string) error
	// AddOutputDependency records a file the processor wrote, relative to
	// OutputFolder.
	AddOutputDependency(rel string) error

	NumErrors() int
	NumWarnings() int

	// Parameters is the effective, merged parameter set of this variant.
	Parameters() *params.Set

	// SourceFolder is the absolute source root.
	SourceFolder() string
	// OutputFolder is the absolute output folder of this variant.
	OutputFolder() string

	Asset() *content.Asset
	Bundle() *content.Bundle
}
