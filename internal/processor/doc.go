// Package processor defines the plugin contract between the build engine and
// the transformations it runs.
//
// A Processor describes itself once with a Descriptor (its name, its typed
// and defaulted parameters, and the file extensions it handles) and is then
// invoked once per asset variant with a Context. The Context is the entire
// surface a processor may touch: it reads configuration from
// Context.Parameters, declares every file it reads with AddInputDependency,
// declares every file it writes with AddOutputDependency, and reports
// problems through the logging methods instead of failing the whole build.
package processor
