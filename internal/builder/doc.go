/*
Package builder drives an incremental build of one Content.

A build walks the content's assets strictly in declaration order, on a single
goroutine. For every asset it:

 1. Resolves the processor descriptor and merges the effective parameter set
    of each variant: the processor defaults, then the asset's base overrides,
    then, for every custom bundle the asset opts into, the bundle-wide
    parameters and the asset's overrides for that bundle.

 2. Hashes the asset path, processor name and every merged set, and asks the
    dependency tracker whether the previous successful build is still valid.
    An up-to-date asset is reported as Skipped and the tracker is not touched.

 3. Starts a fresh tracker record, always listing the asset's own source file
    as an input, and runs the processor once per variant (Base first) through
    a BuildContext. The context is the processor's only window onto the build:
    it logs, counts warnings and errors, and forwards declared dependencies to
    the tracker.

 4. Derives the final status from the accumulated counts. Any error, whether
    reported, returned or raised as a panic, fails the asset and drops its
    record so the next build retries it.

A stop request or a cancelled context.Context is honoured only between assets;
a running processor is never interrupted. When the loop ends the tracker is
saved exactly once and a BuildCompleted event is emitted.
*/
package builder
