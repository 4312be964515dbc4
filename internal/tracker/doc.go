// Package tracker implements the dependency cache that decides whether an
// asset must be rebuilt.
//
// For every asset that built successfully the Tracker keeps a Record: the
// content hash of the asset's declaration at build time, the input files the
// processor read and the output files it wrote. An asset is rebuilt when its
// record is missing, its hash changed, any recorded file is gone, or the
// newest input is younger than the oldest output. Everything else is
// trusted, including a record that lists no files at all.
//
// The protocol during a build is strict: RemoveAsset, then
// AddAssetDependency, then any number of AddInputDependency and
// AddOutputDependency calls. Adding dependencies without a fresh record is a
// caller bug and is reported as *UnknownAssetError.
//
// Records are persisted as an HCL file so that the cache can be read and
// diffed by a human. A missing or unreadable file loads as an empty tracker.
package tracker
