// Package params provides Set, the ordered string key/value collection that
// carries processor configuration through a build.
//
// A Set remembers insertion order. Log output and the content hash are both
// derived from a Set, so two builds of the same declaration always produce
// the same text and the same hash. Layering processor defaults, asset
// overrides and bundle overrides is done with Clone and Merge, never by
// mutating a shared Set in place.
package params
