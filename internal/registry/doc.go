// Package registry provides the catalog of processors available to a build.
//
// The Registry maps the processor names used in content files (e.g.
// "Texture2DProcessor") to the processor's Descriptor and to a factory that
// creates fresh instances. It is an explicit object: the application builds
// one at startup, every built-in module registers itself into it, and the
// builder receives it by reference. There is no package-level registry.
//
// Registration is append-only. A name can be registered once, and there is no
// way to remove it again, so descriptors handed out by Get stay valid for the
// lifetime of the registry.
package registry
