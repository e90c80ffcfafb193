// Package rules loads the declarative replay configuration and compiles it
// into executable rules.
//
// A configuration document declares three optional ordered lists: mappings
// (redirect a URL to a local file), replacements (rewrite textual response
// content), and response header transforms. Each spec's matcher is a
// dynamic-shape value: a bare string is a literal match, an object selects
// a richer kind ({"regex": ...}, {"glob": ...}, {"var": ...}). Compilation
// happens once at load time and rejects invalid patterns, so the
// per-request path runs only precompiled closures.
package rules
