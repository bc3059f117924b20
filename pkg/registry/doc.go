// Package registry maps declaration tags to the values that handle them.
//
// Patch types, modifier kinds and selector types are each kept in a
// Registry of parse functions. A Registry remembers registration order, so
// listings (rpp docs, error details) come out the way the tags were
// declared, and it accepts aliases for tags that were renamed.
package registry
