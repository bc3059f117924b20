// Package filesystem holds the afero based file primitives used by builds:
// sandboxed build roots, bounded parallel tree copies, zipping, empty
// directory pruning and content fingerprints.
//
// Every path handed to these helpers is relative to the afero.Fs it is used
// with. Builds get an afero.BasePathFs rooted at their private build
// directory, so nothing here can reach outside it.
package filesystem
