// Package ess decodes Oblivion save games (.ess).
//
// A save is read in one forward pass over an io.Reader: file header,
// save game header with its screenshot, the plugin list and the globals
// section. Change records are not decoded; reaching one fails with a
// DecodeError of kind KindUnsupported.
//
// Decode errors are always *DecodeError values carrying the byte offset and
// the dotted field path of the failed read. Match them with errors.Is against
// the package sentinels.
//
// Consistency checks (version ranges, screenshot size, boolean bytes) are
// reported as Save.Diagnostics by default. WithStrict turns them into
// KindInconsistent errors.
package ess
