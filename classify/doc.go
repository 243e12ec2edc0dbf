// Package classify decides which files of an unpacked extraction archive
// carry chats, calls, contacts, or media.
//
// There is no schema to rely on: exports are arbitrary, unversioned, and
// vendor-specific. Classification therefore works from a master descriptor
// file (when one exists) plus path/name heuristics over the whole tree, and
// fails open: a damaged descriptor degrades to the directory scan instead
// of aborting ingestion.
package classify
