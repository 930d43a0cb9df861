// Package pipeline drives a run: it validates the root, enumerates matches
// with their depth, and resolves non-ASCII names one depth at a time from the
// deepest level up to the root's direct children.
//
// Each depth is enumerated afresh because renames and merges at deeper
// levels change the tree. Working deepest first means a directory is only
// renamed or merged after everything below it has been settled.
package pipeline
