// Package fsops is the filesystem collaborator used by the resolver and the
// walker: recursive glob enumeration, existence and directory checks,
// byte-exact comparison, rename, directory move and removal.
//
// It is backed by an [afero.Fs] so production code runs on the host
// filesystem while tests can run on an in-memory one. Results are never
// cached; every query goes to the filesystem.
package fsops
