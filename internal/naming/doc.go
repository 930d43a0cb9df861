// Package naming holds the pure filename logic: path depth relative to a
// traversal root, the non-ASCII filter, and Unicode normalization forms.
//
// Nothing here touches the filesystem. Only the final path segment is ever
// normalized; parent directories are carried through byte-for-byte so a
// child is always addressed by the name its parent has on disk right now.
package naming
