// Package domain holds the post model and the error vocabulary shared by
// every other postsync package.
//
//   - [Post]: one remote post (id, userId, title, body)
//   - [Posts]: the ordered local mirror of the remote collection
//   - [ErrorState]: the single-slot record of the most recent failure
//
// Nothing here performs I/O; collection helpers return new slices so
// published snapshots are never mutated.
package domain
