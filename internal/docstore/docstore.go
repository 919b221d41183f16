// Package docstore defines the outbound port for the remote document store:
// whole-document get/set of one opaque blob under a single fixed key. There
// is no partial or incremental sync; the last write wins.
package docstore

import "context"

type Store interface {
	// Get returns the stored blob. ok is false when no document has ever
	// been written, which is not an error.
	Get(ctx context.Context) (data []byte, ok bool, err error)

	// Put replaces the stored blob.
	Put(ctx context.Context, data []byte) error
}
