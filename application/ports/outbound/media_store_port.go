package outbound

import "context"

// MediaStorePort reads and writes generated assets under the job's output
// storage prefix. Signed read URLs for collaborators are produced elsewhere.
type MediaStorePort interface {
	Put(ctx context.Context, key string, body []byte, contentType string) error
	Get(ctx context.Context, key string) ([]byte, error)

	// UploadFile streams a local file to storage, for assets too large to hold
	// in memory (the assembled video).
	UploadFile(ctx context.Context, key string, fileName string) error
}
