package domain

import "context"

// RecordStore wraps the backend's primitive operations behind a typed
// interface. It owns no state; only these primitives are ever issued, never
// transactions or scripting. Backend failures and timeouts surface as
// ErrStoreUnavailable without internal retries.
type RecordStore interface {
	// Get reads a plain value; found is false for a missing key.
	Get(ctx context.Context, key string) (value string, found bool, err error)
	// Set writes a plain value.
	Set(ctx context.Context, key, value string) error
	// SetNX writes only if the key is absent and reports whether it won.
	SetNX(ctx context.Context, key, value string) (won bool, err error)

	// SetFields merges the named fields into a hash in one round trip.
	SetFields(ctx context.Context, key string, fields map[string]string) error
	// SetField writes a single hash field.
	SetField(ctx context.Context, key, field, value string) error
	// GetField reads a single hash field; found is false when absent.
	GetField(ctx context.Context, key, field string) (value string, found bool, err error)
	// GetAllFields reads an entire hash; an empty map means no record.
	GetAllFields(ctx context.Context, key string) (map[string]string, error)

	// Append pushes values onto the tail of a list.
	Append(ctx context.Context, listKey string, values ...string) error
	// Range reads the list slice [start, stop] in insertion order.
	Range(ctx context.Context, listKey string, start, stop int64) ([]string, error)

	// ScanKeys enumerates keys matching a glob pattern. The result is
	// unordered and snapshot-inconsistent under concurrent writes; callers
	// must tolerate both.
	ScanKeys(ctx context.Context, pattern string) ([]string, error)

	// Pipeline opens a command buffer that executes in one round trip.
	// Commands run in staged order.
	Pipeline() RecordPipeline
}

// RecordPipeline buffers writes for a single batched round trip.
type RecordPipeline interface {
	Set(key, value string)
	SetFields(key string, fields map[string]string)
	SetField(key, field, value string)
	Append(listKey string, values ...string)
	// Len reports the number of staged commands.
	Len() int
	// Exec flushes the buffer. A failure surfaces as ErrStoreUnavailable;
	// commands already applied by the backend are not undone.
	Exec(ctx context.Context) error
}
