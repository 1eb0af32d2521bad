package usecase

import (
	"context"
	"fmt"
)

// DefaultChunkSize bounds rows per storage transaction.
const DefaultChunkSize = 500

type chunkResult struct {
	Stored       int
	FailedChunks int
	FailedRows   int
	Errors       []string
}

// writeChunks writes items in fixed-size chunks. A failed chunk is counted
// and the remaining chunks are still attempted.
func writeChunks[T any](ctx context.Context, items []T, size int, write func(context.Context, []T) error) chunkResult {
	if size <= 0 {
		size = DefaultChunkSize
	}
	var out chunkResult
	for start := 0; start < len(items); start += size {
		if err := ctx.Err(); err != nil {
			remaining := len(items) - start
			out.FailedChunks += (remaining + size - 1) / size
			out.FailedRows += remaining
			out.Errors = append(out.Errors, err.Error())
			break
		}
		end := min(start+size, len(items))
		chunk := items[start:end]
		if err := write(ctx, chunk); err != nil {
			out.FailedChunks++
			out.FailedRows += len(chunk)
			out.Errors = append(out.Errors, fmt.Sprintf("chunk %d-%d: %v", start, end, err))
			continue
		}
		out.Stored += len(chunk)
	}
	return out
}
