package usecase

import "github.com/aalvaropc/topcontainers/internal/domain"

// Chunk splits items into consecutive slices of at most size elements.
func Chunk[T any](items []T, size int) [][]T {
	if size <= 0 || len(items) == 0 {
		return nil
	}
	out := make([][]T, 0, (len(items)+size-1)/size)
	for i := 0; i < len(items); i += size {
		end := min(i+size, len(items))
		out = append(out, items[i:end])
	}
	return out
}

// Window picks which windows [start, end) of total to process this run. resumeFrom >= 0
// overrides the cursor; otherwise the cursor's Next is used, reset to 0 when the cursor
// was computed with a different size.
func Window(cursor domain.Cursor, resumeFrom, size, maxWindows, total int) (start, end int) {
	start = cursor.Next
	if cursor.Size != 0 && cursor.Size != size {
		start = 0
	}
	if resumeFrom >= 0 {
		start = resumeFrom
	}
	if start > total {
		start = total
	}
	if maxWindows <= 0 {
		maxWindows = 1
	}
	end = min(start+maxWindows, total)
	return start, end
}
