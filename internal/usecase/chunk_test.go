package usecase

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/aalvaropc/topcontainers/internal/domain"
)

func TestChunk(t *testing.T) {
	ids := []int{1, 2, 3, 4, 5, 6, 7}

	assert.Equal(t, [][]int{{1, 2, 3}, {4, 5, 6}, {7}}, Chunk(ids, 3))
	assert.Equal(t, [][]int{{1, 2, 3, 4, 5, 6, 7}}, Chunk(ids, 50_000))
	assert.Nil(t, Chunk(ids, 0))
	assert.Nil(t, Chunk([]int{}, 3))
}

func TestChunk_AliasesInput(t *testing.T) {
	entries := []domain.BatchEntry{{ID: "1"}, {ID: "2"}, {ID: "3"}}
	chunks := Chunk(entries, 2)
	chunks[1][0].Updated = true
	assert.True(t, entries[2].Updated)
}

func TestWindow(t *testing.T) {
	tests := []struct {
		name       string
		cursor     domain.Cursor
		resume     int
		size, max  int
		total      int
		start, end int
	}{
		{name: "fresh", cursor: domain.Cursor{}, resume: -1, size: 10, max: 1, total: 5, start: 0, end: 1},
		{name: "resume from cursor", cursor: domain.Cursor{Next: 2, Size: 10}, resume: -1, size: 10, max: 2, total: 5, start: 2, end: 4},
		{name: "clamped at total", cursor: domain.Cursor{Next: 4, Size: 10}, resume: -1, size: 10, max: 3, total: 5, start: 4, end: 5},
		{name: "finished", cursor: domain.Cursor{Next: 5, Size: 10}, resume: -1, size: 10, max: 1, total: 5, start: 5, end: 5},
		{name: "flag overrides cursor", cursor: domain.Cursor{Next: 3, Size: 10}, resume: 1, size: 10, max: 1, total: 5, start: 1, end: 2},
		{name: "size changed resets", cursor: domain.Cursor{Next: 3, Size: 20}, resume: -1, size: 10, max: 1, total: 5, start: 0, end: 1},
		{name: "past the end", cursor: domain.Cursor{}, resume: 9, size: 10, max: 1, total: 5, start: 5, end: 5},
		{name: "zero max means one", cursor: domain.Cursor{}, resume: -1, size: 10, max: 0, total: 5, start: 0, end: 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, end := Window(tt.cursor, tt.resume, tt.size, tt.max, tt.total)
			assert.Equal(t, tt.start, start)
			assert.Equal(t, tt.end, end)
		})
	}
}
