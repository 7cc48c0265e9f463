package engagement

import (
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlice(t *testing.T) {
	comments := make([]string, 10)
	for i := range comments {
		comments[i] = fmt.Sprintf("c%d", i)
	}

	tests := []struct {
		name     string
		page     int
		pageSize int
		want     []string
	}{
		{"second page of four", 2, 4, []string{"c4", "c5", "c6", "c7"}},
		{"partial last page", 3, 4, []string{"c8", "c9"}},
		{"out of range", 4, 4, []string{}},
		{"default page size", 1, 0, comments},
		{"page below one", 0, 3, []string{"c0", "c1", "c2"}},
		{"huge page", math.MaxInt, 20, []string{}},
		{"huge page size", 1, math.MaxInt, comments},
		{"huge page size past first page", 3, 1 << 62, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, total := Slice(comments, tt.page, tt.pageSize)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, 10, total)
		})
	}
}

func TestTotalPages(t *testing.T) {
	assert.Equal(t, 3, TotalPages(10, 4))
	assert.Equal(t, 0, TotalPages(0, 4))
	assert.Equal(t, 1, TotalPages(10, math.MaxInt))
	assert.Equal(t, 1, TotalPages(20, 0))
	assert.Equal(t, 2, TotalPages(21, 0))
}
