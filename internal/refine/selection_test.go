package refine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseSelection(t *testing.T) {
	tests := []struct {
		name  string
		input string
		max   int
		want  []int
	}{
		{"mixed singles and range", "1,3-5,7", 10, []int{1, 3, 4, 5, 7}},
		{"out of range dropped", "2,15", 10, []int{2}},
		{"range clipped to max", "8-12", 10, []int{8, 9, 10}},
		{"malformed tokens ignored", "1,abc,2-x,3", 10, []int{1, 3}},
		{"duplicates collapsed", "2,2,1-2", 10, []int{1, 2}},
		{"whitespace tolerated", " 1 , 3 - 4 ", 10, []int{1, 3, 4}},
		{"inverted range ignored", "5-3,1", 10, []int{1}},
		{"zero and negatives dropped", "0,-1,2", 10, []int{2}},
		{"empty input", "", 10, []int{}},
		{"plain text", "kubernetes operators", 10, []int{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseSelection(tt.input, tt.max))
		})
	}
}
