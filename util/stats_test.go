package util

import (
	"testing"

	"github.com/grailbio/testutil/expect"
)

func TestMedianInts(t *testing.T) {
	tests := []struct {
		xs   []int
		want float64
	}{
		{nil, 0},
		{[]int{7}, 7},
		{[]int{3, 1, 2}, 2},
		{[]int{4, 1, 3, 2}, 2.5},
		{[]int{10, 10, 400, 400, 400}, 400},
	}
	for _, tt := range tests {
		expect.EQ(t, MedianInts(tt.xs), tt.want)
	}
}

func TestMedianIntsDoesNotMutate(t *testing.T) {
	xs := []int{3, 1, 2}
	MedianInts(xs)
	expect.EQ(t, xs, []int{3, 1, 2})
}

func TestMeanInts(t *testing.T) {
	expect.EQ(t, MeanInts(nil), 0.0)
	expect.EQ(t, MeanInts([]int{0, 200}), 100.0)
	expect.EQ(t, MeanInts([]int{1, 2, 4}), 7.0/3)
}
