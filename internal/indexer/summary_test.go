package indexer

import "testing"

func TestSummarize(t *testing.T) {
	results := []IngestResult{
		{Status: StatusUploaded, TotalChunks: 3},
		{Status: StatusUploaded, TotalChunks: 5},
		{Status: StatusSkipped},
		{Status: StatusError, Error: "document is empty"},
		{Status: StatusUploaded, TotalChunks: 1},
	}

	got := Summarize(results)
	want := Summary{
		Files:       5,
		Uploaded:    3,
		Skipped:     1,
		Errors:      1,
		TotalChunks: 9,
		ChunkStats:  ChunkStats{Min: 1, Max: 5, Mean: 3, P95: 5},
	}
	if got != want {
		t.Errorf("Summarize() = %+v, want %+v", got, want)
	}
}

func TestSummarize_Empty(t *testing.T) {
	if got := Summarize(nil); got != (Summary{}) {
		t.Errorf("Summarize(nil) = %+v, want zero", got)
	}
}

func TestComputeChunkStats(t *testing.T) {
	tests := []struct {
		name   string
		counts []int
		want   ChunkStats
	}{
		{name: "single", counts: []int{4}, want: ChunkStats{Min: 4, Max: 4, Mean: 4, P95: 4}},
		{name: "mean rounded", counts: []int{1, 2, 2}, want: ChunkStats{Min: 1, Max: 2, Mean: 1.67, P95: 2}},
		{
			name:   "p95 of twenty",
			counts: []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16, 17, 18, 19, 100},
			want:   ChunkStats{Min: 1, Max: 100, Mean: 14.5, P95: 19},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := computeChunkStats(tt.counts); got != tt.want {
				t.Errorf("computeChunkStats() = %+v, want %+v", got, tt.want)
			}
		})
	}
}
