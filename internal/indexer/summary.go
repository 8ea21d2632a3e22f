package indexer

import (
	"math"
	"sort"
)

// Summary aggregates the results of a batch ingestion.
type Summary struct {
	// Files is the number of documents attempted.
	Files int `json:"files"`
	// Uploaded is the number of new books stored.
	Uploaded int `json:"uploaded"`
	// Skipped is the number of documents whose book already existed.
	Skipped int `json:"skipped"`
	// Errors is the number of documents that failed.
	Errors int `json:"errors"`
	// TotalChunks is the number of chunks stored for uploaded books.
	TotalChunks int `json:"total_chunks"`
	// ChunkStats describes the chunk count per uploaded book.
	ChunkStats ChunkStats `json:"chunk_stats"`
}

// ChunkStats contains statistics about the chunk count of uploaded books.
type ChunkStats struct {
	Min  int     `json:"min"`
	Max  int     `json:"max"`
	Mean float64 `json:"mean"`
	P95  int     `json:"p95"`
}

// Summarize counts results by status.
func Summarize(results []IngestResult) Summary {
	s := Summary{Files: len(results)}
	var counts []int
	for _, r := range results {
		switch r.Status {
		case StatusUploaded:
			s.Uploaded++
			s.TotalChunks += r.TotalChunks
			counts = append(counts, r.TotalChunks)
		case StatusSkipped:
			s.Skipped++
		case StatusError:
			s.Errors++
		}
	}
	s.ChunkStats = computeChunkStats(counts)
	return s
}

// computeChunkStats computes min, max, mean, and p95 from chunk counts.
func computeChunkStats(counts []int) ChunkStats {
	if len(counts) == 0 {
		return ChunkStats{}
	}

	sorted := make([]int, len(counts))
	copy(sorted, counts)
	sort.Ints(sorted)

	sum := 0
	for _, c := range counts {
		sum += c
	}
	mean := float64(sum) / float64(len(counts))

	p95Index := int(math.Ceil(float64(len(sorted))*0.95)) - 1
	if p95Index < 0 {
		p95Index = 0
	}

	return ChunkStats{
		Min:  sorted[0],
		Max:  sorted[len(sorted)-1],
		Mean: math.Round(mean*100) / 100,
		P95:  sorted[p95Index],
	}
}
