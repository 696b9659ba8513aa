package pipeline

// RunStats tracks counters and byte totals across a batch.
type RunStats struct {
	Total            int
	Converted        int
	Failed           int
	Skipped          int
	TotalInputBytes  int64
	TotalOutputBytes int64
}

// SizeChange returns output bytes minus input bytes for converted files.
func (s *RunStats) SizeChange() int64 {
	return s.TotalOutputBytes - s.TotalInputBytes
}
