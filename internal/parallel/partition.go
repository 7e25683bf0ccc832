package parallel

// Range is a half-open row interval [Start, End) assigned to one worker.
type Range struct {
	Start, End int
}

// Len returns the number of rows in the range.
func (r Range) Len() int {
	return r.End - r.Start
}

// Workers clamps a requested thread count to [1, n].
func Workers(requested, n int) int {
	if requested < 1 {
		requested = 1
	}
	if requested > n {
		requested = n
	}
	return requested
}

// Partition splits [0, n) into contiguous, non-overlapping ranges of
// ceil(n/workers) rows; the final range is clamped to n. Workers whose start
// would fall at or past n receive no range, so the result may be shorter
// than the clamped worker count.
func Partition(n, threads int) []Range {
	if n <= 0 {
		return nil
	}
	workers := Workers(threads, n)
	chunk := (n + workers - 1) / workers

	ranges := make([]Range, 0, workers)
	for w := range workers {
		rs := w * chunk
		if rs >= n {
			break
		}
		re := min(rs+chunk, n)
		ranges = append(ranges, Range{Start: rs, End: re})
	}
	return ranges
}
