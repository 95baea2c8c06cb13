package main

import (
	"fmt"
	"io"
	"time"

	"github.com/KilimcininKorOglu/bwtree"
	"github.com/KilimcininKorOglu/bwtree/index"
)

// Report summarizes one workload run.
type Report struct {
	// Elapsed is the wall-clock duration of the workload.
	Elapsed time.Duration
	// Inserts, Deletes and Lookups are totals across workers.
	Inserts uint64
	Deletes uint64
	Lookups uint64
	// OpsPerSec is total operations over elapsed time.
	OpsPerSec float64
	// ScanEntries is the number of entries a full scan returned after the
	// workload finished.
	ScanEntries int
	// ScanOrdered reports whether the final scan was strictly ordered by
	// key with duplicates adjacent.
	ScanOrdered bool
	// Tree is the tree's own statistics snapshot.
	Tree bwtree.Stats
}

// buildReport verifies the final tree state and assembles the run report.
func buildReport(tree *bwtree.Tree[uint64, index.EntryRef], stats []workerStats, elapsed time.Duration) *Report {
	r := &Report{Elapsed: elapsed, ScanOrdered: true}
	for _, ws := range stats {
		r.Inserts += ws.inserts
		r.Deletes += ws.deletes
		r.Lookups += ws.lookups
	}
	total := r.Inserts + r.Deletes + r.Lookups
	if elapsed > 0 {
		r.OpsPerSec = float64(total) / elapsed.Seconds()
	}

	pairs := tree.ScanAll()
	r.ScanEntries = len(pairs)
	for i := 1; i < len(pairs); i++ {
		if pairs[i].Key < pairs[i-1].Key {
			r.ScanOrdered = false
			break
		}
	}

	r.Tree = tree.Stats()
	return r
}

// Write renders the report as text.
func (r *Report) Write(w io.Writer) {
	fmt.Fprintln(w, "=== bwbench report ===")
	fmt.Fprintf(w, "elapsed:         %v\n", r.Elapsed.Round(time.Millisecond))
	fmt.Fprintf(w, "inserts:         %d\n", r.Inserts)
	fmt.Fprintf(w, "deletes:         %d\n", r.Deletes)
	fmt.Fprintf(w, "lookups:         %d\n", r.Lookups)
	fmt.Fprintf(w, "throughput:      %.0f ops/sec\n", r.OpsPerSec)
	fmt.Fprintf(w, "scan entries:    %d (ordered: %v)\n", r.ScanEntries, r.ScanOrdered)
	fmt.Fprintf(w, "tree height:     %d\n", r.Tree.Height)
	fmt.Fprintf(w, "leaf pages:      %d\n", r.Tree.LeafPages)
	fmt.Fprintf(w, "keys/entries:    %d/%d\n", r.Tree.Keys, r.Tree.Entries)
	fmt.Fprintf(w, "splits:          %d\n", r.Tree.Splits)
	fmt.Fprintf(w, "consolidations:  %d\n", r.Tree.Consolidations)
	fmt.Fprintf(w, "cas retries:     %d\n", r.Tree.CASRetries)
	fmt.Fprintf(w, "retired nodes:   %d (released: %d)\n", r.Tree.RetiredNodes, r.Tree.ReleasedNodes)
}
