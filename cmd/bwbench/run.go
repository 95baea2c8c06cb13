package main

import (
	"flag"
	"fmt"
	"math/rand"
	"os"
	"sync"
	"time"

	"github.com/KilimcininKorOglu/bwtree"
	"github.com/KilimcininKorOglu/bwtree/index"
	"github.com/KilimcininKorOglu/bwtree/logging"
)

// workerStats accumulates per-worker operation counts.
type workerStats struct {
	inserts uint64
	deletes uint64
	lookups uint64
}

// runCmd handles the run command.
func runCmd(args []string) int {
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	threads := fs.Int("threads", 4, "Number of concurrent workers")
	ops := fs.Int("ops", 100000, "Operations per worker")
	keySpace := fs.Int("keys", 65536, "Distinct key space size")
	readPct := fs.Int("read", 50, "Percentage of operations that are lookups")
	deletePct := fs.Int("delete", 10, "Percentage of operations that are deletes")
	leafSlots := fs.Int("leaf-slots", bwtree.DefaultLeafSlotMax, "Max keys per leaf page")
	innerSlots := fs.Int("inner-slots", bwtree.DefaultInnerSlotMax, "Max separators per inner page")
	deltaThreshold := fs.Int("delta-threshold", bwtree.DefaultDeltaThreshold, "Chain length triggering consolidation")
	logLevel := fs.String("log-level", "info", "Log level (debug, info, warn, error)")
	seed := fs.Int64("seed", 1, "Workload random seed")

	if err := fs.Parse(args); err != nil {
		return 1
	}
	if *threads < 1 || *ops < 1 || *keySpace < 1 {
		fmt.Fprintln(os.Stderr, "threads, ops and keys must be positive")
		return 1
	}
	if *readPct < 0 || *deletePct < 0 || *readPct+*deletePct > 100 {
		fmt.Fprintln(os.Stderr, "read and delete percentages must fit within 100")
		return 1
	}

	log := logging.New(logging.Config{Level: *logLevel, Format: "text"})

	opts := bwtree.DefaultOptions()
	opts.LeafSlotMax = *leafSlots
	opts.InnerSlotMax = *innerSlots
	opts.DeltaThreshold = *deltaThreshold
	opts.Logger = log

	tree, err := bwtree.New[uint64, index.EntryRef](
		func(a, b uint64) int {
			switch {
			case a < b:
				return -1
			case a > b:
				return 1
			default:
				return 0
			}
		},
		func(a, b index.EntryRef) bool { return a == b },
		opts,
	)
	if err != nil {
		fmt.Fprintf(os.Stderr, "create tree: %v\n", err)
		return 1
	}

	log.Info("workload starting",
		"threads", *threads, "ops", *ops, "keys", *keySpace,
		"read_pct", *readPct, "delete_pct", *deletePct)

	stats := make([]workerStats, *threads)
	var wg sync.WaitGroup
	start := time.Now()

	for w := 0; w < *threads; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			rng := rand.New(rand.NewSource(*seed + int64(w)))
			ws := &stats[w]
			for i := 0; i < *ops; i++ {
				key := uint64(rng.Intn(*keySpace))
				ref := index.EntryRef{Block: key, Slot: uint16(w)}
				roll := rng.Intn(100)
				switch {
				case roll < *readPct:
					tree.Lookup(key)
					ws.lookups++
				case roll < *readPct+*deletePct:
					if err := tree.DeleteValue(key, ref); err != nil {
						fmt.Fprintf(os.Stderr, "delete: %v\n", err)
						return
					}
					ws.deletes++
				default:
					if err := tree.Insert(key, ref); err != nil {
						fmt.Fprintf(os.Stderr, "insert: %v\n", err)
						return
					}
					ws.inserts++
				}
			}
		}(w)
	}
	wg.Wait()
	elapsed := time.Since(start)

	report := buildReport(tree, stats, elapsed)
	report.Write(os.Stdout)

	if !report.ScanOrdered {
		fmt.Fprintln(os.Stderr, "FAIL: scan returned keys out of order")
		return 1
	}
	return 0
}
