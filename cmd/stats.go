package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/glossopoeia/vmheap/runtime"
	"github.com/glossopoeia/vmheap/util"
)

var (
	statsThreads int
	statsValues  int
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Run a small workload and report what every generation allocated",
	RunE: func(cmd *cobra.Command, args []string) error {
		if statsThreads < 0 || statsValues < 0 {
			return fmt.Errorf("--threads and --values must not be negative")
		}
		m := newMachine()
		for i := 0; i < statsThreads; i++ {
			if err := runWorker(m, i); err != nil {
				return err
			}
		}

		stats := m.Stats()
		byKind := map[string]int{}
		for _, s := range stats {
			printf(cmd, "generation %d: %d objects, %d bytes\n", s.Generation, s.Allocations, s.Bytes)
			byKind = util.MergeMaps(byKind, s.ByKind, func(l, r int) int { return l + r })
		}
		for _, kind := range util.SortedKeys(byKind) {
			printf(cmd, "  %-36s %d\n", kind, byKind[kind])
		}
		counts := make([]int, 0, len(stats))
		for _, s := range stats {
			counts = append(counts, s.Allocations)
		}
		printf(cmd, "total: %d objects, %d reachable from the main thread and globals\n",
			util.Sum(counts), len(runtime.Reachable(m.Roots()...)))
		return nil
	},
}

// Each worker builds a list of records in its own generation and hands the
// list back to the main thread.
func runWorker(m *runtime.Machine, id int) error {
	child, err := m.Spawn()
	if err != nil {
		return err
	}
	thread := child.Get()
	gc := thread.Gc()

	var list runtime.Value = runtime.Int(0)
	for i := 0; i < statsValues; i++ {
		name, err := runtime.NewString(gc, fmt.Sprintf("worker-%d-%d", id, i))
		if err != nil {
			return err
		}
		entry, err := runtime.NewData(gc, 1, runtime.Int(i), name)
		if err != nil {
			return err
		}
		cons, err := runtime.NewData(gc, 2, entry, list)
		if err != nil {
			return err
		}
		list = cons
	}
	thread.PushValue(list)
	return thread.Return()
}

func init() {
	statsCmd.Flags().IntVar(&statsThreads, "threads", 2, "number of child threads")
	statsCmd.Flags().IntVar(&statsValues, "values", 8, "records built by each thread")
	rootCmd.AddCommand(statsCmd)
}
