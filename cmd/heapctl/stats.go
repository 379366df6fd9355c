package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Freeze777/heapkit/arena"
	"github.com/Freeze777/heapkit/arena/alloc"
)

func init() {
	rootCmd.AddCommand(newStatsCmd())
}

func newStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats <image>",
		Short: "Show free-space and fragmentation statistics for an image",
		Long: `The stats command summarizes an arena image: capacity, block counts,
free bytes, and the size of the largest contiguous free block. A heap with
many small free blocks relative to its free bytes is fragmented and will
benefit from a defrag run.

Example:
  heapctl stats heap.img
  heapctl stats heap.img --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStats(args)
		},
	}
	return cmd
}

type imageStats struct {
	Image        string `json:"image"`
	Capacity     int    `json:"capacity"`
	Blocks       int    `json:"blocks"`
	FreeBlocks   int    `json:"free_blocks"`
	InUseBlocks  int    `json:"in_use_blocks"`
	FreeBytes    int    `json:"free_bytes"`
	InUseBytes   int    `json:"in_use_bytes"`
	LargestFree  int    `json:"largest_free"`
	SmallestFree int    `json:"smallest_free"`
}

func runStats(args []string) error {
	imagePath := args[0]
	printVerbose("Opening arena image: %s\n", imagePath)

	a, err := arena.Open(imagePath)
	if err != nil {
		return fmt.Errorf("failed to open image: %w", err)
	}
	defer a.Close()

	h, err := alloc.New(a)
	if err != nil {
		return fmt.Errorf("failed to read directory: %w", err)
	}

	stats := imageStats{
		Image:     imagePath,
		Capacity:  a.Capacity(),
		FreeBytes: h.CountFreeBytes(),
	}
	for _, b := range h.DumpState() {
		stats.Blocks++
		if b.Free {
			stats.FreeBlocks++
			if b.Size > stats.LargestFree {
				stats.LargestFree = b.Size
			}
			if stats.SmallestFree == 0 || b.Size < stats.SmallestFree {
				stats.SmallestFree = b.Size
			}
		} else {
			stats.InUseBlocks++
			stats.InUseBytes += b.Size
		}
	}

	if jsonOut {
		return printJSON(stats)
	}

	printInfo("\nArena image: %s\n", imagePath)
	printInfo("  Capacity: %d bytes\n", stats.Capacity)
	printInfo("  Blocks: %d (%d in use, %d free)\n", stats.Blocks, stats.InUseBlocks, stats.FreeBlocks)
	printInfo("  In-use bytes: %d\n", stats.InUseBytes)
	printInfo("  Free bytes: %d\n", stats.FreeBytes)
	if stats.FreeBlocks > 0 {
		printInfo("  Largest free block: %d bytes\n", stats.LargestFree)
		printInfo("  Smallest free block: %d bytes\n", stats.SmallestFree)
	}
	return nil
}
