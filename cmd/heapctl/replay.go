package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/Freeze777/heapkit/arena"
	"github.com/Freeze777/heapkit/arena/alloc"
)

var (
	replayCapacity  int
	replayThreshold int
	replayImage     string
	replayStrict    bool
)

func init() {
	cmd := newReplayCmd()
	cmd.Flags().IntVar(&replayCapacity, "capacity", arena.DefaultCapacity, "Arena capacity in bytes")
	cmd.Flags().IntVar(&replayThreshold, "threshold", alloc.DefaultThreshold, "Split threshold in bytes")
	cmd.Flags().StringVar(&replayImage, "image", "", "Back the arena with this image file")
	cmd.Flags().BoolVar(&replayStrict, "strict", false, "Stop at the first failing operation")
	rootCmd.AddCommand(cmd)
}

func newReplayCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "replay <trace>",
		Short: "Replay an allocation trace against an arena",
		Long: `The replay command runs a line-oriented trace script against a fresh
arena and reports the resulting block directory and counters. With --image
the arena is created in that file and flushed after the run, so the result
can be inspected later with dump and stats.

Trace grammar (one operation per line, '#' starts a comment):
  alloc <size>
  zalloc <count> <elemSize>
  free <id>
  realloc <id> <size>
  defrag

Handle ids are 1-based, assigned in order of the alloc/zalloc lines.

Example:
  heapctl replay workload.trace
  heapctl replay workload.trace --capacity 4096 --threshold 16
  heapctl replay workload.trace --image heap.img --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplay(args)
		},
	}
	return cmd
}

type replayResult struct {
	Operations int               `json:"operations"`
	Failures   int               `json:"failures"`
	Blocks     []alloc.BlockInfo `json:"blocks"`
	FreeBytes  int               `json:"free_bytes"`
	Stats      alloc.Stats       `json:"stats"`
}

func runReplay(args []string) error {
	tracePath := args[0]

	f, err := os.Open(tracePath)
	if err != nil {
		return fmt.Errorf("failed to open trace: %w", err)
	}
	ops, err := parseTrace(f)
	f.Close()
	if err != nil {
		return fmt.Errorf("failed to parse trace: %w", err)
	}
	printVerbose("Parsed %d operations from %s\n", len(ops), tracePath)

	a, err := openReplayArena()
	if err != nil {
		return err
	}
	defer a.Close()

	opts := []alloc.Option{alloc.WithThreshold(replayThreshold)}
	if verbose && !quiet {
		opts = append(opts, alloc.WithLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}))))
	}
	h, err := alloc.New(a, opts...)
	if err != nil {
		return fmt.Errorf("failed to build heap: %w", err)
	}

	// id 0 is unused; ids match the trace's 1-based numbering.
	refs := []alloc.Ref{alloc.InvalidRef}
	failures := 0

	for _, op := range ops {
		var opErr error
		switch op.Kind {
		case opAlloc:
			ref, _, err := h.Alloc(op.Size)
			refs = append(refs, ref)
			opErr = err
			printVerbose("line %d: alloc %d -> 0x%X\n", op.Line, op.Size, ref)

		case opZalloc:
			ref, _, err := h.AllocZeroed(op.N, op.Size)
			refs = append(refs, ref)
			opErr = err
			printVerbose("line %d: zalloc %dx%d -> 0x%X\n", op.Line, op.N, op.Size, ref)

		case opFree:
			opErr = h.Free(refs[op.ID])
			refs[op.ID] = alloc.InvalidRef
			printVerbose("line %d: free #%d\n", op.Line, op.ID)

		case opRealloc:
			ref, _, err := h.Realloc(refs[op.ID], op.Size)
			refs[op.ID] = ref
			opErr = err
			printVerbose("line %d: realloc #%d %d -> 0x%X\n", op.Line, op.ID, op.Size, ref)

		case opDefrag:
			h.Defragment()
			printVerbose("line %d: defrag\n", op.Line)
		}

		if opErr != nil {
			failures++
			if replayStrict || !errors.Is(opErr, alloc.ErrArenaFull) {
				return fmt.Errorf("line %d: %w", op.Line, opErr)
			}
			printVerbose("line %d: %v\n", op.Line, opErr)
		}
	}

	if replayImage != "" {
		if err := a.Flush(); err != nil {
			return fmt.Errorf("failed to flush image: %w", err)
		}
		printVerbose("Flushed arena image to %s\n", replayImage)
	}

	result := replayResult{
		Operations: len(ops),
		Failures:   failures,
		Blocks:     h.DumpState(),
		FreeBytes:  h.FreeBytes(),
		Stats:      h.Stats(),
	}
	if jsonOut {
		return printJSON(result)
	}

	printInfo("\nReplayed %d operations (%d failed)\n\n", result.Operations, result.Failures)
	printBlocks(result.Blocks)
	printInfo("\nFree bytes: %d\n", result.FreeBytes)
	return nil
}

func openReplayArena() (*arena.Arena, error) {
	if replayImage == "" {
		return arena.New(replayCapacity), nil
	}
	a, err := arena.Create(replayImage, replayCapacity)
	if err != nil {
		return nil, fmt.Errorf("failed to create image: %w", err)
	}
	return a, nil
}

// printBlocks renders the directory in address order.
func printBlocks(blocks []alloc.BlockInfo) {
	if len(blocks) == 0 {
		printInfo("(empty arena)\n")
		return
	}
	printInfo("%-6s %-10s %s\n", "BLOCK", "SIZE", "STATE")
	for i, b := range blocks {
		state := "in-use"
		if b.Free {
			state = "free"
		}
		printInfo("%-6d %-10d %s\n", i, b.Size, state)
	}
}
