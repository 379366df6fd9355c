package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Freeze777/heapkit/arena"
	"github.com/Freeze777/heapkit/arena/alloc"
)

func init() {
	rootCmd.AddCommand(newDumpCmd())
}

func newDumpCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dump <image>",
		Short: "Human-readable dump of an arena image's block directory",
		Long: `The dump command lists every block in an arena image in address order,
with its payload size and in-use/free state.

Example:
  heapctl dump heap.img
  heapctl dump heap.img --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDump(args)
		},
	}
	return cmd
}

func runDump(args []string) error {
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

	blocks := h.DumpState()
	if jsonOut {
		return printJSON(map[string]interface{}{
			"image":    imagePath,
			"capacity": a.Capacity(),
			"blocks":   blocks,
		})
	}

	printInfo("\nArena image: %s (%d bytes)\n\n", imagePath, a.Capacity())
	printBlocks(blocks)
	return nil
}
