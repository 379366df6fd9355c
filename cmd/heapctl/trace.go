package main

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// A trace is a line-oriented script of heap operations. Blank lines and
// lines starting with '#' are skipped. Handles are 1-based ids assigned
// in order of the alloc/zalloc statements; realloc keeps the id it was
// given even when the payload moves.
//
//	alloc <size>
//	zalloc <count> <elemSize>
//	free <id>
//	realloc <id> <size>
//	defrag

type opKind int

const (
	opAlloc opKind = iota
	opZalloc
	opFree
	opRealloc
	opDefrag
)

type traceOp struct {
	Line int
	Kind opKind
	ID   int // handle id for free/realloc
	N    int // element count for zalloc
	Size int // payload size, or element size for zalloc
}

// parseTrace reads a full trace script. It fails on the first malformed
// line and on references to handle ids that no alloc statement has
// produced yet.
func parseTrace(r io.Reader) ([]traceOp, error) {
	var ops []traceOp
	handles := 0

	sc := bufio.NewScanner(r)
	for line := 1; sc.Scan(); line++ {
		text := strings.TrimSpace(sc.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		fields := strings.Fields(text)
		op := traceOp{Line: line}

		switch fields[0] {
		case "alloc":
			size, err := oneInt(fields)
			if err != nil {
				return nil, fmt.Errorf("line %d: alloc: %w", line, err)
			}
			op.Kind, op.Size = opAlloc, size
			handles++

		case "zalloc":
			n, elem, err := twoInts(fields)
			if err != nil {
				return nil, fmt.Errorf("line %d: zalloc: %w", line, err)
			}
			op.Kind, op.N, op.Size = opZalloc, n, elem
			handles++

		case "free":
			id, err := oneInt(fields)
			if err != nil {
				return nil, fmt.Errorf("line %d: free: %w", line, err)
			}
			if id < 1 || id > handles {
				return nil, fmt.Errorf("line %d: free: unknown handle %d", line, id)
			}
			op.Kind, op.ID = opFree, id

		case "realloc":
			id, size, err := twoInts(fields)
			if err != nil {
				return nil, fmt.Errorf("line %d: realloc: %w", line, err)
			}
			if id < 1 || id > handles {
				return nil, fmt.Errorf("line %d: realloc: unknown handle %d", line, id)
			}
			op.Kind, op.ID, op.Size = opRealloc, id, size

		case "defrag":
			if len(fields) != 1 {
				return nil, fmt.Errorf("line %d: defrag takes no arguments", line)
			}
			op.Kind = opDefrag

		default:
			return nil, fmt.Errorf("line %d: unknown operation %q", line, fields[0])
		}
		ops = append(ops, op)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return ops, nil
}

func oneInt(fields []string) (int, error) {
	if len(fields) != 2 {
		return 0, fmt.Errorf("expected 1 argument, got %d", len(fields)-1)
	}
	return strconv.Atoi(fields[1])
}

func twoInts(fields []string) (int, int, error) {
	if len(fields) != 3 {
		return 0, 0, fmt.Errorf("expected 2 arguments, got %d", len(fields)-1)
	}
	a, err := strconv.Atoi(fields[1])
	if err != nil {
		return 0, 0, err
	}
	b, err := strconv.Atoi(fields[2])
	if err != nil {
		return 0, 0, err
	}
	return a, b, nil
}
