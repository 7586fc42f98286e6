package main

import (
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/wippyai/autoref/arena"
	"github.com/wippyai/autoref/ptr"
)

func main() {
	var (
		blocks      = flag.Int("blocks", 8, "Number of blocks to allocate")
		size        = flag.Int("size", 64, "Block size in bytes")
		retain      = flag.Int("retain", 0, "How many blocks to retain past their free")
		debug       = flag.Bool("debug", false, "Log allocation traffic")
		interactive = flag.Bool("i", false, "Interactive mode with TUI")
	)
	flag.Parse()

	if *interactive {
		if !term.IsTerminal(int(os.Stdout.Fd())) {
			fmt.Fprintln(os.Stderr, "Error: -i requires a terminal")
			os.Exit(1)
		}
		if err := runInteractive(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if err := run(*blocks, *size, *retain, *debug); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(blocks, size, retain int, debug bool) error {
	logger := zap.NewNop()
	if debug {
		l, err := zap.NewDevelopment()
		if err != nil {
			return fmt.Errorf("build logger: %w", err)
		}
		logger = l
		defer logger.Sync()
	}

	a := arena.New()
	a.Subscribe(arena.NewLogObserver(logger))

	fmt.Printf("Allocating %d blocks of %d bytes\n", blocks, size)
	handles := make([]arena.Handle, 0, blocks)
	for i := 0; i < blocks; i++ {
		h, err := a.Malloc(size)
		if err != nil {
			return fmt.Errorf("malloc: %w", err)
		}
		handles = append(handles, h)
	}

	var owners []*ptr.Ptr[arena.Block]
	for i := 0; i < retain && i < len(handles); i++ {
		owner, err := a.Retain(handles[i])
		if err != nil {
			return fmt.Errorf("retain: %w", err)
		}
		owners = append(owners, owner)
	}

	fmt.Printf("\nLive handles: %d\n", a.Len())
	a.Each(func(h arena.Handle, sz int) bool {
		strong, weak, _ := a.Stats(h)
		fmt.Printf("  handle %-4d %6d bytes  strong=%d weak=%d\n", h, sz, strong, weak)
		return true
	})

	fmt.Printf("\nFreeing all handles...\n")
	for _, h := range handles {
		if err := a.Free(h); err != nil {
			return fmt.Errorf("free: %w", err)
		}
	}

	if len(owners) > 0 {
		fmt.Printf("%d blocks survive their free through retained owners\n", len(owners))
		for _, o := range owners {
			o.Release()
		}
		fmt.Printf("Owners released, blocks deallocated\n")
	}

	if err := a.Close(); err != nil {
		return fmt.Errorf("close: %w", err)
	}
	fmt.Printf("Arena closed cleanly\n")
	return nil
}
