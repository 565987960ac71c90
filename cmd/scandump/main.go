// scandump runs one scan over a tree and dumps the JSON export. It is
// a developer utility for inspecting engine output, not the product
// surface that consumes this library.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/codescope-io/codescope/internal/config"
	"github.com/codescope-io/codescope/internal/export"
	"github.com/codescope-io/codescope/internal/scan"
)

// cliFlags parsed from the command line.
type cliFlags struct {
	Root    string
	Out     string
	Timeout time.Duration
}

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	var flags cliFlags

	fs := flag.NewFlagSet("scandump", flag.ContinueOnError)
	fs.StringVar(&flags.Root, "root", ".", "path to the tree to scan")
	fs.StringVar(&flags.Out, "out", "", "output file (default stdout)")
	fs.DurationVar(&flags.Timeout, "timeout", 2*time.Minute, "overall scan deadline")

	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := config.Load(flags.Root)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	scanner := scan.NewScanner(
		scan.WithCache(scan.NewCache(cfg.CacheSize)),
		scan.WithCollectOptions(scan.CollectOptions{
			UseGitignore: cfg.UseGitignore,
			Excludes:     cfg.ExcludeDirs,
		}),
	)

	ctx, cancel := context.WithTimeout(context.Background(), flags.Timeout)
	defer cancel()

	result, err := scanner.Scan(ctx, flags.Root)
	if err != nil {
		return fmt.Errorf("scan %s: %w", flags.Root, err)
	}
	if cfg.Verbose {
		log.Printf("scandump: %d nodes, %d findings, verdict %s",
			len(result.CodeGraph), len(result.Findings), result.Verdict.Status)
	}

	if flags.Out != "" {
		return export.WriteJSON(result, flags.Out)
	}

	data, err := export.Marshal(result)
	if err != nil {
		return err
	}
	_, err = os.Stdout.Write(data)
	return err
}
