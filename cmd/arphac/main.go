// Command arphac is Arpha's CLI front end: it wraps pkg/arpha.Resolve for
// a source file and prints diagnostics to the terminal.
//
// Grounded on funvibe/funxy's cmd/funxy subcommand dispatch (no cobra and
// no flag package — a small hand-rolled switch on os.Args[1]), kept here for the
// same reason funxy uses it: a single-binary compiler CLI with only a
// couple of subcommands doesn't need a full command framework.
package main

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"

	"github.com/hyp/arpha/internal/cache"
	"github.com/hyp/arpha/internal/config"
	"github.com/hyp/arpha/internal/diagnostics"
	"github.com/hyp/arpha/pkg/arpha"
)

// cacheSchemaVersion tags the resolve-result cache's fingerprints so a
// resolver change invalidates old entries instead of misinterpreting them
// (spec.md §12's versioned-fingerprint requirement, internal/cache).
const cacheSchemaVersion = 1

const version = "0.1.0"

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}
	switch os.Args[1] {
	case "resolve":
		os.Exit(runResolve(os.Args[2:]))
	case "version":
		fmt.Println("arphac " + version)
	default:
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: arphac <resolve|version> [args]")
}

func runResolve(args []string) int {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "usage: arphac resolve <file>")
		return 2
	}
	path := args[0]
	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "arphac: %v\n", err)
		return 1
	}

	cfg := loadConfig(path)

	var store *cache.Store
	var fingerprint []byte
	if cfg.CachePath != "" {
		fingerprint = cache.Fingerprint(contentHash(data), cacheSchemaVersion)
		if s, err := cache.Open(cfg.CachePath); err == nil {
			store = s
			defer store.Close()
			if _, hit, _ := store.Get(fingerprint); hit {
				fmt.Printf("resolved %s: cached (clean on a previous run)\n", path)
				return 0
			}
		}
	}

	isTTY := diagnostics.DetectTTY(os.Stdout.Fd())
	program, diags := arpha.Resolve(path, string(data), arpha.WithMaxPasses(cfg.MaxPasses))

	sink := diagnostics.NewTerminalSink(os.Stdout, isTTY)
	sink.Source = map[string][]string{path: splitLines(string(data))}
	for _, d := range diags {
		sink.Report(d)
	}

	if sink.HasErrors() {
		return 1
	}
	if store != nil {
		store.Put(fingerprint, []byte("ok"))
	}
	if program != nil {
		fmt.Printf("resolved %s: %d top-level statements\n", path, len(program.Root.Children))
	}
	return 0
}

// loadConfig reads arpha.yaml from path's directory, falling back to
// config.Default() when absent (internal/config, spec.md §12's ambient
// project-config surface).
func loadConfig(path string) *config.Config {
	manifest := filepath.Join(filepath.Dir(path), "arpha.yaml")
	cfg, err := config.Load(manifest)
	if err != nil {
		return config.Default()
	}
	return cfg
}

// contentHash fingerprints a source file's exact bytes so arphac can skip
// re-resolving a file that was already clean on a previous run (backed by
// internal/cache; spec.md's Non-goals exclude a full incremental build
// system, but a whole-file resolve-result cache needs no AST
// serialization and is a direct, modest use of the same Store).
func contentHash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

func splitLines(s string) []string {
	var lines []string
	start := 0
	for i, r := range s {
		if r == '\n' {
			lines = append(lines, s[start:i])
			start = i + 1
		}
	}
	lines = append(lines, s[start:])
	return lines
}
