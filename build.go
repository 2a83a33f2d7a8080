//go:build ignore

// build.go - stockdash build system
// Usage: go run build.go [-target=TARGET] [-v]
// Targets: all, loader, analyzer, dashboard, test, clean

package main

import (
	"flag"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"time"
)

const (
	version = "1.0.0"
	module  = "stockdash"
	distDir = "dist"
)

// executables lists every command under cmd/
var executables = []string{"loader", "analyzer", "dashboard"}

var (
	colorReset = "\033[0m"
	colorRed   = "\033[31m"
	colorGreen = "\033[32m"
	colorCyan  = "\033[36m"
)

func main() {
	target := flag.String("target", "all", "Build target")
	verbose := flag.Bool("v", false, "Verbose output")
	flag.Parse()

	if runtime.GOOS == "windows" {
		colorReset, colorRed, colorGreen, colorCyan = "", "", "", ""
	}

	fmt.Printf("%s%s build %s (%s/%s)%s\n", colorCyan, module, version, runtime.GOOS, runtime.GOARCH, colorReset)
	start := time.Now()

	var err error
	switch *target {
	case "all":
		for _, name := range executables {
			if err = buildExecutable(name, *verbose); err != nil {
				break
			}
		}
	case "loader", "analyzer", "dashboard":
		err = buildExecutable(*target, *verbose)
	case "test":
		err = runCommand(*verbose, "go", "test", "-race", "./...")
	case "clean":
		err = os.RemoveAll(distDir)
	default:
		showHelp()
		os.Exit(1)
	}

	if err != nil {
		fmt.Printf("%s✗ %v%s\n", colorRed, err, colorReset)
		os.Exit(1)
	}
	fmt.Printf("%s✓ Build completed in %s%s\n", colorGreen, time.Since(start).Round(time.Millisecond), colorReset)
}

// buildExecutable compiles cmd/<name> into dist/ with the version stamped in
func buildExecutable(name string, verbose bool) error {
	if err := os.MkdirAll(distDir, 0755); err != nil {
		return fmt.Errorf("failed to create %s: %w", distDir, err)
	}

	output := filepath.Join(distDir, name)
	if runtime.GOOS == "windows" {
		output += ".exe"
	}

	fmt.Printf("Building %s -> %s\n", name, output)
	return runCommand(verbose, "go", "build",
		"-trimpath",
		"-ldflags", "-s -w",
		"-o", output,
		"./cmd/"+name,
	)
}

func runCommand(verbose bool, name string, args ...string) error {
	cmd := exec.Command(name, args...)
	cmd.Stderr = os.Stderr
	if verbose {
		cmd.Stdout = os.Stdout
		fmt.Printf("  $ %s %v\n", name, args)
	}
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%s %v failed: %w", name, args, err)
	}
	return nil
}

func showHelp() {
	fmt.Println("Usage: go run build.go -target=<target>")
	fmt.Println()
	fmt.Println("Targets:")
	fmt.Println("  all        build loader, analyzer and dashboard into dist/")
	fmt.Println("  loader     build the ETL loader")
	fmt.Println("  analyzer   build the batch dashboard generator")
	fmt.Println("  dashboard  build the HTTP dashboard server")
	fmt.Println("  test       run the test suite with the race detector")
	fmt.Println("  clean      remove dist/")
}
