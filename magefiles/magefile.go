//go:build mage

// Build targets for wcjs-rebuild. Run "mage -l" to list them.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

const (
	binary  = "wcjs-rebuild"
	mainPkg = "./cmd/wcjs-rebuild"
)

// Default target to run when none is specified.
var Default = Build

// Build compiles the wcjs-rebuild binary into bin/.
func Build() error {
	mg.Deps(Vet)

	version := os.Getenv("VERSION")
	if version == "" {
		version = "dev"
	}
	commit, err := sh.Output("git", "rev-parse", "--short", "HEAD")
	if err != nil {
		commit = "unknown"
	}

	ldflags := fmt.Sprintf("-X main.Version=%s -X main.Commit=%s", version, commit)
	return sh.RunV("go", "build", "-ldflags", ldflags, "-o", filepath.Join("bin", binary), mainPkg)
}

// Install puts wcjs-rebuild in GOBIN.
func Install() error {
	return sh.RunV("go", "install", mainPkg)
}

// Test runs the unit tests with the race detector.
func Test() error {
	return sh.RunV("go", "test", "-race", "./...")
}

// Vet runs go vet.
func Vet() error {
	return sh.RunV("go", "vet", "./...")
}

// Lint runs golangci-lint when it is installed.
func Lint() error {
	if _, err := sh.Output("golangci-lint", "version"); err != nil {
		fmt.Println("golangci-lint not installed, skipping")
		return nil
	}
	return sh.RunV("golangci-lint", "run", "./...")
}

// Clean removes build output.
func Clean() error {
	return sh.Rm("bin")
}
