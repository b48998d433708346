//go:build mage

// Package main provides build targets for the shelf project using Mage.
//
// Usage:
//
//	mage build      Compile the shelf binary to bin/ (pure-Go driver)
//	mage buildCgo   Compile with the cgo driver (-tags cgo_sqlite)
//	mage test       Run all tests
//	mage testCgo    Run all tests against the cgo driver
//	mage lint       Run golangci-lint
//	mage clean      Remove build artifacts
//	mage install    Install shelf to GOPATH/bin
package main

import (
	"os"
	"path/filepath"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

const (
	binGo      = "go"
	binLint    = "golangci-lint"
	binaryName = "shelf"
	binaryDir  = "bin"
	cmdDir     = "./cmd/shelf"
	cgoTag     = "cgo_sqlite"
)

// Build compiles the shelf binary to bin/.
func Build() error {
	if err := os.MkdirAll(binaryDir, 0o755); err != nil {
		return err
	}
	return sh.RunV(binGo, "build", "-v", "-o", filepath.Join(binaryDir, binaryName), cmdDir)
}

// BuildCgo compiles the shelf binary against mattn/go-sqlite3.
func BuildCgo() error {
	if err := os.MkdirAll(binaryDir, 0o755); err != nil {
		return err
	}
	return sh.RunWithV(map[string]string{"CGO_ENABLED": "1"},
		binGo, "build", "-v", "-tags", cgoTag, "-o", filepath.Join(binaryDir, binaryName), cmdDir)
}

// Test runs all tests.
func Test() error {
	return sh.RunV(binGo, "test", "./...")
}

// TestCgo runs all tests with the cgo driver.
func TestCgo() error {
	return sh.RunWithV(map[string]string{"CGO_ENABLED": "1"}, binGo, "test", "-tags", cgoTag, "./...")
}

// Lint runs golangci-lint.
func Lint() error {
	return sh.RunV(binLint, "run", "./...")
}

// Clean removes build artifacts.
func Clean() error {
	if err := os.RemoveAll(binaryDir); err != nil {
		return err
	}
	return sh.RunV(binGo, "clean")
}

// Install builds and copies the binary to GOPATH/bin.
func Install() error {
	mg.Deps(Build)
	gopath, err := sh.Output(binGo, "env", "GOPATH")
	if err != nil {
		return err
	}
	src := filepath.Join(binaryDir, binaryName)
	dst := filepath.Join(gopath, "bin", binaryName)
	return sh.Copy(dst, src)
}
