//go:build mage

// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package main provides build targets for storeadmin using Mage.
//
// Usage:
//
//	mage build        Compile the storeadmin binary to bin/
//	mage test:all     Run all tests
//	mage test:cover   Run all tests with a coverage profile
//	mage lint         Validate the catalog, then run go vet and golangci-lint
//	mage catalog      Validate the table catalog
//	mage demo         Build and create a sample database under bin/demo
//	mage clean        Remove build artifacts
//	mage install      Install storeadmin to GOPATH/bin
//	mage stats        Print Go LOC per package and a catalog summary
package main

import (
	"os"
	"path/filepath"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

const (
	binGo      = "go"
	binaryName = "storeadmin"
	binaryDir  = "bin"
	cmdDir     = "./cmd/storeadmin"
	versionVar = "github.com/mesh-intelligence/storeadmin/internal/cli.Version"
)

// Build compiles the storeadmin binary to bin/. VERSION, when set, is
// stamped into the binary.
func Build() error {
	if err := os.MkdirAll(binaryDir, 0o755); err != nil {
		return err
	}
	args := []string{"build", "-v", "-o", filepath.Join(binaryDir, binaryName)}
	if v := os.Getenv("VERSION"); v != "" {
		args = append(args, "-ldflags", "-X "+versionVar+"="+v)
	}
	return sh.RunV(binGo, append(args, cmdDir)...)
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

// Demo builds the binary and initializes a sample store under bin/demo.
// Open it with: bin/storeadmin --config-dir bin/demo --data-dir bin/demo
func Demo() error {
	mg.Deps(Build)
	dir := filepath.Join(binaryDir, "demo")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	return sh.RunV(filepath.Join(binaryDir, binaryName),
		"--config-dir", dir, "--data-dir", dir, "init", "--sample")
}

func ensureBinDir() error {
	return os.MkdirAll(binaryDir, 0o755)
}
