//go:build mage

// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package main

import (
	"path/filepath"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// Test groups test targets.
type Test mg.Namespace

// All runs every package's tests.
func (Test) All() error {
	return sh.RunV(binGo, "test", "./...")
}

// Verbose runs every package's tests with -v.
func (Test) Verbose() error {
	return sh.RunV(binGo, "test", "-v", "./...")
}

// Cover runs all tests and writes bin/coverage.out.
func (Test) Cover() error {
	mg.Deps(ensureBinDir)
	profile := filepath.Join(binaryDir, "coverage.out")
	if err := sh.RunV(binGo, "test", "-coverprofile="+profile, "./..."); err != nil {
		return err
	}
	return sh.RunV(binGo, "tool", "cover", "-func="+profile)
}

// Golden regenerates the CLI golden files.
func (Test) Golden() error {
	return sh.RunV(binGo, "test", "./internal/cli/...", "-update")
}
