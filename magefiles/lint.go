//go:build mage

// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package main

import (
	"fmt"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"

	"github.com/mesh-intelligence/storeadmin/internal/catalog"
)

const binLint = "golangci-lint"

// Lint checks the table catalog, then runs go vet and golangci-lint.
func Lint() error {
	mg.Deps(Catalog)
	if err := sh.RunV(binGo, "vet", "./..."); err != nil {
		return err
	}
	return sh.RunV(binLint, "run", "./...")
}

// Catalog validates every table schema storeadmin manages: keys, searchable
// and required columns must be declared, choice columns need options or a
// reference.
func Catalog() error {
	if err := catalog.Validate(); err != nil {
		return fmt.Errorf("catalog: %w", err)
	}
	fmt.Printf("catalog ok: %d tables\n", len(catalog.All()))
	return nil
}
