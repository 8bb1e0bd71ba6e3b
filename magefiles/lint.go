//go:build mage

// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package main

import "github.com/magefile/mage/sh"

const binLint = "golangci-lint"

// Lint runs go vet and golangci-lint.
func Lint() error {
	if err := sh.RunV(binGo, "vet", "./..."); err != nil {
		return err
	}
	return sh.RunV(binLint, "run", "./...")
}

// LintTables runs the naming checks over the sample definitions.
func LintTables() error {
	files, err := sampleDefinitions()
	if err != nil {
		return err
	}
	args := append([]string{"run", cmdDir, "lint"}, files...)
	return sh.RunV(binGo, args...)
}
