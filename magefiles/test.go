//go:build mage

// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// sampleDir holds example definitions used by the smoke run.
const sampleDir = "examples/tables"

// Test groups test targets.
type Test mg.Namespace

// All runs all tests.
func (Test) All() error {
	return sh.RunV(binGo, "test", "-v", "./...")
}

// Unit runs the tests that need neither git nor a built binary.
func (Test) Unit() error {
	pkgs, err := sh.Output(binGo, "list", "./...")
	if err != nil {
		return err
	}
	var unitPkgs []string
	for pkg := range strings.SplitSeq(pkgs, "\n") {
		if pkg != "" && !strings.HasSuffix(pkg, "/internal/change") && !strings.HasSuffix(pkg, "/magefiles") {
			unitPkgs = append(unitPkgs, pkg)
		}
	}
	if len(unitPkgs) == 0 {
		fmt.Println("No unit test packages found.")
		return nil
	}
	return sh.RunV(binGo, append([]string{"test"}, unitPkgs...)...)
}

// Cover runs all tests with a coverage profile in bin/coverage.out.
func (Test) Cover() error {
	if err := os.MkdirAll(binaryDir, 0o755); err != nil {
		return err
	}
	profile := filepath.Join(binaryDir, "coverage.out")
	if err := sh.RunV(binGo, "test", "-coverprofile", profile, "./..."); err != nil {
		return err
	}
	return sh.RunV(binGo, "tool", "cover", "-func", profile)
}

// Smoke builds tablectl and applies the sample definitions to a scratch
// SQLite catalog, then deletes them again.
func (Test) Smoke() error {
	mg.Deps(Build)

	scratch, err := os.MkdirTemp("", "tablectl-smoke-")
	if err != nil {
		return err
	}
	defer os.RemoveAll(scratch)

	empty := filepath.Join(scratch, "empty")
	env := map[string]string{
		"TABLECTL_BACKEND":           "sqlite",
		"TABLECTL_CREATE_NAMESPACES": "true",
		"TABLECTL_DATA_DIR":          filepath.Join(scratch, "data"),
		"TABLECTL_CONFIG_DIR":        filepath.Join(scratch, "config"),
	}
	bin := binaryPath()

	steps := [][]string{
		{"apply", "--before-dir", empty, "--after-dir", sampleDir},
		{"apply", "--before-dir", empty, "--after-dir", sampleDir},
		{"tables", "list"},
		{"apply", "--before-dir", sampleDir, "--after-dir", empty},
	}
	for _, args := range steps {
		if err := sh.RunWithV(env, bin, args...); err != nil {
			return fmt.Errorf("tablectl %s: %w", strings.Join(args, " "), err)
		}
	}
	return nil
}

func sampleDefinitions() ([]string, error) {
	var files []string
	err := filepath.WalkDir(sampleDir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ext := filepath.Ext(path); !d.IsDir() && (ext == ".yaml" || ext == ".yml") {
			files = append(files, path)
		}
		return nil
	})
	return files, err
}
