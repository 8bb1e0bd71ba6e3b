//go:build mage

// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package main provides build targets for tablectl using Mage.
//
// Usage:
//
//	mage build          Compile tablectl to bin/
//	mage test:all       Run all tests
//	mage test:unit      Run tests without the git-backed ones
//	mage test:cover     Run tests with a coverage profile
//	mage test:smoke     Apply the sample definitions to a scratch catalog
//	mage lint           Run golangci-lint
//	mage clean          Remove build artifacts
//	mage install        Install tablectl to GOPATH/bin
package main

import (
	"os"
	"path/filepath"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

const (
	binGo      = "go"
	binaryName = "tablectl"
	binaryDir  = "bin"
	cmdDir     = "./cmd/tablectl"
	versionVar = "github.com/mesh-intelligence/tablectl/internal/cli.Version"
)

// Build compiles the tablectl binary to bin/, stamping the version from
// git describe when available.
func Build() error {
	if err := os.MkdirAll(binaryDir, 0o755); err != nil {
		return err
	}
	ldflags := ""
	if v, err := sh.Output("git", "describe", "--tags", "--always", "--dirty"); err == nil && v != "" {
		ldflags = "-X " + versionVar + "=" + v
	}
	return sh.RunV(binGo, "build", "-v", "-ldflags", ldflags, "-o", binaryPath(), cmdDir)
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
	return sh.Copy(filepath.Join(gopath, "bin", binaryName), binaryPath())
}

func binaryPath() string {
	return filepath.Join(binaryDir, binaryName)
}
