//go:build mage

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main contains Mage build targets for pubsite developer tooling.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

const (
	binDir  = "bin"
	binName = "pubsite"
	cmdPkg  = "./cmd/pubsite"
	siteDir = "site"
)

// projectDirs lists the working directories the CLI writes to.
var projectDirs = []string{
	siteDir,
	"catalog",
	".secrets",
}

// Default target runs the tests and builds the binary.
var Default = All

// All runs Test then Build.
func All() {
	mg.SerialDeps(Test, Build)
}

// Init creates the working directories and a starter config file.
func Init() error {
	for _, dir := range projectDirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating %s: %w", dir, err)
		}
		fmt.Println("  ", dir)
	}

	const cfg = "pubsite.yaml"
	if _, err := os.Stat(cfg); os.IsNotExist(err) {
		starter := `sources:
  conferences_path: ""   # empty uses the built-in list
  bibliography_path: ""  # empty uses the built-in bibliography
render:
  recent_limit: 10
  timezone: ""
  output_path: site/index.html
catalog:
  dir: catalog
serve:
  addr: 127.0.0.1:8080
`
		if err := os.WriteFile(cfg, []byte(starter), 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", cfg, err)
		}
		fmt.Println("  ", cfg)
	}
	fmt.Println("Project initialized.")
	return nil
}

// Build compiles the CLI binary into bin/.
func Build() error {
	if err := os.MkdirAll(binDir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", binDir, err)
	}
	out := filepath.Join(binDir, binName)
	version := os.Getenv("VERSION")
	if version == "" {
		version = "dev"
	}
	if err := sh.RunV("go", "build", "-ldflags", "-X main.version="+version, "-o", out, cmdPkg); err != nil {
		return fmt.Errorf("go build: %w", err)
	}
	fmt.Printf("Built %s\n", out)
	return nil
}

// Test runs the unit tests.
func Test() error {
	return sh.RunV("go", "test", "./...")
}

// Site builds the binary and renders site/index.html.
func Site() error {
	mg.Deps(Build)
	return sh.RunV(filepath.Join(binDir, binName), "build", "--out", filepath.Join(siteDir, "index.html"))
}

// Clean removes build output.
func Clean() error {
	for _, dir := range []string{binDir, siteDir} {
		if err := sh.Rm(dir); err != nil {
			return err
		}
	}
	return nil
}
