//go:build mage

// Package main contains Mage build targets for wikicite developer tooling.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

const (
	binDir  = "bin"
	binName = "wikicite"
	cmdPkg  = "./cmd/wikicite"

	stateDir   = ".wikicite"
	configFile = "wikicite.yaml"
)

// sampleConfig is written by Init when no config file exists.
const sampleConfig = `# wikicite configuration. Every key can also be set through a
# WIKICITE_* environment variable (e.g. WIKICITE_SCHEMA_API_URL).
http:
  timeout: 30s
  user_agent: wikicite/0.1
schema:
  api_url: https://en.wikipedia.org/w/api.php
  namespace: Template
  templates: [Citation, Cite book, Cite journal, Cite news, Cite web]
  noref_templates: []
  cache_ttl: 24h
  languages: [en]
lookup:
  rest_url: https://en.wikipedia.org/w/rest.php
  citoid_url: https://en.wikipedia.org/api/rest_v1/data/citation/mediawiki/
  wayback_url: https://archive.org/wayback/available
  search_limit: 5
store:
  dir: .wikicite
dates:
  day: "2006-01-02"
  month: "2006-01"
  year: "2006"
`

// Init creates the state directory and a sample config file.
func Init() error {
	if err := os.MkdirAll(stateDir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", stateDir, err)
	}
	fmt.Println("  ", stateDir)

	if _, err := os.Stat(configFile); err == nil {
		fmt.Printf("   %s exists, left unchanged\n", configFile)
		return nil
	}
	if err := os.WriteFile(configFile, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", configFile, err)
	}
	fmt.Println("  ", configFile)
	return nil
}

// Build compiles the CLI binary into bin/.
func Build() error {
	if err := os.MkdirAll(binDir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", binDir, err)
	}
	out := filepath.Join(binDir, binName)
	version, err := sh.Output("git", "describe", "--tags", "--always", "--dirty")
	if err != nil {
		version = "dev"
	}
	ldflags := "-X main.version=" + version
	if err := sh.RunV("go", "build", "-ldflags", ldflags, "-o", out, cmdPkg); err != nil {
		return fmt.Errorf("go build: %w", err)
	}
	fmt.Printf("Built %s\n", out)
	return nil
}

// Test runs the unit tests.
func Test() error {
	return sh.RunV("go", "test", "./...")
}

// Check vets the code and runs the tests.
func Check() error {
	if err := sh.RunV("go", "vet", "./..."); err != nil {
		return err
	}
	mg.Deps(Test)
	return nil
}

// FetchSchemas builds the CLI and refreshes the cached template schemas.
func FetchSchemas() error {
	mg.Deps(Build, Init)
	return sh.RunV(filepath.Join(binDir, binName), "schema", "fetch")
}

// Stats prints project metrics: Go production and test lines of code.
func Stats() error {
	prodLines, err := countGoLines(".", false)
	if err != nil {
		return err
	}
	testLines, err := countGoLines(".", true)
	if err != nil {
		return err
	}

	fmt.Printf("Lines of code (Go, production): %d\n", prodLines)
	fmt.Printf("Lines of code (Go, tests):      %d\n", testLines)
	return nil
}

// countGoLines walks the directory tree and counts non-blank lines in Go files.
// If testOnly is true, count only _test.go files; otherwise count non-test .go files.
func countGoLines(root string, testOnly bool) (int, error) {
	total := 0
	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			if strings.HasPrefix(info.Name(), "_") || info.Name() == ".git" {
				return filepath.SkipDir
			}
			return nil
		}
		if filepath.Ext(path) != ".go" {
			return nil
		}
		if strings.HasSuffix(path, "_test.go") != testOnly {
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading %s: %w", path, err)
		}
		for _, line := range strings.Split(string(data), "\n") {
			if strings.TrimSpace(line) != "" {
				total++
			}
		}
		return nil
	})
	return total, err
}
