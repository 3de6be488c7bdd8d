package main

import (
	"bytes"
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/iley/gifscript/internal/codegen"
	"github.com/iley/gifscript/internal/codegen/ccode"
	"github.com/iley/gifscript/internal/compiler"
	"github.com/iley/gifscript/internal/logger"
	"github.com/iley/gifscript/internal/opt"
)

// TestCase represents a single test case
type TestCase struct {
	Name         string
	SourceFile   string
	ExpectedFile string
}

// discoverTests finds every .gs file in the tests directory with a
// matching .out file
func discoverTests(testsDir string) ([]TestCase, error) {
	var tests []TestCase

	err := filepath.WalkDir(testsDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if !d.IsDir() && strings.HasSuffix(path, ".gs") {
			baseName := strings.TrimSuffix(filepath.Base(path), ".gs")
			expectedFile := filepath.Join(testsDir, baseName+".out")

			if _, err := os.Stat(expectedFile); err == nil {
				tests = append(tests, TestCase{
					Name:         baseName,
					SourceFile:   path,
					ExpectedFile: expectedFile,
				})
			}
		}

		return nil
	})

	return tests, err
}

// compileTest compiles a test source with the default gifscript settings
func compileTest(testCase TestCase) (string, error) {
	var out bytes.Buffer
	cfg := compiler.Config{
		Target:        codegen.TargetCCode,
		EmitMode:      ccode.EmitDefs,
		Optimizations: opt.All,
		Logger:        logger.New(os.Stderr, logger.LevelFromEnv(logger.LevelSilent)),
	}
	if _, err := compiler.CompileFiles(context.Background(), []string{testCase.SourceFile}, cfg, &out); err != nil {
		return "", err
	}
	return out.String(), nil
}

// runSingleTest runs a single test case and returns pass/fail status
func runSingleTest(testCase TestCase) (bool, string) {
	fmt.Printf("Running test %s... ", testCase.Name)

	actualOutput, err := compileTest(testCase)
	if err != nil {
		return false, fmt.Sprintf("compilation error: %v", err)
	}

	expected, err := os.ReadFile(testCase.ExpectedFile)
	if err != nil {
		return false, fmt.Sprintf("error reading expected output: %v", err)
	}

	if actualOutput == string(expected) {
		return true, ""
	}

	// Leave the actual output next to the expectation for inspection.
	actualFile := strings.TrimSuffix(testCase.ExpectedFile, ".out") + ".actual"
	if err := os.WriteFile(actualFile, []byte(actualOutput), 0o644); err != nil {
		return false, fmt.Sprintf("output mismatch, and writing %s failed: %v", actualFile, err)
	}
	return false, fmt.Sprintf("output mismatch, see %s", actualFile)
}

// findTestCase finds a test case by number or path
func findTestCase(tests []TestCase, identifier string) (*TestCase, error) {
	if strings.Contains(identifier, "/") || strings.HasSuffix(identifier, ".gs") {
		identifier = strings.TrimSuffix(identifier, ".gs")
		identifier = strings.TrimPrefix(identifier, "tests/")

		for _, test := range tests {
			if test.Name == identifier {
				return &test, nil
			}
		}
		return nil, fmt.Errorf("test not found: %s", identifier)
	}

	// A bare number selects the test whose name starts with it.
	for _, test := range tests {
		if strings.HasPrefix(test.Name, identifier+"_") || test.Name == identifier {
			return &test, nil
		}
	}

	return nil, fmt.Errorf("test not found: %s", identifier)
}

func main() {
	testsDir := "tests"
	tests, err := discoverTests(testsDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error discovering tests: %v\n", err)
		os.Exit(1)
	}

	if len(tests) == 0 {
		fmt.Println("No tests found in tests/ directory")
		return
	}

	sort.Slice(tests, func(i, j int) bool {
		return tests[i].Name < tests[j].Name
	})

	var testsToRun []TestCase
	if len(os.Args) > 1 {
		testCase, err := findTestCase(tests, os.Args[1])
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		testsToRun = []TestCase{*testCase}
		fmt.Printf("Running specific test: %s\n", testCase.Name)
	} else {
		testsToRun = tests
		if len(tests) == 1 {
			fmt.Printf("Found 1 test\n")
		} else {
			fmt.Printf("Found %d tests\n", len(tests))
		}
	}

	passed := 0
	failed := 0

	for _, test := range testsToRun {
		success, errorMsg := runSingleTest(test)
		if success {
			fmt.Println("PASS")
			passed++
		} else {
			fmt.Printf("FAIL - %s\n", errorMsg)
			failed++
		}
	}

	if failed == 0 {
		fmt.Printf("Test Results: %d passed. All good!\n", passed)
	} else {
		fmt.Printf("Test Results: %d passed, %d failed\n", passed, failed)
	}

	if failed > 0 {
		os.Exit(1)
	}
}
