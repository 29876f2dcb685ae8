// Command validate checks the maze configuration files in a configs directory
// (../configs by default, or the directory given as the first argument). It checks:
//   - JSON structure and required fields
//   - Dimensions and the wall drawing of the layout
//   - That the goal region is reachable from the start cell
//   - Cells cut off from the start, and a start cell that is not walled on three sides (warnings)
package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/wricardo/micromouse/game/engine"
	"github.com/wricardo/micromouse/game/maze"
)

// ValidationResult captures the outcome of validating a single file.
// Errors make the file invalid; Warnings and Info are reported either way.
type ValidationResult struct {
	File     string
	Valid    bool
	Errors   []string
	Warnings []string
	Info     []string
}

func (r *ValidationResult) fail(format string, args ...interface{}) {
	r.Valid = false
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

// validateConfig loads and validates a single maze config file.
func validateConfig(filePath string) ValidationResult {
	result := ValidationResult{
		File:  filepath.Base(filePath),
		Valid: true,
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		result.fail("Failed to read file: %v", err)
		return result
	}

	var cfg maze.Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		result.fail("Invalid JSON: %v", err)
		return result
	}

	if err := maze.ValidateConfig(&cfg); err != nil {
		result.fail("%s", strings.TrimPrefix(err.Error(), maze.ErrInvalidConfig.Error()+": "))
		return result
	}
	m, err := maze.Parse(&cfg)
	if err != nil {
		result.fail("%v", err)
		return result
	}

	checkLayout(m, &result)

	path, _ := m.ShortestPath()
	result.Info = append(result.Info,
		fmt.Sprintf("✓ Name: %s", cfg.Name),
		fmt.Sprintf("✓ Grid: %dx%d", cfg.Width, cfg.Height),
		fmt.Sprintf("✓ Shortest path: %d cells", len(path)),
		fmt.Sprintf("✓ Dead ends: %d", m.DeadEnds()),
	)
	if stem := strings.TrimSuffix(result.File, ".json"); stem != cfg.Name {
		result.Warnings = append(result.Warnings, fmt.Sprintf("Name %q differs from file name %q", cfg.Name, stem))
	}
	return result
}

// checkLayout adds warnings for layouts that are legal but unusual for a contest maze.
func checkLayout(m *maze.Maze, result *ValidationResult) {
	total := m.Width() * m.Height()
	if reached := m.Reachable(); reached < total {
		result.Warnings = append(result.Warnings, fmt.Sprintf("%d/%d cells unreachable from the start", total-reached, total))
	}

	if total > 1 {
		if open := len(m.Open(engine.Origin)); open != 1 {
			result.Warnings = append(result.Warnings, fmt.Sprintf("Start cell has %d open sides, contest mazes have 1", open))
		}
	}
}

// validateDir validates every *.json file in dir.
func validateDir(dir string) ([]ValidationResult, error) {
	files, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return nil, fmt.Errorf("error finding config files: %w", err)
	}
	if len(files) == 0 {
		return nil, errors.New("no config files found in " + dir)
	}
	results := make([]ValidationResult, 0, len(files))
	for _, file := range files {
		results = append(results, validateConfig(file))
	}
	return results, nil
}

// main validates each config, printing a concise report and exiting with non-zero
// status if any are invalid.
func main() {
	configDir := "../configs"
	if len(os.Args) > 1 {
		configDir = os.Args[1]
	}

	results, err := validateDir(configDir)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	allValid := true
	for _, result := range results {
		fmt.Printf("\n%s %s\n", strings.Repeat("=", 20), result.File)

		if result.Valid {
			fmt.Println("✅ VALID")
			for _, info := range result.Info {
				fmt.Println("  " + info)
			}
		} else {
			fmt.Println("❌ INVALID")
			allValid = false
			for _, err := range result.Errors {
				fmt.Println("  ❌ " + err)
			}
		}
		for _, w := range result.Warnings {
			fmt.Println("  ⚠ " + w)
		}
	}

	fmt.Printf("\n%s\n", strings.Repeat("=", 40))
	if allValid {
		fmt.Println("✅ All configurations are valid!")
	} else {
		fmt.Println("❌ Some configurations have errors")
		os.Exit(1)
	}
}
