// Command validate checks the rule preset files in a configs directory
// (../configs by default). For each .json, .yaml or .yml file it checks:
//   - the file decodes with no unknown keys
//   - name, description and every outcome message are present
//   - the sunk message formats the ship size with exactly one %d
//
// It exits non-zero if any file is invalid.
package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/wricardo/battleship-game/game/engine"
)

// ValidationResult captures the outcome of validating a single file.
// If Valid is true, Errors contains informational messages; otherwise it
// accumulates the validation errors that were found.
type ValidationResult struct {
	File   string
	Valid  bool
	Errors []string
}

func (r *ValidationResult) fail(format string, args ...interface{}) {
	r.Valid = false
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

func (r *ValidationResult) info(format string, args ...interface{}) {
	r.Errors = append(r.Errors, "✓ "+fmt.Sprintf(format, args...))
}

// decodeStrict decodes a preset, rejecting keys the game does not know.
func decodeStrict(path string, data []byte) (*engine.GameConfig, error) {
	var config engine.GameConfig
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&config); err != nil && !errors.Is(err, io.EOF) {
			return nil, err
		}
	default:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&config); err != nil {
			return nil, err
		}
	}
	return &config, nil
}

// validateConfig loads and validates a single preset file.
func validateConfig(filePath string) ValidationResult {
	result := ValidationResult{
		File:   filepath.Base(filePath),
		Valid:  true,
		Errors: []string{},
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		result.fail("Failed to read file: %v", err)
		return result
	}

	config, err := decodeStrict(filePath, data)
	if err != nil {
		result.fail("Invalid format: %v", err)
		return result
	}

	if strings.TrimSpace(config.Name) == "" {
		result.fail("Missing name")
	}
	if config.Description == "" {
		result.fail("Missing description")
	}

	messages := []struct {
		key   string
		value string
	}{
		{"welcome", config.Messages.Welcome},
		{"hit", config.Messages.Hit},
		{"miss", config.Messages.Miss},
		{"sunk", config.Messages.Sunk},
		{"already_fired", config.Messages.AlreadyFired},
		{"victory", config.Messages.Victory},
		{"defeat", config.Messages.Defeat},
	}
	for _, m := range messages {
		if strings.TrimSpace(m.value) == "" {
			result.fail("Missing required message: %s", m.key)
		}
	}

	if config.Messages.Sunk != "" {
		if err := engine.CheckSunkMessage(config.Messages.Sunk); err != nil {
			result.fail("%v", err)
		}
	}

	if result.Valid {
		// Catch anything the game itself would refuse.
		if err := engine.ValidateGameConfig(config); err != nil {
			result.fail("%v", err)
			return result
		}
		result.info("Moat reveal: %s", onOff(config.MoatReveal))
		result.info("Hit keeps turn: %s", onOff(config.HitRetainsTurn))
		result.info("Sunk message: %s", fmt.Sprintf(config.Messages.Sunk, engine.MaxShipSize))
	}
	return result
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}

// presetFiles lists the preset files in dir, sorted by name.
func presetFiles(dir string) ([]string, error) {
	var files []string
	for _, pattern := range []string{"*.json", "*.yaml", "*.yml"} {
		matches, err := filepath.Glob(filepath.Join(dir, pattern))
		if err != nil {
			return nil, err
		}
		files = append(files, matches...)
	}
	sort.Strings(files)
	return files, nil
}

// run validates every preset in dir, printing a report to w. It reports
// whether all of them are valid.
func run(dir string, w io.Writer) (bool, error) {
	files, err := presetFiles(dir)
	if err != nil {
		return false, fmt.Errorf("finding config files: %w", err)
	}
	if len(files) == 0 {
		return false, fmt.Errorf("no config files in %s", dir)
	}

	allValid := true
	for _, file := range files {
		result := validateConfig(file)

		fmt.Fprintf(w, "\n%s %s\n", strings.Repeat("=", 20), result.File)

		if result.Valid {
			fmt.Fprintln(w, "✅ VALID")
			for _, info := range result.Errors {
				fmt.Fprintln(w, "  "+info)
			}
		} else {
			fmt.Fprintln(w, "❌ INVALID")
			allValid = false
			for _, err := range result.Errors {
				if !strings.HasPrefix(err, "✓") {
					fmt.Fprintln(w, "  ❌ "+err)
				}
			}
		}
	}

	fmt.Fprintf(w, "\n%s\n", strings.Repeat("=", 40))
	if allValid {
		fmt.Fprintln(w, "✅ All configurations are valid!")
	} else {
		fmt.Fprintln(w, "❌ Some configurations have errors")
	}
	return allValid, nil
}

func main() {
	configDir := "../configs"
	if len(os.Args) > 1 {
		configDir = os.Args[1]
	}

	ok, err := run(configDir, os.Stdout)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	if !ok {
		os.Exit(1)
	}
}
