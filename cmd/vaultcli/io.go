package main

import (
	"encoding/json"
	"fmt"
	"io/ioutil"
	"os"
	"strings"
)

// readInput reads path's content, or stdin if path is "-".
func readInput(path string) ([]byte, error) {
	if strings.TrimSpace(path) == "-" {
		return ioutil.ReadAll(os.Stdin)
	}
	return ioutil.ReadFile(path)
}

// readJSONFile reads path and unmarshals it into target.
func readJSONFile(path string, target interface{}) error {
	content, err := readInput(path)
	if err != nil {
		return fmt.Errorf("error reading %s: %w", path, err)
	}
	if err := json.Unmarshal(content, target); err != nil {
		return fmt.Errorf("error parsing %s: %w", path, err)
	}
	return nil
}
