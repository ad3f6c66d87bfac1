// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package docindex

import (
	"bufio"
	"bytes"
	"compress/zlib"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"

	"go.yaml.in/yaml/v3"
)

// loadText reads one symbol per line. Blank lines and "#" comments are
// skipped.
func loadText(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var names []string
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		names = append(names, line)
	}
	return names, nil
}

// indexFile is the YAML layout of a doc index.
type indexFile struct {
	Symbols []string `yaml:"symbols"`
}

func loadYAML(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var f indexFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing YAML: %w", err)
	}
	return f.Symbols, nil
}

const inventoryHeader = "# Sphinx inventory version 2"

// inventoryLine matches "name domain:role priority uri dispname".
var inventoryLine = regexp.MustCompile(`^(.+?)\s+(\S+):(\S+)\s+(-?\d+)\s+(\S*)\s+(.*)$`)

// loadInventory reads the Python-domain entries of a Sphinx objects.inv.
func loadInventory(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	r := bufio.NewReader(bytes.NewReader(data))
	for i := 0; i < 4; i++ {
		line, err := r.ReadString('\n')
		if err != nil {
			return nil, fmt.Errorf("truncated inventory header")
		}
		if i == 0 && strings.TrimSpace(line) != inventoryHeader {
			return nil, fmt.Errorf("unsupported inventory %q", strings.TrimSpace(line))
		}
	}

	zr, err := zlib.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("opening inventory body: %w", err)
	}
	defer zr.Close()
	body, err := io.ReadAll(zr)
	if err != nil {
		return nil, fmt.Errorf("reading inventory body: %w", err)
	}

	var names []string
	for _, line := range strings.Split(string(body), "\n") {
		m := inventoryLine.FindStringSubmatch(strings.TrimRight(line, "\r"))
		if m == nil || m[2] != "py" {
			continue
		}
		names = append(names, m[1])
	}
	return names, nil
}
