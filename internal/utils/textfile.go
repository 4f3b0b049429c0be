package utils

import (
	"bufio"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// ReadPatternLines reads an ignore-style file and returns its patterns,
// slash-separated with any leading "./" and trailing "/" removed. Blank lines
// and # comments are skipped. A missing file yields no patterns.
func ReadPatternLines(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	defer f.Close()

	var lines []string
	s := bufio.NewScanner(f)
	for s.Scan() {
		line := strings.TrimSpace(s.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		line = filepath.ToSlash(line)
		line = strings.TrimPrefix(line, "./")
		line = strings.TrimSuffix(line, "/")
		if line == "" {
			continue
		}
		lines = append(lines, line)
	}
	if err := s.Err(); err != nil {
		return nil, err
	}
	return lines, nil
}
