package scanner

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Scanner enumerates CSV files for directory ingestion.
// Stateless and safe for concurrent use.
type Scanner struct{}

// NewScanner creates a Scanner.
func NewScanner() *Scanner {
	return &Scanner{}
}

// ScanDirectory returns the paths of every candidate CSV file directly
// inside dirPath, sorted by name. Subdirectories are not descended into;
// non-CSV files and irregular entries are ignored.
func (s *Scanner) ScanDirectory(dirPath string) ([]string, error) {
	entries, err := os.ReadDir(dirPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", dirPath, err)
	}

	var files []string
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		if !IsCSV(entry.Name()) {
			continue
		}
		files = append(files, filepath.Join(dirPath, entry.Name()))
	}

	sort.Strings(files)
	return files, nil
}

// IsCSV reports whether the file name carries a .csv extension,
// case-insensitive.
func IsCSV(name string) bool {
	return strings.EqualFold(filepath.Ext(name), ".csv")
}
