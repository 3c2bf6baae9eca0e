package smartform

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/hbollon/go-edlib"

	sferrors "github.com/a3tai/mcp-smartform-parser/internal/smartform/errors"
)

const (
	modifiedTimeLayout = "2006-01-02 15:04:05"

	// query words at least this long tolerate one typo
	typoMinWordLength = 4
	typoMaxDistance   = 1
)

// Search handles discovery of row export files
type Search struct {
	validator *Validator
}

// NewSearch creates a new row export search handler
func NewSearch(validator *Validator) *Search {
	return &Search{validator: validator}
}

// SearchDirectory searches for row export files in the specified directory.
// The query is matched loosely against file names; the optional pattern is a
// doublestar glob matched against the slash separated path relative to the
// directory.
func (s *Search) SearchDirectory(req SearchDirectoryRequest) (*SearchDirectoryResult, error) {
	query := strings.ToLower(strings.TrimSpace(req.Query))
	pattern := strings.TrimSpace(req.Pattern)
	if pattern != "" && !doublestar.ValidatePattern(pattern) {
		return nil, sferrors.Newf(sferrors.ErrorTypeInvalidInput, "invalid glob pattern: %q", pattern)
	}

	files, absDirectory, err := s.walk(req.Directory, 0, func(relPath, name string) bool {
		if pattern != "" {
			if matched, _ := doublestar.Match(pattern, relPath); !matched {
				return false
			}
		}
		return s.matchesQuery(name, query)
	})
	if err != nil {
		return nil, err
	}

	return &SearchDirectoryResult{
		Files:       files,
		TotalCount:  len(files),
		Directory:   absDirectory,
		SearchQuery: req.Query,
		Pattern:     req.Pattern,
	}, nil
}

// FindLimited finds row export files in a directory, stopping after limit
// files. A limit of zero means no limit.
func (s *Search) FindLimited(directory string, limit int) ([]FileInfo, error) {
	files, _, err := s.walk(directory, limit, nil)
	return files, err
}

func (s *Search) walk(directory string, limit int, match func(relPath, name string) bool) ([]FileInfo, string, error) {
	if directory == "" {
		return nil, "", fmt.Errorf("directory cannot be empty")
	}

	if _, err := os.Stat(directory); os.IsNotExist(err) {
		return nil, "", fmt.Errorf("directory does not exist: %s", directory)
	}

	absDirectory, err := filepath.Abs(directory)
	if err != nil {
		return nil, "", fmt.Errorf("failed to resolve directory path: %w", err)
	}

	files := []FileInfo{}
	err = filepath.WalkDir(absDirectory, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil //nolint:nilerr // keep walking past unreadable entries
		}

		if d.IsDir() {
			if strings.HasPrefix(d.Name(), ".") && path != absDirectory {
				return filepath.SkipDir
			}
			return nil
		}

		if limit > 0 && len(files) >= limit {
			return filepath.SkipAll
		}

		if !IsRowExportFile(d.Name()) {
			return nil
		}
		if match != nil {
			relPath, err := filepath.Rel(absDirectory, path)
			if err != nil || !match(filepath.ToSlash(relPath), d.Name()) {
				return nil
			}
		}

		info, err := d.Info()
		if err != nil {
			return nil //nolint:nilerr // file vanished mid-walk
		}
		if err := s.validator.ValidateFileInfo(path, info); err != nil {
			return nil //nolint:nilerr // skip invalid files
		}

		files = append(files, FileInfo{
			Path:         path,
			Name:         info.Name(),
			Size:         info.Size(),
			ModifiedTime: info.ModTime().Format(modifiedTimeLayout),
		})
		return nil
	})
	if err != nil {
		return nil, "", fmt.Errorf("error walking directory: %w", err)
	}

	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
	return files, absDirectory, nil
}

// matchesQuery performs fuzzy matching on the filename. Every query word has
// to appear in some word of the name, or be one edit away from it.
func (s *Search) matchesQuery(filename, query string) bool {
	if query == "" {
		return true
	}

	name := strings.ToLower(filename)
	if strings.Contains(name, query) {
		return true
	}

	words := splitIntoWords(strings.TrimSuffix(name, rowExportExtension))
	for _, queryWord := range splitIntoWords(query) {
		found := false
		for _, word := range words {
			if strings.Contains(word, queryWord) || nearMiss(word, queryWord) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}

	return true
}

// splitIntoWords splits a string on common file name separators
func splitIntoWords(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		switch r {
		case ' ', '_', '-', '.', '(', ')', '[', ']':
			return true
		}
		return false
	})
}

func nearMiss(word, queryWord string) bool {
	if len(queryWord) < typoMinWordLength {
		return false
	}
	return edlib.LevenshteinDistance(word, queryWord) <= typoMaxDistance
}
