package smartform

import (
	"context"
	"fmt"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	sferrors "github.com/a3tai/mcp-smartform-parser/internal/smartform/errors"
	"github.com/a3tai/mcp-smartform-parser/internal/smartform/parser"
	"github.com/a3tai/mcp-smartform-parser/internal/smartform/security"
)

const (
	directoryScanLimit   = 100
	directoryScanTimeout = 5 * time.Second
)

// ServiceOptions configures a Service
type ServiceOptions struct {
	ParseOptions     parser.Options
	MaxRequestSize   int64
	MaxRows          int
	Directory        string
	CacheSize        int
	BatchConcurrency int
}

// Service handles SmartForm parsing by orchestrating the parser, the
// validators, the result cache and file discovery.
type Service struct {
	opts             parser.Options
	maxRequestSize   int64
	maxRows          int
	batchConcurrency int
	validator        *Validator
	search           *Search
	cache            *ResultCache
	pathValidator    *security.PathValidator
}

// NewService creates a new SmartForm service with all components
func NewService(options ServiceOptions) (*Service, error) {
	pathValidator, err := security.NewPathValidator(options.Directory)
	if err != nil {
		return nil, fmt.Errorf("failed to create path validator: %w", err)
	}

	concurrency := options.BatchConcurrency
	if concurrency <= 0 {
		concurrency = 1
	}

	validator := NewValidator(options.MaxRequestSize, options.MaxRows)

	return &Service{
		opts:             options.ParseOptions,
		maxRequestSize:   options.MaxRequestSize,
		maxRows:          options.MaxRows,
		batchConcurrency: concurrency,
		validator:        validator,
		search:           NewSearch(validator),
		cache:            NewResultCache(options.CacheSize),
		pathValidator:    pathValidator,
	}, nil
}

// ParseRows parses one row stream into a document tree
func (s *Service) ParseRows(ctx context.Context, req ParseRequest) (*parser.Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, sferrors.Wrap(sferrors.ErrorTypeTimeout, err)
	}
	if err := s.validator.ValidateRows(req.Rows); err != nil {
		return nil, err
	}

	return s.parse(req.Rows, s.resolveOptions(req.Options))
}

// ParseFile reads a row export file from the configured directory and
// parses it
func (s *Service) ParseFile(ctx context.Context, req ParseFileRequest) (*parser.Result, error) {
	rows, err := s.ReadRows(ctx, req.Path)
	if err != nil {
		return nil, err
	}

	return s.ParseRows(ctx, ParseRequest{Rows: rows, Options: req.Options})
}

// ReadRows loads and decodes a row export file. Relative paths are taken
// relative to the configured directory.
func (s *Service) ReadRows(ctx context.Context, path string) ([]parser.Row, error) {
	if err := ctx.Err(); err != nil {
		return nil, sferrors.Wrap(sferrors.ErrorTypeTimeout, err)
	}

	resolved, err := s.pathValidator.Resolve(path)
	if err != nil {
		return nil, fmt.Errorf("security validation failed: %w", err)
	}
	if err := s.validator.ValidateFile(resolved); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(resolved)
	if err != nil {
		return nil, sferrors.Wrap(sferrors.ErrorTypeInvalidFile, err).WithFile(resolved)
	}

	rows, err := DecodeRows(data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", resolved, err)
	}
	return rows, nil
}

// ParseBatch parses several documents concurrently. Results keep the order
// of the request; the first failure cancels the remaining documents.
func (s *Service) ParseBatch(ctx context.Context, req ParseBatchRequest) (*ParseBatchResult, error) {
	if len(req.Documents) == 0 {
		return &ParseBatchResult{Results: []*parser.Result{}}, nil
	}

	total := 0
	for _, doc := range req.Documents {
		total += len(doc)
	}
	if s.maxRows > 0 && total > s.maxRows {
		return nil, sferrors.Newf(sferrors.ErrorTypeRequestTooLarge,
			"too many rows in batch: %d (max: %d)", total, s.maxRows)
	}

	opts := s.resolveOptions(req.Options)
	results := make([]*parser.Result, len(req.Documents))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.batchConcurrency)
	for i, doc := range req.Documents {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return sferrors.Wrap(sferrors.ErrorTypeTimeout, err)
			}
			result, err := s.parse(doc, opts)
			if err != nil {
				return fmt.Errorf("document %d: %w", i, err)
			}
			results[i] = result
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &ParseBatchResult{Results: results, Count: len(results)}, nil
}

// Summarize produces the legacy flat summary of a row stream
func (s *Service) Summarize(ctx context.Context, rows []parser.Row) (*parser.Summary, error) {
	if err := ctx.Err(); err != nil {
		return nil, sferrors.Wrap(sferrors.ErrorTypeTimeout, err)
	}
	if err := s.validator.ValidateRows(rows); err != nil {
		return nil, err
	}
	return parser.Summarize(rows), nil
}

// Stats parses a row stream and reports counts for the rows and the tree
func (s *Service) Stats(ctx context.Context, req ParseRequest) (*StatsResult, error) {
	result, err := s.ParseRows(ctx, req)
	if err != nil {
		return nil, err
	}
	return ComputeStats(req.Rows, result), nil
}

// SearchDirectory searches for row export files in a directory
func (s *Service) SearchDirectory(req SearchDirectoryRequest) (*SearchDirectoryResult, error) {
	if req.Directory == "" {
		req.Directory = s.pathValidator.ConfiguredDirectory()
	}

	if err := s.pathValidator.ValidateDirectory(req.Directory); err != nil {
		return nil, fmt.Errorf("security validation failed: %w", err)
	}

	return s.search.SearchDirectory(req)
}

// ServerInfo returns server information, the active limits and a listing
// of the configured directory
func (s *Service) ServerInfo(serverName, version string) *ServerInfoResult {
	directory := s.pathValidator.ConfiguredDirectory()

	resultChan := make(chan []FileInfo, 1)
	go func() {
		files, err := s.search.FindLimited(directory, directoryScanLimit)
		if err != nil {
			files = []FileInfo{}
		}
		resultChan <- files
	}()

	contents := []FileInfo{}
	timer := time.NewTimer(directoryScanTimeout)
	defer timer.Stop()
	select {
	case files := <-resultChan:
		contents = files
	case <-timer.C:
	}

	return &ServerInfoResult{
		ServerName:        serverName,
		Version:           version,
		DefaultDirectory:  directory,
		MaxRequestSize:    s.maxRequestSize,
		MaxRows:           s.maxRows,
		ParseOptions:      s.opts,
		Cache:             s.cache.Stats(),
		AvailableTools:    availableTools(),
		DirectoryContents: contents,
		UsageGuidance:     usageGuidance(s.maxRequestSize),
	}
}

// CacheStats returns result cache statistics
func (s *Service) CacheStats() CacheStats {
	return s.cache.Stats()
}

// DefaultOptions returns the parse options used when a request sets none
func (s *Service) DefaultOptions() parser.Options {
	return s.opts
}

// ValidateRequestSize checks an encoded request against the size limit
func (s *Service) ValidateRequestSize(size int64) error {
	return s.validator.ValidateSize(size)
}

// MaxRequestSize returns the request body limit in bytes
func (s *Service) MaxRequestSize() int64 {
	return s.maxRequestSize
}

func (s *Service) resolveOptions(overrides *parser.OptionOverrides) parser.Options {
	return overrides.Apply(s.opts)
}

func (s *Service) parse(rows []parser.Row, opts parser.Options) (*parser.Result, error) {
	if !s.cache.Enabled() {
		return parser.New(opts).Parse(rows)
	}

	key, keyErr := CacheKey(rows, opts)
	if keyErr == nil {
		if cached, ok := s.cache.Get(key); ok {
			return cached, nil
		}
	}

	result, err := parser.New(opts).Parse(rows)
	if err != nil {
		return nil, err
	}

	if keyErr == nil {
		s.cache.Put(key, result)
	}
	return result, nil
}
