package fs

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"path"
	"strings"
	"sync"

	logging "github.com/ipfs/go-log/v2"
	"github.com/viant/afs"
	"github.com/viant/afs/file"
	"github.com/viant/afs/option"
	"github.com/viant/afs/url"
	"github.com/viant/atc/service/dao"
	"github.com/viant/atc/service/dao/report"
)

var log = logging.Logger("atc/report")

// Service stores run reports as JSON documents under a base URL
type Service struct {
	baseURL string
	fs      afs.Service
	mu      sync.RWMutex
}

var _ dao.Service[string, report.Report] = (*Service)(nil)

// Save persists a report
func (s *Service) Save(ctx context.Context, r *report.Report) error {
	if r == nil {
		return dao.ErrNilEntity
	}
	if r.RunID == "" {
		return dao.ErrInvalidID
	}
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	location := s.reportURL(r.RunID)
	if err = s.fs.Upload(ctx, location, file.DefaultFileOsMode, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("failed to save report to %s: %w", location, err)
	}
	return nil
}

// Load retrieves a report by run id
func (s *Service) Load(ctx context.Context, runID string) (*report.Report, error) {
	if runID == "" {
		return nil, dao.ErrInvalidID
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	location := s.reportURL(runID)
	exists, err := s.fs.Exists(ctx, location)
	if err != nil {
		return nil, fmt.Errorf("failed to check report %s: %w", location, err)
	}
	if !exists {
		return nil, fmt.Errorf("%w: report %s", dao.ErrNotFound, runID)
	}
	data, err := s.fs.DownloadWithURL(ctx, location)
	if err != nil {
		return nil, fmt.Errorf("failed to read report %s: %w", location, err)
	}
	var result report.Report
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal report %s: %w", location, err)
	}
	return &result, nil
}

// Delete removes a report
func (s *Service) Delete(ctx context.Context, runID string) error {
	if runID == "" {
		return dao.ErrInvalidID
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	location := s.reportURL(runID)
	exists, err := s.fs.Exists(ctx, location)
	if err != nil {
		return fmt.Errorf("failed to check report %s: %w", location, err)
	}
	if !exists {
		return fmt.Errorf("%w: report %s", dao.ErrNotFound, runID)
	}
	return s.fs.Delete(ctx, location)
}

// List returns stored reports matching the RunID and Status parameters
func (s *Service) List(ctx context.Context, parameters ...*dao.Parameter) ([]*report.Report, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	objects, err := s.fs.List(ctx, s.baseURL, option.NewRecursive(false))
	if err != nil {
		return nil, fmt.Errorf("failed to list reports: %w", err)
	}
	var result []*report.Report
	for _, object := range objects {
		if object.IsDir() || !strings.HasSuffix(object.Name(), ".json") {
			continue
		}
		data, err := s.fs.Download(ctx, object)
		if err != nil {
			log.Warnf("failed to read report %s: %v", object.URL(), err)
			continue
		}
		var r report.Report
		if err := json.Unmarshal(data, &r); err != nil {
			log.Warnf("failed to unmarshal report %s: %v", object.URL(), err)
			continue
		}
		if !r.Matches(parameters) {
			continue
		}
		result = append(result, &r)
	}
	return result, nil
}

func (s *Service) reportURL(runID string) string {
	return url.Join(s.baseURL, path.Base(runID)+".json")
}

// New creates a report store rooted at baseURL, creating the location when
// it does not exist.
func New(ctx context.Context, baseURL string) (*Service, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("base URL cannot be empty")
	}
	fs := afs.New()
	baseURL = url.Normalize(baseURL, file.Scheme)
	exists, _ := fs.Exists(ctx, baseURL)
	if !exists {
		if err := fs.Create(ctx, baseURL, file.DefaultDirOsMode, true); err != nil {
			return nil, fmt.Errorf("failed to create report location: %w", err)
		}
	}
	return &Service{baseURL: baseURL, fs: fs}, nil
}
