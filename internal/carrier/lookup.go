// File: internal/carrier/lookup.go
package carrier

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/avikamboj/ordersync-cli/internal/config"
)

// ColumnLoader reads the first column of the first sheet of a tabular file.
// It exists as an interface so tests can count loads and inject fixtures
// without real workbooks.
type ColumnLoader interface {
	LoadColumn(path string) ([]string, error)
}

// ExcelColumnLoader reads xlsx workbooks through excelize.
type ExcelColumnLoader struct{}

// LoadColumn returns the trimmed, non-empty first-column values of the first
// sheet of the workbook at path.
func (ExcelColumnLoader) LoadColumn(path string) ([]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook %s: %w", path, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook %s has no sheets", path)
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %s of %s: %w", sheets[0], path, err)
	}

	var values []string
	for _, row := range rows {
		if len(row) == 0 {
			continue
		}
		if v := strings.TrimSpace(row[0]); v != "" {
			values = append(values, v)
		}
	}
	return values, nil
}

// LookupStore caches the serviceable-pincode sets of both carriers with
// time-based invalidation. Both sets are replaced together on reload so no
// reader observes one fresh and one stale set. A failed load degrades to an
// empty set for that carrier; it never aborts the caller.
type LookupStore struct {
	cfg    config.CarriersConfig
	loader ColumnLoader
	now    func() time.Time
	logger *zap.Logger

	mu       sync.RWMutex
	sets     map[Carrier]map[string]struct{}
	loadedAt time.Time
}

// NewLookupStore builds a store over the configured workbook paths. A nil
// loader defaults to the excelize-backed one; a nil clock defaults to
// time.Now.
func NewLookupStore(cfg config.CarriersConfig, loader ColumnLoader, now func() time.Time, logger *zap.Logger) *LookupStore {
	if loader == nil {
		loader = ExcelColumnLoader{}
	}
	if now == nil {
		now = time.Now
	}
	return &LookupStore{
		cfg:    cfg,
		loader: loader,
		now:    now,
		logger: logger.Named("lookup_store"),
	}
}

// EnsureLoaded loads both sets on first use and refreshes them when the
// reload interval has elapsed. Idempotent between refreshes: repeated calls
// perform no I/O.
func (s *LookupStore) EnsureLoaded() {
	s.mu.RLock()
	fresh := s.sets != nil && s.now().Sub(s.loadedAt) < s.cfg.ReloadInterval
	s.mu.RUnlock()
	if fresh {
		return
	}
	s.Reload()
}

// Reload unconditionally re-reads both workbooks and swaps both sets in as a
// unit.
func (s *LookupStore) Reload() {
	sets := map[Carrier]map[string]struct{}{
		DTDC:      s.loadSet(DTDC, s.cfg.DTDCFile),
		Delhivery: s.loadSet(Delhivery, s.cfg.DelhiveryFile),
	}

	s.mu.Lock()
	s.sets = sets
	s.loadedAt = s.now()
	s.mu.Unlock()
}

// Invalidate forces the next EnsureLoaded to hit the workbooks again.
func (s *LookupStore) Invalidate() {
	s.mu.Lock()
	s.loadedAt = time.Time{}
	s.mu.Unlock()
}

// Serves reports whether the carrier's cached set contains the pincode.
func (s *LookupStore) Serves(c Carrier, pin string) bool {
	s.EnsureLoaded()
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.sets[c][pin]
	return ok
}

// Size returns the number of cached pincodes for the carrier.
func (s *LookupStore) Size(c Carrier) int {
	s.EnsureLoaded()
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sets[c])
}

func (s *LookupStore) loadSet(c Carrier, path string) map[string]struct{} {
	set := make(map[string]struct{})
	if path == "" {
		s.logger.Warn("No workbook configured; carrier has zero coverage.", zap.String("carrier", c.String()))
		return set
	}
	values, err := s.loader.LoadColumn(path)
	if err != nil {
		// Missing or malformed workbooks degrade to an empty set; the batch
		// must keep running with that carrier at zero coverage.
		s.logger.Warn("Failed to load pincode workbook; carrier degrades to zero coverage.",
			zap.String("carrier", c.String()),
			zap.String("path", path),
			zap.Error(err))
		return set
	}
	for _, v := range values {
		set[v] = struct{}{}
	}
	s.logger.Debug("Loaded pincode set.", zap.String("carrier", c.String()), zap.Int("pincodes", len(set)))
	return set
}
