package processor

import (
	"sync"
	"time"

	"github.com/liamashdown/walletscan/internal/analysis"
)

// walletOutcome is the result of analyzing one candidate
type walletOutcome struct {
	wallet   string
	report   analysis.Report
	accepted bool
	err      error
}

// ScanState accumulates discovery results across iterations. The discovery
// loop is its only writer; readers take snapshots.
type ScanState struct {
	mu              sync.RWMutex
	analyzed        map[string]struct{}
	accumulated     []analysis.Report
	scansCompleted  int
	walletsAnalyzed int
	profitableFound int
	lastScanID      string
	lastScanAt      time.Time
}

// NewScanState creates an empty state
func NewScanState() *ScanState {
	return &ScanState{analyzed: make(map[string]struct{})}
}

// Snapshot is a point-in-time copy of the scan state
type Snapshot struct {
	ScansCompleted  int               `json:"scans_completed"`
	WalletsAnalyzed int               `json:"wallets_analyzed"`
	ProfitableFound int               `json:"profitable_found"`
	LastScanID      string            `json:"last_scan_id,omitempty"`
	LastScanAt      time.Time         `json:"last_scan_at"`
	Wallets         []analysis.Report `json:"wallets"`
}

// Merge folds one iteration's outcomes into the state and returns the newly
// accepted reports ordered by ROI. Wallets whose trades could not be fetched
// are not marked analyzed.
func (s *ScanState) Merge(scanID string, outcomes []walletOutcome) []analysis.Report {
	s.mu.Lock()
	defer s.mu.Unlock()

	var accepted []analysis.Report
	for _, o := range outcomes {
		if o.err != nil {
			continue
		}
		if _, dup := s.analyzed[o.wallet]; dup {
			continue
		}
		s.analyzed[o.wallet] = struct{}{}
		s.walletsAnalyzed++
		if o.accepted {
			accepted = append(accepted, o.report)
		}
	}

	analysis.SortByROI(accepted)
	s.accumulated = append(s.accumulated, accepted...)
	analysis.SortByROI(s.accumulated)

	s.profitableFound += len(accepted)
	s.scansCompleted++
	s.lastScanID = scanID
	s.lastScanAt = time.Now().UTC()

	return accepted
}

// Analyzed returns a copy of the analyzed-address set
func (s *ScanState) Analyzed() map[string]struct{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]struct{}, len(s.analyzed))
	for w := range s.analyzed {
		out[w] = struct{}{}
	}
	return out
}

// Counters returns a snapshot without the wallet list
func (s *ScanState) Counters() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.counters()
}

// Snapshot returns the counters and the accumulated wallets, ROI descending
func (s *ScanState) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := s.counters()
	snap.Wallets = make([]analysis.Report, len(s.accumulated))
	copy(snap.Wallets, s.accumulated)
	return snap
}

func (s *ScanState) counters() Snapshot {
	return Snapshot{
		ScansCompleted:  s.scansCompleted,
		WalletsAnalyzed: s.walletsAnalyzed,
		ProfitableFound: s.profitableFound,
		LastScanID:      s.lastScanID,
		LastScanAt:      s.lastScanAt,
	}
}
