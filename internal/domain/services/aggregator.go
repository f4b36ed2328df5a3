package services

import (
	"crypto/sha256"
	"fmt"
	"sort"
	"strings"

	"github.com/Krushna2656/agentic-honeypot/internal/domain/models"
	"github.com/Krushna2656/agentic-honeypot/pkg/logger"
)

// Base confidence per category on first sighting. Payment deep links
// override the link base.
var baseConfidence = map[models.IndicatorCategory]float64{
	models.CategoryPaymentHandle: 0.92,
	models.CategoryBankAccount:   0.86,
	models.CategoryRoutingCode:   0.93,
	models.CategoryLink:          0.88,
	models.CategoryPhone:         0.80,
	models.CategoryEmail:         0.78,
}

const deepLinkConfidence = 0.95

// EvidenceAggregator merges per-message extractor output into a
// session's cumulative EvidenceSet and derives the stable
// threat-cluster identifier.
type EvidenceAggregator struct {
	extractor *SignalExtractor
	logger    *logger.Logger
}

// NewEvidenceAggregator creates a new evidence aggregator
func NewEvidenceAggregator(extractor *SignalExtractor, log *logger.Logger) *EvidenceAggregator {
	return &EvidenceAggregator{
		extractor: extractor,
		logger:    log.WithComponent("evidence-aggregator"),
	}
}

// MergeTurn folds one message's indicators into the evidence set.
// sourceTurn is 1-based. Records keep the highest confidence and the
// earliest turn; intent flags only ever flip to true.
func (a *EvidenceAggregator) MergeTurn(ev *models.EvidenceSet, ind *models.IndicatorSet, sourceTurn int) {
	for _, cat := range models.Categories {
		for _, value := range ind.Values(cat) {
			conf := baseConfidence[cat]
			if cat == models.CategoryLink && strings.HasPrefix(strings.ToLower(value), "upi://") {
				conf = deepLinkConfidence
			}
			ev.Upsert(cat, value, conf, sourceTurn)
		}
	}
	ev.HasPaymentIntent = ev.HasPaymentIntent || ind.HasPaymentIntent
	ev.HasQRIntent = ev.HasQRIntent || ind.HasQRIntent
}

// Aggregate runs the extractor over the full ordered history plus the
// current message (turn = len(history)+1) and merges everything into
// ev. History items without text count as empty turns so turn indices
// stay contiguous.
func (a *EvidenceAggregator) Aggregate(ev *models.EvidenceSet, history []models.RawMessage, current string) {
	for i, msg := range history {
		a.MergeTurn(ev, a.extractor.Extract(msg.Text), i+1)
	}
	a.MergeTurn(ev, a.extractor.Extract(current), len(history)+1)
}

// ClusterID derives the threat-cluster identifier from the union of
// all evidence values: lower-cased, trimmed, deduplicated, sorted,
// then hashed to a short fixed-width id. Returns nil when no evidence
// exists yet. The caller pins the first non-nil value per session.
func (a *EvidenceAggregator) ClusterID(ev *models.EvidenceSet) *string {
	values := ev.StrongValues()
	if len(values) == 0 {
		return nil
	}

	seen := make(map[string]bool, len(values))
	normalized := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.ToLower(strings.TrimSpace(v))
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		normalized = append(normalized, v)
	}
	sort.Strings(normalized)

	sum := sha256.Sum256([]byte(strings.Join(normalized, "|")))
	id := fmt.Sprintf("tc-%x", sum[:8])
	return &id
}
