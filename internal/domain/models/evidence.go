package models

// EvidenceRecord is one aggregated piece of intelligence. For a given
// (session, category, value) at most one record exists: Confidence is
// the maximum ever observed for the value, SourceTurn the earliest
// turn (1-based) it appeared on.
type EvidenceRecord struct {
	Value      string  `json:"value"`
	Confidence float64 `json:"confidence"`
	SourceTurn int     `json:"sourceTurn"`
}

// EvidenceSet is the cumulative, deduplicated intelligence for a
// session. It grows monotonically: values are never removed, a
// record's confidence never decreases and its source turn never
// moves later, and the intent flags only flip from false to true.
type EvidenceSet struct {
	PaymentHandles []EvidenceRecord `json:"paymentHandles"`
	BankAccounts   []EvidenceRecord `json:"bankAccounts"`
	RoutingCodes   []EvidenceRecord `json:"routingCodes"`
	Links          []EvidenceRecord `json:"links"`
	Phones         []EvidenceRecord `json:"phones"`
	Emails         []EvidenceRecord `json:"emails"`

	HasPaymentIntent bool `json:"hasPaymentIntent"`
	HasQRIntent      bool `json:"hasQRIntent"`
}

// NewEvidenceSet returns an empty evidence set
func NewEvidenceSet() *EvidenceSet {
	return &EvidenceSet{
		PaymentHandles: []EvidenceRecord{},
		BankAccounts:   []EvidenceRecord{},
		RoutingCodes:   []EvidenceRecord{},
		Links:          []EvidenceRecord{},
		Phones:         []EvidenceRecord{},
		Emails:         []EvidenceRecord{},
	}
}

// Clone returns a deep copy. Handing out the live set would let
// readers race with later turns mutating it under the session lock.
func (e *EvidenceSet) Clone() *EvidenceSet {
	return &EvidenceSet{
		PaymentHandles: append([]EvidenceRecord{}, e.PaymentHandles...),
		BankAccounts:   append([]EvidenceRecord{}, e.BankAccounts...),
		RoutingCodes:   append([]EvidenceRecord{}, e.RoutingCodes...),
		Links:          append([]EvidenceRecord{}, e.Links...),
		Phones:         append([]EvidenceRecord{}, e.Phones...),
		Emails:         append([]EvidenceRecord{}, e.Emails...),

		HasPaymentIntent: e.HasPaymentIntent,
		HasQRIntent:      e.HasQRIntent,
	}
}

// Records returns the aggregated records for a category
func (e *EvidenceSet) Records(cat IndicatorCategory) []EvidenceRecord {
	switch cat {
	case CategoryPaymentHandle:
		return e.PaymentHandles
	case CategoryBankAccount:
		return e.BankAccounts
	case CategoryRoutingCode:
		return e.RoutingCodes
	case CategoryLink:
		return e.Links
	case CategoryPhone:
		return e.Phones
	case CategoryEmail:
		return e.Emails
	default:
		return nil
	}
}

func (e *EvidenceSet) setRecords(cat IndicatorCategory, recs []EvidenceRecord) {
	switch cat {
	case CategoryPaymentHandle:
		e.PaymentHandles = recs
	case CategoryBankAccount:
		e.BankAccounts = recs
	case CategoryRoutingCode:
		e.RoutingCodes = recs
	case CategoryLink:
		e.Links = recs
	case CategoryPhone:
		e.Phones = recs
	case CategoryEmail:
		e.Emails = recs
	}
}

// Upsert merges one observation into a category. The record keeps the
// highest confidence and the earliest source turn seen for the value.
func (e *EvidenceSet) Upsert(cat IndicatorCategory, value string, confidence float64, sourceTurn int) {
	recs := e.Records(cat)
	for i := range recs {
		if recs[i].Value == value {
			if confidence > recs[i].Confidence {
				recs[i].Confidence = confidence
			}
			if sourceTurn < recs[i].SourceTurn {
				recs[i].SourceTurn = sourceTurn
			}
			return
		}
	}
	e.setRecords(cat, append(recs, EvidenceRecord{
		Value:      value,
		Confidence: confidence,
		SourceTurn: sourceTurn,
	}))
}

// Has reports whether a category holds any evidence
func (e *EvidenceSet) Has(cat IndicatorCategory) bool {
	return len(e.Records(cat)) > 0
}

// HasStrong reports whether any strong-evidence category (payment
// handle, bank account, routing code, link) is populated
func (e *EvidenceSet) HasStrong() bool {
	return e.Has(CategoryPaymentHandle) ||
		e.Has(CategoryBankAccount) ||
		e.Has(CategoryRoutingCode) ||
		e.Has(CategoryLink)
}

// StrongValues returns the union of all cluster-relevant values:
// payment handles, links, phones, emails, bank accounts and routing
// codes. Used to derive the threat-cluster identifier.
func (e *EvidenceSet) StrongValues() []string {
	var out []string
	for _, cat := range Categories {
		for _, rec := range e.Records(cat) {
			out = append(out, rec.Value)
		}
	}
	return out
}
