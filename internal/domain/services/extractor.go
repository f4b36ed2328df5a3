package services

import (
	"regexp"
	"strings"

	"github.com/Krushna2656/agentic-honeypot/internal/domain/models"
	"github.com/Krushna2656/agentic-honeypot/pkg/logger"
)

// SignalExtractor pulls structured intelligence candidates from raw
// message text using regex patterns. Empty input yields an empty
// IndicatorSet, never an error.
type SignalExtractor struct {
	handlePattern   *regexp.Regexp
	linkPattern     *regexp.Regexp
	deepLinkPattern *regexp.Regexp
	bankPattern     *regexp.Regexp
	routingPattern  *regexp.Regexp
	phonePattern    *regexp.Regexp
	emailPattern    *regexp.Regexp
	verbPattern     *regexp.Regexp
	currencyPattern *regexp.Regexp
	qrWordPattern   *regexp.Regexp

	handleSuffixes map[string]bool
	logger         *logger.Logger
}

// Known payment-service-provider handle suffixes. A local@suffix token
// only counts as a payment handle when the suffix is listed here, so
// generic emails like support@helpdesk are not misclassified.
var handleSuffixes = []string{
	"upi", "ybl", "ibl", "axl", "apl", "paytm", "ptyes", "ptsbi", "ptaxis",
	"okaxis", "oksbi", "okhdfcbank", "okicici", "okbizaxis",
	"sbi", "hdfcbank", "icici", "axisbank", "kotak", "yesbank",
	"freecharge", "mobikwik", "airtel", "jio", "ikwik", "yapl",
	"waaxis", "wahdfcbank", "waicici", "wasbi",
}

var qrPhrases = []string{"upi qr", "scan code", "qr code"}

var paymentPhrases = []string{
	"send money", "processing fee", "collect request", "request money",
}

// NewSignalExtractor creates a new signal extractor
func NewSignalExtractor(log *logger.Logger) *SignalExtractor {
	se := &SignalExtractor{
		handlePattern:   regexp.MustCompile(`\b[a-zA-Z0-9.\-_]{2,}@[a-zA-Z]{2,}\b`),
		linkPattern:     regexp.MustCompile(`\b[a-zA-Z][a-zA-Z0-9+.-]*://[^\s]+`),
		deepLinkPattern: regexp.MustCompile(`upi://pay[^\s]*`),
		bankPattern:     regexp.MustCompile(`\b\d{9,18}\b`),
		routingPattern:  regexp.MustCompile(`\b[A-Z]{4}0[A-Z0-9]{6}\b`),
		phonePattern:    regexp.MustCompile(`\b[6-9]\d{9}\b`),
		emailPattern:    regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`),
		verbPattern:     regexp.MustCompile(`\b(pay|transfer|deposit|charge|refund|send)\b`),
		currencyPattern: regexp.MustCompile(`₹|\b(rs|inr)\b`),
		qrWordPattern:   regexp.MustCompile(`\b(scan|qr|barcode)\b`),
		handleSuffixes:  make(map[string]bool),
		logger:          log.WithComponent("signal-extractor"),
	}

	for _, s := range handleSuffixes {
		se.handleSuffixes[s] = true
	}

	return se
}

// Extract returns the IndicatorSet for a single message text
func (se *SignalExtractor) Extract(text string) *models.IndicatorSet {
	out := &models.IndicatorSet{
		PaymentHandles: []string{},
		BankAccounts:   []string{},
		RoutingCodes:   []string{},
		Links:          []string{},
		Phones:         []string{},
		Emails:         []string{},
	}
	if text == "" {
		return out
	}
	lower := strings.ToLower(text)

	out.PaymentHandles = se.extractHandles(text)
	out.Links = se.extractLinks(text)
	out.Phones = dedupe(se.phonePattern.FindAllString(text, -1))
	out.BankAccounts = se.extractBankAccounts(text)
	out.RoutingCodes = dedupe(se.routingPattern.FindAllString(text, -1))
	out.Emails = se.extractEmails(text)

	hasDeepLink := se.deepLinkPattern.MatchString(lower)
	out.HasPaymentIntent = hasDeepLink ||
		se.verbPattern.MatchString(lower) ||
		se.currencyPattern.MatchString(lower) ||
		containsAnyPhrase(lower, paymentPhrases)
	out.HasQRIntent = hasDeepLink ||
		se.qrWordPattern.MatchString(lower) ||
		containsAnyPhrase(lower, qrPhrases)

	return out
}

// extractHandles returns lowercase payment handles whose suffix is on
// the provider allow-list
func (se *SignalExtractor) extractHandles(text string) []string {
	var out []string
	for _, m := range se.handlePattern.FindAllString(text, -1) {
		handle := strings.ToLower(m)
		at := strings.LastIndex(handle, "@")
		if at < 2 {
			continue
		}
		if se.handleSuffixes[handle[at+1:]] {
			out = append(out, handle)
		}
	}
	return dedupe(out)
}

// extractLinks returns scheme:// tokens, with upi://pay deep links
// merged into the same set
func (se *SignalExtractor) extractLinks(text string) []string {
	links := se.linkPattern.FindAllString(text, -1)
	links = append(links, se.deepLinkPattern.FindAllString(text, -1)...)
	return dedupe(links)
}

// extractBankAccounts excludes digit runs that match the mobile-number
// shape so a phone is never double-classified as an account
func (se *SignalExtractor) extractBankAccounts(text string) []string {
	var out []string
	for _, m := range se.bankPattern.FindAllString(text, -1) {
		if se.phonePattern.MatchString(m) && len(m) == 10 {
			continue
		}
		out = append(out, m)
	}
	return dedupe(out)
}

func (se *SignalExtractor) extractEmails(text string) []string {
	var out []string
	for _, m := range se.emailPattern.FindAllString(text, -1) {
		out = append(out, strings.ToLower(m))
	}
	return dedupe(out)
}

// dedupe removes duplicates preserving first-seen order
func dedupe(items []string) []string {
	if items == nil {
		return []string{}
	}
	seen := make(map[string]bool, len(items))
	out := make([]string, 0, len(items))
	for _, it := range items {
		if !seen[it] {
			seen[it] = true
			out = append(out, it)
		}
	}
	return out
}

func containsAnyPhrase(text string, phrases []string) bool {
	for _, p := range phrases {
		if strings.Contains(text, p) {
			return true
		}
	}
	return false
}
