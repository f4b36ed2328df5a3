package models

// IndicatorCategory identifies one class of extracted evidence
type IndicatorCategory string

const (
	CategoryPaymentHandle IndicatorCategory = "payment_handle"
	CategoryBankAccount   IndicatorCategory = "bank_account"
	CategoryRoutingCode   IndicatorCategory = "routing_code"
	CategoryLink          IndicatorCategory = "link"
	CategoryPhone         IndicatorCategory = "phone"
	CategoryEmail         IndicatorCategory = "email"
)

// Categories lists all indicator categories in stable output order
var Categories = []IndicatorCategory{
	CategoryPaymentHandle,
	CategoryBankAccount,
	CategoryRoutingCode,
	CategoryLink,
	CategoryPhone,
	CategoryEmail,
}

// IndicatorSet is the extractor output for a single message: ordered,
// deduplicated candidate values per category plus behavioral intent
// flags. Produced fresh per message and never mutated.
type IndicatorSet struct {
	PaymentHandles []string `json:"paymentHandles"`
	BankAccounts   []string `json:"bankAccounts"`
	RoutingCodes   []string `json:"routingCodes"`
	Links          []string `json:"links"`
	Phones         []string `json:"phones"`
	Emails         []string `json:"emails"`

	HasPaymentIntent bool `json:"hasPaymentIntent"`
	HasQRIntent      bool `json:"hasQRIntent"`
}

// Values returns the candidate values for a category
func (s *IndicatorSet) Values(cat IndicatorCategory) []string {
	switch cat {
	case CategoryPaymentHandle:
		return s.PaymentHandles
	case CategoryBankAccount:
		return s.BankAccounts
	case CategoryRoutingCode:
		return s.RoutingCodes
	case CategoryLink:
		return s.Links
	case CategoryPhone:
		return s.Phones
	case CategoryEmail:
		return s.Emails
	default:
		return nil
	}
}

// HasAny reports whether any category contains a candidate
func (s *IndicatorSet) HasAny() bool {
	for _, cat := range Categories {
		if len(s.Values(cat)) > 0 {
			return true
		}
	}
	return false
}
