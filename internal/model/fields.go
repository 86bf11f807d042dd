package model

// FieldKind classifies an allowlisted application field for sanitization.
type FieldKind int

const (
	KindText FieldKind = iota
	KindDate
	KindNumber
	KindBool
	KindList
	KindObject
)

// ApplicationFields is the explicit allowlist of business fields a partial
// application update may carry. Keys not present here are dropped before
// sanitization, so an arbitrary-shape payload can never write an unknown
// column into the record.
var ApplicationFields = map[string]FieldKind{
	// Legal identity
	"legal_business_name":  KindText,
	"dba_name":             KindText,
	"business_entity_type": KindText,
	"ein":                  KindText,
	"state_tax_id":         KindText,
	"incorporation_state":  KindText,
	"incorporation_date":   KindDate,
	"entity_start_date":    KindDate,
	"mcc_code":             KindText,
	"sic_code":             KindText,
	"business_description": KindText,
	"product_description":  KindText,
	"years_in_business":    KindNumber,
	"number_of_employees":  KindNumber,
	"website":              KindText,

	// Contact
	"business_phone":         KindText,
	"business_fax":           KindText,
	"business_email":         KindText,
	"customer_service_phone": KindText,
	"customer_service_email": KindText,

	// Physical address
	"business_address1": KindText,
	"business_address2": KindText,
	"business_city":     KindText,
	"business_state":    KindText,
	"business_zip":      KindText,
	"business_country":  KindText,

	// Mailing address
	"mailing_address1":         KindText,
	"mailing_address2":         KindText,
	"mailing_city":             KindText,
	"mailing_state":            KindText,
	"mailing_zip":              KindText,
	"mailing_same_as_business": KindBool,

	// Location profile
	"location_type":     KindText,
	"location_owned":    KindBool,
	"lease_expiry_date": KindDate,
	"square_footage":    KindNumber,
	"seasonal_business": KindBool,
	"seasonal_months":   KindText,

	// Banking
	"bank_name":                KindText,
	"bank_routing_number":      KindText,
	"bank_account_number":      KindText,
	"bank_account_type":        KindText,
	"bank_phone":               KindText,
	"bank_contact_name":        KindText,
	"bank_account_opened_date": KindDate,

	// Processing profile
	"currently_processing":  KindBool,
	"previous_processor":    KindText,
	"previously_terminated": KindBool,
	"termination_reason":    KindText,
	"monthly_volume":        KindNumber,
	"annual_volume":         KindNumber,
	"average_ticket":        KindNumber,
	"high_ticket":           KindNumber,
	"card_present_percent":  KindNumber,
	"ecommerce_percent":     KindNumber,
	"moto_percent":          KindNumber,
	"amex_requested":        KindBool,
	"amex_member_number":    KindText,
	"accepts_ach":           KindBool,

	// Policies
	"refund_policy":      KindText,
	"refund_days":        KindNumber,
	"delivery_timeframe": KindText,
	"deposit_required":   KindBool,
	"deposit_percent":    KindNumber,

	// Ownership profile
	"ownership_type":     KindText,
	"publicly_traded":    KindBool,
	"stock_symbol":       KindText,
	"federal_tax_exempt": KindBool,
	"nonprofit":          KindBool,

	// Compliance attestations
	"pci_compliant":          KindBool,
	"pci_assessment_date":    KindDate,
	"uses_third_party_agent": KindBool,
	"third_party_agent_name": KindText,
	"accepts_international":  KindBool,

	// Nested sections
	"principal_officers":       KindList,
	"beneficial_owners":        KindList,
	"authorized_contacts":      KindList,
	"financial_representative": KindObject,
}

var temporalApplicationFields = func() map[string]bool {
	set := make(map[string]bool)
	for name, kind := range ApplicationFields {
		if kind == KindDate {
			set[name] = true
		}
	}
	return set
}()

// TemporalApplicationFields returns the names of date-kinded fields, the set
// the sanitizer parse-or-drops. The map is shared; callers must not mutate it.
func TemporalApplicationFields() map[string]bool {
	return temporalApplicationFields
}

// FilterApplicationFields returns a copy of payload restricted to allowlisted
// keys. The input is not modified.
func FilterApplicationFields(payload map[string]any) map[string]any {
	out := make(map[string]any, len(payload))
	for k, v := range payload {
		if _, ok := ApplicationFields[k]; ok {
			out[k] = v
		}
	}
	return out
}
