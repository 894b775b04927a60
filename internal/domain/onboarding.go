package domain

// OnboardingAddress is the postal address block of the onboarding form.
type OnboardingAddress struct {
	AddressLine1    string `json:"addressLine1"`
	AddressLine2    string `json:"addressLine2,omitempty"`
	City            string `json:"city"`
	StateOrProvince string `json:"stateOrProvince"`
	PostalCode      string `json:"postalCode"`
	Country         string `json:"country,omitempty"` // defaults to "US"
}

// OnboardingRequest is the request body for POST /api/entity/create.
// Documents are inline base64 data URIs; all four are optional.
type OnboardingRequest struct {
	Email             string            `json:"email"`
	LegalBusinessName string            `json:"legalBusinessName"`
	Website           string            `json:"website"`
	BusinessType      string            `json:"businessType"` // defaults to "llc"
	Phone             string            `json:"phone"`
	Address           OnboardingAddress `json:"address"`
	EIN               string            `json:"ein"`
	ForeignID         string            `json:"foreignId,omitempty"`

	Logo          string `json:"logo,omitempty"`
	W9            string `json:"w9,omitempty"`
	Form1099      string `json:"form1099,omitempty"`
	BankStatement string `json:"bankStatement,omitempty"`
}

// SavedFiles holds the local path of each persisted document. A nil entry
// means the document was absent or failed to persist; persistence failures
// never abort onboarding.
type SavedFiles struct {
	Logo          *string `json:"logo"`
	W9            *string `json:"w9"`
	Form1099      *string `json:"form1099"`
	BankStatement *string `json:"bankStatement"`
}

// Onboarding result statuses.
const (
	OnboardingSuccess = "success"
	OnboardingAlready = "already_onboarded"
)

// OnboardingResult is returned by OnboardingService.Onboard. For
// already-onboarded accounts EntityName/EntityLogo echo the stored link
// and SavedFiles is nil.
type OnboardingResult struct {
	Status     string      `json:"status"`
	EntityID   string      `json:"entity_id"`
	EntityName string      `json:"entity_name,omitempty"`
	EntityLogo string      `json:"entity_logo,omitempty"`
	SavedFiles *SavedFiles `json:"saved_files,omitempty"`
}
