package core

import "context"

// CustomerStore is the persistent store boundary for customer identity and
// conversation history. The store is the single source of truth; the engine
// never caches persisted state beyond its bounded in-memory session.
type CustomerStore interface {
	// GetOrCreateCustomer resolves the durable customer id for an external
	// identifier, creating the record on first contact. Idempotent.
	GetOrCreateCustomer(ctx context.Context, externalID string) (CustomerID, error)
	// AppendHistory records one conversation turn.
	AppendHistory(ctx context.Context, id CustomerID, role, text string) error
	// GetRecentHistory returns the most recent entries in chronological
	// order, bounded by limit.
	GetRecentHistory(ctx context.Context, id CustomerID, limit int) ([]HistoryEntry, error)
	// GetCustomerProfile returns the profile fields the engine reads.
	GetCustomerProfile(ctx context.Context, id CustomerID) (CustomerProfile, error)
	// UpdateCustomerBranch persists the branch resolved for the customer.
	UpdateCustomerBranch(ctx context.Context, id CustomerID, branch string) error
}

// TrackingResult is the outcome of a shipment tracking lookup. When the
// lookup service pre-formats a message it takes precedence over the
// structured fields.
type TrackingResult struct {
	Success   bool
	Message   string
	Status    string
	Location  string
	UpdatedAt string
	Forecast  string
}

// TrackingService queries shipment status by tax id and document number.
type TrackingService interface {
	Query(ctx context.Context, taxID, documentNo string) (TrackingResult, error)
}

// Opening is a published job opening.
type Opening struct {
	ID           int64
	Title        string
	City         string
	Requirements string
	Link         string
}

// Application is a submitted job application.
type Application struct {
	Protocol string
	Name     string
	City     string
	Area     string
}

// RecruitingStore lists openings and persists applications.
type RecruitingStore interface {
	ListOpenings(ctx context.Context) ([]Opening, error)
	// SaveApplication persists the record and returns its protocol token.
	SaveApplication(ctx context.Context, record Application) (string, error)
}

// SupplierRecord is a supplier onboarding registration.
type SupplierRecord struct {
	Protocol     string
	CompanyName  string
	TaxID        string
	Category     string
	PortfolioURL string
	SiteURL      string
	Cities       string
	Contact      string
}

// SupplierStore persists supplier registrations keyed by customer.
type SupplierStore interface {
	// SaveSupplier persists the record and returns it with the protocol set.
	SaveSupplier(ctx context.Context, id CustomerID, record SupplierRecord) (SupplierRecord, error)
}

// Branch is a company branch used for routing handovers.
type Branch struct {
	Name        string   `json:"name"`
	UF          string   `json:"uf"`
	City        string   `json:"city"`
	Cities      []string `json:"cities,omitempty"`
	CEPPrefixes []string `json:"cep_prefixes,omitempty"`
	Phones      []string `json:"phones,omitempty"`
	Email       string   `json:"email,omitempty"`
}

// BranchResolver maps user-provided location hints to a branch.
// Implementations return nil when nothing matches.
type BranchResolver interface {
	ByPostalCode(code string) *Branch
	ByCityText(text string) *Branch
	// ByName reverses a branch name stored on a customer profile back to
	// the full branch record.
	ByName(name string) *Branch
	// Resolve picks the best branch for the given hints; a valid postal
	// code takes priority over city text.
	Resolve(cityText, postalCode string) *Branch
}
