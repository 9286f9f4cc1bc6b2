package billing

// EventClass buckets a platform event vocabulary into the transitions the
// reconciler understands.
type EventClass string

const (
	EventPurchase EventClass = "purchase"
	EventCancel   EventClass = "cancel"
	EventPending  EventClass = "pending"
	EventUnknown  EventClass = "unknown"
)

// CanonicalEvent is the platform-agnostic shape produced by the
// per-platform normalizers. Email is the only user-resolution key shared
// across platforms; there is no universal buyer id.
type CanonicalEvent struct {
	Class     EventClass
	EventType string
	Email     string
	Name      string
	ProductID string
	Raw       []byte
}

// PurchaseInput carries a resolved purchase transition into the reconciler.
type PurchaseInput struct {
	Email       string
	Name        string
	Plan        Plan
	Source      string
	EventType   string
	PayloadJSON string
	Duplicate   bool
	// Warning carries an operator-facing note such as an unmapped product
	// id. The purchase still proceeds; the audit row gets status warning
	// with the note as its message.
	Warning string
	// SkipLog suppresses the audit row; the reprocessor updates the
	// original row instead of appending a new one.
	SkipLog bool
}

// PurchaseResult reports the profile state after a purchase transition.
type PurchaseResult struct {
	UserID  uint
	Plan    Plan
	Created bool
}

// CancelInput carries a cancellation/refund/chargeback transition.
type CancelInput struct {
	Email       string
	Source      string
	EventType   string
	PayloadJSON string
	SkipLog     bool
}

// CancelResult reports the downgraded profile.
type CancelResult struct {
	UserID uint
}

// LogInput is the normalized input for webhook log persistence.
type LogInput struct {
	Source         string
	EventType      string
	PayloadJSON    string
	EmailExtracted string
	UserID         *uint
	PlanGranted    string
	Status         string
	ErrorMessage   string
}

// ReprocessSummary reports one reprocessor run.
type ReprocessSummary struct {
	Scanned     int `json:"scanned"`
	Reprocessed int `json:"reprocessed"`
	Failed      int `json:"failed"`
}
