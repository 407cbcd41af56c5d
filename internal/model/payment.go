package model

// PaymentFact holds the normalized fields extracted from one verified
// payment event. Immutable once extracted; every optional provider field
// has a defined default, so none of these are pointers.
type PaymentFact struct {
	PaymentID string  // external payment id
	OrderID   string  // external order id
	Name      string  // payer display name
	Email     string  // payer email, "" if absent
	Contact   string  // payer phone, normalized, "" if absent
	Item      string  // purchased item label
	Amount    float64 // major currency units (rupees)
	PageID    string  // target-context identifier from the notes
}
