package model

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Invoice errors.
var (
	ErrInvalidImportance = errors.New("invalid importance")
	ErrInvalidCategory   = errors.New("invalid category")
	ErrInvalidStatus     = errors.New("invalid invoice status")
	ErrInvalidOverride   = errors.New("invalid override mode")
	ErrCannotToggle      = errors.New("paid invoices cannot be toggled")
)

// Importance is the ordinal urgency of a vendor bill.
type Importance string

// Importance tiers, most urgent first.
const (
	ImportanceCritical Importance = "Critical"
	ImportanceHigh     Importance = "High"
	ImportanceMedium   Importance = "Medium"
	ImportanceLow      Importance = "Low"
)

// Importances lists every tier in descending urgency.
var Importances = []Importance{ImportanceCritical, ImportanceHigh, ImportanceMedium, ImportanceLow}

// ParseImportance resolves a tier name case-insensitively.
func ParseImportance(s string) (Importance, error) {
	for _, imp := range Importances {
		if strings.EqualFold(strings.TrimSpace(s), string(imp)) {
			return imp, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidImportance, s)
}

// IsValid reports whether the tier is one of the known values.
func (i Importance) IsValid() bool {
	switch i {
	case ImportanceCritical, ImportanceHigh, ImportanceMedium, ImportanceLow:
		return true
	}
	return false
}

// Category groups vendor bills by what they pay for.
type Category string

// Vendor bill categories.
const (
	CategoryUtilities Category = "Utilities"
	CategoryRent      Category = "Rent"
	CategorySecurity  Category = "Security"
	CategoryServices  Category = "Services"
	CategoryTax       Category = "Tax"
)

// Categories lists every known category.
var Categories = []Category{CategoryUtilities, CategoryRent, CategorySecurity, CategoryServices, CategoryTax}

// ParseCategory resolves a category name case-insensitively.
func ParseCategory(s string) (Category, error) {
	for _, c := range Categories {
		if strings.EqualFold(strings.TrimSpace(s), string(c)) {
			return c, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidCategory, s)
}

// IsValid reports whether the category is one of the known values.
func (c Category) IsValid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// InvoiceStatus is the payment state of a vendor bill.
type InvoiceStatus string

// Invoice statuses. Paid is only ever set by the user, never by allocation.
const (
	StatusApproved InvoiceStatus = "Approved"
	StatusHold     InvoiceStatus = "Hold"
	StatusPaid     InvoiceStatus = "Paid"
)

// IsValid reports whether the status is one of the known values.
func (s InvoiceStatus) IsValid() bool {
	switch s {
	case StatusApproved, StatusHold, StatusPaid:
		return true
	}
	return false
}

// OverrideMode records whether a user has pinned an invoice's status.
type OverrideMode string

// Override modes.
const (
	OverrideAuto           OverrideMode = "Auto"
	OverrideManualApproved OverrideMode = "ManualApproved"
	OverrideManualHold     OverrideMode = "ManualHold"
)

// IsValid reports whether the mode is one of the known values.
func (m OverrideMode) IsValid() bool {
	switch m {
	case OverrideAuto, OverrideManualApproved, OverrideManualHold:
		return true
	}
	return false
}

// Status returns the status a manual mode pins. Auto pins nothing.
func (m OverrideMode) Status() (InvoiceStatus, bool) {
	switch m {
	case OverrideManualApproved:
		return StatusApproved, true
	case OverrideManualHold:
		return StatusHold, true
	default:
		return "", false
	}
}

// Invoice is a single outstanding vendor bill.
type Invoice struct {
	InvoiceDate time.Time
	DueDate     time.Time
	ID          string
	Vendor      string
	Category    Category
	Importance  Importance
	Status      InvoiceStatus
	Override    OverrideMode

	Amount float64

	// Derived by allocation, never persisted
	Score   float64
	AgeDays int
}

// NewInvoice builds a bill the way intake does: held, unpinned, and left for
// allocation to classify.
func NewInvoice(vendor string, category Category, amount float64, invoiceDate, dueDate time.Time, importance Importance) Invoice {
	return Invoice{
		ID:          GenerateID("VEND"),
		Vendor:      vendor,
		Category:    category,
		Amount:      amount,
		InvoiceDate: invoiceDate,
		DueDate:     dueDate,
		Importance:  importance,
		Status:      StatusHold,
		Override:    OverrideAuto,
	}
}

// GenerateID returns a short random identifier such as VEND-3FA9C1.
func GenerateID(prefix string) string {
	raw := strings.ReplaceAll(uuid.NewString(), "-", "")
	return prefix + "-" + strings.ToUpper(raw[:6])
}

// IsManualOverride reports whether the user has pinned this invoice.
func (i Invoice) IsManualOverride() bool {
	return i.Override == OverrideManualApproved || i.Override == OverrideManualHold
}

// Toggle flips Approved and Hold and pins the result.
func (i Invoice) Toggle() (Invoice, error) {
	switch i.Status {
	case StatusApproved:
		i.Status = StatusHold
		i.Override = OverrideManualHold
	case StatusHold:
		i.Status = StatusApproved
		i.Override = OverrideManualApproved
	default:
		return i, fmt.Errorf("%w: %s", ErrCannotToggle, i.ID)
	}
	return i, nil
}

// ClearOverride returns the invoice to allocation control.
func (i Invoice) ClearOverride() Invoice {
	i.Override = OverrideAuto
	return i
}

// MarkPaid settles the invoice. Paid invoices drop out of allocation.
func (i Invoice) MarkPaid() Invoice {
	i.Status = StatusPaid
	i.Override = OverrideAuto
	return i
}

// Validate checks the invoice is well-typed and internally consistent.
func (i Invoice) Validate() error {
	if strings.TrimSpace(i.ID) == "" {
		return fmt.Errorf("missing ID")
	}
	if strings.TrimSpace(i.Vendor) == "" {
		return fmt.Errorf("missing vendor")
	}
	if !i.Category.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidCategory, i.Category)
	}
	if !i.Importance.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidImportance, i.Importance)
	}
	if !i.Status.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, i.Status)
	}
	if !i.Override.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidOverride, i.Override)
	}
	if i.Amount < 0 {
		return fmt.Errorf("amount must be non-negative, got %.2f", i.Amount)
	}
	if i.InvoiceDate.IsZero() {
		return fmt.Errorf("missing invoice date")
	}
	if pinned, ok := i.Override.Status(); ok && pinned != i.Status {
		return fmt.Errorf("%w: %s with status %s", ErrInvalidOverride, i.Override, i.Status)
	}
	return nil
}
