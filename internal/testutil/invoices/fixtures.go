package invoices

import (
	"time"

	"github.com/Veraticus/payrank/internal/model"
)

// Fixture is a named, reusable set of invoices.
type Fixture string

// Predefined fixtures.
const (
	// FixtureLandlordMonth is a small office's month: rent, power, and security.
	FixtureLandlordMonth Fixture = "landlord-month"

	// FixtureMixedOverrides pairs free invoices with one of each manual pin.
	FixtureMixedOverrides Fixture = "mixed-overrides"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Invoices returns fresh copies of the fixture's invoices.
func (f Fixture) Invoices() []model.Invoice {
	switch f {
	case FixtureLandlordMonth:
		return []model.Invoice{
			{
				ID: "VEND-000001", Vendor: "Landlord Holdings", Category: model.CategoryRent,
				InvoiceDate: date(2023, 10, 1), DueDate: date(2023, 10, 5),
				Amount: 8500, Importance: model.ImportanceCritical,
				Status: model.StatusHold, Override: model.OverrideAuto,
			},
			{
				ID: "VEND-000002", Vendor: "City Power & Light", Category: model.CategoryUtilities,
				InvoiceDate: date(2023, 9, 28), DueDate: date(2023, 10, 10),
				Amount: 1200.50, Importance: model.ImportanceCritical,
				Status: model.StatusHold, Override: model.OverrideAuto,
			},
			{
				ID: "VEND-000003", Vendor: "SecureGuard Inc", Category: model.CategorySecurity,
				InvoiceDate: date(2023, 10, 1), DueDate: date(2023, 10, 15),
				Amount: 2500, Importance: model.ImportanceHigh,
				Status: model.StatusHold, Override: model.OverrideAuto,
			},
		}
	case FixtureMixedOverrides:
		return []model.Invoice{
			{
				ID: "VEND-000011", Vendor: "Tax Office", Category: model.CategoryTax,
				InvoiceDate: date(2024, 4, 15), DueDate: date(2024, 5, 15),
				Amount: 3000, Importance: model.ImportanceCritical,
				Status: model.StatusHold, Override: model.OverrideAuto,
			},
			{
				ID: "VEND-000012", Vendor: "Cleaners Co", Category: model.CategoryServices,
				InvoiceDate: date(2024, 5, 1), DueDate: date(2024, 5, 31),
				Amount: 400, Importance: model.ImportanceLow,
				Status: model.StatusApproved, Override: model.OverrideManualApproved,
			},
			{
				ID: "VEND-000013", Vendor: "Print Shop", Category: model.CategoryServices,
				InvoiceDate: date(2024, 3, 1), DueDate: date(2024, 3, 31),
				Amount: 250, Importance: model.ImportanceHigh,
				Status: model.StatusHold, Override: model.OverrideManualHold,
			},
			{
				ID: "VEND-000014", Vendor: "Water Board", Category: model.CategoryUtilities,
				InvoiceDate: date(2024, 5, 10), DueDate: date(2024, 6, 10),
				Amount: 180, Importance: model.ImportanceMedium,
				Status: model.StatusHold, Override: model.OverrideAuto,
			},
		}
	default:
		return nil
	}
}
