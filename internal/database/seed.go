package database

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/mholloway/tally/internal/database/repository"
)

type defaultCategory struct {
	name        string
	catType     string
	taxLine     string
	formLine    string
	description string
}

// The three Payroll categories are resolved by name by the payroll
// importer's post-import hook; renaming them breaks auto-categorization.
var defaultCategories = []defaultCategory{
	// Income
	{"Client Services", "income", "Gross receipts", "", "Project fees, retainer payments"},
	{"Hosting & Maintenance", "income", "Gross receipts", "", "Recurring client hosting/maintenance fees"},
	{"Reimbursements", "income", "Gross receipts", "", "Client reimbursements for expenses"},
	{"Interest Income", "income", "Other income", "K-4", "Bank interest"},
	{"Other Income", "income", "Other income", "", "Anything else"},
	// Expenses
	{"Advertising & Marketing", "expense", "Line 8", "1120S-16", "Ads, sponsorships, marketing tools"},
	{"Car & Truck", "expense", "Line 9", "1120S-19", "Mileage, fuel, parking"},
	{"Commissions & Fees", "expense", "Line 10", "1120S-19", "Subcontractor commissions, platform fees"},
	{"Contract Labor", "expense", "Line 11", "1120S-19", "Freelancers, subcontractors (1099 work)"},
	{"Insurance", "expense", "Line 15", "1120S-19", "Business insurance, E&O"},
	{"Legal & Professional", "expense", "Line 17", "1120S-19", "Accountant, lawyer, professional services"},
	{"Office Expense", "expense", "Line 18", "1120S-19", "Office supplies, minor equipment"},
	{"Rent / Lease", "expense", "Line 20b", "1120S-11", "Office rent, coworking"},
	{"Software & Subscriptions", "expense", "Line 18/27a", "1120S-19", "SaaS tools, domain renewals, cloud services"},
	{"Hosting & Infrastructure", "expense", "Line 18/27a", "1120S-19", "AWS, server costs, CDN"},
	{"Taxes & Licenses", "expense", "Line 23", "1120S-12", "Business licenses, state fees"},
	{"Travel", "expense", "Line 24a", "1120S-19", "Flights, hotels, conference travel"},
	{"Meals", "expense", "Line 24b", "1120S-19", "Business meals (50% deductible)"},
	{"Utilities", "expense", "Line 25", "1120S-19", "Internet, phone (business portion)"},
	{"Payroll — Wages", "expense", "Line 26", "1120S-8", "Employee salaries"},
	{"Payroll — Taxes", "expense", "Line 23", "1120S-12", "Employer payroll taxes"},
	{"Payroll — Benefits", "expense", "Line 14", "1120S-18", "Health insurance, retirement"},
	{"Bank & Merchant Fees", "expense", "Line 27a", "1120S-19", "Stripe fees, bank charges, wire fees"},
	{"Education & Training", "expense", "Line 27a", "1120S-19", "Courses, books, conferences"},
	{"Equipment", "expense", "Line 13", "1120S-19", "Hardware, major purchases"},
	{"Home Office", "expense", "Line 30", "1120S-19", "Simplified method or actual expenses"},
	{"Owner Draw / Distribution", "expense", "Not deductible", "K-16d", "Owner payments, distributions"},
	{"Transfer", "expense", "Not deductible", "", "Transfers between own accounts"},
	{"Uncategorized", "expense", "—", "", "Needs review"},
}

// SeedDefaults ensures the baseline category taxonomy exists for new databases.
// It is idempotent and safe to run on every startup.
func SeedDefaults(ctx context.Context, db *sql.DB) error {
	catRepo := repository.NewCategoryRepo(db)
	existing, err := catRepo.List(ctx)
	if err == nil && len(existing) > 0 {
		return nil
	}
	for idx, dc := range defaultCategories {
		id := uuid.NewSHA1(uuid.NameSpaceOID, []byte("cat:"+dc.name)).String()
		cat := repository.Category{
			ID:           id,
			Name:         dc.name,
			CategoryType: dc.catType,
			SortOrder:    idx,
		}
		if dc.taxLine != "" {
			cat.TaxLine = &dc.taxLine
		}
		if dc.formLine != "" {
			cat.FormLine = &dc.formLine
		}
		if dc.description != "" {
			cat.Description = &dc.description
		}
		if err := catRepo.Upsert(ctx, cat); err != nil {
			return err
		}
	}
	return nil
}
