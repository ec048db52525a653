package relational

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/driftwell/discoveryengine/internal/company"
)

// Hydrate resolves a list of company ids, as produced by the search engine,
// into full Company records. The returned slice preserves the rank order of
// ids; ids with no matching row are silently dropped (spec §4.9 step 9,
// invariant in spec §8: "R preserves the rank order ... each id appears at
// most once").
func (db *DB) Hydrate(ctx context.Context, ids []int64) ([]company.Company, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	placeholders := make([]string, len(ids))
	args := make([]any, len(ids))
	for i, id := range ids {
		placeholders[i] = "?"
		args[i] = id
	}

	query := fmt.Sprintf(`
		SELECT c.id, c.name, c.description, c.website_url, c.employee_count, c.funding_amount_usd,
		       COALESCE(l.name, ''), COALESCE(fs.name, ''), COALESCE(fs.order_index, 0)
		FROM companies c
		LEFT JOIN locations l ON l.id = c.location_id
		LEFT JOIN funding_stages fs ON fs.id = c.funding_stage_id
		WHERE c.id IN (%s)`, strings.Join(placeholders, ","))

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("relational: hydrate companies: %w", err)
	}
	defer rows.Close()

	byID := make(map[int64]*company.Company, len(ids))
	for rows.Next() {
		var c company.Company
		var employeeCount sql.NullInt64
		var fundingAmount sql.NullInt64
		if err := rows.Scan(&c.ID, &c.Name, &c.Description, &c.WebsiteURL,
			&employeeCount, &fundingAmount, &c.Location, &c.FundingStage, &c.StageOrder); err != nil {
			return nil, fmt.Errorf("relational: scan company: %w", err)
		}
		if employeeCount.Valid {
			v := int(employeeCount.Int64)
			c.EmployeeCount = &v
		}
		if fundingAmount.Valid {
			v := fundingAmount.Int64
			c.FundingAmountUSD = &v
		}
		byID[c.ID] = &c
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for name := range relationTables() {
		if err := db.attachRelation(ctx, byID, name); err != nil {
			return nil, err
		}
	}

	out := make([]company.Company, 0, len(ids))
	seen := make(map[int64]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		if c, ok := byID[id]; ok {
			out = append(out, *c)
		}
	}
	return out, nil
}

func relationTables() map[string]struct {
	joinTable string
	vocabTable string
	vocabFK    string
} {
	return map[string]struct {
		joinTable  string
		vocabTable string
		vocabFK    string
	}{
		"industries":      {"company_industries", "industries", "industry_id"},
		"target_markets":  {"company_target_markets", "target_markets", "target_market_id"},
		"business_models": {"company_business_models", "business_models", "business_model_id"},
		"revenue_models":  {"company_revenue_models", "revenue_models", "revenue_model_id"},
	}
}

func (db *DB) attachRelation(ctx context.Context, byID map[int64]*company.Company, name string) error {
	tables := relationTables()[name]

	ids := make([]int64, 0, len(byID))
	for id := range byID {
		ids = append(ids, id)
	}
	if len(ids) == 0 {
		return nil
	}
	placeholders := make([]string, len(ids))
	args := make([]any, len(ids))
	for i, id := range ids {
		placeholders[i] = "?"
		args[i] = id
	}

	query := fmt.Sprintf(`
		SELECT j.company_id, v.name
		FROM %s j
		JOIN %s v ON v.id = j.%s
		WHERE j.company_id IN (%s)
		ORDER BY v.name`, tables.joinTable, tables.vocabTable, tables.vocabFK, strings.Join(placeholders, ","))

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("relational: attach %s: %w", name, err)
	}
	defer rows.Close()

	for rows.Next() {
		var companyID int64
		var value string
		if err := rows.Scan(&companyID, &value); err != nil {
			return err
		}
		c, ok := byID[companyID]
		if !ok {
			continue
		}
		switch name {
		case "industries":
			c.Industries = append(c.Industries, value)
		case "target_markets":
			c.TargetMarkets = append(c.TargetMarkets, value)
		case "business_models":
			c.BusinessModels = append(c.BusinessModels, value)
		case "revenue_models":
			c.RevenueModels = append(c.RevenueModels, value)
		}
	}
	return rows.Err()
}
