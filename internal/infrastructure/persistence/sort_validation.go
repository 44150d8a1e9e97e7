package persistence

import (
	"strings"

	"github.com/dms/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// ValidateSortOrder validates and normalizes the sort order to ASC or DESC.
// Returns "DESC" as the default if the input is invalid or empty.
func ValidateSortOrder(orderDir string) string {
	normalized := strings.ToUpper(strings.TrimSpace(orderDir))
	if normalized == "ASC" {
		return "ASC"
	}
	return "DESC"
}

// ValidateSortField validates the sort field against a whitelist of allowed fields.
// Returns the defaultField if the input is invalid, empty, or not in the whitelist.
func ValidateSortField(sortField string, allowedFields map[string]bool, defaultField string) string {
	trimmed := strings.TrimSpace(sortField)
	if trimmed == "" {
		return defaultField
	}
	if allowedFields[trimmed] {
		return trimmed
	}
	return defaultField
}

var CustomerSortFields = map[string]bool{
	"created_at":         true,
	"updated_at":         true,
	"name":               true,
	"territory":          true,
	"credit_limit":       true,
	"outstanding_amount": true,
}

var SalesmanSortFields = map[string]bool{
	"created_at": true,
	"name":       true,
	"territory":  true,
}

var CompanySortFields = map[string]bool{
	"created_at": true,
	"name":       true,
}

var ProductSortFields = map[string]bool{
	"created_at": true,
	"name":       true,
	"sku":        true,
	"rate":       true,
}

var LedgerEntrySortFields = map[string]bool{
	"created_at": true,
	"entry_date": true,
	"amount":     true,
	"type":       true,
}

var CollectionSortFields = map[string]bool{
	"created_at":      true,
	"collection_date": true,
	"amount":          true,
	"status":          true,
}

var OrderSortFields = map[string]bool{
	"created_at": true,
	"order_date": true,
	"net_amount": true,
	"status":     true,
}

// paginate applies whitelisted ordering and paging from filter.
func paginate(query *gorm.DB, filter shared.Filter, allowed map[string]bool, defaultField string) *gorm.DB {
	filter = filter.Normalize()
	field := ValidateSortField(filter.OrderBy, allowed, defaultField)
	return query.
		Order(field + " " + ValidateSortOrder(filter.OrderDir)).
		Offset(filter.Offset()).
		Limit(filter.PageSize)
}

// likePattern escapes LIKE wildcards in a search term.
func likePattern(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(strings.TrimSpace(s)) + "%"
}
