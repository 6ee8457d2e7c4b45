package services

import "sales-dashboard/internal/models"

// Filter returns the records whose City, Customer_type and Gender are all
// in the selection. Dimensions are ANDed; an empty dimension therefore
// matches nothing. The input is never modified.
func Filter(records []models.SaleRecord, sel models.Selection) []models.SaleRecord {
	out := make([]models.SaleRecord, 0)

	cities := toSet(sel.Cities)
	customerTypes := toSet(sel.CustomerTypes)
	genders := toSet(sel.Genders)
	if len(cities) == 0 || len(customerTypes) == 0 || len(genders) == 0 {
		return out
	}

	for _, r := range records {
		if _, ok := cities[r.City]; !ok {
			continue
		}
		if _, ok := customerTypes[r.CustomerType]; !ok {
			continue
		}
		if _, ok := genders[r.Gender]; !ok {
			continue
		}
		out = append(out, r)
	}
	return out
}

// Options lists the distinct values of each filter dimension in the order
// they first appear.
func Options(records []models.SaleRecord) models.FilterOptions {
	return models.FilterOptions{
		Cities:        distinct(records, func(r models.SaleRecord) string { return r.City }),
		CustomerTypes: distinct(records, func(r models.SaleRecord) string { return r.CustomerType }),
		Genders:       distinct(records, func(r models.SaleRecord) string { return r.Gender }),
	}
}

func distinct(records []models.SaleRecord, key func(models.SaleRecord) string) []string {
	seen := make(map[string]struct{})
	out := make([]string, 0)
	for _, r := range records {
		k := key(r)
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	return out
}

func toSet(items []string) map[string]struct{} {
	set := make(map[string]struct{}, len(items))
	for _, item := range items {
		set[item] = struct{}{}
	}
	return set
}
