package handlers

import (
	"net/url"
	"strings"

	"sales-dashboard/internal/models"
)

const (
	paramCity         = "city"
	paramCustomerType = "customer_type"
	paramGender       = "gender"
)

// selectionFromQuery reads repeated city, customer_type and gender
// parameters. An absent parameter leaves the dimension nil so it defaults to
// every option; a parameter given only blank values selects nothing.
func selectionFromQuery(q url.Values) models.Selection {
	return models.Selection{
		Cities:        queryValues(q, paramCity),
		CustomerTypes: queryValues(q, paramCustomerType),
		Genders:       queryValues(q, paramGender),
	}
}

func queryValues(q url.Values, key string) []string {
	raw, ok := q[key]
	if !ok {
		return nil
	}
	values := make([]string, 0, len(raw))
	for _, v := range raw {
		if v = strings.TrimSpace(v); v != "" {
			values = append(values, v)
		}
	}
	return values
}
