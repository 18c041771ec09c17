// Package etl maps loosely-named import rows onto strict domain inputs.
// Source files come from exports with no agreed column naming, so every
// field is resolved through an explicit fallback list instead of ad hoc
// probing.
package etl

import (
	"strconv"
	"strings"

	customerdomain "github.com/minicrm/backoffice/internal/customer/domain"
	productdomain "github.com/minicrm/backoffice/internal/product/domain"
	"github.com/minicrm/backoffice/pkg/money"
)

// Row is one record from an import file, keyed by the column header as it
// appeared in the source.
type Row map[string]string

// field returns the first non-empty value among the candidate column names,
// compared case-sensitively first and case-insensitively as a fallback.
func (r Row) field(names ...string) string {
	for _, name := range names {
		if v, ok := r[name]; ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	for _, name := range names {
		for k, v := range r {
			if strings.EqualFold(k, name) && strings.TrimSpace(v) != "" {
				return strings.TrimSpace(v)
			}
		}
	}
	return ""
}

var (
	firstNameColumns = []string{"firstName", "first_name", "FirstName", "fname", "name"}
	lastNameColumns  = []string{"lastName", "last_name", "LastName", "lname", "surname"}
	emailColumns     = []string{"email", "Email", "e_mail", "mail"}
	phoneColumns     = []string{"phone", "Phone", "phone_number", "telephone", "tel"}
	addressColumns   = []string{"address", "Address", "addr"}

	productNameColumns = []string{"name", "Name", "productName", "product_name", "title"}
	descriptionColumns = []string{"description", "Description", "desc"}
	priceColumns       = []string{"price", "Price", "unitPrice", "unit_price"}
	skuColumns         = []string{"sku", "SKU", "Sku", "productCode", "product_code"}
	categoryColumns    = []string{"category", "Category", "productCategory"}
	stockColumns       = []string{"initialStock", "initial_stock", "stock", "quantity", "qty"}
)

// CustomerInput builds a customer create input from a loose row. Validation
// is left to the domain; this only resolves column names.
func CustomerInput(row Row) customerdomain.Input {
	in := customerdomain.Input{}
	if v := row.field(firstNameColumns...); v != "" {
		in.FirstName = &v
	}
	if v := row.field(lastNameColumns...); v != "" {
		in.LastName = &v
	}
	if v := row.field(emailColumns...); v != "" {
		in.Email = &v
	}
	if v := row.field(phoneColumns...); v != "" {
		in.Phone = &v
	}
	if v := row.field(addressColumns...); v != "" {
		in.Address = &v
	}
	return in
}

// ProductInput builds a product create input from a loose row. A price that
// does not parse is left nil so domain validation rejects the row with a
// field-level reason.
func ProductInput(row Row) productdomain.Input {
	in := productdomain.Input{}
	if v := row.field(productNameColumns...); v != "" {
		in.Name = &v
	}
	if v := row.field(descriptionColumns...); v != "" {
		in.Description = &v
	}
	if v := row.field(priceColumns...); v != "" {
		if price, err := money.FromString(v); err == nil {
			in.Price = &price
		}
	}
	if v := row.field(skuColumns...); v != "" {
		in.SKU = &v
	}
	if v := row.field(categoryColumns...); v != "" {
		in.Category = &v
	}
	if v := row.field(stockColumns...); v != "" {
		if qty, err := strconv.Atoi(v); err == nil {
			in.InitialStock = &qty
		}
	}
	return in
}
