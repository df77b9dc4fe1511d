package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSaleFilterNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   SaleFilter
		want SaleFilter
	}{
		{"defaults", SaleFilter{}, SaleFilter{Page: 1, PerPage: DefaultPerPage, SortBy: "sale_date", SortOrder: "desc"}},
		{"caps per page", SaleFilter{Page: 3, PerPage: 500}, SaleFilter{Page: 3, PerPage: MaxPerPage, SortBy: "sale_date", SortOrder: "desc"}},
		{"keeps known sort", SaleFilter{SortBy: "total", SortOrder: "ASC"}, SaleFilter{Page: 1, PerPage: DefaultPerPage, SortBy: "total", SortOrder: "asc"}},
		{"drops unknown sort", SaleFilter{SortBy: "notes; drop table sales", SortOrder: "sideways"}, SaleFilter{Page: 1, PerPage: DefaultPerPage, SortBy: "sale_date", SortOrder: "desc"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := tt.in
			f.Normalize()
			assert.Equal(t, tt.want, f)
		})
	}
}

func TestSortColumnsAreQualified(t *testing.T) {
	for key, column := range saleSortColumns {
		assert.Equal(t, "sales."+key, column)
	}
}
