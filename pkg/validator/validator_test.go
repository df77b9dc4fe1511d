package validator

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	ID       uuid.UUID        `validate:"uuid_required"`
	Price    decimal.Decimal  `validate:"decimal_gte0"`
	Shipping *decimal.Decimal `validate:"omitempty,decimal_gte0"`
	Name     string           `validate:"required"`
}

func TestValidateStructPasses(t *testing.T) {
	ship := decimal.NewFromFloat(15.9)
	errs := ValidateStruct(&sample{ID: uuid.New(), Price: decimal.NewFromInt(10), Shipping: &ship, Name: "x"})
	assert.Empty(t, errs)
}

func TestValidateStructReportsFailures(t *testing.T) {
	ship := decimal.NewFromInt(-1)
	errs := ValidateStruct(&sample{Price: decimal.NewFromInt(-5), Shipping: &ship})
	require.Len(t, errs, 4)

	tags := map[string]string{}
	for _, e := range errs {
		tags[e.FailedField] = e.Tag
	}
	assert.Equal(t, "uuid_required", tags["sample.ID"])
	assert.Equal(t, "decimal_gte0", tags["sample.Price"])
	assert.Equal(t, "decimal_gte0", tags["sample.Shipping"])
	assert.Equal(t, "required", tags["sample.Name"])
	assert.Equal(t, "Field 'sample.ID' failed on tag 'uuid_required'", errs[0].String())
}
