package main

import (
	"testing"

	"go-vendas-api/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePrivileges(t *testing.T) {
	all, err := parsePrivileges("all")
	require.NoError(t, err)
	assert.Equal(t, model.AllPrivilegeCodes(), all)

	codes, err := parsePrivileges("sale:view, sale:create,")
	require.NoError(t, err)
	assert.Equal(t, []string{model.PrivSaleView, model.PrivSaleCreate}, codes)

	_, err = parsePrivileges("user:delete")
	assert.Error(t, err)
}
