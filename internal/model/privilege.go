package model

// Privilege codes carried in bearer token claims and checked per route.
const (
	PrivSaleView   = "sale:view"
	PrivSaleCreate = "sale:create"
	PrivSaleUpdate = "sale:update"
	PrivSaleDelete = "sale:delete"

	PrivProductCreate = "product:create"
	PrivProductUpdate = "product:update"
	PrivProductDelete = "product:delete"

	PrivCategoryManage = "category:manage"

	PrivCustomerCreate = "customer:create"
	PrivCustomerUpdate = "customer:update"
	PrivCustomerDelete = "customer:delete"
)

// Privilege describes one grantable permission
type Privilege struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// DefaultPrivileges lists every privilege the API checks.
var DefaultPrivileges = []Privilege{
	// Sales
	{Code: PrivSaleView, Name: "View Sale"},
	{Code: PrivSaleCreate, Name: "Create Sale"},
	{Code: PrivSaleUpdate, Name: "Update Sale"},
	{Code: PrivSaleDelete, Name: "Delete Sale"},
	// Catalog
	{Code: PrivProductCreate, Name: "Create Product"},
	{Code: PrivProductUpdate, Name: "Update Product"},
	{Code: PrivProductDelete, Name: "Delete Product"},
	{Code: PrivCategoryManage, Name: "Manage Categories"},
	// Customers
	{Code: PrivCustomerCreate, Name: "Create Customer"},
	{Code: PrivCustomerUpdate, Name: "Update Customer"},
	{Code: PrivCustomerDelete, Name: "Delete Customer"},
}

// AllPrivilegeCodes returns the code of every default privilege.
func AllPrivilegeCodes() []string {
	codes := make([]string, len(DefaultPrivileges))
	for i, p := range DefaultPrivileges {
		codes[i] = p.Code
	}
	return codes
}
