package sync

// Method identifies one ERP operation. Its value travels verbatim in the
// method-identifier header of every data-endpoint request.
type Method string

const (
	MethodGetToken          Method = "GetToken"
	MethodGetInventory      Method = "GetInventory"
	MethodAddCustomer       Method = "AddCustomer"
	MethodModifyCustomer    Method = "ModifyCustomer"
	MethodCreateSalesOrder  Method = "CreateSalesOrder"
	MethodGetOrderDetail    Method = "GetOrderDetail"
	MethodCreateReturnOrder Method = "CreateReturnOrder"
	MethodSetOrderStatus    Method = "SetOrderStatus"
)

// IsValid checks if the method is one the ERP exposes.
func (m Method) IsValid() bool {
	switch m {
	case MethodGetToken, MethodGetInventory, MethodAddCustomer,
		MethodModifyCustomer, MethodCreateSalesOrder, MethodGetOrderDetail,
		MethodCreateReturnOrder, MethodSetOrderStatus:
		return true
	}
	return false
}

// String returns the string representation of the method.
func (m Method) String() string {
	return string(m)
}
