package model

// Actor roles carried in the JWT. Admin exists in the wider system but
// never calls the dispatch core directly.
const (
	RoleCustomer    = "CUSTOMER"
	RoleElectrician = "ELECTRICIAN"
)
