package domain

import "time"

// PrincipalKind distinguishes the two kinds of authenticated caller.
type PrincipalKind string

const (
	PrincipalCustomer PrincipalKind = "customer"
	PrincipalAdmin    PrincipalKind = "admin"
)

// Principal is the authenticated caller: exactly one of CustomerPrincipal or
// AdminPrincipal.
type Principal interface {
	Kind() PrincipalKind
	ID() int64
	sealed()
}

// CustomerPrincipal is a signed-in customer.
type CustomerPrincipal struct {
	Customer *Customer
}

func (CustomerPrincipal) Kind() PrincipalKind { return PrincipalCustomer }
func (p CustomerPrincipal) ID() int64         { return p.Customer.ID }
func (CustomerPrincipal) sealed()             {}

// AdminPrincipal is a signed-in admin.
type AdminPrincipal struct {
	Admin *Admin
}

func (AdminPrincipal) Kind() PrincipalKind { return PrincipalAdmin }
func (p AdminPrincipal) ID() int64         { return p.Admin.ID }
func (AdminPrincipal) sealed()             {}

// AsCustomer returns the customer behind p, if p is a customer.
func AsCustomer(p Principal) (*Customer, bool) {
	cp, ok := p.(CustomerPrincipal)
	if !ok || cp.Customer == nil {
		return nil, false
	}
	return cp.Customer, true
}

// AsAdmin returns the admin behind p, if p is an admin.
func AsAdmin(p Principal) (*Admin, bool) {
	ap, ok := p.(AdminPrincipal)
	if !ok || ap.Admin == nil {
		return nil, false
	}
	return ap.Admin, true
}

// Session is a resolved bearer token.
type Session struct {
	Principal Principal
	TokenID   string
	ExpiresAt time.Time
}
