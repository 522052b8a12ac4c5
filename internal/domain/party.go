package domain

import "fmt"

// PartyKind enumerates who a ledger entry can be booked against.
type PartyKind string

const (
	PartyEmployee PartyKind = "employee"
	PartyBranch   PartyKind = "branch"
	PartySupplier PartyKind = "supplier"
	PartyCustomer PartyKind = "customer"
)

// Party is a tagged reference to an account holder. It is an addressing
// scheme, not a stored entity: the ledger only ever deals in (kind, id).
type Party struct {
	Kind PartyKind
	ID   int64
}

// ParseParty validates a raw (kind, id) pair coming off the wire.
func ParseParty(kind string, id int64) (Party, error) {
	if id <= 0 {
		return Party{}, fmt.Errorf("%w: party id must be positive", ErrValidation)
	}
	switch PartyKind(kind) {
	case PartyEmployee, PartyBranch, PartySupplier, PartyCustomer:
		return Party{Kind: PartyKind(kind), ID: id}, nil
	}
	return Party{}, fmt.Errorf("%w: unknown party type %q", ErrValidation, kind)
}

// Valid reports whether the party carries a known kind and a positive id.
func (p Party) Valid() bool {
	if p.ID <= 0 {
		return false
	}
	switch p.Kind {
	case PartyEmployee, PartyBranch, PartySupplier, PartyCustomer:
		return true
	}
	return false
}

func (p Party) String() string {
	return fmt.Sprintf("%s/%d", p.Kind, p.ID)
}
