// AngelaMos | 2026
// caller.go

package scope

import (
	"context"

	"github.com/carterperez-dev/icetruck/internal/core"
)

type Kind int

const (
	None Kind = iota
	CompanyOwner
	FranchiseManager
)

func (k Kind) String() string {
	switch k {
	case CompanyOwner:
		return "company_owner"
	case FranchiseManager:
		return "franchise_manager"
	default:
		return "none"
	}
}

// Caller is the tenant a request acts for. A franchise manager always
// carries the company of its franchise as well.
type Caller struct {
	Kind        Kind
	UserID      string
	CompanyID   string
	FranchiseID string
}

func Owner(userID, companyID string) Caller {
	return Caller{Kind: CompanyOwner, UserID: userID, CompanyID: companyID}
}

func Manager(userID, franchiseID, companyID string) Caller {
	return Caller{
		Kind:        FranchiseManager,
		UserID:      userID,
		CompanyID:   companyID,
		FranchiseID: franchiseID,
	}
}

func (c Caller) IsOwner() bool   { return c.Kind == CompanyOwner }
func (c Caller) IsManager() bool { return c.Kind == FranchiseManager }

// Restrict limits f to trucks the caller may see. alias names the
// ice_cream_trucks table in the surrounding query. A caller with no
// tenant matches nothing.
func (c Caller) Restrict(f *core.Filter, alias string) {
	switch c.Kind {
	case CompanyOwner:
		f.Add(alias+".company_id = $%d", c.CompanyID)
	case FranchiseManager:
		f.Add(alias+".franchise_id = $%d", c.FranchiseID)
	default:
		f.Raw("FALSE")
	}
}

// TruckScopeKey names the order number counter namespace of a truck: its
// franchise when it has one, else its company.
func TruckScopeKey(companyID string, franchiseID *string) string {
	if franchiseID != nil && *franchiseID != "" {
		return "franchise:" + *franchiseID
	}
	return "company:" + companyID
}

type ctxKey struct{}

func WithCaller(ctx context.Context, c Caller) context.Context {
	return context.WithValue(ctx, ctxKey{}, c)
}

// FromContext returns the resolved caller, or a None caller when the
// request was never resolved.
func FromContext(ctx context.Context) Caller {
	if c, ok := ctx.Value(ctxKey{}).(Caller); ok {
		return c
	}
	return Caller{}
}
