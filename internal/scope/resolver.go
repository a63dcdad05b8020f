// AngelaMos | 2026
// resolver.go

package scope

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/carterperez-dev/icetruck/internal/core"
	"github.com/carterperez-dev/icetruck/internal/middleware"
)

type Resolver struct {
	db core.DBTX
}

func NewResolver(db core.DBTX) *Resolver {
	return &Resolver{db: db}
}

// Resolve maps a user to the tenant it acts for. Managing a franchise takes
// precedence over owning a company.
func (r *Resolver) Resolve(ctx context.Context, userID string) (Caller, error) {
	if userID == "" {
		return Caller{}, nil
	}

	var franchise struct {
		ID        string `db:"id"`
		CompanyID string `db:"company_id"`
	}
	err := r.db.GetContext(ctx, &franchise,
		`SELECT id, company_id FROM franchises WHERE user_id = $1`,
		userID,
	)
	switch {
	case err == nil:
		return Manager(userID, franchise.ID, franchise.CompanyID), nil
	case !errors.Is(err, sql.ErrNoRows):
		return Caller{}, fmt.Errorf("resolve franchise: %w", err)
	}

	var companyID string
	err = r.db.GetContext(ctx, &companyID,
		`SELECT id FROM companies WHERE user_id = $1`,
		userID,
	)
	switch {
	case err == nil:
		return Owner(userID, companyID), nil
	case errors.Is(err, sql.ErrNoRows):
		return Caller{UserID: userID}, nil
	default:
		return Caller{}, fmt.Errorf("resolve company: %w", err)
	}
}

// Middleware resolves the authenticated user once and stores the Caller on
// the request context. It must run after the authenticator.
func Middleware(r *Resolver, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			ctx := req.Context()

			caller, err := r.Resolve(ctx, middleware.GetUserID(ctx))
			if err != nil {
				logger.ErrorContext(ctx, "resolve caller", "error", err)
				core.InternalServerError(w, err)
				return
			}

			next.ServeHTTP(w, req.WithContext(WithCaller(ctx, caller)))
		})
	}
}
