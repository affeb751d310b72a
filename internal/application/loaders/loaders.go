package loaders

import (
	"context"
	"net/http"
	"time"

	"github.com/graph-gophers/dataloader/v7"
	"github.com/mokarr/appointpro/internal/domain/entities"
	"github.com/mokarr/appointpro/internal/domain/repositories"
)

type ctxKey string

const loadersKey ctxKey = "dataloaders"

// batchWait is how long a loader collects keys before it queries
const batchWait = 2 * time.Millisecond

// Loaders contains all the dataloaders for the application
type Loaders struct {
	// ClassBySession resolves a class session ID to its class. Unknown sessions
	// resolve to nil without an error.
	ClassBySession *dataloader.Loader[string, *entities.Class]
}

// NewLoaders creates a new instance of Loaders
func NewLoaders(classRepo repositories.ClassRepository) *Loaders {
	return &Loaders{
		ClassBySession: dataloader.NewBatchedLoader(func(ctx context.Context, keys []string) []*dataloader.Result[*entities.Class] {
			results := make([]*dataloader.Result[*entities.Class], len(keys))
			classes, err := classRepo.GetClassesBySessionIDs(ctx, keys)

			for i, key := range keys {
				if err != nil {
					results[i] = &dataloader.Result[*entities.Class]{Error: err}
				} else {
					results[i] = &dataloader.Result[*entities.Class]{Data: classes[key]}
				}
			}
			return results
		}, dataloader.WithWait[string, *entities.Class](batchWait)),
	}
}

// For returns the loaders for a given context, nil when none are attached
func For(ctx context.Context) *Loaders {
	l, _ := ctx.Value(loadersKey).(*Loaders)
	return l
}

// WithLoaders returns a new context with the loaders attached
func WithLoaders(ctx context.Context, loaders *Loaders) context.Context {
	return context.WithValue(ctx, loadersKey, loaders)
}

// Middleware attaches fresh loaders to every request so that cached results never
// outlive it
func Middleware(classRepo repositories.ClassRepository) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := WithLoaders(r.Context(), NewLoaders(classRepo))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
