package graph

import (
	"go.uber.org/zap"

	"github.com/blogql/blogql/internal/config"
	"github.com/blogql/blogql/internal/store"
)

// Resolver is the root resolver for the GraphQL schema.
// It holds a reference to the store for data access.
type Resolver struct {
	Store  *store.Store
	Logger *zap.Logger

	// MinYearOfBirth is the earliest year of birth a new profile may have.
	MinYearOfBirth int
}

func (r *Resolver) logger() *zap.Logger {
	if r.Logger == nil {
		return zap.NewNop()
	}
	return r.Logger
}

func (r *Resolver) minYearOfBirth() int {
	if r.MinYearOfBirth == 0 {
		return config.DefaultMinYearOfBirth
	}
	return r.MinYearOfBirth
}
