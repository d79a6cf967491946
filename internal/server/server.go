// Package server wires the GraphQL executor, playground, metrics and health
// check into a gin engine.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/99designs/gqlgen/graphql"
	"github.com/99designs/gqlgen/graphql/executor"
	"github.com/99designs/gqlgen/graphql/handler/extension"
	"github.com/99designs/gqlgen/graphql/handler/lru"
	"github.com/99designs/gqlgen/graphql/playground"
	"github.com/gin-gonic/gin"
	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/gqlerror"
	"go.uber.org/zap"

	"github.com/blogql/blogql/internal/config"
	"github.com/blogql/blogql/internal/graph"
	"github.com/blogql/blogql/internal/metrics"
	"github.com/blogql/blogql/internal/store"
)

// New returns the HTTP handler for the API:
//
//	POST /graphql, POST /  GraphQL entry route
//	GET  /graphql, GET /   GraphQL Playground
//	GET  /metrics          Prometheus metrics
//	GET  /healthz          database ping
func New(cfg *config.Config, st *store.Store, logger *zap.Logger) *gin.Engine {
	es := graph.NewExecutableSchema(graph.Config{
		Resolvers: &graph.Resolver{
			Store:          st,
			Logger:         logger,
			MinYearOfBirth: cfg.Profiles.MinYearOfBirth,
		},
	})

	gql := &graphqlHandler{
		exec:   NewExecutor(es, cfg.GraphQL, logger),
		schema: es.Schema(),
		cfg:    cfg.GraphQL,
		logger: logger,
	}
	pg := gin.WrapH(playground.Handler("blogql", "/graphql"))

	r := gin.New()
	r.Use(requestLogger(logger), recovery(logger))

	r.POST("/graphql", gql.serve)
	r.POST("/", gql.serve)
	r.GET("/graphql", pg)
	r.GET("/", pg)
	r.GET("/metrics", gin.WrapH(metrics.Handler()))
	r.GET("/healthz", healthz(st))

	return r
}

// NewExecutor builds the gqlgen executor with the extensions enabled by cfg.
func NewExecutor(es graphql.ExecutableSchema, cfg config.GraphQLConfig, logger *zap.Logger) *executor.Executor {
	exec := executor.New(es)
	if cfg.QueryCacheSize > 0 {
		exec.SetQueryCache(lru.New[*ast.QueryDocument](cfg.QueryCacheSize))
	}
	exec.SetRecoverFunc(func(ctx context.Context, err any) error {
		logger.Error("panic while resolving", zap.Any("panic", err), zap.Stack("stack"))
		return gqlerror.Errorf("internal system error")
	})

	if cfg.Introspection {
		exec.Use(extension.Introspection{})
	}
	if cfg.DepthLimit > 0 {
		exec.Use(graph.DepthLimit{Max: cfg.DepthLimit})
	}
	if cfg.ComplexityLimit > 0 {
		exec.Use(extension.FixedComplexityLimit(cfg.ComplexityLimit))
	}
	exec.Use(metrics.Extension{})

	return exec
}

func requestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
		)
	}
}

func recovery(logger *zap.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		logger.Error("panic in handler",
			zap.Any("panic", recovered),
			zap.String("path", c.Request.URL.Path),
		)
		c.AbortWithStatus(http.StatusInternalServerError)
	})
}

func healthz(st *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if err := st.Ping(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}
