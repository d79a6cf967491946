package server

import (
	"encoding/json"
	"net/http"

	"github.com/99designs/gqlgen/graphql"
	"github.com/99designs/gqlgen/graphql/executor"
	"github.com/gin-gonic/gin"
	"github.com/vektah/gqlparser/v2"
	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/gqlerror"
	"go.uber.org/zap"

	"github.com/blogql/blogql/internal/config"
	"github.com/blogql/blogql/internal/graph"
)

type graphqlRequest struct {
	Query         string         `json:"query"`
	Variables     map[string]any `json:"variables"`
	OperationName string         `json:"operationName"`
}

type graphqlHandler struct {
	exec   *executor.Executor
	schema *ast.Schema
	cfg    config.GraphQLConfig
	logger *zap.Logger
}

func (h *graphqlHandler) serve(c *gin.Context) {
	var req graphqlRequest
	dec := json.NewDecoder(c.Request.Body)
	dec.UseNumber()
	if err := dec.Decode(&req); err != nil {
		c.JSON(http.StatusBadRequest, &graphql.Response{
			Errors: gqlerror.List{gqlerror.Errorf("json request body could not be decoded: %s", err)},
		})
		return
	}

	if h.cfg.Validate {
		if errs := h.prevalidate(req.Query); len(errs) > 0 {
			h.logger.Debug("rejected graphql request",
				zap.String("operation", req.OperationName),
				zap.Int("errors", len(errs)),
			)
			c.JSON(http.StatusInternalServerError, &graphql.Response{Errors: errs})
			return
		}
	}

	ctx := graphql.StartOperationTrace(c.Request.Context())
	params := &graphql.RawParams{
		Query:         req.Query,
		Variables:     NormalizeVariables(req.Variables),
		OperationName: req.OperationName,
	}

	opCtx, errs := h.exec.CreateOperationContext(ctx, params)
	if errs != nil {
		resp := h.exec.DispatchError(graphql.WithOperationContext(ctx, opCtx), errs)
		c.JSON(http.StatusUnprocessableEntity, resp)
		return
	}

	responses, ctx := h.exec.DispatchOperation(ctx, opCtx)
	c.JSON(http.StatusOK, responses(ctx))
}

// NormalizeVariables replaces every json.Number in vars with an int64 when it
// is integral and a float64 otherwise. Variable coercion only accepts a
// json.Number for Int when it parses as an integer, so a fractional value
// would otherwise be reported as a string.
func NormalizeVariables(vars map[string]any) map[string]any {
	for k, v := range vars {
		vars[k] = normalizeNumber(v)
	}
	return vars
}

func normalizeNumber(v any) any {
	switch v := v.(type) {
	case json.Number:
		if i, err := v.Int64(); err == nil {
			return i
		}
		if f, err := v.Float64(); err == nil {
			return f
		}
		return v
	case map[string]any:
		return NormalizeVariables(v)
	case []any:
		for i := range v {
			v[i] = normalizeNumber(v[i])
		}
		return v
	}
	return v
}

// prevalidate parses and validates query against the schema and the depth
// limit without executing it.
func (h *graphqlHandler) prevalidate(query string) gqlerror.List {
	doc, errs := gqlparser.LoadQuery(h.schema, query)
	if len(errs) > 0 {
		return errs
	}
	if h.cfg.DepthLimit > 0 {
		return graph.ValidateDepth(doc, h.cfg.DepthLimit)
	}
	return nil
}
