package graph

import (
	"context"
	"fmt"
	"strings"

	"github.com/99designs/gqlgen/graphql"
	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/gqlerror"
)

// Depth returns how deeply fields nest in op. Top-level fields are at depth
// 0. Fragments count as if inlined, and fields whose name starts with "__"
// are not descended into.
func Depth(doc *ast.QueryDocument, op *ast.OperationDefinition) int {
	return selectionDepth(doc, op.SelectionSet, 0, map[string]bool{})
}

func selectionDepth(doc *ast.QueryDocument, set ast.SelectionSet, depth int, visiting map[string]bool) int {
	deepest := depth
	for _, sel := range set {
		d := depth
		switch sel := sel.(type) {
		case *ast.Field:
			if strings.HasPrefix(sel.Name, "__") || len(sel.SelectionSet) == 0 {
				continue
			}
			d = selectionDepth(doc, sel.SelectionSet, depth+1, visiting)
		case *ast.InlineFragment:
			d = selectionDepth(doc, sel.SelectionSet, depth, visiting)
		case *ast.FragmentSpread:
			frag := sel.Definition
			if frag == nil && doc != nil {
				frag = doc.Fragments.ForName(sel.Name)
			}
			if frag == nil || visiting[sel.Name] {
				continue
			}
			visiting[sel.Name] = true
			d = selectionDepth(doc, frag.SelectionSet, depth, visiting)
			delete(visiting, sel.Name)
		}
		if d > deepest {
			deepest = d
		}
	}
	return deepest
}

// ValidateDepth checks every operation in doc against max.
func ValidateDepth(doc *ast.QueryDocument, max int) gqlerror.List {
	var errs gqlerror.List
	for _, op := range doc.Operations {
		if err := checkDepth(doc, op, max); err != nil {
			errs = append(errs, err)
		}
	}
	return errs
}

func checkDepth(doc *ast.QueryDocument, op *ast.OperationDefinition, max int) *gqlerror.Error {
	if Depth(doc, op) <= max {
		return nil
	}
	name := "Anonymous " + string(op.Operation)
	if op.Name != "" {
		name = fmt.Sprintf("'%s'", op.Name)
	}
	return gqlerror.ErrorPosf(op.Position, "%s exceeds maximum operation depth of %d", name, max)
}

// DepthLimit rejects operations nested deeper than Max.
type DepthLimit struct {
	Max int
}

var _ interface {
	graphql.HandlerExtension
	graphql.OperationContextMutator
} = DepthLimit{}

func (DepthLimit) ExtensionName() string {
	return "DepthLimit"
}

func (d DepthLimit) Validate(graphql.ExecutableSchema) error {
	if d.Max < 1 {
		return fmt.Errorf("depth limit must be positive, got %d", d.Max)
	}
	return nil
}

func (d DepthLimit) MutateOperationContext(ctx context.Context, opCtx *graphql.OperationContext) *gqlerror.Error {
	if opCtx.Operation == nil {
		return nil
	}
	return checkDepth(opCtx.Doc, opCtx.Operation, d.Max)
}
