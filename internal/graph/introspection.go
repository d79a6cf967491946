package graph

import (
	"fmt"

	"github.com/99designs/gqlgen/graphql/introspection"
)

// resolveIntrospection resolves fields of the __Schema, __Type, __Field,
// __InputValue, __EnumValue and __Directive types.
func resolveIntrospection(typeName, name string, args map[string]any, obj any) (any, error) {
	switch obj := obj.(type) {
	case *introspection.Schema:
		switch name {
		case "description":
			return obj.Description(), nil
		case "types":
			return obj.Types(), nil
		case "queryType":
			return obj.QueryType(), nil
		case "mutationType":
			return obj.MutationType(), nil
		case "subscriptionType":
			return obj.SubscriptionType(), nil
		case "directives":
			return obj.Directives(), nil
		}
	case *introspection.Type:
		switch name {
		case "kind":
			return obj.Kind(), nil
		case "name":
			return obj.Name(), nil
		case "description":
			return obj.Description(), nil
		case "specifiedByURL":
			return obj.SpecifiedByURL(), nil
		case "fields":
			return obj.Fields(includeDeprecated(args)), nil
		case "interfaces":
			return obj.Interfaces(), nil
		case "possibleTypes":
			return obj.PossibleTypes(), nil
		case "enumValues":
			return obj.EnumValues(includeDeprecated(args)), nil
		case "inputFields":
			return obj.InputFields(), nil
		case "ofType":
			return obj.OfType(), nil
		case "isOneOf":
			// No input type in this schema is a oneOf input.
			return false, nil
		}
	case *introspection.Field:
		switch name {
		case "name":
			return obj.Name, nil
		case "description":
			return obj.Description(), nil
		case "args":
			return obj.Args, nil
		case "type":
			return obj.Type, nil
		case "isDeprecated":
			return obj.IsDeprecated(), nil
		case "deprecationReason":
			return obj.DeprecationReason(), nil
		}
	case *introspection.InputValue:
		switch name {
		case "name":
			return obj.Name, nil
		case "description":
			return obj.Description(), nil
		case "type":
			return obj.Type, nil
		case "defaultValue":
			return obj.DefaultValue, nil
		case "isDeprecated":
			return false, nil
		case "deprecationReason":
			return nil, nil
		}
	case *introspection.EnumValue:
		switch name {
		case "name":
			return obj.Name, nil
		case "description":
			return obj.Description(), nil
		case "isDeprecated":
			return obj.IsDeprecated(), nil
		case "deprecationReason":
			return obj.DeprecationReason(), nil
		}
	case *introspection.Directive:
		switch name {
		case "name":
			return obj.Name, nil
		case "description":
			return obj.Description(), nil
		case "locations":
			return obj.Locations, nil
		case "args":
			return obj.Args, nil
		case "isRepeatable":
			return obj.IsRepeatable, nil
		}
	}
	return nil, fmt.Errorf("unknown field %s.%s", typeName, name)
}

func includeDeprecated(args map[string]any) bool {
	b, _ := args["includeDeprecated"].(bool)
	return b
}
