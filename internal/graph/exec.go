package graph

import (
	"bytes"
	"context"
	_ "embed"
	"errors"
	"fmt"
	"reflect"

	"github.com/99designs/gqlgen/graphql"
	"github.com/99designs/gqlgen/graphql/introspection"
	"github.com/vektah/gqlparser/v2"
	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/gqlerror"

	"github.com/blogql/blogql/internal/entity"
	"github.com/blogql/blogql/internal/graph/model"
)

//go:embed schema.graphqls
var schemaSource string

var parsedSchema = gqlparser.MustLoadSchema(&ast.Source{Name: "schema.graphqls", Input: schemaSource})

// Config configures NewExecutableSchema.
type Config struct {
	Resolvers ResolverRoot
}

type ResolverRoot interface {
	Mutation() MutationResolver
	Query() QueryResolver
	User() UserResolver
	Profile() ProfileResolver
	Post() PostResolver
	MemberType() MemberTypeResolver
	SubscribersOnAuthors() SubscribersOnAuthorsResolver
}

type MutationResolver interface {
	CreateUser(ctx context.Context, dto model.CreateUserInput) (*entity.User, error)
	CreateProfile(ctx context.Context, dto model.CreateProfileInput) (*entity.Profile, error)
	CreatePost(ctx context.Context, dto model.CreatePostInput) (*entity.Post, error)
	ChangeUser(ctx context.Context, id string, dto model.ChangeUserInput) (*entity.User, error)
	ChangeProfile(ctx context.Context, id string, dto model.ChangeProfileInput) (*entity.Profile, error)
	ChangePost(ctx context.Context, id string, dto model.ChangePostInput) (*entity.Post, error)
	DeleteUser(ctx context.Context, id string) (bool, error)
	DeleteProfile(ctx context.Context, id string) (bool, error)
	DeletePost(ctx context.Context, id string) (bool, error)
	SubscribeTo(ctx context.Context, userID string, authorID string) ([]*entity.User, error)
	UnsubscribeFrom(ctx context.Context, userID string, authorID string) (bool, error)
}

type QueryResolver interface {
	User(ctx context.Context, id string) (*entity.User, error)
	Users(ctx context.Context) ([]*entity.User, error)
	Post(ctx context.Context, id string) (*entity.Post, error)
	Posts(ctx context.Context) ([]*entity.Post, error)
	Profile(ctx context.Context, id string) (*entity.Profile, error)
	Profiles(ctx context.Context) ([]*entity.Profile, error)
	MemberType(ctx context.Context, id model.MemberTypeID) (*entity.MemberType, error)
	MemberTypes(ctx context.Context) ([]*entity.MemberType, error)
}

type UserResolver interface {
	Profile(ctx context.Context, obj *entity.User) (*entity.Profile, error)
	Posts(ctx context.Context, obj *entity.User) ([]*entity.Post, error)
	UserSubscribedTo(ctx context.Context, obj *entity.User) ([]*entity.User, error)
	SubscribedToUser(ctx context.Context, obj *entity.User) ([]*entity.User, error)
}

type ProfileResolver interface {
	User(ctx context.Context, obj *entity.Profile) (*entity.User, error)
	MemberType(ctx context.Context, obj *entity.Profile) (*entity.MemberType, error)
}

type PostResolver interface {
	Author(ctx context.Context, obj *entity.Post) (*entity.User, error)
}

type MemberTypeResolver interface {
	Profiles(ctx context.Context, obj *entity.MemberType) ([]*entity.Profile, error)
}

type SubscribersOnAuthorsResolver interface {
	Subscriber(ctx context.Context, obj *entity.SubscribersOnAuthors) (*entity.User, error)
	Author(ctx context.Context, obj *entity.SubscribersOnAuthors) (*entity.User, error)
}

// NewExecutableSchema creates an ExecutableSchema from the ResolverRoot interface.
func NewExecutableSchema(cfg Config) graphql.ExecutableSchema {
	return &executableSchema{
		schema:    parsedSchema,
		resolvers: cfg.Resolvers,
	}
}

type executableSchema struct {
	schema    *ast.Schema
	resolvers ResolverRoot
}

func (e *executableSchema) Schema() *ast.Schema {
	return e.schema
}

// Complexity charges ten times the child cost for list fields and leaves
// every other field at gqlgen's default of childComplexity+1.
func (e *executableSchema) Complexity(ctx context.Context, typeName, field string, childComplexity int, args map[string]any) (int, bool) {
	def := e.schema.Types[typeName]
	if def == nil {
		return 0, false
	}
	fd := def.Fields.ForName(field)
	if fd == nil || fd.Type.Elem == nil {
		return 0, false
	}
	return (childComplexity + 1) * 10, true
}

func (e *executableSchema) Exec(ctx context.Context) graphql.ResponseHandler {
	opCtx := graphql.GetOperationContext(ctx)
	ec := &executionContext{OperationContext: opCtx, es: e}

	var root *ast.Definition
	switch opCtx.Operation.Operation {
	case ast.Query:
		root = e.schema.Query
	case ast.Mutation:
		root = e.schema.Mutation
	default:
		return graphql.OneShot(graphql.ErrorResponse(ctx, "unsupported GraphQL operation"))
	}

	first := true
	return func(ctx context.Context) *graphql.Response {
		if !first {
			return nil
		}
		first = false

		data, ok := ec.completeObject(ctx, root, opCtx.Operation.SelectionSet, nil, nil)
		if !ok {
			data = graphql.Null
		}
		var buf bytes.Buffer
		data.MarshalGQL(&buf)

		return &graphql.Response{
			Data:   buf.Bytes(),
			Errors: ec.errors,
		}
	}
}

type executionContext struct {
	*graphql.OperationContext
	es     *executableSchema
	errors gqlerror.List
}

// completeObject resolves every selected field of obj. It reports false when
// a non-null field came back null, in which case the object itself is null.
// Fields run one after another, which also gives mutations their serial order.
func (ec *executionContext) completeObject(ctx context.Context, def *ast.Definition, sel ast.SelectionSet, path ast.Path, obj any) (graphql.Marshaler, bool) {
	fields := graphql.CollectFields(ec.OperationContext, sel, []string{def.Name})
	out := graphql.NewFieldSet(fields)

	for i, field := range fields {
		if field.Name == "__typename" {
			out.Values[i] = graphql.MarshalString(def.Name)
			continue
		}

		fieldPath := appendPath(path, ast.PathName(field.Alias))
		res, err := ec.resolveField(ctx, def.Name, field, obj)
		if err != nil {
			ec.addError(field, fieldPath, err)
			if field.Definition.Type.NonNull {
				return nil, false
			}
			out.Values[i] = graphql.Null
			continue
		}

		v, ok := ec.completeValue(ctx, field.Definition.Type, field, fieldPath, res)
		if !ok {
			return nil, false
		}
		out.Values[i] = v
	}
	return out, true
}

func (ec *executionContext) completeValue(ctx context.Context, typ *ast.Type, field graphql.CollectedField, path ast.Path, v any) (graphql.Marshaler, bool) {
	if isNull(v) {
		if typ.NonNull {
			ec.addError(field, path, errors.New("must not be null"))
			return nil, false
		}
		return graphql.Null, true
	}

	if typ.Elem != nil {
		rv := reflect.ValueOf(v)
		if rv.Kind() != reflect.Slice {
			ec.addError(field, path, fmt.Errorf("expected a list, got %T", v))
			return ec.null(typ)
		}
		list := make(graphql.Array, rv.Len())
		for i := range list {
			elem := rv.Index(i)
			if elem.Kind() == reflect.Struct {
				elem = elem.Addr()
			}
			m, ok := ec.completeValue(ctx, typ.Elem, field, appendPath(path, ast.PathIndex(i)), elem.Interface())
			if !ok {
				return ec.null(typ)
			}
			list[i] = m
		}
		return list, true
	}

	def := ec.es.schema.Types[typ.NamedType]
	if def == nil {
		ec.addError(field, path, fmt.Errorf("unknown type %s", typ.NamedType))
		return ec.null(typ)
	}

	switch def.Kind {
	case ast.Object:
		m, ok := ec.completeObject(ctx, def, field.Selections, path, v)
		if !ok {
			return ec.null(typ)
		}
		return m, true
	case ast.Scalar, ast.Enum:
		m, err := marshalLeaf(v)
		if err != nil {
			ec.addError(field, path, err)
			return ec.null(typ)
		}
		return m, true
	default:
		ec.addError(field, path, fmt.Errorf("cannot complete %s value of kind %s", def.Name, def.Kind))
		return ec.null(typ)
	}
}

// null is the value of a field whose completion failed. A non-null field
// cannot hold it, so the failure moves up to the parent.
func (ec *executionContext) null(typ *ast.Type) (graphql.Marshaler, bool) {
	if typ.NonNull {
		return nil, false
	}
	return graphql.Null, true
}

func (ec *executionContext) addError(field graphql.CollectedField, path ast.Path, err error) {
	gqlErr := &gqlerror.Error{
		Err:     err,
		Message: err.Error(),
		Path:    path,
	}
	var inner *gqlerror.Error
	if errors.As(err, &inner) {
		gqlErr.Message = inner.Message
		gqlErr.Extensions = inner.Extensions
	}
	if field.Position != nil {
		gqlErr.Locations = []gqlerror.Location{{
			Line:   field.Position.Line,
			Column: field.Position.Column,
		}}
	}
	ec.errors = append(ec.errors, gqlErr)
}

func (ec *executionContext) recovered(ctx context.Context, r any) error {
	if ec.RecoverFunc == nil {
		return fmt.Errorf("internal system error: %v", r)
	}
	return ec.RecoverFunc(ctx, r)
}

func (ec *executionContext) resolveField(ctx context.Context, typeName string, field graphql.CollectedField, obj any) (res any, err error) {
	defer func() {
		if r := recover(); r != nil {
			res, err = nil, ec.recovered(ctx, r)
		}
	}()

	args := field.ArgumentMap(ec.Variables)
	switch typeName {
	case "Query":
		return ec.resolveQuery(ctx, field.Name, args)
	case "Mutation":
		return ec.resolveMutation(ctx, field.Name, args)
	case "User":
		return ec.resolveUser(ctx, field.Name, obj.(*entity.User))
	case "Profile":
		return ec.resolveProfile(ctx, field.Name, obj.(*entity.Profile))
	case "Post":
		return ec.resolvePost(ctx, field.Name, obj.(*entity.Post))
	case "MemberType":
		return ec.resolveMemberType(ctx, field.Name, obj.(*entity.MemberType))
	case "SubscribersOnAuthors":
		return ec.resolveSubscribersOnAuthors(ctx, field.Name, obj.(*entity.SubscribersOnAuthors))
	}
	return resolveIntrospection(typeName, field.Name, args, obj)
}

func (ec *executionContext) resolveQuery(ctx context.Context, name string, args map[string]any) (any, error) {
	r := ec.es.resolvers.Query()
	switch name {
	case "user", "post", "profile":
		id, err := uuidArg(args, "id")
		if err != nil {
			return nil, err
		}
		switch name {
		case "user":
			return r.User(ctx, id)
		case "post":
			return r.Post(ctx, id)
		default:
			return r.Profile(ctx, id)
		}
	case "users":
		return r.Users(ctx)
	case "posts":
		return r.Posts(ctx)
	case "profiles":
		return r.Profiles(ctx)
	case "memberType":
		id, err := memberTypeIDArg(args["id"])
		if err != nil {
			return nil, err
		}
		return r.MemberType(ctx, id)
	case "memberTypes":
		return r.MemberTypes(ctx)
	case "__schema":
		if ec.DisableIntrospection {
			return nil, errors.New("introspection disabled")
		}
		return introspection.WrapSchema(ec.es.schema), nil
	case "__type":
		if ec.DisableIntrospection {
			return nil, errors.New("introspection disabled")
		}
		typeName, _ := args["name"].(string)
		def := ec.es.schema.Types[typeName]
		if def == nil {
			return nil, nil
		}
		return introspection.WrapTypeFromDef(ec.es.schema, def), nil
	}
	return nil, fmt.Errorf("unknown field Query.%s", name)
}

func (ec *executionContext) resolveMutation(ctx context.Context, name string, args map[string]any) (any, error) {
	r := ec.es.resolvers.Mutation()
	switch name {
	case "createUser":
		in, err := inputArg(args, "dto")
		if err != nil {
			return nil, err
		}
		dto, err := unmarshalCreateUserInput(in)
		if err != nil {
			return nil, err
		}
		return r.CreateUser(ctx, dto)
	case "createProfile":
		in, err := inputArg(args, "dto")
		if err != nil {
			return nil, err
		}
		dto, err := unmarshalCreateProfileInput(in)
		if err != nil {
			return nil, err
		}
		return r.CreateProfile(ctx, dto)
	case "createPost":
		in, err := inputArg(args, "dto")
		if err != nil {
			return nil, err
		}
		dto, err := unmarshalCreatePostInput(in)
		if err != nil {
			return nil, err
		}
		return r.CreatePost(ctx, dto)
	case "changeUser":
		id, in, err := idAndInput(args)
		if err != nil {
			return nil, err
		}
		dto, err := unmarshalChangeUserInput(in)
		if err != nil {
			return nil, err
		}
		return r.ChangeUser(ctx, id, dto)
	case "changeProfile":
		id, in, err := idAndInput(args)
		if err != nil {
			return nil, err
		}
		dto, err := unmarshalChangeProfileInput(in)
		if err != nil {
			return nil, err
		}
		return r.ChangeProfile(ctx, id, dto)
	case "changePost":
		id, in, err := idAndInput(args)
		if err != nil {
			return nil, err
		}
		dto, err := unmarshalChangePostInput(in)
		if err != nil {
			return nil, err
		}
		return r.ChangePost(ctx, id, dto)
	case "deleteUser", "deleteProfile", "deletePost":
		id, err := uuidArg(args, "id")
		if err != nil {
			return nil, err
		}
		switch name {
		case "deleteUser":
			return r.DeleteUser(ctx, id)
		case "deleteProfile":
			return r.DeleteProfile(ctx, id)
		default:
			return r.DeletePost(ctx, id)
		}
	case "subscribeTo", "unsubscribeFrom":
		userID, err := uuidArg(args, "userId")
		if err != nil {
			return nil, err
		}
		authorID, err := uuidArg(args, "authorId")
		if err != nil {
			return nil, err
		}
		if name == "subscribeTo" {
			return r.SubscribeTo(ctx, userID, authorID)
		}
		return r.UnsubscribeFrom(ctx, userID, authorID)
	}
	return nil, fmt.Errorf("unknown field Mutation.%s", name)
}

func idAndInput(args map[string]any) (string, map[string]any, error) {
	id, err := uuidArg(args, "id")
	if err != nil {
		return "", nil, err
	}
	in, err := inputArg(args, "dto")
	if err != nil {
		return "", nil, err
	}
	return id, in, nil
}

func (ec *executionContext) resolveUser(ctx context.Context, name string, obj *entity.User) (any, error) {
	r := ec.es.resolvers.User()
	switch name {
	case "id":
		return obj.ID, nil
	case "name":
		return obj.Name, nil
	case "balance":
		return obj.Balance, nil
	case "profile":
		return r.Profile(ctx, obj)
	case "posts":
		return r.Posts(ctx, obj)
	case "userSubscribedTo":
		return r.UserSubscribedTo(ctx, obj)
	case "subscribedToUser":
		return r.SubscribedToUser(ctx, obj)
	}
	return nil, fmt.Errorf("unknown field User.%s", name)
}

func (ec *executionContext) resolveProfile(ctx context.Context, name string, obj *entity.Profile) (any, error) {
	r := ec.es.resolvers.Profile()
	switch name {
	case "id":
		return obj.ID, nil
	case "isMale":
		return obj.IsMale, nil
	case "yearOfBirth":
		return obj.YearOfBirth, nil
	case "userId":
		return obj.UserID, nil
	case "user":
		return r.User(ctx, obj)
	case "memberTypeId":
		return obj.MemberTypeID, nil
	case "memberType":
		return r.MemberType(ctx, obj)
	}
	return nil, fmt.Errorf("unknown field Profile.%s", name)
}

func (ec *executionContext) resolvePost(ctx context.Context, name string, obj *entity.Post) (any, error) {
	switch name {
	case "id":
		return obj.ID, nil
	case "title":
		return obj.Title, nil
	case "content":
		return obj.Content, nil
	case "authorId":
		return obj.AuthorID, nil
	case "author":
		return ec.es.resolvers.Post().Author(ctx, obj)
	}
	return nil, fmt.Errorf("unknown field Post.%s", name)
}

func (ec *executionContext) resolveMemberType(ctx context.Context, name string, obj *entity.MemberType) (any, error) {
	switch name {
	case "id":
		return obj.ID, nil
	case "discount":
		return obj.Discount, nil
	case "postsLimitPerMonth":
		return obj.PostsLimitPerMonth, nil
	case "profiles":
		return ec.es.resolvers.MemberType().Profiles(ctx, obj)
	}
	return nil, fmt.Errorf("unknown field MemberType.%s", name)
}

// resolveSubscribersOnAuthors is unreachable until a field returns the edge
// type; User.userSubscribedTo and User.subscribedToUser return users.
func (ec *executionContext) resolveSubscribersOnAuthors(ctx context.Context, name string, obj *entity.SubscribersOnAuthors) (any, error) {
	r := ec.es.resolvers.SubscribersOnAuthors()
	switch name {
	case "subscriberId":
		return obj.SubscriberID, nil
	case "subscriber":
		return r.Subscriber(ctx, obj)
	case "authorId":
		return obj.AuthorID, nil
	case "author":
		return r.Author(ctx, obj)
	}
	return nil, fmt.Errorf("unknown field SubscribersOnAuthors.%s", name)
}

func marshalLeaf(v any) (graphql.Marshaler, error) {
	switch v := v.(type) {
	case graphql.Marshaler:
		return v, nil
	case string:
		return graphql.MarshalString(v), nil
	case *string:
		return graphql.MarshalString(*v), nil
	case bool:
		return graphql.MarshalBoolean(v), nil
	case *bool:
		return graphql.MarshalBoolean(*v), nil
	case int:
		return graphql.MarshalInt(v), nil
	case int64:
		return graphql.MarshalInt64(v), nil
	case float64:
		return graphql.MarshalFloat(v), nil
	}
	return nil, fmt.Errorf("cannot marshal %T as a leaf value", v)
}

// isNull reports whether v is a GraphQL null. Nil slices are empty lists.
func isNull(v any) bool {
	if v == nil {
		return true
	}
	switch rv := reflect.ValueOf(v); rv.Kind() {
	case reflect.Ptr, reflect.Map, reflect.Interface:
		return rv.IsNil()
	}
	return false
}

func appendPath(path ast.Path, elem ast.PathElement) ast.Path {
	out := make(ast.Path, len(path), len(path)+1)
	copy(out, path)
	return append(out, elem)
}
