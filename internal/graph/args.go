package graph

import (
	"fmt"

	"github.com/99designs/gqlgen/graphql"
	"github.com/google/uuid"

	"github.com/blogql/blogql/internal/graph/model"
	"github.com/blogql/blogql/internal/validate"
)

// Argument decoding. Values arrive either as parsed literals (int64,
// float64, string, bool, map[string]any) or as request variables, whose
// numbers the entry routes turn into int64 or float64.

func uuidArg(args map[string]any, name string) (string, error) {
	s, err := graphql.UnmarshalString(args[name])
	if err != nil {
		return "", fmt.Errorf("%s: %w", name, err)
	}
	return parseUUID(s)
}

func parseUUID(s string) (string, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return "", validate.InvalidArgument("%q is not a valid UUID", s)
	}
	return id.String(), nil
}

func memberTypeIDArg(v any) (model.MemberTypeID, error) {
	var id model.MemberTypeID
	if err := id.UnmarshalGQL(v); err != nil {
		return "", validate.InvalidArgument("%s", err.Error())
	}
	return id, nil
}

func intArg(v any) (int, error) {
	f, err := graphql.UnmarshalFloat(v)
	if err != nil {
		return 0, validate.InvalidArgument("Int cannot represent non-integer value: %v", v)
	}
	return validate.Integer(f)
}

func inputArg(args map[string]any, name string) (map[string]any, error) {
	in, ok := args[name].(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%s: expected an input object, got %T", name, args[name])
	}
	return in, nil
}

func unmarshalCreateUserInput(in map[string]any) (model.CreateUserInput, error) {
	var dto model.CreateUserInput
	var err error
	if dto.Name, err = graphql.UnmarshalString(in["name"]); err != nil {
		return dto, fmt.Errorf("name: %w", err)
	}
	if dto.Balance, err = graphql.UnmarshalFloat(in["balance"]); err != nil {
		return dto, fmt.Errorf("balance: %w", err)
	}
	return dto, nil
}

func unmarshalChangeUserInput(in map[string]any) (model.ChangeUserInput, error) {
	var dto model.ChangeUserInput
	if v, ok := in["name"]; ok && v != nil {
		s, err := graphql.UnmarshalString(v)
		if err != nil {
			return dto, fmt.Errorf("name: %w", err)
		}
		dto.Name = &s
	}
	if v, ok := in["balance"]; ok && v != nil {
		f, err := graphql.UnmarshalFloat(v)
		if err != nil {
			return dto, fmt.Errorf("balance: %w", err)
		}
		dto.Balance = &f
	}
	return dto, nil
}

func unmarshalCreateProfileInput(in map[string]any) (model.CreateProfileInput, error) {
	var dto model.CreateProfileInput
	var err error
	if dto.UserID, err = uuidArg(in, "userId"); err != nil {
		return dto, err
	}
	if dto.IsMale, err = graphql.UnmarshalBoolean(in["isMale"]); err != nil {
		return dto, fmt.Errorf("isMale: %w", err)
	}
	if dto.YearOfBirth, err = intArg(in["yearOfBirth"]); err != nil {
		return dto, err
	}
	if dto.MemberTypeID, err = memberTypeIDArg(in["memberTypeId"]); err != nil {
		return dto, err
	}
	return dto, nil
}

func unmarshalChangeProfileInput(in map[string]any) (model.ChangeProfileInput, error) {
	var dto model.ChangeProfileInput
	if v, ok := in["isMale"]; ok && v != nil {
		b, err := graphql.UnmarshalBoolean(v)
		if err != nil {
			return dto, fmt.Errorf("isMale: %w", err)
		}
		dto.IsMale = &b
	}
	if v, ok := in["yearOfBirth"]; ok && v != nil {
		year, err := intArg(v)
		if err != nil {
			return dto, err
		}
		dto.YearOfBirth = &year
	}
	if v, ok := in["memberTypeId"]; ok && v != nil {
		id, err := memberTypeIDArg(v)
		if err != nil {
			return dto, err
		}
		dto.MemberTypeID = &id
	}
	return dto, nil
}

func unmarshalCreatePostInput(in map[string]any) (model.CreatePostInput, error) {
	var dto model.CreatePostInput
	var err error
	if dto.AuthorID, err = uuidArg(in, "authorId"); err != nil {
		return dto, err
	}
	if dto.Title, err = graphql.UnmarshalString(in["title"]); err != nil {
		return dto, fmt.Errorf("title: %w", err)
	}
	if dto.Content, err = graphql.UnmarshalString(in["content"]); err != nil {
		return dto, fmt.Errorf("content: %w", err)
	}
	return dto, nil
}

func unmarshalChangePostInput(in map[string]any) (model.ChangePostInput, error) {
	var dto model.ChangePostInput
	if v, ok := in["title"]; ok && v != nil {
		s, err := graphql.UnmarshalString(v)
		if err != nil {
			return dto, fmt.Errorf("title: %w", err)
		}
		dto.Title = &s
	}
	if v, ok := in["content"]; ok && v != nil {
		s, err := graphql.UnmarshalString(v)
		if err != nil {
			return dto, fmt.Errorf("content: %w", err)
		}
		dto.Content = &s
	}
	return dto, nil
}
