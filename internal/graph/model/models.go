package model

import (
	"fmt"
	"io"
	"strconv"
)

type CreateUserInput struct {
	Name    string  `json:"name"`
	Balance float64 `json:"balance"`
}

type ChangeUserInput struct {
	Name    *string  `json:"name,omitempty"`
	Balance *float64 `json:"balance,omitempty"`
}

type CreateProfileInput struct {
	UserID       string       `json:"userId"`
	IsMale       bool         `json:"isMale"`
	YearOfBirth  int          `json:"yearOfBirth"`
	MemberTypeID MemberTypeID `json:"memberTypeId"`
}

type ChangeProfileInput struct {
	IsMale       *bool         `json:"isMale,omitempty"`
	YearOfBirth  *int          `json:"yearOfBirth,omitempty"`
	MemberTypeID *MemberTypeID `json:"memberTypeId,omitempty"`
}

type CreatePostInput struct {
	AuthorID string `json:"authorId"`
	Title    string `json:"title"`
	Content  string `json:"content"`
}

type ChangePostInput struct {
	Title   *string `json:"title,omitempty"`
	Content *string `json:"content,omitempty"`
}

// Fields returns the columns to update, skipping fields left unset.
func (in ChangeUserInput) Fields() map[string]any {
	fields := map[string]any{}
	if in.Name != nil {
		fields["name"] = *in.Name
	}
	if in.Balance != nil {
		fields["balance"] = *in.Balance
	}
	return fields
}

// Fields returns the columns to update, skipping fields left unset.
func (in ChangeProfileInput) Fields() map[string]any {
	fields := map[string]any{}
	if in.IsMale != nil {
		fields["is_male"] = *in.IsMale
	}
	if in.YearOfBirth != nil {
		fields["year_of_birth"] = *in.YearOfBirth
	}
	if in.MemberTypeID != nil {
		fields["member_type_id"] = in.MemberTypeID.String()
	}
	return fields
}

// Fields returns the columns to update, skipping fields left unset.
func (in ChangePostInput) Fields() map[string]any {
	fields := map[string]any{}
	if in.Title != nil {
		fields["title"] = *in.Title
	}
	if in.Content != nil {
		fields["content"] = *in.Content
	}
	return fields
}

type MemberTypeID string

const (
	MemberTypeIDBasic    MemberTypeID = "basic"
	MemberTypeIDBusiness MemberTypeID = "business"
)

var AllMemberTypeID = []MemberTypeID{
	MemberTypeIDBasic,
	MemberTypeIDBusiness,
}

func (e MemberTypeID) IsValid() bool {
	switch e {
	case MemberTypeIDBasic, MemberTypeIDBusiness:
		return true
	}
	return false
}

func (e MemberTypeID) String() string {
	return string(e)
}

func (e *MemberTypeID) UnmarshalGQL(v any) error {
	str, ok := v.(string)
	if !ok {
		return fmt.Errorf("enums must be strings")
	}

	*e = MemberTypeID(str)
	if !e.IsValid() {
		return fmt.Errorf("%s is not a valid MemberTypeId", str)
	}
	return nil
}

func (e MemberTypeID) MarshalGQL(w io.Writer) {
	fmt.Fprint(w, strconv.Quote(e.String()))
}
