package graph

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/blogql/blogql/internal/entity"
	"github.com/blogql/blogql/internal/graph/model"
	"github.com/blogql/blogql/internal/store"
	"github.com/blogql/blogql/internal/validate"
)

// Relations loaded together with each root entity.
var (
	userIncludes       = []string{"Profile", "Posts", "UserSubscribedTo", "SubscribedToUser"}
	postIncludes       = []string{"Author"}
	profileIncludes    = []string{"User", "MemberType"}
	memberTypeIncludes = []string{"Profiles"}
)

// CreateUser is the resolver for the createUser field.
func (r *mutationResolver) CreateUser(ctx context.Context, dto model.CreateUserInput) (*entity.User, error) {
	if err := validate.User(dto.Name, dto.Balance); err != nil {
		return nil, err
	}

	u := &entity.User{
		ID:      uuid.NewString(),
		Name:    dto.Name,
		Balance: dto.Balance,
	}
	if err := r.Store.Users.Create(ctx, u); err != nil {
		return nil, r.fail("create user", err)
	}
	return u, nil
}

// CreateProfile is the resolver for the createProfile field.
func (r *mutationResolver) CreateProfile(ctx context.Context, dto model.CreateProfileInput) (*entity.Profile, error) {
	if err := validate.Profile(dto.YearOfBirth, r.minYearOfBirth()); err != nil {
		return nil, err
	}
	if !dto.MemberTypeID.IsValid() {
		return nil, validate.InvalidArgument("%s is not a valid MemberTypeId", dto.MemberTypeID)
	}
	if err := r.requireUser(ctx, dto.UserID, "create profile"); err != nil {
		return nil, err
	}

	p := &entity.Profile{
		ID:           uuid.NewString(),
		IsMale:       dto.IsMale,
		YearOfBirth:  dto.YearOfBirth,
		UserID:       dto.UserID,
		MemberTypeID: dto.MemberTypeID.String(),
	}
	if err := r.Store.Profiles.Create(ctx, p); err != nil {
		return nil, r.fail("create profile", err)
	}
	return p, nil
}

// CreatePost is the resolver for the createPost field.
func (r *mutationResolver) CreatePost(ctx context.Context, dto model.CreatePostInput) (*entity.Post, error) {
	if err := validate.Post(dto.Title, dto.Content); err != nil {
		return nil, err
	}
	if err := r.requireUser(ctx, dto.AuthorID, "create post"); err != nil {
		return nil, err
	}

	p := &entity.Post{
		ID:       uuid.NewString(),
		Title:    dto.Title,
		Content:  dto.Content,
		AuthorID: dto.AuthorID,
	}
	if err := r.Store.Posts.Create(ctx, p); err != nil {
		return nil, r.fail("create post", err)
	}
	return p, nil
}

// requireUser returns an invalid-argument error if no user has the given id.
func (r *mutationResolver) requireUser(ctx context.Context, id, op string) error {
	_, err := r.Store.Users.FindUnique(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return validate.InvalidArgument("user with id %s does not exist", id)
	}
	if err != nil {
		return r.fail(op, err)
	}
	return nil
}

// ChangeUser is the resolver for the changeUser field.
func (r *mutationResolver) ChangeUser(ctx context.Context, id string, dto model.ChangeUserInput) (*entity.User, error) {
	u, err := r.Store.Users.Update(ctx, id, dto.Fields())
	if err != nil {
		return nil, r.fail("update user", err)
	}
	return u, nil
}

// ChangeProfile is the resolver for the changeProfile field.
func (r *mutationResolver) ChangeProfile(ctx context.Context, id string, dto model.ChangeProfileInput) (*entity.Profile, error) {
	p, err := r.Store.Profiles.Update(ctx, id, dto.Fields())
	if err != nil {
		return nil, r.fail("update profile", err)
	}
	return p, nil
}

// ChangePost is the resolver for the changePost field.
func (r *mutationResolver) ChangePost(ctx context.Context, id string, dto model.ChangePostInput) (*entity.Post, error) {
	p, err := r.Store.Posts.Update(ctx, id, dto.Fields())
	if err != nil {
		return nil, r.fail("update post", err)
	}
	return p, nil
}

// DeleteUser is the resolver for the deleteUser field.
func (r *mutationResolver) DeleteUser(ctx context.Context, id string) (bool, error) {
	return r.deleted("delete user", r.Store.Users.Delete(ctx, id)), nil
}

// DeleteProfile is the resolver for the deleteProfile field.
func (r *mutationResolver) DeleteProfile(ctx context.Context, id string) (bool, error) {
	return r.deleted("delete profile", r.Store.Profiles.Delete(ctx, id)), nil
}

// DeletePost is the resolver for the deletePost field.
func (r *mutationResolver) DeletePost(ctx context.Context, id string) (bool, error) {
	return r.deleted("delete post", r.Store.Posts.Delete(ctx, id)), nil
}

// deleted reports whether a delete succeeded. Failures of any kind,
// including a missing record, become false rather than an error.
func (r *mutationResolver) deleted(op string, err error) bool {
	if err != nil {
		r.logger().Debug("delete failed", zap.String("operation", op), zap.Error(err))
		return false
	}
	return true
}

// SubscribeTo is the resolver for the subscribeTo field.
func (r *mutationResolver) SubscribeTo(ctx context.Context, userID string, authorID string) ([]*entity.User, error) {
	edge := &entity.SubscribersOnAuthors{SubscriberID: userID, AuthorID: authorID}
	if err := r.Store.Subscriptions.Create(ctx, edge); err != nil {
		return nil, r.fail("create subscription", err)
	}

	author, err := r.Store.Users.FindUnique(ctx, authorID)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return nil, r.fail("create subscription", err)
	}
	return []*entity.User{author}, nil
}

// UnsubscribeFrom is the resolver for the unsubscribeFrom field.
func (r *mutationResolver) UnsubscribeFrom(ctx context.Context, userID string, authorID string) (bool, error) {
	_, err := r.Store.Subscriptions.DeleteMany(ctx, store.Where{
		"subscriber_id": userID,
		"author_id":     authorID,
	})
	return r.deleted("delete subscription", err), nil
}

// User is the resolver for the user field.
func (r *queryResolver) User(ctx context.Context, id string) (*entity.User, error) {
	u, err := r.Store.Users.FindUnique(ctx, id, userIncludes...)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, r.fail("fetch user", err)
	}
	return u, nil
}

// Users is the resolver for the users field.
func (r *queryResolver) Users(ctx context.Context) ([]*entity.User, error) {
	users, err := r.Store.Users.FindMany(ctx, nil, userIncludes...)
	if err != nil {
		return nil, r.fail("fetch users", err)
	}
	return users, nil
}

// Post is the resolver for the post field.
func (r *queryResolver) Post(ctx context.Context, id string) (*entity.Post, error) {
	p, err := r.Store.Posts.FindUnique(ctx, id, postIncludes...)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, r.fail("fetch post", err)
	}
	return p, nil
}

// Posts is the resolver for the posts field.
func (r *queryResolver) Posts(ctx context.Context) ([]*entity.Post, error) {
	posts, err := r.Store.Posts.FindMany(ctx, nil, postIncludes...)
	if err != nil {
		return nil, r.fail("fetch posts", err)
	}
	return posts, nil
}

// Profile is the resolver for the profile field.
func (r *queryResolver) Profile(ctx context.Context, id string) (*entity.Profile, error) {
	p, err := r.Store.Profiles.FindUnique(ctx, id, profileIncludes...)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, r.fail("fetch profile", err)
	}
	return p, nil
}

// Profiles is the resolver for the profiles field.
func (r *queryResolver) Profiles(ctx context.Context) ([]*entity.Profile, error) {
	profiles, err := r.Store.Profiles.FindMany(ctx, nil, profileIncludes...)
	if err != nil {
		return nil, r.fail("fetch profiles", err)
	}
	return profiles, nil
}

// MemberType is the resolver for the memberType field.
func (r *queryResolver) MemberType(ctx context.Context, id model.MemberTypeID) (*entity.MemberType, error) {
	mt, err := r.Store.MemberTypes.FindUnique(ctx, id.String(), memberTypeIncludes...)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, r.fail("fetch memberType", err)
	}
	return mt, nil
}

// MemberTypes is the resolver for the memberTypes field.
func (r *queryResolver) MemberTypes(ctx context.Context) ([]*entity.MemberType, error) {
	types, err := r.Store.MemberTypes.FindMany(ctx, nil, memberTypeIncludes...)
	if err != nil {
		return nil, r.fail("fetch memberTypes", err)
	}
	return types, nil
}

// Profile is the resolver for the profile field.
func (r *userResolver) Profile(ctx context.Context, obj *entity.User) (*entity.Profile, error) {
	if obj.Profile != nil {
		return obj.Profile, nil
	}
	profiles, err := r.Store.Profiles.FindMany(ctx, store.Where{"user_id": obj.ID})
	if err != nil {
		return nil, r.fail("fetch profile", err)
	}
	if len(profiles) == 0 {
		return nil, nil
	}
	return profiles[0], nil
}

// Posts is the resolver for the posts field.
func (r *userResolver) Posts(ctx context.Context, obj *entity.User) ([]*entity.Post, error) {
	if obj.Posts != nil {
		return obj.Posts, nil
	}
	posts, err := r.Store.Posts.FindMany(ctx, store.Where{"author_id": obj.ID})
	if err != nil {
		return nil, r.fail("fetch posts", err)
	}
	return posts, nil
}

// UserSubscribedTo is the resolver for the userSubscribedTo field.
// It always re-queries the subscription edges.
func (r *userResolver) UserSubscribedTo(ctx context.Context, obj *entity.User) ([]*entity.User, error) {
	edges, err := r.Store.Subscriptions.FindMany(ctx, store.Where{"subscriber_id": obj.ID}, "Author", "Subscriber")
	if err != nil {
		return nil, r.fail("fetch subscriptions", err)
	}

	authors := make([]*entity.User, 0, len(edges))
	for _, e := range edges {
		if e.Author != nil {
			authors = append(authors, e.Author)
		}
	}
	return authors, nil
}

// SubscribedToUser is the resolver for the subscribedToUser field.
// It always re-queries the subscription edges.
func (r *userResolver) SubscribedToUser(ctx context.Context, obj *entity.User) ([]*entity.User, error) {
	edges, err := r.Store.Subscriptions.FindMany(ctx, store.Where{"author_id": obj.ID}, "Author", "Subscriber")
	if err != nil {
		return nil, r.fail("fetch subscribers", err)
	}

	subscribers := make([]*entity.User, 0, len(edges))
	for _, e := range edges {
		if e.Subscriber != nil {
			subscribers = append(subscribers, e.Subscriber)
		}
	}
	return subscribers, nil
}

// User is the resolver for the user field.
func (r *profileResolver) User(ctx context.Context, obj *entity.Profile) (*entity.User, error) {
	if obj.User != nil {
		return obj.User, nil
	}
	return r.findUser(ctx, obj.UserID)
}

// MemberType is the resolver for the memberType field.
// It always re-queries the member type, ignoring any included value.
func (r *profileResolver) MemberType(ctx context.Context, obj *entity.Profile) (*entity.MemberType, error) {
	mt, err := r.Store.MemberTypes.FindUnique(ctx, obj.MemberTypeID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, r.fail("fetch memberType", err)
	}
	return mt, nil
}

// Author is the resolver for the author field.
func (r *postResolver) Author(ctx context.Context, obj *entity.Post) (*entity.User, error) {
	if obj.Author != nil {
		return obj.Author, nil
	}
	return r.findUser(ctx, obj.AuthorID)
}

// Profiles is the resolver for the profiles field.
func (r *memberTypeResolver) Profiles(ctx context.Context, obj *entity.MemberType) ([]*entity.Profile, error) {
	if obj.Profiles != nil {
		return obj.Profiles, nil
	}
	profiles, err := r.Store.Profiles.FindMany(ctx, store.Where{"member_type_id": obj.ID})
	if err != nil {
		return nil, r.fail("fetch profiles", err)
	}
	return profiles, nil
}

// Subscriber is the resolver for the subscriber field.
func (r *subscribersOnAuthorsResolver) Subscriber(ctx context.Context, obj *entity.SubscribersOnAuthors) (*entity.User, error) {
	if obj.Subscriber != nil {
		return obj.Subscriber, nil
	}
	return r.findUser(ctx, obj.SubscriberID)
}

// Author is the resolver for the author field.
func (r *subscribersOnAuthorsResolver) Author(ctx context.Context, obj *entity.SubscribersOnAuthors) (*entity.User, error) {
	if obj.Author != nil {
		return obj.Author, nil
	}
	return r.findUser(ctx, obj.AuthorID)
}

// findUser loads a related user for a field resolver; a dangling reference
// resolves to nil.
func (r *Resolver) findUser(ctx context.Context, id string) (*entity.User, error) {
	u, err := r.Store.Users.FindUnique(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, r.fail("fetch user", err)
	}
	return u, nil
}

// Mutation returns MutationResolver implementation.
func (r *Resolver) Mutation() MutationResolver { return &mutationResolver{r} }

// Query returns QueryResolver implementation.
func (r *Resolver) Query() QueryResolver { return &queryResolver{r} }

// User returns UserResolver implementation.
func (r *Resolver) User() UserResolver { return &userResolver{r} }

// Profile returns ProfileResolver implementation.
func (r *Resolver) Profile() ProfileResolver { return &profileResolver{r} }

// Post returns PostResolver implementation.
func (r *Resolver) Post() PostResolver { return &postResolver{r} }

// MemberType returns MemberTypeResolver implementation.
func (r *Resolver) MemberType() MemberTypeResolver { return &memberTypeResolver{r} }

// SubscribersOnAuthors returns SubscribersOnAuthorsResolver implementation.
func (r *Resolver) SubscribersOnAuthors() SubscribersOnAuthorsResolver {
	return &subscribersOnAuthorsResolver{r}
}

type mutationResolver struct{ *Resolver }
type queryResolver struct{ *Resolver }
type userResolver struct{ *Resolver }
type profileResolver struct{ *Resolver }
type postResolver struct{ *Resolver }
type memberTypeResolver struct{ *Resolver }
type subscribersOnAuthorsResolver struct{ *Resolver }
