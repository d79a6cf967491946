// Package entity defines the persisted records exposed through the GraphQL API.
package entity

// User owns at most one profile, any number of posts, and subscription
// edges in both directions.
type User struct {
	ID      string  `json:"id" gorm:"primaryKey;size:36"`
	Name    string  `json:"name" gorm:"not null"`
	Balance float64 `json:"balance" gorm:"not null"`

	Profile          *Profile                `json:"profile,omitempty" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	Posts            []*Post                 `json:"posts,omitempty" gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE"`
	UserSubscribedTo []*SubscribersOnAuthors `json:"userSubscribedTo,omitempty" gorm:"foreignKey:SubscriberID;constraint:OnDelete:CASCADE"`
	SubscribedToUser []*SubscribersOnAuthors `json:"subscribedToUser,omitempty" gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE"`
}

// Profile belongs to exactly one user and references one member type.
type Profile struct {
	ID           string `json:"id" gorm:"primaryKey;size:36"`
	IsMale       bool   `json:"isMale" gorm:"not null"`
	YearOfBirth  int    `json:"yearOfBirth" gorm:"not null"`
	UserID       string `json:"userId" gorm:"size:36;not null;uniqueIndex"`
	MemberTypeID string `json:"memberTypeId" gorm:"size:16;not null;index"`

	User       *User       `json:"user,omitempty" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	MemberType *MemberType `json:"memberType,omitempty" gorm:"foreignKey:MemberTypeID"`
}

// Post is written by exactly one user.
type Post struct {
	ID       string `json:"id" gorm:"primaryKey;size:36"`
	Title    string `json:"title" gorm:"not null"`
	Content  string `json:"content" gorm:"type:text;not null"`
	AuthorID string `json:"authorId" gorm:"size:36;not null;index"`

	Author *User `json:"author,omitempty" gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE"`
}

// MemberType is one of the fixed membership tiers.
type MemberType struct {
	ID                 string  `json:"id" gorm:"primaryKey;size:16"`
	Discount           float64 `json:"discount" gorm:"not null"`
	PostsLimitPerMonth int     `json:"postsLimitPerMonth" gorm:"not null"`

	Profiles []*Profile `json:"profiles,omitempty" gorm:"foreignKey:MemberTypeID"`
}

// SubscribersOnAuthors is the "subscriber follows author" edge.
type SubscribersOnAuthors struct {
	SubscriberID string `json:"subscriberId" gorm:"primaryKey;size:36"`
	AuthorID     string `json:"authorId" gorm:"primaryKey;size:36;index"`

	Subscriber *User `json:"subscriber,omitempty" gorm:"foreignKey:SubscriberID;constraint:OnDelete:CASCADE"`
	Author     *User `json:"author,omitempty" gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE"`
}

func (SubscribersOnAuthors) TableName() string { return "subscribers_on_authors" }

// Seeded member types.
const (
	MemberTypeBasic    = "basic"
	MemberTypeBusiness = "business"
)

// DefaultMemberTypes returns the tiers every database starts with.
func DefaultMemberTypes() []*MemberType {
	return []*MemberType{
		{ID: MemberTypeBasic, Discount: 2.3, PostsLimitPerMonth: 20},
		{ID: MemberTypeBusiness, Discount: 7.7, PostsLimitPerMonth: 100},
	}
}
