package poll

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pollstream/pollstream-api/internal/domain/user"
)

// Poll is the aggregate: a question with options, like/dislike relations and
// derived counters. Likes, Dislikes and each option's Votes are never
// incremented directly; every mutation recomputes them from the relation and
// fact rows inside the same transaction (see storage/postgres).
type Poll struct {
	ID            uuid.UUID  `json:"id" gorm:"type:uuid;primaryKey;default:uuid_generate_v4()"`
	Title         string     `json:"title" gorm:"size:255;not null"`
	Description   string     `json:"description" gorm:"type:text"`
	Likes         int        `json:"likes" gorm:"not null;default:0"`
	Dislikes      int        `json:"dislikes" gorm:"not null;default:0"`
	PollExpiresAt *time.Time `json:"poll_expires_at"`
	CreatedBy     uuid.UUID  `json:"created_by" gorm:"type:uuid"`
	CreatedAt     time.Time  `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt     time.Time  `json:"updated_at" gorm:"autoUpdateTime"`

	Options    []PollOption `json:"options" gorm:"foreignKey:PollID;constraint:OnDelete:CASCADE"`
	Creator    *user.User   `json:"creator,omitempty" gorm:"foreignKey:CreatedBy"`
	LikedBy    []user.User  `json:"liked_by" gorm:"many2many:poll_likes"`
	DislikedBy []user.User  `json:"disliked_by" gorm:"many2many:poll_dislikes"`

	// MyVoteOptionID is filled per request for the authenticated caller;
	// it is not a column.
	MyVoteOptionID *uuid.UUID `json:"my_vote_option_id,omitempty" gorm:"-"`
}

// PollOption is one answer choice. Votes mirrors the number of fact rows
// referencing this option.
type PollOption struct {
	ID     uuid.UUID `json:"id" gorm:"type:uuid;primaryKey;default:uuid_generate_v4()"`
	Text   string    `json:"text" gorm:"size:255;not null"`
	Votes  int       `json:"votes" gorm:"not null;default:0"`
	PollID uuid.UUID `json:"poll_id" gorm:"type:uuid;not null;index"`
}

// TableName overrides the table name
func (Poll) TableName() string {
	return "polls"
}

// TableName overrides the table name
func (PollOption) TableName() string {
	return "poll_options"
}

// BeforeCreate sets a UUID before creating the record
func (p *Poll) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// BeforeCreate sets a UUID before creating the record
func (o *PollOption) BeforeCreate(tx *gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}

// NewPoll creates a poll with zeroed counters and the given options.
func NewPoll(title, description string, createdBy uuid.UUID, expiresAt *time.Time, optionTexts []string) *Poll {
	p := &Poll{
		ID:            uuid.New(),
		Title:         title,
		Description:   description,
		PollExpiresAt: expiresAt,
		CreatedBy:     createdBy,
	}
	for _, text := range optionTexts {
		p.Options = append(p.Options, PollOption{
			ID:     uuid.New(),
			Text:   text,
			PollID: p.ID,
		})
	}
	return p
}

// OptionByID returns the option with the given id, or nil.
func (p *Poll) OptionByID(optionID uuid.UUID) *PollOption {
	for i := range p.Options {
		if p.Options[i].ID == optionID {
			return &p.Options[i]
		}
	}
	return nil
}
