package vote

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Vote is the fact row recording one user's current choice for one poll.
// The (user_id, poll_id) pair is unique: a revote reassigns OptionID in
// place rather than inserting a second row.
type Vote struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primaryKey;default:uuid_generate_v4()"`
	UserID    uuid.UUID `json:"user_id" gorm:"type:uuid;not null;index;uniqueIndex:uq_poll_vote_user_per_poll"`
	PollID    uuid.UUID `json:"poll_id" gorm:"type:uuid;not null;index;uniqueIndex:uq_poll_vote_user_per_poll"`
	OptionID  uuid.UUID `json:"option_id" gorm:"type:uuid;not null;index"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}

// TableName overrides the table name
func (Vote) TableName() string {
	return "poll_votes"
}

// BeforeCreate sets a UUID before creating the record
func (v *Vote) BeforeCreate(tx *gorm.DB) error {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	return nil
}

// NewVote creates a fact row for a first-time cast.
func NewVote(userID, pollID, optionID uuid.UUID) *Vote {
	return &Vote{
		ID:       uuid.New(),
		UserID:   userID,
		PollID:   pollID,
		OptionID: optionID,
	}
}
