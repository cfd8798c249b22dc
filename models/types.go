package models

import "time"

// Poll limits
const (
	MinOptions          = 2
	MaxOptions          = 6
	MaxQuestionLength   = 300
	MaxExplanationChars = 1000
	ShareCodeLength     = 8
	DefaultPollTTL      = 72 * time.Hour
)

// Request types

type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type CreatePollRequest struct {
	Question           string   `json:"question"`
	Options            []string `json:"options"`
	CorrectOptionIndex *int     `json:"correctOptionIndex"`
	ExplanationNote    string   `json:"explanationNote"`
	Tags               []string `json:"tags"`
	// ExpiresInHours overrides the default poll lifetime when set.
	ExpiresInHours int `json:"expiresInHours,omitempty"`
}

type SubmitVoteRequest struct {
	SelectedOptionIndex *int `json:"selectedOptionIndex"`
}

// Domain types

type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // Never expose in JSON
	CreatedAt    time.Time `json:"createdAt"`
}

// Summary returns the public view of the user.
func (u *User) Summary() UserSummary {
	return UserSummary{ID: u.ID, Name: u.Name, Email: u.Email}
}

type UserSummary struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
}

// Option is owned by its poll and has no identity of its own.
type Option struct {
	Text      string `json:"text"`
	VoteCount int    `json:"voteCount"`
}

type Poll struct {
	ID                 string    `json:"id"`
	Question           string    `json:"question"`
	Options            []Option  `json:"options"`
	CorrectOptionIndex int       `json:"correctOptionIndex"`
	ExplanationNote    string    `json:"explanationNote"`
	Tags               []string  `json:"tags"`
	OwnerID            string    `json:"ownerId"`
	CreatedAt          time.Time `json:"createdAt"`
	ExpiresAt          time.Time `json:"expiresAt"`
	ShareCode          string    `json:"shareId"`
	IsActive           bool      `json:"isActive"`
	TotalVotes         int       `json:"totalVotes"`
}

// Expired reports whether the poll is past its expiry at now.
func (p *Poll) Expired(now time.Time) bool {
	return now.After(p.ExpiresAt)
}

// Open reports whether the poll accepts votes at now.
func (p *Poll) Open(now time.Time) bool {
	return p.IsActive && !p.Expired(now)
}

type Vote struct {
	ID                  string    `json:"id"`
	UserID              string    `json:"userId"`
	PollID              string    `json:"pollId"`
	SelectedOptionIndex int       `json:"selectedOptionIndex"`
	IsCorrect           bool      `json:"isCorrect"`
	VotedAt             time.Time `json:"votedAt"`
}

// Response types

// PollView is a poll decorated for API consumers.
type PollView struct {
	Poll
	CreatedBy     *UserSummary `json:"createdBy,omitempty"`
	IsExpired     bool         `json:"expired"`
	TimeRemaining string       `json:"timeRemaining"`
	HasVoted      bool         `json:"hasVoted"`
	UserVote      *Vote        `json:"userVote,omitempty"`
}

type PollDetail struct {
	Poll     PollView `json:"poll"`
	UserVote *Vote    `json:"userVote"`
	HasVoted bool     `json:"hasVoted"`
}

type VoteResult struct {
	Vote               Vote `json:"vote"`
	IsCorrect          bool `json:"isCorrect"`
	CorrectOptionIndex int  `json:"correctOptionIndex"`
}

type OptionResult struct {
	Index     int     `json:"index"`
	Text      string  `json:"text"`
	VoteCount int     `json:"voteCount"`
	Percent   float64 `json:"percent"`
	IsCorrect bool    `json:"isCorrect"`
	Rank      int     `json:"rank"` // 1-indexed, ties share a rank
}

type PollResults struct {
	PollID             string         `json:"pollId"`
	Question           string         `json:"question"`
	TotalVotes         int            `json:"totalVotes"`
	CorrectOptionIndex int            `json:"correctOptionIndex"`
	CorrectRate        float64        `json:"correctRate"`
	ExplanationNote    string         `json:"explanationNote"`
	Options            []OptionResult `json:"options"`
	IsExpired          bool           `json:"expired"`
}

type VotedPoll struct {
	Vote
	Poll *PollView `json:"poll"`
}

type VoteHistory struct {
	Votes    []VotedPoll `json:"votes"`
	Total    int         `json:"total"`
	Correct  int         `json:"correct"`
	Accuracy float64     `json:"accuracy"`
}

type PollPage struct {
	Polls []PollView
	Total int
	Page  int
	Limit int
}

// Envelopes

type DataResponse struct {
	Success bool `json:"success"`
	Data    any  `json:"data"`
}

type ListResponse struct {
	Success bool `json:"success"`
	Count   int  `json:"count"`
	Total   int  `json:"total"`
	Page    int  `json:"page,omitempty"`
	Pages   int  `json:"pages,omitempty"`
	Data    any  `json:"data"`
}

type AuthResponse struct {
	Success bool        `json:"success"`
	Token   string      `json:"token"`
	User    UserSummary `json:"user"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

// Error response

type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}
