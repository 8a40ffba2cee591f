package internal

import "time"

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

type Account struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	Role         Role      `json:"role"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

type Category struct {
	ID   int64  `json:"id"`
	Slug string `json:"slug"`
	Name string `json:"name"`
}

type Cup struct {
	ID   int64  `json:"id"`
	Slug string `json:"slug"`
	Name string `json:"name"`
}

type Track struct {
	ID    int64  `json:"id"`
	CupID int64  `json:"cup_id"`
	Slug  string `json:"slug"`
	Name  string `json:"name"`
}

type Record struct {
	ID          int64     `json:"id"`
	AccountID   int64     `json:"account_id"`
	TrackID     int64     `json:"track_id"`
	CategoryID  int64     `json:"category_id"`
	Flap        bool      `json:"flap"`
	Lap1        *int64    `json:"lap1"`
	Lap2        *int64    `json:"lap2"`
	Lap3        *int64    `json:"lap3"`
	TimeMs      int64     `json:"time_ms"`
	Proof       *string   `json:"proof"`
	SubmittedAt time.Time `json:"submitted_at"`
}

// TrackLeaderboard is one track's records ranked fastest first.
type TrackLeaderboard struct {
	Track   Track    `json:"track"`
	Records []Record `json:"records"`
}

// Identity is the authenticated caller attached to a request.
type Identity struct {
	ID   int64
	Role Role
}

type NewRecord struct {
	TrackSlug    string  `json:"track_slug" binding:"required"`
	CategorySlug string  `json:"category_slug" binding:"required"`
	CupSlug      string  `json:"cup_slug"`
	Flap         bool    `json:"flap"`
	Lap1         *int64  `json:"lap1"`
	Lap2         *int64  `json:"lap2"`
	Lap3         *int64  `json:"lap3"`
	TimeMs       *int64  `json:"time_ms" binding:"required"`
	Proof        *string `json:"proof"`
}

// AccountPatch holds optional account updates. Nil fields are left as they are.
type AccountPatch struct {
	Username     *string
	PasswordHash *string
	Role         *Role
}
