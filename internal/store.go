package internal

import (
	"context"
	"errors"
)

var (
	ErrNotFound  = errors.New("row not found")
	ErrDuplicate = errors.New("duplicate key")
	// ErrNoReferent is returned when a foreign key points at a missing row.
	ErrNoReferent = errors.New("referenced row missing")
)

type TaxonomyStore interface {
	CategoryBySlug(ctx context.Context, slug string) (Category, error)
	CupBySlug(ctx context.Context, slug string) (Cup, error)
	TracksByCup(ctx context.Context, cupID int64) ([]Track, error)
	// TracksBySlug returns at most two matches; cupSlug narrows the search when set.
	TracksBySlug(ctx context.Context, slug, cupSlug string) ([]Track, error)
}

type RecordStore interface {
	RecordsForTrack(ctx context.Context, trackID, categoryID int64, flap bool) ([]Record, error)
	InsertRecord(ctx context.Context, r Record) (Record, error)
}

type AccountStore interface {
	CreateAccount(ctx context.Context, username, passwordHash string, role Role) (Account, error)
	AccountByID(ctx context.Context, id int64) (Account, error)
	AccountByUsername(ctx context.Context, username string) (Account, error)
	ListAccounts(ctx context.Context) ([]Account, error)
	UpdateAccount(ctx context.Context, id int64, p AccountPatch) (Account, error)
	DeleteAccount(ctx context.Context, id int64) error
}

type Store interface {
	TaxonomyStore
	RecordStore
	AccountStore
	Ping(ctx context.Context) error
}
