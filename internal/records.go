package internal

import (
	"context"
	"errors"
)

type submitStore interface {
	TaxonomyStore
	InsertRecord(ctx context.Context, r Record) (Record, error)
}

// Submitter stores records for an account. Laps are not checked against time_ms.
type Submitter struct {
	store submitStore
}

func NewSubmitter(store submitStore) *Submitter {
	return &Submitter{store: store}
}

func (s *Submitter) Submit(ctx context.Context, accountID int64, req NewRecord) (Record, error) {
	if req.TimeMs == nil {
		return Record{}, badRequest("time_ms is required")
	}

	tracks, err := s.store.TracksBySlug(ctx, req.TrackSlug, req.CupSlug)
	if err != nil {
		return Record{}, internalErr(err)
	}
	switch len(tracks) {
	case 0:
		return Record{}, notFound("track not found")
	case 1:
	default:
		return Record{}, badRequest("track slug is ambiguous, set cup_slug")
	}

	cat, err := s.store.CategoryBySlug(ctx, req.CategorySlug)
	if err != nil {
		return Record{}, lookupErr(err, "category not found")
	}

	rec, err := s.store.InsertRecord(ctx, Record{
		AccountID:  accountID,
		TrackID:    tracks[0].ID,
		CategoryID: cat.ID,
		Flap:       req.Flap,
		Lap1:       req.Lap1,
		Lap2:       req.Lap2,
		Lap3:       req.Lap3,
		TimeMs:     *req.TimeMs,
		Proof:      req.Proof,
	})
	if errors.Is(err, ErrNoReferent) {
		return Record{}, notFound("account not found")
	}
	if err != nil {
		return Record{}, internalErr(err)
	}
	return rec, nil
}
