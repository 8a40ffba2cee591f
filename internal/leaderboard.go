package internal

import (
	"context"
	"errors"

	"golang.org/x/sync/errgroup"
)

const (
	RecordTypeFlap  = "flap"
	RecordTypeThree = "3lap"
)

// ParseRecordType maps a route selector onto the record flap flag.
func ParseRecordType(s string) (bool, error) {
	switch s {
	case RecordTypeFlap:
		return true, nil
	case RecordTypeThree:
		return false, nil
	default:
		return false, badRequest("invalid record type")
	}
}

type leaderboardStore interface {
	TaxonomyStore
	RecordsForTrack(ctx context.Context, trackID, categoryID int64, flap bool) ([]Record, error)
}

type Aggregator struct {
	store leaderboardStore
	// parallel bounds concurrent per-track queries.
	parallel int
}

func NewAggregator(store leaderboardStore, parallel int) *Aggregator {
	if parallel < 1 {
		parallel = 1
	}
	return &Aggregator{store: store, parallel: parallel}
}

// Cup returns one entry per track of the cup, in track order, each ranked
// by time_ms ascending.
func (a *Aggregator) Cup(ctx context.Context, recordType, categorySlug, cupSlug string) ([]TrackLeaderboard, error) {
	flap, err := ParseRecordType(recordType)
	if err != nil {
		return nil, err
	}

	cat, err := a.store.CategoryBySlug(ctx, categorySlug)
	if err != nil {
		return nil, lookupErr(err, "category not found")
	}
	cup, err := a.store.CupBySlug(ctx, cupSlug)
	if err != nil {
		return nil, lookupErr(err, "cup not found")
	}

	tracks, err := a.store.TracksByCup(ctx, cup.ID)
	if err != nil {
		return nil, internalErr(err)
	}

	out := make([]TrackLeaderboard, len(tracks))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.parallel)
	for i, t := range tracks {
		i, t := i, t
		g.Go(func() error {
			recs, err := a.store.RecordsForTrack(gctx, t.ID, cat.ID, flap)
			if err != nil {
				return err
			}
			if recs == nil {
				recs = []Record{}
			}
			out[i] = TrackLeaderboard{Track: t, Records: recs}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, internalErr(err)
	}
	return out, nil
}

func lookupErr(err error, msg string) error {
	if errors.Is(err, ErrNotFound) {
		return notFound(msg)
	}
	return internalErr(err)
}
