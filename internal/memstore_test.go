package internal

import (
	"context"
	"sort"
	"sync"
	"time"
)

// memStore is an in-memory Store for service and handler tests.
type memStore struct {
	mu sync.Mutex

	categories []Category
	cups       []Cup
	tracks     []Track
	records    []Record
	accounts   []Account
	nextID     int64
	accountSeq int64

	// failRecords makes RecordsForTrack fail for the given track id.
	failRecords map[int64]error
	pingErr     error
	// enforceFK rejects records whose account does not exist.
	enforceFK bool
}

func newMemStore() *memStore {
	return &memStore{nextID: 1000, failRecords: map[int64]error{}}
}

func (m *memStore) id() int64 {
	m.nextID++
	return m.nextID
}

func (m *memStore) addCategory(slug string) Category {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := Category{ID: m.id(), Slug: slug, Name: slug}
	m.categories = append(m.categories, c)
	return c
}

func (m *memStore) addCup(slug string) Cup {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := Cup{ID: m.id(), Slug: slug, Name: slug}
	m.cups = append(m.cups, c)
	return c
}

func (m *memStore) addTrack(cup Cup, slug string) Track {
	m.mu.Lock()
	defer m.mu.Unlock()
	t := Track{ID: m.id(), CupID: cup.ID, Slug: slug, Name: slug}
	m.tracks = append(m.tracks, t)
	return t
}

func (m *memStore) addRecord(accountID int64, t Track, c Category, flap bool, ms int64) Record {
	r, _ := m.InsertRecord(context.Background(), Record{
		AccountID: accountID, TrackID: t.ID, CategoryID: c.ID, Flap: flap, TimeMs: ms,
	})
	return r
}

func (m *memStore) Ping(context.Context) error { return m.pingErr }

func (m *memStore) CategoryBySlug(_ context.Context, slug string) (Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.categories {
		if c.Slug == slug {
			return c, nil
		}
	}
	return Category{}, ErrNotFound
}

func (m *memStore) CupBySlug(_ context.Context, slug string) (Cup, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.cups {
		if c.Slug == slug {
			return c, nil
		}
	}
	return Cup{}, ErrNotFound
}

func (m *memStore) TracksByCup(_ context.Context, cupID int64) ([]Track, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []Track{}
	for _, t := range m.tracks {
		if t.CupID == cupID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (m *memStore) TracksBySlug(_ context.Context, slug, cupSlug string) ([]Track, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var cupID int64
	if cupSlug != "" {
		for _, c := range m.cups {
			if c.Slug == cupSlug {
				cupID = c.ID
			}
		}
		if cupID == 0 {
			return []Track{}, nil
		}
	}
	out := []Track{}
	for _, t := range m.tracks {
		if t.Slug == slug && (cupID == 0 || t.CupID == cupID) {
			out = append(out, t)
		}
		if len(out) == 2 {
			break
		}
	}
	return out, nil
}

func (m *memStore) RecordsForTrack(_ context.Context, trackID, categoryID int64, flap bool) ([]Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failRecords[trackID]; err != nil {
		return nil, err
	}
	out := []Record{}
	for _, r := range m.records {
		if r.TrackID == trackID && r.CategoryID == categoryID && r.Flap == flap {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].TimeMs < out[j].TimeMs })
	return out, nil
}

func (m *memStore) InsertRecord(_ context.Context, r Record) (Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.enforceFK && !m.hasAccount(r.AccountID) {
		return Record{}, ErrNoReferent
	}
	r.ID = m.id()
	r.SubmittedAt = time.Now().UTC()
	m.records = append(m.records, r)
	return r, nil
}

// callers hold m.mu
func (m *memStore) hasAccount(id int64) bool {
	for _, a := range m.accounts {
		if a.ID == id {
			return true
		}
	}
	return false
}

func (m *memStore) CreateAccount(_ context.Context, username, hash string, role Role) (Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.accounts {
		if a.Username == username {
			return Account{}, ErrDuplicate
		}
	}
	m.accountSeq++
	a := Account{
		ID:           m.accountSeq,
		Username:     username,
		Role:         role,
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
	}
	m.accounts = append(m.accounts, a)
	return a, nil
}

func (m *memStore) AccountByID(_ context.Context, id int64) (Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.accounts {
		if a.ID == id {
			return a, nil
		}
	}
	return Account{}, ErrNotFound
}

func (m *memStore) AccountByUsername(_ context.Context, username string) (Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.accounts {
		if a.Username == username {
			return a, nil
		}
	}
	return Account{}, ErrNotFound
}

func (m *memStore) ListAccounts(context.Context) ([]Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Account{}, m.accounts...), nil
}

func (m *memStore) UpdateAccount(_ context.Context, id int64, p AccountPatch) (Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p.Username != nil {
		for _, a := range m.accounts {
			if a.Username == *p.Username && a.ID != id {
				return Account{}, ErrDuplicate
			}
		}
	}
	for i := range m.accounts {
		a := &m.accounts[i]
		if a.ID != id {
			continue
		}
		if p.Username != nil {
			a.Username = *p.Username
		}
		if p.PasswordHash != nil {
			a.PasswordHash = *p.PasswordHash
		}
		if p.Role != nil {
			a.Role = *p.Role
		}
		return *a, nil
	}
	return Account{}, ErrNotFound
}

func (m *memStore) DeleteAccount(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, a := range m.accounts {
		if a.ID == id {
			m.accounts = append(m.accounts[:i], m.accounts[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}
