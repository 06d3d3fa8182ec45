// Package memory is an in-process HotelRepository used for local runs
// (APP_ENV=dev without MYSQL_DSN) and unit tests.
package memory

import (
	"context"
	"regexp"
	"sort"
	"sync"

	"hotel_service/internal/domain"
)

var digitRun = regexp.MustCompile(`[0-9]+`)

// Repo serializes every operation behind one mutex; InTx holds it for the
// whole transaction.
type Repo struct {
	mu sync.Mutex
	st *state
}

type state struct {
	rows   map[int64]domain.Hotel
	nextID int64
}

func New() *Repo {
	return &Repo{st: &state{rows: map[int64]domain.Hotel{}, nextID: 1}}
}

func (r *Repo) Save(ctx context.Context, h domain.Hotel) (domain.Hotel, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.st.save(h)
}

func (r *Repo) FindByID(ctx context.Context, id int64) (domain.Hotel, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.st.find(id)
}

func (r *Repo) FindAll(ctx context.Context, pr domain.PageRequest) (domain.Page, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.st.findAll(pr)
}

func (r *Repo) DeleteByID(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.st.delete(id)
}

func (r *Repo) RedactTitle(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.st.redact(id)
}

// InTx works on a copy of the table and swaps it in only when fn succeeds.
func (r *Repo) InTx(ctx context.Context, fn func(tx domain.HotelRepository) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	tx := &txRepo{st: r.st.clone()}
	if err := fn(tx); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	r.st = tx.st
	return nil
}

// txRepo runs under the parent's lock.
type txRepo struct{ st *state }

func (t *txRepo) Save(_ context.Context, h domain.Hotel) (domain.Hotel, error) {
	return t.st.save(h)
}
func (t *txRepo) FindByID(_ context.Context, id int64) (domain.Hotel, error) { return t.st.find(id) }
func (t *txRepo) FindAll(_ context.Context, pr domain.PageRequest) (domain.Page, error) {
	return t.st.findAll(pr)
}
func (t *txRepo) DeleteByID(_ context.Context, id int64) error  { return t.st.delete(id) }
func (t *txRepo) RedactTitle(_ context.Context, id int64) error { return t.st.redact(id) }

// InTx on an open transaction joins it.
func (t *txRepo) InTx(_ context.Context, fn func(tx domain.HotelRepository) error) error {
	return fn(t)
}

func (s *state) clone() *state {
	rows := make(map[int64]domain.Hotel, len(s.rows))
	for k, v := range s.rows {
		rows[k] = v
	}
	return &state{rows: rows, nextID: s.nextID}
}

func (s *state) save(h domain.Hotel) (domain.Hotel, error) {
	if h.ID == 0 {
		h.ID = s.nextID
		s.nextID++
		s.rows[h.ID] = h
		return h, nil
	}
	if _, ok := s.rows[h.ID]; !ok {
		return domain.Hotel{}, domain.ErrNotFound
	}
	s.rows[h.ID] = h
	return h, nil
}

func (s *state) find(id int64) (domain.Hotel, error) {
	h, ok := s.rows[id]
	if !ok {
		return domain.Hotel{}, domain.ErrNotFound
	}
	return h, nil
}

func (s *state) findAll(pr domain.PageRequest) (domain.Page, error) {
	if err := pr.Validate(); err != nil {
		return domain.Page{}, err
	}
	ids := make([]int64, 0, len(s.rows))
	for id := range s.rows {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	var items []domain.Hotel
	if off := pr.Offset(); off < len(ids) {
		for _, id := range ids[off:] {
			if len(items) == pr.Size {
				break
			}
			items = append(items, s.rows[id])
		}
	}
	return domain.NewPage(items, pr, int64(len(ids))), nil
}

func (s *state) delete(id int64) error {
	if _, ok := s.rows[id]; !ok {
		return domain.ErrNotFound
	}
	delete(s.rows, id)
	return nil
}

func (s *state) redact(id int64) error {
	h, ok := s.rows[id]
	if !ok {
		return domain.ErrNotFound
	}
	h.Title = digitRun.ReplaceAllString(h.Title, "*")
	s.rows[id] = h
	return nil
}
