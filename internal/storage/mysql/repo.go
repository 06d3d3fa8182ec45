package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/mysql"
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"

	"hotel_service/internal/domain"
)

// Repo is a HotelRepository over MySQL. A Repo returned to an InTx callback
// is bound to that transaction.
type Repo struct {
	db   *sqlx.DB
	q    sqlx.ExtContext
	inTx bool
}

func New(db *sql.DB) *Repo {
	x := sqlx.NewDb(db, dialectMySQL)
	return &Repo{db: x, q: x}
}

func (r *Repo) Save(ctx context.Context, h domain.Hotel) (domain.Hotel, error) {
	if h.ID == 0 {
		res, err := r.q.ExecContext(ctx, insertHotelSQL, h.Title, h.Description, h.City, h.Rating)
		if err != nil {
			return domain.Hotel{}, err
		}
		id, err := res.LastInsertId()
		if err != nil {
			return domain.Hotel{}, err
		}
		h.ID = id
		return h, nil
	}

	// The lock only holds inside a transaction.
	if !r.inTx {
		var out domain.Hotel
		err := r.InTx(ctx, func(tx domain.HotelRepository) error {
			var err error
			out, err = tx.Save(ctx, h)
			return err
		})
		return out, err
	}
	if err := r.lock(ctx, h.ID); err != nil {
		return domain.Hotel{}, err
	}
	if _, err := r.q.ExecContext(ctx, updateHotelSQL, h.Title, h.Description, h.City, h.Rating, h.ID); err != nil {
		return domain.Hotel{}, err
	}
	return h, nil
}

func (r *Repo) FindByID(ctx context.Context, id int64) (domain.Hotel, error) {
	var h domain.Hotel
	if err := sqlx.GetContext(ctx, r.q, &h, getHotelSQL, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Hotel{}, domain.ErrNotFound
		}
		return domain.Hotel{}, err
	}
	return h, nil
}

// FindAll reads the page and the total from one transaction snapshot so
// the two agree under concurrent writes.
func (r *Repo) FindAll(ctx context.Context, pr domain.PageRequest) (domain.Page, error) {
	if err := pr.Validate(); err != nil {
		return domain.Page{}, err
	}
	if !r.inTx {
		var out domain.Page
		err := r.InTx(ctx, func(tx domain.HotelRepository) error {
			var err error
			out, err = tx.FindAll(ctx, pr)
			return err
		})
		return out, err
	}

	selectSQL, selectArgs, err := goqu.Dialect(dialectMySQL).
		From(tableHotels).
		Prepared(true).
		Select(colID, colTitle, colDescription, colCity, colRating).
		Order(goqu.I(colID).Asc()).
		Limit(uint(pr.Size)).
		Offset(uint(pr.Offset())).
		ToSQL()
	if err != nil {
		return domain.Page{}, fmt.Errorf("build list query: %w", err)
	}
	countSQL, countArgs, err := goqu.Dialect(dialectMySQL).
		From(tableHotels).
		Prepared(true).
		Select(goqu.COUNT(goqu.Star())).
		ToSQL()
	if err != nil {
		return domain.Page{}, fmt.Errorf("build count query: %w", err)
	}

	var items []domain.Hotel
	if err := sqlx.SelectContext(ctx, r.q, &items, selectSQL, selectArgs...); err != nil {
		return domain.Page{}, err
	}
	var total int64
	if err := sqlx.GetContext(ctx, r.q, &total, countSQL, countArgs...); err != nil {
		return domain.Page{}, err
	}
	return domain.NewPage(items, pr, total), nil
}

func (r *Repo) DeleteByID(ctx context.Context, id int64) error {
	res, err := r.q.ExecContext(ctx, deleteHotelSQL, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *Repo) RedactTitle(ctx context.Context, id int64) error {
	if !r.inTx {
		return r.InTx(ctx, func(tx domain.HotelRepository) error {
			return tx.RedactTitle(ctx, id)
		})
	}
	if err := r.lock(ctx, id); err != nil {
		return err
	}
	_, err := r.q.ExecContext(ctx, redactTitleSQL, id)
	return err
}

func (r *Repo) InTx(ctx context.Context, fn func(tx domain.HotelRepository) error) error {
	if r.inTx {
		return fn(r)
	}
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	committed := false
	defer func() {
		if committed {
			return
		}
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			log.Error().Err(rbErr).Msg("tx rollback failed")
		}
	}()

	if err := fn(&Repo{db: r.db, q: tx, inTx: true}); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	committed = true
	return nil
}

// lock takes the row lock for the surrounding transaction. A missing row is
// ErrNotFound.
func (r *Repo) lock(ctx context.Context, id int64) error {
	var one int
	if err := sqlx.GetContext(ctx, r.q, &one, lockHotelSQL, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrNotFound
		}
		return err
	}
	return nil
}
