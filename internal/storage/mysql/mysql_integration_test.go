//go:build integration || !unit

package mysql_test

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"testing"

	_ "github.com/go-sql-driver/mysql"
	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"

	"hotel_service/internal/domain"
	mysqlrepo "hotel_service/internal/storage/mysql"
)

var _ domain.HotelRepository = (*mysqlrepo.Repo)(nil)

func mustEnv(t *testing.T, k string) string {
	t.Helper()
	v := os.Getenv(k)
	if v == "" {
		t.Skipf("%s not set; export it (e.g. MIGRATIONS_DIR=/path/to/migrations)", k)
	}
	return v
}

func applyMigrations(t *testing.T, db *sql.DB, dir string) {
	t.Helper()
	st, err := os.Stat(dir)
	if err != nil || !st.IsDir() {
		t.Fatalf("MIGRATIONS_DIR=%s is not a directory or missing", dir)
	}

	ents, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read migrations dir: %v", err)
	}
	var files []string
	for _, e := range ents {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".sql" {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	if len(files) == 0 {
		t.Fatalf("no .sql files in %s", dir)
	}
	sort.Strings(files)

	for _, f := range files {
		sqlBytes, err := os.ReadFile(f)
		if err != nil {
			t.Fatalf("read %s: %v", f, err)
		}
		if _, err := db.Exec(string(sqlBytes)); err != nil {
			t.Fatalf("exec %s: %v", f, err)
		}
	}
}

func startMySQL(t *testing.T) *sql.DB {
	t.Helper()
	dir := mustEnv(t, "MIGRATIONS_DIR")

	// Isolated MySQL; let Docker pick a free host port.
	pool, err := dockertest.NewPool("")
	if err != nil {
		t.Fatalf("dockertest: %v", err)
	}
	runOpts := &dockertest.RunOptions{
		Repository: "mysql",
		Tag:        "8.0.36",
		Env: []string{
			"MYSQL_ROOT_PASSWORD=root",
			"MYSQL_DATABASE=hotels",
		},
	}
	resource, err := pool.RunWithOptions(runOpts, func(hc *docker.HostConfig) {
		hc.AutoRemove = true
		hc.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	if err != nil {
		t.Fatalf("run mysql: %v", err)
	}
	t.Cleanup(func() { _ = pool.Purge(resource) })

	hostPort := resource.GetPort("3306/tcp")
	dsn := fmt.Sprintf("root:%s@tcp(127.0.0.1:%s)/%s?parseTime=true&multiStatements=true&charset=utf8mb4,utf8&loc=UTC",
		"root", hostPort, "hotels")

	var db *sql.DB
	if err := pool.Retry(func() error {
		var e error
		db, e = sql.Open("mysql", dsn)
		if e != nil {
			return e
		}
		return db.Ping()
	}); err != nil {
		t.Fatalf("connect mysql: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	applyMigrations(t, db, dir)
	return db
}

func TestRepo_MySQL_CRUDAndPaging(t *testing.T) {
	db := startMySQL(t)
	repo := mysqlrepo.New(db)
	ctx := context.Background()

	created, err := repo.Save(ctx, domain.Hotel{Title: "Grand", City: "Lisbon", Rating: 4})
	if err != nil {
		t.Fatalf("Save insert: %v", err)
	}
	if created.ID == 0 {
		t.Fatalf("expected assigned id, got %+v", created)
	}

	got, err := repo.FindByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if got != created {
		t.Fatalf("round trip mismatch: got %+v want %+v", got, created)
	}

	// Update inside a transaction, including a no-op write of identical values.
	err = repo.InTx(ctx, func(tx domain.HotelRepository) error {
		if _, err := tx.Save(ctx, got); err != nil {
			return err
		}
		got.Title = "Grand Plaza 1990"
		_, err := tx.Save(ctx, got)
		return err
	})
	if err != nil {
		t.Fatalf("InTx update: %v", err)
	}
	if h, _ := repo.FindByID(ctx, created.ID); h.Title != "Grand Plaza 1990" {
		t.Fatalf("update not visible: %+v", h)
	}

	// A failing transaction leaves no trace.
	boom := errors.New("boom")
	err = repo.InTx(ctx, func(tx domain.HotelRepository) error {
		if _, err := tx.Save(ctx, domain.Hotel{ID: created.ID, Title: "rolled back"}); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	if h, _ := repo.FindByID(ctx, created.ID); h.Title != "Grand Plaza 1990" {
		t.Fatalf("rollback failed: %+v", h)
	}

	if err := repo.RedactTitle(ctx, created.ID); err != nil {
		t.Fatalf("RedactTitle: %v", err)
	}
	if h, _ := repo.FindByID(ctx, created.ID); h.Title != "Grand Plaza *" {
		t.Fatalf("unexpected redacted title: %q", h.Title)
	}

	if _, err := repo.Save(ctx, domain.Hotel{ID: 999999, Title: "ghost"}); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("update of missing row: expected ErrNotFound, got %v", err)
	}

	for i := 0; i < 24; i++ {
		if _, err := repo.Save(ctx, domain.Hotel{Title: fmt.Sprintf("h-%02d", i)}); err != nil {
			t.Fatalf("seed %d: %v", i, err)
		}
	}
	seen := map[int64]bool{}
	var last int64
	for p := 0; p < 3; p++ {
		page, err := repo.FindAll(ctx, domain.PageRequest{Page: p, Size: 10})
		if err != nil {
			t.Fatalf("FindAll page %d: %v", p, err)
		}
		if page.TotalElements != 25 || page.TotalPages != 3 {
			t.Fatalf("unexpected totals: %+v", page)
		}
		for _, h := range page.Items {
			if h.ID <= last || seen[h.ID] {
				t.Fatalf("page %d out of order or duplicate id %d", p, h.ID)
			}
			seen[h.ID] = true
			last = h.ID
		}
	}
	if len(seen) != 25 {
		t.Fatalf("expected 25 distinct hotels across pages, got %d", len(seen))
	}

	for _, pr := range []domain.PageRequest{
		{Page: 3, Size: 10},
		{Page: math.MaxInt/2 + 1, Size: 2},
		{Page: math.MaxInt, Size: math.MaxInt},
	} {
		page, err := repo.FindAll(ctx, pr)
		if err != nil {
			t.Fatalf("FindAll past the end %+v: %v", pr, err)
		}
		if len(page.Items) != 0 || page.TotalElements != 25 {
			t.Fatalf("past the end %+v: unexpected page %+v", pr, page)
		}
	}

	if err := repo.DeleteByID(ctx, created.ID); err != nil {
		t.Fatalf("DeleteByID: %v", err)
	}
	if _, err := repo.FindByID(ctx, created.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
	if err := repo.DeleteByID(ctx, created.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("second delete: expected ErrNotFound, got %v", err)
	}
}

func TestRepo_MySQL_ConcurrentWrites(t *testing.T) {
	db := startMySQL(t)
	repo := mysqlrepo.New(db)
	ctx := context.Background()

	target, err := repo.Save(ctx, domain.Hotel{Title: "start"})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}

	const writers = 8
	var wg sync.WaitGroup
	errs := make(chan error, 3*writers)
	for i := 0; i < writers; i++ {
		wg.Add(3)
		// Plain updates outside any caller transaction.
		go func(i int) {
			defer wg.Done()
			_, err := repo.Save(ctx, domain.Hotel{ID: target.ID, Title: fmt.Sprintf("w-%d", i)})
			errs <- err
		}(i)
		go func(i int) {
			defer wg.Done()
			_, err := repo.Save(ctx, domain.Hotel{Title: fmt.Sprintf("n-%d", i)})
			errs <- err
		}(i)
		// Every page must agree with its own total while rows are inserted.
		go func() {
			defer wg.Done()
			page, err := repo.FindAll(ctx, domain.PageRequest{Page: 0, Size: 5})
			if err == nil {
				want := int((page.TotalElements + 4) / 5)
				if page.TotalPages != want || int64(len(page.Items)) > page.TotalElements {
					err = fmt.Errorf("inconsistent page %+v", page)
				}
			}
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Fatalf("concurrent op: %v", err)
		}
	}

	got, err := repo.FindByID(ctx, target.ID)
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if len(got.Title) < 3 || got.Title[:2] != "w-" {
		t.Fatalf("expected one writer's title, got %q", got.Title)
	}
	page, err := repo.FindAll(ctx, domain.PageRequest{Page: 0, Size: 100})
	if err != nil {
		t.Fatalf("FindAll: %v", err)
	}
	if page.TotalElements != writers+1 || len(page.Items) != writers+1 {
		t.Fatalf("expected %d rows, got %+v", writers+1, page)
	}

	if err := repo.DeleteByID(ctx, target.ID); err != nil {
		t.Fatalf("DeleteByID: %v", err)
	}
	if _, err := repo.Save(ctx, domain.Hotel{ID: target.ID, Title: "gone"}); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("plain update of deleted row: expected ErrNotFound, got %v", err)
	}
}
