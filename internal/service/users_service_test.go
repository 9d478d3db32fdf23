package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/geocoder89/userhub/internal/domain/user"
	"github.com/geocoder89/userhub/internal/repo/memory"
	"github.com/geocoder89/userhub/internal/service"
)

// fake repository with overridable behaviour, used to observe which calls the service makes

type fakeUsersRepo struct {
	saveFn   func(ctx context.Context, u user.User) (user.User, error)
	findFn   func(ctx context.Context, id int64) (user.User, error)
	deleteFn func(ctx context.Context, id int64) error

	saveCalls   int
	deleteCalls int
}

func (f *fakeUsersRepo) Save(ctx context.Context, u user.User) (user.User, error) {
	f.saveCalls++
	if f.saveFn != nil {
		return f.saveFn(ctx, u)
	}
	return u, nil
}

func (f *fakeUsersRepo) FindByID(ctx context.Context, id int64) (user.User, error) {
	if f.findFn != nil {
		return f.findFn(ctx, id)
	}
	return user.User{}, user.ErrNotFound
}

func (f *fakeUsersRepo) DeleteByID(ctx context.Context, id int64) error {
	f.deleteCalls++
	if f.deleteFn != nil {
		return f.deleteFn(ctx, id)
	}
	return nil
}

func seed(t *testing.T, svc *service.UsersService, u user.User) user.User {
	t.Helper()

	created, err := svc.Create(context.Background(), u)
	if err != nil {
		t.Fatalf("seed create failed: %v", err)
	}
	return created
}

func TestCreate(t *testing.T) {
	svc := service.NewUsersService(memory.NewUsersRepo())

	in := user.User{ID: 55, Name: "juunini", Email: "juuni.ni.i@gmail.com", Password: "secret"}
	got, err := svc.Create(context.Background(), in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got.ID == 0 {
		t.Fatalf("expected an assigned id, got 0")
	}
	if got.ID == 55 {
		t.Fatalf("payload id must not be used, got %d", got.ID)
	}
	if got.Name != in.Name || got.Email != in.Email || got.Password != in.Password {
		t.Fatalf("got %+v, want fields of %+v", got, in)
	}
}

func TestCreate_RepoError(t *testing.T) {
	dbErr := errors.New("db error")
	repo := &fakeUsersRepo{
		saveFn: func(ctx context.Context, u user.User) (user.User, error) {
			return user.User{}, dbErr
		},
	}

	_, err := service.NewUsersService(repo).Create(context.Background(), user.User{Name: "A", Email: "a@b.com", Password: "p"})
	if !errors.Is(err, dbErr) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}

func TestUpdate(t *testing.T) {
	repo := memory.NewUsersRepo()
	svc := service.NewUsersService(repo)
	ctx := context.Background()

	existing := seed(t, svc, user.User{Name: "A", Email: "a@b.com", Password: "p"})

	payload := user.User{Name: "A2", Email: "a2@b.com", Password: "p2"}
	got, err := svc.Update(ctx, existing.ID, payload)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.ID != existing.ID || got.Name != "A2" {
		t.Fatalf("unexpected returned user %+v", got)
	}

	stored, err := repo.FindByID(ctx, existing.ID)
	if err != nil {
		t.Fatalf("find after update: %v", err)
	}

	want := user.User{ID: existing.ID, Name: "A2", Email: "a2@b.com", Password: "p2"}
	if stored != want {
		t.Fatalf("stored %+v, want %+v", stored, want)
	}
}

func TestUpdate_NotFound(t *testing.T) {
	repo := &fakeUsersRepo{}
	svc := service.NewUsersService(repo)

	_, err := svc.Update(context.Background(), 404, user.User{Name: "A", Email: "a@b.com", Password: "p"})

	var nf *user.NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
	if nf.ID != 404 {
		t.Fatalf("got id %d, want 404", nf.ID)
	}
	if repo.saveCalls != 0 {
		t.Fatalf("save must not be called for a missing user, got %d calls", repo.saveCalls)
	}
}

func TestUpdate_NotFoundLeavesStoreUntouched(t *testing.T) {
	repo := memory.NewUsersRepo()
	svc := service.NewUsersService(repo)
	ctx := context.Background()

	existing := seed(t, svc, user.User{Name: "A", Email: "a@b.com", Password: "p"})

	if _, err := svc.Update(ctx, existing.ID+1, user.User{Name: "X", Email: "x", Password: "x"}); !errors.Is(err, user.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	if _, err := repo.FindByID(ctx, existing.ID+1); !errors.Is(err, user.ErrNotFound) {
		t.Fatalf("no record should be created, got %v", err)
	}

	stored, _ := repo.FindByID(ctx, existing.ID)
	if stored != existing {
		t.Fatalf("existing record changed: %+v", stored)
	}
}

func TestUpdate_RemovedBeforeSave(t *testing.T) {
	repo := &fakeUsersRepo{
		findFn: func(ctx context.Context, id int64) (user.User, error) {
			return user.User{ID: id, Name: "A", Email: "a@b.com", Password: "p"}, nil
		},
		saveFn: func(ctx context.Context, u user.User) (user.User, error) {
			return user.User{}, user.ErrNotFound
		},
	}

	_, err := service.NewUsersService(repo).Update(context.Background(), 3, user.User{Name: "B"})

	var nf *user.NotFoundError
	if !errors.As(err, &nf) || nf.ID != 3 {
		t.Fatalf("expected NotFoundError{3}, got %v", err)
	}
}

func TestDelete(t *testing.T) {
	repo := memory.NewUsersRepo()
	svc := service.NewUsersService(repo)
	ctx := context.Background()

	existing := seed(t, svc, user.User{Name: "A", Email: "a@b.com", Password: "p"})

	if err := svc.Delete(ctx, existing.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := repo.FindByID(ctx, existing.ID); !errors.Is(err, user.ErrNotFound) {
		t.Fatalf("expected user to be gone, got %v", err)
	}

	err := svc.Delete(ctx, existing.ID)
	var nf *user.NotFoundError
	if !errors.As(err, &nf) || nf.ID != existing.ID {
		t.Fatalf("second delete: expected NotFoundError{%d}, got %v", existing.ID, err)
	}
}

func TestDelete_NotFoundSkipsRepoDelete(t *testing.T) {
	repo := &fakeUsersRepo{}

	err := service.NewUsersService(repo).Delete(context.Background(), 9)

	var nf *user.NotFoundError
	if !errors.As(err, &nf) || nf.ID != 9 {
		t.Fatalf("expected NotFoundError{9}, got %v", err)
	}
	if repo.deleteCalls != 0 {
		t.Fatalf("delete must not reach the repository, got %d calls", repo.deleteCalls)
	}
}

func TestFindErrorIsNotNotFound(t *testing.T) {
	dbErr := errors.New("connection refused")
	repo := &fakeUsersRepo{
		findFn: func(ctx context.Context, id int64) (user.User, error) {
			return user.User{}, dbErr
		},
	}
	svc := service.NewUsersService(repo)

	tests := []struct {
		name string
		call func() error
	}{
		{"get", func() error { _, err := svc.Get(context.Background(), 1); return err }},
		{"update", func() error { _, err := svc.Update(context.Background(), 1, user.User{}); return err }},
		{"delete", func() error { return svc.Delete(context.Background(), 1) }},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			err := tt.call()
			if !errors.Is(err, dbErr) {
				t.Fatalf("expected wrapped db error, got %v", err)
			}
			if errors.Is(err, user.ErrNotFound) {
				t.Fatalf("db error must not be reported as not found")
			}
		})
	}
}
