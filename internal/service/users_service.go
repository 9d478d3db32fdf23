package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/geocoder89/userhub/internal/domain/user"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// UserRepository is the persistence contract the service relies on.
// FindByID and DeleteByID report absence with an error matching user.ErrNotFound.
type UserRepository interface {
	Save(ctx context.Context, u user.User) (user.User, error)
	FindByID(ctx context.Context, id int64) (user.User, error)
	DeleteByID(ctx context.Context, id int64) error
}

type UsersService struct {
	repo   UserRepository
	tracer trace.Tracer
}

func NewUsersService(repo UserRepository) *UsersService {
	return &UsersService{
		repo:   repo,
		tracer: otel.Tracer("github.com/geocoder89/userhub/internal/service"),
	}
}

// Create persists a new user. Any id on the payload is ignored.
func (s *UsersService) Create(ctx context.Context, payload user.User) (u user.User, err error) {
	ctx, span := s.tracer.Start(ctx, "users.create")
	defer func() { endSpan(span, err) }()

	payload.ID = 0

	u, err = s.repo.Save(ctx, payload)
	if err != nil {
		return user.User{}, fmt.Errorf("save user: %w", err)
	}

	span.SetAttributes(attribute.Int64("user.id", u.ID))

	return u, nil
}

func (s *UsersService) Get(ctx context.Context, id int64) (u user.User, err error) {
	ctx, span := s.tracer.Start(ctx, "users.get", trace.WithAttributes(attribute.Int64("user.id", id)))
	defer func() { endSpan(span, err) }()

	return s.find(ctx, id)
}

// Update merges payload into the stored user and saves it.
// Nothing is written when the id does not exist.
func (s *UsersService) Update(ctx context.Context, id int64, payload user.User) (u user.User, err error) {
	ctx, span := s.tracer.Start(ctx, "users.update", trace.WithAttributes(attribute.Int64("user.id", id)))
	defer func() { endSpan(span, err) }()

	existing, err := s.find(ctx, id)
	if err != nil {
		return user.User{}, err
	}

	existing.Merge(payload)

	u, err = s.repo.Save(ctx, existing)
	if err != nil {
		// removed between lookup and save
		if errors.Is(err, user.ErrNotFound) {
			return user.User{}, &user.NotFoundError{ID: id}
		}
		return user.User{}, fmt.Errorf("save user %d: %w", id, err)
	}

	return u, nil
}

func (s *UsersService) Delete(ctx context.Context, id int64) (err error) {
	ctx, span := s.tracer.Start(ctx, "users.delete", trace.WithAttributes(attribute.Int64("user.id", id)))
	defer func() { endSpan(span, err) }()

	if _, err = s.find(ctx, id); err != nil {
		return err
	}

	err = s.repo.DeleteByID(ctx, id)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return &user.NotFoundError{ID: id}
		}
		return fmt.Errorf("delete user %d: %w", id, err)
	}

	return nil
}

func (s *UsersService) find(ctx context.Context, id int64) (user.User, error) {
	u, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return user.User{}, &user.NotFoundError{ID: id}
		}
		return user.User{}, fmt.Errorf("find user %d: %w", id, err)
	}

	return u, nil
}

func endSpan(span trace.Span, err error) {
	if err != nil && !errors.Is(err, user.ErrNotFound) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
