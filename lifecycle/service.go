// Package lifecycle exposes the admin operations on submissions: listing
// with status filter and counts, detail, status changes and removal.
//
// Every operation takes the calling admin explicitly and refuses anonymous
// callers. Status changes are unordered: any status can be set from any
// other, only membership in the fixed status set is enforced.
package lifecycle

import (
	"context"

	"github.com/mbolis/tailor-intake/auth"
	"github.com/mbolis/tailor-intake/model"
	"github.com/mbolis/tailor-intake/store"
	"github.com/pkg/errors"
)

const PageSize = 10

var (
	ErrUnauthenticated = errors.New("caller is not authenticated")
	ErrInvalidStatus   = errors.New("invalid status")
)

type Store interface {
	List(ctx context.Context, f store.Filter) ([]model.Submission, int, error)
	Counts(ctx context.Context) (model.Counts, error)
	Get(ctx context.Context, id string) (model.Submission, error)
	SetStatus(ctx context.Context, id string, status model.Status) (model.Submission, error)
	Delete(ctx context.Context, id string) error
}

type Page struct {
	Data       []model.Submission `json:"data"`
	Counts     model.Counts       `json:"counts"`
	Pagination model.Pagination   `json:"pagination"`
}

type Service struct {
	store Store
}

func New(store Store) *Service {
	return &Service{store: store}
}

// ParseFilter turns a status query value into a filter. Empty and "all"
// select every status.
func ParseFilter(value string) (model.Status, error) {
	if value == "" || value == "all" {
		return "", nil
	}
	status := model.Status(value)
	if !status.Valid() {
		return "", errors.Wrapf(ErrInvalidStatus, "filter %q", value)
	}
	return status, nil
}

// List returns page (1-based, values below 1 read as 1) of the submissions
// with status filter, plus whole-table counts.
func (s *Service) List(ctx context.Context, caller auth.Caller, filter model.Status, page int) (Page, error) {
	if !caller.Authenticated() {
		return Page{}, ErrUnauthenticated
	}
	if filter != "" && !filter.Valid() {
		return Page{}, errors.Wrapf(ErrInvalidStatus, "filter %q", filter)
	}
	if page < 1 {
		page = 1
	}

	data, total, err := s.store.List(ctx, store.Filter{
		Status: filter,
		Offset: (page - 1) * PageSize,
		Limit:  PageSize,
	})
	if err != nil {
		return Page{}, err
	}

	counts, err := s.store.Counts(ctx)
	if err != nil {
		return Page{}, err
	}

	return Page{
		Data:       data,
		Counts:     counts,
		Pagination: model.NewPagination(page, PageSize, total),
	}, nil
}

func (s *Service) Counts(ctx context.Context, caller auth.Caller) (model.Counts, error) {
	if !caller.Authenticated() {
		return model.Counts{}, ErrUnauthenticated
	}
	return s.store.Counts(ctx)
}

func (s *Service) Get(ctx context.Context, caller auth.Caller, id string) (model.Submission, error) {
	if !caller.Authenticated() {
		return model.Submission{}, ErrUnauthenticated
	}
	return s.store.Get(ctx, id)
}

// SetStatus moves a submission to status. Setting the status it already
// has succeeds and changes nothing.
func (s *Service) SetStatus(ctx context.Context, caller auth.Caller, id string, status model.Status) (model.Submission, error) {
	if !caller.Authenticated() {
		return model.Submission{}, ErrUnauthenticated
	}
	if !status.Valid() {
		return model.Submission{}, errors.Wrapf(ErrInvalidStatus, "status %q", status)
	}
	return s.store.SetStatus(ctx, id, status)
}

// Remove deletes a submission. Removing an unknown id returns
// store.ErrNotFound.
func (s *Service) Remove(ctx context.Context, caller auth.Caller, id string) error {
	if !caller.Authenticated() {
		return ErrUnauthenticated
	}
	return s.store.Delete(ctx, id)
}
