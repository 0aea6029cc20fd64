package lifecycle

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/mbolis/tailor-intake/auth"
	"github.com/mbolis/tailor-intake/database"
	"github.com/mbolis/tailor-intake/model"
	"github.com/mbolis/tailor-intake/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var admin = auth.NewCaller("admin", auth.RoleAdmin)

// spyStore counts the status writes that reach the store.
type spyStore struct {
	*store.Submissions
	setStatusCalls int
}

func (s *spyStore) SetStatus(ctx context.Context, id string, status model.Status) (model.Submission, error) {
	s.setStatusCalls++
	return s.Submissions.SetStatus(ctx, id, status)
}

func newService(t *testing.T) (*Service, *spyStore) {
	t.Helper()
	db, err := database.Open(filepath.Join(t.TempDir(), "intake.sqlite"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	spy := &spyStore{Submissions: store.NewSubmissions(db)}
	return New(spy), spy
}

func seed(t *testing.T, s *spyStore, n int, status model.Status) []model.Submission {
	t.Helper()
	ctx := context.Background()
	var out []model.Submission
	for i := 0; i < n; i++ {
		sub, err := s.Create(ctx, model.Submission{
			Name:        fmt.Sprintf("lead %d", i),
			Email:       "lead@example.com",
			UserType:    model.Other,
			TypeAnswers: &model.OtherAnswers{},
		})
		require.NoError(t, err)
		if status != model.StatusNew {
			sub, err = s.Submissions.SetStatus(ctx, sub.ID, status)
			require.NoError(t, err)
		}
		out = append(out, sub)
	}
	return out
}

func TestParseFilter(t *testing.T) {
	for _, v := range []string{"", "all"} {
		status, err := ParseFilter(v)
		require.NoError(t, err)
		assert.Equal(t, model.Status(""), status)
	}

	status, err := ParseFilter("consulting")
	require.NoError(t, err)
	assert.Equal(t, model.StatusConsulting, status)

	_, err = ParseFilter("archived")
	assert.ErrorIs(t, err, ErrInvalidStatus)
}

func TestListPagination(t *testing.T) {
	svc, spy := newService(t)
	seed(t, spy, 15, model.StatusConsulting)
	seed(t, spy, 3, model.StatusNew)

	page, err := svc.List(context.Background(), admin, model.StatusConsulting, 2)

	require.NoError(t, err)
	assert.Len(t, page.Data, 5)
	assert.Equal(t, model.Pagination{Page: 2, Limit: 10, Total: 15, TotalPages: 2}, page.Pagination)
}

func TestListPageBelowOneReadsAsFirst(t *testing.T) {
	svc, spy := newService(t)
	seed(t, spy, 12, model.StatusNew)

	page, err := svc.List(context.Background(), admin, "", 0)

	require.NoError(t, err)
	assert.Equal(t, 1, page.Pagination.Page)
	assert.Len(t, page.Data, 10)
}

func TestCountsIgnoreFilter(t *testing.T) {
	svc, spy := newService(t)
	seed(t, spy, 4, model.StatusNew)
	seed(t, spy, 3, model.StatusConsulting)
	seed(t, spy, 2, model.StatusContracted)
	seed(t, spy, 1, model.StatusCompleted)

	want := model.Counts{All: 10, New: 4, Consulting: 3, Contracted: 2, Completed: 1}
	for _, filter := range append([]model.Status{""}, model.Statuses...) {
		page, err := svc.List(context.Background(), admin, filter, 1)
		require.NoError(t, err)
		assert.Equal(t, want, page.Counts, "filter %q", filter)
	}

	counts, err := svc.Counts(context.Background(), admin)
	require.NoError(t, err)
	assert.Equal(t, want, counts)
	assert.Equal(t, counts.All, counts.New+counts.Consulting+counts.Contracted+counts.Completed)
}

func TestListRejectsUnknownFilter(t *testing.T) {
	svc, _ := newService(t)

	_, err := svc.List(context.Background(), admin, "archived", 1)

	assert.ErrorIs(t, err, ErrInvalidStatus)
}

func TestSetStatusIsIdempotent(t *testing.T) {
	svc, spy := newService(t)
	sub := seed(t, spy, 1, model.StatusNew)[0]
	ctx := context.Background()

	first, err := svc.SetStatus(ctx, admin, sub.ID, model.StatusConsulting)
	require.NoError(t, err)
	second, err := svc.SetStatus(ctx, admin, sub.ID, model.StatusConsulting)
	require.NoError(t, err)

	assert.Equal(t, model.StatusConsulting, first.Status)
	assert.Equal(t, first, second)
}

func TestSetStatusAnyToAny(t *testing.T) {
	svc, spy := newService(t)
	sub := seed(t, spy, 1, model.StatusCompleted)[0]
	ctx := context.Background()

	for _, status := range []model.Status{model.StatusNew, model.StatusContracted, model.StatusConsulting, model.StatusCompleted} {
		updated, err := svc.SetStatus(ctx, admin, sub.ID, status)
		require.NoError(t, err)
		assert.Equal(t, status, updated.Status)
	}
}

func TestSetStatusRejectsUnknownStatus(t *testing.T) {
	svc, spy := newService(t)
	sub := seed(t, spy, 1, model.StatusContracted)[0]
	ctx := context.Background()

	_, err := svc.SetStatus(ctx, admin, sub.ID, "bogus")

	assert.ErrorIs(t, err, ErrInvalidStatus)
	assert.Zero(t, spy.setStatusCalls)
	got, err := svc.Get(ctx, admin, sub.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusContracted, got.Status)
}

func TestGetAndRemove(t *testing.T) {
	svc, spy := newService(t)
	sub := seed(t, spy, 1, model.StatusNew)[0]
	ctx := context.Background()

	got, err := svc.Get(ctx, admin, sub.ID)
	require.NoError(t, err)
	assert.Equal(t, sub.ID, got.ID)

	require.NoError(t, svc.Remove(ctx, admin, sub.ID))
	_, err = svc.Get(ctx, admin, sub.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)

	assert.ErrorIs(t, svc.Remove(ctx, admin, sub.ID), store.ErrNotFound, "removing twice reports not found")
}

func TestAnonymousCallerIsRejected(t *testing.T) {
	svc, spy := newService(t)
	sub := seed(t, spy, 1, model.StatusNew)[0]
	ctx := context.Background()
	anonymous := auth.Caller{}

	_, err := svc.List(ctx, anonymous, "", 1)
	assert.ErrorIs(t, err, ErrUnauthenticated)
	_, err = svc.Counts(ctx, anonymous)
	assert.ErrorIs(t, err, ErrUnauthenticated)
	_, err = svc.Get(ctx, anonymous, sub.ID)
	assert.ErrorIs(t, err, ErrUnauthenticated)
	_, err = svc.SetStatus(ctx, anonymous, sub.ID, model.StatusCompleted)
	assert.ErrorIs(t, err, ErrUnauthenticated)
	assert.ErrorIs(t, svc.Remove(ctx, anonymous, sub.ID), ErrUnauthenticated)

	got, err := svc.Get(ctx, admin, sub.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusNew, got.Status)
}
