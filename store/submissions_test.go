package store

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/mbolis/tailor-intake/database"
	"github.com/mbolis/tailor-intake/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openStore(t *testing.T) *Submissions {
	t.Helper()
	db, err := database.Open(filepath.Join(t.TempDir(), "intake.sqlite"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	s := NewSubmissions(db)
	clock := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	s.now = func() time.Time {
		clock = clock.Add(time.Minute)
		return clock
	}
	return s
}

func freelancer(name string) model.Submission {
	phone := "010-1234-5678"
	return model.Submission{
		Name:           name,
		Email:          "a@b.com",
		Phone:          &phone,
		UserType:       model.Freelancer,
		TypeAnswers:    &model.FreelancerAnswers{Job: "designer", TimeConsumingTasks: "x", MessageTypes: []string{"quote"}},
		ToneStyle:      model.ToneFriendly,
		DesiredOutcome: "save time",
		AIUsageLevel:   model.AIUsageFree,
	}
}

func seed(t *testing.T, s *Submissions, n int, status model.Status) []model.Submission {
	t.Helper()
	ctx := context.Background()
	var out []model.Submission
	for i := 0; i < n; i++ {
		sub, err := s.Create(ctx, freelancer(fmt.Sprintf("%s-%d", status, i)))
		require.NoError(t, err)
		if status != model.StatusNew {
			sub, err = s.SetStatus(ctx, sub.ID, status)
			require.NoError(t, err)
		}
		out = append(out, sub)
	}
	return out
}

func TestCreateAndGet(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	created, err := s.Create(ctx, freelancer("홍길동"))
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, model.StatusNew, created.Status)

	got, err := s.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)
	assert.WithinDuration(t, created.CreatedAt, got.CreatedAt, time.Millisecond)
	assert.Equal(t, "홍길동", got.Name)
	require.NotNil(t, got.Phone)
	assert.Equal(t, "010-1234-5678", *got.Phone)
	assert.Nil(t, got.Restrictions)
	assert.Equal(t, model.StatusNew, got.Status)
	assert.Equal(t, &model.FreelancerAnswers{Job: "designer", TimeConsumingTasks: "x", MessageTypes: []string{"quote"}}, got.TypeAnswers)
}

func TestGetNotFound(t *testing.T) {
	s := openStore(t)

	_, err := s.Get(context.Background(), "missing")

	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListPaginatesNewestFirst(t *testing.T) {
	s := openStore(t)
	created := seed(t, s, 15, model.StatusNew)
	seed(t, s, 2, model.StatusCompleted)

	page, total, err := s.List(context.Background(), Filter{Status: model.StatusNew, Offset: 10, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, 15, total)
	require.Len(t, page, 5)
	assert.Equal(t, created[4].ID, page[0].ID)
	assert.Equal(t, created[0].ID, page[4].ID)

	page, total, err = s.List(context.Background(), Filter{Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, 17, total)
	require.Len(t, page, 10)
	assert.Equal(t, model.StatusCompleted, page[0].Status)
}

func TestListEmpty(t *testing.T) {
	s := openStore(t)

	page, total, err := s.List(context.Background(), Filter{Limit: 10})

	require.NoError(t, err)
	assert.Zero(t, total)
	assert.NotNil(t, page)
	assert.Empty(t, page)
}

func TestCountsCoverWholeTable(t *testing.T) {
	s := openStore(t)
	seed(t, s, 3, model.StatusNew)
	seed(t, s, 2, model.StatusConsulting)
	seed(t, s, 1, model.StatusCompleted)

	counts, err := s.Counts(context.Background())

	require.NoError(t, err)
	assert.Equal(t, model.Counts{All: 6, New: 3, Consulting: 2, Completed: 1}, counts)
}

func TestSetStatus(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()
	sub := seed(t, s, 1, model.StatusNew)[0]

	updated, err := s.SetStatus(ctx, sub.ID, model.StatusContracted)
	require.NoError(t, err)
	assert.Equal(t, model.StatusContracted, updated.Status)
	assert.Equal(t, sub.Name, updated.Name)

	again, err := s.SetStatus(ctx, sub.ID, model.StatusContracted)
	require.NoError(t, err)
	assert.Equal(t, model.StatusContracted, again.Status)

	back, err := s.SetStatus(ctx, sub.ID, model.StatusNew)
	require.NoError(t, err)
	assert.Equal(t, model.StatusNew, back.Status)

	_, err = s.SetStatus(ctx, "missing", model.StatusNew)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSetStatusRejectedBySchema(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()
	sub := seed(t, s, 1, model.StatusConsulting)[0]

	_, err := s.SetStatus(ctx, sub.ID, "bogus")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)

	got, err := s.Get(ctx, sub.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusConsulting, got.Status)
}

func TestDelete(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()
	sub := seed(t, s, 1, model.StatusNew)[0]

	require.NoError(t, s.Delete(ctx, sub.ID))

	_, err := s.Get(ctx, sub.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, s.Delete(ctx, sub.ID), ErrNotFound)
}
