package feedback

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/deskmetrics/deskmetrics-backend-go/internal/domain/feedback"
	"github.com/deskmetrics/deskmetrics-backend-go/internal/pkg/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(repo *fakeFeedbackRepo, team *fakeRosterRepo) feedback.FeedbackService {
	return NewFeedbackService(repo, team, WithClock(func() time.Time { return fixedNow }))
}

func TestSince(t *testing.T) {
	cases := []struct {
		period string
		want   *time.Time
	}{
		{"", ptrTime(fixedNow.AddDate(0, 0, -7))},
		{"7days", ptrTime(fixedNow.AddDate(0, 0, -7))},
		{"30days", ptrTime(fixedNow.AddDate(0, 0, -30))},
		{"90days", ptrTime(fixedNow.AddDate(0, 0, -90))},
		{"all", nil},
	}
	for _, c := range cases {
		got, err := Since(c.period, fixedNow)
		require.NoError(t, err, c.period)
		assert.Equal(t, c.want, got, c.period)
	}

	_, err := Since("yesterday", fixedNow)
	assert.ErrorIs(t, err, feedback.ErrInvalidPeriod)
}

func ptrTime(t time.Time) *time.Time { return &t }

func TestFeedbackService_GetPerformance(t *testing.T) {
	repo := &fakeFeedbackRepo{
		feedbacks: sampleFeedbacks(),
		modules:   []feedback.Module{{Name: "Financeiro"}, {Name: "Fiscal"}},
	}
	svc := newTestService(repo, &fakeRosterRepo{roster: roster("Ana", "Bia", "Caio")})

	resp, err := svc.GetPerformance(context.Background(), feedback.PerformanceRequest{Period: "30days", ProblemResolved: "sim"})
	require.NoError(t, err)

	require.NotNil(t, repo.lastFilter.Since)
	assert.Equal(t, fixedNow.AddDate(0, 0, -30), *repo.lastFilter.Since)
	assert.Equal(t, feedback.ResolutionSolved, repo.lastFilter.ProblemResolved)

	assert.Equal(t, "30days", resp.Period)
	assert.Equal(t, 3, resp.Overview.FeedbackCount)
	assert.Equal(t, 3.3, resp.Overview.AverageRating)
	require.Len(t, resp.Attendants, 3)
	assert.Equal(t, 4.3, resp.Attendants[0].Score)
	assert.Equal(t, "Ana", resp.BestAttendant)
	assert.Equal(t, "Financeiro", resp.BestModule)

	require.Len(t, resp.RatingDistribution, 5)
	assert.Equal(t, "1", resp.RatingDistribution[0].Key)
	assert.Equal(t, 1, resp.RatingDistribution[4].Count)
	require.Len(t, resp.ResolutionDistribution, 3)
	assert.Equal(t, "sim", resp.ResolutionDistribution[0].Key)

	require.Len(t, resp.Tendency, TendencyDays)
	assert.Equal(t, "13/03", resp.Tendency[6].Date)
}

func TestFeedbackService_GetPerformance_SingleAttendant(t *testing.T) {
	repo := &fakeFeedbackRepo{feedbacks: sampleFeedbacks()[:2]}
	svc := newTestService(repo, &fakeRosterRepo{roster: roster("Ana", "Bia")})

	resp, err := svc.GetPerformance(context.Background(), feedback.PerformanceRequest{Attendant: "Ana"})
	require.NoError(t, err)

	assert.Equal(t, "Ana", repo.lastFilter.Attendant)
	assert.Equal(t, "7days", resp.Period)
	require.Len(t, resp.Attendants, 1)
	assert.Equal(t, "Ana", resp.Attendants[0].Attendant)
}

func TestFeedbackService_GetPerformance_Errors(t *testing.T) {
	t.Run("invalid period", func(t *testing.T) {
		svc := newTestService(&fakeFeedbackRepo{}, &fakeRosterRepo{})
		_, err := svc.GetPerformance(context.Background(), feedback.PerformanceRequest{Period: "1year"})

		var verrs validator.ValidationErrors
		require.ErrorAs(t, err, &verrs)
		assert.Contains(t, verrs.ToMap(), "period")
	})

	t.Run("repository failure", func(t *testing.T) {
		svc := newTestService(&fakeFeedbackRepo{err: errors.New("timeout")}, &fakeRosterRepo{})
		_, err := svc.GetPerformance(context.Background(), feedback.PerformanceRequest{})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to fetch feedbacks")
	})

	t.Run("roster failure", func(t *testing.T) {
		svc := newTestService(&fakeFeedbackRepo{}, &fakeRosterRepo{err: errors.New("down")})
		_, err := svc.GetPerformance(context.Background(), feedback.PerformanceRequest{})
		assert.Error(t, err)
	})
}

func TestFeedbackService_ListFeedbacks(t *testing.T) {
	repo := &fakeFeedbackRepo{feedbacks: []feedback.Feedback{
		fb("Ana", 5, 5, feedback.ResolutionSolved, "Fiscal", fixedNow.AddDate(0, 0, -3)),
		fb("Bia", 2, 3, feedback.ResolutionNotSolved, "Fiscal", fixedNow.AddDate(0, 0, -2)),
		fb("Ana", 4, 4, feedback.ResolutionSolved, "Estoque", fixedNow.AddDate(0, 0, -1)),
		fb("Ana", 5, 4, feedback.ResolutionPartial, "Fiscal", fixedNow),
	}}
	svc := newTestService(repo, &fakeRosterRepo{})

	t.Run("newest first with defaults", func(t *testing.T) {
		resp, err := svc.ListFeedbacks(context.Background(), feedback.ListFeedbackRequest{})
		require.NoError(t, err)
		assert.Equal(t, int64(4), resp.TotalCount)
		assert.Equal(t, 1, resp.Page)
		assert.Equal(t, validator.DefaultPageLimit, resp.Limit)
		assert.Equal(t, 1, resp.TotalPages)
		require.Len(t, resp.Feedbacks, 4)
		assert.Equal(t, "parcialmente", resp.Feedbacks[0].ProblemResolved)
		assert.Equal(t, "sim", resp.Feedbacks[3].ProblemResolved)
	})

	t.Run("all disables a filter", func(t *testing.T) {
		_, err := svc.ListFeedbacks(context.Background(), feedback.ListFeedbackRequest{
			Attendant: "all", Module: "all", GeneralRating: "all", ProblemResolved: "all",
		})
		require.NoError(t, err)
		assert.Equal(t, feedback.ListFilter{Page: 1, Limit: validator.DefaultPageLimit}, repo.lastListFilter)
	})

	t.Run("filters combine", func(t *testing.T) {
		resp, err := svc.ListFeedbacks(context.Background(), feedback.ListFeedbackRequest{
			Attendant: "Ana", Module: "Fiscal", GeneralRating: "5",
		})
		require.NoError(t, err)
		assert.Equal(t, int64(2), resp.TotalCount)
		assert.Equal(t, 5, repo.lastListFilter.GeneralRating)
	})

	t.Run("pagination", func(t *testing.T) {
		resp, err := svc.ListFeedbacks(context.Background(), feedback.ListFeedbackRequest{Page: 2, Limit: 3})
		require.NoError(t, err)
		assert.Equal(t, 2, resp.TotalPages)
		require.Len(t, resp.Feedbacks, 1)
		assert.Equal(t, "Ana", resp.Feedbacks[0].Attendant)
		assert.Equal(t, 5, resp.Feedbacks[0].GeneralRating)
		assert.Equal(t, "sim", resp.Feedbacks[0].ProblemResolved)
	})

	t.Run("invalid rating and resolution", func(t *testing.T) {
		_, err := svc.ListFeedbacks(context.Background(), feedback.ListFeedbackRequest{
			GeneralRating: "6", ProblemResolved: "talvez", Limit: 500,
		})
		var verrs validator.ValidationErrors
		require.ErrorAs(t, err, &verrs)
		m := verrs.ToMap()
		assert.Contains(t, m, "general_rating")
		assert.Contains(t, m, "problem_resolved")
		assert.Contains(t, m, "limit")
	})
}

func validSubmission() feedback.SubmitFeedbackRequest {
	return feedback.SubmitFeedbackRequest{
		Attendant:       " Ana ",
		Module:          "Fiscal",
		GeneralRating:   5,
		ClarityRating:   4,
		ProblemResolved: "sim",
		AttendanceID:    "AT-100",
		Comments:        strPtr("  "),
		Requester:       strPtr("Carlos"),
	}
}

func TestFeedbackService_SubmitFeedback(t *testing.T) {
	t.Run("stores the answer", func(t *testing.T) {
		repo := &fakeFeedbackRepo{}
		svc := newTestService(repo, &fakeRosterRepo{})

		resp, err := svc.SubmitFeedback(context.Background(), validSubmission())
		require.NoError(t, err)
		assert.NotEmpty(t, resp.ID)
		assert.Equal(t, "Ana", resp.Attendant)
		assert.Nil(t, resp.Comments, "blank comments are dropped")
		require.NotNil(t, resp.Requester)
		assert.Equal(t, "Carlos", *resp.Requester)
		require.Len(t, repo.feedbacks, 1)
	})

	t.Run("second answer for the same attendance conflicts", func(t *testing.T) {
		repo := &fakeFeedbackRepo{}
		svc := newTestService(repo, &fakeRosterRepo{})

		_, err := svc.SubmitFeedback(context.Background(), validSubmission())
		require.NoError(t, err)
		_, err = svc.SubmitFeedback(context.Background(), validSubmission())
		assert.ErrorIs(t, err, feedback.ErrDuplicateFeedback)
		assert.Len(t, repo.feedbacks, 1)
	})

	t.Run("missing required fields", func(t *testing.T) {
		svc := newTestService(&fakeFeedbackRepo{}, &fakeRosterRepo{})
		_, err := svc.SubmitFeedback(context.Background(), feedback.SubmitFeedbackRequest{ClarityRating: 9})

		var verrs validator.ValidationErrors
		require.ErrorAs(t, err, &verrs)
		m := verrs.ToMap()
		for _, field := range []string{"attendant", "module", "general_rating", "clarity_rating", "problem_resolved", "attendance_id"} {
			assert.Contains(t, m, field)
		}
	})

	t.Run("repository failure is wrapped", func(t *testing.T) {
		svc := newTestService(&fakeFeedbackRepo{err: errors.New("down")}, &fakeRosterRepo{})
		_, err := svc.SubmitFeedback(context.Background(), validSubmission())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to create feedback")
	})
}

func TestFeedbackService_GetFeedback(t *testing.T) {
	id := "6f1c1d2e-8c1b-4a43-9d3e-7b0c4f7a9e01"
	stored := fb("Ana", 5, 5, feedback.ResolutionSolved, "Fiscal", fixedNow)
	stored.ID = id
	svc := newTestService(&fakeFeedbackRepo{feedbacks: []feedback.Feedback{stored}}, &fakeRosterRepo{})

	resp, err := svc.GetFeedback(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, id, resp.ID)

	_, err = svc.GetFeedback(context.Background(), "6f1c1d2e-8c1b-4a43-9d3e-7b0c4f7a9e02")
	assert.ErrorIs(t, err, feedback.ErrFeedbackNotFound)

	_, err = svc.GetFeedback(context.Background(), "not-a-uuid")
	assert.ErrorIs(t, err, feedback.ErrFeedbackNotFound)
}
