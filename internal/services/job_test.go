package services

import (
	"context"
	"testing"

	"github.com/azayd/website/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJobService_List(t *testing.T) {
	db := newServiceDB(t)
	jobs := []models.JobPosting{
		{Title: "Go Engineer", Department: "Engineering", Location: "Remote", JobType: "full-time", Description: "Services", Requirements: "Go"},
		{Title: "Designer", Department: "Design", Location: "Karachi", JobType: "contract", Description: "Figma work", Requirements: "Figma"},
		{Title: "QA Intern", Department: "Engineering", Location: "Karachi", JobType: "internship", Description: "Testing", Requirements: "Curiosity"},
	}
	for i := range jobs {
		jobs[i].IsActive = true
		require.NoError(t, db.Create(&jobs[i]).Error)
	}
	createJob(t, db, "Closed Role", false)
	svc := NewJobService(db)
	ctx := context.Background()

	titles := func(f JobFilter) []string {
		t.Helper()
		f.PageSize = 10
		page, err := svc.List(ctx, f)
		require.NoError(t, err)
		out := []string{}
		for _, j := range page.Results {
			out = append(out, j.Title)
		}
		return out
	}

	assert.ElementsMatch(t, []string{"Go Engineer", "Designer", "QA Intern"}, titles(JobFilter{}))
	assert.ElementsMatch(t, []string{"Go Engineer", "QA Intern"}, titles(JobFilter{Department: "Engineering"}))
	assert.Equal(t, []string{"QA Intern"}, titles(JobFilter{Department: "Engineering", Location: "Karachi"}))
	assert.Equal(t, []string{"Designer"}, titles(JobFilter{JobType: "contract"}))
	assert.Equal(t, []string{"Designer"}, titles(JobFilter{ListQuery: ListQuery{Search: "figma"}}))
	assert.Equal(t, []string{"Designer", "Go Engineer", "QA Intern"}, titles(JobFilter{ListQuery: ListQuery{Ordering: "title"}}))
	assert.Empty(t, titles(JobFilter{Department: "engineering"}), "department matches exactly")
}

func TestJobService_GetAndIsOpen(t *testing.T) {
	db := newServiceDB(t)
	open := createJob(t, db, "Go Engineer", true)
	closed := createJob(t, db, "Closed Role", false)
	svc := NewJobService(db)
	ctx := context.Background()

	got, err := svc.Get(ctx, itoa(open.ID))
	require.NoError(t, err)
	assert.Equal(t, "Go Engineer", got.Title)

	got, err = svc.Get(ctx, "go-engineer")
	require.NoError(t, err)
	assert.Equal(t, open.ID, got.ID)

	_, err = svc.Get(ctx, itoa(closed.ID))
	assert.ErrorIs(t, err, ErrNotFound)

	ok, err := svc.IsOpen(ctx, open.ID)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = svc.IsOpen(ctx, closed.ID)
	require.NoError(t, err)
	assert.False(t, ok)
	ok, err = svc.IsOpen(ctx, 9999)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestJobService_Facets(t *testing.T) {
	db := newServiceDB(t)
	svc := NewJobService(db)
	ctx := context.Background()

	deps, err := svc.Departments(ctx)
	require.NoError(t, err)
	assert.NotNil(t, deps)
	assert.Empty(t, deps)

	for _, j := range []models.JobPosting{
		{Title: "A", Department: "Engineering", Location: "Remote"},
		{Title: "B", Department: "Design", Location: "Remote"},
		{Title: "C", Department: "Engineering", Location: "Karachi"},
	} {
		j.Description, j.Requirements, j.IsActive = "d", "r", true
		require.NoError(t, db.Create(&j).Error)
	}
	closed := createJob(t, db, "Hidden", false)
	require.NoError(t, db.Model(&closed).Update("department", "Sales").Error)

	deps, err = svc.Departments(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Design", "Engineering"}, deps)

	locs, err := svc.Locations(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Karachi", "Remote"}, locs)

	n, err := svc.CountOpen(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
}
