package repository

import (
	"context"
	"testing"
	"time"

	"github.com/kendall-kelly/estate-inquiries-api/models"
	"github.com/kendall-kelly/estate-inquiries-api/tests/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type repoFixture struct {
	db       *gorm.DB
	repo     *InquiryRepository
	buyer    models.User
	agent    models.Agent
	property models.Property
}

func setupRepoFixture(t *testing.T) repoFixture {
	db := testutil.NewTestDB(t)
	buyer := testutil.SeedUser(t, db, "auth0|buyer", "Bea Buyer", models.RoleUser)
	agentUser := testutil.SeedUser(t, db, "auth0|agent", "Al Agent", models.RoleAgent)
	agent := testutil.SeedAgent(t, db, "Al Agent", &agentUser)
	property := testutil.SeedProperty(t, db, "harbour-loft", &agent)

	return repoFixture{
		db:       db,
		repo:     NewInquiryRepository(db),
		buyer:    buyer,
		agent:    agent,
		property: property,
	}
}

func (f repoFixture) createInquiry(t *testing.T, at time.Time, text string) *models.Inquiry {
	t.Helper()

	agentID := f.agent.ID
	inquiry := &models.Inquiry{
		UserID:          f.buyer.ID,
		PropertyID:      f.property.ID,
		AssignedAgentID: &agentID,
		Status:          models.StatusPending,
		CreatedAt:       at,
		LastMessageAt:   at,
	}
	first := &models.InquiryMessage{
		SenderID:   f.buyer.ID,
		SenderRole: models.RoleUser,
		Text:       text,
		CreatedAt:  at,
	}
	require.NoError(t, f.repo.Create(context.Background(), inquiry, first))
	return inquiry
}

func TestCreate_InsertsInquiryAndFirstMessage(t *testing.T) {
	f := setupRepoFixture(t)
	ctx := context.Background()
	now := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)

	inquiry := f.createInquiry(t, now, "Interested")
	assert.NotZero(t, inquiry.ID)

	loaded, err := f.repo.Find(ctx, inquiry.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, loaded.Status)
	assert.Equal(t, "Bea Buyer", loaded.User.Name, "owner should be preloaded")
	assert.Equal(t, "harbour-loft", loaded.Property.Title, "property should be preloaded")
	require.NotNil(t, loaded.AssignedAgent, "agent should be preloaded")
	assert.Equal(t, f.agent.ID, loaded.AssignedAgent.ID)

	messages, err := f.repo.FindMessages(ctx, inquiry.ID)
	require.NoError(t, err)
	require.Len(t, messages, 1)
	assert.Equal(t, "Interested", messages[0].Text)
	assert.Equal(t, inquiry.ID, messages[0].InquiryID)
}

func TestFind_NotFound(t *testing.T) {
	f := setupRepoFixture(t)

	_, err := f.repo.Find(context.Background(), 999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAppendMessage_UpdatesInquiryAtomically(t *testing.T) {
	f := setupRepoFixture(t)
	ctx := context.Background()
	created := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	inquiry := f.createInquiry(t, created, "Interested")

	replyAt := created.Add(time.Hour)
	inquiry.Status = models.StatusReplied
	inquiry.LastMessageAt = replyAt
	inquiry.LastReadAtStaff = &replyAt
	msg := &models.InquiryMessage{
		SenderID:   99,
		SenderRole: models.RoleAgent,
		Text:       "Let's schedule a viewing",
		CreatedAt:  replyAt,
	}
	require.NoError(t, f.repo.AppendMessage(ctx, inquiry, msg))

	loaded, err := f.repo.Find(ctx, inquiry.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusReplied, loaded.Status)
	assert.True(t, loaded.LastMessageAt.Equal(replyAt))
	require.NotNil(t, loaded.LastReadAtStaff)
	assert.True(t, loaded.LastReadAtStaff.Equal(replyAt))
	assert.Nil(t, loaded.LastReadAtUser, "the buyer watermark is not written by a staff message")
}

func TestAppendMessage_ClosedInquiryRollsBackInsert(t *testing.T) {
	f := setupRepoFixture(t)
	ctx := context.Background()
	created := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	inquiry := f.createInquiry(t, created, "Interested")

	// Closed by someone else after the caller loaded the row
	require.NoError(t, f.repo.UpdateStatus(ctx, inquiry.ID, models.StatusClosed))

	inquiry.Status = models.StatusPending
	inquiry.LastMessageAt = created.Add(time.Minute)
	msg := &models.InquiryMessage{
		SenderID:   f.buyer.ID,
		SenderRole: models.RoleUser,
		Text:       "Still there?",
		CreatedAt:  created.Add(time.Minute),
	}
	err := f.repo.AppendMessage(ctx, inquiry, msg)
	assert.ErrorIs(t, err, ErrInquiryClosed)

	messages, err := f.repo.FindMessages(ctx, inquiry.ID)
	require.NoError(t, err)
	assert.Len(t, messages, 1, "the rejected message must not be visible")

	loaded, err := f.repo.Find(ctx, inquiry.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusClosed, loaded.Status)
	assert.True(t, loaded.LastMessageAt.Equal(created))
}

func TestFindMessages_OrderedByCreationThenID(t *testing.T) {
	f := setupRepoFixture(t)
	ctx := context.Background()
	created := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	inquiry := f.createInquiry(t, created, "first")

	sameInstant := created.Add(time.Minute)
	for _, text := range []string{"second", "third"} {
		inquiry.LastMessageAt = sameInstant
		msg := &models.InquiryMessage{SenderID: f.buyer.ID, SenderRole: models.RoleUser, Text: text, CreatedAt: sameInstant}
		require.NoError(t, f.repo.AppendMessage(ctx, inquiry, msg))
	}

	messages, err := f.repo.FindMessages(ctx, inquiry.ID)
	require.NoError(t, err)
	require.Len(t, messages, 3)
	assert.Equal(t, "first", messages[0].Text)
	assert.Equal(t, "second", messages[1].Text)
	assert.Equal(t, "third", messages[2].Text)

	last, err := f.repo.LastMessage(ctx, inquiry.ID)
	require.NoError(t, err)
	require.NotNil(t, last)
	assert.Equal(t, "third", last.Text, "ties resolve by insertion order")
}

func TestLastMessage_EmptyLog(t *testing.T) {
	f := setupRepoFixture(t)

	last, err := f.repo.LastMessage(context.Background(), 12345)
	assert.NoError(t, err)
	assert.Nil(t, last)
}

func TestListings_OrderAndFilter(t *testing.T) {
	f := setupRepoFixture(t)
	ctx := context.Background()
	base := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)

	older := f.createInquiry(t, base, "older")
	newer := f.createInquiry(t, base.Add(time.Hour), "newer")
	require.NoError(t, f.repo.UpdateStatus(ctx, older.ID, models.StatusClosed))

	all, err := f.repo.FindAll(ctx, nil)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, newer.ID, all[0].ID, "most recent activity first")
	assert.Equal(t, older.ID, all[1].ID)

	closed := models.StatusClosed
	onlyClosed, err := f.repo.FindAll(ctx, &closed)
	require.NoError(t, err)
	require.Len(t, onlyClosed, 1)
	assert.Equal(t, older.ID, onlyClosed[0].ID)

	mine, err := f.repo.FindByOwner(ctx, f.buyer.ID, nil)
	require.NoError(t, err)
	assert.Len(t, mine, 2)

	assigned, err := f.repo.FindByAssignedAgent(ctx, f.agent.ID, nil)
	require.NoError(t, err)
	assert.Len(t, assigned, 2)

	none, err := f.repo.FindByAssignedAgent(ctx, f.agent.ID+100, nil)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestUpdateAssignmentAndMarkRead(t *testing.T) {
	f := setupRepoFixture(t)
	ctx := context.Background()
	base := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	inquiry := f.createInquiry(t, base, "hello")

	other := testutil.SeedAgent(t, f.db, "Bo Agent", nil)
	require.NoError(t, f.repo.UpdateAssignment(ctx, inquiry.ID, other.ID))

	readAt := base.Add(2 * time.Hour)
	require.NoError(t, f.repo.MarkRead(ctx, inquiry.ID, models.ViewerBuyer, readAt))

	loaded, err := f.repo.Find(ctx, inquiry.ID)
	require.NoError(t, err)
	assert.True(t, loaded.IsAssignedTo(other.ID))
	assert.Equal(t, models.StatusPending, loaded.Status, "reassignment keeps the status")
	require.NotNil(t, loaded.LastReadAtUser)
	assert.True(t, loaded.LastReadAtUser.Equal(readAt))
	assert.Nil(t, loaded.LastReadAtStaff)

	assert.ErrorIs(t, f.repo.UpdateAssignment(ctx, 999, other.ID), ErrNotFound)
	assert.ErrorIs(t, f.repo.UpdateStatus(ctx, 999, models.StatusClosed), ErrNotFound)
}
