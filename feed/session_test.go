package feed

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"interaction-service/gesture"
	"interaction-service/model"
)

var t0 = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func testSession(records ...models.InteractionRecord) *Session {
	s := newSession(uuid.New(), gesture.DefaultDoubleTapWindow, func() time.Time { return t0 })
	s.Load(records)
	return s
}

func TestSession_DoubleTapTogglesLike(t *testing.T) {
	s := testSession(models.InteractionRecord{ID: "p1", LikeCount: 10})

	first, err := s.Tap("p1", 0)
	require.NoError(t, err)
	assert.Equal(t, gesture.ActionNone, first.Action)
	assert.False(t, first.HeartBurst)
	assert.Equal(t, int32(10), first.Record.LikeCount)

	second, err := s.Tap("p1", 200)
	require.NoError(t, err)
	assert.Equal(t, gesture.ActionToggleLike, second.Action)
	assert.True(t, second.HeartBurst)
	assert.Equal(t, int32(11), second.Record.LikeCount)
	assert.True(t, second.Record.LikedByViewer)

	// A second double tap unlikes.
	_, err = s.Tap("p1", 1000)
	require.NoError(t, err)
	third, err := s.Tap("p1", 1100)
	require.NoError(t, err)
	assert.True(t, third.HeartBurst)
	assert.Equal(t, int32(10), third.Record.LikeCount)
	assert.False(t, third.Record.LikedByViewer)
}

func TestSession_SlowTapsDoNothing(t *testing.T) {
	s := testSession(models.InteractionRecord{ID: "p1", LikeCount: 3})

	for _, ts := range []int64{0, 400, 800, 1200} {
		res, err := s.Tap("p1", ts)
		require.NoError(t, err)
		assert.False(t, res.HeartBurst)
	}

	rec, ok := s.Record("p1")
	require.True(t, ok)
	assert.Equal(t, int32(3), rec.LikeCount)
	assert.False(t, rec.Provisional)
}

func TestSession_UnknownTarget(t *testing.T) {
	s := testSession(models.InteractionRecord{ID: "p1"})

	_, err := s.Tap("missing", 0)
	assert.ErrorIs(t, err, ErrUnknownTarget)

	_, err = s.PressLike("missing")
	assert.ErrorIs(t, err, ErrUnknownTarget)

	_, err = s.AddComment("missing", "hi")
	assert.ErrorIs(t, err, ErrUnknownTarget)

	_, _, err = s.Reconcile(Authoritative{ID: "missing"})
	assert.ErrorIs(t, err, ErrUnknownTarget)
}

func TestSession_PressLike(t *testing.T) {
	s := testSession(models.InteractionRecord{ID: "p1", LikeCount: 1, LikedByViewer: true})

	rec, err := s.PressLike("p1")
	require.NoError(t, err)
	assert.Equal(t, int32(0), rec.LikeCount)
	assert.False(t, rec.LikedByViewer)
}

func TestSession_AddComment(t *testing.T) {
	s := testSession(models.InteractionRecord{ID: "p1", CommentCount: 1, Comments: []string{"old"}})

	_, err := s.AddComment("p1", "new")
	require.NoError(t, err)
	_, err = s.AddComment("p1", " ")
	assert.ErrorIs(t, err, models.ErrEmptyComment)

	rec, _ := s.Record("p1")
	assert.Equal(t, []string{"old", "new"}, rec.Comments)
	assert.Equal(t, int32(2), rec.CommentCount)
}

func TestSession_Reconcile(t *testing.T) {
	s := testSession(models.InteractionRecord{ID: "p1", LikeCount: 10, SyncedAt: t0})

	_, err := s.PressLike("p1")
	require.NoError(t, err)

	rec, applied, err := s.Reconcile(Authoritative{ID: "p1", LikeCount: 50, UpdatedAt: t0.Add(-time.Second)})
	require.NoError(t, err)
	assert.False(t, applied, "older server value must not win")
	assert.Equal(t, int32(11), rec.LikeCount)
	assert.True(t, rec.Provisional)

	rec, applied, err = s.Reconcile(Authoritative{
		ID:            "p1",
		LikeCount:     12,
		LikedByViewer: true,
		CommentCount:  4,
		UpdatedAt:     t0.Add(time.Second),
	})
	require.NoError(t, err)
	assert.True(t, applied)

	want := models.InteractionRecord{
		ID:            "p1",
		LikeCount:     12,
		LikedByViewer: true,
		CommentCount:  4,
		SyncedAt:      t0.Add(time.Second),
	}
	if diff := cmp.Diff(want, rec, cmpopts.EquateEmpty()); diff != "" {
		t.Fatalf("reconciled record mismatch (-want +got):\n%s", diff)
	}
}

func TestSession_LoadKeepsOrderAndMergesExisting(t *testing.T) {
	s := testSession(
		models.InteractionRecord{ID: "a", SyncedAt: t0},
		models.InteractionRecord{ID: "b", SyncedAt: t0},
	)
	_, err := s.AddComment("a", "local")
	require.NoError(t, err)

	s.Load([]models.InteractionRecord{
		{ID: "a", LikeCount: 5, CommentCount: 1, SyncedAt: t0.Add(time.Minute)},
		{ID: "c", SyncedAt: t0},
	})

	records := s.Records()
	require.Len(t, records, 3)
	assert.Equal(t, "a", records[0].ID)
	assert.Equal(t, "b", records[1].ID)
	assert.Equal(t, "c", records[2].ID)

	assert.Equal(t, int32(5), records[0].LikeCount)
	assert.Equal(t, []string{"local"}, records[0].Comments)
}

func TestSession_PendingTapSurvivesReload(t *testing.T) {
	s := testSession(models.InteractionRecord{ID: "p1", SyncedAt: t0})

	_, err := s.Tap("p1", 0)
	require.NoError(t, err)

	s.Load([]models.InteractionRecord{{ID: "p1", SyncedAt: t0}})

	res, err := s.Tap("p1", 120)
	require.NoError(t, err)
	assert.True(t, res.HeartBurst)
}

func TestSession_Remove(t *testing.T) {
	s := testSession(models.InteractionRecord{ID: "a"}, models.InteractionRecord{ID: "b"})

	_, err := s.Tap("a", 0)
	require.NoError(t, err)

	assert.True(t, s.Remove("a"))
	assert.False(t, s.Remove("a"))
	assert.Equal(t, 1, s.Len())

	_, pending := s.classifier.Pending("a")
	assert.False(t, pending)
}

func TestSession_RecordsAreCopies(t *testing.T) {
	s := testSession(models.InteractionRecord{ID: "p1", Comments: []string{"x"}})

	records := s.Records()
	records[0].Comments[0] = "mutated"
	records[0].LikeCount = 99

	rec, _ := s.Record("p1")
	assert.Equal(t, "x", rec.Comments[0])
	assert.Equal(t, int32(0), rec.LikeCount)
}
