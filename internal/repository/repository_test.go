package repository

import (
	"RoastMe/internal/model"
	"RoastMe/internal/pkg/database"
	"RoastMe/internal/pkg/util"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stepClock struct {
	now time.Time
}

func (c *stepClock) Now() time.Time { return c.now }

func newTestDB(t *testing.T) (*database.DB, *stepClock) {
	t.Helper()
	clk := &stepClock{now: time.Date(2026, 5, 20, 23, 0, 0, 0, time.UTC)}
	db, err := database.Open("", database.WithClock(clk.Now))
	require.NoError(t, err)
	return db, clk
}

func TestRoastRepo_CreateAndGet(t *testing.T) {
	db, _ := newTestDB(t)
	repo := NewRoastRepo(db)
	ctx := context.Background()

	roast := &model.Roast{Type: model.RoastTypeDescription, Content: "x", Title: "t", Points: []string{"a", "b"}, Score: 4}
	require.NoError(t, repo.CreateRoast(ctx, roast))
	assert.True(t, strings.HasPrefix(roast.ID, util.RoastIDPrefix))

	// 调用方修改入参不影响存储
	roast.Points[0] = "mutated"

	got, err := repo.GetRoastByID(ctx, roast.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, []string{"a", "b"}, got.Points)

	// 修改返回值也不影响存储
	got.Points[1] = "mutated"
	again, err := repo.GetRoastByID(ctx, roast.ID)
	require.NoError(t, err)
	assert.Equal(t, "b", again.Points[1])

	missing, err := repo.GetRoastByID(ctx, "roast_nope")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestRoastRepo_DuplicateIDIsRegenerated(t *testing.T) {
	db, _ := newTestDB(t)
	repo := NewRoastRepo(db)
	ctx := context.Background()

	require.NoError(t, repo.CreateRoast(ctx, &model.Roast{ID: "roast_fixed000"}))
	second := &model.Roast{ID: "roast_fixed000"}
	require.NoError(t, repo.CreateRoast(ctx, second))
	assert.NotEqual(t, "roast_fixed000", second.ID)

	count, err := repo.CountRoasts(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestRoastRepo_RecentNewestFirst(t *testing.T) {
	db, _ := newTestDB(t)
	repo := NewRoastRepo(db)
	ctx := context.Background()

	for i := range 5 {
		require.NoError(t, repo.CreateRoast(ctx, &model.Roast{Title: fmt.Sprintf("r%d", i)}))
	}

	recent, err := repo.GetRecentRoasts(ctx, 3)
	require.NoError(t, err)
	require.Len(t, recent, 3)
	assert.Equal(t, "r4", recent[0].Title)
	assert.Equal(t, "r2", recent[2].Title)

	all, err := repo.GetRecentRoasts(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, all, 5)
}

func TestStatsRepo_AdvanceAndRollover(t *testing.T) {
	db, clk := newTestDB(t)
	roasts := NewRoastRepo(db)
	stats := NewStatsRepo(db)
	ctx := context.Background()

	require.NoError(t, roasts.CreateRoast(ctx, &model.Roast{}))
	require.NoError(t, roasts.CreateRoast(ctx, &model.Roast{}))

	daily, err := stats.GetDailyStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, model.DailyStats{Date: "2026-05-20", Count: 2}, daily)

	rolled, err := stats.Rollover(ctx)
	require.NoError(t, err)
	assert.False(t, rolled)

	clk.now = clk.now.Add(2 * time.Hour)

	daily, err = stats.GetDailyStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, model.DailyStats{Date: "2026-05-21", Count: 0}, daily)
	// 读取不改写存储
	_ = db.View(func(doc *database.Document) error {
		assert.Equal(t, "2026-05-20", doc.Stats.Date)
		return nil
	})

	rolled, err = stats.Rollover(ctx)
	require.NoError(t, err)
	assert.True(t, rolled)
	_ = db.View(func(doc *database.Document) error {
		assert.Equal(t, model.DailyStats{Date: "2026-05-21"}, doc.Stats)
		return nil
	})

	require.NoError(t, roasts.CreateRoast(ctx, &model.Roast{}))
	daily, err = stats.GetDailyStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, daily.Count)
}

func TestSubscriberRepo_CreateDedupAndReferrals(t *testing.T) {
	db, _ := newTestDB(t)
	repo := NewSubscriberRepo(db)
	ctx := context.Background()

	owner, created, err := repo.CreateSubscriber(ctx, &model.Subscriber{Email: "owner@example.com"})
	require.NoError(t, err)
	assert.True(t, created)
	assert.Len(t, owner.Code, 8)

	dup, created, err := repo.CreateSubscriber(ctx, &model.Subscriber{Email: "OWNER@example.com"})
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, owner.Code, dup.Code)

	code := owner.Code
	_, _, err = repo.CreateSubscriber(ctx, &model.Subscriber{Email: "a@example.com", Referrer: &code})
	require.NoError(t, err)
	_, _, err = repo.CreateSubscriber(ctx, &model.Subscriber{Email: "b@example.com", Referrer: &code})
	require.NoError(t, err)

	n, err := repo.CountReferrals(ctx, code)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	total, err := repo.CountSubscribers(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, total)

	byCode, err := repo.GetSubscriberByCode(ctx, code)
	require.NoError(t, err)
	require.NotNil(t, byCode)
	assert.Equal(t, "owner@example.com", byCode.Email)

	byEmail, err := repo.GetSubscriberByEmail(ctx, "A@EXAMPLE.COM")
	require.NoError(t, err)
	require.NotNil(t, byEmail)
	require.NotNil(t, byEmail.Referrer)
	assert.Equal(t, code, *byEmail.Referrer)

	none, err := repo.GetSubscriberByCode(ctx, "NOTACODE")
	require.NoError(t, err)
	assert.Nil(t, none)
}

func TestCreate_FailedWriteLeavesStoreUnchanged(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.json")
	clk := &stepClock{now: time.Date(2026, 5, 20, 12, 0, 0, 0, time.UTC)}
	db, err := database.Open(path, database.WithClock(clk.Now))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, os.Mkdir(path+".tmp", 0o755))

	roasts := NewRoastRepo(db)
	subs := NewSubscriberRepo(db)
	stats := NewStatsRepo(db)
	ctx := context.Background()

	assert.Error(t, roasts.CreateRoast(ctx, &model.Roast{Title: "never stored"}))
	recent, err := roasts.GetRecentRoasts(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, recent)
	daily, err := stats.GetDailyStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, daily.Count)

	_, _, err = subs.CreateSubscriber(ctx, &model.Subscriber{Email: "fan@example.com"})
	assert.Error(t, err)
	found, err := subs.GetSubscriberByEmail(ctx, "fan@example.com")
	require.NoError(t, err)
	assert.Nil(t, found)

	// 写入恢复后可以正常保存，计数不会重复累加
	require.NoError(t, os.Remove(path+".tmp"))
	require.NoError(t, roasts.CreateRoast(ctx, &model.Roast{Title: "stored"}))
	daily, err = stats.GetDailyStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, daily.Count)
}

func TestStatsRepo_RolloverReportsWriteError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.json")
	clk := &stepClock{now: time.Date(2026, 5, 20, 23, 30, 0, 0, time.UTC)}
	db, err := database.Open(path, database.WithClock(clk.Now))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	stats := NewStatsRepo(db)
	require.NoError(t, NewRoastRepo(db).CreateRoast(context.Background(), &model.Roast{}))
	require.NoError(t, os.Mkdir(path+".tmp", 0o755))
	clk.now = clk.now.Add(time.Hour)

	rolled, err := stats.Rollover(context.Background())
	assert.Error(t, err)
	assert.False(t, rolled)
	_ = db.View(func(doc *database.Document) error {
		assert.Equal(t, model.DailyStats{Date: "2026-05-20", Count: 1}, doc.Stats)
		return nil
	})
}
