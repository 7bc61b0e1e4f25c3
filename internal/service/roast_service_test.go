package service

import (
	"RoastMe/internal/api/config"
	"RoastMe/internal/api/dto"
	"RoastMe/internal/pkg/database"
	"RoastMe/internal/pkg/fetcher"
	"RoastMe/internal/pkg/llm"
	"RoastMe/internal/repository"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockGenerator struct {
	mock.Mock
}

func (m *MockGenerator) Generate(ctx context.Context, req llm.RoastRequest) (*llm.Result, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*llm.Result), args.Error(1)
}

type stubSnapshotter struct {
	snap *fetcher.Snapshot
	err  error
	urls []string
}

func (s *stubSnapshotter) Snapshot(_ context.Context, rawURL string) (*fetcher.Snapshot, error) {
	s.urls = append(s.urls, rawURL)
	return s.snap, s.err
}

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

type fixture struct {
	roastSvc     RoastService
	socialSvc    SocialService
	subscribeSvc SubscribeService
	subRepo      repository.SubscriberRepo
	statsRepo    repository.StatsRepo
	clock        *testClock
}

func newFixture(t *testing.T, gen llm.Generator, snapshotter PageSnapshotter) *fixture {
	t.Helper()
	clock := &testClock{now: time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)}
	db, err := database.Open("", database.WithClock(clock.Now))
	require.NoError(t, err)

	roastRepo := repository.NewRoastRepo(db)
	subRepo := repository.NewSubscriberRepo(db)
	statsRepo := repository.NewStatsRepo(db)
	socialSvc := NewSocialService(roastRepo, statsRepo)
	return &fixture{
		roastSvc:     NewRoastService(roastRepo, subRepo, socialSvc, gen, snapshotter),
		socialSvc:    socialSvc,
		subscribeSvc: NewSubscribeService(subRepo),
		subRepo:      subRepo,
		statsRepo:    statsRepo,
		clock:        clock,
	}
}

// fallbackChain 没有任何可用供应商，总是走本地兜底
func fallbackChain(t *testing.T) llm.Generator {
	t.Helper()
	prompts, err := llm.NewPrompts(config.PromptPathConfig{})
	require.NoError(t, err)
	return llm.NewChain(nil, prompts, config.LLMConfig{Retries: 2})
}

func TestGenerateRoast_InvalidInputNeverCallsProvider(t *testing.T) {
	gen := new(MockGenerator)
	f := newFixture(t, gen, nil)

	cases := []struct {
		name string
		in   dto.GenerateRoastDTO
		want error
	}{
		{"empty", dto.GenerateRoastDTO{Content: ""}, ErrContentInvalid},
		{"whitespace only", dto.GenerateRoastDTO{Content: "   \n\t "}, ErrContentInvalid},
		{"too short after trim", dto.GenerateRoastDTO{Content: "  ab  "}, ErrContentInvalid},
		{"too long", dto.GenerateRoastDTO{Content: strings.Repeat("x", 2001)}, ErrContentInvalid},
		{"bad type", dto.GenerateRoastDTO{Type: "poem", Content: "roses are red"}, ErrTypeInvalid},
		{"bad email", dto.GenerateRoastDTO{Content: "a valid idea", Email: "not-an-email"}, ErrEmailInvalid},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := tc.in
			_, err := f.roastSvc.GenerateRoast(context.Background(), &in)
			assert.ErrorIs(t, err, tc.want)
		})
	}

	gen.AssertNotCalled(t, "Generate", mock.Anything, mock.Anything)
	roasts, err := f.roastSvc.GetRecentRoasts(context.Background())
	require.NoError(t, err)
	assert.Empty(t, roasts)
}

func TestGenerateRoast_BoundaryLengthsAccepted(t *testing.T) {
	f := newFixture(t, fallbackChain(t), nil)

	for _, content := range []string{"abc", strings.Repeat("é", 2000)} {
		res, err := f.roastSvc.GenerateRoast(context.Background(), &dto.GenerateRoastDTO{Content: content})
		require.NoError(t, err)
		assert.Len(t, res.Points, 5)
	}
}

func TestGenerateRoast_FallbackEndToEnd(t *testing.T) {
	f := newFixture(t, fallbackChain(t), nil)

	res, err := f.roastSvc.GenerateRoast(context.Background(), &dto.GenerateRoastDTO{
		Type:    "description",
		Content: "A SaaS for scheduling meetings",
	})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(res.ID, "roast_"))
	assert.Len(t, res.Points, 5)
	assert.GreaterOrEqual(t, res.Score, 1)
	assert.LessOrEqual(t, res.Score, 4)
	assert.Equal(t, "description", res.Type)
	assert.Equal(t, "A SaaS for scheduling meetings", res.Content)
	require.NotNil(t, res.Social)
	assert.Equal(t, 1, res.Social.Today)
	assert.Equal(t, 1, res.Social.AllTime)

	stored, err := f.roastSvc.GetRoast(context.Background(), res.ID)
	require.NoError(t, err)
	assert.Equal(t, res.Title, stored.Title)
}

func TestGenerateRoast_DefaultsTypeAndTrimsContent(t *testing.T) {
	gen := new(MockGenerator)
	gen.On("Generate", mock.Anything, llm.RoastRequest{Type: "description", Content: "my startup"}).
		Return(&llm.Result{Roast: llm.Fallback("my startup"), Source: "mock"}, nil)
	f := newFixture(t, gen, nil)

	res, err := f.roastSvc.GenerateRoast(context.Background(), &dto.GenerateRoastDTO{Content: "  my startup \n"})
	require.NoError(t, err)
	assert.Equal(t, "description", res.Type)
	assert.Equal(t, "my startup", res.Content)
	gen.AssertExpectations(t)
}

func TestGenerateRoast_URLUsesPageSnapshot(t *testing.T) {
	snap := &stubSnapshotter{snap: &fetcher.Snapshot{Title: "MeetBot"}}
	gen := new(MockGenerator)
	gen.On("Generate", mock.Anything, llm.RoastRequest{Type: "url", Content: "https://meetbot.example", Context: "Title: MeetBot"}).
		Return(&llm.Result{Roast: llm.Fallback("x"), Source: "mock"}, nil)
	f := newFixture(t, gen, snap)

	_, err := f.roastSvc.GenerateRoast(context.Background(), &dto.GenerateRoastDTO{Type: "url", Content: "https://meetbot.example"})
	require.NoError(t, err)
	assert.Equal(t, []string{"https://meetbot.example"}, snap.urls)
	gen.AssertExpectations(t)
}

func TestGenerateRoast_SnapshotFailureIsIgnored(t *testing.T) {
	snap := &stubSnapshotter{err: errors.New("timeout")}
	gen := new(MockGenerator)
	gen.On("Generate", mock.Anything, llm.RoastRequest{Type: "url", Content: "https://down.example"}).
		Return(&llm.Result{Roast: llm.Fallback("x"), Source: "mock"}, nil)
	f := newFixture(t, gen, snap)

	_, err := f.roastSvc.GenerateRoast(context.Background(), &dto.GenerateRoastDTO{Type: "url", Content: "https://down.example"})
	require.NoError(t, err)
	gen.AssertExpectations(t)
}

func TestGenerateRoast_TerminalFailure(t *testing.T) {
	gen := new(MockGenerator)
	gen.On("Generate", mock.Anything, mock.Anything).Return(nil, llm.ErrExhausted)
	f := newFixture(t, gen, nil)

	_, err := f.roastSvc.GenerateRoast(context.Background(), &dto.GenerateRoastDTO{Content: "anything at all"})
	assert.ErrorIs(t, err, ErrGenerationUnavailable)

	stats, err := f.statsRepo.GetDailyStats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, stats.Count)
}

func TestGenerateRoast_ClientGoneIsNotAFault(t *testing.T) {
	gen := new(MockGenerator)
	gen.On("Generate", mock.Anything, mock.Anything).Return(nil, context.Canceled)
	f := newFixture(t, gen, nil)

	_, err := f.roastSvc.GenerateRoast(context.Background(), &dto.GenerateRoastDTO{Content: "anything at all"})
	assert.ErrorIs(t, err, ErrRequestCanceled)
	code, ok := ErrorStatus(err)
	assert.True(t, ok)
	assert.Equal(t, ClientClosedRequest, code)

	recent, err := f.roastSvc.GetRecentRoasts(context.Background())
	require.NoError(t, err)
	assert.Empty(t, recent)
}

func TestGenerateRoast_RegistersEmailOnce(t *testing.T) {
	f := newFixture(t, fallbackChain(t), nil)
	ctx := context.Background()

	for range 2 {
		_, err := f.roastSvc.GenerateRoast(ctx, &dto.GenerateRoastDTO{Content: "a todo app", Email: "Dev@Example.com"})
		require.NoError(t, err)
	}
	count, err := f.subRepo.CountSubscribers(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	sub, err := f.subRepo.GetSubscriberByEmail(ctx, "dev@example.com")
	require.NoError(t, err)
	require.NotNil(t, sub)
	assert.Len(t, sub.Code, 8)
}

func TestGenerateRoast_IDsAreUnique(t *testing.T) {
	f := newFixture(t, fallbackChain(t), nil)
	seen := map[string]bool{}
	for range 50 {
		res, err := f.roastSvc.GenerateRoast(context.Background(), &dto.GenerateRoastDTO{Content: "yet another app"})
		require.NoError(t, err)
		assert.False(t, seen[res.ID])
		seen[res.ID] = true
	}
}

func TestGetRoast_NotFound(t *testing.T) {
	f := newFixture(t, fallbackChain(t), nil)

	_, err := f.roastSvc.GetRoast(context.Background(), "roast_deadbeef")
	assert.ErrorIs(t, err, ErrRoastNotFound)
	_, err = f.roastSvc.GetRoast(context.Background(), "../etc/passwd")
	assert.ErrorIs(t, err, ErrRoastNotFound)
}

func TestGetRecentRoasts_NewestFirstCappedAt20(t *testing.T) {
	f := newFixture(t, fallbackChain(t), nil)
	var ids []string
	for range 25 {
		res, err := f.roastSvc.GenerateRoast(context.Background(), &dto.GenerateRoastDTO{Content: "another idea"})
		require.NoError(t, err)
		ids = append(ids, res.ID)
	}

	roasts, err := f.roastSvc.GetRecentRoasts(context.Background())
	require.NoError(t, err)
	require.Len(t, roasts, RecentRoastsLimit)
	assert.Equal(t, ids[24], roasts[0].ID)
	assert.Equal(t, ids[5], roasts[19].ID)
}

func TestDailyCounter_RollsOverAndReadsAreSideEffectFree(t *testing.T) {
	f := newFixture(t, fallbackChain(t), nil)
	ctx := context.Background()

	for range 3 {
		_, err := f.roastSvc.GenerateRoast(ctx, &dto.GenerateRoastDTO{Content: "day one idea"})
		require.NoError(t, err)
	}
	for range 5 {
		proof, err := f.socialSvc.GetSocialProof(ctx)
		require.NoError(t, err)
		assert.Equal(t, 3, proof.Today)
	}

	f.clock.Set(time.Date(2026, 3, 15, 0, 0, 1, 0, time.UTC))
	proof, err := f.socialSvc.GetSocialProof(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, proof.Today)
	assert.Equal(t, 3, proof.AllTime)

	res, err := f.roastSvc.GenerateRoast(ctx, &dto.GenerateRoastDTO{Content: "day two idea"})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Social.Today)
	assert.Equal(t, 4, res.Social.AllTime)
}
