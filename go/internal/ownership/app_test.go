package ownership

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/mcdev12/dynasty-ownership/go/internal/leagueclock"
	"github.com/mcdev12/dynasty-ownership/go/internal/models"
	"github.com/mcdev12/dynasty-ownership/go/internal/projector"
	"github.com/mcdev12/dynasty-ownership/go/internal/storage/sqlite"
	"github.com/stretchr/testify/suite"
)

var kst = time.FixedZone("KST", 9*60*60)

type stubConfigs struct {
	cfg models.LeagueConfig
	err error
}

func (s *stubConfigs) ReadLeagueConfig(_ context.Context, _ uuid.UUID) (models.LeagueConfig, error) {
	return s.cfg, s.err
}

type activeStatuses struct{}

func (activeStatuses) LookupPlayerStatus(context.Context, uuid.UUID) models.PlayerStatus {
	return models.PlayerStatusActive
}

type recordingHook struct {
	mu     sync.Mutex
	events []Event
}

func (h *recordingHook) Name() string { return "recorder" }

func (h *recordingHook) OnCommit(_ context.Context, evt Event) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.events = append(h.events, evt)
	return nil
}

func (h *recordingHook) types() []models.TransactionType {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]models.TransactionType, 0, len(h.events))
	for _, e := range h.events {
		out = append(out, e.Type)
	}
	return out
}

// blindRepo hides existing records from the pre-check so every claim reaches
// the insert and the primary key has to arbitrate.
type blindRepo struct {
	Repository
}

func (blindRepo) GetOwnership(context.Context, uuid.UUID, uuid.UUID) (*models.Ownership, error) {
	return nil, models.ErrNotFound
}

type failingPurgeRepo struct {
	Repository
}

func (failingPurgeRepo) DeletePlacementsFrom(context.Context, uuid.UUID, uuid.UUID, uuid.UUID, leagueclock.Date) (int, error) {
	return 0, errors.New("placements table locked")
}

type brokenRepo struct {
	Repository
}

func (brokenRepo) GetOwnership(context.Context, uuid.UUID, uuid.UUID) (*models.Ownership, error) {
	return nil, errors.New("connection refused")
}

type OwnershipTestSuite struct {
	suite.Suite
	store     *sqlite.Store
	fakeClock *clockwork.FakeClock
	clock     *leagueclock.Clock
	configs   *stubConfigs
	projector *projector.App
	recorder  *recordingHook
	app       *App
	ctx       context.Context

	leagueID uuid.UUID
	playerID uuid.UUID
	managerA uuid.UUID
	managerB uuid.UUID
}

func (s *OwnershipTestSuite) SetupTest() {
	store, err := sqlite.Open(filepath.Join(s.T().TempDir(), "ownership.db"))
	s.Require().NoError(err)
	s.store = store

	// Noon on 2026-04-10 in the league timezone.
	s.fakeClock = clockwork.NewFakeClockAt(time.Date(2026, 4, 10, 3, 0, 0, 0, time.UTC))
	s.clock = leagueclock.New(s.fakeClock, kst)
	s.leagueID = uuid.New()
	s.playerID = uuid.New()
	s.managerA = uuid.New()
	s.managerB = uuid.New()
	s.configs = &stubConfigs{cfg: models.LeagueConfig{
		LeagueID:    s.leagueID,
		WaiverDays:  2,
		SeasonStart: leagueclock.MustParseDate("2026-03-28"),
		SeasonEnd:   leagueclock.MustParseDate("2026-09-30"),
	}}
	s.projector = projector.NewApp(store, s.configs, activeStatuses{}, s.clock)
	s.recorder = &recordingHook{}
	s.app = s.newApp(store)
	s.ctx = context.Background()
}

func (s *OwnershipTestSuite) TearDownTest() {
	s.Require().NoError(s.store.Close())
}

func TestOwnershipSuite(t *testing.T) {
	suite.Run(t, new(OwnershipTestSuite))
}

func (s *OwnershipTestSuite) newApp(repo Repository, extra ...Hook) *App {
	hooks := append([]Hook{s.recorder, ProjectorHook(s.projector)}, extra...)
	return NewApp(repo, s.configs, s.clock, hooks...)
}

func (s *OwnershipTestSuite) add(holder uuid.UUID) (*models.Ownership, error) {
	return s.app.Add(s.ctx, AddRequest{LeagueID: s.leagueID, PlayerID: s.playerID, HolderID: holder})
}

func (s *OwnershipTestSuite) drop(holder uuid.UUID) (*DropResult, error) {
	return s.app.Drop(s.ctx, DropRequest{LeagueID: s.leagueID, PlayerID: s.playerID, HolderID: holder})
}

func (s *OwnershipTestSuite) placements() []models.DailyPlacement {
	rows, err := s.store.ListPlacementsForPlayer(s.ctx, s.leagueID, s.playerID)
	s.Require().NoError(err)
	return rows
}

func (s *OwnershipTestSuite) stored() *models.Ownership {
	o, err := s.app.GetOwnership(s.ctx, s.leagueID, s.playerID)
	s.Require().NoError(err)
	return o
}

func (s *OwnershipTestSuite) TestAddClaimsFreeAgent() {
	record, err := s.add(s.managerA)
	s.Require().NoError(err)
	s.Equal(models.OwnershipStatusOnTeam, record.Status)
	s.Equal(s.managerA, record.HolderID)
	s.Nil(record.ReleaseDate)

	stored := s.stored()
	s.Require().NotNil(stored)
	s.Equal(s.managerA, stored.HolderID)
	s.True(stored.AcquiredAt.Equal(s.fakeClock.Now()))

	s.Equal([]models.TransactionType{models.TransactionTypeAdd}, s.recorder.types())
}

func (s *OwnershipTestSuite) TestAddProjectsRestOfSeasonOnBench() {
	_, err := s.add(s.managerA)
	s.Require().NoError(err)

	rows := s.placements()
	s.Require().Len(rows, 174)
	s.Equal("2026-04-10", rows[0].GameDate.String())
	s.Equal("2026-09-30", rows[173].GameDate.String())
	for _, r := range rows {
		s.Equal(models.SlotBench, r.Slot)
	}
}

func (s *OwnershipTestSuite) TestAddRejectsOwnedPlayer() {
	_, err := s.add(s.managerA)
	s.Require().NoError(err)

	_, err = s.add(s.managerA)
	s.ErrorIs(err, ErrOwnedBySelf)
	s.ErrorIs(err, ErrAlreadyOwned)

	_, err = s.add(s.managerB)
	s.ErrorIs(err, ErrOwnedByOther)
	s.ErrorIs(err, ErrAlreadyOwned)
	s.NotEqual(ErrOwnedBySelf.Error(), ErrOwnedByOther.Error())

	s.Equal(s.managerA, s.stored().HolderID)
}

func (s *OwnershipTestSuite) TestValidationHappensBeforeStoreAccess() {
	app := NewApp(brokenRepo{}, s.configs, s.clock)

	_, err := app.Add(s.ctx, AddRequest{PlayerID: s.playerID, HolderID: s.managerA})
	s.ErrorIs(err, ErrValidation)

	_, err = app.Drop(s.ctx, DropRequest{LeagueID: s.leagueID, PlayerID: s.playerID})
	s.ErrorIs(err, ErrValidation)
}

func (s *OwnershipTestSuite) TestUnknownSlotFallsBackToAutomaticPlacement() {
	bad := models.Slot("IR")
	record, err := s.app.Add(s.ctx, AddRequest{LeagueID: s.leagueID, PlayerID: s.playerID, HolderID: s.managerA, Slot: &bad})
	s.Require().NoError(err)
	s.Equal(s.managerA, record.HolderID)

	rows := s.placements()
	s.Require().Len(rows, 174)
	for _, r := range rows {
		s.Equal(models.SlotBench, r.Slot)
	}
}

func (s *OwnershipTestSuite) TestRequestedSlotIgnoresCase() {
	slot := models.Slot("reserve")
	_, err := s.app.Add(s.ctx, AddRequest{LeagueID: s.leagueID, PlayerID: s.playerID, HolderID: s.managerA, Slot: &slot})
	s.Require().NoError(err)

	rows := s.placements()
	s.Require().NotEmpty(rows)
	for _, r := range rows {
		s.Equal(models.SlotReserve, r.Slot)
	}
}

func (s *OwnershipTestSuite) TestStoreErrorsPropagate() {
	app := NewApp(brokenRepo{Repository: s.store}, s.configs, s.clock)

	_, err := app.Add(s.ctx, AddRequest{LeagueID: s.leagueID, PlayerID: s.playerID, HolderID: s.managerA})
	var storeErr *StoreError
	s.Require().ErrorAs(err, &storeErr)
	s.Equal("get ownership", storeErr.Op)

	_, err = app.Drop(s.ctx, DropRequest{LeagueID: s.leagueID, PlayerID: s.playerID, HolderID: s.managerA})
	s.ErrorAs(err, &storeErr)
}

func (s *OwnershipTestSuite) TestUniqueConstraintDecidesWhenPrecheckMisses() {
	app := s.newApp(blindRepo{Repository: s.store})

	_, err := app.Add(s.ctx, AddRequest{LeagueID: s.leagueID, PlayerID: s.playerID, HolderID: s.managerA})
	s.Require().NoError(err)

	_, err = app.Add(s.ctx, AddRequest{LeagueID: s.leagueID, PlayerID: s.playerID, HolderID: s.managerB})
	s.ErrorIs(err, ErrRaceLost)
	s.NotErrorIs(err, ErrAlreadyOwned)

	// The loser neither overwrote the winner nor emitted a transaction.
	s.Equal(s.managerA, s.stored().HolderID)
	s.Equal([]models.TransactionType{models.TransactionTypeAdd}, s.recorder.types())
}

func (s *OwnershipTestSuite) TestConcurrentClaimsExactlyOneWins() {
	for _, tc := range []struct {
		name string
		repo Repository
	}{
		{name: "with precheck", repo: s.store},
		{name: "constraint only", repo: blindRepo{Repository: s.store}},
	} {
		s.Run(tc.name, func() {
			playerID := uuid.New()
			app := NewApp(tc.repo, s.configs, s.clock)

			const claimants = 16
			var (
				wg        sync.WaitGroup
				mu        sync.Mutex
				winners   []uuid.UUID
				rejection []error
			)
			start := make(chan struct{})
			for i := 0; i < claimants; i++ {
				holder := uuid.New()
				wg.Add(1)
				go func() {
					defer wg.Done()
					<-start
					_, err := app.Add(s.ctx, AddRequest{LeagueID: s.leagueID, PlayerID: playerID, HolderID: holder})
					mu.Lock()
					defer mu.Unlock()
					if err == nil {
						winners = append(winners, holder)
						return
					}
					rejection = append(rejection, err)
				}()
			}
			close(start)
			wg.Wait()

			s.Require().Len(winners, 1)
			s.Len(rejection, claimants-1)
			for _, err := range rejection {
				s.True(errors.Is(err, ErrAlreadyOwned) || errors.Is(err, ErrRaceLost), "unexpected error: %v", err)
			}

			stored, err := s.store.GetOwnership(s.ctx, s.leagueID, playerID)
			s.Require().NoError(err)
			s.Equal(winners[0], stored.HolderID)
		})
	}
}

func (s *OwnershipTestSuite) TestSameDayDropDeletesRecord() {
	_, err := s.add(s.managerA)
	s.Require().NoError(err)

	s.fakeClock.Advance(6 * time.Hour)
	result, err := s.drop(s.managerA)
	s.Require().NoError(err)
	s.Equal(DropOutcomeDeleted, result.Outcome)
	s.Nil(result.ReleaseDate)

	s.Nil(s.stored())
	s.Empty(s.placements())
	s.Equal([]models.TransactionType{models.TransactionTypeAdd, models.TransactionTypeDrop}, s.recorder.types())

	// Free agent immediately: anyone may claim again.
	_, err = s.add(s.managerB)
	s.NoError(err)
}

func (s *OwnershipTestSuite) TestCrossDayDropWaives() {
	_, err := s.add(s.managerA)
	s.Require().NoError(err)

	s.fakeClock.Advance(24 * time.Hour)
	result, err := s.drop(s.managerA)
	s.Require().NoError(err)
	s.Equal(DropOutcomeWaived, result.Outcome)
	s.Require().NotNil(result.ReleaseDate)
	s.Equal("2026-04-13", result.ReleaseDate.String())

	stored := s.stored()
	s.Require().NotNil(stored)
	s.Equal(models.OwnershipStatusWaiver, stored.Status)
	s.Equal("2026-04-13", stored.ReleaseDate.String())
	s.True(stored.AcquiredAt.Equal(s.fakeClock.Now()))
}

func (s *OwnershipTestSuite) TestMidnightInLeagueTimezoneSplitsDays() {
	// 23:50 KST on 2026-04-10.
	s.fakeClock = clockwork.NewFakeClockAt(time.Date(2026, 4, 10, 14, 50, 0, 0, time.UTC))
	s.clock = leagueclock.New(s.fakeClock, kst)
	s.projector = projector.NewApp(s.store, s.configs, activeStatuses{}, s.clock)
	s.app = s.newApp(s.store)

	_, err := s.add(s.managerA)
	s.Require().NoError(err)

	// Twenty minutes later it is already 2026-04-11 for the league, while UTC
	// still reads 2026-04-10.
	s.fakeClock.Advance(20 * time.Minute)
	s.Equal(10, s.fakeClock.Now().UTC().Day())

	result, err := s.drop(s.managerA)
	s.Require().NoError(err)
	s.Equal(DropOutcomeWaived, result.Outcome)
	s.Equal("2026-04-13", result.ReleaseDate.String())
}

func (s *OwnershipTestSuite) TestDropPurgesOnlyFuturePlacements() {
	_, err := s.add(s.managerA)
	s.Require().NoError(err)

	s.fakeClock.Advance(72 * time.Hour)
	_, err = s.drop(s.managerA)
	s.Require().NoError(err)

	rows := s.placements()
	s.Require().Len(rows, 3)
	for _, r := range rows {
		s.True(r.GameDate.Before(leagueclock.MustParseDate("2026-04-13")), "unexpected row on %s", r.GameDate)
	}
}

func (s *OwnershipTestSuite) TestDropFallsBackToDefaultWaiverDays() {
	_, err := s.add(s.managerA)
	s.Require().NoError(err)

	s.configs.err = errors.New("league settings unreadable")
	s.fakeClock.Advance(48 * time.Hour)

	result, err := s.drop(s.managerA)
	s.Require().NoError(err)
	s.Equal("2026-04-14", result.ReleaseDate.String())
}

func (s *OwnershipTestSuite) TestDropContinuesWhenPurgeFails() {
	app := s.newApp(failingPurgeRepo{Repository: s.store})

	_, err := app.Add(s.ctx, AddRequest{LeagueID: s.leagueID, PlayerID: s.playerID, HolderID: s.managerA})
	s.Require().NoError(err)

	result, err := app.Drop(s.ctx, DropRequest{LeagueID: s.leagueID, PlayerID: s.playerID, HolderID: s.managerA})
	s.Require().NoError(err)
	s.Equal(DropOutcomeDeleted, result.Outcome)
	s.Nil(s.stored())
}

func (s *OwnershipTestSuite) TestDropRejections() {
	_, err := s.drop(s.managerA)
	s.ErrorIs(err, ErrNotOwned)

	_, err = s.add(s.managerA)
	s.Require().NoError(err)

	_, err = s.drop(s.managerB)
	s.ErrorIs(err, ErrNotYourPlayer)

	s.fakeClock.Advance(24 * time.Hour)
	_, err = s.drop(s.managerA)
	s.Require().NoError(err)

	_, err = s.drop(s.managerA)
	s.ErrorIs(err, ErrNotOwned)
}

func (s *OwnershipTestSuite) TestWaiverBlocksClaimsUntilReleaseDate() {
	_, err := s.add(s.managerA)
	s.Require().NoError(err)
	s.fakeClock.Advance(24 * time.Hour)
	_, err = s.drop(s.managerA)
	s.Require().NoError(err)

	// 2026-04-12: still frozen.
	s.fakeClock.Advance(24 * time.Hour)
	_, err = s.add(s.managerB)
	s.ErrorIs(err, ErrOnWaivers)
	s.ErrorIs(err, ErrAlreadyOwned)

	// 2026-04-13: release date reached, the waiver is cleared on claim.
	s.fakeClock.Advance(24 * time.Hour)
	record, err := s.add(s.managerB)
	s.Require().NoError(err)
	s.Equal(s.managerB, record.HolderID)
	s.Equal(models.OwnershipStatusOnTeam, s.stored().Status)
}

func (s *OwnershipTestSuite) TestHookFailuresNeverReachCaller() {
	var ranAfter bool
	failing := NewHook("failing", func(context.Context, Event) error { return errors.New("log sink down") })
	panicking := NewHook("panicking", func(context.Context, Event) error { panic("boom") })
	after := NewHook("after", func(context.Context, Event) error { ranAfter = true; return nil })
	app := s.newApp(s.store, failing, panicking, after)

	_, err := app.Add(s.ctx, AddRequest{LeagueID: s.leagueID, PlayerID: s.playerID, HolderID: s.managerA})
	s.Require().NoError(err)
	s.True(ranAfter)
	s.Equal(s.managerA, s.stored().HolderID)
}

func (s *OwnershipTestSuite) TestProjectionFailureKeepsOwnership() {
	s.configs.err = errors.New("league config unavailable")

	record, err := s.add(s.managerA)
	s.Require().NoError(err)
	s.NotNil(record)
	s.Empty(s.placements())
	s.Equal(s.managerA, s.stored().HolderID)

	// The repair path fills in the placements once config is back.
	s.configs.err = nil
	written, err := s.projector.Reproject(s.ctx, projector.ProjectRequest{LeagueID: s.leagueID, PlayerID: s.playerID, HolderID: s.managerA})
	s.Require().NoError(err)
	s.Equal(174, written)
}

func (s *OwnershipTestSuite) TestHooksRunAfterCallerCancels() {
	ctx, cancel := context.WithCancel(s.ctx)
	var hookErr error
	observer := NewHook("observer", func(ctx context.Context, _ Event) error {
		hookErr = ctx.Err()
		return nil
	})
	app := NewApp(s.store, s.configs, s.clock, NewHook("cancel", func(context.Context, Event) error {
		cancel()
		return nil
	}), observer)

	_, err := app.Add(ctx, AddRequest{LeagueID: s.leagueID, PlayerID: s.playerID, HolderID: s.managerA})
	s.Require().NoError(err)
	s.NoError(hookErr)
}

func (s *OwnershipTestSuite) TestListRoster() {
	other := uuid.New()
	_, err := s.add(s.managerA)
	s.Require().NoError(err)
	_, err = s.app.Add(s.ctx, AddRequest{LeagueID: s.leagueID, PlayerID: other, HolderID: s.managerA})
	s.Require().NoError(err)

	s.fakeClock.Advance(24 * time.Hour)
	_, err = s.app.Drop(s.ctx, DropRequest{LeagueID: s.leagueID, PlayerID: other, HolderID: s.managerA})
	s.Require().NoError(err)

	roster, err := s.app.ListRoster(s.ctx, s.leagueID, s.managerA)
	s.Require().NoError(err)
	s.Require().Len(roster, 2)

	statuses := map[uuid.UUID]models.OwnershipStatus{}
	for _, o := range roster {
		statuses[o.PlayerID] = o.Status
	}
	s.Equal(models.OwnershipStatusOnTeam, statuses[s.playerID])
	s.Equal(models.OwnershipStatusWaiver, statuses[other])

	empty, err := s.app.ListRoster(s.ctx, s.leagueID, s.managerB)
	s.Require().NoError(err)
	s.Empty(empty)
}
