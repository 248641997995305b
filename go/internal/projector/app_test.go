package projector

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/mcdev12/dynasty-ownership/go/internal/leagueclock"
	"github.com/mcdev12/dynasty-ownership/go/internal/models"
	"github.com/mcdev12/dynasty-ownership/go/internal/projector/mocks"
	"github.com/mcdev12/dynasty-ownership/go/internal/storage/sqlite"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
)

var kst = time.FixedZone("KST", 9*60*60)

type ProjectorTestSuite struct {
	suite.Suite
	mockCtrl     *gomock.Controller
	mockConfigs  *mocks.MockLeagueConfigReader
	mockStatuses *mocks.MockStatusLookup
	store        *sqlite.Store
	fakeClock    *clockwork.FakeClock
	app          *App
	ctx          context.Context

	leagueID uuid.UUID
	playerID uuid.UUID
	holderID uuid.UUID
	cfg      models.LeagueConfig
}

func (s *ProjectorTestSuite) SetupTest() {
	s.mockCtrl = gomock.NewController(s.T())
	s.mockConfigs = mocks.NewMockLeagueConfigReader(s.mockCtrl)
	s.mockStatuses = mocks.NewMockStatusLookup(s.mockCtrl)

	store, err := sqlite.Open(filepath.Join(s.T().TempDir(), "projector.db"))
	s.Require().NoError(err)
	s.store = store

	// 03:00 UTC is noon on 2026-04-10 in the league timezone.
	s.fakeClock = clockwork.NewFakeClockAt(time.Date(2026, 4, 10, 3, 0, 0, 0, time.UTC))
	s.app = NewApp(store, s.mockConfigs, s.mockStatuses, leagueclock.New(s.fakeClock, kst))
	s.ctx = context.Background()

	s.leagueID = uuid.New()
	s.playerID = uuid.New()
	s.holderID = uuid.New()
	s.cfg = models.LeagueConfig{
		LeagueID:    s.leagueID,
		WaiverDays:  2,
		SeasonStart: leagueclock.MustParseDate("2026-03-28"),
		SeasonEnd:   leagueclock.MustParseDate("2026-09-30"),
	}
}

func (s *ProjectorTestSuite) TearDownTest() {
	s.Require().NoError(s.store.Close())
}

func TestProjectorSuite(t *testing.T) {
	suite.Run(t, new(ProjectorTestSuite))
}

func (s *ProjectorTestSuite) request() ProjectRequest {
	return ProjectRequest{LeagueID: s.leagueID, PlayerID: s.playerID, HolderID: s.holderID}
}

func (s *ProjectorTestSuite) enableReserve(capacity int) {
	s.cfg.AllowDirectReserve = true
	s.cfg.ReserveCapacity = capacity
}

func (s *ProjectorTestSuite) placementsFor(playerID uuid.UUID) []models.DailyPlacement {
	rows, err := s.store.ListPlacementsForPlayer(s.ctx, s.leagueID, playerID)
	s.Require().NoError(err)
	return rows
}

func (s *ProjectorTestSuite) TestProjectDefaultsToBenchForRestOfSeason() {
	s.mockConfigs.EXPECT().ReadLeagueConfig(gomock.Any(), s.leagueID).Return(s.cfg, nil)

	written, err := s.app.Project(s.ctx, s.request())
	s.Require().NoError(err)
	s.Equal(174, written)

	rows := s.placementsFor(s.playerID)
	s.Require().Len(rows, 174)
	s.Equal("2026-04-10", rows[0].GameDate.String())
	s.Equal("2026-09-30", rows[len(rows)-1].GameDate.String())
	for _, r := range rows {
		s.Equal(models.SlotBench, r.Slot)
		s.Equal(s.holderID, r.HolderID)
	}
}

func (s *ProjectorTestSuite) TestProjectIsIdempotent() {
	s.mockConfigs.EXPECT().ReadLeagueConfig(gomock.Any(), s.leagueID).Return(s.cfg, nil).Times(2)

	_, err := s.app.Project(s.ctx, s.request())
	s.Require().NoError(err)
	_, err = s.app.Project(s.ctx, s.request())
	s.Require().NoError(err)

	s.Len(s.placementsFor(s.playerID), 174)
}

func (s *ProjectorTestSuite) TestProjectStartsAtSeasonStartWhenPreseason() {
	s.cfg.SeasonStart = leagueclock.MustParseDate("2026-05-01")
	s.mockConfigs.EXPECT().ReadLeagueConfig(gomock.Any(), s.leagueID).Return(s.cfg, nil)

	written, err := s.app.Project(s.ctx, s.request())
	s.Require().NoError(err)
	s.Equal(153, written)

	rows := s.placementsFor(s.playerID)
	s.Require().NotEmpty(rows)
	s.Equal("2026-05-01", rows[0].GameDate.String())
}

func (s *ProjectorTestSuite) TestProjectAfterSeasonEndWritesNothing() {
	s.cfg.SeasonEnd = leagueclock.MustParseDate("2026-04-09")
	s.mockConfigs.EXPECT().ReadLeagueConfig(gomock.Any(), s.leagueID).Return(s.cfg, nil)

	written, err := s.app.Project(s.ctx, s.request())
	s.Require().NoError(err)
	s.Zero(written)
	s.Empty(s.placementsFor(s.playerID))
}

func (s *ProjectorTestSuite) TestProjectFailsWithoutLeagueConfig() {
	s.mockConfigs.EXPECT().ReadLeagueConfig(gomock.Any(), s.leagueID).Return(models.LeagueConfig{}, errors.New("boom"))

	_, err := s.app.Project(s.ctx, s.request())
	s.Error(err)
	s.Empty(s.placementsFor(s.playerID))
}

func (s *ProjectorTestSuite) TestEligiblePlayerGoesToReserve() {
	s.enableReserve(1)
	s.mockConfigs.EXPECT().ReadLeagueConfig(gomock.Any(), s.leagueID).Return(s.cfg, nil)
	s.mockStatuses.EXPECT().LookupPlayerStatus(gomock.Any(), s.playerID).Return(models.PlayerStatusMinors)

	_, err := s.app.Project(s.ctx, s.request())
	s.Require().NoError(err)

	rows := s.placementsFor(s.playerID)
	s.Require().Len(rows, 174)
	for _, r := range rows {
		s.Equal(models.SlotReserve, r.Slot)
	}
}

func (s *ProjectorTestSuite) TestUnknownStatusIsEligible() {
	s.enableReserve(2)
	s.mockConfigs.EXPECT().ReadLeagueConfig(gomock.Any(), s.leagueID).Return(s.cfg, nil)
	s.mockStatuses.EXPECT().LookupPlayerStatus(gomock.Any(), s.playerID).Return(models.PlayerStatus("Day-To-Day"))

	_, err := s.app.Project(s.ctx, s.request())
	s.Require().NoError(err)
	s.Equal(models.SlotReserve, s.placementsFor(s.playerID)[0].Slot)
}

func (s *ProjectorTestSuite) TestActivePlayerGoesToBench() {
	s.enableReserve(3)
	s.mockConfigs.EXPECT().ReadLeagueConfig(gomock.Any(), s.leagueID).Return(s.cfg, nil)
	s.mockStatuses.EXPECT().LookupPlayerStatus(gomock.Any(), s.playerID).Return(models.PlayerStatusActive)

	_, err := s.app.Project(s.ctx, s.request())
	s.Require().NoError(err)
	s.Equal(models.SlotBench, s.placementsFor(s.playerID)[0].Slot)
}

func (s *ProjectorTestSuite) TestReserveCapacityRespected() {
	s.enableReserve(1)

	// The manager already uses the only reserve slot today.
	other := uuid.New()
	_, err := s.store.UpsertPlacements(s.ctx, []models.DailyPlacement{{
		LeagueID: s.leagueID,
		PlayerID: other,
		HolderID: s.holderID,
		GameDate: leagueclock.MustParseDate("2026-04-10"),
		Slot:     models.SlotReserve,
	}})
	s.Require().NoError(err)

	s.mockConfigs.EXPECT().ReadLeagueConfig(gomock.Any(), s.leagueID).Return(s.cfg, nil)
	s.mockStatuses.EXPECT().LookupPlayerStatus(gomock.Any(), s.playerID).Return(models.PlayerStatusDisabled)

	_, err = s.app.Project(s.ctx, s.request())
	s.Require().NoError(err)

	rows := s.placementsFor(s.playerID)
	s.Require().Len(rows, 174)
	for _, r := range rows {
		s.Equal(models.SlotBench, r.Slot)
	}
}

func (s *ProjectorTestSuite) TestCapacityCheckOnlyLooksAtToday() {
	s.enableReserve(1)

	// A reserve row tomorrow does not count against today's capacity.
	_, err := s.store.UpsertPlacements(s.ctx, []models.DailyPlacement{{
		LeagueID: s.leagueID,
		PlayerID: uuid.New(),
		HolderID: s.holderID,
		GameDate: leagueclock.MustParseDate("2026-04-11"),
		Slot:     models.SlotReserve,
	}})
	s.Require().NoError(err)

	s.mockConfigs.EXPECT().ReadLeagueConfig(gomock.Any(), s.leagueID).Return(s.cfg, nil)
	s.mockStatuses.EXPECT().LookupPlayerStatus(gomock.Any(), s.playerID).Return(models.PlayerStatusMinors)

	_, err = s.app.Project(s.ctx, s.request())
	s.Require().NoError(err)
	s.Equal(models.SlotReserve, s.placementsFor(s.playerID)[0].Slot)
}

func (s *ProjectorTestSuite) TestRetryKeepsReserveForSamePlayer() {
	s.enableReserve(1)
	s.mockConfigs.EXPECT().ReadLeagueConfig(gomock.Any(), s.leagueID).Return(s.cfg, nil).Times(2)
	s.mockStatuses.EXPECT().LookupPlayerStatus(gomock.Any(), s.playerID).Return(models.PlayerStatusMinors).Times(2)

	_, err := s.app.Project(s.ctx, s.request())
	s.Require().NoError(err)
	_, err = s.app.Project(s.ctx, s.request())
	s.Require().NoError(err)

	for _, r := range s.placementsFor(s.playerID) {
		s.Equal(models.SlotReserve, r.Slot)
	}
}

func (s *ProjectorTestSuite) TestExplicitSlotWins() {
	s.mockConfigs.EXPECT().ReadLeagueConfig(gomock.Any(), s.leagueID).Return(s.cfg, nil)

	slot := models.SlotReserve
	req := s.request()
	req.Slot = &slot

	_, err := s.app.Project(s.ctx, req)
	s.Require().NoError(err)
	s.Equal(models.SlotReserve, s.placementsFor(s.playerID)[0].Slot)
}

func (s *ProjectorTestSuite) TestInvalidSlotFallsBackToAutomaticDecision() {
	s.enableReserve(1)
	s.mockConfigs.EXPECT().ReadLeagueConfig(gomock.Any(), s.leagueID).Return(s.cfg, nil)
	s.mockStatuses.EXPECT().LookupPlayerStatus(gomock.Any(), s.playerID).Return(models.PlayerStatusMinors)

	slot := models.Slot("INJURED")
	req := s.request()
	req.Slot = &slot

	_, err := s.app.Project(s.ctx, req)
	s.Require().NoError(err)
	s.Equal(models.SlotReserve, s.placementsFor(s.playerID)[0].Slot)
}

func (s *ProjectorTestSuite) TestExplicitSlotIgnoresCase() {
	s.mockConfigs.EXPECT().ReadLeagueConfig(gomock.Any(), s.leagueID).Return(s.cfg, nil)

	slot := models.Slot("Bench")
	req := s.request()
	req.Slot = &slot

	_, err := s.app.Project(s.ctx, req)
	s.Require().NoError(err)
	s.Equal(models.SlotBench, s.placementsFor(s.playerID)[0].Slot)
}

func (s *ProjectorTestSuite) TestReprojectRequiresCurrentHolder() {
	_, err := s.app.Reproject(s.ctx, s.request())
	s.ErrorIs(err, ErrNotRostered)

	s.Require().NoError(s.store.InsertOwnership(s.ctx, models.Ownership{
		LeagueID:   s.leagueID,
		PlayerID:   s.playerID,
		HolderID:   uuid.New(),
		Status:     models.OwnershipStatusOnTeam,
		AcquiredAt: s.fakeClock.Now(),
	}))
	_, err = s.app.Reproject(s.ctx, s.request())
	s.ErrorIs(err, ErrNotRostered)
}

func (s *ProjectorTestSuite) TestReprojectRebuildsPlacements() {
	s.Require().NoError(s.store.InsertOwnership(s.ctx, models.Ownership{
		LeagueID:   s.leagueID,
		PlayerID:   s.playerID,
		HolderID:   s.holderID,
		Status:     models.OwnershipStatusOnTeam,
		AcquiredAt: s.fakeClock.Now(),
	}))
	s.mockConfigs.EXPECT().ReadLeagueConfig(gomock.Any(), s.leagueID).Return(s.cfg, nil)

	written, err := s.app.Reproject(s.ctx, s.request())
	s.Require().NoError(err)
	s.Equal(174, written)

	today, err := s.app.Placements(s.ctx, s.leagueID, s.holderID, leagueclock.MustParseDate("2026-04-10"))
	s.Require().NoError(err)
	s.Require().Len(today, 1)
	s.Equal(s.playerID, today[0].PlayerID)
}

func TestProjectionRange(t *testing.T) {
	cfg := models.LeagueConfig{
		SeasonStart: leagueclock.MustParseDate("2026-03-28"),
		SeasonEnd:   leagueclock.MustParseDate("2026-09-30"),
	}

	tests := []struct {
		name  string
		today string
		want  int
	}{
		{name: "mid season", today: "2026-04-10", want: 174},
		{name: "preseason starts at season start", today: "2026-03-01", want: 187},
		{name: "last day", today: "2026-09-30", want: 1},
		{name: "after season", today: "2026-10-01", want: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ProjectionRange(cfg, leagueclock.MustParseDate(tt.today))
			if len(got) != tt.want {
				t.Fatalf("ProjectionRange(%s) = %d dates, want %d", tt.today, len(got), tt.want)
			}
		})
	}

	if got := ProjectionRange(models.LeagueConfig{}, leagueclock.MustParseDate("2026-04-10")); got != nil {
		t.Fatalf("expected nil range without a season end, got %d dates", len(got))
	}
}
