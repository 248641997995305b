package ownership

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"connectrpc.com/connect"
	"github.com/google/uuid"
	"github.com/mcdev12/dynasty-ownership/go/internal/leagueclock"
	"github.com/mcdev12/dynasty-ownership/go/internal/models"
	"github.com/mcdev12/dynasty-ownership/go/internal/projector"
	"github.com/rs/zerolog/log"
	"google.golang.org/protobuf/types/known/structpb"
)

// OwnershipServiceName is the fully-qualified name of the ownership RPC service.
const OwnershipServiceName = "ownership.v1.OwnershipService"

// Procedure paths served by NewOwnershipServiceHandler.
const (
	AddPlayerProcedure       = "/" + OwnershipServiceName + "/AddPlayer"
	DropPlayerProcedure      = "/" + OwnershipServiceName + "/DropPlayer"
	GetOwnershipProcedure    = "/" + OwnershipServiceName + "/GetOwnership"
	ListRosterProcedure      = "/" + OwnershipServiceName + "/ListRoster"
	ReprojectPlayerProcedure = "/" + OwnershipServiceName + "/ReprojectPlayer"
	ListPlacementsProcedure  = "/" + OwnershipServiceName + "/ListPlacements"
	PlayerScheduleProcedure  = "/" + OwnershipServiceName + "/PlayerSchedule"
)

// OwnershipApp defines what the service layer needs from the arbitrator
type OwnershipApp interface {
	Add(ctx context.Context, req AddRequest) (*models.Ownership, error)
	Drop(ctx context.Context, req DropRequest) (*DropResult, error)
	GetOwnership(ctx context.Context, leagueID, playerID uuid.UUID) (*models.Ownership, error)
	ListRoster(ctx context.Context, leagueID, holderID uuid.UUID) ([]models.Ownership, error)
}

// PlacementApp defines what the service layer needs from the projector
type PlacementApp interface {
	Reproject(ctx context.Context, req projector.ProjectRequest) (int, error)
	Placements(ctx context.Context, leagueID, holderID uuid.UUID, date leagueclock.Date) ([]models.DailyPlacement, error)
	PlayerSchedule(ctx context.Context, leagueID, playerID uuid.UUID) ([]models.DailyPlacement, error)
}

// Service implements the OwnershipService Connect interface. Messages are
// google.protobuf.Struct with snake_case keys.
type Service struct {
	app        OwnershipApp
	placements PlacementApp
	clock      *leagueclock.Clock
}

// NewService creates a new ownership Connect service
func NewService(app OwnershipApp, placements PlacementApp, clock *leagueclock.Clock) *Service {
	return &Service{
		app:        app,
		placements: placements,
		clock:      clock,
	}
}

// NewOwnershipServiceHandler builds an http.Handler serving every procedure
// and returns the path prefix to mount it on.
func NewOwnershipServiceHandler(svc *Service, opts ...connect.HandlerOption) (string, http.Handler) {
	mux := http.NewServeMux()
	mux.Handle(AddPlayerProcedure, connect.NewUnaryHandler(AddPlayerProcedure, svc.AddPlayer, opts...))
	mux.Handle(DropPlayerProcedure, connect.NewUnaryHandler(DropPlayerProcedure, svc.DropPlayer, opts...))
	mux.Handle(GetOwnershipProcedure, connect.NewUnaryHandler(GetOwnershipProcedure, svc.GetOwnership, opts...))
	mux.Handle(ListRosterProcedure, connect.NewUnaryHandler(ListRosterProcedure, svc.ListRoster, opts...))
	mux.Handle(ReprojectPlayerProcedure, connect.NewUnaryHandler(ReprojectPlayerProcedure, svc.ReprojectPlayer, opts...))
	mux.Handle(ListPlacementsProcedure, connect.NewUnaryHandler(ListPlacementsProcedure, svc.ListPlacements, opts...))
	mux.Handle(PlayerScheduleProcedure, connect.NewUnaryHandler(PlayerScheduleProcedure, svc.PlayerSchedule, opts...))
	return "/" + OwnershipServiceName + "/", mux
}

// AddPlayer claims a free agent
func (s *Service) AddPlayer(ctx context.Context, req *connect.Request[structpb.Struct]) (*connect.Response[structpb.Struct], error) {
	ids, err := parseIDs(req.Msg, "league_id", "player_id", "holder_id")
	if err != nil {
		return nil, connect.NewError(connect.CodeInvalidArgument, err)
	}
	slot := parseSlot(req.Msg)

	record, err := s.app.Add(ctx, AddRequest{LeagueID: ids[0], PlayerID: ids[1], HolderID: ids[2], Slot: slot})
	if err != nil {
		return nil, toConnectError(err)
	}

	return structResponse(map[string]any{"ownership": ownershipToMap(record)})
}

// DropPlayer releases a player from the caller's roster
func (s *Service) DropPlayer(ctx context.Context, req *connect.Request[structpb.Struct]) (*connect.Response[structpb.Struct], error) {
	ids, err := parseIDs(req.Msg, "league_id", "player_id", "holder_id")
	if err != nil {
		return nil, connect.NewError(connect.CodeInvalidArgument, err)
	}

	result, err := s.app.Drop(ctx, DropRequest{LeagueID: ids[0], PlayerID: ids[1], HolderID: ids[2]})
	if err != nil {
		return nil, toConnectError(err)
	}

	out := map[string]any{"outcome": string(result.Outcome)}
	if result.ReleaseDate != nil {
		out["release_date"] = result.ReleaseDate.String()
	}
	return structResponse(out)
}

// GetOwnership reports who holds a player. Free agents return free_agent=true.
func (s *Service) GetOwnership(ctx context.Context, req *connect.Request[structpb.Struct]) (*connect.Response[structpb.Struct], error) {
	ids, err := parseIDs(req.Msg, "league_id", "player_id")
	if err != nil {
		return nil, connect.NewError(connect.CodeInvalidArgument, err)
	}

	record, err := s.app.GetOwnership(ctx, ids[0], ids[1])
	if err != nil {
		return nil, toConnectError(err)
	}
	if record == nil {
		return structResponse(map[string]any{"free_agent": true})
	}
	return structResponse(map[string]any{"free_agent": false, "ownership": ownershipToMap(record)})
}

// ListRoster lists a manager's ON_TEAM and WAIVER players
func (s *Service) ListRoster(ctx context.Context, req *connect.Request[structpb.Struct]) (*connect.Response[structpb.Struct], error) {
	ids, err := parseIDs(req.Msg, "league_id", "holder_id")
	if err != nil {
		return nil, connect.NewError(connect.CodeInvalidArgument, err)
	}

	records, err := s.app.ListRoster(ctx, ids[0], ids[1])
	if err != nil {
		return nil, toConnectError(err)
	}

	items := make([]any, 0, len(records))
	for i := range records {
		items = append(items, ownershipToMap(&records[i]))
	}
	return structResponse(map[string]any{"ownerships": items})
}

// ReprojectPlayer regenerates placements for a rostered player
func (s *Service) ReprojectPlayer(ctx context.Context, req *connect.Request[structpb.Struct]) (*connect.Response[structpb.Struct], error) {
	ids, err := parseIDs(req.Msg, "league_id", "player_id", "holder_id")
	if err != nil {
		return nil, connect.NewError(connect.CodeInvalidArgument, err)
	}
	if err := validateIDs(ids[0], ids[1], ids[2]); err != nil {
		return nil, connect.NewError(connect.CodeInvalidArgument, err)
	}
	slot := parseSlot(req.Msg)

	written, err := s.placements.Reproject(ctx, projector.ProjectRequest{LeagueID: ids[0], PlayerID: ids[1], HolderID: ids[2], Slot: slot})
	if err != nil {
		return nil, toConnectError(err)
	}
	return structResponse(map[string]any{"rows_written": written})
}

// ListPlacements lists a manager's placements for a date, today by default
func (s *Service) ListPlacements(ctx context.Context, req *connect.Request[structpb.Struct]) (*connect.Response[structpb.Struct], error) {
	ids, err := parseIDs(req.Msg, "league_id", "holder_id")
	if err != nil {
		return nil, connect.NewError(connect.CodeInvalidArgument, err)
	}
	if ids[0] == uuid.Nil || ids[1] == uuid.Nil {
		return nil, connect.NewError(connect.CodeInvalidArgument, errors.New("league_id and holder_id are required"))
	}

	date := s.clock.Today()
	if raw := stringField(req.Msg, "game_date"); raw != "" {
		if date, err = leagueclock.ParseDate(raw); err != nil {
			return nil, connect.NewError(connect.CodeInvalidArgument, err)
		}
	}

	placements, err := s.placements.Placements(ctx, ids[0], ids[1], date)
	if err != nil {
		return nil, toConnectError(err)
	}

	items := make([]any, 0, len(placements))
	for _, p := range placements {
		items = append(items, map[string]any{
			"player_id": p.PlayerID.String(),
			"game_date": p.GameDate.String(),
			"slot":      string(p.Slot),
		})
	}
	return structResponse(map[string]any{"game_date": date.String(), "placements": items})
}

// PlayerSchedule returns a player's placement for every projected day
func (s *Service) PlayerSchedule(ctx context.Context, req *connect.Request[structpb.Struct]) (*connect.Response[structpb.Struct], error) {
	ids, err := parseIDs(req.Msg, "league_id", "player_id")
	if err != nil {
		return nil, connect.NewError(connect.CodeInvalidArgument, err)
	}
	if ids[0] == uuid.Nil || ids[1] == uuid.Nil {
		return nil, connect.NewError(connect.CodeInvalidArgument, errors.New("league_id and player_id are required"))
	}

	placements, err := s.placements.PlayerSchedule(ctx, ids[0], ids[1])
	if err != nil {
		return nil, toConnectError(err)
	}

	items := make([]any, 0, len(placements))
	for _, p := range placements {
		items = append(items, map[string]any{
			"holder_id": p.HolderID.String(),
			"game_date": p.GameDate.String(),
			"slot":      string(p.Slot),
		})
	}
	return structResponse(map[string]any{"placements": items})
}

// toConnectError maps arbitrator errors onto Connect codes.
func toConnectError(err error) error {
	var storeErr *StoreError
	switch {
	case errors.Is(err, ErrValidation):
		return connect.NewError(connect.CodeInvalidArgument, err)
	case errors.Is(err, ErrOnWaivers):
		return connect.NewError(connect.CodeFailedPrecondition, err)
	case errors.Is(err, ErrAlreadyOwned):
		return connect.NewError(connect.CodeAlreadyExists, err)
	case errors.Is(err, ErrRaceLost):
		return connect.NewError(connect.CodeAborted, err)
	case errors.Is(err, ErrNotOwned), errors.Is(err, projector.ErrNotRostered):
		return connect.NewError(connect.CodeNotFound, err)
	case errors.Is(err, ErrNotYourPlayer):
		return connect.NewError(connect.CodePermissionDenied, err)
	case errors.As(err, &storeErr):
		log.Error().Err(err).Str("op", storeErr.Op).Msg("ownership store failure")
		return connect.NewError(connect.CodeInternal, errors.New("internal storage error"))
	default:
		log.Error().Err(err).Msg("unexpected ownership service error")
		return connect.NewError(connect.CodeInternal, err)
	}
}

func parseIDs(msg *structpb.Struct, keys ...string) ([]uuid.UUID, error) {
	ids := make([]uuid.UUID, len(keys))
	for i, key := range keys {
		raw := stringField(msg, key)
		if raw == "" {
			continue
		}
		id, err := uuid.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", key, err)
		}
		ids[i] = id
	}
	return ids, nil
}

// parseSlot returns the requested slot, or nil when none was given or the
// value is not a known slot.
func parseSlot(msg *structpb.Struct) *models.Slot {
	raw := stringField(msg, "slot")
	if raw == "" {
		return nil
	}
	slot, err := models.ParseSlot(raw)
	if err != nil {
		log.Warn().Err(err).Msg("ignoring requested slot")
		return nil
	}
	return &slot
}

func stringField(msg *structpb.Struct, key string) string {
	if msg == nil {
		return ""
	}
	return msg.GetFields()[key].GetStringValue()
}

func ownershipToMap(o *models.Ownership) map[string]any {
	out := map[string]any{
		"league_id":   o.LeagueID.String(),
		"player_id":   o.PlayerID.String(),
		"holder_id":   o.HolderID.String(),
		"status":      string(o.Status),
		"acquired_at": o.AcquiredAt.UTC().Format(time.RFC3339),
	}
	if o.ReleaseDate != nil {
		out["release_date"] = o.ReleaseDate.String()
	}
	return out
}

func structResponse(fields map[string]any) (*connect.Response[structpb.Struct], error) {
	msg, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, connect.NewError(connect.CodeInternal, err)
	}
	return connect.NewResponse(msg), nil
}
