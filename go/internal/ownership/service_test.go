package ownership

import (
	"context"
	"net/http"
	"net/http/httptest"
	"time"

	"connectrpc.com/connect"
	"github.com/google/uuid"
	"github.com/mcdev12/dynasty-ownership/go/internal/models"
	"google.golang.org/protobuf/types/known/structpb"
)

func (s *OwnershipTestSuite) newClients() (map[string]*connect.Client[structpb.Struct, structpb.Struct], func()) {
	path, handler := NewOwnershipServiceHandler(NewService(s.app, s.projector, s.clock))
	mux := http.NewServeMux()
	mux.Handle(path, handler)
	server := httptest.NewServer(mux)

	clients := map[string]*connect.Client[structpb.Struct, structpb.Struct]{}
	for _, procedure := range []string{
		AddPlayerProcedure,
		DropPlayerProcedure,
		GetOwnershipProcedure,
		ListRosterProcedure,
		ReprojectPlayerProcedure,
		ListPlacementsProcedure,
		PlayerScheduleProcedure,
	} {
		clients[procedure] = connect.NewClient[structpb.Struct, structpb.Struct](server.Client(), server.URL+procedure)
	}
	return clients, server.Close
}

func (s *OwnershipTestSuite) call(client *connect.Client[structpb.Struct, structpb.Struct], fields map[string]any) (*structpb.Struct, error) {
	msg, err := structpb.NewStruct(fields)
	s.Require().NoError(err)
	resp, err := client.CallUnary(context.Background(), connect.NewRequest(msg))
	if err != nil {
		return nil, err
	}
	return resp.Msg, nil
}

func (s *OwnershipTestSuite) TestServiceAddAndDrop() {
	clients, closeFn := s.newClients()
	defer closeFn()

	ids := map[string]any{
		"league_id": s.leagueID.String(),
		"player_id": s.playerID.String(),
		"holder_id": s.managerA.String(),
	}

	resp, err := s.call(clients[AddPlayerProcedure], ids)
	s.Require().NoError(err)
	ownership := resp.GetFields()["ownership"].GetStructValue()
	s.Equal("ON_TEAM", ownership.GetFields()["status"].GetStringValue())

	resp, err = s.call(clients[GetOwnershipProcedure], map[string]any{
		"league_id": s.leagueID.String(),
		"player_id": s.playerID.String(),
	})
	s.Require().NoError(err)
	s.False(resp.GetFields()["free_agent"].GetBoolValue())

	resp, err = s.call(clients[ListPlacementsProcedure], map[string]any{
		"league_id": s.leagueID.String(),
		"holder_id": s.managerA.String(),
	})
	s.Require().NoError(err)
	s.Equal("2026-04-10", resp.GetFields()["game_date"].GetStringValue())
	s.Len(resp.GetFields()["placements"].GetListValue().GetValues(), 1)

	s.fakeClock.Advance(24 * time.Hour)
	resp, err = s.call(clients[DropPlayerProcedure], ids)
	s.Require().NoError(err)
	s.Equal("WAIVED", resp.GetFields()["outcome"].GetStringValue())
	s.Equal("2026-04-13", resp.GetFields()["release_date"].GetStringValue())

	resp, err = s.call(clients[ListRosterProcedure], map[string]any{
		"league_id": s.leagueID.String(),
		"holder_id": s.managerA.String(),
	})
	s.Require().NoError(err)
	s.Len(resp.GetFields()["ownerships"].GetListValue().GetValues(), 1)
}

func (s *OwnershipTestSuite) TestServiceErrorCodes() {
	clients, closeFn := s.newClients()
	defer closeFn()

	ids := func(holder uuid.UUID) map[string]any {
		return map[string]any{
			"league_id": s.leagueID.String(),
			"player_id": s.playerID.String(),
			"holder_id": holder.String(),
		}
	}

	_, err := s.call(clients[AddPlayerProcedure], map[string]any{"league_id": "not-a-uuid"})
	s.Equal(connect.CodeInvalidArgument, connect.CodeOf(err))

	_, err = s.call(clients[AddPlayerProcedure], map[string]any{"league_id": s.leagueID.String()})
	s.Equal(connect.CodeInvalidArgument, connect.CodeOf(err))

	_, err = s.call(clients[DropPlayerProcedure], ids(s.managerA))
	s.Equal(connect.CodeNotFound, connect.CodeOf(err))

	_, err = s.call(clients[AddPlayerProcedure], ids(s.managerA))
	s.Require().NoError(err)

	_, err = s.call(clients[AddPlayerProcedure], ids(s.managerB))
	s.Equal(connect.CodeAlreadyExists, connect.CodeOf(err))
	s.Contains(err.Error(), "another manager owns this player")

	_, err = s.call(clients[DropPlayerProcedure], ids(s.managerB))
	s.Equal(connect.CodePermissionDenied, connect.CodeOf(err))

	_, err = s.call(clients[ReprojectPlayerProcedure], ids(s.managerB))
	s.Equal(connect.CodeNotFound, connect.CodeOf(err))

	s.fakeClock.Advance(24 * time.Hour)
	_, err = s.call(clients[DropPlayerProcedure], ids(s.managerA))
	s.Require().NoError(err)

	_, err = s.call(clients[AddPlayerProcedure], ids(s.managerB))
	s.Equal(connect.CodeFailedPrecondition, connect.CodeOf(err))
}

func (s *OwnershipTestSuite) TestServiceRaceLostIsAborted() {
	s.Equal(connect.CodeAborted, connect.CodeOf(toConnectError(ErrRaceLost)))
	s.Equal(connect.CodeInternal, connect.CodeOf(toConnectError(&StoreError{Op: "insert ownership", Err: context.DeadlineExceeded})))
}

func (s *OwnershipTestSuite) TestServiceAddWithUnknownSlot() {
	clients, closeFn := s.newClients()
	defer closeFn()

	_, err := s.call(clients[AddPlayerProcedure], map[string]any{
		"league_id": s.leagueID.String(),
		"player_id": s.playerID.String(),
		"holder_id": s.managerA.String(),
		"slot":      "IR",
	})
	s.Require().NoError(err)
	s.Equal(s.managerA, s.stored().HolderID)
	s.Equal(models.SlotBench, s.placements()[0].Slot)
}

func (s *OwnershipTestSuite) TestServicePlayerSchedule() {
	clients, closeFn := s.newClients()
	defer closeFn()

	_, err := s.add(s.managerA)
	s.Require().NoError(err)

	resp, err := s.call(clients[PlayerScheduleProcedure], map[string]any{
		"league_id": s.leagueID.String(),
		"player_id": s.playerID.String(),
	})
	s.Require().NoError(err)
	rows := resp.GetFields()["placements"].GetListValue().GetValues()
	s.Require().Len(rows, 174)
	first := rows[0].GetStructValue().GetFields()
	s.Equal("2026-04-10", first["game_date"].GetStringValue())
	s.Equal(s.managerA.String(), first["holder_id"].GetStringValue())
	s.Equal("BENCH", first["slot"].GetStringValue())

	_, err = s.call(clients[PlayerScheduleProcedure], map[string]any{"league_id": s.leagueID.String()})
	s.Equal(connect.CodeInvalidArgument, connect.CodeOf(err))
}
