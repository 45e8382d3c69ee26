package teams

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"careroster/internal/domain/people"
	"careroster/internal/requestctx"
)

const (
	MsgMissingName    = "missing required fields"
	MsgInvalidMembers = "invalid team members"
)

// Invalidator drops cached copies of people records.
type Invalidator interface {
	Invalidate(ctx context.Context, ids ...string) error
}

type Service struct {
	Store   StoreAPI
	Records Invalidator
	Log     *zap.Logger
}

func NewService(store StoreAPI, records Invalidator, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{Store: store, Records: records, Log: log}
}

func requireCompany(companyID string) error {
	if strings.TrimSpace(companyID) == "" {
		return people.NewValidationError(people.MsgMissingFields, "companyId")
	}
	return nil
}

func (s *Service) List(ctx context.Context, companyID string) ([]TeamView, error) {
	if err := requireCompany(companyID); err != nil {
		return nil, err
	}
	teams, err := s.Store.List(ctx, companyID)
	if err != nil {
		return nil, err
	}
	return s.withMembers(ctx, teams)
}

func (s *Service) Get(ctx context.Context, companyID, id string) (*TeamView, error) {
	if err := requireCompany(companyID); err != nil {
		return nil, err
	}
	team, err := s.Store.Get(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	views, err := s.withMembers(ctx, []Team{*team})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

func (s *Service) withMembers(ctx context.Context, teams []Team) ([]TeamView, error) {
	ids := make([]string, 0, len(teams))
	for _, team := range teams {
		ids = append(ids, team.ID)
	}
	members, err := s.Store.Members(ctx, ids)
	if err != nil {
		return nil, err
	}
	byTeam := make(map[string][]Member, len(teams))
	for _, m := range members {
		byTeam[m.TeamID] = append(byTeam[m.TeamID], m)
	}

	views := make([]TeamView, 0, len(teams))
	for _, team := range teams {
		list := byTeam[team.ID]
		if list == nil {
			list = []Member{}
		}
		views = append(views, TeamView{Team: team, Members: list})
	}
	return views, nil
}

func uniqueIDs(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func (s *Service) Create(ctx context.Context, companyID string, in CreateInput) (*TeamView, error) {
	if err := requireCompany(companyID); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, people.NewValidationError(MsgMissingName, "name")
	}

	memberIDs := uniqueIDs(in.MemberIDs)
	team := &Team{CompanyID: companyID, Name: name}
	if err := s.Store.Create(ctx, team, memberIDs); err != nil {
		if errors.Is(err, ErrInvalidMembers) {
			return nil, people.NewValidationError(MsgInvalidMembers, "members")
		}
		return nil, err
	}
	s.invalidate(ctx, memberIDs)

	return s.Get(ctx, companyID, team.ID)
}

func (s *Service) Delete(ctx context.Context, companyID, id string) error {
	if err := requireCompany(companyID); err != nil {
		return err
	}
	memberIDs, err := s.Store.Delete(ctx, companyID, id)
	if err != nil {
		return err
	}
	s.invalidate(ctx, memberIDs)
	return nil
}

// invalidate drops cached member records so their work details show the
// new team assignment.
func (s *Service) invalidate(ctx context.Context, ids []string) {
	if s.Records == nil || len(ids) == 0 {
		return
	}
	if err := s.Records.Invalidate(ctx, ids...); err != nil {
		requestctx.Logger(ctx, s.Log).Warn("team member cache invalidate failed", zap.Strings("member_ids", ids), zap.Error(err))
	}
}
