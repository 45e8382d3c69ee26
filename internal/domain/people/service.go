package people

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"careroster/internal/requestctx"
)

type Service struct {
	Store    StoreAPI
	Cache    *RecordCache
	Resolver *Resolver
	Log      *zap.Logger
	Now      func() time.Time
}

func NewService(store StoreAPI, recordCache *RecordCache, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		Store:    store,
		Cache:    recordCache,
		Resolver: NewResolver(store, recordCache, log),
		Log:      log,
		Now:      time.Now,
	}
}

type PublicInfoInput struct {
	GeneralInfo    string      `json:"generalInfo"`
	NeedToKnowInfo []InfoEntry `json:"needToKnowInfo"`
	UsefulInfo     []InfoEntry `json:"usefulInfo"`
}

func (in PublicInfoInput) row() *PublicInformation {
	return &PublicInformation{
		GeneralInfo:    strings.TrimSpace(in.GeneralInfo),
		NeedToKnowInfo: in.NeedToKnowInfo,
		UsefulInfo:     in.UsefulInfo,
	}
}

// CreateInput creates a staff record, or a client record when Role is
// "client". Personal details are given inline or by PersonalDetailsID.
type CreateInput struct {
	Role              string           `json:"role"`
	SubRoles          string           `json:"subRoles"`
	CompanyID         string           `json:"companyId"`
	SubscriptionEnd   *time.Time       `json:"-"`
	PersonalDetailsID *string          `json:"personalDetailsId,omitempty"`
	PersonalDetails   *PersonalInput   `json:"personalDetails,omitempty"`
	WorkDetails       *WorkInput       `json:"workDetails,omitempty"`
	PublicInformation *PublicInfoInput `json:"publicInformation,omitempty"`
}

func (in CreateInput) Kind() Kind {
	if strings.EqualFold(strings.TrimSpace(in.Role), RoleClient) {
		return KindClient
	}
	return KindStaff
}

type StaffPersonal struct {
	UserID string `json:"userId"`
	PersonalDetails
}

type UpdateInput struct {
	SubRoles          *string          `json:"subRoles,omitempty"`
	PersonalDetails   *PersonalInput   `json:"personalDetails,omitempty"`
	WorkDetails       *WorkInput       `json:"workDetails,omitempty"`
	PublicInformation *PublicInfoInput `json:"publicInformation,omitempty"`
}

func (s *Service) now() time.Time {
	if s.Now == nil {
		return time.Now()
	}
	return s.Now()
}

// BuildUser validates a creation payload and returns the row to insert.
func (s *Service) BuildUser(in CreateInput) (*User, error) {
	if strings.TrimSpace(in.CompanyID) == "" {
		return nil, NewValidationError(MsgMissingFields, "companyId")
	}
	kind := in.Kind()
	now := s.now()

	user := &User{
		SubRoles:        strings.TrimSpace(in.SubRoles),
		CompanyID:       strings.TrimSpace(in.CompanyID),
		SubscriptionEnd: in.SubscriptionEnd,
	}

	switch {
	case in.PersonalDetails != nil:
		pd, err := ValidatePersonal(*in.PersonalDetails, now)
		if err != nil {
			return nil, err
		}
		user.PersonalDetails = &pd
	case in.PersonalDetailsID != nil && strings.TrimSpace(*in.PersonalDetailsID) != "":
		id := strings.TrimSpace(*in.PersonalDetailsID)
		user.PersonalDetailsID = &id
	default:
		_, err := ValidatePersonal(PersonalInput{}, now)
		return nil, err
	}

	if kind == KindClient {
		if in.WorkDetails != nil {
			return nil, NewValidationError(MsgWorkNotApplicable, "workDetails")
		}
		user.Role = RoleClient
		if in.PublicInformation != nil {
			user.PublicInformation = in.PublicInformation.row()
		}
		return user, nil
	}

	if in.PublicInformation != nil {
		return nil, NewValidationError(MsgPublicInfoNotStaff, "publicInformation")
	}
	var work WorkInput
	if in.WorkDetails != nil {
		work = *in.WorkDetails
	}
	wd, err := ValidateWork(work, now)
	if err != nil {
		return nil, err
	}
	user.WorkDetails = &wd
	user.Role = wd.Role
	if role := strings.TrimSpace(in.Role); role != "" {
		canon, ok := canonical(role, StaffRoles)
		if !ok {
			return nil, NewValidationError(MsgInvalidRole, "role")
		}
		user.Role = canon
	}
	return user, nil
}

func (s *Service) Create(ctx context.Context, in CreateInput) (Record, error) {
	user, err := s.BuildUser(in)
	if err != nil {
		return Record{}, err
	}
	return s.Insert(ctx, user)
}

// Insert stores a prepared row and returns the resolved record, written
// through to the cache.
func (s *Service) Insert(ctx context.Context, user *User) (Record, error) {
	if err := s.Store.Create(ctx, user); err != nil {
		return Record{}, err
	}
	rec, err := s.Resolver.Resolve(ctx, user.ID, true)
	if err != nil {
		return Record{}, err
	}
	return rec, nil
}

func (s *Service) Get(ctx context.Context, id string, skipCache bool) (Record, error) {
	return s.Resolver.Resolve(ctx, id, skipCache)
}

func (s *Service) Update(ctx context.Context, id string, in UpdateInput) (Record, error) {
	current, err := s.Resolver.Resolve(ctx, id, false)
	if err != nil {
		return Record{}, err
	}

	var changes RecordChanges
	now := s.now()
	if in.SubRoles != nil {
		sub := strings.TrimSpace(*in.SubRoles)
		changes.SubRoles = &sub
	}
	if in.PersonalDetails != nil {
		pd, err := ValidatePersonal(*in.PersonalDetails, now)
		if err != nil {
			return Record{}, err
		}
		changes.Personal = &pd
	}
	if in.WorkDetails != nil {
		if current.Kind == KindClient {
			return Record{}, NewValidationError(MsgWorkNotApplicable, "workDetails")
		}
		wd, err := ValidateWork(*in.WorkDetails, now)
		if err != nil {
			return Record{}, err
		}
		changes.Work = &wd
	}
	if in.PublicInformation != nil {
		if current.Kind == KindStaff {
			return Record{}, NewValidationError(MsgPublicInfoNotStaff, "publicInformation")
		}
		changes.PublicInformation = in.PublicInformation.row()
	}

	return s.apply(ctx, id, changes)
}

func (s *Service) UpdatePersonal(ctx context.Context, id string, in PersonalInput) (Record, error) {
	if _, err := s.Resolver.Resolve(ctx, id, false); err != nil {
		return Record{}, err
	}
	pd, err := ValidatePersonal(in, s.now())
	if err != nil {
		return Record{}, err
	}
	return s.apply(ctx, id, RecordChanges{Personal: &pd})
}

// UpdateWork changes the work details of a staff record. Client ids resolve
// as not found.
func (s *Service) UpdateWork(ctx context.Context, id string, in WorkInput) (Record, error) {
	if _, err := s.GetStaff(ctx, id, false); err != nil {
		return Record{}, err
	}
	wd, err := ValidateWork(in, s.now())
	if err != nil {
		return Record{}, err
	}
	return s.apply(ctx, id, RecordChanges{Work: &wd})
}

// apply commits changes, drops every cached copy and reloads the record from
// the database, repopulating the matching key.
func (s *Service) apply(ctx context.Context, id string, changes RecordChanges) (Record, error) {
	if !changes.Empty() {
		if err := s.Store.UpdateRecord(ctx, id, changes); err != nil {
			return Record{}, err
		}
	}
	if changes.PublicInformation != nil {
		logCacheErr(s.Log, "public information invalidate failed", id, s.Cache.dropPublicInfo(ctx, id))
	}
	return s.Resolver.Resolve(ctx, id, true)
}

func (s *Service) GetStaff(ctx context.Context, id string, skipCache bool) (*Staff, error) {
	rec, err := s.Resolver.Resolve(ctx, id, skipCache)
	if err != nil {
		return nil, err
	}
	if rec.Kind != KindStaff {
		return nil, ErrNotFound
	}
	return rec.Staff, nil
}

func (s *Service) Archive(ctx context.Context, id string) error {
	if err := s.Store.Archive(ctx, id); err != nil {
		return err
	}
	logCacheErr(s.Log, "cache invalidate failed", id, s.Cache.Invalidate(ctx, id))
	logCacheErr(s.Log, "public information invalidate failed", id, s.Cache.dropPublicInfo(ctx, id))
	return nil
}

// List returns one page of non-archived records for a company and writes the
// page through to the cache in a single batch.
func (s *Service) List(ctx context.Context, q ListQuery) (Page, error) {
	q = q.normalize()
	q.CompanyID = strings.TrimSpace(q.CompanyID)
	if q.CompanyID == "" {
		return Page{}, NewValidationError(MsgMissingFields, "companyId")
	}

	users, total, err := s.Store.List(ctx, q)
	if err != nil {
		return Page{}, err
	}

	records := make([]Record, 0, len(users))
	for i := range users {
		rec, err := recordFromUser(&users[i])
		if err != nil {
			requestctx.Logger(ctx, s.Log).Warn("skipping malformed record", zap.String("record_id", users[i].ID), zap.Error(err))
			continue
		}
		records = append(records, rec)
	}

	if err := s.Cache.PutMany(ctx, records); err != nil {
		requestctx.Logger(ctx, s.Log).Warn("cache list population failed", zap.Int("records", len(records)), zap.Error(err))
	}

	return Page{Records: records, Meta: NewPageMeta(total, q.Page, q.Limit)}, nil
}

// ListPersonal pages the personal details of a company's staff. Each entry
// carries the owning record id.
func (s *Service) ListPersonal(ctx context.Context, q ListQuery) ([]StaffPersonal, PageMeta, error) {
	q.Kind = KindStaff
	page, err := s.List(ctx, q)
	if err != nil {
		return nil, PageMeta{}, err
	}
	out := make([]StaffPersonal, 0, len(page.Records))
	for _, rec := range page.Records {
		out = append(out, StaffPersonal{UserID: rec.ID(), PersonalDetails: rec.Profile().PersonalDetails})
	}
	return out, page.Meta, nil
}

func (s *Service) CreatePersonalDetails(ctx context.Context, in PersonalInput) (*PersonalDetails, error) {
	pd, err := ValidatePersonal(in, s.now())
	if err != nil {
		return nil, err
	}
	if err := s.Store.CreatePersonalDetails(ctx, &pd); err != nil {
		return nil, err
	}
	return &pd, nil
}

func (s *Service) requireClient(ctx context.Context, userID string) error {
	rec, err := s.Resolver.Resolve(ctx, userID, false)
	if err != nil {
		return err
	}
	if rec.Kind != KindClient {
		return NewValidationError(MsgPublicInfoNotStaff, "userId")
	}
	return nil
}

// GetPublicInformation reads a client's public information through its own
// cache key.
func (s *Service) GetPublicInformation(ctx context.Context, userID string) (*PublicInformation, error) {
	useCache := s.Cache.enabled()
	if useCache {
		info, ok, err := s.Cache.getPublicInfo(ctx, userID)
		if err != nil {
			logCacheErr(s.Log, "public information lookup failed", userID, err)
			useCache = false
		} else if ok {
			return info, nil
		}
	}

	if err := s.requireClient(ctx, userID); err != nil {
		return nil, err
	}
	info, err := s.Store.FindPublicInformation(ctx, userID)
	if err != nil {
		return nil, err
	}
	if useCache {
		logCacheErr(s.Log, "public information backfill failed", userID, s.Cache.putPublicInfo(ctx, userID, info))
	}
	return info, nil
}

// SavePublicInformation creates or replaces a client's public information.
func (s *Service) SavePublicInformation(ctx context.Context, userID string, in PublicInfoInput) (*PublicInformation, error) {
	if err := s.requireClient(ctx, userID); err != nil {
		return nil, err
	}
	info := in.row()
	info.StaffID = userID
	if err := s.Store.SavePublicInformation(ctx, info); err != nil {
		return nil, err
	}

	logCacheErr(s.Log, "cache invalidate failed", userID, s.Cache.Invalidate(ctx, userID))
	saved, err := s.Store.FindPublicInformation(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return info, nil
		}
		return nil, err
	}
	logCacheErr(s.Log, "public information refresh failed", userID, s.Cache.putPublicInfo(ctx, userID, saved))
	return saved, nil
}
