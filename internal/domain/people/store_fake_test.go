package people

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// memStore is an in-memory StoreAPI with the same filtering rules as Store.
type memStore struct {
	mu       sync.Mutex
	users    map[string]*User
	personal map[string]*PersonalDetails
	work     map[string]*WorkDetails
	public   map[string]*PublicInformation
	clock    time.Time
	finds    int
}

func newMemStore() *memStore {
	return &memStore{
		users:    map[string]*User{},
		personal: map[string]*PersonalDetails{},
		work:     map[string]*WorkDetails{},
		public:   map[string]*PublicInformation{},
		clock:    time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func (m *memStore) tick() time.Time {
	m.clock = m.clock.Add(time.Second)
	return m.clock
}

func (m *memStore) emailTaken(email, exceptID string) bool {
	for id, pd := range m.personal {
		if pd.Email == email && id != exceptID {
			return true
		}
	}
	return false
}

func (m *memStore) hydrate(u *User) *User {
	out := *u
	out.PersonalDetails, out.WorkDetails, out.PublicInformation = nil, nil, nil
	if u.PersonalDetailsID != nil {
		if pd, ok := m.personal[*u.PersonalDetailsID]; ok {
			cp := *pd
			out.PersonalDetails = &cp
		}
	}
	if u.WorkDetailsID != nil {
		if wd, ok := m.work[*u.WorkDetailsID]; ok {
			cp := *wd
			out.WorkDetails = &cp
		}
	}
	if info, ok := m.public[u.ID]; ok {
		cp := *info
		out.PublicInformation = &cp
	}
	return &out
}

func isStaffRow(u *User) bool  { return u.Role != RoleClient && u.WorkDetailsID != nil }
func isClientRow(u *User) bool { return u.Role == RoleClient }

func (m *memStore) FindStaff(_ context.Context, id string) (*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.finds++
	u, ok := m.users[id]
	if !ok || u.Archived || !isStaffRow(u) {
		return nil, ErrNotFound
	}
	return m.hydrate(u), nil
}

func (m *memStore) FindClient(_ context.Context, id string) (*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.finds++
	u, ok := m.users[id]
	if !ok || u.Archived || !isClientRow(u) {
		return nil, ErrNotFound
	}
	out := m.hydrate(u)
	out.WorkDetails = nil
	return out, nil
}

func (m *memStore) Create(_ context.Context, user *User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if user.PersonalDetails != nil && m.emailTaken(user.PersonalDetails.Email, "") {
		return ErrConflict
	}
	if user.PersonalDetailsID != nil {
		if _, ok := m.personal[*user.PersonalDetailsID]; !ok {
			return ErrNotFound
		}
	}
	now := m.tick()
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	if user.PersonalDetails != nil {
		pd := *user.PersonalDetails
		pd.ID = uuid.NewString()
		m.personal[pd.ID] = &pd
		user.PersonalDetailsID = &pd.ID
	}
	if user.WorkDetails != nil {
		wd := *user.WorkDetails
		wd.ID = uuid.NewString()
		m.work[wd.ID] = &wd
		user.WorkDetailsID = &wd.ID
	}
	if user.PublicInformation != nil {
		info := *user.PublicInformation
		info.ID = uuid.NewString()
		info.StaffID = user.ID
		m.public[user.ID] = &info
	}
	row := *user
	row.CreatedAt, row.UpdatedAt = now, now
	row.PersonalDetails, row.WorkDetails, row.PublicInformation = nil, nil, nil
	m.users[row.ID] = &row
	return nil
}

func (m *memStore) CreatePersonalDetails(_ context.Context, pd *PersonalDetails) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.emailTaken(pd.Email, "") {
		return ErrConflict
	}
	pd.ID = uuid.NewString()
	cp := *pd
	m.personal[pd.ID] = &cp
	return nil
}

func (m *memStore) UpdateRecord(_ context.Context, id string, changes RecordChanges) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok || u.Archived {
		return ErrNotFound
	}
	if changes.SubRoles != nil {
		u.SubRoles = *changes.SubRoles
	}
	if changes.Personal != nil {
		exceptID := ""
		if u.PersonalDetailsID != nil {
			exceptID = *u.PersonalDetailsID
		}
		if m.emailTaken(changes.Personal.Email, exceptID) {
			return ErrConflict
		}
		pd := *changes.Personal
		if exceptID == "" {
			pd.ID = uuid.NewString()
			u.PersonalDetailsID = &pd.ID
		} else {
			pd.ID = exceptID
		}
		m.personal[pd.ID] = &pd
	}
	if changes.Work != nil {
		wd := *changes.Work
		if u.WorkDetailsID == nil {
			wd.ID = uuid.NewString()
			u.WorkDetailsID = &wd.ID
		} else {
			wd.ID = *u.WorkDetailsID
			if prev := m.work[wd.ID]; prev != nil && wd.TeamID == nil {
				wd.TeamID = prev.TeamID
			}
		}
		m.work[wd.ID] = &wd
		if u.Role != RoleClient {
			u.Role = wd.Role
		}
	}
	if changes.PublicInformation != nil {
		info := *changes.PublicInformation
		info.StaffID = id
		m.public[id] = &info
	}
	u.UpdatedAt = m.tick()
	return nil
}

func (m *memStore) Archive(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok || u.Archived {
		return ErrNotFound
	}
	u.Archived = true
	return nil
}

func (m *memStore) List(_ context.Context, q ListQuery) ([]User, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var matched []*User
	for _, u := range m.users {
		if u.CompanyID != q.CompanyID || u.Archived {
			continue
		}
		if q.Kind == KindStaff && !isStaffRow(u) {
			continue
		}
		if q.Kind == KindClient && !isClientRow(u) {
			continue
		}
		if q.UserRole == string(KindStaff) && u.Role == RoleClient {
			continue
		}
		if q.UserRole != "" && q.UserRole != string(KindStaff) && u.Role != q.UserRole {
			continue
		}
		full := m.hydrate(u)
		if q.Gender != "" && (full.PersonalDetails == nil || full.PersonalDetails.Gender == nil || *full.PersonalDetails.Gender != q.Gender) {
			continue
		}
		if q.Role != "" || q.EmploymentType != "" || q.TeamID != "" {
			wd := full.WorkDetails
			if wd == nil {
				continue
			}
			if q.Role != "" && wd.Role != q.Role {
				continue
			}
			if q.EmploymentType != "" && wd.EmploymentType != q.EmploymentType {
				continue
			}
			if q.TeamID != "" && (wd.TeamID == nil || *wd.TeamID != q.TeamID) {
				continue
			}
		}
		matched = append(matched, full)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].CreatedAt.After(matched[j].CreatedAt) })

	total := int64(len(matched))
	start := q.Offset()
	if start > len(matched) {
		start = len(matched)
	}
	end := start + q.Limit
	if end > len(matched) {
		end = len(matched)
	}
	out := make([]User, 0, end-start)
	for _, u := range matched[start:end] {
		out = append(out, *u)
	}
	return out, total, nil
}

func (m *memStore) FindPublicInformation(_ context.Context, userID string) (*PublicInformation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	info, ok := m.public[userID]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *info
	return &cp, nil
}

func (m *memStore) SavePublicInformation(_ context.Context, info *PublicInformation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *info
	if existing, ok := m.public[info.StaffID]; ok {
		cp.ID = existing.ID
	} else {
		cp.ID = uuid.NewString()
	}
	m.public[info.StaffID] = &cp
	return nil
}

// setFullName edits a row out of band, bypassing cache invalidation.
func (m *memStore) setFullName(id, name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u := m.users[id]
	m.personal[*u.PersonalDetailsID].FullName = name
}

func (m *memStore) row(id string) User {
	m.mu.Lock()
	defer m.mu.Unlock()
	return *m.users[id]
}

func (m *memStore) findCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.finds
}
