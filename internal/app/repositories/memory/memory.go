// Package memory provides in-process stores with the same atomicity
// guarantees as the Postgres repositories. All three stores share one lock,
// so every multi-row operation behaves like a single transaction.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/yigit/rollcall/internal/app/models"
	"github.com/yigit/rollcall/internal/app/repositories"
	"github.com/yigit/rollcall/internal/pkg/apperrors"
)

type accountKey struct {
	orgCode  string
	username string
}

type state struct {
	mu       sync.Mutex
	nextID   int64
	orgs     map[string]*models.Organization
	emails   map[string]string
	accounts map[accountKey]*models.Account
	invites  map[string]*models.Invite
	now      func() time.Time
}

// NewRepositories returns a fresh, empty set of in-memory stores
func NewRepositories() *repositories.Repositories {
	s := &state{
		orgs:     make(map[string]*models.Organization),
		emails:   make(map[string]string),
		accounts: make(map[accountKey]*models.Account),
		invites:  make(map[string]*models.Invite),
		now:      time.Now,
	}
	return &repositories.Repositories{
		Organizations: &organizationStore{s},
		Accounts:      &accountStore{s},
		Invites:       &inviteStore{s},
	}
}

func (s *state) id() int64 {
	s.nextID++
	return s.nextID
}

func page[T any](items []T, offset uint64, limit int) []T {
	if offset >= uint64(len(items)) {
		return []T{}
	}
	end := int(offset) + limit
	if limit <= 0 || end > len(items) {
		end = len(items)
	}
	return items[offset:end]
}

func copyAccount(a *models.Account) *models.Account {
	c := *a
	return &c
}

func copyInvite(i *models.Invite) *models.Invite {
	c := *i
	return &c
}

// insertAccount expects s.mu to be held
func (s *state) insertAccount(a *models.Account) error {
	if _, ok := s.orgs[a.OrgCode]; !ok {
		return apperrors.ErrOrganizationNotFound
	}
	key := accountKey{a.OrgCode, a.Username}
	if _, taken := s.accounts[key]; taken {
		return apperrors.ErrUsernameAlreadyExists
	}
	now := s.now()
	a.ID = s.id()
	a.CreatedAt = now
	a.UpdatedAt = now
	s.accounts[key] = copyAccount(a)
	return nil
}

type organizationStore struct{ *state }

func (s *organizationStore) CreateWithAdmin(_ context.Context, org *models.Organization, admin *models.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, taken := s.orgs[org.OrgCode]; taken {
		return apperrors.ErrOrgCodeAlreadyExists
	}
	if _, taken := s.emails[org.Email]; taken {
		return apperrors.ErrEmailAlreadyExists
	}

	org.ID = s.id()
	org.CreatedAt = s.now()
	stored := *org
	s.orgs[org.OrgCode] = &stored

	admin.OrgCode = org.OrgCode
	admin.Role = models.RoleAdmin
	if err := s.insertAccount(admin); err != nil {
		delete(s.orgs, org.OrgCode)
		return err
	}
	s.emails[org.Email] = org.OrgCode
	return nil
}

func (s *organizationStore) FindByCode(_ context.Context, orgCode string) (*models.Organization, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	org, ok := s.orgs[orgCode]
	if !ok {
		return nil, apperrors.ErrOrganizationNotFound
	}
	c := *org
	return &c, nil
}

func (s *organizationStore) FindByEmail(ctx context.Context, email string) (*models.Organization, error) {
	s.mu.Lock()
	code, ok := s.emails[email]
	s.mu.Unlock()
	if !ok {
		return nil, apperrors.ErrOrganizationNotFound
	}
	return s.FindByCode(ctx, code)
}

func (s *organizationStore) CodeExists(_ context.Context, orgCode string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.orgs[orgCode]
	return ok, nil
}

func (s *organizationStore) List(_ context.Context, offset uint64, limit int) ([]*models.Organization, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	all := make([]*models.Organization, 0, len(s.orgs))
	for _, org := range s.orgs {
		c := *org
		all = append(all, &c)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID > all[j].ID })
	return page(all, offset, limit), int64(len(all)), nil
}

type accountStore struct{ *state }

func (s *accountStore) Create(_ context.Context, account *models.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.insertAccount(account)
}

func (s *accountStore) FindByOrgAndUsername(_ context.Context, orgCode, username string) (*models.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.accounts[accountKey{orgCode, username}]
	if !ok {
		return nil, apperrors.ErrAccountNotFound
	}
	return copyAccount(a), nil
}

func (s *accountStore) ListByOrganization(_ context.Context, orgCode string, offset uint64, limit int) ([]*models.Account, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var all []*models.Account
	for key, a := range s.accounts {
		if key.orgCode == orgCode {
			all = append(all, copyAccount(a))
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Username < all[j].Username })
	return page(all, offset, limit), int64(len(all)), nil
}

func (s *accountStore) UpdatePassword(_ context.Context, orgCode, username string, digest models.PasswordDigest) error {
	return s.update(orgCode, username, func(a *models.Account) { a.Password = digest })
}

func (s *accountStore) UpdateProfilePicture(_ context.Context, orgCode, username string, ref *string) error {
	return s.update(orgCode, username, func(a *models.Account) { a.ProfilePicture = ref })
}

func (s *accountStore) update(orgCode, username string, apply func(*models.Account)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.accounts[accountKey{orgCode, username}]
	if !ok {
		return apperrors.ErrAccountNotFound
	}
	apply(a)
	a.UpdatedAt = s.now()
	return nil
}

type inviteStore struct{ *state }

func (s *inviteStore) Create(_ context.Context, invite *models.Invite) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.orgs[invite.OrgCode]; !ok {
		return apperrors.ErrOrganizationNotFound
	}
	if _, taken := s.invites[invite.Token]; taken {
		return apperrors.ErrResourceAlreadyExists
	}
	invite.ID = s.id()
	s.invites[invite.Token] = copyInvite(invite)
	return nil
}

func (s *inviteStore) FindByToken(_ context.Context, token string) (*models.Invite, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	invite, ok := s.invites[token]
	if !ok {
		return nil, apperrors.ErrInviteNotFound
	}
	return copyInvite(invite), nil
}

func (s *inviteStore) Consume(_ context.Context, token string, account *models.Account, now time.Time) (*models.Invite, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	invite, ok := s.invites[token]
	if !ok {
		return nil, apperrors.ErrInviteNotFound
	}
	switch invite.StatusAt(now) {
	case models.InviteUsed:
		return nil, apperrors.ErrInviteAlreadyUsed
	case models.InviteExpired:
		return nil, apperrors.ErrInviteExpired
	}

	account.OrgCode = invite.OrgCode
	account.Role = models.RoleTeacher
	if err := s.insertAccount(account); err != nil {
		return nil, err
	}

	usedBy := account.Username
	invite.Used = true
	invite.UsedAt = &now
	invite.UsedBy = &usedBy
	return copyInvite(invite), nil
}

func (s *inviteStore) Delete(_ context.Context, orgCode, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	invite, ok := s.invites[token]
	if !ok || invite.OrgCode != orgCode {
		return apperrors.ErrInviteNotFound
	}
	delete(s.invites, token)
	return nil
}

func (s *inviteStore) ListByOrganization(_ context.Context, orgCode string) ([]*models.Invite, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*models.Invite, 0)
	for _, invite := range s.invites {
		if invite.OrgCode == orgCode {
			out = append(out, copyInvite(invite))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}
