package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"github.com/yigit/rollcall/internal/app/models"
	"github.com/yigit/rollcall/internal/app/repositories"
	"github.com/yigit/rollcall/internal/app/repositories/memory"
	"github.com/yigit/rollcall/internal/pkg/auth"
	"github.com/yigit/rollcall/internal/pkg/email"
	"golang.org/x/crypto/bcrypt"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 9, 2, 8, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// sequenceCodes hands out codes in order, then repeats the last one
type sequenceCodes struct {
	mu    sync.Mutex
	codes []string
	calls int
}

func (g *sequenceCodes) Generate(string, models.InstitutionType) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	i := g.calls
	if i >= len(g.codes) {
		i = len(g.codes) - 1
	}
	g.calls++
	return g.codes[i], nil
}

type recordingMailer struct {
	mu   sync.Mutex
	sent []email.OrganizationWelcome
}

func (m *recordingMailer) SendOrganizationWelcome(_ context.Context, msg email.OrganizationWelcome) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, msg)
	return nil
}

type fixture struct {
	repos   *repositories.Repositories
	hasher  *auth.PasswordHasher
	clock   *fakeClock
	codes   *sequenceCodes
	mailer  *recordingMailer
	jwt     *auth.JWTService
	orgs    *OrganizationService
	account *AccountService
	invites *InviteService
	auth    *AuthService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	logger := zerolog.Nop()
	f := &fixture{
		repos:  memory.NewRepositories(),
		hasher: auth.NewPasswordHasher(bcrypt.MinCost, logger),
		clock:  newFakeClock(),
		codes:  &sequenceCodes{codes: []string{"SCH-OAK-AAAAAA", "SCH-OAK-BBBBBB", "SCH-OAK-CCCCCC"}},
		mailer: &recordingMailer{},
	}
	f.jwt = auth.NewJWTService(auth.JWTConfig{
		SecretKey:      "test-secret",
		AccessTokenExp: 30 * time.Minute,
		TokenIssuer:    "rollcall.test",
		Now:            f.clock.Now,
	})
	f.orgs = NewOrganizationService(f.repos.Organizations, f.hasher, f.codes, f.mailer, "http://localhost:8080", logger)
	f.account = NewAccountService(f.repos.Accounts, f.repos.Organizations, f.hasher, logger)
	f.invites = NewInviteService(f.repos.Invites, f.repos.Organizations, f.hasher, 30*time.Minute,
		func(token string) string { return "http://localhost:8080/#/teacher-invite/" + token }, f.clock.Now, logger)
	f.auth = NewAuthService(f.repos.Organizations, f.repos.Accounts, f.hasher, f.jwt, logger)
	return f
}

func (f *fixture) register(t *testing.T, name, mail string) *models.Organization {
	t.Helper()
	reg, err := f.orgs.Register(context.Background(), RegisterOrganizationInput{
		InstitutionName: name,
		InstitutionType: "school",
		Email:           mail,
		AdminUsername:   "admin",
		AdminPassword:   "admin-pass",
	})
	require.NoError(t, err)
	return reg.Organization
}
