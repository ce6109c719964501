package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"exam-registration/internal/data/repository/memrepo"
	"exam-registration/internal/dto/request"
	"exam-registration/internal/dto/response"
	"exam-registration/pkg/admitcard"
	"exam-registration/pkg/clock"
	"exam-registration/pkg/jwt"
	"exam-registration/pkg/utils"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

var testStart = time.Date(2026, 1, 15, 9, 30, 0, 0, time.UTC)

type sentDocument struct {
	To     string
	Name   string
	RollNo string
	PDF    []byte
}

type fakeMailer struct {
	mu      sync.Mutex
	codes   map[string][]string
	docs    []sentDocument
	failFor map[string]bool
}

func newFakeMailer() *fakeMailer {
	return &fakeMailer{codes: make(map[string][]string), failFor: make(map[string]bool)}
}

var errSMTPDown = errors.New("smtp down")

func (m *fakeMailer) SendCode(_ context.Context, to, code string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.failFor[to] {
		return errSMTPDown
	}
	m.codes[to] = append(m.codes[to], code)
	return nil
}

func (m *fakeMailer) SendDocument(_ context.Context, to, name, rollNo string, pdf []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.failFor[to] {
		return errSMTPDown
	}
	m.docs = append(m.docs, sentDocument{To: to, Name: name, RollNo: rollNo, PDF: pdf})
	return nil
}

func (m *fakeMailer) lastCode(email string) string {
	m.mu.Lock()
	defer m.mu.Unlock()

	codes := m.codes[email]
	if len(codes) == 0 {
		return ""
	}
	return codes[len(codes)-1]
}

type fakeRenderer struct {
	err error
}

func (r fakeRenderer) Render(f admitcard.Fields) ([]byte, error) {
	if r.err != nil {
		return nil, r.err
	}
	return []byte("%PDF-fake " + f.RollNo), nil
}

func testConfig() *utils.Config {
	return &utils.Config{
		App: utils.AppConfig{Name: "Exam Registration System"},
		JWT: utils.JWTConfig{Secret: "0123456789abcdef0123456789abcdef", ExpiryHours: 24},
		Email: utils.EmailConfig{
			From: "admin@example.com",
		},
		OTP: utils.OTPConfig{
			ExpiryMinutes:    5,
			RateLimitSeconds: 60,
			Length:           6,
			MaxAttempts:      5,
			HashCost:         bcrypt.MinCost,
		},
		Exam: utils.ExamConfig{RollPrefix: "NSAT2026", SlotsPath: "testdata/exam_slots.json"},
	}
}

type testEnv struct {
	store  *memrepo.Store
	clock  *clock.Frozen
	mailer *fakeMailer
	config *utils.Config
	svc    *Service
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	cfg := testConfig()
	store := memrepo.New()
	clk := clock.NewFrozen(testStart)
	mail := newFakeMailer()

	tokens, err := jwt.NewManager(cfg.JWT.Secret, cfg.JWT.Expiry(), clk)
	require.NoError(t, err)

	svc := NewService(Deps{
		Repo:     store.Repository(),
		Tokens:   tokens,
		Mailer:   mail,
		Renderer: fakeRenderer{},
		Clock:    clk,
	}, cfg, zap.NewNop())

	return &testEnv{store: store, clock: clk, mailer: mail, config: cfg, svc: svc}
}

// fixCode makes the OTP service issue code from now on.
func (e *testEnv) fixCode(code string) {
	e.svc.OTP.(*otpService).generate = func(int) (string, error) { return code, nil }
}

func mustHash(t *testing.T, code string) string {
	t.Helper()

	hash, err := utils.HashCode(code, bcrypt.MinCost)
	require.NoError(t, err)
	return hash
}

func (e *testEnv) createUser(t *testing.T, email string) int64 {
	t.Helper()

	user, _, err := e.store.Repository().User.GetOrCreate(context.Background(), email, e.clock.Now())
	require.NoError(t, err)
	return user.ID
}

func validRegistration() *request.RegistrationRequest {
	return &request.RegistrationRequest{
		Name:       "Asha Kumari",
		FatherName: "Ramesh Kumar",
		Medium:     "English",
		Course:     "Engineering (JEE)",
		ExamCentre: "Delhi Centre",
		ExamDate:   "2026-03-08",
		ExamTime:   "09:00 AM - 12:00 PM",
	}
}

func (e *testEnv) register(t *testing.T, userID int64) *response.RegistrationResponse {
	t.Helper()

	reg, _, err := e.svc.Registration.Submit(context.Background(), userID, validRegistration())
	require.NoError(t, err)
	return reg
}
