package wire

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"exam-registration/internal/data/repository/memrepo"
	"exam-registration/internal/usecase"
	"exam-registration/pkg/admitcard"
	"exam-registration/pkg/clock"
	"exam-registration/pkg/jwt"
	"exam-registration/pkg/ratelimit"
	"exam-registration/pkg/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const adminEmail = "admin@example.com"

type inboxMailer struct {
	mu    sync.Mutex
	codes map[string]string
	docs  map[string][]byte
}

func (m *inboxMailer) SendCode(_ context.Context, to, code string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.codes[to] = code
	return nil
}

func (m *inboxMailer) SendDocument(_ context.Context, to, _, _ string, pdf []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.docs[to] = pdf
	return nil
}

func (m *inboxMailer) code(to string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.codes[to]
}

type stubRenderer struct{}

func (stubRenderer) Render(f admitcard.Fields) ([]byte, error) {
	return []byte("%PDF-stub " + f.RollNo), nil
}

type envelope struct {
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Errors  json.RawMessage `json:"errors"`
}

type testApp struct {
	router http.Handler
	clock  *clock.Frozen
	mailer *inboxMailer
	seq    int
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()

	slots := filepath.Join(t.TempDir(), "exam_slots.json")
	require.NoError(t, os.WriteFile(slots, []byte(`{"Medical (NEET)":{"Patna Centre":[]}}`), 0o600))

	config := &utils.Config{
		App:   utils.AppConfig{Name: "Exam Registration System"},
		JWT:   utils.JWTConfig{Secret: "0123456789abcdef0123456789abcdef", ExpiryHours: 24},
		Email: utils.EmailConfig{From: adminEmail},
		OTP: utils.OTPConfig{
			ExpiryMinutes:    5,
			RateLimitSeconds: 60,
			Length:           6,
			MaxAttempts:      5,
			HashCost:         bcrypt.MinCost,
		},
		Exam: utils.ExamConfig{RollPrefix: "NSAT2026", SlotsPath: slots},
	}

	clk := clock.NewFrozen(time.Date(2026, 1, 15, 9, 30, 0, 0, time.UTC))
	inbox := &inboxMailer{codes: make(map[string]string), docs: make(map[string][]byte)}

	tokens, err := jwt.NewManager(config.JWT.Secret, config.JWT.Expiry(), clk)
	require.NoError(t, err)

	app := Wiring(usecase.Deps{
		Repo:     memrepo.New().Repository(),
		Tokens:   tokens,
		Mailer:   inbox,
		Renderer: stubRenderer{},
		Clock:    clk,
	}, ratelimit.NewMemory(clk), config, zap.NewNop())

	return &testApp{router: app.Router, clock: clk, mailer: inbox}
}

// do sends a request from a fresh client address unless ip is set
func (a *testApp) do(t *testing.T, method, path, token string, body any, ip string) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if ip == "" {
		a.seq++
		ip = "10.0.0." + strconv.Itoa(a.seq%250+1)
	}
	req.Header.Set("X-Forwarded-For", ip)

	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, data any) envelope {
	t.Helper()

	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	if data != nil {
		require.NoError(t, json.Unmarshal(env.Data, data))
	}
	return env
}

func (a *testApp) login(t *testing.T, email string) string {
	t.Helper()

	rec := a.do(t, http.MethodPost, "/auth/send-otp", "", map[string]string{"email": email}, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = a.do(t, http.MethodPost, "/auth/verify-otp", "", map[string]string{
		"email": email,
		"otp":   a.mailer.code(strings.ToLower(email)),
	}, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var tok struct {
		AccessToken string `json:"access_token"`
		TokenType   string `json:"token_type"`
	}
	decode(t, rec, &tok)
	require.Equal(t, "bearer", tok.TokenType)
	return tok.AccessToken
}

func registrationBody() map[string]string {
	return map[string]string{
		"name":        "Asha Kumari",
		"father_name": "Ramesh Kumar",
		"medium":      "Hindi",
		"course":      "Medical (NEET)",
		"exam_centre": "Patna Centre",
		"exam_date":   "2026-03-15",
		"exam_time":   "10:00 AM - 01:00 PM",
	}
}

func TestRouter_HealthAndRoot(t *testing.T) {
	app := newTestApp(t)

	rec := app.do(t, http.MethodGet, "/health", "", nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"healthy"}`, rec.Body.String())

	rec = app.do(t, http.MethodGet, "/", "", nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	var info map[string]string
	decode(t, rec, &info)
	assert.Equal(t, "Exam Registration System", info["name"])
	assert.NotEmpty(t, info["version"])
}

func TestRouter_SendOTPValidation(t *testing.T) {
	app := newTestApp(t)

	rec := app.do(t, http.MethodPost, "/auth/send-otp", "", map[string]string{"email": "nope"}, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	env := decode(t, rec, nil)
	assert.False(t, env.Status)
	assert.Contains(t, string(env.Errors), "email")

	req := httptest.NewRequest(http.MethodPost, "/auth/send-otp", bytes.NewBufferString("{"))
	rec = httptest.NewRecorder()
	app.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRouter_SendOTPCooldown(t *testing.T) {
	app := newTestApp(t)
	body := map[string]string{"email": "a@x.com"}

	rec := app.do(t, http.MethodPost, "/auth/send-otp", "", body, "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = app.do(t, http.MethodPost, "/auth/send-otp", "", body, "")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
}

func TestRouter_VerifyOTPWrongCode(t *testing.T) {
	app := newTestApp(t)

	rec := app.do(t, http.MethodPost, "/auth/send-otp", "", map[string]string{"email": "a@x.com"}, "")
	require.Equal(t, http.StatusOK, rec.Code)

	wrong := "000000"
	if app.mailer.code("a@x.com") == wrong {
		wrong = "111111"
	}
	rec = app.do(t, http.MethodPost, "/auth/verify-otp", "", map[string]string{"email": "a@x.com", "otp": wrong}, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = app.do(t, http.MethodPost, "/auth/verify-otp", "", map[string]string{"email": "b@x.com", "otp": "123456"}, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = app.do(t, http.MethodPost, "/auth/verify-otp", "", map[string]string{"email": "a@x.com", "otp": "12ab56"}, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRouter_SendOTPRouteLimit(t *testing.T) {
	app := newTestApp(t)
	const ip = "203.0.113.9"

	for i := 0; i < sendOTPLimit; i++ {
		email := "user" + strconv.Itoa(i) + "@x.com"
		rec := app.do(t, http.MethodPost, "/auth/send-otp", "", map[string]string{"email": email}, ip)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	}

	rec := app.do(t, http.MethodPost, "/auth/send-otp", "", map[string]string{"email": "late@x.com"}, ip)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "60", rec.Header().Get("Retry-After"))

	// another client is unaffected
	rec = app.do(t, http.MethodPost, "/auth/send-otp", "", map[string]string{"email": "late@x.com"}, "203.0.113.10")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRouter_AuthRequired(t *testing.T) {
	app := newTestApp(t)

	for _, path := range []string{"/auth/me", "/registration/", "/admin/users/"} {
		rec := app.do(t, http.MethodGet, path, "", nil, "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code, path)

		rec = app.do(t, http.MethodGet, path, "garbage", nil, "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code, path)
	}
}

func TestRouter_MeAndTokenExpiry(t *testing.T) {
	app := newTestApp(t)
	token := app.login(t, "a@x.com")

	rec := app.do(t, http.MethodGet, "/auth/me", token, nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var me struct {
		Email      string `json:"email"`
		IsVerified bool   `json:"is_verified"`
	}
	decode(t, rec, &me)
	assert.Equal(t, "a@x.com", me.Email)
	assert.True(t, me.IsVerified)

	app.clock.Advance(25 * time.Hour)
	rec = app.do(t, http.MethodGet, "/auth/me", token, nil, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRouter_RegistrationFlow(t *testing.T) {
	app := newTestApp(t)
	token := app.login(t, "a@x.com")

	rec := app.do(t, http.MethodGet, "/registration/", token, nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = app.do(t, http.MethodPost, "/registration/", token, registrationBody(), "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var reg struct {
		RollNo string `json:"roll_no"`
		Name   string `json:"name"`
	}
	decode(t, rec, &reg)
	assert.Equal(t, "NSAT2026-0001", reg.RollNo)

	body := registrationBody()
	body["name"] = "Asha Devi"
	rec = app.do(t, http.MethodPost, "/registration/", token, body, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	decode(t, rec, &reg)
	assert.Equal(t, "NSAT2026-0001", reg.RollNo)
	assert.Equal(t, "Asha Devi", reg.Name)

	body["medium"] = "Latin"
	rec = app.do(t, http.MethodPost, "/registration/", token, body, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = app.do(t, http.MethodGet, "/registration/admit-card", token, nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "admit_card_NSAT2026-0001.pdf")
	assert.Equal(t, "%PDF-stub NSAT2026-0001", rec.Body.String())

	rec = app.do(t, http.MethodPost, "/registration/admit-card/send", token, nil, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, app.mailer.docs, "a@x.com")
}

func TestRouter_AdminAccess(t *testing.T) {
	app := newTestApp(t)
	user := app.login(t, "a@x.com")
	admin := app.login(t, "ADMIN@example.com")

	rec := app.do(t, http.MethodGet, "/admin/users/", user, nil, "")
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = app.do(t, http.MethodGet, "/admin/users/", admin, nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var users []struct {
		ID    int64  `json:"id"`
		Email string `json:"email"`
	}
	decode(t, rec, &users)
	require.Len(t, users, 2)
	assert.Equal(t, "admin@example.com", users[0].Email)
}

func TestRouter_AdminUserManagement(t *testing.T) {
	app := newTestApp(t)
	user := app.login(t, "a@x.com")
	admin := app.login(t, adminEmail)

	rec := app.do(t, http.MethodPost, "/registration/", user, registrationBody(), "")
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = app.do(t, http.MethodGet, "/admin/users/1/admit-card", admin, nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))

	rec = app.do(t, http.MethodGet, "/admin/users/2/admit-card", admin, nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = app.do(t, http.MethodPost, "/admin/users/bulk-send", admin, map[string][]int64{"user_ids": {1, 2, 3}}, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var sent struct {
		Sent    []int64 `json:"sent"`
		Skipped []int64 `json:"skipped"`
		Failed  []int64 `json:"failed"`
	}
	decode(t, rec, &sent)
	assert.Equal(t, []int64{1}, sent.Sent)
	assert.Equal(t, []int64{2, 3}, sent.Skipped)
	assert.Empty(t, sent.Failed)

	rec = app.do(t, http.MethodPost, "/admin/users/bulk-send", admin, map[string][]int64{"user_ids": {}}, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = app.do(t, http.MethodDelete, "/admin/users/abc", admin, nil, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = app.do(t, http.MethodDelete, "/admin/users/1", admin, nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = app.do(t, http.MethodDelete, "/admin/users/1", admin, nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// the deleted account's token no longer resolves
	rec = app.do(t, http.MethodGet, "/auth/me", user, nil, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = app.do(t, http.MethodPost, "/admin/users/bulk-delete", admin, map[string][]int64{"user_ids": {1, 2}}, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var deleted struct {
		Deleted  []int64 `json:"deleted"`
		NotFound []int64 `json:"not_found"`
	}
	decode(t, rec, &deleted)
	assert.Equal(t, []int64{2}, deleted.Deleted)
	assert.Equal(t, []int64{1}, deleted.NotFound)
}

func TestRouter_ExamSlots(t *testing.T) {
	app := newTestApp(t)

	rec := app.do(t, http.MethodGet, "/config/exam-slots", "", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	env := decode(t, rec, nil)
	assert.JSONEq(t, `{"Medical (NEET)":{"Patna Centre":[]}}`, string(env.Data))
}
