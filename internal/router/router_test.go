package router

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mabarin/mabarin-web/internal/booking"
	"github.com/mabarin/mabarin-web/internal/config"
	"github.com/mabarin/mabarin-web/internal/explore"
	"github.com/mabarin/mabarin-web/internal/handler"
	"github.com/mabarin/mabarin-web/internal/mabarin"
	"github.com/mabarin/mabarin-web/internal/middleware"
	"github.com/mabarin/mabarin-web/internal/queue"
	"github.com/mabarin/mabarin-web/internal/session"
	"github.com/mabarin/mabarin-web/internal/web"
)

const (
	futsal    = `{"id":9,"title":"Futsal Malam","activity_date":"2099-01-01","start_time":"19:00","end_time":"21:00","price":50000,"slot":10,"participants":[]}`
	yoga      = `{"id":10,"title":"Yoga Pagi","activity_date":"2099-01-02","start_time":"06:00","end_time":"07:00","price":30000,"slot":10,"participants":[]}`
	fullMatch = `{"id":11,"title":"Badminton","activity_date":"2099-01-03","start_time":"08:00","end_time":"10:00","price":20000,"slot":1,"participants":[{"user":{"name":"Budi"}}]}`
)

func reply(body string) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, body)
	}
}

func replyStatus(status int, body string) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}
}

// catalogue is the upstream every test starts from.
func catalogue() map[string]http.HandlerFunc {
	return map[string]http.HandlerFunc{
		"GET /api/v1/sport-activities":    reply(`{"success":true,"result":{"data":[` + futsal + `,` + yoga + `],"total":2,"last_page":1}}`),
		"GET /api/v1/sport-activities/9":  reply(`{"success":true,"result":` + futsal + `}`),
		"GET /api/v1/sport-activities/11": reply(`{"success":true,"result":` + fullMatch + `}`),
		"GET /api/v1/sport-categories":    reply(`{"success":true,"data":[{"id":1,"name":"Futsal"}]}`),
		"GET /api/v1/location/provinces":  reply(`{"success":true,"data":[{"id":12,"name":"Jawa Barat"}]}`),
		"GET /api/v1/payment-methods":     reply(`{"success":true,"data":[{"id":3,"name":"BCA Virtual Account","virtual_account_number":"8808123"}]}`),
	}
}

type proofRecorder struct {
	mu     sync.Mutex
	events []queue.ProofSubmittedEvent
}

func (p *proofRecorder) ProofSubmitted(_ context.Context, ev queue.ProofSubmittedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return nil
}

type app struct {
	e        *echo.Echo
	sessions *session.Manager
	proofs   *proofRecorder

	mu   sync.Mutex
	hits map[string]int
	sent map[string][]byte
}

// newApp wires every route against a fake upstream serving routes.
func newApp(t *testing.T, routes map[string]http.HandlerFunc) *app {
	t.Helper()
	a := &app{proofs: &proofRecorder{}, hits: map[string]int{}, sent: map[string][]byte{}}

	mux := http.NewServeMux()
	for pattern, h := range routes {
		mux.HandleFunc(pattern, func(w http.ResponseWriter, r *http.Request) {
			body, _ := io.ReadAll(r.Body)
			a.mu.Lock()
			a.hits[pattern]++
			a.sent[pattern] = body
			a.mu.Unlock()
			h(w, r)
		})
	}
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	api := mabarin.NewClient(srv.URL+"/api/v1", 2*time.Second)

	keys, err := config.DeriveKeys("test-secret")
	require.NoError(t, err)
	a.sessions = session.NewManager(keys, time.Hour, false)

	lg := log.New("test")
	lg.SetOutput(io.Discard)
	renderer, err := web.NewRenderer()
	require.NoError(t, err)

	e := echo.New()
	e.Logger = lg
	e.Renderer = renderer
	e.Use(middleware.LoadSession(a.sessions))

	cfg := config.ExploreConfig{
		Debounce:       10 * time.Millisecond,
		PageSize:       12,
		PageSizeMobile: 6,
		Strategy:       "client",
		IdleTTL:        time.Minute,
		UpcomingLimit:  4,
	}
	reg := explore.NewRegistry(explore.LiveDeps{
		Directory:    api,
		Activities:   api,
		Strategy:     explore.StrategyClient,
		Debounce:     cfg.Debounce,
		FetchTimeout: 2 * time.Second,
		Location:     time.UTC,
		Log:          lg,
	}, cfg.IdleTTL, cfg.MaxSessions)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go reg.Run(ctx)

	base := handler.Base{API: api, Sessions: a.sessions, Log: lg}
	dialogs := booking.NewService(api, booking.NewMemoryStore(time.Hour), nil, lg)
	act := handler.NewActivityHandler(base, dialogs, time.UTC)

	RegisterRoutes(e)
	RegisterAuth(e, handler.NewAuthHandler(base))
	RegisterPublic(e, handler.NewExploreHandler(base, reg, cfg, time.UTC), act)
	RegisterAccount(e, handler.NewProfileHandler(base), handler.NewTransactionHandler(base, a.proofs, nil), a.sessions)
	RegisterAPI(e, handler.NewLiveHandler(reg, cfg), handler.NewDirectoryHandler(api), act, nil)

	a.e = e
	return a
}

func (a *app) hitCount(pattern string) int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.hits[pattern]
}

func (a *app) body(pattern string) map[string]any {
	a.mu.Lock()
	defer a.mu.Unlock()
	var m map[string]any
	_ = json.Unmarshal(a.sent[pattern], &m)
	return m
}

func (a *app) login(t *testing.T) *http.Cookie {
	t.Helper()
	s := session.Anonymous()
	s.Token, s.Email, s.Name, s.UserID = "tok-5", "rina@example.com", "Rina", "5"
	return a.cookie(t, s)
}

func (a *app) cookie(t *testing.T, s session.Session) *http.Cookie {
	t.Helper()
	raw, err := a.sessions.Encode(s)
	require.NoError(t, err)
	return &http.Cookie{Name: session.CookieName, Value: raw}
}

func (a *app) form(method, target string, form url.Values, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}
	req := httptest.NewRequest(method, target, body)
	if form != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	}
	for _, ck := range cookies {
		req.AddCookie(ck)
	}
	rec := httptest.NewRecorder()
	a.e.ServeHTTP(rec, req)
	return rec
}

func (a *app) json(method, target, body string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	for _, ck := range cookies {
		req.AddCookie(ck)
	}
	rec := httptest.NewRecorder()
	a.e.ServeHTTP(rec, req)
	return rec
}

// lastCookie returns the final Set-Cookie for name.
func lastCookie(rec *httptest.ResponseRecorder, name string) *http.Cookie {
	var found *http.Cookie
	for _, ck := range rec.Result().Cookies() {
		if ck.Name == name {
			found = ck
		}
	}
	return found
}

func (a *app) flash(t *testing.T, rec *httptest.ResponseRecorder) session.Flash {
	t.Helper()
	ck := lastCookie(rec, session.FlashName)
	require.NotNil(t, ck, "no flash cookie")
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(ck)
	f, ok := a.sessions.TakeFlash(a.e.NewContext(req, httptest.NewRecorder()))
	require.True(t, ok, "flash cookie did not verify")
	return f
}

func (a *app) session(t *testing.T, rec *httptest.ResponseRecorder) session.Session {
	t.Helper()
	ck := lastCookie(rec, session.CookieName)
	require.NotNil(t, ck, "no session cookie")
	s, err := a.sessions.Decode(ck.Value)
	require.NoError(t, err)
	return s
}

func TestHealthz(t *testing.T) {
	a := newApp(t, catalogue())
	rec := a.form(http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestLoginStoresTokenAndFollowsNext(t *testing.T) {
	routes := catalogue()
	routes["POST /api/v1/login"] = reply(`{"success":true,"data":{"id":5,"name":"Rina","email":"rina@example.com","token":"tok-5"}}`)
	a := newApp(t, routes)

	rec := a.form(http.MethodPost, "/login", url.Values{
		"email":    {" rina@example.com "},
		"password": {"secret"},
		"next":     {"/explore/9"},
	})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/explore/9", rec.Header().Get(echo.HeaderLocation))
	assert.Equal(t, "Login Berhasil!", a.flash(t, rec).Message)

	s := a.session(t, rec)
	assert.Equal(t, "tok-5", s.Token)
	assert.Equal(t, "5", s.UserID)
	assert.Equal(t, "rina@example.com", a.body("POST /api/v1/login")["email"])
}

func TestLoginRejectsOffsiteNext(t *testing.T) {
	routes := catalogue()
	routes["POST /api/v1/login"] = reply(`{"success":true,"data":{"id":5,"token":"tok-5"}}`)
	a := newApp(t, routes)

	rec := a.form(http.MethodPost, "/login", url.Values{"email": {"r@x"}, "password": {"p"}, "next": {"//evil.example"}})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/", rec.Header().Get(echo.HeaderLocation))
}

func TestLoginFailureRerendersForm(t *testing.T) {
	routes := catalogue()
	routes["POST /api/v1/login"] = replyStatus(http.StatusUnauthorized, `{"success":false,"message":"Unauthorized"}`)
	a := newApp(t, routes)

	rec := a.form(http.MethodPost, "/login", url.Values{"email": {"rina@example.com"}, "password": {"wrong"}})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "Login Gagal!")
	assert.Contains(t, rec.Body.String(), `value="rina@example.com"`)
}

func TestRegisterSendsUserRole(t *testing.T) {
	routes := catalogue()
	routes["POST /api/v1/register"] = reply(`{"success":true,"message":"registered"}`)
	a := newApp(t, routes)

	rec := a.form(http.MethodPost, "/register", url.Values{
		"name": {"Rina"}, "email": {"rina@example.com"}, "phone_number": {"0812"},
		"password": {"secret1"}, "c_password": {"secret1"},
	})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get(echo.HeaderLocation))
	sent := a.body("POST /api/v1/register")
	assert.Equal(t, "user", sent["role"])
	assert.Equal(t, "secret1", sent["c_password"])
}

func TestLogoutClearsCookieWhenUpstreamFails(t *testing.T) {
	routes := catalogue()
	routes["POST /api/v1/logout"] = replyStatus(http.StatusInternalServerError, `{"success":false}`)
	a := newApp(t, routes)

	rec := a.form(http.MethodPost, "/logout", nil, a.login(t))
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/", rec.Header().Get(echo.HeaderLocation))
	ck := lastCookie(rec, session.CookieName)
	require.NotNil(t, ck)
	assert.Less(t, ck.MaxAge, 0)
	assert.Equal(t, 1, a.hitCount("POST /api/v1/logout"))
}

func TestProfileNeedsLogin(t *testing.T) {
	a := newApp(t, catalogue())
	rec := a.form(http.MethodGet, "/profile", nil)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/login?next=%2Fprofile", rec.Header().Get(echo.HeaderLocation))
	assert.Equal(t, middleware.LoginRequiredMessage, a.flash(t, rec).Message)
}

func TestExpiredTokenSendsToLogin(t *testing.T) {
	routes := catalogue()
	routes["GET /api/v1/me"] = replyStatus(http.StatusUnauthorized, `{"message":"Unauthenticated."}`)
	a := newApp(t, routes)

	rec := a.form(http.MethodGet, "/profile", nil, a.login(t))
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/login?next=%2Fprofile", rec.Header().Get(echo.HeaderLocation))
	assert.Equal(t, "Your session has expired. Please login again.", a.flash(t, rec).Message)
	assert.Less(t, lastCookie(rec, session.CookieName).MaxAge, 0)
}

func TestProfileShowsUser(t *testing.T) {
	routes := catalogue()
	routes["GET /api/v1/me"] = reply(`{"success":true,"data":{"id":5,"name":"Rina","email":"rina@example.com","phone_number":"0812","role":"user"}}`)
	a := newApp(t, routes)

	rec := a.form(http.MethodGet, "/profile", nil, a.login(t))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `value="0812"`)
}

func TestProfileUpdateKeepsRoleAndRefreshesSession(t *testing.T) {
	routes := catalogue()
	routes["GET /api/v1/me"] = reply(`{"success":true,"data":{"id":5,"name":"Rina","email":"rina@example.com","role":"organizer"}}`)
	routes["POST /api/v1/update-user/5"] = reply(`{"success":true,"message":"updated"}`)
	a := newApp(t, routes)

	rec := a.form(http.MethodPost, "/profile", url.Values{
		"name": {"Rina Ayu"}, "email": {"ayu@example.com"}, "phone_number": {"0813"},
	}, a.login(t))
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/profile", rec.Header().Get(echo.HeaderLocation))
	assert.Equal(t, "Profile updated successfully!", a.flash(t, rec).Message)

	sent := a.body("POST /api/v1/update-user/5")
	assert.Equal(t, "organizer", sent["role"])
	assert.Equal(t, "0813", sent["phone_number"])
	assert.NotContains(t, sent, "password")

	s := a.session(t, rec)
	assert.Equal(t, "Rina Ayu", s.Name)
	assert.Equal(t, "tok-5", s.Token)
}

func TestProfileUpdateShowsServerMessage(t *testing.T) {
	routes := catalogue()
	routes["GET /api/v1/me"] = reply(`{"success":true,"data":{"id":5,"role":"user"}}`)
	routes["POST /api/v1/update-user/5"] = replyStatus(http.StatusUnprocessableEntity, `{"success":false,"message":"The email has already been taken."}`)
	a := newApp(t, routes)

	rec := a.form(http.MethodPost, "/profile", url.Values{"name": {"R"}, "email": {"taken@example.com"}}, a.login(t))
	require.Equal(t, http.StatusSeeOther, rec.Code)
	f := a.flash(t, rec)
	assert.Equal(t, "error", f.Kind)
	assert.Equal(t, "The email has already been taken.", f.Message)
}

func TestPasswordMismatchSendsNoRequest(t *testing.T) {
	routes := catalogue()
	routes["GET /api/v1/me"] = reply(`{"success":true,"data":{"id":5}}`)
	routes["POST /api/v1/update-user/5"] = reply(`{"success":true}`)
	a := newApp(t, routes)

	rec := a.form(http.MethodPost, "/profile/password", url.Values{"password": {"abc12345"}, "c_password": {"abc12346"}}, a.login(t))
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "Passwords do not match!", a.flash(t, rec).Message)
	assert.Zero(t, a.hitCount("GET /api/v1/me"))
	assert.Zero(t, a.hitCount("POST /api/v1/update-user/5"))
}

func TestPasswordChangeSendsConfirmation(t *testing.T) {
	routes := catalogue()
	routes["GET /api/v1/me"] = reply(`{"success":true,"data":{"id":5,"name":"Rina","email":"rina@example.com","role":"user"}}`)
	routes["POST /api/v1/update-user/5"] = reply(`{"success":true}`)
	a := newApp(t, routes)

	rec := a.form(http.MethodPost, "/profile/password", url.Values{"password": {"abc12345"}, "c_password": {"abc12345"}}, a.login(t))
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "Password changed successfully!", a.flash(t, rec).Message)
	sent := a.body("POST /api/v1/update-user/5")
	assert.Equal(t, "abc12345", sent["c_password"])
	assert.Equal(t, "Rina", sent["name"])
}

func TestEmptyProofSendsNoRequest(t *testing.T) {
	routes := catalogue()
	routes["POST /api/v1/transaction/update-proof-payment/TRX-1"] = reply(`{"success":true}`)
	a := newApp(t, routes)

	rec := a.form(http.MethodPost, "/profile/transactions/TRX-1/proof", url.Values{"proof_payment_url": {"  "}}, a.login(t))
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/profile/transactions/TRX-1", rec.Header().Get(echo.HeaderLocation))
	assert.Equal(t, "Please enter a URL first", a.flash(t, rec).Message)
	assert.Zero(t, a.hitCount("POST /api/v1/transaction/update-proof-payment/TRX-1"))
	assert.Empty(t, a.proofs.events)
}

func TestProofUpdatePublishesEvent(t *testing.T) {
	routes := catalogue()
	routes["POST /api/v1/transaction/update-proof-payment/TRX-1"] = reply(`{"success":true,"message":"ok"}`)
	a := newApp(t, routes)

	rec := a.form(http.MethodPost, "/profile/transactions/TRX-1/proof", url.Values{"proof_payment_url": {"https://img.example/p.jpg"}}, a.login(t))
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "Proof of payment updated successfully!", a.flash(t, rec).Message)
	assert.Equal(t, "https://img.example/p.jpg", a.body("POST /api/v1/transaction/update-proof-payment/TRX-1")["proof_payment_url"])

	require.Len(t, a.proofs.events, 1)
	ev := a.proofs.events[0]
	assert.Equal(t, "TRX-1", ev.TransactionID)
	assert.Equal(t, "rina@example.com", ev.UserEmail)
	assert.Equal(t, "https://img.example/p.jpg", ev.ProofURL)
}

func TestTransactionDetailSurvivesActivityFailure(t *testing.T) {
	routes := catalogue()
	routes["GET /api/v1/transaction/TRX-1"] = reply(`{"success":true,"data":{"id":"TRX-1","invoice_id":"INV/2099/1","status":"pending","total_amount":50000,"payment_method_id":3,
		"transaction_items":{"sport_activity_id":42,"sport_activities":{"title":"Futsal Malam","activity_date":"2099-01-01","start_time":"19:00","end_time":"21:00"}}}}`)
	routes["GET /api/v1/sport-activities/42"] = replyStatus(http.StatusInternalServerError, `{"success":false}`)
	a := newApp(t, routes)

	rec := a.form(http.MethodGet, "/profile/transactions/TRX-1", nil, a.login(t))
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "INV/2099/1")
	assert.Contains(t, body, "Futsal Malam")
	assert.Contains(t, body, "BCA Virtual Account")
	assert.Contains(t, body, "8808123")
}

func TestBookingNeedsLogin(t *testing.T) {
	a := newApp(t, catalogue())
	rec := a.form(http.MethodGet, "/explore/9/booking", nil)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/login?next=%2Fexplore%2F9%2Fbooking", rec.Header().Get(echo.HeaderLocation))
	assert.Equal(t, booking.MsgLoginRequired, a.flash(t, rec).Message)
}

func TestFullyBookedActivityCannotOpenDialog(t *testing.T) {
	a := newApp(t, catalogue())
	rec := a.form(http.MethodGet, "/explore/11/booking", nil, a.login(t))
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/explore/11", rec.Header().Get(echo.HeaderLocation))
	assert.Equal(t, "Fully Booked", a.flash(t, rec).Message)

	page := a.form(http.MethodGet, "/explore/11", nil, a.login(t))
	require.Equal(t, http.StatusOK, page.Code)
	assert.Contains(t, page.Body.String(), "<button disabled>Fully Booked</button>")
}

func TestConfirmWithoutMethodSendsNoRequest(t *testing.T) {
	routes := catalogue()
	routes["POST /api/v1/transaction/create"] = reply(`{"success":true}`)
	a := newApp(t, routes)
	auth := a.login(t)

	open := a.form(http.MethodGet, "/explore/9/booking", nil, auth)
	require.Equal(t, http.StatusOK, open.Code)
	assert.Contains(t, open.Body.String(), "BCA Virtual Account")

	rec := a.form(http.MethodPost, "/explore/9/booking", url.Values{"action": {"confirm"}}, auth)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), booking.MsgSelectMethod)
	assert.Zero(t, a.hitCount("POST /api/v1/transaction/create"))
}

func TestConfirmBooksAndClosesDialog(t *testing.T) {
	routes := catalogue()
	routes["POST /api/v1/transaction/create"] = reply(`{"success":true,"message":"Transaction created","data":{"id":"TRX-9","invoice_id":"INV/9","status":"pending"}}`)
	a := newApp(t, routes)
	auth := a.login(t)

	require.Equal(t, http.StatusOK, a.form(http.MethodGet, "/explore/9/booking", nil, auth).Code)

	rec := a.form(http.MethodPost, "/explore/9/booking", url.Values{"action": {"confirm"}, "payment_method_id": {"3"}}, auth)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/profile/transactions", rec.Header().Get(echo.HeaderLocation))
	assert.Equal(t, booking.MsgBooked, a.flash(t, rec).Message)

	sent := a.body("POST /api/v1/transaction/create")
	assert.EqualValues(t, 9, sent["sport_activity_id"])
	assert.EqualValues(t, 3, sent["payment_method_id"])

	page := a.form(http.MethodGet, "/explore/9", nil, auth)
	assert.NotContains(t, page.Body.String(), "<dialog")
}

func TestCancelClosesDialog(t *testing.T) {
	a := newApp(t, catalogue())
	auth := a.login(t)
	require.Equal(t, http.StatusOK, a.form(http.MethodGet, "/explore/9/booking", nil, auth).Code)

	rec := a.form(http.MethodPost, "/explore/9/booking", url.Values{"action": {"cancel"}}, auth)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/explore/9", rec.Header().Get(echo.HeaderLocation))
	assert.NotContains(t, a.form(http.MethodGet, "/explore/9", nil, auth).Body.String(), "<dialog")
}

type liveReply struct {
	Criteria struct {
		Search string `json:"search"`
		Page   int    `json:"page"`
	} `json:"criteria"`
	SearchText string `json:"search_text"`
	Pending    bool   `json:"search_pending"`
	Items      []struct {
		Title string `json:"title"`
	} `json:"items"`
	URL string `json:"url"`
}

func decodeLive(t *testing.T, rec *httptest.ResponseRecorder) liveReply {
	t.Helper()
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var v liveReply
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	return v
}

func TestExplorePageAndLiveAPIAgree(t *testing.T) {
	a := newApp(t, catalogue())
	visitor := a.cookie(t, session.Anonymous())

	page := a.form(http.MethodGet, "/explore?search=futsal", nil, visitor)
	require.Equal(t, http.StatusOK, page.Code)
	assert.Contains(t, page.Body.String(), "Futsal Malam")
	assert.NotContains(t, page.Body.String(), "Yoga Pagi")

	v := decodeLive(t, a.form(http.MethodGet, "/api/explore", nil, visitor))
	assert.Equal(t, "futsal", v.Criteria.Search)
	require.Len(t, v.Items, 1)
	assert.Equal(t, "Futsal Malam", v.Items[0].Title)
	assert.Equal(t, "/explore?search=futsal", v.URL)
}

func TestLiveSearchWaitsForPause(t *testing.T) {
	a := newApp(t, catalogue())
	visitor := a.cookie(t, session.Anonymous())

	v := decodeLive(t, a.json(http.MethodPost, "/api/explore/search", `{"text":"yoga"}`, visitor))
	assert.Equal(t, "yoga", v.SearchText)

	assert.Eventually(t, func() bool {
		v := decodeLive(t, a.form(http.MethodGet, "/api/explore", nil, visitor))
		return !v.Pending && v.Criteria.Search == "yoga" && len(v.Items) == 1 && v.Items[0].Title == "Yoga Pagi"
	}, 2*time.Second, 20*time.Millisecond)

	cleared := decodeLive(t, a.json(http.MethodPost, "/api/explore/search/clear", `{}`, visitor))
	assert.Empty(t, cleared.Criteria.Search)
	assert.Len(t, cleared.Items, 2)
}

func TestLiveResetDropsFilters(t *testing.T) {
	a := newApp(t, catalogue())
	visitor := a.cookie(t, session.Anonymous())

	require.Equal(t, http.StatusOK, a.form(http.MethodGet, "/explore?search=futsal", nil, visitor).Code)
	v := decodeLive(t, a.json(http.MethodPost, "/api/explore/reset", `{}`, visitor))
	assert.Empty(t, v.Criteria.Search)
	assert.Equal(t, "/explore", v.URL)
	assert.Len(t, v.Items, 2)
}

func TestDirectoryUpstreamFailureIsJSON(t *testing.T) {
	routes := catalogue()
	routes["GET /api/v1/location/provinces"] = replyStatus(http.StatusInternalServerError, `{"success":false}`)
	a := newApp(t, routes)

	rec := a.form(http.MethodGet, "/api/directory/provinces", nil)
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "upstream_unavailable", body["error"])

	bad := a.form(http.MethodGet, "/api/directory/provinces/x/cities", nil)
	assert.Equal(t, http.StatusBadRequest, bad.Code)
}

func TestActivityJSONCarriesEligibility(t *testing.T) {
	a := newApp(t, catalogue())
	rec := a.form(http.MethodGet, "/api/activities/11", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Eligibility string `json:"eligibility"`
		Label       string `json:"label"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "fully_booked", body.Eligibility)
	assert.Equal(t, "Fully Booked", body.Label)
}

func TestUnknownRoutes(t *testing.T) {
	a := newApp(t, catalogue())

	api := a.form(http.MethodGet, "/api/nope", nil)
	assert.Equal(t, http.StatusNotFound, api.Code)
	assert.Contains(t, api.Header().Get(echo.HeaderContentType), echo.MIMEApplicationJSON)

	page := a.form(http.MethodGet, "/nope", nil)
	assert.Equal(t, http.StatusNotFound, page.Code)
	assert.Contains(t, page.Body.String(), "<h1>404</h1>")
}
