package http_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/nairobi-county/county-tickets/internal/api/http"
	"github.com/nairobi-county/county-tickets/internal/api/http/handlers"
	"github.com/nairobi-county/county-tickets/internal/auth"
	"github.com/nairobi-county/county-tickets/internal/clock"
	"github.com/nairobi-county/county-tickets/internal/config"
	"github.com/nairobi-county/county-tickets/internal/events"
	"github.com/nairobi-county/county-tickets/internal/geo"
	"github.com/nairobi-county/county-tickets/internal/observability"
	"github.com/nairobi-county/county-tickets/internal/preferences"
	"github.com/nairobi-county/county-tickets/internal/repository"
	"github.com/nairobi-county/county-tickets/internal/routing"
	"github.com/nairobi-county/county-tickets/internal/service"
	"github.com/nairobi-county/county-tickets/internal/sla"
)

type apiError struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details"`
}

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error *apiError       `json:"error"`
}

type ticketBody struct {
	ID                 string `json:"id"`
	TicketID           string `json:"ticket_id"`
	Version            int64  `json:"version"`
	Status             string `json:"status"`
	WardCode           string `json:"ward_code"`
	AssignedDepartment string `json:"assigned_department"`
	AssignedTo         string `json:"assigned_to"`
	CurrentRating      *int   `json:"current_cycle_rating"`
	SLA                *struct {
		Overdue         bool `json:"overdue"`
		ProgressPercent int  `json:"progress_percent"`
	} `json:"sla"`
	History []struct {
		Action string `json:"action"`
	} `json:"history"`
}

type testServer struct {
	app   *fiber.App
	clock *clock.Fake
}

func newTestServer(t *testing.T) testServer {
	t.Helper()
	wards, err := geo.DefaultWardIndex()
	if err != nil {
		t.Fatalf("ward index: %v", err)
	}
	fake := clock.NewFake(time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC))
	metrics := observability.NewMetrics()
	logger := zap.NewNop()
	repo := repository.NewMemoryTicketRepository()
	resolver := geo.NewResolver(wards, geo.DefaultResolutionRadiusKm)
	router := routing.NewRouter()
	policy := sla.NewPolicy(sla.DefaultDueHours)

	tickets := service.NewTicketService(service.TicketDependencies{
		TicketRepo: repo,
		Resolver:   resolver,
		Router:     router,
		Policy:     policy,
		Dispatcher: events.NewInMemoryDispatcher(),
		Clock:      fake,
		Metrics:    metrics,
		Logger:     logger,
		Config:     config.TicketConfig{IDPrefix: "NRB"},
	})
	query := service.NewQueryService(repo)

	app := fiber.New(fiber.Config{ErrorHandler: httptransport.ErrorHandler(logger, metrics)})
	httptransport.RegisterMiddlewares(app, logger, metrics, time.Second)
	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler("county-tickets", "test", nil, nil),
		Tickets:        handlers.NewTicketsHandler(tickets, query, fake),
		StaffTickets:   handlers.NewStaffTicketsHandler(tickets, query, fake),
		Geo:            handlers.NewGeoHandler(resolver, router, policy),
		Preferences:    handlers.NewPreferencesHandler(preferences.NewMemoryStore()),
		MetricsHandler: metrics.Handler(),
	})
	return testServer{app: app, clock: fake}
}

func (s testServer) do(t *testing.T, method, path, actor, role, body string) (int, envelope) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if actor != "" {
		req.Header.Set(auth.HeaderActorID, actor)
	}
	if role != "" {
		req.Header.Set(auth.HeaderActorRole, role)
	}
	resp, err := s.app.Test(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	var env envelope
	if len(raw) > 0 && strings.HasPrefix(resp.Header.Get("Content-Type"), "application/json") {
		if err := json.Unmarshal(raw, &env); err != nil {
			t.Fatalf("decode %s: %v", raw, err)
		}
	}
	return resp.StatusCode, env
}

func decodeTicket(t *testing.T, env envelope) ticketBody {
	t.Helper()
	var out ticketBody
	if err := json.Unmarshal(env.Data, &out); err != nil {
		t.Fatalf("decode ticket %s: %v", env.Data, err)
	}
	return out
}

func requireError(t *testing.T, status int, env envelope, wantStatus int, wantCode string) {
	t.Helper()
	if status != wantStatus {
		t.Fatalf("status = %d, want %d (error %+v)", status, wantStatus, env.Error)
	}
	if env.Error == nil || env.Error.Code != wantCode {
		t.Fatalf("error = %+v, want code %s", env.Error, wantCode)
	}
}

const wasteBody = `{"category":"complaint","issue_category":"WASTE","title":"Garbage not collected",
"description":"Bins not emptied for a week","coordinates":{"lat":-1.2892,"lng":36.7850}}`

func TestTicketLifecycleOverHTTP(t *testing.T) {
	s := newTestServer(t)

	status, env := s.do(t, http.MethodPost, "/tickets", "citizen-1", "", wasteBody)
	if status != http.StatusCreated {
		t.Fatalf("create status = %d, error %+v", status, env.Error)
	}
	created := decodeTicket(t, env)
	if created.TicketID != "NRB-2026-000001" || created.Status != "new" || created.Version != 1 {
		t.Fatalf("created = %+v", created)
	}
	if created.WardCode != "KILIMANI" || created.AssignedDepartment != "Environment" {
		t.Fatalf("location/routing = %s/%s", created.WardCode, created.AssignedDepartment)
	}
	if created.SLA == nil || created.SLA.Overdue {
		t.Fatalf("sla = %+v", created.SLA)
	}

	path := "/staff/tickets/" + created.TicketID
	status, env = s.do(t, http.MethodPost, path+"/assign", "citizen-1", "", `{"assignee":"officer-7"}`)
	requireError(t, status, env, http.StatusForbidden, "HTTP_403")

	status, env = s.do(t, http.MethodPost, path+"/assign", "officer-7", "staff", `{"version":1,"assignee":"officer-7"}`)
	if status != http.StatusOK {
		t.Fatalf("assign status = %d, error %+v", status, env.Error)
	}
	assigned := decodeTicket(t, env)
	if assigned.Status != "assigned" || assigned.Version != 2 || assigned.AssignedTo != "officer-7" {
		t.Fatalf("assigned = %+v", assigned)
	}

	// A second writer holding version 1 loses.
	status, env = s.do(t, http.MethodPost, path+"/assign", "officer-9", "staff", `{"version":1,"assignee":"officer-9"}`)
	requireError(t, status, env, http.StatusConflict, "STALE_STATE")

	status, env = s.do(t, http.MethodPost, path+"/resolve", "officer-7", "staff", "")
	requireError(t, status, env, http.StatusConflict, "INVALID_TRANSITION")

	status, env = s.do(t, http.MethodPost, path+"/advance", "officer-7", "staff", "")
	if status != http.StatusOK || decodeTicket(t, env).Status != "in_progress" {
		t.Fatalf("advance status = %d, error %+v", status, env.Error)
	}

	status, env = s.do(t, http.MethodPost, path+"/escalate", "officer-7", "staff", `{}`)
	requireError(t, status, env, http.StatusBadRequest, "VALIDATION_FAILED")

	s.clock.Advance(3 * time.Hour)
	status, env = s.do(t, http.MethodPost, path+"/resolve", "officer-7", "staff", `{"note":"collected"}`)
	if status != http.StatusOK || decodeTicket(t, env).Status != "resolved" {
		t.Fatalf("resolve status = %d, error %+v", status, env.Error)
	}

	status, env = s.do(t, http.MethodPost, "/tickets/"+created.TicketID+"/rating", "citizen-1", "", `{"rating":5}`)
	if status != http.StatusOK {
		t.Fatalf("rate status = %d, error %+v", status, env.Error)
	}
	rated := decodeTicket(t, env)
	if rated.CurrentRating == nil || *rated.CurrentRating != 5 {
		t.Fatalf("current rating = %v", rated.CurrentRating)
	}

	status, env = s.do(t, http.MethodGet, "/tickets/"+created.ID, "", "", "")
	if status != http.StatusOK {
		t.Fatalf("get status = %d", status)
	}
	detail := decodeTicket(t, env)
	actions := make([]string, 0, len(detail.History))
	for _, h := range detail.History {
		actions = append(actions, h.Action)
	}
	if got := strings.Join(actions, ","); got != "CREATE,ASSIGN,IN_PROGRESS,RESOLVE" {
		t.Fatalf("history = %s", got)
	}

	status, env = s.do(t, http.MethodGet, "/tickets?status=resolved", "", "", "")
	if status != http.StatusOK {
		t.Fatalf("list status = %d", status)
	}
	var rows []ticketBody
	if err := json.Unmarshal(env.Data, &rows); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(rows) != 1 || rows[0].TicketID != created.TicketID {
		t.Fatalf("rows = %+v", rows)
	}
}

func TestCreateRejectsBadInput(t *testing.T) {
	s := newTestServer(t)
	tests := []struct {
		name string
		body string
	}{
		{"unknown issue category", `{"category":"complaint","issue_category":"LAVA","title":"x","description":"y"}`},
		{"missing title", `{"category":"complaint","issue_category":"WASTE","description":"y"}`},
		{"broken json", `{"category":`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, env := s.do(t, http.MethodPost, "/tickets", "", "", tt.body)
			requireError(t, status, env, http.StatusBadRequest, "VALIDATION_FAILED")
		})
	}
	status, env := s.do(t, http.MethodGet, "/tickets", "", "", "")
	if status != http.StatusOK || string(env.Data) != "[]" {
		t.Fatalf("list after rejects = %d %s", status, env.Data)
	}
}

func TestNotFoundIsJSON(t *testing.T) {
	s := newTestServer(t)
	status, env := s.do(t, http.MethodGet, "/tickets/NRB-2026-000042", "", "", "")
	requireError(t, status, env, http.StatusNotFound, "NOT_FOUND")

	status, env = s.do(t, http.MethodGet, "/no/such/route", "", "", "")
	requireError(t, status, env, http.StatusNotFound, "NOT_FOUND")
}

func TestUnknownActorRoleRejected(t *testing.T) {
	s := newTestServer(t)
	status, env := s.do(t, http.MethodGet, "/tickets", "m-1", "mayor", "")
	requireError(t, status, env, http.StatusBadRequest, "VALIDATION_FAILED")
}

func TestGeoEndpoints(t *testing.T) {
	s := newTestServer(t)

	status, env := s.do(t, http.MethodGet, "/geo/resolve?lat=-1.2921&lng=36.7856", "", "", "")
	if status != http.StatusOK {
		t.Fatalf("resolve status = %d, error %+v", status, env.Error)
	}
	var res geo.Resolution
	if err := json.Unmarshal(env.Data, &res); err != nil {
		t.Fatalf("decode resolution: %v", err)
	}
	if !res.Resolved || res.WardCode != "KILIMANI" {
		t.Fatalf("resolution = %+v", res)
	}

	status, env = s.do(t, http.MethodGet, "/geo/resolve?lat=abc&lng=36.7", "", "", "")
	requireError(t, status, env, http.StatusBadRequest, "VALIDATION_FAILED")

	status, env = s.do(t, http.MethodGet, "/wards", "", "", "")
	if status != http.StatusOK {
		t.Fatalf("wards status = %d", status)
	}
	var groups []struct {
		Name  string `json:"name"`
		Wards []struct {
			Code string `json:"code"`
		} `json:"wards"`
	}
	if err := json.Unmarshal(env.Data, &groups); err != nil {
		t.Fatalf("decode wards: %v", err)
	}
	if len(groups) == 0 || groups[0].Name != "Dagoretti North" || len(groups[0].Wards) == 0 {
		t.Fatalf("groups = %+v", groups)
	}

	status, env = s.do(t, http.MethodGet, "/wards/kilimani", "", "", "")
	if status != http.StatusOK {
		t.Fatalf("ward status = %d", status)
	}

	status, env = s.do(t, http.MethodGet, "/routing/waste", "", "", "")
	if status != http.StatusOK {
		t.Fatalf("route status = %d, error %+v", status, env.Error)
	}
	var route struct {
		Department string `json:"department"`
		Source     string `json:"source"`
		DueHours   int    `json:"due_hours"`
	}
	if err := json.Unmarshal(env.Data, &route); err != nil {
		t.Fatalf("decode route: %v", err)
	}
	if route.Department != "Environment" || route.Source != "AUTO" || route.DueHours <= 0 {
		t.Fatalf("route = %+v", route)
	}

	status, env = s.do(t, http.MethodGet, "/routing/WASTE?override=Inspectorate", "", "", "")
	if err := json.Unmarshal(env.Data, &route); err != nil || status != http.StatusOK {
		t.Fatalf("override route = %d %v", status, err)
	}
	if route.Source != "USER_OVERRIDE" {
		t.Fatalf("override source = %s", route.Source)
	}
}

func TestPreferencesAreOwnerScoped(t *testing.T) {
	s := newTestServer(t)

	status, env := s.do(t, http.MethodPut, "/preferences/citizen-1/map_guide_seen", "citizen-1", "", `{"value":"true"}`)
	if status != http.StatusOK {
		t.Fatalf("put status = %d, error %+v", status, env.Error)
	}

	status, env = s.do(t, http.MethodGet, "/preferences/citizen-1/map_guide_seen", "citizen-2", "", "")
	requireError(t, status, env, http.StatusForbidden, "HTTP_403")

	status, env = s.do(t, http.MethodGet, "/preferences/citizen-1/map_guide_seen", "citizen-1", "", "")
	if status != http.StatusOK || !strings.Contains(string(env.Data), `"true"`) {
		t.Fatalf("get = %d %s", status, env.Data)
	}

	status, env = s.do(t, http.MethodGet, "/preferences/citizen-1/other", "citizen-1", "", "")
	requireError(t, status, env, http.StatusNotFound, "NOT_FOUND")

	status, env = s.do(t, http.MethodGet, "/preferences/citizen-1", "officer-7", "staff", "")
	if status != http.StatusOK || !strings.Contains(string(env.Data), "map_guide_seen") {
		t.Fatalf("list = %d %s", status, env.Data)
	}
}

func TestHealthAndMetrics(t *testing.T) {
	s := newTestServer(t)

	status, _ := s.do(t, http.MethodGet, "/health/live", "", "", "")
	if status != http.StatusOK {
		t.Fatalf("live status = %d", status)
	}
	status, _ = s.do(t, http.MethodGet, "/health/ready", "", "", "")
	if status != http.StatusOK {
		t.Fatalf("ready status = %d", status)
	}

	resp, err := s.app.Test(httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if err != nil {
		t.Fatalf("metrics: %v", err)
	}
	defer resp.Body.Close()
	raw, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK || !strings.Contains(string(raw), "http_requests_total") {
		t.Fatalf("metrics = %d %s", resp.StatusCode, raw)
	}
}

func TestPreferencesSurviveLaterRequests(t *testing.T) {
	s := newTestServer(t)

	status, env := s.do(t, http.MethodPut, "/preferences/citizen-1/map_guide_seen", "citizen-1", "", `{"value":"true"}`)
	if status != http.StatusOK {
		t.Fatalf("put status = %d, error %+v", status, env.Error)
	}
	// Later requests with other params and headers must not disturb the stored key.
	for i := 0; i < 10; i++ {
		s.do(t, http.MethodPut, "/preferences/ZZZZZZZZZZZZZZZZ/QQQQQQQQQQQQQQQ", "ZZZZZZZZZZZZZZZZ", "", `{"value":"x"}`)
		s.do(t, http.MethodGet, "/preferences/citizen-1/other", "citizen-1", "", "")
		s.do(t, http.MethodGet, "/wards/kilimani", "", "", "")
	}

	status, env = s.do(t, http.MethodGet, "/preferences/citizen-1", "citizen-1", "", "")
	if status != http.StatusOK {
		t.Fatalf("list status = %d, error %+v", status, env.Error)
	}
	var values map[string]string
	if err := json.Unmarshal(env.Data, &values); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(values) != 1 || values["map_guide_seen"] != "true" {
		t.Fatalf("preferences = %v", values)
	}
}

func TestActorIDSurvivesLaterRequests(t *testing.T) {
	s := newTestServer(t)

	status, env := s.do(t, http.MethodPost, "/tickets", "citizen-1", "", wasteBody)
	if status != http.StatusCreated {
		t.Fatalf("create status = %d, error %+v", status, env.Error)
	}
	created := decodeTicket(t, env)
	for i := 0; i < 10; i++ {
		s.do(t, http.MethodGet, "/tickets", "someone-else-entirely", "staff", "")
	}

	status, env = s.do(t, http.MethodGet, "/tickets/"+created.ID, "", "", "")
	if status != http.StatusOK {
		t.Fatalf("get status = %d", status)
	}
	var detail struct {
		CreatedBy struct {
			ID string `json:"id"`
		} `json:"created_by"`
		History []struct {
			PerformedBy struct {
				ID string `json:"id"`
			} `json:"performed_by"`
		} `json:"history"`
	}
	if err := json.Unmarshal(env.Data, &detail); err != nil {
		t.Fatalf("decode ticket: %v", err)
	}
	if detail.CreatedBy.ID != "citizen-1" || len(detail.History) != 1 || detail.History[0].PerformedBy.ID != "citizen-1" {
		t.Fatalf("creator = %+v", detail)
	}
}

func TestOutdatedVersionIsStaleState(t *testing.T) {
	s := newTestServer(t)

	status, env := s.do(t, http.MethodPost, "/tickets", "citizen-1", "", wasteBody)
	if status != http.StatusCreated {
		t.Fatalf("create status = %d, error %+v", status, env.Error)
	}
	path := "/staff/tickets/" + decodeTicket(t, env).TicketID
	status, env = s.do(t, http.MethodPost, path+"/assign", "officer-7", "staff", `{"version":1,"assignee":"officer-7"}`)
	if status != http.StatusOK {
		t.Fatalf("assign status = %d, error %+v", status, env.Error)
	}
	status, env = s.do(t, http.MethodPost, path+"/advance", "officer-7", "staff", `{"version":2}`)
	if status != http.StatusOK || decodeTicket(t, env).Version != 3 {
		t.Fatalf("advance status = %d, error %+v", status, env.Error)
	}

	// Another resolver closes the ticket while the first still holds version 3.
	status, env = s.do(t, http.MethodPost, path+"/resolve", "officer-9", "staff", `{"version":3}`)
	if status != http.StatusOK {
		t.Fatalf("resolve status = %d, error %+v", status, env.Error)
	}

	status, env = s.do(t, http.MethodPost, path+"/escalate", "officer-7", "staff", `{"version":3,"reason":"no response in 10 days"}`)
	requireError(t, status, env, http.StatusConflict, "STALE_STATE")

	citizenPath := "/tickets/" + strings.TrimPrefix(path, "/staff/tickets/")
	status, env = s.do(t, http.MethodPost, citizenPath+"/rating", "citizen-1", "", `{"version":3,"rating":4}`)
	requireError(t, status, env, http.StatusConflict, "STALE_STATE")
	status, env = s.do(t, http.MethodPost, citizenPath+"/remarks", "citizen-1", "", `{"version":3,"text":"any news?"}`)
	requireError(t, status, env, http.StatusConflict, "STALE_STATE")

	status, env = s.do(t, http.MethodGet, citizenPath, "", "", "")
	if status != http.StatusOK {
		t.Fatalf("get status = %d", status)
	}
	final := decodeTicket(t, env)
	if final.Status != "resolved" || final.Version != 4 || len(final.History) != 4 {
		t.Fatalf("final = %+v", final)
	}
}
