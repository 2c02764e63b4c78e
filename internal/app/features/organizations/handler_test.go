package organizations_test

import (
	"net/http"
	"testing"

	"github.com/dalemusser/projecthub/internal/app/features/organizations"
	orgsvc "github.com/dalemusser/projecthub/internal/app/services/organizations"
	"github.com/dalemusser/projecthub/internal/app/system/authscope"
	"github.com/dalemusser/projecthub/internal/app/system/indexes"
	"github.com/dalemusser/projecthub/internal/domain/models"
	"github.com/dalemusser/projecthub/internal/testutil"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

const manageProject = authscope.DefaultManageProject

func newTestRouter(t *testing.T, policy string) (chi.Router, *testutil.Fixtures) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	svc := orgsvc.New(db, nil, zap.NewNop(), policy)
	h := organizations.NewHandler(svc, authscope.DefaultScopes(), zap.NewNop())

	r := chi.NewRouter()
	r.Mount("/organizations", organizations.Routes(h))
	return r, testutil.NewFixtures(t, db)
}

func serve(r chi.Router, req *http.Request) *testutil.ResponseRecorder {
	rec := testutil.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestHandleCreate_Success(t *testing.T) {
	router, fx := newTestRouter(t, orgsvc.PolicyAny)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	fx.CreateBusiness(ctx, "biz-1", "Bea Business", nil)

	req := testutil.NewJSONRequest(t, http.MethodPost, "/organizations", map[string]string{
		"name":    "Test Organization",
		"domain":  "test.org",
		"website": "https://test.org",
	})
	rec := serve(router, testutil.WithIdentity(req, "biz-1", manageProject))

	rec.AssertStatus(t, http.StatusCreated)
	rec.AssertCORS(t)
	var org models.Organization
	rec.Decode(t, &org)
	if org.Name != "Test Organization" || len(org.Liaisons) != 1 {
		t.Errorf("unexpected org %+v", org)
	}

	count, err := fx.DB().Collection("organizations").CountDocuments(ctx, bson.M{"name": "Test Organization"})
	if err != nil {
		t.Fatalf("CountDocuments failed: %v", err)
	}
	if count != 1 {
		t.Errorf("expected 1 organization, got %d", count)
	}
}

func TestHandleCreate_Errors(t *testing.T) {
	router, fx := newTestRouter(t, orgsvc.PolicyAny)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	if err := indexes.EnsureAll(ctx, fx.DB()); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}
	fx.CreateBusiness(ctx, "biz-1", "Bea Business", nil)
	fx.CreateStudent(ctx, "student-1", "Sam")
	fx.CreateOrganization(ctx, "Acme Corp")

	tests := []struct {
		name   string
		caller string
		scopes []string
		body   any
		status int
		msg    string
	}{
		{"no scope", "biz-1", nil, map[string]string{"name": "X"}, http.StatusForbidden, "Missing required scope"},
		{"student", "student-1", []string{manageProject}, map[string]string{"name": "X"}, http.StatusForbidden, "Only business users can create organizations"},
		{"missing name", "biz-1", []string{manageProject}, map[string]string{}, http.StatusBadRequest, "Name is required."},
		{"duplicate", "biz-1", []string{manageProject}, map[string]string{"name": "ACME corp"}, http.StatusConflict, "An organization with this name already exists"},
		{"bad json", "biz-1", []string{manageProject}, "{", http.StatusBadRequest, "Malformed JSON body"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := testutil.NewJSONRequest(t, http.MethodPost, "/organizations", tt.body)
			rec := serve(router, testutil.WithIdentity(req, tt.caller, tt.scopes...))
			rec.AssertStatus(t, tt.status)
			rec.AssertMessage(t, tt.msg)
		})
	}
}

func TestServeList_Filters(t *testing.T) {
	router, fx := newTestRouter(t, orgsvc.PolicyAny)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	fx.CreateOrganization(ctx, "Alpha Labs")
	fx.CreateOrganization(ctx, "Beta Works")

	rec := serve(router, testutil.NewRequest(http.MethodGet, "/organizations"))
	rec.AssertStatus(t, http.StatusUnauthorized)

	rec = serve(router, testutil.WithIdentity(testutil.NewRequest(http.MethodGet, "/organizations?name=alp"), "u1"))
	rec.AssertStatus(t, http.StatusOK)
	var orgs []models.Organization
	rec.Decode(t, &orgs)
	if len(orgs) != 1 || orgs[0].Name != "Alpha Labs" {
		t.Errorf("name filter returned %+v", orgs)
	}

	rec = serve(router, testutil.WithIdentity(testutil.NewRequest(http.MethodGet, "/organizations?domain=EXAMPLE.com"), "u1"))
	rec.Decode(t, &orgs)
	if len(orgs) != 2 {
		t.Errorf("domain filter returned %d orgs", len(orgs))
	}
}

func TestServeGet(t *testing.T) {
	router, fx := newTestRouter(t, orgsvc.PolicyAny)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	m := fx.CreateMarketplace(ctx, 0)

	rec := serve(router, testutil.WithIdentity(testutil.NewRequest(http.MethodGet, "/organizations/"+m.Org.ID.Hex()), "u1"))
	rec.AssertStatus(t, http.StatusOK)
	var org models.Organization
	rec.Decode(t, &org)
	if len(org.LiaisonProfiles) != 1 || org.LiaisonProfiles[0].Name != "Lia Ison" {
		t.Errorf("liaison profiles = %+v", org.LiaisonProfiles)
	}

	rec = serve(router, testutil.WithIdentity(testutil.NewRequest(http.MethodGet, "/organizations/"+primitive.NewObjectID().Hex()), "u1"))
	rec.AssertStatus(t, http.StatusNotFound)

	rec = serve(router, testutil.WithIdentity(testutil.NewRequest(http.MethodGet, "/organizations/bad"), "u1"))
	rec.AssertStatus(t, http.StatusBadRequest)
	rec.AssertMessage(t, "Invalid organization id")
}

func TestHandleUpdate_LiaisonPolicy(t *testing.T) {
	router, fx := newTestRouter(t, orgsvc.PolicyLiaison)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	m := fx.CreateMarketplace(ctx, 0)
	target := "/organizations/" + m.Org.ID.Hex()

	req := testutil.NewJSONRequest(t, http.MethodPut, target, map[string]string{"location": "Denver"})
	rec := serve(router, testutil.WithIdentity(req, "outsider", manageProject))
	rec.AssertStatus(t, http.StatusForbidden)

	req = testutil.NewJSONRequest(t, http.MethodPut, target, map[string]string{"location": "Denver"})
	rec = serve(router, testutil.WithIdentity(req, m.Liaison.ID, manageProject))
	rec.AssertStatus(t, http.StatusOK)
	var org models.Organization
	rec.Decode(t, &org)
	if org.Location != "Denver" || org.Name != "Acme Corp" {
		t.Errorf("unexpected org %+v", org)
	}
}

func TestLiaisons(t *testing.T) {
	router, fx := newTestRouter(t, orgsvc.PolicyAny)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	m := fx.CreateMarketplace(ctx, 0)
	fx.CreateBusiness(ctx, "biz-2", "Second Liaison", nil)
	target := "/organizations/" + m.Org.ID.Hex() + "/liaisons/biz-2"

	rec := serve(router, testutil.WithIdentity(testutil.NewRequest(http.MethodPut, target), m.Liaison.ID, manageProject))
	rec.AssertStatus(t, http.StatusOK)
	var org models.Organization
	rec.Decode(t, &org)
	if !org.HasLiaison("biz-2") {
		t.Errorf("liaisons = %v", org.Liaisons)
	}

	rec = serve(router, testutil.WithIdentity(testutil.NewRequest(http.MethodPut, target), m.Liaison.ID, manageProject))
	rec.AssertStatus(t, http.StatusConflict)

	rec = serve(router, testutil.WithIdentity(testutil.NewRequest(http.MethodDelete, target), m.Liaison.ID, manageProject))
	rec.AssertStatus(t, http.StatusOK)
	rec.Decode(t, &org)
	if org.HasLiaison("biz-2") {
		t.Errorf("liaisons = %v", org.Liaisons)
	}

	rec = serve(router, testutil.WithIdentity(testutil.NewRequest(http.MethodDelete, target), m.Liaison.ID, manageProject))
	rec.AssertStatus(t, http.StatusConflict)
}
