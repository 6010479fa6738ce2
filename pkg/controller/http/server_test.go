package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	server "github.com/secmon-lab/themis/pkg/controller/http"
	"github.com/secmon-lab/themis/pkg/domain/model"
	"github.com/secmon-lab/themis/pkg/domain/types"
	"github.com/secmon-lab/themis/pkg/repository/memory"
	"github.com/secmon-lab/themis/pkg/usecase"
)

const testOrgID = "org-http"

var testNow = time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC)

func newTestServer(t *testing.T, opts ...server.Options) (*server.Server, *memory.Memory) {
	t.Helper()

	repo := memory.New()
	uc := usecase.New(repo, usecase.WithClock(func() time.Time { return testNow }))
	gt.NoError(t, uc.Threat.SeedCatalog(context.Background(), []*model.Threat{
		{
			ID:                  "T-CYB-001",
			Name:                "Ransomware",
			Description:         "Encryption of business data by malware",
			Category:            types.ThreatCategoryCyber,
			NIS2Type:            types.NIS2Integrity,
			BaselineProbability: 3,
			RecommendedControls: []string{"A.8.7", "A.8.13"},
		},
		{
			ID:          "T-NAT-001",
			Name:        "Flood",
			Description: "River flood reaching the data center",
			Category:    types.ThreatCategoryNatural,
			NIS2Type:    types.NIS2Availability,
		},
	})).Required()

	return server.New(uc, opts...), repo
}

type client struct {
	t     *testing.T
	srv   http.Handler
	orgID string
}

func (c *client) do(method, path string, body any) *httptest.ResponseRecorder {
	c.t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		gt.NoError(c.t, err).Required()
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if c.orgID != "" {
		req.Header.Set(server.OrganizationHeader, c.orgID)
	}

	w := httptest.NewRecorder()
	c.srv.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	gt.NoError(t, json.Unmarshal(w.Body.Bytes(), &v)).Required()
	return v
}

type threatBody struct {
	ID                  string   `json:"id"`
	Name                string   `json:"name"`
	Category            string   `json:"category"`
	RecommendedControls []string `json:"recommended_controls"`
	IsCustom            bool     `json:"is_custom"`
}

type sessionBody struct {
	ID           string `json:"id"`
	ThreatID     string `json:"threat_id"`
	Stage        string `json:"stage"`
	Saved        bool   `json:"saved"`
	Closed       bool   `json:"closed"`
	RiskID       int64  `json:"risk_id"`
	CanQuickSave bool   `json:"can_quick_save"`
	CanFullSave  bool   `json:"can_full_save"`
	Assessment   struct {
		Probability int `json:"probability"`
	} `json:"assessment"`
	Summary struct {
		InherentScore       int      `json:"inherent_score"`
		InherentLevel       string   `json:"inherent_level"`
		ResidualScore       int      `json:"residual_score"`
		ReductionPercentage *float64 `json:"reduction_percentage"`
		Status              string   `json:"status"`
	} `json:"summary"`
}

type riskBody struct {
	ID              int64    `json:"id"`
	ThreatID        string   `json:"threat_id"`
	InherentScore   int      `json:"inherent_score"`
	InherentLevel   string   `json:"inherent_level"`
	ResidualScore   int      `json:"residual_score"`
	RelatedControls []string `json:"related_controls"`
	Status          string   `json:"status"`
}

type saveBody struct {
	Risk    riskBody    `json:"risk"`
	Session sessionBody `json:"session"`
}

type errorBody struct {
	Error string `json:"error"`
}

func TestServer_Health(t *testing.T) {
	srv, _ := newTestServer(t)
	c := &client{t: t, srv: srv}

	w := c.do(http.MethodGet, "/health", nil)
	gt.Value(t, w.Code).Equal(http.StatusOK)
}

func TestServer_Threats(t *testing.T) {
	srv, _ := newTestServer(t)
	c := &client{t: t, srv: srv, orgID: testOrgID}

	t.Run("create requires organization", func(t *testing.T) {
		anon := &client{t: t, srv: srv}
		w := anon.do(http.MethodPost, "/api/threats", map[string]any{
			"name":        "Supplier outage",
			"description": "Loss of a critical supplier",
			"category":    "ORGANIZATIONAL",
		})
		gt.Value(t, w.Code).Equal(http.StatusPreconditionFailed)
		gt.String(t, decode[errorBody](t, w).Error).NotEqual("")
	})

	t.Run("create validates content", func(t *testing.T) {
		w := c.do(http.MethodPost, "/api/threats", map[string]any{
			"name":        "Supplier outage",
			"description": "Loss of a critical supplier",
			"category":    "ALIENS",
		})
		gt.Value(t, w.Code).Equal(http.StatusBadRequest)
	})

	t.Run("unknown fields are rejected", func(t *testing.T) {
		w := c.do(http.MethodPost, "/api/threats", map[string]any{"title": "x"})
		gt.Value(t, w.Code).Equal(http.StatusBadRequest)
	})

	w := c.do(http.MethodPost, "/api/threats", map[string]any{
		"name":                 "Supplier outage",
		"description":          "Loss of a critical supplier",
		"category":             "ORGANIZATIONAL",
		"recommended_controls": []string{"A.5.19"},
	})
	gt.Value(t, w.Code).Equal(http.StatusCreated)
	created := decode[threatBody](t, w)
	gt.Bool(t, created.IsCustom).True()

	t.Run("list with filter", func(t *testing.T) {
		w := c.do(http.MethodGet, "/api/threats?category=NATURAL_ENVIRONMENTAL", nil)
		gt.Value(t, w.Code).Equal(http.StatusOK)
		threats := decode[[]threatBody](t, w)
		gt.Array(t, threats).Length(1).Required()
		gt.Value(t, threats[0].ID).Equal("T-NAT-001")

		w = c.do(http.MethodGet, "/api/threats?category=ALIENS", nil)
		gt.Value(t, w.Code).Equal(http.StatusBadRequest)
	})

	t.Run("list includes custom entries of the organization only", func(t *testing.T) {
		threats := decode[[]threatBody](t, c.do(http.MethodGet, "/api/threats", nil))
		gt.Array(t, threats).Length(3)

		other := &client{t: t, srv: srv, orgID: "org-other"}
		threats = decode[[]threatBody](t, other.do(http.MethodGet, "/api/threats", nil))
		gt.Array(t, threats).Length(2)
	})

	t.Run("update", func(t *testing.T) {
		w := c.do(http.MethodPut, "/api/threats/"+created.ID, map[string]any{
			"name":        "Supplier insolvency",
			"description": "Loss of a critical supplier",
			"category":    "ORGANIZATIONAL",
		})
		gt.Value(t, w.Code).Equal(http.StatusOK)
		gt.Value(t, decode[threatBody](t, w).Name).Equal("Supplier insolvency")

		w = c.do(http.MethodPut, "/api/threats/T-CYB-001", map[string]any{
			"name":        "Ransomware",
			"description": "x",
			"category":    "CYBER_TECHNICAL",
		})
		gt.Value(t, w.Code).Equal(http.StatusPreconditionFailed)
	})

	t.Run("unknown threat", func(t *testing.T) {
		w := c.do(http.MethodGet, "/api/threats/T-UNK-404", nil)
		gt.Value(t, w.Code).Equal(http.StatusNotFound)
	})
}

func TestServer_ThreatDeletionGuard(t *testing.T) {
	srv, _ := newTestServer(t)
	c := &client{t: t, srv: srv, orgID: testOrgID}

	threat := decode[threatBody](t, c.do(http.MethodPost, "/api/threats", map[string]any{
		"name":        "Insider leak",
		"description": "Exfiltration by an employee",
		"category":    "HUMAN",
	}))

	session := decode[sessionBody](t, c.do(http.MethodPost, "/api/evaluations", map[string]any{"threat_id": threat.ID}))
	w := c.do(http.MethodPut, "/api/evaluations/"+session.ID+"/assessment", map[string]any{
		"probability":        2,
		"impact_operational": 3,
	})
	gt.Value(t, w.Code).Equal(http.StatusOK)
	saved := decode[saveBody](t, c.do(http.MethodPost, "/api/evaluations/"+session.ID+"/save", map[string]any{"quick_save": true}))

	refs := decode[struct {
		RiskCount int `json:"risk_count"`
	}](t, c.do(http.MethodGet, "/api/threats/"+threat.ID+"/references", nil))
	gt.Value(t, refs.RiskCount).Equal(1)

	w = c.do(http.MethodDelete, "/api/threats/"+threat.ID+"?confirm=true", nil)
	gt.Value(t, w.Code).Equal(http.StatusConflict)
	gt.String(t, decode[errorBody](t, w).Error).Contains("1 risks")

	w = c.do(http.MethodDelete, "/api/risks/"+formatID(saved.Risk.ID), nil)
	gt.Value(t, w.Code).Equal(http.StatusNoContent)

	w = c.do(http.MethodDelete, "/api/threats/"+threat.ID, nil)
	gt.Value(t, w.Code).Equal(http.StatusPreconditionRequired)

	w = c.do(http.MethodDelete, "/api/threats/"+threat.ID+"?confirm=true", nil)
	gt.Value(t, w.Code).Equal(http.StatusNoContent)

	w = c.do(http.MethodGet, "/api/threats/"+threat.ID, nil)
	gt.Value(t, w.Code).Equal(http.StatusNotFound)
}

func TestServer_EvaluationQuickSaveClosesSession(t *testing.T) {
	srv, _ := newTestServer(t)
	c := &client{t: t, srv: srv, orgID: testOrgID}

	w := c.do(http.MethodPost, "/api/evaluations", map[string]any{"threat_id": "T-CYB-001"})
	gt.Value(t, w.Code).Equal(http.StatusCreated)
	session := decode[sessionBody](t, w)
	gt.Value(t, session.Stage).Equal("assessment")
	gt.Value(t, session.Assessment.Probability).Equal(3)
	gt.Bool(t, session.CanQuickSave).True()
	gt.Bool(t, session.CanFullSave).False()

	w = c.do(http.MethodPut, "/api/evaluations/"+session.ID+"/assessment", map[string]any{
		"probability":     3,
		"impact_economic": 4,
	})
	gt.Value(t, w.Code).Equal(http.StatusOK)

	w = c.do(http.MethodPost, "/api/evaluations/"+session.ID+"/advance", nil)
	gt.Value(t, w.Code).Equal(http.StatusPreconditionFailed)

	w = c.do(http.MethodPost, "/api/evaluations/"+session.ID+"/save", map[string]any{"quick_save": true})
	gt.Value(t, w.Code).Equal(http.StatusOK)
	saved := decode[saveBody](t, w)
	gt.Value(t, saved.Risk.InherentScore).Equal(12)
	gt.Value(t, saved.Risk.Status).Equal("Valutato")
	gt.Bool(t, saved.Session.Closed).True()

	w = c.do(http.MethodGet, "/api/evaluations/"+session.ID, nil)
	gt.Value(t, w.Code).Equal(http.StatusNotFound)

	risks := decode[[]riskBody](t, c.do(http.MethodGet, "/api/risks", nil))
	gt.Array(t, risks).Length(1)
}

func TestServer_EvaluationFullFlow(t *testing.T) {
	srv, _ := newTestServer(t)
	c := &client{t: t, srv: srv, orgID: testOrgID}

	session := decode[sessionBody](t, c.do(http.MethodPost, "/api/evaluations", map[string]any{
		"threat_id": "T-CYB-001",
		"asset_id":  "srv-backup-01",
	}))
	base := "/api/evaluations/" + session.ID

	gt.Value(t, c.do(http.MethodPut, base+"/assessment", map[string]any{
		"probability":        4,
		"impact_operational": 5,
		"impact_economic":    3,
		"impact_legal":       2,
	}).Code).Equal(http.StatusOK)

	w := c.do(http.MethodPut, base+"/assessment", map[string]any{"probability": 6})
	gt.Value(t, w.Code).Equal(http.StatusBadRequest)

	gt.Value(t, c.do(http.MethodPost, base+"/advance", nil).Code).Equal(http.StatusOK)

	w = c.do(http.MethodPost, base+"/save", map[string]any{"quick_save": false})
	gt.Value(t, w.Code).Equal(http.StatusPreconditionFailed)

	gt.Value(t, c.do(http.MethodPut, base+"/treatment", map[string]any{
		"selected_controls":    []string{"A.8.7"},
		"residual_probability": 2,
		"residual_impact":      3,
		"strategy":             "mitigate",
		"description":          "Deploy EDR and offline backups",
		"deadline":             "2026-09-30",
		"responsible":          "CISO",
	}).Code).Equal(http.StatusOK)

	w = c.do(http.MethodPut, base+"/treatment", map[string]any{"deadline": "30/09/2026"})
	gt.Value(t, w.Code).Equal(http.StatusBadRequest)

	w = c.do(http.MethodPost, base+"/advance", nil)
	gt.Value(t, w.Code).Equal(http.StatusOK)
	summary := decode[sessionBody](t, w)
	gt.Value(t, summary.Stage).Equal("summary")
	gt.Value(t, summary.Summary.InherentScore).Equal(20)
	gt.Value(t, summary.Summary.InherentLevel).Equal("CRITICAL")
	gt.Value(t, summary.Summary.ResidualScore).Equal(6)
	gt.Value(t, *summary.Summary.ReductionPercentage).Equal(70.0)
	gt.Bool(t, summary.CanFullSave).True()

	w = c.do(http.MethodPost, base+"/back", nil)
	gt.Value(t, decode[sessionBody](t, w).Stage).Equal("treatment")
	gt.Value(t, c.do(http.MethodPost, base+"/advance", nil).Code).Equal(http.StatusOK)

	w = c.do(http.MethodPost, base+"/save", map[string]any{"quick_save": false})
	gt.Value(t, w.Code).Equal(http.StatusOK)
	saved := decode[saveBody](t, w)
	gt.Value(t, saved.Risk.Status).Equal("In trattamento")
	gt.Value(t, saved.Risk.RelatedControls).Equal([]string{"A.8.7"})
	gt.Bool(t, saved.Session.Saved).True()
	gt.Value(t, saved.Session.RiskID).Equal(saved.Risk.ID)

	t.Run("generate downstream tasks", func(t *testing.T) {
		riskPath := "/api/risks/" + formatID(saved.Risk.ID)

		w := c.do(http.MethodPost, riskPath+"/actions", map[string]any{})
		gt.Value(t, w.Code).Equal(http.StatusCreated)
		action := decode[struct {
			Code       string `json:"code"`
			Plan       string `json:"plan"`
			TargetDate string `json:"target_date"`
		}](t, w)
		gt.Value(t, action.Code).Equal("AC-0001")
		gt.Value(t, action.Plan).Equal("Deploy EDR and offline backups")
		gt.Value(t, action.TargetDate).Equal("2026-09-30")

		w = c.do(http.MethodPost, riskPath+"/actions", map[string]any{"type": "preventive"})
		gt.Value(t, decode[struct {
			Code string `json:"code"`
		}](t, w).Code).Equal("AP-0001")

		actions := decode[[]map[string]any](t, c.do(http.MethodGet, riskPath+"/actions", nil))
		gt.Array(t, actions).Length(2)

		w = c.do(http.MethodPost, riskPath+"/trainings", map[string]any{"employee": "Mario Rossi"})
		gt.Value(t, w.Code).Equal(http.StatusCreated)
		training := decode[struct {
			Type string `json:"type"`
			Date string `json:"date"`
		}](t, w)
		gt.Value(t, training.Type).Equal("awareness")
		gt.Value(t, training.Date).Equal("2026-06-01")

		w = c.do(http.MethodPost, riskPath+"/trainings", map[string]any{})
		gt.Value(t, w.Code).Equal(http.StatusBadRequest)

		w = c.do(http.MethodPost, "/api/risks/999/actions", map[string]any{})
		gt.Value(t, w.Code).Equal(http.StatusNotFound)

		w = c.do(http.MethodPost, "/api/risks/abc/actions", map[string]any{})
		gt.Value(t, w.Code).Equal(http.StatusBadRequest)
	})

	t.Run("edit the saved risk", func(t *testing.T) {
		w := c.do(http.MethodPost, "/api/risks/"+formatID(saved.Risk.ID)+"/evaluation", nil)
		gt.Value(t, w.Code).Equal(http.StatusCreated)
		edit := decode[sessionBody](t, w)
		gt.Value(t, edit.RiskID).Equal(saved.Risk.ID)
		gt.Value(t, edit.Assessment.Probability).Equal(4)

		w = c.do(http.MethodDelete, "/api/evaluations/"+edit.ID, nil)
		gt.Value(t, w.Code).Equal(http.StatusOK)
		gt.Bool(t, decode[sessionBody](t, w).Closed).True()
	})
}

func TestServer_SessionsAreScopedToOrganization(t *testing.T) {
	srv, _ := newTestServer(t)
	c := &client{t: t, srv: srv, orgID: testOrgID}
	other := &client{t: t, srv: srv, orgID: "org-other"}

	session := decode[sessionBody](t, c.do(http.MethodPost, "/api/evaluations", map[string]any{"threat_id": "T-NAT-001"}))

	w := other.do(http.MethodGet, "/api/evaluations/"+session.ID, nil)
	gt.Value(t, w.Code).Equal(http.StatusNotFound)

	w = c.do(http.MethodGet, "/api/evaluations/"+session.ID, nil)
	gt.Value(t, w.Code).Equal(http.StatusOK)
}

func TestServer_DefaultOrganization(t *testing.T) {
	t.Run("no organization is implied without the option", func(t *testing.T) {
		srv, _ := newTestServer(t)
		anon := &client{t: t, srv: srv}

		w := anon.do(http.MethodGet, "/api/risks", nil)
		gt.Value(t, w.Code).Equal(http.StatusPreconditionFailed)
	})

	t.Run("requests without header use the configured organization", func(t *testing.T) {
		srv, _ := newTestServer(t, server.WithDefaultOrganization(testOrgID))
		anon := &client{t: t, srv: srv}
		scoped := &client{t: t, srv: srv, orgID: testOrgID}
		other := &client{t: t, srv: srv, orgID: "org-other"}

		w := anon.do(http.MethodGet, "/api/risks", nil)
		gt.Value(t, w.Code).Equal(http.StatusOK)

		w = anon.do(http.MethodPost, "/api/threats", map[string]any{
			"name":        "Supplier outage",
			"description": "Loss of a critical supplier",
			"category":    "ORGANIZATIONAL",
		})
		gt.Value(t, w.Code).Equal(http.StatusCreated)
		created := decode[threatBody](t, w)
		gt.Bool(t, created.IsCustom).True()

		gt.Value(t, scoped.do(http.MethodGet, "/api/threats/"+created.ID, nil).Code).Equal(http.StatusOK)
		gt.Value(t, other.do(http.MethodGet, "/api/threats/"+created.ID, nil).Code).Equal(http.StatusNotFound)
	})
}

func TestServer_Suggestions(t *testing.T) {
	srv, repo := newTestServer(t)
	c := &client{t: t, srv: srv, orgID: testOrgID}
	ctx := context.Background()

	stale := testNow.Add(-400 * 24 * time.Hour)
	for _, ref := range []string{"A.5.1", "A.5.2", "A.5.3"} {
		gt.NoError(t, repo.Control().Put(ctx, &model.Control{
			OrganizationID:       testOrgID,
			Reference:            ref,
			ImplementationStatus: types.ImplementationImplemented,
			LastVerifiedAt:       &stale,
		})).Required()
	}
	_, err := repo.NonConformity().Create(ctx, testOrgID, &model.NonConformity{
		Title:                  "Backup restore not tested",
		RelatedControl:         "A.8.13",
		CorrectiveActionStatus: types.CorrectiveActionCompleted,
	})
	gt.NoError(t, err).Required()

	type suggestionBody struct {
		ControlsToVerify []struct {
			Reference string `json:"reference"`
		} `json:"controls_to_verify"`
		Totals struct {
			ControlsToVerify        int `json:"controls_to_verify"`
			NonConformitiesToVerify int `json:"non_conformities_to_verify"`
		} `json:"totals"`
		ControlScope []string `json:"control_scope"`
	}

	w := c.do(http.MethodGet, "/api/suggestions?limit=2", nil)
	gt.Value(t, w.Code).Equal(http.StatusOK)
	body := decode[suggestionBody](t, w)
	gt.Array(t, body.ControlsToVerify).Length(2)
	gt.Value(t, body.Totals.ControlsToVerify).Equal(3)
	gt.Value(t, body.Totals.NonConformitiesToVerify).Equal(1)
	gt.Value(t, body.ControlScope).Equal([]string{"A.5.1", "A.5.2", "A.5.3", "A.8.13"})

	w = c.do(http.MethodGet, "/api/suggestions?limit=zero", nil)
	gt.Value(t, w.Code).Equal(http.StatusBadRequest)

	w = c.do(http.MethodPost, "/api/audits", map[string]any{
		"title":        "Q3 internal audit",
		"planned_date": "2026-07-01",
	})
	gt.Value(t, w.Code).Equal(http.StatusCreated)
	audit := decode[struct {
		Code         string   `json:"code"`
		ControlScope []string `json:"control_scope"`
		PlannedDate  string   `json:"planned_date"`
	}](t, w)
	gt.Value(t, audit.Code).Equal("AUD-0001")
	gt.Value(t, audit.ControlScope).Equal([]string{"A.5.1", "A.5.2", "A.5.3", "A.8.13"})
	gt.Value(t, audit.PlannedDate).Equal("2026-07-01")

	w = c.do(http.MethodPost, "/api/audits", map[string]any{"title": ""})
	gt.Value(t, w.Code).Equal(http.StatusBadRequest)
}

func formatID(id int64) string {
	return strconv.FormatInt(id, 10)
}
