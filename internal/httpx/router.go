package httpx

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/opshub-io/opshub/internal/action"
	"github.com/opshub-io/opshub/internal/admin"
	"github.com/opshub-io/opshub/internal/apperr"
	"github.com/opshub-io/opshub/internal/auth"
	"github.com/opshub-io/opshub/internal/project"
	"github.com/opshub-io/opshub/internal/timesheet"
	"github.com/opshub-io/opshub/internal/workflow"
	"github.com/opshub-io/opshub/pkg/binder"
	"github.com/opshub-io/opshub/pkg/clientip"
	"github.com/opshub-io/opshub/pkg/requestid"
	"github.com/opshub-io/opshub/pkg/session"
)

// publicPaths skip session loading entirely.
var publicPaths = []string{loginPath, "/auth/callback", "/healthz", "/livez", "/api/status"}

// Handler carries everything the router wires together.
type Handler struct {
	Log       *slog.Logger
	DB        action.DB
	Sessions  *session.Manager
	Resolver  *auth.Resolver
	Directory *admin.Directory

	Workflows  *workflow.Service
	Projects   *project.Service
	Timesheets *timesheet.Service
	Admin      *admin.Service

	Health http.HandlerFunc
}

// NewRouter builds the full route table. Business endpoints are plain
// POST actions under /api; each one is an action.Wrap'd handler rendering a
// result envelope.
func NewRouter(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(requestid.Middleware)
	r.Use(clientip.Middleware)
	r.Use(h.Sessions.Middleware(publicPaths...))

	r.Get("/healthz", h.Health)
	r.Get("/livez", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	r.Post(loginPath, h.login)
	r.Post("/logout", h.logout)
	r.Get("/auth/callback", h.authCallback)

	r.Group(func(r chi.Router) {
		r.Use(session.RequireAuth(loginPath))
		r.Get("/app/me", h.whoami)
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/status", h.status)

		r.Route("/workflow", func(r chi.Router) {
			r.Post("/create", endpoint(h.Resolver, h.DB, h.Log, "workflow.create", h.Workflows.Create))
			r.Post("/submit", endpoint(h.Resolver, h.DB, h.Log, "workflow.submit", h.Workflows.Submit))
			r.Post("/decide", endpoint(h.Resolver, h.DB, h.Log, "workflow.decide", h.Workflows.Decide))
			r.Post("/cancel", endpoint(h.Resolver, h.DB, h.Log, "workflow.cancel", h.Workflows.Cancel))
			r.Post("/get", endpoint(h.Resolver, h.DB, h.Log, "workflow.get", h.Workflows.Get))
			r.Post("/list", endpoint(h.Resolver, h.DB, h.Log, "workflow.list", h.Workflows.List))
		})

		r.Route("/projects", func(r chi.Router) {
			r.Post("/create", endpoint(h.Resolver, h.DB, h.Log, "project.create", h.Projects.CreateProject))
			r.Post("/status", endpoint(h.Resolver, h.DB, h.Log, "project.status", h.Projects.UpdateProjectStatus))
			r.Post("/get", endpoint(h.Resolver, h.DB, h.Log, "project.get", h.Projects.GetProject))
			r.Post("/list", endpoint(h.Resolver, h.DB, h.Log, "project.list", h.Projects.ListProjects))
		})

		r.Route("/tasks", func(r chi.Router) {
			r.Post("/create", endpoint(h.Resolver, h.DB, h.Log, "task.create", h.Projects.CreateTask))
			r.Post("/assign", endpoint(h.Resolver, h.DB, h.Log, "task.assign", h.Projects.AssignTask))
			r.Post("/move", endpoint(h.Resolver, h.DB, h.Log, "task.move", h.Projects.MoveTask))
			r.Post("/list", endpoint(h.Resolver, h.DB, h.Log, "task.list", h.Projects.ListTasks))
		})

		r.Route("/timesheets", func(r chi.Router) {
			r.Post("/add", endpoint(h.Resolver, h.DB, h.Log, "timesheet.add", h.Timesheets.Add))
			r.Post("/update", endpoint(h.Resolver, h.DB, h.Log, "timesheet.update", h.Timesheets.Update))
			r.Post("/delete", endpoint(h.Resolver, h.DB, h.Log, "timesheet.delete", h.Timesheets.Delete))
			r.Post("/list", endpoint(h.Resolver, h.DB, h.Log, "timesheet.list", h.Timesheets.List))
			r.Post("/export", h.exportTimesheets)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Post("/users/create", endpoint(h.Resolver, h.DB, h.Log, "user.create", h.Admin.CreateUser))
			r.Post("/users/deactivate", endpoint(h.Resolver, h.DB, h.Log, "user.deactivate", h.Admin.DeactivateUser))
			r.Post("/members", endpoint(h.Resolver, h.DB, h.Log, "admin.members", h.Admin.ListMembers))
			r.Post("/roles/grant", endpoint(h.Resolver, h.DB, h.Log, "role.grant", h.Admin.GrantRole))
			r.Post("/roles/revoke", endpoint(h.Resolver, h.DB, h.Log, "role.revoke", h.Admin.RevokeRole))
			r.Post("/audit", endpoint(h.Resolver, h.DB, h.Log, "admin.audit", h.Admin.ListAuditLog))
		})
	})

	return r
}

type statusResponse struct {
	Status string    `json:"status"`
	Time   time.Time `json:"time"`
}

// status is a cheap liveness probe for dashboards; /healthz does the real
// dependency checks.
func (h *Handler) status(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, statusResponse{Status: "ok", Time: time.Now().UTC()})
}

type whoamiResponse struct {
	UserID  string   `json:"user_id"`
	Email   string   `json:"email"`
	Tenants []string `json:"tenants"`
}

// whoami returns the resolved identity for the signed-in user. Sits behind
// RequireAuth, so missing sessions never reach it.
func (h *Handler) whoami(w http.ResponseWriter, r *http.Request) {
	identity, err := h.Resolver.RequireAuth(r.Context())
	if err != nil {
		redirectToLogin(w, r)
		return
	}

	resp := whoamiResponse{UserID: identity.ID.String(), Email: identity.Email}
	for _, id := range identity.TenantIDs {
		resp.Tenants = append(resp.Tenants, id.String())
	}
	writeJSON(w, http.StatusOK, action.OK(resp))
}

// exportTimesheets renders the export as a CSV download instead of the
// JSON envelope.
func (h *Handler) exportTimesheets(w http.ResponseWriter, r *http.Request) {
	wrapped := action.Wrap(h.Resolver, h.DB, h.Log, "timesheet.export", h.Timesheets.Export)

	var input timesheet.ExportInput
	if r.ContentLength != 0 {
		if err := binder.JSON()(r, &input); err != nil {
			writeJSON(w, http.StatusBadRequest, action.Fail[[]byte](
				apperr.Validation("request body must be valid JSON")))
			return
		}
	}

	result, err := wrapped(r.Context(), input)
	if err != nil {
		if errors.Is(err, auth.ErrUnauthenticated) {
			redirectToLogin(w, r)
			return
		}
		writeJSON(w, http.StatusInternalServerError, action.Fail[[]byte](apperr.System()))
		return
	}
	if !result.Success {
		writeJSON(w, http.StatusOK, result)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="timesheets.csv"`)
	_, _ = w.Write(result.Data)
}
