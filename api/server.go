// Package api exposes the control plane over HTTP. Every route except
// the health check requires a bearer token signed with the daemon's
// auth secret.
package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"basehive"
	"basehive/internal/orchestrator"
)

// Controller is the interface the API server needs from the
// orchestrator.
type Controller interface {
	Create(ctx context.Context, req orchestrator.CreateRequest) (*basehive.Project, error)
	Get(ref string) (*basehive.Project, error)
	List(req orchestrator.ListRequest) ([]*basehive.Project, int, error)
	Update(ctx context.Context, ref string, req orchestrator.UpdateRequest) (*basehive.Project, error)
	Delete(ctx context.Context, ref string, keepData bool) error

	Start(ctx context.Context, ref string) (*basehive.Project, error)
	Stop(ctx context.Context, ref string) (*basehive.Project, error)
	Restart(ctx context.Context, ref string) (*basehive.Project, error)
	Logs(ctx context.Context, ref string, tail int) (string, error)

	Backup(ctx context.Context, ref string) (*basehive.BackupRecord, error)
	ListBackups(ref string) ([]*basehive.BackupRecord, error)
	Restore(ctx context.Context, ref, filename string) error

	Stats(ctx context.Context) (*basehive.FleetStats, error)
	Credentials(ref string) (*basehive.Credentials, error)
	ExportCredentials() ([]*basehive.Credentials, error)
	UpdateCredentials(ref string, update basehive.CredentialUpdate) (*basehive.Credentials, error)

	URL(p *basehive.Project) string
	AdminURL(p *basehive.Project) string
}

type Server struct {
	ctrl   Controller
	secret string
}

func NewServer(ctrl Controller, authSecret string) *Server {
	return &Server{ctrl: ctrl, secret: authSecret}
}

// Router assembles the gin engine with auth and logging middleware.
func (s *Server) Router() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(requestLogger(), gin.Recovery())

	r.GET("/healthz", s.handleHealth)

	v1 := r.Group("/v1", bearerAuth(s.secret))
	v1.POST("/projects", s.handleCreate)
	v1.GET("/projects", s.handleList)
	v1.GET("/projects/:ref", s.handleGet)
	v1.PATCH("/projects/:ref", s.handleUpdate)
	v1.DELETE("/projects/:ref", s.handleDelete)

	v1.POST("/projects/:ref/start", s.handleStart)
	v1.POST("/projects/:ref/stop", s.handleStop)
	v1.POST("/projects/:ref/restart", s.handleRestart)
	v1.GET("/projects/:ref/logs", s.handleLogs)

	v1.GET("/projects/:ref/backups", s.handleListBackups)
	v1.POST("/projects/:ref/backups", s.handleBackup)
	v1.POST("/projects/:ref/restore", s.handleRestore)

	v1.GET("/projects/:ref/credentials", s.handleCredentials)
	v1.PATCH("/projects/:ref/credentials", s.handleUpdateCredentials)
	v1.GET("/credentials", s.handleExportCredentials)

	v1.GET("/stats", s.handleStats)
	return r
}

// ListenAndServe runs the HTTP server until ctx is cancelled, then
// shuts it down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: s.Router()}

	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()

	select {
	case <-ctx.Done():
		return srv.Shutdown(context.Background())
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
