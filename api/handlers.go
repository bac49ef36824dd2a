package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"basehive"
	"basehive/internal/orchestrator"
)

// ProjectPayload augments a project record with its resolved URLs.
type ProjectPayload struct {
	*basehive.Project
	URL      string `json:"url"`
	AdminURL string `json:"adminUrl"`
}

// ListPayload is the paginated project list response.
type ListPayload struct {
	Projects []ProjectPayload `json:"projects"`
	Total    int              `json:"total"`
}

func (s *Server) payload(p *basehive.Project) ProjectPayload {
	return ProjectPayload{Project: p, URL: s.ctrl.URL(p), AdminURL: s.ctrl.AdminURL(p)}
}

func writeErr(c *gin.Context, err error) {
	c.JSON(httpStatus(err), gin.H{"error": err.Error()})
}

// httpStatus maps domain sentinel errors onto HTTP status codes.
func httpStatus(err error) int {
	switch {
	case errors.Is(err, basehive.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, basehive.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, basehive.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, basehive.ErrRuntimeUnavailable), errors.Is(err, basehive.ErrContainerOp):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleCreate(c *gin.Context) {
	var req orchestrator.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON body"})
		return
	}
	p, err := s.ctrl.Create(c.Request.Context(), req)
	if err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusCreated, s.payload(p))
}

func (s *Server) handleList(c *gin.Context) {
	offset, _ := strconv.Atoi(c.Query("offset"))
	limit, _ := strconv.Atoi(c.Query("limit"))
	req := orchestrator.ListRequest{
		Status: basehive.Status(c.Query("status")),
		Client: c.Query("client"),
		Search: c.Query("search"),
		Offset: offset,
		Limit:  limit,
	}
	if req.Status != "" && !req.Status.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown status filter"})
		return
	}
	projects, total, err := s.ctrl.List(req)
	if err != nil {
		writeErr(c, err)
		return
	}
	out := ListPayload{Projects: make([]ProjectPayload, 0, len(projects)), Total: total}
	for _, p := range projects {
		out.Projects = append(out.Projects, s.payload(p))
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) handleGet(c *gin.Context) {
	p, err := s.ctrl.Get(c.Param("ref"))
	if err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, s.payload(p))
}

func (s *Server) handleUpdate(c *gin.Context) {
	var req orchestrator.UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON body"})
		return
	}
	p, err := s.ctrl.Update(c.Request.Context(), c.Param("ref"), req)
	if err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, s.payload(p))
}

func (s *Server) handleDelete(c *gin.Context) {
	keepData, _ := strconv.ParseBool(c.Query("keepData"))
	if err := s.ctrl.Delete(c.Request.Context(), c.Param("ref"), keepData); err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted", "keepData": keepData})
}

func (s *Server) handleStart(c *gin.Context) {
	s.lifecycle(c, s.ctrl.Start)
}

func (s *Server) handleStop(c *gin.Context) {
	s.lifecycle(c, s.ctrl.Stop)
}

func (s *Server) handleRestart(c *gin.Context) {
	s.lifecycle(c, s.ctrl.Restart)
}

func (s *Server) lifecycle(c *gin.Context, op func(ctx context.Context, ref string) (*basehive.Project, error)) {
	p, err := op(c.Request.Context(), c.Param("ref"))
	if err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, s.payload(p))
}

func (s *Server) handleLogs(c *gin.Context) {
	tail, _ := strconv.Atoi(c.Query("tail"))
	logs, err := s.ctrl.Logs(c.Request.Context(), c.Param("ref"), tail)
	if err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"logs": logs})
}

func (s *Server) handleBackup(c *gin.Context) {
	rec, err := s.ctrl.Backup(c.Request.Context(), c.Param("ref"))
	if err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusCreated, rec)
}

func (s *Server) handleListBackups(c *gin.Context) {
	backups, err := s.ctrl.ListBackups(c.Param("ref"))
	if err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"backups": backups})
}

func (s *Server) handleRestore(c *gin.Context) {
	var req struct {
		Filename string `json:"filename"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Filename == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "filename is required"})
		return
	}
	if err := s.ctrl.Restore(c.Request.Context(), c.Param("ref"), req.Filename); err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "restored", "filename": req.Filename})
}

func (s *Server) handleCredentials(c *gin.Context) {
	creds, err := s.ctrl.Credentials(c.Param("ref"))
	if err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, creds)
}

func (s *Server) handleUpdateCredentials(c *gin.Context) {
	var update basehive.CredentialUpdate
	if err := c.ShouldBindJSON(&update); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON body"})
		return
	}
	creds, err := s.ctrl.UpdateCredentials(c.Param("ref"), update)
	if err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, creds)
}

func (s *Server) handleExportCredentials(c *gin.Context) {
	creds, err := s.ctrl.ExportCredentials()
	if err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"credentials": creds})
}

func (s *Server) handleStats(c *gin.Context) {
	stats, err := s.ctrl.Stats(c.Request.Context())
	if err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}
