package dashboard

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/KaramelBytes/csvdash/internal/ai"
	"github.com/KaramelBytes/csvdash/internal/chart"
	"github.com/KaramelBytes/csvdash/internal/config"
	"github.com/KaramelBytes/csvdash/internal/table"
)

//go:embed templates/*.tmpl
var templatesFS embed.FS

// DownloadName is the file name offered for the processed data.
const DownloadName = "processed_data.csv"

// Advisor answers AI requests about a Table.
type Advisor interface {
	Insights(ctx context.Context, t *table.Table) (*ai.Answer, error)
	Ask(ctx context.Context, t *table.Table, question string) (*ai.Answer, error)
}

// ServerOptions configures a dashboard Server.
type ServerOptions struct {
	PreviewRows int
	// MaxUploadBytes caps the request body of POST /upload; <= 0 means 32 MiB.
	MaxUploadBytes int64
}

// Server is the dashboard web application.
type Server struct {
	engine   *gin.Engine
	sessions *Sessions
	advisor  Advisor
	opt      ServerOptions
}

func NewServer(advisor Advisor, sessions *Sessions, opt ServerOptions) (*Server, error) {
	tmpl, err := template.ParseFS(templatesFS, "templates/*.tmpl")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	if opt.MaxUploadBytes <= 0 {
		opt.MaxUploadBytes = 32 << 20
	}
	s := &Server{sessions: sessions, advisor: advisor, opt: opt}

	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())
	r.MaxMultipartMemory = opt.MaxUploadBytes
	r.SetHTMLTemplate(tmpl)

	r.GET("/health", s.handleHealth)
	app := r.Group("/", sessions.middleware())
	app.GET("/", s.handleIndex)
	app.POST("/upload", s.handleUpload)
	app.GET("/download", s.handleDownload)
	app.GET("/chart", s.handleChart)
	app.POST("/insights", s.handleInsights)
	app.POST("/ask", s.handleAsk)
	s.engine = r
	return s, nil
}

func (s *Server) Handler() http.Handler { return s.engine }

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy", "sessions": s.sessions.Count()})
}

func (s *Server) handleIndex(c *gin.Context) {
	t, _ := s.sessions.Table(sessionID(c))
	s.render(c, http.StatusOK, Render(t, selectionsFrom(c), s.viewOptions()))
}

func (s *Server) handleUpload(c *gin.Context) {
	id := sessionID(c)
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.opt.MaxUploadBytes)
	fh, err := c.FormFile("file")
	if err != nil {
		s.uploadFailed(c, id, fmt.Errorf("no file uploaded: %w", err))
		return
	}
	f, err := fh.Open()
	if err != nil {
		s.uploadFailed(c, id, err)
		return
	}
	defer f.Close()

	t, err := table.Load(f)
	if err != nil {
		s.uploadFailed(c, id, err)
		return
	}
	t.Name = fh.Filename
	s.sessions.Put(id, t)
	rows, cols := t.Shape()
	log.Printf("[UPLOAD] %s: %d rows x %d columns", fh.Filename, rows, cols)
	c.Redirect(http.StatusSeeOther, "/")
}

// uploadFailed drops any previously loaded Table so no stale data is shown.
func (s *Server) uploadFailed(c *gin.Context, id string, err error) {
	log.Printf("[UPLOAD] rejected: %v", err)
	s.sessions.Drop(id)
	v := Render(nil, Selections{}, s.viewOptions())
	v.Error = "Error reading CSV: " + err.Error()
	s.render(c, http.StatusUnprocessableEntity, v)
}

func (s *Server) handleDownload(c *gin.Context) {
	t, ok := s.sessions.Table(sessionID(c))
	if !ok {
		c.String(http.StatusNotFound, "no CSV file loaded")
		return
	}
	data, err := t.CSV()
	if err != nil {
		c.String(http.StatusInternalServerError, "export failed: %v", err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", DownloadName))
	c.Data(http.StatusOK, "text/csv; charset=utf-8", data)
}

func (s *Server) handleChart(c *gin.Context) {
	t, ok := s.sessions.Table(sessionID(c))
	if !ok {
		c.String(http.StatusNotFound, "no CSV file loaded")
		return
	}
	kind, err := chart.ParseKind(c.DefaultQuery("kind", string(chart.Bar)))
	if err != nil {
		c.String(http.StatusBadRequest, "%s", err.Error())
		return
	}
	req := chart.Request{Kind: kind, X: c.Query("x"), Y: c.Query("y"), Format: c.Query("format")}
	var buf bytes.Buffer
	if err := chart.Render(&buf, t, req); err != nil {
		c.String(http.StatusBadRequest, "%s", err.Error())
		return
	}
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, req.ContentType(), buf.Bytes())
}

func (s *Server) handleInsights(c *gin.Context) {
	t, ok := s.sessions.Table(sessionID(c))
	if !ok {
		c.Redirect(http.StatusSeeOther, "/")
		return
	}
	v := Render(t, selectionsFrom(c), s.viewOptions())
	ans, err := s.advisor.Insights(c.Request.Context(), t)
	if err != nil {
		log.Printf("[AI] insights failed: %v", err)
		v.AI = aiFailure("Error generating insights: ", err)
	} else {
		log.Printf("[AI] insights ok (request %s)", orDash(ans.RequestID))
		v.AI = &AIPanel{Level: "success", Title: "AI Insights Generated", Text: ans.Text}
	}
	s.render(c, http.StatusOK, v)
}

func (s *Server) handleAsk(c *gin.Context) {
	t, ok := s.sessions.Table(sessionID(c))
	if !ok {
		c.Redirect(http.StatusSeeOther, "/")
		return
	}
	sel := selectionsFrom(c)
	v := Render(t, sel, s.viewOptions())
	ans, err := s.advisor.Ask(c.Request.Context(), t, sel.Question)
	switch {
	case errors.Is(err, ai.ErrEmptyQuestion):
		v.AI = &AIPanel{Level: "warning", Text: "Please enter a question before clicking Ask AI."}
	case err != nil:
		log.Printf("[AI] ask failed: %v", err)
		v.AI = aiFailure("Error generating answer: ", err)
	default:
		log.Printf("[AI] answer ok (request %s)", orDash(ans.RequestID))
		v.AI = &AIPanel{Level: "success", Title: "Answer from AI", Text: ans.Text}
	}
	s.render(c, http.StatusOK, v)
}

// aiFailure builds the inline panel for a failed AI request.
func aiFailure(prefix string, err error) *AIPanel {
	var (
		busy     *ai.BusyError
		rejected *ai.KeyRejectedError
	)
	switch {
	case errors.As(err, &busy):
		text := "The AI service is busy; try again shortly."
		if busy.Wait > 0 {
			text = fmt.Sprintf("The AI service is busy; try again in %ds.", int(busy.Wait.Round(time.Second).Seconds()))
		}
		return &AIPanel{Level: "warning", Text: text}
	case errors.As(err, &rejected):
		return &AIPanel{Level: "error", Text: prefix + "the AI service rejected the configured API key. Set a valid " + config.APIKeyEnv + " and restart the dashboard."}
	}
	return &AIPanel{Level: "error", Text: prefix + err.Error()}
}

func (s *Server) render(c *gin.Context, status int, v View) {
	c.HTML(status, "dashboard", v)
}

func (s *Server) viewOptions() Options {
	return Options{PreviewRows: s.opt.PreviewRows}
}

// selectionsFrom reads widget values from the form body, falling back to the query string.
func selectionsFrom(c *gin.Context) Selections {
	get := func(key string) string {
		if v, ok := c.GetPostForm(key); ok {
			return v
		}
		return c.Query(key)
	}
	return Selections{
		FilterColumn: get("column"),
		Keyword:      get("keyword"),
		ChartKind:    get("kind"),
		X:            get("x"),
		Y:            get("y"),
		Question:     get("question"),
	}
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
