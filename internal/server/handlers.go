package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/jonathan/job-application-assistant/internal/pipeline"
	"github.com/jonathan/job-application-assistant/internal/rendering"
	"github.com/jonathan/job-application-assistant/internal/types"
)

// AssessRequest represents the request body for /api/v1/assess
type AssessRequest struct {
	JobText    string `json:"job_text" validate:"required,max=200000"`
	ResumeText string `json:"resume_text,omitempty" validate:"max=200000"`
}

// TailorRequest represents the request body for /api/v1/tailor
type TailorRequest struct {
	AssessRequest
	Label string `json:"label,omitempty" validate:"max=80"`
	// Render writes HTML, text and, with a printer, PDF files to the output directory.
	Render bool `json:"render"`
}

// AssessResponse represents the response for /api/v1/assess
type AssessResponse struct {
	RunID        string               `json:"run_id"`
	RoleTitle    string               `json:"role_title"`
	Requirements types.RequirementSet `json:"requirements"`
	Assessment   types.FitAssessment  `json:"assessment"`
}

// TailorResponse represents the response for /api/v1/tailor
type TailorResponse struct {
	RunID      string               `json:"run_id"`
	Cached     bool                 `json:"cached"`
	RoleTitle  string               `json:"role_title"`
	Assessment types.FitAssessment  `json:"assessment"`
	Plan       types.TailoringPlan  `json:"plan"`
	Fallback   bool                 `json:"fallback"`
	Artifacts  *rendering.Artifacts `json:"artifacts,omitempty"`
}

// decodeJSON reads a size-limited JSON body into dst and validates it.
func (s *Server) decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			return err
		}
		return &ErrValidation{Field: "body", Message: "invalid JSON: " + err.Error()}
	}
	if err := s.validate.Struct(dst); err != nil {
		return validationError(err)
	}
	return nil
}

// runOptions resolves the resume text for a request: the request's own, else the server's.
func (s *Server) runOptions(req AssessRequest) (pipeline.RunOptions, error) {
	resume := req.ResumeText
	if strings.TrimSpace(resume) == "" {
		resume = s.resumeText
	}
	if strings.TrimSpace(resume) == "" {
		return pipeline.RunOptions{}, &ErrNoResume{}
	}
	if strings.TrimSpace(req.JobText) == "" {
		return pipeline.RunOptions{}, &ErrValidation{Field: "job_text", Message: "is required"}
	}
	return pipeline.RunOptions{ResumeText: resume, JobText: req.JobText}, nil
}

// handleAssess scores a job description against the resume without tailoring.
func (s *Server) handleAssess(w http.ResponseWriter, r *http.Request) {
	var req AssessRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		s.failResponse(w, r, err)
		return
	}
	opts, err := s.runOptions(req)
	if err != nil {
		s.failResponse(w, r, err)
		return
	}

	rc := pipeline.NewRunContext(s.app, "", s.logger)
	analysis, err := s.engine.Assess(r.Context(), rc, opts)
	if err != nil {
		s.failResponse(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, AssessResponse{
		RunID:        rc.ID.String(),
		RoleTitle:    analysis.Job.RoleTitle,
		Requirements: analysis.Job.Requirements,
		Assessment:   analysis.Assessment,
	})
}

// handleTailor runs the full pipeline through the result cache.
func (s *Server) handleTailor(w http.ResponseWriter, r *http.Request) {
	var req TailorRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		s.failResponse(w, r, err)
		return
	}
	resp, err := s.tailor(r.Context(), req)
	if err != nil {
		s.failResponse(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, resp)
}

// tailor runs one request through the cache and, when asked, the rendering gateway.
func (s *Server) tailor(ctx context.Context, req TailorRequest) (*TailorResponse, error) {
	opts, err := s.runOptions(req.AssessRequest)
	if err != nil {
		return nil, err
	}

	rc := pipeline.NewRunContext(s.app, req.Label, s.logger)
	res, cached, err := s.engine.RunCached(ctx, s.cache, rc, opts)
	if err != nil {
		return nil, err
	}

	resp := &TailorResponse{
		RunID:      res.RunID.String(),
		Cached:     cached,
		RoleTitle:  res.Job.RoleTitle,
		Assessment: res.Assessment,
		Plan:       res.Plan,
		Fallback:   res.Fallback,
	}
	if req.Render {
		artifacts, err := s.engine.Render(ctx, rc, res, s.gateway, nil)
		if err != nil {
			return nil, err
		}
		resp.Artifacts = artifacts
		resp.Plan = artifacts.Plan
	}
	return resp, nil
}

// handleTailorStream runs the pipeline and streams progress via SSE. Streamed runs bypass
// the cache so progress events come from this request's own run.
func (s *Server) handleTailorStream(w http.ResponseWriter, r *http.Request) {
	var req TailorRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		s.failResponse(w, r, err)
		return
	}
	opts, err := s.runOptions(req.AssessRequest)
	if err != nil {
		s.failResponse(w, r, err)
		return
	}

	sse, err := NewSSEWriter(w)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}

	progress := func(ev pipeline.ProgressEvent) {
		if err := sse.WriteEvent("progress", ev); err != nil {
			s.logger.Debug("progress event not delivered", zap.Error(err))
		}
	}
	opts.OnProgress = progress

	rc := pipeline.NewRunContext(s.app, req.Label, s.logger)
	res, err := s.engine.Run(r.Context(), rc, opts)
	if err != nil {
		sse.WriteError(HTTPStatus(err), err.Error())
		return
	}

	resp := &TailorResponse{
		RunID:      res.RunID.String(),
		RoleTitle:  res.Job.RoleTitle,
		Assessment: res.Assessment,
		Plan:       res.Plan,
		Fallback:   res.Fallback,
	}
	if req.Render {
		artifacts, err := s.engine.Render(r.Context(), rc, res, s.gateway, progress)
		if err != nil {
			sse.WriteError(HTTPStatus(err), err.Error())
			return
		}
		resp.Artifacts = artifacts
		resp.Plan = artifacts.Plan
	}
	sse.WriteEvent("complete", resp) //nolint:errcheck
}

// formView is the data of the form page.
type formView struct {
	HasResume  bool
	Error      string
	Label      string
	JobText    string
	ResumeText string
}

// resultView is the data of the result page.
type resultView struct {
	RunID          string
	RoleTitle      string
	Recommendation types.Recommendation
	Score          float64
	Matched        []string
	Missing        []string
	Notes          []string
	Files          []string
	Strategy       types.Strategy
	Cached         bool
}

// handleForm serves the job description form.
func (s *Server) handleForm(w http.ResponseWriter, _ *http.Request) {
	s.htmlResponse(w, http.StatusOK, "form.html", formView{HasResume: s.resumeText != ""})
}

// handleFormSubmit tailors from the form and shows the assessment with links to the files.
func (s *Server) handleFormSubmit(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := r.ParseForm(); err != nil {
		s.failResponse(w, r, err)
		return
	}
	req := TailorRequest{
		AssessRequest: AssessRequest{
			JobText:    r.PostFormValue("job_text"),
			ResumeText: r.PostFormValue("resume_text"),
		},
		Label:  strings.TrimSpace(r.PostFormValue("label")),
		Render: true,
	}
	form := formView{
		HasResume:  s.resumeText != "",
		Label:      req.Label,
		JobText:    req.JobText,
		ResumeText: req.ResumeText,
	}
	if err := s.validate.Struct(req); err != nil {
		form.Error = validationError(err).Error()
		s.htmlResponse(w, http.StatusBadRequest, "form.html", form)
		return
	}

	resp, err := s.tailor(r.Context(), req)
	if err != nil {
		status := HTTPStatus(err)
		form.Error = err.Error()
		if status >= http.StatusInternalServerError {
			s.logger.Error("form run failed", zap.Error(err))
			form.Error = "Something went wrong while tailoring. Please try again."
		}
		s.htmlResponse(w, status, "form.html", form)
		return
	}

	view := resultView{
		RunID:          resp.RunID,
		RoleTitle:      resp.RoleTitle,
		Recommendation: resp.Assessment.Recommendation,
		Score:          resp.Assessment.Score,
		Matched:        resp.Assessment.Matched,
		Missing:        resp.Assessment.Missing,
		Notes:          append(append([]string{}, resp.Assessment.Notes...), resp.Plan.Notes...),
		Strategy:       resp.Plan.Strategy,
		Cached:         resp.Cached,
	}
	if resp.Artifacts != nil {
		for _, p := range resp.Artifacts.Paths() {
			view.Files = append(view.Files, filepath.Base(p))
		}
	}
	s.htmlResponse(w, http.StatusOK, "result.html", view)
}

// handleOutput serves a generated file from the output directory.
func (s *Server) handleOutput(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("file")
	if name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		http.NotFound(w, r)
		return
	}
	http.ServeFile(w, r, filepath.Join(s.app.Output.Dir, name))
}

// htmlResponse renders a page template into a buffer first so template errors become a 500.
func (s *Server) htmlResponse(w http.ResponseWriter, status int, name string, data any) {
	var buf bytes.Buffer
	if err := pages.ExecuteTemplate(&buf, name, data); err != nil {
		s.logger.Error("failed to render page", zap.String("page", name), zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}
