package http

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/fwojciec/rfqtrack"
)

// GET /api/projects
func (s *Server) handleProjects(w http.ResponseWriter, r *http.Request) {
	filter, err := parseProjectFilter(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	projects, err := s.Queries.FindProjects(r.Context(), filter)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, projects)
}

// GET /api/partners
func (s *Server) handlePartnerNames(w http.ResponseWriter, r *http.Request) {
	names, err := s.Queries.PartnerNames(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, names)
}

// GET /api/projects/{number}/partners
func (s *Server) handlePartners(w http.ResponseWriter, r *http.Request) {
	var typ *rfqtrack.PartnerType
	if v := r.URL.Query().Get("type"); v != "" {
		t := rfqtrack.ParsePartnerType(v)
		typ = &t
	}
	partners, err := s.Queries.FindPartners(r.Context(), r.PathValue("number"), typ)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, partners)
}

// GET /api/projects/{number}/partners/{partner}/submissions
func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	history, err := s.Queries.FindSubmissionHistory(r.Context(), r.PathValue("number"), r.PathValue("partner"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, history)
}

// GET /api/projects/{number}/partners/{partner}/stats
func (s *Server) handlePartnerStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.Queries.PartnerStats(r.Context(), r.PathValue("number"), r.PathValue("partner"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, stats)
}

// GET /api/projects/{number}/stats
func (s *Server) handleProjectStats(w http.ResponseWriter, r *http.Request) {
	typ := rfqtrack.ParsePartnerType(r.URL.Query().Get("type"))
	stats, err := s.Queries.ProjectStats(r.Context(), r.PathValue("number"), typ)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, stats)
}

// GET /api/projects/{number}/activity
func (s *Server) handleActivity(w http.ResponseWriter, r *http.Request) {
	typ := rfqtrack.ParsePartnerType(r.URL.Query().Get("type"))
	activity, err := s.Queries.PartnerActivity(r.Context(), r.PathValue("number"), typ)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, activity)
}

// GET /api/submissions/{id}/stats
func (s *Server) handleSubmissionStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.Queries.SubmissionStats(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, stats)
}

// POST /api/crawl
func (s *Server) handleStartCrawl(w http.ResponseWriter, r *http.Request) {
	if s.Runner == nil {
		s.writeError(w, r, rfqtrack.Errorf(rfqtrack.EINVALID, "crawling is disabled"))
		return
	}
	opts := rfqtrack.CrawlOptions{}
	if v := r.URL.Query().Get("dry_run"); v != "" {
		dryRun, err := strconv.ParseBool(v)
		if err != nil {
			s.writeError(w, r, rfqtrack.Errorf(rfqtrack.EINVALID, "invalid dry_run value %q", v))
			return
		}
		opts.DryRun = dryRun
	}
	job, err := s.Runner.Start(r.Context(), opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusAccepted, job.Status())
}

// GET /api/crawl
func (s *Server) handleCrawlStatus(w http.ResponseWriter, r *http.Request) {
	if s.Runner == nil {
		s.writeError(w, r, rfqtrack.Errorf(rfqtrack.ENOTFOUND, "no crawl has run"))
		return
	}
	job := s.Runner.Current()
	if job == nil {
		s.writeError(w, r, rfqtrack.Errorf(rfqtrack.ENOTFOUND, "no crawl has run"))
		return
	}
	s.writeJSON(w, http.StatusOK, job.Status())
}

func parseProjectFilter(r *http.Request) (rfqtrack.ProjectFilter, error) {
	q := r.URL.Query()
	filter := rfqtrack.ProjectFilter{
		SortBy:       rfqtrack.ProjectSort(q.Get("sort")),
		PartnerNames: q["partner"],
	}
	if v := strings.TrimSpace(q.Get("q")); v != "" {
		filter.NumberContains = &v
	}

	switch order := q.Get("order"); order {
	case "", "asc":
	case "desc":
		filter.Desc = true
	default:
		return filter, rfqtrack.Errorf(rfqtrack.EINVALID, "invalid order %q", order)
	}

	var err error
	if filter.ScannedFrom, err = parseTimeParam(q.Get("from"), false); err != nil {
		return filter, err
	}
	if filter.ScannedTo, err = parseTimeParam(q.Get("to"), true); err != nil {
		return filter, err
	}
	if filter.Offset, err = parseIntParam("offset", q.Get("offset")); err != nil {
		return filter, err
	}
	if filter.Limit, err = parseIntParam("limit", q.Get("limit")); err != nil {
		return filter, err
	}
	return filter, nil
}

// parseTimeParam accepts RFC 3339 timestamps or plain dates. A plain date
// used as an upper bound covers the whole day.
func parseTimeParam(v string, endOfDay bool) (*time.Time, error) {
	if v == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return &t, nil
	}
	t, err := time.Parse(time.DateOnly, v)
	if err != nil {
		return nil, rfqtrack.Errorf(rfqtrack.EINVALID, "invalid date %q", v)
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return &t, nil
}

func parseIntParam(name, v string) (int, error) {
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, rfqtrack.Errorf(rfqtrack.EINVALID, "invalid %s %q", name, v)
	}
	return n, nil
}

// errorResponse is the body of every non-2xx response.
type errorResponse struct {
	Error string `json:"error"`
}

var codes = map[string]int{
	rfqtrack.ECONFLICT: http.StatusConflict,
	rfqtrack.EINVALID:  http.StatusBadRequest,
	rfqtrack.ENOTFOUND: http.StatusNotFound,
	rfqtrack.EINTERNAL: http.StatusInternalServerError,
}

// ErrorStatusCode maps an application error code to an HTTP status code.
func ErrorStatusCode(code string) int {
	if v, ok := codes[code]; ok {
		return v
	}
	return http.StatusInternalServerError
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := rfqtrack.ErrorCode(err)
	if code == rfqtrack.EINTERNAL {
		s.logger().Error("request failed", "method", r.Method, "path", r.URL.Path, "err", err)
	}
	s.writeJSON(w, ErrorStatusCode(code), errorResponse{Error: rfqtrack.ErrorMessage(err)})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger().Error("encode response", "err", err)
	}
}
