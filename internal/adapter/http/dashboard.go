package http

import (
	"bytes"
	"embed"
	"html/template"
	"net/http"

	"github.com/couchcryptid/aqi-hexmap/internal/domain"
)

//go:embed static/index.html.tmpl
var staticFS embed.FS

var dashboardTmpl = template.Must(template.ParseFS(staticFS, "static/index.html.tmpl"))

type dashboardData struct {
	Title        string
	Years        []int
	DefaultYear  int
	Tooltip      []string
	DefaultZoom  int
	DefaultPitch int
}

func (s *Server) handleDashboard(w http.ResponseWriter, _ *http.Request) {
	data := dashboardData{
		Title:        s.opts.Title,
		Years:        s.opts.Years,
		Tooltip:      domain.TooltipColumns,
		DefaultZoom:  domain.DefaultZoom,
		DefaultPitch: domain.DefaultPitch,
	}
	if len(s.opts.Years) > 0 {
		data.DefaultYear = s.opts.Years[0]
	}

	var buf bytes.Buffer
	if err := dashboardTmpl.Execute(&buf, data); err != nil {
		s.logger.Error("render dashboard failed", "error", err)
		writeError(w, http.StatusInternalServerError, codeInternal, "render dashboard")
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}
