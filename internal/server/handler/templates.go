package handler

import (
	"embed"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/brizzai/fitdash/internal/dashboard"
)

//go:embed templates/*.html
var templatesFS embed.FS

const (
	sparkWidth  = 600
	sparkHeight = 120
)

var funcs = template.FuncMap{
	"percent":     func(p *float64) int { return int(*p * 100) },
	"sparkline":   sparkline,
	"sparkWidth":  func() int { return sparkWidth },
	"sparkHeight": func() int { return sparkHeight },
}

var (
	loginPage     = template.Must(template.New("login").Funcs(funcs).ParseFS(templatesFS, "templates/layout.html", "templates/login.html"))
	dashboardPage = template.Must(template.New("dashboard").Funcs(funcs).ParseFS(templatesFS, "templates/layout.html", "templates/dashboard.html"))
)

// LoginPageData represents the data for the login page
type LoginPageData struct {
	Flash          string
	LoginPath      string
	SubmitPath     string
	RedirectURI    string
	RefreshSeconds int
}

// DashboardPageData represents the data for the dashboard page
type DashboardPageData struct {
	Flash          string
	LogoutPath     string
	Snapshot       *dashboard.Snapshot
	Interval       time.Duration
	RefreshSeconds int
}

// sparkline scales values into SVG polyline points
func sparkline(values []int) string {
	if len(values) == 0 {
		return ""
	}
	lo, hi := values[0], values[0]
	for _, v := range values {
		lo = min(lo, v)
		hi = max(hi, v)
	}
	span := float64(hi - lo)
	if span == 0 {
		span = 1
	}
	step := float64(sparkWidth)
	if len(values) > 1 {
		step = float64(sparkWidth) / float64(len(values)-1)
	}

	points := make([]string, len(values))
	for i, v := range values {
		x := float64(i) * step
		y := float64(sparkHeight) - (float64(v-lo)/span)*float64(sparkHeight)
		points[i] = fmt.Sprintf("%.1f,%.1f", x, y)
	}
	return strings.Join(points, " ")
}
