package pages

import (
	"context"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"Inshorts/internal/models"
)

const (
	msgDashboardFailed = "Failed to load dashboard data. Please try again."
	msgAdminListFailed = "Failed to load articles. Please try again."
	MsgDeleteFailed    = "Failed to delete the article. Please try again."

	recentWindow = 7 * 24 * time.Hour
	latestShown  = 5
)

// Stats are the dashboard figures.
type Stats struct {
	Total  int
	Recent int // published within the last week
	Likes  int
	Latest []models.Article
}

// ComputeStats derives the dashboard figures from the full article list.
func ComputeStats(articles []models.Article, now time.Time) Stats {
	st := Stats{Total: len(articles)}
	cutoff := now.Add(-recentWindow)
	for _, a := range articles {
		st.Likes += a.LikeCount
		if !a.PublishedAt.Before(cutoff) {
			st.Recent++
		}
	}

	sorted := append([]models.Article(nil), articles...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].PublishedAt.After(sorted[j].PublishedAt.Time)
	})
	if len(sorted) > latestShown {
		sorted = sorted[:latestShown]
	}
	st.Latest = sorted
	return st
}

type DashboardView struct {
	Stats Stats
	Error string
}

func LoadDashboard(ctx context.Context, a API, now time.Time) DashboardView {
	articles, err := a.ListArticles(ctx)
	if err != nil {
		zap.L().Warn("dashboard fetch failed", zap.Error(err))
		return DashboardView{Error: msgDashboardFailed}
	}
	return DashboardView{Stats: ComputeStats(articles, now)}
}

// FilterArticles keeps the articles whose title, summary or author
// contains q, ignoring case. An empty query keeps everything.
func FilterArticles(articles []models.Article, q string) []models.Article {
	q = strings.ToLower(strings.TrimSpace(q))
	if q == "" {
		return articles
	}
	var out []models.Article
	for _, a := range articles {
		if strings.Contains(strings.ToLower(a.Title), q) ||
			strings.Contains(strings.ToLower(a.Summary), q) ||
			strings.Contains(strings.ToLower(a.Author), q) {
			out = append(out, a)
		}
	}
	return out
}

type AdminListView struct {
	Articles []models.Article
	Query    string
	Error    string
}

func LoadAdminList(ctx context.Context, a API, q string) AdminListView {
	view := AdminListView{Query: q}
	articles, err := a.ListArticles(ctx)
	if err != nil {
		zap.L().Warn("admin article list failed", zap.Error(err))
		view.Error = msgAdminListFailed
		return view
	}
	view.Articles = FilterArticles(articles, q)
	return view
}
