// Package analytics computes click aggregates for the dashboard and defines
// the events emitted by the link handlers.
package analytics

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/serroba/linkboard/internal/shortlink"
)

// DayCount is the number of clicks on one ISO date.
type DayCount struct {
	Date   string `json:"date"`
	Clicks int    `json:"clicks"`
}

// Summary aggregates a set of clicks: total, distinct-IP count as a proxy
// for unique visitors, and per-day bucketing.
type Summary struct {
	TotalClicks  int        `json:"totalClicks"`
	UniqueClicks int        `json:"uniqueClicks"`
	ClicksByDay  []DayCount `json:"clicksByDay"`
}

// Aggregate folds clicks into a Summary. Day buckets are keyed by the ISO
// date of the click timestamp in UTC and returned in ascending date order.
func Aggregate(clicks []*shortlink.Click) Summary {
	ips := make(map[string]struct{})
	days := make(map[string]int)

	for _, click := range clicks {
		ips[click.IPAddress] = struct{}{}
		days[click.ClickedAt.UTC().Format("2006-01-02")]++
	}

	byDay := make([]DayCount, 0, len(days))

	for date, count := range days {
		byDay = append(byDay, DayCount{Date: date, Clicks: count})
	}

	sort.Slice(byDay, func(i, j int) bool {
		return byDay[i].Date < byDay[j].Date
	})

	return Summary{
		TotalClicks:  len(clicks),
		UniqueClicks: len(ips),
		ClicksByDay:  byDay,
	}
}

// DashboardStats is the combined summary shown on the dashboard landing page.
type DashboardStats struct {
	TotalLinks     int                  `json:"totalLinks"`
	TotalClicks    int                  `json:"totalClicks"`
	WeeklyClicks   int                  `json:"weeklyClicks"`
	ClickRate      string               `json:"clickRate"`
	ActiveWebhooks int                  `json:"activeWebhooks"`
	TopLinks       []*shortlink.TopLink `json:"-"`
}

// Aggregator runs analytics queries against the click and link stores.
type Aggregator struct {
	links  shortlink.LinkRepository
	clicks shortlink.ClickRepository
}

// NewAggregator creates a new analytics aggregator.
func NewAggregator(links shortlink.LinkRepository, clicks shortlink.ClickRepository) *Aggregator {
	return &Aggregator{
		links:  links,
		clicks: clicks,
	}
}

// Clicks returns the aggregate summary for the given filter. Start and End
// are inclusive.
func (a *Aggregator) Clicks(ctx context.Context, filter shortlink.ClickFilter) (*Summary, error) {
	clicks, err := a.clicks.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	summary := Aggregate(clicks)

	return &summary, nil
}

// Dashboard combines link and click aggregates for the summary endpoint:
// total links, trailing-30-day clicks, trailing-7-day clicks, a naive click
// rate (monthly clicks per link), webhook-enabled link count, and the top
// five links.
func (a *Aggregator) Dashboard(ctx context.Context) (*DashboardStats, error) {
	now := time.Now()
	lastWeek := now.AddDate(0, 0, -7)
	lastMonth := now.AddDate(0, 0, -30)

	links, err := a.links.List(ctx)
	if err != nil {
		return nil, err
	}

	monthly, err := a.Clicks(ctx, shortlink.ClickFilter{Start: &lastMonth})
	if err != nil {
		return nil, err
	}

	weekly, err := a.Clicks(ctx, shortlink.ClickFilter{Start: &lastWeek})
	if err != nil {
		return nil, err
	}

	top, err := a.links.Top(ctx, 5)
	if err != nil {
		return nil, err
	}

	activeWebhooks := 0

	for _, link := range links {
		if link.EnableWebhook {
			activeWebhooks++
		}
	}

	clickRate := "0"
	if len(links) > 0 {
		clickRate = fmt.Sprintf("%.1f", float64(monthly.TotalClicks)/float64(len(links)))
	}

	return &DashboardStats{
		TotalLinks:     len(links),
		TotalClicks:    monthly.TotalClicks,
		WeeklyClicks:   weekly.TotalClicks,
		ClickRate:      clickRate,
		ActiveWebhooks: activeWebhooks,
		TopLinks:       top,
	}, nil
}
