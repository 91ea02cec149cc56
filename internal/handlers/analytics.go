package handlers

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"go.uber.org/zap"

	"github.com/serroba/linkboard/internal/analytics"
	"github.com/serroba/linkboard/internal/shortlink"
)

const csvHeader = "Date,Link ID,IP Address,User Agent,Referer,Device,Browser,OS"

// AnalyticsHandler serves the click aggregation and export surface.
type AnalyticsHandler struct {
	aggregator *analytics.Aggregator
	clicks     shortlink.ClickRepository
	logger     *zap.Logger
}

// NewAnalyticsHandler builds an AnalyticsHandler.
func NewAnalyticsHandler(aggregator *analytics.Aggregator, clicks shortlink.ClickRepository, logger *zap.Logger) *AnalyticsHandler {
	return &AnalyticsHandler{aggregator: aggregator, clicks: clicks, logger: logger}
}

// parseDate accepts a full RFC 3339 timestamp or a bare ISO date, which
// the dashboard's date pickers send.
func parseDate(value string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}

	return time.Parse("2006-01-02", value)
}

func clickFilter(linkID, start, end string) (shortlink.ClickFilter, error) {
	filter := shortlink.ClickFilter{LinkID: linkID}

	if start != "" {
		t, err := parseDate(start)
		if err != nil {
			return filter, huma.Error400BadRequest("invalid startDate")
		}

		filter.Start = &t
	}

	if end != "" {
		t, err := parseDate(end)
		if err != nil {
			return filter, huma.Error400BadRequest("invalid endDate")
		}

		filter.End = &t
	}

	return filter, nil
}

// GetAnalytics aggregates clicks matching the filter.
func (h *AnalyticsHandler) GetAnalytics(ctx context.Context, req *AnalyticsRequest) (*AnalyticsResponse, error) {
	filter, err := clickFilter(req.LinkID, req.StartDate, req.EndDate)
	if err != nil {
		return nil, err
	}

	summary, err := h.aggregator.Clicks(ctx, filter)
	if err != nil {
		h.logger.Error("failed to aggregate clicks", zap.Error(err))

		return nil, huma.Error500InternalServerError("failed to aggregate clicks")
	}

	return &AnalyticsResponse{Body: *summary}, nil
}

// Dashboard returns the account-wide summary.
func (h *AnalyticsHandler) Dashboard(ctx context.Context, _ *struct{}) (*DashboardResponse, error) {
	stats, err := h.aggregator.Dashboard(ctx)
	if err != nil {
		h.logger.Error("failed to build dashboard stats", zap.Error(err))

		return nil, huma.Error500InternalServerError("failed to build dashboard stats")
	}

	return &DashboardResponse{Body: DashboardStats{
		TotalLinks:     stats.TotalLinks,
		TotalClicks:    stats.TotalClicks,
		WeeklyClicks:   stats.WeeklyClicks,
		ClickRate:      stats.ClickRate,
		ActiveWebhooks: stats.ActiveWebhooks,
		TopLinks:       toTopLinks(stats.TopLinks),
	}}, nil
}

// Export renders clicks matching the filter as a CSV attachment.
func (h *AnalyticsHandler) Export(ctx context.Context, req *ExportRequest) (*ExportResponse, error) {
	filter, err := clickFilter(req.LinkID, req.StartDate, req.EndDate)
	if err != nil {
		return nil, err
	}

	clicks, err := h.clicks.List(ctx, filter)
	if err != nil {
		h.logger.Error("failed to export clicks", zap.Error(err))

		return nil, huma.Error500InternalServerError("failed to export clicks")
	}

	var b strings.Builder

	b.WriteString(csvHeader)

	for _, click := range clicks {
		b.WriteByte('\n')
		fmt.Fprintf(&b, `%s,%s,"%s","%s","%s","%s","%s","%s"`,
			click.ClickedAt.Format(time.RFC3339),
			click.LinkID,
			click.IPAddress,
			click.UserAgent,
			click.Referer,
			click.Device,
			click.Browser,
			click.OS)
	}

	return &ExportResponse{
		ContentType:        "text/csv",
		ContentDisposition: `attachment; filename="analytics.csv"`,
		Body:               []byte(b.String()),
	}, nil
}
