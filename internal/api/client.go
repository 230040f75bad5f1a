package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Client talks to the EnsuraX backend REST API. It is constructed once at
// the composition root and shared; all methods are safe for concurrent use.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

func NewClient(baseURL string, timeout time.Duration, logger *zap.Logger) *Client {
	if timeout <= 0 {
		timeout = 45 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

func (c *Client) doJSON(ctx context.Context, method, path string, query url.Values, payload any, out any) error {
	if c.baseURL == "" {
		return fmt.Errorf("api base url is not configured")
	}

	var body io.Reader
	if payload != nil {
		blob, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("marshal request payload: %w", err)
		}
		body = bytes.NewReader(blob)
	}

	fullURL := c.baseURL + path
	if len(query) > 0 {
		fullURL += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, fullURL, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	started := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("perform request: %w", err)
	}
	defer resp.Body.Close()
	c.logger.Debug("api request",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(started)),
	)

	if resp.StatusCode >= 400 {
		blob, _ := io.ReadAll(resp.Body)
		var apiErr apiError
		if json.Unmarshal(blob, &apiErr) == nil {
			if detail := strings.TrimSpace(apiErr.Detail); detail != "" {
				return fmt.Errorf("api %s %s: %s", method, path, detail)
			}
			if msg := strings.TrimSpace(apiErr.Error); msg != "" {
				return fmt.Errorf("api %s %s: %s", method, path, msg)
			}
		}
		return fmt.Errorf("api %s %s failed with status %d", method, path, resp.StatusCode)
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func rangeQuery(rng Range) url.Values {
	query := url.Values{}
	if s := strings.TrimSpace(rng.StartDate); s != "" {
		query.Set("start_date", s)
	}
	if e := strings.TrimSpace(rng.EndDate); e != "" {
		query.Set("end_date", e)
	}
	return query
}

func (c *Client) getSeries(ctx context.Context, path string, rng Range) ([]SeriesPoint, error) {
	var points []SeriesPoint
	if err := c.doJSON(ctx, http.MethodGet, path, rangeQuery(rng), nil, &points); err != nil {
		return nil, err
	}
	return points, nil
}

func (c *Client) getRatioSeries(ctx context.Context, path string, rng Range) ([]RatioPoint, error) {
	var points []RatioPoint
	if err := c.doJSON(ctx, http.MethodGet, path, rangeQuery(rng), nil, &points); err != nil {
		return nil, err
	}
	return points, nil
}

// Overview endpoints.

func (c *Client) GWP(ctx context.Context, rng Range) ([]SeriesPoint, error) {
	return c.getSeries(ctx, "/api/overview/gwp", rng)
}

func (c *Client) LossRatio(ctx context.Context, rng Range) ([]RatioPoint, error) {
	return c.getRatioSeries(ctx, "/api/overview/loss_ratio", rng)
}

func (c *Client) ClaimsFrequency(ctx context.Context, rng Range) ([]RatioPoint, error) {
	return c.getRatioSeries(ctx, "/api/overview/claims_frequency", rng)
}

func (c *Client) AvgSettlementDays(ctx context.Context, rng Range) ([]SeriesPoint, error) {
	return c.getSeries(ctx, "/api/overview/avg_settlement_days", rng)
}

// Overview fetches the four KPI series concurrently. The series are
// independent; a failure in any of them fails the whole refresh so the KPI
// row is never half-stale.
func (c *Client) Overview(ctx context.Context, rng Range) (*OverviewData, error) {
	var data OverviewData
	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		points, err := c.GWP(groupCtx, rng)
		data.GWP = points
		return err
	})
	group.Go(func() error {
		points, err := c.LossRatio(groupCtx, rng)
		data.LossRatio = points
		return err
	})
	group.Go(func() error {
		points, err := c.ClaimsFrequency(groupCtx, rng)
		data.ClaimsFrequency = points
		return err
	})
	group.Go(func() error {
		points, err := c.AvgSettlementDays(groupCtx, rng)
		data.AvgSettlementDays = points
		return err
	})
	if err := group.Wait(); err != nil {
		return nil, err
	}
	return &data, nil
}

// Claims endpoints.

func (c *Client) PaidVsReserve(ctx context.Context, rng Range) ([]TwoSeriesPoint, error) {
	var points []TwoSeriesPoint
	if err := c.doJSON(ctx, http.MethodGet, "/api/claims/paid_vs_reserve", rangeQuery(rng), nil, &points); err != nil {
		return nil, err
	}
	return points, nil
}

func (c *Client) SeverityHistogram(ctx context.Context) ([]BreakdownItem, error) {
	var items []BreakdownItem
	if err := c.doJSON(ctx, http.MethodGet, "/api/claims/severity_histogram", nil, nil, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func (c *Client) OpenVsClosedRatio(ctx context.Context, rng Range) ([]RatioPoint, error) {
	return c.getRatioSeries(ctx, "/api/claims/open_vs_closed_ratio", rng)
}

// Risk endpoints.

func (c *Client) ClaimsByPeril(ctx context.Context, rng Range, topN int) ([]BreakdownItem, error) {
	query := rangeQuery(rng)
	if topN <= 0 {
		topN = 10
	}
	query.Set("top_n", strconv.Itoa(topN))
	var items []BreakdownItem
	if err := c.doJSON(ctx, http.MethodGet, "/api/risk/claims_by_peril", query, nil, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func (c *Client) CatExposure(ctx context.Context, rng Range, region string) ([]BreakdownItem, error) {
	query := rangeQuery(rng)
	if region = strings.TrimSpace(region); region != "" {
		query.Set("region", region)
	}
	var items []BreakdownItem
	if err := c.doJSON(ctx, http.MethodGet, "/api/risk/cat_exposure", query, nil, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// Ops endpoints.

func (c *Client) FNOL(ctx context.Context, rng Range) ([]SeriesPoint, error) {
	return c.getSeries(ctx, "/api/ops/fnol", rng)
}

func (c *Client) SLABreaches(ctx context.Context, rng Range) ([]SLAPoint, error) {
	var points []SLAPoint
	if err := c.doJSON(ctx, http.MethodGet, "/api/ops/sla_breaches", rangeQuery(rng), nil, &points); err != nil {
		return nil, err
	}
	return points, nil
}

func (c *Client) BacklogByAgeBucket(ctx context.Context, asOf string) ([]BreakdownItem, error) {
	query := url.Values{}
	if asOf = strings.TrimSpace(asOf); asOf != "" {
		query.Set("as_of", asOf)
	}
	var items []BreakdownItem
	if err := c.doJSON(ctx, http.MethodGet, "/api/ops/backlog_by_age_bucket", query, nil, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// Customer 360 endpoints.

func (c *Client) Retention(ctx context.Context, rng Range) ([]SeriesPoint, error) {
	return c.getSeries(ctx, "/api/c360/retention", rng)
}

func (c *Client) CrossSellDistribution(ctx context.Context) ([]BreakdownItem, error) {
	var items []BreakdownItem
	if err := c.doJSON(ctx, http.MethodGet, "/api/c360/cross_sell_distribution", nil, nil, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func (c *Client) ChannelMix(ctx context.Context, rng Range) ([]BreakdownItem, error) {
	var items []BreakdownItem
	if err := c.doJSON(ctx, http.MethodGet, "/api/c360/channel_mix", rangeQuery(rng), nil, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func (c *Client) Demographics(ctx context.Context) ([]DemographicRow, error) {
	var rows []DemographicRow
	if err := c.doJSON(ctx, http.MethodGet, "/api/c360/demographics", nil, nil, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// Ask sends one natural-language question to the assistant and returns the
// raw answer payload. Interpretation of the payload shape lives in the chat
// package.
func (c *Client) Ask(ctx context.Context, question string) (json.RawMessage, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, fmt.Errorf("question is required")
	}
	var response AskResponse
	if err := c.doJSON(ctx, http.MethodPost, "/api/rag/ask", nil, askRequest{Question: question}, &response); err != nil {
		return nil, err
	}
	return response.Answer, nil
}

// Health reports the backend status string ("ok" when healthy).
func (c *Client) Health(ctx context.Context) (string, error) {
	var response healthResponse
	if err := c.doJSON(ctx, http.MethodGet, "/health", nil, nil, &response); err != nil {
		return "", err
	}
	return response.Status, nil
}
