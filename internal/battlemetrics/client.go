// Package battlemetrics looks up game server status on the BattleMetrics API.
package battlemetrics

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"rustbot/internal/common"
	"rustbot/internal/monitor"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const DEFAULT_BASE_URL = "https://api.battlemetrics.com"

// Server route, including the description resource
const ROUTE_SERVER = "/servers/%s?include=serverDescription"

// Limits of an authenticated API token
var restrictions = []common.Restriction{
	{Requests: 15, Duration: time.Second},
	{Requests: 300, Duration: time.Minute},
}

// How long to hold back after the API answers 429
const rateLimitPause = 30 * time.Second

type Client struct {
	baseURL string
	token   string
	proxy   *common.Proxy
	limiter *common.RateLimiter
	clock   common.Clock
	logger  zerolog.Logger
}

func NewClient(baseURL string, token string, timeout time.Duration, clock common.Clock) *Client {
	if baseURL == "" {
		baseURL = DEFAULT_BASE_URL
	}
	logger := log.With().Str("service", "BattleMetrics").Logger()
	if token == "" {
		logger.Warn().Msg("BattleMetrics client created without an API token, lookups will fail")
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		proxy:   common.NewProxy(map[string]string{"Authorization": "Bearer " + token, "Accept": "application/json"}, timeout),
		limiter: common.NewRateLimiter(clock, restrictions...),
		clock:   clock,
		logger:  logger,
	}
}

// Enabled reports whether an API token is configured
func (c *Client) Enabled() bool {
	return c.token != ""
}

// FetchStatus never fails: errors are reported in the returned status.
func (c *Client) FetchStatus(ctx context.Context, serverID string) monitor.EntityStatus {
	if !c.Enabled() {
		c.logger.Error().Msg(fmt.Sprintf("Cannot fetch server %s: API token is missing", serverID))
		return monitor.Failed(serverID, c.clock.Now(), monitor.Failure{Kind: monitor.CredentialMissing})
	}

	// Request
	if err := c.limiter.Wait(ctx); err != nil {
		c.logger.Error().Err(err).Msg(fmt.Sprintf("Gave up waiting for the rate limit to fetch server %s", serverID))
		return monitor.Failed(serverID, c.clock.Now(), monitor.Failure{Kind: monitor.NetworkError})
	}
	data, err := c.proxy.Request(ctx, c.baseURL+fmt.Sprintf(ROUTE_SERVER, url.PathEscape(serverID)))
	if err != nil {
		var statusErr *common.StatusError
		if errors.As(err, &statusErr) {
			if statusErr.Code == http.StatusTooManyRequests {
				c.limiter.ReceivedRateLimit(rateLimitPause)
			}
			c.logger.Error().Str("body", statusErr.Body).Msg(fmt.Sprintf("HTTP error fetching server %s: %s", serverID, statusErr))
			return monitor.Failed(serverID, c.clock.Now(), monitor.Failure{Kind: monitor.ApiError, HTTPStatus: statusErr.Code})
		}
		c.logger.Error().Err(err).Msg(fmt.Sprintf("Network error fetching server %s", serverID))
		return monitor.Failed(serverID, c.clock.Now(), monitor.Failure{Kind: monitor.NetworkError})
	}

	// Decode
	status, err := DecodeServer(serverID, data, c.clock.Now())
	if err != nil {
		c.logger.Error().Err(err).Msg(fmt.Sprintf("Invalid response for server %s", serverID))
		return monitor.Failed(serverID, c.clock.Now(), monitor.Failure{Kind: monitor.InvalidResponse})
	}

	server := status.Server
	c.logger.Debug().Msg(fmt.Sprintf("Fetched server %s: online=%t (%d/%d)", serverID, server.Online, server.Players, server.MaxPlayers))
	return status
}
