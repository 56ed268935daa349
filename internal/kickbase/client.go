// Package kickbase provides a client for the Kickbase v4 API: squad and
// transfer market listings, player details and status, team standings, and
// market value history. The core analysis packages never import this
// package; they consume the plain data records it returns.
package kickbase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/kickwise/kickwise/internal/logger"
	"github.com/kickwise/kickwise/internal/models"
)

// Client provides access to the Kickbase API.
type Client struct {
	baseURL        string
	httpClient     *http.Client
	token          string
	maxRetries     int
	retryDelayBase time.Duration
}

// ClientConfig tunes retry behavior.
type ClientConfig struct {
	MaxRetries     int
	RetryDelayBase time.Duration
}

// NewClient creates a Kickbase client.
func NewClient(baseURL string, timeout time.Duration, cfg ClientConfig) *Client {
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}
	if cfg.RetryDelayBase <= 0 {
		cfg.RetryDelayBase = time.Second
	}

	return &Client{
		baseURL:        baseURL,
		httpClient:     &http.Client{Timeout: timeout},
		maxRetries:     cfg.MaxRetries,
		retryDelayBase: cfg.RetryDelayBase,
	}
}

// Login authenticates and stores the bearer token for subsequent calls.
func (c *Client) Login(ctx context.Context, email, password string) error {
	body, err := json.Marshal(map[string]interface{}{
		"em": email, "pass": password, "loy": false, "rep": map[string]interface{}{},
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v4/user/login", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("login request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("login failed with status %d", resp.StatusCode)
	}

	var response struct {
		Token string `json:"tkn"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return fmt.Errorf("failed to decode login response: %w", err)
	}
	if response.Token == "" {
		return fmt.Errorf("login response contained no token")
	}

	c.token = response.Token
	return nil
}

// apiPlayer is the wire shape shared by the squad and market endpoints.
type apiPlayer struct {
	ID            string  `json:"i"`
	FirstName     string  `json:"fn"`
	LastName      string  `json:"n"`
	TeamID        string  `json:"tid"`
	Position      int     `json:"pos"`
	Points        int     `json:"p"`
	AveragePoints float64 `json:"ap"`
	MarketValue   int     `json:"mv"`
	Price         int     `json:"prc"`
}

func (p apiPlayer) toModel() models.Player {
	price := p.Price
	if price == 0 {
		price = p.MarketValue
	}
	return models.Player{
		ID:            p.ID,
		FirstName:     p.FirstName,
		LastName:      p.LastName,
		TeamID:        p.TeamID,
		Position:      positionName(p.Position),
		Points:        p.Points,
		AveragePoints: p.AveragePoints,
		MarketValue:   p.MarketValue,
		Price:         price,
	}
}

func positionName(pos int) string {
	switch pos {
	case 1:
		return "GK"
	case 2:
		return "DEF"
	case 3:
		return "MID"
	case 4:
		return "FWD"
	default:
		return "UNKNOWN"
	}
}

// Squad retrieves the user's current squad for a league.
func (c *Client) Squad(ctx context.Context, leagueID string) ([]models.Player, error) {
	var response struct {
		Players []apiPlayer `json:"it"`
	}
	url := fmt.Sprintf("%s/v4/leagues/%s/squad", c.baseURL, leagueID)
	if err := c.getJSON(ctx, url, &response); err != nil {
		return nil, fmt.Errorf("failed to fetch squad: %w", err)
	}

	players := make([]models.Player, 0, len(response.Players))
	for _, p := range response.Players {
		players = append(players, p.toModel())
	}
	return players, nil
}

// Market retrieves the players currently listed on the transfer market.
func (c *Client) Market(ctx context.Context, leagueID string) ([]models.Player, error) {
	var response struct {
		Players []apiPlayer `json:"it"`
	}
	url := fmt.Sprintf("%s/v4/leagues/%s/market", c.baseURL, leagueID)
	if err := c.getJSON(ctx, url, &response); err != nil {
		return nil, fmt.Errorf("failed to fetch market: %w", err)
	}

	players := make([]models.Player, 0, len(response.Players))
	for _, p := range response.Players {
		players = append(players, p.toModel())
	}
	return players, nil
}

// Budget retrieves the user's available budget for a league.
func (c *Client) Budget(ctx context.Context, leagueID string) (int, error) {
	var response struct {
		Budget int `json:"b"`
	}
	url := fmt.Sprintf("%s/v4/leagues/%s/me", c.baseURL, leagueID)
	if err := c.getJSON(ctx, url, &response); err != nil {
		return 0, fmt.Errorf("failed to fetch budget: %w", err)
	}
	return response.Budget, nil
}

// PlayerDetails holds status, lineup outlook, and the season fixture summary
// for one player.
type PlayerDetails struct {
	PlayerID          string
	TeamID            string
	StatusCode        int
	LineupProbability int
	Fixtures          []models.Fixture
}

// PlayerDetails retrieves a player's status and fixture summary.
func (c *Client) PlayerDetails(ctx context.Context, leagueID, playerID string) (PlayerDetails, error) {
	var response struct {
		TeamID            string `json:"tid"`
		StatusCode        int    `json:"st"`
		LineupProbability int    `json:"prob"`
		Matches           []struct {
			HomeTeamID string `json:"t1"`
			AwayTeamID string `json:"t2"`
			Matchday   int    `json:"day"`
			Date       string `json:"md"`
			State      int    `json:"mdst"` // 0 = not played yet
		} `json:"mdsum"`
	}

	url := fmt.Sprintf("%s/v4/leagues/%s/players/%s", c.baseURL, leagueID, playerID)
	if err := c.getJSON(ctx, url, &response); err != nil {
		return PlayerDetails{}, fmt.Errorf("failed to fetch player details: %w", err)
	}

	details := PlayerDetails{
		PlayerID:          playerID,
		TeamID:            response.TeamID,
		StatusCode:        response.StatusCode,
		LineupProbability: response.LineupProbability,
	}
	if details.LineupProbability == 0 {
		details.LineupProbability = 5 // absent lineup data counts as unlikely
	}

	for _, m := range response.Matches {
		date, err := time.Parse(time.RFC3339, m.Date)
		if err != nil {
			logger.Debug("unparseable fixture date %q for player %s: %v", m.Date, playerID, err)
		}
		details.Fixtures = append(details.Fixtures, models.Fixture{
			HomeTeamID: m.HomeTeamID,
			AwayTeamID: m.AwayTeamID,
			Matchday:   m.Matchday,
			Date:       date,
			Played:     m.State != 0,
		})
	}
	return details, nil
}

// TeamProfile retrieves a team's standings record.
func (c *Client) TeamProfile(ctx context.Context, leagueID, teamID string) (models.TeamStanding, error) {
	var response struct {
		TeamID         string `json:"tid"`
		TeamName       string `json:"tn"`
		LeaguePosition int    `json:"pl"`
		Wins           int    `json:"tw"`
		Draws          int    `json:"td"`
		Losses         int    `json:"tl"`
	}

	url := fmt.Sprintf("%s/v4/leagues/%s/teams/%s/teamprofile", c.baseURL, leagueID, teamID)
	if err := c.getJSON(ctx, url, &response); err != nil {
		return models.TeamStanding{}, fmt.Errorf("failed to fetch team profile: %w", err)
	}

	standing := models.TeamStanding{
		TeamID:         response.TeamID,
		TeamName:       response.TeamName,
		LeaguePosition: response.LeaguePosition,
		Wins:           response.Wins,
		Draws:          response.Draws,
		Losses:         response.Losses,
	}
	if standing.TeamID == "" {
		standing.TeamID = teamID
	}
	if err := standing.Validate(); err != nil {
		return models.TeamStanding{}, fmt.Errorf("malformed team profile for %s: %w", teamID, err)
	}
	return standing, nil
}

// MarketValueHistory retrieves a player's daily market values over the given
// timeframe (e.g. "92" for 92 days), ordered most recent first.
func (c *Client) MarketValueHistory(ctx context.Context, playerID, timeframe string) ([]int, error) {
	var response struct {
		Items []struct {
			MarketValue int `json:"mv"`
		} `json:"it"`
	}

	url := fmt.Sprintf("%s/v4/competitions/1/players/%s/marketValue/%s", c.baseURL, playerID, timeframe)
	if err := c.getJSON(ctx, url, &response); err != nil {
		return nil, fmt.Errorf("failed to fetch market value history: %w", err)
	}

	// API returns oldest first; reverse to most recent first.
	prices := make([]int, 0, len(response.Items))
	for i := len(response.Items) - 1; i >= 0; i-- {
		if response.Items[i].MarketValue > 0 {
			prices = append(prices, response.Items[i].MarketValue)
		}
	}
	return prices, nil
}

// getJSON performs a GET with retry logic and decodes the JSON response.
func (c *Client) getJSON(ctx context.Context, url string, out interface{}) error {
	resp, err := c.doRequest(ctx, url)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// doRequest performs an HTTP GET with linear-backoff retries on transport
// errors and 5xx responses.
func (c *Client) doRequest(ctx context.Context, url string) (*http.Response, error) {
	var lastErr error

	for i := 0; i < c.maxRetries; i++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", "application/json")
		if c.token != "" {
			req.Header.Set("Authorization", "Bearer "+c.token)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = err
		} else if resp.StatusCode >= 500 {
			resp.Body.Close()
			lastErr = fmt.Errorf("server error: %d", resp.StatusCode)
		} else {
			return resp, nil
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(time.Duration(i+1) * c.retryDelayBase):
		}
	}

	return nil, fmt.Errorf("max retries exceeded: %w", lastErr)
}
