package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"coinsec/internal/game"
	"coinsec/internal/ton"
)

type Client struct {
	BaseURL string
	HTTP    *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// BoostInfo is the payment target the server advertises for boosters.
type BoostInfo struct {
	Recipient      string `json:"recipient"`
	AmountNanoton  int64  `json:"amount_nanoton"`
	TransferURL    string `json:"transfer_url"`
	DurationMillis int64  `json:"duration_millis"`
}

// VerifyResponse is the outcome of submitting a booster payment.
type VerifyResponse struct {
	Accepted bool          `json:"accepted"`
	Reason   string        `json:"reason,omitempty"`
	Data     game.Snapshot `json:"data"`
}

func playerPath(address string) string {
	return "/v1/players/" + url.PathEscape(address)
}

func (c *Client) Fetch(ctx context.Context, address, referral string) (game.Snapshot, error) {
	path := playerPath(address) + "/"
	if referral != "" {
		path += "?referral=" + url.QueryEscape(referral)
	}
	var out game.Snapshot
	err := c.jsonRequest(ctx, http.MethodGet, path, nil, &out)
	return out, err
}

func (c *Client) Push(ctx context.Context, address string, snap game.Snapshot) error {
	return c.jsonRequest(ctx, http.MethodPost, playerPath(address)+"/", snap, nil)
}

func (c *Client) Tap(ctx context.Context, address string) (game.TapResult, error) {
	var out game.TapResult
	err := c.jsonRequest(ctx, http.MethodPost, playerPath(address)+"/tap", nil, &out)
	return out, err
}

func (c *Client) Tick(ctx context.Context, address string) (game.Snapshot, error) {
	var out game.Snapshot
	err := c.jsonRequest(ctx, http.MethodPost, playerPath(address)+"/tick", nil, &out)
	return out, err
}

func (c *Client) BuyUpgrade(ctx context.Context, address, upgradeID string) (game.Snapshot, error) {
	var out game.Snapshot
	err := c.jsonRequest(ctx, http.MethodPost, playerPath(address)+"/upgrades/"+url.PathEscape(upgradeID)+"/buy", nil, &out)
	return out, err
}

func (c *Client) BuyStock(ctx context.Context, address, stockID string, amount float64) (game.Snapshot, error) {
	var out game.Snapshot
	err := c.jsonRequest(ctx, http.MethodPost, playerPath(address)+"/investments/"+url.PathEscape(stockID)+"/buy", map[string]any{
		"amount": amount,
	}, &out)
	return out, err
}

func (c *Client) Transactions(ctx context.Context, address string, limit int) ([]game.Purchase, error) {
	var out struct {
		Transactions []game.Purchase `json:"transactions"`
	}
	err := c.jsonRequest(ctx, http.MethodGet, fmt.Sprintf("%s/transactions?limit=%d", playerPath(address), limit), nil, &out)
	return out.Transactions, err
}

func (c *Client) Stocks(ctx context.Context) ([]game.Stock, error) {
	var out struct {
		Stocks []game.Stock `json:"stocks"`
	}
	err := c.jsonRequest(ctx, http.MethodGet, "/v1/stocks", nil, &out)
	return out.Stocks, err
}

func (c *Client) Leaderboard(ctx context.Context, limit int) ([]game.LeaderboardRow, error) {
	path := "/v1/leaderboard"
	if limit > 0 {
		path = fmt.Sprintf("%s?limit=%d", path, limit)
	}
	var out struct {
		Rows []game.LeaderboardRow `json:"rows"`
	}
	err := c.jsonRequest(ctx, http.MethodGet, path, nil, &out)
	return out.Rows, err
}

func (c *Client) Boost(ctx context.Context) (BoostInfo, error) {
	var out BoostInfo
	err := c.jsonRequest(ctx, http.MethodGet, "/v1/boost", nil, &out)
	return out, err
}

// VerifyTransaction submits a payment claim. A rejected payment comes
// back as Accepted=false with a reason, not as an error.
func (c *Client) VerifyTransaction(ctx context.Context, address string, req ton.VerifyRequest) (VerifyResponse, error) {
	raw, err := json.Marshal(map[string]any{
		"address":       address,
		"boc":           req.BOC,
		"senderAddress": req.SenderAddress,
		"amountNanoton": req.AmountNanoton,
	})
	if err != nil {
		return VerifyResponse{}, err
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/v1/verify-transaction", bytes.NewReader(raw))
	if err != nil {
		return VerifyResponse{}, err
	}
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("Content-Type", "application/json")
	resp, err := c.HTTP.Do(httpReq)
	if err != nil {
		return VerifyResponse{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusUnprocessableEntity {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return VerifyResponse{}, fmt.Errorf("api status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	var out VerifyResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return VerifyResponse{}, err
	}
	return out, nil
}

func (c *Client) jsonRequest(ctx context.Context, method, path string, in any, out any) error {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("api status %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
