package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/example/little-lemon/internal/domain/reservation"
)

const defaultUA = "little-lemon/1.0"

// Client is a reservation.API backed by a remote reservation service:
//
//	GET  {base}/availability?date=YYYY-MM-DD  -> ["17:00", ...]
//	POST {base}/bookings                      -> {"success": true}
type Client struct {
	http *http.Client
	base string
	ua   string
}

func New(baseURL string, timeout time.Duration) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if base == "" {
		return nil, errors.New("reservation api base url is empty")
	}
	if _, err := url.Parse(base); err != nil {
		return nil, fmt.Errorf("reservation api base url: %w", err)
	}
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	return &Client{
		http: &http.Client{Timeout: timeout},
		base: base,
		ua:   defaultUA,
	}, nil
}

func (c *Client) FetchAvailability(ctx context.Context, date time.Time) ([]string, error) {
	u := c.base + "/availability?date=" + url.QueryEscape(reservation.DateKey(date))
	hreq, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	hreq.Header.Set("accept", "application/json")
	hreq.Header.Set("user-agent", c.ua)

	body, err := c.do(hreq, "availability")
	if err != nil {
		return nil, err
	}
	var slots []string
	if err := json.Unmarshal(body, &slots); err != nil {
		return nil, fmt.Errorf("parse availability: %w", err)
	}
	out := make([]string, 0, len(slots))
	for _, s := range slots {
		k, err := reservation.NormalizeSlotKey(s)
		if err != nil {
			continue
		}
		out = append(out, k)
	}
	return out, nil
}

func (c *Client) SubmitBooking(ctx context.Context, b reservation.Booking) (bool, error) {
	payload, err := json.Marshal(b)
	if err != nil {
		return false, err
	}
	hreq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+"/bookings", bytes.NewReader(payload))
	if err != nil {
		return false, err
	}
	hreq.Header.Set("content-type", "application/json")
	hreq.Header.Set("user-agent", c.ua)

	body, err := c.do(hreq, "submit")
	if err != nil {
		return false, err
	}
	var parsed struct {
		Success bool `json:"success"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return false, fmt.Errorf("parse submit response: %w", err)
	}
	return parsed.Success, nil
}

func (c *Client) do(hreq *http.Request, op string) ([]byte, error) {
	hresp, err := c.http.Do(hreq)
	if err != nil {
		return nil, err
	}
	defer hresp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(hresp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("%s: read body: %w", op, err)
	}
	if hresp.StatusCode < 200 || hresp.StatusCode >= 300 {
		return nil, fmt.Errorf("%s http %d: %s", op, hresp.StatusCode, strings.TrimSpace(string(body)))
	}
	return body, nil
}
