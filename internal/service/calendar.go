package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/martijnhiemstra/selfsuffient/internal/config"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const calendarAPIBase = "https://www.googleapis.com/calendar/v3"

// CalendarService connects user accounts to Google Calendar and pushes
// task events. Tokens are stored per user as serialized JSON.
type CalendarService struct {
	cfg config.GoogleConfig
}

func NewCalendarService(cfg *config.Config) *CalendarService {
	return &CalendarService{cfg: cfg.Google}
}

func (s *CalendarService) Enabled() bool {
	return s.cfg.ClientID != "" && s.cfg.ClientSecret != ""
}

func (s *CalendarService) oauthConfig() *oauth2.Config {
	return &oauth2.Config{
		ClientID:     s.cfg.ClientID,
		ClientSecret: s.cfg.ClientSecret,
		RedirectURL:  s.cfg.RedirectURL,
		Scopes:       []string{"https://www.googleapis.com/auth/calendar"},
		Endpoint:     google.Endpoint,
	}
}

// AuthURL builds the consent URL. State carries the user id so the
// callback can attach the token to the right account.
func (s *CalendarService) AuthURL(state string) string {
	return s.oauthConfig().AuthCodeURL(state,
		oauth2.AccessTypeOffline, oauth2.SetAuthURLParam("prompt", "consent"))
}

// Exchange swaps an authorization code for a token.
func (s *CalendarService) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	tok, err := s.oauthConfig().Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("exchange authorization code: %w", err)
	}
	return tok, nil
}

func TokenToJSON(tok *oauth2.Token) (string, error) {
	b, err := json.Marshal(tok)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func TokenFromJSON(raw string) (*oauth2.Token, error) {
	var tok oauth2.Token
	if err := json.Unmarshal([]byte(raw), &tok); err != nil {
		return nil, fmt.Errorf("stored token is corrupt: %w", err)
	}
	return &tok, nil
}

// client returns an HTTP client that refreshes the token as needed.
func (s *CalendarService) client(ctx context.Context, tok *oauth2.Token) *http.Client {
	return s.oauthConfig().Client(ctx, tok)
}

// CalendarInfo is one entry from the user's calendar list.
type CalendarInfo struct {
	ID      string `json:"id"`
	Summary string `json:"summary"`
	Primary bool   `json:"primary"`
}

// ListCalendars fetches the user's calendar list.
func (s *CalendarService) ListCalendars(ctx context.Context, tok *oauth2.Token) ([]CalendarInfo, error) {
	resp, err := s.client(ctx, tok).Get(calendarAPIBase + "/users/me/calendarList")
	if err != nil {
		return nil, fmt.Errorf("list calendars: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("list calendars: calendar API returned %s", resp.Status)
	}

	var payload struct {
		Items []CalendarInfo `json:"items"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode calendar list: %w", err)
	}
	return payload.Items, nil
}

// Event is a calendar event to create. All-day events carry a date only,
// timed events a start time plus one hour.
type Event struct {
	Summary     string
	Description string
	Start       time.Time
	AllDay      bool
}

type eventTime struct {
	Date     string `json:"date,omitempty"`
	DateTime string `json:"dateTime,omitempty"`
	TimeZone string `json:"timeZone,omitempty"`
}

// CreateEvent inserts an event into the given calendar and returns the
// created event's id.
func (s *CalendarService) CreateEvent(ctx context.Context, tok *oauth2.Token, calendarID string, ev Event) (string, error) {
	if calendarID == "" {
		calendarID = "primary"
	}

	body := map[string]any{
		"summary":     ev.Summary,
		"description": ev.Description,
	}
	if ev.AllDay {
		day := ev.Start.Format("2006-01-02")
		next := ev.Start.AddDate(0, 0, 1).Format("2006-01-02")
		body["start"] = eventTime{Date: day}
		body["end"] = eventTime{Date: next}
	} else {
		body["start"] = eventTime{DateTime: ev.Start.Format(time.RFC3339), TimeZone: "UTC"}
		body["end"] = eventTime{DateTime: ev.Start.Add(time.Hour).Format(time.RFC3339), TimeZone: "UTC"}
	}

	buf, err := json.Marshal(body)
	if err != nil {
		return "", err
	}

	url := fmt.Sprintf("%s/calendars/%s/events", calendarAPIBase, calendarID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(buf))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client(ctx, tok).Do(req)
	if err != nil {
		return "", fmt.Errorf("create event: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("create event: calendar API returned %s", resp.Status)
	}

	var created struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		return "", fmt.Errorf("decode created event: %w", err)
	}
	return created.ID, nil
}
