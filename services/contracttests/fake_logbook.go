package contracttests

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/MarcGrol/ergsync/services/logbook"
)

// FakeLogbook mimics the part of the provider that the logbook client talks to:
// the token endpoint, the profile and the paginated results.
type FakeLogbook struct {
	sync.Mutex
	AccessToken  string
	RefreshToken string
	Profile      map[string]any
	Results      []map[string]any
	Requests     int
}

func NewFakeLogbook() *FakeLogbook {
	f := &FakeLogbook{
		AccessToken:  "fake-access-token",
		RefreshToken: "fake-refresh-token",
		Profile: map[string]any{
			"id":       float64(1),
			"username": "fakerower",
			"country":  "NL",
		},
	}
	day := time.Date(2023, time.March, 1, 7, 30, 0, 0, time.UTC)
	for i := 0; i < 123; i++ {
		f.Results = append(f.Results, map[string]any{
			"id":       float64(i + 1),
			"date":     day.Format("2006-01-02 15:04:05"),
			"distance": float64(2000 + i*10),
			"type":     "rower",
		})
		day = day.Add(5 * 24 * time.Hour)
	}
	return f
}

// Snapshot returns the current access token and the number of requests served so far.
func (f *FakeLogbook) Snapshot() (string, int) {
	f.Lock()
	defer f.Unlock()
	return f.AccessToken, f.Requests
}

func (f *FakeLogbook) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.Lock()
	defer f.Unlock()
	f.Requests++

	switch r.URL.Path {
	case "/oauth/access_token":
		f.token(w, r)
	case "/api/users/me":
		if !f.authorized(w, r) {
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"data": f.Profile})
	case "/api/users/me/results":
		if !f.authorized(w, r) {
			return
		}
		f.results(w, r)
	default:
		writeJSON(w, http.StatusNotFound, map[string]any{"message": "not found"})
	}
}

func (f *FakeLogbook) authorized(w http.ResponseWriter, r *http.Request) bool {
	if r.Header.Get("Authorization") != "Bearer "+f.AccessToken {
		writeJSON(w, http.StatusUnauthorized, map[string]any{"message": "Unauthenticated."})
		return false
	}
	return true
}

func (f *FakeLogbook) token(w http.ResponseWriter, r *http.Request) {
	err := r.ParseForm()
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid_request"})
		return
	}
	if r.PostForm.Get("grant_type") == "refresh_token" && r.PostForm.Get("refresh_token") != f.RefreshToken {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid_grant"})
		return
	}
	f.AccessToken = fmt.Sprintf("fake-access-token-%d", f.Requests)
	writeJSON(w, http.StatusOK, map[string]any{
		"access_token":  f.AccessToken,
		"refresh_token": f.RefreshToken,
		"expires_in":    3600,
		"token_type":    "Bearer",
	})
}

func (f *FakeLogbook) results(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	from, to := query.Get("from"), query.Get("to")

	page, err := strconv.Atoi(query.Get("page"))
	if err != nil || page < 1 {
		page = 1
	}

	selected := []map[string]any{}
	for _, result := range f.Results {
		date, _ := result["date"].(string)
		day := date
		if len(day) > 10 {
			day = day[:10]
		}
		if from != "" && strings.Compare(day, from) < 0 {
			continue
		}
		if to != "" && strings.Compare(day, to) > 0 {
			continue
		}
		selected = append(selected, result)
	}

	start := (page - 1) * logbook.PageSize
	end := start + logbook.PageSize
	if start > len(selected) {
		start = len(selected)
	}
	if end > len(selected) {
		end = len(selected)
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"data": selected[start:end],
		"meta": map[string]any{
			"pagination": map[string]any{
				"total":        len(selected),
				"per_page":     logbook.PageSize,
				"current_page": page,
			},
		},
	})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
