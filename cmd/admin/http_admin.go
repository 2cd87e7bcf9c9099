package main

import (
	"flag"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"
)

// stateCmd and leaderboardCmd print the server's JSON response as-is.
func stateCmd(args []string) {
	fs := flag.NewFlagSet("state", flag.ExitOnError)
	baseURL := fs.String("url", "http://127.0.0.1:8080", "server base url")
	_ = fs.Parse(args)
	fetchOrExit(*baseURL, "/admin/v1/state", nil)
}

func leaderboardCmd(args []string) {
	fs := flag.NewFlagSet("leaderboard", flag.ExitOnError)
	baseURL := fs.String("url", "http://127.0.0.1:8080", "server base url")
	limit := fs.Int("limit", 10, "rows")
	_ = fs.Parse(args)
	fetchOrExit(*baseURL, "/v1/leaderboard", url.Values{"limit": {fmt.Sprint(*limit)}})
}

func fetchOrExit(baseURL, path string, q url.Values) {
	body, err := fetch(&http.Client{Timeout: 5 * time.Second}, baseURL, path, q)
	if len(body) > 0 {
		fmt.Println(strings.TrimRight(string(body), "\n"))
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "request:", err)
		os.Exit(1)
	}
}

func fetch(cl *http.Client, baseURL, path string, q url.Values) ([]byte, error) {
	u := strings.TrimRight(strings.TrimSpace(baseURL), "/") + path
	if len(q) > 0 {
		u += "?" + q.Encode()
	}
	resp, err := cl.Get(u)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	b, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, err
	}
	if resp.StatusCode/100 != 2 {
		return b, fmt.Errorf("%s: %s", u, resp.Status)
	}
	return b, nil
}
