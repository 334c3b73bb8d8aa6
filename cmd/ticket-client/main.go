// Command ticket-client posts a match ticket to a running service and prints
// the response envelope. It is a smoke-test tool, not part of the service.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/matchmint/matchmint/internal/domain/model"
)

const defaultTimeout = 2 * time.Minute

func main() {
	var (
		baseURL   = flag.String("url", "http://localhost:9080", "Base URL of the service")
		id        = flag.String("id", "match-1", "Ticket id")
		hostName  = flag.String("host", "Lions", "Host team name")
		hostLogo  = flag.String("host-logo", "", "Host team logo URL (required)")
		guestName = flag.String("guest", "Bears", "Guest team name")
		guestLogo = flag.String("guest-logo", "", "Guest team logo URL (required)")
		date      = flag.Uint64("date", uint64(time.Now().Unix()), "Match start as a Unix timestamp")
		active    = flag.Bool("active", false, "Submit an active (unfinished) match")
		homeScore = flag.Uint64("home-score", 0, "Home score for a finished match")
		awayScore = flag.Uint64("away-score", 0, "Away score for a finished match")
		timeout   = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
	)
	flag.Parse()

	if *hostLogo == "" || *guestLogo == "" {
		os.Stderr.WriteString("both -host-logo and -guest-logo are required\n")
		flag.Usage()
		os.Exit(2)
	}

	t := model.Ticket{
		ID:        *id,
		HostTeam:  model.Team{Name: *hostName, LogoURL: *hostLogo},
		GuestTeam: model.Team{Name: *guestName, LogoURL: *guestLogo},
		Date:      *date,
	}
	if !*active {
		t.Status = model.TicketStatus{Finished: true, HomeScore: *homeScore, AwayScore: *awayScore}
	}

	body, err := json.Marshal(t)
	if err != nil {
		os.Stderr.WriteString("failed to encode ticket: " + err.Error() + "\n")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, *baseURL+"/upload_match", bytes.NewReader(body))
	if err != nil {
		os.Stderr.WriteString("failed to build request: " + err.Error() + "\n")
		os.Exit(1)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		os.Stderr.WriteString("request failed: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		os.Stderr.WriteString("failed to read response: " + err.Error() + "\n")
		os.Exit(1)
	}

	fmt.Printf("%d %s\n%s\n", resp.StatusCode, http.StatusText(resp.StatusCode), bytes.TrimSpace(raw))
	if resp.StatusCode != http.StatusOK {
		os.Exit(1)
	}
}
