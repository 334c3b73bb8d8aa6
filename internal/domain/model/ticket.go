// Package model contains domain models passed between layers.
package model

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"time"

	"github.com/matchmint/matchmint/pkg/naming"
)

// dateLayout is the calendar rendering used on the composed image and in the
// token description, always in UTC.
const dateLayout = "2006-01-02 15:04"

// maxYear bounds the kickoff timestamp; anything later is treated as garbage.
const maxYear = 9999

// Team identifies one side of a match. Immutable once attached to a Ticket.
type Team struct {
	Name    string `json:"name"`
	LogoURL string `json:"logo_url"`
}

// finishedScore mirrors the wire shape of a finished status:
// {"finished": {"_0": home, "_1": away}}.
type finishedScore struct {
	Home uint64 `json:"_0"`
	Away uint64 `json:"_1"`
}

// TicketStatus is a tagged variant: a match is either still active (no final
// score) or finished with a home/away score pair.
type TicketStatus struct {
	Finished  bool
	HomeScore uint64
	AwayScore uint64
}

// MarshalJSON renders the status as "active" or {"finished":{"_0":h,"_1":a}}.
func (s TicketStatus) MarshalJSON() ([]byte, error) {
	if !s.Finished {
		return json.Marshal("active")
	}
	return json.Marshal(map[string]finishedScore{
		"finished": {Home: s.HomeScore, Away: s.AwayScore},
	})
}

// UnmarshalJSON accepts both variant encodings.
func (s *TicketStatus) UnmarshalJSON(data []byte) error {
	var tag string
	if err := json.Unmarshal(data, &tag); err == nil {
		if tag != "active" {
			return fmt.Errorf("%w: unknown status %q", ErrInvalidStatus, tag)
		}
		*s = TicketStatus{}
		return nil
	}

	var obj struct {
		Finished *finishedScore `json:"finished"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidStatus, err)
	}
	if obj.Finished == nil {
		return fmt.Errorf("%w: missing variant tag", ErrInvalidStatus)
	}
	*s = TicketStatus{
		Finished:  true,
		HomeScore: obj.Finished.Home,
		AwayScore: obj.Finished.Away,
	}
	return nil
}

// Ticket describes one match. It is fully deserialized from the inbound
// request and treated as an immutable value for the duration of one
// render/publish cycle; nothing is persisted beyond the request lifetime.
type Ticket struct {
	ID        string       `json:"id"`
	HostTeam  Team         `json:"host_team"`
	GuestTeam Team         `json:"guest_team"`
	Date      uint64       `json:"date"`
	Status    TicketStatus `json:"status"`
}

// ScoreText returns the score overlay text: "0 - 0" while the match is
// active, "{home} - {away}" once finished.
func (t *Ticket) ScoreText() string {
	if t.Status.Finished {
		return fmt.Sprintf("%d - %d", t.Status.HomeScore, t.Status.AwayScore)
	}
	return "0 - 0"
}

// DateText formats the kickoff timestamp as "YYYY-MM-DD HH:MM" in UTC.
// Timestamps that overflow int64 seconds or land past year 9999 are rejected.
func (t *Ticket) DateText() (string, error) {
	sec := int64(t.Date)
	if sec < 0 {
		return "", fmt.Errorf("%w: %d overflows", ErrInvalidTimestamp, t.Date)
	}
	ts := time.Unix(sec, 0).UTC()
	if ts.Year() > maxYear {
		return "", fmt.Errorf("%w: %d is past year %d", ErrInvalidTimestamp, t.Date, maxYear)
	}
	return ts.Format(dateLayout), nil
}

// Hash returns the 64-bit digest of the ticket's full field content. Tickets
// with identical content always hash identically, so the composed image for a
// given ticket maps to a stable file name.
func (t *Ticket) Hash() uint64 {
	d := naming.New()

	// NUL separators keep adjacent fields from gluing into the same bytes.
	for _, field := range []string{
		t.ID,
		t.HostTeam.Name, t.HostTeam.LogoURL,
		t.GuestTeam.Name, t.GuestTeam.LogoURL,
	} {
		_, _ = d.WriteString(field)
		_, _ = d.Write([]byte{0})
	}

	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], t.Date)
	_, _ = d.Write(buf[:])

	if t.Status.Finished {
		_, _ = d.Write([]byte{1})
		binary.BigEndian.PutUint64(buf[:], t.Status.HomeScore)
		_, _ = d.Write(buf[:])
		binary.BigEndian.PutUint64(buf[:], t.Status.AwayScore)
		_, _ = d.Write(buf[:])
	} else {
		_, _ = d.Write([]byte{0})
	}

	return d.Sum64()
}
