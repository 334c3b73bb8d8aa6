package model_test

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/matchmint/matchmint/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func sampleTicket() model.Ticket {
	return model.Ticket{
		ID: "match-42",
		HostTeam: model.Team{
			Name:    "Crimson FC",
			LogoURL: "https://cdn.example.com/crimson.png",
		},
		GuestTeam: model.Team{
			Name:    "Azure United",
			LogoURL: "https://cdn.example.com/azure.png",
		},
		Date:   1700000000,
		Status: model.TicketStatus{Finished: true, HomeScore: 3, AwayScore: 1},
	}
}

func TestTicketStatusJSON(t *testing.T) {
	Convey("Given the wire encodings of ticket status", t, func() {
		Convey("When the status is the string \"active\"", func() {
			var s model.TicketStatus
			So(json.Unmarshal([]byte(`"active"`), &s), ShouldBeNil)
			So(s.Finished, ShouldBeFalse)

			out, err := json.Marshal(s)
			So(err, ShouldBeNil)
			So(string(out), ShouldEqual, `"active"`)
		})

		Convey("When the status is the finished variant", func() {
			var s model.TicketStatus
			So(json.Unmarshal([]byte(`{"finished":{"_0":3,"_1":1}}`), &s), ShouldBeNil)
			So(s.Finished, ShouldBeTrue)
			So(s.HomeScore, ShouldEqual, 3)
			So(s.AwayScore, ShouldEqual, 1)

			out, err := json.Marshal(s)
			So(err, ShouldBeNil)
			So(string(out), ShouldEqual, `{"finished":{"_0":3,"_1":1}}`)
		})

		Convey("When the tag is unknown", func() {
			var s model.TicketStatus
			err := json.Unmarshal([]byte(`"cancelled"`), &s)
			So(errors.Is(err, model.ErrInvalidStatus), ShouldBeTrue)
		})

		Convey("When the object carries no known variant", func() {
			var s model.TicketStatus
			err := json.Unmarshal([]byte(`{"postponed":{}}`), &s)
			So(errors.Is(err, model.ErrInvalidStatus), ShouldBeTrue)
		})
	})
}

func TestTicketDecode(t *testing.T) {
	raw := `{
		"id": "match-42",
		"host_team": {"name": "Crimson FC", "logo_url": "https://cdn.example.com/crimson.png"},
		"guest_team": {"name": "Azure United", "logo_url": "https://cdn.example.com/azure.png"},
		"date": 1700000000,
		"status": {"finished": {"_0": 3, "_1": 1}}
	}`
	var got model.Ticket
	if err := json.Unmarshal([]byte(raw), &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got != sampleTicket() {
		t.Fatalf("decoded ticket mismatch: %+v", got)
	}
}

func TestScoreText(t *testing.T) {
	Convey("Given tickets in both states", t, func() {
		finished := sampleTicket()
		So(finished.ScoreText(), ShouldEqual, "3 - 1")

		active := sampleTicket()
		active.Status = model.TicketStatus{}
		So(active.ScoreText(), ShouldEqual, "0 - 0")
	})
}

func TestDateText(t *testing.T) {
	Convey("Given the kickoff timestamp", t, func() {
		Convey("A known epoch renders the UTC calendar string", func() {
			tk := sampleTicket()
			got, err := tk.DateText()
			So(err, ShouldBeNil)
			So(got, ShouldEqual, "2023-11-14 22:13")
		})

		Convey("An int64-overflowing value is rejected", func() {
			tk := sampleTicket()
			tk.Date = ^uint64(0)
			_, err := tk.DateText()
			So(errors.Is(err, model.ErrInvalidTimestamp), ShouldBeTrue)
		})

		Convey("A timestamp past year 9999 is rejected", func() {
			tk := sampleTicket()
			tk.Date = 300_000_000_000 // year ~11476
			_, err := tk.DateText()
			So(errors.Is(err, model.ErrInvalidTimestamp), ShouldBeTrue)
		})
	})
}

func TestTicketHash(t *testing.T) {
	Convey("Given ticket content hashing", t, func() {
		a := sampleTicket()
		b := sampleTicket()

		Convey("Identical content hashes identically", func() {
			So(a.Hash(), ShouldEqual, b.Hash())
		})

		Convey("Any field change moves the digest", func() {
			b.GuestTeam.Name = "Azure City"
			So(a.Hash(), ShouldNotEqual, b.Hash())

			c := sampleTicket()
			c.Status.AwayScore = 2
			So(a.Hash(), ShouldNotEqual, c.Hash())

			d := sampleTicket()
			d.Status = model.TicketStatus{}
			So(a.Hash(), ShouldNotEqual, d.Hash())
		})

		Convey("Field boundaries are not ambiguous", func() {
			x := sampleTicket()
			x.ID = "match-4"
			x.HostTeam.Name = "2Crimson FC"
			So(a.Hash(), ShouldNotEqual, x.Hash())
		})
	})
}
