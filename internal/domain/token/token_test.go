package token_test

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matchmint/matchmint/internal/domain/model"
	"github.com/matchmint/matchmint/internal/domain/token"
	. "github.com/smartystreets/goconvey/convey"
)

func finishedTicket() model.Ticket {
	return model.Ticket{
		ID:        "match-42",
		HostTeam:  model.Team{Name: "Crimson FC", LogoURL: "https://cdn.example.com/crimson.png"},
		GuestTeam: model.Team{Name: "Azure United", LogoURL: "https://cdn.example.com/azure.png"},
		Date:      1700000000,
		Status:    model.TicketStatus{Finished: true, HomeScore: 3, AwayScore: 1},
	}
}

func TestBuildDocument(t *testing.T) {
	Convey("Given a finished ticket and a published image URI", t, func() {
		tk := finishedTicket()
		doc, err := token.Build(&tk, "https://ipfs.io/ipfs/QmImage")
		So(err, ShouldBeNil)

		Convey("The fixed fields are populated from the ticket", func() {
			So(doc.Image, ShouldEqual, "https://ipfs.io/ipfs/QmImage")
			So(doc.Name, ShouldEqual, "Crimson FC vs Azure United ticket")
			So(doc.Description, ShouldEqual,
				"The match between Crimson FC and Azure United took place on 2023-11-14 22:13. The final score was 3 - 1")
		})

		Convey("The unused fields keep their fixed shape", func() {
			raw, err := json.Marshal(doc)
			So(err, ShouldBeNil)
			So(string(raw), ShouldContainSubstring, `"external_link":null`)
			So(string(raw), ShouldContainSubstring, `"animation_url":null`)
			So(string(raw), ShouldContainSubstring, `"traits":[]`)
		})

		Convey("An active ticket renders the zero score", func() {
			active := finishedTicket()
			active.Status = model.TicketStatus{}
			doc, err := token.Build(&active, "https://ipfs.io/ipfs/QmImage")
			So(err, ShouldBeNil)
			So(doc.Description, ShouldEndWith, "The final score was 0 - 0")
		})

		Convey("A broken timestamp surfaces as InvalidTimestamp", func() {
			bad := finishedTicket()
			bad.Date = ^uint64(0)
			_, err := token.Build(&bad, "https://ipfs.io/ipfs/QmImage")
			So(errors.Is(err, model.ErrInvalidTimestamp), ShouldBeTrue)
		})
	})
}

func TestWriteHashNamedDocument(t *testing.T) {
	dir := t.TempDir()
	b := token.New(token.WithWorkDir(dir))

	tk := finishedTicket()
	path, err := b.Write(&tk, "https://ipfs.io/ipfs/QmImage")
	if err != nil {
		t.Fatalf("write token: %v", err)
	}
	if filepath.Dir(path) != dir {
		t.Fatalf("token written outside work dir: %s", path)
	}
	if !strings.HasSuffix(path, ".json") {
		t.Fatalf("unexpected extension on %s", path)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read token: %v", err)
	}
	var doc token.Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		t.Fatalf("token file is not valid JSON: %v", err)
	}
	if doc.Image != "https://ipfs.io/ipfs/QmImage" {
		t.Fatalf("image field lost: %q", doc.Image)
	}
}

func TestWriteDeterministic(t *testing.T) {
	dir := t.TempDir()
	b := token.New(token.WithWorkDir(dir))

	tk := finishedTicket()
	first, err := b.Write(&tk, "https://ipfs.io/ipfs/QmImage")
	if err != nil {
		t.Fatalf("first write: %v", err)
	}
	firstBytes, _ := os.ReadFile(first)

	again := finishedTicket()
	second, err := b.Write(&again, "https://ipfs.io/ipfs/QmImage")
	if err != nil {
		t.Fatalf("second write: %v", err)
	}
	if first != second {
		t.Fatalf("identical content mapped to different names: %s vs %s", first, second)
	}
	secondBytes, _ := os.ReadFile(second)
	if string(firstBytes) != string(secondBytes) {
		t.Fatal("token bytes differ for identical ticket content")
	}
}
