package api_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/matchmint/matchmint/internal/adapters/fetch"
	"github.com/matchmint/matchmint/internal/adapters/http/api"
	service "github.com/matchmint/matchmint/internal/app"
	"github.com/matchmint/matchmint/internal/domain/model"
	"github.com/matchmint/matchmint/pkg/logger"
)

func init() {
	_ = logger.Init()
}

// Mock implementations for testing

type mockMinter struct {
	uri     string
	err     error
	tickets []model.Ticket
}

func (m *mockMinter) Submit(_ context.Context, t model.Ticket) (string, error) {
	m.tickets = append(m.tickets, t)
	if m.err != nil {
		return "", m.err
	}
	return m.uri, nil
}

type mockStats struct{}

func (mockStats) GetStats() map[string]interface{} {
	return map[string]interface{}{"started": true}
}

func newTestMux(deps api.Dependencies) *http.ServeMux {
	mux := http.NewServeMux()
	api.NewServer(deps, mockStats{}).Register(context.Background(), mux)
	return mux
}

func ticketBody(id string) string {
	return fmt.Sprintf(`{
		"id": %q,
		"host_team": {"name": "Lions", "logo_url": "http://logos/lions.png"},
		"guest_team": {"name": "Bears", "logo_url": "http://logos/bears.png"},
		"date": 1700000000,
		"status": {"finished": {"_0": 3, "_1": 1}}
	}`, id)
}

func TestUploadMatch(t *testing.T) {
	Convey("Given an upload_match endpoint", t, func() {
		Convey("When a valid ticket is posted", func() {
			m := &mockMinter{uri: "https://ipfs.io/ipfs/QmToken"}
			mux := newTestMux(m)

			req := httptest.NewRequest(http.MethodPost, "/upload_match", strings.NewReader(ticketBody("t1")))
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, req)

			Convey("Then it should return the token uri envelope", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)

				var out struct {
					Response struct {
						TokenURI string `json:"token_uri"`
					} `json:"response"`
				}
				So(json.Unmarshal(rec.Body.Bytes(), &out), ShouldBeNil)
				So(out.Response.TokenURI, ShouldEqual, "https://ipfs.io/ipfs/QmToken")
				So(len(m.tickets), ShouldEqual, 1)
				So(m.tickets[0].HostTeam.Name, ShouldEqual, "Lions")
				So(m.tickets[0].Status.HomeScore, ShouldEqual, 3)
				So(rec.Header().Get("X-Request-Id"), ShouldNotBeEmpty)
			})
		})

		Convey("When the body is not valid JSON", func() {
			m := &mockMinter{uri: "unused"}
			mux := newTestMux(m)

			req := httptest.NewRequest(http.MethodPost, "/upload_match", strings.NewReader("{not json"))
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, req)

			Convey("Then it should return 400 with an error envelope", func() {
				So(rec.Code, ShouldEqual, http.StatusBadRequest)
				So(rec.Body.String(), ShouldContainSubstring, `"error"`)
				So(rec.Body.String(), ShouldContainSubstring, `"msg"`)
				So(len(m.tickets), ShouldEqual, 0)
			})
		})

		Convey("When a team field is missing", func() {
			m := &mockMinter{uri: "unused"}
			mux := newTestMux(m)

			body := `{"id":"t1","host_team":{"name":"","logo_url":"http://x"},"guest_team":{"name":"B","logo_url":"http://y"},"date":1,"status":"active"}`
			req := httptest.NewRequest(http.MethodPost, "/upload_match", strings.NewReader(body))
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, req)

			Convey("Then it should reject the ticket before submitting", func() {
				So(rec.Code, ShouldEqual, http.StatusBadRequest)
				So(rec.Body.String(), ShouldContainSubstring, "host team name")
				So(len(m.tickets), ShouldEqual, 0)
			})
		})

		Convey("When the pipeline fails", func() {
			m := &mockMinter{err: fmt.Errorf("download: %w", fetch.ErrFetch)}
			mux := newTestMux(m)

			req := httptest.NewRequest(http.MethodPost, "/upload_match", strings.NewReader(ticketBody("t2")))
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, req)

			Convey("Then it should return a sanitized error envelope", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)

				var out struct {
					Error struct {
						Msg string `json:"msg"`
					} `json:"error"`
				}
				So(json.Unmarshal(rec.Body.Bytes(), &out), ShouldBeNil)
				So(out.Error.Msg, ShouldEqual, "failed to fetch team logo")
			})
		})

		Convey("When the queue pushes back", func() {
			m := &mockMinter{err: service.ErrBackpressure}
			mux := newTestMux(m)

			req := httptest.NewRequest(http.MethodPost, "/upload_match", strings.NewReader(ticketBody("t3")))
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, req)

			Convey("Then it should return 429", func() {
				So(rec.Code, ShouldEqual, http.StatusTooManyRequests)
				So(rec.Body.String(), ShouldContainSubstring, "busy")
			})
		})

		Convey("When the method is not POST", func() {
			mux := newTestMux(&mockMinter{})

			req := httptest.NewRequest(http.MethodGet, "/upload_match", nil)
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, req)

			Convey("Then it should return 404", func() {
				So(rec.Code, ShouldEqual, http.StatusNotFound)
			})
		})
	})
}

func TestStatsEndpoint(t *testing.T) {
	Convey("Given a stats endpoint", t, func() {
		mux := newTestMux(&mockMinter{})

		req := httptest.NewRequest(http.MethodGet, "/stats", nil)
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, req)

		Convey("Then it should return the stats document", func() {
			So(rec.Code, ShouldEqual, http.StatusOK)
			So(rec.Body.String(), ShouldContainSubstring, `"started":true`)
		})
	})
}

func TestHealthEndpoint(t *testing.T) {
	Convey("Given a healthz endpoint", t, func() {
		mux := newTestMux(&mockMinter{})

		req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, req)

		Convey("Then it should serve process metrics", func() {
			So(rec.Code, ShouldEqual, http.StatusOK)
		})
	})
}
