package api_test

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/okian/gradematch/internal/adapters/http/api"
	service "github.com/okian/gradematch/internal/app"
	. "github.com/smartystreets/goconvey/convey"
)

const (
	responsesCSV = "Timestamp,Skor,Nama\n" +
		"2024-01-01,85,Budi Santoso\n" +
		"2024-01-01,70,Budi Santoso\n" +
		"2024-01-01,90,Zzz Unknown\n"
	rosterCSV = "Absen,Nama\n1,Budi Santoso\n2,Siti\n"
)

func multipartBody(files map[string][2]string) (*bytes.Buffer, string) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for field, f := range files {
		fw, err := mw.CreateFormFile(field, f[0])
		if err != nil {
			panic(err)
		}
		_, _ = fw.Write([]byte(f[1]))
	}
	_ = mw.Close()
	return &buf, mw.FormDataContentType()
}

func uploadRequest(target string, files map[string][2]string) *http.Request {
	body, ct := multipartBody(files)
	req := httptest.NewRequest(http.MethodPost, target, body)
	req.Header.Set("Content-Type", ct)
	return req
}

func bothFiles() map[string][2]string {
	return map[string][2]string{
		"responses": {"respons.csv", responsesCSV},
		"roster":    {"hasil.csv", rosterCSV},
	}
}

func TestServer_Routes(t *testing.T) {
	Convey("Given an API server backed by the service", t, func() {
		svc := service.New()
		h := api.NewServer(svc).Handler()

		Convey("When requesting the upload form", func() {
			w := httptest.NewRecorder()
			h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

			Convey("Then it should render both file inputs", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Header().Get("Content-Type"), ShouldStartWith, "text/html")
				So(w.Body.String(), ShouldContainSubstring, `name="responses"`)
				So(w.Body.String(), ShouldContainSubstring, `name="roster"`)
			})
		})

		Convey("When requesting metrics", func() {
			w := httptest.NewRecorder()
			h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
			So(w.Code, ShouldEqual, http.StatusOK)
		})

		Convey("When requesting stats", func() {
			w := httptest.NewRecorder()
			h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/stats", nil))

			Convey("Then it should return the service counters", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				var stats map[string]any
				So(json.Unmarshal(w.Body.Bytes(), &stats), ShouldBeNil)
				So(stats["runs"], ShouldEqual, float64(0))
				So(stats["passThreshold"], ShouldEqual, float64(80))
			})
		})

		Convey("When requesting the API description", func() {
			w := httptest.NewRecorder()
			h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/openapi.yaml", nil))
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, "X-Run-ID")
		})

		Convey("When requesting an unknown path", func() {
			w := httptest.NewRecorder()
			h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/leaderboard", nil))
			So(w.Code, ShouldEqual, http.StatusNotFound)
		})
	})
}

func TestMatchHandler(t *testing.T) {
	Convey("Given an API server", t, func() {
		svc := service.New()
		h := api.NewServer(svc).Handler()

		Convey("When posting both files for a CSV result", func() {
			w := httptest.NewRecorder()
			h.ServeHTTP(w, uploadRequest("/v1/match?format=csv", bothFiles()))

			Convey("Then the matched roster should come back as an attachment", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Header().Get("X-Run-ID"), ShouldNotBeEmpty)
				So(w.Header().Get("X-Unmatched-Count"), ShouldEqual, "1")
				So(w.Header().Get("Content-Disposition"), ShouldContainSubstring, "hasil_pencocokan.csv")

				lines := strings.Split(strings.TrimSpace(w.Body.String()), "\n")
				So(lines[0], ShouldEqual, "Absen,Nama,Score_1,Score_2,Score_3,Score_4,Score_5,Score_6,SCORE")
				So(lines[1], ShouldEqual, "1,Budi Santoso,85,70,,,,,85")
				So(lines[2], ShouldEqual, "2,Siti,,,,,,,")
			})

			Convey("Then the run should be counted in stats", func() {
				So(svc.GetStats()["runs"], ShouldEqual, int64(1))
			})
		})

		Convey("When posting both files for the default workbook", func() {
			w := httptest.NewRecorder()
			h.ServeHTTP(w, uploadRequest("/v1/match", bothFiles()))

			Convey("Then a readable workbook should be returned", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Header().Get("Content-Type"), ShouldContainSubstring, "spreadsheetml")

				wb, err := excelize.OpenReader(bytes.NewReader(w.Body.Bytes()))
				So(err, ShouldBeNil)
				defer wb.Close()
				v, err := wb.GetCellValue(wb.GetSheetName(0), "I2")
				So(err, ShouldBeNil)
				So(v, ShouldEqual, "85")
			})
		})

		Convey("When asking for a JSON report", func() {
			w := httptest.NewRecorder()
			h.ServeHTTP(w, uploadRequest("/v1/match?format=json", bothFiles()))

			Convey("Then the summary and rows should be included", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				var body struct {
					RunID string `json:"runId"`
					Match struct {
						ByName    int      `json:"byName"`
						Unmatched []string `json:"unmatched"`
					} `json:"match"`
					Rows []map[string]string `json:"rows"`
				}
				So(json.Unmarshal(w.Body.Bytes(), &body), ShouldBeNil)
				So(body.RunID, ShouldEqual, w.Header().Get("X-Run-ID"))
				So(body.Match.ByName, ShouldEqual, 2)
				So(body.Match.Unmatched, ShouldResemble, []string{"Zzz Unknown"})
				So(body.Rows, ShouldHaveLength, 2)
				So(body.Rows[0]["SCORE"], ShouldEqual, "85")
			})
		})

		Convey("When the roster file is missing", func() {
			w := httptest.NewRecorder()
			h.ServeHTTP(w, uploadRequest("/v1/match", map[string][2]string{
				"responses": {"respons.csv", responsesCSV},
			}))

			Convey("Then a 400 should name the missing field", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
				So(w.Body.String(), ShouldContainSubstring, "roster")
			})
		})

		Convey("When a file has an unsupported extension", func() {
			w := httptest.NewRecorder()
			h.ServeHTTP(w, uploadRequest("/v1/match", map[string][2]string{
				"responses": {"respons.ods", responsesCSV},
				"roster":    {"hasil.csv", rosterCSV},
			}))
			So(w.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When the responses cannot be resolved to columns", func() {
			w := httptest.NewRecorder()
			h.ServeHTTP(w, uploadRequest("/v1/match", map[string][2]string{
				"responses": {"respons.csv", "A\nx\n"},
				"roster":    {"hasil.csv", rosterCSV},
			}))

			Convey("Then the error should be reported as bad input", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
				So(w.Body.String(), ShouldContainSubstring, "bad_input")
			})
		})

		Convey("When the format is unknown", func() {
			w := httptest.NewRecorder()
			h.ServeHTTP(w, uploadRequest("/v1/match?format=pdf", bothFiles()))
			So(w.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When the body is not multipart", func() {
			w := httptest.NewRecorder()
			h.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/v1/match", strings.NewReader("{}")))
			So(w.Code, ShouldEqual, http.StatusBadRequest)
		})
	})
}
