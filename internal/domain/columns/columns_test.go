package columns_test

import (
	"context"
	"errors"
	"testing"

	"github.com/okian/gradematch/internal/domain/columns"
	"github.com/okian/gradematch/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestDetect(t *testing.T) {
	Convey("Given a header row", t, func() {
		cols := []string{"Timestamp", "  Total Score ", "Nama Lengkap", "No Absen"}

		Convey("Then keywords should match case-insensitive substrings", func() {
			col, ok := columns.Detect(cols, []string{"nama", "name"})
			So(ok, ShouldBeTrue)
			So(col, ShouldEqual, "Nama Lengkap")

			col, ok = columns.Detect(cols, []string{"score"})
			So(ok, ShouldBeTrue)
			So(col, ShouldEqual, "  Total Score ")
		})

		Convey("Then keyword order should win over column order", func() {
			col, ok := columns.Detect([]string{"No", "Absen"}, []string{"absen", "no"})
			So(ok, ShouldBeTrue)
			So(col, ShouldEqual, "Absen")
		})

		Convey("Then a miss should report false", func() {
			_, ok := columns.Detect(cols, []string{"kelas"})
			So(ok, ShouldBeFalse)
		})
	})
}

func TestKeywordResolver_Resolve(t *testing.T) {
	ctx := context.Background()

	Convey("Given a keyword resolver", t, func() {
		r := columns.NewKeywordResolver()

		Convey("When both tables have recognisable headers", func() {
			resp := model.Table{Name: "respons.xlsx", Columns: []string{"Timestamp", "Skor", "Nama Siswa", "NIS"}}
			roster := model.Table{Name: "hasil.xlsx", Columns: []string{"Absen", "Nama", "Score_1", "Score_3"}}

			s, err := r.Resolve(ctx, resp, roster)

			Convey("Then every column should be detected by keyword", func() {
				So(err, ShouldBeNil)
				So(s.ResponseName, ShouldEqual, "Nama Siswa")
				So(s.ResponseScore, ShouldEqual, "Skor")
				So(s.ResponseTime, ShouldEqual, "Timestamp")
				So(s.ResponseIdentifier, ShouldEqual, "NIS")
				So(s.RosterName, ShouldEqual, "Nama")
				So(s.RosterIdentifier, ShouldEqual, "Absen")
				So(s.RosterSlots[0], ShouldEqual, "Score_1")
				So(s.RosterSlots[1], ShouldEqual, "")
				So(s.RosterSlots[2], ShouldEqual, "Score_3")
			})
		})

		Convey("When no keyword matches", func() {
			resp := model.Table{Columns: []string{"A", "B", "C"}}
			roster := model.Table{Columns: []string{"X", "Y"}}

			s, err := r.Resolve(ctx, resp, roster)

			Convey("Then positional fallbacks should apply", func() {
				So(err, ShouldBeNil)
				So(s.ResponseName, ShouldEqual, "C")
				So(s.ResponseScore, ShouldEqual, "B")
				So(s.ResponseTime, ShouldEqual, "A")
				So(s.ResponseIdentifier, ShouldEqual, "")
				So(s.RosterName, ShouldEqual, "Y")
				So(s.RosterIdentifier, ShouldEqual, "X")
			})
		})

		Convey("When the response table is too narrow for the fallback", func() {
			resp := model.Table{Name: "r.csv", Columns: []string{"A", "B"}}
			roster := model.Table{Columns: []string{"Absen", "Nama"}}

			_, err := r.Resolve(ctx, resp, roster)

			Convey("Then ErrColumnNotFound should be returned", func() {
				So(errors.Is(err, columns.ErrColumnNotFound), ShouldBeTrue)
				So(err.Error(), ShouldContainSubstring, "r.csv")
			})
		})

		Convey("When custom keywords are configured", func() {
			r := columns.NewKeywordResolver(columns.WithKeywords(columns.Keywords{Name: []string{"siswa"}}))
			resp := model.Table{Columns: []string{"Waktu", "Nilai", "Siswa", "Name"}}
			roster := model.Table{Columns: []string{"Id", "Siswa"}}

			s, err := r.Resolve(ctx, resp, roster)

			Convey("Then they should replace only the given list", func() {
				So(err, ShouldBeNil)
				So(s.ResponseName, ShouldEqual, "Siswa")
				So(s.ResponseScore, ShouldEqual, "Nilai")
				So(s.RosterIdentifier, ShouldEqual, "Id")
			})
		})
	})
}

func TestBuildRecords(t *testing.T) {
	Convey("Given a resolved schema", t, func() {
		s := columns.Schema{
			ResponseName:       "Nama",
			ResponseScore:      "Skor",
			ResponseIdentifier: "NIS",
			RosterName:         "Nama",
			RosterIdentifier:   "Absen",
		}
		s.RosterSlots[0] = "Score_1"
		s.RosterSlots[1] = "Score_2"

		Convey("When response rows are built", func() {
			tbl := model.Table{Name: "respons", Rows: []model.Row{
				{"Nama": "Budi Santoso", "Skor": "85", "NIS": " 12 "},
				{"Nama": "Siti", "Skor": "  ", "NIS": ""},
			}}

			recs, err := columns.BuildResponses(s, tbl)

			Convey("Then records should keep raw values and nil blank scores", func() {
				So(err, ShouldBeNil)
				So(recs, ShouldHaveLength, 2)
				So(recs[0].Name, ShouldEqual, "Budi Santoso")
				So(recs[0].RawScore, ShouldEqual, "85")
				So(recs[0].Identifier, ShouldEqual, " 12 ")
				So(recs[1].Index, ShouldEqual, 1)
				So(recs[1].RawScore, ShouldBeNil)
			})
		})

		Convey("When a response row lacks a resolved column", func() {
			tbl := model.Table{Name: "respons", Rows: []model.Row{
				{"Nama": "Budi", "Skor": "85", "NIS": "1"},
				{"Nama": "Siti", "NIS": "2"},
			}}

			_, err := columns.BuildResponses(s, tbl)

			Convey("Then ErrMalformedRow should name the table and row", func() {
				So(errors.Is(err, columns.ErrMalformedRow), ShouldBeTrue)
				So(err.Error(), ShouldContainSubstring, "respons row 2")
			})
		})

		Convey("When roster rows carry previous scores", func() {
			tbl := model.Table{Name: "hasil", Rows: []model.Row{
				{"Absen": "1", "Nama": "Budi", "Score_1": "", "Score_2": "90"},
				{"Absen": "2", "Nama": "Siti", "Score_1": "x", "Score_2": ""},
			}}

			roster, err := columns.BuildRoster(s, tbl)

			Convey("Then non-blank cells should pre-fill slots", func() {
				So(err, ShouldBeNil)
				So(roster.Len(), ShouldEqual, 2)

				budi := roster.Record(0)
				So(budi.Slots[0].Filled, ShouldBeFalse)
				So(budi.Slots[1].Score, ShouldResemble, model.ScoreOf(90))
				So(budi.Row["Absen"], ShouldEqual, "1")

				siti := roster.Record(1)
				So(siti.Slots[0].Filled, ShouldBeTrue)
				So(siti.Slots[0].Score.Valid, ShouldBeFalse)
				So(roster.NormalizedName(1), ShouldEqual, "siti")
			})

			Convey("Then the next match should take the lowest empty slot", func() {
				n, ok := roster.Record(0).Assign(model.ScoreOf(70))
				So(ok, ShouldBeTrue)
				So(n, ShouldEqual, 1)
			})
		})

		Convey("When a roster row lacks the identifier column", func() {
			tbl := model.Table{Name: "hasil", Rows: []model.Row{{"Nama": "Budi"}}}
			_, err := columns.BuildRoster(s, tbl)
			So(errors.Is(err, columns.ErrMalformedRow), ShouldBeTrue)
		})
	})
}
