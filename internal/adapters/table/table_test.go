package table_test

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gofrs/flock"
	"github.com/xuri/excelize/v2"

	"github.com/okian/gradematch/internal/adapters/table"
	"github.com/okian/gradematch/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func sampleRoster() (model.Table, *model.Roster) {
	src := model.Table{
		Name:    "hasil",
		Columns: []string{"Absen", "Nama", "Score_1"},
		Rows: []model.Row{
			{"Absen": "007", "Nama": "Budi Santoso", "Score_1": ""},
			{"Absen": "8", "Nama": "Siti", "Score_1": ""},
		},
	}
	budi := &model.RosterRecord{Index: 0, Name: "Budi Santoso", Row: src.Rows[0]}
	budi.Assign(model.ScoreOf(85))
	budi.Assign(model.ScoreOf(70))
	budi.Final = model.ScoreOf(85)
	siti := &model.RosterRecord{Index: 1, Name: "Siti", Row: src.Rows[1]}
	return src, model.NewRoster([]*model.RosterRecord{budi, siti})
}

func TestFormatOf(t *testing.T) {
	Convey("Given file names", t, func() {
		f, err := table.FormatOf("a/B.XLSX")
		So(err, ShouldBeNil)
		So(f, ShouldEqual, table.FormatXLSX)

		f, err = table.FormatOf("hasil.xlsm")
		So(err, ShouldBeNil)
		So(f, ShouldEqual, table.FormatXLSX)

		f, err = table.FormatOf("respons.csv")
		So(err, ShouldBeNil)
		So(f, ShouldEqual, table.FormatCSV)

		_, err = table.FormatOf("respons.ods")
		So(errors.Is(err, table.ErrUnsupportedFormat), ShouldBeTrue)
	})
}

func TestDecodeCSV(t *testing.T) {
	Convey("Given a CSV export with a BOM and untidy rows", t, func() {
		data := "\uFEFFTimestamp,Skor,Nama,,Nama\n" +
			"2024-01-01,85,Budi Santoso,x,dup\n" +
			",,,,\n" +
			"2024-01-02,70\n"

		tbl, err := table.Decode(strings.NewReader(data), "respons.csv", table.FormatCSV)

		Convey("Then the header should be cleaned and blank rows skipped", func() {
			So(err, ShouldBeNil)
			So(tbl.Name, ShouldEqual, "respons.csv")
			So(tbl.Columns, ShouldResemble, []string{"Timestamp", "Skor", "Nama", "Unnamed: 3", "Nama.1"})
			So(tbl.Rows, ShouldHaveLength, 2)
			So(tbl.Rows[0]["Nama"], ShouldEqual, "Budi Santoso")
			So(tbl.Rows[0]["Nama.1"], ShouldEqual, "dup")
		})

		Convey("Then short rows should be padded with blank cells", func() {
			v, ok := tbl.Rows[1]["Nama"]
			So(ok, ShouldBeTrue)
			So(v, ShouldEqual, "")
		})
	})

	Convey("Given an empty CSV", t, func() {
		_, err := table.Decode(strings.NewReader(""), "empty.csv", table.FormatCSV)
		So(errors.Is(err, table.ErrNoHeader), ShouldBeTrue)
	})
}

func TestOutputColumns(t *testing.T) {
	Convey("Given a roster that already has Score_1", t, func() {
		src, _ := sampleRoster()
		cols := table.OutputColumns(src)

		So(cols, ShouldResemble, []string{
			"Absen", "Nama", "Score_1",
			"Score_2", "Score_3", "Score_4", "Score_5", "Score_6", "SCORE",
		})
		So(src.Columns, ShouldHaveLength, 3)
	})
}

func TestWriterCSV(t *testing.T) {
	Convey("Given a matched roster", t, func() {
		src, roster := sampleRoster()
		var buf bytes.Buffer

		err := table.NewWriter().Encode(&buf, table.FormatCSV, table.OutputColumns(src), roster)

		Convey("Then slots and SCORE should be rendered as plain numbers", func() {
			So(err, ShouldBeNil)
			lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
			So(lines, ShouldHaveLength, 3)
			So(lines[0], ShouldEqual, "Absen,Nama,Score_1,Score_2,Score_3,Score_4,Score_5,Score_6,SCORE")
			So(lines[1], ShouldEqual, "007,Budi Santoso,85,70,,,,,85")
			So(lines[2], ShouldEqual, "8,Siti,,,,,,,")
		})
	})
}

func TestWriterXLSX(t *testing.T) {
	Convey("Given a matched roster written as a workbook", t, func() {
		src, roster := sampleRoster()
		path := filepath.Join(t.TempDir(), "hasil_pencocokan.xlsx")

		err := table.NewWriter().WriteFile(context.Background(), path, table.OutputColumns(src), roster)
		So(err, ShouldBeNil)

		Convey("Then it should read back with the same cells", func() {
			tbl, err := table.ReadFile(path)
			So(err, ShouldBeNil)
			So(tbl.Rows, ShouldHaveLength, 2)
			So(tbl.Rows[0]["Absen"], ShouldEqual, "007")
			So(tbl.Rows[0]["Score_1"], ShouldEqual, "85")
			So(tbl.Rows[0]["Score_2"], ShouldEqual, "70")
			So(tbl.Rows[0]["SCORE"], ShouldEqual, "85")
			So(tbl.Rows[1]["Nama"], ShouldEqual, "Siti")
			So(tbl.Rows[1]["SCORE"], ShouldEqual, "")
		})

		Convey("Then passing and failing slots should carry different fills", func() {
			wb, err := excelize.OpenFile(path)
			So(err, ShouldBeNil)
			defer wb.Close()
			sheet := wb.GetSheetName(0)

			passing, err := wb.GetCellStyle(sheet, "C2")
			So(err, ShouldBeNil)
			failing, err := wb.GetCellStyle(sheet, "D2")
			So(err, ShouldBeNil)
			final, err := wb.GetCellStyle(sheet, "I2")
			So(err, ShouldBeNil)
			plain, err := wb.GetCellStyle(sheet, "B2")
			So(err, ShouldBeNil)

			So(passing, ShouldNotEqual, failing)
			So(final, ShouldEqual, passing)
			So(plain, ShouldEqual, 0)
		})

		Convey("Then the lock file should be gone", func() {
			_, err := os.Stat(path + ".lock")
			So(os.IsNotExist(err), ShouldBeTrue)
		})
	})

	Convey("Given an output held by another run", t, func() {
		_, roster := sampleRoster()
		path := filepath.Join(t.TempDir(), "out.csv")
		held := flock.New(path + ".lock")
		ok, err := held.TryLock()
		So(err, ShouldBeNil)
		So(ok, ShouldBeTrue)
		defer held.Unlock()

		err = table.NewWriter().WriteFile(context.Background(), path, []string{"Nama"}, roster)

		Convey("Then the write should fail with ErrOutputLocked", func() {
			So(errors.Is(err, table.ErrOutputLocked), ShouldBeTrue)
			_, statErr := os.Stat(path)
			So(os.IsNotExist(statErr), ShouldBeTrue)
		})
	})
}
