package table

import (
	"bufio"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/gofrs/flock"
	"github.com/xuri/excelize/v2"

	"github.com/okian/gradematch/internal/domain/columns"
	"github.com/okian/gradematch/internal/domain/model"
	"github.com/okian/gradematch/pkg/logger"
)

// Cell fill colours.
const (
	passFill = "C6EFCE"
	failFill = "FFC7CE"
)

// OutputColumns returns the roster columns followed by whichever of
// Score_1..Score_6 and SCORE the roster lacks.
func OutputColumns(roster model.Table) []string {
	out := append([]string(nil), roster.Columns...)
	for n := 1; n <= model.SlotCount; n++ {
		if col := columns.SlotColumn(n); !roster.HasColumn(col) {
			out = append(out, col)
		}
	}
	if !roster.HasColumn(columns.FinalColumn) {
		out = append(out, columns.FinalColumn)
	}
	return out
}

// Writer serializes a matched roster.
type Writer struct {
	passThreshold float64
	logger        logger.Logger
}

// NewWriter creates a Writer colouring slots against a threshold of 80.
func NewWriter(opts ...Option) *Writer {
	w := &Writer{
		passThreshold: 80,
		logger:        logger.Nop(),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// WriteFile writes the roster to path in the format implied by its
// extension. An advisory lock on path+".lock" keeps concurrent runs from
// writing the same output.
func (w *Writer) WriteFile(ctx context.Context, path string, cols []string, roster *model.Roster) (err error) {
	format, err := FormatOf(path)
	if err != nil {
		return err
	}

	lock := flock.New(path + ".lock")
	ok, err := lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return fmt.Errorf("%w: %s", ErrOutputLocked, path)
	}
	defer func() {
		if uerr := lock.Unlock(); uerr != nil {
			w.logger.Warn(ctx, "failed to release output lock", logger.String("path", path), logger.Error(uerr))
		}
		_ = os.Remove(lock.Path())
	}()

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer func() {
		err = errors.Join(err, f.Close())
	}()

	bw := bufio.NewWriter(f)
	if err := w.Encode(bw, format, cols, roster); err != nil {
		return err
	}
	return bw.Flush()
}

// Encode writes the roster in the given format.
func (w *Writer) Encode(out io.Writer, format Format, cols []string, roster *model.Roster) error {
	switch format {
	case FormatXLSX:
		return w.encodeXLSX(out, cols, roster)
	case FormatCSV:
		return encodeCSV(out, cols, roster)
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}

func encodeCSV(out io.Writer, cols []string, roster *model.Roster) error {
	cw := csv.NewWriter(out)
	if err := cw.Write(cols); err != nil {
		return err
	}
	for _, rec := range roster.Records() {
		if err := cw.Write(RowValues(cols, rec)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func (w *Writer) encodeXLSX(out io.Writer, cols []string, roster *model.Roster) error {
	wb := excelize.NewFile()
	defer wb.Close()

	sheet := wb.GetSheetName(0)
	pass, err := wb.NewStyle(&excelize.Style{Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{passFill}}})
	if err != nil {
		return fmt.Errorf("create style: %w", err)
	}
	fail, err := wb.NewStyle(&excelize.Style{Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{failFill}}})
	if err != nil {
		return fmt.Errorf("create style: %w", err)
	}

	header := make([]any, len(cols))
	for i, c := range cols {
		header[i] = c
	}
	if err := wb.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}

	for r, rec := range roster.Records() {
		for c, col := range cols {
			ref, err := excelize.CoordinatesToCellName(c+1, r+2)
			if err != nil {
				return err
			}

			score, scored := scoreCell(rec, col)
			switch {
			case scored && score.Valid:
				if err := wb.SetCellFloat(sheet, ref, score.Value, -1, 64); err != nil {
					return err
				}
			case scored:
				continue
			default:
				if err := wb.SetCellValue(sheet, ref, cellValue(rec.Row[col])); err != nil {
					return err
				}
				continue
			}

			style := fail
			if col == columns.FinalColumn || score.AtLeast(w.passThreshold) {
				style = pass
			}
			if err := wb.SetCellStyle(sheet, ref, ref, style); err != nil {
				return err
			}
		}
	}

	if err := wb.Write(out); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

// scoreCell returns the slot or final score behind col, if col is one.
func scoreCell(rec *model.RosterRecord, col string) (model.Score, bool) {
	if col == columns.FinalColumn {
		return rec.Final, true
	}
	for n := 1; n <= model.SlotCount; n++ {
		if col == columns.SlotColumn(n) {
			return rec.Slots[n-1].Score, true
		}
	}
	return model.Score{}, false
}

// RowValues renders rec as text in cols order. Slot and SCORE columns come
// from the record, everything else from the original roster row.
func RowValues(cols []string, rec *model.RosterRecord) []string {
	out := make([]string, len(cols))
	for i, col := range cols {
		if s, ok := scoreCell(rec, col); ok {
			out[i] = s.String()
		} else {
			out[i] = rec.Row[col]
		}
	}
	return out
}

// cellValue writes canonical numbers as numbers and everything else,
// including zero-padded identifiers, as text.
func cellValue(s string) any {
	if v, err := strconv.ParseFloat(s, 64); err == nil && strconv.FormatFloat(v, 'f', -1, 64) == s {
		return v
	}
	return s
}
