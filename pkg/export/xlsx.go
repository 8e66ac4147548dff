package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/shouni/go-ad-exact/pkg/types"
)

// XLSXWriter は、広告レコードを1シートの Excel ワークブックとして保存します。
type XLSXWriter struct{}

func NewXLSXWriter() *XLSXWriter {
	return &XLSXWriter{}
}

func (w *XLSXWriter) Extension() string {
	return FormatXLSX
}

// Write は、ヘッダー行に続けて1レコード1行で書き出します。価格・閲覧数が不明なセルは空になります。
func (w *XLSXWriter) Write(path string, listings []types.Listing) (err error) {
	f := excelize.NewFile()
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("ワークブックのクローズに失敗しました: %w", cerr)
		}
	}()

	defaultSheet := f.GetSheetName(0)
	if err := f.SetSheetName(defaultSheet, SheetName); err != nil {
		return fmt.Errorf("シート名の設定に失敗しました: %w", err)
	}

	header := make([]interface{}, len(Columns))
	for i, c := range Columns {
		header[i] = c
	}
	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		return fmt.Errorf("ヘッダー行の書き込みに失敗しました: %w", err)
	}

	for i, l := range listings {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []interface{}{l.Category, l.Title, l.URL, nil, nil}
		if l.Price != nil {
			row[3] = *l.Price
		}
		if l.Views != nil {
			row[4] = *l.Views
		}
		if err := f.SetSheetRow(SheetName, cell, &row); err != nil {
			return fmt.Errorf("%d行目の書き込みに失敗しました: %w", i+2, err)
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("ワークブックの保存に失敗しました (%s): %w", path, err)
	}
	return nil
}
