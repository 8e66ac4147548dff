package export

import (
	"encoding/csv"
	"fmt"
	"os"

	"github.com/shouni/go-ad-exact/pkg/types"
)

// CSVWriter は、ワークブックと同じ列構成で CSV ファイルを保存します。
type CSVWriter struct{}

func NewCSVWriter() *CSVWriter {
	return &CSVWriter{}
}

func (w *CSVWriter) Extension() string {
	return FormatCSV
}

func (w *CSVWriter) Write(path string, listings []types.Listing) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("出力ファイルの作成に失敗しました (%s): %w", path, err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := writer.Write(Columns); err != nil {
		return fmt.Errorf("ヘッダー行の書き込みに失敗しました: %w", err)
	}
	for _, l := range listings {
		if err := writer.Write(rowStrings(l)); err != nil {
			return fmt.Errorf("CSVの書き込みに失敗しました: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("CSVの書き込みに失敗しました: %w", err)
	}
	return file.Close()
}
