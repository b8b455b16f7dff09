package excel

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/example/khatm/internal/database"
	"github.com/example/khatm/internal/quran"
	"github.com/example/khatm/pkg/models"
)

// ImportConfig defines the surah catalogue import configuration
type ImportConfig struct {
	FilePath             string // Path to the Excel or CSV file
	NumberColumn         string // Column with the surah number
	NameArabicColumn     string // Column with the Arabic name
	NameEnglishColumn    string // Column with the English name
	TransliterationColumn string // Column with the transliterated name
	VerseCountColumn     string // Column with the verse count
	RevelationColumn     string // Column with the revelation type
	SheetName            string // Name of the sheet to import
	StartRow             int    // The row to start importing from (1-based index)
}

// DefaultImportConfig returns the default import configuration
func DefaultImportConfig() ImportConfig {
	return ImportConfig{
		NumberColumn:          "A",
		NameArabicColumn:      "B",
		NameEnglishColumn:     "C",
		TransliterationColumn: "D",
		VerseCountColumn:      "E",
		RevelationColumn:      "F",
		SheetName:             "Sheet1",
		StartRow:              2, // By default, start from the second row (skip header)
	}
}

// ImportResult holds the result of an import operation
type ImportResult struct {
	TotalProcessed int
	Created        int
	Updated        int
	Errors         []string
}

// ImportSurahs imports the surah catalogue from an Excel or CSV file.
// Verse counts are checked against the canonical index so a broken
// catalogue cannot silently corrupt session planning.
func ImportSurahs(ctx context.Context, repo *database.SurahRepository, config ImportConfig) (*ImportResult, error) {
	ext := strings.ToLower(filepath.Ext(config.FilePath))

	if ext == ".csv" {
		return importFromCSV(ctx, repo, config)
	}

	return importFromExcel(ctx, repo, config)
}

// importFromExcel imports surahs from an Excel file
func importFromExcel(ctx context.Context, repo *database.SurahRepository, config ImportConfig) (*ImportResult, error) {
	f, err := excelize.OpenFile(config.FilePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows(config.SheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to get rows: %v", err)
	}

	result := &ImportResult{
		Errors: make([]string, 0),
	}
	index := quran.Canonical()

	for i, row := range rows {
		// Skip header rows
		if i < config.StartRow-1 {
			continue
		}

		result.TotalProcessed++

		if err := processRow(ctx, row, config, repo, index, result); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: %v", i+1, err))
		}
	}

	return result, nil
}

// importFromCSV imports surahs from a CSV file. Columns follow the same
// order as the default Excel configuration: number, Arabic name, English
// name, transliteration, verse count, revelation type.
func importFromCSV(ctx context.Context, repo *database.SurahRepository, config ImportConfig) (*ImportResult, error) {
	file, err := os.Open(config.FilePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %v", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1 // Allow variable number of fields

	result := &ImportResult{
		Errors: make([]string, 0),
	}
	index := quran.Canonical()

	rowNum := 0
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("error reading CSV: %v", err)
		}

		rowNum++
		if rowNum < config.StartRow {
			continue
		}

		result.TotalProcessed++

		if err := processRow(ctx, row, config, repo, index, result); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: %v", rowNum, err))
		}
	}

	return result, nil
}

// processRow parses one catalogue row and upserts it
func processRow(ctx context.Context, row []string, config ImportConfig,
	repo *database.SurahRepository, index *quran.Index, result *ImportResult) error {
	surah, err := parseRow(row, config, index)
	if err != nil {
		return err
	}

	created, err := repo.Upsert(ctx, surah)
	if err != nil {
		return fmt.Errorf("failed to save surah %d: %v", surah.Number, err)
	}
	if created {
		result.Created++
	} else {
		result.Updated++
	}
	return nil
}

// parseRow extracts a surah from a row and validates it against the
// canonical index.
func parseRow(row []string, config ImportConfig, index *quran.Index) (*models.Surah, error) {
	surah := &models.Surah{}

	numberStr := cellValue(row, config.NumberColumn)
	number, err := strconv.Atoi(strings.TrimSpace(numberStr))
	if err != nil {
		return nil, fmt.Errorf("invalid surah number %q", numberStr)
	}
	if number < 1 || number > quran.SurahCount {
		return nil, fmt.Errorf("surah number %d out of range", number)
	}
	surah.Number = number

	surah.NameArabic = strings.TrimSpace(cellValue(row, config.NameArabicColumn))
	surah.NameEnglish = strings.TrimSpace(cellValue(row, config.NameEnglishColumn))
	surah.NameTransliteration = strings.TrimSpace(cellValue(row, config.TransliterationColumn))
	if surah.NameTransliteration == "" {
		if name, err := index.SurahName(number); err == nil {
			surah.NameTransliteration = name
		}
	}

	countStr := cellValue(row, config.VerseCountColumn)
	count, err := strconv.Atoi(strings.TrimSpace(countStr))
	if err != nil {
		return nil, fmt.Errorf("invalid verse count %q", countStr)
	}
	canonical := index.Surahs()[number-1].VerseCount
	if count != canonical {
		return nil, fmt.Errorf("surah %d has verse count %d, expected %d", number, count, canonical)
	}
	surah.VerseCount = count

	revelation := strings.TrimSpace(cellValue(row, config.RevelationColumn))
	switch strings.ToLower(revelation) {
	case "":
		// Optional column
	case "meccan":
		surah.RevelationType = "Meccan"
	case "medinan":
		surah.RevelationType = "Medinan"
	default:
		return nil, fmt.Errorf("unknown revelation type %q", revelation)
	}

	return surah, nil
}

// cellValue returns the row value for an Excel column letter, or "" when
// the row is too short.
func cellValue(row []string, column string) string {
	idx := columnToIndex(column)
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return row[idx]
}

// Helper function to convert Excel column letter to index
func columnToIndex(column string) int {
	column = strings.ToUpper(column)
	index := 0
	for i := 0; i < len(column); i++ {
		index = index*26 + int(column[i]-'A'+1)
	}
	return index - 1
}
