package excel

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/khatm/internal/database"
)

func newTestRepo(t *testing.T) *database.SurahRepository {
	t.Helper()
	db, err := database.OpenSQLite(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return database.NewSurahRepository(db)
}

func writeTestCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "surahs.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestImportSurahsFromCSV(t *testing.T) {
	repo := newTestRepo(t)

	csv := "number,arabic,english,transliteration,verses,revelation\n" +
		"1,الفاتحة,The Opening,Al-Fatihah,7,Meccan\n" +
		"2,البقرة,The Cow,Al-Baqarah,286,Medinan\n" +
		"114,الناس,Mankind,An-Nas,6,Meccan\n"
	config := DefaultImportConfig()
	config.FilePath = writeTestCSV(t, csv)

	result, err := ImportSurahs(context.Background(), repo, config)
	require.NoError(t, err)
	assert.Equal(t, 3, result.TotalProcessed)
	assert.Equal(t, 3, result.Created)
	assert.Equal(t, 0, result.Updated)
	assert.Empty(t, result.Errors)

	stored, err := repo.GetByNumber(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, "Al-Baqarah", stored.NameTransliteration)
	assert.Equal(t, 286, stored.VerseCount)
	assert.Equal(t, "Medinan", stored.RevelationType)
}

func TestImportSurahsUpdatesExisting(t *testing.T) {
	repo := newTestRepo(t)
	config := DefaultImportConfig()

	config.FilePath = writeTestCSV(t, "h\n1,,The Opening,Al-Fatihah,7,Meccan\n")
	_, err := ImportSurahs(context.Background(), repo, config)
	require.NoError(t, err)

	config.FilePath = writeTestCSV(t, "h\n1,الفاتحة,The Opener,Al-Fatihah,7,Meccan\n")
	result, err := ImportSurahs(context.Background(), repo, config)
	require.NoError(t, err)
	assert.Equal(t, 0, result.Created)
	assert.Equal(t, 1, result.Updated)

	stored, err := repo.GetByNumber(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "The Opener", stored.NameEnglish)
}

func TestImportSurahsRejectsBadRows(t *testing.T) {
	repo := newTestRepo(t)

	csv := "number,arabic,english,transliteration,verses,revelation\n" +
		"abc,,,Bad,7,Meccan\n" + // non-numeric number
		"115,,,TooHigh,7,Meccan\n" + // out of range
		"1,,,Al-Fatihah,8,Meccan\n" + // wrong verse count
		"2,,,Al-Baqarah,286,Lunar\n" + // unknown revelation type
		"3,,,Ali 'Imran,200,\n" // valid, revelation optional
	config := DefaultImportConfig()
	config.FilePath = writeTestCSV(t, csv)

	result, err := ImportSurahs(context.Background(), repo, config)
	require.NoError(t, err)
	assert.Equal(t, 5, result.TotalProcessed)
	assert.Equal(t, 1, result.Created)
	assert.Len(t, result.Errors, 4)
}

func TestImportSurahsMissingFile(t *testing.T) {
	repo := newTestRepo(t)
	config := DefaultImportConfig()
	config.FilePath = filepath.Join(t.TempDir(), "missing.csv")

	_, err := ImportSurahs(context.Background(), repo, config)
	assert.Error(t, err)
}
