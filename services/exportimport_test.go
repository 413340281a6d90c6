package services

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"github.com/MU-MU-00/lingocard/models"
)

func exportFixture() (models.Group, []models.Term) {
	group := models.Group{ID: uuid.New(), Name: "Thuật ngữ kỹ thuật"}
	terms := []models.Term{
		{
			ID:              uuid.New(),
			GroupID:         group.ID,
			Term:            "stakeholder",
			TermTranslation: "bên liên quan",
			DefinitionVi:    "Cá nhân, nhóm có lợi ích \"trực tiếp\" trong dự án",
			Example:         "We met the stakeholders, then updated the plan.",
		},
		{
			ID:              uuid.New(),
			GroupID:         group.ID,
			Term:            "deadline",
			TermTranslation: "hạn chót",
			DefinitionVi:    "Thời hạn cuối cùng phải hoàn thành công việc",
			Example:         "The deadline is Friday.",
		},
	}
	return group, terms
}

func TestDetectFormat(t *testing.T) {
	f, err := DetectFormat("backup.JSON")
	require.NoError(t, err)
	assert.Equal(t, FormatJSON, f)

	f, err = DetectFormat("danh_sach.xlsx")
	require.NoError(t, err)
	assert.Equal(t, FormatXLSX, f)

	_, err = DetectFormat("anh.png")
	assert.Error(t, err)
}

func TestExportImportCSV(t *testing.T) {
	group, terms := exportFixture()

	data, err := ExportGroup(group, terms, FormatCSV)
	require.NoError(t, err)
	assert.True(t, len(data) > 3 && string(data[:3]) == "\uFEFF", "CSV phải có BOM")

	res, err := ParseImport(data, FormatCSV)
	require.NoError(t, err)
	require.Len(t, res.Terms, 2)
	assert.False(t, res.Restored)

	// Nội dung có dấu phẩy và nháy kép vẫn phải giữ nguyên qua vòng export/import
	assert.Equal(t, terms[0].Term, res.Terms[0].Term)
	assert.Equal(t, terms[0].DefinitionVi, res.Terms[0].DefinitionVi)
	assert.Equal(t, terms[0].Example, res.Terms[0].Example)
}

func TestExportImportJSONRestoresState(t *testing.T) {
	group, terms := exportFixture()
	terms[0].Status = models.StatusLearned
	terms[0].ReviewStage = 4
	terms[0].NextReviewDate = time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)
	terms[0].WrongDefinitions = datatypes.JSONSlice[string]{"sai 1", "sai 2"}

	data, err := ExportGroup(group, terms, FormatJSON)
	require.NoError(t, err)

	res, err := ParseImport(data, FormatJSON)
	require.NoError(t, err)
	assert.True(t, res.Restored)
	assert.Equal(t, group.Name, res.GroupName)

	require.Len(t, res.Terms, 2)
	assert.Equal(t, 4, res.Terms[0].ReviewStage)
	assert.Equal(t, models.StatusLearned, res.Terms[0].Status)
	assert.True(t, res.Terms[0].NextReviewDate.Equal(terms[0].NextReviewDate))
	assert.Equal(t, []string{"sai 1", "sai 2"}, []string(res.Terms[0].WrongDefinitions))
}

func TestExportImportTXT(t *testing.T) {
	group, terms := exportFixture()
	terms[0].DefinitionVi = "Định nghĩa không chứa dấu cộng"

	data, err := ExportGroup(group, terms, FormatTXT)
	require.NoError(t, err)
	assert.Contains(t, string(data), "1. stakeholder+bên liên quan+")

	res, err := ParseImport(data, FormatTXT)
	require.NoError(t, err)
	require.Len(t, res.Terms, 2)
	assert.Equal(t, "stakeholder", res.Terms[0].Term)
	assert.Equal(t, "hạn chót", res.Terms[1].TermTranslation)
}

func TestExportImportMarkdown(t *testing.T) {
	group, terms := exportFixture()

	data, err := ExportGroup(group, terms, FormatMD)
	require.NoError(t, err)
	assert.Contains(t, string(data), "| STT | Thuật ngữ |")

	res, err := ParseImport(data, FormatMD)
	require.NoError(t, err)
	require.Len(t, res.Terms, 2, "phải bỏ dòng header và dòng kẻ")
	assert.Equal(t, "deadline", res.Terms[1].Term)
}

func TestExportImportXLSX(t *testing.T) {
	group, terms := exportFixture()

	data, err := ExportGroup(group, terms, FormatXLSX)
	require.NoError(t, err)

	res, err := ParseImport(data, FormatXLSX)
	require.NoError(t, err)
	require.Len(t, res.Terms, 2)
	assert.Equal(t, "stakeholder", res.Terms[0].Term)
	assert.Equal(t, "Thời hạn cuối cùng phải hoàn thành công việc", res.Terms[1].DefinitionVi)
}
