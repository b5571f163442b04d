package service

import (
	"context"
	"fmt"
	"time"

	"tracer_study_backend/internal/engine"
	"tracer_study_backend/internal/repository"
	"tracer_study_backend/internal/util"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

// ExportService renders a survey's submitted responses into an xlsx
// workbook and hands it to the storage provider.
type ExportService struct {
	Graph       *repository.GraphRepository
	Responses   *repository.ResponseRepository
	Answers     *repository.AnswerRepository
	Respondents *repository.RespondentRepository
	Storage     *StorageService
	Logger      *zap.Logger
}

func NewExportService(graph *repository.GraphRepository, responses *repository.ResponseRepository,
	answers *repository.AnswerRepository, respondents *repository.RespondentRepository,
	storage *StorageService, logger *zap.Logger) *ExportService {
	return &ExportService{
		Graph:       graph,
		Responses:   responses,
		Answers:     answers,
		Respondents: respondents,
		Storage:     storage,
		Logger:      logger,
	}
}

// ExportResult points at the generated workbook.
type ExportResult struct {
	Filename string `json:"filename"`
	URL      string `json:"url"`
	Rows     int    `json:"rows"`
}

// ExportSurvey writes one row per submitted response. Columns are the
// respondent identity, one column per answerable question labeled
// "<code>.<n>", the completion percentage and the submit timestamp.
// Conditional questions the respondent never saw export as empty cells.
func (s *ExportService) ExportSurvey(ctx context.Context, surveyID string) (*ExportResult, error) {
	g, err := s.Graph.LoadGraph(surveyID)
	if err != nil {
		return nil, err
	}

	responses, err := s.Responses.ListSubmittedBySurvey(surveyID)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)

	leaves := g.LeafQuestions()
	headers := []string{"Respondent", "Email", "Submitted At", "Completion %"}
	for _, label := range questionLabels(g, leaves) {
		headers = append(headers, label)
	}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, h)
	}

	for rowIdx, resp := range responses {
		answers, err := s.Answers.GetAnswers(resp.ID)
		if err != nil {
			return nil, err
		}
		visible := engine.VisibleQuestions(g, answers)
		completion := engine.Score(g, answers)

		name, email := "", ""
		if respondent, err := s.Respondents.FindByID(resp.RespondentID); err == nil {
			name, email = respondent.Name, respondent.Email
		}

		submittedAt := ""
		if resp.SubmittedAt != nil {
			submittedAt = resp.SubmittedAt.Format(util.TimeFormat)
		}

		row := []interface{}{name, email, submittedAt, completion.Percentage}
		for _, q := range leaves {
			value := ""
			if visible[q.ID] {
				if v, ok := answers[q.ID]; ok {
					value = engine.DisplayAnswer(q, v)
				}
			}
			row = append(row, value)
		}

		for col, value := range row {
			cell, _ := excelize.CoordinatesToCellName(col+1, rowIdx+2)
			f.SetCellValue(sheet, cell, value)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}

	filename := fmt.Sprintf("exports/%s_%s.xlsx", surveyID, time.Now().Format("20060102150405"))
	url, err := s.Storage.Upload(ctx, filename, buf, int64(buf.Len()), util.MimeXLSX)
	if err != nil {
		return nil, err
	}

	if s.Logger != nil {
		s.Logger.Info("survey exported",
			zap.String("surveyId", surveyID),
			zap.String("filename", filename),
			zap.Int("rows", len(responses)))
	}
	return &ExportResult{Filename: filename, URL: url, Rows: len(responses)}, nil
}

// questionLabels numbers the leaves within their section: A1.1, A1.2, C1.1.
// Matrix children take the next number in sequence like any other leaf.
func questionLabels(g *engine.Graph, leaves []*engine.Question) []string {
	sectionCode := make(map[string]string, len(g.Sections))
	for _, sec := range g.Sections {
		sectionCode[sec.ID] = sec.Code
	}

	counts := make(map[string]int)
	labels := make([]string, len(leaves))
	for i, q := range leaves {
		counts[q.SectionID]++
		labels[i] = fmt.Sprintf("%s.%d", sectionCode[q.SectionID], counts[q.SectionID])
	}
	return labels
}
