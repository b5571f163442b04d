package service

import (
	"errors"
	"strconv"
	"testing"
	"time"

	"tracer_study_backend/internal/engine"
	"tracer_study_backend/internal/model"
	"tracer_study_backend/internal/repository"
	"tracer_study_backend/internal/util"
)

// In-memory fakes for the coordinator's narrow store interfaces.

type fakeGraphs struct {
	g *engine.Graph
}

func (f *fakeGraphs) LoadGraph(surveyID string) (*engine.Graph, error) {
	if f.g == nil || f.g.SurveyID != surveyID {
		return nil, util.ErrSurveyNotFound
	}
	return f.g, nil
}

type fakeAnswers struct {
	sets map[string]engine.AnswerSet
}

func newFakeAnswers() *fakeAnswers {
	return &fakeAnswers{sets: make(map[string]engine.AnswerSet)}
}

func (f *fakeAnswers) UpsertAnswer(responseID, questionID string, v engine.AnswerValue) error {
	set, ok := f.sets[responseID]
	if !ok {
		set = make(engine.AnswerSet)
		f.sets[responseID] = set
	}
	set[questionID] = v
	return nil
}

func (f *fakeAnswers) GetAnswers(responseID string) (engine.AnswerSet, error) {
	out := make(engine.AnswerSet)
	for k, v := range f.sets[responseID] {
		out[k] = v
	}
	return out, nil
}

type fakeResponses struct {
	answers   *fakeAnswers
	responses map[string]*model.Response
	nextID    int
}

func newFakeResponses(answers *fakeAnswers) *fakeResponses {
	return &fakeResponses{answers: answers, responses: make(map[string]*model.Response)}
}

func (f *fakeResponses) GetOrCreateDraft(surveyID, respondentID string) (*model.Response, error) {
	for _, r := range f.responses {
		if r.SurveyID == surveyID && r.RespondentID == respondentID {
			return r, nil
		}
	}
	f.nextID++
	r := &model.Response{SurveyID: surveyID, RespondentID: respondentID}
	r.ID = "resp" + strconv.Itoa(f.nextID)
	f.responses[r.ID] = r
	return r, nil
}

func (f *fakeResponses) FindByID(id string) (*model.Response, error) {
	r, ok := f.responses[id]
	if !ok {
		return nil, util.ErrResponseNotFound
	}
	return r, nil
}

func (f *fakeResponses) FindBySurveyAndRespondent(surveyID, respondentID string) (*model.Response, error) {
	for _, r := range f.responses {
		if r.SurveyID == surveyID && r.RespondentID == respondentID {
			return r, nil
		}
	}
	return nil, util.ErrResponseNotFound
}

func (f *fakeResponses) Submit(responseID string, check func(engine.AnswerSet) error) error {
	r, ok := f.responses[responseID]
	if !ok {
		return util.ErrResponseNotFound
	}
	set, _ := f.answers.GetAnswers(responseID)
	if err := check(set); err != nil {
		return err
	}
	if r.SubmittedAt != nil {
		return util.ErrAlreadySubmitted
	}
	now := time.Now()
	r.SubmittedAt = &now
	return nil
}

func (f *fakeResponses) ListBySurvey(surveyID string, page, limit int) ([]repository.ResponseListRow, int64, error) {
	var rows []repository.ResponseListRow
	for _, r := range f.responses {
		if r.SurveyID == surveyID {
			rows = append(rows, repository.ResponseListRow{Response: *r})
		}
	}
	return rows, int64(len(rows)), nil
}

type fakeRespondents struct {
	respondent *model.Respondent
	profile    *model.AlumniProfile
}

func (f *fakeRespondents) FindByID(id string) (*model.Respondent, error) {
	if f.respondent == nil || f.respondent.ID != id {
		return nil, util.ErrRespondentNotFound
	}
	return f.respondent, nil
}

func (f *fakeRespondents) FindAlumniProfile(respondentID string) (*model.AlumniProfile, error) {
	if f.profile == nil {
		return nil, util.ErrRespondentNotFound
	}
	return f.profile, nil
}

// serviceGraph is a published alumni survey: one required single choice
// (q1 yes/no), one required essay revealed by q1=yes, and an optional
// multiple choice.
func serviceGraph() *engine.Graph {
	sections := []engine.Section{
		{
			ID: "sec", Code: "A1",
			Questions: []*engine.Question{
				{
					ID: "q1", SectionID: "sec", Type: model.SingleChoice, IsRequired: true, SortOrder: 1,
					Options: []engine.Option{{ID: "yes", Text: "Yes"}, {ID: "no", Text: "No"}},
				},
				{ID: "q2", SectionID: "sec", Type: model.Essay, IsRequired: true, SortOrder: 2},
				{
					ID: "q3", SectionID: "sec", Type: model.MultipleChoice, SortOrder: 3,
					Options: []engine.Option{{ID: "m1", Text: "First"}, {ID: "m2", Text: "Second"}},
				},
			},
		},
	}
	rules := []engine.Rule{
		{TriggerQuestionID: "q1", TriggerOptionID: "yes", TargetQuestionID: "q2"},
	}
	g := engine.NewGraph("survey1", sections, rules)
	g.Status = model.SurveyPublished
	g.TargetRole = model.Alumni
	return g
}

func newTestService() (*ResponseService, *fakeResponses, *fakeAnswers) {
	answers := newFakeAnswers()
	responses := newFakeResponses(answers)
	respondent := &model.Respondent{Role: model.Alumni}
	respondent.ID = "alum1"
	svc := NewResponseService(
		&fakeGraphs{g: serviceGraph()},
		answers,
		responses,
		&fakeRespondents{respondent: respondent},
	)
	return svc, responses, answers
}

func TestSaveDraftPartial(t *testing.T) {
	svc, _, _ := newTestService()

	state, err := svc.SaveDraft("survey1", "alum1", []AnswerItem{
		{QuestionID: "q1", AnswerOptionIDs: []string{"yes"}},
	})
	if err != nil {
		t.Fatalf("SaveDraft: %v", err)
	}
	if state.Submitted {
		t.Error("a draft save must not submit")
	}
	if state.Completion.TotalRequired != 2 || state.Completion.AnsweredRequired != 1 {
		t.Errorf("completion %d/%d, want 1/2", state.Completion.AnsweredRequired, state.Completion.TotalRequired)
	}
	if state.Completion.Percentage != 50 {
		t.Errorf("percentage = %d, want 50", state.Completion.Percentage)
	}
}

func TestSaveDraftEmptyPayload(t *testing.T) {
	svc, responses, _ := newTestService()

	state, err := svc.SaveDraft("survey1", "alum1", nil)
	if err != nil {
		t.Fatalf("SaveDraft with no answers: %v", err)
	}
	if _, err := responses.FindByID(state.ResponseID); err != nil {
		t.Error("an empty save should still create the draft row")
	}
}

func TestSubmitRejectsMissingRequired(t *testing.T) {
	svc, responses, _ := newTestService()

	_, err := svc.Submit("survey1", "alum1", []AnswerItem{
		{QuestionID: "q1", AnswerOptionIDs: []string{"yes"}},
	})

	var unanswered *util.UnansweredRequiredError
	if !errors.As(err, &unanswered) {
		t.Fatalf("expected UnansweredRequiredError, got %v", err)
	}
	if len(unanswered.QuestionIDs) != 1 || unanswered.QuestionIDs[0] != "q2" {
		t.Errorf("offending ids = %v, want [q2]", unanswered.QuestionIDs)
	}

	// The failed submit must not have stamped the response.
	r, err := responses.FindBySurveyAndRespondent("survey1", "alum1")
	if err != nil {
		t.Fatal(err)
	}
	if r.IsSubmitted() {
		t.Error("response stamped submitted despite failing validation")
	}
}

func TestSubmitHiddenRequiredIgnored(t *testing.T) {
	svc, _, _ := newTestService()

	// q1=no hides the required q2, so the submit goes through without it.
	state, err := svc.Submit("survey1", "alum1", []AnswerItem{
		{QuestionID: "q1", AnswerOptionIDs: []string{"no"}},
	})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if !state.Submitted {
		t.Error("state should report submitted")
	}
	if state.Completion.Percentage != 100 {
		t.Errorf("percentage = %d, want 100", state.Completion.Percentage)
	}
}

func TestSubmitIsTerminal(t *testing.T) {
	svc, _, _ := newTestService()

	if _, err := svc.Submit("survey1", "alum1", []AnswerItem{
		{QuestionID: "q1", AnswerOptionIDs: []string{"no"}},
	}); err != nil {
		t.Fatalf("first submit: %v", err)
	}

	if _, err := svc.Submit("survey1", "alum1", nil); !errors.Is(err, util.ErrAlreadySubmitted) {
		t.Errorf("second submit: got %v, want ErrAlreadySubmitted", err)
	}
	if _, err := svc.SaveDraft("survey1", "alum1", nil); !errors.Is(err, util.ErrAlreadySubmitted) {
		t.Errorf("draft save after submit: got %v, want ErrAlreadySubmitted", err)
	}
}

func TestSaveDraftSurveyNotAccepting(t *testing.T) {
	svc, _, _ := newTestService()
	svc.Graphs.(*fakeGraphs).g.Status = model.SurveyClosed

	if _, err := svc.SaveDraft("survey1", "alum1", nil); !errors.Is(err, util.ErrSurveyNotAccepting) {
		t.Errorf("got %v, want ErrSurveyNotAccepting", err)
	}
}

func TestSaveDraftRoleMismatch(t *testing.T) {
	svc, _, _ := newTestService()
	svc.Graphs.(*fakeGraphs).g.TargetRole = model.Manager

	if _, err := svc.SaveDraft("survey1", "alum1", nil); !errors.Is(err, util.ErrSurveyRoleMismatch) {
		t.Errorf("got %v, want ErrSurveyRoleMismatch", err)
	}
}

func TestSaveDraftUnknownQuestion(t *testing.T) {
	svc, _, _ := newTestService()

	_, err := svc.SaveDraft("survey1", "alum1", []AnswerItem{{QuestionID: "ghost"}})
	if !errors.Is(err, util.ErrQuestionNotFound) {
		t.Errorf("got %v, want ErrQuestionNotFound", err)
	}
}

func TestMultiAnswerReplacedWholesale(t *testing.T) {
	svc, _, answers := newTestService()

	if _, err := svc.SaveDraft("survey1", "alum1", []AnswerItem{
		{QuestionID: "q3", AnswerOptionIDs: []string{"m1", "m2"}},
	}); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.SaveDraft("survey1", "alum1", []AnswerItem{
		{QuestionID: "q3", AnswerOptionIDs: []string{"m2"}},
	}); err != nil {
		t.Fatal(err)
	}

	set := answers.sets["resp1"]
	v := set["q3"]
	if len(v.OptionIDs) != 1 || v.OptionIDs[0] != "m2" {
		t.Errorf("second save should replace the whole selection, got %v", v.OptionIDs)
	}
}

func TestGetFormRendersState(t *testing.T) {
	svc, _, _ := newTestService()

	if _, err := svc.SaveDraft("survey1", "alum1", []AnswerItem{
		{QuestionID: "q1", AnswerOptionIDs: []string{"yes"}},
	}); err != nil {
		t.Fatal(err)
	}

	form, err := svc.GetForm("survey1", "alum1")
	if err != nil {
		t.Fatalf("GetForm: %v", err)
	}
	if form.Submitted {
		t.Error("form should not be submitted yet")
	}
	if len(form.Sections) != 1 || len(form.Sections[0].Questions) != 3 {
		t.Fatalf("unexpected form shape: %+v", form.Sections)
	}

	q1 := form.Sections[0].Questions[0]
	if !q1.Visible || !q1.Answered || q1.DisplayAnswer != "Yes" {
		t.Errorf("q1 rendering wrong: %+v", q1)
	}
	if !q1.Options[0].Selected || q1.Options[1].Selected {
		t.Error("q1 selection state wrong")
	}

	q2 := form.Sections[0].Questions[1]
	if !q2.Visible {
		t.Error("q2 should be visible after q1=yes")
	}
}

func TestGetFormNoDraftYet(t *testing.T) {
	svc, _, _ := newTestService()

	form, err := svc.GetForm("survey1", "alum1")
	if err != nil {
		t.Fatalf("GetForm without a draft: %v", err)
	}
	if form.Completion.Percentage != 0 {
		t.Errorf("fresh form percentage = %d, want 0", form.Completion.Percentage)
	}
	q2 := form.Sections[0].Questions[1]
	if q2.Visible {
		t.Error("conditional q2 should start hidden")
	}
}

func TestEligibilityGate(t *testing.T) {
	answers := newFakeAnswers()
	responses := newFakeResponses(answers)
	respondent := &model.Respondent{Role: model.Alumni}
	respondent.ID = "alum1"
	finder := &fakeRespondents{
		respondent: respondent,
		profile:    &model.AlumniProfile{RespondentID: "alum1", Faculty: "Engineering", GraduationYear: 2019},
	}

	g := serviceGraph()
	g.Eligibility = []engine.EligibilityRule{
		{Field: "graduation_year", Operator: "gte", Value: "2020"},
	}
	svc := NewResponseService(&fakeGraphs{g: g}, answers, responses, finder)

	if _, err := svc.SaveDraft("survey1", "alum1", nil); !errors.Is(err, util.ErrNotEligible) {
		t.Errorf("got %v, want ErrNotEligible", err)
	}

	finder.profile.GraduationYear = 2021
	if _, err := svc.SaveDraft("survey1", "alum1", nil); err != nil {
		t.Errorf("eligible respondent rejected: %v", err)
	}
}
