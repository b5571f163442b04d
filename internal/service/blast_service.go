package service

import (
	"time"

	"tracer_study_backend/internal/config"
	"tracer_study_backend/internal/model"
	"tracer_study_backend/internal/repository"
	"tracer_study_backend/internal/util"

	"go.uber.org/zap"
	"gopkg.in/gomail.v2"
)

// Mailer sends one message to a set of recipients.
type Mailer interface {
	Send(to []string, subject, body string) error
}

// SMTPMailer delivers through a plain SMTP relay.
type SMTPMailer struct {
	cfg config.SMTPConfig
}

func NewSMTPMailer(cfg config.SMTPConfig) *SMTPMailer {
	return &SMTPMailer{cfg: cfg}
}

// Send delivers one message per recipient so a bad address does not take the
// whole batch down with it.
func (m *SMTPMailer) Send(to []string, subject, body string) error {
	dialer := gomail.NewDialer(m.cfg.Host, m.cfg.Port, m.cfg.Username, m.cfg.Password)

	var lastErr error
	for _, addr := range to {
		msg := gomail.NewMessage()
		msg.SetHeader("From", m.cfg.From)
		msg.SetHeader("To", addr)
		msg.SetHeader("Subject", subject)
		msg.SetBody("text/html", body)
		if err := dialer.DialAndSend(msg); err != nil {
			lastErr = err
		}
	}
	return lastErr
}

// BlastService schedules and delivers survey invitation mail-outs. A
// background ticker picks up due blasts; admins can also fire one directly.
type BlastService struct {
	Blasts      *repository.BlastRepository
	Surveys     *repository.SurveyRepository
	Respondents *repository.RespondentRepository
	Mailer      Mailer
	Logger      *zap.Logger
}

func NewBlastService(blasts *repository.BlastRepository, surveys *repository.SurveyRepository,
	respondents *repository.RespondentRepository, mailer Mailer, logger *zap.Logger) *BlastService {
	return &BlastService{
		Blasts:      blasts,
		Surveys:     surveys,
		Respondents: respondents,
		Mailer:      mailer,
		Logger:      logger,
	}
}

type BlastRequest struct {
	SurveyID    string         `json:"surveyId" binding:"required"`
	Subject     string         `json:"subject" binding:"required"`
	Body        string         `json:"body" binding:"required"`
	TargetRole  model.UserRole `json:"targetRole"`
	ScheduledAt time.Time      `json:"scheduledAt"`
}

func (s *BlastService) Schedule(req BlastRequest) (*model.EmailBlast, error) {
	survey, err := s.Surveys.FindByID(req.SurveyID)
	if err != nil {
		return nil, err
	}

	role := req.TargetRole
	if role == "" {
		role = survey.TargetRole
	}

	blast := &model.EmailBlast{
		SurveyID:    req.SurveyID,
		Subject:     req.Subject,
		Body:        req.Body,
		TargetRole:  role,
		ScheduledAt: req.ScheduledAt,
		Status:      model.BlastPending,
	}
	if blast.ScheduledAt.IsZero() {
		blast.ScheduledAt = time.Now()
	}
	if err := s.Blasts.Create(blast); err != nil {
		return nil, err
	}
	return blast, nil
}

func (s *BlastService) Get(id string) (*model.EmailBlast, error) {
	return s.Blasts.FindByID(id)
}

func (s *BlastService) List(page, limit int, surveyID string) ([]model.EmailBlast, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	return s.Blasts.List(page, limit, surveyID)
}

// Cancel withdraws a pending blast. Sent or failed blasts stay as they are.
func (s *BlastService) Cancel(id string) error {
	blast, err := s.Blasts.FindByID(id)
	if err != nil {
		return err
	}
	if blast.Status != model.BlastPending {
		return util.ErrInvalidTransition
	}
	return s.Blasts.UpdateStatus(id, model.BlastCanceled)
}

// ProcessDueBlasts sends every pending blast whose schedule has passed. It
// is invoked by the background ticker and returns how many blasts it
// processed.
func (s *BlastService) ProcessDueBlasts(now time.Time) (int, error) {
	due, err := s.Blasts.FindDue(now)
	if err != nil {
		return 0, err
	}

	for i := range due {
		s.deliver(&due[i])
	}
	return len(due), nil
}

func (s *BlastService) deliver(blast *model.EmailBlast) {
	emails, err := s.Respondents.ListEmailsByRole(blast.TargetRole)
	if err != nil {
		s.markFailed(blast, err)
		return
	}
	if len(emails) == 0 {
		now := time.Now()
		blast.Status = model.BlastSent
		blast.SentAt = &now
		s.Blasts.Update(blast)
		return
	}

	err = s.Mailer.Send(emails, blast.Subject, blast.Body)
	now := time.Now()
	blast.SentAt = &now
	if err != nil {
		blast.Status = model.BlastFailed
		blast.FailedCount = len(emails)
		blast.LastError = err.Error()
	} else {
		blast.Status = model.BlastSent
		blast.SentCount = len(emails)
	}

	if uerr := s.Blasts.Update(blast); uerr != nil && s.Logger != nil {
		s.Logger.Error("failed to record blast delivery", zap.String("blastId", blast.ID), zap.Error(uerr))
	}
	if s.Logger != nil {
		s.Logger.Info("email blast processed",
			zap.String("blastId", blast.ID),
			zap.String("status", string(blast.Status)),
			zap.Int("recipients", len(emails)))
	}
}

func (s *BlastService) markFailed(blast *model.EmailBlast, err error) {
	blast.Status = model.BlastFailed
	blast.LastError = err.Error()
	s.Blasts.Update(blast)
	if s.Logger != nil {
		s.Logger.Error("email blast failed", zap.String("blastId", blast.ID), zap.Error(err))
	}
}
