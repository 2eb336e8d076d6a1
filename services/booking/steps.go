package booking

import (
	"context"
	"errors"
	"time"

	appointmentRepo "agendai/database/repository/appointment"
	"agendai/models"
	"agendai/services/extract"
	"agendai/utils"

	"go.uber.org/zap"
)

// stepOutcome tells the driver how to account for the turn.
type stepOutcome int

const (
	stepAdvanced stepOutcome = iota // field captured, attempts reset
	stepRetry                       // parse failed, attempt consumed
	stepNeutral                     // unrecognized confirmation, attempt returned
	stepFinished                    // terminal: session already removed
)

func (e *DefaultEngine) dispatch(ctx context.Context, sess *models.BookingSession, message string) (*models.BookingReply, stepOutcome) {
	switch sess.Step {
	case models.StepCollectingService:
		return e.handleService(sess, message)
	case models.StepCollectingDate:
		return e.handleDate(sess, message)
	case models.StepCollectingTime:
		return e.handleTime(sess, message)
	case models.StepCollectingName:
		return e.handleName(sess, message)
	case models.StepCollectingPhone:
		return e.handlePhone(sess, message)
	case models.StepCollectingEmail:
		return e.handleEmail(sess, message)
	case models.StepConfirming:
		return e.handleConfirm(ctx, sess, message)
	default:
		// An unknown step means the session is corrupt; start over.
		e.abandon(ctx, sess.UserID)
		return &models.BookingReply{Text: msgRestart()}, stepFinished
	}
}

func (e *DefaultEngine) handleService(sess *models.BookingSession, message string) (*models.BookingReply, stepOutcome) {
	id, name, ok := extract.Service(message)
	if !ok {
		return &models.BookingReply{Text: retryService()}, stepRetry
	}
	sess.ServiceID = id
	sess.ServiceName = name
	sess.Step = models.StepCollectingDate
	return &models.BookingReply{Text: promptDate(name)}, stepAdvanced
}

func (e *DefaultEngine) handleDate(sess *models.BookingSession, message string) (*models.BookingReply, stepOutcome) {
	date, err := extract.Date(message, e.now())
	if err != nil {
		return &models.BookingReply{Text: retryDate()}, stepRetry
	}
	sess.Date = date

	// A message like "amanhã às 14h" carries the time too; capture it and
	// skip the time-collection step entirely.
	if clock, err := extract.Time(extract.StripDate(message)); err == nil {
		sess.Time = clock
		sess.Step = models.StepCollectingName
		return &models.BookingReply{Text: promptName()}, stepAdvanced
	}

	sess.Step = models.StepCollectingTime
	return &models.BookingReply{Text: promptTime()}, stepAdvanced
}

func (e *DefaultEngine) handleTime(sess *models.BookingSession, message string) (*models.BookingReply, stepOutcome) {
	clock, err := extract.Time(message)
	if err != nil {
		return &models.BookingReply{Text: retryTime()}, stepRetry
	}
	sess.Time = clock
	sess.Step = models.StepCollectingName
	return &models.BookingReply{Text: promptName()}, stepAdvanced
}

func (e *DefaultEngine) handleName(sess *models.BookingSession, message string) (*models.BookingReply, stepOutcome) {
	name, ok := extract.Name(message)
	if !ok {
		return &models.BookingReply{Text: retryName()}, stepRetry
	}
	sess.CustomerName = name
	sess.Step = models.StepCollectingPhone
	return &models.BookingReply{Text: promptPhone(name)}, stepAdvanced
}

func (e *DefaultEngine) handlePhone(sess *models.BookingSession, message string) (*models.BookingReply, stepOutcome) {
	phone, ok := extract.Phone(message)
	if !ok {
		return &models.BookingReply{Text: retryPhone()}, stepRetry
	}
	sess.CustomerPhone = phone
	sess.Step = models.StepCollectingEmail
	return &models.BookingReply{Text: promptEmail()}, stepAdvanced
}

func (e *DefaultEngine) handleEmail(sess *models.BookingSession, message string) (*models.BookingReply, stepOutcome) {
	email, ok := extract.Email(message)
	if !ok {
		return &models.BookingReply{Text: retryEmail()}, stepRetry
	}
	sess.CustomerEmail = email
	sess.Step = models.StepConfirming
	return promptConfirm(sess), stepAdvanced
}

func (e *DefaultEngine) handleConfirm(ctx context.Context, sess *models.BookingSession, message string) (*models.BookingReply, stepOutcome) {
	switch extract.Confirm(message) {
	case extract.ConfirmYes:
		return e.commit(ctx, sess)
	case extract.ConfirmNo:
		e.store.delete(sess.UserID)
		if e.sessions != nil {
			e.sessions.EndBookingFlow(ctx, sess.UserID)
		}
		return &models.BookingReply{Text: msgCancelled()}, stepFinished
	default:
		reply := promptConfirm(sess)
		reply.Text = "Não entendi. 🙂 " + reply.Text
		return reply, stepNeutral
	}
}

// commit runs the transactional persistence. Only a successful commit
// removes the in-memory session; any failure leaves it untouched so the
// user can simply confirm again.
func (e *DefaultEngine) commit(ctx context.Context, sess *models.BookingSession) (*models.BookingReply, stepOutcome) {
	appt, err := e.committer.Commit(ctx, sess)
	if err != nil {
		logger := utils.GetLogger()
		if errors.Is(err, appointmentRepo.ErrUserNotFound) || errors.Is(err, appointmentRepo.ErrBusinessNotFound) {
			logger.Warn("booking: commit resolution failed",
				zap.String("userId", sess.UserID), zap.Error(err))
		} else {
			logger.Error("booking: commit transaction failed",
				zap.String("userId", sess.UserID), zap.Error(err))
		}
		reply := &models.BookingReply{Text: msgCommitFailed(), Buttons: confirmButtons()}
		return reply, stepNeutral
	}

	e.store.delete(sess.UserID)
	if e.sessions != nil {
		e.sessions.EndBookingFlow(ctx, sess.UserID)
		e.sessions.UpdateStatus(ctx, sess.UserID, models.StatusCompleted)
	}

	if e.reminders != nil {
		rctx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := e.reminders.ScheduleAppointmentReminder(rctx, appt, sess.CustomerPhone); err != nil {
			utils.GetLogger().Warn("booking: reminder enqueue failed",
				zap.String("protocol", appt.Protocol), zap.Error(err))
		}
	}

	utils.GetLogger().Info("booking: appointment confirmed",
		zap.String("userId", sess.UserID), zap.String("protocol", appt.Protocol))
	return &models.BookingReply{Text: msgConfirmed(appt)}, stepFinished
}
