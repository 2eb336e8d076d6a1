package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	appointmentRepo "agendai/database/repository/appointment"
	businessRepo "agendai/database/repository/business"
	serviceRepo "agendai/database/repository/service"
	userRepo "agendai/database/repository/user"
	"agendai/models"
	"agendai/services/booking"
	"agendai/services/conversation"
	"agendai/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// WebhookHandler receives sanitized gateway turns and hands them to the
// core. Signature verification, rate limiting and intent classification
// all happen upstream of this process.
type WebhookHandler struct {
	Sessions     conversation.SessionStore
	Engine       booking.Engine
	Users        userRepo.UserRepository
	Appointments appointmentRepo.AppointmentRepository
	Businesses   businessRepo.BusinessRepository
	Services     serviceRepo.ServiceRepository
	Logger       *zap.Logger
}

// NewWebhookHandler creates the gateway-facing handler.
func NewWebhookHandler(sessions conversation.SessionStore, engine booking.Engine,
	users userRepo.UserRepository, appointments appointmentRepo.AppointmentRepository,
	businesses businessRepo.BusinessRepository, services serviceRepo.ServiceRepository,
	logger *zap.Logger) *WebhookHandler {
	return &WebhookHandler{
		Sessions:     sessions,
		Engine:       engine,
		Users:        users,
		Appointments: appointments,
		Businesses:   businesses,
		Services:     services,
		Logger:       logger,
	}
}

type inboundMessage struct {
	UserID   string `json:"userId" binding:"required"`
	Phone    string `json:"phone"`
	Message  string `json:"message"`
	ButtonID string `json:"buttonId"`
}

// HandleMessage processes one inbound turn and returns the reply plus
// optional quick-reply buttons.
func (h *WebhookHandler) HandleMessage(c *gin.Context) {
	var in inboundMessage
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}

	// A button tap arrives as an id; it takes precedence over free text.
	text := in.Message
	if in.ButtonID != "" {
		text = in.ButtonID
	}

	ctx := c.Request.Context()
	state := h.Sessions.GetState(ctx, in.UserID)
	if in.Phone != "" && state.Phone == "" {
		state.Phone = in.Phone
		h.Sessions.SaveState(ctx, state)
	}
	h.ensureUser(ctx, in.UserID, in.Phone)
	h.Sessions.AddMessage(ctx, in.UserID, models.ConversationMessage{Role: "user", Content: text})

	var reply *models.BookingReply
	switch {
	case h.Engine.HasSession(in.UserID) || state.BookingActive:
		reply = h.Engine.ProcessBookingStep(ctx, in.UserID, text)
	case isAppointmentListing(text):
		reply = h.listAppointments(ctx, in.UserID)
	case isCatalogQuery(text):
		reply = h.listServices(ctx)
	case isBookingTrigger(text):
		// No session yet: the engine opens one under the same per-user
		// lock every other turn takes, so a redelivered trigger cannot
		// interleave with a step in flight.
		reply = h.Engine.ProcessBookingStep(ctx, in.UserID, text)
	default:
		// Non-booking turns are an upstream concern; this core only
		// points the user at what it can do.
		reply = &models.BookingReply{
			Text: "Olá! 👋 Eu cuido dos agendamentos. Me diga o que você quer agendar, por exemplo: \"quero agendar um corte masculino\".",
		}
	}

	h.Sessions.AddMessage(ctx, in.UserID, models.ConversationMessage{Role: "assistant", Content: reply.Text})

	h.Logger.Debug("webhook: turn processed",
		zap.String("userId", in.UserID), zap.Bool("booking", h.Engine.HasSession(in.UserID)))
	c.JSON(http.StatusOK, gin.H{"reply": reply.Text, "buttons": reply.Buttons})
}

// ensureUser provisions a user row on first contact so the commit
// transaction always finds one to attach the appointment to.
func (h *WebhookHandler) ensureUser(ctx context.Context, externalID, phone string) {
	_, err := h.Users.GetByExternalID(ctx, externalID)
	if err == nil {
		return
	}
	if !errors.Is(err, userRepo.ErrNotFound) {
		h.Logger.Warn("webhook: user lookup failed", zap.String("userId", externalID), zap.Error(err))
		return
	}
	u := &models.User{ExternalID: externalID, Phone: phone}
	if err := h.Users.Create(ctx, u); err != nil {
		h.Logger.Warn("webhook: user provisioning failed", zap.String("userId", externalID), zap.Error(err))
	}
}

func (h *WebhookHandler) listAppointments(ctx context.Context, externalID string) *models.BookingReply {
	user, err := h.Users.GetByExternalID(ctx, externalID)
	if err != nil {
		return &models.BookingReply{Text: "Você ainda não tem agendamentos comigo. Quer marcar um horário?"}
	}
	appts, err := h.Appointments.ListByUser(ctx, user.ID)
	if err != nil {
		h.Logger.Error("webhook: appointment listing failed", zap.String("userId", externalID), zap.Error(err))
		return &models.BookingReply{Text: "Não consegui consultar seus agendamentos agora. Tente novamente em instantes."}
	}
	if len(appts) == 0 {
		return &models.BookingReply{Text: "Você ainda não tem agendamentos comigo. Quer marcar um horário?"}
	}

	var b strings.Builder
	b.WriteString("📅 Seus agendamentos:\n")
	for i, a := range appts {
		if i == 5 {
			break
		}
		date := a.Date
		if d, err := time.Parse("2006-01-02", a.Date); err == nil {
			date = d.Format("02/01/2006")
		}
		fmt.Fprintf(&b, "\n• %s às %s, %s (protocolo %s)", date, a.Time, a.Status, a.Protocol)
	}
	return &models.BookingReply{Text: b.String()}
}

func (h *WebhookHandler) listServices(ctx context.Context) *models.BookingReply {
	fallback := &models.BookingReply{Text: "Não consegui consultar o catálogo agora. Tente novamente em instantes."}
	biz, err := h.Businesses.GetDefault(ctx)
	if err != nil {
		h.Logger.Error("webhook: business lookup failed", zap.Error(err))
		return fallback
	}
	services, err := h.Services.ListByBusiness(ctx, biz.ID)
	if err != nil {
		h.Logger.Error("webhook: service catalog lookup failed", zap.Error(err))
		return fallback
	}
	if len(services) == 0 {
		return &models.BookingReply{Text: "Ainda não temos serviços cadastrados por aqui."}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "✂️ Serviços de %s:\n", biz.Name)
	for _, s := range services {
		fmt.Fprintf(&b, "\n• %s", s.Name)
	}
	b.WriteString("\n\nÉ só me dizer qual você quer agendar!")
	return &models.BookingReply{Text: b.String()}
}

func isCatalogQuery(text string) bool {
	normalized := strings.ToLower(text)
	for _, w := range []string{"serviços", "servicos", "catálogo", "catalogo", "preços", "precos"} {
		if strings.Contains(normalized, w) {
			return true
		}
	}
	return false
}

func isAppointmentListing(text string) bool {
	normalized := strings.ToLower(text)
	return strings.Contains(normalized, "meus agendamentos") ||
		strings.Contains(normalized, "meus horários") ||
		strings.Contains(normalized, "meus horarios")
}

func isBookingTrigger(text string) bool {
	normalized := strings.ToLower(text)
	for _, w := range []string{"agendar", "marcar", "agendamento", "reservar"} {
		if strings.Contains(normalized, w) {
			return true
		}
	}
	return false
}

// HealthHandler reports store and dependency health. The dependencies
// block is the background monitor's latest snapshot, which is where the
// Postgres view comes from.
func (h *WebhookHandler) HealthHandler(c *gin.Context) {
	report := h.Sessions.HealthCheck(c.Request.Context())
	deps := utils.GetHealthStatus()
	status := http.StatusOK
	if report.Degraded || (!deps.CheckedAt.IsZero() && !deps.Postgres) {
		status = http.StatusPartialContent
	}
	c.JSON(status, gin.H{
		"sessions":     report,
		"dependencies": deps,
		"booking":      h.Engine.GetMemoryStats(),
		"cleanup":      h.Engine.GetCleanupStatus(),
	})
}
