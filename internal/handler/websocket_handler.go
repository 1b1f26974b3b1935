package handler

import (
	"net/http"

	"github.com/dafibh/ledger/ledger-backend/internal/websocket"
	ws "github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// WebSocketHandler handles change-feed connections
type WebSocketHandler struct {
	hub            *websocket.Hub
	validator      websocket.TokenValidator
	allowedOrigins map[string]bool
	topics         map[string]bool
	upgrader       ws.Upgrader
}

// NewWebSocketHandler creates a new WebSocketHandler. A nil validator accepts
// connections without a token; entities lists the topics clients may follow.
func NewWebSocketHandler(hub *websocket.Hub, validator websocket.TokenValidator, allowedOrigins []string, entities []string) *WebSocketHandler {
	originMap := make(map[string]bool)
	for _, origin := range allowedOrigins {
		originMap[origin] = true
	}
	topics := map[string]bool{websocket.AllTopics: true}
	for _, entity := range entities {
		topics[entity] = true
	}

	h := &WebSocketHandler{
		hub:            hub,
		validator:      validator,
		allowedOrigins: originMap,
		topics:         topics,
	}

	h.upgrader = ws.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     h.checkOrigin,
	}

	return h
}

// checkOrigin validates the request origin against allowed origins
func (h *WebSocketHandler) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		// Non-browser clients send no Origin
		return true
	}

	if h.allowedOrigins[origin] || h.allowedOrigins["*"] {
		return true
	}

	log.Warn().
		Str("origin", origin).
		Msg("WebSocket connection rejected: origin not allowed")
	return false
}

// HandleWS godoc
// @Summary Subscribe to change events
// @Description Upgrades to a websocket that receives {Entity}.created, {Entity}.updated, {Entity}.deleted and stats.synced events.
// @Description Send {"action":"subscribe","entity":"Bank"} to switch the followed entity.
// @Tags events
// @Param entity query string false "Only follow this entity"
// @Param token query string false "Bearer token, required when authentication is enabled"
// @Success 101
// @Failure 400 {object} Response
// @Failure 401 {object} Response
// @Router /ws [get]
func (h *WebSocketHandler) HandleWS(c echo.Context) error {
	topic := c.QueryParam("entity")
	if topic == "" {
		topic = websocket.AllTopics
	}
	if !h.topics[topic] {
		return echo.NewHTTPError(http.StatusBadRequest, "unknown entity")
	}

	subject := ""
	if h.validator != nil {
		token := c.QueryParam("token")
		if token == "" {
			log.Debug().Msg("WebSocket connection rejected: missing token")
			return echo.NewHTTPError(http.StatusUnauthorized, "missing token")
		}

		var err error
		subject, err = h.validator.ValidateToken(c.Request().Context(), token)
		if err != nil {
			log.Debug().Err(err).Msg("WebSocket connection rejected: invalid token")
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
		}
	}

	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		log.Error().Err(err).Msg("WebSocket upgrade failed")
		return err
	}

	client := websocket.NewClient(conn, h.hub, websocket.ClientConfig{
		Topic:   topic,
		Subject: subject,
		Accepts: func(t string) bool { return h.topics[t] },
	})
	h.hub.Register(client)

	log.Info().
		Str("topic", topic).
		Str("subject", subject).
		Str("client_id", client.ID()).
		Msg("WebSocket client connected")

	go client.WritePump()
	go client.ReadPump()

	return nil
}
