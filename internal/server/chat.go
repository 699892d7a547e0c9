package server

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

// Responder is the slice of the orchestrator the chat route needs
type Responder interface {
	Process(ctx context.Context, userID, message string) (string, error)
}

type ChatHandler struct {
	Chat Responder
}

func (h *ChatHandler) Register(g *echo.Group) {
	g.POST("/chat", h.chat)
}

// chat handles one conversational turn
func (h *ChatHandler) chat(c echo.Context) error {
	var req struct {
		Message string `json:"message"`
		UserID  string `json:"user_id"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if strings.TrimSpace(req.Message) == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "message required")
	}
	if strings.TrimSpace(req.UserID) == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "user_id required")
	}

	resp, err := h.Chat.Process(c.Request().Context(), req.UserID, req.Message)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]string{"response": resp})
}
