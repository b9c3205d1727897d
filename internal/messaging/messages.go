package messaging

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/labstack/echo/v4"

	"github.com/renthub-cl/renthub/internal/alerts"
	"github.com/renthub-cl/renthub/internal/db"
)

// SendMessage - a thread participant sends a message on a maintenance request
func SendMessage(c echo.Context) error {
	userID, ok := c.Get("user_id").(string)
	if !ok || userID == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	requestID := c.Param("id")
	if requestID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "missing request id"})
	}

	var body struct {
		Content string `json:"content"`
	}
	if err := c.Bind(&body); err != nil || body.Content == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid payload"})
	}

	requesterID, providerUserID, err := threadParties(context.Background(), requestID)
	if err != nil {
		return notFoundOrFail(c, err)
	}

	recipientID := otherParty(userID, requesterID, providerUserID)
	if recipientID == "" && !isAdmin(c) {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "not a participant in this request"})
	}
	if recipientID == "" {
		// Admin writing into a thread addresses the requester
		recipientID = requesterID
	}

	msgID := uuid.New().String()
	var createdAt time.Time
	err = db.Conn.QueryRow(context.Background(),
		`INSERT INTO messages (id, request_id, sender_id, recipient_id, content)
		 VALUES ($1, $2, $3, $4, $5) RETURNING created_at`,
		msgID, requestID, userID, recipientID, body.Content,
	).Scan(&createdAt)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to send message"})
	}

	// Broadcast new message event to WS subscribers
	BroadcastNewMessage(requestID, echo.Map{
		"id":           msgID,
		"request_id":   requestID,
		"sender_id":    userID,
		"recipient_id": recipientID,
		"content":      body.Content,
		"created_at":   createdAt.UTC().Format(time.RFC3339),
	})

	// In-app notification for recipient
	notifTitle := "New message on your maintenance request"
	ref := requestID
	meta := "{}"
	_ = alerts.CreateNotification(recipientID, "message:new", notifTitle, body.Content, &ref, &meta)

	// Email notification (best-effort)
	var recipientEmail string
	_ = db.Conn.QueryRow(context.Background(), `SELECT email FROM users WHERE id = $1`, recipientID).Scan(&recipientEmail)
	if recipientEmail != "" {
		_ = alerts.EnqueueMessageNew(requestID, userID, recipientID, recipientEmail, body.Content)
	}

	return c.JSON(http.StatusOK, echo.Map{"message_id": msgID})
}

// ListMessages - get the conversation for a maintenance request
func ListMessages(c echo.Context) error {
	userID, ok := c.Get("user_id").(string)
	if !ok || userID == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	requestID := c.Param("id")
	if requestID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "missing request id"})
	}

	requesterID, providerUserID, err := threadParties(context.Background(), requestID)
	if err != nil {
		return notFoundOrFail(c, err)
	}
	if !canViewThread(c, userID, requesterID, providerUserID) {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "not a participant in this request"})
	}

	// Optional since filter for incremental fetches
	sinceStr := c.QueryParam("since")
	var rows pgx.Rows
	if sinceStr != "" {
		sinceTime, perr := time.Parse(time.RFC3339, sinceStr)
		if perr != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid since timestamp, use RFC3339"})
		}
		rows, err = db.Conn.Query(context.Background(),
			`SELECT id, sender_id, recipient_id, content, created_at, read_at
			 FROM messages WHERE request_id = $1 AND created_at > $2 ORDER BY created_at ASC`, requestID, sinceTime,
		)
	} else {
		rows, err = db.Conn.Query(context.Background(),
			`SELECT id, sender_id, recipient_id, content, created_at, read_at
			 FROM messages WHERE request_id = $1 ORDER BY created_at ASC`, requestID,
		)
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to list messages"})
	}
	defer rows.Close()

	type message struct {
		ID          string      `json:"id"`
		SenderID    string      `json:"sender_id"`
		RecipientID string      `json:"recipient_id"`
		Content     string      `json:"content"`
		CreatedAt   string      `json:"created_at"`
		ReadAt      interface{} `json:"read_at"`
	}

	var msgs []message
	for rows.Next() {
		var m message
		var readAt sql.NullTime
		var createdAt sql.NullTime
		if err := rows.Scan(&m.ID, &m.SenderID, &m.RecipientID, &m.Content, &createdAt, &readAt); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to parse record"})
		}
		if createdAt.Valid {
			m.CreatedAt = createdAt.Time.UTC().Format(time.RFC3339)
		}
		if readAt.Valid {
			m.ReadAt = readAt.Time.UTC().Format(time.RFC3339)
		} else {
			m.ReadAt = nil
		}
		msgs = append(msgs, m)
	}

	return c.JSON(http.StatusOK, echo.Map{"messages": msgs})
}

// UnreadCount - unread count for the current user in a request thread
func UnreadCount(c echo.Context) error {
	userID, ok := c.Get("user_id").(string)
	if !ok || userID == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	requestID := c.Param("id")
	if requestID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "missing request id"})
	}

	requesterID, providerUserID, err := threadParties(context.Background(), requestID)
	if err != nil {
		return notFoundOrFail(c, err)
	}
	if !canViewThread(c, userID, requesterID, providerUserID) {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "not a participant in this request"})
	}

	var count int64
	err = db.Conn.QueryRow(context.Background(),
		`SELECT COUNT(*) FROM messages WHERE request_id = $1 AND recipient_id = $2 AND read_at IS NULL`,
		requestID, userID,
	).Scan(&count)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to compute unread count"})
	}

	return c.JSON(http.StatusOK, echo.Map{"unread": count})
}

// MarkMessageRead - recipient marks a specific message as read
func MarkMessageRead(c echo.Context) error {
	userID, ok := c.Get("user_id").(string)
	if !ok || userID == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	requestID := c.Param("id")
	msgID := c.Param("message_id")
	if requestID == "" || msgID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "missing request or message id"})
	}

	// Ensure message belongs to the request and user is recipient
	var recipientID string
	err := db.Conn.QueryRow(context.Background(),
		`SELECT recipient_id FROM messages WHERE id = $1 AND request_id = $2`, msgID, requestID,
	).Scan(&recipientID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "message not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to fetch message"})
	}
	if recipientID != userID {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "not the recipient"})
	}

	var readTS time.Time
	err = db.Conn.QueryRow(context.Background(),
		`UPDATE messages SET read_at = NOW() WHERE id = $1 AND recipient_id = $2 RETURNING read_at`, msgID, userID,
	).Scan(&readTS)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to mark read"})
	}

	// Broadcast read event
	BroadcastMessageRead(requestID, echo.Map{
		"message_id": msgID,
		"request_id": requestID,
		"user_id":    userID,
		"read_at":    readTS.UTC().Format(time.RFC3339),
	})

	return c.JSON(http.StatusOK, echo.Map{"message_id": msgID, "read_at": readTS.UTC().Format(time.RFC3339)})
}
