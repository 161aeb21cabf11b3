package repositories

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/studyhub-il/studyhub/internal/app/models"
	"github.com/studyhub-il/studyhub/internal/pkg/apperrors"
	"github.com/studyhub-il/studyhub/internal/pkg/dberrors"
	"github.com/studyhub-il/studyhub/internal/pkg/logger"
)

// MessageRepository handles direct messages
type MessageRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewMessageRepository creates a new MessageRepository
func NewMessageRepository(db *pgxpool.Pool) *MessageRepository {
	return &MessageRepository{db: db, sb: statementBuilder()}
}

// Create stores a message
func (r *MessageRepository) Create(ctx context.Context, m *models.Message) error {
	sql, args, err := r.sb.Insert("messages").
		Columns("sender_id", "receiver_id", "content").
		Values(m.SenderID, m.ReceiverID, m.Content).
		Suffix("RETURNING id, is_read, created_at").
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building create message SQL")
		return fmt.Errorf("failed to build create message query: %w", err)
	}
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&m.ID, &m.IsRead, &m.CreatedAt); err != nil {
		if dberrors.IsForeignKeyError(err) {
			return apperrors.ErrUserNotFound
		}
		logger.Error().Err(err).Int64("senderID", m.SenderID).Msg("Error creating message")
		return fmt.Errorf("error creating message: %w", err)
	}
	return nil
}

// Conversation returns all messages between two users, oldest first
func (r *MessageRepository) Conversation(ctx context.Context, userID, partnerID int64) ([]models.Message, error) {
	rows, err := r.db.Query(ctx, `
		SELECT m.id, m.sender_id, m.receiver_id, m.content, m.is_read, m.created_at,
		       su.full_name, su.profile_picture, ru.full_name, ru.profile_picture
		FROM messages m
		JOIN users su ON su.id = m.sender_id
		JOIN users ru ON ru.id = m.receiver_id
		WHERE (m.sender_id = $1 AND m.receiver_id = $2) OR (m.sender_id = $2 AND m.receiver_id = $1)
		ORDER BY m.created_at ASC, m.id ASC`, userID, partnerID)
	if err != nil {
		logger.Error().Err(err).Int64("userID", userID).Msg("Error loading conversation")
		return nil, fmt.Errorf("error loading conversation: %w", err)
	}
	defer rows.Close()

	messages := make([]models.Message, 0)
	for rows.Next() {
		var (
			m                      models.Message
			senderName, recvName   string
			senderImage, recvImage *string
		)
		if err := rows.Scan(&m.ID, &m.SenderID, &m.ReceiverID, &m.Content, &m.IsRead, &m.CreatedAt,
			&senderName, &senderImage, &recvName, &recvImage); err != nil {
			logger.Error().Err(err).Msg("Error scanning message row")
			return nil, err
		}
		m.Sender = userRef(m.SenderID, senderName, senderImage)
		m.Receiver = userRef(m.ReceiverID, recvName, recvImage)
		messages = append(messages, m)
	}
	return messages, rows.Err()
}

// MarkConversationRead marks messages from partner to user as read
func (r *MessageRepository) MarkConversationRead(ctx context.Context, userID, partnerID int64) error {
	_, err := r.db.Exec(ctx,
		"UPDATE messages SET is_read = TRUE WHERE receiver_id = $1 AND sender_id = $2 AND NOT is_read",
		userID, partnerID)
	if err != nil {
		logger.Error().Err(err).Int64("userID", userID).Msg("Error marking messages read")
		return fmt.Errorf("error marking messages read: %w", err)
	}
	return nil
}

// Conversations groups the user's messages by partner, most recent first
func (r *MessageRepository) Conversations(ctx context.Context, userID int64) ([]models.Conversation, error) {
	rows, err := r.db.Query(ctx, `
		WITH threads AS (
			SELECT DISTINCT ON (partner_id) *
			FROM (
				SELECT m.*, CASE WHEN m.sender_id = $1 THEN m.receiver_id ELSE m.sender_id END AS partner_id
				FROM messages m
				WHERE m.sender_id = $1 OR m.receiver_id = $1
			) x
			ORDER BY partner_id, created_at DESC, id DESC
		)
		SELECT t.id, t.sender_id, t.receiver_id, t.content, t.is_read, t.created_at,
		       u.id, u.full_name, u.profile_picture,
		       (SELECT COUNT(*) FROM messages um
		         WHERE um.sender_id = t.partner_id AND um.receiver_id = $1 AND NOT um.is_read)
		FROM threads t
		JOIN users u ON u.id = t.partner_id
		ORDER BY t.created_at DESC, t.id DESC`, userID)
	if err != nil {
		logger.Error().Err(err).Int64("userID", userID).Msg("Error listing conversations")
		return nil, fmt.Errorf("error listing conversations: %w", err)
	}
	defer rows.Close()

	conversations := make([]models.Conversation, 0)
	for rows.Next() {
		var (
			c models.Conversation
			m models.Message
		)
		if err := rows.Scan(&m.ID, &m.SenderID, &m.ReceiverID, &m.Content, &m.IsRead, &m.CreatedAt,
			&c.Partner.ID, &c.Partner.FullName, &c.Partner.ProfilePicture, &c.UnreadCount); err != nil {
			logger.Error().Err(err).Msg("Error scanning conversation row")
			return nil, err
		}
		c.LastMessage = &m
		conversations = append(conversations, c)
	}
	return conversations, rows.Err()
}

// UnreadCount counts unread messages addressed to the user
func (r *MessageRepository) UnreadCount(ctx context.Context, userID int64) (int64, error) {
	var n int64
	if err := r.db.QueryRow(ctx,
		"SELECT COUNT(*) FROM messages WHERE receiver_id = $1 AND NOT is_read", userID).Scan(&n); err != nil {
		logger.Error().Err(err).Int64("userID", userID).Msg("Error counting unread messages")
		return 0, fmt.Errorf("error counting unread messages: %w", err)
	}
	return n, nil
}
