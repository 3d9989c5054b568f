package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/vedran77/lobby/internal/domain"
	"github.com/vedran77/lobby/internal/repository"
)

const chatSelect = `
	SELECT c.id, c.user1_id, c.user2_id, c.last_seq, c.created_at, c.updated_at,
		u1.name, u1.avatar, u1.gamertag,
		u2.name, u2.avatar, u2.gamertag
	FROM chats c
	JOIN users u1 ON c.user1_id = u1.id
	JOIN users u2 ON c.user2_id = u2.id`

type ChatRepo struct {
	db *sql.DB
}

func (r *ChatRepo) FindOrCreate(ctx context.Context, user1ID, user2ID uuid.UUID) (*domain.Chat, error) {
	// Transactions begin immediate, so the write lock is held from the insert
	// through the select.
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin find or create: %w", err)
	}
	defer tx.Rollback()

	now := toMillis(time.Now())
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO chats (id, user1_id, user2_id, last_seq, created_at, updated_at)
		VALUES (?, ?, ?, 0, ?, ?)
		ON CONFLICT (user1_id, user2_id) DO NOTHING`,
		uuid.New(), user1ID, user2ID, now, now,
	); err != nil {
		return nil, fmt.Errorf("insert chat: %w", err)
	}

	chat, err := scanChat(tx.QueryRowContext(ctx, chatSelect+` WHERE c.user1_id = ? AND c.user2_id = ?`, user1ID, user2ID))
	if err != nil {
		return nil, err
	}
	if chat == nil {
		return nil, fmt.Errorf("chat for %s/%s missing after insert", user1ID, user2ID)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit find or create: %w", err)
	}
	return chat, nil
}

func (r *ChatRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Chat, error) {
	return scanChat(r.db.QueryRowContext(ctx, chatSelect+` WHERE c.id = ?`, id))
}

func (r *ChatRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.Chat, error) {
	rows, err := r.db.QueryContext(ctx,
		chatSelect+` WHERE c.user1_id = ? OR c.user2_id = ? ORDER BY c.updated_at DESC`,
		userID, userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var chats []domain.Chat
	for rows.Next() {
		chat, err := scanChat(rows)
		if err != nil {
			return nil, err
		}
		chats = append(chats, *chat)
	}
	return chats, rows.Err()
}

func (r *ChatRepo) ListMessages(ctx context.Context, chatID uuid.UUID) ([]domain.ChatMessage, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT m.id, m.chat_id, m.sender_id, m.text, m.seq, m.created_at, u.name, u.avatar
		FROM chat_messages m
		JOIN users u ON m.sender_id = u.id
		WHERE m.chat_id = ?
		ORDER BY m.seq`, chatID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []domain.ChatMessage
	for rows.Next() {
		var (
			m         domain.ChatMessage
			createdAt int64
		)
		if err := rows.Scan(
			&m.ID, &m.ChatID, &m.SenderID, &m.Text, &m.Seq, &createdAt,
			&m.SenderName, &m.SenderAvatar,
		); err != nil {
			return nil, err
		}
		m.CreatedAt = fromMillis(createdAt)
		messages = append(messages, m)
	}
	return messages, rows.Err()
}

func (r *ChatRepo) AppendMessage(ctx context.Context, msg *domain.ChatMessage) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin append: %w", err)
	}
	defer tx.Rollback()

	err = tx.QueryRowContext(ctx, `
		UPDATE chats
		SET last_seq = last_seq + 1, updated_at = MAX(updated_at, ?)
		WHERE id = ?
		RETURNING last_seq`,
		toMillis(msg.CreatedAt), msg.ChatID,
	).Scan(&msg.Seq)
	if errors.Is(err, sql.ErrNoRows) {
		return repository.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("bump chat sequence: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO chat_messages (id, chat_id, sender_id, text, seq, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		msg.ID, msg.ChatID, msg.SenderID, msg.Text, msg.Seq, toMillis(msg.CreatedAt),
	); err != nil {
		return fmt.Errorf("insert chat message: %w", err)
	}
	return tx.Commit()
}

func (r *ChatRepo) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM chats WHERE id = ?`, id)
	return err
}

func scanChat(row rowScanner) (*domain.Chat, error) {
	var (
		c                    domain.Chat
		p1, p2               domain.PublicProfile
		createdAt, updatedAt int64
	)
	err := row.Scan(
		&c.ID, &c.User1ID, &c.User2ID, &c.LastSeq, &createdAt, &updatedAt,
		&p1.Name, &p1.Avatar, &p1.Gamertag,
		&p2.Name, &p2.Avatar, &p2.Gamertag,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	c.CreatedAt, c.UpdatedAt = fromMillis(createdAt), fromMillis(updatedAt)
	p1.ID, p2.ID = c.User1ID, c.User2ID
	c.Participants = []domain.PublicProfile{p1, p2}
	return &c, nil
}
