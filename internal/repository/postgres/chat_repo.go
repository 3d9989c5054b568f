package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
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
	pool *pgxpool.Pool
}

func NewChatRepo(pool *pgxpool.Pool) *ChatRepo {
	return &ChatRepo{pool: pool}
}

func (r *ChatRepo) FindOrCreate(ctx context.Context, user1ID, user2ID uuid.UUID) (*domain.Chat, error) {
	var chat *domain.Chat
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		// The no-op update on conflict locks an existing row until commit,
		// so a concurrent delete cannot remove it before the select below.
		var id uuid.UUID
		err := tx.QueryRow(ctx, `
			INSERT INTO chats (id, user1_id, user2_id, last_seq, created_at, updated_at)
			VALUES ($1, $2, $3, 0, $4, $4)
			ON CONFLICT (user1_id, user2_id) DO UPDATE SET user1_id = EXCLUDED.user1_id
			RETURNING id`,
			uuid.New(), user1ID, user2ID, time.Now().UTC(),
		).Scan(&id)
		if err != nil {
			return fmt.Errorf("upsert chat: %w", err)
		}

		chat, err = r.scanChat(tx.QueryRow(ctx, chatSelect+` WHERE c.id = $1`, id))
		if err != nil {
			return err
		}
		if chat == nil {
			return fmt.Errorf("chat %s missing after upsert", id)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return chat, nil
}

func (r *ChatRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Chat, error) {
	return r.scanChat(r.pool.QueryRow(ctx, chatSelect+` WHERE c.id = $1`, id))
}

func (r *ChatRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.Chat, error) {
	rows, err := r.pool.Query(ctx,
		chatSelect+` WHERE c.user1_id = $1 OR c.user2_id = $1 ORDER BY c.updated_at DESC`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var chats []domain.Chat
	for rows.Next() {
		chat, err := r.scanChat(rows)
		if err != nil {
			return nil, err
		}
		chats = append(chats, *chat)
	}
	return chats, rows.Err()
}

func (r *ChatRepo) ListMessages(ctx context.Context, chatID uuid.UUID) ([]domain.ChatMessage, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT m.id, m.chat_id, m.sender_id, m.text, m.seq, m.created_at, u.name, u.avatar
		FROM chat_messages m
		JOIN users u ON m.sender_id = u.id
		WHERE m.chat_id = $1
		ORDER BY m.seq`, chatID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []domain.ChatMessage
	for rows.Next() {
		var m domain.ChatMessage
		if err := rows.Scan(
			&m.ID, &m.ChatID, &m.SenderID, &m.Text, &m.Seq, &m.CreatedAt,
			&m.SenderName, &m.SenderAvatar,
		); err != nil {
			return nil, err
		}
		messages = append(messages, m)
	}
	return messages, rows.Err()
}

func (r *ChatRepo) AppendMessage(ctx context.Context, msg *domain.ChatMessage) error {
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		// The row lock taken here orders concurrent appends to one chat.
		err := tx.QueryRow(ctx, `
			UPDATE chats
			SET last_seq = last_seq + 1, updated_at = GREATEST(updated_at, $1)
			WHERE id = $2
			RETURNING last_seq`,
			msg.CreatedAt, msg.ChatID,
		).Scan(&msg.Seq)
		if errors.Is(err, pgx.ErrNoRows) {
			return repository.ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("bump chat sequence: %w", err)
		}

		_, err = tx.Exec(ctx, `
			INSERT INTO chat_messages (id, chat_id, sender_id, text, seq, created_at)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			msg.ID, msg.ChatID, msg.SenderID, msg.Text, msg.Seq, msg.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("insert chat message: %w", err)
		}
		return nil
	})
}

func (r *ChatRepo) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM chats WHERE id = $1`, id)
	return err
}

func (r *ChatRepo) scanChat(row pgx.Row) (*domain.Chat, error) {
	var c domain.Chat
	var p1, p2 domain.PublicProfile
	err := row.Scan(
		&c.ID, &c.User1ID, &c.User2ID, &c.LastSeq, &c.CreatedAt, &c.UpdatedAt,
		&p1.Name, &p1.Avatar, &p1.Gamertag,
		&p2.Name, &p2.Avatar, &p2.Gamertag,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	p1.ID, p2.ID = c.User1ID, c.User2ID
	c.Participants = []domain.PublicProfile{p1, p2}
	return &c, nil
}
