package storage

import (
	"context"
	"fmt"

	"github.com/claude/repsmith/internal/models"
)

// GetProfile retrieves the generation-relevant slice of a user account.
func (db *DB) GetProfile(ctx context.Context, userID int) (*models.UserProfile, error) {
	var p models.UserProfile
	var level string
	err := db.Pool.QueryRow(ctx,
		`SELECT id, fitness_level, created_at FROM user_profiles WHERE id = $1`,
		userID).Scan(&p.UserID, &level, &p.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("querying profile %d: %w", userID, err)
	}
	p.FitnessLevel = models.ParseFitnessLevel(level)
	return &p, nil
}

// UpsertProfile creates or updates a user profile.
func (db *DB) UpsertProfile(ctx context.Context, p models.UserProfile) error {
	_, err := db.Pool.Exec(ctx, `
		INSERT INTO user_profiles (id, fitness_level, created_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (id) DO UPDATE SET fitness_level = $2
	`, p.UserID, string(p.FitnessLevel))
	if err != nil {
		return fmt.Errorf("upserting profile %d: %w", p.UserID, err)
	}
	return nil
}
