package postgres

import (
	"context"
	"fmt"

	"github.com/Rrens/slidecraft/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog/log"
)

// FolderRepository handles folder data access
type FolderRepository struct {
	db *DB
}

// NewFolderRepository creates a new folder repository
func NewFolderRepository(db *DB) *FolderRepository {
	return &FolderRepository{db: db}
}

// Create creates a new folder
func (r *FolderRepository) Create(ctx context.Context, folder *domain.Folder) error {
	query := `
		INSERT INTO folders (id, owner_id, name, created_at)
		VALUES ($1, $2, $3, $4)
	`

	_, err := r.db.Pool.Exec(ctx, query,
		folder.ID,
		folder.OwnerID,
		folder.Name,
		folder.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create folder: %w", err)
	}

	return nil
}

// ListByOwner retrieves all folders of an owner, oldest first
func (r *FolderRepository) ListByOwner(ctx context.Context, ownerID string) ([]domain.Folder, error) {
	query := `
		SELECT id, owner_id, name, created_at
		FROM folders
		WHERE owner_id = $1
		ORDER BY created_at ASC
	`

	rows, err := r.db.Pool.Query(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list folders: %w", err)
	}
	defer rows.Close()

	folders := []domain.Folder{}
	for rows.Next() {
		var f domain.Folder
		if err := rows.Scan(&f.ID, &f.OwnerID, &f.Name, &f.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan folder: %w", err)
		}
		folders = append(folders, f)
	}

	return folders, nil
}

// Delete deletes a folder. Decks inside it are kept and lose their folder.
func (r *FolderRepository) Delete(ctx context.Context, id uuid.UUID, ownerID string) error {
	return r.db.WithTx(ctx, func(tx pgx.Tx) error {
		detached, err := tx.Exec(ctx,
			`UPDATE decks SET folder_id = NULL WHERE folder_id = $1 AND owner_id = $2`,
			id, ownerID,
		)
		if err != nil {
			return fmt.Errorf("failed to detach decks: %w", err)
		}

		tag, err := tx.Exec(ctx, `DELETE FROM folders WHERE id = $1 AND owner_id = $2`, id, ownerID)
		if err != nil {
			return fmt.Errorf("failed to delete folder: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return domain.ErrNotFound
		}

		if n := detached.RowsAffected(); n > 0 {
			log.Debug().Str("folder_id", id.String()).Int64("decks", n).Msg("Detached decks from deleted folder")
		}
		return nil
	})
}
