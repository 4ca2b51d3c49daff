package db

import (
	"context"

	"github.com/karac38/gdevapps-portal/internal/model"
)

func (r *repository) GetRootFolder(ctx context.Context, userID string) (*model.Folder, error) {
	query := `SELECT id, google_file_id, folder_name, parent_folder_id, created_by FROM folders
			  WHERE created_by = ? AND parent_folder_id IS NULL LIMIT 1`

	var f model.Folder
	err := r.db.QueryRowContext(ctx, query, userID).
		Scan(&f.ID, &f.GoogleFileID, &f.FolderName, &f.ParentFolderID, &f.CreatedBy)
	if err != nil {
		return nil, notFound(err, "root folder")
	}
	return &f, nil
}

func (r *repository) GetInnerFolder(ctx context.Context, rootFolderID int64, name string) (*model.Folder, error) {
	query := `SELECT id, google_file_id, folder_name, parent_folder_id, created_by FROM folders
			  WHERE parent_folder_id = ? AND folder_name = ? LIMIT 1`

	var f model.Folder
	err := r.db.QueryRowContext(ctx, query, rootFolderID, name).
		Scan(&f.ID, &f.GoogleFileID, &f.FolderName, &f.ParentFolderID, &f.CreatedBy)
	if err != nil {
		return nil, notFound(err, "inner folder")
	}
	return &f, nil
}

func (r *repository) CreateFolder(ctx context.Context, f *model.Folder) error {
	query := `INSERT INTO folders (google_file_id, folder_name, parent_folder_id, created_by) VALUES (?, ?, ?, ?)`

	res, err := r.db.ExecContext(ctx, query, f.GoogleFileID, f.FolderName, f.ParentFolderID, f.CreatedBy)
	if err != nil {
		return err
	}

	f.ID, err = res.LastInsertId()
	return err
}

// DeleteFolder removes a folder record and, for a root folder, its inner folders.
func (r *repository) DeleteFolder(ctx context.Context, id int64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM folders WHERE parent_folder_id = ?`, id); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM folders WHERE id = ?`, id); err != nil {
		return err
	}

	return tx.Commit()
}
