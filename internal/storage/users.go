package storage

import (
	"context"

	"finance-manager/internal/models"
)

// CreateUser creates a new user with the given username and password hash.
func (db *DB) CreateUser(ctx context.Context, username, passwordHash string) (*models.User, error) {
	var id int64
	err := db.queryRow(ctx,
		"INSERT INTO users (username, password_hash) VALUES (?, ?) RETURNING id",
		username, passwordHash,
	).Scan(&id)
	if err != nil {
		return nil, classify("create user", err)
	}

	return db.GetUserByID(ctx, id)
}

// GetUserByID retrieves a user by ID.
func (db *DB) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	row := db.queryRow(ctx,
		"SELECT id, username, password_hash, created_at FROM users WHERE id = ?",
		id,
	)

	var u models.User
	if err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.CreatedAt); err != nil {
		return nil, classify("get user", err)
	}
	return &u, nil
}

// GetUserByUsername retrieves a user by username.
func (db *DB) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	row := db.queryRow(ctx,
		"SELECT id, username, password_hash, created_at FROM users WHERE username = ?",
		username,
	)

	var u models.User
	if err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.CreatedAt); err != nil {
		return nil, classify("get user by username", err)
	}
	return &u, nil
}

// DeleteUser removes a user. Their transactions and budgets go with them.
func (db *DB) DeleteUser(ctx context.Context, id int64) error {
	res, err := db.exec(ctx, "delete user", "DELETE FROM users WHERE id = ?", id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return classify("delete user", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// UserCount returns the number of users in the database.
func (db *DB) UserCount(ctx context.Context) (int, error) {
	var count int
	if err := db.queryRow(ctx, "SELECT COUNT(*) FROM users").Scan(&count); err != nil {
		return 0, classify("count users", err)
	}
	return count, nil
}
