package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/teachershub/backend/core/user"
)

type dbUser struct {
	ID           string      `db:"id"`
	FirstName    null.String `db:"first_name"`
	LastName     null.String `db:"last_name"`
	Username     string      `db:"username"`
	Email        string      `db:"email"`
	Role         string      `db:"role"`
	IsActive     null.Bool   `db:"is_active"`
	PasswordHash null.Bytes  `db:"password_hash"`
	CreatedAt    null.Time   `db:"created_at"`
	UpdatedAt    null.Time   `db:"updated_at"`
	LastLogin    null.Time   `db:"last_login"`
}

func (u dbUser) unpack() user.User {
	return user.User{
		ID:           u.ID,
		FirstName:    u.FirstName.String,
		LastName:     u.LastName.String,
		Username:     u.Username,
		Email:        u.Email,
		Role:         user.Role(u.Role),
		IsActive:     u.IsActive.Ptr(),
		PasswordHash: u.PasswordHash.Bytes,
		CreatedAt:    u.CreatedAt.Time,
		UpdatedAt:    u.UpdatedAt.Time,
		LastLogin:    u.LastLogin.Time,
	}
}

const userColumns = `id, first_name, last_name, username, email, role, is_active, password_hash, created_at, updated_at, last_login`

type userRepository struct {
	db *sqlx.DB
}

var _ user.Repository = (*userRepository)(nil)

func NewUserRepository(db *sqlx.DB) *userRepository {
	return &userRepository{db: db}
}

// trapNoRowsErr maps psql "no rows" err to user.ErrNotFound
func trapNoRowsErr(err error, msg string) error {
	if err == sql.ErrNoRows {
		return user.ErrNotFound
	}
	return errors.Wrap(err, msg)
}

func (repo userRepository) CheckUsernameUniqueness(ctx context.Context, username, email string, excludedUsers ...user.User) error {
	query := `SELECT username, email FROM "user" WHERE username = ? OR email = ?`
	args := []interface{}{username, email}

	if len(excludedUsers) > 0 {
		ids := make([]string, 0, len(excludedUsers))
		for _, usr := range excludedUsers {
			ids = append(ids, usr.ID)
		}
		var err error
		query, args, err = sqlx.In(
			`SELECT username, email FROM "user" WHERE (username = ? OR email = ?) AND id NOT IN (?)`,
			username, email, ids,
		)
		if err != nil {
			return errors.Wrap(err, "expanding uniqueness query")
		}
	}

	var match struct {
		Username string `db:"username"`
		Email    string `db:"email"`
	}
	if err := repo.db.GetContext(ctx, &match, repo.db.Rebind(query), args...); err != nil {
		if err == sql.ErrNoRows {
			return nil
		}
		return errors.Wrap(err, "checking user uniqueness")
	}
	if match.Username == username {
		return user.ErrUsernameExists
	}
	return user.ErrEmailExists
}

func (repo userRepository) CreateUser(ctx context.Context, usr user.User) (user.User, error) {
	usr.ID = uuid.New().String()
	_, err := repo.db.ExecContext(
		ctx,
		`INSERT INTO "user" (`+userColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		usr.ID,
		null.NewString(usr.FirstName, usr.FirstName != ""),
		null.NewString(usr.LastName, usr.LastName != ""),
		usr.Username,
		usr.Email,
		string(usr.Role),
		null.BoolFromPtr(usr.IsActive),
		null.BytesFrom(usr.PasswordHash),
		null.NewTime(usr.CreatedAt.UTC(), !usr.CreatedAt.IsZero()),
		null.NewTime(usr.UpdatedAt.UTC(), !usr.UpdatedAt.IsZero()),
		null.NewTime(usr.LastLogin.UTC(), !usr.LastLogin.IsZero()),
	)
	if err != nil {
		return user.User{}, errors.Wrap(err, "inserting user")
	}
	return usr, nil
}

func (repo userRepository) GetUserByID(ctx context.Context, id string) (user.User, error) {
	if _, err := uuid.Parse(id); err != nil {
		return user.User{}, user.ErrNotFound
	}
	var usr dbUser
	if err := repo.db.GetContext(ctx, &usr, `SELECT `+userColumns+` FROM "user" WHERE id = $1`, id); err != nil {
		return user.User{}, trapNoRowsErr(err, "finding user by ID")
	}
	return usr.unpack(), nil
}

func (repo userRepository) GetUserByUsername(ctx context.Context, username string) (user.User, error) {
	var usr dbUser
	if err := repo.db.GetContext(ctx, &usr, `SELECT `+userColumns+` FROM "user" WHERE username = $1`, username); err != nil {
		return user.User{}, trapNoRowsErr(err, "finding user by username")
	}
	return usr.unpack(), nil
}

func (repo userRepository) GetUserByUsernameOrEmail(ctx context.Context, username string) (user.User, error) {
	var usr dbUser
	err := repo.db.GetContext(
		ctx, &usr,
		`SELECT `+userColumns+` FROM "user" WHERE username = $1 OR email = $1`,
		username,
	)
	if err != nil {
		return user.User{}, trapNoRowsErr(err, "finding user")
	}
	return usr.unpack(), nil
}

func (repo userRepository) UpdateOrCreateUser(ctx context.Context, usr user.User) (user.User, error) {
	if usr.ID == "" {
		now := time.Now().UTC()
		usr.CreatedAt = now
		usr.UpdatedAt = now
		return repo.CreateUser(ctx, usr)
	}

	usr.UpdatedAt = time.Now().UTC()
	res, err := repo.db.ExecContext(
		ctx,
		`UPDATE "user"
		 SET first_name = $1, last_name = $2, username = $3, email = $4, role = $5,
		     is_active = $6, password_hash = $7, updated_at = $8
		 WHERE id = $9`,
		null.NewString(usr.FirstName, usr.FirstName != ""),
		null.NewString(usr.LastName, usr.LastName != ""),
		usr.Username,
		usr.Email,
		string(usr.Role),
		null.BoolFromPtr(usr.IsActive),
		null.BytesFrom(usr.PasswordHash),
		usr.UpdatedAt,
		usr.ID,
	)
	if err != nil {
		return user.User{}, errors.Wrap(err, "updating user")
	}
	cnt, err := res.RowsAffected()
	if err != nil {
		return user.User{}, errors.Wrap(err, "updating user")
	}
	if cnt == 0 {
		return user.User{}, user.ErrNotFound
	}
	return usr, nil
}

func (repo userRepository) UpdateLastLogin(ctx context.Context, usr user.User) (user.User, error) {
	res, err := repo.db.ExecContext(
		ctx,
		`UPDATE "user" SET last_login = $1, updated_at = $2 WHERE id = $3`,
		usr.LastLogin.UTC(), time.Now().UTC(), usr.ID,
	)
	if err != nil {
		return user.User{}, errors.Wrap(err, "updating last login")
	}
	cnt, err := res.RowsAffected()
	if err != nil {
		return user.User{}, errors.Wrap(err, "updating last login")
	}
	if cnt == 0 {
		return user.User{}, user.ErrNotFound
	}
	return usr, nil
}
