package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/flowcenter/flowcenter/internal/domain/model"
)

// ProfileRepository — интерфейс CRUD для таблицы profiles.
type ProfileRepository interface {
	// Create создаёт профиль. При дублировании email возвращает ErrConflict.
	Create(ctx context.Context, p *model.Profile) error
	// GetByID возвращает профиль по UUID.
	GetByID(ctx context.Context, id string) (*model.Profile, error)
	// GetByEmail возвращает профиль по email.
	GetByEmail(ctx context.Context, email string) (*model.Profile, error)
	// UpdateFullName обновляет отображаемое имя.
	UpdateFullName(ctx context.Context, id, fullName string) error
	// UpdateEmail обновляет email. При дублировании возвращает ErrConflict.
	UpdateEmail(ctx context.Context, id, email string) error
	// UpdateRole обновляет роль профиля.
	UpdateRole(ctx context.Context, id, role string) error
	// UpdateCustomUserID устанавливает пользовательский идентификатор (nil — сброс).
	UpdateCustomUserID(ctx context.Context, id string, customUserID *string) error
	// UpdatePasswordHash обновляет bcrypt-хэш пароля.
	UpdatePasswordHash(ctx context.Context, id, passwordHash string) error
	// List возвращает все профили, отсортированные по email.
	// Полный скан без пагинации: инсталляции малого масштаба.
	List(ctx context.Context) ([]*model.Profile, error)
}

// profileRepo — реализация ProfileRepository.
type profileRepo struct {
	db DBTX
}

// NewProfileRepository создаёт репозиторий профилей.
func NewProfileRepository(db DBTX) ProfileRepository {
	return &profileRepo{db: db}
}

const profileColumns = `id, email, full_name, role, custom_user_id, password_hash, created_at, updated_at`

func (r *profileRepo) Create(ctx context.Context, p *model.Profile) error {
	query := `
		INSERT INTO profiles (email, full_name, role, password_hash)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at`

	err := r.db.QueryRow(ctx, query,
		p.Email, p.FullName, p.Role, p.PasswordHash,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrConflict
		}
		return fmt.Errorf("ошибка создания профиля: %w", err)
	}
	return nil
}

func (r *profileRepo) GetByID(ctx context.Context, id string) (*model.Profile, error) {
	query := fmt.Sprintf(`SELECT %s FROM profiles WHERE id = $1`, profileColumns)
	return r.scanOne(r.db.QueryRow(ctx, query, id))
}

func (r *profileRepo) GetByEmail(ctx context.Context, email string) (*model.Profile, error) {
	query := fmt.Sprintf(`SELECT %s FROM profiles WHERE email = $1`, profileColumns)
	return r.scanOne(r.db.QueryRow(ctx, query, email))
}

func (r *profileRepo) scanOne(row pgx.Row) (*model.Profile, error) {
	p := &model.Profile{}
	err := row.Scan(
		&p.ID, &p.Email, &p.FullName, &p.Role,
		&p.CustomUserID, &p.PasswordHash, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("ошибка получения профиля: %w", err)
	}
	return p, nil
}

func (r *profileRepo) UpdateFullName(ctx context.Context, id, fullName string) error {
	return r.update(ctx, id, `UPDATE profiles SET full_name = $2, updated_at = now() WHERE id = $1`, fullName)
}

func (r *profileRepo) UpdateEmail(ctx context.Context, id, email string) error {
	err := r.update(ctx, id, `UPDATE profiles SET email = $2, updated_at = now() WHERE id = $1`, email)
	if err != nil && isUniqueViolation(err) {
		return ErrConflict
	}
	return err
}

func (r *profileRepo) UpdateRole(ctx context.Context, id, role string) error {
	return r.update(ctx, id, `UPDATE profiles SET role = $2, updated_at = now() WHERE id = $1`, role)
}

func (r *profileRepo) UpdateCustomUserID(ctx context.Context, id string, customUserID *string) error {
	return r.update(ctx, id, `UPDATE profiles SET custom_user_id = $2, updated_at = now() WHERE id = $1`, customUserID)
}

func (r *profileRepo) UpdatePasswordHash(ctx context.Context, id, passwordHash string) error {
	return r.update(ctx, id, `UPDATE profiles SET password_hash = $2, updated_at = now() WHERE id = $1`, passwordHash)
}

func (r *profileRepo) update(ctx context.Context, id, query string, arg any) error {
	tag, err := r.db.Exec(ctx, query, id, arg)
	if err != nil {
		return fmt.Errorf("ошибка обновления профиля: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *profileRepo) List(ctx context.Context) ([]*model.Profile, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM profiles
		ORDER BY email`, profileColumns)

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения списка профилей: %w", err)
	}
	defer rows.Close()

	var result []*model.Profile
	for rows.Next() {
		p := &model.Profile{}
		if err := rows.Scan(
			&p.ID, &p.Email, &p.FullName, &p.Role,
			&p.CustomUserID, &p.PasswordHash, &p.CreatedAt, &p.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("ошибка сканирования профиля: %w", err)
		}
		result = append(result, p)
	}
	return result, rows.Err()
}
