package service

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"

	"github.com/flowcenter/flowcenter/internal/domain/model"
	"github.com/flowcenter/flowcenter/internal/repository"
)

// fakeProfileRepo — заглушка ProfileRepository.
// Методы, не нужные проверяемым операциям, не реализованы.
type fakeProfileRepo struct {
	repository.ProfileRepository
	profiles map[string]*model.Profile
}

func (f *fakeProfileRepo) GetByID(_ context.Context, id string) (*model.Profile, error) {
	if p, ok := f.profiles[id]; ok {
		return p, nil
	}
	return nil, repository.ErrNotFound
}

func (f *fakeProfileRepo) UpdateCustomUserID(_ context.Context, id string, customID *string) error {
	p, ok := f.profiles[id]
	if !ok {
		return repository.ErrNotFound
	}
	p.CustomUserID = customID
	return nil
}

func strPtr(s string) *string { return &s }

func testProfileService(repo repository.ProfileRepository) *ProfileService {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	return NewProfileService(repo, nil, nil, "", logger)
}

func TestSetCustomUserID_FirstAssignmentWithoutConfirm(t *testing.T) {
	repo := &fakeProfileRepo{profiles: map[string]*model.Profile{
		"u1": {ID: "u1", Email: "u1@example.com"},
	}}
	svc := testProfileService(repo)

	// Первое назначение не перезаписывает ничего — confirm не нужен
	if err := svc.SetCustomUserID(context.Background(), "admin@example.com", "u1", strPtr("ext-1"), false); err != nil {
		t.Fatalf("SetCustomUserID() ошибка: %v", err)
	}
	if got := repo.profiles["u1"].CustomUserID; got == nil || *got != "ext-1" {
		t.Errorf("CustomUserID = %v, ожидалось ext-1", got)
	}
}

func TestSetCustomUserID_OverwriteRequiresConfirm(t *testing.T) {
	repo := &fakeProfileRepo{profiles: map[string]*model.Profile{
		"u1": {ID: "u1", Email: "u1@example.com", CustomUserID: strPtr("ext-1")},
	}}
	svc := testProfileService(repo)

	err := svc.SetCustomUserID(context.Background(), "admin@example.com", "u1", strPtr("ext-2"), false)
	if !errors.Is(err, ErrConfirmRequired) {
		t.Fatalf("ошибка = %v, ожидалось ErrConfirmRequired", err)
	}

	if err := svc.SetCustomUserID(context.Background(), "admin@example.com", "u1", strPtr("ext-2"), true); err != nil {
		t.Fatalf("SetCustomUserID() с confirm ошибка: %v", err)
	}
	if got := repo.profiles["u1"].CustomUserID; got == nil || *got != "ext-2" {
		t.Errorf("CustomUserID = %v, ожидалось ext-2", got)
	}
}

func TestSetCustomUserID_SameValueWithoutConfirm(t *testing.T) {
	repo := &fakeProfileRepo{profiles: map[string]*model.Profile{
		"u1": {ID: "u1", Email: "u1@example.com", CustomUserID: strPtr("ext-1")},
	}}
	svc := testProfileService(repo)

	// Повтор того же значения — не перезапись
	if err := svc.SetCustomUserID(context.Background(), "admin@example.com", "u1", strPtr("ext-1"), false); err != nil {
		t.Errorf("SetCustomUserID() того же значения ошибка: %v", err)
	}
}

func TestSetCustomUserID_ClearRequiresConfirm(t *testing.T) {
	repo := &fakeProfileRepo{profiles: map[string]*model.Profile{
		"u1": {ID: "u1", Email: "u1@example.com", CustomUserID: strPtr("ext-1")},
	}}
	svc := testProfileService(repo)

	err := svc.SetCustomUserID(context.Background(), "admin@example.com", "u1", nil, false)
	if !errors.Is(err, ErrConfirmRequired) {
		t.Fatalf("ошибка = %v, ожидалось ErrConfirmRequired", err)
	}

	if err := svc.SetCustomUserID(context.Background(), "admin@example.com", "u1", nil, true); err != nil {
		t.Fatalf("SetCustomUserID() сброса ошибка: %v", err)
	}
	if repo.profiles["u1"].CustomUserID != nil {
		t.Errorf("CustomUserID = %v, ожидался nil", *repo.profiles["u1"].CustomUserID)
	}
}

func TestSetCustomUserID_UnknownUser(t *testing.T) {
	svc := testProfileService(&fakeProfileRepo{profiles: map[string]*model.Profile{}})

	if err := svc.SetCustomUserID(context.Background(), "admin@example.com", "ghost", strPtr("x"), true); !errors.Is(err, ErrNotFound) {
		t.Errorf("ошибка = %v, ожидалось ErrNotFound", err)
	}
}
