package usecase

import (
	"context"
	"errors"

	"github.com/NasaVasa/coinalert/internal/domain"
)

var ErrUserNotRegistered = errors.New("user not registered")

// IdentityUsecase maps a Telegram account to the submitter id the alert API
// knows. Accounts without an explicit mapping use the fallback id when one
// is configured.
type IdentityUsecase struct {
	submitters map[int64]domain.SubmitterID
	fallback   domain.SubmitterID
}

func NewIdentityUsecase(submitters map[int64]int64, fallback int64) *IdentityUsecase {
	mapped := make(map[int64]domain.SubmitterID, len(submitters))
	for telegramID, submitterID := range submitters {
		mapped[telegramID] = domain.SubmitterID(submitterID)
	}
	return &IdentityUsecase{submitters: mapped, fallback: domain.SubmitterID(fallback)}
}

func (u *IdentityUsecase) Resolve(ctx context.Context, telegramUserID int64, username string) (*domain.User, error) {
	submitter, ok := u.submitters[telegramUserID]
	if !ok {
		if u.fallback <= 0 {
			return nil, ErrUserNotRegistered
		}
		submitter = u.fallback
	}
	return &domain.User{
		TelegramUserID: telegramUserID,
		Username:       username,
		SubmitterID:    submitter,
	}, nil
}
