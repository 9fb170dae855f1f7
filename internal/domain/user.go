package domain

// SubmitterID identifies the account alerts are created for. It is opaque to
// the workflow and stays constant for a session.
type SubmitterID int64

type User struct {
	TelegramUserID int64
	Username       string
	SubmitterID    SubmitterID
}
