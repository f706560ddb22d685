package adapter

import "context"

type InlineButton struct {
	Text string
	Data string
	URL  string
}

// AudioUpload describes one finished file being sent back to a chat.
type AudioUpload struct {
	Path      string
	FileName  string
	Caption   string
	Title     string
	Performer string
	Duration  int // seconds
	ThumbJPEG []byte
}

type TelegramBotAdapter interface {
	SendMessage(ctx context.Context, chatID int64, text string) error
	SendButtons(ctx context.Context, chatID int64, text string, rows [][]InlineButton) error
	// EditMessage rewrites a previously sent status message in place.
	EditMessage(ctx context.Context, chatID int64, messageID int, text string) error
	// SendAudio uploads the file; implementations must fail with
	// domain.ErrDeliveryFailed when the platform rejects the upload.
	SendAudio(ctx context.Context, chatID int64, up AudioUpload) error
}
