package httpserver

import "context"

type ctxKey int

const (
	confirmKey ctxKey = iota
	textKey
)

func withConfirm(ctx context.Context, ok bool) context.Context {
	return context.WithValue(ctx, confirmKey, ok)
}

func withText(ctx context.Context, text string) context.Context {
	return context.WithValue(ctx, textKey, text)
}

// Interactor answers the core's questions from the request itself: confirmations
// come from the confirm query flag and text prompts from the request body. A request
// that carries neither declines.
type Interactor struct{}

func (Interactor) Confirm(ctx context.Context, _ string) (bool, error) {
	ok, _ := ctx.Value(confirmKey).(bool)
	return ok, nil
}

func (Interactor) PromptText(ctx context.Context, _, _ string) (string, bool, error) {
	text, ok := ctx.Value(textKey).(string)
	return text, ok, nil
}
