package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/user/attendance-service/internal/repository"
)

// StaticCaptcha answers the login CAPTCHA with text solved beforehand, as the
// API does. It cannot wait for a human, so manual steps fail.
type StaticCaptcha string

func (s StaticCaptcha) SolveCaptcha(_ context.Context, _ []byte) (string, error) {
	text := strings.TrimSpace(string(s))
	if text == "" {
		return "", repository.ErrCaptchaRequired
	}
	return text, nil
}

func (StaticCaptcha) AwaitManualStep(_ context.Context, instruction string) error {
	return fmt.Errorf("%w: %s", repository.ErrManualStepRequired, instruction)
}
