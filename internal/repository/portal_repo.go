package repository

import (
	"context"

	"github.com/user/attendance-service/internal/entity"
)

// Interaction is the human in the loop of a portal session.
type Interaction interface {
	// SolveCaptcha returns the text shown in the CAPTCHA image (PNG).
	SolveCaptcha(ctx context.Context, image []byte) (string, error)
	// AwaitManualStep asks a human to perform instruction in the browser and
	// returns once it is done. Implementations that cannot wait return
	// ErrManualStepRequired.
	AwaitManualStep(ctx context.Context, instruction string) error
}

// FetchOptions tunes what a portal session captures.
type FetchOptions struct {
	Screenshots bool
}

// PortalRepository defines the contract for driving the student portal.
type PortalRepository interface {
	// FetchCaptcha opens a login page and returns its CAPTCHA image.
	FetchCaptcha(ctx context.Context, rollNo string) (*entity.Captcha, error)
	// FetchFrames logs in, submits the attendance form for term and returns
	// the markup of every frame afterwards.
	FetchFrames(ctx context.Context, creds entity.Credentials, term entity.Term, in Interaction, opts FetchOptions) ([]entity.Frame, error)
}
