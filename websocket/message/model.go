package message

import (
	"encoding/json"
	"errors"

	"github.com/thesrcielos/PadelTracker/internal/apperrors"
	"github.com/thesrcielos/PadelTracker/internal/skill"
)

// Inbound message types.
const (
	SignIn             = "SIGN_IN"
	SignUp             = "SIGN_UP"
	SignOut            = "SIGN_OUT"
	SignInWithProvider = "SIGN_IN_WITH_PROVIDER"
	UpdateProfile      = "UPDATE_PROFILE"
	RefreshSession     = "REFRESH_SESSION"
	AddMatch           = "ADD_MATCH"
	UpdateSkill        = "UPDATE_SKILL"
	RecordAssessment   = "RECORD_ASSESSMENT"
	LoadAssessments    = "LOAD_ASSESSMENTS"
	Load               = "LOAD"
)

type Message struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type SignInPayload struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type SignUpPayload struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

type ProviderPayload struct {
	Provider   string `json:"provider"`
	RedirectTo string `json:"redirectTo"`
}

// UpdateSkillPayload carries either one rating or a whole batch.
type UpdateSkillPayload struct {
	Name   string         `json:"name"`
	Value  int            `json:"value"`
	Skills []skill.Rating `json:"skills"`
}

type RecordAssessmentPayload struct {
	Notes  string         `json:"notes"`
	Skills []skill.Rating `json:"skills"`
}

type ProviderRedirect struct {
	URL string `json:"url"`
}

// ErrorPayload tells the tab which request failed and why.
type ErrorPayload struct {
	Action  string         `json:"action"`
	Kind    apperrors.Kind `json:"type"`
	Message string         `json:"message"`
	Details string         `json:"details,omitempty"`
}

func NewError(action string, err error) ErrorPayload {
	p := ErrorPayload{Action: action, Kind: apperrors.KindOf(err), Message: err.Error()}
	var authErr *apperrors.AuthError
	var appErr *apperrors.AppError
	switch {
	case errors.As(err, &authErr):
		p.Message, p.Details = authErr.Message, authErr.Details
	case errors.As(err, &appErr):
		p.Kind, p.Message = apperrors.KindGeneral, appErr.Message
		if appErr.Code >= 500 {
			p.Kind = apperrors.KindServer
		}
	}
	return p
}
