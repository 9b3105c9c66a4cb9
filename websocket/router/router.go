package router

import (
	"context"

	"github.com/thesrcielos/PadelTracker/internal/apperrors"
	"github.com/thesrcielos/PadelTracker/internal/dashboard"
	"github.com/thesrcielos/PadelTracker/pkg/logger"
	"github.com/thesrcielos/PadelTracker/websocket/actions"
	"github.com/thesrcielos/PadelTracker/websocket/message"
	"go.uber.org/zap"
)

type Handler func(ctx context.Context, client *dashboard.Client, msg message.Message) error

var handlers = map[string]Handler{
	message.SignIn:             actions.HandleSignIn,
	message.SignUp:             actions.HandleSignUp,
	message.SignOut:            actions.HandleSignOut,
	message.SignInWithProvider: actions.HandleSignInWithProvider,
	message.UpdateProfile:      actions.HandleUpdateProfile,
	message.RefreshSession:     actions.HandleRefreshSession,
	message.AddMatch:           actions.HandleAddMatch,
	message.UpdateSkill:        actions.HandleUpdateSkill,
	message.RecordAssessment:   actions.HandleRecordAssessment,
	message.LoadAssessments:    actions.HandleLoadAssessments,
	message.Load:               actions.HandleLoad,
}

// RouteMessage runs the handler for msg and reports a failure back to the
// tab as an ERROR message.
func RouteMessage(ctx context.Context, client *dashboard.Client, msg message.Message, log *logger.Logger) {
	handler, ok := handlers[msg.Type]
	if !ok {
		log.Warn("unknown message type", zap.String("type", msg.Type))
		client.Send(dashboard.TypeError, message.NewError(msg.Type, apperrors.NewAuthError(apperrors.KindGeneral, "Unknown message type")))
		return
	}
	if err := handler(ctx, client, msg); err != nil {
		log.Debug("action failed", zap.String("type", msg.Type), zap.Error(err))
		client.Send(dashboard.TypeError, message.NewError(msg.Type, err))
	}
}
