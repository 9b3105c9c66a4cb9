package actions

import (
	"context"

	"github.com/thesrcielos/PadelTracker/internal/dashboard"
	"github.com/thesrcielos/PadelTracker/internal/match"
	"github.com/thesrcielos/PadelTracker/websocket/message"
)

func HandleAddMatch(ctx context.Context, client *dashboard.Client, msg message.Message) error {
	var nm match.NewMatch
	if err := decode(msg, &nm); err != nil {
		return err
	}
	_, err := client.Matches.AddMatch(ctx, nm)
	return err
}

func HandleUpdateSkill(ctx context.Context, client *dashboard.Client, msg message.Message) error {
	var payload message.UpdateSkillPayload
	if err := decode(msg, &payload); err != nil {
		return err
	}
	if len(payload.Skills) > 0 {
		return client.Skills.UpdateSkills(ctx, payload.Skills)
	}
	return client.Skills.UpdateSkill(ctx, payload.Name, payload.Value)
}

// HandleRecordAssessment stores the assessment and pushes the updated
// history. The new skill values arrive through the SKILLS view.
func HandleRecordAssessment(ctx context.Context, client *dashboard.Client, msg message.Message) error {
	var payload message.RecordAssessmentPayload
	if err := decode(msg, &payload); err != nil {
		return err
	}
	if _, err := client.Skills.RecordAssessment(ctx, payload.Notes, payload.Skills); err != nil {
		return err
	}
	return HandleLoadAssessments(ctx, client, msg)
}

func HandleLoadAssessments(ctx context.Context, client *dashboard.Client, _ message.Message) error {
	history, err := client.Skills.Assessments(ctx)
	if err != nil {
		return err
	}
	client.Send(dashboard.TypeAssessments, history)
	return nil
}

// HandleLoad pushes fresh copies of every view.
func HandleLoad(ctx context.Context, client *dashboard.Client, _ message.Message) error {
	client.Send(dashboard.TypeAuthState, client.Session.Snapshot())
	return client.Reload(ctx)
}
