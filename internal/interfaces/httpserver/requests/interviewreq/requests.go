package interviewreq

import "pulse-server/internal/domain/interview"

// TurnMessage is one transcript entry as submitted by the client.
type TurnMessage struct {
	Role    string `json:"role" binding:"required,oneof=user assistant"`
	Content string `json:"content" binding:"required"`
}

// TurnRequest carries one interview turn.
type TurnRequest struct {
	ConversationID           string        `json:"conversationId" binding:"required"`
	Messages                 []TurnMessage `json:"messages" binding:"required,min=1,dive"`
	TestMode                 bool          `json:"testMode"`
	Themes                   []string      `json:"themes" binding:"omitempty,dive,required"`
	SelectedDuration         *int          `json:"selectedDuration" binding:"omitempty,oneof=5 10 15"`
	SelectedThemeID          *string       `json:"selectedThemeId"`
	FinishEarly              bool          `json:"finishEarly"`
	IsFinalResponse          bool          `json:"isFinalResponse"`
	IsCompletionConfirmation bool          `json:"isCompletionConfirmation"`
	InitialMood              *int          `json:"initialMood" binding:"omitempty,min=1,max=5"`
}

// ToInput maps the request onto the domain turn input.
func (r *TurnRequest) ToInput() interview.TurnInput {
	messages := make([]interview.Message, 0, len(r.Messages))
	for _, message := range r.Messages {
		messages = append(messages, interview.Message{
			Role:    interview.Role(message.Role),
			Content: message.Content,
		})
	}
	return interview.TurnInput{
		ConversationID:           r.ConversationID,
		Messages:                 messages,
		TestMode:                 r.TestMode,
		SelectedDuration:         r.SelectedDuration,
		SelectedThemeID:          r.SelectedThemeID,
		FinishEarly:              r.FinishEarly,
		IsFinalResponse:          r.IsFinalResponse,
		IsCompletionConfirmation: r.IsCompletionConfirmation,
		InitialMood:              r.InitialMood,
	}
}

// StartSessionRequest creates a conversation for a catalogued survey.
type StartSessionRequest struct {
	SurveyID    string `json:"surveyId" binding:"required"`
	InitialMood *int   `json:"initialMood" binding:"omitempty,min=1,max=5"`
}
