package quiz

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAttemptAPI struct {
	started  StartedAttempt
	startErr error

	result    Result
	submitErr error

	startCalls   []string
	submitCalls  int
	lastAttempt  string
	lastRecords  []AnswerRecord
	beforeSubmit func()
}

func (f *fakeAttemptAPI) StartAttempt(_ context.Context, quizID string) (StartedAttempt, error) {
	f.startCalls = append(f.startCalls, quizID)
	if f.startErr != nil {
		return StartedAttempt{}, f.startErr
	}
	return f.started, nil
}

func (f *fakeAttemptAPI) SubmitAttempt(_ context.Context, attemptID string, answers []AnswerRecord) (Result, error) {
	f.submitCalls++
	f.lastAttempt = attemptID
	f.lastRecords = answers
	if f.beforeSubmit != nil {
		f.beforeSubmit()
	}
	if f.submitErr != nil {
		return Result{}, f.submitErr
	}
	return f.result, nil
}

func questionsFixture(count int) []Question {
	questions := make([]Question, 0, count)
	for idx := 1; idx <= count; idx++ {
		questions = append(questions, Question{
			ID:   fmt.Sprintf("q%d", idx),
			Text: fmt.Sprintf("Question %d?", idx),
			Answers: []AnswerOption{
				{ID: fmt.Sprintf("q%d-a", idx), Text: "yes"},
				{ID: fmt.Sprintf("q%d-b", idx), Text: "no"},
			},
		})
	}
	return questions
}

func startedMachine(t *testing.T, api *fakeAttemptAPI) *Machine {
	t.Helper()
	machine := NewMachine(api)
	require.NoError(t, machine.Start(context.Background(), "quiz-1"))
	return machine
}

func TestStartInitializesActiveAttempt(t *testing.T) {
	api := &fakeAttemptAPI{started: StartedAttempt{
		AttemptID: "att-1",
		Quiz:      QuizDetail{ID: "quiz-1", Title: "Go basics"},
		Questions: questionsFixture(3),
	}}
	machine := startedMachine(t, api)

	snapshot := machine.Snapshot()
	assert.Equal(t, PhaseActive, snapshot.Phase)
	assert.Equal(t, "att-1", snapshot.AttemptID)
	assert.Equal(t, 0, snapshot.Index)
	assert.Empty(t, snapshot.Records)
	assert.Nil(t, snapshot.Result)
	current, ok := snapshot.Current()
	require.True(t, ok)
	assert.Equal(t, "q1", current.ID)
	assert.Equal(t, []string{"quiz-1"}, api.startCalls)
}

func TestStartFailureLeavesMachineIdle(t *testing.T) {
	rejected := errors.New("HTTP 403: locked")
	api := &fakeAttemptAPI{startErr: rejected}
	machine := NewMachine(api)

	err := machine.Start(context.Background(), "quiz-2")
	require.ErrorIs(t, err, rejected)
	assert.Equal(t, PhaseIdle, machine.Phase())
}

func TestStartRejectsEmptyQuiz(t *testing.T) {
	api := &fakeAttemptAPI{started: StartedAttempt{AttemptID: "att-1"}}
	machine := NewMachine(api)

	err := machine.Start(context.Background(), "quiz-1")
	require.ErrorIs(t, err, ErrEmptyQuiz)
	assert.Equal(t, PhaseIdle, machine.Phase())
}

func TestStartRequiresQuizID(t *testing.T) {
	machine := NewMachine(&fakeAttemptAPI{})

	err := machine.Start(context.Background(), "  ")
	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
}

func TestValidateWalksEveryQuestionThenSubmits(t *testing.T) {
	for _, count := range []int{1, 2, 5} {
		t.Run(fmt.Sprintf("%d questions", count), func(t *testing.T) {
			api := &fakeAttemptAPI{
				started: StartedAttempt{AttemptID: "att-1", Questions: questionsFixture(count)},
				result:  Result{Score: 100, Passed: true, CorrectAnswers: count, TotalQuestions: count},
			}
			machine := startedMachine(t, api)

			activeTransitions := 0
			submittedTransitions := 0
			for idx := 0; idx < count; idx++ {
				phase, err := machine.ValidateCurrentAnswer(context.Background(), []string{fmt.Sprintf("q%d-a", idx+1)})
				require.NoError(t, err)
				switch phase {
				case PhaseActive:
					activeTransitions++
				case PhaseSubmitted:
					submittedTransitions++
				}
			}

			assert.Equal(t, count-1, activeTransitions)
			assert.Equal(t, 1, submittedTransitions)
			assert.Equal(t, 1, api.submitCalls)
		})
	}
}

func TestEmptySelectionDoesNotChangeState(t *testing.T) {
	api := &fakeAttemptAPI{started: StartedAttempt{AttemptID: "att-1", Questions: questionsFixture(2)}}
	machine := startedMachine(t, api)

	for _, selection := range [][]string{nil, {}, {"", "  "}} {
		phase, err := machine.ValidateCurrentAnswer(context.Background(), selection)
		require.ErrorIs(t, err, ErrEmptySelection)
		assert.Equal(t, PhaseActive, phase)
	}

	snapshot := machine.Snapshot()
	assert.Equal(t, 0, snapshot.Index)
	assert.Empty(t, snapshot.Records)
	assert.Zero(t, api.submitCalls)
}

func TestSubmissionSendsOneRecordPerQuestionInOrder(t *testing.T) {
	api := &fakeAttemptAPI{started: StartedAttempt{AttemptID: "att-9", Questions: questionsFixture(3)}}
	machine := startedMachine(t, api)

	selections := [][]string{
		{"q1-a", "q1-b", "q1-a"},
		{"q2-b"},
		{"q3-b", "q3-a"},
	}
	for _, selection := range selections {
		_, err := machine.ValidateCurrentAnswer(context.Background(), selection)
		require.NoError(t, err)
	}

	assert.Equal(t, "att-9", api.lastAttempt)
	assert.Equal(t, []AnswerRecord{
		{QuestionID: "q1", AnswerIDs: []string{"q1-a", "q1-b"}},
		{QuestionID: "q2", AnswerIDs: []string{"q2-b"}},
		{QuestionID: "q3", AnswerIDs: []string{"q3-b", "q3-a"}},
	}, api.lastRecords)
}

func TestTwoQuestionScenario(t *testing.T) {
	api := &fakeAttemptAPI{
		started: StartedAttempt{
			AttemptID: "att-1",
			Quiz:      QuizDetail{ID: "quiz-1", Title: "Scenario"},
			Questions: []Question{
				{ID: "q1", Answers: []AnswerOption{{ID: "a1"}, {ID: "a2"}}},
				{ID: "q2", Answers: []AnswerOption{{ID: "a3"}, {ID: "a4"}, {ID: "a5"}}},
			},
		},
		result: Result{Score: 50, Passed: false, CorrectAnswers: 1, TotalQuestions: 2},
	}
	machine := startedMachine(t, api)

	phase, err := machine.ValidateCurrentAnswer(context.Background(), []string{"a1"})
	require.NoError(t, err)
	assert.Equal(t, PhaseActive, phase)
	assert.Equal(t, 1, machine.Snapshot().Index)

	phase, err = machine.ValidateCurrentAnswer(context.Background(), []string{"a3", "a4"})
	require.NoError(t, err)
	assert.Equal(t, PhaseSubmitted, phase)

	assert.Equal(t, []AnswerRecord{
		{QuestionID: "q1", AnswerIDs: []string{"a1"}},
		{QuestionID: "q2", AnswerIDs: []string{"a3", "a4"}},
	}, api.lastRecords)

	snapshot := machine.Snapshot()
	require.NotNil(t, snapshot.Result)
	assert.Equal(t, Result{Score: 50, Passed: false, CorrectAnswers: 1, TotalQuestions: 2}, *snapshot.Result)
}

func TestFailedSubmissionStaysActiveAndRetriesSameRecords(t *testing.T) {
	api := &fakeAttemptAPI{
		started:   StartedAttempt{AttemptID: "att-1", Questions: questionsFixture(2)},
		submitErr: errors.New("HTTP 500: boom"),
	}
	machine := startedMachine(t, api)

	_, err := machine.ValidateCurrentAnswer(context.Background(), []string{"q1-a"})
	require.NoError(t, err)
	phase, err := machine.ValidateCurrentAnswer(context.Background(), []string{"q2-b"})
	require.Error(t, err)
	assert.Equal(t, PhaseActive, phase)

	snapshot := machine.Snapshot()
	assert.Equal(t, 1, snapshot.Index)
	assert.True(t, snapshot.PendingSubmit)
	assert.Len(t, snapshot.Records, 2)

	api.submitErr = nil
	api.result = Result{Score: 100, Passed: true, CorrectAnswers: 2, TotalQuestions: 2}

	phase, err = machine.RetrySubmit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, PhaseSubmitted, phase)
	assert.Equal(t, 2, api.submitCalls)
	assert.Len(t, api.lastRecords, 2)
}

func TestValidateWhilePendingResendsWithoutAppending(t *testing.T) {
	api := &fakeAttemptAPI{
		started:   StartedAttempt{AttemptID: "att-1", Questions: questionsFixture(1)},
		submitErr: errors.New("offline"),
	}
	machine := startedMachine(t, api)

	_, err := machine.ValidateCurrentAnswer(context.Background(), []string{"q1-a"})
	require.Error(t, err)

	api.submitErr = nil
	phase, err := machine.ValidateCurrentAnswer(context.Background(), []string{"q1-b"})
	require.NoError(t, err)
	assert.Equal(t, PhaseSubmitted, phase)
	assert.Equal(t, []AnswerRecord{{QuestionID: "q1", AnswerIDs: []string{"q1-a"}}}, api.lastRecords)
}

func TestRetrySubmitRequiresPendingSubmission(t *testing.T) {
	api := &fakeAttemptAPI{started: StartedAttempt{AttemptID: "att-1", Questions: questionsFixture(2)}}
	machine := startedMachine(t, api)

	_, err := machine.RetrySubmit(context.Background())
	require.ErrorIs(t, err, ErrNotActive)
	assert.Zero(t, api.submitCalls)
}

func TestValidateRequiresActiveAttempt(t *testing.T) {
	machine := NewMachine(&fakeAttemptAPI{})

	phase, err := machine.ValidateCurrentAnswer(context.Background(), []string{"a1"})
	require.ErrorIs(t, err, ErrNotActive)
	assert.Equal(t, PhaseIdle, phase)
}

func TestStartAfterSubmittedResetsProgress(t *testing.T) {
	api := &fakeAttemptAPI{
		started: StartedAttempt{AttemptID: "att-1", Questions: questionsFixture(1)},
		result:  Result{Score: 100, Passed: true, CorrectAnswers: 1, TotalQuestions: 1},
	}
	machine := startedMachine(t, api)
	_, err := machine.ValidateCurrentAnswer(context.Background(), []string{"q1-a"})
	require.NoError(t, err)
	require.Equal(t, PhaseSubmitted, machine.Phase())

	api.started = StartedAttempt{AttemptID: "att-2", Questions: questionsFixture(2)}
	require.NoError(t, machine.Start(context.Background(), "quiz-2"))

	snapshot := machine.Snapshot()
	assert.Equal(t, PhaseActive, snapshot.Phase)
	assert.Equal(t, "att-2", snapshot.AttemptID)
	assert.Equal(t, 0, snapshot.Index)
	assert.Empty(t, snapshot.Records)
	assert.Nil(t, snapshot.Result)
}

func TestStartWhileActiveDiscardsPreviousAttempt(t *testing.T) {
	api := &fakeAttemptAPI{started: StartedAttempt{AttemptID: "att-1", Questions: questionsFixture(3)}}
	machine := startedMachine(t, api)
	_, err := machine.ValidateCurrentAnswer(context.Background(), []string{"q1-a"})
	require.NoError(t, err)

	api.started = StartedAttempt{AttemptID: "att-2", Questions: questionsFixture(2)}
	require.NoError(t, machine.Start(context.Background(), "quiz-2"))

	snapshot := machine.Snapshot()
	assert.Equal(t, "att-2", snapshot.AttemptID)
	assert.Equal(t, 0, snapshot.Index)
	assert.Empty(t, snapshot.Records)
}

func TestResetReturnsToIdle(t *testing.T) {
	api := &fakeAttemptAPI{started: StartedAttempt{AttemptID: "att-1", Questions: questionsFixture(2)}}
	machine := startedMachine(t, api)

	machine.Reset()

	snapshot := machine.Snapshot()
	assert.Equal(t, PhaseIdle, snapshot.Phase)
	assert.Empty(t, snapshot.AttemptID)
	assert.Empty(t, snapshot.Questions)
	_, ok := snapshot.Current()
	assert.False(t, ok)
}

func TestLateSubmitResponseAfterResetIsDiscarded(t *testing.T) {
	api := &fakeAttemptAPI{
		started: StartedAttempt{AttemptID: "att-1", Questions: questionsFixture(1)},
		result:  Result{Score: 100, Passed: true, CorrectAnswers: 1, TotalQuestions: 1},
	}
	machine := startedMachine(t, api)
	api.beforeSubmit = machine.Reset

	_, err := machine.ValidateCurrentAnswer(context.Background(), []string{"q1-a"})
	require.ErrorIs(t, err, ErrStaleResponse)

	snapshot := machine.Snapshot()
	assert.Equal(t, PhaseIdle, snapshot.Phase)
	assert.Nil(t, snapshot.Result)
}

func TestSnapshotIsACopy(t *testing.T) {
	api := &fakeAttemptAPI{started: StartedAttempt{AttemptID: "att-1", Questions: questionsFixture(2)}}
	machine := startedMachine(t, api)
	_, err := machine.ValidateCurrentAnswer(context.Background(), []string{"q1-a"})
	require.NoError(t, err)

	snapshot := machine.Snapshot()
	snapshot.Records[0].AnswerIDs[0] = "tampered"
	snapshot.Questions[0].ID = "tampered"

	fresh := machine.Snapshot()
	assert.Equal(t, "q1-a", fresh.Records[0].AnswerIDs[0])
	assert.Equal(t, "q1", fresh.Questions[0].ID)
}
