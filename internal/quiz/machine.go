package quiz

import (
	"context"
	"errors"
	"strings"
	"sync"
)

var (
	ErrNotActive            = errors.New("no quiz in progress")
	ErrEmptyQuiz            = errors.New("quiz has no questions")
	ErrStaleResponse        = errors.New("response arrived after the quiz was reset")
	ErrSubmissionInProgress = errors.New("submission already in progress")
)

// ValidationError is a local precondition failure; no request was sent and
// no state changed.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

var ErrEmptySelection = &ValidationError{Message: "select at least one answer"}

type Phase int

const (
	PhaseIdle Phase = iota
	PhaseActive
	PhaseSubmitted
)

func (p Phase) String() string {
	switch p {
	case PhaseActive:
		return "active"
	case PhaseSubmitted:
		return "submitted"
	default:
		return "idle"
	}
}

// AttemptAPI is the part of the remote service the machine drives.
type AttemptAPI interface {
	StartAttempt(ctx context.Context, quizID string) (StartedAttempt, error)
	SubmitAttempt(ctx context.Context, attemptID string, answers []AnswerRecord) (Result, error)
}

// Snapshot is a copy of the machine state, safe to hand to renderers.
type Snapshot struct {
	Phase         Phase
	AttemptID     string
	Quiz          QuizDetail
	Questions     []Question
	Index         int
	Records       []AnswerRecord
	Result        *Result
	PendingSubmit bool
}

// Current returns the question at Index when the snapshot is active.
func (s Snapshot) Current() (Question, bool) {
	if s.Phase != PhaseActive || s.Index < 0 || s.Index >= len(s.Questions) {
		return Question{}, false
	}
	return s.Questions[s.Index], true
}

func (s Snapshot) IsLast() bool {
	return s.Index == len(s.Questions)-1
}

// Machine walks one attempt from start to result. Only one attempt is held
// at a time; Start and Reset discard whatever came before.
type Machine struct {
	api AttemptAPI

	mu         sync.Mutex
	generation uint64
	phase      Phase
	attemptID  string
	quiz       QuizDetail
	questions  []Question
	index      int
	records    []AnswerRecord
	result     *Result
	submitting bool
}

func NewMachine(api AttemptAPI) *Machine {
	return &Machine{api: api}
}

func (m *Machine) Start(ctx context.Context, quizID string) error {
	quizID = strings.TrimSpace(quizID)
	if quizID == "" {
		return &ValidationError{Message: "quiz id is required"}
	}

	m.mu.Lock()
	m.clearLocked()
	generation := m.generation
	m.mu.Unlock()

	started, err := m.api.StartAttempt(ctx, quizID)

	m.mu.Lock()
	defer m.mu.Unlock()
	if generation != m.generation {
		return ErrStaleResponse
	}
	if err != nil {
		return err
	}
	if len(started.Questions) == 0 {
		return ErrEmptyQuiz
	}

	m.phase = PhaseActive
	m.attemptID = started.AttemptID
	m.quiz = started.Quiz
	m.questions = append([]Question(nil), started.Questions...)
	m.index = 0
	m.records = make([]AnswerRecord, 0, len(started.Questions))
	return nil
}

// ValidateCurrentAnswer records the selection for the current question and
// either advances or, on the last question, submits the attempt. When every
// question already has a record (a previous submission failed) the selection
// is ignored and the stored records are sent again.
func (m *Machine) ValidateCurrentAnswer(ctx context.Context, selected []string) (Phase, error) {
	m.mu.Lock()
	if m.phase != PhaseActive {
		m.mu.Unlock()
		return m.phase, ErrNotActive
	}
	if m.pendingSubmitLocked() {
		m.mu.Unlock()
		return m.submit(ctx)
	}

	answerIDs := normalizeSelection(selected)
	if len(answerIDs) == 0 {
		phase := m.phase
		m.mu.Unlock()
		return phase, ErrEmptySelection
	}

	question := m.questions[m.index]
	m.records = append(m.records, AnswerRecord{
		QuestionID: question.ID,
		AnswerIDs:  answerIDs,
	})

	if m.index < len(m.questions)-1 {
		m.index++
		m.mu.Unlock()
		return PhaseActive, nil
	}
	m.mu.Unlock()

	return m.submit(ctx)
}

// RetrySubmit re-sends the accumulated records after a failed submission.
func (m *Machine) RetrySubmit(ctx context.Context) (Phase, error) {
	m.mu.Lock()
	if m.phase != PhaseActive || !m.pendingSubmitLocked() {
		phase := m.phase
		m.mu.Unlock()
		return phase, ErrNotActive
	}
	m.mu.Unlock()
	return m.submit(ctx)
}

func (m *Machine) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.clearLocked()
}

func (m *Machine) Phase() Phase {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.phase
}

func (m *Machine) PendingSubmit() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.phase == PhaseActive && m.pendingSubmitLocked()
}

func (m *Machine) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	snapshot := Snapshot{
		Phase:         m.phase,
		AttemptID:     m.attemptID,
		Quiz:          m.quiz,
		Questions:     append([]Question(nil), m.questions...),
		Index:         m.index,
		Records:       copyRecords(m.records),
		PendingSubmit: m.phase == PhaseActive && m.pendingSubmitLocked(),
	}
	if m.result != nil {
		result := *m.result
		snapshot.Result = &result
	}
	return snapshot
}

func (m *Machine) submit(ctx context.Context) (Phase, error) {
	m.mu.Lock()
	if m.submitting {
		m.mu.Unlock()
		return PhaseActive, ErrSubmissionInProgress
	}
	m.submitting = true
	generation := m.generation
	attemptID := m.attemptID
	records := copyRecords(m.records)
	m.mu.Unlock()

	result, err := m.api.SubmitAttempt(ctx, attemptID, records)

	m.mu.Lock()
	defer m.mu.Unlock()
	if generation != m.generation {
		return m.phase, ErrStaleResponse
	}
	m.submitting = false
	if err != nil {
		return PhaseActive, err
	}

	m.phase = PhaseSubmitted
	m.result = &result
	return PhaseSubmitted, nil
}

func (m *Machine) pendingSubmitLocked() bool {
	return len(m.questions) > 0 && len(m.records) == len(m.questions)
}

func (m *Machine) clearLocked() {
	m.generation++
	m.phase = PhaseIdle
	m.attemptID = ""
	m.quiz = QuizDetail{}
	m.questions = nil
	m.index = 0
	m.records = nil
	m.result = nil
	m.submitting = false
}

func normalizeSelection(selected []string) []string {
	seen := make(map[string]struct{}, len(selected))
	ids := make([]string, 0, len(selected))
	for _, id := range selected {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	return ids
}

func copyRecords(records []AnswerRecord) []AnswerRecord {
	if records == nil {
		return nil
	}
	out := make([]AnswerRecord, len(records))
	for idx, record := range records {
		out[idx] = AnswerRecord{
			QuestionID: record.QuestionID,
			AnswerIDs:  append([]string(nil), record.AnswerIDs...),
		}
	}
	return out
}
