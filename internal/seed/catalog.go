package seed

import (
	"quizmaster/internal/quiz"
	"quizmaster/internal/store/sqlite"
)

type demoCategory struct {
	name        string
	description string
	active      bool
	quizzes     []demoQuiz
}

type demoQuiz struct {
	title     string
	level     string
	questions []demoQuestion
}

type demoQuestion struct {
	text    string
	answers []string
	// correct holds indexes into answers.
	correct []int
}

func (q demoQuestion) seed(newID func() string) sqlite.QuestionSeed {
	answers := make([]sqlite.AnswerSeed, len(q.answers))
	for idx, text := range q.answers {
		answers[idx] = sqlite.AnswerSeed{ID: newID(), Text: text}
	}
	for _, idx := range q.correct {
		answers[idx].IsCorrect = true
	}
	return sqlite.QuestionSeed{ID: newID(), Text: q.text, Answers: answers}
}

func demoCatalog() []demoCategory {
	return []demoCategory{
		{
			name:        "Go",
			description: "The Go programming language",
			active:      true,
			quizzes: []demoQuiz{
				{
					title: "Go Basics",
					level: quiz.LevelBeginner,
					questions: []demoQuestion{
						{
							text:    "Which keyword declares a constant?",
							answers: []string{"var", "const", "let", "final"},
							correct: []int{1},
						},
						{
							text:    "What is the zero value of a string?",
							answers: []string{"nil", "\" \"", "\"\"", "undefined"},
							correct: []int{2},
						},
						{
							text:    "Which of these are built-in reference-like types?",
							answers: []string{"slice", "array", "map", "struct"},
							correct: []int{0, 2},
						},
						{
							text:    "Which command formats Go source?",
							answers: []string{"go vet", "gofmt", "go fix", "golint"},
							correct: []int{1},
						},
						{
							text:    "How many values can a Go function return?",
							answers: []string{"Exactly one", "At most two", "Any number"},
							correct: []int{2},
						},
					},
				},
				{
					title: "Go Concurrency",
					level: quiz.LevelIntermediate,
					questions: []demoQuestion{
						{
							text:    "Which statement starts a goroutine?",
							answers: []string{"go f()", "async f()", "spawn f()", "thread f()"},
							correct: []int{0},
						},
						{
							text:    "What happens when sending on a closed channel?",
							answers: []string{"It blocks", "It panics", "It is ignored", "It returns an error"},
							correct: []int{1},
						},
						{
							text:    "Which types live in package sync?",
							answers: []string{"Mutex", "WaitGroup", "Context", "Once"},
							correct: []int{0, 1, 3},
						},
						{
							text:    "What does a select with a default case do when no channel is ready?",
							answers: []string{"Blocks", "Runs default", "Panics"},
							correct: []int{1},
						},
					},
				},
				{
					title: "Go Internals",
					level: quiz.LevelAdvanced,
					questions: []demoQuestion{
						{
							text:    "Which environment variable limits OS threads running Go code simultaneously?",
							answers: []string{"GOGC", "GOMAXPROCS", "GODEBUG", "GOTRACEBACK"},
							correct: []int{1},
						},
						{
							text:    "What does escape analysis decide?",
							answers: []string{"Inlining", "Stack or heap allocation", "Goroutine placement"},
							correct: []int{1},
						},
						{
							text:    "Which are valid GOGC settings?",
							answers: []string{"100", "off", "auto", "-1"},
							correct: []int{0, 1},
						},
					},
				},
			},
		},
		{
			name:        "Geography",
			description: "Countries, capitals and landmarks",
			active:      true,
			quizzes: []demoQuiz{
				{
					title: "Capitals of Europe",
					level: quiz.LevelBeginner,
					questions: []demoQuestion{
						{
							text:    "What is the capital of France?",
							answers: []string{"Lyon", "Paris", "Marseille", "Nice"},
							correct: []int{1},
						},
						{
							text:    "What is the capital of Spain?",
							answers: []string{"Madrid", "Barcelona", "Seville", "Valencia"},
							correct: []int{0},
						},
						{
							text:    "Which of these cities are capitals?",
							answers: []string{"Vienna", "Zurich", "Lisbon", "Milan"},
							correct: []int{0, 2},
						},
					},
				},
				{
					title: "World Rivers",
					level: quiz.LevelIntermediate,
					questions: []demoQuestion{
						{
							text:    "Which river flows through Cairo?",
							answers: []string{"Niger", "Congo", "Nile", "Zambezi"},
							correct: []int{2},
						},
						{
							text:    "Which rivers flow through Germany?",
							answers: []string{"Rhine", "Danube", "Seine", "Elbe"},
							correct: []int{0, 1, 3},
						},
					},
				},
			},
		},
		{
			name:        "Archive",
			description: "Retired questions",
			active:      false,
			quizzes: []demoQuiz{
				{
					title: "Old Trivia",
					level: quiz.LevelBeginner,
					questions: []demoQuestion{
						{
							text:    "Which planet is known as the Red Planet?",
							answers: []string{"Venus", "Mars", "Jupiter"},
							correct: []int{1},
						},
					},
				},
			},
		},
	}
}
