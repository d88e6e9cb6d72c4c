package userclient

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"quizmaster/internal/quiz"
	"quizmaster/internal/views"
)

// parseSelection maps answer letters to answer ids for the given options.
// Letters may be separated by spaces or commas ("A C", "A,C") or run
// together ("AC").
func parseSelection(args []string, options []quiz.AnswerOption) ([]string, error) {
	byLetter := make(map[string]string, len(options))
	for idx, option := range options {
		byLetter[views.Letter(idx)] = option.ID
	}

	tokens := strings.FieldsFunc(strings.ToUpper(strings.Join(args, " ")), func(r rune) bool {
		return r == ',' || r == ' ' || r == ';'
	})

	ids := make([]string, 0, len(tokens))
	for _, token := range tokens {
		if id, ok := byLetter[token]; ok {
			ids = append(ids, id)
			continue
		}
		for _, r := range token {
			id, ok := byLetter[string(r)]
			if !ok {
				return nil, &quiz.ValidationError{Message: fmt.Sprintf("unknown answer %q; choose from A-%s", string(r), views.Letter(len(options)-1))}
			}
			ids = append(ids, id)
		}
	}
	return ids, nil
}

// pickIndex resolves a 1-based list number to a slice index.
func pickIndex(arg string, length int) (int, bool) {
	value, err := strconv.Atoi(arg)
	if err != nil || value < 1 || value > length {
		return 0, false
	}
	return value - 1, true
}

// parseUserQuery reads "[search...] [page]": a trailing positive integer is
// the page number, everything before it is the search text.
func parseUserQuery(args []string, perPage int) (quiz.UserQuery, error) {
	query := quiz.UserQuery{Page: 1, PerPage: perPage}
	if len(args) == 0 {
		return query, nil
	}

	last := args[len(args)-1]
	if _, err := strconv.Atoi(last); err == nil {
		page, err := parsePositiveLimit(args, len(args)-1, 1)
		if err != nil {
			return quiz.UserQuery{}, &quiz.ValidationError{Message: "page " + err.Error()}
		}
		query.Page = page
		args = args[:len(args)-1]
	}
	query.Search = strings.Join(args, " ")
	return query, nil
}

func parsePositiveLimit(args []string, index int, defaultValue int) (int, error) {
	if len(args) <= index {
		return defaultValue, nil
	}

	value, err := strconv.Atoi(args[index])
	if err != nil || value <= 0 {
		return 0, errors.New("must be a positive integer")
	}
	return value, nil
}

func promptYesNo(reader *bufio.Reader, out io.Writer, prompt string) (bool, error) {
	for {
		fmt.Fprint(out, prompt)
		line, err := reader.ReadString('\n')
		if err != nil && (!errors.Is(err, io.EOF) || strings.TrimSpace(line) == "") {
			return false, err
		}
		answer := strings.ToLower(strings.TrimSpace(line))
		switch answer {
		case "y", "yes":
			return true, nil
		case "n", "no":
			return false, nil
		default:
			fmt.Fprintln(out, "Please answer yes or no.")
		}
	}
}

func waitDelay(ctx context.Context, delay time.Duration) error {
	if delay <= 0 {
		return nil
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
