package chat

import (
	"errors"
	"fmt"
	"strings"

	"postcraft/internal/app/model"
)

var ErrEmptyInput = errors.New("empty input")

// Command is one parsed input line. The set of implementations is closed.
type Command interface {
	command()
}

type GenerateCommand struct {
	Request model.Request
}

// SuggestCommand filters by Platform or Niche. Both empty means most recent.
type SuggestCommand struct {
	Platform model.Platform
	Niche    string
}

type SearchCommand struct {
	Query string
}

type ChatCommand struct {
	Text string
}

type ClearCommand struct{}

type HelpCommand struct{}

type ExitCommand struct{}

func (GenerateCommand) command() {}
func (SuggestCommand) command() {}
func (SearchCommand) command() {}
func (ChatCommand) command() {}
func (ClearCommand) command() {}
func (HelpCommand) command() {}
func (ExitCommand) command() {}

// UsageError is a malformed command. It names every missing field and, for
// generate, a platform that is not recognized.
type UsageError struct {
	Command string
	Missing []string
	Invalid string
	Value   string
}

func (e *UsageError) Error() string {
	var parts []string
	if len(e.Missing) > 0 {
		parts = append(parts, "missing "+strings.Join(e.Missing, ", "))
	}
	if e.Invalid != "" {
		parts = append(parts, fmt.Sprintf("unknown %s %q", e.Invalid, e.Value))
	}
	msg := fmt.Sprintf("%s: %s", e.Command, strings.Join(parts, "; "))
	if u, ok := usage[e.Command]; ok {
		msg += " (usage: " + u + ")"
	}
	return msg
}

var usage = map[string]string{
	"generate": "generate post <platform> <niche> <audience>",
	"search":   "search posts <query>",
	"chat":     "chat <message>",
}

// Parse classifies a line. Keywords are case-insensitive; anything that is
// not a recognized command is chat text.
func Parse(line string) (Command, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil, ErrEmptyInput
	}

	keyword := strings.ToLower(fields[0])
	args := fields[1:]

	switch keyword {
	case "generate", "suggest", "search":
		if len(args) > 0 && isPostKeyword(args[0]) {
			return parsePostCommand(keyword, args[1:])
		}
	case "chat":
		text := strings.TrimSpace(rest(line, fields[0]))
		if text == "" {
			return nil, &UsageError{Command: "chat", Missing: []string{"message"}}
		}
		return ChatCommand{Text: text}, nil
	case "clear", "help", "exit", "quit":
		if len(args) == 0 {
			return singleWord(keyword), nil
		}
	}

	return ChatCommand{Text: strings.TrimSpace(line)}, nil
}

func isPostKeyword(s string) bool {
	s = strings.ToLower(s)
	return s == "post" || s == "posts"
}

func parsePostCommand(keyword string, args []string) (Command, error) {
	switch keyword {
	case "generate":
		return parseGenerate(args)
	case "suggest":
		return parseSuggest(args), nil
	default:
		if len(args) == 0 {
			return nil, &UsageError{Command: "search", Missing: []string{"query"}}
		}
		return SearchCommand{Query: strings.Join(args, " ")}, nil
	}
}

func parseGenerate(args []string) (Command, error) {
	names := []string{"platform", "niche", "audience"}
	if len(args) < len(names) {
		uerr := &UsageError{Command: "generate", Missing: names[len(args):]}
		if len(args) > 0 {
			if _, err := model.ParsePlatform(args[0]); err != nil {
				uerr.Invalid, uerr.Value = "platform", args[0]
			}
		}
		return nil, uerr
	}

	platform, err := model.ParsePlatform(args[0])
	if err != nil {
		return nil, &UsageError{Command: "generate", Invalid: "platform", Value: args[0]}
	}

	req, err := model.NewRequest(platform, args[1], strings.Join(args[2:], " "), "")
	if err != nil {
		return nil, fmt.Errorf("generate: %w", err)
	}
	return GenerateCommand{Request: req}, nil
}

func parseSuggest(args []string) Command {
	if len(args) == 0 {
		return SuggestCommand{}
	}
	if len(args) == 1 {
		if platform, err := model.ParsePlatform(args[0]); err == nil {
			return SuggestCommand{Platform: platform}
		}
	}
	return SuggestCommand{Niche: strings.Join(args, " ")}
}

func singleWord(keyword string) Command {
	switch keyword {
	case "clear":
		return ClearCommand{}
	case "help":
		return HelpCommand{}
	default:
		return ExitCommand{}
	}
}

// rest returns line after the first occurrence of word, keeping inner spacing.
func rest(line, word string) string {
	i := strings.Index(line, word)
	if i < 0 {
		return ""
	}
	return line[i+len(word):]
}
