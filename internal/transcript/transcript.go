// Package transcript reads newline-delimited JSON conversation transcripts
// and extracts the text authored by the user.
package transcript

import (
	"bufio"
	"bytes"
	"encoding/json"
	"io"
	"os"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/leefowlercu/agent-hook-guardrails/internal/textmatch"
	"github.com/leefowlercu/agent-hook-guardrails/pkg/types"
)

// ErrNoTranscript is returned when no transcript path was supplied
var ErrNoTranscript = errors.New("no transcript path")

// userTypes are the record types authored by the human side of the conversation
var userTypes = map[string]bool{
	"human":        true,
	"user":         true,
	"user_message": true,
}

// rawRecord mirrors a transcript line; message and content are decoded lazily
// so that an unexpected shape in one field does not discard the record
type rawRecord struct {
	Type    string          `json:"type"`
	Message json.RawMessage `json:"message"`
	Content json.RawMessage `json:"content"`
}

// Match describes the first user record that satisfied a rule
type Match struct {
	Line int            // 1-based line number in the transcript
	Rule textmatch.Rule // Rule that matched
}

// Scanner searches transcripts for user-authored text
type Scanner struct{}

// NewScanner creates a new transcript scanner
func NewScanner() *Scanner {
	return &Scanner{}
}

// FindUserMatch opens the transcript at path and returns the first user
// record, in file order, whose lower-cased text matches any rule. A missing,
// unreadable or partially readable file yields ok=false with the error.
func (s *Scanner) FindUserMatch(path string, rules textmatch.RuleSet) (Match, bool, error) {
	if path == "" {
		return Match{}, false, ErrNoTranscript
	}

	file, err := os.Open(path)
	if err != nil {
		return Match{}, false, errors.Wrap(err, "failed to open transcript")
	}
	defer file.Close()

	return s.ScanUserMatch(file, rules)
}

// ScanUserMatch is FindUserMatch over an already open reader
func (s *Scanner) ScanUserMatch(r io.Reader, rules textmatch.RuleSet) (Match, bool, error) {
	reader := bufio.NewReader(r)

	lineNum := 0
	for {
		line, readErr := reader.ReadBytes('\n')
		if len(line) > 0 {
			lineNum++
			if text, ok := UserText(line); ok {
				if rule, matched := rules.First(strings.ToLower(text)); matched {
					return Match{Line: lineNum, Rule: rule}, true, nil
				}
			}
		}

		if readErr == io.EOF {
			return Match{}, false, nil
		}
		if readErr != nil {
			return Match{}, false, errors.Wrapf(readErr, "failed to read transcript at line %d", lineNum+1)
		}
	}
}

// UserText returns the text of a user-authored transcript line. It reports
// false for malformed lines, non-user records, and records whose content is
// not ultimately a string.
func UserText(line []byte) (string, bool) {
	line = bytes.TrimSpace(line)
	if len(line) == 0 {
		return "", false
	}

	record, ok := Decode(line)
	if !ok || !userTypes[record.Type] {
		return "", false
	}

	content := record.Content
	if record.Message != nil && record.Message.Content != nil {
		content = record.Message.Content
	}

	return contentText(content)
}

// Decode parses one transcript line into a TranscriptRecord
func Decode(line []byte) (types.TranscriptRecord, bool) {
	var raw rawRecord
	if err := json.Unmarshal(line, &raw); err != nil {
		return types.TranscriptRecord{}, false
	}

	record := types.TranscriptRecord{
		Type:    raw.Type,
		Content: decodeAny(raw.Content),
	}

	var msg types.TranscriptMessage
	if len(raw.Message) > 0 && json.Unmarshal(raw.Message, &msg) == nil {
		record.Message = &msg
	}

	return record, true
}

func decodeAny(data json.RawMessage) any {
	if len(data) == 0 {
		return nil
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return nil
	}
	return v
}

// contentText flattens message content: a string is returned as is, a list of
// blocks is joined by single spaces using each object block's text field
func contentText(content any) (string, bool) {
	switch c := content.(type) {
	case string:
		return c, true
	case []any:
		parts := make([]string, 0, len(c))
		for _, block := range c {
			obj, ok := block.(map[string]any)
			if !ok {
				continue
			}
			text, _ := obj["text"].(string)
			parts = append(parts, text)
		}
		return strings.Join(parts, " "), true
	default:
		return "", false
	}
}
