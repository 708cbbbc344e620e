package bank

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/hashicorp/go-multierror"
)

// Block layout of questions.md, one question per blank-line separated block:
//
//	line 0  heading (ignored)
//	line 1  question text
//	line 2-5  options
//	line 6  "...Answer: X" where the last character is the option letter
//	line 7  "Explanation: ..."
const (
	blockMinLines   = 8
	optionsPerBlock = 4
)

// BlockError describes a block that looked like a question but could not
// be used.
type BlockError struct {
	Block  int // 1-based block number
	Reason string
}

func (e *BlockError) Error() string {
	return fmt.Sprintf("block %d: %s", e.Block, e.Reason)
}

// ParseFile reads and parses a questions file. See Parse.
func ParseFile(path string) ([]Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open questions: %w", err)
	}
	defer f.Close()
	return Parse(f)
}

// Parse splits r into question blocks. Blocks with fewer than eight lines
// are skipped silently. Blocks with an unusable answer line are skipped and
// reported in the returned error, which is a *multierror.Error; the entries
// parsed so far are returned alongside it.
func Parse(r io.Reader) ([]Entry, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read questions: %w", err)
	}
	content := strings.ReplaceAll(string(data), "\r\n", "\n")

	var (
		entries []Entry
		skipped *multierror.Error
	)
	for i, block := range strings.Split(content, "\n\n") {
		lines := strings.Split(strings.TrimSpace(block), "\n")
		if len(lines) < blockMinLines {
			continue
		}

		e, err := parseBlock(lines)
		if err != nil {
			skipped = multierror.Append(skipped, &BlockError{Block: i + 1, Reason: err.Error()})
			continue
		}
		entries = append(entries, e)
	}

	return entries, skipped.ErrorOrNil()
}

func parseBlock(lines []string) (Entry, error) {
	for i := range lines {
		lines[i] = strings.TrimSpace(lines[i])
	}

	text := lines[1]
	if text == "" {
		return Entry{}, fmt.Errorf("empty question text")
	}

	options := make([]string, optionsPerBlock)
	copy(options, lines[2:2+optionsPerBlock])

	answerLine := lines[6]
	parts := strings.Split(answerLine, ":")
	letter := strings.TrimSpace(parts[len(parts)-1])
	if letter == "" {
		return Entry{}, fmt.Errorf("no answer letter in %q", answerLine)
	}
	idx := int(strings.ToUpper(letter[len(letter)-1:])[0]) - 'A'
	if idx < 0 || idx >= optionsPerBlock {
		return Entry{}, fmt.Errorf("answer %q is not one of A-D", letter[len(letter)-1:])
	}

	explanation := lines[7]
	if _, after, ok := strings.Cut(explanation, ":"); ok {
		explanation = strings.TrimSpace(after)
	}

	return Entry{
		Text:        text,
		Options:     options,
		Answer:      options[idx],
		Explanation: explanation,
	}, nil
}
