package quiz

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/rs/zerolog"

	qz "github.com/abhisek/examhelper/internal/quiz"
	"github.com/abhisek/examhelper/internal/router"
	"github.com/abhisek/examhelper/internal/screens/summary"
)

var awsQuestion = qz.Question{
	Text:    "Which AWS service provides object storage?",
	Options: []string{"S3", "EC2", "RDS", "Lambda"},
}

var computeQuestion = qz.Question{
	Text:    "Which AWS service runs functions without servers?",
	Options: []string{"Glacier", "Lambda", "EBS", "VPC"},
}

// mockProvider hands out questions in order, then repeats the last one.
type mockProvider struct {
	mu        sync.Mutex
	questions []qz.Question
	err       error
	calls     int
}

func (m *mockProvider) FetchQuestion(context.Context) (qz.Question, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return qz.Question{}, m.err
	}
	i := min(m.calls-1, len(m.questions)-1)
	return m.questions[i], nil
}

// mockEvaluator grades against a fixed answer key.
type mockEvaluator struct {
	mu          sync.Mutex
	answers     map[string]string
	err         error
	submissions []qz.Submission
}

func (m *mockEvaluator) SubmitAnswer(_ context.Context, sub qz.Submission) (qz.AnswerResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.submissions = append(m.submissions, sub)
	if m.err != nil {
		return qz.AnswerResult{}, m.err
	}
	want := m.answers[sub.QuestionText]
	return qz.AnswerResult{
		IsCorrect:     sub.Answer == want,
		CorrectAnswer: want,
		Explanation:   "Because " + want + ".",
	}, nil
}

func newTestScreen(t *testing.T, delay time.Duration) (*QuizScreen, *mockProvider, *mockEvaluator) {
	t.Helper()
	p := &mockProvider{questions: []qz.Question{awsQuestion, computeQuestion}}
	e := &mockEvaluator{answers: map[string]string{
		awsQuestion.Text:     "S3",
		computeQuestion.Text: "Lambda",
	}}
	s := New(Config{
		Provider:      p,
		Evaluator:     e,
		FeedbackDelay: delay,
		Logger:        zerolog.Nop(),
	})
	return s, p, e
}

func keyPress(r rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: r, Text: string(r)}
}

func specialKey(code rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: code}
}

// run executes cmd and feeds every resulting message back into s, except
// ticks, which are returned for the test to deliver.
func run(t *testing.T, s *QuizScreen, cmd tea.Cmd) []tea.Msg {
	t.Helper()
	var pending []tea.Msg
	for _, msg := range collect(cmd) {
		switch msg.(type) {
		case feedbackDoneMsg, countdownTickMsg, router.ReplaceScreenMsg:
			pending = append(pending, msg)
		default:
			_, next := s.Update(msg)
			pending = append(pending, run(t, s, next)...)
		}
	}
	return pending
}

// collect executes cmd, flattening batches.
func collect(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, collect(c)...)
		}
		return out
	}
	if msg == nil {
		return nil
	}
	return []tea.Msg{msg}
}

func press(t *testing.T, s *QuizScreen, msg tea.KeyPressMsg) []tea.Msg {
	t.Helper()
	_, cmd := s.Update(msg)
	return run(t, s, cmd)
}

func feedbackDone(msgs []tea.Msg) (feedbackDoneMsg, bool) {
	for _, m := range msgs {
		if fd, ok := m.(feedbackDoneMsg); ok {
			return fd, true
		}
	}
	return feedbackDoneMsg{}, false
}

func TestQuizScreen_InitLoadsQuestion(t *testing.T) {
	s, p, _ := newTestScreen(t, time.Millisecond)
	run(t, s, s.Init())

	if s.Phase() != qz.PhaseAwaitingSelection {
		t.Fatalf("phase = %v, want awaiting-selection", s.Phase())
	}
	if p.calls != 1 {
		t.Errorf("provider calls = %d, want 1", p.calls)
	}
	view := s.View(80, 24)
	for _, want := range []string{awsQuestion.Text, "A)  S3", "B)  EC2", "C)  RDS", "D)  Lambda"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q:\n%s", want, view)
		}
	}
}

func TestQuizScreen_WrongAnswerShowsCorrect(t *testing.T) {
	s, _, e := newTestScreen(t, time.Millisecond)
	run(t, s, s.Init())

	press(t, s, keyPress('b'))

	if s.Phase() != qz.PhaseShowingFeedback {
		t.Fatalf("phase = %v, want showing-feedback", s.Phase())
	}
	if len(e.submissions) != 1 {
		t.Fatalf("submissions = %d, want 1", len(e.submissions))
	}
	sub := e.submissions[0]
	if sub.Answer != "EC2" || sub.QuestionText != awsQuestion.Text {
		t.Errorf("submission = %+v", sub)
	}
	if got := s.Score().Text(); got != "Score: 0 out of 1" {
		t.Errorf("score = %q", got)
	}
	view := s.View(80, 30)
	for _, want := range []string{"Not quite", "Correct answer: S3", "Because S3.", "✗ your answer", "✓ correct"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q:\n%s", want, view)
		}
	}
}

func TestQuizScreen_UppercaseDSelectsFourthOption(t *testing.T) {
	s, _, e := newTestScreen(t, time.Millisecond)
	run(t, s, s.Init())

	press(t, s, keyPress('D'))

	if len(e.submissions) != 1 || e.submissions[0].Ordinal != 3 || e.submissions[0].Answer != "Lambda" {
		t.Fatalf("submissions = %+v, want ordinal 3 (Lambda)", e.submissions)
	}
}

func TestQuizScreen_UnmappedKeyIgnored(t *testing.T) {
	s, _, e := newTestScreen(t, time.Millisecond)
	run(t, s, s.Init())

	press(t, s, keyPress('z'))

	if len(e.submissions) != 0 {
		t.Errorf("expected no submission, got %d", len(e.submissions))
	}
	if s.Phase() != qz.PhaseAwaitingSelection {
		t.Errorf("phase = %v, want awaiting-selection", s.Phase())
	}
}

func TestQuizScreen_CursorAndEnter(t *testing.T) {
	s, _, e := newTestScreen(t, time.Millisecond)
	run(t, s, s.Init())

	press(t, s, specialKey(tea.KeyDown))
	press(t, s, specialKey(tea.KeyDown))
	press(t, s, specialKey(tea.KeyUp))
	press(t, s, specialKey(tea.KeyEnter))

	if len(e.submissions) != 1 || e.submissions[0].Answer != "EC2" {
		t.Fatalf("submissions = %+v, want EC2", e.submissions)
	}
}

func TestQuizScreen_CursorStopsAtEdges(t *testing.T) {
	s, _, e := newTestScreen(t, time.Millisecond)
	run(t, s, s.Init())

	press(t, s, specialKey(tea.KeyUp))
	for range 10 {
		press(t, s, keyPress('j'))
	}
	press(t, s, specialKey(tea.KeyEnter))

	if len(e.submissions) != 1 || e.submissions[0].Answer != "Lambda" {
		t.Fatalf("submissions = %+v, want Lambda", e.submissions)
	}
}

func TestQuizScreen_DoubleSubmitIgnored(t *testing.T) {
	s, _, e := newTestScreen(t, time.Millisecond)
	run(t, s, s.Init())

	// Second press arrives while the first submission is in flight.
	_, first := s.Update(keyPress('a'))
	_, second := s.Update(keyPress('a'))
	if second != nil {
		t.Error("expected second press to produce no command")
	}
	run(t, s, first)

	// And again once feedback is showing.
	press(t, s, keyPress('b'))

	if len(e.submissions) != 1 {
		t.Fatalf("submissions = %d, want 1", len(e.submissions))
	}
	if got := s.Score().Text(); got != "Score: 1 out of 1" {
		t.Errorf("score = %q", got)
	}
}

func TestQuizScreen_FeedbackDelayThenNextQuestion(t *testing.T) {
	const delay = 30 * time.Millisecond
	s, p, _ := newTestScreen(t, delay)
	run(t, s, s.Init())

	_, cmd := s.Update(keyPress('a'))
	resultMsgs := collect(cmd)
	if len(resultMsgs) != 1 {
		t.Fatalf("expected one result message, got %d", len(resultMsgs))
	}

	_, timers := s.Update(resultMsgs[0])
	start := time.Now()
	msgs := collect(timers)
	fd, ok := feedbackDone(msgs)
	if !ok {
		t.Fatal("expected a feedback timer")
	}
	if elapsed := time.Since(start); elapsed < delay {
		t.Errorf("feedback timer fired after %v, want >= %v", elapsed, delay)
	}

	if s.Phase() != qz.PhaseShowingFeedback {
		t.Fatalf("phase = %v before timer delivered", s.Phase())
	}

	_, next := s.Update(fd)
	if s.Phase() != qz.PhaseAwaitingQuestion {
		t.Fatalf("phase = %v, want awaiting-question", s.Phase())
	}
	if strings.Contains(s.View(80, 24), "S3") {
		t.Error("previous options still rendered while loading")
	}

	run(t, s, next)
	if p.calls != 2 {
		t.Errorf("provider calls = %d, want 2", p.calls)
	}
	view := s.View(80, 24)
	if !strings.Contains(view, computeQuestion.Text) || strings.Contains(view, "S3") {
		t.Errorf("expected only the new question:\n%s", view)
	}
}

func TestQuizScreen_ScoreAcrossRounds(t *testing.T) {
	s, _, _ := newTestScreen(t, time.Millisecond)
	run(t, s, s.Init())

	pending := press(t, s, keyPress('a')) // correct
	fd, _ := feedbackDone(pending)
	_, cmd := s.Update(fd)
	run(t, s, cmd)

	press(t, s, keyPress('a')) // Glacier, wrong

	if got := s.Score().Text(); got != "Score: 1 out of 2" {
		t.Errorf("score = %q, want %q", got, "Score: 1 out of 2")
	}
}

func TestQuizScreen_StaleMessagesDropped(t *testing.T) {
	s, _, _ := newTestScreen(t, time.Millisecond)
	run(t, s, s.Init())
	round := s.ctrl.Round()

	pending := press(t, s, keyPress('a'))
	fd, _ := feedbackDone(pending)
	_, cmd := s.Update(fd)
	run(t, s, cmd)

	// Late deliveries from the first round.
	s.Update(questionLoadedMsg{Round: round, Question: awsQuestion})
	s.Update(answerResultMsg{Round: round, Result: qz.AnswerResult{IsCorrect: true}})
	_, again := s.Update(feedbackDoneMsg{Round: round})

	if again != nil {
		t.Error("stale feedback timer started a new round")
	}
	if s.ctrl.Question().Text != computeQuestion.Text {
		t.Errorf("question = %q, want the current round's", s.ctrl.Question().Text)
	}
	if s.Phase() != qz.PhaseAwaitingSelection {
		t.Errorf("phase = %v, want awaiting-selection", s.Phase())
	}
	if got := s.Score().Text(); got != "Score: 1 out of 1" {
		t.Errorf("score = %q", got)
	}
}

func TestQuizScreen_FetchFailureThenRetry(t *testing.T) {
	s, p, _ := newTestScreen(t, time.Millisecond)
	p.err = errors.New("connection refused")
	run(t, s, s.Init())

	if s.Phase() != qz.PhaseAwaitingQuestion {
		t.Fatalf("phase = %v, want awaiting-question", s.Phase())
	}
	if !strings.Contains(s.View(80, 24), "Could not load a question") {
		t.Error("expected failure notice")
	}

	// Option keys do nothing without a question.
	press(t, s, keyPress('a'))
	if p.calls != 1 {
		t.Errorf("provider calls = %d, want 1", p.calls)
	}

	p.err = nil
	press(t, s, specialKey(tea.KeyEnter))
	if s.Phase() != qz.PhaseAwaitingSelection {
		t.Fatalf("phase = %v after retry, want awaiting-selection", s.Phase())
	}
}

func TestQuizScreen_MalformedQuestion(t *testing.T) {
	s, p, _ := newTestScreen(t, time.Millisecond)
	p.questions = []qz.Question{{Text: "No options here"}}
	run(t, s, s.Init())

	if s.Phase() != qz.PhaseAwaitingQuestion {
		t.Fatalf("phase = %v, want awaiting-question", s.Phase())
	}
	if !s.fetchFailed {
		t.Error("expected malformed question to be reported")
	}
}

func TestQuizScreen_SubmitFailureReturnsToSelection(t *testing.T) {
	s, _, e := newTestScreen(t, time.Millisecond)
	run(t, s, s.Init())

	e.err = errors.New("timeout")
	press(t, s, keyPress('a'))

	if s.Phase() != qz.PhaseAwaitingSelection {
		t.Fatalf("phase = %v, want awaiting-selection", s.Phase())
	}
	if s.Score().Total != 0 {
		t.Errorf("score total = %d, want 0", s.Score().Total)
	}

	e.err = nil
	press(t, s, keyPress('a'))
	if s.Score().Text() != "Score: 1 out of 1" {
		t.Errorf("score = %q after resubmit", s.Score().Text())
	}
}

func TestQuizScreen_QuitConfirm(t *testing.T) {
	s, _, e := newTestScreen(t, time.Millisecond)
	run(t, s, s.Init())

	press(t, s, specialKey(tea.KeyEscape))
	if !strings.Contains(s.View(80, 24), "End the quiz?") {
		t.Fatal("expected quit confirmation")
	}

	// Answer keys are swallowed by the dialog.
	press(t, s, keyPress('a'))
	if len(e.submissions) != 0 {
		t.Error("answer submitted behind the quit dialog")
	}

	press(t, s, keyPress('n'))
	if strings.Contains(s.View(80, 24), "End the quiz?") {
		t.Fatal("expected dialog dismissed")
	}

	press(t, s, specialKey(tea.KeyEscape))
	msgs := press(t, s, keyPress('y'))
	if len(msgs) != 1 {
		t.Fatalf("expected one navigation message, got %d", len(msgs))
	}
	replace, ok := msgs[0].(router.ReplaceScreenMsg)
	if !ok {
		t.Fatalf("expected ReplaceScreenMsg, got %T", msgs[0])
	}
	if _, ok := replace.Screen.(*summary.SummaryScreen); !ok {
		t.Errorf("expected summary screen, got %T", replace.Screen)
	}
}

func TestQuizScreen_CustomKeys(t *testing.T) {
	keys, err := qz.NewKeyMap("asdf")
	if err != nil {
		t.Fatal(err)
	}
	p := &mockProvider{questions: []qz.Question{awsQuestion}}
	e := &mockEvaluator{answers: map[string]string{awsQuestion.Text: "S3"}}
	s := New(Config{Provider: p, Evaluator: e, Keys: keys, FeedbackDelay: time.Millisecond, Logger: zerolog.Nop()})
	run(t, s, s.Init())

	if !strings.Contains(s.View(80, 24), "F)  Lambda") {
		t.Error("expected option labels from the custom key map")
	}

	press(t, s, keyPress('D'))
	if len(e.submissions) != 1 || e.submissions[0].Answer != "RDS" {
		t.Fatalf("submissions = %+v, want RDS", e.submissions)
	}
}

func TestQuizScreen_KeyHints(t *testing.T) {
	s, _, _ := newTestScreen(t, time.Millisecond)
	run(t, s, s.Init())

	hints := s.KeyHints()
	if len(hints) == 0 || hints[0].Key != "A/B/C/D" {
		t.Errorf("hints = %+v", hints)
	}
}

func TestQuizScreen_ExtraOptionsUnlabeledButReachable(t *testing.T) {
	five := qz.Question{
		Text:    "Which of these is block storage?",
		Options: []string{"S3", "EC2", "RDS", "Lambda", "EBS"},
	}
	p := &mockProvider{questions: []qz.Question{five}}
	e := &mockEvaluator{answers: map[string]string{five.Text: "EBS"}}
	s := New(Config{Provider: p, Evaluator: e, FeedbackDelay: time.Millisecond, Logger: zerolog.Nop()})
	run(t, s, s.Init())

	view := s.View(80, 24)
	if strings.Contains(view, "5)") {
		t.Errorf("fifth option labeled with an unbound key:\n%s", view)
	}
	if !strings.Contains(view, "EBS") {
		t.Errorf("fifth option not rendered:\n%s", view)
	}

	press(t, s, keyPress('5'))
	if len(e.submissions) != 0 {
		t.Fatalf("digit key submitted %+v", e.submissions)
	}

	for range 4 {
		press(t, s, specialKey(tea.KeyDown))
	}
	press(t, s, specialKey(tea.KeyEnter))
	if len(e.submissions) != 1 || e.submissions[0].Answer != "EBS" {
		t.Fatalf("submissions = %+v, want EBS", e.submissions)
	}
}
