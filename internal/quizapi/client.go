package quizapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/goccy/go-json"
	"github.com/imroc/req/v3"
	"github.com/rs/zerolog"

	"github.com/abhisek/examhelper/internal/config"
	"github.com/abhisek/examhelper/internal/quiz"
)

const (
	questionPath = "/get_question"
	answerPath   = "/submit_answer"

	maxErrorBody = 256
)

// Client talks to a quiz backend. It implements both quiz.QuestionProvider
// and quiz.AnswerEvaluator.
type Client struct {
	http  *req.Client
	retry config.RetryConfig
	log   zerolog.Logger
}

var (
	_ quiz.QuestionProvider = (*Client)(nil)
	_ quiz.AnswerEvaluator  = (*Client)(nil)
)

// Option configures a Client.
type Option func(*Client)

// WithLogger sets the logger used for retry notices.
func WithLogger(l zerolog.Logger) Option {
	return func(c *Client) { c.log = l }
}

// WithRetry overrides the retry policy for question fetches.
func WithRetry(r config.RetryConfig) Option {
	return func(c *Client) { c.retry = r }
}

// New creates a Client for baseURL with a per-request timeout.
func New(baseURL string, timeout time.Duration, opts ...Option) *Client {
	httpClient := req.C().
		SetBaseURL(strings.TrimSuffix(baseURL, "/")).
		SetTimeout(timeout).
		SetJsonMarshal(json.Marshal).
		SetJsonUnmarshal(json.Unmarshal).
		SetCommonHeader("Accept", "application/json")

	c := &Client{
		http:  httpClient,
		retry: config.DefaultConfig().Retry,
		log:   zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.retry.MaxAttempts < 1 {
		c.retry.MaxAttempts = 1
	}
	return c
}

// NewFromConfig creates a Client from the quiz client configuration.
func NewFromConfig(cfg config.Config, log zerolog.Logger) *Client {
	return New(cfg.BaseURL, cfg.RequestTimeout, WithRetry(cfg.Retry), WithLogger(log))
}

type questionEnvelope struct {
	Question *quiz.Question `json:"question"`
}

// FetchQuestion requests a random question. Transport failures, 429 and 5xx
// are retried up to the configured number of attempts.
func (c *Client) FetchQuestion(ctx context.Context) (quiz.Question, error) {
	var q quiz.Question
	attempt := 0

	op := func() error {
		attempt++
		var err error
		q, err = c.fetchOnce(ctx)
		if err != nil && !Retryable(err) {
			return backoff.Permanent(err)
		}
		return err
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(c.backOff(), uint64(c.retry.MaxAttempts-1)),
		ctx,
	)
	err := backoff.RetryNotify(op, policy, func(err error, next time.Duration) {
		c.log.Warn().Err(err).Int("attempt", attempt).Dur("retry_in", next).Msg("question fetch failed, retrying")
	})
	if err != nil {
		return quiz.Question{}, err
	}
	return q, nil
}

func (c *Client) fetchOnce(ctx context.Context) (quiz.Question, error) {
	const op = "get question"

	resp, err := c.http.R().SetContext(ctx).Get(questionPath)
	if err != nil {
		return quiz.Question{}, &ErrTransport{Op: op, Err: err}
	}
	body, err := readBody(op, resp)
	if err != nil {
		return quiz.Question{}, err
	}

	var env questionEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return quiz.Question{}, &ErrMalformedResponse{Op: op, Body: body, Err: err}
	}
	if env.Question == nil {
		return quiz.Question{}, &ErrMalformedResponse{Op: op, Body: body, Err: errors.New(`missing "question"`)}
	}
	if err := env.Question.Validate(); err != nil {
		return quiz.Question{}, &ErrMalformedResponse{Op: op, Body: body, Err: err}
	}
	return *env.Question, nil
}

type resultEnvelope struct {
	IsCorrect     *bool  `json:"is_correct"`
	CorrectAnswer string `json:"correct_answer"`
	Explanation   string `json:"explanation"`
	Error         string `json:"error"`
}

// SubmitAnswer posts the selected option and question text for grading.
// Submissions are not retried.
func (c *Client) SubmitAnswer(ctx context.Context, sub quiz.Submission) (quiz.AnswerResult, error) {
	const op = "submit answer"

	payload, err := json.Marshal(sub)
	if err != nil {
		return quiz.AnswerResult{}, fmt.Errorf("%s: encode: %w", op, err)
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBodyBytes(payload).
		Post(answerPath)
	if err != nil {
		return quiz.AnswerResult{}, &ErrTransport{Op: op, Err: err}
	}
	body, err := readBody(op, resp)
	if err != nil {
		return quiz.AnswerResult{}, err
	}

	var env resultEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return quiz.AnswerResult{}, &ErrMalformedResponse{Op: op, Body: body, Err: err}
	}
	if env.Error != "" {
		return quiz.AnswerResult{}, &ErrMalformedResponse{Op: op, Body: body, Err: errors.New(env.Error)}
	}
	if env.IsCorrect == nil {
		return quiz.AnswerResult{}, &ErrMalformedResponse{Op: op, Body: body, Err: errors.New(`missing "is_correct"`)}
	}

	return quiz.AnswerResult{
		IsCorrect:     *env.IsCorrect,
		CorrectAnswer: env.CorrectAnswer,
		Explanation:   env.Explanation,
	}, nil
}

func (c *Client) backOff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.retry.InitialWait
	b.MaxInterval = c.retry.MaxWait
	b.Multiplier = c.retry.Multiplier
	b.RandomizationFactor = 0.2
	b.MaxElapsedTime = 0
	return b
}

// readBody returns the body of a 2xx response, or ErrUnexpectedStatus.
func readBody(op string, resp *req.Response) ([]byte, error) {
	body, err := resp.ToBytes()
	if err != nil {
		return nil, &ErrTransport{Op: op, Err: err}
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		snippet := strings.TrimSpace(string(body))
		if len(snippet) > maxErrorBody {
			snippet = snippet[:maxErrorBody]
		}
		return nil, &ErrUnexpectedStatus{Op: op, StatusCode: resp.StatusCode, Body: snippet}
	}
	return body, nil
}
