package bank

import (
	"context"
	"errors"
	"math/rand/v2"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleEntries() []Entry {
	return []Entry{
		{
			Text:        "Which AWS service provides object storage?",
			Options:     []string{"S3", "EC2", "RDS", "Lambda"},
			Answer:      "S3",
			Explanation: "S3 is object storage.",
		},
		{
			Text:        "Which service is serverless compute?",
			Options:     []string{"EC2", "Lambda", "EBS", "VPC"},
			Answer:      "Lambda",
			Explanation: "Lambda runs code without servers.",
		},
	}
}

func TestEntry_Grade(t *testing.T) {
	e := sampleEntries()[0]
	tests := []struct {
		answer string
		want   bool
	}{
		{"S3", true},
		{" S3 ", true},
		{"A", true},
		{"a", true},
		{"EC2", false},
		{"B", false},
		{"", false},
		{"Z", false},
	}
	for _, tt := range tests {
		t.Run(tt.answer, func(t *testing.T) {
			res := e.Grade(tt.answer)
			assert.Equal(t, tt.want, res.IsCorrect)
			assert.Equal(t, "S3", res.CorrectAnswer)
			assert.Equal(t, "S3 is object storage.", res.Explanation)
		})
	}
}

func TestEntry_QuestionCopiesOptions(t *testing.T) {
	e := sampleEntries()[0]
	q := e.Question()
	q.Options[0] = "changed"
	assert.Equal(t, "S3", e.Options[0])
}

func TestMemory(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryWithRand(sampleEntries(), rand.New(rand.NewPCG(1, 2)))

	n, err := m.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	got, err := m.Lookup(ctx, "Which service is serverless compute?")
	require.NoError(t, err)
	assert.Equal(t, "Lambda", got.Answer)

	_, err = m.Lookup(ctx, "unknown")
	assert.True(t, errors.Is(err, ErrNotFound))

	seen := map[string]bool{}
	for range 50 {
		e, err := m.Random(ctx)
		require.NoError(t, err)
		seen[e.Text] = true
	}
	assert.Len(t, seen, 2)
}

func TestMemory_DuplicateTextReplaces(t *testing.T) {
	entries := sampleEntries()
	dup := entries[0]
	dup.Answer = "EC2"
	m := NewMemory(append(entries, dup))

	n, _ := m.Count(context.Background())
	assert.Equal(t, 2, n)
	got, _ := m.Lookup(context.Background(), dup.Text)
	assert.Equal(t, "EC2", got.Answer)
	assert.Len(t, m.Entries(), 2)
}

func TestMemory_Empty(t *testing.T) {
	_, err := NewMemory(nil).Random(context.Background())
	assert.ErrorIs(t, err, ErrEmpty)
}

func openTestSQLite(t *testing.T) *SQLite {
	t.Helper()
	s, err := OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "bank.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSQLite_ImportAndQuery(t *testing.T) {
	ctx := context.Background()
	s := openTestSQLite(t)

	_, err := s.Random(ctx)
	assert.ErrorIs(t, err, ErrEmpty)

	n, err := s.Import(ctx, sampleEntries())
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	count, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	got, err := s.Lookup(ctx, "Which AWS service provides object storage?")
	require.NoError(t, err)
	assert.Equal(t, sampleEntries()[0], got)

	_, err = s.Lookup(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	r, err := s.Random(ctx)
	require.NoError(t, err)
	assert.Contains(t, []string{sampleEntries()[0].Text, sampleEntries()[1].Text}, r.Text)
}

func TestSQLite_ImportUpserts(t *testing.T) {
	ctx := context.Background()
	s := openTestSQLite(t)

	_, err := s.Import(ctx, sampleEntries())
	require.NoError(t, err)

	updated := sampleEntries()[:1]
	updated[0].Explanation = "Simple Storage Service."
	_, err = s.Import(ctx, updated)
	require.NoError(t, err)

	count, _ := s.Count(ctx)
	assert.Equal(t, 2, count)
	got, err := s.Lookup(ctx, updated[0].Text)
	require.NoError(t, err)
	assert.Equal(t, "Simple Storage Service.", got.Explanation)
}
