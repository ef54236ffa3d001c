package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/noah-isme/tuition-center-api/pkg/errors"
)

func TestSuggestNextCode(t *testing.T) {
	cases := []struct {
		prev string
		want string
		ok   bool
	}{
		{prev: "MATH-007", want: "MATH-008", ok: true},
		{prev: "MATH-099", want: "MATH-100", ok: true},
		{prev: "A999", want: "A1000", ok: true},
		{prev: "0009", want: "0010", ok: true},
		{prev: "CLS-10", want: "CLS-11", ok: true},
		{prev: "TERM", want: "TERM-1", ok: true},
		{prev: "X12Y", want: "X12Y-1", ok: true},
		{prev: "STU-99999999999999999999", want: "STU-100000000000000000000", ok: true},
		{prev: "", ok: false},
		{prev: "   ", ok: false},
	}
	for _, tc := range cases {
		got, ok := SuggestNextCode(tc.prev)
		assert.Equal(t, tc.ok, ok, tc.prev)
		assert.Equal(t, tc.want, got, tc.prev)
	}
}

type stubCodeSource struct {
	code string
	err  error
}

func (s stubCodeSource) LatestCode(ctx context.Context) (string, error) { return s.code, s.err }

func TestCodeHintServiceNext(t *testing.T) {
	svc := NewCodeHintService(map[string]CodeSource{
		HintAssignments: stubCodeSource{code: "MATH-007"},
		HintClasses:     stubCodeSource{},
		HintStudents:    stubCodeSource{err: errors.New("db down")},
	}, nil)

	hint, err := svc.Next(context.Background(), HintAssignments)
	require.NoError(t, err)
	assert.Equal(t, "MATH-007", hint.Latest)
	assert.Equal(t, "MATH-008", hint.Suggested)

	hint, err = svc.Next(context.Background(), HintClasses)
	require.NoError(t, err)
	assert.Empty(t, hint.Latest)
	assert.Empty(t, hint.Suggested)

	_, err = svc.Next(context.Background(), HintStudents)
	assert.ErrorIs(t, err, appErrors.ErrInternal)

	_, err = svc.Next(context.Background(), "unknown")
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
}
