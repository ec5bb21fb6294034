package query

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talentforge/candidate-os/internal/domain/query"
	"github.com/talentforge/candidate-os/pkg/apperror"
	"github.com/talentforge/candidate-os/pkg/logger"
	"github.com/talentforge/candidate-os/pkg/retrier"
)

type fakeTranslator struct {
	sql   string
	err   error
	calls int
}

func (f *fakeTranslator) Translate(_ context.Context, _ string, _ query.SchemaDescription) (string, error) {
	f.calls++
	return f.sql, f.err
}

type fakeExecutor struct {
	result *query.Result
	err    error
	calls  int
	plans  []query.Plan
}

func (f *fakeExecutor) Execute(_ context.Context, plan query.Plan) (*query.Result, error) {
	f.calls++
	f.plans = append(f.plans, plan)
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

func newUseCase(tr *fakeTranslator, ex *fakeExecutor) *QueryUseCase {
	return NewQueryUseCase(tr, ex, query.CanonicalSchema(), logger.NewNop(), retrier.Policy{MaxAttempts: 1})
}

func TestExecuteHappyPath(t *testing.T) {
	tr := &fakeTranslator{sql: "SELECT name FROM candidates WHERE seniority = 'Mid'"}
	ex := &fakeExecutor{result: &query.Result{
		Columns: []string{"name"},
		Rows:    []query.Row{{"name": "Ana Li"}},
	}}

	out, err := newUseCase(tr, ex).Execute(context.Background(), QueryInput{Request: "who is mid level?"})
	require.NoError(t, err)

	assert.Equal(t, 1, ex.calls)
	assert.Equal(t, []string{"name"}, out.Columns)
	require.Len(t, out.Rows, 1)
	assert.Equal(t, "Ana Li", out.Rows[0]["name"])
	assert.Equal(t, []string{"candidates"}, ex.plans[0].Tables)
}

func TestExecuteRejectedQueryNeverReachesStore(t *testing.T) {
	tr := &fakeTranslator{sql: "DELETE FROM candidates"}
	ex := &fakeExecutor{}

	_, err := newUseCase(tr, ex).Execute(context.Background(), QueryInput{Request: "delete all engineers"})
	require.Error(t, err)
	assert.ErrorIs(t, err, apperror.ErrQueryRejected)
	assert.Zero(t, ex.calls)
}

func TestExecuteOutOfSchemaQueryRejected(t *testing.T) {
	tr := &fakeTranslator{sql: "SELECT secret FROM vault"}
	ex := &fakeExecutor{}

	_, err := newUseCase(tr, ex).Execute(context.Background(), QueryInput{Request: "show me the vault"})
	require.Error(t, err)
	assert.ErrorIs(t, err, apperror.ErrQueryRejected)
	assert.Zero(t, ex.calls)
}

func TestExecuteStoreErrorIsDistinctKind(t *testing.T) {
	tr := &fakeTranslator{sql: "SELECT name FROM candidates"}
	ex := &fakeExecutor{err: apperror.NewQueryFailed("syntax error", nil)}

	_, err := newUseCase(tr, ex).Execute(context.Background(), QueryInput{Request: "list names"})
	require.Error(t, err)
	assert.ErrorIs(t, err, apperror.ErrQueryFailed)
	assert.NotErrorIs(t, err, apperror.ErrQueryRejected)
}

func TestExecuteEmptyRequest(t *testing.T) {
	tr := &fakeTranslator{}
	ex := &fakeExecutor{}

	_, err := newUseCase(tr, ex).Execute(context.Background(), QueryInput{})
	require.Error(t, err)
	assert.ErrorIs(t, err, apperror.ErrInvalidInput)
	assert.Zero(t, tr.calls)
	assert.Zero(t, ex.calls)
}
