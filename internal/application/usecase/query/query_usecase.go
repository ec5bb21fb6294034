package query

import (
	"context"

	"go.uber.org/zap"

	"github.com/talentforge/candidate-os/internal/application/service"
	"github.com/talentforge/candidate-os/internal/domain/query"
	"github.com/talentforge/candidate-os/pkg/apperror"
	"github.com/talentforge/candidate-os/pkg/logger"
	"github.com/talentforge/candidate-os/pkg/retrier"
)

type QueryUseCase struct {
	translator service.QueryTranslator
	executor   query.Executor
	schema     query.SchemaDescription
	logger     logger.Logger
	retry      retrier.Policy
}

func NewQueryUseCase(
	translator service.QueryTranslator,
	executor query.Executor,
	schema query.SchemaDescription,
	log logger.Logger,
	retry retrier.Policy,
) *QueryUseCase {
	return &QueryUseCase{
		translator: translator,
		executor:   executor,
		schema:     schema,
		logger:     log,
		retry:      retry,
	}
}

type QueryInput struct {
	Request string
}

type QueryOutput struct {
	SQL     string      `json:"sql"`
	Columns []string    `json:"columns"`
	Rows    []query.Row `json:"rows"`
}

// Execute translates a free-text request into SQL, passes it through the
// safety gate and runs it read-only. A gate rejection is returned without
// ever touching the store; a store error on a gated query is a distinct
// error kind.
func (uc *QueryUseCase) Execute(ctx context.Context, input QueryInput) (*QueryOutput, error) {
	if input.Request == "" {
		return nil, apperror.NewInvalidInput("request text is required", nil)
	}

	l := uc.logger.With(zap.String("request", input.Request))

	var candidateSQL string
	err := uc.retry.Do(ctx, func() error {
		var translateErr error
		candidateSQL, translateErr = uc.translator.Translate(ctx, input.Request, uc.schema)
		return translateErr
	})
	if err != nil {
		l.Error("translation failed", err)
		return nil, err
	}
	l.Debug("candidate query translated", zap.String("sql", candidateSQL))

	plan, err := query.ValidatePlan(candidateSQL, uc.schema)
	if err != nil {
		l.Warn("candidate query rejected", zap.String("sql", candidateSQL), zap.Error(err))
		return nil, err
	}

	result, err := uc.executor.Execute(ctx, plan)
	if err != nil {
		l.Error("gated query failed at the store", err, zap.String("sql", plan.SQL))
		return nil, err
	}

	l.Info("query executed", zap.Int("rows", len(result.Rows)), zap.Strings("tables", plan.Tables))
	return &QueryOutput{
		SQL:     plan.SQL,
		Columns: result.Columns,
		Rows:    result.Rows,
	}, nil
}
