// Package backtest evaluates a classifier with walk-forward validation: every
// iteration trains only on rows that precede its test rows in time.
package backtest

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/stat"

	"github.com/okian/formcast/internal/domain/classifier"
	"github.com/okian/formcast/internal/domain/model"
	"github.com/okian/formcast/internal/domain/selection"
	"github.com/okian/formcast/internal/domain/types"
	"github.com/okian/formcast/pkg/logger"
	"github.com/okian/formcast/pkg/metrics"
)

// Skip reasons reported for iterations that produced no score.
const (
	ReasonEmptyTrain      = "empty train partition"
	ReasonEmptyTest       = "empty test partition"
	ReasonUnlabelledTrain = "no labelled training rows"
	ReasonUnlabelledTest  = "no labelled test rows"
)

// Input is the data handed to one backtest run.
type Input struct {
	// Rows must be ordered by date; row IDs are reported back in predictions.
	Rows []model.MatchupRow

	// ExcludedIntegrity is the number of rows dropped upstream for data integrity.
	ExcludedIntegrity int
}

// Engine runs walk-forward backtests.
type Engine struct {
	splitter    Splitter
	selector    selection.Selector
	factory     classifier.Factory
	parallelism int
	logger      logger.Logger
}

// NewEngine creates an Engine. Iterations run one at a time unless WithParallelism is given.
func NewEngine(splitter Splitter, selector selection.Selector, factory classifier.Factory, opts ...Option) (*Engine, error) {
	if splitter == nil || selector == nil || factory == nil {
		return nil, errors.New("backtest: splitter, selector and classifier factory are required")
	}
	e := &Engine{
		splitter:    splitter,
		selector:    selector,
		factory:     factory,
		parallelism: 1,
		logger:      logger.Get().Named("backtest"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// iteration is the outcome of one split.
type iteration struct {
	result      types.IterationResult
	predictions []types.Prediction
}

// Run splits the rows, fits and scores every iteration and aggregates a report.
// A report is returned alongside ErrNoScoredIterations so callers can inspect skips.
func (e *Engine) Run(ctx context.Context, in Input) (types.Report, error) {
	metrics.RecordBacktestRun()

	splits, err := e.splitter.Splits(in.Rows)
	if err != nil {
		return types.Report{}, fmt.Errorf("split rows: %w", err)
	}

	results := make([]iteration, len(splits))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.parallelism)
	for i := range splits {
		sp := splits[i]
		g.Go(func() error {
			it, err := e.runIteration(gctx, in.Rows, sp)
			if err != nil {
				metrics.RecordErrorByComponent("backtest", "iteration")
				return fmt.Errorf("iteration %s: %w", sp.Name, err)
			}
			results[sp.Index] = it
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return types.Report{}, err
	}

	report := aggregate(results)
	report.Policy = e.splitter.Name()
	report.ExcludedIntegrity = in.ExcludedIntegrity

	metrics.UpdateBacktestAccuracy(report.OverallAccuracy)
	metrics.RecordBacktestPredictions(len(report.Predictions))

	if report.ScoredIterations() == 0 {
		e.logger.Warn(ctx, "backtest produced no scored iteration",
			logger.Int("iterations", len(report.Iterations)),
		)
		return report, ErrNoScoredIterations
	}

	e.logger.Info(ctx, "backtest complete",
		logger.String("policy", report.Policy),
		logger.Int("iterations", len(report.Iterations)),
		logger.Int("valid_predictions", report.ValidPredictions),
		logger.Int("excluded_unknown", report.ExcludedUnknown),
		logger.Int("excluded_integrity", report.ExcludedIntegrity),
		logger.Float64("accuracy", report.OverallAccuracy),
	)
	return report, nil
}

// runIteration fits a fresh selection and classifier on the train rows and scores the test rows.
func (e *Engine) runIteration(ctx context.Context, rows []model.MatchupRow, sp Split) (iteration, error) {
	res := types.IterationResult{
		Index:     sp.Index,
		Name:      sp.Name,
		TrainRows: len(sp.Train),
		TestRows:  len(sp.Test),
	}

	skip := func(reason string) (iteration, error) {
		res.Skipped = true
		res.SkipReason = reason
		metrics.RecordBacktestIteration("skipped")
		e.logger.Warn(ctx, "backtest iteration skipped",
			logger.String("iteration", sp.Name),
			logger.String("reason", reason),
			logger.Int("train_rows", res.TrainRows),
			logger.Int("test_rows", res.TestRows),
		)
		return iteration{result: res}, nil
	}

	switch {
	case len(sp.Train) == 0:
		return skip(ReasonEmptyTrain)
	case len(sp.Test) == 0:
		return skip(ReasonEmptyTest)
	}

	trainX := make([][]float64, 0, len(sp.Train))
	trainY := make([]int, 0, len(sp.Train))
	for _, i := range sp.Train {
		class, ok := rows[i].Label.Class()
		if !ok {
			continue
		}
		trainX = append(trainX, rows[i].Values())
		trainY = append(trainY, class)
	}
	if len(trainX) == 0 {
		return skip(ReasonUnlabelledTrain)
	}

	start := time.Now()
	defer func() {
		metrics.RecordBacktestFitLatency(float64(time.Since(start).Microseconds()) / 1000)
	}()

	ts, err := selection.NewTrainingSet(trainX, trainY)
	if err != nil {
		return iteration{}, fmt.Errorf("build training set: %w", err)
	}
	transform, err := e.selector.Fit(ctx, ts)
	if err != nil {
		return iteration{}, fmt.Errorf("fit selection: %w", err)
	}
	res.Columns = transform.Columns()

	xTrain, err := transform.Apply(trainX)
	if err != nil {
		return iteration{}, fmt.Errorf("transform train rows: %w", err)
	}
	testX := make([][]float64, len(sp.Test))
	for k, i := range sp.Test {
		testX[k] = rows[i].Values()
	}
	xTest, err := transform.Apply(testX)
	if err != nil {
		return iteration{}, fmt.Errorf("transform test rows: %w", err)
	}

	clf := e.factory()
	if err := clf.Fit(ctx, xTrain, trainY); err != nil {
		return iteration{}, fmt.Errorf("fit classifier: %w", err)
	}
	predicted, err := clf.Predict(xTest)
	if err != nil {
		return iteration{}, fmt.Errorf("predict: %w", err)
	}
	var confidence []float64
	if scorer, ok := clf.(classifier.Scorer); ok {
		if confidence, err = scorer.DecisionFunction(xTest); err != nil {
			return iteration{}, fmt.Errorf("decision function: %w", err)
		}
	}

	preds := make([]types.Prediction, len(sp.Test))
	for k, i := range sp.Test {
		row := rows[i]
		p := types.Prediction{
			RowID:     row.ID,
			Team:      row.Game.Team,
			Opponent:  row.Game.Opponent,
			Date:      row.Game.Date,
			Actual:    row.Label,
			Predicted: predicted[k],
			Iteration: sp.Index,
		}
		if confidence != nil {
			c := confidence[k]
			p.Confidence = &c
		}
		if row.Label.Known() {
			res.Scored++
			if p.Correct() {
				res.Correct++
			}
		}
		preds[k] = p
	}

	it := iteration{result: res, predictions: preds}
	if res.Scored == 0 {
		it.result.Skipped = true
		it.result.SkipReason = ReasonUnlabelledTest
		metrics.RecordBacktestIteration("skipped")
		return it, nil
	}
	it.result.Accuracy = float64(res.Correct) / float64(res.Scored)
	metrics.RecordBacktestIteration("scored")
	return it, nil
}

// aggregate concatenates iterations in index order.
func aggregate(results []iteration) types.Report {
	var report types.Report
	var accuracies []float64
	for _, it := range results {
		report.Iterations = append(report.Iterations, it.result)
		report.Predictions = append(report.Predictions, it.predictions...)
		if !it.result.Skipped {
			accuracies = append(accuracies, it.result.Accuracy)
		}
		report.ValidPredictions += it.result.Scored
		report.Correct += it.result.Correct
		report.ExcludedUnknown += len(it.predictions) - it.result.Scored
	}
	if report.ValidPredictions > 0 {
		report.OverallAccuracy = float64(report.Correct) / float64(report.ValidPredictions)
	}
	if len(accuracies) > 0 {
		report.MeanIterationAccuracy = stat.Mean(accuracies, nil)
	}
	report.PerIterationAccuracy = accuracies
	return report
}
