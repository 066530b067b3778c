package denoise

import (
	"context"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/photonworks/lampnoise/internal/catalog"
)

// minTrainingSamples guards the design matrix: below this the fit is
// underdetermined enough that the fallback smoother is the better answer.
const minTrainingSamples = 16

// fitModel trains the Fourier-feature linear model by full-batch gradient
// descent on mean squared error. Time is normalized to [0,1] and the target
// standardized before training; early stopping halts the loop once the best
// loss fails to improve by MinDelta for Patience consecutive epochs. The
// context is checked between epochs for cooperative cancellation.
func fitModel(ctx context.Context, channel catalog.Channel, times, values []float64, cfg Config) (Result, error) {
	if cfg.Kind != ModelFourier {
		return Result{}, fmt.Errorf("unknown model kind %q", cfg.Kind)
	}
	n := len(values)
	if n < minTrainingSamples || len(times) != n {
		return Result{}, fmt.Errorf("need at least %d aligned samples, got %d", minTrainingSamples, n)
	}

	// Cap the feature count so the design matrix stays overdetermined on
	// short series.
	nFreq := cfg.NFreq
	if maxFreq := (n - 2) / 2; nFreq > maxFreq {
		nFreq = maxFreq
	}
	if nFreq < 1 {
		nFreq = 1
	}

	tMin, tMax := times[0], times[n-1]
	if tMax-tMin < 1e-9 {
		tMax = tMin + 1.0
	}

	yMean := stat.Mean(values, nil)
	yStd := stat.StdDev(values, nil) + 1e-9

	dim := 2 + 2*nFreq // bias, t, then sin/cos pairs
	design := mat.NewDense(n, dim, nil)
	y := mat.NewVecDense(n, nil)
	for i := 0; i < n; i++ {
		t := (times[i] - tMin) / (tMax - tMin)
		design.Set(i, 0, 1)
		design.Set(i, 1, t)
		for k := 1; k <= nFreq; k++ {
			angle := 2 * math.Pi * t * float64(k)
			design.Set(i, 2*k, math.Sin(angle))
			design.Set(i, 2*k+1, math.Cos(angle))
		}
		y.SetVec(i, (values[i]-yMean)/yStd)
	}

	weights := mat.NewVecDense(dim, nil)
	pred := mat.NewVecDense(n, nil)
	diff := mat.NewVecDense(n, nil)
	grad := mat.NewVecDense(dim, nil)

	bestLoss := math.Inf(1)
	stale := 0
	epochsRun := 0
	finalLoss := math.Inf(1)

	for epoch := 0; epoch < cfg.Epochs; epoch++ {
		select {
		case <-ctx.Done():
			return Result{}, fmt.Errorf("training cancelled after %d epochs: %w", epochsRun, ctx.Err())
		default:
		}

		pred.MulVec(design, weights)
		diff.SubVec(pred, y)

		loss := mat.Dot(diff, diff) / float64(n)
		if math.IsNaN(loss) || math.IsInf(loss, 0) {
			return Result{}, fmt.Errorf("loss diverged at epoch %d", epochsRun)
		}

		grad.MulVec(design.T(), diff)
		grad.ScaleVec(2*cfg.LearningRate/float64(n), grad)
		weights.SubVec(weights, grad)

		epochsRun++
		finalLoss = loss

		if loss < bestLoss-cfg.MinDelta {
			bestLoss = loss
			stale = 0
		} else {
			stale++
			if stale >= cfg.Patience {
				break
			}
		}
	}

	pred.MulVec(design, weights)

	processed := make([]float64, n)
	residual := make([]float64, n)
	for i := 0; i < n; i++ {
		processed[i] = pred.AtVec(i)*yStd + yMean
		residual[i] = values[i] - processed[i]
	}

	return Result{
		Channel:   channel,
		Time:      times,
		Original:  values,
		Processed: processed,
		Residual:  residual,
		EpochsRun: epochsRun,
		FinalLoss: finalLoss,
	}, nil
}
