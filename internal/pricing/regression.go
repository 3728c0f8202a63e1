package pricing

import (
	"errors"
	"math"
)

const (
	numFeatures   = 5
	minSamples    = 3
	defaultRating = 3.0
)

// ErrInsufficientData indicates there are not enough samples to fit the model.
var ErrInsufficientData = errors.New("pricing: not enough data to train model")

// Sample is one historical observation used to fit the regression predictor.
type Sample struct {
	CostPrice      float64
	SellingPrice   float64
	StockAvailable int
	UnitsSold      int
	CustomerRating *float64
	DemandForecast float64
}

// RegressionForecaster is a least-squares linear model over standardized
// product features (cost, price, stock, units sold, rating). It implements
// Forecaster and can replace the seasonal formula as the forecast source.
type RegressionForecaster struct {
	weights   [numFeatures]float64
	intercept float64
	mean      [numFeatures]float64
	stddev    [numFeatures]float64
}

// TrainRegression fits a RegressionForecaster on the given samples using the
// normal equations. At least 3 samples are required.
func TrainRegression(samples []Sample) (*RegressionForecaster, error) {
	if len(samples) < minSamples {
		return nil, ErrInsufficientData
	}

	n := len(samples)
	raw := make([][numFeatures]float64, n)
	targets := make([]float64, n)
	for i, s := range samples {
		raw[i] = features(s.CostPrice, s.SellingPrice, s.StockAvailable, s.UnitsSold, s.CustomerRating)
		if s.DemandForecast != 0 {
			targets[i] = s.DemandForecast
		} else {
			targets[i] = float64(s.UnitsSold)
		}
	}

	f := &RegressionForecaster{}
	for j := 0; j < numFeatures; j++ {
		var sum float64
		for i := 0; i < n; i++ {
			sum += raw[i][j]
		}
		f.mean[j] = sum / float64(n)
		var sq float64
		for i := 0; i < n; i++ {
			d := raw[i][j] - f.mean[j]
			sq += d * d
		}
		f.stddev[j] = math.Sqrt(sq / float64(n))
		if f.stddev[j] == 0 {
			f.stddev[j] = 1
		}
	}

	scaled := make([][numFeatures]float64, n)
	for i := 0; i < n; i++ {
		for j := 0; j < numFeatures; j++ {
			scaled[i][j] = (raw[i][j] - f.mean[j]) / f.stddev[j]
		}
	}

	weights, intercept, err := solveLeastSquares(scaled, targets)
	if err != nil {
		return nil, err
	}
	f.weights = weights
	f.intercept = intercept
	return f, nil
}

// Predict returns the modeled demand forecast, floored at zero.
func (f *RegressionForecaster) Predict(costPrice, sellingPrice float64, stockAvailable, unitsSold int, customerRating *float64) (float64, bool) {
	if f == nil {
		return 0, false
	}
	x := features(costPrice, sellingPrice, stockAvailable, unitsSold, customerRating)
	pred := f.intercept
	for j := 0; j < numFeatures; j++ {
		pred += f.weights[j] * (x[j] - f.mean[j]) / f.stddev[j]
	}
	if pred < 0 {
		pred = 0
	}
	return math.Round(pred*100) / 100, true
}

func features(costPrice, sellingPrice float64, stockAvailable, unitsSold int, customerRating *float64) [numFeatures]float64 {
	rating := defaultRating
	if customerRating != nil {
		rating = *customerRating
	}
	return [numFeatures]float64{costPrice, sellingPrice, float64(stockAvailable), float64(unitsSold), rating}
}

// solveLeastSquares fits y = Xw + b via the normal equations with an added
// bias column, using Gaussian elimination with partial pivoting. A small ridge
// term keeps the system solvable when features are collinear.
func solveLeastSquares(rows [][numFeatures]float64, targets []float64) ([numFeatures]float64, float64, error) {
	const dim = numFeatures + 1
	const ridge = 1e-8

	var ata [dim][dim]float64
	var aty [dim]float64
	for i, row := range rows {
		var x [dim]float64
		copy(x[:numFeatures], row[:])
		x[numFeatures] = 1
		for a := 0; a < dim; a++ {
			aty[a] += x[a] * targets[i]
			for b := 0; b < dim; b++ {
				ata[a][b] += x[a] * x[b]
			}
		}
	}
	for a := 0; a < dim; a++ {
		ata[a][a] += ridge
	}

	// Gaussian elimination with partial pivoting.
	for col := 0; col < dim; col++ {
		pivot := col
		for r := col + 1; r < dim; r++ {
			if math.Abs(ata[r][col]) > math.Abs(ata[pivot][col]) {
				pivot = r
			}
		}
		if math.Abs(ata[pivot][col]) < 1e-12 {
			return [numFeatures]float64{}, 0, errors.New("pricing: singular feature matrix")
		}
		ata[col], ata[pivot] = ata[pivot], ata[col]
		aty[col], aty[pivot] = aty[pivot], aty[col]
		for r := col + 1; r < dim; r++ {
			ratio := ata[r][col] / ata[col][col]
			for c := col; c < dim; c++ {
				ata[r][c] -= ratio * ata[col][c]
			}
			aty[r] -= ratio * aty[col]
		}
	}
	var solution [dim]float64
	for r := dim - 1; r >= 0; r-- {
		v := aty[r]
		for c := r + 1; c < dim; c++ {
			v -= ata[r][c] * solution[c]
		}
		solution[r] = v / ata[r][r]
	}

	var weights [numFeatures]float64
	copy(weights[:], solution[:numFeatures])
	return weights, solution[numFeatures], nil
}
