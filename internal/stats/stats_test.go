package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMean(t *testing.T) {
	assert.Equal(t, 0.0, Mean(nil))
	assert.Equal(t, 3.0, Mean([]float64{1, 2, 3, 4, 5}))
}

func TestVarianceAndStdDev(t *testing.T) {
	assert.Equal(t, 0.0, Variance([]float64{7}))
	assert.InDelta(t, 2.5, Variance([]float64{1, 2, 3, 4, 5}), 1e-9)
	assert.InDelta(t, 1.5811, StdDev([]float64{1, 2, 3, 4, 5}), 1e-4)
}

func TestMedian(t *testing.T) {
	assert.Equal(t, 3.0, Median([]float64{5, 1, 3, 2, 4}))
	assert.Equal(t, 2.5, Median([]float64{4, 1, 3, 2}))
	assert.Equal(t, 0.0, Median(nil))
}

func TestMinMax(t *testing.T) {
	values := []float64{3, -1, 7, 2}
	assert.Equal(t, -1.0, Min(values))
	assert.Equal(t, 7.0, Max(values))
	assert.Equal(t, 0.0, Min(nil))
	assert.Equal(t, 0.0, Max(nil))
}

func TestQuantileInterpolates(t *testing.T) {
	values := []float64{10, 20, 30, 40}

	assert.Equal(t, 10.0, Quantile(values, 0))
	assert.Equal(t, 40.0, Quantile(values, 1))
	assert.InDelta(t, 25.0, Quantile(values, 0.5), 1e-9)
	assert.InDelta(t, 17.5, Quantile(values, 0.25), 1e-9)

	// Out-of-range quantiles clamp
	assert.Equal(t, 10.0, Quantile(values, -0.5))
	assert.Equal(t, 40.0, Quantile(values, 1.5))
}

func TestQuantileLeavesInputUnsorted(t *testing.T) {
	values := []float64{30, 10, 20}
	Quantile(values, 0.5)
	assert.Equal(t, []float64{30, 10, 20}, values)
}

func TestPercentiles(t *testing.T) {
	values := []float64{10, 20, 30, 40}
	got := Percentiles(values, []float64{0, 50, 100})
	assert.Equal(t, []float64{10, 25, 40}, got)
}
