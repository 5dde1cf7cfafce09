package interview

import (
	"context"

	"github.com/khanglvm/orbit/internal/domain"
)

// Estimator derives a user's preference vector from recorded responses.
type Estimator interface {
	Estimate(ctx context.Context, s domain.Session, responses []domain.Response) ([]float64, error)
}

// DefaultPreference is the value ConstantEstimator uses on every dimension.
const DefaultPreference = 0.5

// ConstantEstimator ignores responses and returns the same vector for
// everyone. It stands in until a response-driven estimator exists.
type ConstantEstimator struct {
	Value float64
}

// NewConstantEstimator returns an estimator filled with DefaultPreference.
func NewConstantEstimator() ConstantEstimator {
	return ConstantEstimator{Value: DefaultPreference}
}

// Estimate implements Estimator.
func (e ConstantEstimator) Estimate(context.Context, domain.Session, []domain.Response) ([]float64, error) {
	v := make([]float64, domain.Dimensions)
	for i := range v {
		v[i] = e.Value
	}
	return v, nil
}
