package predict

import (
	"errors"
	"fmt"
)

var (
	// ErrPredictionRank is matched by every *RankError.
	ErrPredictionRank = errors.New("predict: unexpected prediction rank")
	// ErrPredictionShape is returned when a prediction does not line up
	// with the sample it was made from.
	ErrPredictionShape = errors.New("predict: prediction shape does not match sample")
	// ErrTrainPathMissing is returned when the model store root named by the
	// environment does not exist. It wraps fs.ErrNotExist.
	ErrTrainPathMissing = errors.New("predict: train path does not exist")
)

// RankError reports a model output that is neither 1-D nor 2-D.
type RankError struct {
	Rank int
}

func (e *RankError) Error() string {
	return fmt.Sprintf("expected 1- or 2-d output of model predict but found rank %d", e.Rank)
}

// Is lets errors.Is(err, ErrPredictionRank) match.
func (e *RankError) Is(target error) bool { return target == ErrPredictionRank }

type shapeError struct {
	msg  string
	got  []int
	want int
}

func (e *shapeError) Error() string {
	if e.want > 0 {
		return fmt.Sprintf("%s: prediction shape %v, sample has %d points", e.msg, e.got, e.want)
	}
	return fmt.Sprintf("%s: prediction shape %v", e.msg, e.got)
}

func (e *shapeError) Is(target error) bool { return target == ErrPredictionShape }
