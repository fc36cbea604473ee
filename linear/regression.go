package linear

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/YuminosukeSato/taxifare/core/model"
	"github.com/YuminosukeSato/taxifare/pkg/errors"
)

// LinearRegression は最小二乗法による線形回帰モデル
//
// ワンホット列と切片が線形従属になるような階数落ちの計画行列でも学習できるよう、
// 特異値分解による最小ノルム解を使う。
type LinearRegression struct {
	state *model.StateManager

	// ハイパーパラメータ
	fitIntercept bool
	rcond        float64

	// 学習済みパラメータ
	coef      *mat.VecDense // 重み（係数）
	intercept float64       // 切片
	rank      int           // 計画行列の数値的な階数
	singular  []float64     // 中心化した計画行列の特異値（降順）
}

// NewLinearRegression は新しい線形回帰モデルを作成する
func NewLinearRegression(opts ...Option) *LinearRegression {
	lr := &LinearRegression{
		state:        model.NewStateManager(),
		fitIntercept: true,
		rcond:        -1,
	}
	for _, opt := range opts {
		opt(lr)
	}
	return lr
}

// Fit はモデルを訓練データで学習させる
//
// 切片を学習する場合は X と y を中心化してから
// min ||Xc*w - yc||_2 （かつ ||w||_2 最小）を解き、切片を yMean - xMean・w とする。
func (lr *LinearRegression) Fit(X, y mat.Matrix) error {
	r, c := X.Dims()
	ry, cy := y.Dims()

	if r == 0 || c == 0 {
		return errors.NewModelError("LinearRegression.Fit", "empty data", errors.ErrEmptyData)
	}
	if ry != r {
		return errors.NewDimensionError("LinearRegression.Fit", r, ry, 0)
	}
	if cy != 1 {
		return errors.NewValueError("LinearRegression.Fit", "y must be a column vector")
	}

	// 列平均（切片なしの場合は0）
	xMean := make([]float64, c)
	var yMean float64
	yCol := mat.Col(nil, 0, y)
	if lr.fitIntercept {
		col := make([]float64, r)
		for j := 0; j < c; j++ {
			mat.Col(col, j, X)
			xMean[j] = stat.Mean(col, nil)
		}
		yMean = stat.Mean(yCol, nil)
	}

	Xc := mat.NewDense(r, c, nil)
	Xc.Apply(func(i, j int, v float64) float64 {
		return v - xMean[j]
	}, X)

	yc := mat.NewVecDense(r, nil)
	for i, v := range yCol {
		yc.SetVec(i, v-yMean)
	}

	var svd mat.SVD
	if ok := svd.Factorize(Xc, mat.SVDThin); !ok {
		return errors.NewModelError("LinearRegression.Fit", "SVD factorization failed", errors.ErrSingularMatrix)
	}

	var u, v mat.Dense
	svd.UTo(&u)
	svd.VTo(&v)
	lr.singular = svd.Values(nil)

	rcond := lr.rcond
	if rcond < 0 {
		rcond = eps * float64(max(r, c))
	}
	cutoff := rcond * lr.singular[0]

	// 最小ノルム解: w = Σ_{k<rank} v_k (u_k・yc) / s_k
	coef := mat.NewVecDense(c, nil)
	lr.rank = 0
	for k, s := range lr.singular {
		if s <= cutoff {
			break
		}
		alpha := mat.Dot(u.ColView(k), yc) / s
		coef.AddScaledVec(coef, alpha, v.ColView(k))
		lr.rank++
	}

	lr.coef = coef
	lr.intercept = 0
	if lr.fitIntercept {
		lr.intercept = yMean - mat.Dot(mat.NewVecDense(c, xMean), coef)
	}

	lr.state.SetFitted(c, r)
	return nil
}

// eps は float64 のマシンイプシロン
var eps = math.Nextafter(1, 2) - 1

// Predict は入力データに対する予測を行う
func (lr *LinearRegression) Predict(X mat.Matrix) (mat.Matrix, error) {
	if err := lr.state.RequireFitted("LinearRegression", "Predict"); err != nil {
		return nil, err
	}

	r, c := X.Dims()
	if err := lr.state.RequireFeatures("LinearRegression.Predict", c); err != nil {
		return nil, err
	}
	if r == 0 {
		return nil, errors.NewModelError("LinearRegression.Predict", "empty data", errors.ErrEmptyData)
	}

	// 予測: y = X * weights + intercept
	pred := mat.NewVecDense(r, nil)
	pred.MulVec(X, lr.coef)

	predictions := mat.NewDense(r, 1, nil)
	for i := 0; i < r; i++ {
		predictions.Set(i, 0, pred.AtVec(i)+lr.intercept)
	}

	return predictions, nil
}

// Score はモデルの決定係数（R²）を計算する
func (lr *LinearRegression) Score(X, y mat.Matrix) (float64, error) {
	yPred, err := lr.Predict(X)
	if err != nil {
		return 0, err
	}

	r, _ := y.Dims()
	rp, _ := yPred.Dims()
	if r != rp {
		return 0, errors.NewDimensionError("LinearRegression.Score", rp, r, 0)
	}

	yTrue := mat.Col(nil, 0, y)
	yMean := stat.Mean(yTrue, nil)

	// 全変動 (TSS) と残差変動 (RSS) を計算
	var tss, rss float64
	for i, v := range yTrue {
		tss += (v - yMean) * (v - yMean)
		d := v - yPred.At(i, 0)
		rss += d * d
	}

	if tss == 0 {
		return 0, errors.NewValueError("LinearRegression.Score", "total sum of squares is zero")
	}

	// R² = 1 - RSS/TSS
	return 1 - rss/tss, nil
}

// Coef は学習された重み（係数）を返す
func (lr *LinearRegression) Coef() []float64 {
	if lr.coef == nil {
		return nil
	}
	return mat.Col(nil, 0, lr.coef)
}

// Intercept は学習された切片を返す
func (lr *LinearRegression) Intercept() float64 {
	return lr.intercept
}

// Rank は学習時の計画行列の数値的な階数を返す
func (lr *LinearRegression) Rank() int {
	return lr.rank
}

// Singular は学習時の特異値（降順）を返す
func (lr *LinearRegression) Singular() []float64 {
	out := make([]float64, len(lr.singular))
	copy(out, lr.singular)
	return out
}

// IsFitted は学習済みかどうかを返す
func (lr *LinearRegression) IsFitted() bool {
	return lr.state.IsFitted()
}

// String はモデルの文字列表現を返す
func (lr *LinearRegression) String() string {
	if !lr.state.IsFitted() {
		return fmt.Sprintf("LinearRegression(fit_intercept=%t)", lr.fitIntercept)
	}
	nFeatures, _ := lr.state.Dimensions()
	return fmt.Sprintf("LinearRegression(fit_intercept=%t, n_features=%d, rank=%d)",
		lr.fitIntercept, nFeatures, lr.rank)
}
