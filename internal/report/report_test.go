package report

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayusman/samadhi/internal/evaluate"
	"github.com/ayusman/samadhi/internal/similarity"
)

func testCurves(t *testing.T) []evaluate.LambdaCurve {
	t.Helper()
	pairs := []evaluate.LabeledPair{
		{Same: true, Original: similarity.Result{Cosine: 0.95, EuclideanDiff: 0.05}},
		{Same: true, Original: similarity.Result{Cosine: 0.8, EuclideanDiff: 0.2}},
		{Same: false, Original: similarity.Result{Cosine: -0.3, EuclideanDiff: 0.8}},
		{Same: false, Original: similarity.Result{Cosine: 0.1, EuclideanDiff: 0.6}},
	}
	curves, err := evaluate.SweepLambdas(pairs, nil)
	require.NoError(t, err)
	return curves
}

func TestRenderHTML(t *testing.T) {
	curves := testCurves(t)

	var buf bytes.Buffer
	require.NoError(t, RenderHTML(&buf, curves))

	html := buf.String()
	assert.Contains(t, html, "Accuracy by threshold")
	assert.Contains(t, html, "Best accuracy per lambda")
	for _, c := range curves {
		assert.Contains(t, html, seriesName(c))
	}
}

func TestRenderHTML_NoCurves(t *testing.T) {
	var buf bytes.Buffer
	assert.ErrorIs(t, RenderHTML(&buf, nil), ErrNoCurves)
	assert.Zero(t, buf.Len())
}

func TestSavePNG(t *testing.T) {
	path := filepath.Join(t.TempDir(), "accuracy.png")
	require.NoError(t, SavePNG(path, testCurves(t)))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("\x89PNG")), "output should be a PNG")
}

func TestWritePNG(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WritePNG(&buf, testCurves(t)))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("\x89PNG")))

	assert.ErrorIs(t, WritePNG(&buf, nil), ErrNoCurves)
}

func TestSubtitle(t *testing.T) {
	assert.Empty(t, subtitle(nil))
	assert.Contains(t, subtitle(testCurves(t)), "accuracy=100.0%")
}
