package sentiment

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ai-trade/internal/oracle"
	"ai-trade/internal/types"
)

func headlines(titles ...string) []types.NewsItem {
	items := make([]types.NewsItem, len(titles))
	for i, title := range titles {
		items[i] = types.NewsItem{Title: title}
	}
	return items
}

func TestScore_EmptyNewsIsNeutral(t *testing.T) {
	a := NewAnalyzer(nil)

	assert.Equal(t, 0.0, a.Score(context.Background(), nil))
	assert.Equal(t, 0.0, a.Score(context.Background(), []types.NewsItem{}))
}

func TestScore_LexiconFallback(t *testing.T) {
	a := NewAnalyzer(nil)

	pos := a.Score(context.Background(), headlines("Shares surge after earnings beat"))
	neg := a.Score(context.Background(), headlines("Stock plunges amid fraud investigation"))
	neutral := a.Score(context.Background(), headlines("Company schedules annual meeting"))

	assert.Greater(t, pos, 0.0)
	assert.Less(t, neg, 0.0)
	assert.Equal(t, 0.0, neutral)
}

func TestScore_AlwaysInBounds(t *testing.T) {
	a := NewAnalyzer(nil)
	items := headlines(
		"Massive surge rally soars gains jump climb record beats",
		"Crash plunge bankruptcy fraud crisis selloff worst slump",
	)

	score := a.Score(context.Background(), items)
	assert.GreaterOrEqual(t, score, -1.0)
	assert.LessOrEqual(t, score, 1.0)
}

func TestScore_OraclePreferred(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"choices":[{"message":{"content":"0.75"}}]}`))
	}))
	defer srv.Close()

	a := NewAnalyzer(oracle.New(oracle.Config{APIKey: "test", BaseURL: srv.URL}))

	score := a.Score(context.Background(), headlines("Stock plunges"))
	assert.Equal(t, 0.75, score)
}

func TestScore_MalformedOracleFallsThrough(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"choices":[{"message":{"content":"no score today"}}]}`))
	}))
	defer srv.Close()

	a := NewAnalyzer(oracle.New(oracle.Config{APIKey: "test", BaseURL: srv.URL}))

	// The oracle answered without a number, so the lexicon decides.
	score := a.Score(context.Background(), headlines("Shares surge after earnings beat"))
	assert.Greater(t, score, 0.0)
}

func TestLabel(t *testing.T) {
	tests := []struct {
		score float64
		want  string
	}{
		{0.5, LabelPositive},
		{0.11, LabelPositive},
		{0.1, LabelNeutral},
		{0.0, LabelNeutral},
		{-0.1, LabelNeutral},
		{-0.11, LabelNegative},
		{-0.8, LabelNegative},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Label(tt.score), "score %v", tt.score)
	}
}

func TestLexicon_Compound(t *testing.T) {
	l := NewLexicon()

	t.Run("bounds", func(t *testing.T) {
		loud := "surge surge surge rally rally soars soars boom boom breakthrough"
		score := l.Compound(loud)
		assert.Greater(t, score, 0.0)
		assert.LessOrEqual(t, score, 1.0)
	})

	t.Run("negation flips sign", func(t *testing.T) {
		plain := l.Compound("profits rise")
		negated := l.Compound("profits do not rise")
		require.Greater(t, plain, 0.0)
		assert.Less(t, negated, plain)
	})

	t.Run("booster raises intensity", func(t *testing.T) {
		plain := l.Compound("shares climb")
		boosted := l.Compound("shares sharply climb")
		assert.Greater(t, boosted, plain)
	})

	t.Run("no lexicon hits", func(t *testing.T) {
		assert.Equal(t, 0.0, l.Compound("quarterly shareholder letter published"))
	})
}
